package engine

import (
	"context"
	"sync"
)

// AnswerGate pairs one outstanding follow-up question with its eventual
// answer. The engine arms the gate before announcing the question, then
// blocks on Wait; the external actor resolves it with Submit. Only one
// question is representable at a time per gate.
type AnswerGate struct {
	mu sync.Mutex
	ch chan string
}

// NewAnswerGate creates a disarmed gate.
func NewAnswerGate() *AnswerGate {
	return &AnswerGate{}
}

// Arm marks a question as outstanding. Returns ErrQuestionPending if one
// already is.
func (g *AnswerGate) Arm() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ch != nil {
		return ErrQuestionPending
	}
	g.ch = make(chan string, 1)
	return nil
}

// Submit delivers the answer for the outstanding question. Returns
// ErrNoPendingQuestion when nothing is outstanding and
// ErrAnswerAlreadySubmitted when an answer is already waiting.
func (g *AnswerGate) Submit(answer string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ch == nil {
		return ErrNoPendingQuestion
	}
	select {
	case g.ch <- answer:
		return nil
	default:
		return ErrAnswerAlreadySubmitted
	}
}

// Wait blocks until the outstanding answer arrives or ctx is cancelled,
// then disarms the gate.
func (g *AnswerGate) Wait(ctx context.Context) (string, error) {
	g.mu.Lock()
	ch := g.ch
	g.mu.Unlock()
	if ch == nil {
		return "", ErrNoPendingQuestion
	}

	select {
	case answer := <-ch:
		g.disarm()
		return answer, nil
	case <-ctx.Done():
		g.disarm()
		return "", ctx.Err()
	}
}

// Pending reports whether a question is outstanding.
func (g *AnswerGate) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ch != nil
}

func (g *AnswerGate) disarm() {
	g.mu.Lock()
	g.ch = nil
	g.mu.Unlock()
}
