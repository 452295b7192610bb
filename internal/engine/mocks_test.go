package engine

import (
	"context"
	"fmt"
	"sync"

	"tagloom/internal/protocol"
	"tagloom/internal/types"
)

// scriptProvider replays canned responses in order. It fails when asked
// for more responses than it has.
type scriptProvider struct {
	mu        sync.Mutex
	responses []string
	calls     int
	err       error
}

func (p *scriptProvider) GenerateText(_ context.Context, _ string, _ []types.Turn) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	if p.calls >= len(p.responses) {
		return "", fmt.Errorf("script exhausted after %d calls", p.calls)
	}
	out := p.responses[p.calls]
	p.calls++
	return out, nil
}

// loopProvider returns the same response forever, for exhaustion tests.
type loopProvider struct {
	response string
}

func (p *loopProvider) GenerateText(context.Context, string, []types.Turn) (string, error) {
	return p.response, nil
}

// memStore is a minimal in-memory ConversationStore for tests.
type memStore struct {
	mu      sync.Mutex
	next    int
	records map[string][]types.Turn
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string][]types.Turn)}
}

func (s *memStore) CreateEmptyConversation(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	id := fmt.Sprintf("conv-%d", s.next)
	s.records[id] = nil
	return id, nil
}

func (s *memStore) StartNewConversation(ctx context.Context, turns []types.Turn) (string, error) {
	id, err := s.CreateEmptyConversation(ctx)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.records[id] = append([]types.Turn(nil), turns...)
	s.mu.Unlock()
	return id, nil
}

func (s *memStore) UpdateConversation(_ context.Context, id string, turns []types.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("conversation %s not found", id)
	}
	s.records[id] = append([]types.Turn(nil), turns...)
	return nil
}

func (s *memStore) GetConversation(_ context.Context, id string) ([]types.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	turns, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("conversation %s not found", id)
	}
	return append([]types.Turn(nil), turns...), nil
}

// recordingSink captures every event for assertions.
type recordingSink struct {
	mu        sync.Mutex
	thoughts  []string
	questions []protocol.FollowupQuestion
	toolCalls []ToolInvocation
	answers   []string
	started   []SubAgentEvent
	completed []SubAgentEvent
	failed    []SubAgentEvent
}

func (s *recordingSink) Thinking(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.thoughts = append(s.thoughts, text)
}

func (s *recordingSink) QuestionFromAssistant(q protocol.FollowupQuestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = append(s.questions, q)
}

func (s *recordingSink) ToolCallFromAssistant(call ToolInvocation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toolCalls = append(s.toolCalls, call)
}

func (s *recordingSink) AnswerFromAssistant(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers = append(s.answers, text)
}

func (s *recordingSink) SubAgentStarted(ev SubAgentEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = append(s.started, ev)
}

func (s *recordingSink) SubAgentCompleted(ev SubAgentEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed = append(s.completed, ev)
}

func (s *recordingSink) SubAgentFailed(ev SubAgentEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = append(s.failed, ev)
}

func (s *recordingSink) snapshotAnswers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.answers...)
}
