package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tagloom/internal/tools"
	"tagloom/internal/types"
)

// FanOutConfig configures a batch of independent engine runs.
type FanOutConfig struct {
	// Engine is the template config every spawned engine inherits.
	Engine Config

	// MaxParallel bounds concurrent runs. Zero or negative means
	// unbounded.
	MaxParallel int
}

// FanOutResult aggregates the outcome of a batch.
type FanOutResult struct {
	// Success is false only when every prompt failed.
	Success bool

	// Output lists per-prompt results in prompt order, failures included.
	Output string
}

// FanOut runs independent conversations concurrently, one engine per
// prompt. Engines share the provider, registry, and store but nothing
// else; a failing prompt never cancels its siblings.
type FanOut struct {
	cfg      FanOutConfig
	provider types.CompletionProvider
	registry *tools.Registry
	sink     EventSink
	store    types.ConversationStore
	logger   *zap.Logger
}

// NewFanOut creates a coordinator with explicit collaborators, mirroring
// the single-engine constructor.
func NewFanOut(cfg FanOutConfig, provider types.CompletionProvider, registry *tools.Registry, sink EventSink, store types.ConversationStore, logger *zap.Logger) *FanOut {
	if sink == nil {
		sink = NopSink{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FanOut{
		cfg:      cfg,
		provider: provider,
		registry: registry,
		sink:     sink,
		store:    store,
		logger:   logger,
	}
}

// outcome is one prompt's terminal record, filled by exactly one
// goroutine into its own slot.
type outcome struct {
	answer string
	err    error
}

// Execute runs every prompt to completion and aggregates the results in
// prompt order.
func (f *FanOut) Execute(ctx context.Context, prompts []string) (FanOutResult, error) {
	if len(prompts) == 0 {
		return FanOutResult{}, ErrNoPrompts
	}

	f.logger.Info("fanning out",
		zap.Int("prompts", len(prompts)),
		zap.Int("max_parallel", f.cfg.MaxParallel))

	outcomes := make([]outcome, len(prompts))

	var g errgroup.Group
	if f.cfg.MaxParallel > 0 {
		g.SetLimit(f.cfg.MaxParallel)
	}
	for i, prompt := range prompts {
		g.Go(func() error {
			answer, err := f.runOne(ctx, prompt)
			outcomes[i] = outcome{answer: answer, err: err}
			return nil
		})
	}
	// Goroutines record their own outcome and never return an error, so
	// no run can cancel a sibling.
	_ = g.Wait()

	return aggregate(prompts, outcomes), nil
}

// runOne spawns a fresh engine for one prompt and captures its final
// answer through a callback sink.
func (f *FanOut) runOne(ctx context.Context, prompt string) (string, error) {
	id := uuid.New().String()
	started := time.Now()

	event := SubAgentEvent{ID: id, Prompt: prompt, StartedAt: started}
	f.sink.SubAgentStarted(event)

	var answer string
	var answered bool
	sink := &CallbackSink{
		OnAnswerFromAssistant: func(text string) {
			answer = text
			answered = true
		},
	}

	eng := New(f.cfg.Engine, f.provider, f.registry, sink, f.store, f.logger.With(zap.String("subagent", id)))
	if f.store != nil {
		if convID, err := f.store.CreateEmptyConversation(ctx); err != nil {
			f.logger.Warn("could not create conversation record",
				zap.String("subagent", id),
				zap.Error(err))
		} else {
			eng.BindConversation(convID)
		}
	}

	err := eng.Run(ctx, prompt)
	event.EndedAt = time.Now()

	if err == nil && !answered {
		err = fmt.Errorf("run ended in state %s without an answer", eng.State())
	}
	if err != nil {
		event.Error = err.Error()
		f.sink.SubAgentFailed(event)
		return "", err
	}

	event.Result = answer
	f.sink.SubAgentCompleted(event)
	return answer, nil
}

// aggregate renders per-prompt outcomes in prompt order, each entry
// tagged with its ordinal and original prompt. The batch counts as a
// success unless every prompt failed.
func aggregate(prompts []string, outcomes []outcome) FanOutResult {
	failures := 0
	var b strings.Builder
	for i, out := range outcomes {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if out.err != nil {
			failures++
			fmt.Fprintf(&b, "Prompt %d (%q) failed: %v", i+1, prompts[i], out.err)
			continue
		}
		fmt.Fprintf(&b, "Prompt %d (%q): %s", i+1, prompts[i], out.answer)
	}
	return FanOutResult{
		Success: failures < len(prompts),
		Output:  b.String(),
	}
}
