// Package engine implements the conversation engine: a bounded iterative
// state machine that feeds a conversation to a completion provider,
// interprets the tag protocol in the model's output, dispatches tool
// invocations, suspends on follow-up questions, and runs until
// completion, exhaustion, or failure. It also provides the fan-out
// coordinator that runs many independent engines concurrently.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"tagloom/internal/protocol"
	"tagloom/internal/tools"
	"tagloom/internal/types"
)

// State is the lifecycle state of an engine.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateAwaitingAnswer
	StateCompleted
	StateExhausted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateAwaitingAnswer:
		return "awaiting_answer"
	case StateCompleted:
		return "completed"
	case StateExhausted:
		return "exhausted"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ExhaustPolicy selects what happens when the iteration budget runs out.
type ExhaustPolicy string

const (
	// ExhaustSilent stops without any terminal event or error.
	ExhaustSilent ExhaustPolicy = "silent"

	// ExhaustError returns ErrIterationsExhausted to the caller.
	ExhaustError ExhaustPolicy = "error"
)

// UnknownTagPolicy selects what happens for a tag matching neither a
// reserved directive nor a registered tool.
type UnknownTagPolicy string

const (
	// UnknownTagContinue logs the tag and moves on. No conversation turn
	// is appended, so the model never learns its directive was dropped.
	UnknownTagContinue UnknownTagPolicy = "continue"

	// UnknownTagFail terminates the run with ErrUnknownDirective.
	UnknownTagFail UnknownTagPolicy = "fail"
)

// Config holds per-engine configuration. The iteration cap is fixed per
// engine instance, not per call.
type Config struct {
	// SystemPrompt is sent with every completion request.
	SystemPrompt string

	// MaxIterations caps the number of provider round-trips, including
	// those that follow an answered follow-up question.
	MaxIterations int

	// OnExhausted selects the exhaustion behavior.
	OnExhausted ExhaustPolicy

	// OnUnknownTag selects the unknown-directive behavior.
	OnUnknownTag UnknownTagPolicy
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxIterations: 25,
		OnExhausted:   ExhaustSilent,
		OnUnknownTag:  UnknownTagContinue,
	}
}

// Engine drives one conversation to completion. It owns its conversation
// exclusively; the store only mirrors it. An engine is single-use: one
// Run per instance.
type Engine struct {
	cfg      Config
	provider types.CompletionProvider
	registry *tools.Registry
	sink     EventSink
	store    types.ConversationStore
	logger   *zap.Logger

	gate *AnswerGate

	state int32

	mu             sync.RWMutex
	conversationID string
	conversation   []types.Turn
}

// New creates an engine with explicit collaborators. A nil sink discards
// events, a nil store disables mirroring, and a nil logger is replaced
// with a no-op logger.
func New(cfg Config, provider types.CompletionProvider, registry *tools.Registry, sink EventSink, store types.ConversationStore, logger *zap.Logger) *Engine {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultConfig().MaxIterations
	}
	if cfg.OnExhausted == "" {
		cfg.OnExhausted = ExhaustSilent
	}
	if cfg.OnUnknownTag == "" {
		cfg.OnUnknownTag = UnknownTagContinue
	}
	if sink == nil {
		sink = NopSink{}
	}
	if registry == nil {
		registry = tools.NewRegistry(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:      cfg,
		provider: provider,
		registry: registry,
		sink:     sink,
		store:    store,
		logger:   logger,
		gate:     NewAnswerGate(),
	}
}

// BindConversation attaches the engine to an existing conversation record
// in the store. Must be called before Run.
func (e *Engine) BindConversation(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.conversationID = id
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() State {
	return State(atomic.LoadInt32(&e.state))
}

// ConversationID returns the bound conversation record ID, if any.
func (e *Engine) ConversationID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.conversationID
}

// Conversation returns a copy of the conversation so far.
func (e *Engine) Conversation() []types.Turn {
	e.mu.RLock()
	defer e.mu.RUnlock()
	turns := make([]types.Turn, len(e.conversation))
	copy(turns, e.conversation)
	return turns
}

// AnswerFromUser satisfies the outstanding follow-up question.
func (e *Engine) AnswerFromUser(text string) error {
	return e.gate.Submit(text)
}

// Run drives the conversation for the given task until completion,
// exhaustion, or failure. Results are delivered through the event sink;
// the returned error is non-nil only for Failed runs (and for exhausted
// runs under ExhaustError).
//
// The iteration budget is carried through a single loop: steps that
// follow an answered follow-up question consume budget like any other.
func (e *Engine) Run(ctx context.Context, task string) error {
	if !atomic.CompareAndSwapInt32(&e.state, int32(StateIdle), int32(StateRunning)) {
		return ErrAlreadyStarted
	}

	e.logger.Info("engine starting",
		zap.String("conversation", e.ConversationID()),
		zap.Int("max_iterations", e.cfg.MaxIterations))

	if e.store != nil && e.ConversationID() == "" {
		id, err := e.store.CreateEmptyConversation(ctx)
		if err != nil {
			e.logger.Warn("could not create conversation record", zap.Error(err))
		} else {
			e.BindConversation(id)
		}
	}

	e.appendTurn(ctx, types.UserTurn(task))

	for iteration := 0; iteration < e.cfg.MaxIterations; iteration++ {
		output, err := e.provider.GenerateText(ctx, e.cfg.SystemPrompt, e.Conversation())
		if err != nil {
			e.setState(StateFailed)
			return fmt.Errorf("completion provider: %w", err)
		}

		e.appendTurn(ctx, types.AssistantTurn(output))

		fragments := protocol.Extract(output)
		if len(fragments) == 0 {
			// No directives at all: the raw output is the final answer.
			e.sink.AnswerFromAssistant(output)
			e.setState(StateCompleted)
			return nil
		}

		done, err := e.processFragments(ctx, fragments)
		if err != nil {
			e.setState(StateFailed)
			return err
		}
		if done {
			e.setState(StateCompleted)
			return nil
		}
	}

	e.setState(StateExhausted)
	e.logger.Warn("iteration budget exhausted",
		zap.String("conversation", e.ConversationID()),
		zap.Int("max_iterations", e.cfg.MaxIterations))
	if e.cfg.OnExhausted == ExhaustError {
		return ErrIterationsExhausted
	}
	return nil
}

// processFragments handles one model response's fragments in document
// order. Returns done=true when a completion directive terminated the
// conversation. An answered follow-up question abandons the remaining
// fragments of the response.
func (e *Engine) processFragments(ctx context.Context, fragments []protocol.Fragment) (bool, error) {
	for _, frag := range fragments {
		switch {
		case frag.TagName == protocol.TagThinking:
			e.sink.Thinking(protocol.DecodeThought(frag.Content))

		case frag.TagName == protocol.TagFollowupQuestion:
			if err := e.askFollowup(ctx, protocol.DecodeFollowup(frag.Content)); err != nil {
				return false, err
			}
			// The answer supersedes whatever else this response contained.
			return false, nil

		case frag.TagName == protocol.TagCompletion:
			directive := protocol.DecodeCompletion(frag.Content)
			e.sink.AnswerFromAssistant(formatCompletion(directive))
			return true, nil

		case e.registry.Has(frag.TagName):
			e.dispatchTool(ctx, frag)

		default:
			if e.cfg.OnUnknownTag == UnknownTagFail {
				return false, fmt.Errorf("%w: %s", ErrUnknownDirective, frag.TagName)
			}
			e.logger.Warn("unknown directive tag, skipping", zap.String("tag", frag.TagName))
		}
	}
	return false, nil
}

// askFollowup announces the question, suspends until the answer arrives,
// and appends it as a user turn.
func (e *Engine) askFollowup(ctx context.Context, q protocol.FollowupQuestion) error {
	if err := e.gate.Arm(); err != nil {
		return err
	}
	e.setState(StateAwaitingAnswer)
	e.sink.QuestionFromAssistant(q)

	answer, err := e.gate.Wait(ctx)
	if err != nil {
		return fmt.Errorf("awaiting answer: %w", err)
	}
	e.setState(StateRunning)
	e.appendTurn(ctx, types.UserTurn(answer))
	return nil
}

// dispatchTool decodes the fragment's parameters, executes the tool, and
// appends a synthesized user turn with the outcome. Tool failures surface
// only through that turn's text; they never terminate the run.
func (e *Engine) dispatchTool(ctx context.Context, frag protocol.Fragment) {
	params := protocol.DecodeParams(frag.Content)
	call := ToolInvocation{Name: frag.TagName, Parameters: params}
	e.sink.ToolCallFromAssistant(call)

	result, err := e.registry.Execute(ctx, frag.TagName, params)
	if err != nil {
		e.logger.Warn("tool execution failed",
			zap.String("tool", frag.TagName),
			zap.Error(err))
	}

	e.appendTurn(ctx, types.UserTurn(formatToolTurn(call, result, err)))
}

// appendTurn appends to the conversation and mirrors it to the store.
// Store failures are logged and otherwise ignored; the in-memory
// conversation is authoritative.
func (e *Engine) appendTurn(ctx context.Context, turn types.Turn) {
	e.mu.Lock()
	e.conversation = append(e.conversation, turn)
	id := e.conversationID
	turns := make([]types.Turn, len(e.conversation))
	copy(turns, e.conversation)
	e.mu.Unlock()

	if e.store == nil || id == "" {
		return
	}
	if err := e.store.UpdateConversation(ctx, id, turns); err != nil {
		e.logger.Warn("could not mirror conversation",
			zap.String("conversation", id),
			zap.Error(err))
	}
}

func (e *Engine) setState(s State) {
	atomic.StoreInt32(&e.state, int32(s))
}

// formatCompletion joins the result with the optional command as a single
// human-readable string.
func formatCompletion(d protocol.CompletionDirective) string {
	if d.Command == "" {
		return d.Result
	}
	if d.Result == "" {
		return fmt.Sprintf("Command to run: %s", d.Command)
	}
	return fmt.Sprintf("%s\n\nCommand to run: %s", d.Result, d.Command)
}

// formatToolTurn synthesizes the user turn that reports a tool outcome
// back to the model.
func formatToolTurn(call ToolInvocation, result *tools.Result, err error) string {
	args, marshalErr := json.Marshal(call.Parameters)
	if marshalErr != nil {
		args = []byte("{}")
	}
	if err != nil {
		return fmt.Sprintf("Tool %s with arguments %s failed: %v", call.Name, args, err)
	}
	if result == nil {
		return fmt.Sprintf("Tool %s with arguments %s produced no result", call.Name, args)
	}
	return fmt.Sprintf("Tool %s with arguments %s returned:\n%s", call.Name, args, result.Output)
}
