package engine

import (
	"time"

	"tagloom/internal/protocol"
)

// ToolInvocation describes a tool call decoded from a tag fragment.
type ToolInvocation struct {
	Name       string
	Parameters map[string]any
}

// SubAgentEvent describes a lifecycle transition of one fan-out engine.
type SubAgentEvent struct {
	ID        string
	Prompt    string
	StartedAt time.Time
	EndedAt   time.Time

	// Result carries the final answer on completion.
	Result string

	// Error carries the failure message on failure.
	Error string
}

// EventSink receives the engine's observable events. Delivery is
// synchronous and in emission order; implementations must not block for
// long or they stall the engine. The sink is part of the engine's typed
// contract: every engine is constructed with one.
type EventSink interface {
	// Thinking surfaces a thinking fragment's content verbatim.
	Thinking(text string)

	// QuestionFromAssistant announces a follow-up question. The engine is
	// suspended until AnswerFromUser is called.
	QuestionFromAssistant(q protocol.FollowupQuestion)

	// ToolCallFromAssistant announces a tool invocation about to execute.
	ToolCallFromAssistant(call ToolInvocation)

	// AnswerFromAssistant delivers the final answer of a conversation.
	AnswerFromAssistant(text string)

	// Fan-out lifecycle events.
	SubAgentStarted(ev SubAgentEvent)
	SubAgentCompleted(ev SubAgentEvent)
	SubAgentFailed(ev SubAgentEvent)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Thinking(string)                                 {}
func (NopSink) QuestionFromAssistant(protocol.FollowupQuestion) {}
func (NopSink) ToolCallFromAssistant(ToolInvocation)            {}
func (NopSink) AnswerFromAssistant(string)                      {}
func (NopSink) SubAgentStarted(SubAgentEvent)                   {}
func (NopSink) SubAgentCompleted(SubAgentEvent)                 {}
func (NopSink) SubAgentFailed(SubAgentEvent)                    {}

// CallbackSink dispatches events to optional callbacks. Nil callbacks
// drop their events.
type CallbackSink struct {
	OnThinking              func(text string)
	OnQuestionFromAssistant func(q protocol.FollowupQuestion)
	OnToolCallFromAssistant func(call ToolInvocation)
	OnAnswerFromAssistant   func(text string)
	OnSubAgentStarted       func(ev SubAgentEvent)
	OnSubAgentCompleted     func(ev SubAgentEvent)
	OnSubAgentFailed        func(ev SubAgentEvent)
}

func (s *CallbackSink) Thinking(text string) {
	if s.OnThinking != nil {
		s.OnThinking(text)
	}
}

func (s *CallbackSink) QuestionFromAssistant(q protocol.FollowupQuestion) {
	if s.OnQuestionFromAssistant != nil {
		s.OnQuestionFromAssistant(q)
	}
}

func (s *CallbackSink) ToolCallFromAssistant(call ToolInvocation) {
	if s.OnToolCallFromAssistant != nil {
		s.OnToolCallFromAssistant(call)
	}
}

func (s *CallbackSink) AnswerFromAssistant(text string) {
	if s.OnAnswerFromAssistant != nil {
		s.OnAnswerFromAssistant(text)
	}
}

func (s *CallbackSink) SubAgentStarted(ev SubAgentEvent) {
	if s.OnSubAgentStarted != nil {
		s.OnSubAgentStarted(ev)
	}
}

func (s *CallbackSink) SubAgentCompleted(ev SubAgentEvent) {
	if s.OnSubAgentCompleted != nil {
		s.OnSubAgentCompleted(ev)
	}
}

func (s *CallbackSink) SubAgentFailed(ev SubAgentEvent) {
	if s.OnSubAgentFailed != nil {
		s.OnSubAgentFailed(ev)
	}
}
