package engine

import "errors"

// Engine errors.
var (
	// ErrAlreadyStarted is returned when Run is called twice on one engine.
	ErrAlreadyStarted = errors.New("engine already started")

	// ErrIterationsExhausted is returned when the iteration budget runs out
	// and the engine is configured with ExhaustError.
	ErrIterationsExhausted = errors.New("iteration budget exhausted")

	// ErrUnknownDirective is returned for an unmatched tag name when the
	// engine is configured with UnknownTagFail.
	ErrUnknownDirective = errors.New("unknown directive")

	// ErrNoPendingQuestion is returned by AnswerFromUser when no follow-up
	// question is outstanding.
	ErrNoPendingQuestion = errors.New("no pending question")

	// ErrAnswerAlreadySubmitted is returned when a pending question already
	// has an answer waiting to be consumed.
	ErrAnswerAlreadySubmitted = errors.New("answer already submitted")

	// ErrQuestionPending is returned when a question is asked while another
	// is still outstanding.
	ErrQuestionPending = errors.New("question already pending")

	// ErrNoPrompts is returned by FanOut.Execute for an empty prompt list.
	ErrNoPrompts = errors.New("no prompts given")
)
