package protocol

import "strings"

// Reserved directive tag names. Any other tag name is either a registered
// tool invocation or unknown.
const (
	TagThinking         = "thinking"
	TagFollowupQuestion = "ask_followup_question"
	TagCompletion       = "attempt_completion"
)

// Inner tags of the reserved directives.
const (
	tagQuestion = "question"
	tagFollowUp = "follow_up"
	tagSuggest  = "suggest"
	tagResult   = "result"
	tagCommand  = "command"
)

// IsReserved reports whether name is one of the reserved directive tags.
func IsReserved(name string) bool {
	switch name {
	case TagThinking, TagFollowupQuestion, TagCompletion:
		return true
	}
	return false
}

// FollowupQuestion is a question the model asks the user mid-task,
// optionally with suggested answers.
type FollowupQuestion struct {
	Question string
	Options  []string
}

// CompletionDirective is the model's final answer, optionally paired with
// a command the user may run to inspect the outcome.
type CompletionDirective struct {
	Result  string
	Command string
}

// DecodeThought returns a thinking fragment's content verbatim, trimmed.
func DecodeThought(content string) string {
	return strings.TrimSpace(content)
}

// DecodeFollowup decodes an ask_followup_question fragment. The question
// comes from the inner <question> tag and the options from <suggest> tags
// inside <follow_up>. Missing or whitespace-only wrappers yield empty
// values rather than an error; blank suggestions are dropped and option
// order is preserved.
func DecodeFollowup(content string) FollowupQuestion {
	var q FollowupQuestion
	if frag, ok := ExtractFirst(content, tagQuestion); ok {
		q.Question = strings.TrimSpace(frag.Content)
	}
	if wrapper, ok := ExtractFirst(content, tagFollowUp); ok {
		for _, child := range Extract(wrapper.Content) {
			if child.TagName != tagSuggest {
				continue
			}
			option := strings.TrimSpace(child.Content)
			if option == "" {
				continue
			}
			q.Options = append(q.Options, option)
		}
	}
	return q
}

// DecodeCompletion decodes an attempt_completion fragment. The <command>
// fragment is cut out first so its text is never duplicated into the
// result; if the remainder is wholly wrapped by a single
// <result>...</result> pair that wrapper is stripped, otherwise the
// trimmed remainder is used as-is.
func DecodeCompletion(content string) CompletionDirective {
	var d CompletionDirective
	command, remainder, found := Cut(content, tagCommand)
	if found {
		d.Command = strings.TrimSpace(command)
	}
	rest := strings.TrimSpace(remainder)
	if inner, ok := unwrapSole(rest, tagResult); ok {
		d.Result = strings.TrimSpace(inner)
	} else {
		d.Result = rest
	}
	return d
}

// unwrapSole reports whether s consists of exactly one fragment with the
// given tag name spanning the whole string, and returns its content.
func unwrapSole(s, name string) (string, bool) {
	spans := scan(s)
	if len(spans) == 1 && spans[0].TagName == name && spans[0].start == 0 && spans[0].end == len(s) {
		return spans[0].Content, true
	}
	return "", false
}
