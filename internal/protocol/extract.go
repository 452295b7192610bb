// Package protocol implements the tag-delimited text protocol emitted by
// the language model. It extracts paired tag fragments from raw text,
// decodes nested parameter tags into typed values, and decodes the three
// reserved directive shapes (thinking, ask_followup_question,
// attempt_completion).
//
// Malformed input is never an error at this layer: unmatched or partial
// tags simply yield fewer fragments.
package protocol

import "strings"

// Fragment is a single tag name + content pair extracted from model output.
type Fragment struct {
	TagName string
	Content string
}

// fragmentSpan is a Fragment with the byte range of its full matched text
// (opening tag through closing tag) in the scanned string.
type fragmentSpan struct {
	Fragment
	start int
	end   int
}

// Extract scans s and returns fragments in first-match, left-to-right,
// non-overlapping order. A fragment opens with <name> or <name attrs>
// (name restricted to [A-Za-z0-9_.-]+, attrs ignored) and closes at the
// first occurrence of the exact matching </name>. Matching is by
// back-reference to the opening name, not by structural nesting, so a tag
// nested inside itself closes at the first candidate closing tag. An
// opening tag with no closing tag yields no fragment; scanning resumes
// just past the failed '<' so well-formed inner tags are still found.
func Extract(s string) []Fragment {
	spans := scan(s)
	if len(spans) == 0 {
		return nil
	}
	frags := make([]Fragment, len(spans))
	for i, sp := range spans {
		frags[i] = sp.Fragment
	}
	return frags
}

// ExtractFirst returns the first fragment with the given tag name.
func ExtractFirst(s, name string) (Fragment, bool) {
	for _, sp := range scan(s) {
		if sp.TagName == name {
			return sp.Fragment, true
		}
	}
	return Fragment{}, false
}

// Cut locates the first fragment with the given tag name and returns its
// content along with s with that fragment's full matched text removed.
func Cut(s, name string) (inner, remainder string, found bool) {
	for _, sp := range scan(s) {
		if sp.TagName == name {
			return sp.Content, s[:sp.start] + s[sp.end:], true
		}
	}
	return "", s, false
}

func scan(s string) []fragmentSpan {
	var spans []fragmentSpan
	pos := 0
	for pos < len(s) {
		rel := strings.IndexByte(s[pos:], '<')
		if rel < 0 {
			break
		}
		open := pos + rel
		name, contentStart, ok := parseOpenTag(s, open)
		if !ok {
			pos = open + 1
			continue
		}
		closing := "</" + name + ">"
		closeRel := strings.Index(s[contentStart:], closing)
		if closeRel < 0 {
			// Unclosed tag: drop it, but keep scanning inside it.
			pos = open + 1
			continue
		}
		end := contentStart + closeRel + len(closing)
		spans = append(spans, fragmentSpan{
			Fragment: Fragment{TagName: name, Content: s[contentStart : contentStart+closeRel]},
			start:    open,
			end:      end,
		})
		pos = end
	}
	return spans
}

// parseOpenTag parses an opening tag at s[start] (which must be '<').
// Returns the tag name and the index just past the closing '>'.
func parseOpenTag(s string, start int) (name string, contentStart int, ok bool) {
	i := start + 1
	for i < len(s) && isNameByte(s[i]) {
		i++
	}
	if i == start+1 {
		return "", 0, false
	}
	name = s[start+1 : i]
	if i < len(s) && s[i] == '>' {
		return name, i + 1, true
	}
	if i >= len(s) || !isSpaceByte(s[i]) {
		return "", 0, false
	}
	// Attributes: anything up to the next '>' is accepted and ignored.
	for i < len(s) {
		if s[i] == '>' {
			return name, i + 1, true
		}
		i++
	}
	return "", 0, false
}

func isNameByte(b byte) bool {
	return b >= 'a' && b <= 'z' ||
		b >= 'A' && b <= 'Z' ||
		b >= '0' && b <= '9' ||
		b == '_' || b == '.' || b == '-'
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
