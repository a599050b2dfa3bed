package content

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Token codes
const (
	whitespaceCode = iota
	flagCode
	hereStringCode
	quotedCode
	wordCode
)

// Token definitions
var (
	whitespaceToken = parsly.NewToken(whitespaceCode, "Whitespace", matcher.NewWhiteSpace())
	flagToken       = parsly.NewToken(flagCode, "Flag", newFlagMatcher())
	hereStringToken = parsly.NewToken(hereStringCode, "HereString", newHereStringMatcher())
	quotedToken     = parsly.NewToken(quotedCode, "Quoted", newQuotedMatcher())
	wordToken       = parsly.NewToken(wordCode, "Word", newWordMatcher())
)

func newFlagMatcher() parsly.Matcher {
	return &flagMatcher{}
}

func newHereStringMatcher() parsly.Matcher {
	return &hereStringMatcher{}
}

func newQuotedMatcher() parsly.Matcher {
	return &quotedMatcher{}
}

func newWordMatcher() parsly.Matcher {
	return &wordMatcher{}
}

// flagMatcher matches a -Name style flag
type flagMatcher struct{}

func (m *flagMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	if pos >= size || input[pos] != '-' {
		return 0
	}
	if pos+1 >= size || !isLetter(input[pos+1]) {
		return 0
	}
	matched := 1
	for i := pos + 1; i < size; i++ {
		if isLetter(input[i]) || isDigit(input[i]) {
			matched++
			continue
		}
		break
	}
	return matched
}

// hereStringMatcher matches @"…"@ or @'…'@ spanning to the last closing
// delimiter; the span is not nested-aware.
type hereStringMatcher struct{}

func (m *hereStringMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	if pos+1 >= size || input[pos] != '@' {
		return 0
	}
	quote := input[pos+1]
	if quote != '"' && quote != '\'' {
		return 0
	}
	end := -1
	for i := size - 1; i > pos+1; i-- {
		if input[i] == '@' && input[i-1] == quote {
			end = i
			break
		}
	}
	if end == -1 {
		return 0
	}
	return end - pos + 1
}

// quotedMatcher matches a single- or double-quoted span honouring backslash
// escapes.
type quotedMatcher struct{}

func (m *quotedMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	if pos >= size {
		return 0
	}
	quote := input[pos]
	if quote != '"' && quote != '\'' {
		return 0
	}
	for i := pos + 1; i < size; i++ {
		if input[i] == '\\' {
			i++
			continue
		}
		if input[i] == quote {
			return i - pos + 1
		}
	}
	return 0
}

// wordMatcher matches any non-whitespace run
type wordMatcher struct{}

func (m *wordMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	matched := 0
	for i := pos; i < size; i++ {
		if input[i] == ' ' || input[i] == '\t' || input[i] == '\n' || input[i] == '\r' {
			break
		}
		matched++
	}
	return matched
}

// Helper functions
func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
