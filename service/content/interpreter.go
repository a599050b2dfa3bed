package content

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/viant/parsly"
)

// Style identifies the quoting form the value was written in.
type Style int

const (
	StylePlain Style = iota
	StyleSingle
	StyleDouble
	StyleTriple
	StyleHereString
)

// Command is a parsed content-writing command.
type Command struct {
	Verb  string
	Path  string
	Value string // raw text following -Value
}

// Append reports whether the verb appends rather than replaces content.
func (c *Command) Append() bool {
	return strings.EqualFold(c.Verb, "Add-Content")
}

// Content converts the raw -Value text into the literal bytes to write:
// the outer quoting form is stripped, backslash escapes are decoded for
// quoted and escaped plain text, and script files are dedented.
func (c *Command) Content() string {
	value, style := extractValue(c.Value)
	if style == StyleDouble || style == StyleSingle ||
		(style == StylePlain && strings.Contains(value, `\n`)) {
		value = decodeEscapes(value)
	}
	if isScriptPath(c.Path) {
		value = dedent(value)
		value = strings.ReplaceAll(value, `\"\"\"`, `"""`)
	}
	return value
}

// Parse recognises a Set-Content/Add-Content/New-Item style command. The
// -Path flag is located anywhere in the command; the value is everything
// after the single -Value flag, which must appear exactly once.
func Parse(command string) (*Command, error) {
	lower := strings.ToLower(command)
	switch occurrences := strings.Count(lower, "-value"); occurrences {
	case 0:
		return nil, fmt.Errorf("command is missing -Value flag: %v", command)
	case 1:
	default:
		return nil, fmt.Errorf("expected exactly one -Value flag, found %v in: %v", occurrences, command)
	}
	verb, path, err := scanPathFlag(command)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("command is missing -Path flag: %v", command)
	}
	idx := strings.Index(lower, "-value")
	value := strings.TrimSpace(command[idx+len("-value"):])
	return &Command{Verb: verb, Path: path, Value: value}, nil
}

// scanPathFlag tokenizes the command, returning the leading verb and the
// value of the -Path flag when present.
func scanPathFlag(command string) (verb, path string, err error) {
	cursor := parsly.NewCursor("", []byte(command), 0)

	matched := cursor.MatchAfterOptional(whitespaceToken, wordToken)
	if matched.Code != wordCode {
		return "", "", cursor.NewError(wordToken)
	}
	verb = matched.Text(cursor)

	for cursor.Pos < cursor.InputSize {
		_ = cursor.MatchOne(whitespaceToken)
		if cursor.Pos >= cursor.InputSize {
			break
		}
		matched = cursor.MatchAny(flagToken, hereStringToken, quotedToken, wordToken)
		switch matched.Code {
		case flagCode:
			if !strings.EqualFold(matched.Text(cursor), "-Path") {
				continue
			}
			_ = cursor.MatchOne(whitespaceToken)
			value := cursor.MatchAny(hereStringToken, quotedToken, wordToken)
			switch value.Code {
			case hereStringCode, quotedCode, wordCode:
				path = strings.Trim(value.Text(cursor), `"'`)
			default:
				return "", "", fmt.Errorf("-Path flag has no value: %v", command)
			}
		case hereStringCode, quotedCode, wordCode:
			continue
		default:
			// unmatchable byte, skip it
			cursor.Pos++
		}
	}
	return verb, path, nil
}

// Redirection is a parsed `content > path` command.
type Redirection struct {
	Path    string
	Content string
	Append  bool
}

// ParseRedirection extracts the literal content and destination from an
// output redirection command. The second return is false when the left-hand
// side is not a recognised literal-producing form, in which case the command
// should be forwarded to the shell instead.
func ParseRedirection(command string) (*Redirection, bool) {
	idx := strings.LastIndex(command, ">")
	if idx <= 0 || idx+1 >= len(command) {
		return nil, false
	}
	ret := &Redirection{}
	left := command[:idx]
	if strings.HasSuffix(left, ">") {
		ret.Append = true
		left = left[:len(left)-1]
	}
	left = strings.TrimSpace(left)
	ret.Path = strings.Trim(strings.TrimSpace(command[idx+1:]), `"'`)
	if ret.Path == "" {
		return nil, false
	}

	switch {
	case strings.HasPrefix(left, "$") && strings.Contains(left, "@'"):
		start := strings.Index(left, "@'")
		end := strings.LastIndex(left, "'@")
		if end <= start {
			return nil, false
		}
		ret.Content = trimBlockNewlines(left[start+2 : end])
		return ret, true
	case strings.HasPrefix(left, "echo "):
		text := strings.TrimSpace(left[len("echo "):])
		ret.Content = strings.Trim(text, `"'`)
		return ret, true
	}
	return nil, false
}

// extractValue strips the outer quoting form by priority: here-string,
// triple-quote block, double quoted, single quoted, plain. Spans run from
// the first opener to the last closer and are not nested-aware.
func extractValue(raw string) (string, Style) {
	trimmed := strings.TrimSpace(raw)
	for _, form := range []struct {
		open, close string
	}{
		{`@"`, `"@`},
		{`@'`, `'@`},
	} {
		if !strings.HasPrefix(trimmed, form.open) {
			continue
		}
		if last := strings.LastIndex(trimmed, form.close); last > 0 {
			return trimBlockNewlines(trimmed[len(form.open):last]), StyleHereString
		}
	}
	if strings.HasPrefix(trimmed, `"""`) {
		if last := strings.LastIndex(trimmed, `"""`); last >= 3 {
			return trimBlockNewlines(trimmed[3:last]), StyleTriple
		}
	}
	if strings.HasPrefix(trimmed, `"`) {
		if last := strings.LastIndex(trimmed, `"`); last >= 1 {
			return trimmed[1:last], StyleDouble
		}
	}
	if strings.HasPrefix(trimmed, `'`) {
		if last := strings.LastIndex(trimmed, `'`); last >= 1 {
			return trimmed[1:last], StyleSingle
		}
	}
	return trimmed, StylePlain
}

// decodeEscapes turns backslash escape sequences into the control characters
// they denote, so `\n` in the command source becomes an actual newline.
func decodeEscapes(text string) string {
	var builder strings.Builder
	builder.Grow(len(text))
	for i := 0; i < len(text); i++ {
		if text[i] != '\\' || i+1 >= len(text) {
			builder.WriteByte(text[i])
			continue
		}
		i++
		switch text[i] {
		case 'n':
			builder.WriteByte('\n')
		case 't':
			builder.WriteByte('\t')
		case 'r':
			builder.WriteByte('\r')
		case '"':
			builder.WriteByte('"')
		case '\'':
			builder.WriteByte('\'')
		case '\\':
			builder.WriteByte('\\')
		default:
			builder.WriteByte('\\')
			builder.WriteByte(text[i])
		}
	}
	return builder.String()
}

// dedent removes the common leading whitespace width across non-blank lines.
func dedent(text string) string {
	lines := strings.Split(text, "\n")
	width := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := 0
		for indent < len(line) && (line[indent] == ' ' || line[indent] == '\t') {
			indent++
		}
		if width == -1 || indent < width {
			width = indent
		}
	}
	if width <= 0 {
		return text
	}
	for i, line := range lines {
		if len(line) >= width {
			lines[i] = line[width:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.Join(lines, "\n")
}

// trimBlockNewlines drops the single newline that follows a block opener and
// precedes its closer.
func trimBlockNewlines(text string) string {
	text = strings.TrimPrefix(text, "\r\n")
	text = strings.TrimPrefix(text, "\n")
	text = strings.TrimSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\r")
	return text
}

var scriptExtensions = map[string]bool{
	".py":   true,
	".js":   true,
	".ts":   true,
	".go":   true,
	".sh":   true,
	".ps1":  true,
	".rb":   true,
	".java": true,
	".c":    true,
	".cpp":  true,
	".h":    true,
	".cs":   true,
	".php":  true,
}

func isScriptPath(path string) bool {
	return scriptExtensions[strings.ToLower(filepath.Ext(path))]
}
