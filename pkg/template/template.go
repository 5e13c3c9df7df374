package template

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/arthur-debert/execfmt/pkg/errors"
)

// Placeholder names recognized inside {{ }}.
const (
	FilePath    = "file_path"
	FileText    = "file_text"
	LineWidth   = "line_width"
	UseTabs     = "use_tabs"
	IndentWidth = "indent_width"
	Cwd         = "cwd"
	Timeout     = "timeout"
)

var placeholders = map[string]struct{}{
	FilePath:    {},
	FileText:    {},
	LineWidth:   {},
	UseTabs:     {},
	IndentWidth: {},
	Cwd:         {},
	Timeout:     {},
}

// Placeholders returns the recognized placeholder names in sorted order.
func Placeholders() []string {
	names := make([]string, 0, len(placeholders))
	for name := range placeholders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Vars holds the runtime values substituted into a command template.
type Vars struct {
	FilePath    string
	FileText    string
	LineWidth   int
	UseTabs     bool
	IndentWidth int
	Cwd         string
	// Timeout in whole seconds.
	Timeout int
}

func (v Vars) lookup(name string) string {
	switch name {
	case FilePath:
		return v.FilePath
	case FileText:
		return v.FileText
	case LineWidth:
		return strconv.Itoa(v.LineWidth)
	case UseTabs:
		return strconv.FormatBool(v.UseTabs)
	case IndentWidth:
		return strconv.Itoa(v.IndentWidth)
	case Cwd:
		return v.Cwd
	case Timeout:
		return strconv.Itoa(v.Timeout)
	}
	return ""
}

// segment is either literal text or a placeholder reference.
type segment struct {
	text        string
	placeholder string
}

// Command is a parsed command template. It is immutable and safe for
// concurrent use.
type Command struct {
	source string
	words  [][]segment
	uses   map[string]bool
}

// Compile tokenizes a command template and resolves its placeholders.
// Words are split on unquoted whitespace; single and double quotes group
// words and are removed. Placeholders are resolved per word, so a value
// containing spaces never splits an argument.
func Compile(command string) (*Command, error) {
	words, err := splitWords(command)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 || words[0] == "" {
		return nil, errors.New(errors.ErrTemplateEmpty, "expected to find a command name").
			WithDetail("command", command)
	}

	c := &Command{
		source: command,
		words:  make([][]segment, 0, len(words)),
		uses:   make(map[string]bool),
	}
	for _, word := range words {
		segs, err := parseWord(word)
		if err != nil {
			return nil, err.WithDetail("command", command)
		}
		for _, s := range segs {
			if s.placeholder != "" {
				c.uses[s.placeholder] = true
			}
		}
		c.words = append(c.words, segs)
	}
	return c, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(command string) *Command {
	c, err := Compile(command)
	if err != nil {
		panic(err)
	}
	return c
}

// Render compiles and renders a template in one step.
func Render(command string, vars Vars) (string, []string, error) {
	c, err := Compile(command)
	if err != nil {
		return "", nil, err
	}
	return c.Render(vars)
}

// Render substitutes vars and returns the program name and its arguments.
func (c *Command) Render(vars Vars) (string, []string, error) {
	rendered := make([]string, len(c.words))
	for i, segs := range c.words {
		var b strings.Builder
		for _, s := range segs {
			if s.placeholder != "" {
				b.WriteString(vars.lookup(s.placeholder))
				continue
			}
			b.WriteString(s.text)
		}
		rendered[i] = b.String()
	}
	if rendered[0] == "" {
		return "", nil, errors.New(errors.ErrTemplateEmpty, "command name rendered to an empty string").
			WithDetail("command", c.source)
	}
	return rendered[0], rendered[1:], nil
}

// Uses reports whether the template references the named placeholder.
func (c *Command) Uses(name string) bool {
	return c.uses[name]
}

// String returns the template source.
func (c *Command) String() string {
	return c.source
}

func parseWord(word string) ([]segment, *errors.ExecfmtError) {
	var segs []segment
	rest := word
	for {
		open := strings.Index(rest, "{{")
		if open < 0 {
			if rest != "" {
				segs = append(segs, segment{text: rest})
			}
			return segs, nil
		}
		if open > 0 {
			segs = append(segs, segment{text: rest[:open]})
		}
		end := strings.Index(rest[open+2:], "}}")
		if end < 0 {
			return nil, errors.Newf(errors.ErrTemplateSyntax, "unterminated placeholder in %q", word)
		}
		name := strings.TrimSpace(rest[open+2 : open+2+end])
		if _, ok := placeholders[name]; !ok {
			return nil, errors.Newf(errors.ErrTemplateUnknownPlaceholder, "unknown placeholder {{%s}}", name).
				WithDetail("placeholder", name)
		}
		segs = append(segs, segment{placeholder: name})
		rest = rest[open+2+end+2:]
	}
}

// closingBraces returns the index of the "}}" at or after from, or -1.
func closingBraces(runes []rune, from int) int {
	for j := from; j+1 < len(runes); j++ {
		if runes[j] == '}' && runes[j+1] == '}' {
			return j
		}
	}
	return -1
}

// splitWords splits s on unquoted whitespace. A quoted empty string yields
// an empty word.
func splitWords(s string) ([]string, error) {
	var (
		words    []string
		cur      strings.Builder
		inWord   bool
		inSingle bool
		inDouble bool
	)
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case inSingle:
			if r == '\'' {
				inSingle = false
			} else {
				cur.WriteRune(r)
			}
		case inDouble:
			switch {
			case r == '\\' && i+1 < len(runes) && (runes[i+1] == '"' || runes[i+1] == '\\'):
				i++
				cur.WriteRune(runes[i])
			case r == '"':
				inDouble = false
			default:
				cur.WriteRune(r)
			}
		case r == '{' && i+1 < len(runes) && runes[i+1] == '{':
			// Whitespace inside braces belongs to the placeholder.
			end := closingBraces(runes, i+2)
			if end < 0 {
				cur.WriteRune(r)
			} else {
				cur.WriteString(string(runes[i : end+2]))
				i = end + 1
			}
			inWord = true
		case unicode.IsSpace(r):
			if inWord {
				words = append(words, cur.String())
				cur.Reset()
				inWord = false
			}
		case r == '\'':
			inSingle, inWord = true, true
		case r == '"':
			inDouble, inWord = true, true
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if inSingle || inDouble {
		return nil, errors.Newf(errors.ErrTemplateSyntax, "unterminated quote in %q", s)
	}
	if inWord {
		words = append(words, cur.String())
	}
	return words, nil
}
