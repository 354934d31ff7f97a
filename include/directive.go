package include

import (
	"strings"

	"github.com/dlclark/regexp2"
)

var (
	// Group 2 holds a path relative to the including file, group 3 a module path.
	directiveRegexp = regexp2.MustCompile(
		`^\s*#include(?=[<'"\s](?!['"<>.\\/\s;]*$))\s*(?:(['"]?)\s*([^'"<>:*?|]+?)\s*\1|<(?!\s*(?:\.*[/\\]|\.{2,}))\s*([^'"<>:*?|]+?)\s*>)[\s;]*$`,
		regexp2.ECMAScript|regexp2.Multiline)

	// Matches anything that still looks like a directive once valid ones are removed.
	suspectRegexp = regexp2.MustCompile(
		`^\s*#\s*include(?:[<'"]|\s(?!\s*$)).*$`,
		regexp2.ECMAScript|regexp2.Multiline)
)

// Directive is one valid #include line.
type Directive struct {
	// Text is the matched directive, surrounding whitespace included.
	Text string
	// ContextPath is set for quoted or bare paths, ModulePath for <...> paths.
	ContextPath string
	ModulePath  string
	// Start and End are rune offsets of Text in the source.
	Start, End int
}

// ParseDirectives returns the valid directives of source in textual order.
func ParseDirectives(source []rune) []Directive {
	var directives []Directive
	m, _ := directiveRegexp.FindRunesMatch(source)
	for m != nil {
		directives = append(directives, Directive{
			Text:        m.String(),
			ContextPath: m.GroupByNumber(2).String(),
			ModulePath:  m.GroupByNumber(3).String(),
			Start:       m.Index,
			End:         m.Index + m.Length,
		})
		m, _ = directiveRegexp.FindNextMatch(m)
	}
	return directives
}

// SuspectDirectives returns the trimmed lines of content that look like malformed directives.
func SuspectDirectives(content string) []string {
	var suspects []string
	m, _ := suspectRegexp.FindStringMatch(content)
	for m != nil {
		suspects = append(suspects, strings.TrimSpace(m.String()))
		m, _ = suspectRegexp.FindNextMatch(m)
	}
	return suspects
}

// stripDirectives removes the directives from source and drops the line break that
// directly follows each removed directive.
func stripDirectives(source []rune, directives []Directive) string {
	var b strings.Builder
	last := 0
	for _, d := range directives {
		b.WriteString(trimLeadingNewline(string(source[last:d.Start])))
		last = d.End
	}
	b.WriteString(trimLeadingNewline(string(source[last:])))
	return b.String()
}

func trimLeadingNewline(s string) string {
	if strings.HasPrefix(s, "\r\n") {
		return s[2:]
	}
	return strings.TrimPrefix(s, "\n")
}
