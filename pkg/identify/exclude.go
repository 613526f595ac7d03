package identify

import (
	"path"
	"strings"

	"github.com/odvcencio/swhid/pkg/swhid"
)

// Excluder decides whether a directory entry is left out of a tree.
// Patterns are fnmatch-style shell globs (*, ?, [...], [!...]) matched
// against the entry name only; a name is excluded when any pattern matches.
// Backslash has no special meaning. A class left unterminated makes the
// pattern invalid.
type Excluder struct {
	patterns []string

	// Literal patterns resolve through a map; the rest are matched in order.
	exact    map[string]struct{}
	wildcard []string
}

// NewExcluder compiles patterns. A malformed pattern is an InvalidInput
// error.
func NewExcluder(patterns []string) (*Excluder, error) {
	ex := &Excluder{
		patterns: append([]string(nil), patterns...),
		exact:    make(map[string]struct{}),
	}
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if isLiteralPattern(p) {
			ex.exact[p] = struct{}{}
			continue
		}
		glob := translateGlob(p)
		if _, err := path.Match(glob, ""); err != nil {
			return nil, swhid.Wrap(swhid.KindInvalidInput, "exclude pattern "+p, err)
		}
		ex.wildcard = append(ex.wildcard, glob)
	}
	return ex, nil
}

// Patterns returns the patterns the excluder was built from.
func (ex *Excluder) Patterns() []string {
	return append([]string(nil), ex.patterns...)
}

// Excluded reports whether name matches at least one pattern. Names that
// are not valid UTF-8 are decoded lossily for matching; the tree itself
// keeps the raw bytes.
func (ex *Excluder) Excluded(name string) bool {
	if ex == nil || (len(ex.exact) == 0 && len(ex.wildcard) == 0) {
		return false
	}
	name = strings.ToValidUTF8(name, "\uFFFD")
	if _, ok := ex.exact[name]; ok {
		return true
	}
	for _, glob := range ex.wildcard {
		if matched, _ := path.Match(glob, name); matched {
			return true
		}
	}
	return false
}

func isLiteralPattern(pattern string) bool {
	return !strings.ContainsAny(pattern, "*?[")
}

// translateGlob rewrites an fnmatch pattern into path.Match syntax:
// backslash is an ordinary character, "[!" negates a class, and a ']' or
// '^' opening a class is literal. An unterminated '[' is left as is so that
// path.Match rejects the pattern.
func translateGlob(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		switch ch {
		case '\\':
			b.WriteString(`\\`)
			continue
		case '[':
		default:
			b.WriteByte(ch)
			continue
		}

		j := i + 1
		if j < len(pattern) && pattern[j] == '!' {
			j++
		}
		if j < len(pattern) && pattern[j] == ']' {
			j++
		}
		for j < len(pattern) && pattern[j] != ']' {
			j++
		}
		if j >= len(pattern) {
			b.WriteByte('[')
			continue
		}

		class := pattern[i+1 : j]
		b.WriteByte('[')
		if strings.HasPrefix(class, "!") {
			b.WriteByte('^')
			class = class[1:]
		}
		for k := 0; k < len(class); k++ {
			c := class[k]
			switch {
			case c == '\\' || c == ']' || c == '^' || c == '[':
				b.WriteByte('\\')
			case c == '-' && (k == 0 || k == len(class)-1):
				b.WriteByte('\\')
			}
			b.WriteByte(c)
		}
		b.WriteByte(']')
		i = j
	}
	return b.String()
}
