package change

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// expand renders the resolver for one match using the substitution rules of
// String.prototype.replace: $$ $& $` $' $n $nn and $<name>. Anything else
// after a '$' is copied literally.
func (r *Replacer) expand(input []rune, m *regexp2.Match) string {
	tmpl := r.change.Resolver
	if !strings.Contains(tmpl, "$") {
		return tmpl
	}

	var b strings.Builder
	for i := 0; i < len(tmpl); i++ {
		ch := tmpl[i]
		if ch != '$' || i+1 >= len(tmpl) {
			b.WriteByte(ch)
			continue
		}

		next := tmpl[i+1]
		switch {
		case next == '$':
			b.WriteByte('$')
			i++
		case next == '&':
			b.WriteString(m.String())
			i++
		case next == '`':
			b.WriteString(string(input[:m.Index]))
			i++
		case next == '\'':
			b.WriteString(string(input[m.Index+m.Length:]))
			i++
		case isDigit(next):
			n, width := r.groupRef(tmpl[i+1:])
			if width == 0 {
				b.WriteByte('$')
				continue
			}
			b.WriteString(groupText(m.GroupByNumber(n)))
			i += width
		case next == '<' && r.named:
			end := strings.IndexByte(tmpl[i+2:], '>')
			if end < 0 {
				b.WriteByte('$')
				continue
			}
			name := tmpl[i+2 : i+2+end]
			b.WriteString(groupText(m.GroupByName(name)))
			i += end + 2
		default:
			b.WriteByte('$')
		}
	}
	return b.String()
}

// groupRef parses the digits following a '$'. A two digit reference wins
// when that group exists, otherwise a single digit one is tried. A zero
// width means the '$' is literal.
func (r *Replacer) groupRef(s string) (int, int) {
	if len(s) >= 2 && isDigit(s[1]) {
		if n := int(s[0]-'0')*10 + int(s[1]-'0'); n > 0 && r.numbers[n] {
			return n, 2
		}
	}
	if n := int(s[0] - '0'); n > 0 && r.numbers[n] {
		return n, 1
	}
	return 0, 0
}

func groupText(g *regexp2.Group) string {
	if g == nil || len(g.Captures) == 0 {
		return ""
	}
	return g.String()
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
