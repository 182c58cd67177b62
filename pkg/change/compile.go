package change

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"gitlab.com/tozd/go/errors"
)

// baseOptions are applied to every compiled rule. ECMAScript keeps the
// pattern dialect rule lists were written in.
const baseOptions = regexp2.ECMAScript | regexp2.Multiline

// ErrInvalidUTF8 is returned for text that is not valid UTF-8. The engine
// works on runes, so such text is never rewritten.
var ErrInvalidUTF8 = errors.Base("text is not valid UTF-8")

// Line and word assertions as JavaScript defines them: lines end at \n, \r,
// U+2028 and U+2029, and word characters are [A-Za-z0-9_] only.
const (
	lineStart   = `(?:(?<![\s\S])|(?<=[\n\r\u2028\u2029]))`
	lineEnd     = `(?:(?=[\n\r\u2028\u2029])|(?![\s\S]))`
	wordBound   = `(?:(?<=\w)(?!\w)|(?<!\w)(?=\w))`
	wordInbound = `(?:(?<=\w)(?=\w)|(?<!\w)(?!\w))`
)

// Replacer is a compiled Change. A Replacer built from an empty matcher is
// the identity.
type Replacer struct {
	change  Change
	re      *regexp2.Regexp
	named   bool
	numbers map[int]bool
}

// Pattern returns the regular expression a change compiles to.
func Pattern(c Change) string {
	core := c.Matcher
	if !c.IsUsingRegEx {
		core = regexp2.Escape(c.Matcher)
	}
	if c.IsWholeWords {
		return `\b(?:` + core + `)\b`
	}
	return core
}

// RegexOptions returns the engine options a change compiles with.
func RegexOptions(c Change) regexp2.RegexOptions {
	opts := regexp2.RegexOptions(baseOptions)
	if !c.IsCaseSensitive {
		opts |= regexp2.IgnoreCase
	}
	return opts
}

// Flags renders the options the way the rule author thinks of them.
func Flags(c Change) string {
	if c.IsCaseSensitive {
		return "gm"
	}
	return "gim"
}

// Compile turns a change into a Replacer. A regex matcher that does not
// parse yields an *InvalidPatternError.
func Compile(c Change) (*Replacer, error) {
	r := &Replacer{change: c}
	if c.IsEmpty() {
		return r, nil
	}

	pattern := Pattern(c)
	if _, err := regexp2.Compile(pattern, RegexOptions(c)); err != nil {
		return nil, &InvalidPatternError{
			Index:   -1,
			Matcher: c.Matcher,
			Pattern: pattern,
			Err:     err,
		}
	}

	// errors are reported against the pattern as written; the engine runs
	// the one with JavaScript assertions.
	re, err := regexp2.Compile(jsAssertions(pattern), RegexOptions(c))
	if err != nil {
		return nil, &InvalidPatternError{
			Index:   -1,
			Matcher: c.Matcher,
			Pattern: pattern,
			Err:     err,
		}
	}

	r.re = re
	r.numbers = map[int]bool{}
	for _, n := range re.GetGroupNumbers() {
		r.numbers[n] = true
	}
	for _, name := range re.GetGroupNames() {
		if _, err := strconv.Atoi(name); err != nil {
			r.named = true
			break
		}
	}
	return r, nil
}

// CompileList compiles every change in order. The returned slice has one
// slot per change; slots for invalid rules are nil and the matching errors
// carry the rule index.
func CompileList(list List) ([]*Replacer, []*InvalidPatternError) {
	replacers := make([]*Replacer, len(list))
	var errs []*InvalidPatternError
	for i, c := range list {
		r, err := Compile(c)
		if err != nil {
			perr := err.(*InvalidPatternError)
			perr.Index = i
			errs = append(errs, perr)
			continue
		}
		replacers[i] = r
	}
	return replacers, errs
}

// Change returns the rule the replacer was compiled from.
func (r *Replacer) Change() Change {
	return r.change
}

// Replace replaces every match in text and returns the new text together
// with the number of replacements made.
func (r *Replacer) Replace(text string) (string, int, error) {
	if r == nil || r.re == nil {
		return text, 0, nil
	}
	if !utf8.ValidString(text) {
		return text, 0, errors.WithStack(ErrInvalidUTF8)
	}

	var runes []rune
	count := 0
	out, err := r.re.ReplaceFunc(text, func(m regexp2.Match) string {
		if runes == nil {
			runes = []rune(text)
		}
		count++
		return r.expand(runes, &m)
	}, -1, -1)
	if err != nil {
		return text, 0, err
	}
	return out, count, nil
}

// Transform is Replace without the bookkeeping; an engine error leaves the
// text untouched.
func (r *Replacer) Transform(text string) string {
	out, _, err := r.Replace(text)
	if err != nil {
		return text
	}
	return out
}

// jsAssertions rewrites ^ $ \b and \B outside character classes into
// lookarounds with JavaScript semantics. Everything else is copied as is.
func jsAssertions(pattern string) string {
	var b strings.Builder
	inClass := false
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		switch {
		case ch == '\\' && i+1 < len(pattern):
			next := pattern[i+1]
			i++
			switch {
			case !inClass && next == 'b':
				b.WriteString(wordBound)
			case !inClass && next == 'B':
				b.WriteString(wordInbound)
			default:
				b.WriteByte(ch)
				b.WriteByte(next)
			}
		case inClass:
			if ch == ']' {
				inClass = false
			}
			b.WriteByte(ch)
		case ch == '[':
			inClass = true
			b.WriteByte(ch)
			// negation, not a line start
			if i+1 < len(pattern) && pattern[i+1] == '^' {
				b.WriteByte('^')
				i++
			}
		case ch == '^':
			b.WriteString(lineStart)
		case ch == '$':
			b.WriteString(lineEnd)
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}
