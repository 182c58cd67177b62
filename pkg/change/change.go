package change

// Change is a single find/replace rule. Its JSON form uses the same field
// names the rule lists have always been exported with.
type Change struct {
	// Matcher is the search pattern, literal or regular expression
	Matcher string `json:"matcher" jsonschema:"description=Search pattern (literal text or regular expression),default="`

	// Resolver is the replacement template
	Resolver string `json:"resolver" jsonschema:"description=Replacement template; supports $1 $& $$ and $<name> substitutions,default="`

	// IsCaseSensitive disables case folding when set
	IsCaseSensitive bool `json:"isCaseSensitive" jsonschema:"description=Match case,default=false"`

	// IsWholeWords only matches on word boundaries when set
	IsWholeWords bool `json:"isWholeWords" jsonschema:"description=Match whole words only,default=false"`

	// IsUsingRegEx treats Matcher as a regular expression when set
	IsUsingRegEx bool `json:"isUsingRegEx" jsonschema:"description=Treat matcher as a regular expression,default=false"`
}

// List is an ordered batch of changes. Rules apply in list order and are
// identified only by their position.
type List []Change

// Option names one of the boolean toggles of a Change.
type Option string

const (
	OptionCaseSensitive Option = "case"
	OptionWholeWords    Option = "word"
	OptionRegEx         Option = "regex"
)

// Options lists every toggle in display order.
var Options = []Option{OptionCaseSensitive, OptionWholeWords, OptionRegEx}

// Toggle flips the named option.
func (c *Change) Toggle(opt Option) bool {
	switch opt {
	case OptionCaseSensitive:
		c.IsCaseSensitive = !c.IsCaseSensitive
	case OptionWholeWords:
		c.IsWholeWords = !c.IsWholeWords
	case OptionRegEx:
		c.IsUsingRegEx = !c.IsUsingRegEx
	default:
		return false
	}
	return true
}

// Enabled reports whether the named option is set.
func (c Change) Enabled(opt Option) bool {
	switch opt {
	case OptionCaseSensitive:
		return c.IsCaseSensitive
	case OptionWholeWords:
		return c.IsWholeWords
	case OptionRegEx:
		return c.IsUsingRegEx
	}
	return false
}

// IsEmpty reports whether the change has nothing to search for.
func (c Change) IsEmpty() bool {
	return c.Matcher == ""
}

// Clone returns a copy of the list that shares no backing array.
func (l List) Clone() List {
	out := make(List, len(l))
	copy(out, l)
	return out
}

// ParseOption resolves a user supplied option name.
func ParseOption(name string) (Option, bool) {
	switch name {
	case "case", "case-sensitive", "isCaseSensitive":
		return OptionCaseSensitive, true
	case "word", "whole-words", "isWholeWords":
		return OptionWholeWords, true
	case "regex", "regexp", "isUsingRegEx":
		return OptionRegEx, true
	}
	return "", false
}
