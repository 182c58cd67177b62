/*
Package change holds the rule model of multichange and turns rules into
text transformers.

A Change is one find/replace rule. Compile builds a Replacer from it:

  - literal matchers are escaped so they only ever match themselves
  - whole-word rules are wrapped in \b assertions
  - case sensitivity toggles the IgnoreCase option
  - every occurrence is replaced and ^/$ work per line

Patterns run on an ECMAScript-compatible engine and resolvers use the
familiar $1, $&, $$ and $<name> substitutions, so rule lists written for
the editor extension behave the same here.

Example:

	r, err := change.Compile(change.Change{Matcher: "(\\w+)@", Resolver: "$1 at ", IsUsingRegEx: true})
	if err != nil {
		var perr *change.InvalidPatternError
		if errors.As(err, &perr) {
			// attach perr.Message() to the rule
		}
	}
	out, n, err := r.Replace("me@example.com")

Lists are saved as indented JSON arrays and imported leniently with
Unmarshal.
*/
package change
