package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/multichange/cmd/multichange/opts"
	"github.com/walteh/multichange/pkg/change"
	"github.com/walteh/multichange/pkg/session"
	"github.com/walteh/multichange/pkg/text"
)

// NewRuleCmd creates the rule command group, which edits the session rule
// list. Rules are numbered from 1 as they are listed.
func NewRuleCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rule",
		Short: "Edit the session rule list",
	}

	cmd.AddCommand(
		newRuleAddCmd(opts),
		newRuleRemoveCmd(opts),
		newRuleMoveCmd(opts),
		newRuleToggleCmd(opts),
		newRuleSetCmd(opts),
		newRuleListCmd(opts),
		newRuleCheckCmd(opts),
	)

	return cmd
}

// parseIndex turns a 1-based rule number into a list index
func parseIndex(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, errors.Errorf("invalid rule number %q", arg)
	}
	return n - 1, nil
}

// editState loads the session, applies edit and saves it.
func editState(ctx context.Context, opts *opts.RootOpts, edit func(st *session.State) error) (*session.State, error) {
	st, err := opts.LoadState(ctx)
	if err != nil {
		return nil, err
	}
	if err := edit(st); err != nil {
		return nil, err
	}
	if err := opts.SaveState(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func newRuleAddCmd(opts *opts.RootOpts) *cobra.Command {
	var c change.Change

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a rule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := editState(cmd.Context(), opts, func(st *session.State) error {
				i := st.Add()
				st.Changes[i] = c
				return nil
			})
			if err != nil {
				return err
			}
			opts.UserLogger.LogStateChange(fmt.Sprintf("Added rule %d", st.Len()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&c.Matcher, "find", "f", "", "search pattern")
	cmd.Flags().StringVarP(&c.Resolver, "replace", "r", "", "replacement template")
	cmd.Flags().BoolVar(&c.IsCaseSensitive, "case", false, "match case")
	cmd.Flags().BoolVar(&c.IsWholeWords, "word", false, "match whole words only")
	cmd.Flags().BoolVar(&c.IsUsingRegEx, "regex", false, "treat the pattern as a regular expression")

	return cmd
}

func newRuleRemoveCmd(opts *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <n>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a rule",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			if _, err := editState(cmd.Context(), opts, func(st *session.State) error {
				return st.Remove(i)
			}); err != nil {
				return err
			}
			opts.UserLogger.LogStateChange(fmt.Sprintf("Deleted rule %d", i+1))
			return nil
		},
	}
}

func newRuleMoveCmd(opts *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "mv <n> <m>",
		Short: "Swap two rules",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			j, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			if _, err := editState(cmd.Context(), opts, func(st *session.State) error {
				return st.Move(i, j)
			}); err != nil {
				return err
			}
			opts.UserLogger.LogStateChange(fmt.Sprintf("Swapped rules %d and %d", i+1, j+1))
			return nil
		},
	}
}

func newRuleToggleCmd(opts *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <n> <case|word|regex> | toggle all-files",
		Short: "Flip an option of a rule, or the all files setting",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if args[0] != "all-files" {
					return errors.Errorf("unknown setting %q", args[0])
				}
				st, err := editState(cmd.Context(), opts, func(st *session.State) error {
					st.ToggleMultiEditor()
					return nil
				})
				if err != nil {
					return err
				}
				opts.UserLogger.LogStateChange(fmt.Sprintf("Apply changes to %s", target(st.MultiEditor)))
				return nil
			}

			i, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			opt, ok := change.ParseOption(args[1])
			if !ok {
				return errors.Errorf("unknown option %q, options: case, word, regex", args[1])
			}
			st, err := editState(cmd.Context(), opts, func(st *session.State) error {
				return st.Toggle(i, opt)
			})
			if err != nil {
				return err
			}
			opts.UserLogger.LogStateChange(fmt.Sprintf("Rule %d %s: %t", i+1, opt, st.Changes[i].Enabled(opt)))
			return nil
		},
	}
}

func newRuleSetCmd(opts *opts.RootOpts) *cobra.Command {
	var find, replace string

	cmd := &cobra.Command{
		Use:   "set <n>",
		Short: "Change the find or replace text of a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			setFind, setReplace := cmd.Flags().Changed("find"), cmd.Flags().Changed("replace")
			if !setFind && !setReplace {
				return errors.New("nothing to set, pass --find or --replace")
			}
			if _, err := editState(cmd.Context(), opts, func(st *session.State) error {
				if setFind {
					if err := st.SetMatcher(i, find); err != nil {
						return err
					}
				}
				if setReplace {
					return st.SetResolver(i, replace)
				}
				return nil
			}); err != nil {
				return err
			}
			opts.UserLogger.LogStateChange(fmt.Sprintf("Updated rule %d", i+1))
			return nil
		},
	}

	cmd.Flags().StringVarP(&find, "find", "f", "", "search pattern")
	cmd.Flags().StringVarP(&replace, "replace", "r", "", "replacement template")

	return cmd
}

func newRuleListCmd(opts *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the session rule list",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.LoadState(cmd.Context())
			if err != nil {
				return err
			}
			return opts.UserLogger.LogRules(st.Changes, st.MultiEditor)
		},
	}
}

func newRuleCheckCmd(opts *opts.RootOpts) *cobra.Command {
	var rulesFile string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report rules whose pattern does not compile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, _, err := opts.Rules(cmd.Context(), rulesFile)
			if err != nil {
				return err
			}

			for i, c := range list {
				if c.IsEmpty() {
					opts.UserLogger.LogValidation(false, fmt.Sprintf("rule %d has an empty pattern and does nothing", i+1), nil)
				}
			}

			if err := text.NewBatchReplacer().ValidateRules(list); err != nil {
				_, perrs := change.CompileList(list)
				opts.UserLogger.LogPatternErrors(perrs)
				return errors.Errorf("%d of %d rules are invalid", len(perrs), len(list))
			}

			opts.UserLogger.LogValidation(true, fmt.Sprintf("%d rules are valid", len(list)), nil)
			return nil
		},
	}

	cmd.Flags().StringVarP(&rulesFile, "rules", "r", "", "check a JSON rule file instead of the session")

	return cmd
}

func target(multi bool) string {
	if multi {
		return "all files"
	}
	return "active tab"
}
