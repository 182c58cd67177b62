package opts

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"

	"github.com/walteh/multichange/pkg/change"
)

// 📢 UserLogger provides user-friendly feedback about the rule list
type UserLogger struct {
	log zerolog.Logger // for debug/error logging
	out io.Writer
}

// 🎯 NewUserLogger creates a new user logger
func NewUserLogger(ctx context.Context, out io.Writer) *UserLogger {
	return &UserLogger{
		log: *zerolog.Ctx(ctx),
		out: out,
	}
}

// 📊 LogStateChange logs a change to the session
func (u *UserLogger) LogStateChange(description string) {
	pterm.Info.WithPrefix(pterm.Prefix{Text: "📦"}).WithWriter(u.out).Println(description)
	u.log.Info().Msg(description)
}

// ⚠️ LogWarning shows a host warning
func (u *UserLogger) LogWarning(description string) {
	pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).WithWriter(u.out).Println(description)
	u.log.Warn().Msg(description)
}

// 🔍 LogValidation logs validation results
func (u *UserLogger) LogValidation(valid bool, description string, err error) {
	if valid {
		pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).WithWriter(u.out).Println(description)
		u.log.Info().Msg(description)
		return
	}
	if err != nil {
		pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).WithWriter(u.out).Println(description)
		pterm.Error.WithWriter(u.out).Println(err)
		u.log.Error().Err(err).Msg(description)
		return
	}
	pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).WithWriter(u.out).Println(description)
	u.log.Warn().Msg(description)
}

// 🧩 LogPatternErrors reports the rules that were skipped
func (u *UserLogger) LogPatternErrors(perrs []*change.InvalidPatternError) {
	for _, perr := range perrs {
		u.LogValidation(false, fmt.Sprintf("rule %d skipped", perr.Index+1), perr)
	}
}

// 📋 LogRules renders the rule list as a table
func (u *UserLogger) LogRules(list change.List, multiEditor bool) error {
	if len(list) == 0 {
		pterm.Info.WithWriter(u.out).Println(`No find/replace operation. Run "multichange rule add" to add a change.`)
		return nil
	}

	data := pterm.TableData{{"#", "find", "replace", "case", "word", "regex"}}
	for i, c := range list {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			c.Matcher,
			c.Resolver,
			mark(c.IsCaseSensitive),
			mark(c.IsWholeWords),
			mark(c.IsUsingRegEx),
		})
	}

	if err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).WithWriter(u.out).Render(); err != nil {
		return err
	}

	target := "active tab"
	if multiEditor {
		target = "all files"
	}
	pterm.Info.WithWriter(u.out).Printfln("Apply changes to %s", target)
	return nil
}

func mark(on bool) string {
	if on {
		return "✓"
	}
	return ""
}
