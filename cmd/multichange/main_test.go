package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/multichange/pkg/change"
	"github.com/walteh/multichange/pkg/session"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	pterm.DisableStyling()
	os.Exit(m.Run())
}

func setupTestLogger(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.TestWriter{T: t}).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

// run executes the command tree in the current directory
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(setupTestLogger(t))
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, "", args...)
	require.NoError(t, err, "multichange %s\n%s", strings.Join(args, " "), out)
	return out
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func loadState(t *testing.T) *session.State {
	t.Helper()
	st, err := session.NewStore(session.DefaultFileName).Load(context.Background())
	require.NoError(t, err)
	return st
}

func TestApplyActiveFile(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, "a.txt", "hello world\n")

	mustRun(t, "rule", "add", "--find", "hello", "--replace", "bye")
	out := mustRun(t, "apply", "a.txt")

	assert.Equal(t, "bye world\n", readFile(t, "a.txt"))
	assert.Contains(t, out, "1 rules")
	assert.Contains(t, out, "active tab")
	assert.Contains(t, out, "modified")
	assert.Contains(t, out, "1 of 1 documents changed, 1 replacements")
}

func TestApplyDryRun(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, "a.txt", "hello world\n")

	mustRun(t, "rule", "add", "--find", "hello", "--replace", "bye")
	out := mustRun(t, "apply", "--dry-run", "a.txt")

	assert.Equal(t, "hello world\n", readFile(t, "a.txt"))
	assert.Contains(t, out, "(dry run)")
	assert.Contains(t, out, "-hello world\n")
	assert.Contains(t, out, "+bye world\n")
}

func TestApplyStdin(t *testing.T) {
	t.Chdir(t.TempDir())

	mustRun(t, "rule", "add", "--find", `(\w+)@(\w+)`, "--replace", "$2 at $1", "--regex")
	out, err := run(t, "me@home and you@work", "apply", "-")

	require.NoError(t, err)
	assert.Equal(t, "home at me and work at you", out)
}

func TestApplyNoActiveEditor(t *testing.T) {
	t.Chdir(t.TempDir())

	mustRun(t, "rule", "add", "--find", "x")
	out, err := run(t, "", "apply")

	require.Error(t, err)
	assert.Contains(t, out, "No active text editor")
}

func TestApplyAllTargets(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, ".multichange.yaml", "targets:\n  - \"**/*.txt\"\nignore:\n  - \"skip/**\"\n")
	writeFile(t, "a.txt", "foo")
	writeFile(t, "sub/b.txt", "foo foo")
	writeFile(t, "skip/c.txt", "foo")
	writeFile(t, "d.md", "foo")

	mustRun(t, "rule", "add", "--find", "foo", "--replace", "bar")
	out := mustRun(t, "apply", "--all")

	assert.Equal(t, "bar", readFile(t, "a.txt"))
	assert.Equal(t, "bar bar", readFile(t, "sub/b.txt"))
	assert.Equal(t, "foo", readFile(t, "skip/c.txt"))
	assert.Equal(t, "foo", readFile(t, "d.md"))
	assert.Contains(t, out, "all files")
	assert.Contains(t, out, "2 of 2 documents changed, 3 replacements")
}

func TestApplyRulesFile(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, "rules.json", `[{"matcher":"a","resolver":"b"},{"matcher":"b","resolver":"c"}]`)
	writeFile(t, "a.txt", "a")

	mustRun(t, "apply", "--rules", "rules.json", "a.txt")

	assert.Equal(t, "c", readFile(t, "a.txt"))
}

func TestApplyInvalidRuleIsSkipped(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, "a.txt", "abc")

	mustRun(t, "rule", "add", "--find", "(", "--regex")
	mustRun(t, "rule", "add", "--find", "b", "--replace", "x")
	out := mustRun(t, "apply", "a.txt")

	assert.Equal(t, "axc", readFile(t, "a.txt"))
	assert.Contains(t, out, "rule 1 skipped")
}

func TestRuleEditing(t *testing.T) {
	t.Chdir(t.TempDir())

	mustRun(t, "rule", "add", "--find", "one")
	mustRun(t, "rule", "add", "--find", "two")
	mustRun(t, "rule", "add", "--find", "three")
	mustRun(t, "rule", "mv", "1", "3")
	mustRun(t, "rule", "rm", "2")
	mustRun(t, "rule", "toggle", "1", "case")
	mustRun(t, "rule", "toggle", "2", "word")
	mustRun(t, "rule", "set", "2", "--replace", "2")
	mustRun(t, "rule", "toggle", "all-files")

	st := loadState(t)
	assert.Equal(t, change.List{
		{Matcher: "three", IsCaseSensitive: true},
		{Matcher: "one", Resolver: "2", IsWholeWords: true},
	}, st.Changes)
	assert.True(t, st.MultiEditor)

	out := mustRun(t, "rule", "list")
	assert.Contains(t, out, "three")
	assert.Contains(t, out, "Apply changes to all files")
}

func TestRuleErrors(t *testing.T) {
	t.Chdir(t.TempDir())
	mustRun(t, "rule", "add", "--find", "one")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "out_of_range", args: []string{"rule", "rm", "4"}, wantErr: "rule index out of range"},
		{name: "not_a_number", args: []string{"rule", "rm", "x"}, wantErr: `invalid rule number "x"`},
		{name: "zero", args: []string{"rule", "mv", "0", "1"}, wantErr: `invalid rule number "0"`},
		{name: "unknown_option", args: []string{"rule", "toggle", "1", "bold"}, wantErr: `unknown option "bold"`},
		{name: "nothing_to_set", args: []string{"rule", "set", "1"}, wantErr: "nothing to set"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	assert.Equal(t, change.List{{Matcher: "one"}}, loadState(t).Changes)
}

func TestRuleCheck(t *testing.T) {
	t.Chdir(t.TempDir())

	mustRun(t, "rule", "add", "--find", "ok")
	out := mustRun(t, "rule", "check")
	assert.Contains(t, out, "1 rules are valid")

	mustRun(t, "rule", "add", "--find", "[", "--regex")
	out, err := run(t, "", "rule", "check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 rules are invalid")
	assert.Contains(t, out, "rule 2 skipped")
}

func TestSaveAndImport(t *testing.T) {
	t.Chdir(t.TempDir())

	mustRun(t, "rule", "add", "--find", "hello", "--replace", "bye", "--case")
	mustRun(t, "save", "-o", "rules.json")

	data := readFile(t, "rules.json")
	assert.Contains(t, data, `  {`)
	assert.Contains(t, data, `"isCaseSensitive": true`)

	mustRun(t, "--state", "other.json", "import", "rules.json")
	st, err := session.NewStore("other.json").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, change.List{{Matcher: "hello", Resolver: "bye", IsCaseSensitive: true}}, st.Changes)
}

func TestSaveUntitled(t *testing.T) {
	t.Chdir(t.TempDir())

	mustRun(t, "rule", "add", "--find", "hello")
	out := mustRun(t, "save")

	assert.Contains(t, out, `"matcher": "hello"`)
}

func TestImportStdinLenient(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := run(t, `[{"matcher": 5, "resolver": "r"}, "junk"]`, "import", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 changes")

	assert.Equal(t, change.List{{Resolver: "r"}, {}}, loadState(t).Changes)
}

func TestImportMalformed(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, "bad.json", `{"matcher": "x"}`)

	mustRun(t, "rule", "add", "--find", "keep")
	out, err := run(t, "", "import", "bad.json")

	require.Error(t, err)
	assert.Contains(t, out, "not an array of changes")
	assert.Equal(t, change.List{{Matcher: "keep"}}, loadState(t).Changes)
}

func TestSchema(t *testing.T) {
	t.Chdir(t.TempDir())

	out := mustRun(t, "schema")
	assert.Contains(t, out, `"matcher"`)
	assert.Contains(t, out, `"isUsingRegEx"`)
}

func TestVersion(t *testing.T) {
	t.Chdir(t.TempDir())

	out := mustRun(t, "version")
	assert.Contains(t, out, "multichange version info")
	assert.Contains(t, out, "Regex:     github.com/dlclark/regexp2")
	assert.Contains(t, out, "State:     schema "+session.SchemaVersion)

	out = mustRun(t, "version", "--json")
	start := strings.Index(out, "{")
	require.GreaterOrEqual(t, start, 0, "version --json should print an object")

	var info VersionInfo
	require.NoError(t, json.NewDecoder(strings.NewReader(out[start:])).Decode(&info))
	assert.Equal(t, session.SchemaVersion, info.StateSchema)
	assert.Equal(t, "github.com/dlclark/regexp2", info.RegexEngine)
	assert.NotEmpty(t, info.GoVersion)
}
