package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseForms(t *testing.T) {
	var (
		out     string
		quiet   bool
		jobs    int
		include []string
	)
	fs := NewFlagSet("t")
	fs.String(&out, "output", "o", "a.tac", "Output file", "file")
	fs.Bool(&quiet, "quiet", "q", false, "Quiet")
	fs.Int(&jobs, "jobs", "j", 1, "Jobs", "n")
	fs.List(&include, "include", "I", nil, "Include", "dir")

	require.NoError(t, fs.Parse([]string{
		"--output=x.tac", "-q", "-j4", "-I", "a", "--include", "b", "in.ast", "--", "-not-a-flag",
	}))
	assert.Equal(t, "x.tac", out)
	assert.True(t, quiet)
	assert.Equal(t, 4, jobs)
	assert.Equal(t, []string{"a", "b"}, include)
	assert.Equal(t, []string{"in.ast", "-not-a-flag"}, fs.Args())
}

func TestParseErrors(t *testing.T) {
	var n int
	fs := NewFlagSet("t")
	fs.Int(&n, "jobs", "j", 1, "Jobs", "n")

	assert.EqualError(t, fs.Parse([]string{"--nope"}), "unknown flag: --nope")
	assert.EqualError(t, fs.Parse([]string{"--jobs"}), "flag needs an argument: -jobs")
	assert.ErrorContains(t, fs.Parse([]string{"--jobs=x"}), "invalid integer value 'x'")
}

func TestFlagGroupPairs(t *testing.T) {
	on, off := new(bool), new(bool)
	fs := NewFlagSet("t")
	fs.AddFlagGroup("Feature Flags", "", "feature", "Available Features:", []FlagGroupEntry{
		{Name: "recursion", Prefix: "F", Usage: "Allow recursion", Enabled: on, Disabled: off},
	})
	require.NotNil(t, fs.Lookup("Frecursion"))
	require.NotNil(t, fs.Lookup("Fno-recursion"))

	require.NoError(t, fs.Parse([]string{"-Fno-recursion"}))
	assert.False(t, *on)
	assert.True(t, *off)
}

func TestAppRun(t *testing.T) {
	var stdout, stderr bytes.Buffer
	var got []string
	app := NewApp("tacc")
	app.Synopsis = "[options] <file.ast>"
	app.Stdout, app.Stderr = &stdout, &stderr
	app.Action = func(args []string) error { got = args; return nil }

	require.NoError(t, app.Run([]string{"a.ast", "b.ast"}))
	assert.Equal(t, []string{"a.ast", "b.ast"}, got)

	app = NewApp("tacc")
	app.Stdout, app.Stderr = &stdout, &stderr
	assert.Error(t, app.Run([]string{"--bogus"}))
	assert.Contains(t, stderr.String(), "Run 'tacc --help'")
}

func TestHelpPage(t *testing.T) {
	var verbose bool
	app := NewApp("tacc")
	app.Synopsis = "[options] <file.ast>"
	app.Description = "Lowers programs to three-address code."
	app.Authors = []string{"someone"}
	app.Since = 2024
	app.FlagSet.Bool(&verbose, "verbose", "v", false, "Talk more")
	app.FlagSet.AddFlagGroup("Warning Flags", "", "warning", "Available Warnings:", []FlagGroupEntry{
		{Name: "shadow", Prefix: "W", Usage: "Warn on shadowing", Enabled: new(bool), Disabled: new(bool)},
		{Name: "extra", Prefix: "W", Usage: "Extra warnings", Enabled: new(bool), Disabled: new(bool), Default: true},
	})

	page := app.HelpPage(100)
	assert.Contains(t, page, "tacc [options] <file.ast>")
	assert.Contains(t, page, "-v, --verbose")
	assert.Contains(t, page, "-W<warning>")
	assert.Contains(t, page, "-Wno-<warning>")
	assert.NotContains(t, page, "--Wshadow", "group members are listed under their group")

	extra := strings.Index(page, "extra")
	shadow := strings.Index(page, "shadow")
	assert.Less(t, extra, shadow, "group entries are sorted")
	assert.Contains(t, page, "|x|")
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, []string{"one two", "three"}, wrapText("one two three", 8))
	assert.Empty(t, wrapText("   ", 10))
}
