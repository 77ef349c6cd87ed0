package casefile

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"tlog.app/go/errors"

	"github.com/xplshn/tacc/pkg/compiler"
	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/typeChecker"
)

// Outcome is what compiling a case produced.
type Outcome struct {
	Output string   // rendered 3AC, empty when analysis failed
	Errors []string // error kinds in report order
	Err    error    // pipeline failure other than semantic errors
}

// Run compiles the case input with a fresh default config plus the case's
// flags.
func (c *Case) Run(ctx context.Context) Outcome {
	cfg := config.NewConfig()
	for _, f := range c.Flags {
		if err := cfg.ApplyFlag(f); err != nil {
			return Outcome{Err: errors.Wrap(err, "flags")}
		}
	}

	res, err := compiler.CompileString(ctx, cfg, c.Name, c.Input.Content)
	var out Outcome
	if res != nil && res.Checker != nil {
		for _, d := range res.Checker.Errors() {
			out.Errors = append(out.Errors, typeChecker.KindName(d.Kind))
		}
	}
	switch {
	case err == nil:
		out.Output, out.Err = res.Render(cfg, "tac")
	case !errors.Is(err, compiler.ErrSemantic):
		out.Err = err
	}
	return out
}

// Diff compares an outcome against the case expectations and returns a
// readable report, empty when everything matches.
func (c *Case) Diff(o Outcome) string {
	var sb strings.Builder
	if o.Err != nil {
		fmt.Fprintf(&sb, "compile failed: %v\n", o.Err)
		return sb.String()
	}
	if c.TAC != nil {
		want := strings.TrimRight(c.TAC.Content, "\n")
		got := strings.TrimRight(o.Output, "\n")
		if d := cmp.Diff(strings.Split(want, "\n"), strings.Split(got, "\n")); d != "" {
			fmt.Fprintf(&sb, "3AC mismatch (-want +got):\n%s", d)
		}
	}
	want := c.ExpectedErrors()
	if d := cmp.Diff(want, o.Errors, cmpopts.EquateEmpty()); d != "" {
		fmt.Fprintf(&sb, "error kinds mismatch (-want +got):\n%s", d)
	}
	return sb.String()
}
