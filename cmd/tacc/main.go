package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/xplshn/tacc/pkg/cli"
	"github.com/xplshn/tacc/pkg/compiler"
	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/typeChecker"
	"github.com/xplshn/tacc/pkg/util"
)

type options struct {
	outFile     string
	backend     string
	profile     string
	dumpAST     bool
	quiet       bool
	interactive bool
}

func main() {
	app := cli.NewApp("tacc")
	app.Synopsis = "[options] <input.ast> ..."
	app.Description = "Type checks programs given as interchange trees and lowers them to three-address code."
	app.Authors = []string{"xplshn"}
	app.Repository = "<https://github.com/xplshn/tacc>"
	app.Since = 2025

	var opts options
	fs := app.FlagSet
	fs.String(&opts.outFile, "output", "o", "", "Write the listing to <file> instead of stdout.", "file")
	fs.String(&opts.backend, "backend", "b", "tac", "Output form (tac, listing).", "backend")
	fs.String(&opts.profile, "profile", "", "default", "Feature and warning profile (default, strict).", "profile")
	fs.Bool(&opts.dumpAST, "dump-ast", "d", false, "Print the parsed tree and exit.")
	fs.Bool(&opts.quiet, "quiet", "q", false, "Do not print progress lines.")
	fs.Bool(&opts.interactive, "interactive", "i", false, "Start the interactive prompt.")

	cfg := config.NewConfig()
	warningFlags, featureFlags := cfg.SetupFlagGroups(fs)

	app.Action = func(inputFiles []string) error {
		// profile first so explicit -W/-F flags win
		if err := cfg.ApplyProfile(opts.profile); err != nil {
			util.Fatal("%v", err)
		}
		cfg.ApplyGroups(warningFlags, featureFlags)

		ctx := tlog.ContextWithSpan(context.Background(), tlog.Root())

		if opts.interactive {
			return repl(ctx, cfg, opts)
		}
		if len(inputFiles) == 0 {
			util.Fatal("no input files specified.")
		}

		out := io.Writer(os.Stdout)
		if opts.outFile != "" {
			f, err := os.Create(opts.outFile)
			if err != nil {
				util.Fatal("could not create '%s': %v", opts.outFile, err)
			}
			defer f.Close()
			out = f
		}

		failed := false
		for _, path := range inputFiles {
			if err := compileFile(ctx, cfg, opts, path, out); err != nil {
				failed = true
				if !errors.Is(err, compiler.ErrSemantic) {
					fmt.Fprintf(os.Stderr, "tacc: %v\n", err)
				}
			}
		}
		if failed {
			return errors.New("compilation failed")
		}
		return nil
	}

	if err := app.Run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

func compileFile(ctx context.Context, cfg *config.Config, opts options, path string, out io.Writer) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile file", "path", path)
	defer tr.Finish("err", &err)

	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read file")
	}
	progress(opts, "Compiling %s...", path)

	pr := util.NewPrinter(os.Stderr)
	u := compiler.Unit{Name: path, Source: []rune(string(content))}
	u.FileIndex = pr.AddFile(util.SourceFileRecord{Name: path, Content: u.Source})

	res, err := compiler.Compile(ctx, cfg, u)
	if res != nil && res.Checker != nil {
		report(pr, cfg, res.Checker)
	}
	if opts.dumpAST && res != nil {
		fmt.Fprintln(out, res.Tree.String())
		return err
	}
	if err != nil {
		return err
	}

	text, err := res.Render(cfg, opts.backend)
	if err != nil {
		return err
	}
	if tlog.If("tac") {
		tr.Printw("listing", "path", path, "text", text)
	}
	_, err = io.WriteString(out, text)
	return err
}

// report prints every diagnostic in the order the checker produced them.
func report(pr *util.Printer, cfg *config.Config, tc *typeChecker.TypeChecker) {
	reportFrom(pr, cfg, tc, 0)
}

// reportFrom skips diagnostics located before line fromLine.
func reportFrom(pr *util.Printer, cfg *config.Config, tc *typeChecker.TypeChecker, fromLine int) {
	for _, d := range tc.Diagnostics() {
		if d.Tok.Line < fromLine {
			continue
		}
		if d.Severity == typeChecker.SeverityWarning {
			pr.Warn(d.Tok, cfg.Warnings[d.Warning].Name, d.Msg)
			continue
		}
		pr.Error(d.Tok, typeChecker.KindName(d.Kind), d.Msg)
	}
	if n := tc.ErrorCount(); n > 0 {
		fmt.Fprintf(pr.Out, "%d error(s) generated.\n", n)
	}
}

func progress(opts options, format string, args ...interface{}) {
	if opts.quiet {
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

func banner(cfg *config.Config) string {
	var on []string
	for i := config.Feature(0); i < config.FeatCount; i++ {
		if cfg.IsFeatureEnabled(i) {
			on = append(on, cfg.Features[i].Name)
		}
	}
	return fmt.Sprintf("tacc interactive, profile %s, features: %s\nCtrl+C cancels input, Ctrl+D exits. Only functions new in an entry are listed. Type :quit to exit, :reset to clear the session.",
		cfg.ProfileName, strings.Join(on, " "))
}
