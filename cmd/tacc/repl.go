package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"tlog.app/go/errors"

	"github.com/xplshn/tacc/pkg/codegen"
	"github.com/xplshn/tacc/pkg/compiler"
	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/ir"
	"github.com/xplshn/tacc/pkg/lexer"
	"github.com/xplshn/tacc/pkg/parser"
	"github.com/xplshn/tacc/pkg/util"
)

const (
	historyFile = ".tacc_history"
	promptMain  = "tac> "
	promptCont  = "...  "
)

// session keeps the entries accepted so far. Every entry is compiled
// together with them as a fresh unit, so earlier functions stay callable.
type session struct {
	entries []string
	emitted map[string]bool
}

func (s *session) source(extra string) string {
	return strings.Join(append(append([]string(nil), s.entries...), extra), "\n")
}

// firstLine is the line the next entry starts at in the combined source.
func (s *session) firstLine() int {
	n := 1
	for _, e := range s.entries {
		n += strings.Count(e, "\n") + 1
	}
	return n
}

func (s *session) accept(code string, p *ir.Program) {
	s.entries = append(s.entries, code)
	if s.emitted == nil {
		s.emitted = make(map[string]bool)
	}
	for _, f := range p.Funcs {
		s.emitted[f.Name] = true
	}
}

// fresh keeps the functions of p that no earlier entry produced.
func (s *session) fresh(p *ir.Program) *ir.Program {
	out := &ir.Program{}
	for _, f := range p.Funcs {
		if !s.emitted[f.Name] {
			out.Funcs = append(out.Funcs, f)
		}
	}
	return out
}

func repl(ctx context.Context, cfg *config.Config, opts options) error {
	fmt.Println(banner(cfg))

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	defer close(done)
	go func() {
		select {
		case <-sigc:
			ln.Close()
			os.Exit(130)
		case <-done:
		}
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	var s session
	for {
		code, ok := readEntry(ln)
		if !ok {
			fmt.Println()
			return nil
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit":
				return nil
			case ":reset":
				s = session{}
				fmt.Println("session cleared")
			default:
				fmt.Println("unknown command. Type :quit to exit, :reset to clear the session.")
			}
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		evalEntry(ctx, cfg, opts, &s, code, os.Stdout, os.Stderr)
	}
}

// evalEntry compiles the session plus code. Diagnostics of the new entry go
// to stderr and the functions it adds are listed on stdout. An entry that
// compiles is added to the session.
func evalEntry(ctx context.Context, cfg *config.Config, opts options, s *session, code string, stdout, stderr io.Writer) bool {
	src := s.source(code)
	pr := util.NewPrinter(stderr)
	u := compiler.Unit{Name: "<repl>", Source: []rune(src)}
	u.FileIndex = pr.AddFile(util.SourceFileRecord{Name: u.Name, Content: u.Source})

	res, err := compiler.Compile(ctx, cfg, u)
	if res != nil && res.Checker != nil {
		reportFrom(pr, cfg, res.Checker, s.firstLine())
	}
	if err != nil {
		if !errors.Is(err, compiler.ErrSemantic) {
			fmt.Fprintln(stderr, err)
		}
		return false
	}

	if opts.dumpAST {
		fmt.Fprintln(stdout, res.Tree.String())
		s.accept(code, res.Program)
		return true
	}
	b, err := codegen.SelectBackend(opts.backend)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return false
	}
	buf, err := b.Generate(s.fresh(res.Program), cfg)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return false
	}
	fmt.Fprint(stdout, buf.String())
	s.accept(code, res.Program)
	return true
}

// readEntry reads lines until they form a complete tree or a syntax error
// that more input cannot fix.
func readEntry(ln *liner.State) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		_, perr := parser.NewParser(lexer.NewLexer([]rune(src), -1).All()).Parse()
		if perr != nil && parser.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}
