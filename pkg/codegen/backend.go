package codegen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/ir"
)

// Backend is the interface that all output backends must implement.
type Backend interface {
	// Generate takes an IR program and a configuration, and produces its
	// textual form as a byte buffer.
	Generate(prog *ir.Program, cfg *config.Config) (*bytes.Buffer, error)
}

// SelectBackend returns the backend registered under name.
func SelectBackend(name string) (Backend, error) {
	switch name {
	case "tac", "":
		return NewTACBackend(), nil
	case "listing":
		return &TACBackend{Numbered: true}, nil
	}
	return nil, fmt.Errorf("unsupported backend '%s'. Supported: 'tac', 'listing'", name)
}

// TACBackend prints three-address code, one instruction per line. Numbered
// prefixes each instruction with its index inside the function.
type TACBackend struct {
	Numbered bool
}

func NewTACBackend() *TACBackend { return &TACBackend{} }

func (b *TACBackend) Generate(prog *ir.Program, cfg *config.Config) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	for i, f := range prog.Funcs {
		if i > 0 {
			buf.WriteString("\n")
		}
		if !b.Numbered {
			var sb strings.Builder
			f.Dump(&sb)
			buf.WriteString(sb.String())
			continue
		}
		fmt.Fprintf(&buf, "%s:\n", f.Name)
		for n, in := range f.Instrs {
			if in.Op == ir.OpLabel {
				fmt.Fprintf(&buf, "%4d  %s\n", n, in.String())
			} else {
				fmt.Fprintf(&buf, "%4d      %s\n", n, in.String())
			}
		}
	}
	return &buf, nil
}
