package ir

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

type Op int

const (
	OpLabel Op = iota
	OpBeginFunc
	OpEndFunc
	OpCopy      // Dst = Args[0]
	OpBinary    // Dst = Args[0] Operator Args[1]
	OpNot       // Dst = not Args[0]
	OpIfFalse   // if_false Args[0] goto Args[1]
	OpIfTrue    // if_true Args[0] goto Args[1]
	OpGoto      // goto Args[0]
	OpCall      // call Args[0]
	OpLCall     // Dst = LCall Args[0]
	OpPushParam // PushParam Args[0]
	OpPopParams // PopParams Size
	OpReturn    // return [Args[0]]
	OpIndex     // Dst = Args[0][Args[1]]
	OpSlice     // Dst = Args[0][Args[1]:Args[2]]
	OpSliceStep // Dst = Args[0][Args[1]:Args[2]:Args[3]]
	OpComment
)

var opNames = [...]string{
	OpLabel: "label", OpBeginFunc: "BeginFunc", OpEndFunc: "EndFunc", OpCopy: "copy",
	OpBinary: "binary", OpNot: "not", OpIfFalse: "if_false", OpIfTrue: "if_true",
	OpGoto: "goto", OpCall: "call", OpLCall: "LCall", OpPushParam: "PushParam",
	OpPopParams: "PopParams", OpReturn: "return", OpIndex: "index", OpSlice: "slice",
	OpSliceStep: "slice_step", OpComment: "comment",
}

func (o Op) String() string {
	if o < 0 || int(o) >= len(opNames) {
		return "op" + strconv.Itoa(int(o))
	}
	return opNames[o]
}

type Value interface {
	isValue()
	String() string
}

// Operand is a literal or a source variable, printed exactly as written.
type Operand struct{ Text string }

// Global names a function.
type Global struct{ Name string }
type Temporary struct{ ID int }
type Label struct{ ID int }

func (o *Operand) isValue()   {}
func (g *Global) isValue()    {}
func (t *Temporary) isValue() {}
func (l *Label) isValue()     {}

func (o *Operand) String() string   { return o.Text }
func (g *Global) String() string    { return g.Name }
func (t *Temporary) String() string { return "t" + strconv.Itoa(t.ID) }
func (l *Label) String() string     { return "L" + strconv.Itoa(l.ID) }

type Instruction struct {
	Op       Op
	Dst      Value
	Args     []Value
	Operator string // binary operator for OpBinary
	Size     int    // byte count for OpBeginFunc and OpPopParams
	Comment  string
}

type Func struct {
	Name      string
	FrameSize int
	Instrs    []*Instruction
}

type Program struct {
	Funcs []*Func
}

// Labels returns the labels defined in f in emission order.
func (f *Func) Labels() []*Label {
	var out []*Label
	for _, in := range f.Instrs {
		if in.Op == OpLabel {
			out = append(out, in.Args[0].(*Label))
		}
	}
	return out
}

// Count returns how many instructions of the given op the program holds.
func (p *Program) Count(op Op) int {
	n := 0
	for _, f := range p.Funcs {
		for _, in := range f.Instrs {
			if in.Op == op {
				n++
			}
		}
	}
	return n
}

// Func returns the function emitted under name, or nil.
func (p *Program) Func(name string) *Func {
	for _, f := range p.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Fingerprint hashes the rendered instruction stream. Two programs with the
// same fingerprint print identically.
func (p *Program) Fingerprint() uint64 {
	d := xxhash.New()
	for _, f := range p.Funcs {
		d.WriteString(f.Name)
		d.WriteString(strconv.Itoa(f.FrameSize))
		for _, in := range f.Instrs {
			d.WriteString(in.String())
			d.WriteString("\n")
		}
	}
	return d.Sum64()
}
