package ir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func op(s string) Value { return &Operand{Text: s} }

func sampleFunc() *Func {
	t1, l1 := &Temporary{ID: 1}, &Label{ID: 1}
	return &Func{Name: "f", FrameSize: 8, Instrs: []*Instruction{
		{Op: OpBeginFunc, Size: 8},
		{Op: OpBinary, Dst: t1, Args: []Value{op("a"), op("3")}, Operator: "<"},
		{Op: OpIfFalse, Args: []Value{t1, l1}},
		{Op: OpPushParam, Args: []Value{op("a")}},
		{Op: OpCall, Args: []Value{&Global{Name: "g"}}},
		{Op: OpPopParams, Size: 4},
		{Op: OpLabel, Args: []Value{l1}},
		{Op: OpReturn},
		{Op: OpEndFunc},
	}}
}

func TestInstructionString(t *testing.T) {
	t2 := &Temporary{ID: 2}
	for want, in := range map[string]*Instruction{
		"x = t2":               {Op: OpCopy, Dst: op("x"), Args: []Value{t2}},
		"t2 = not b":           {Op: OpNot, Dst: t2, Args: []Value{op("b")}},
		"if_true t2 goto L4":   {Op: OpIfTrue, Args: []Value{t2, &Label{ID: 4}}},
		"goto L4":              {Op: OpGoto, Args: []Value{&Label{ID: 4}}},
		"t2 = LCall add":       {Op: OpLCall, Dst: t2, Args: []Value{&Global{Name: "add"}}},
		"return t2":            {Op: OpReturn, Args: []Value{t2}},
		"t2 = s[1]":            {Op: OpIndex, Dst: t2, Args: []Value{op("s"), op("1")}},
		"t2 = s[:3]":           {Op: OpSlice, Dst: t2, Args: []Value{op("s"), nil, op("3")}},
		"t2 = s[1::2]":         {Op: OpSliceStep, Dst: t2, Args: []Value{op("s"), op("1"), nil, op("2")}},
		"// skipped bad input": {Op: OpComment, Comment: "skipped bad input"},
		"L7:":                  {Op: OpLabel, Args: []Value{&Label{ID: 7}}},
	} {
		assert.Equal(t, want, in.String())
	}
	assert.Equal(t, "op99", Op(99).String())
	assert.Equal(t, "PushParam", OpPushParam.String())
}

func TestDump(t *testing.T) {
	var sb strings.Builder
	sampleFunc().Dump(&sb)
	assert.Equal(t, `f:
    BeginFunc 8
    t1 = a < 3
    if_false t1 goto L1
    PushParam a
    call g
    PopParams 4
L1:
    return
    EndFunc
`, sb.String())
}

func TestQueries(t *testing.T) {
	f := sampleFunc()
	p := &Program{Funcs: []*Func{f, {Name: "main"}}}

	require.Len(t, f.Labels(), 1)
	assert.Equal(t, 1, f.Labels()[0].ID)
	assert.Equal(t, 1, p.Count(OpCall))
	assert.Equal(t, 0, p.Count(OpLCall))
	assert.Same(t, f, p.Func("f"))
	assert.Nil(t, p.Func("nope"))
}

func TestFingerprint(t *testing.T) {
	a := &Program{Funcs: []*Func{sampleFunc()}}
	b := &Program{Funcs: []*Func{sampleFunc()}}
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.Funcs[0].Instrs[1].Operator = "<="
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}
