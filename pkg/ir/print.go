package ir

import (
	"fmt"
	"strings"
)

// String renders one instruction in 3AC syntax, without indentation.
func (in *Instruction) String() string {
	arg := func(i int) string {
		if i < len(in.Args) && in.Args[i] != nil {
			return in.Args[i].String()
		}
		return ""
	}
	dst := ""
	if in.Dst != nil {
		dst = in.Dst.String()
	}

	switch in.Op {
	case OpLabel:
		return arg(0) + ":"
	case OpBeginFunc:
		return fmt.Sprintf("BeginFunc %d", in.Size)
	case OpEndFunc:
		return "EndFunc"
	case OpCopy:
		return fmt.Sprintf("%s = %s", dst, arg(0))
	case OpBinary:
		return fmt.Sprintf("%s = %s %s %s", dst, arg(0), in.Operator, arg(1))
	case OpNot:
		return fmt.Sprintf("%s = not %s", dst, arg(0))
	case OpIfFalse:
		return fmt.Sprintf("if_false %s goto %s", arg(0), arg(1))
	case OpIfTrue:
		return fmt.Sprintf("if_true %s goto %s", arg(0), arg(1))
	case OpGoto:
		return "goto " + arg(0)
	case OpCall:
		return "call " + arg(0)
	case OpLCall:
		return fmt.Sprintf("%s = LCall %s", dst, arg(0))
	case OpPushParam:
		return "PushParam " + arg(0)
	case OpPopParams:
		return fmt.Sprintf("PopParams %d", in.Size)
	case OpReturn:
		if len(in.Args) == 0 {
			return "return"
		}
		return "return " + arg(0)
	case OpIndex:
		return fmt.Sprintf("%s = %s[%s]", dst, arg(0), arg(1))
	case OpSlice:
		return fmt.Sprintf("%s = %s[%s:%s]", dst, arg(0), arg(1), arg(2))
	case OpSliceStep:
		return fmt.Sprintf("%s = %s[%s:%s:%s]", dst, arg(0), arg(1), arg(2), arg(3))
	case OpComment:
		return "// " + in.Comment
	}
	return fmt.Sprintf("<%v>", in.Op)
}

// Dump renders a function as an indented listing. Labels stay flush left.
func (f *Func) Dump(sb *strings.Builder) {
	fmt.Fprintf(sb, "%s:\n", f.Name)
	for _, in := range f.Instrs {
		if in.Op == OpLabel {
			fmt.Fprintln(sb, in.String())
			continue
		}
		fmt.Fprintf(sb, "    %s\n", in.String())
	}
}
