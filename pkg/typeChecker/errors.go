package typeChecker

import (
	"fmt"

	"tlog.app/go/errors"

	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/token"
)

// Error kinds. Every reported Diagnostic unwraps to one of these.
var (
	ErrDuplicateDeclaration  = errors.New("duplicate declaration")
	ErrDuplicateParameter    = errors.New("duplicate parameter")
	ErrDuplicateFunction     = errors.New("duplicate function")
	ErrUndeclaredVariable    = errors.New("undeclared variable")
	ErrUndeclaredFunction    = errors.New("undeclared function")
	ErrForwardReference      = errors.New("forward reference")
	ErrArity                 = errors.New("wrong number of arguments")
	ErrTypeMismatch          = errors.New("type mismatch")
	ErrNonNumericOperand     = errors.New("non-numeric operand")
	ErrNonBooleanOperand     = errors.New("non-boolean operand")
	ErrNonBooleanCondition   = errors.New("non-boolean condition")
	ErrInvalidIndex          = errors.New("invalid string index")
	ErrAssignToUndeclared    = errors.New("assignment to undeclared variable")
	ErrAssignCount           = errors.New("assignment count mismatch")
	ErrReturnOutsideFunction = errors.New("return outside function")
	ErrReturnType            = errors.New("return type mismatch")
	ErrEntrySignature        = errors.New("invalid entry signature")
	ErrUnknownType           = errors.New("unknown type")
	ErrMalformed             = errors.New("malformed node")
	ErrDepthExceeded         = errors.New("nesting too deep")
)

var kindNames = map[error]string{
	ErrDuplicateDeclaration:  "DuplicateDeclaration",
	ErrDuplicateParameter:    "DuplicateParameter",
	ErrDuplicateFunction:     "DuplicateFunction",
	ErrUndeclaredVariable:    "UndeclaredVariable",
	ErrUndeclaredFunction:    "UndeclaredFunction",
	ErrForwardReference:      "ForwardReference",
	ErrArity:                 "ArityError",
	ErrTypeMismatch:          "TypeMismatch",
	ErrNonNumericOperand:     "NonNumericOperand",
	ErrNonBooleanOperand:     "NonBooleanOperand",
	ErrNonBooleanCondition:   "NonBooleanCondition",
	ErrInvalidIndex:          "InvalidIndex",
	ErrAssignToUndeclared:    "AssignToUndeclared",
	ErrAssignCount:           "AssignCountMismatch",
	ErrReturnOutsideFunction: "ReturnOutsideFunction",
	ErrReturnType:            "ReturnTypeMismatch",
	ErrEntrySignature:        "EntrySignature",
	ErrUnknownType:           "UnknownType",
	ErrMalformed:             "Malformed",
	ErrDepthExceeded:         "DepthExceeded",
}

// KindName returns the short category name of an error kind, as printed in
// diagnostics and listed in golden test expectations.
func KindName(kind error) string {
	if name, ok := kindNames[kind]; ok {
		return name
	}
	return "Unknown"
}

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// Diagnostic is one reported problem. Errors carry a Kind; warnings carry
// the Warning flag that enabled them.
type Diagnostic struct {
	Severity Severity
	Kind     error
	Warning  config.Warning
	Tok      token.Token
	Msg      string
}

func (d *Diagnostic) Error() string {
	if d.Tok.Line > 0 {
		return fmt.Sprintf("%d:%d: %s", d.Tok.Line, d.Tok.Column, d.Msg)
	}
	return d.Msg
}

func (d *Diagnostic) Unwrap() error { return d.Kind }
