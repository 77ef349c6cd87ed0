package ast

// Type is one of the four value types, plus Unknown for expressions whose
// type could not be determined and None for functions that return nothing.
type Type int

const (
	TypeUnknown Type = iota
	TypeInt
	TypeString
	TypeBool
	TypeFloat
	TypeNone
)

var typeNames = [...]string{
	TypeUnknown: "unknown",
	TypeInt:     "int",
	TypeString:  "string",
	TypeBool:    "bool",
	TypeFloat:   "float",
	TypeNone:    "none",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "unknown"
	}
	return typeNames[t]
}

// ParseType maps a type keyword to its Type. Only the four value types are
// accepted.
func ParseType(name string) (Type, bool) {
	switch name {
	case "int":
		return TypeInt, true
	case "string":
		return TypeString, true
	case "bool":
		return TypeBool, true
	case "float":
		return TypeFloat, true
	}
	return TypeUnknown, false
}

func IsTypeName(name string) bool {
	_, ok := ParseType(name)
	return ok
}

func (t Type) IsNumeric() bool { return t == TypeInt || t == TypeFloat }

func (t Type) IsKnown() bool { return t != TypeUnknown }
