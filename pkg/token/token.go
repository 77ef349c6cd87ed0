package token

type Type int

const (
	EOF Type = iota
	LParen
	RParen
	Nil   // '_' placeholder for an absent child
	Comma // ',' head of an empty-token pair node
	Atom
	String
	Illegal
)

var typeNames = map[Type]string{
	EOF:     "end of input",
	LParen:  "'('",
	RParen:  "')'",
	Nil:     "'_'",
	Comma:   "','",
	Atom:    "atom",
	String:  "string",
	Illegal: "illegal character",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "unknown"
}

// Tags carried by raw tree nodes. Everything else is an operator or a literal.
const (
	TagFunction    = "function"
	TagInit        = "init"
	TagAssign      = "assign"
	TagMultiAssign = "multi_assign"
	TagDeclare     = "declare"
	TagParams      = "params"
	TagReturnType  = "return_type"
	TagIf          = "if"
	TagIfElse      = "if-else"
	TagIfElif      = "if-elif"
	TagIfElifElse  = "if-elif-else"
	TagElif        = "elif"
	TagWhile       = "while"
	TagCall        = "call"
	TagReturn      = "return"
	TagIndex       = "index"
	TagSlice       = "slice"
	TagSliceStep   = "slice_step"
	TagPass        = "pass"
)

var Tags = map[string]bool{
	TagFunction: true, TagInit: true, TagAssign: true, TagMultiAssign: true,
	TagDeclare: true, TagParams: true, TagReturnType: true, TagIf: true,
	TagIfElse: true, TagIfElif: true, TagIfElifElse: true, TagElif: true,
	TagWhile: true, TagCall: true, TagReturn: true, TagIndex: true,
	TagSlice: true, TagSliceStep: true, TagPass: true,
}

// Operator classes used by both the checker and the generator.
var (
	Arithmetic = map[string]bool{"+": true, "-": true, "*": true, "/": true, "%": true, "**": true}
	Relational = map[string]bool{"<": true, ">": true, "<=": true, ">=": true}
	Equality   = map[string]bool{"==": true, "!=": true}
	Logical    = map[string]bool{"and": true, "or": true}
)

const Not = "not"

func IsBinaryOperator(s string) bool {
	return Arithmetic[s] || Relational[s] || Equality[s] || Logical[s]
}

type Token struct {
	Type      Type
	Value     string
	FileIndex int
	Line      int
	Column    int
	Len       int
}
