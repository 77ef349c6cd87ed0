package ast

import (
	"strings"
	"unicode"
)

// stringMarks are characters that only show up in string literal text.
const stringMarks = ":@#$%^&*()"

// ClassifyAtom decides what a leaf token denotes. It returns the literal
// kind, or isIdent when the text is an identifier. With heuristics off only
// quoted text counts as a string literal.
func ClassifyAtom(text string, heuristics bool) (kind LitKind, isIdent bool) {
	switch {
	case isQuoted(text):
		return LitString, false
	case isNumber(text):
		if strings.Contains(text, ".") {
			return LitFloat, false
		}
		return LitInt, false
	case text == "true" || text == "false" || text == "True" || text == "False":
		return LitBool, false
	case heuristics && looksLikeString(text):
		return LitString, false
	case isIdentifier(text):
		return LitOther, true
	}
	return LitOther, false
}

func isQuoted(s string) bool {
	if len(s) < 2 {
		return false
	}
	return (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'')
}

func isNumber(s string) bool {
	s = strings.TrimPrefix(s, "-")
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

func looksLikeString(s string) bool {
	if strings.Contains(s, " ") {
		return true
	}
	for _, esc := range []string{`\"`, `\'`, `\n`, `\t`, `\\`} {
		if strings.Contains(s, esc) {
			return true
		}
	}
	return strings.ContainsAny(s, stringMarks)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}
