// Package tree holds the raw binary AST handed over by the language parser.
// A node is a token plus at most two children; an empty token marks a "pair"
// node that only exists to chain sequences together.
package tree

import (
	"strings"

	"github.com/xplshn/tacc/pkg/token"
)

type Node struct {
	Tok         token.Token
	Left, Right *Node
}

// N builds a node from bare text, mostly for tests and generated input.
func N(value string, children ...*Node) *Node {
	n := &Node{Tok: token.Token{Value: value, FileIndex: -1}}
	if len(children) > 0 {
		n.Left = children[0]
	}
	if len(children) > 1 {
		n.Right = children[1]
	}
	return n
}

// Pair builds an empty-token node.
func Pair(left, right *Node) *Node { return N("", left, right) }

func (n *Node) Value() string {
	if n == nil {
		return ""
	}
	return n.Tok.Value
}

func (n *Node) IsPair() bool { return n != nil && n.Tok.Value == "" }

func (n *Node) IsLeaf() bool { return n != nil && n.Left == nil && n.Right == nil }

// Is reports whether n carries the given tag.
func (n *Node) Is(tag string) bool { return n != nil && n.Tok.Value == tag }

// Find returns the first node in breadth-first order for which match holds.
// Subtrees rooted at a node for which stop holds are not entered, although
// the node itself is still tested.
func (n *Node) Find(match, stop func(*Node) bool) *Node {
	if n == nil {
		return nil
	}
	queue := []*Node{n}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if match(cur) {
			return cur
		}
		if cur != n && stop != nil && stop(cur) {
			continue
		}
		for _, c := range []*Node{cur.Left, cur.Right} {
			if c != nil {
				queue = append(queue, c)
			}
		}
	}
	return nil
}

// Depth returns the height of the tree.
func (n *Node) Depth() int {
	if n == nil {
		return 0
	}
	return 1 + max(n.Left.Depth(), n.Right.Depth())
}

// String renders the node in the interchange format read by the parser.
func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	switch {
	case n == nil:
		sb.WriteString("_")
		return
	case n.IsLeaf() && !n.IsPair():
		sb.WriteString(n.Tok.Value)
		return
	}
	sb.WriteString("(")
	if n.IsPair() {
		sb.WriteString(",")
	} else {
		sb.WriteString(n.Tok.Value)
	}
	if n.Left != nil || n.Right != nil {
		sb.WriteString(" ")
		n.Left.write(sb)
	}
	if n.Right != nil {
		sb.WriteString(" ")
		n.Right.write(sb)
	}
	sb.WriteString(")")
}
