// Package casefile reads golden compiler test cases written in Markdown.
//
// Each case starts at a heading "Test: <name>" and holds one ```ast fence
// with the input tree, plus any of ```tac (expected listing), ```errors
// (expected error kinds, one per line) and ```flags (-W/-F flags applied
// before compiling).
package casefile

import (
	"bytes"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"tlog.app/go/errors"
)

const (
	FenceInput  = "ast"
	FenceTAC    = "tac"
	FenceErrors = "errors"
	FenceFlags  = "flags"
)

// Block is the content of one fence and where it sits in the file.
type Block struct {
	Content    string
	Line       int
	Start, End int // byte range of the content in the source
}

type Case struct {
	Name   string
	Line   int
	Input  Block
	TAC    *Block
	Errors *Block
	Flags  []string
}

// ExpectedErrors returns the error kinds listed in the errors fence.
func (c *Case) ExpectedErrors() []string {
	if c.Errors == nil {
		return nil
	}
	return strings.Fields(c.Errors.Content)
}

// Extract parses a Markdown document and returns its cases in order.
func Extract(src []byte) ([]*Case, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var cases []*Case
	var cur *Case
	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := node.(type) {
		case *ast.Heading:
			heading := headingText(n, src)
			if !strings.HasPrefix(heading, "Test: ") {
				return ast.WalkContinue, nil
			}
			if err := finish(cur); err != nil {
				return ast.WalkStop, err
			}
			cur = &Case{Name: strings.TrimPrefix(heading, "Test: "), Line: lineOf(src, headingStart(n))}
			cases = append(cases, cur)

		case *ast.FencedCodeBlock:
			lang := string(n.Language(src))
			b := fenceBlock(n, src)
			if cur == nil {
				if lang != "" {
					return ast.WalkStop, errors.New("line %d: %s fence found outside of a test case", b.Line, lang)
				}
				return ast.WalkContinue, nil
			}
			switch lang {
			case FenceInput:
				if cur.Input.Line != 0 {
					return ast.WalkStop, errors.New("line %d: multiple input fences in test '%s'", b.Line, cur.Name)
				}
				cur.Input = b
			case FenceTAC:
				cur.TAC = &b
			case FenceErrors:
				cur.Errors = &b
			case FenceFlags:
				cur.Flags = append(cur.Flags, strings.Fields(b.Content)...)
			case "":
			default:
				return ast.WalkStop, errors.New("line %d: unknown fence language '%s' in test '%s'", b.Line, lang, cur.Name)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "reading test cases")
	}
	if err := finish(cur); err != nil {
		return nil, err
	}
	return cases, nil
}

func finish(c *Case) error {
	if c == nil {
		return nil
	}
	if c.Input.Line == 0 {
		return errors.New("line %d: test '%s' has no %s fence", c.Line, c.Name, FenceInput)
	}
	if c.TAC == nil && c.Errors == nil {
		return errors.New("line %d: test '%s' has neither a %s nor an %s fence", c.Line, c.Name, FenceTAC, FenceErrors)
	}
	return nil
}

func headingText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := c.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(src))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func headingStart(n *ast.Heading) int {
	if n.Lines().Len() > 0 {
		return n.Lines().At(0).Start
	}
	return 0
}

func fenceBlock(n *ast.FencedCodeBlock, src []byte) Block {
	var buf bytes.Buffer
	lines := n.Lines()
	b := Block{}
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		if i == 0 {
			b.Start = seg.Start
		}
		b.End = seg.Stop
		buf.Write(seg.Value(src))
	}
	if lines.Len() == 0 {
		// an empty fence: content starts right after the opening line
		pos := 0
		if n.Info != nil {
			pos = n.Info.Segment.Stop
		}
		for pos < len(src) && src[pos] != '\n' {
			pos++
		}
		b.Start, b.End = pos+1, pos+1
	}
	b.Line = lineOf(src, b.Start)
	b.Content = strings.TrimRight(buf.String(), "\n")
	return b
}

func lineOf(src []byte, offset int) int {
	return bytes.Count(src[:min(offset, len(src))], []byte("\n")) + 1
}

// Replace returns src with the content of each given block, as located by
// Extract on the same src, substituted.
func Replace(src []byte, contents map[*Block]string) []byte {
	blocks := make([]*Block, 0, len(contents))
	for b := range contents {
		blocks = append(blocks, b)
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Start > blocks[j].Start })

	out := append([]byte(nil), src...)
	for _, b := range blocks {
		body := contents[b]
		if body != "" && !strings.HasSuffix(body, "\n") {
			body += "\n"
		}
		out = append(out[:b.Start], append([]byte(body), out[b.End:]...)...)
	}
	return out
}
