package export

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// BlockKind is the layout of one rendered paragraph.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockListItem
	BlockCode
)

// Run is a span of text sharing one style.
type Run struct {
	Text   string
	Bold   bool
	Italic bool
}

// Block is one paragraph of the report.
type Block struct {
	Kind  BlockKind
	Level int // heading level
	Depth int // list nesting
	// Marker is "•" or "3." on the first paragraph of a list item.
	Marker string
	Runs   []Run
}

// PlainText returns the block text without styling.
func (b Block) PlainText() string {
	var sb strings.Builder
	for _, r := range b.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

var markdownParser = goldmark.New().Parser()

// ParseMarkdown flattens LLM markdown (headings, emphasis, lists, code) into
// styled blocks.
func ParseMarkdown(markdown string) []Block {
	src := []byte(markdown)
	doc := markdownParser.Parse(text.NewReader(src))

	var blocks []Block
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		blocks = appendBlocks(blocks, n, src, 0)
	}
	return blocks
}

func appendBlocks(blocks []Block, n ast.Node, src []byte, depth int) []Block {
	switch node := n.(type) {
	case *ast.Heading:
		return appendNonEmpty(blocks, Block{Kind: BlockHeading, Level: node.Level, Runs: inlineRuns(node, src)})
	case *ast.Paragraph, *ast.TextBlock:
		return appendNonEmpty(blocks, Block{Kind: BlockParagraph, Runs: inlineRuns(node, src)})
	case *ast.List:
		return appendList(blocks, node, src, depth)
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		var sb strings.Builder
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			sb.Write(seg.Value(src))
		}
		return appendNonEmpty(blocks, Block{Kind: BlockCode, Runs: []Run{{Text: strings.TrimRight(sb.String(), "\n")}}})
	case *ast.ThematicBreak, *ast.HTMLBlock:
		return blocks
	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			blocks = appendBlocks(blocks, c, src, depth)
		}
		return blocks
	}
}

func appendList(blocks []Block, list *ast.List, src []byte, depth int) []Block {
	index := list.Start
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "•"
		if list.IsOrdered() {
			marker = fmt.Sprintf("%d.", index)
		}
		index++

		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			if _, nested := c.(*ast.List); nested {
				blocks = appendBlocks(blocks, c, src, depth+1)
				continue
			}

			var inner []Block
			inner = appendBlocks(inner, c, src, depth)
			for _, b := range inner {
				if b.Kind == BlockParagraph {
					b.Kind = BlockListItem
					b.Depth = depth
					b.Marker = marker
					marker = ""
				}
				blocks = append(blocks, b)
			}
		}
	}
	return blocks
}

func inlineRuns(n ast.Node, src []byte) []Run {
	var runs []Run
	bold, italic := 0, 0

	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := c.(type) {
		case *ast.Emphasis:
			delta := 1
			if !entering {
				delta = -1
			}
			if node.Level >= 2 {
				bold += delta
			} else {
				italic += delta
			}
		case *ast.Text:
			if !entering {
				break
			}
			s := string(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				s += " "
			}
			runs = appendRun(runs, Run{Text: s, Bold: bold > 0, Italic: italic > 0})
		case *ast.String:
			if entering {
				runs = appendRun(runs, Run{Text: string(node.Value), Bold: bold > 0, Italic: italic > 0})
			}
		case *ast.AutoLink:
			if entering {
				runs = appendRun(runs, Run{Text: string(node.URL(src)), Bold: bold > 0, Italic: italic > 0})
			}
		}
		return ast.WalkContinue, nil
	})

	if len(runs) > 0 {
		last := &runs[len(runs)-1]
		last.Text = strings.TrimRight(last.Text, " ")
	}
	return runs
}

func appendRun(runs []Run, r Run) []Run {
	if r.Text == "" {
		return runs
	}
	if n := len(runs); n > 0 && runs[n-1].Bold == r.Bold && runs[n-1].Italic == r.Italic {
		runs[n-1].Text += r.Text
		return runs
	}
	return append(runs, r)
}

func appendNonEmpty(blocks []Block, b Block) []Block {
	if strings.TrimSpace(b.PlainText()) == "" {
		return blocks
	}
	return append(blocks, b)
}
