package mailer

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Markdown button syntax for call-to-action links:
//
//	[!button|Confirm email](https://app.test/confirm?token=...)
//
// renders as <a href="..." class="btn">Confirm email</a> so layouts can
// style it as a button.
const buttonMarker = "[!button|"

var kindButton = ast.NewNodeKind("Button")

type buttonNode struct {
	ast.BaseInline
	url   []byte
	label []byte
}

func (n *buttonNode) Kind() ast.NodeKind { return kindButton }

func (n *buttonNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

type buttonParser struct{}

func (buttonParser) Trigger() []byte { return []byte{'['} }

func (buttonParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if len(line) < len(buttonMarker) || string(line[:len(buttonMarker)]) != buttonMarker {
		return nil
	}

	labelEnd := -1
	for i := len(buttonMarker); i < len(line); i++ {
		if line[i] == ']' {
			labelEnd = i
			break
		}
	}
	if labelEnd == -1 || labelEnd+1 >= len(line) || line[labelEnd+1] != '(' {
		return nil
	}

	urlStart := labelEnd + 2
	urlEnd := -1
	for i := urlStart; i < len(line); i++ {
		if line[i] == ')' {
			urlEnd = i
			break
		}
	}
	if urlEnd == -1 {
		return nil
	}

	block.Advance(urlEnd + 1)
	return &buttonNode{
		url:   line[urlStart:urlEnd],
		label: line[len(buttonMarker):labelEnd],
	}
}

type buttonRenderer struct{}

func (r buttonRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(kindButton, r.render)
}

func (buttonRenderer) render(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*buttonNode)
	_, _ = w.WriteString(`<a href="`)
	_, _ = w.Write(util.EscapeHTML(n.url))
	_, _ = w.WriteString(`" class="btn">`)
	_, _ = w.Write(util.EscapeHTML(n.label))
	_, _ = w.WriteString(`</a>`)
	return ast.WalkContinue, nil
}

type buttonExtension struct{}

func (buttonExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(buttonParser{}, 50),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(buttonRenderer{}, 50),
	))
}

// ButtonExtension returns the goldmark extension enabling the button
// syntax in mail templates.
func ButtonExtension() goldmark.Extender { return buttonExtension{} }
