package adapter

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	m "modulize.dev/pkg/modulize/internal/model"
)

// JSFileAdapter encapsulates JavaScript-specific parsing so the domain
// layer can focus on conversion rules while delegating syntax details to
// an infrastructure component. Expression subtrees the engine does not
// transform are carried as exact source-text slices and re-serialize
// unchanged.
type JSFileAdapter interface {
	// Parse builds a document's top-level statement sequence from source
	// bytes. A single scope-only self-invoking closure wrapper is
	// unwrapped: its body statements are treated as the document's
	// top-level statements and a leading 'use strict' directive is
	// dropped, since modules are strict by definition.
	Parse(ctx context.Context, key m.Path, src []byte) (*m.Document, error)
}

// LocalJSFileAdapter provides a concrete JSFileAdapter backed by
// tree-sitter. Safe for concurrent use: each Parse call creates its own
// parser instance.
type LocalJSFileAdapter struct{}

// NewLocalJSFileAdapter constructs a LocalJSFileAdapter.
func NewLocalJSFileAdapter() *LocalJSFileAdapter {
	return &LocalJSFileAdapter{}
}

const (
	nodeProgram             = "program"
	nodeComment             = "comment"
	nodeExpressionStatement = "expression_statement"
	nodeAssignment          = "assignment_expression"
	nodeMemberExpression    = "member_expression"
	nodeSubscriptExpression = "subscript_expression"
	nodeIdentifier          = "identifier"
	nodePropertyIdentifier  = "property_identifier"
	nodeObject              = "object"
	nodePair                = "pair"
	nodeMethodDefinition    = "method_definition"
	nodeShorthandProperty   = "shorthand_property_identifier"
	nodeArrowFunction       = "arrow_function"
	nodeCallExpression      = "call_expression"
	nodeParenthesized       = "parenthesized_expression"
	nodeStatementBlock      = "statement_block"
	nodeLexicalDeclaration  = "lexical_declaration"
	nodeVariableDeclaration = "variable_declaration"
	nodeVariableDeclarator  = "variable_declarator"
	nodeString              = "string"
)

// The anonymous function node was renamed between grammar revisions; both
// spellings are accepted.
func isFunctionNode(kind string) bool {
	return kind == "function" || kind == "function_expression" ||
		kind == "generator_function"
}

var useStrictPattern = regexp.MustCompile(`^['"]use strict['"];?$`)

// Parse implements JSFileAdapter.
func (a *LocalJSFileAdapter) Parse(ctx context.Context, key m.Path, src []byte) (*m.Document, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", key, err)
	}

	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.Type() != nodeProgram {
		return nil, fmt.Errorf("failed to parse %s: no program node", key)
	}

	nodes, header := topLevelNodes(root, src)

	doc := &m.Document{Key: key, Header: header}

	for _, node := range nodes {
		if node.Type() == nodeComment {
			continue
		}

		doc.Statements = append(doc.Statements, a.buildStatement(node, src))
	}

	return doc, nil
}

// topLevelNodes returns the program's statement nodes, with a lone
// scope-wrapper closure unwrapped to its body and any 'use strict'
// directive removed. A comment standing above the wrapper is returned
// separately so unwrapping does not lose it.
func topLevelNodes(root *sitter.Node, src []byte) ([]*sitter.Node, string) {
	var nodes []*sitter.Node

	var single *sitter.Node

	statements := 0

	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		nodes = append(nodes, child)

		if child.Type() != nodeComment {
			single = child
			statements++
		}
	}

	if statements != 1 {
		return nodes, ""
	}

	body := scopeWrapperBody(single)
	if body == nil {
		return nodes, ""
	}

	unwrapped := make([]*sitter.Node, 0, int(body.NamedChildCount()))

	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		if child.Type() == nodeExpressionStatement && useStrictPattern.MatchString(content(child, src)) {
			continue
		}

		unwrapped = append(unwrapped, child)
	}

	return unwrapped, leadingComment(single, src)
}

// scopeWrapperBody matches the two common self-invoking closure shapes,
// `(function(){...})()` and `(function(){...}())`, called with no
// arguments, and returns the closure's statement block.
func scopeWrapperBody(node *sitter.Node) *sitter.Node {
	if node == nil || node.Type() != nodeExpressionStatement || node.NamedChildCount() == 0 {
		return nil
	}

	expr := node.NamedChild(0)
	if expr.Type() == nodeParenthesized && expr.NamedChildCount() > 0 {
		inner := expr.NamedChild(0)
		if inner.Type() == nodeCallExpression {
			return callWrapperBody(inner)
		}

		return nil
	}

	if expr.Type() == nodeCallExpression {
		return callWrapperBody(expr)
	}

	return nil
}

func callWrapperBody(call *sitter.Node) *sitter.Node {
	args := call.ChildByFieldName("arguments")
	if args != nil && args.NamedChildCount() > 0 {
		return nil
	}

	fn := call.ChildByFieldName("function")
	if fn == nil {
		return nil
	}

	if fn.Type() == nodeParenthesized && fn.NamedChildCount() > 0 {
		fn = fn.NamedChild(0)
	}

	if !isFunctionNode(fn.Type()) && fn.Type() != nodeArrowFunction {
		return nil
	}

	body := fn.ChildByFieldName("body")
	if body == nil || body.Type() != nodeStatementBlock {
		return nil
	}

	return body
}

func (a *LocalJSFileAdapter) buildStatement(node *sitter.Node, src []byte) m.Statement {
	base := int(node.StartByte())

	stmt := m.Statement{
		Kind:    m.StmtOther,
		Text:    content(node, src),
		Comment: leadingComment(node, src),
	}

	var skipRefs *sitter.Node

	switch node.Type() {
	case nodeExpressionStatement:
		if node.NamedChildCount() > 0 {
			expr := node.NamedChild(0)
			if expr.Type() == nodeAssignment {
				left := expr.ChildByFieldName("left")
				right := expr.ChildByFieldName("right")

				if left != nil && right != nil {
					stmt.Kind = m.StmtAssignment
					stmt.Assign = &m.Assignment{
						Target: a.toExpr(left, src, base),
						Value:  a.toExpr(right, src, base),
					}
					skipRefs = left
				}
			}
		}
	case nodeLexicalDeclaration, nodeVariableDeclaration:
		if decl := singleDeclarator(node); decl != nil {
			name := decl.ChildByFieldName("name")
			if name != nil && name.Type() == nodeIdentifier {
				stmt.Kind = m.StmtDeclaration
				stmt.Decl = &m.Declaration{
					Keyword: declKeyword(node, src),
					Name:    content(name, src),
				}

				if value := decl.ChildByFieldName("value"); value != nil {
					stmt.Decl.Value = a.toExpr(value, src, base)
				}
			}
		}
	}

	stmt.Refs = a.collectRefs(node, src, base, skipRefs)

	return stmt
}

func singleDeclarator(node *sitter.Node) *sitter.Node {
	var declarator *sitter.Node

	count := 0

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == nodeVariableDeclarator {
			declarator = child
			count++
		}
	}

	if count != 1 {
		return nil
	}

	return declarator
}

func declKeyword(node *sitter.Node, src []byte) string {
	text := content(node, src)
	if i := strings.IndexByte(text, ' '); i > 0 {
		return text[:i]
	}

	return "var"
}

// toExpr converts a syntax node into the engine's expression view. base is
// the statement's start byte so spans stay statement-relative.
func (a *LocalJSFileAdapter) toExpr(node *sitter.Node, src []byte, base int) *m.Expr {
	expr := &m.Expr{
		Kind:  m.ExprOther,
		Text:  content(node, src),
		Start: int(node.StartByte()) - base,
		End:   int(node.EndByte()) - base,
	}

	switch {
	case node.Type() == nodeIdentifier:
		expr.Kind = m.ExprIdentifier
		expr.Name = expr.Text
	case node.Type() == nodeMemberExpression:
		expr.Kind = m.ExprMember

		if object := node.ChildByFieldName("object"); object != nil {
			expr.Object = a.toExpr(object, src, base)
		}

		if property := node.ChildByFieldName("property"); property != nil && property.Type() == nodePropertyIdentifier {
			expr.Property = content(property, src)
		}
	case node.Type() == nodeSubscriptExpression:
		expr.Kind = m.ExprMember
		expr.Computed = true

		if object := node.ChildByFieldName("object"); object != nil {
			expr.Object = a.toExpr(object, src, base)
		}
	case node.Type() == nodeObject:
		expr.Kind = m.ExprObject
		expr.Props = a.objectProps(node, src, base)
	case isFunctionNode(node.Type()):
		expr.Kind = m.ExprFunction
		expr.Body = fieldContent(node, "body", src)

		if params := node.ChildByFieldName("parameters"); params != nil {
			expr.Params = content(params, src)
			expr.ParamsStart = int(params.StartByte()) - base
		}
	case node.Type() == nodeArrowFunction:
		expr.Kind = m.ExprArrow
	case node.Type() == nodeCallExpression:
		expr.Kind = m.ExprCall
	}

	return expr
}

func (a *LocalJSFileAdapter) objectProps(node *sitter.Node, src []byte, base int) []m.Property {
	var props []m.Property

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)

		switch child.Type() {
		case nodeComment:
			continue
		case nodePair:
			prop := m.Property{Comment: leadingComment(child, src)}

			key := child.ChildByFieldName("key")
			switch {
			case key == nil:
				prop.Computed = true
			case key.Type() == nodePropertyIdentifier:
				prop.Name = content(key, src)
			case key.Type() == nodeString:
				prop.Name = strings.Trim(content(key, src), `'"`)
			default:
				prop.Computed = true
			}

			if value := child.ChildByFieldName("value"); value != nil {
				prop.Value = a.toExpr(value, src, base)
			}

			props = append(props, prop)
		case nodeMethodDefinition:
			name := child.ChildByFieldName("name")
			if name == nil {
				props = append(props, m.Property{Computed: true})
				continue
			}

			value := &m.Expr{
				Kind:  m.ExprFunction,
				Text:  content(child, src),
				Start: int(child.StartByte()) - base,
				End:   int(child.EndByte()) - base,
				Body:  fieldContent(child, "body", src),
			}

			if params := child.ChildByFieldName("parameters"); params != nil {
				value.Params = content(params, src)
				value.ParamsStart = int(params.StartByte()) - base
			}

			props = append(props, m.Property{
				Name:    content(name, src),
				Method:  true,
				Comment: leadingComment(child, src),
				Value:   value,
			})
		case nodeShorthandProperty:
			props = append(props, m.Property{
				Name: content(child, src),
				Value: &m.Expr{
					Kind:  m.ExprIdentifier,
					Text:  content(child, src),
					Start: int(child.StartByte()) - base,
					End:   int(child.EndByte()) - base,
					Name:  content(child, src),
				},
			})
		default:
			// Spread elements and anything else are not exportable
			// properties.
			props = append(props, m.Property{Computed: true})
		}
	}

	return props
}

// collectRefs gathers every outermost static member chain in the
// statement, skipping the assignment target. Chains broken by computed or
// call links are descended into so their static inner parts still
// surface.
func (a *LocalJSFileAdapter) collectRefs(node *sitter.Node, src []byte, base int, skip *sitter.Node) []m.Reference {
	var refs []m.Reference

	var walk func(n *sitter.Node)

	walk = func(n *sitter.Node) {
		if n == nil || n == skip || (skip != nil && n.StartByte() == skip.StartByte() && n.EndByte() == skip.EndByte()) {
			return
		}

		if n.Type() == nodeMemberExpression {
			expr := a.toExpr(n, src, base)
			if _, ok := staticChain(expr); ok {
				refs = append(refs, m.Reference{
					Expr:  expr,
					Start: expr.Start,
					End:   expr.End,
				})

				return
			}
		}

		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}

	walk(node)

	return refs
}

// staticChain reports whether an expression is a fully static member
// chain rooted at a plain identifier.
func staticChain(expr *m.Expr) ([]string, bool) {
	var reversed []string

	for expr != nil {
		switch expr.Kind {
		case m.ExprIdentifier:
			segments := make([]string, 0, len(reversed)+1)
			segments = append(segments, expr.Name)

			for i := len(reversed) - 1; i >= 0; i-- {
				segments = append(segments, reversed[i])
			}

			return segments, true
		case m.ExprMember:
			if expr.Computed || expr.Property == "" {
				return nil, false
			}

			reversed = append(reversed, expr.Property)
			expr = expr.Object
		default:
			return nil, false
		}
	}

	return nil, false
}

// leadingComment returns the comment block immediately above a node.
// Triple-slash directives are loader territory and never count as leading
// comments.
func leadingComment(node *sitter.Node, src []byte) string {
	prev := node.PrevNamedSibling()
	if prev == nil || prev.Type() != nodeComment {
		return ""
	}

	if prev.EndPoint().Row+1 < node.StartPoint().Row {
		return ""
	}

	text := content(prev, src)
	if strings.HasPrefix(text, "///") {
		return ""
	}

	return text
}

func fieldContent(node *sitter.Node, field string, src []byte) string {
	child := node.ChildByFieldName(field)
	if child == nil {
		return ""
	}

	return content(child, src)
}

func content(node *sitter.Node, src []byte) string {
	return string(src[node.StartByte():node.EndByte()])
}
