// Package ptsource adapts tree-sitter's Python grammar into pyast nodes,
// the one concrete hostapi.Locator/parser pairing used by cmd/pywalk. It is
// never imported by internal/walker: the walker only ever sees the pyast
// contract (§1 "the Python parser is an external collaborator").
package ptsource

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/cwbudde/pywalk/pkg/hostapi"
	"github.com/cwbudde/pywalk/pkg/pyast"
)

// Source pairs the parsed module with the hostapi collaborators cmd/pywalk
// passes to walker.Analyze: a Locator/Indexer/StyleDetector triple built
// from the same parse, so neither re-tokenizes the file.
type Source struct {
	Module *pyast.Module
	Text   []byte
	Locator hostapi.Locator
	Indexer hostapi.Indexer
	Style   hostapi.StyleDetector
}

// Parse parses src as a Python module. Grammar constructs this adapter
// doesn't yet translate are dropped with a best-effort placeholder rather
// than aborting the whole file — see the node-kind switch in
// convertStmt/convertExpr for the current coverage.
func Parse(ctx context.Context, src []byte) (*Source, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("ptsource: parsing: %w", err)
	}

	c := &converter{src: src}
	root := tree.RootNode()
	module := &pyast.Module{Body: c.convertBlock(root)}
	module.Range = spanOf(root)

	loc, idx, style := NewLocator(src, root)
	return &Source{Module: module, Text: src, Locator: loc, Indexer: idx, Style: style}, nil
}

// ParseExpr parses a standalone expression, used to resolve a deferred
// string-type-definition's quoted annotation text on demand (the
// Engine's string-parser collaborator, §4.3).
func ParseExpr(src string) (pyast.Expr, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, []byte(src))
	if err != nil {
		return nil, fmt.Errorf("ptsource: parsing forward reference %q: %w", src, err)
	}

	c := &converter{src: []byte(src)}
	root := tree.RootNode()
	// A bare expression parses as a module whose sole statement is an
	// expression_statement; unwrap it.
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if child.Type() == "expression_statement" && child.ChildCount() > 0 {
			return c.convertExpr(child.Child(0)), nil
		}
	}
	return nil, fmt.Errorf("ptsource: %q is not a single expression", src)
}

type converter struct {
	src []byte
}

func (c *converter) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(c.src)
}

func spanOf(n *sitter.Node) pyast.Range {
	return pyast.Range{Start: pyast.Pos(n.StartByte()), End: pyast.Pos(n.EndByte())}
}

// convertBlock converts every named child of a block/module node into a
// statement, skipping comments and the grammar's own punctuation tokens.
func (c *converter) convertBlock(n *sitter.Node) []pyast.Stmt {
	if n == nil {
		return nil
	}
	var out []pyast.Stmt
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		if stmt := c.convertStmt(child); stmt != nil {
			out = append(out, stmt)
		}
	}
	return out
}

// convertStmt translates one statement-grammar node. Forms this adapter
// doesn't yet model (the finer match-statement pattern grammar, decorators
// carrying call arguments of their own, f-string nesting beyond one level)
// fall through to a bare ExprStmt wrapping the node's source text as an
// opaque placeholder, so a file mixing unsupported constructs with
// supported ones still analyzes the parts it can.
func (c *converter) convertStmt(n *sitter.Node) pyast.Stmt {
	r := spanOf(n)
	switch n.Type() {
	case "function_definition", "async_function_definition":
		return c.convertFunctionDef(n, r)
	case "class_definition":
		return c.convertClassDef(n, r)
	case "return_statement":
		var val pyast.Expr
		if n.NamedChildCount() > 0 {
			val = c.convertExpr(n.NamedChild(0))
		}
		s := &pyast.Return{Value: val}
		s.Range = r
		return s
	case "expression_statement":
		if n.NamedChildCount() == 1 {
			first := n.NamedChild(0)
			switch first.Type() {
			case "assignment":
				return c.convertAssignment(first, r)
			case "augmented_assignment":
				return c.convertAugAssign(first, r)
			}
			s := &pyast.ExprStmt{Value: c.convertExpr(first)}
			s.Range = r
			return s
		}
		s := &pyast.Pass{}
		s.Range = r
		return s
	case "if_statement":
		return c.convertIf(n, r)
	case "for_statement":
		return c.convertFor(n, r)
	case "while_statement":
		s := &pyast.While{
			Test:   c.convertExpr(n.ChildByFieldName("condition")),
			Body:   c.convertBlock(n.ChildByFieldName("body")),
			Orelse: c.convertOptionalElse(n),
		}
		s.Range = r
		return s
	case "with_statement":
		return c.convertWith(n, r)
	case "try_statement":
		return c.convertTry(n, r)
	case "import_statement":
		return c.convertImport(n, r)
	case "import_from_statement":
		return c.convertImportFrom(n, r)
	case "global_statement":
		s := &pyast.Global{Names: c.identifierList(n)}
		s.Range = r
		return s
	case "nonlocal_statement":
		s := &pyast.Nonlocal{Names: c.identifierList(n)}
		s.Range = r
		return s
	case "delete_statement":
		return c.convertDelete(n, r)
	case "assert_statement":
		return c.convertAssert(n, r)
	case "raise_statement":
		return c.convertRaise(n, r)
	case "pass_statement":
		s := &pyast.Pass{}
		s.Range = r
		return s
	case "break_statement":
		s := &pyast.Break{}
		s.Range = r
		return s
	case "continue_statement":
		s := &pyast.Continue{}
		s.Range = r
		return s
	default:
		s := &pyast.ExprStmt{Value: c.opaqueExpr(n, r)}
		s.Range = r
		return s
	}
}

func (c *converter) opaqueExpr(n *sitter.Node, r pyast.Range) pyast.Expr {
	e := &pyast.Constant{Kind: pyast.ConstOther, Value: c.text(n), Raw: c.text(n)}
	e.Range = r
	return e
}

func (c *converter) convertOptionalElse(n *sitter.Node) []pyast.Stmt {
	alt := n.ChildByFieldName("alternative")
	if alt == nil {
		return nil
	}
	if alt.Type() == "else_clause" && alt.NamedChildCount() > 0 {
		return c.convertBlock(alt.NamedChild(0))
	}
	if alt.Type() == "elif_clause" {
		return []pyast.Stmt{c.convertElif(alt)}
	}
	return nil
}

func (c *converter) convertElif(n *sitter.Node) pyast.Stmt {
	r := spanOf(n)
	s := &pyast.If{
		Test:   c.convertExpr(n.ChildByFieldName("condition")),
		Body:   c.convertBlock(n.ChildByFieldName("consequence")),
		Orelse: c.convertOptionalElse(n),
	}
	s.Range = r
	return s
}

func (c *converter) convertFunctionDef(n *sitter.Node, r pyast.Range) pyast.Stmt {
	nameNode := n.ChildByFieldName("name")
	params := n.ChildByFieldName("parameters")
	body := n.ChildByFieldName("body")
	returns := n.ChildByFieldName("return_type")

	var retExpr pyast.Expr
	if returns != nil {
		retExpr = c.convertExpr(returns)
	}

	s := &pyast.FunctionDef{
		Name:      c.text(nameNode),
		Args:      c.convertParameters(params),
		Body:      c.convertBlock(body),
		Returns:   retExpr,
		Async:     strings.HasPrefix(n.Type(), "async"),
		NameRange: spanOf(nameNode),
	}
	s.Range = r
	return s
}

func (c *converter) convertParameters(n *sitter.Node) *pyast.Arguments {
	args := &pyast.Arguments{}
	if n == nil {
		return args
	}
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		p := n.NamedChild(i)
		switch p.Type() {
		case "identifier":
			args.Args = append(args.Args, &pyast.Arg{Name: c.text(p), Range: spanOf(p)})
		case "typed_parameter":
			name := p.NamedChild(0)
			var ann pyast.Expr
			if p.NamedChildCount() > 1 {
				ann = c.convertExpr(p.NamedChild(1))
			}
			args.Args = append(args.Args, &pyast.Arg{Name: c.text(name), Annotation: ann, Range: spanOf(p)})
		case "default_parameter", "typed_default_parameter":
			name := p.ChildByFieldName("name")
			value := p.ChildByFieldName("value")
			var ann pyast.Expr
			if t := p.ChildByFieldName("type"); t != nil {
				ann = c.convertExpr(t)
			}
			args.Args = append(args.Args, &pyast.Arg{Name: c.text(name), Annotation: ann, Range: spanOf(p)})
			args.Defaults = append(args.Defaults, c.convertExpr(value))
		case "list_splat_pattern":
			if p.NamedChildCount() > 0 {
				args.Vararg = &pyast.Arg{Name: c.text(p.NamedChild(0)), Range: spanOf(p)}
			}
		case "dictionary_splat_pattern":
			if p.NamedChildCount() > 0 {
				args.Kwarg = &pyast.Arg{Name: c.text(p.NamedChild(0)), Range: spanOf(p)}
			}
		}
	}
	return args
}

func (c *converter) convertClassDef(n *sitter.Node, r pyast.Range) pyast.Stmt {
	nameNode := n.ChildByFieldName("name")
	body := n.ChildByFieldName("body")
	superclasses := n.ChildByFieldName("superclasses")

	var bases []pyast.Expr
	if superclasses != nil {
		for i := 0; i < int(superclasses.NamedChildCount()); i++ {
			bases = append(bases, c.convertExpr(superclasses.NamedChild(i)))
		}
	}

	s := &pyast.ClassDef{
		Name:      c.text(nameNode),
		Bases:     bases,
		Body:      c.convertBlock(body),
		NameRange: spanOf(nameNode),
	}
	s.Range = r
	return s
}

func (c *converter) convertAssignment(n *sitter.Node, r pyast.Range) pyast.Stmt {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	typeNode := n.ChildByFieldName("type")

	if typeNode != nil {
		var value pyast.Expr
		if right != nil {
			value = c.convertExpr(right)
		}
		s := &pyast.AnnAssign{
			Target:     c.convertExpr(left),
			Annotation: c.convertExpr(typeNode),
			Value:      value,
			Simple:     left.Type() == "identifier",
		}
		s.Range = r
		return s
	}

	s := &pyast.Assign{Targets: []pyast.Expr{c.convertExpr(left)}, Value: c.convertExpr(right)}
	s.Range = r
	return s
}

func (c *converter) convertAugAssign(n *sitter.Node, r pyast.Range) pyast.Stmt {
	left := n.ChildByFieldName("left")
	op := n.ChildByFieldName("operator")
	right := n.ChildByFieldName("right")
	s := &pyast.AugAssign{Target: c.convertExpr(left), Op: c.text(op), Value: c.convertExpr(right)}
	s.Range = r
	return s
}

func (c *converter) convertIf(n *sitter.Node, r pyast.Range) pyast.Stmt {
	s := &pyast.If{
		Test:   c.convertExpr(n.ChildByFieldName("condition")),
		Body:   c.convertBlock(n.ChildByFieldName("consequence")),
		Orelse: c.convertOptionalElse(n),
	}
	s.Range = r
	return s
}

func (c *converter) convertFor(n *sitter.Node, r pyast.Range) pyast.Stmt {
	s := &pyast.For{
		Target: c.convertExpr(n.ChildByFieldName("left")),
		Iter:   c.convertExpr(n.ChildByFieldName("right")),
		Body:   c.convertBlock(n.ChildByFieldName("body")),
		Orelse: c.convertOptionalElse(n),
	}
	s.Range = r
	return s
}

func (c *converter) convertWith(n *sitter.Node, r pyast.Range) pyast.Stmt {
	var items []*pyast.WithItem
	for i := 0; i < int(n.NamedChildCount()); i++ {
		item := n.NamedChild(i)
		if item.Type() != "with_clause" {
			continue
		}
		for j := 0; j < int(item.NamedChildCount()); j++ {
			wc := item.NamedChild(j)
			if wc.Type() != "with_item" || wc.NamedChildCount() == 0 {
				continue
			}
			value := wc.NamedChild(0)
			wi := &pyast.WithItem{}
			if value.Type() == "as_pattern" && value.NamedChildCount() > 1 {
				wi.ContextExpr = c.convertExpr(value.NamedChild(0))
				wi.OptionalVars = c.convertExpr(value.NamedChild(1))
			} else {
				wi.ContextExpr = c.convertExpr(value)
			}
			items = append(items, wi)
		}
	}
	s := &pyast.With{Items: items, Body: c.convertBlock(n.ChildByFieldName("body"))}
	s.Range = r
	return s
}

func (c *converter) convertTry(n *sitter.Node, r pyast.Range) pyast.Stmt {
	t := &pyast.Try{}
	t.Range = r
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "block":
			if t.Body == nil {
				t.Body = c.convertBlock(child)
			}
		case "except_clause":
			t.Handlers = append(t.Handlers, c.convertExceptClause(child))
		case "else_clause":
			if child.NamedChildCount() > 0 {
				t.Orelse = c.convertBlock(child.NamedChild(0))
			}
		case "finally_clause":
			if child.NamedChildCount() > 0 {
				t.Finally = c.convertBlock(child.NamedChild(0))
			}
		}
	}
	return t
}

func (c *converter) convertExceptClause(n *sitter.Node) *pyast.ExceptHandler {
	h := &pyast.ExceptHandler{}
	h.Range = spanOf(n)

	var body *sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "block":
			body = child
		case "as_pattern":
			if child.NamedChildCount() > 1 {
				h.Type = &pyast.ExceptType{Expr: c.convertExpr(child.NamedChild(0))}
				h.Name = c.text(child.NamedChild(1))
			}
		default:
			if h.Type == nil {
				h.Type = &pyast.ExceptType{Expr: c.convertExpr(child)}
			}
		}
	}
	h.Body = c.convertBlock(body)
	return h
}

func (c *converter) convertImport(n *sitter.Node, r pyast.Range) pyast.Stmt {
	var names []*pyast.Alias
	for i := 0; i < int(n.NamedChildCount()); i++ {
		names = append(names, c.convertDottedAlias(n.NamedChild(i)))
	}
	s := &pyast.Import{Names: names}
	s.Range = r
	return s
}

func (c *converter) convertDottedAlias(n *sitter.Node) *pyast.Alias {
	if n.Type() == "aliased_import" {
		name := n.ChildByFieldName("name")
		alias := n.ChildByFieldName("alias")
		return &pyast.Alias{Name: c.text(name), AsName: c.text(alias), NameRange: spanOf(name)}
	}
	return &pyast.Alias{Name: c.text(n), NameRange: spanOf(n)}
}

func (c *converter) convertImportFrom(n *sitter.Node, r pyast.Range) pyast.Stmt {
	moduleNode := n.ChildByFieldName("module_name")
	module := ""
	if moduleNode != nil {
		module = c.text(moduleNode)
	}
	level := 0
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "." {
			level++
		}
	}

	var names []*pyast.Alias
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		if child == moduleNode {
			continue
		}
		switch child.Type() {
		case "wildcard_import":
			names = append(names, &pyast.Alias{Name: "*", NameRange: spanOf(child)})
		case "dotted_name", "identifier":
			names = append(names, &pyast.Alias{Name: c.text(child), NameRange: spanOf(child)})
		case "aliased_import":
			names = append(names, c.convertDottedAlias(child))
		}
	}
	s := &pyast.ImportFrom{Module: module, Names: names, Level: level}
	s.Range = r
	return s
}

func (c *converter) identifierList(n *sitter.Node) []string {
	var out []string
	for i := 0; i < int(n.NamedChildCount()); i++ {
		out = append(out, c.text(n.NamedChild(i)))
	}
	return out
}

func (c *converter) convertDelete(n *sitter.Node, r pyast.Range) pyast.Stmt {
	var targets []pyast.Expr
	for i := 0; i < int(n.NamedChildCount()); i++ {
		targets = append(targets, c.convertExpr(n.NamedChild(i)))
	}
	s := &pyast.Delete{Targets: targets}
	s.Range = r
	return s
}

func (c *converter) convertAssert(n *sitter.Node, r pyast.Range) pyast.Stmt {
	var test, msg pyast.Expr
	if n.NamedChildCount() > 0 {
		test = c.convertExpr(n.NamedChild(0))
	}
	if n.NamedChildCount() > 1 {
		msg = c.convertExpr(n.NamedChild(1))
	}
	s := &pyast.Assert{Test: test, Msg: msg}
	s.Range = r
	return s
}

func (c *converter) convertRaise(n *sitter.Node, r pyast.Range) pyast.Stmt {
	s := &pyast.Raise{}
	s.Range = r
	if n.NamedChildCount() > 0 {
		s.Exc = c.convertExpr(n.NamedChild(0))
	}
	if n.NamedChildCount() > 1 {
		s.Cause = c.convertExpr(n.NamedChild(1))
	}
	return s
}

// convertExpr translates one expression-grammar node; unsupported forms
// fall back to an opaque Constant carrying the node's source text, the
// same degrade-gracefully strategy convertStmt uses.
func (c *converter) convertExpr(n *sitter.Node) pyast.Expr {
	if n == nil {
		return nil
	}
	r := spanOf(n)
	switch n.Type() {
	case "identifier":
		e := &pyast.Name{Id: c.text(n), Ctx: pyast.Load}
		e.Range = r
		return e
	case "true", "false":
		e := &pyast.Constant{Kind: pyast.ConstBool, Value: n.Type() == "true", Raw: c.text(n)}
		e.Range = r
		return e
	case "none":
		e := &pyast.Constant{Kind: pyast.ConstNone, Value: nil, Raw: "None"}
		e.Range = r
		return e
	case "integer", "float":
		e := &pyast.Constant{Kind: pyast.ConstNumber, Value: c.text(n), Raw: c.text(n)}
		e.Range = r
		return e
	case "string":
		e := &pyast.Constant{Kind: pyast.ConstString, Value: c.stringLiteralValue(n), Raw: c.text(n)}
		e.Range = r
		return e
	case "attribute":
		e := &pyast.Attribute{
			Value: c.convertExpr(n.ChildByFieldName("object")),
			Attr:  c.text(n.ChildByFieldName("attribute")),
			Ctx:   pyast.Load,
		}
		e.Range = r
		return e
	case "subscript":
		e := &pyast.Subscript{
			Value: c.convertExpr(n.ChildByFieldName("value")),
			Index: c.convertSubscriptIndex(n),
			Ctx:   pyast.Load,
		}
		e.Range = r
		return e
	case "call":
		return c.convertCall(n, r)
	case "binary_operator":
		e := &pyast.BinOp{
			Left:  c.convertExpr(n.ChildByFieldName("left")),
			Op:    c.text(n.ChildByFieldName("operator")),
			Right: c.convertExpr(n.ChildByFieldName("right")),
		}
		e.Range = r
		return e
	case "boolean_operator":
		e := &pyast.BoolOp{
			Op: c.text(n.ChildByFieldName("operator")),
			Values: []pyast.Expr{
				c.convertExpr(n.ChildByFieldName("left")),
				c.convertExpr(n.ChildByFieldName("right")),
			},
		}
		e.Range = r
		return e
	case "unary_operator":
		e := &pyast.UnaryOp{Op: c.text(n.ChildByFieldName("operator")), Operand: c.convertExpr(n.ChildByFieldName("argument"))}
		e.Range = r
		return e
	case "not_operator":
		e := &pyast.UnaryOp{Op: "not", Operand: c.convertExpr(n.ChildByFieldName("argument"))}
		e.Range = r
		return e
	case "comparison_operator":
		return c.convertCompare(n, r)
	case "tuple":
		e := &pyast.Tuple{Elts: c.exprList(n), Ctx: pyast.Load}
		e.Range = r
		return e
	case "list":
		e := &pyast.List{Elts: c.exprList(n), Ctx: pyast.Load}
		e.Range = r
		return e
	case "set":
		e := &pyast.Set{Elts: c.exprList(n)}
		e.Range = r
		return e
	case "dictionary":
		return c.convertDict(n, r)
	case "named_expression":
		target, _ := c.convertExpr(n.ChildByFieldName("name")).(*pyast.Name)
		e := &pyast.NamedExpr{Target: target, Value: c.convertExpr(n.ChildByFieldName("value"))}
		e.Range = r
		return e
	case "lambda":
		e := &pyast.Lambda{Args: c.convertParameters(n.ChildByFieldName("parameters")), Body: c.convertExpr(n.ChildByFieldName("body"))}
		e.Range = r
		return e
	case "conditional_expression":
		e := &pyast.IfExp{
			Test:   c.convertExpr(n.ChildByFieldName("condition")),
			Body:   c.convertExpr(n.ChildByFieldName("consequence")),
			Orelse: c.convertExpr(n.ChildByFieldName("alternative")),
		}
		e.Range = r
		return e
	case "parenthesized_expression":
		if n.NamedChildCount() > 0 {
			return c.convertExpr(n.NamedChild(0))
		}
	case "list_splat", "dictionary_splat":
		if n.NamedChildCount() > 0 {
			e := &pyast.Starred{Value: c.convertExpr(n.NamedChild(0)), Ctx: pyast.Load}
			e.Range = r
			return e
		}
	case "list_comprehension", "set_comprehension", "dictionary_comprehension", "generator_expression":
		return c.convertComprehension(n, r)
	case "await":
		e := &pyast.Await{Value: c.convertExpr(n.NamedChild(0))}
		e.Range = r
		return e
	case "yield":
		return c.convertYield(n, r)
	}
	return c.opaqueExpr(n, r)
}

func (c *converter) convertYield(n *sitter.Node, r pyast.Range) pyast.Expr {
	if n.NamedChildCount() == 0 {
		e := &pyast.Yield{}
		e.Range = r
		return e
	}
	first := n.NamedChild(0)
	if c.text(first) == "from" && n.NamedChildCount() > 1 {
		e := &pyast.YieldFrom{Value: c.convertExpr(n.NamedChild(1))}
		e.Range = r
		return e
	}
	e := &pyast.Yield{Value: c.convertExpr(first)}
	e.Range = r
	return e
}

func (c *converter) convertComprehension(n *sitter.Node, r pyast.Range) pyast.Expr {
	bodyNode := n.NamedChild(0)
	var gens []*pyast.Comprehension
	count := int(n.NamedChildCount())
	for i := 1; i < count; i++ {
		clause := n.NamedChild(i)
		if clause.Type() != "for_in_clause" {
			continue
		}
		gen := &pyast.Comprehension{
			Target: c.convertExpr(clause.ChildByFieldName("left")),
			Iter:   c.convertExpr(clause.ChildByFieldName("right")),
			Async:  strings.Contains(c.text(clause), "async"),
		}
		gens = append(gens, gen)
	}
	for i := 1; i < count; i++ {
		clause := n.NamedChild(i)
		if clause.Type() == "if_clause" && len(gens) > 0 && clause.NamedChildCount() > 0 {
			gens[len(gens)-1].Ifs = append(gens[len(gens)-1].Ifs, c.convertExpr(clause.NamedChild(0)))
		}
	}

	switch n.Type() {
	case "dictionary_comprehension":
		pair := bodyNode
		e := &pyast.DictComp{
			Key:   c.convertExpr(pair.ChildByFieldName("key")),
			Value: c.convertExpr(pair.ChildByFieldName("value")),
			Gens:  gens,
		}
		e.Range = r
		return e
	case "set_comprehension":
		e := &pyast.SetComp{Elt: c.convertExpr(bodyNode), Gens: gens}
		e.Range = r
		return e
	case "generator_expression":
		e := &pyast.GeneratorExp{Elt: c.convertExpr(bodyNode), Gens: gens}
		e.Range = r
		return e
	default:
		e := &pyast.ListComp{Elt: c.convertExpr(bodyNode), Gens: gens}
		e.Range = r
		return e
	}
}

func (c *converter) convertSubscriptIndex(n *sitter.Node) pyast.Expr {
	count := int(n.NamedChildCount())
	var idx []pyast.Expr
	for i := 1; i < count; i++ {
		idx = append(idx, c.convertExpr(n.NamedChild(i)))
	}
	if len(idx) == 1 {
		return idx[0]
	}
	return &pyast.Tuple{Elts: idx}
}

func (c *converter) convertCall(n *sitter.Node, r pyast.Range) pyast.Expr {
	fn := c.convertExpr(n.ChildByFieldName("function"))
	argsNode := n.ChildByFieldName("arguments")
	call := &pyast.Call{Func: fn}
	call.Range = r
	if argsNode == nil {
		return call
	}
	for i := 0; i < int(argsNode.NamedChildCount()); i++ {
		arg := argsNode.NamedChild(i)
		if arg.Type() == "keyword_argument" {
			call.Keywords = append(call.Keywords, &pyast.Keyword{
				Arg: c.text(arg.ChildByFieldName("name")), Value: c.convertExpr(arg.ChildByFieldName("value")),
			})
			continue
		}
		if arg.Type() == "dictionary_splat" && arg.NamedChildCount() > 0 {
			call.Keywords = append(call.Keywords, &pyast.Keyword{Arg: "", Value: c.convertExpr(arg.NamedChild(0))})
			continue
		}
		call.Args = append(call.Args, c.convertExpr(arg))
	}
	return call
}

func (c *converter) convertCompare(n *sitter.Node, r pyast.Range) pyast.Expr {
	left := c.convertExpr(n.ChildByFieldName("left"))
	var ops []string
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if !child.IsNamed() {
			if op := operatorText(child.Type()); op != "" {
				ops = append(ops, op)
			}
		}
	}
	var comparators []pyast.Expr
	for i := 1; i < int(n.NamedChildCount()); i++ {
		comparators = append(comparators, c.convertExpr(n.NamedChild(i)))
	}
	e := &pyast.Compare{Left: left, Ops: ops, Comparators: comparators}
	e.Range = r
	return e
}

func operatorText(t string) string {
	switch t {
	case "<", ">", "==", "!=", "<=", ">=", "in", "not in", "is", "is not":
		return t
	}
	return ""
}

func (c *converter) exprList(n *sitter.Node) []pyast.Expr {
	var out []pyast.Expr
	for i := 0; i < int(n.NamedChildCount()); i++ {
		out = append(out, c.convertExpr(n.NamedChild(i)))
	}
	return out
}

func (c *converter) convertDict(n *sitter.Node, r pyast.Range) pyast.Expr {
	d := &pyast.Dict{}
	d.Range = r
	for i := 0; i < int(n.NamedChildCount()); i++ {
		pair := n.NamedChild(i)
		if pair.Type() == "dictionary_splat" {
			if pair.NamedChildCount() > 0 {
				d.Keys = append(d.Keys, nil)
				d.Values = append(d.Values, c.convertExpr(pair.NamedChild(0)))
			}
			continue
		}
		if pair.Type() != "pair" {
			continue
		}
		d.Keys = append(d.Keys, c.convertExpr(pair.ChildByFieldName("key")))
		d.Values = append(d.Values, c.convertExpr(pair.ChildByFieldName("value")))
	}
	return d
}

// stringLiteralValue strips prefix/quote characters from a string node's
// source text. It doesn't attempt full escape decoding for triple-quoted
// or raw strings — good enough to feed back into ParseExpr for forward
// references, which is its only caller that cares about the value rather
// than Raw.
func (c *converter) stringLiteralValue(n *sitter.Node) string {
	raw := c.text(n)
	trimmed := raw
	for _, prefix := range []string{"rb", "Rb", "rB", "RB", "br", "Br", "bR", "BR", "r", "R", "f", "F", "b", "B", "u", "U"} {
		if strings.HasPrefix(trimmed, prefix) && len(trimmed) > len(prefix) && (trimmed[len(prefix)] == '"' || trimmed[len(prefix)] == '\'') {
			trimmed = trimmed[len(prefix):]
			break
		}
	}
	if strings.HasPrefix(trimmed, `"""`) || strings.HasPrefix(trimmed, "'''") {
		quote := trimmed[:3]
		return strings.TrimSuffix(strings.TrimPrefix(trimmed, quote), quote)
	}
	if len(trimmed) >= 2 {
		if unquoted, err := strconv.Unquote(strings.Replace(trimmed, "'", `"`, -1)); err == nil {
			return unquoted
		}
		return trimmed[1 : len(trimmed)-1]
	}
	return trimmed
}
