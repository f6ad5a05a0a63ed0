// Copyright © 2024 The ELPS authors

package parser

import (
	"strings"

	"github.com/luthersystems/pyscan/pyast"
	sitter "github.com/smacker/go-tree-sitter"
)

// lowerer converts tree-sitter nodes into pyast nodes. text is the source
// as a string so node texts can share its memory. Constructs the grammar
// accepts but Python 3 rejects are recorded in err; only the first is kept.
type lowerer struct {
	text     string
	filename string
	err      *SyntaxError
}

func (l *lowerer) fail(n *sitter.Node, msg string) {
	if l.err != nil {
		return
	}
	pt := n.StartPoint()
	l.err = &SyntaxError{
		Msg:      msg,
		Filename: l.filename,
		Line:     int(pt.Row) + 1,
		Col:      int(pt.Column) + 1,
	}
}

func (l *lowerer) newNode(kind pyast.Kind, n *sitter.Node) *pyast.Node {
	start := n.StartPoint()
	end := n.EndPoint()
	endRow := end.Row
	// A node ending at column 0 stops before the line it points at.
	if end.Column == 0 && endRow > start.Row {
		endRow--
	}
	return &pyast.Node{
		Kind:    kind,
		Line:    int(start.Row) + 1,
		Col:     int(start.Column) + 1,
		EndLine: int(endRow) + 1,
		Text:    l.content(n),
	}
}

func (l *lowerer) content(n *sitter.Node) string {
	start, end := int(n.StartByte()), int(n.EndByte())
	if start < 0 || end > len(l.text) || start > end {
		return ""
	}
	return l.text[start:end]
}

// named returns the named children of n, skipping comments.
func named(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		c := n.NamedChild(i)
		if c == nil || isTrivia(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func isTrivia(n *sitter.Node) bool {
	switch n.Type() {
	case "comment", "line_continuation":
		return true
	}
	return false
}

// hasToken reports whether n has a direct anonymous child of the given type.
func hasToken(n *sitter.Node, typ string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c != nil && !c.IsNamed() && c.Type() == typ {
			return true
		}
	}
	return false
}

func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

// closeCompound makes a compound statement end where its last lowered
// child ends, so trailing comments do not extend it.
func closeCompound(n *pyast.Node) *pyast.Node {
	if len(n.Children) > 0 {
		n.EndLine = n.Children[len(n.Children)-1].End()
	}
	return n
}

func (l *lowerer) module(n *sitter.Node) *pyast.Node {
	mod := l.newNode(pyast.KindModule, n)
	mod.Body = l.statements(n)
	mod.Append(mod.Body...)
	return mod
}

// statements lowers the statement children of a module or block.
func (l *lowerer) statements(n *sitter.Node) []*pyast.Node {
	var out []*pyast.Node
	for _, c := range named(n) {
		if s := l.stmt(c); s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (l *lowerer) suite(n *sitter.Node) []*pyast.Node {
	if n == nil {
		return nil
	}
	if n.Type() == "block" {
		return l.statements(n)
	}
	if s := l.stmt(n); s != nil {
		return []*pyast.Node{s}
	}
	return nil
}

func (l *lowerer) stmt(n *sitter.Node) *pyast.Node {
	switch n.Type() {
	case "function_definition":
		return l.function(n)
	case "class_definition":
		return l.class(n)
	case "decorated_definition":
		return l.decorated(n)
	case "import_statement":
		return l.importStmt(n)
	case "import_from_statement":
		return l.importFrom(n)
	case "future_import_statement":
		return l.futureImport(n)
	case "expression_statement":
		return l.expressionStmt(n)
	case "if_statement":
		return l.ifStmt(n)
	case "for_statement":
		return l.forStmt(n)
	case "while_statement":
		return l.whileStmt(n)
	case "try_statement":
		return l.tryStmt(n)
	case "with_statement":
		return l.withStmt(n)
	case "match_statement":
		return l.matchStmt(n)
	case "return_statement":
		return l.simple(pyast.KindReturn, n)
	case "raise_statement":
		return l.simple(pyast.KindRaise, n)
	case "assert_statement":
		return l.simple(pyast.KindAssert, n)
	case "delete_statement":
		del := l.newNode(pyast.KindDelete, n)
		for _, c := range named(n) {
			del.Append(l.target(c, pyast.CtxDel))
		}
		return del
	case "global_statement":
		return l.newNode(pyast.KindGlobal, n)
	case "nonlocal_statement":
		return l.newNode(pyast.KindNonlocal, n)
	case "pass_statement":
		return l.newNode(pyast.KindPass, n)
	case "break_statement":
		return l.newNode(pyast.KindBreak, n)
	case "continue_statement":
		return l.newNode(pyast.KindContinue, n)
	case "print_statement":
		l.fail(n, "Missing parentheses in call to 'print'. Did you mean print(...)?")
		return l.newNode(pyast.KindOther, n)
	case "exec_statement":
		l.fail(n, "Missing parentheses in call to 'exec'")
		return l.newNode(pyast.KindOther, n)
	case "type_alias_statement":
		return l.typeAlias(n)
	case "block":
		other := l.newNode(pyast.KindOther, n)
		other.Body = l.statements(n)
		other.Append(other.Body...)
		return other
	default:
		return l.expr(n)
	}
}

// simple lowers a statement whose children are all loaded expressions.
func (l *lowerer) simple(kind pyast.Kind, n *sitter.Node) *pyast.Node {
	s := l.newNode(kind, n)
	for _, c := range named(n) {
		s.Append(l.expr(c))
	}
	return s
}

func (l *lowerer) function(n *sitter.Node) *pyast.Node {
	kind := pyast.KindFunctionDef
	if hasToken(n, "async") {
		kind = pyast.KindAsyncFunctionDef
	}
	fn := l.newNode(kind, n)
	if name := n.ChildByFieldName("name"); name != nil {
		fn.Name = l.content(name)
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		l.params(params, fn)
	}
	if rt := n.ChildByFieldName("return_type"); rt != nil {
		fn.Append(l.expr(rt))
	}
	fn.Body = l.suite(n.ChildByFieldName("body"))
	fn.Append(fn.Body...)
	return closeCompound(fn)
}

// params lowers a parameters or lambda_parameters node into owner.Params,
// appending one KindParam child per parameter.
func (l *lowerer) params(n *sitter.Node, owner *pyast.Node) {
	kind := pyast.ParamPositional
	seenDefault := false
	for _, c := range named(n) {
		switch c.Type() {
		case "positional_separator":
			for _, p := range owner.Params {
				if p.Kind == pyast.ParamPositional {
					p.Kind = pyast.ParamPositionalOnly
				}
			}
			continue
		case "keyword_separator":
			kind = pyast.ParamKeywordOnly
			continue
		}

		p := &pyast.Param{Kind: kind}
		node := l.newNode(pyast.KindParam, c)
		var nameNode, typeNode, valueNode *sitter.Node

		switch c.Type() {
		case "identifier":
			nameNode = c
		case "default_parameter", "typed_default_parameter":
			nameNode = c.ChildByFieldName("name")
			typeNode = c.ChildByFieldName("type")
			valueNode = c.ChildByFieldName("value")
		case "typed_parameter":
			typeNode = c.ChildByFieldName("type")
			for _, inner := range named(c) {
				if !sameNode(inner, typeNode) {
					nameNode = inner
					break
				}
			}
		default:
			nameNode = c
		}

		if nameNode != nil {
			switch nameNode.Type() {
			case "list_splat_pattern":
				p.Kind = pyast.ParamVarArgs
				kind = pyast.ParamKeywordOnly
				p.Name = splatName(l, nameNode)
			case "dictionary_splat_pattern":
				p.Kind = pyast.ParamKwArgs
				p.Name = splatName(l, nameNode)
			default:
				p.Name = l.content(nameNode)
			}
		}
		if typeNode != nil {
			node.Append(l.expr(typeNode))
		}
		if valueNode != nil {
			p.Default = l.expr(valueNode)
			node.Append(p.Default)
		}
		if p.Kind == pyast.ParamPositional {
			if p.Default != nil {
				seenDefault = true
			} else if seenDefault {
				l.fail(c, "non-default argument follows default argument")
			}
		}
		node.Name = p.Name
		p.Node = node
		owner.Params = append(owner.Params, p)
		owner.Append(node)
	}
}

func splatName(l *lowerer, n *sitter.Node) string {
	for _, c := range named(n) {
		return l.content(c)
	}
	return strings.TrimLeft(l.content(n), "*")
}

func (l *lowerer) class(n *sitter.Node) *pyast.Node {
	cls := l.newNode(pyast.KindClassDef, n)
	if name := n.ChildByFieldName("name"); name != nil {
		cls.Name = l.content(name)
	}
	if supers := n.ChildByFieldName("superclasses"); supers != nil {
		for _, arg := range named(supers) {
			lowered := l.expr(arg)
			switch arg.Type() {
			case "keyword_argument", "dictionary_splat":
			default:
				cls.Bases = append(cls.Bases, lowered)
			}
			cls.Append(lowered)
		}
	}
	cls.Body = l.suite(n.ChildByFieldName("body"))
	cls.Append(cls.Body...)
	return closeCompound(cls)
}

func (l *lowerer) decorated(n *sitter.Node) *pyast.Node {
	var decorators []*pyast.Node
	var def *pyast.Node
	for _, c := range named(n) {
		switch c.Type() {
		case "decorator":
			for _, e := range named(c) {
				decorators = append(decorators, l.expr(e))
			}
		case "function_definition":
			def = l.function(c)
		case "class_definition":
			def = l.class(c)
		}
	}
	if def == nil {
		other := l.newNode(pyast.KindOther, n)
		other.Append(decorators...)
		return other
	}
	def.Decorators = decorators
	def.Children = append(append([]*pyast.Node{}, decorators...), def.Children...)
	return def
}

func (l *lowerer) importStmt(n *sitter.Node) *pyast.Node {
	imp := l.newNode(pyast.KindImport, n)
	for _, c := range named(n) {
		if a, ok := l.alias(c); ok {
			imp.Aliases = append(imp.Aliases, a)
		}
	}
	return imp
}

func (l *lowerer) alias(n *sitter.Node) (pyast.Alias, bool) {
	switch n.Type() {
	case "dotted_name", "identifier":
		return pyast.Alias{Name: l.content(n)}, true
	case "aliased_import":
		a := pyast.Alias{}
		if name := n.ChildByFieldName("name"); name != nil {
			a.Name = l.content(name)
		}
		if as := n.ChildByFieldName("alias"); as != nil {
			s := l.content(as)
			a.AsName = &s
		}
		return a, true
	case "wildcard_import":
		return pyast.Alias{Name: "*"}, true
	}
	return pyast.Alias{}, false
}

func (l *lowerer) importFrom(n *sitter.Node) *pyast.Node {
	imp := l.newNode(pyast.KindImportFrom, n)
	mod := n.ChildByFieldName("module_name")
	if mod != nil {
		switch mod.Type() {
		case "relative_import":
			for _, c := range named(mod) {
				switch c.Type() {
				case "import_prefix":
					imp.Level = strings.Count(l.content(c), ".")
				case "dotted_name":
					s := l.content(c)
					imp.Module = &s
				}
			}
		default:
			s := l.content(mod)
			imp.Module = &s
		}
	}
	for _, c := range named(n) {
		if sameNode(c, mod) {
			continue
		}
		if a, ok := l.alias(c); ok {
			imp.Aliases = append(imp.Aliases, a)
		}
	}
	return imp
}

func (l *lowerer) futureImport(n *sitter.Node) *pyast.Node {
	imp := l.newNode(pyast.KindImportFrom, n)
	mod := "__future__"
	imp.Module = &mod
	for _, c := range named(n) {
		if a, ok := l.alias(c); ok {
			imp.Aliases = append(imp.Aliases, a)
		}
	}
	return imp
}

func (l *lowerer) expressionStmt(n *sitter.Node) *pyast.Node {
	children := named(n)
	if len(children) == 1 {
		switch children[0].Type() {
		case "assignment":
			return l.assignment(children[0], n)
		case "augmented_assignment":
			return l.augAssignment(children[0], n)
		}
	}
	s := l.newNode(pyast.KindExpr, n)
	switch len(children) {
	case 0:
		return s
	case 1:
		s.Left = l.expr(children[0])
	default:
		tuple := l.newNode(pyast.KindTuple, n)
		for _, c := range children {
			tuple.Append(l.expr(c))
		}
		s.Left = tuple
	}
	s.Append(s.Left)
	return s
}

// assignment lowers an assignment node. stmt, when non-nil, supplies the
// position of the enclosing statement.
func (l *lowerer) assignment(n *sitter.Node, stmt *sitter.Node) *pyast.Node {
	pos := n
	if stmt != nil {
		pos = stmt
	}
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	typ := n.ChildByFieldName("type")

	kind := pyast.KindAssign
	if typ != nil {
		kind = pyast.KindAnnAssign
	}
	a := l.newNode(kind, pos)
	if left != nil {
		a.Append(l.target(left, pyast.CtxStore))
	}
	if typ != nil {
		a.Append(l.expr(typ))
	}
	if right != nil {
		a.Append(l.rhs(right))
	}
	return a
}

func (l *lowerer) augAssignment(n *sitter.Node, stmt *sitter.Node) *pyast.Node {
	pos := n
	if stmt != nil {
		pos = stmt
	}
	a := l.newNode(pyast.KindAugAssign, pos)
	if op := n.ChildByFieldName("operator"); op != nil {
		a.Op = op.Type()
	}
	if left := n.ChildByFieldName("left"); left != nil {
		a.Append(l.target(left, pyast.CtxStore))
	}
	if right := n.ChildByFieldName("right"); right != nil {
		a.Append(l.rhs(right))
	}
	return a
}

func (l *lowerer) rhs(n *sitter.Node) *pyast.Node {
	switch n.Type() {
	case "assignment":
		return l.assignment(n, nil)
	case "augmented_assignment":
		return l.augAssignment(n, nil)
	}
	return l.expr(n)
}

func (l *lowerer) ifStmt(n *sitter.Node) *pyast.Node {
	s := l.newNode(pyast.KindIf, n)
	if cond := n.ChildByFieldName("condition"); cond != nil {
		s.Append(l.expr(cond))
	}
	s.Body = l.suite(n.ChildByFieldName("consequence"))
	s.Append(s.Body...)
	for _, c := range named(n) {
		switch c.Type() {
		case "elif_clause":
			s.Append(l.ifStmt(c))
		case "else_clause":
			s.Append(l.suite(c.ChildByFieldName("body"))...)
		}
	}
	return closeCompound(s)
}

func (l *lowerer) forStmt(n *sitter.Node) *pyast.Node {
	kind := pyast.KindFor
	if hasToken(n, "async") {
		kind = pyast.KindAsyncFor
	}
	s := l.newNode(kind, n)
	if left := n.ChildByFieldName("left"); left != nil {
		s.Append(l.target(left, pyast.CtxStore))
	}
	if right := n.ChildByFieldName("right"); right != nil {
		s.Append(l.expr(right))
	}
	s.Body = l.suite(n.ChildByFieldName("body"))
	s.Append(s.Body...)
	l.elseClause(n, s)
	return closeCompound(s)
}

func (l *lowerer) whileStmt(n *sitter.Node) *pyast.Node {
	s := l.newNode(pyast.KindWhile, n)
	if cond := n.ChildByFieldName("condition"); cond != nil {
		s.Append(l.expr(cond))
	}
	s.Body = l.suite(n.ChildByFieldName("body"))
	s.Append(s.Body...)
	l.elseClause(n, s)
	return closeCompound(s)
}

func (l *lowerer) elseClause(n *sitter.Node, s *pyast.Node) {
	for _, c := range named(n) {
		if c.Type() == "else_clause" {
			s.Append(l.suite(c.ChildByFieldName("body"))...)
		}
	}
}

func (l *lowerer) tryStmt(n *sitter.Node) *pyast.Node {
	s := l.newNode(pyast.KindTry, n)
	s.Body = l.suite(n.ChildByFieldName("body"))
	s.Append(s.Body...)
	for _, c := range named(n) {
		switch c.Type() {
		case "except_clause", "except_group_clause":
			s.Append(l.handler(c))
		case "else_clause":
			s.Append(l.suite(c.ChildByFieldName("body"))...)
		case "finally_clause":
			for _, b := range named(c) {
				s.Append(l.suite(b)...)
			}
		}
	}
	return closeCompound(s)
}

// handler lowers an except clause. Left holds the exception type and is
// nil for a bare "except:".
func (l *lowerer) handler(n *sitter.Node) *pyast.Node {
	h := l.newNode(pyast.KindExceptHandler, n)
	var exprs []*sitter.Node
	var body *sitter.Node
	for _, c := range named(n) {
		if c.Type() == "block" {
			body = c
			continue
		}
		exprs = append(exprs, c)
	}
	if len(exprs) > 0 {
		first := exprs[0]
		if first.Type() == "as_pattern" {
			parts := named(first)
			if len(parts) > 0 {
				h.Left = l.expr(parts[0])
			}
			if len(parts) > 1 {
				h.Name = l.content(parts[len(parts)-1])
			}
		} else {
			h.Left = l.expr(first)
			if len(exprs) > 1 {
				h.Name = l.content(exprs[1])
			}
		}
		h.Append(h.Left)
	}
	h.Body = l.suite(body)
	h.Append(h.Body...)
	return closeCompound(h)
}

func (l *lowerer) withStmt(n *sitter.Node) *pyast.Node {
	kind := pyast.KindWith
	if hasToken(n, "async") {
		kind = pyast.KindAsyncWith
	}
	s := l.newNode(kind, n)
	for _, c := range named(n) {
		if c.Type() == "with_clause" {
			l.withItems(c, s)
		}
	}
	s.Body = l.suite(n.ChildByFieldName("body"))
	s.Append(s.Body...)
	return closeCompound(s)
}

func (l *lowerer) withItems(n *sitter.Node, s *pyast.Node) {
	for _, item := range named(n) {
		if item.Type() != "with_item" {
			// Parenthesized item lists may nest.
			l.withItems(item, s)
			continue
		}
		parts := named(item)
		if len(parts) == 0 {
			continue
		}
		if parts[0].Type() == "as_pattern" {
			inner := named(parts[0])
			if len(inner) > 0 {
				s.Append(l.expr(inner[0]))
			}
			if len(inner) > 1 {
				s.Append(l.target(unwrapTarget(inner[len(inner)-1]), pyast.CtxStore))
			}
			continue
		}
		s.Append(l.expr(parts[0]))
		if len(parts) > 1 {
			s.Append(l.target(unwrapTarget(parts[1]), pyast.CtxStore))
		}
	}
}

// unwrapTarget descends through an as_pattern_target wrapper.
func unwrapTarget(n *sitter.Node) *sitter.Node {
	if n.Type() == "as_pattern_target" {
		if inner := named(n); len(inner) == 1 {
			return inner[0]
		}
	}
	return n
}

func (l *lowerer) matchStmt(n *sitter.Node) *pyast.Node {
	s := l.newNode(pyast.KindMatch, n)
	for _, c := range named(n) {
		switch c.Type() {
		case "block":
			for _, cc := range named(c) {
				if cc.Type() == "case_clause" {
					s.Append(l.caseClause(cc))
				}
			}
		case "case_clause":
			s.Append(l.caseClause(c))
		default:
			s.Append(l.expr(c))
		}
	}
	return closeCompound(s)
}

func (l *lowerer) caseClause(n *sitter.Node) *pyast.Node {
	c := l.newNode(pyast.KindMatchCase, n)
	for _, part := range named(n) {
		switch part.Type() {
		case "block":
			c.Body = l.statements(part)
			c.Append(c.Body...)
		case "if_clause":
			for _, e := range named(part) {
				c.Append(l.expr(e))
			}
		default:
			c.Append(l.pattern(part))
		}
	}
	return closeCompound(c)
}

// pattern lowers a match-case pattern. Capture names bind without being
// Name nodes; dotted value patterns and class patterns load names.
func (l *lowerer) pattern(n *sitter.Node) *pyast.Node {
	p := l.newNode(pyast.KindOther, n)
	switch n.Type() {
	case "identifier":
		return p
	case "dotted_name":
		ids := named(n)
		if len(ids) >= 2 {
			p.Append(l.dotted(ids))
		}
		return p
	case "class_pattern":
		for i, c := range named(n) {
			if i == 0 && c.Type() == "dotted_name" {
				p.Append(l.dotted(named(c)))
				continue
			}
			p.Append(l.pattern(c))
		}
		return p
	case "keyword_pattern":
		for i, c := range named(n) {
			if i == 0 && c.Type() == "identifier" {
				continue
			}
			p.Append(l.pattern(c))
		}
		return p
	case "string", "concatenated_string", "integer", "float", "true", "false", "none":
		return l.expr(n)
	}
	for _, c := range named(n) {
		p.Append(l.pattern(c))
	}
	return p
}

// dotted builds a loaded attribute chain from a list of identifiers.
func (l *lowerer) dotted(ids []*sitter.Node) *pyast.Node {
	if len(ids) == 0 {
		return nil
	}
	cur := l.newNode(pyast.KindName, ids[0])
	cur.Name = l.content(ids[0])
	for _, id := range ids[1:] {
		attr := l.newNode(pyast.KindAttribute, id)
		attr.Line, attr.Col = cur.Line, cur.Col
		attr.Name = l.content(id)
		attr.Text = cur.Text + "." + attr.Name
		attr.Left = cur
		attr.Append(cur)
		cur = attr
	}
	return cur
}

func (l *lowerer) typeAlias(n *sitter.Node) *pyast.Node {
	s := l.newNode(pyast.KindOther, n)
	for i, c := range named(n) {
		if i == 0 {
			inner := c
			if c.Type() == "type" {
				if parts := named(c); len(parts) > 0 {
					inner = parts[0]
				}
			}
			if inner.Type() == "identifier" {
				s.Append(l.target(inner, pyast.CtxStore))
				continue
			}
		}
		s.Append(l.expr(c))
	}
	return s
}

// target lowers an assignment target, giving bare names the ctx context.
func (l *lowerer) target(n *sitter.Node, ctx pyast.Context) *pyast.Node {
	switch n.Type() {
	case "identifier":
		name := l.newNode(pyast.KindName, n)
		name.Name = l.content(n)
		name.Ctx = ctx
		return name
	case "tuple", "tuple_pattern", "pattern_list", "expression_list":
		t := l.newNode(pyast.KindTuple, n)
		for _, c := range named(n) {
			t.Append(l.target(c, ctx))
		}
		return t
	case "list", "list_pattern":
		t := l.newNode(pyast.KindList, n)
		for _, c := range named(n) {
			t.Append(l.target(c, ctx))
		}
		return t
	case "list_splat_pattern", "list_splat":
		t := l.newNode(pyast.KindStarred, n)
		for _, c := range named(n) {
			t.Append(l.target(c, ctx))
		}
		return t
	case "parenthesized_expression":
		if inner := named(n); len(inner) == 1 {
			return l.target(inner[0], ctx)
		}
	}
	return l.expr(n)
}
