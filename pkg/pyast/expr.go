package pyast

// BoolOp is `a and b and ...` / `a or b or ...`.
type BoolOp struct {
	baseExpr
	Op     string // "and" | "or"
	Values []Expr
}

// NamedExpr is the walrus operator `target := value` (PEP 572).
type NamedExpr struct {
	baseExpr
	Target *Name
	Value  Expr
}

// BinOp is `left op right`.
type BinOp struct {
	baseExpr
	Left  Expr
	Op    string
	Right Expr
}

// UnaryOp is `op operand`.
type UnaryOp struct {
	baseExpr
	Op      string
	Operand Expr
}

// Lambda is `lambda args: body`.
type Lambda struct {
	baseExpr
	Args *Arguments
	Body Expr
}

// IfExp is the ternary `body if test else orelse`.
type IfExp struct {
	baseExpr
	Test   Expr
	Body   Expr
	Orelse Expr
}

// Dict is `{k: v, ..., **rest}`; a nil key at index i means that Values[i]
// is a `**` unpack rather than a key/value pair.
type Dict struct {
	baseExpr
	Keys   []Expr
	Values []Expr
}

// Set is `{a, b, ...}`.
type Set struct {
	baseExpr
	Elts []Expr
}

// Comprehension is one `for target in iter [if cond]*` clause.
type Comprehension struct {
	Target Expr
	Iter   Expr
	Ifs    []Expr
	Async  bool
}

// ListComp, SetComp, DictComp, GeneratorExp all share the same
// "element + generator clauses" shape; DictComp additionally carries a
// value expression alongside the key.
type ListComp struct {
	baseExpr
	Elt    Expr
	Gens   []*Comprehension
}

type SetComp struct {
	baseExpr
	Elt  Expr
	Gens []*Comprehension
}

type DictComp struct {
	baseExpr
	Key   Expr
	Value Expr
	Gens  []*Comprehension
}

type GeneratorExp struct {
	baseExpr
	Elt  Expr
	Gens []*Comprehension
}

// Await is `await value`.
type Await struct {
	baseExpr
	Value Expr
}

// Yield is `yield [value]`.
type Yield struct {
	baseExpr
	Value Expr // nil for bare `yield`
}

// YieldFrom is `yield from value`.
type YieldFrom struct {
	baseExpr
	Value Expr
}

// Compare is `left op0 c0 op1 c1 ...` (chained comparisons).
type Compare struct {
	baseExpr
	Left        Expr
	Ops         []string
	Comparators []Expr
}

// Keyword is one `name=value` or `**value` call argument.
type Keyword struct {
	Arg   string // "" for a `**` splat
	Value Expr
}

// Call is `fn(args..., kw=val..., *star, **kwstar)`.
type Call struct {
	baseExpr
	Func     Expr
	Args     []Expr
	Keywords []*Keyword
}

// FormattedValue is one `{expr[!conv][:spec]}` slot of an f-string.
type FormattedValue struct {
	baseExpr
	Value      Expr
	Conversion rune // 0, 's', 'r', or 'a'
	FormatSpec Expr // nil if no format spec, else a JoinedStr
}

// JoinedStr is an f-string: a sequence of literal-text Constants and
// FormattedValue slots.
type JoinedStr struct {
	baseExpr
	Values []Expr
}

// ConstantKind distinguishes the literal types the walker treats specially
// (most importantly, strings, which may be forward-reference annotations).
type ConstantKind int

const (
	ConstOther ConstantKind = iota
	ConstString
	ConstBytes
	ConstNone
	ConstEllipsis
	ConstBool
	ConstNumber
)

// Constant is any literal: numbers, strings, bytes, None, True/False, ....
type Constant struct {
	baseExpr
	Kind  ConstantKind
	Value any
	// Raw is the literal's exact source text for Kind == ConstString, used
	// to parse forward-reference annotations without re-deriving quoting.
	Raw string
}

// Attribute is `value.attr`.
type Attribute struct {
	baseExpr
	Value Expr
	Attr  string
	Ctx   ExprContext
}

// Slice is `lower:upper:step` inside a Subscript; any part may be nil.
type Slice struct {
	baseExpr
	Lower Expr
	Upper Expr
	Step  Expr
}

// Subscript is `value[slice]`.
type Subscript struct {
	baseExpr
	Value Expr
	Index Expr // *Slice, a Tuple of indices, or a plain Expr
	Ctx   ExprContext
}

// Starred is `*value` in an assignment target, call argument, or display.
type Starred struct {
	baseExpr
	Value Expr
	Ctx   ExprContext
}

// Name is a bare identifier occurrence.
type Name struct {
	baseExpr
	Id  string
	Ctx ExprContext
}

// List is `[elt, ...]`.
type List struct {
	baseExpr
	Elts []Expr
	Ctx  ExprContext
}

// Tuple is `elt, ...` or `(elt, ...)`.
type Tuple struct {
	baseExpr
	Elts []Expr
	Ctx  ExprContext
}

// Arg is one parameter of a function/lambda signature.
type Arg struct {
	Name       string
	Annotation Expr // nil if unannotated
	Range      Range
}

// Arguments is a full parameter list: positional-only, positional-or-
// keyword, a `*args`/`*` marker, keyword-only, and `**kwargs`, plus the
// defaults that pair with the tail of Posonly+Args and all of KwOnly.
type Arguments struct {
	Posonly    []*Arg
	Args       []*Arg
	Vararg     *Arg // nil if no `*args`
	KwOnly     []*Arg
	KwDefaults []Expr // one per KwOnly entry; nil element if no default
	Kwarg      *Arg   // nil if no `**kwargs`
	Defaults   []Expr // defaults for the tail of Posonly+Args
}

// TypeParam is one PEP 695 type-parameter (`[T]`, `[T: Bound]`, `[*Ts]`,
// `[**P]`).
type TypeParam struct {
	Name  string
	Bound Expr // nil if unbounded
	Kind  TypeParamKind
	Range Range
}

type TypeParamKind int

const (
	TypeParamVar TypeParamKind = iota
	TypeParamVarTuple
	TypeParamSpec
)
