package grammar

// Grammar nodes for the IR's stable textual surface (spec §6). Each
// struct mirrors a rendering rule fixed in internal/ir/printer.go; the
// two are kept side by side deliberately so a grammar change and its
// printer counterpart are easy to compare.
//
// Coverage: module/global/function/block scaffolding, and the
// instruction core exercised by the worked examples (binary, unary,
// matrixMultiply, transpose, load, store, call, branch, conditional,
// return). reduce/scan/concatenate/shapeCast/dataTypeCast/element/
// insert/subtensor/allocateHeap/allocateBox/projectBox/deallocate/
// gradient print (printer.go handles every kind) but are not yet
// accepted back by this grammar; internal/ir/fromtext.go documents the
// gap at its entry point.

// Program is the grammar's single entry symbol.
type Program struct {
	Module *ModuleDecl `@@`
}

// ModuleDecl is "module Name" followed by zero or more global
// declarations and zero or more function definitions.
type ModuleDecl struct {
	Name      string          `"module" @Ident`
	Globals   []*GlobalDecl   `@@*`
	Functions []*FunctionDecl `@@*`
}

// GlobalDecl is "declare <kind> <sigil><name> : <type> [= <literal>]".
type GlobalDecl struct {
	Kind        string      `"declare" @("placeholder" | "variable" | "output")`
	Sigil       string      `@("%" | "@")`
	Name        string      `@Ident`
	Type        *TypeRef    `":" @@`
	Initializer *LiteralRef `[ "=" @@ ]`
}

// ArgDecl is "%name: Type", shared by function arguments and block
// parameters.
type ArgDecl struct {
	Name string   `"%" @Ident`
	Type *TypeRef `":" @@`
}

// FunctionDecl is "[differentiable ]func @name(args)[ -> Type] { blocks }".
type FunctionDecl struct {
	Differentiable string       `[ @"differentiable" ]`
	Name           string       `"func" "@" @Ident`
	Args           []*ArgDecl   `"(" [ @@ { "," @@ } ] ")"`
	Result         *TypeRef     `[ "->" @@ ]`
	Blocks         []*BlockDecl `"{" @@+ "}"`
}

// BlockDecl is "name(args):" followed by its instruction stream.
type BlockDecl struct {
	Name         string             `@Ident`
	Args         []*ArgDecl         `"(" [ @@ { "," @@ } ] ")"`
	Instructions []*InstructionDecl `":" @@*`
}

// InstructionDecl is "[%name = ]operation".
type InstructionDecl struct {
	ResultName string        `[ "%" @Ident "=" ]`
	Op         *OperationRef `@@`
}

// OperationRef is the closed alternation of the instruction kinds this
// grammar accepts, keyed by the fixed leading keyword token from
// package token.
type OperationRef struct {
	Binary      *BinaryRef      `  @@`
	Unary       *UnaryRef       `| @@`
	MatMul      *MatMulRef      `| @@`
	Transpose   *TransposeRef   `| @@`
	Load        *LoadRef        `| @@`
	Store       *StoreRef       `| @@`
	Call        *CallRef        `| @@`
	Branch      *BranchRef      `| @@`
	Conditional *ConditionalRef `| @@`
	Return      *ReturnRef      `| @@`
}

type BinaryRef struct {
	Op  string  `@("add" | "subtract" | "multiply" | "divide" | "power" | "and" | "or" | "compareEqual" | "compareNotEqual" | "compareLess" | "compareLessEqual" | "compareGreater" | "compareGreaterEqual")`
	Lhs *UseRef `@@ ","`
	Rhs *UseRef `@@`
}

type UnaryRef struct {
	Op string  `@("negate" | "not" | "exp" | "log" | "sqrt" | "sin" | "cos" | "tanh" | "sigmoid" | "relu" | "integrate")`
	X  *UseRef `@@`
}

type MatMulRef struct {
	Keyword string  `"matrixMultiply"`
	A       *UseRef `@@ ","`
	B       *UseRef `@@`
}

type TransposeRef struct {
	Keyword string  `"transpose"`
	X       *UseRef `@@`
}

type LoadRef struct {
	Keyword string  `"load"`
	P       *UseRef `@@`
}

type StoreRef struct {
	Keyword string  `"store"`
	V       *UseRef `@@ ","`
	Dst     *UseRef `@@`
}

type CallRef struct {
	Keyword string    `"call"`
	F       *UseRef   `@@`
	Args    []*UseRef `"(" [ @@ { "," @@ } ] ")"`
}

type BranchRef struct {
	Keyword string    `"branch"`
	Target  string    `@Ident`
	Args    []*UseRef `"(" [ @@ { "," @@ } ] ")"`
}

type ConditionalRef struct {
	Keyword  string    `"conditional"`
	Cond     *UseRef   `@@`
	Then     string    `"then" @Ident`
	ThenArgs []*UseRef `"(" [ @@ { "," @@ } ] ")"`
	Else     string    `"else" @Ident`
	ElseArgs []*UseRef `"(" [ @@ { "," @@ } ] ")"`
}

type ReturnRef struct {
	Keyword string  `"return"`
	Value   *UseRef `[ @@ ]`
}

// ReferenceRef is the sigil+name half of a Use's reference form
// ("%name" or "@name"), split into its own node so UseRef can offer it
// as one alternative branch alongside an inline literal.
type ReferenceRef struct {
	Sigil string `@("%" | "@")`
	Name  string `@Ident`
}

// UseRef is an operand: "<type> <literal>" or "<type> <sigil><name>".
type UseRef struct {
	Type      *TypeRef      `@@`
	Literal   *LiteralRef   `  @@`
	Reference *ReferenceRef `| @@`
}

// ScalarRef is one bare scalar token; which field is meaningful is
// resolved against the ascribing type's Base during conversion,
// mirroring printer.go's scalarString.
type ScalarRef struct {
	Bool  string `  @("true" | "false")`
	Float string `| @Float`
	Int   string `| @Int`
}

// RandomRangeRef is "random from a to b".
type RandomRangeRef struct {
	From *ScalarRef `"random" "from" @@`
	To   *ScalarRef `"to" @@`
}

// LiteralRef is the closed alternation of inline literal forms.
type LiteralRef struct {
	Repeating *ScalarRef      `  "repeating" @@`
	Elements  []*ScalarRef    `| "elements" "[" [ @@ { "," @@ } ] "]"`
	Random    *RandomRangeRef `| @@`
	Scalar    *ScalarRef      `| @@`
}

// ParenTypeRef is the shared grammar for TupleType and FunctionType,
// both of which render as a parenthesized, comma-separated element
// list with an optional trailing "-> Result" (types.go's
// FunctionType.String omits the arrow for a void result, so a void
// function type and a tuple type print alike; fromtext.go reads a list
// without an arrow as a TupleType).
type ParenTypeRef struct {
	Elements []*TypeRef `"(" [ @@ { "," @@ } ] ")"`
	Result   *TypeRef   `[ "->" @@ ]`
}

// WrappedTypeRef is "array<T>", "box<T>" or "ptr<T>".
type WrappedTypeRef struct {
	Keyword string   `@("array" | "box" | "ptr") "<"`
	Inner   *TypeRef `@@ ">"`
}

// AliasTypeRef is "@Name", a reference to a module-level type alias.
type AliasTypeRef struct {
	Name string `"@" @Ident`
}

// BareTypeRef is a bare identifier with an optional trailing shape:
// a data-type tensor ("f32", "f32 [32x32]") or a struct name. Which one
// is decided during conversion by matching the identifier against the
// base-letter-plus-width pattern.
type BareTypeRef struct {
	Name  string `@Ident`
	Shape string `[ @Shape ]`
}

// TypeRef is the closed alternation of all type forms.
type TypeRef struct {
	Paren   *ParenTypeRef   `  @@`
	Wrapped *WrappedTypeRef `| @@`
	Alias   *AliasTypeRef   `| @@`
	Bare    *BareTypeRef    `| @@`
}
