package ir

import (
	"fmt"
)

// InstructionKind is the closed sum over all operations. Each kind
// deterministically computes a Type given its operand types (spec
// §4.2); a kind is a terminator iff it is branch, conditional, or
// return. Each variant implements ResultType itself; the printer and
// keywordOf dispatch by exhaustive type switch, the same tagged-variant
// pattern Type uses.
type InstructionKind interface {
	// ResultType computes the instruction's result Type from its
	// operands' declared types, per the table in spec §4.2.
	ResultType() Type
	// IsTerminator reports whether this kind ends a basic block.
	IsTerminator() bool
	// Operands returns every Use this instruction reads, in a fixed
	// order, for use-def traversal (graph.go) and verification.
	Operands() []Use
}

// BinaryOp enumerates arithmetic, boolean and comparison binary
// operators.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpPower
	OpAnd
	OpOr
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
)

// IsComparison reports whether op yields a bool-tensor result rather
// than broadcasting its operand data type through.
func (op BinaryOp) IsComparison() bool {
	switch op {
	case OpEqual, OpNotEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		return true
	default:
		return false
	}
}

func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "add"
	case OpSubtract:
		return "subtract"
	case OpMultiply:
		return "multiply"
	case OpDivide:
		return "divide"
	case OpPower:
		return "power"
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpEqual:
		return "compareEqual"
	case OpNotEqual:
		return "compareNotEqual"
	case OpLess:
		return "compareLess"
	case OpLessEqual:
		return "compareLessEqual"
	case OpGreater:
		return "compareGreater"
	case OpGreaterEqual:
		return "compareGreaterEqual"
	default:
		return "binary?"
	}
}

// UnaryOp enumerates elementwise and integration unary operators.
type UnaryOp int

const (
	OpNegate UnaryOp = iota
	OpNot
	OpExp
	OpLog
	OpSqrt
	OpSin
	OpCos
	OpTanh
	OpSigmoid
	OpRelu
	OpIntegrate
)

func (op UnaryOp) String() string {
	switch op {
	case OpNegate:
		return "negate"
	case OpNot:
		return "not"
	case OpExp:
		return "exp"
	case OpLog:
		return "log"
	case OpSqrt:
		return "sqrt"
	case OpSin:
		return "sin"
	case OpCos:
		return "cos"
	case OpTanh:
		return "tanh"
	case OpSigmoid:
		return "sigmoid"
	case OpRelu:
		return "relu"
	case OpIntegrate:
		return "integrate"
	default:
		return "unary?"
	}
}

// FoldOp enumerates the associative fold ReduceInst/ScanInst apply
// across an axis.
type FoldOp int

const (
	FoldSum FoldOp = iota
	FoldProduct
	FoldMax
	FoldMin
)

func (f FoldOp) String() string {
	switch f {
	case FoldSum:
		return "sum"
	case FoldProduct:
		return "product"
	case FoldMax:
		return "max"
	case FoldMin:
		return "min"
	default:
		return "fold?"
	}
}

// BinaryInst: lhs op rhs, broadcast under Broadcasting (associative ops)
// or a bool-tensor of the broadcast shape (comparison ops).
type BinaryInst struct {
	Op           BinaryOp
	Lhs, Rhs     Use
	Broadcasting BroadcastingConfig
}

func (i *BinaryInst) IsTerminator() bool { return false }
func (i *BinaryInst) Operands() []Use    { return []Use{i.Lhs, i.Rhs} }
func (i *BinaryInst) ResultType() Type {
	lt, rt := tensorOrInvalid(i.Lhs.Type()), tensorOrInvalid(i.Rhs.Type())
	if lt == nil || rt == nil {
		return InvalidType
	}
	shape, ok := BroadcastShapes(lt.Shape, rt.Shape, i.Broadcasting)
	if !ok {
		return InvalidType
	}
	dt := lt.DataType
	if i.Op.IsComparison() {
		dt = DataType{Base: BaseBool, Width: 1}
	}
	return &TensorType{Shape: shape, DataType: dt}
}

// UnaryInst: elementwise or integration unary op; result type equals
// the operand's type.
type UnaryInst struct {
	Op UnaryOp
	X  Use
}

func (i *UnaryInst) IsTerminator() bool { return false }
func (i *UnaryInst) Operands() []Use    { return []Use{i.X} }
func (i *UnaryInst) ResultType() Type   { return i.X.Type() }

// MatrixMultiplyInst: contract A's last dim with B's first, broadcasting
// the remainder (spec §4.1 matmul typing).
type MatrixMultiplyInst struct {
	A, B Use
}

func (i *MatrixMultiplyInst) IsTerminator() bool { return false }
func (i *MatrixMultiplyInst) Operands() []Use    { return []Use{i.A, i.B} }
func (i *MatrixMultiplyInst) ResultType() Type {
	a, b := tensorOrInvalid(i.A.Type()), tensorOrInvalid(i.B.Type())
	if a == nil || b == nil {
		return InvalidType
	}
	t, err := MatmulResultType(a, b)
	if err != nil {
		return InvalidType
	}
	return t
}

// TransposeInst: x's type with its last two dimensions reversed.
type TransposeInst struct {
	X Use
}

func (i *TransposeInst) IsTerminator() bool { return false }
func (i *TransposeInst) Operands() []Use    { return []Use{i.X} }
func (i *TransposeInst) ResultType() Type {
	t := tensorOrInvalid(i.X.Type())
	if t == nil || len(t.Shape) < 2 {
		return InvalidType
	}
	shape := append(Shape{}, t.Shape...)
	n := len(shape)
	shape[n-1], shape[n-2] = shape[n-2], shape[n-1]
	return &TensorType{Shape: shape, DataType: t.DataType}
}

// ReduceInst folds X along Axis with F, removing that axis from the
// result shape.
type ReduceInst struct {
	F    FoldOp
	X    Use
	Axis int
}

func (i *ReduceInst) IsTerminator() bool { return false }
func (i *ReduceInst) Operands() []Use    { return []Use{i.X} }
func (i *ReduceInst) ResultType() Type {
	t, err := ElementType(i.X.Type(), []ElementKey{DimensionKey(i.Axis)})
	if err != nil {
		return InvalidType
	}
	return t
}

// ScanInst folds X along Axis with F, keeping the operand's shape (a
// running fold, unlike ReduceInst).
type ScanInst struct {
	F    FoldOp
	X    Use
	Axis int
}

func (i *ScanInst) IsTerminator() bool { return false }
func (i *ScanInst) Operands() []Use    { return []Use{i.X} }
func (i *ScanInst) ResultType() Type   { return i.X.Type() }

// ConcatenateInst joins Xs along Axis, summing that axis across
// operands.
type ConcatenateInst struct {
	Xs   []Use
	Axis int
}

func (i *ConcatenateInst) IsTerminator() bool { return false }
func (i *ConcatenateInst) Operands() []Use    { return i.Xs }
func (i *ConcatenateInst) ResultType() Type {
	if len(i.Xs) == 0 {
		return InvalidType
	}
	first := tensorOrInvalid(i.Xs[0].Type())
	if first == nil || i.Axis < 0 || i.Axis >= len(first.Shape) {
		return InvalidType
	}
	total := 0
	for _, x := range i.Xs {
		t := tensorOrInvalid(x.Type())
		if t == nil || i.Axis >= len(t.Shape) {
			return InvalidType
		}
		total += t.Shape[i.Axis]
	}
	shape := append(Shape{}, first.Shape...)
	shape[i.Axis] = total
	return &TensorType{Shape: shape, DataType: first.DataType}
}

// ShapeCastInst reinterprets X under a new Shape, same DataType.
type ShapeCastInst struct {
	X        Use
	NewShape Shape
}

func (i *ShapeCastInst) IsTerminator() bool { return false }
func (i *ShapeCastInst) Operands() []Use    { return []Use{i.X} }
func (i *ShapeCastInst) ResultType() Type {
	t := tensorOrInvalid(i.X.Type())
	if t == nil {
		return InvalidType
	}
	return &TensorType{Shape: i.NewShape, DataType: t.DataType}
}

// DataTypeCastInst reinterprets X under a new DataType, same shape.
type DataTypeCastInst struct {
	X           Use
	NewDataType DataType
}

func (i *DataTypeCastInst) IsTerminator() bool { return false }
func (i *DataTypeCastInst) Operands() []Use    { return []Use{i.X} }
func (i *DataTypeCastInst) ResultType() Type {
	t := tensorOrInvalid(i.X.Type())
	if t == nil {
		return InvalidType
	}
	return &TensorType{Shape: t.Shape, DataType: i.NewDataType}
}

// ExtractInst reads the aggregate value addressed by Keys out of Src.
type ExtractInst struct {
	Src  Use
	Keys []ElementKey
}

func (i *ExtractInst) IsTerminator() bool { return false }
func (i *ExtractInst) Operands() []Use    { return []Use{i.Src} }
func (i *ExtractInst) ResultType() Type {
	t, err := ElementType(i.Src.Type(), i.Keys)
	if err != nil {
		return InvalidType
	}
	return t
}

// InsertInst writes Val into Dst at Keys, producing an updated Dst (the
// IR is value-oriented: insert never mutates Dst in place).
type InsertInst struct {
	Val, Dst Use
	Keys     []ElementKey
}

func (i *InsertInst) IsTerminator() bool { return false }
func (i *InsertInst) Operands() []Use    { return []Use{i.Val, i.Dst} }
func (i *InsertInst) ResultType() Type   { return i.Dst.Type() }

// ElementPointerInst computes a pointer to the element of Src addressed
// by Keys (array-subscript addressing).
type ElementPointerInst struct {
	Src  Use
	Keys []ElementKey
}

func (i *ElementPointerInst) IsTerminator() bool { return false }
func (i *ElementPointerInst) Operands() []Use    { return []Use{i.Src} }
func (i *ElementPointerInst) ResultType() Type {
	pointee, err := ElementType(elemSource(i.Src.Type()), i.Keys)
	if err != nil {
		return InvalidType
	}
	return &PointerType{Pointee: pointee}
}

// elemSource unwraps array/box/pointer element-ness so ElementPointer
// can address into allocated storage the same way Extract addresses
// into a value.
func elemSource(t Type) Type {
	switch a := t.(type) {
	case *ArrayType:
		return a.Element
	case *BoxType:
		return a.Element
	case *PointerType:
		return a.Pointee
	default:
		return t
	}
}

// LoadInst reads the value pointed to by P.
type LoadInst struct {
	P Use
}

func (i *LoadInst) IsTerminator() bool { return false }
func (i *LoadInst) Operands() []Use    { return []Use{i.P} }
func (i *LoadInst) ResultType() Type {
	t, err := Pointee(i.P.Type())
	if err != nil {
		return InvalidType
	}
	return t
}

// StoreInst writes V to the location Dst points to; void result.
type StoreInst struct {
	V, Dst Use
}

func (i *StoreInst) IsTerminator() bool { return false }
func (i *StoreInst) Operands() []Use    { return []Use{i.V, i.Dst} }
func (i *StoreInst) ResultType() Type   { return VoidType }

// AllocateHeapInst allocates Count contiguous elements of T on the heap.
type AllocateHeapInst struct {
	Element Type
	Count   Use
}

func (i *AllocateHeapInst) IsTerminator() bool { return false }
func (i *AllocateHeapInst) Operands() []Use    { return []Use{i.Count} }
func (i *AllocateHeapInst) ResultType() Type   { return &ArrayType{Element: i.Element} }

// AllocateBoxInst allocates a single boxed cell of T.
type AllocateBoxInst struct {
	Element Type
}

func (i *AllocateBoxInst) IsTerminator() bool { return false }
func (i *AllocateBoxInst) Operands() []Use    { return nil }
func (i *AllocateBoxInst) ResultType() Type   { return &BoxType{Element: i.Element} }

// ProjectBoxInst yields the pointee of a boxed value B.
type ProjectBoxInst struct {
	B Use
}

func (i *ProjectBoxInst) IsTerminator() bool { return false }
func (i *ProjectBoxInst) Operands() []Use    { return []Use{i.B} }
func (i *ProjectBoxInst) ResultType() Type {
	t, err := Pointee(i.B.Type())
	if err != nil {
		return InvalidType
	}
	return t
}

// DeallocateInst frees a heap array, box, or pointer; void result.
type DeallocateInst struct {
	X Use
}

func (i *DeallocateInst) IsTerminator() bool { return false }
func (i *DeallocateInst) Operands() []Use    { return []Use{i.X} }
func (i *DeallocateInst) ResultType() Type   { return VoidType }

// ApplyInst calls F with Args; result is F's declared result type.
type ApplyInst struct {
	F    Use
	Args []Use
}

func (i *ApplyInst) IsTerminator() bool { return false }
func (i *ApplyInst) Operands() []Use    { return append([]Use{i.F}, i.Args...) }
func (i *ApplyInst) ResultType() Type {
	ft, ok := i.F.Type().(*FunctionType)
	if !ok {
		return InvalidType
	}
	return ft.Result
}

// GradientInst denotes the reverse-mode derivative of F with respect to
// Wrt argument indices, optionally preserving Keeping primal output
// indices (spec §9: the precise tuple shape rule is pinned by the
// verifier's type rule, not guessed here; this result-typer implements
// the one rule spec.md does commit to — one gradient type per Wrt index,
// in order, followed by one kept-output type per Keeping index, in
// order).
type GradientInst struct {
	F       Use
	Out     Use
	Wrt     []int
	Keeping []int
}

func (i *GradientInst) IsTerminator() bool { return false }
func (i *GradientInst) Operands() []Use    { return []Use{i.F, i.Out} }
func (i *GradientInst) ResultType() Type {
	ft, ok := i.F.Type().(*FunctionType)
	if !ok {
		return InvalidType
	}
	elems := make([]Type, 0, len(i.Wrt)+len(i.Keeping))
	for _, idx := range i.Wrt {
		if idx < 0 || idx >= len(ft.Arguments) {
			return InvalidType
		}
		elems = append(elems, ft.Arguments[idx])
	}
	for range i.Keeping {
		elems = append(elems, ft.Result)
	}
	return &TupleType{Elements: elems}
}

// BranchInst unconditionally transfers control to Target with Args
// bound to its block arguments.
type BranchInst struct {
	Target *BasicBlock
	Args   []Use
}

func (i *BranchInst) IsTerminator() bool { return true }
func (i *BranchInst) Operands() []Use    { return i.Args }
func (i *BranchInst) ResultType() Type   { return VoidType }

// ConditionalInst transfers control to Then or Else depending on Cond,
// each with its own argument binding.
type ConditionalInst struct {
	Cond     Use
	Then     *BasicBlock
	ThenArgs []Use
	Else     *BasicBlock
	ElseArgs []Use
}

func (i *ConditionalInst) IsTerminator() bool { return true }
func (i *ConditionalInst) Operands() []Use {
	ops := append([]Use{i.Cond}, i.ThenArgs...)
	return append(ops, i.ElseArgs...)
}
func (i *ConditionalInst) ResultType() Type { return VoidType }

// ReturnInst returns control from the enclosing function, optionally
// with a Value.
type ReturnInst struct {
	Value *Use // nil for a void-returning function
}

func (i *ReturnInst) IsTerminator() bool { return true }
func (i *ReturnInst) Operands() []Use {
	if i.Value == nil {
		return nil
	}
	return []Use{*i.Value}
}
func (i *ReturnInst) ResultType() Type { return VoidType }

// tensorOrInvalid type-asserts t to *TensorType, returning nil on
// mismatch so callers can fall back to InvalidType uniformly.
func tensorOrInvalid(t Type) *TensorType {
	tt, _ := t.(*TensorType)
	return tt
}

// keywordOf returns the fixed printer keyword for a kind, per spec §6:
// "Every operator and op-class has a fixed keyword."
func keywordOf(k InstructionKind) string {
	switch v := k.(type) {
	case *BinaryInst:
		return v.Op.String()
	case *UnaryInst:
		return v.Op.String()
	case *MatrixMultiplyInst:
		return "matrixMultiply"
	case *TransposeInst:
		return "transpose"
	case *ReduceInst:
		return "reduce"
	case *ScanInst:
		return "scan"
	case *ConcatenateInst:
		return "concatenate"
	case *ShapeCastInst:
		return "shapeCast"
	case *DataTypeCastInst:
		return "dataTypeCast"
	case *ExtractInst:
		return "element"
	case *InsertInst:
		return "insert"
	case *ElementPointerInst:
		return "subtensor"
	case *LoadInst:
		return "load"
	case *StoreInst:
		return "store"
	case *AllocateHeapInst:
		return "allocateHeap"
	case *AllocateBoxInst:
		return "allocateBox"
	case *ProjectBoxInst:
		return "projectBox"
	case *DeallocateInst:
		return "deallocate"
	case *ApplyInst:
		return "call"
	case *GradientInst:
		return "gradient"
	case *BranchInst:
		return "branch"
	case *ConditionalInst:
		return "conditional"
	case *ReturnInst:
		return "return"
	default:
		return fmt.Sprintf("%T", k)
	}
}
