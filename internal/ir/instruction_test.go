package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tensor(shape Shape, base Base, width int) *TensorType {
	return &TensorType{Shape: shape, DataType: DataType{Base: base, Width: width}}
}

func useOf(t Type) Use { return UseLiteral(t, &ScalarLiteral{Float: 1}) }

func TestBinaryInstBroadcastsAndComputesResult(t *testing.T) {
	a := tensor(Shape{32, 1}, BaseFloat, 32)
	b := tensor(Shape{1, 32}, BaseFloat, 32)
	inst := &BinaryInst{Op: OpAdd, Lhs: useOf(a), Rhs: useOf(b)}

	result := inst.ResultType().(*TensorType)
	assert.Equal(t, Shape{32, 32}, result.Shape)
	assert.Equal(t, DataType{Base: BaseFloat, Width: 32}, result.DataType)
}

func TestBinaryComparisonYieldsBool(t *testing.T) {
	a := tensor(Shape{4}, BaseFloat, 32)
	inst := &BinaryInst{Op: OpLess, Lhs: useOf(a), Rhs: useOf(a)}

	result := inst.ResultType().(*TensorType)
	assert.Equal(t, BaseBool, result.DataType.Base)
}

func TestBinaryIncompatibleShapesIsInvalid(t *testing.T) {
	a := tensor(Shape{3}, BaseFloat, 32)
	b := tensor(Shape{4}, BaseFloat, 32)
	inst := &BinaryInst{Op: OpAdd, Lhs: useOf(a), Rhs: useOf(b)}
	assert.Same(t, InvalidType, inst.ResultType())
}

func TestUnaryResultEqualsOperand(t *testing.T) {
	x := tensor(Shape{4}, BaseFloat, 32)
	inst := &UnaryInst{Op: OpExp, X: useOf(x)}
	assert.True(t, TypesEqual(x, inst.ResultType()))
}

func TestMatrixMultiplyResultType(t *testing.T) {
	a := tensor(Shape{4, 8}, BaseFloat, 32)
	b := tensor(Shape{8, 2}, BaseFloat, 32)
	inst := &MatrixMultiplyInst{A: useOf(a), B: useOf(b)}

	result := inst.ResultType().(*TensorType)
	assert.Equal(t, Shape{4, 2}, result.Shape)
}

func TestTransposeSwapsLastTwoDimensions(t *testing.T) {
	x := tensor(Shape{2, 3, 4}, BaseFloat, 32)
	inst := &TransposeInst{X: useOf(x)}

	result := inst.ResultType().(*TensorType)
	assert.Equal(t, Shape{2, 4, 3}, result.Shape)
}

func TestTransposeRank1IsInvalid(t *testing.T) {
	x := tensor(Shape{4}, BaseFloat, 32)
	inst := &TransposeInst{X: useOf(x)}
	assert.Same(t, InvalidType, inst.ResultType())
}

func TestReduceRemovesAxis(t *testing.T) {
	x := tensor(Shape{2, 3, 4}, BaseFloat, 32)
	inst := &ReduceInst{F: FoldSum, X: useOf(x), Axis: 1}

	result := inst.ResultType().(*TensorType)
	assert.Equal(t, Shape{2, 4}, result.Shape)
}

func TestScanKeepsShape(t *testing.T) {
	x := tensor(Shape{2, 3}, BaseFloat, 32)
	inst := &ScanInst{F: FoldProduct, X: useOf(x), Axis: 1}
	assert.True(t, TypesEqual(x, inst.ResultType()))
}

func TestConcatenateSumsAxis(t *testing.T) {
	a := tensor(Shape{2, 3}, BaseFloat, 32)
	b := tensor(Shape{2, 5}, BaseFloat, 32)
	inst := &ConcatenateInst{Xs: []Use{useOf(a), useOf(b)}, Axis: 1}

	result := inst.ResultType().(*TensorType)
	assert.Equal(t, Shape{2, 8}, result.Shape)
}

func TestShapeCastKeepsDataType(t *testing.T) {
	x := tensor(Shape{4, 4}, BaseFloat, 32)
	inst := &ShapeCastInst{X: useOf(x), NewShape: Shape{16}}

	result := inst.ResultType().(*TensorType)
	assert.Equal(t, Shape{16}, result.Shape)
	assert.Equal(t, DataType{Base: BaseFloat, Width: 32}, result.DataType)
}

func TestDataTypeCastKeepsShape(t *testing.T) {
	x := tensor(Shape{4}, BaseFloat, 32)
	inst := &DataTypeCastInst{X: useOf(x), NewDataType: DataType{Base: BaseInt, Width: 32}}

	result := inst.ResultType().(*TensorType)
	assert.Equal(t, Shape{4}, result.Shape)
	assert.Equal(t, BaseInt, result.DataType.Base)
}

func TestExtractAndInsertAndElementPointer(t *testing.T) {
	tupleType := &TupleType{Elements: []Type{tensor(Shape{2, 3}, BaseFloat, 32), tensor(nil, BaseInt, 32)}}

	extract := &ExtractInst{Src: useOf(tupleType), Keys: []ElementKey{TupleKey(0), DimensionKey(1)}}
	result := extract.ResultType().(*TensorType)
	assert.Equal(t, Shape{2}, result.Shape)

	insert := &InsertInst{Val: useOf(tensor(Shape{2}, BaseFloat, 32)), Dst: useOf(tupleType), Keys: []ElementKey{TupleKey(0), DimensionKey(1)}}
	assert.True(t, TypesEqual(tupleType, insert.ResultType()))

	ep := &ElementPointerInst{Src: useOf(&ArrayType{Element: tensor(Shape{2, 3}, BaseFloat, 32)}), Keys: []ElementKey{DimensionKey(0)}}
	ptr := ep.ResultType().(*PointerType)
	assert.Equal(t, Shape{3}, ptr.Pointee.(*TensorType).Shape)
}

func TestLoadStoreAllocateAndDeallocate(t *testing.T) {
	elem := tensor(Shape{4}, BaseFloat, 32)

	alloc := &AllocateHeapInst{Element: elem, Count: useOf(tensor(nil, BaseInt, 32))}
	assert.True(t, TypesEqual(&ArrayType{Element: elem}, alloc.ResultType()))

	box := &AllocateBoxInst{Element: elem}
	assert.True(t, TypesEqual(&BoxType{Element: elem}, box.ResultType()))

	load := &LoadInst{P: useOf(&PointerType{Pointee: elem})}
	assert.True(t, TypesEqual(elem, load.ResultType()))

	store := &StoreInst{V: useOf(elem), Dst: useOf(&PointerType{Pointee: elem})}
	assert.True(t, IsVoid(store.ResultType()))

	projectBox := &ProjectBoxInst{B: useOf(&BoxType{Element: elem})}
	assert.True(t, TypesEqual(elem, projectBox.ResultType()))

	dealloc := &DeallocateInst{X: useOf(&PointerType{Pointee: elem})}
	assert.True(t, IsVoid(dealloc.ResultType()))
}

func TestApplyResultIsFunctionResult(t *testing.T) {
	ft := &FunctionType{Arguments: []Type{f32Scalar()}, Result: f32Scalar()}
	inst := &ApplyInst{F: useOf(ft), Args: []Use{useOf(f32Scalar())}}
	assert.True(t, TypesEqual(f32Scalar(), inst.ResultType()))
}

func TestGradientResultIsTupleOfWrtThenKeeping(t *testing.T) {
	ft := &FunctionType{Arguments: []Type{tensor(Shape{2}, BaseFloat, 32), tensor(Shape{3}, BaseFloat, 32)}, Result: f32Scalar()}
	inst := &GradientInst{F: useOf(ft), Out: useOf(f32Scalar()), Wrt: []int{1, 0}, Keeping: []int{0}}

	result := inst.ResultType().(*TupleType)
	require.Len(t, result.Elements, 3)
	assert.True(t, TypesEqual(tensor(Shape{3}, BaseFloat, 32), result.Elements[0]))
	assert.True(t, TypesEqual(tensor(Shape{2}, BaseFloat, 32), result.Elements[1]))
	assert.True(t, TypesEqual(f32Scalar(), result.Elements[2]))
}

func TestTerminatorClassification(t *testing.T) {
	assert.False(t, (&BinaryInst{}).IsTerminator())
	assert.False(t, (&ApplyInst{}).IsTerminator())
	assert.True(t, (&BranchInst{}).IsTerminator())
	assert.True(t, (&ConditionalInst{}).IsTerminator())
	assert.True(t, (&ReturnInst{}).IsTerminator())
}

func TestKeywordOfCoversEveryKind(t *testing.T) {
	kinds := []InstructionKind{
		&BinaryInst{Op: OpAdd}, &UnaryInst{Op: OpNegate}, &MatrixMultiplyInst{}, &TransposeInst{},
		&ReduceInst{}, &ScanInst{}, &ConcatenateInst{}, &ShapeCastInst{}, &DataTypeCastInst{},
		&ExtractInst{}, &InsertInst{}, &ElementPointerInst{}, &LoadInst{}, &StoreInst{},
		&AllocateHeapInst{}, &AllocateBoxInst{}, &ProjectBoxInst{}, &DeallocateInst{},
		&ApplyInst{}, &GradientInst{}, &BranchInst{}, &ConditionalInst{}, &ReturnInst{},
	}
	for _, k := range kinds {
		assert.NotEmpty(t, keywordOf(k))
	}
}
