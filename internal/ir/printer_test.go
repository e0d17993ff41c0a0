package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintScenario1(t *testing.T) {
	b := NewBuilder("M")
	fn := b.BuildFunction("f", nil, nil, nil)
	b.MoveTo(fn.Entry())
	b.Return(nil)

	expected := "module M\n\n\nfunc @f() {\nentry():\n    return\n}\n\n\n"
	assert.Equal(t, expected, Print(b.Module()))
}

func TestPrintWorkedExample(t *testing.T) {
	shapeType := func() Type { return &TensorType{Shape: Shape{32, 32}, DataType: DataType{Base: BaseFloat, Width: 32}} }

	b := NewBuilder("M")
	w := b.BuildGlobalValue("w", GlobalVariable, shapeType(), Use{})

	fn := b.BuildFunction("f", []NamedType{{Name: "a", Type: shapeType()}, {Name: "b", Type: shapeType()}}, shapeType(), nil)
	b.MoveTo(fn.Entry())

	lhs := UseArgument(shapeType(), fn.Arguments[0])
	rhs := UseArgument(shapeType(), fn.Arguments[1])
	sum := b.Add(lhs, rhs, BroadcastingConfig{}, "")
	sumUse := UseInstruction(sum.Type(), sum)
	wUse := UseGlobal(shapeType(), w)
	mm := b.MatrixMultiply(sumUse, wUse, "")
	mmUse := UseInstruction(mm.Type(), mm)
	b.Return(&mmUse)

	out := Print(b.Module())
	assert.Contains(t, out, "declare variable @w : f32 [32x32]")
	assert.Contains(t, out, "func @f(%a: f32 [32x32], %b: f32 [32x32]) -> f32 [32x32] {")
	assert.Contains(t, out, "entry(%a: f32 [32x32], %b: f32 [32x32]):")
	assert.Contains(t, out, "%v0 = add f32 [32x32] %a, f32 [32x32] %b")
	assert.Contains(t, out, "%v1 = matrixMultiply f32 [32x32] %v0, f32 [32x32] @w")
	assert.Contains(t, out, "return f32 [32x32] %v1")
}

func TestPrintDifferentiablePrefix(t *testing.T) {
	b := NewBuilder("M")
	fn := b.BuildFunction("f", nil, nil, map[string]bool{"differentiable": true})
	b.MoveTo(fn.Entry())
	b.Return(nil)

	assert.Contains(t, Print(b.Module()), "differentiable func @f()")
}

func TestPrintGlobalWithInitializer(t *testing.T) {
	b := NewBuilder("M")
	b.BuildGlobalValue("x", GlobalVariable, f32Scalar(), UseLiteral(f32Scalar(), &ScalarLiteral{Float: 0}))

	out := Print(b.Module())
	assert.Contains(t, out, "declare variable @x : f32 = 0.0")
}

func TestPrintPlaceholderUsesLocalSigil(t *testing.T) {
	b := NewBuilder("M")
	b.BuildGlobalValue("x", GlobalPlaceholder, f32Scalar(), Use{})

	out := Print(b.Module())
	assert.Contains(t, out, "declare placeholder %x : f32")
}

func TestScalarLiteralRendersIntAndBool(t *testing.T) {
	intType := &TensorType{DataType: DataType{Base: BaseInt, Width: 32}}
	boolType := &TensorType{DataType: DataType{Base: BaseBool, Width: 1}}
	p := NewPrinter(&stringSink{})

	assert.Equal(t, "3", p.literalString(&ScalarLiteral{Int: 3}, intType))
	assert.Equal(t, "true", p.literalString(&ScalarLiteral{Bool: true}, boolType))
}

func TestRepeatingAndElementsAndRandomLiteralStrings(t *testing.T) {
	p := NewPrinter(&stringSink{})
	ft := f32Scalar()

	assert.Equal(t, "repeating 1.0", p.literalString(&TensorRepeatLiteral{Value: &ScalarLiteral{Float: 1}}, ft))
	assert.Equal(t, "elements [ 1.0, 2.0 ]", p.literalString(&TensorElementsLiteral{Elements: []*ScalarLiteral{{Float: 1}, {Float: 2}}}, ft))
	assert.Equal(t, "random from 0.0 to 1.0", p.literalString(&RandomRangeLiteral{From: &ScalarLiteral{Float: 0}, To: &ScalarLiteral{Float: 1}}, ft))
}

func TestFormatFloatAlwaysHasFractionalDigit(t *testing.T) {
	assert.Equal(t, "0.0", formatFloat(0))
	assert.Equal(t, "1.5", formatFloat(1.5))
}

func TestKeyPathString(t *testing.T) {
	assert.Equal(t, ".0[2]", keyPathString([]ElementKey{TupleKey(0), DimensionKey(2)}))
}
