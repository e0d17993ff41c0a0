package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainmentBackReferences(t *testing.T) {
	b := NewBuilder("M")
	fn := b.BuildFunction("f", []NamedType{{Name: "a", Type: f32Scalar()}}, f32Scalar(), nil)
	entry := fn.Entry()
	b.MoveTo(entry)
	lit := UseLiteral(f32Scalar(), &ScalarLiteral{Float: 1})
	inst := b.Add(lit, lit, BroadcastingConfig{}, "")

	assert.Same(t, b.Module(), fn.Parent())
	assert.Same(t, fn, entry.Parent())
	assert.Same(t, entry, inst.Parent())
	assert.Same(t, entry, entry.Arguments[0].Parent())
}

func TestModuleOrdersFunctionsAndGlobalsByInsertion(t *testing.T) {
	b := NewBuilder("M")
	b.BuildGlobalValue("z", GlobalVariable, f32Scalar(), Use{})
	b.BuildGlobalValue("a", GlobalOutput, f32Scalar(), Use{})
	b.BuildFunction("second", nil, nil, nil)
	b.BuildFunction("first", nil, nil, nil)

	globals := b.Module().Globals()
	require.Len(t, globals, 2)
	assert.Equal(t, "z", globals[0].Name)
	assert.Equal(t, "a", globals[1].Name)

	fns := b.Module().Functions()
	require.Len(t, fns, 2)
	assert.Equal(t, "second", fns[0].Name)
	assert.Equal(t, "first", fns[1].Name)
}

func TestGlobalValueKindSigils(t *testing.T) {
	assert.Equal(t, "%", GlobalPlaceholder.sigil())
	assert.Equal(t, "@", GlobalVariable.sigil())
	assert.Equal(t, "@", GlobalOutput.sigil())
	assert.Equal(t, "placeholder", GlobalPlaceholder.String())
	assert.Equal(t, "variable", GlobalVariable.String())
	assert.Equal(t, "output", GlobalOutput.String())
}

func TestUnlinkMakesUseDangling(t *testing.T) {
	b := NewBuilder("M")
	fn := b.BuildFunction("f", nil, f32Scalar(), nil)
	entry := fn.Entry()
	b.MoveTo(entry)
	lit := UseLiteral(f32Scalar(), &ScalarLiteral{Float: 1})
	produced := b.Add(lit, lit, BroadcastingConfig{}, "")
	use := UseInstruction(produced.Type(), produced)
	b.Return(&use)

	require.True(t, entry.Unlink(produced))
	assert.True(t, produced.Unlinked())

	diags := Verify(b.Module())
	require.NotEmpty(t, diags)
	assert.Equal(t, DanglingUse, diags[0].Kind)
}

func TestVerifyFlagsMissingTerminator(t *testing.T) {
	b := NewBuilder("M")
	fn := b.BuildFunction("f", nil, nil, nil)
	b.MoveTo(fn.Entry())
	lit := UseLiteral(f32Scalar(), &ScalarLiteral{Float: 1})
	b.Add(lit, lit, BroadcastingConfig{}, "")

	diags := Verify(b.Module())
	require.NotEmpty(t, diags)
	assert.Equal(t, MalformedTerminator, diags[len(diags)-1].Kind)
}

func TestVerifyFlagsTypeMismatch(t *testing.T) {
	b := NewBuilder("M")
	fn := b.BuildFunction("f", nil, f32Scalar(), nil)
	b.MoveTo(fn.Entry())
	lit := UseLiteral(f32Scalar(), &ScalarLiteral{Float: 1})
	produced := b.Add(lit, lit, BroadcastingConfig{}, "")

	wrongType := &TensorType{DataType: DataType{Base: BaseInt, Width: 32}}
	badUse := UseInstruction(wrongType, produced)
	b.Return(&badUse)

	diags := Verify(b.Module())
	require.NotEmpty(t, diags)
	found := false
	for _, d := range diags {
		if d.Kind == TypeMismatch {
			found = true
		}
	}
	assert.True(t, found)
}

func TestVerifyCleanModuleHasNoDiagnostics(t *testing.T) {
	b := NewBuilder("M")
	fn := b.BuildFunction("f", nil, nil, nil)
	b.MoveTo(fn.Entry())
	b.Return(nil)

	assert.Empty(t, Verify(b.Module()))
}
