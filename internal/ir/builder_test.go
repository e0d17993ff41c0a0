package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f32Scalar() Type { return &TensorType{DataType: DataType{Base: BaseFloat, Width: 32}} }

func TestBuildFunctionCreatesEntryWithArguments(t *testing.T) {
	b := NewBuilder("M")
	fn := b.BuildFunction("f", []NamedType{{Name: "a", Type: f32Scalar()}}, f32Scalar(), nil)

	entry := fn.Entry()
	require.NotNil(t, entry)
	assert.Equal(t, "entry", entry.Name)
	require.Len(t, entry.Arguments, 1)
	assert.Equal(t, "a", entry.Arguments[0].Name)
}

func TestBuildBasicBlockEntryIsIdempotent(t *testing.T) {
	b := NewBuilder("M")
	fn := b.BuildFunction("f", []NamedType{{Name: "a", Type: f32Scalar()}}, nil, nil)
	entry := fn.Entry()

	// Requesting "entry" again returns the same block, ignoring the
	// (mismatched) argument list passed in (spec §3 invariant 6).
	again := b.BuildBasicBlock("entry", []NamedType{{Name: "ignored", Type: f32Scalar()}}, fn)
	assert.Same(t, entry, again)
	assert.Len(t, again.Arguments, 1)
	assert.Equal(t, "a", again.Arguments[0].Name)
}

func TestBuildBasicBlockDisambiguatesNames(t *testing.T) {
	b := NewBuilder("M")
	fn := b.BuildFunction("f", nil, nil, nil)

	b1 := b.BuildBasicBlock("loop", nil, fn)
	b2 := b.BuildBasicBlock("loop", nil, fn)
	b3 := b.BuildBasicBlock("loop", nil, fn)

	assert.Equal(t, "loop", b1.Name)
	assert.Equal(t, "loop.1", b2.Name)
	assert.Equal(t, "loop.2", b3.Name)
}

func TestAutoNamingIsPerFunctionAndResetsOnMove(t *testing.T) {
	b := NewBuilder("M")
	f1 := b.BuildFunction("f1", nil, f32Scalar(), nil)
	f2 := b.BuildFunction("f2", nil, f32Scalar(), nil)

	b.MoveTo(f1.Entry())
	lit := UseLiteral(f32Scalar(), &ScalarLiteral{Float: 1})
	a := b.Add(lit, lit, BroadcastingConfig{}, "")
	c := b.Add(lit, lit, BroadcastingConfig{}, "")
	assert.Equal(t, "v0", a.Name)
	assert.Equal(t, "v1", c.Name)

	b.MoveTo(f2.Entry())
	d := b.Add(lit, lit, BroadcastingConfig{}, "")
	assert.Equal(t, "v0", d.Name, "auto-naming counter resets when the insertion point moves to a different function")
}

func TestExplicitNameIsDisambiguated(t *testing.T) {
	b := NewBuilder("M")
	fn := b.BuildFunction("f", []NamedType{{Name: "x", Type: f32Scalar()}}, f32Scalar(), nil)
	b.MoveTo(fn.Entry())

	lit := UseLiteral(f32Scalar(), &ScalarLiteral{Float: 1})
	inst := b.Add(lit, lit, BroadcastingConfig{}, "x")
	assert.Equal(t, "x.1", inst.Name, "explicit name colliding with an existing argument is disambiguated")
}

func TestVoidInstructionIsNeverNamed(t *testing.T) {
	b := NewBuilder("M")
	fn := b.BuildFunction("f", nil, nil, nil)
	b.MoveTo(fn.Entry())

	inst := b.Return(nil)
	assert.Empty(t, inst.Name)
}

func TestBuildInstructionPanicsWithoutInsertionPoint(t *testing.T) {
	b := NewBuilder("M")
	assert.Panics(t, func() {
		lit := UseLiteral(f32Scalar(), &ScalarLiteral{Float: 1})
		b.Add(lit, lit, BroadcastingConfig{}, "")
	})
}

func TestBuildFunctionPanicsOnDuplicateName(t *testing.T) {
	b := NewBuilder("M")
	b.BuildFunction("f", nil, nil, nil)
	assert.Panics(t, func() {
		b.BuildFunction("f", nil, nil, nil)
	})
}

func TestBuildGlobalValuePanicsOnDuplicateName(t *testing.T) {
	b := NewBuilder("M")
	b.BuildGlobalValue("x", GlobalPlaceholder, f32Scalar(), Use{})
	assert.Panics(t, func() {
		b.BuildGlobalValue("x", GlobalVariable, f32Scalar(), Use{})
	})
}

func TestMoveToDisablesInsertion(t *testing.T) {
	b := NewBuilder("M")
	fn := b.BuildFunction("f", nil, nil, nil)
	b.MoveTo(fn.Entry())
	b.MoveTo(nil)
	assert.Nil(t, b.CurrentBlock())
	assert.Nil(t, b.CurrentFunction())
}
