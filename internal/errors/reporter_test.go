package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dlvm/internal/ir"
)

func f32() ir.Type { return &ir.TensorType{DataType: ir.DataType{Base: ir.BaseFloat, Width: 32}} }

func TestNewReportDerivesCodeAndLocationFromDiagnostic(t *testing.T) {
	b := ir.NewBuilder("M")
	fn := b.BuildFunction("f", nil, f32(), nil)
	b.MoveTo(fn.Entry())
	lit := ir.UseLiteral(f32(), &ir.ScalarLiteral{Float: 1})
	produced := b.Add(lit, lit, ir.BroadcastingConfig{}, "")

	wrongType := &ir.TensorType{DataType: ir.DataType{Base: ir.BaseInt, Width: 32}}
	badUse := ir.UseInstruction(wrongType, produced)
	b.Return(&badUse)

	diags := ir.Verify(b.Module())
	require.NotEmpty(t, diags)

	var mismatch ir.Diagnostic
	found := false
	for _, d := range diags {
		if d.Kind == ir.TypeMismatch {
			mismatch = d
			found = true
		}
	}
	require.True(t, found)

	rep := NewReport(mismatch)
	assert.Equal(t, CodeTypeMismatch, rep.Code)
	assert.Equal(t, Error, rep.Level)
	assert.Contains(t, rep.Location, "@f")
	assert.Contains(t, rep.Location, "entry")
	assert.NotEmpty(t, rep.HelpText)
}

func TestReportFormatIncludesCodeLocationAndHelp(t *testing.T) {
	rep := Report{
		Level:    Error,
		Code:     CodeDanglingUse,
		Message:  "use references unlinked instruction %v0",
		Location: "@f/entry/%v1",
		HelpText: Description(CodeDanglingUse),
	}

	out := NewReporter().Format(rep)
	assert.Contains(t, out, "error["+CodeDanglingUse+"]")
	assert.Contains(t, out, "@f/entry/%v1")
	assert.Contains(t, out, "help:")
}

func TestFormatAllSeparatesMultipleDiagnostics(t *testing.T) {
	b := ir.NewBuilder("M")
	fn := b.BuildFunction("f", nil, nil, nil)
	b.MoveTo(fn.Entry())
	lit := ir.UseLiteral(f32(), &ir.ScalarLiteral{Float: 1})
	b.Add(lit, lit, ir.BroadcastingConfig{}, "")

	diags := ir.Verify(b.Module())
	require.NotEmpty(t, diags)

	out := NewReporter().FormatAll(diags)
	for _, d := range diags {
		assert.Contains(t, out, CodeForKind(d.Kind.String()))
	}
}

func TestCodeForKindAndDescriptionCoverAllDiagnosticKinds(t *testing.T) {
	assert.Equal(t, CodeTypeMismatch, CodeForKind("TypeMismatch"))
	assert.Equal(t, CodeDanglingUse, CodeForKind("DanglingUse"))
	assert.Equal(t, CodeMalformedTerminator, CodeForKind("MalformedTerminator"))
	assert.Empty(t, CodeForKind("UnknownDiagnostic"))

	for _, code := range []string{CodeTypeMismatch, CodeDanglingUse, CodeMalformedTerminator, CodeNoInsertionPoint, CodeDuplicateName} {
		assert.NotEqual(t, "unknown diagnostic code", Description(code))
	}
}

func TestIsBuilderInvariant(t *testing.T) {
	assert.True(t, IsBuilderInvariant(CodeNoInsertionPoint))
	assert.True(t, IsBuilderInvariant(CodeDuplicateName))
	assert.False(t, IsBuilderInvariant(CodeTypeMismatch))
}
