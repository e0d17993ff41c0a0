package ir

import (
	"fmt"
	"strings"
)

// Types form a closed algebraic sum. This IR uses a tagged-variant
// representation (one pointer-receiver Go type per variant) and
// dispatches on the concrete type in the result-typer and printer via
// exhaustive type switches, the same pattern the rest of this package
// uses for Use and InstructionKind.

// Type is the sum of all type variants: Void, *TensorType, *TupleType,
// *ArrayType, *BoxType, *PointerType, *AliasType, *StructRefType,
// *FunctionType, and the sentinel InvalidType.
type Type interface {
	isType()
	String() string
}

// Base is the scalar element kind of a DataType.
type Base int

const (
	BaseBool Base = iota
	BaseInt
	BaseFloat
)

func (b Base) letter() string {
	switch b {
	case BaseBool:
		return "b"
	case BaseInt:
		return "i"
	case BaseFloat:
		return "f"
	default:
		return "?"
	}
}

// DataType is a (base, bit-width) pair, e.g. f32, i1, b1.
type DataType struct {
	Base  Base
	Width int
}

func (d DataType) String() string {
	return fmt.Sprintf("%s%d", d.Base.letter(), d.Width)
}

func (d DataType) Equal(o DataType) bool {
	return d.Base == o.Base && d.Width == o.Width
}

// Shape is a finite sequence of positive dimensions. A nil or empty
// Shape is the zero-dimensional shape denoting a scalar.
type Shape []int

func (s Shape) IsScalar() bool { return len(s) == 0 }

func (s Shape) Equal(o Shape) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

func (s Shape) String() string {
	if s.IsScalar() {
		return ""
	}
	dims := make([]string, len(s))
	for i, d := range s {
		dims[i] = fmt.Sprintf("%d", d)
	}
	return "[" + strings.Join(dims, "x") + "]"
}

// voidType is the unique void type.
type voidType struct{}

func (*voidType) isType()        {}
func (*voidType) String() string { return "void" }

// VoidType is the singleton void type.
var VoidType Type = &voidType{}

// invalidType is the sentinel an instruction kind's ResultType returns
// when its operand types admit no result (e.g. incompatible broadcast
// shapes, a rank-1 transpose); the printer renders it as "<invalid>".
type invalidType struct{}

func (*invalidType) isType()        {}
func (*invalidType) String() string { return "<invalid>" }

// InvalidType is the singleton sentinel type.
var InvalidType Type = &invalidType{}

// TensorType is a (shape, data type) pair. A zero-dimensional TensorType
// is a scalar.
type TensorType struct {
	Shape    Shape
	DataType DataType
}

func (*TensorType) isType() {}
func (t *TensorType) String() string {
	if t.Shape.IsScalar() {
		return t.DataType.String()
	}
	return fmt.Sprintf("%s %s", t.DataType.String(), t.Shape.String())
}

// TupleType is a fixed-size product of types.
type TupleType struct {
	Elements []Type
}

func (*TupleType) isType() {}
func (t *TupleType) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ArrayType is a homogeneous, dynamically-sized sequence of one element
// type (the result type of allocateHeap and the pointee of
// elementPointer into heap-allocated storage).
type ArrayType struct {
	Element Type
}

func (*ArrayType) isType()          {}
func (a *ArrayType) String() string { return fmt.Sprintf("array<%s>", a.Element.String()) }

// BoxType is the result of allocateBox(T): a single boxed cell of T.
type BoxType struct {
	Element Type
}

func (*BoxType) isType()          {}
func (b *BoxType) String() string { return fmt.Sprintf("box<%s>", b.Element.String()) }

// PointerType is the result of elementPointer: a pointer to the type
// addressed by the element key path (spec §4.2: "pointer-to type at
// keys (array-subscript)"). load/store/deallocate operate on it via
// Pointee.
type PointerType struct {
	Pointee Type
}

func (*PointerType) isType()          {}
func (p *PointerType) String() string { return fmt.Sprintf("ptr<%s>", p.Pointee.String()) }

// Pointee returns the type load(p) yields and store(v, p)/deallocate(p)
// operate against: the BoxType's or PointerType's element, in either
// case (a Box is itself a single-slot pointer-like cell per spec §4.2's
// allocateBox/projectBox rules).
func Pointee(t Type) (Type, error) {
	switch p := t.(type) {
	case *PointerType:
		return p.Pointee, nil
	case *BoxType:
		return p.Element, nil
	default:
		return nil, fmt.Errorf("type %s is not a pointer or box and has no pointee", t)
	}
}

// TypeAlias is a name bound to an optional Type. It may be opaque
// (forward-declared, Target == nil). Compared by identity (nominal), not
// structurally.
type TypeAlias struct {
	Name   string
	Target Type // nil while forward-declared
}

// AliasType references a TypeAlias by identity.
type AliasType struct {
	Alias *TypeAlias
}

func (*AliasType) isType()          {}
func (a *AliasType) String() string { return "@" + a.Alias.Name }

// StructType is a named nominal type with an ordered list of
// (fieldName, Type) entries and an attribute set. Compared by identity.
type StructType struct {
	Name       string
	Fields     []StructField
	Attributes map[string]bool
}

// StructField is one (name, Type) entry of a StructType, in declaration
// order.
type StructField struct {
	Name string
	Type Type
}

// FieldIndex returns the position of a field by name, or -1.
func (s *StructType) FieldIndex(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// StructRefType references a StructType by identity.
type StructRefType struct {
	Struct *StructType
}

func (*StructRefType) isType()          {}
func (s *StructRefType) String() string { return s.Struct.Name }

// FunctionType is the signature of a callable: an ordered list of
// argument types and a result type. It is the type ascribed to Use
// variants referencing a Function.
type FunctionType struct {
	Arguments []Type
	Result    Type
}

func (*FunctionType) isType() {}
func (f *FunctionType) String() string {
	parts := make([]string, len(f.Arguments))
	for i, a := range f.Arguments {
		parts[i] = a.String()
	}
	result := f.Result.String()
	if IsVoid(f.Result) {
		return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), result)
}

// IsVoid reports whether t is the void type.
func IsVoid(t Type) bool {
	_, ok := t.(*voidType)
	return ok
}

// IsTensor reports whether t is a tensor type.
func IsTensor(t Type) bool {
	_, ok := t.(*TensorType)
	return ok
}

// IsScalar reports whether t is a zero-dimensional tensor type.
func IsScalar(t Type) bool {
	tt, ok := t.(*TensorType)
	return ok && tt.Shape.IsScalar()
}

// TypesEqual implements the type system's equality rule: structural for
// every variant except AliasType and StructRefType, which compare by
// identity of the referenced TypeAlias/StructType.
func TypesEqual(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch av := a.(type) {
	case *voidType:
		_, ok := b.(*voidType)
		return ok
	case *invalidType:
		_, ok := b.(*invalidType)
		return ok
	case *TensorType:
		bv, ok := b.(*TensorType)
		return ok && av.Shape.Equal(bv.Shape) && av.DataType.Equal(bv.DataType)
	case *TupleType:
		bv, ok := b.(*TupleType)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !TypesEqual(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case *ArrayType:
		bv, ok := b.(*ArrayType)
		return ok && TypesEqual(av.Element, bv.Element)
	case *BoxType:
		bv, ok := b.(*BoxType)
		return ok && TypesEqual(av.Element, bv.Element)
	case *PointerType:
		bv, ok := b.(*PointerType)
		return ok && TypesEqual(av.Pointee, bv.Pointee)
	case *AliasType:
		bv, ok := b.(*AliasType)
		return ok && av.Alias == bv.Alias
	case *StructRefType:
		bv, ok := b.(*StructRefType)
		return ok && av.Struct == bv.Struct
	case *FunctionType:
		bv, ok := b.(*FunctionType)
		if !ok || len(av.Arguments) != len(bv.Arguments) {
			return false
		}
		for i := range av.Arguments {
			if !TypesEqual(av.Arguments[i], bv.Arguments[i]) {
				return false
			}
		}
		return TypesEqual(av.Result, bv.Result)
	default:
		return false
	}
}

// BroadcastingConfig parameterizes broadcast-compatibility checks. The
// zero value is the default elementwise-numpy-style rule: align trailing
// dimensions, a size-1 dimension expands to match its counterpart.
type BroadcastingConfig struct {
	// Strict disables dimension expansion: shapes must already be equal
	// after trailing alignment (rank may still differ by implicit
	// leading 1s).
	Strict bool
}

// BroadcastShapes computes the broadcast of two shapes under cfg, or
// reports ok=false if they are incompatible.
func BroadcastShapes(a, b Shape, cfg BroadcastingConfig) (Shape, bool) {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	result := make(Shape, n)
	for i := 0; i < n; i++ {
		da, db := 1, 1
		if i < len(a) {
			da = a[len(a)-1-i]
		}
		if i < len(b) {
			db = b[len(b)-1-i]
		}
		switch {
		case da == db:
			result[n-1-i] = da
		case da == 1 && !cfg.Strict:
			result[n-1-i] = db
		case db == 1 && !cfg.Strict:
			result[n-1-i] = da
		default:
			return nil, false
		}
	}
	return result, true
}

// BroadcastCompatible reports whether two tensor types may be
// broadcast together under cfg, and are over the same DataType.
func BroadcastCompatible(a, b *TensorType, cfg BroadcastingConfig) bool {
	if !a.DataType.Equal(b.DataType) {
		return false
	}
	_, ok := BroadcastShapes(a.Shape, b.Shape, cfg)
	return ok
}

// ElementKey is one indexing step used by extract/insert/elementPointer
// to address into an aggregate: either a tuple field position or a
// tensor dimension index.
type ElementKey struct {
	// TupleIndex selects a TupleType element when IsDimension is false.
	TupleIndex int
	// Dimension selects a tensor axis when IsDimension is true.
	Dimension   int
	IsDimension bool
}

// TupleKey builds an ElementKey addressing a tuple position.
func TupleKey(i int) ElementKey { return ElementKey{TupleIndex: i} }

// DimensionKey builds an ElementKey addressing a tensor dimension.
func DimensionKey(d int) ElementKey { return ElementKey{Dimension: d, IsDimension: true} }

// ElementType computes the type reached by walking keys into src,
// mirroring extract/insert/elementPointer's addressing rule: a
// TupleIndex key steps into a TupleType's Elements, a Dimension key
// drops one axis of a TensorType's Shape (yielding a lower-rank tensor
// of the same DataType, or a scalar once all axes are consumed).
func ElementType(src Type, keys []ElementKey) (Type, error) {
	cur := src
	for _, k := range keys {
		switch t := cur.(type) {
		case *TupleType:
			if k.IsDimension {
				return nil, fmt.Errorf("cannot index tuple type %s by dimension", t)
			}
			if k.TupleIndex < 0 || k.TupleIndex >= len(t.Elements) {
				return nil, fmt.Errorf("tuple index %d out of range for %s", k.TupleIndex, t)
			}
			cur = t.Elements[k.TupleIndex]
		case *TensorType:
			if !k.IsDimension {
				return nil, fmt.Errorf("cannot index tensor type %s by tuple position", t)
			}
			if k.Dimension < 0 || k.Dimension >= len(t.Shape) {
				return nil, fmt.Errorf("dimension %d out of range for %s", k.Dimension, t)
			}
			newShape := make(Shape, 0, len(t.Shape)-1)
			for i, d := range t.Shape {
				if i != k.Dimension {
					newShape = append(newShape, d)
				}
			}
			cur = &TensorType{Shape: newShape, DataType: t.DataType}
		default:
			return nil, fmt.Errorf("type %s is not an aggregate and cannot be indexed", cur)
		}
	}
	return cur, nil
}

// MatmulResultType computes the result type of matrixMultiply(a, b):
// contract the last dimension of a's shape with the first dimension of
// b's shape, broadcasting any remaining leading (batch) dimensions.
func MatmulResultType(a, b *TensorType) (*TensorType, error) {
	if !a.DataType.Equal(b.DataType) {
		return nil, fmt.Errorf("matmul operand data types differ: %s vs %s", a.DataType, b.DataType)
	}
	if len(a.Shape) < 1 || len(b.Shape) < 1 {
		return nil, fmt.Errorf("matmul operands must be at least rank 1, got %s and %s", a.Shape, b.Shape)
	}
	contractA := a.Shape[len(a.Shape)-1]
	contractB := b.Shape[0]
	if contractA != contractB {
		return nil, fmt.Errorf("matmul contraction dimension mismatch: %d vs %d", contractA, contractB)
	}
	aBatch := a.Shape[:len(a.Shape)-1]
	bBatch := b.Shape[1:]
	// The last dim of a's batch prefix and the first dim of b's batch
	// suffix are the matmul's own result rows/cols; only a deeper batch
	// prefix (if any) broadcasts.
	var aLead, bLead Shape
	var aRow, bCol int
	if len(aBatch) > 0 {
		aRow = aBatch[len(aBatch)-1]
		aLead = aBatch[:len(aBatch)-1]
	}
	if len(bBatch) > 0 {
		bCol = bBatch[0]
		bLead = bBatch[1:]
	}
	lead, ok := BroadcastShapes(aLead, bLead, BroadcastingConfig{})
	if !ok {
		return nil, fmt.Errorf("matmul batch dimensions incompatible: %s vs %s", aLead, bLead)
	}
	shape := append(Shape{}, lead...)
	if len(aBatch) > 0 {
		shape = append(shape, aRow)
	}
	if len(bBatch) > 0 {
		shape = append(shape, bCol)
	}
	return &TensorType{Shape: shape, DataType: a.DataType}, nil
}
