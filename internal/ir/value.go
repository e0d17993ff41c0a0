package ir

import (
	"fmt"
	"strings"
)

// Literal is the closed sum of tensor/scalar literal forms: a scalar
// literal, a tensor built by repeating one scalar, a tensor built from
// an explicit element list, or a tensor filled with values drawn from a
// random range. Literals are always referenced through a Use, which
// ascribes the type the literal is checked against (spec §3 Use typing).
type Literal interface {
	isLiteral()
	String() string
}

// ScalarLiteral is a single bool/int/float constant, printed in its
// natural Go representation (e.g. "true", "3", "1.5").
type ScalarLiteral struct {
	// Exactly one of Bool/Int/Float is meaningful, selected by the
	// ascribing DataType's Base.
	Bool  bool
	Int   int64
	Float float64
}

func (*ScalarLiteral) isLiteral() {}
func (s *ScalarLiteral) String() string {
	// Rendering depends on the ascribing type's Base; callers that need
	// a Base-correct rendering should use the printer's literalString,
	// which has access to the Use's declared type. This default renders
	// the float form, the most information-preserving of the three.
	return fmt.Sprintf("%v", s.Float)
}

// TensorRepeatLiteral denotes a tensor filled by repeating one scalar
// value across every element ("repeating v" in the textual surface).
type TensorRepeatLiteral struct {
	Value *ScalarLiteral
}

func (*TensorRepeatLiteral) isLiteral() {}
func (t *TensorRepeatLiteral) String() string {
	return fmt.Sprintf("repeating %s", t.Value.String())
}

// TensorElementsLiteral denotes a tensor with an explicit, fully
// enumerated element list ("elements [ e1, e2, ... ]").
type TensorElementsLiteral struct {
	Elements []*ScalarLiteral
}

func (*TensorElementsLiteral) isLiteral() {}
func (t *TensorElementsLiteral) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return "elements [ " + strings.Join(parts, ", ") + " ]"
}

// RandomRangeLiteral denotes a tensor whose elements are drawn
// uniformly from [From, To) ("random from a to b").
type RandomRangeLiteral struct {
	From, To *ScalarLiteral
}

func (*RandomRangeLiteral) isLiteral() {}
func (r *RandomRangeLiteral) String() string {
	return fmt.Sprintf("random from %s to %s", r.From.String(), r.To.String())
}

// Use is the closed sum of value references: a typed reference to an
// Argument, Instruction, GlobalValue, Function, a typed Literal, or a
// constant InstructionKind. The carried Type must equal the referent's
// declared result type (spec §3 invariant 3); for the Literal and
// Constant variants the Type is the ascription the raw value is checked
// against rather than a type inherent to the value itself.
type Use struct {
	kind useKind
	typ  Type

	argument    *Argument
	instruction *Instruction
	global      *GlobalValue
	function    *Function
	literal     Literal
	constant    InstructionKind
}

type useKind int

const (
	useArgument useKind = iota
	useInstruction
	useGlobal
	useFunction
	useLiteral
	useConstant
)

// UseArgument builds a Use(T, a) referencing a block argument.
func UseArgument(t Type, a *Argument) Use { return Use{kind: useArgument, typ: t, argument: a} }

// UseInstruction builds a Use(T, inst) referencing an instruction's
// result.
func UseInstruction(t Type, inst *Instruction) Use {
	return Use{kind: useInstruction, typ: t, instruction: inst}
}

// UseGlobal builds a Use(T, g) referencing a module-scope global.
func UseGlobal(t Type, g *GlobalValue) Use { return Use{kind: useGlobal, typ: t, global: g} }

// UseFunction builds a Use(T, f) referencing a function as a callable
// value (its FunctionType must equal T).
func UseFunction(t Type, f *Function) Use { return Use{kind: useFunction, typ: t, function: f} }

// UseLiteral builds a Use(T, lit) ascribing T to a raw literal at the
// reference site.
func UseLiteral(t Type, lit Literal) Use { return Use{kind: useLiteral, typ: t, literal: lit} }

// UseConstant builds a Use(T, kind) referencing a compile-time-computable
// instruction expression rather than a value produced by a live
// instruction in the graph (spec §9 open question: the constant/literal
// distinction is carried here but its verification rule belongs to the
// verifier).
func UseConstant(t Type, kind InstructionKind) Use {
	return Use{kind: useConstant, typ: t, constant: kind}
}

// Type returns the Use's declared (ascribed) type.
func (u Use) Type() Type { return u.typ }

// IsZero reports whether u is the zero Use (no referent) — used by
// GlobalValue.Initializer for placeholder/output declarations that
// carry none.
func (u Use) IsZero() bool {
	return u.typ == nil && u.argument == nil && u.instruction == nil &&
		u.global == nil && u.function == nil && u.literal == nil
}

// Argument returns the referenced Argument and true iff u is the
// argument variant.
func (u Use) Argument() (*Argument, bool) { return u.argument, u.kind == useArgument }

// Instruction returns the referenced Instruction and true iff u is the
// instruction variant.
func (u Use) Instruction() (*Instruction, bool) { return u.instruction, u.kind == useInstruction }

// Global returns the referenced GlobalValue and true iff u is the global
// variant.
func (u Use) Global() (*GlobalValue, bool) { return u.global, u.kind == useGlobal }

// Function returns the referenced Function and true iff u is the
// function variant.
func (u Use) Function() (*Function, bool) { return u.function, u.kind == useFunction }

// Literal returns the carried Literal and true iff u is the literal
// variant.
func (u Use) Literal() (Literal, bool) { return u.literal, u.kind == useLiteral }

// Constant returns the carried InstructionKind and true iff u is the
// constant variant.
func (u Use) Constant() (InstructionKind, bool) { return u.constant, u.kind == useConstant }

// ReferentType computes typeOf(referent) for every variant except
// literal/constant, where the ascription itself is authoritative (spec
// §3: "for literal uses, T is the ascription the literal is checked
// against"). It returns ok=false only for the zero Use.
func (u Use) ReferentType() (Type, bool) {
	switch u.kind {
	case useArgument:
		if u.argument == nil {
			return nil, false
		}
		return u.argument.Type, true
	case useInstruction:
		if u.instruction == nil {
			return nil, false
		}
		return u.instruction.Type(), true
	case useGlobal:
		if u.global == nil {
			return nil, false
		}
		return u.global.Type, true
	case useFunction:
		if u.function == nil {
			return nil, false
		}
		return u.function.Type(), true
	case useLiteral, useConstant:
		return u.typ, true
	default:
		return nil, false
	}
}

// sigil returns the printer's reference-site prefix for this Use's
// referent: "@" for module-scope referents (global, function), "%" for
// local ones (argument, instruction).
func (u Use) sigil() string {
	switch u.kind {
	case useGlobal, useFunction:
		return "@"
	default:
		return "%"
	}
}

// name returns the referent's name for the argument/instruction/global/
// function variants.
func (u Use) name() string {
	switch u.kind {
	case useArgument:
		return u.argument.Name
	case useInstruction:
		return u.instruction.Name
	case useGlobal:
		return u.global.Name
	case useFunction:
		return u.function.Name
	default:
		return ""
	}
}
