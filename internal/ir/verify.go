package ir

import "fmt"

// DiagnosticKind is the closed sum of the three verification-level error
// kinds (spec §7): the first two builder-level kinds (NoInsertionPoint,
// DuplicateName) are programmer bugs and already surface as panics from
// builder.go; these three are instead collected by a dedicated pass over
// a constructed Module and reported against the offending entity rather
// than failing the mutation that introduced them.
type DiagnosticKind int

const (
	// TypeMismatch: a Use's declared type disagrees with typeOf(referent).
	TypeMismatch DiagnosticKind = iota
	// DanglingUse: a Use references an instruction that has been unlinked
	// from its block.
	DanglingUse
	// MalformedTerminator: a block has no terminator, or a non-terminator
	// instruction appears where only a terminator may.
	MalformedTerminator
)

func (k DiagnosticKind) String() string {
	switch k {
	case TypeMismatch:
		return "TypeMismatch"
	case DanglingUse:
		return "DanglingUse"
	case MalformedTerminator:
		return "MalformedTerminator"
	default:
		return "UnknownDiagnostic"
	}
}

// Diagnostic reports one verification failure against the entity that
// caused it. The IR carries no source-file positions (spec §6
// Environment: "the core is a pure in-memory library"), so context is
// identity-based: the enclosing function/block/instruction, by name.
type Diagnostic struct {
	Kind        DiagnosticKind
	Message     string
	Function    *Function
	Block       *BasicBlock
	Instruction *Instruction
}

func (d Diagnostic) String() string {
	loc := ""
	if d.Function != nil {
		loc = "@" + d.Function.Name
		if d.Block != nil {
			loc += "/" + d.Block.Name
		}
		if d.Instruction != nil && d.Instruction.Name != "" {
			loc += "/%" + d.Instruction.Name
		}
	}
	if loc == "" {
		return fmt.Sprintf("%s: %s", d.Kind, d.Message)
	}
	return fmt.Sprintf("%s at %s: %s", d.Kind, loc, d.Message)
}

// Verify walks every function in m and reports every TypeMismatch,
// DanglingUse, and MalformedTerminator it finds. It performs no mutation
// and assumes no concurrent mutation occurs during the walk (spec §5).
func Verify(m *Module) []Diagnostic {
	var diags []Diagnostic
	for _, fn := range m.Functions() {
		verifyFunction(fn, &diags)
	}
	return diags
}

func verifyFunction(fn *Function, diags *[]Diagnostic) {
	for _, b := range fn.Blocks() {
		verifyBlock(fn, b, diags)
	}
}

func verifyBlock(fn *Function, b *BasicBlock, diags *[]Diagnostic) {
	instructions := b.Instructions()
	if len(instructions) == 0 {
		*diags = append(*diags, Diagnostic{
			Kind: MalformedTerminator, Function: fn, Block: b,
			Message: "block has no instructions and therefore no terminator",
		})
		return
	}
	for idx, inst := range instructions {
		isLast := idx == len(instructions)-1
		if inst.Kind.IsTerminator() && !isLast {
			*diags = append(*diags, Diagnostic{
				Kind: MalformedTerminator, Function: fn, Block: b, Instruction: inst,
				Message: "terminator is not the block's final instruction",
			})
		}
		if isLast && !inst.Kind.IsTerminator() {
			*diags = append(*diags, Diagnostic{
				Kind: MalformedTerminator, Function: fn, Block: b, Instruction: inst,
				Message: "block's final instruction is not a terminator",
			})
		}
		verifyOperands(fn, b, inst, diags)
	}
}

func verifyOperands(fn *Function, b *BasicBlock, inst *Instruction, diags *[]Diagnostic) {
	for _, op := range inst.Kind.Operands() {
		if used, ok := op.Instruction(); ok && used.Unlinked() {
			*diags = append(*diags, Diagnostic{
				Kind: DanglingUse, Function: fn, Block: b, Instruction: inst,
				Message: fmt.Sprintf("use references unlinked instruction %%%s", used.Name),
			})
			continue
		}
		referent, ok := op.ReferentType()
		if !ok {
			continue
		}
		if !TypesEqual(op.Type(), referent) {
			*diags = append(*diags, Diagnostic{
				Kind: TypeMismatch, Function: fn, Block: b, Instruction: inst,
				Message: fmt.Sprintf("use declares type %s but referent has type %s", op.Type(), referent),
			})
		}
	}
}
