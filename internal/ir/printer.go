package ir

import (
	"strconv"
	"strings"
)

// Sink is the generic append-only destination pretty-printing writes to
// (spec §9: "a trait/interface with a single append-string method; do
// not assume buffering semantics"). The printer never reads back what it
// has written.
type Sink interface {
	Append(s string)
}

// stringSink is the Sink used by Print to collect output into a single
// string; callers embedding the printer in a larger stream (a file, a
// socket) implement Sink directly instead.
type stringSink struct {
	b strings.Builder
}

func (s *stringSink) Append(str string) { s.b.WriteString(str) }

// Print renders m to its textual surface form (spec §6) and returns it
// as a string. It never mutates m.
func Print(m *Module) string {
	sink := &stringSink{}
	NewPrinter(sink).PrintModule(m)
	return sink.b.String()
}

// Printer renders Modules to a Sink following the stable textual surface
// (spec §6). It holds no mutable IR state; the zero value plus a Sink is
// enough to print any well-formed Module repeatedly.
type Printer struct {
	sink Sink
}

// NewPrinter builds a Printer writing to sink.
func NewPrinter(sink Sink) *Printer { return &Printer{sink: sink} }

func (p *Printer) emit(s string) { p.sink.Append(s) }

// PrintModule renders the module header, every global declaration, and
// every function, in the blank-line layout spec §4.5 fixes: a blank line
// after the module name, each global on its own line, a blank line
// before the functions, and two newlines after each function.
func (p *Printer) PrintModule(m *Module) {
	p.emit("module " + m.Name + "\n")
	p.emit("\n")
	for _, g := range m.Globals() {
		p.emit(p.globalString(g) + "\n")
	}
	p.emit("\n")
	for _, fn := range m.Functions() {
		p.printFunction(fn)
		p.emit("\n\n")
	}
}

// globalString renders one `declare <kind> <sigil><name> : <type>`
// line, with ` = <initializer>` appended when an initializer is present.
func (p *Printer) globalString(g *GlobalValue) string {
	line := "declare " + g.Kind.String() + " " + g.Kind.sigil() + g.Name + " : " + p.typeString(g.Type)
	if !g.Initializer.IsZero() {
		if lit, ok := g.Initializer.Literal(); ok {
			line += " = " + p.literalString(lit, g.Initializer.Type())
		} else {
			line += " = " + p.useString(g.Initializer)
		}
	}
	return line
}

// printFunction renders the `[differentiable ]func @name(args)[ -> result]
// { ... }` form, with one basic block per line group.
func (p *Printer) printFunction(fn *Function) {
	prefix := ""
	if fn.Attributes["differentiable"] {
		prefix = "differentiable "
	}
	args := make([]string, len(fn.Arguments))
	for i, a := range fn.Arguments {
		args[i] = p.argString(a)
	}
	header := prefix + "func @" + fn.Name + "(" + strings.Join(args, ", ") + ")"
	if !IsVoid(fn.Result) {
		header += " -> " + p.typeString(fn.Result)
	}
	p.emit(header + " {\n")
	for _, b := range fn.Blocks() {
		p.printBlock(b)
	}
	p.emit("}\n")
}

// argString renders a function/block argument declaration: "%name: type"
// — the sigil-name-colon-type form, distinct from a Use's "type sigil-name"
// reference form.
func (p *Printer) argString(a *Argument) string {
	return "%" + a.Name + ": " + p.typeString(a.Type)
}

func (p *Printer) printBlock(b *BasicBlock) {
	args := make([]string, len(b.Arguments))
	for i, a := range b.Arguments {
		args[i] = p.argString(a)
	}
	p.emit(b.Name + "(" + strings.Join(args, ", ") + "):\n")
	for _, inst := range b.Instructions() {
		p.emit("    " + p.instructionString(inst) + "\n")
	}
}

// instructionString renders one instruction: "%name = <operation>" for a
// value-producing instruction, or a bare "<operation>" control-flow
// statement for a void-result one (spec §4.5). An unnamed instruction
// with a non-void result type is a builder bug (spec §3 invariant 2);
// the printer asserts against it rather than silently misrendering.
func (p *Printer) instructionString(inst *Instruction) string {
	body := p.operationString(inst.Kind)
	if IsVoid(inst.Kind.ResultType()) {
		return body
	}
	if inst.Name == "" {
		panic("ir: printer encountered an unnamed non-void instruction")
	}
	return "%" + inst.Name + " = " + body
}

func (p *Printer) operationString(k InstructionKind) string {
	keyword := keywordOf(k)
	switch v := k.(type) {
	case *BinaryInst:
		return keyword + " " + p.useString(v.Lhs) + ", " + p.useString(v.Rhs)
	case *UnaryInst:
		return keyword + " " + p.useString(v.X)
	case *MatrixMultiplyInst:
		return keyword + " " + p.useString(v.A) + ", " + p.useString(v.B)
	case *TransposeInst:
		return keyword + " " + p.useString(v.X)
	case *ReduceInst:
		return keyword + " " + v.F.String() + " " + p.useString(v.X) + " axis " + strconv.Itoa(v.Axis)
	case *ScanInst:
		return keyword + " " + v.F.String() + " " + p.useString(v.X) + " axis " + strconv.Itoa(v.Axis)
	case *ConcatenateInst:
		parts := make([]string, len(v.Xs))
		for i, x := range v.Xs {
			parts[i] = p.useString(x)
		}
		return keyword + " axis " + strconv.Itoa(v.Axis) + " " + strings.Join(parts, ", ")
	case *ShapeCastInst:
		return keyword + " " + p.useString(v.X) + " to " + v.NewShape.String()
	case *DataTypeCastInst:
		return keyword + " " + p.useString(v.X) + " to " + v.NewDataType.String()
	case *ExtractInst:
		return keyword + " " + p.useString(v.Src) + " " + keyPathString(v.Keys)
	case *InsertInst:
		return keyword + " " + p.useString(v.Val) + " into " + p.useString(v.Dst) + " " + keyPathString(v.Keys)
	case *ElementPointerInst:
		return keyword + " " + p.useString(v.Src) + " " + keyPathString(v.Keys)
	case *LoadInst:
		return keyword + " " + p.useString(v.P)
	case *StoreInst:
		return keyword + " " + p.useString(v.V) + ", " + p.useString(v.Dst)
	case *AllocateHeapInst:
		return keyword + " " + p.typeString(v.Element) + " x " + p.useString(v.Count)
	case *AllocateBoxInst:
		return keyword + " " + p.typeString(v.Element)
	case *ProjectBoxInst:
		return keyword + " " + p.useString(v.B)
	case *DeallocateInst:
		return keyword + " " + p.useString(v.X)
	case *ApplyInst:
		parts := make([]string, len(v.Args))
		for i, a := range v.Args {
			parts[i] = p.useString(a)
		}
		return keyword + " " + p.useString(v.F) + "(" + strings.Join(parts, ", ") + ")"
	case *GradientInst:
		return keyword + " " + p.useString(v.F) + " at " + p.useString(v.Out) +
			" wrt " + intListString(v.Wrt) + " keeping " + intListString(v.Keeping)
	case *BranchInst:
		parts := make([]string, len(v.Args))
		for i, a := range v.Args {
			parts[i] = p.useString(a)
		}
		return keyword + " " + v.Target.Name + "(" + strings.Join(parts, ", ") + ")"
	case *ConditionalInst:
		thenArgs := make([]string, len(v.ThenArgs))
		for i, a := range v.ThenArgs {
			thenArgs[i] = p.useString(a)
		}
		elseArgs := make([]string, len(v.ElseArgs))
		for i, a := range v.ElseArgs {
			elseArgs[i] = p.useString(a)
		}
		return keyword + " " + p.useString(v.Cond) +
			" then " + v.Then.Name + "(" + strings.Join(thenArgs, ", ") + ")" +
			" else " + v.Else.Name + "(" + strings.Join(elseArgs, ", ") + ")"
	case *ReturnInst:
		if v.Value == nil {
			return keyword
		}
		return keyword + " " + p.useString(*v.Value)
	default:
		return keyword
	}
}

// useString renders a Use at an operand position: "<type> <sigil><name>"
// for a reference, or "<type> <inline literal>" for a literal (spec §4.5
// / §6).
func (p *Printer) useString(u Use) string {
	if lit, ok := u.Literal(); ok {
		return p.typeString(u.Type()) + " " + p.literalString(lit, u.Type())
	}
	if kind, ok := u.Constant(); ok {
		return p.typeString(u.Type()) + " " + p.operationString(kind)
	}
	return p.typeString(u.Type()) + " " + u.sigil() + u.name()
}

func (p *Printer) typeString(t Type) string { return t.String() }

// literalString renders a Literal's inline form, resolving ScalarLiteral
// fields against the Base the ascribing type carries (spec value.go:
// "rendering depends on the ascribing type's Base").
func (p *Printer) literalString(lit Literal, t Type) string {
	base := BaseFloat
	if tt, ok := t.(*TensorType); ok {
		base = tt.DataType.Base
	}
	switch l := lit.(type) {
	case *ScalarLiteral:
		return scalarString(l, base)
	case *TensorRepeatLiteral:
		return "repeating " + scalarString(l.Value, base)
	case *TensorElementsLiteral:
		parts := make([]string, len(l.Elements))
		for i, e := range l.Elements {
			parts[i] = scalarString(e, base)
		}
		return "elements [ " + strings.Join(parts, ", ") + " ]"
	case *RandomRangeLiteral:
		return "random from " + scalarString(l.From, base) + " to " + scalarString(l.To, base)
	default:
		return lit.String()
	}
}

func scalarString(s *ScalarLiteral, base Base) string {
	switch base {
	case BaseBool:
		return strconv.FormatBool(s.Bool)
	case BaseInt:
		return strconv.FormatInt(s.Int, 10)
	default:
		return formatFloat(s.Float)
	}
}

// formatFloat renders a float with at least one fractional digit so
// integral values still read as floats ("0.0", not "0"), matching the
// textual surface's literal forms.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// keyPathString renders an ElementKey path as a sequence of ".n" (tuple
// field) and "[n]" (tensor dimension) steps, e.g. ".0[2]".
func keyPathString(keys []ElementKey) string {
	var b strings.Builder
	for _, k := range keys {
		if k.IsDimension {
			b.WriteString("[" + strconv.Itoa(k.Dimension) + "]")
		} else {
			b.WriteString("." + strconv.Itoa(k.TupleIndex))
		}
	}
	return b.String()
}

func intListString(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
