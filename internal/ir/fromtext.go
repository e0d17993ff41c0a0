package ir

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"dlvm/grammar"
)

// FromText parses source against the textual surface grammar and
// builds the Module it denotes, via the same Builder programmatic
// callers use (spec §6: the textual surface is "a faithful, lossless
// projection of the in-memory model", not a second way of constructing
// one). Only the instruction core grammar.go's OperationRef covers
// round-trips; a textual instruction using one of the remaining kinds
// (reduce, scan, concatenate, shapeCast, dataTypeCast, element, insert,
// subtensor, allocateHeap, allocateBox, projectBox, gradient, deallocate)
// matches no OperationRef alternative, so grammar.ParseString rejects it
// with a syntax error before any conversion runs.
func FromText(name, source string) (*Module, error) {
	program, err := grammar.ParseString(name, source)
	if err != nil {
		return nil, err
	}
	return convertModule(program.Module)
}

type converter struct {
	builder   *Builder
	globals   map[string]*GlobalValue
	functions map[string]*Function
}

func convertModule(m *grammar.ModuleDecl) (*Module, error) {
	c := &converter{
		builder:   NewBuilder(m.Name),
		globals:   map[string]*GlobalValue{},
		functions: map[string]*Function{},
	}

	for _, g := range m.Globals {
		gv, err := c.convertGlobal(g)
		if err != nil {
			return nil, fmt.Errorf("global %s: %w", g.Name, err)
		}
		c.globals[g.Name] = gv
	}

	// Pass A: register every function's signature and block scaffolding
	// before converting any instruction body, so forward references
	// (mutual recursion, a branch target declared later in the text, a
	// call to a function declared later in the module) resolve.
	for _, fd := range m.Functions {
		fn, err := c.declareFunction(fd)
		if err != nil {
			return nil, fmt.Errorf("func @%s: %w", fd.Name, err)
		}
		c.functions[fd.Name] = fn
	}

	for _, fd := range m.Functions {
		if err := c.convertFunctionBody(fd, c.functions[fd.Name]); err != nil {
			return nil, fmt.Errorf("func @%s: %w", fd.Name, err)
		}
	}

	return c.builder.Module(), nil
}

func (c *converter) convertGlobal(g *grammar.GlobalDecl) (*GlobalValue, error) {
	typ, err := typeFromRef(g.Type)
	if err != nil {
		return nil, err
	}
	var kind GlobalValueKind
	switch g.Kind {
	case "placeholder":
		kind = GlobalPlaceholder
	case "variable":
		kind = GlobalVariable
	case "output":
		kind = GlobalOutput
	default:
		return nil, fmt.Errorf("unknown global kind %q", g.Kind)
	}
	var init Use
	if g.Initializer != nil {
		lit, err := literalFromRef(g.Initializer, baseOf(typ))
		if err != nil {
			return nil, err
		}
		init = UseLiteral(typ, lit)
	}
	return c.builder.BuildGlobalValue(g.Name, kind, typ, init), nil
}

func (c *converter) declareFunction(fd *grammar.FunctionDecl) (*Function, error) {
	args := make([]NamedType, len(fd.Args))
	for i, a := range fd.Args {
		t, err := typeFromRef(a.Type)
		if err != nil {
			return nil, err
		}
		args[i] = NamedType{Name: a.Name, Type: t}
	}
	var result Type = VoidType
	if fd.Result != nil {
		t, err := typeFromRef(fd.Result)
		if err != nil {
			return nil, err
		}
		result = t
	}
	attrs := map[string]bool{}
	if fd.Differentiable != "" {
		attrs["differentiable"] = true
	}
	fn := c.builder.BuildFunction(fd.Name, args, result, attrs)
	for _, bd := range fd.Blocks {
		blockArgs := make([]NamedType, len(bd.Args))
		for i, a := range bd.Args {
			t, err := typeFromRef(a.Type)
			if err != nil {
				return nil, err
			}
			blockArgs[i] = NamedType{Name: a.Name, Type: t}
		}
		c.builder.BuildBasicBlock(bd.Name, blockArgs, fn)
	}
	return fn, nil
}

func (c *converter) convertFunctionBody(fd *grammar.FunctionDecl, fn *Function) error {
	locals := map[string]Use{}
	for _, a := range fn.Arguments {
		locals[a.Name] = UseArgument(a.Type, a)
	}
	for _, bd := range fd.Blocks {
		block, _ := fn.Block(bd.Name)
		for _, a := range block.Arguments {
			locals[a.Name] = UseArgument(a.Type, a)
		}
		c.builder.MoveTo(block)
		for _, id := range bd.Instructions {
			if err := c.convertInstruction(id, fn, locals); err != nil {
				return fmt.Errorf("block %s: %w", bd.Name, err)
			}
		}
	}
	return nil
}

func (c *converter) convertInstruction(id *grammar.InstructionDecl, fn *Function, locals map[string]Use) error {
	op := id.Op
	switch {
	case op.Binary != nil:
		bop, err := binaryOpFromString(op.Binary.Op)
		if err != nil {
			return err
		}
		lhs, err := c.resolveUse(op.Binary.Lhs, fn, locals)
		if err != nil {
			return err
		}
		rhs, err := c.resolveUse(op.Binary.Rhs, fn, locals)
		if err != nil {
			return err
		}
		inst := c.builder.BuildInstruction(&BinaryInst{Op: bop, Lhs: lhs, Rhs: rhs}, id.ResultName)
		locals[inst.Name] = UseInstruction(inst.Type(), inst)
		return nil
	case op.Unary != nil:
		uop, err := unaryOpFromString(op.Unary.Op)
		if err != nil {
			return err
		}
		x, err := c.resolveUse(op.Unary.X, fn, locals)
		if err != nil {
			return err
		}
		inst := c.builder.Unary(uop, x, id.ResultName)
		locals[inst.Name] = UseInstruction(inst.Type(), inst)
		return nil
	case op.MatMul != nil:
		a, err := c.resolveUse(op.MatMul.A, fn, locals)
		if err != nil {
			return err
		}
		b, err := c.resolveUse(op.MatMul.B, fn, locals)
		if err != nil {
			return err
		}
		inst := c.builder.MatrixMultiply(a, b, id.ResultName)
		locals[inst.Name] = UseInstruction(inst.Type(), inst)
		return nil
	case op.Transpose != nil:
		x, err := c.resolveUse(op.Transpose.X, fn, locals)
		if err != nil {
			return err
		}
		inst := c.builder.Transpose(x, id.ResultName)
		locals[inst.Name] = UseInstruction(inst.Type(), inst)
		return nil
	case op.Load != nil:
		p, err := c.resolveUse(op.Load.P, fn, locals)
		if err != nil {
			return err
		}
		inst := c.builder.Load(p, id.ResultName)
		locals[inst.Name] = UseInstruction(inst.Type(), inst)
		return nil
	case op.Store != nil:
		v, err := c.resolveUse(op.Store.V, fn, locals)
		if err != nil {
			return err
		}
		dst, err := c.resolveUse(op.Store.Dst, fn, locals)
		if err != nil {
			return err
		}
		c.builder.Store(v, dst)
		return nil
	case op.Call != nil:
		f, err := c.resolveUse(op.Call.F, fn, locals)
		if err != nil {
			return err
		}
		args := make([]Use, len(op.Call.Args))
		for i, a := range op.Call.Args {
			args[i], err = c.resolveUse(a, fn, locals)
			if err != nil {
				return err
			}
		}
		inst := c.builder.Apply(f, args, id.ResultName)
		locals[inst.Name] = UseInstruction(inst.Type(), inst)
		return nil
	case op.Branch != nil:
		target, ok := fn.Block(op.Branch.Target)
		if !ok {
			return fmt.Errorf("undefined block %s", op.Branch.Target)
		}
		args, err := c.resolveUses(op.Branch.Args, fn, locals)
		if err != nil {
			return err
		}
		c.builder.Branch(target, args)
		return nil
	case op.Conditional != nil:
		cond, err := c.resolveUse(op.Conditional.Cond, fn, locals)
		if err != nil {
			return err
		}
		then, ok := fn.Block(op.Conditional.Then)
		if !ok {
			return fmt.Errorf("undefined block %s", op.Conditional.Then)
		}
		els, ok := fn.Block(op.Conditional.Else)
		if !ok {
			return fmt.Errorf("undefined block %s", op.Conditional.Else)
		}
		thenArgs, err := c.resolveUses(op.Conditional.ThenArgs, fn, locals)
		if err != nil {
			return err
		}
		elseArgs, err := c.resolveUses(op.Conditional.ElseArgs, fn, locals)
		if err != nil {
			return err
		}
		c.builder.Conditional(cond, then, thenArgs, els, elseArgs)
		return nil
	case op.Return != nil:
		if op.Return.Value == nil {
			c.builder.Return(nil)
			return nil
		}
		v, err := c.resolveUse(op.Return.Value, fn, locals)
		if err != nil {
			return err
		}
		c.builder.Return(&v)
		return nil
	default:
		return fmt.Errorf("unsupported operation in textual instruction")
	}
}

func (c *converter) resolveUses(refs []*grammar.UseRef, fn *Function, locals map[string]Use) ([]Use, error) {
	uses := make([]Use, len(refs))
	for i, r := range refs {
		u, err := c.resolveUse(r, fn, locals)
		if err != nil {
			return nil, err
		}
		uses[i] = u
	}
	return uses, nil
}

func (c *converter) resolveUse(ref *grammar.UseRef, fn *Function, locals map[string]Use) (Use, error) {
	t, err := typeFromRef(ref.Type)
	if err != nil {
		return Use{}, err
	}
	if ref.Literal != nil {
		lit, err := literalFromRef(ref.Literal, baseOf(t))
		if err != nil {
			return Use{}, err
		}
		return UseLiteral(t, lit), nil
	}
	r := ref.Reference
	switch r.Sigil {
	case "%":
		if u, ok := locals[r.Name]; ok {
			return Use{kind: u.kind, typ: t, argument: u.argument, instruction: u.instruction, global: u.global, function: u.function, literal: u.literal, constant: u.constant}, nil
		}
		return Use{}, fmt.Errorf("undefined local %%%s", r.Name)
	case "@":
		if gv, ok := c.globals[r.Name]; ok {
			return UseGlobal(t, gv), nil
		}
		if f, ok := c.functions[r.Name]; ok {
			return UseFunction(t, f), nil
		}
		return Use{}, fmt.Errorf("undefined global @%s", r.Name)
	default:
		return Use{}, fmt.Errorf("malformed reference")
	}
}

func binaryOpFromString(s string) (BinaryOp, error) {
	switch s {
	case "add":
		return OpAdd, nil
	case "subtract":
		return OpSubtract, nil
	case "multiply":
		return OpMultiply, nil
	case "divide":
		return OpDivide, nil
	case "power":
		return OpPower, nil
	case "and":
		return OpAnd, nil
	case "or":
		return OpOr, nil
	case "compareEqual":
		return OpEqual, nil
	case "compareNotEqual":
		return OpNotEqual, nil
	case "compareLess":
		return OpLess, nil
	case "compareLessEqual":
		return OpLessEqual, nil
	case "compareGreater":
		return OpGreater, nil
	case "compareGreaterEqual":
		return OpGreaterEqual, nil
	default:
		return 0, fmt.Errorf("unknown binary operator %q", s)
	}
}

func unaryOpFromString(s string) (UnaryOp, error) {
	switch s {
	case "negate":
		return OpNegate, nil
	case "not":
		return OpNot, nil
	case "exp":
		return OpExp, nil
	case "log":
		return OpLog, nil
	case "sqrt":
		return OpSqrt, nil
	case "sin":
		return OpSin, nil
	case "cos":
		return OpCos, nil
	case "tanh":
		return OpTanh, nil
	case "sigmoid":
		return OpSigmoid, nil
	case "relu":
		return OpRelu, nil
	case "integrate":
		return OpIntegrate, nil
	default:
		return 0, fmt.Errorf("unknown unary operator %q", s)
	}
}

// baseOf returns the Base a literal nested inside t should be
// interpreted against, defaulting to BaseFloat for non-tensor types
// (mirroring printer.go's literalString).
func baseOf(t Type) Base {
	if tt, ok := t.(*TensorType); ok {
		return tt.DataType.Base
	}
	return BaseFloat
}

var dataTypeName = regexp.MustCompile(`^([fib])([0-9]+)$`)

// typeFromRef converts a parsed TypeRef into an ir.Type. Alias and
// struct type references are rejected: the textual grammar has no
// declaration syntax for struct/alias definitions to resolve them
// against (DESIGN.md records this as a deliberate scope boundary, not
// an oversight).
func typeFromRef(ref *grammar.TypeRef) (Type, error) {
	switch {
	case ref.Paren != nil:
		elems := make([]Type, len(ref.Paren.Elements))
		for i, e := range ref.Paren.Elements {
			t, err := typeFromRef(e)
			if err != nil {
				return nil, err
			}
			elems[i] = t
		}
		if ref.Paren.Result != nil {
			result, err := typeFromRef(ref.Paren.Result)
			if err != nil {
				return nil, err
			}
			return &FunctionType{Arguments: elems, Result: result}, nil
		}
		return &TupleType{Elements: elems}, nil
	case ref.Wrapped != nil:
		inner, err := typeFromRef(ref.Wrapped.Inner)
		if err != nil {
			return nil, err
		}
		switch ref.Wrapped.Keyword {
		case "array":
			return &ArrayType{Element: inner}, nil
		case "box":
			return &BoxType{Element: inner}, nil
		case "ptr":
			return &PointerType{Pointee: inner}, nil
		default:
			return nil, fmt.Errorf("unknown wrapped type keyword %q", ref.Wrapped.Keyword)
		}
	case ref.Alias != nil:
		return nil, fmt.Errorf("alias type reference @%s is not resolvable: the textual grammar has no alias declaration form", ref.Alias.Name)
	case ref.Bare != nil:
		return dataTypeFromBare(ref.Bare)
	default:
		return nil, fmt.Errorf("empty type reference")
	}
}

func dataTypeFromBare(b *grammar.BareTypeRef) (Type, error) {
	m := dataTypeName.FindStringSubmatch(b.Name)
	if m == nil {
		return nil, fmt.Errorf("%q is not a data type and struct type references are not supported by the textual grammar", b.Name)
	}
	width, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, err
	}
	var base Base
	switch m[1] {
	case "f":
		base = BaseFloat
	case "i":
		base = BaseInt
	case "b":
		base = BaseBool
	}
	shape, err := shapeFromText(b.Shape)
	if err != nil {
		return nil, err
	}
	return &TensorType{Shape: shape, DataType: DataType{Base: base, Width: width}}, nil
}

func shapeFromText(s string) (Shape, error) {
	if s == "" {
		return nil, nil
	}
	trimmed := strings.Trim(s, "[]")
	parts := strings.Split(trimmed, "x")
	dims := make(Shape, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("malformed shape %q", s)
		}
		dims[i] = n
	}
	return dims, nil
}

func literalFromRef(ref *grammar.LiteralRef, base Base) (Literal, error) {
	switch {
	case ref.Repeating != nil:
		s, err := scalarFromRef(ref.Repeating, base)
		if err != nil {
			return nil, err
		}
		return &TensorRepeatLiteral{Value: s}, nil
	case ref.Elements != nil:
		elems := make([]*ScalarLiteral, len(ref.Elements))
		for i, e := range ref.Elements {
			s, err := scalarFromRef(e, base)
			if err != nil {
				return nil, err
			}
			elems[i] = s
		}
		return &TensorElementsLiteral{Elements: elems}, nil
	case ref.Random != nil:
		from, err := scalarFromRef(ref.Random.From, base)
		if err != nil {
			return nil, err
		}
		to, err := scalarFromRef(ref.Random.To, base)
		if err != nil {
			return nil, err
		}
		return &RandomRangeLiteral{From: from, To: to}, nil
	case ref.Scalar != nil:
		return scalarFromRef(ref.Scalar, base)
	default:
		return nil, fmt.Errorf("empty literal")
	}
}

func scalarFromRef(ref *grammar.ScalarRef, base Base) (*ScalarLiteral, error) {
	switch base {
	case BaseBool:
		return &ScalarLiteral{Bool: ref.Bool == "true"}, nil
	case BaseInt:
		n, err := strconv.ParseInt(ref.Int, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed int literal %q", ref.Int)
		}
		return &ScalarLiteral{Int: n}, nil
	default:
		text := ref.Float
		if text == "" {
			text = ref.Int
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed float literal %q", text)
		}
		return &ScalarLiteral{Float: f}, nil
	}
}
