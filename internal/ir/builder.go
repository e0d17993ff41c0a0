package ir

import "fmt"

// Builder incrementally constructs a well-formed Module while
// maintaining the SSA naming, containment and result-typing invariants
// spec §3 requires. It is the sole means by which Modules, Functions,
// BasicBlocks, Instructions, GlobalValues, StructTypes and TypeAliases
// are created and attached to their parents (spec §3 Lifecycle).
//
// Builder state mirrors the teacher's AST-to-IR Builder (variableStack/
// currentBlock/currentFunc in internal/ir/builder.go): a target Module,
// an optional currentBlock insertion point, a currentFunction cached
// from currentBlock.Parent(), and a monotonic per-function naming
// counter.
type Builder struct {
	module          *Module
	currentBlock    *BasicBlock
	currentFunction *Function
	variableNameID  int
}

// NewBuilder creates a Builder targeting a freshly named Module.
func NewBuilder(moduleName string) *Builder {
	return &Builder{module: NewModule(moduleName)}
}

// Module returns the Builder's target Module.
func (b *Builder) Module() *Module { return b.module }

// CurrentBlock returns the current insertion point, or nil if none is
// set.
func (b *Builder) CurrentBlock() *BasicBlock { return b.currentBlock }

// CurrentFunction returns the function owning the current insertion
// point, or nil.
func (b *Builder) CurrentFunction() *Function { return b.currentFunction }

// MoveTo sets the current insertion point. Passing nil disables
// insertion (the next BuildInstruction fails with NoInsertionPoint).
// Moving to a block in a different function resets the auto-naming
// counter to 0 (spec §4.3 Positioning / Testable property 3).
func (b *Builder) MoveTo(block *BasicBlock) {
	var fn *Function
	if block != nil {
		fn = block.Parent()
	}
	if fn != b.currentFunction {
		b.variableNameID = 0
	}
	b.currentBlock = block
	b.currentFunction = fn
}

// --- Module-level construction -------------------------------------------------

// BuildStruct declares a named struct type with an ordered field list
// and an attribute set, and attaches it to the module. It fails fast
// (DuplicateName) on a field-name collision within fields, or if name
// already names a struct in the module (spec §4.3 Errors).
func (b *Builder) BuildStruct(name string, fields []StructField, attributes map[string]bool) *StructType {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.Name] {
			panic(fmt.Sprintf("ir: duplicate field name %q in struct %q", f.Name, name))
		}
		seen[f.Name] = true
	}
	st := &StructType{Name: name, Fields: fields, Attributes: attributes}
	if err := b.module.structs.add(name, st); err != nil {
		panic(fmt.Sprintf("ir: duplicate struct name %q", name))
	}
	return st
}

// BuildAlias binds name to target (which may be nil for a forward
// declaration) and attaches it to the module.
func (b *Builder) BuildAlias(name string, target Type) *TypeAlias {
	alias := &TypeAlias{Name: name, Target: target}
	if err := b.module.aliases.add(name, alias); err != nil {
		panic(fmt.Sprintf("ir: duplicate alias name %q", name))
	}
	return alias
}

// BuildGlobalValue declares a module-scope value with the given kind,
// type and initializer, and attaches it to the module.
func (b *Builder) BuildGlobalValue(name string, kind GlobalValueKind, typ Type, initializer Use) *GlobalValue {
	gv := &GlobalValue{Name: name, Kind: kind, Type: typ, Initializer: initializer, parent: b.module}
	if err := b.module.globals.add(name, gv); err != nil {
		panic(fmt.Sprintf("ir: duplicate global name %q", name))
	}
	return gv
}

// NamedType is a (name, Type) pair used for function arguments and
// block parameters at construction time.
type NamedType struct {
	Name string
	Type Type
}

// BuildFunction declares a function with the given arguments and result
// type (VoidType if result is nil), attaches it to the module, and
// creates its entry block with the function's arguments as block
// arguments (spec §4.3: "also creates the entry block with the
// function's arguments as block arguments").
func (b *Builder) BuildFunction(name string, arguments []NamedType, result Type, attributes map[string]bool) *Function {
	if result == nil {
		result = VoidType
	}
	fn := &Function{Name: name, Result: result, Attributes: attributes, blocks: newOrderedSet[*BasicBlock](), parent: b.module}
	fn.Arguments = make([]*Argument, len(arguments))
	for i, a := range arguments {
		fn.Arguments[i] = &Argument{Name: a.Name, Type: a.Type}
	}
	if err := b.module.functions.add(name, fn); err != nil {
		panic(fmt.Sprintf("ir: duplicate function name %q", name))
	}

	entry := &BasicBlock{Name: "entry", parent: fn}
	entry.Arguments = make([]*Argument, len(arguments))
	for i, a := range arguments {
		entry.Arguments[i] = &Argument{Name: a.Name, Type: a.Type, parent: entry}
	}
	if err := fn.blocks.add("entry", entry); err != nil {
		panic(err) // unreachable: fn was just created
	}
	return fn
}

// BuildBasicBlock creates a block with the given arguments in function
// fn. If name is "entry" it instead returns fn's pre-existing entry
// block unchanged, ignoring arguments entirely (spec §3 invariant 6 /
// §4.3 / Testable properties 2 and 4). Otherwise the name is
// disambiguated against fn's name scope before the block is created.
func (b *Builder) BuildBasicBlock(name string, arguments []NamedType, fn *Function) *BasicBlock {
	if name == "entry" {
		return fn.Entry()
	}
	name = disambiguate(name, fn.nameInUse)
	block := &BasicBlock{Name: name, parent: fn}
	block.Arguments = make([]*Argument, len(arguments))
	for i, a := range arguments {
		block.Arguments[i] = &Argument{Name: a.Name, Type: a.Type, parent: block}
	}
	if err := fn.blocks.add(name, block); err != nil {
		panic(err) // unreachable: name was just disambiguated to be free
	}
	return block
}

// --- Instruction construction --------------------------------------------------

// BuildInstruction inserts an instruction of the given kind at the
// current insertion point. It panics with NoInsertionPoint if no block
// is positioned (spec §4.3/§7: a programmer bug, surfaced immediately).
// If kind's result type is void the instruction is unnamed regardless of
// a requested name; otherwise the requested name (or, if empty, a fresh
// "vN" name) is disambiguated against the enclosing function's name
// scope before being assigned (spec §4.3 Naming policy).
func (b *Builder) BuildInstruction(kind InstructionKind, name string) *Instruction {
	if b.currentBlock == nil {
		panic(noInsertionPointMessage)
	}
	inst := &Instruction{Kind: kind}
	if !IsVoid(kind.ResultType()) {
		if name == "" {
			name = fmt.Sprintf("v%d", b.variableNameID)
			b.variableNameID++
		}
		inst.Name = disambiguate(name, b.currentFunction.nameInUse)
	}
	b.currentBlock.append(inst)
	return inst
}

// noInsertionPointMessage is the panic text for the NoInsertionPoint
// builder error (spec §7).
const noInsertionPointMessage = "ir: buildInstruction called with no current insertion point (NoInsertionPoint)"

// disambiguate finds the smallest-suffixed name matching base(.N)? that
// inUse reports as free, trying base itself first, then base.1, base.2,
// ... (spec §4.3 Naming policy / Testable property 4).
func disambiguate(base string, inUse func(string) bool) string {
	if !inUse(base) {
		return base
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s.%d", base, n)
		if !inUse(candidate) {
			return candidate
		}
	}
}

// --- Convenience constructors ---------------------------------------------
//
// These wrap BuildInstruction for every op class named in spec §4.3.
// They are pure sugar: they carry no invariants BuildInstruction itself
// does not already enforce.

func (b *Builder) Add(lhs, rhs Use, cfg BroadcastingConfig, name string) *Instruction {
	return b.BuildInstruction(&BinaryInst{Op: OpAdd, Lhs: lhs, Rhs: rhs, Broadcasting: cfg}, name)
}

func (b *Builder) Subtract(lhs, rhs Use, cfg BroadcastingConfig, name string) *Instruction {
	return b.BuildInstruction(&BinaryInst{Op: OpSubtract, Lhs: lhs, Rhs: rhs, Broadcasting: cfg}, name)
}

func (b *Builder) Multiply(lhs, rhs Use, cfg BroadcastingConfig, name string) *Instruction {
	return b.BuildInstruction(&BinaryInst{Op: OpMultiply, Lhs: lhs, Rhs: rhs, Broadcasting: cfg}, name)
}

func (b *Builder) Divide(lhs, rhs Use, cfg BroadcastingConfig, name string) *Instruction {
	return b.BuildInstruction(&BinaryInst{Op: OpDivide, Lhs: lhs, Rhs: rhs, Broadcasting: cfg}, name)
}

func (b *Builder) Power(lhs, rhs Use, cfg BroadcastingConfig, name string) *Instruction {
	return b.BuildInstruction(&BinaryInst{Op: OpPower, Lhs: lhs, Rhs: rhs, Broadcasting: cfg}, name)
}

func (b *Builder) Compare(op BinaryOp, lhs, rhs Use, cfg BroadcastingConfig, name string) *Instruction {
	return b.BuildInstruction(&BinaryInst{Op: op, Lhs: lhs, Rhs: rhs, Broadcasting: cfg}, name)
}

func (b *Builder) Unary(op UnaryOp, x Use, name string) *Instruction {
	return b.BuildInstruction(&UnaryInst{Op: op, X: x}, name)
}

func (b *Builder) MatrixMultiply(a, x Use, name string) *Instruction {
	return b.BuildInstruction(&MatrixMultiplyInst{A: a, B: x}, name)
}

func (b *Builder) Transpose(x Use, name string) *Instruction {
	return b.BuildInstruction(&TransposeInst{X: x}, name)
}

func (b *Builder) Reduce(f FoldOp, x Use, axis int, name string) *Instruction {
	return b.BuildInstruction(&ReduceInst{F: f, X: x, Axis: axis}, name)
}

func (b *Builder) Scan(f FoldOp, x Use, axis int, name string) *Instruction {
	return b.BuildInstruction(&ScanInst{F: f, X: x, Axis: axis}, name)
}

func (b *Builder) Concatenate(xs []Use, axis int, name string) *Instruction {
	return b.BuildInstruction(&ConcatenateInst{Xs: xs, Axis: axis}, name)
}

func (b *Builder) ShapeCast(x Use, newShape Shape, name string) *Instruction {
	return b.BuildInstruction(&ShapeCastInst{X: x, NewShape: newShape}, name)
}

func (b *Builder) DataTypeCast(x Use, newDataType DataType, name string) *Instruction {
	return b.BuildInstruction(&DataTypeCastInst{X: x, NewDataType: newDataType}, name)
}

func (b *Builder) Extract(src Use, keys []ElementKey, name string) *Instruction {
	return b.BuildInstruction(&ExtractInst{Src: src, Keys: keys}, name)
}

func (b *Builder) Insert(val, dst Use, keys []ElementKey, name string) *Instruction {
	return b.BuildInstruction(&InsertInst{Val: val, Dst: dst, Keys: keys}, name)
}

func (b *Builder) ElementPointer(src Use, keys []ElementKey, name string) *Instruction {
	return b.BuildInstruction(&ElementPointerInst{Src: src, Keys: keys}, name)
}

func (b *Builder) Load(p Use, name string) *Instruction {
	return b.BuildInstruction(&LoadInst{P: p}, name)
}

func (b *Builder) Store(v, dst Use) *Instruction {
	return b.BuildInstruction(&StoreInst{V: v, Dst: dst}, "")
}

func (b *Builder) AllocateHeap(element Type, count Use, name string) *Instruction {
	return b.BuildInstruction(&AllocateHeapInst{Element: element, Count: count}, name)
}

func (b *Builder) AllocateBox(element Type, name string) *Instruction {
	return b.BuildInstruction(&AllocateBoxInst{Element: element}, name)
}

func (b *Builder) ProjectBox(box Use, name string) *Instruction {
	return b.BuildInstruction(&ProjectBoxInst{B: box}, name)
}

func (b *Builder) Deallocate(x Use) *Instruction {
	return b.BuildInstruction(&DeallocateInst{X: x}, "")
}

func (b *Builder) Apply(f Use, args []Use, name string) *Instruction {
	return b.BuildInstruction(&ApplyInst{F: f, Args: args}, name)
}

func (b *Builder) Gradient(f, out Use, wrt, keeping []int, name string) *Instruction {
	return b.BuildInstruction(&GradientInst{F: f, Out: out, Wrt: wrt, Keeping: keeping}, name)
}

func (b *Builder) Branch(target *BasicBlock, args []Use) *Instruction {
	return b.BuildInstruction(&BranchInst{Target: target, Args: args}, "")
}

func (b *Builder) Conditional(cond Use, then *BasicBlock, thenArgs []Use, els *BasicBlock, elseArgs []Use) *Instruction {
	return b.BuildInstruction(&ConditionalInst{Cond: cond, Then: then, ThenArgs: thenArgs, Else: els, ElseArgs: elseArgs}, "")
}

func (b *Builder) Return(value *Use) *Instruction {
	return b.BuildInstruction(&ReturnInst{Value: value}, "")
}

// BitCast casts x to a new DataType without changing its shape, reusing
// the dataTypeCast result rule (the only bit-cast shape spec §4.3's
// convenience-constructor list names for this IR: a width/interpretation
// change over the same shape).
func (b *Builder) BitCast(x Use, newDataType DataType, name string) *Instruction {
	return b.DataTypeCast(x, newDataType, name)
}
