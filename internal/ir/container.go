package ir

import "fmt"

// orderedSet is an insertion-ordered collection with O(1) by-name
// lookup and name-uniqueness enforcement. Module's function/struct/
// alias/global tables and Function's block table are instances of it;
// BasicBlock keeps its instructions in a plain slice instead. It is a
// small unexported generic slice+map pair.
type orderedSet[T any] struct {
	order []T
	byName map[string]int
}

func newOrderedSet[T any]() orderedSet[T] {
	return orderedSet[T]{byName: make(map[string]int)}
}

func (s *orderedSet[T]) add(name string, v T) error {
	if _, exists := s.byName[name]; exists {
		return fmt.Errorf("duplicate name %q", name)
	}
	s.byName[name] = len(s.order)
	s.order = append(s.order, v)
	return nil
}

func (s *orderedSet[T]) has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

func (s *orderedSet[T]) get(name string) (T, bool) {
	i, ok := s.byName[name]
	if !ok {
		var zero T
		return zero, false
	}
	return s.order[i], true
}

func (s *orderedSet[T]) all() []T { return s.order }

// Module is the named top-level IR container. It owns an ordered
// sequence of Functions and module-scope tables of StructTypes,
// TypeAliases and GlobalValues; names are unique within each table.
type Module struct {
	Name string

	functions orderedSet[*Function]
	structs   orderedSet[*StructType]
	aliases   orderedSet[*TypeAlias]
	globals   orderedSet[*GlobalValue]
}

// NewModule creates an empty named module. Entities are attached to it
// exclusively through the Builder (see builder.go); this constructor
// exists so the Builder itself has a target to build into.
func NewModule(name string) *Module {
	return &Module{
		Name:      name,
		functions: newOrderedSet[*Function](),
		structs:   newOrderedSet[*StructType](),
		aliases:   newOrderedSet[*TypeAlias](),
		globals:   newOrderedSet[*GlobalValue](),
	}
}

func (m *Module) Functions() []*Function       { return m.functions.all() }
func (m *Module) Structs() []*StructType       { return m.structs.all() }
func (m *Module) Aliases() []*TypeAlias        { return m.aliases.all() }
func (m *Module) Globals() []*GlobalValue      { return m.globals.all() }

func (m *Module) Function(name string) (*Function, bool)     { return m.functions.get(name) }
func (m *Module) Struct(name string) (*StructType, bool)      { return m.structs.get(name) }
func (m *Module) Alias(name string) (*TypeAlias, bool)        { return m.aliases.get(name) }
func (m *Module) Global(name string) (*GlobalValue, bool)     { return m.globals.get(name) }

// GlobalValueKind distinguishes the three module-scope value kinds
// retained from the flat-module builder flavor (spec §9 open question):
// an uninitialized placeholder referenced locally within its declaring
// module, a variable carrying an initializer, and a declared output.
// Placeholder is the odd one out: its declaration prints with the local
// "%" sigil despite being module-scope, matching the textual surface's
// `declare placeholder %x : ...`. A Use referencing any global,
// placeholders included, prints with "@" (see Use.sigil).
type GlobalValueKind int

const (
	GlobalPlaceholder GlobalValueKind = iota
	GlobalVariable
	GlobalOutput
)

func (k GlobalValueKind) String() string {
	switch k {
	case GlobalPlaceholder:
		return "placeholder"
	case GlobalVariable:
		return "variable"
	case GlobalOutput:
		return "output"
	default:
		return "placeholder"
	}
}

// sigil returns the printer's reference-site prefix for a GlobalValue of
// this Kind: "%" for placeholders, "@" for variables and outputs.
func (k GlobalValueKind) sigil() string {
	if k == GlobalPlaceholder {
		return "%"
	}
	return "@"
}

// GlobalValue is a named module-scope value: a Kind, a Type, and an
// initializer Use (the zero Use for a bare placeholder/output
// declaration that carries no initializer).
type GlobalValue struct {
	Name        string
	Kind        GlobalValueKind
	Type        Type
	Initializer Use
	parent      *Module
}

// Parent returns the owning Module (non-owning back-reference).
func (g *GlobalValue) Parent() *Module { return g.parent }

// Function is a named, module-parented container of an ordered argument
// list, a result type, an attribute set, and an ordered sequence of
// BasicBlocks whose first is always named "entry".
type Function struct {
	Name       string
	Arguments  []*Argument
	Result     Type
	Attributes map[string]bool

	blocks orderedSet[*BasicBlock]
	parent *Module
}

// Parent returns the owning Module (non-owning back-reference).
func (f *Function) Parent() *Module { return f.parent }

// Blocks returns the function's basic blocks in insertion order.
func (f *Function) Blocks() []*BasicBlock { return f.blocks.all() }

// Entry returns the function's entry block. A Function always has one
// once constructed by the Builder.
func (f *Function) Entry() *BasicBlock {
	b, _ := f.blocks.get("entry")
	return b
}

// Block looks up a basic block by name within the function.
func (f *Function) Block(name string) (*BasicBlock, bool) { return f.blocks.get(name) }

// Type returns the function's signature as a FunctionType, suitable for
// ascribing a Use(function(...)).
func (f *Function) Type() *FunctionType {
	args := make([]Type, len(f.Arguments))
	for i, a := range f.Arguments {
		args[i] = a.Type
	}
	return &FunctionType{Arguments: args, Result: f.Result}
}

// nameInUse reports whether name is already taken by an argument, block,
// or named instruction anywhere in the function — the injective name
// scope spec §3 invariant 1 requires.
func (f *Function) nameInUse(name string) bool {
	for _, a := range f.Arguments {
		if a.Name == name {
			return true
		}
	}
	if f.blocks.has(name) {
		return true
	}
	for _, b := range f.blocks.all() {
		for _, inst := range b.Instructions() {
			if inst.Name == name {
				return true
			}
		}
	}
	return false
}

// BasicBlock is a named, function-parented ordered sequence of block
// Arguments (parameters) and Instructions.
type BasicBlock struct {
	Name      string
	Arguments []*Argument

	instructions []*Instruction
	parent       *Function
}

// Parent returns the owning Function (non-owning back-reference).
func (b *BasicBlock) Parent() *Function { return b.parent }

// Instructions returns the block's instructions in order.
func (b *BasicBlock) Instructions() []*Instruction { return b.instructions }

// Terminator returns the block's last instruction if it is a
// terminator, and whether the block is "complete" per spec §3
// invariant 5. The builder does not enforce this on every insert;
// verification does (see verify.go).
func (b *BasicBlock) Terminator() (*Instruction, bool) {
	if len(b.instructions) == 0 {
		return nil, false
	}
	last := b.instructions[len(b.instructions)-1]
	return last, last.Kind.IsTerminator()
}

// append adds inst to the end of the block's instruction stream. Used
// only by the Builder.
func (b *BasicBlock) append(inst *Instruction) {
	inst.parent = b
	b.instructions = append(b.instructions, inst)
}

// Unlink removes inst from its block's instruction stream. Per spec §3
// Lifecycle, any Use still referencing inst becomes dangling and must be
// replaced before the next pretty-print or verification; Unlink itself
// performs no use-rewriting.
func (b *BasicBlock) Unlink(inst *Instruction) bool {
	for i, cur := range b.instructions {
		if cur == inst {
			b.instructions = append(b.instructions[:i], b.instructions[i+1:]...)
			inst.unlinked = true
			return true
		}
	}
	return false
}

// Argument is a block parameter: a value with a Type and a weak
// back-reference to its parent block.
type Argument struct {
	Name   string
	Type   Type
	parent *BasicBlock
}

// Parent returns the owning BasicBlock (non-owning back-reference).
func (a *Argument) Parent() *BasicBlock { return a.parent }

// Instruction is an optionally-named (named iff its result type is
// non-void), block-parented node carrying an InstructionKind.
type Instruction struct {
	Name string // empty iff Kind's result type is void
	Kind InstructionKind

	parent   *BasicBlock
	unlinked bool
}

// Parent returns the owning BasicBlock (non-owning back-reference).
func (i *Instruction) Parent() *BasicBlock { return i.parent }

// Type returns the instruction's result type, computed from its Kind.
func (i *Instruction) Type() Type { return i.Kind.ResultType() }

// Unlinked reports whether this instruction has been removed from its
// block via BasicBlock.Unlink.
func (i *Instruction) Unlinked() bool { return i.unlinked }
