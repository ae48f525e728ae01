package acorn

// Kind tags every extracted item with its construct type.
type Kind string

const (
	KindTheorem            Kind = "theorem"
	KindAxiom              Kind = "axiom"
	KindDefine             Kind = "define"
	KindTypeClass          Kind = "typeclass"
	KindStructure          Kind = "structure"
	KindInductive          Kind = "inductive"
	KindAttributes         Kind = "attributes"
	KindAttributesMethod   Kind = "attributes_method"
	KindAttributesConstant Kind = "attributes_constant"
	KindInstance           Kind = "instance"
	KindInstanceMember     Kind = "instance_member"
	KindTypeClassMethod    Kind = "typeclass_method"
	KindTypeClassAxiom     Kind = "typeclass_axiom"
)

// Metadata holds the fields shared by every item variant.
type Metadata struct {
	Name         string
	Kind         Kind
	Source       string // verbatim source span
	File         string // originating file path, empty if unknown
	Line         int    // 1-based line of the construct keyword
	UUID         string // 16-hex-char fingerprint of (file, name)
	Dependencies map[string]bool
	Identifiers  map[string]bool
}

// Item is the closed set of Acorn constructs the parser produces.
// Per-kind behavior switches on the concrete type rather than on methods.
type Item interface {
	Meta() *Metadata
}

func (m *Metadata) Meta() *Metadata { return m }

// Theorem is a theorem or axiom. Kind is "axiom" when no proof was
// captured, regardless of the keyword that introduced the construct.
type Theorem struct {
	Metadata
	Head  string // signature plus quantifier block
	Proof string // empty for axioms
	Raw   string // keyword through the proof's closing brace
}

// Definition is a define statement, or a synthetic member expanded from
// an attributes block, instance body, or typeclass.
type Definition struct {
	Metadata
	Signature  string
	Body       string
	ReturnType string
}

// TypeClassMember is one method or axiom declared inside a typeclass.
type TypeClassMember struct {
	Name      string
	Kind      Kind // KindTypeClassMethod or KindTypeClassAxiom
	Signature string
	Body      string
	Source    string
}

// TypeClass is a typeclass declaration.
type TypeClass struct {
	Metadata
	TypeParam string // placeholder type parameter, "Self" if unnamed
	Extends   []string
	Members   []TypeClassMember
}

// MemberQualifiedName returns the exported name of a typeclass member,
// qualified by the typeclass name rather than the type parameter.
func (t *TypeClass) MemberQualifiedName(member string) string {
	return t.Name + "." + member
}

// StructureField is a (name, type) pair declared in a structure body.
type StructureField struct {
	Name string
	Type string
}

// Structure is a structure declaration with optional trailing constraint.
type Structure struct {
	Metadata
	TypeParams []string
	Fields     []StructureField
	Constraint string
}

// Constructor is one inductive constructor with its raw parameter text.
type Constructor struct {
	Name   string
	Params string
}

// Inductive is an inductive type declaration.
type Inductive struct {
	Metadata
	TypeParams   []string
	Constructors []Constructor
}

// AttributesBlock extends a type with methods and constants. The block
// itself is never persisted; only its expanded members are.
type AttributesBlock struct {
	Metadata
	TargetType string
	Members    []*Definition
}

// Instance declares that a type implements a typeclass. Let bindings in
// the body become synthetic Definitions qualified by the concrete type.
type Instance struct {
	Metadata
	TypeName      string
	TypeClassName string
	Members       []*Definition
}

// ImportStatement is a collected (but unresolved) import line.
type ImportStatement struct {
	Module string // empty for bare "import x" statements
	Items  []string
	Source string
}
