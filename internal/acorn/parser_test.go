package acorn

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the item parser:
// - Theorem with by-block captures head, proof, raw and kind "theorem"
// - Theorem without a proof block is recorded as an axiom with empty proof
// - by-block on the line after the head is still found
// - Axiom keyword never captures a proof
// - Typeclass parses type param, extends list, and members; members expand
//   into typeclass_method / typeclass_axiom items with qualified names
// - Structure parses type params, fields, and trailing constraint block
// - Inductive parses constructors
// - Define parses signature, body, and return type
// - Attributes block emits only expanded members, never the block itself
// - Instance emits the instance record plus instance_member definitions;
//   a bodiless instance has no members
// - Imports are collected with module and item lists
// - Malformed constructs are dropped and parsing continues
// - Parsing the same input twice yields identical item lists
// - UUIDs are stable in (file, name) and 16 hex chars long

func findItem(t *testing.T, items []Item, name string) Item {
	t.Helper()
	for _, item := range items {
		if item.Meta().Name == name {
			return item
		}
	}
	t.Fatalf("item %q not found", name)
	return nil
}

func TestParser_TheoremWithProof(t *testing.T) {
	t.Parallel()

	source := `theorem add_comm(a: Nat, b: Nat) {
    a + b = b + a
} by {
    induction(a)
}
`
	parser := NewParser("")
	items, _ := parser.ParseSource(source, "nat.ac")
	require.Len(t, items, 1)

	theorem, ok := items[0].(*Theorem)
	require.True(t, ok)
	assert.Equal(t, "add_comm", theorem.Name)
	assert.Equal(t, KindTheorem, theorem.Kind)
	assert.Contains(t, theorem.Head, "a + b = b + a")
	assert.Contains(t, theorem.Proof, "induction(a)")
	assert.Contains(t, theorem.Raw, "by {")
	assert.Equal(t, 1, theorem.Line)
	assert.Equal(t, "nat.ac", theorem.File)
}

func TestParser_TheoremWithoutProofIsAxiom(t *testing.T) {
	t.Parallel()

	source := `theorem foo(n: Nat) {
    n = n
}
`
	parser := NewParser("")
	items, _ := parser.ParseSource(source, "test.ac")
	require.Len(t, items, 1)

	theorem := items[0].(*Theorem)
	assert.Equal(t, KindAxiom, theorem.Kind)
	assert.Equal(t, "", theorem.Proof)
}

func TestParser_ProofOnNextLine(t *testing.T) {
	t.Parallel()

	source := `theorem foo(n: Nat) {
    n = n
}
// justification follows
by {
    refl
}
`
	parser := NewParser("")
	items, _ := parser.ParseSource(source, "test.ac")
	require.Len(t, items, 1)

	theorem := items[0].(*Theorem)
	assert.Equal(t, KindTheorem, theorem.Kind)
	assert.Contains(t, theorem.Proof, "refl")
}

func TestParser_AxiomKeywordSkipsProofSearch(t *testing.T) {
	t.Parallel()

	source := `axiom choice(s: Set) {
    exists(x: Elem) { s.contains(x) }
} by {
    not_a_proof
}
`
	parser := NewParser("")
	items, _ := parser.ParseSource(source, "test.ac")
	require.Len(t, items, 1)

	theorem := items[0].(*Theorem)
	assert.Equal(t, KindAxiom, theorem.Kind)
	assert.Equal(t, "", theorem.Proof)
	assert.NotContains(t, theorem.Raw, "not_a_proof")
}

func TestParser_TypeClass(t *testing.T) {
	t.Parallel()

	source := `typeclass A: AddGroup extends AddMonoid, Inverse {
    map_neg(f: A -> A) {
        define apply
    }

    add_neg(a: A) {
        a + a.neg = A.zero
    }
}
`
	parser := NewParser("")
	items, _ := parser.ParseSource(source, "group.ac")
	require.Len(t, items, 3)

	tc := findItem(t, items, "AddGroup").(*TypeClass)
	assert.Equal(t, "A", tc.TypeParam)
	assert.Equal(t, []string{"AddMonoid", "Inverse"}, tc.Extends)
	require.Len(t, tc.Members, 2)

	method := findItem(t, items, "AddGroup.map_neg")
	assert.Equal(t, KindTypeClassMethod, method.Meta().Kind)

	axiom := findItem(t, items, "AddGroup.add_neg")
	assert.Equal(t, KindTypeClassAxiom, axiom.Meta().Kind)
	theorem := axiom.(*Theorem)
	assert.Equal(t, "", theorem.Proof)
}

func TestParser_TypeClassDefaultTypeParam(t *testing.T) {
	t.Parallel()

	source := `typeclass Monoid {
    mul(self, other: Self) -> Self
}
`
	parser := NewParser("")
	items, _ := parser.ParseSource(source, "test.ac")
	tc := findItem(t, items, "Monoid").(*TypeClass)
	assert.Equal(t, "Self", tc.TypeParam)
}

func TestParser_StructureWithConstraint(t *testing.T) {
	t.Parallel()

	source := `structure Rational[T] {
    numerator: Int
    denominator: Int
} constraint {
    denominator != Int.0
}
`
	parser := NewParser("")
	items, _ := parser.ParseSource(source, "rat.ac")
	require.Len(t, items, 1)

	structure := items[0].(*Structure)
	assert.Equal(t, "Rational", structure.Name)
	assert.Equal(t, []string{"T"}, structure.TypeParams)
	require.Len(t, structure.Fields, 2)
	assert.Equal(t, StructureField{Name: "numerator", Type: "Int"}, structure.Fields[0])
	assert.Contains(t, structure.Constraint, "denominator != Int.0")
	assert.Contains(t, structure.Source, "constraint")
}

func TestParser_Inductive(t *testing.T) {
	t.Parallel()

	source := `inductive List[T] {
    nil
    cons(head: T, tail: List[T])
}
`
	parser := NewParser("")
	items, _ := parser.ParseSource(source, "list.ac")
	require.Len(t, items, 1)

	inductive := items[0].(*Inductive)
	assert.Equal(t, "List", inductive.Name)
	require.Len(t, inductive.Constructors, 2)
	assert.Equal(t, "nil", inductive.Constructors[0].Name)
	assert.Equal(t, "cons", inductive.Constructors[1].Name)
	assert.Equal(t, "head: T, tail: List[T]", inductive.Constructors[1].Params)
}

func TestParser_Define(t *testing.T) {
	t.Parallel()

	source := `define double(n: Nat) -> Nat {
    n + n
}
`
	parser := NewParser("")
	items, _ := parser.ParseSource(source, "test.ac")
	require.Len(t, items, 1)

	defn := items[0].(*Definition)
	assert.Equal(t, "double", defn.Name)
	assert.Equal(t, KindDefine, defn.Kind)
	assert.Equal(t, "define double(n: Nat) -> Nat", defn.Signature)
	assert.Equal(t, "Nat", defn.ReturnType)
	assert.Contains(t, defn.Body, "n + n")
}

func TestParser_AttributesExpansion(t *testing.T) {
	t.Parallel()

	source := `attributes Complex {
    let zero: Complex = Complex.new(Real.0, Real.0)

    define add(self, other: Complex) -> Complex {
        Complex.new(self.re + other.re, self.im + other.im)
    }
}
`
	parser := NewParser("")
	items, _ := parser.ParseSource(source, "complex.ac")
	require.Len(t, items, 2)

	// The attributes block itself must not appear in the output.
	for _, item := range items {
		assert.NotEqual(t, "Complex_attributes", item.Meta().Name)
	}

	constant := findItem(t, items, "Complex.zero")
	assert.Equal(t, KindAttributesConstant, constant.Meta().Kind)

	method := findItem(t, items, "Complex.add")
	assert.Equal(t, KindAttributesMethod, method.Meta().Kind)
	assert.Equal(t, "complex.ac", method.Meta().File)
	assert.Equal(t, 1, method.Meta().Line)
}

func TestParser_InstanceExpansion(t *testing.T) {
	t.Parallel()

	source := `instance Int: AddGroup {
    let neg: Int = Int.negate
}
`
	parser := NewParser("")
	items, _ := parser.ParseSource(source, "int.ac")
	require.Len(t, items, 2)

	instance := findItem(t, items, "Int_AddGroup_instance").(*Instance)
	assert.Equal(t, "Int", instance.TypeName)
	assert.Equal(t, "AddGroup", instance.TypeClassName)

	member := findItem(t, items, "Int.neg")
	assert.Equal(t, KindInstanceMember, member.Meta().Kind)
}

func TestParser_BodilessInstance(t *testing.T) {
	t.Parallel()

	source := "instance Nat: Semigroup\n"
	parser := NewParser("")
	items, _ := parser.ParseSource(source, "nat.ac")
	require.Len(t, items, 1)

	instance := items[0].(*Instance)
	assert.Equal(t, "Nat_Semigroup_instance", instance.Name)
	assert.Empty(t, instance.Members)
}

func TestParser_Imports(t *testing.T) {
	t.Parallel()

	source := `from nat import Nat, succ
import util
`
	parser := NewParser("")
	_, imports := parser.ParseSource(source, "test.ac")
	require.Len(t, imports, 2)

	assert.Equal(t, "nat", imports[0].Module)
	assert.Equal(t, []string{"Nat", "succ"}, imports[0].Items)
	assert.Equal(t, "", imports[1].Module)
	assert.Equal(t, []string{"util"}, imports[1].Items)
}

func TestParser_MalformedConstructsSkipped(t *testing.T) {
	t.Parallel()

	// First theorem has no opening brace; second never closes; the
	// final define must still parse.
	source := `theorem broken_no_brace(n: Nat)
theorem broken_unclosed {
    forall(n: Nat) {
}
define ok(n: Nat) -> Nat {
    n
}
`
	parser := NewParser("")
	items, _ := parser.ParseSource(source, "test.ac")
	require.Len(t, items, 1)
	assert.Equal(t, "ok", items[0].Meta().Name)
}

func TestParser_Deterministic(t *testing.T) {
	t.Parallel()

	source := `define f(n: Nat) -> Nat { n }
theorem t(n: Nat) { f(n) = n } by { refl }
`
	parser1 := NewParser("")
	parser2 := NewParser("")
	items1, _ := parser1.ParseSource(source, "test.ac")
	items2, _ := parser2.ParseSource(source, "test.ac")

	require.Equal(t, len(items1), len(items2))
	for i := range items1 {
		assert.Equal(t, items1[i].Meta().Name, items2[i].Meta().Name)
		assert.Equal(t, items1[i].Meta().UUID, items2[i].Meta().UUID)
		assert.Equal(t, items1[i].Meta().Source, items2[i].Meta().Source)
	}
}

func TestItemUUID_Stability(t *testing.T) {
	t.Parallel()

	id := ItemUUID("add_comm", "src/nat.ac")
	assert.Len(t, id, 16)
	assert.Equal(t, id, ItemUUID("add_comm", "src/nat.ac"))
	assert.NotEqual(t, id, ItemUUID("add_comm", "src/int.ac"))
	assert.NotEqual(t, id, ItemUUID("mul_comm", "src/nat.ac"))
}

func TestParser_ParseFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nat.ac")
	err := os.WriteFile(path, []byte("define id(n: Nat) -> Nat { n }\n"), 0644)
	require.NoError(t, err)

	parser := NewParser(dir)
	items, _, err := parser.ParseFile(path)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "id", items[0].Meta().Name)
	assert.Equal(t, "nat", parser.ModuleName(path))
}

func TestParser_ModuleName(t *testing.T) {
	t.Parallel()

	parser := NewParser("/lib/src")
	assert.Equal(t, "algebra.group", parser.ModuleName("/lib/src/algebra/group.ac"))

	bare := NewParser("")
	assert.Equal(t, "group", bare.ModuleName("/lib/src/algebra/group.ac"))
}

func TestExtractIdentifiers(t *testing.T) {
	t.Parallel()

	source := "Complex.add(a, b) + Real.gt(x) where AddGroup holds, not Bool"
	identifiers := ExtractIdentifiers(source)

	assert.True(t, identifiers["Complex.add"])
	assert.True(t, identifiers["Real.gt"])
	assert.True(t, identifiers["AddGroup"])
	assert.True(t, identifiers["Complex"])
	assert.False(t, identifiers["Bool"])
}

func TestParser_LookupIndex(t *testing.T) {
	t.Parallel()

	source := "define f(n: Nat) -> Nat { n }\n"
	parser := NewParser("")
	items, _ := parser.ParseSource(source, "test.ac")
	require.Len(t, items, 1)

	item, ok := parser.Lookup("f")
	require.True(t, ok)
	assert.Same(t, items[0], item)
}

func TestDefinedIdentifiers(t *testing.T) {
	t.Parallel()

	source := `typeclass M: Monoid {
    mul_assoc(a: M, b: M, c: M) {
        (a * b) * c = a * (b * c)
    }
}
structure Point {
    x: Real
    y: Real
}
`
	parser := NewParser("")
	items, _ := parser.ParseSource(source, "test.ac")

	index := BuildIdentifierIndex(items)
	assert.Contains(t, index, "Monoid")
	assert.Contains(t, index, "Monoid.mul_assoc")
	assert.Contains(t, index, "Point")
	assert.Contains(t, index, "Point.x")
	assert.Contains(t, index, "Point.y")
}
