package linter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan:
// - Well-formed source passes with no errors
// - Bracket balance: unmatched close, mismatched pair, unclosed open
// - Comment stripping hides brackets inside // and /* */ comments
// - Unterminated block comments are errors
// - Naming rules: module casing, type casing, define return types
// - Annotation rules: params, let bindings, forall/exists binders
// - LaTeX-looking input produces warnings, not errors
// - SyntaxReference returns the embedded document

func TestCheckSyntax_Valid(t *testing.T) {
	t.Parallel()

	report := CheckSyntax(`import nat

theorem add_comm(a: Nat, b: Nat) {
    a + b = b + a
} by {
    induction(a)
}

define double(n: Nat) -> Nat {
    n + n
}
`)
	assert.True(t, report.Valid)
	assert.Empty(t, report.Errors)
	assert.Empty(t, report.Warnings)
}

func TestCheckSyntax_UnmatchedClosing(t *testing.T) {
	t.Parallel()

	report := CheckSyntax("theorem t {\n}\n}")
	require.False(t, report.Valid)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 3, report.Errors[0].Line)
	assert.Contains(t, report.Errors[0].Message, "Unmatched closing '}'")
}

func TestCheckSyntax_MismatchedBracket(t *testing.T) {
	t.Parallel()

	report := CheckSyntax("let xs: List[Nat] = f(a]")
	require.False(t, report.Valid)

	var found bool
	for _, diag := range report.Errors {
		if strings.Contains(diag.Message, "Mismatched bracket: expected ')' from line 1, found ']'") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCheckSyntax_UnclosedBracket(t *testing.T) {
	t.Parallel()

	report := CheckSyntax("theorem t {\n    x = y\n")
	require.False(t, report.Valid)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 1, report.Errors[0].Line)
	assert.Contains(t, report.Errors[0].Message, "Unclosed '}'")
}

func TestCheckSyntax_CommentsHideBrackets(t *testing.T) {
	t.Parallel()

	report := CheckSyntax(`theorem t {
    // a stray } in a comment
    /* and { another
       one } here */
    x = y
}
`)
	assert.True(t, report.Valid)
	assert.Empty(t, report.Errors)
}

func TestCheckSyntax_UnterminatedBlockComment(t *testing.T) {
	t.Parallel()

	report := CheckSyntax("/* never closed\nx = y\n")
	require.False(t, report.Valid)
	assert.Contains(t, report.Errors[0].Message, "Unterminated /* */ comment")
}

func TestCheckSyntax_ModuleCasing(t *testing.T) {
	t.Parallel()

	report := CheckSyntax("import Nat\nfrom Real import sqrt\n")
	require.Len(t, report.Errors, 2)
	for _, diag := range report.Errors {
		assert.Contains(t, diag.Message, "Module names must be lowercase")
	}
}

func TestCheckSyntax_TypeCasing(t *testing.T) {
	t.Parallel()

	report := CheckSyntax(`structure point {
    x: Real
}
inductive nat {
    zero
}
numerals nat
instance int: addGroup {
}
`)
	require.False(t, report.Valid)

	messages := make([]string, len(report.Errors))
	for i, diag := range report.Errors {
		messages[i] = diag.Message
	}
	joined := strings.Join(messages, "\n")
	assert.Contains(t, joined, "structure names should start with an uppercase letter")
	assert.Contains(t, joined, "inductive names should start with an uppercase letter")
	assert.Contains(t, joined, "numerals target type should start with an uppercase letter")
	assert.Contains(t, joined, "Instance type should start with an uppercase letter")
	assert.Contains(t, joined, "Typeclass name should start with an uppercase letter")
}

func TestCheckSyntax_DefineRules(t *testing.T) {
	t.Parallel()

	report := CheckSyntax("define f(n) {\n    n\n}\n")
	require.False(t, report.Valid)

	joined := joinMessages(report.Errors)
	assert.Contains(t, joined, "Parameter 'n' is missing a type annotation")
	assert.Contains(t, joined, "Define statements require an explicit return type")

	report = CheckSyntax("define f(n: nat) -> nat {\n    n\n}\n")
	joined = joinMessages(report.Errors)
	assert.Contains(t, joined, "Type 'nat' should start with an uppercase letter")
	assert.Contains(t, joined, "Return type 'nat' should start with an uppercase letter")

	// Uppercase define names draw a warning, not an error.
	report = CheckSyntax("define Double(n: Nat) -> Nat {\n    n + n\n}\n")
	assert.True(t, report.Valid)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0].Message, "typically start lowercase")
}

func TestCheckSyntax_LetAnnotation(t *testing.T) {
	t.Parallel()

	report := CheckSyntax("let x = 5\n")
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0].Message, "Let bindings require an explicit type annotation")

	report = CheckSyntax("let x: Nat = 5\n")
	assert.True(t, report.Valid)
}

func TestCheckSyntax_BinderAnnotations(t *testing.T) {
	t.Parallel()

	report := CheckSyntax("theorem t { forall(x, y: Nat) { x = y } }\n")
	require.False(t, report.Valid)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0].Message, "forall binder 'x' is missing a type annotation")

	report = CheckSyntax("theorem t { exists(p: Nat) { p > 0 } }\n")
	assert.True(t, report.Valid)
}

func TestCheckSyntax_TheoremParams(t *testing.T) {
	t.Parallel()

	report := CheckSyntax("theorem add_comm(a, b: Nat) {\n    a + b = b + a\n}\n")
	require.False(t, report.Valid)
	assert.Contains(t, report.Errors[0].Message, "Parameter 'a' is missing a type annotation")
}

func TestCheckSyntax_LatexWarning(t *testing.T) {
	t.Parallel()

	report := CheckSyntax("theorem t { $\\forall x$ }\n")
	assert.True(t, report.Valid) // warnings only
	require.NotEmpty(t, report.Warnings)
	assert.Contains(t, report.Warnings[0].Message, "Possible LaTeX syntax")
}

func TestSyntaxReference(t *testing.T) {
	t.Parallel()

	ref := SyntaxReference()
	assert.Contains(t, ref, "# Acorn Syntax Reference")
	assert.Contains(t, ref, "define")
	assert.Contains(t, ref, "typeclass")
}

func joinMessages(diags []Diagnostic) string {
	var parts []string
	for _, d := range diags {
		parts = append(parts, d.Message)
	}
	return strings.Join(parts, "\n")
}
