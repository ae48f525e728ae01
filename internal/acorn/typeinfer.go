package acorn

import (
	"regexp"
	"strings"
)

// binaryOperators maps operator tokens to their canonical method names.
// Resolution uses the declared type of the left operand only.
var binaryOperators = map[string]string{
	">":  "gt",
	"<":  "lt",
	">=": "gte",
	"<=": "lte",
	"+":  "add",
	"-":  "sub",
	"*":  "mul",
	"/":  "div",
	"%":  "mod",
}

var unaryOperators = map[string]string{
	"-": "neg",
}

// callKeywords never resolve as free function calls.
var callKeywords = map[string]bool{
	"if": true, "while": true, "for": true, "match": true,
	"forall": true, "exists": true, "let": true, "satisfy": true,
}

// typeKeywords are capitalized tokens excluded from type-reference
// detection.
var typeKeywords = map[string]bool{
	"If": true, "Then": true, "Else": true, "Match": true, "Case": true,
	"True": true, "False": true,
}

var (
	annotationPattern = regexp.MustCompile(`([a-z_][a-z0-9_]*)\s*:\s*([A-Z][A-Za-z0-9_<>\[\],\s]*?)\s*[,)\]]`)
	quantifierPattern = regexp.MustCompile(`(?:forall|exists)\s*\(\s*([^)]+)\s*\)`)
	qualifiedMember   = regexp.MustCompile(`\b([A-Z][A-Za-z0-9_]*)\.([a-z_][a-z0-9_]*)\b`)
	standaloneType    = regexp.MustCompile(`\b([A-Z][A-Za-z0-9_]+)\b`)
	binaryOpPattern   = regexp.MustCompile(`([a-z_][a-z0-9_]*)\s*(>=|<=|[+\-*/%><])\s*([a-z_][a-z0-9_]*)`)
	methodCallPattern = regexp.MustCompile(`([a-z_][a-z0-9_]*)\.([a-z_][a-z0-9_]*)\s*\(`)
	propertyPattern   = regexp.MustCompile(`([a-z_][a-z0-9_]*)\.([a-z_][a-z0-9_]*)`)
	freeCallPattern   = regexp.MustCompile(`([a-z_][a-z0-9_]*)\s*\(`)
	whitespacePattern = regexp.MustCompile(`\s+`)

	theoremSigPattern = regexp.MustCompile(`theorem\s+[a-z_][a-z0-9_]*(?:\[[^\]]+\])?\s*\([^)]*\)`)
)

// TypeContext tracks declared types for variables in scope.
type TypeContext struct {
	variables map[string]string
}

// NewTypeContext creates an empty context.
func NewTypeContext() *TypeContext {
	return &TypeContext{variables: make(map[string]string)}
}

// AddVariable records a variable's declared type.
func (c *TypeContext) AddVariable(name, typeName string) {
	c.variables[name] = typeName
}

// TypeOf returns the declared type of a variable, if known.
func (c *TypeContext) TypeOf(name string) (string, bool) {
	t, ok := c.variables[name]
	return t, ok
}

// ExtractTypeAnnotations pulls name: Type pairs out of a signature.
// Handles both parameter lists and bracketed type parameters.
func ExtractTypeAnnotations(text string) map[string]string {
	annotations := make(map[string]string)
	for _, match := range annotationPattern.FindAllStringSubmatch(text, -1) {
		typeName := whitespacePattern.ReplaceAllString(strings.TrimSpace(match[2]), "")
		annotations[match[1]] = typeName
	}
	return annotations
}

// ExtractQuantifiedVariables pulls name: Type pairs out of forall/exists
// binder lists.
func ExtractQuantifiedVariables(text string) map[string]string {
	annotations := make(map[string]string)
	for _, match := range quantifierPattern.FindAllStringSubmatch(text, -1) {
		for _, decl := range strings.Split(match[1], ",") {
			name, typeName, ok := strings.Cut(decl, ":")
			if !ok || strings.Contains(typeName, ":") {
				continue
			}
			annotations[strings.TrimSpace(name)] = strings.TrimSpace(typeName)
		}
	}
	return annotations
}

// ResolveOperator maps an operator applied to a typed operand to its
// qualified method name, e.g. "+" on a Nat resolves to "Nat.add".
func ResolveOperator(operator, leftType string, unary bool) (string, bool) {
	table := binaryOperators
	if unary {
		table = unaryOperators
	}
	method, ok := table[operator]
	if !ok || leftType == "" {
		return "", false
	}
	return leftType + "." + method, true
}

// InferLiteralType infers the type of a literal token. Unqualified
// numeric literals are ambiguous and infer nothing.
func InferLiteralType(literal string) (string, bool) {
	if literal == "true" || literal == "false" {
		return "Bool", true
	}
	if idx := strings.Index(literal, "."); idx > 0 && literal[0] >= 'A' && literal[0] <= 'Z' {
		return literal[:idx], true
	}
	return "", false
}

// ExtractDependencies resolves the qualified names a span of Acorn code
// depends on, using declared-type information from the signature and any
// forall/exists binders in the text. Unresolvable references are omitted
// rather than reported as errors.
func ExtractDependencies(text, signature string) map[string]bool {
	deps := make(map[string]bool)
	ctx := NewTypeContext()

	for name, typeName := range ExtractTypeAnnotations(signature) {
		ctx.AddVariable(name, typeName)
		deps[typeName] = true
	}
	for name, typeName := range ExtractQuantifiedVariables(text) {
		ctx.AddVariable(name, typeName)
		deps[typeName] = true
	}

	// Explicit Type.member references.
	for _, match := range qualifiedMember.FindAllStringSubmatch(text, -1) {
		deps[match[1]] = true
		deps[match[1]+"."+match[2]] = true
	}

	// Standalone capitalized type names.
	for _, match := range standaloneType.FindAllStringSubmatch(text, -1) {
		if !typeKeywords[match[1]] {
			deps[match[1]] = true
		}
	}

	// Binary operators where the left operand has a known type.
	for _, match := range binaryOpPattern.FindAllStringSubmatch(text, -1) {
		if leftType, ok := ctx.TypeOf(match[1]); ok {
			if qualified, ok := ResolveOperator(match[2], leftType, false); ok {
				deps[qualified] = true
				deps[leftType] = true
			}
		}
	}

	// Method calls on typed variables.
	for _, match := range methodCallPattern.FindAllStringSubmatch(text, -1) {
		if varType, ok := ctx.TypeOf(match[1]); ok {
			deps[varType] = true
			deps[varType+"."+match[2]] = true
		}
	}

	// Property access on typed variables (no opening parenthesis).
	for _, loc := range propertyPattern.FindAllStringSubmatchIndex(text, -1) {
		if followedByParen(text, loc[1]) {
			continue
		}
		varName := text[loc[2]:loc[3]]
		propName := text[loc[4]:loc[5]]
		if varType, ok := ctx.TypeOf(varName); ok {
			deps[varType] = true
			deps[varType+"."+propName] = true
		}
	}

	// Free function calls: lowercase identifier followed by '(' that is
	// neither a method call nor a known variable. Single-letter tokens
	// are presumed to be local variables, not functions.
	for _, loc := range freeCallPattern.FindAllStringSubmatchIndex(text, -1) {
		if loc[2] > 0 {
			prev := text[loc[2]-1]
			if prev == '.' || isWordByte(prev) {
				continue
			}
		}
		name := text[loc[2]:loc[3]]
		if callKeywords[name] {
			continue
		}
		if _, ok := ctx.TypeOf(name); ok {
			continue
		}
		if len(name) > 1 {
			deps[name] = true
		}
	}

	return deps
}

// TheoremSignature extracts the parameter-list signature from a theorem
// head, falling back to the whole head when no parameter list exists.
func TheoremSignature(head string) string {
	if sig := theoremSigPattern.FindString(head); sig != "" {
		return sig
	}
	return head
}

// DefinitionSignature extracts the signature of a define statement: the
// text before the opening body brace.
func DefinitionSignature(source string) string {
	if idx := strings.Index(source, "{"); idx >= 0 {
		return strings.TrimSpace(source[:idx])
	}
	return source
}

func followedByParen(text string, pos int) bool {
	for pos < len(text) {
		switch text[pos] {
		case ' ', '\t':
			pos++
		case '(':
			return true
		default:
			return false
		}
	}
	return false
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
