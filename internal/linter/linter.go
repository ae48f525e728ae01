// Package linter implements a lightweight structural and naming checker
// for Acorn source. It is not a full parser; it catches common authoring
// mistakes (unbalanced brackets, missing type annotations, casing) before
// text is handed to the item parser.
package linter

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
)

//go:embed syntax.md
var syntaxReference string

// SyntaxReference returns the embedded Acorn syntax reference text.
func SyntaxReference() string {
	return syntaxReference
}

// Diagnostic is a single finding, anchored to a 1-based source line.
type Diagnostic struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Report is the outcome of a syntax check. Warnings never affect validity.
type Report struct {
	Valid    bool         `json:"is_valid"`
	Errors   []Diagnostic `json:"errors"`
	Warnings []Diagnostic `json:"warnings"`
}

var (
	importLine   = regexp.MustCompile(`^\s*import\s+([A-Za-z0-9_]+)`)
	fromLine     = regexp.MustCompile(`^\s*from\s+([A-Za-z0-9_]+)\s+import\b`)
	numeralsLine = regexp.MustCompile(`^\s*numerals\s+([A-Za-z0-9_]+)`)
	instanceLine = regexp.MustCompile(`^\s*instance\s+([A-Za-z0-9_]+)\s*:\s*([A-Za-z0-9_]+)`)
	defineLine   = regexp.MustCompile(`^\s*define\s+([A-Za-z_][A-Za-z0-9_]*)`)
	letLine      = regexp.MustCompile(`^\s*let\s+`)
	theoremLine  = regexp.MustCompile(`^\s*theorem\s+[A-Za-z0-9_]*\s*\(([^)]*)\)`)
	paramsGroup  = regexp.MustCompile(`\(([^)]*)\)`)
	returnGroup  = regexp.MustCompile(`\)\s*->\s*([A-Za-z0-9_\[\], ]+)`)

	lowerName = regexp.MustCompile(`^[a-z0-9_]+$`)
	upperInit = regexp.MustCompile(`^[A-Z]`)
	lowerInit = regexp.MustCompile(`^[a-z]`)
)

var typeKeywordLines = map[string]*regexp.Regexp{
	"inductive":  regexp.MustCompile(`^\s*inductive\s+([A-Za-z0-9_]+)`),
	"structure":  regexp.MustCompile(`^\s*structure\s+([A-Za-z0-9_]+)`),
	"typeclass":  regexp.MustCompile(`^\s*typeclass\s+([A-Za-z0-9_]+)`),
	"attributes": regexp.MustCompile(`^\s*attributes\s+([A-Za-z0-9_]+)`),
}

var binderPatterns = map[string]*regexp.Regexp{
	"forall": regexp.MustCompile(`\bforall\s*\(([^)]*)\)`),
	"exists": regexp.MustCompile(`\bexists\s*\(([^)]*)\)`),
}

// CheckSyntax validates Acorn source text and reports errors and warnings.
func CheckSyntax(source string) *Report {
	stripped, openComment := stripComments(source)
	lines := strings.Split(stripped, "\n")

	report := &Report{
		Errors:   []Diagnostic{},
		Warnings: []Diagnostic{},
	}

	if openComment {
		report.error(len(lines), "Unterminated /* */ comment.")
	}

	checkBrackets(lines, report)

	for i, line := range lines {
		lineno := i + 1

		if m := importLine.FindStringSubmatch(line); m != nil && !lowerName.MatchString(m[1]) {
			report.error(lineno, "Module names must be lowercase alphanumeric with underscores.")
		}
		if m := fromLine.FindStringSubmatch(line); m != nil && !lowerName.MatchString(m[1]) {
			report.error(lineno, "Module names must be lowercase alphanumeric with underscores.")
		}

		if m := numeralsLine.FindStringSubmatch(line); m != nil && !upperInit.MatchString(m[1]) {
			report.error(lineno, "numerals target type should start with an uppercase letter (e.g., Nat, Int).")
		}

		for keyword, pattern := range typeKeywordLines {
			if m := pattern.FindStringSubmatch(line); m != nil && !upperInit.MatchString(m[1]) {
				report.error(lineno, fmt.Sprintf("%s names should start with an uppercase letter.", keyword))
			}
		}

		if m := instanceLine.FindStringSubmatch(line); m != nil {
			if !upperInit.MatchString(m[1]) {
				report.error(lineno, "Instance type should start with an uppercase letter.")
			}
			if !upperInit.MatchString(m[2]) {
				report.error(lineno, "Typeclass name should start with an uppercase letter.")
			}
		}

		if m := defineLine.FindStringSubmatch(line); m != nil {
			checkDefine(line, m[1], lineno, report)
		}

		if letLine.MatchString(line) {
			if eq := strings.Index(line, "="); eq >= 0 && !strings.Contains(line[:eq], ":") {
				report.error(lineno, "Let bindings require an explicit type annotation before '='.")
			}
		}

		for keyword, pattern := range binderPatterns {
			checkBinders(keyword, pattern, line, lineno, report)
		}

		if m := theoremLine.FindStringSubmatch(line); m != nil {
			checkParams(m[1], lineno, report)
		}

		if strings.ContainsAny(line, "$\\") {
			report.warn(lineno, "Possible LaTeX syntax detected; Acorn uses its own keywords and operators.")
		}
	}

	report.Valid = len(report.Errors) == 0
	return report
}

func checkDefine(line, name string, lineno int, report *Report) {
	if !lowerInit.MatchString(name) {
		report.warn(lineno, "Function names typically start lowercase (camelCase).")
	}

	if sig := paramsGroup.FindStringSubmatch(line); sig != nil {
		checkParams(sig[1], lineno, report)
	}

	ret := returnGroup.FindStringSubmatch(line)
	if ret == nil {
		report.error(lineno, "Define statements require an explicit return type with '-> ReturnType'.")
		return
	}
	retType := strings.TrimSpace(ret[1])
	if retType != "" && !upperInit.MatchString(retType) {
		report.error(lineno, fmt.Sprintf("Return type '%s' should start with an uppercase letter.", retType))
	}
}

// checkParams flags parameters without type annotations and parameter types
// that do not start uppercase. Generic types like List[T] are fine.
func checkParams(signature string, lineno int, report *Report) {
	for _, param := range strings.Split(signature, ",") {
		param = strings.TrimSpace(param)
		if param == "" {
			continue
		}
		_, typePart, annotated := strings.Cut(param, ":")
		if !annotated {
			report.error(lineno, fmt.Sprintf("Parameter '%s' is missing a type annotation.", param))
			continue
		}
		typePart = strings.TrimSpace(typePart)
		if typePart != "" && !upperInit.MatchString(typePart) {
			report.error(lineno, fmt.Sprintf("Type '%s' should start with an uppercase letter.", typePart))
		}
	}
}

func checkBinders(keyword string, pattern *regexp.Regexp, line string, lineno int, report *Report) {
	for _, m := range pattern.FindAllStringSubmatch(line, -1) {
		for _, binder := range strings.Split(m[1], ",") {
			binder = strings.TrimSpace(binder)
			if binder == "" {
				continue
			}
			if !strings.Contains(binder, ":") {
				report.error(lineno, fmt.Sprintf("%s binder '%s' is missing a type annotation (use name: Type).", keyword, binder))
			}
		}
	}
}

var bracketPairs = map[byte]byte{'(': ')', '{': '}', '[': ']'}

type openBracket struct {
	expected byte
	line     int
}

func checkBrackets(lines []string, report *Report) {
	var stack []openBracket

	for i, line := range lines {
		lineno := i + 1
		for j := 0; j < len(line); j++ {
			ch := line[j]
			if closer, ok := bracketPairs[ch]; ok {
				stack = append(stack, openBracket{expected: closer, line: lineno})
				continue
			}
			if ch != ')' && ch != '}' && ch != ']' {
				continue
			}
			if len(stack) == 0 {
				report.error(lineno, fmt.Sprintf("Unmatched closing '%c'.", ch))
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if ch != top.expected {
				report.error(lineno, fmt.Sprintf("Mismatched bracket: expected '%c' from line %d, found '%c'.", top.expected, top.line, ch))
			}
		}
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		report.error(top.line, fmt.Sprintf("Unclosed '%c'.", top.expected))
	}
}

// stripComments blanks out // and /* */ comments while preserving line
// structure so diagnostics keep their original line numbers. The second
// return reports an unterminated block comment.
func stripComments(text string) (string, bool) {
	var b strings.Builder
	b.Grow(len(text))

	inSingle := false
	inMulti := false

	for i := 0; i < len(text); i++ {
		ch := text[i]
		var next byte
		if i+1 < len(text) {
			next = text[i+1]
		}

		switch {
		case inSingle:
			if ch == '\n' {
				inSingle = false
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		case inMulti:
			if ch == '*' && next == '/' {
				inMulti = false
				b.WriteString("  ")
				i++
			} else if ch == '\n' {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		default:
			if ch == '/' && next == '/' {
				inSingle = true
				b.WriteString("  ")
				i++
			} else if ch == '/' && next == '*' {
				inMulti = true
				b.WriteString("  ")
				i++
			} else {
				b.WriteByte(ch)
			}
		}
	}

	return b.String(), inMulti
}

func (r *Report) error(line int, message string) {
	r.Errors = append(r.Errors, Diagnostic{Line: line, Message: message})
}

func (r *Report) warn(line int, message string) {
	r.Warnings = append(r.Warnings, Diagnostic{Line: line, Message: message})
}
