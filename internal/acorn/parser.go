package acorn

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Statement header patterns. Constructs whose header does not match are
// dropped and scanning resumes at the next line.
var (
	importPattern    = regexp.MustCompile(`^\s*(?:from\s+([A-Za-z_][A-Za-z0-9_/.]*)\s+)?import\s+([A-Za-z_][A-Za-z0-9_,\s]*)`)
	theoremPattern   = regexp.MustCompile(`^(theorem|axiom)\s+([A-Za-z_][A-Za-z0-9_]*)`)
	typeclassPattern = regexp.MustCompile(`^\s*typeclass\s+(?:([A-Z]):\s+)?([A-Z][A-Za-z0-9_]*)\s*(?:extends\s+([A-Za-z0-9_,\s]+?))?\s*\{`)
	structPattern    = regexp.MustCompile(`^\s*structure\s+([A-Z][A-Za-z0-9_]*)(?:\[([^\]]+)\])?\s*\{`)
	inductivePattern = regexp.MustCompile(`^\s*inductive\s+([A-Z][A-Za-z0-9_]*)(?:\[([^\]]+)\])?\s*\{`)
	definePattern    = regexp.MustCompile(`^\s*define\s+([a-z_][a-z0-9_]*)`)
	attrPattern      = regexp.MustCompile(`^\s*attributes\s+(?:([A-Z]):\s+)?([A-Z][A-Za-z0-9_<>\[\],\s]*?)\s*\{`)
	instancePattern  = regexp.MustCompile(`^\s*instance\s+([A-Z][A-Za-z0-9_]*):\s+([A-Z][A-Za-z0-9_]*)`)
	byPattern        = regexp.MustCompile(`by\s*\{`)
	returnPattern    = regexp.MustCompile(`->\s*([A-Z][A-Za-z0-9_\[\],\s]*)$`)

	memberPattern     = regexp.MustCompile(`^([a-z_][a-z0-9_]*)\s*(?:\(([^)]*)\))?\s*[{:]`)
	letPattern        = regexp.MustCompile(`^let\s+([A-Za-z0-9_]+)\s*:`)
	fieldPattern      = regexp.MustCompile(`^([a-z_][A-Za-z0-9_]*)\s*:\s*([A-Z][A-Za-z0-9_<>\[\],\s]*)$`)
	memberSigPattern  = regexp.MustCompile(`define\s+[^{]+`)
	constructorLine   = regexp.MustCompile(`^([a-z_][A-Za-z0-9_]*)(?:\(([^)]*)\))?$`)
	defineLinePattern = regexp.MustCompile(`^define\s+([a-z_][a-z0-9_]*)`)
)

// Identifier extraction patterns (see ExtractIdentifiers).
var (
	qualifiedIdentPattern = regexp.MustCompile(`\b(?:[a-z_][a-z0-9_]*\.)*[A-Z][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)+\b`)
	typeIdentPattern      = regexp.MustCompile(`\b[A-Z][A-Za-z0-9_]*\b`)
	memberIdentPattern    = regexp.MustCompile(`\b[A-Z][A-Za-z0-9_]*\.[a-z_][A-Za-z0-9_]*\b`)
)

// Parser extracts items from Acorn source files. A parser instance keeps a
// transient name-to-item index for cross-item lookups within one run; it is
// never shared between concurrent parses.
type Parser struct {
	sourceRoot string
	index      map[string]Item
}

// NewParser creates a parser. sourceRoot, when non-empty, is used to
// compute dotted module names from relative file paths.
func NewParser(sourceRoot string) *Parser {
	return &Parser{
		sourceRoot: sourceRoot,
		index:      make(map[string]Item),
	}
}

// Lookup returns the most recently parsed item with the given name.
func (p *Parser) Lookup(name string) (Item, bool) {
	item, ok := p.index[name]
	return item, ok
}

// ItemUUID derives the stable 16-hex-char fingerprint of (file, name).
// Re-parsing identical input yields identical ids.
func ItemUUID(name, filePath string) string {
	sum := sha256.Sum256([]byte(filePath + "::" + name))
	return hex.EncodeToString(sum[:])[:16]
}

// ParseFile reads and parses a single Acorn source file.
func (p *Parser) ParseFile(path string) ([]Item, []ImportStatement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	items, imports := p.ParseSource(string(data), path)
	return items, imports, nil
}

// ParseSource parses in-memory Acorn source. Malformed constructs are
// dropped silently and scanning continues with the next line.
func (p *Parser) ParseSource(source, path string) ([]Item, []ImportStatement) {
	lines := strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")

	var items []Item
	var imports []ImportStatement

	i := 0
	for i < len(lines) {
		stripped := strings.TrimLeft(lines[i], " \t")

		switch {
		case stripped == "" || strings.HasPrefix(stripped, "//"):
			i++

		case strings.HasPrefix(stripped, "from ") || strings.HasPrefix(stripped, "import "):
			if imp, ok := parseImport(lines[i]); ok {
				imports = append(imports, imp)
			}
			i++

		case strings.HasPrefix(stripped, "instance "):
			item, end := p.parseInstance(lines, i, path)
			if item != nil {
				items = append(items, item)
				for _, member := range item.Members {
					items = append(items, member)
				}
			}
			i = end + 1

		case strings.HasPrefix(stripped, "theorem ") || strings.HasPrefix(stripped, "axiom "):
			item, end := p.parseTheorem(lines, i, path)
			if item != nil {
				items = append(items, item)
			}
			i = end + 1

		case strings.HasPrefix(stripped, "typeclass "):
			item, end := p.parseTypeClass(lines, i, path)
			if item != nil {
				items = append(items, item)
				items = append(items, expandTypeClassMembers(item)...)
			}
			i = end + 1

		case strings.HasPrefix(stripped, "structure "):
			item, end := p.parseStructure(lines, i, path)
			if item != nil {
				items = append(items, item)
			}
			i = end + 1

		case strings.HasPrefix(stripped, "inductive "):
			item, end := p.parseInductive(lines, i, path)
			if item != nil {
				items = append(items, item)
			}
			i = end + 1

		case strings.HasPrefix(stripped, "define "):
			item, end := p.parseDefinition(lines, i, path)
			if item != nil {
				items = append(items, item)
			}
			i = end + 1

		case strings.HasPrefix(stripped, "attributes "):
			item, end := p.parseAttributes(lines, i, path)
			if item != nil {
				// The block itself is discarded; only expanded members
				// are emitted.
				for _, member := range item.Members {
					member.File = item.File
					member.Line = item.Line
					items = append(items, member)
				}
			}
			i = end + 1

		default:
			i++
		}
	}

	for _, item := range items {
		p.enrich(item, path)
	}

	return items, imports
}

// ModuleName computes the dotted module name for a file path relative to
// the parser's source root.
func (p *Parser) ModuleName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if p.sourceRoot == "" {
		return base
	}
	rel, err := filepath.Rel(p.sourceRoot, path)
	if err != nil {
		return base
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return strings.ReplaceAll(filepath.ToSlash(rel), "/", ".")
}

// ExtractIdentifiers collects the raw identifier tokens referenced in a
// source span: qualified names with optional module prefixes, capitalized
// type names, and Type.member references.
func ExtractIdentifiers(source string) map[string]bool {
	identifiers := make(map[string]bool)

	for _, match := range qualifiedIdentPattern.FindAllString(source, -1) {
		identifiers[match] = true
	}
	for _, match := range typeIdentPattern.FindAllString(source, -1) {
		if match == "Bool" || match == "True" || match == "False" {
			continue
		}
		identifiers[match] = true
	}
	for _, match := range memberIdentPattern.FindAllString(source, -1) {
		identifiers[match] = true
	}

	return identifiers
}

func (p *Parser) enrich(item Item, path string) {
	meta := item.Meta()
	if meta.UUID == "" {
		meta.UUID = ItemUUID(meta.Name, path)
	}
	meta.Identifiers = ExtractIdentifiers(meta.Source)
	p.index[meta.Name] = item
}

func parseImport(line string) (ImportStatement, bool) {
	match := importPattern.FindStringSubmatch(line)
	if match == nil {
		return ImportStatement{}, false
	}

	var names []string
	for _, part := range strings.Split(match[2], ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}

	return ImportStatement{
		Module: match[1],
		Items:  names,
		Source: strings.TrimSpace(line),
	}, true
}

func (p *Parser) parseTheorem(lines []string, start int, path string) (*Theorem, int) {
	line := lines[start]
	stripped := strings.TrimLeft(line, " \t")

	match := theoremPattern.FindStringSubmatch(stripped)
	if match == nil {
		return nil, start
	}
	keyword := match[1]
	name := match[2]
	isAxiom := keyword == "axiom"

	bracePos := strings.Index(line, "{")
	if bracePos < 0 {
		return nil, start
	}

	_, headEndLine, headEndCol, err := captureBlock(lines, start, bracePos+1)
	if err != nil {
		return nil, start
	}

	kwCol := strings.Index(line, keyword)
	headText := joinSpan(lines, start, kwCol, headEndLine, headEndCol)

	proof := ""
	rawEndLine := headEndLine
	rawEndCol := headEndCol

	if !isAxiom {
		byLine, byBrace := findProofMarker(lines, headEndLine, headEndCol)
		if byLine >= 0 {
			proofBody, proofEndLine, proofEndCol, err := captureBlock(lines, byLine, byBrace+1)
			if err == nil {
				proof = proofBody
				rawEndLine = proofEndLine
				rawEndCol = proofEndCol
			}
		}
	}

	rawText := joinSpan(lines, start, kwCol, rawEndLine, rawEndCol)

	kind := KindTheorem
	if proof == "" {
		// No reachable proof block: recorded as an axiom regardless of
		// the original keyword.
		kind = KindAxiom
	}

	return &Theorem{
		Metadata: Metadata{
			Name:   name,
			Kind:   kind,
			Source: rawText,
			File:   path,
			Line:   start + 1,
		},
		Head:  headText,
		Proof: proof,
		Raw:   rawText,
	}, rawEndLine
}

// findProofMarker locates a "by {" marker in the residual text after the
// head block, or failing that, at the start of the next non-blank,
// non-comment line. Returns (-1, -1) when no marker exists.
func findProofMarker(lines []string, headEndLine, headEndCol int) (line, braceCol int) {
	remainder := lines[headEndLine][headEndCol:]
	if loc := byPattern.FindStringIndex(remainder); loc != nil {
		return headEndLine, headEndCol + loc[0] + strings.Index(remainder[loc[0]:], "{")
	}

	for idx := headEndLine + 1; idx < len(lines); idx++ {
		stripped := strings.TrimSpace(lines[idx])
		if stripped == "" || strings.HasPrefix(stripped, "//") {
			continue
		}
		if loc := byPattern.FindStringIndex(stripped); loc != nil && loc[0] == 0 {
			return idx, strings.Index(lines[idx], "{")
		}
		break
	}
	return -1, -1
}

func (p *Parser) parseTypeClass(lines []string, start int, path string) (*TypeClass, int) {
	line := lines[start]

	match := typeclassPattern.FindStringSubmatch(line)
	if match == nil {
		return nil, start
	}

	typeParam := match[1]
	if typeParam == "" {
		typeParam = "Self"
	}
	name := match[2]

	var extends []string
	if match[3] != "" {
		for _, parent := range strings.Split(match[3], ",") {
			extends = append(extends, strings.TrimSpace(parent))
		}
	}

	bracePos := strings.Index(line, "{")
	body, endLine, _, err := captureBlock(lines, start, bracePos+1)
	if err != nil {
		return nil, start
	}

	return &TypeClass{
		Metadata: Metadata{
			Name:   name,
			Kind:   KindTypeClass,
			Source: joinLines(lines, start, endLine),
			File:   path,
			Line:   start + 1,
		},
		TypeParam: typeParam,
		Extends:   extends,
		Members:   parseTypeClassMembers(body),
	}, endLine
}

func parseTypeClassMembers(body string) []TypeClassMember {
	var members []TypeClassMember
	lines := strings.Split(body, "\n")

	i := 0
	for i < len(lines) {
		line := lines[i]
		stripped := strings.TrimSpace(line)

		if stripped == "" || strings.HasPrefix(stripped, "//") {
			i++
			continue
		}

		match := memberPattern.FindStringSubmatch(stripped)
		if match == nil {
			i++
			continue
		}

		memberLines, next := collectBraced(lines, i)
		i = next

		source := strings.Join(memberLines, "\n")

		// A member with an implementation is a method; a bare constraint
		// is an axiom of the typeclass.
		kind := KindTypeClassAxiom
		if strings.Contains(source, "define") || strings.Contains(match[2], "->") {
			kind = KindTypeClassMethod
		}

		members = append(members, TypeClassMember{
			Name:      match[1],
			Kind:      kind,
			Signature: fmt.Sprintf("%s(%s)", match[1], match[2]),
			Body:      strings.TrimSpace(source),
			Source:    source,
		})
	}

	return members
}

// collectBraced gathers the statement starting at line i, following brace
// balance across lines when the line opens a block. Returns the collected
// lines and the index of the next unconsumed line.
func collectBraced(lines []string, i int) ([]string, int) {
	collected := []string{lines[i]}
	if !strings.Contains(lines[i], "{") {
		return collected, i + 1
	}

	braceCount := strings.Count(lines[i], "{") - strings.Count(lines[i], "}")
	j := i + 1
	for j < len(lines) && braceCount > 0 {
		collected = append(collected, lines[j])
		braceCount += strings.Count(lines[j], "{") - strings.Count(lines[j], "}")
		j++
	}
	return collected, j
}

func expandTypeClassMembers(tc *TypeClass) []Item {
	var items []Item
	for _, member := range tc.Members {
		qualified := tc.MemberQualifiedName(member.Name)

		if member.Kind == KindTypeClassMethod {
			items = append(items, &Definition{
				Metadata: Metadata{
					Name:   qualified,
					Kind:   KindTypeClassMethod,
					Source: member.Source,
					File:   tc.File,
					Line:   tc.Line,
				},
				Signature: member.Signature,
				Body:      member.Body,
			})
			continue
		}

		items = append(items, &Theorem{
			Metadata: Metadata{
				Name:   qualified,
				Kind:   KindTypeClassAxiom,
				Source: member.Source,
				File:   tc.File,
				Line:   tc.Line,
			},
			Head: member.Signature,
			Raw:  member.Source,
		})
	}
	return items
}

func (p *Parser) parseStructure(lines []string, start int, path string) (*Structure, int) {
	line := lines[start]

	match := structPattern.FindStringSubmatch(line)
	if match == nil {
		return nil, start
	}

	name := match[1]
	typeParams := splitTrimmed(match[2])

	bracePos := strings.Index(line, "{")
	body, endLine, endCol, err := captureBlock(lines, start, bracePos+1)
	if err != nil {
		return nil, start
	}

	constraint := ""
	finalLine := endLine

	remainder := lines[endLine][endCol:]
	if strings.Contains(remainder, "constraint") && strings.Contains(remainder, "{") {
		constraintBrace := endCol + strings.Index(remainder, "{")
		constraintBody, constraintEnd, _, err := captureBlock(lines, endLine, constraintBrace+1)
		if err == nil {
			constraint = constraintBody
			finalLine = constraintEnd
		}
	}

	return &Structure{
		Metadata: Metadata{
			Name:   name,
			Kind:   KindStructure,
			Source: joinLines(lines, start, finalLine),
			File:   path,
			Line:   start + 1,
		},
		TypeParams: typeParams,
		Fields:     parseStructureFields(body),
		Constraint: constraint,
	}, finalLine
}

func parseStructureFields(body string) []StructureField {
	var fields []StructureField
	for _, line := range strings.Split(body, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" || strings.HasPrefix(stripped, "//") {
			continue
		}
		if match := fieldPattern.FindStringSubmatch(stripped); match != nil {
			fields = append(fields, StructureField{
				Name: match[1],
				Type: strings.TrimSpace(match[2]),
			})
		}
	}
	return fields
}

func (p *Parser) parseInductive(lines []string, start int, path string) (*Inductive, int) {
	line := lines[start]

	match := inductivePattern.FindStringSubmatch(line)
	if match == nil {
		return nil, start
	}

	name := match[1]
	typeParams := splitTrimmed(match[2])

	bracePos := strings.Index(line, "{")
	body, endLine, _, err := captureBlock(lines, start, bracePos+1)
	if err != nil {
		return nil, start
	}

	return &Inductive{
		Metadata: Metadata{
			Name:   name,
			Kind:   KindInductive,
			Source: joinLines(lines, start, endLine),
			File:   path,
			Line:   start + 1,
		},
		TypeParams:   typeParams,
		Constructors: parseConstructors(body),
	}, endLine
}

func parseConstructors(body string) []Constructor {
	var constructors []Constructor
	for _, line := range strings.Split(body, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" || strings.HasPrefix(stripped, "//") {
			continue
		}
		if match := constructorLine.FindStringSubmatch(stripped); match != nil {
			constructors = append(constructors, Constructor{
				Name:   match[1],
				Params: match[2],
			})
		}
	}
	return constructors
}

func (p *Parser) parseDefinition(lines []string, start int, path string) (*Definition, int) {
	line := lines[start]

	match := definePattern.FindStringSubmatch(line)
	if match == nil {
		return nil, start
	}
	name := match[1]

	bracePos := strings.Index(line, "{")
	if bracePos < 0 {
		return nil, start
	}

	body, endLine, _, err := captureBlock(lines, start, bracePos+1)
	if err != nil {
		return nil, start
	}

	signature := strings.TrimSpace(line[:bracePos])

	returnType := ""
	if ret := returnPattern.FindStringSubmatch(signature); ret != nil {
		returnType = strings.TrimSpace(ret[1])
	}

	return &Definition{
		Metadata: Metadata{
			Name:   name,
			Kind:   KindDefine,
			Source: joinLines(lines, start, endLine),
			File:   path,
			Line:   start + 1,
		},
		Signature:  signature,
		Body:       body,
		ReturnType: returnType,
	}, endLine
}

func (p *Parser) parseAttributes(lines []string, start int, path string) (*AttributesBlock, int) {
	line := lines[start]

	match := attrPattern.FindStringSubmatch(line)
	if match == nil {
		return nil, start
	}
	targetType := strings.TrimSpace(match[2])

	bracePos := strings.Index(line, "{")
	body, endLine, _, err := captureBlock(lines, start, bracePos+1)
	if err != nil {
		return nil, start
	}

	return &AttributesBlock{
		Metadata: Metadata{
			Name:   targetType + "_attributes",
			Kind:   KindAttributes,
			Source: joinLines(lines, start, endLine),
			File:   path,
			Line:   start + 1,
		},
		TargetType: targetType,
		Members:    parseAttributesMembers(body, targetType),
	}, endLine
}

func parseAttributesMembers(body, targetType string) []*Definition {
	var members []*Definition
	lines := strings.Split(body, "\n")

	i := 0
	for i < len(lines) {
		stripped := strings.TrimSpace(lines[i])

		if stripped == "" || strings.HasPrefix(stripped, "//") {
			i++
			continue
		}

		if match := letPattern.FindStringSubmatch(stripped); match != nil {
			memberLines, next := collectBraced(lines, i)
			i = next
			source := strings.Join(memberLines, "\n")

			members = append(members, &Definition{
				Metadata: Metadata{
					Name:   targetType + "." + match[1],
					Kind:   KindAttributesConstant,
					Source: source,
				},
				Signature: strings.TrimSpace(source),
				Body:      strings.TrimSpace(source),
			})
			continue
		}

		if match := defineLinePattern.FindStringSubmatch(stripped); match != nil {
			memberLines, next := collectBraced(lines, i)
			i = next
			source := strings.Join(memberLines, "\n")

			signature := "define " + match[1]
			if sig := memberSigPattern.FindString(source); sig != "" {
				signature = strings.TrimSpace(sig)
			}

			members = append(members, &Definition{
				Metadata: Metadata{
					Name:   targetType + "." + match[1],
					Kind:   KindAttributesMethod,
					Source: source,
				},
				Signature: signature,
				Body:      strings.TrimSpace(source),
			})
			continue
		}

		i++
	}

	return members
}

func (p *Parser) parseInstance(lines []string, start int, path string) (*Instance, int) {
	line := lines[start]

	match := instancePattern.FindStringSubmatch(line)
	if match == nil {
		return nil, start
	}
	typeName := match[1]
	typeClassName := match[2]
	name := typeName + "_" + typeClassName + "_instance"

	// A bodiless instance inherits everything from the typeclass.
	bracePos := strings.Index(line, "{")
	if bracePos < 0 {
		return &Instance{
			Metadata: Metadata{
				Name:   name,
				Kind:   KindInstance,
				Source: strings.TrimSpace(line),
				File:   path,
				Line:   start + 1,
			},
			TypeName:      typeName,
			TypeClassName: typeClassName,
		}, start
	}

	body, endLine, _, err := captureBlock(lines, start, bracePos+1)
	if err != nil {
		return nil, start
	}

	members := parseInstanceMembers(body, typeName)
	for _, member := range members {
		member.File = path
		member.Line = start + 1
	}

	return &Instance{
		Metadata: Metadata{
			Name:   name,
			Kind:   KindInstance,
			Source: joinLines(lines, start, endLine),
			File:   path,
			Line:   start + 1,
		},
		TypeName:      typeName,
		TypeClassName: typeClassName,
		Members:       members,
	}, endLine
}

func parseInstanceMembers(body, typeName string) []*Definition {
	var members []*Definition
	lines := strings.Split(body, "\n")

	i := 0
	for i < len(lines) {
		stripped := strings.TrimSpace(lines[i])

		if stripped == "" || strings.HasPrefix(stripped, "//") {
			i++
			continue
		}

		match := letPattern.FindStringSubmatch(stripped)
		if match == nil {
			i++
			continue
		}

		memberLines, next := collectBraced(lines, i)
		i = next
		source := strings.Join(memberLines, "\n")

		// Instance members bind to the concrete type, not the typeclass.
		members = append(members, &Definition{
			Metadata: Metadata{
				Name:   typeName + "." + match[1],
				Kind:   KindInstanceMember,
				Source: source,
			},
			Signature: strings.TrimSpace(source),
			Body:      strings.TrimSpace(source),
		})
	}

	return members
}

// joinSpan assembles the text from (startLine, startCol) through
// (endLine, endCol), trimmed.
func joinSpan(lines []string, startLine, startCol, endLine, endCol int) string {
	var parts []string
	for idx := startLine; idx <= endLine; idx++ {
		switch {
		case idx == startLine && idx == endLine:
			parts = append(parts, lines[idx][startCol:endCol])
		case idx == startLine:
			parts = append(parts, lines[idx][startCol:])
		case idx == endLine:
			parts = append(parts, lines[idx][:endCol])
		default:
			parts = append(parts, lines[idx])
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func joinLines(lines []string, start, end int) string {
	return strings.TrimSpace(strings.Join(lines[start:end+1], "\n"))
}

func splitTrimmed(s string) []string {
	if s == "" {
		return nil
	}
	var parts []string
	for _, part := range strings.Split(s, ",") {
		parts = append(parts, strings.TrimSpace(part))
	}
	return parts
}
