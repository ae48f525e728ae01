package acorn

import "strings"

// Analyzer finalizes the dependency set of parsed items.
type Analyzer struct{}

// NewAnalyzer creates a dependency analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze extracts the qualified dependency names for an item, applying
// kind-specific policy: theorems resolve over head+proof with the head's
// parameter list as signature context, definitions over their own source
// and signature, and
// typeclasses union in their extends edges. Self-references never appear
// in the result.
func (a *Analyzer) Analyze(item Item) map[string]bool {
	switch it := item.(type) {
	case *Theorem:
		return a.analyzeTheorem(it)
	case *Definition:
		return a.analyzeDefinition(it)
	case *TypeClass:
		return a.analyzeTypeClass(it)
	default:
		return ExtractDependencies(item.Meta().Source, "")
	}
}

// Enrich runs Analyze over every item and stores the result in its
// metadata. Enrichment only adds to dependency sets, never mutates
// identifying fields.
func (a *Analyzer) Enrich(items []Item) {
	for _, item := range items {
		item.Meta().Dependencies = a.Analyze(item)
	}
}

func (a *Analyzer) analyzeTheorem(theorem *Theorem) map[string]bool {
	fullText := theorem.Head + "\n" + theorem.Proof
	// Only the theorem's own parameter list provides typed context;
	// annotations elsewhere in the head body are local to their scope.
	deps := ExtractDependencies(fullText, TheoremSignature(theorem.Head))
	stripSelf(deps, theorem.Name)
	return deps
}

func (a *Analyzer) analyzeDefinition(defn *Definition) map[string]bool {
	deps := ExtractDependencies(defn.Source, defn.Signature)
	stripSelf(deps, defn.Name)
	return deps
}

func (a *Analyzer) analyzeTypeClass(tc *TypeClass) map[string]bool {
	deps := ExtractDependencies(tc.Source, "")
	for _, parent := range tc.Extends {
		deps[parent] = true
	}
	stripSelf(deps, tc.Name)
	return deps
}

// stripSelf removes an item's own name, both qualified and its last dot
// component, from a dependency set.
func stripSelf(deps map[string]bool, name string) {
	delete(deps, name)
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		delete(deps, name[idx+1:])
	}
}
