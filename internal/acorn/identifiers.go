package acorn

// DefinedIdentifiers returns every qualified name an item makes
// available: the item's own name, typeclass member names, and structure
// field accessors.
func DefinedIdentifiers(item Item) []string {
	defined := []string{item.Meta().Name}

	switch it := item.(type) {
	case *TypeClass:
		for _, member := range it.Members {
			defined = append(defined, it.MemberQualifiedName(member.Name))
		}
	case *Structure:
		for _, field := range it.Fields {
			defined = append(defined, it.Name+"."+field.Name)
		}
	case *AttributesBlock:
		for _, member := range it.Members {
			defined = append(defined, member.Name)
		}
	case *Instance:
		for _, member := range it.Members {
			defined = append(defined, member.Name)
		}
	}

	return defined
}

// BuildIdentifierIndex maps every defined identifier to its defining
// item. The index is built once per parse run and read-only afterward.
func BuildIdentifierIndex(items []Item) map[string]Item {
	index := make(map[string]Item)
	for _, item := range items {
		for _, ident := range DefinedIdentifiers(item) {
			index[ident] = item
		}
	}
	return index
}
