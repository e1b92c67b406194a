package vecdb

// Match reports whether embedding e satisfies filter f.
//
// An empty filter matches every embedding unconditionally. Otherwise e must carry
// metadata, and at least one clause in f must be fully satisfied by it: every
// (key, expected) pair in the clause must be present in e's metadata with an exactly
// equal value. An empty clause inside a non-empty filter is a vacuous conjunction —
// it matches every embedding that has metadata at all.
func Match(f Filter, e Embedding) bool {
	if len(f) == 0 {
		return true
	}
	if e.Metadata == nil {
		return false
	}
	for _, clause := range f {
		if clauseMatches(clause, e.Metadata) {
			return true
		}
	}
	return false
}

func clauseMatches(clause Clause, metadata map[string]string) bool {
	for key, expected := range clause {
		actual, ok := metadata[key]
		if !ok || actual != expected {
			return false
		}
	}
	return true
}
