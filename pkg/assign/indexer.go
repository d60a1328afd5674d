package assign

import "fmt"

// identityIndex is a bidirectional mapping between string identifiers and
// dense integer indexes. Everywhere an Instance hands out an exam or room
// position, index i refers to ids[i]; missing identifiers surface at
// construction time instead of as runtime lookup misses.
type identityIndex struct {
	kind    string
	ids     []string
	indexes map[string]int
}

func newIdentityIndex(kind string, ids []string) (*identityIndex, error) {
	index := &identityIndex{
		kind:    kind,
		ids:     ids,
		indexes: make(map[string]int, len(ids)),
	}
	for i, id := range ids {
		if previous, ok := index.indexes[id]; ok {
			return nil, fmt.Errorf("duplicate %v id %q at positions %d and %d", kind, id, previous, i)
		}
		index.indexes[id] = i
	}
	return index, nil
}

// Index returns the dense index of an identifier.
func (index *identityIndex) Index(id string) (int, bool) {
	i, ok := index.indexes[id]
	return i, ok
}

// ID returns the identifier at a dense index.
func (index *identityIndex) ID(i int) string {
	return index.ids[i]
}

func (index *identityIndex) Len() int {
	return len(index.ids)
}
