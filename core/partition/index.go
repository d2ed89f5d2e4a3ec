package partition

// Index finds partitions by their values, ignoring location.
//
// Each key level except the last is a nested map; the last level maps the final
// value to the partition. An Index is immutable once built.
type Index struct {
	root *indexNode
}

type indexNode struct {
	children map[string]*indexNode
	leaves   map[string]Partition
}

// NewIndex builds an index over partitions. Duplicates are removed first; when two
// partitions share values, the one with the alphabetically earliest location wins.
func NewIndex(ps []Partition) *Index {
	idx := &Index{root: &indexNode{}}
	for _, p := range NewSet(ps...).Sorted() {
		idx.insert(p)
	}
	return idx
}

func (idx *Index) insert(p Partition) {
	n := len(p.Values)
	if n == 0 {
		return
	}

	node := idx.root
	for _, v := range p.Values[:n-1] {
		if node.children == nil {
			node.children = make(map[string]*indexNode)
		}
		child, ok := node.children[v]
		if !ok {
			child = &indexNode{}
			node.children[v] = child
		}
		node = child
	}
	if node.leaves == nil {
		node.leaves = make(map[string]Partition)
	}
	node.leaves[p.Values[n-1]] = p
}

// Get returns the indexed partition whose values equal p's values.
func (idx *Index) Get(p Partition) (Partition, bool) {
	n := len(p.Values)
	if n == 0 {
		return Partition{}, false
	}

	node := idx.root
	for _, v := range p.Values[:n-1] {
		child, ok := node.children[v]
		if !ok {
			return Partition{}, false
		}
		node = child
	}
	found, ok := node.leaves[p.Values[n-1]]
	return found, ok
}
