package cleaner

import (
	"fmt"
	"slices"
	"strings"
)

// TableTree is a trie of tables keyed by path segment. Each node holds the
// tables located exactly at its path.
type TableTree struct {
	Bucket   string
	Path     string
	Tables   map[string]Table
	Children map[string]*TableTree
}

// NewTableTree creates an empty node.
func NewTableTree(bucket, path string) *TableTree {
	return &TableTree{
		Bucket:   bucket,
		Path:     path,
		Tables:   make(map[string]Table),
		Children: make(map[string]*TableTree),
	}
}

// AddTable inserts t below this node, creating intermediate nodes as needed.
// The tree is left untouched when t belongs to another bucket or does not
// live under this node's path.
func (n *TableTree) AddTable(t Table) error {
	if t.Bucket != n.Bucket {
		return fmt.Errorf("table %s is in bucket %q, tree is for %q", t.Name, t.Bucket, n.Bucket)
	}
	if !strings.HasPrefix(t.Path, n.Path) {
		return fmt.Errorf("table %s path %q is not under %q", t.Name, t.Path, n.Path)
	}

	node := n
	for _, seg := range strings.Split(strings.TrimPrefix(t.Path, n.Path), "/") {
		if seg == "" {
			continue
		}
		child, ok := node.Children[seg]
		if !ok {
			child = NewTableTree(n.Bucket, node.Path+seg+"/")
			node.Children[seg] = child
		}
		node = child
	}
	node.Tables[t.Name] = t
	return nil
}

// Nodes returns this node and all its descendants in pre-order, children
// visited by segment name.
func (n *TableTree) Nodes() []*TableTree {
	var out []*TableTree
	stack := []*TableTree{n}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, node)

		segs := make([]string, 0, len(node.Children))
		for seg := range node.Children {
			segs = append(segs, seg)
		}
		// Reverse order so the smallest segment is popped first.
		slices.Sort(segs)
		slices.Reverse(segs)
		for _, seg := range segs {
			stack = append(stack, node.Children[seg])
		}
	}
	return out
}

// Descendants returns the tables held strictly below this node.
func (n *TableTree) Descendants() []Table {
	var out []Table
	for _, node := range n.Nodes()[1:] {
		out = append(out, node.sortedTables()...)
	}
	return out
}

// Orphans returns the tables in this tree that sit below another table, or
// that duplicate another table's location under a suffixed name, sorted by name.
func (n *TableTree) Orphans() []Table {
	found := make(map[string]Table)
	for _, node := range n.Nodes() {
		if len(node.Tables) == 0 {
			continue
		}
		for _, t := range node.Descendants() {
			found[t.Name] = t
		}
		for _, t := range node.duplicates() {
			found[t.Name] = t
		}
	}
	return sortByName(found)
}

// duplicates applies the crawler rule for tables sharing one location: when a
// name is a prefix of another, the longer name is the generated duplicate.
func (n *TableTree) duplicates() []Table {
	if len(n.Tables) < 2 {
		return nil
	}
	var out []Table
	for _, a := range n.Tables {
		for _, b := range n.Tables {
			if a.Name != b.Name && strings.HasPrefix(b.Name, a.Name) {
				out = append(out, b)
			}
		}
	}
	return out
}

func (n *TableTree) sortedTables() []Table {
	out := make([]Table, 0, len(n.Tables))
	for _, t := range n.Tables {
		out = append(out, t)
	}
	slices.SortFunc(out, Table.Compare)
	return out
}

// BuildTrees groups tables by bucket into one tree per bucket.
func BuildTrees(tables []Table) (map[string]*TableTree, error) {
	trees := make(map[string]*TableTree)
	for _, t := range tables {
		tree, ok := trees[t.Bucket]
		if !ok {
			tree = NewTableTree(t.Bucket, "")
			trees[t.Bucket] = tree
		}
		if err := tree.AddTable(t); err != nil {
			return nil, err
		}
	}
	return trees, nil
}

// ChildTables returns the orphans of every tree, deduplicated and sorted by name.
func ChildTables(trees map[string]*TableTree) []Table {
	found := make(map[string]Table)
	for _, tree := range trees {
		for _, t := range tree.Orphans() {
			found[t.Name] = t
		}
	}
	return sortByName(found)
}

func sortByName(m map[string]Table) []Table {
	out := make([]Table, 0, len(m))
	for _, t := range m {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b Table) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}
