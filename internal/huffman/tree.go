// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package huffman

import (
	"cmp"
	"slices"
)

type nodeKind uint8

const (
	leafNode nodeKind = iota
	internalNode
)

// node lives in Tree.nodes and refers to its relatives by index, -1 meaning none.
// Leaves carry a value, internal nodes carry exactly two children.
// While building, path holds only the one-bit suffix given by the parent.
type node struct {
	kind        nodeKind
	value       byte
	weight      int
	path        string
	parent      int
	left, right int
}

// A Tree is a Huffman tree held in an arena of nodes.
type Tree struct {
	nodes  []node
	root   int
	leaves []int // pre-order
	merges []Merge
}

// A Merge records one step of tree construction:
// the two lowest-weight nodes Left and Right were joined under Parent.
type Merge struct {
	Left, Right             int
	LeftWeight, RightWeight int
	Parent                  int
}

// Leaf is a symbol and its root-to-leaf path.
type Leaf struct {
	Value  byte
	Weight int
	Path   string
}

// Node is a read-only view of a tree node, handed to the traversal functions.
type Node struct {
	Index       int
	Leaf        bool
	Value       byte // leaves only
	Weight      int
	Path        string
	Parent      int
	Left, Right int // internal nodes only
}

// BuildTree repeatedly merges the two lowest-weight nodes until one root remains.
//
// Leaves enter the work list in ascending byte order and every merged node is
// appended to its end. The list is stable-sorted by weight before each merge,
// so equal weights are ordered by list position and the result is deterministic.
//
// A single symbol becomes a root leaf with the path "0",
// so that every codeword has at least one bit.
func BuildTree(w Weights) (*Tree, error) {
	if len(w) == 0 {
		return nil, ErrNoSymbols
	}

	t := &Tree{nodes: make([]node, 0, 2*len(w)-1)}
	work := make([]int, 0, len(w))
	for _, b := range w.Symbols() {
		work = append(work, t.add(node{kind: leafNode, value: b, weight: w[b]}))
	}

	for len(work) > 1 {
		slices.SortStableFunc(work, func(a, b int) int {
			return cmp.Compare(t.nodes[a].weight, t.nodes[b].weight)
		})
		l, r := work[0], work[1]
		t.nodes[l].path = "0"
		t.nodes[r].path = "1"
		p := t.add(node{
			kind:   internalNode,
			weight: t.nodes[l].weight + t.nodes[r].weight,
			left:   l,
			right:  r,
		})
		t.nodes[l].parent = p
		t.nodes[r].parent = p
		t.merges = append(t.merges, Merge{
			Left: l, Right: r,
			LeftWeight: t.nodes[l].weight, RightWeight: t.nodes[r].weight,
			Parent: p,
		})
		work = append(work[2:], p)
	}

	t.root = work[0]
	if t.nodes[t.root].kind == leafNode {
		t.nodes[t.root].path = "0"
	}
	t.composePaths()
	return t, nil
}

func (t *Tree) add(n node) int {
	if n.kind == leafNode {
		n.left, n.right = -1, -1
	}
	n.parent = -1
	t.nodes = append(t.nodes, n)
	return len(t.nodes) - 1
}

// composePaths turns the one-bit suffixes into full root-to-node paths.
// A parent is always finished before its children are popped.
func (t *Tree) composePaths() {
	t.preorder(func(n Node) {
		if n.Parent != -1 {
			t.nodes[n.Index].path = t.nodes[n.Parent].path + n.Path
		}
		if n.Leaf {
			t.leaves = append(t.leaves, n.Index)
		}
	})
}

func (t *Tree) Root() Node { return t.view(t.root) }

// Len is the total number of nodes, leaves included.
func (t *Tree) Len() int { return len(t.nodes) }

// Leaves lists every symbol in pre-order, that is, in ascending path order.
func (t *Tree) Leaves() []Leaf {
	ret := make([]Leaf, 0, len(t.leaves))
	for _, i := range t.leaves {
		n := &t.nodes[i]
		ret = append(ret, Leaf{Value: n.value, Weight: n.weight, Path: n.path})
	}
	return ret
}

// Merges lists the construction steps in order.
func (t *Tree) Merges() []Merge { return slices.Clone(t.merges) }

// depth is the length of the longest codeword.
func (t *Tree) depth() int {
	d := 0
	for _, i := range t.leaves {
		d = max(d, len(t.nodes[i].path))
	}
	return d
}

// Node returns the node at index i.
func (t *Tree) Node(i int) Node { return t.view(i) }

func (t *Tree) view(i int) Node {
	n := &t.nodes[i]
	return Node{
		Index:  i,
		Leaf:   n.kind == leafNode,
		Value:  n.value,
		Weight: n.weight,
		Path:   n.path,
		Parent: n.parent,
		Left:   n.left,
		Right:  n.right,
	}
}

// preorder visits a node, then its left subtree, then its right subtree.
func (t *Tree) preorder(fn func(Node)) {
	stack := []int{t.root}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(t.view(i))
		if t.nodes[i].kind == internalNode {
			stack = append(stack, t.nodes[i].right, t.nodes[i].left)
		}
	}
}

// inorder visits the left subtree, then a node, then its right subtree.
func (t *Tree) inorder(fn func(Node)) {
	var stack []int
	i := t.root
	for i != -1 || len(stack) > 0 {
		for i != -1 {
			stack = append(stack, i)
			i = t.nodes[i].left
		}
		i = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(t.view(i))
		i = t.nodes[i].right
	}
}

// postorder visits both subtrees before the node itself.
func (t *Tree) postorder(fn func(Node)) {
	var order []int
	stack := []int{t.root}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, i)
		if t.nodes[i].kind == internalNode {
			stack = append(stack, t.nodes[i].left, t.nodes[i].right)
		}
	}
	for _, i := range slices.Backward(order) {
		fn(t.view(i))
	}
}
