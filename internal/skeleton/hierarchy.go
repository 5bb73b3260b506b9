package skeleton

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"bvhgav/internal/bvh"
)

// ErrStructure reports joint records that do not form a tree rooted at record 0.
var ErrStructure = errors.New("skeleton: malformed hierarchy")

// Node is one joint of a Hierarchy. Parent and Children are indices into Hierarchy.Nodes.
type Node struct {
	Name     string
	Offset   r3.Vec
	EndSite  *r3.Vec
	Parent   int
	Children []int

	// Record is the index of the source bvh.JointRecord.
	Record int
}

// Hierarchy is an immutable joint tree stored as an arena. The root is Nodes[0].
type Hierarchy struct {
	Nodes []Node
}

// Build instantiates the tree reachable from records[0], keeping the children
// of every record in their stored order.
func Build(records []bvh.JointRecord) (*Hierarchy, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no root record", ErrStructure)
	}

	h := &Hierarchy{Nodes: make([]Node, 0, len(records))}
	visited := make([]bool, len(records))

	var instantiate func(record, parent int) (int, error)
	instantiate = func(record, parent int) (int, error) {
		if record < 0 || record >= len(records) {
			return -1, fmt.Errorf("%w: child index %d out of range", ErrStructure, record)
		}
		if visited[record] {
			return -1, fmt.Errorf("%w: record %d (%s) reached twice", ErrStructure, record, records[record].Name)
		}
		visited[record] = true

		src := records[record]
		index := len(h.Nodes)
		node := Node{
			Name:   src.Name,
			Offset: r3.Vec{X: src.Offset[0], Y: src.Offset[1], Z: src.Offset[2]},
			Parent: parent,
			Record: record,
		}
		if src.EndSite != nil {
			node.EndSite = &r3.Vec{X: src.EndSite[0], Y: src.EndSite[1], Z: src.EndSite[2]}
		}
		h.Nodes = append(h.Nodes, node)

		for _, child := range src.Children {
			childIndex, err := instantiate(child, index)
			if err != nil {
				return -1, err
			}
			h.Nodes[index].Children = append(h.Nodes[index].Children, childIndex)
		}
		return index, nil
	}

	if _, err := instantiate(0, -1); err != nil {
		return nil, err
	}
	return h, nil
}

// Root returns the root node.
func (h *Hierarchy) Root() *Node {
	return &h.Nodes[0]
}

// Len returns the number of joints.
func (h *Hierarchy) Len() int {
	return len(h.Nodes)
}

// PreOrder returns node indices, parents before children and siblings in stored order.
func (h *Hierarchy) PreOrder() []int {
	order := make([]int, 0, len(h.Nodes))
	if len(h.Nodes) == 0 {
		return order
	}
	stack := []int{0}
	for len(stack) > 0 {
		index := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, index)

		children := h.Nodes[index].Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return order
}

// Find returns the index of the first node with the given name in pre-order.
func (h *Hierarchy) Find(name string) (int, bool) {
	for _, index := range h.PreOrder() {
		if h.Nodes[index].Name == name {
			return index, true
		}
	}
	return -1, false
}

// Depth returns the number of ancestors of a node.
func (h *Hierarchy) Depth(index int) int {
	depth := 0
	for parent := h.Nodes[index].Parent; parent >= 0; parent = h.Nodes[parent].Parent {
		depth++
	}
	return depth
}

// EndSiteName is the name given to the leaf that marks a joint's end site.
func EndSiteName(joint string) string {
	return joint + "_end"
}

// HasEndSegment reports whether the node ends in a non-zero length end site.
func (n *Node) HasEndSegment() bool {
	return n.EndSite != nil && r3.Norm(*n.EndSite) > 0
}
