package skeleton

import (
	"slices"
	"strings"
)

// TargetPath is the chain of joint names from the root down to one joint.
// Animation curves are bound to joints through it.
type TargetPath []string

// String joins the path with "/".
func (p TargetPath) String() string {
	return strings.Join(p, "/")
}

// Leaf returns the name of the joint the path points at.
func (p TargetPath) Leaf() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// TargetPath searches the tree depth first, children in stored order, and
// returns the path to the first joint named name.
func (h *Hierarchy) TargetPath(name string) (TargetPath, bool) {
	if len(h.Nodes) == 0 {
		return nil, false
	}

	var path TargetPath
	var visit func(index int) bool
	visit = func(index int) bool {
		node := &h.Nodes[index]
		path = append(path, node.Name)
		if node.Name == name {
			return true
		}
		for _, child := range node.Children {
			if visit(child) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}

	if !visit(0) {
		return nil, false
	}
	return path, true
}

// Path returns the target path of the node at index.
func (h *Hierarchy) Path(index int) TargetPath {
	var path TargetPath
	for i := index; i >= 0; i = h.Nodes[i].Parent {
		path = append(path, h.Nodes[i].Name)
	}
	slices.Reverse(path)
	return path
}
