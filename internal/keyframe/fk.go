package keyframe

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"bvhgav/internal/skeleton"
)

// WorldPositions returns the world position of every node of h at a frame,
// indexed like h.Nodes. Joints without position channels sit at their rest offset.
func WorldPositions(h *skeleton.Hierarchy, kf *Set, frame int) []r3.Vec {
	positions := make([]r3.Vec, len(h.Nodes))
	rotations := make([]quat.Number, len(h.Nodes))
	slots := kf.slots(len(h.Nodes))

	for _, index := range h.PreOrder() {
		node := &h.Nodes[index]

		local := node.Offset
		if t := kf.translations(slots[index]); frame < len(t) {
			local = t[frame]
		}
		rotation := quat.Number{Real: 1}
		if r := kf.rotations(slots[index]); frame < len(r) {
			rotation = r[frame]
		}

		if node.Parent < 0 {
			positions[index] = local
			rotations[index] = rotation
			continue
		}
		parentRotation := rotations[node.Parent]
		p := Rotate(parentRotation, [3]float64{local.X, local.Y, local.Z})
		positions[index] = r3.Add(positions[node.Parent], r3.Vec{X: p[0], Y: p[1], Z: p[2]})
		rotations[index] = quat.Mul(parentRotation, rotation)
	}
	return positions
}

// EndSitePosition returns the world position of a node's end site at a frame.
func EndSitePosition(h *skeleton.Hierarchy, kf *Set, positions []r3.Vec, index, frame int) r3.Vec {
	node := &h.Nodes[index]
	if node.EndSite == nil {
		return positions[index]
	}
	slots := kf.slots(len(h.Nodes))
	rotation := quat.Number{Real: 1}
	for i := index; i >= 0; i = h.Nodes[i].Parent {
		if r := kf.rotations(slots[i]); frame < len(r) {
			rotation = quat.Mul(r[frame], rotation)
		}
	}
	p := Rotate(rotation, [3]float64{node.EndSite.X, node.EndSite.Y, node.EndSite.Z})
	return r3.Add(positions[index], r3.Vec{X: p[0], Y: p[1], Z: p[2]})
}
