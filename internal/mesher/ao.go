package mesher

// vertexAO computes one corner's ambient-occlusion level (0 = fully
// occluded, 3 = unoccluded) from the solidity of its two edge-adjacent
// cells and the diagonal corner cell, the standard three-sample corner AO
// used by most greedy-meshed voxel renderers. When both edge cells are
// solid the corner is fully occluded regardless of the diagonal, since the
// diagonal cell is otherwise inaccessible to light from that corner.
func vertexAO(side1, side2, corner bool) uint8 {
	if side1 && side2 {
		return 0
	}
	n := 0
	if side1 {
		n++
	}
	if side2 {
		n++
	}
	if corner {
		n++
	}
	return uint8(3 - n)
}
