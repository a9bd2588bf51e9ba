package model

import "slices"

// VisibleOutputIndices selects which of n outputs are rendered as real
// rows. The visible set is the union of:
//
//   - the first headTail indices
//   - the last headTail indices
//   - every index in connected (outputs funding a visible edge)
//   - the immediate neighbor on each side of every connected index
//
// The selection is deterministic and order-preserving: the same inputs
// always produce the same sorted index list. Indices not selected are
// collapsed into gap rows by the builder.
func VisibleOutputIndices(n int, connected map[int]bool, headTail int) []int {
	if n <= 0 {
		return nil
	}

	keep := make(map[int]bool, 2*headTail+3*len(connected))
	for i := 0; i < headTail && i < n; i++ {
		keep[i] = true
	}
	for i := n - headTail; i < n; i++ {
		if i >= 0 {
			keep[i] = true
		}
	}
	for idx := range connected {
		if idx < 0 || idx >= n {
			continue
		}
		keep[idx] = true
		if idx > 0 {
			keep[idx-1] = true
		}
		if idx < n-1 {
			keep[idx+1] = true
		}
	}

	out := make([]int, 0, len(keep))
	for idx := range keep {
		out = append(out, idx)
	}
	slices.Sort(out)
	return out
}
