package model

import (
	"slices"
	"testing"
)

func TestVisibleOutputIndicesScenario(t *testing.T) {
	// 10 outputs, only output 5 connected: everything but index 3 is
	// visible (head 0-2, connected 5 with neighbors 4 and 6, tail 7-9).
	got := VisibleOutputIndices(10, map[int]bool{5: true}, 3)
	want := []int{0, 1, 2, 4, 5, 6, 7, 8, 9}
	if !slices.Equal(got, want) {
		t.Errorf("visible = %v, want %v", got, want)
	}
}

func TestVisibleOutputIndicesCoverage(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		connected []int
	}{
		{"no outputs", 0, nil},
		{"fewer than head+tail", 4, nil},
		{"exact overlap", 6, nil},
		{"large sparse", 100, []int{50}},
		{"connected at edges", 100, []int{0, 99}},
		{"adjacent connected", 40, []int{10, 11, 12}},
		{"out of range ignored", 10, []int{-1, 10, 200}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			connected := make(map[int]bool, len(tt.connected))
			for _, c := range tt.connected {
				connected[c] = true
			}
			got := VisibleOutputIndices(tt.n, connected, 3)

			// Required members: head, tail, connected, neighbors.
			require := func(idx int) {
				if idx < 0 || idx >= tt.n {
					return
				}
				if !slices.Contains(got, idx) {
					t.Errorf("index %d missing from %v", idx, got)
				}
			}
			for i := 0; i < 3; i++ {
				require(i)
				require(tt.n - 1 - i)
			}
			for _, c := range tt.connected {
				if c >= 0 && c < tt.n {
					require(c - 1)
					require(c)
					require(c + 1)
				}
			}

			// Sorted, unique, in range.
			if !slices.IsSorted(got) {
				t.Errorf("indices not sorted: %v", got)
			}
			for i, idx := range got {
				if idx < 0 || idx >= tt.n {
					t.Errorf("index %d out of range [0,%d)", idx, tt.n)
				}
				if i > 0 && got[i-1] == idx {
					t.Errorf("duplicate index %d", idx)
				}
			}

			// Visible indices plus gap counts reconstruct n exactly.
			total := len(got)
			prev := -1
			for _, idx := range got {
				total += idx - prev - 1
				prev = idx
			}
			if prev >= 0 {
				total += tt.n - 1 - prev
			}
			if tt.n > 0 && total != tt.n {
				t.Errorf("visible + hidden = %d, want %d", total, tt.n)
			}

			// Determinism.
			again := VisibleOutputIndices(tt.n, connected, 3)
			if !slices.Equal(got, again) {
				t.Errorf("selection not deterministic: %v vs %v", got, again)
			}
		})
	}
}

func TestVisibleOutputIndicesTrailingAllVisible(t *testing.T) {
	// head+tail covers everything: no gaps possible.
	got := VisibleOutputIndices(5, nil, 3)
	if !slices.Equal(got, []int{0, 1, 2, 3, 4}) {
		t.Errorf("small node should be fully visible, got %v", got)
	}
}
