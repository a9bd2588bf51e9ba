package labels

import (
	"encoding/json"
	"slices"
	"strings"
)

// bucketJSON is the wire shape for one labeled reference.
type bucketJSON struct {
	Kind    Kind    `json:"kind"`
	ID      string  `json:"id"`
	Entries []Entry `json:"entries"`
}

// MarshalJSON serializes the set as a sorted list of buckets so output is
// deterministic regardless of map iteration order.
func (s *Set) MarshalJSON() ([]byte, error) {
	if s == nil || len(s.buckets) == 0 {
		return []byte("[]"), nil
	}
	out := make([]bucketJSON, 0, len(s.buckets))
	for ref, bucket := range s.buckets {
		out = append(out, bucketJSON{Kind: ref.Kind, ID: ref.ID, Entries: bucket})
	}
	slices.SortFunc(out, func(a, b bucketJSON) int {
		if a.Kind != b.Kind {
			return int(a.Kind) - int(b.Kind)
		}
		return strings.Compare(a.ID, b.ID)
	})
	return json.Marshal(out)
}

// UnmarshalJSON restores a set from its bucket-list form.
func (s *Set) UnmarshalJSON(data []byte) error {
	var in []bucketJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	s.buckets = make(map[Ref][]Entry, len(in))
	for _, b := range in {
		s.buckets[Ref{Kind: b.Kind, ID: b.ID}] = b.Entries
	}
	return nil
}
