// Package labels models BIP-329-style label annotations attached to
// transactions, inputs, outputs, and addresses.
//
// Labels originate from label files (a user's own editable file or an
// imported read-only pack). Multiple files may label the same reference;
// entries are kept per file, in source-file order.
package labels

import (
	"fmt"
	"slices"
)

// =============================================================================
// Reference Kinds
// =============================================================================

// Kind identifies what a label reference points at.
type Kind int

const (
	// KindTx labels a whole transaction. The ref ID is the txid.
	KindTx Kind = iota
	// KindInput labels a specific input. The ref ID is "txid:index".
	KindInput
	// KindOutput labels a specific output. The ref ID is "txid:index".
	KindOutput
	// KindAddr labels an address. The ref ID is the address string.
	KindAddr
)

// String returns the wire name of the kind, matching the BIP-329 type field.
func (k Kind) String() string {
	switch k {
	case KindTx:
		return "tx"
	case KindInput:
		return "input"
	case KindOutput:
		return "output"
	case KindAddr:
		return "addr"
	default:
		return "unknown"
	}
}

// ParseKind maps a wire name to a Kind. The boolean reports whether the
// name is one of the four supported kinds.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "tx":
		return KindTx, true
	case "input":
		return KindInput, true
	case "output":
		return KindOutput, true
	case "addr":
		return KindAddr, true
	default:
		return 0, false
	}
}

// MarshalText implements encoding.TextMarshaler so kinds serialize as their
// wire names inside JSON documents.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(data []byte) error {
	parsed, ok := ParseKind(string(data))
	if !ok {
		return fmt.Errorf("unknown label kind %q", string(data))
	}
	*k = parsed
	return nil
}

// =============================================================================
// References and Entries
// =============================================================================

// Ref is the composite lookup key for a label bucket.
type Ref struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

// TxRef builds a transaction reference.
func TxRef(txid string) Ref { return Ref{Kind: KindTx, ID: txid} }

// InputRef builds an input reference for "txid:index".
func InputRef(txid string, index uint32) Ref {
	return Ref{Kind: KindInput, ID: fmt.Sprintf("%s:%d", txid, index)}
}

// OutputRef builds an output reference for "txid:index".
func OutputRef(txid string, index uint32) Ref {
	return Ref{Kind: KindOutput, ID: fmt.Sprintf("%s:%d", txid, index)}
}

// AddrRef builds an address reference.
func AddrRef(addr string) Ref { return Ref{Kind: KindAddr, ID: addr} }

// FileKind distinguishes the user's editable label file from imported packs.
type FileKind string

const (
	FileLocal FileKind = "local"
	FilePack  FileKind = "pack"
)

// Entry is one label attached to a reference by one source file.
type Entry struct {
	FileID   string   `json:"file_id"`
	FileName string   `json:"file_name"`
	FileKind FileKind `json:"file_kind"`
	Editable bool     `json:"editable"`
	Label    string   `json:"label"`
}

// Line renders the entry the way the graph view displays it.
func (e Entry) Line() string {
	return e.FileName + ":" + e.Label
}

// Lines renders a slice of entries in order. Returns nil for empty input.
func Lines(entries []Entry) []string {
	if len(entries) == 0 {
		return nil
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.Line()
	}
	return lines
}

// =============================================================================
// Label Set
// =============================================================================

// Set holds label buckets keyed by reference. The zero value and nil are
// usable for reads: lookups on an empty or nil set return no entries, so
// callers never need to guard against absent buckets.
type Set struct {
	buckets map[Ref][]Entry
}

// NewSet creates an empty label set.
func NewSet() *Set {
	return &Set{buckets: make(map[Ref][]Entry)}
}

// Add appends an entry to the bucket for ref. If the same file already
// labels the reference, its entry is replaced in place (one entry per
// source file per reference).
func (s *Set) Add(ref Ref, e Entry) {
	if s.buckets == nil {
		s.buckets = make(map[Ref][]Entry)
	}
	bucket := s.buckets[ref]
	for i, existing := range bucket {
		if existing.FileID == e.FileID {
			bucket[i] = e
			return
		}
	}
	s.buckets[ref] = append(bucket, e)
}

// Get returns the entries attached to ref in source-file order.
// Safe on a nil set; absent buckets yield nil.
func (s *Set) Get(ref Ref) []Entry {
	if s == nil || s.buckets == nil {
		return nil
	}
	return s.buckets[ref]
}

// Refs returns all references that have at least one entry, in no
// particular order. Safe on a nil set.
func (s *Set) Refs() []Ref {
	if s == nil {
		return nil
	}
	refs := make([]Ref, 0, len(s.buckets))
	for ref := range s.buckets {
		refs = append(refs, ref)
	}
	return refs
}

// Len returns the number of references with entries.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.buckets)
}

// Clone returns a deep copy of the set. A nil receiver clones to an empty set.
func (s *Set) Clone() *Set {
	out := NewSet()
	if s == nil {
		return out
	}
	for ref, bucket := range s.buckets {
		out.buckets[ref] = slices.Clone(bucket)
	}
	return out
}

// Merge folds other into s. Buckets are merged per reference; when both
// sets carry an entry from the same file for the same reference, the
// incoming entry wins. Safe when other is nil.
func (s *Set) Merge(other *Set) {
	if other == nil {
		return
	}
	for ref, bucket := range other.buckets {
		for _, e := range bucket {
			s.Add(ref, e)
		}
	}
}
