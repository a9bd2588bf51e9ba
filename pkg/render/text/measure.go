// Package text provides pixel-width measurement and display formatting for
// the strings that appear inside graph nodes.
//
// Node sizing must be identical in headless environments (tests, servers)
// and anywhere a real font is available, so measurement is abstracted
// behind the Measurer capability with two implementations: a face-backed
// measurer using real glyph advances from the embedded Go Mono face, and a
// fixed-average-width fallback.
package text

import (
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
)

// FontSize is the point size node text is measured at.
const FontSize = 11.0

// FallbackCharWidth is the average advance, in pixels, assumed per rune
// when no font face is available. Chosen to slightly overestimate Go Mono
// at FontSize so fallback layouts never clip.
const FallbackCharWidth = 6.8

// Measurer reports the rendered pixel width of a string in the active
// monospace font.
type Measurer interface {
	Width(s string) float64
}

// =============================================================================
// Fixed-Width Fallback
// =============================================================================

// FixedMeasurer approximates width as rune count times a fixed average
// character width. Deterministic and allocation-free.
type FixedMeasurer struct {
	CharWidth float64
}

// NewFixedMeasurer creates a fallback measurer with the default width.
func NewFixedMeasurer() FixedMeasurer {
	return FixedMeasurer{CharWidth: FallbackCharWidth}
}

// Width implements Measurer.
func (m FixedMeasurer) Width(s string) float64 {
	n := 0
	for range s {
		n++
	}
	return float64(n) * m.CharWidth
}

// =============================================================================
// Face-Backed Measurer
// =============================================================================

// FaceMeasurer measures strings against a real font face. The face is the
// embedded Go Mono TTF, so results are identical on every platform.
type FaceMeasurer struct {
	mu   sync.Mutex // font.Face is not safe for concurrent use
	face font.Face
}

// NewFaceMeasurer parses the embedded Go Mono face at FontSize.
func NewFaceMeasurer() (*FaceMeasurer, error) {
	parsed, err := opentype.Parse(gomono.TTF)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    FontSize,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	return &FaceMeasurer{face: face}, nil
}

// Width implements Measurer using real glyph advances.
func (m *FaceMeasurer) Width(s string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return float64(font.MeasureString(m.face, s)) / 64.0
}

// =============================================================================
// Shared Default
// =============================================================================

var (
	defaultOnce     sync.Once
	defaultMeasurer Measurer
)

// Default returns the process-wide measurer: the face-backed implementation
// when the embedded font parses, otherwise the fixed fallback. Initialized
// once on first use and shared afterwards.
func Default() Measurer {
	defaultOnce.Do(func() {
		if m, err := NewFaceMeasurer(); err == nil {
			defaultMeasurer = m
			return
		}
		defaultMeasurer = NewFixedMeasurer()
	})
	return defaultMeasurer
}
