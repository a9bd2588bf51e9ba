package graphio

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/panon-btc/txlineage/pkg/layout"
)

// MarshalLayout converts a positioned layout to indented JSON bytes.
func MarshalLayout(l *layout.Layout) ([]byte, error) {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode layout: %w", err)
	}
	return data, nil
}

// UnmarshalLayout decodes JSON bytes into a positioned layout.
func UnmarshalLayout(data []byte) (*layout.Layout, error) {
	var l layout.Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	return &l, nil
}

// WriteLayoutFile writes a positioned layout to a JSON file.
func WriteLayoutFile(l *layout.Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// ReadLayoutFile reads a JSON file and returns the decoded layout.
func ReadLayoutFile(path string) (*layout.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
