// Package config loads engine tuning from a TOML file. Every knob has a
// default, so an absent or empty file is fully usable.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	errs "github.com/panon-btc/txlineage/pkg/errors"
	"github.com/panon-btc/txlineage/pkg/layout/crossmin"
	"github.com/panon-btc/txlineage/pkg/layout/solver"
	"github.com/panon-btc/txlineage/pkg/render/model"
	"github.com/panon-btc/txlineage/pkg/render/text"
)

// Config is the full engine tuning surface.
type Config struct {
	Sizing   Sizing   `toml:"sizing"`
	Crossmin Crossmin `toml:"crossmin"`
	Solver   Solver   `toml:"solver"`
	Cache    Cache    `toml:"cache"`
}

// Sizing tunes node measurement and row heights, in pixels.
type Sizing struct {
	BaseRowHeight     float64 `toml:"base_row_height"`
	LabelLineHeight   float64 `toml:"label_line_height"`
	HeaderHeight      float64 `toml:"header_height"`
	MetaLineHeight    float64 `toml:"meta_line_height"`
	MinNodeWidth      float64 `toml:"min_node_width"`
	RailWidth         float64 `toml:"rail_width"`
	ColumnGutter      float64 `toml:"column_gutter"`
	HorizontalPad     float64 `toml:"horizontal_pad"`
	VerticalPad       float64 `toml:"vertical_pad"`
	HeadTailVisible   int     `toml:"head_tail_visible"`
	FallbackCharWidth float64 `toml:"fallback_char_width"`
}

// Crossmin tunes the crossing-minimization post-passes.
type Crossmin struct {
	ExactSearchLimit int     `toml:"exact_search_limit"`
	MinGap           float64 `toml:"min_gap"`
	XTolerance       float64 `toml:"x_tolerance"`
}

// Solver tunes the external layered solver's spacing, in pixels.
type Solver struct {
	RankSep float64 `toml:"rank_sep"`
	NodeSep float64 `toml:"node_sep"`
}

// Cache selects where layout results are cached. An empty Dir disables
// caching.
type Cache struct {
	Dir string `toml:"dir"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	c := model.DefaultConstants()
	x := crossmin.DefaultOptions()
	s := solver.DefaultOptions()
	return Config{
		Sizing: Sizing{
			BaseRowHeight:     c.BaseRowHeight,
			LabelLineHeight:   c.LabelLineHeight,
			HeaderHeight:      c.HeaderHeight,
			MetaLineHeight:    c.MetaLineHeight,
			MinNodeWidth:      c.MinNodeWidth,
			RailWidth:         c.RailWidth,
			ColumnGutter:      c.ColumnGutter,
			HorizontalPad:     c.HorizontalPad,
			VerticalPad:       c.VerticalPad,
			HeadTailVisible:   c.HeadTailVisible,
			FallbackCharWidth: text.FallbackCharWidth,
		},
		Crossmin: Crossmin{
			ExactSearchLimit: x.ExactSearchLimit,
			MinGap:           x.MinGap,
			XTolerance:       x.XTolerance,
		},
		Solver: Solver{
			RankSep: s.RankSep,
			NodeSep: s.NodeSep,
		},
	}
}

// Load reads path and overlays it on the defaults. A missing file is not
// an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects values the engine cannot work with.
func (c Config) Validate() error {
	if c.Sizing.HeadTailVisible < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "head_tail_visible must be >= 0")
	}
	if c.Sizing.MinNodeWidth <= 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "min_node_width must be positive")
	}
	if c.Crossmin.ExactSearchLimit < 1 {
		return errs.New(errs.ErrCodeInvalidConfig, "exact_search_limit must be >= 1")
	}
	if c.Crossmin.MinGap < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "min_gap must be >= 0")
	}
	return nil
}

// Constants converts the sizing section to render-model constants.
func (c Config) Constants() model.Constants {
	return model.Constants{
		BaseRowHeight:   c.Sizing.BaseRowHeight,
		LabelLineHeight: c.Sizing.LabelLineHeight,
		HeaderHeight:    c.Sizing.HeaderHeight,
		MetaLineHeight:  c.Sizing.MetaLineHeight,
		MinNodeWidth:    c.Sizing.MinNodeWidth,
		RailWidth:       c.Sizing.RailWidth,
		ColumnGutter:    c.Sizing.ColumnGutter,
		HorizontalPad:   c.Sizing.HorizontalPad,
		VerticalPad:     c.Sizing.VerticalPad,
		HeadTailVisible: c.Sizing.HeadTailVisible,
	}
}

// CrossminOptions converts the crossmin section.
func (c Config) CrossminOptions() crossmin.Options {
	return crossmin.Options{
		ExactSearchLimit: c.Crossmin.ExactSearchLimit,
		MinGap:           c.Crossmin.MinGap,
		XTolerance:       c.Crossmin.XTolerance,
	}
}

// SolverOptions converts the solver section.
func (c Config) SolverOptions() solver.Options {
	return solver.Options{
		RankSep: c.Solver.RankSep,
		NodeSep: c.Solver.NodeSep,
	}
}

// Measurer builds the text measurer: the shared face-backed default, or a
// fixed-width one when the configured fallback width differs from stock.
func (c Config) Measurer() text.Measurer {
	if c.Sizing.FallbackCharWidth != text.FallbackCharWidth {
		return text.FixedMeasurer{CharWidth: c.Sizing.FallbackCharWidth}
	}
	return text.Default()
}
