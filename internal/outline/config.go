package outline

import (
	"errors"
	"fmt"
	"slices"
)

// Config holds every tolerance a run uses. A Config is passed by value into each
// stage and is never read from package state.
type Config struct {
	Filter            FilterConfig    `yaml:"filter" json:"filter"`
	Alignment         AlignmentConfig `yaml:"alignment" json:"alignment"`
	FontBand          FontBandConfig  `yaml:"font_band" json:"font_band"`
	Sequence          SequenceConfig  `yaml:"sequence" json:"sequence"`
	MaxDepth          int             `yaml:"max_depth" json:"max_depth"`
	CheckReadingOrder bool            `yaml:"check_reading_order" json:"check_reading_order"`
}

type FilterConfig struct {
	Enabled             bool     `yaml:"enabled" json:"enabled"`
	MaxTitleRunes       int      `yaml:"max_title_runes" json:"max_title_runes"`
	MinFontSize         float64  `yaml:"min_font_size" json:"min_font_size"`
	MaxFontSize         float64  `yaml:"max_font_size" json:"max_font_size"`
	Include             []string `yaml:"include" json:"include"`
	Exclude             []string `yaml:"exclude" json:"exclude"`
	RequireNumericStart bool     `yaml:"require_numeric_start" json:"require_numeric_start"`
}

type AlignmentConfig struct {
	Enabled   bool    `yaml:"enabled" json:"enabled"`
	Tolerance float64 `yaml:"tolerance" json:"tolerance"`
	// LevelIndent widens the window to the right of the reference by this much per level below 1.
	LevelIndent float64 `yaml:"level_indent" json:"level_indent"`
	// ReferenceX pins the reference column instead of detecting it.
	ReferenceX           *float64 `yaml:"reference_x" json:"reference_x,omitempty"`
	ExcludeDocumentTitle bool     `yaml:"exclude_document_title" json:"exclude_document_title"`
}

type FontBandConfig struct {
	Enabled        bool    `yaml:"enabled" json:"enabled"`
	Tolerance      float64 `yaml:"tolerance" json:"tolerance"`
	MonotonicSlack float64 `yaml:"monotonic_slack" json:"monotonic_slack"`
}

type SequenceConfig struct {
	MinRun             int     `yaml:"min_run" json:"min_run"`
	JumpCeiling        int     `yaml:"jump_ceiling" json:"jump_ceiling"`
	DeepJumpCeiling    int     `yaml:"deep_jump_ceiling" json:"deep_jump_ceiling"`
	DeepDepth          int     `yaml:"deep_depth" json:"deep_depth"`
	DeepDuplicateLimit int     `yaml:"deep_duplicate_limit" json:"deep_duplicate_limit"`
	FontTolerance      float64 `yaml:"font_tolerance" json:"font_tolerance"`
}

func DefaultConfig() Config {
	return Config{
		Filter: FilterConfig{
			Enabled:       true,
			MaxTitleRunes: 80,
			MinFontSize:   6,
			MaxFontSize:   72,
		},
		Alignment: AlignmentConfig{
			Enabled:     true,
			Tolerance:   5,
			LevelIndent: 20,
		},
		FontBand: FontBandConfig{
			Enabled:        true,
			Tolerance:      0.5,
			MonotonicSlack: 0.5,
		},
		Sequence: SequenceConfig{
			MinRun:             3,
			JumpCeiling:        10,
			DeepJumpCeiling:    50,
			DeepDepth:          5,
			DeepDuplicateLimit: 2,
			FontTolerance:      0.5,
		},
		MaxDepth:          MaxDepth,
		CheckReadingOrder: true,
	}
}

// Clone returns a copy that shares no slices or pointers with c, so decoding
// an overlay into it leaves c untouched.
func (c Config) Clone() Config {
	c.Filter.Include = slices.Clone(c.Filter.Include)
	c.Filter.Exclude = slices.Clone(c.Filter.Exclude)
	if p := c.Alignment.ReferenceX; p != nil {
		x := *p
		c.Alignment.ReferenceX = &x
	}
	return c
}

func (c Config) Validate() error {
	var errs []error
	if c.MaxDepth < 1 || c.MaxDepth > MaxDepth {
		errs = append(errs, fmt.Errorf("max_depth must be between 1 and %d, got %d", MaxDepth, c.MaxDepth))
	}
	if c.Alignment.Tolerance < 0 || c.Alignment.LevelIndent < 0 {
		errs = append(errs, errors.New("alignment tolerances must not be negative"))
	}
	if c.FontBand.Tolerance < 0 || c.FontBand.MonotonicSlack < 0 {
		errs = append(errs, errors.New("font band tolerances must not be negative"))
	}
	if c.Sequence.MinRun < 1 {
		errs = append(errs, fmt.Errorf("sequence.min_run must be at least 1, got %d", c.Sequence.MinRun))
	}
	if c.Sequence.JumpCeiling < 1 || c.Sequence.DeepJumpCeiling < 1 {
		errs = append(errs, errors.New("jump ceilings must be positive"))
	}
	if c.Sequence.DeepDepth < 2 {
		errs = append(errs, fmt.Errorf("sequence.deep_depth must be at least 2, got %d", c.Sequence.DeepDepth))
	}
	if c.Filter.MaxFontSize > 0 && c.Filter.MinFontSize > c.Filter.MaxFontSize {
		errs = append(errs, errors.New("filter.min_font_size exceeds filter.max_font_size"))
	}
	return errors.Join(errs...)
}
