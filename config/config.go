// Package config describes the configuration record consumed by the
// co-registration core. Parsing command line flags, environment files,
// or remote config stores is the caller's job; this package only knows
// how to decode the record itself.
package config

import (
	"encoding/json"
	"fmt"
	"io"
)

// Default filter sizes and resolutions, in meters, used when a
// Configuration omits them. Mirrors utils.ServiceConfig's block of
// package-level Default* constants.
const (
	DefaultMinResolution  = 1.0
	DefaultWeakFilterSize = 21.0
	DefaultStrongFilterSize = 7.0
	DefaultOversizeScale  = 1.5
	DefaultNormalK        = 9
)

// Configuration is the configuration record of spec.md section 6. Only
// the fields the core consults are typed explicitly; the full decoded
// record, including the caller's solver-oriented keys, rides along in
// Extra so decoding never fails on an unrecognized key.
type Configuration struct {
	FndFile string `json:"FND_FILE"`
	AoiFile string `json:"AOI_FILE"`

	MinResolution float64 `json:"MIN_RESOLUTION"`

	DSMWeakFilter   float64 `json:"DSM_WEAK_FILTER"`
	DSMStrongFilter float64 `json:"DSM_STRONG_FILTER"`

	TightSearch      bool `json:"TIGHT_SEARCH"`
	ICPSaveResiduals bool `json:"ICP_SAVE_RESIDUALS"`

	OutputDir string `json:"OUTPUT_DIR"`

	OffsetX string `json:"OFFSET_X"`
	OffsetY string `json:"OFFSET_Y"`
	OffsetZ string `json:"OFFSET_Z"`
	ScaleX  string `json:"SCALE_X"`
	ScaleY  string `json:"SCALE_Y"`
	ScaleZ  string `json:"SCALE_Z"`

	// Extra holds every key of the decoded record, the typed ones above
	// as well as solver-oriented fields (AKAZE thresholds, ICP iteration
	// caps, etc.) that this core never reads but must not choke on.
	Extra map[string]interface{} `json:"-"`
}

// Load decodes a Configuration from r, filling in the package
// defaults for zero-valued numeric fields that must be positive.
func Load(r io.Reader) (*Configuration, error) {
	var raw map[string]interface{}
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	buf, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("config: re-marshal: %w", err)
	}

	cfg := &Configuration{}
	if err := json.Unmarshal(buf, cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.Extra = raw

	if cfg.MinResolution <= 0 {
		cfg.MinResolution = DefaultMinResolution
	}
	if cfg.DSMWeakFilter <= 0 {
		cfg.DSMWeakFilter = DefaultWeakFilterSize
	}
	if cfg.DSMStrongFilter <= 0 {
		cfg.DSMStrongFilter = DefaultStrongFilterSize
	}
	for _, s := range []*string{&cfg.OffsetX, &cfg.OffsetY, &cfg.OffsetZ, &cfg.ScaleX, &cfg.ScaleY, &cfg.ScaleZ} {
		if *s == "" {
			*s = "auto"
		}
	}
	return cfg, nil
}
