// Package config loads the weld tuning configuration. The schema is a
// flat JSON document with optional fields; anything omitted falls back
// to a built-in default through the Get* accessors, so partial configs
// are safe. The loaded value is constructed once at the program
// boundary and passed by reference into the pipeline; core logic never
// performs implicit global lookups.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Built-in defaults used when a field is absent from the JSON file or
// no file was supplied at all.
const (
	DefaultDotSpacing        = 2.0 // mm between interpolated points
	DefaultDedupPrecision    = 0.1 // mm quantization grid for duplicate detection
	DefaultBedTemperature    = 35
	DefaultNozzleTemperature = 160
	DefaultTravelHeight      = 0.2
	DefaultXYSpeed           = 3000
	DefaultZSpeed            = 300
	DefaultWeldTimeMS        = 500
	DefaultTimeBetweenWelds  = 0.5 // animation seconds per weld
)

// NormalWelds carries spacing parameters for standard weld paths.
type NormalWelds struct {
	DotSpacing *float64 `json:"dot_spacing,omitempty"`
}

// Dedup carries duplicate-suppression parameters.
type Dedup struct {
	PrecisionMM *float64 `json:"precision_mm,omitempty"`
}

// Temperatures carries toolpath heating parameters.
type Temperatures struct {
	BedTemperature    *int `json:"bed_temperature,omitempty"`
	NozzleTemperature *int `json:"nozzle_temperature,omitempty"`
}

// Movement carries toolpath motion parameters.
type Movement struct {
	TravelHeight *float64 `json:"travel_height,omitempty"`
	XYSpeed      *int     `json:"xy_speed,omitempty"`
	ZSpeed       *int     `json:"z_speed,omitempty"`
}

// Welding carries per-weld process parameters.
type Welding struct {
	WeldTimeMS *int `json:"weld_time_ms,omitempty"`
}

// Animation carries animation rendering parameters.
type Animation struct {
	TimeBetweenWelds *float64 `json:"time_between_welds,omitempty"`
}

// Config is the root weld configuration document.
type Config struct {
	NormalWelds  NormalWelds  `json:"normal_welds"`
	Dedup        Dedup        `json:"dedup"`
	Temperatures Temperatures `json:"temperatures"`
	Movement     Movement     `json:"movement"`
	Welding      Welding      `json:"welding"`
	Animation    Animation    `json:"animation"`
}

// Default returns a Config with all fields unset, so every accessor
// reports its built-in default.
func Default() *Config {
	return &Config{}
}

// Load reads a Config from a JSON file. The file must have a .json
// extension and stay under 1MB.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that every supplied value is physically sensible.
func (c *Config) Validate() error {
	if v := c.NormalWelds.DotSpacing; v != nil && *v <= 0 {
		return fmt.Errorf("normal_welds.dot_spacing must be positive, got %v", *v)
	}
	if v := c.Dedup.PrecisionMM; v != nil && *v <= 0 {
		return fmt.Errorf("dedup.precision_mm must be positive, got %v", *v)
	}
	if v := c.Temperatures.BedTemperature; v != nil && (*v < 0 || *v > 120) {
		return fmt.Errorf("temperatures.bed_temperature out of range: %d", *v)
	}
	if v := c.Temperatures.NozzleTemperature; v != nil && (*v < 0 || *v > 300) {
		return fmt.Errorf("temperatures.nozzle_temperature out of range: %d", *v)
	}
	if v := c.Movement.XYSpeed; v != nil && *v <= 0 {
		return fmt.Errorf("movement.xy_speed must be positive, got %d", *v)
	}
	if v := c.Movement.ZSpeed; v != nil && *v <= 0 {
		return fmt.Errorf("movement.z_speed must be positive, got %d", *v)
	}
	if v := c.Welding.WeldTimeMS; v != nil && *v < 0 {
		return fmt.Errorf("welding.weld_time_ms must not be negative, got %d", *v)
	}
	if v := c.Animation.TimeBetweenWelds; v != nil && *v <= 0 {
		return fmt.Errorf("animation.time_between_welds must be positive, got %v", *v)
	}
	return nil
}

// GetDotSpacing returns normal_welds.dot_spacing or the default. A nil
// receiver behaves like an empty config so callers can pass no
// configuration at all.
func (c *Config) GetDotSpacing() float64 {
	if c == nil || c.NormalWelds.DotSpacing == nil {
		return DefaultDotSpacing
	}
	return *c.NormalWelds.DotSpacing
}

// GetDedupPrecision returns dedup.precision_mm or the default.
func (c *Config) GetDedupPrecision() float64 {
	if c == nil || c.Dedup.PrecisionMM == nil {
		return DefaultDedupPrecision
	}
	return *c.Dedup.PrecisionMM
}

// GetBedTemperature returns temperatures.bed_temperature or the default.
func (c *Config) GetBedTemperature() int {
	if c == nil || c.Temperatures.BedTemperature == nil {
		return DefaultBedTemperature
	}
	return *c.Temperatures.BedTemperature
}

// GetNozzleTemperature returns temperatures.nozzle_temperature or the default.
func (c *Config) GetNozzleTemperature() int {
	if c == nil || c.Temperatures.NozzleTemperature == nil {
		return DefaultNozzleTemperature
	}
	return *c.Temperatures.NozzleTemperature
}

// GetTravelHeight returns movement.travel_height or the default.
func (c *Config) GetTravelHeight() float64 {
	if c == nil || c.Movement.TravelHeight == nil {
		return DefaultTravelHeight
	}
	return *c.Movement.TravelHeight
}

// GetXYSpeed returns movement.xy_speed or the default.
func (c *Config) GetXYSpeed() int {
	if c == nil || c.Movement.XYSpeed == nil {
		return DefaultXYSpeed
	}
	return *c.Movement.XYSpeed
}

// GetZSpeed returns movement.z_speed or the default.
func (c *Config) GetZSpeed() int {
	if c == nil || c.Movement.ZSpeed == nil {
		return DefaultZSpeed
	}
	return *c.Movement.ZSpeed
}

// GetWeldTimeMS returns welding.weld_time_ms or the default.
func (c *Config) GetWeldTimeMS() int {
	if c == nil || c.Welding.WeldTimeMS == nil {
		return DefaultWeldTimeMS
	}
	return *c.Welding.WeldTimeMS
}

// GetTimeBetweenWelds returns animation.time_between_welds or the default.
func (c *Config) GetTimeBetweenWelds() float64 {
	if c == nil || c.Animation.TimeBetweenWelds == nil {
		return DefaultTimeBetweenWelds
	}
	return *c.Animation.TimeBetweenWelds
}
