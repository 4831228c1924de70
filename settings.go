package talon

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Settings are the simulation-wide tuning knobs. Iteration counts apply to
// every constraint; they are not configurable per joint or contact.
type Settings struct {
	VelocityIterations      int     `toml:"velocity_iterations"`
	PositionIterations      int     `toml:"position_iterations"`
	Workers                 int     `toml:"workers"`
	MaxContactPointsPerPair int     `toml:"max_contact_points_per_pair"`
	ContactSlop             float64 `toml:"contact_slop"`
	Baumgarte               float64 `toml:"baumgarte"`
	RestitutionThreshold    float64 `toml:"restitution_threshold"`
}

// DefaultSettings returns the tuning used when nothing is configured
func DefaultSettings() Settings {
	return Settings{
		VelocityIterations:      8,
		PositionIterations:      3,
		Workers:                 1,
		MaxContactPointsPerPair: 4,
		ContactSlop:             0.005,
		Baumgarte:               0.2,
		RestitutionThreshold:    1.0,
	}
}

// LoadSettings reads a toml settings file
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	settings := DefaultSettings()
	if err := toml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}

	if err := settings.validate(); err != nil {
		return Settings{}, fmt.Errorf("settings %s: %w", path, err)
	}

	return settings, nil
}

func (s Settings) validate() error {
	if s.VelocityIterations < 0 {
		return fmt.Errorf("velocity_iterations must not be negative, got %d", s.VelocityIterations)
	}
	if s.PositionIterations < 0 {
		return fmt.Errorf("position_iterations must not be negative, got %d", s.PositionIterations)
	}
	if s.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", s.Workers)
	}
	if s.Baumgarte < 0 || s.Baumgarte > 1 {
		return fmt.Errorf("baumgarte must be in [0,1], got %g", s.Baumgarte)
	}

	return nil
}

// normalized fills zero-valued fields with defaults so a zero Settings is a
// usable configuration
func (s Settings) normalized() Settings {
	defaults := DefaultSettings()

	if s.VelocityIterations <= 0 {
		s.VelocityIterations = defaults.VelocityIterations
	}
	if s.PositionIterations <= 0 {
		s.PositionIterations = defaults.PositionIterations
	}
	if s.Workers <= 0 {
		s.Workers = defaults.Workers
	}
	if s.MaxContactPointsPerPair <= 0 {
		s.MaxContactPointsPerPair = defaults.MaxContactPointsPerPair
	}
	if s.ContactSlop <= 0 {
		s.ContactSlop = defaults.ContactSlop
	}
	if s.Baumgarte <= 0 {
		s.Baumgarte = defaults.Baumgarte
	}
	if s.RestitutionThreshold <= 0 {
		s.RestitutionThreshold = defaults.RestitutionThreshold
	}

	return s
}
