package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning is the operator-editable gameplay configuration. Zero fields fall
// back to Defaults when the game config is assembled.
type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz int     `yaml:"tick_rate_hz"`
	CellSize   float64 `yaml:"cell_size"`

	SpawnPermille int         `yaml:"spawn_permille"`
	ValueBands    []ValueBand `yaml:"value_bands"`

	ProximityRadius  int `yaml:"proximity_radius"`
	CarrySlots       int `yaml:"carry_slots"`
	WinThreshold     int `yaml:"win_threshold"`
	MaxViewportCells int `yaml:"max_viewport_cells"`
}

type ValueBand struct {
	Value    int `yaml:"value"`
	Permille int `yaml:"permille"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.validate(); err != nil {
		return t, err
	}
	return t, nil
}

func Defaults() Tuning {
	return Tuning{
		TickRateHz:       5,
		CellSize:         0.0001,
		SpawnPermille:    100,
		ProximityRadius:  3,
		CarrySlots:       1,
		WinThreshold:     16,
		MaxViewportCells: 10000,
		ValueBands: []ValueBand{
			{Value: 1, Permille: 600},
			{Value: 2, Permille: 300},
			{Value: 3, Permille: 70},
			{Value: 4, Permille: 25},
			{Value: 5, Permille: 5},
		},
	}
}

func (t Tuning) validate() error {
	if t.SpawnPermille < 0 || t.SpawnPermille > 1000 {
		return fmt.Errorf("spawn_permille out of range: %d", t.SpawnPermille)
	}
	sum := 0
	for _, b := range t.ValueBands {
		if b.Value <= 0 {
			return fmt.Errorf("value band with non-positive value: %d", b.Value)
		}
		if b.Permille <= 0 {
			return fmt.Errorf("value band %d with non-positive permille", b.Value)
		}
		sum += b.Permille
	}
	if sum > 1000 {
		return fmt.Errorf("value bands sum to %d permille", sum)
	}
	return nil
}
