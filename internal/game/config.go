package game

type Config struct {
	ID   string
	Seed int64

	// Grid geometry: cell edge length in continuous (lat/lng) units.
	CellSize float64

	// Baseline generation. SpawnPermille 0 means "use the default"; < 0
	// means no baseline caches at all (a barren grid, useful for tests
	// and scripted scenarios).
	SpawnPermille int
	Bands         []ValueBand

	// Interaction rules.
	ProximityRadius int
	// CarrySlots caps the inventory. The canonical game uses exactly one
	// slot; <= -1 means unbounded (the grouped-crafting variant).
	CarrySlots   int
	WinThreshold int

	// Session pacing.
	TickRateHz int

	// MaxViewportCells rejects absurd viewport reports before they turn
	// into a full materialization pass.
	MaxViewportCells int
}

func (c *Config) applyDefaults() {
	if c.ID == "" {
		c.ID = "game"
	}
	if c.CellSize <= 0 {
		c.CellSize = 0.0001
	}
	if c.SpawnPermille == 0 {
		c.SpawnPermille = 100
	}
	if len(c.Bands) == 0 {
		c.Bands = DefaultValueBands()
	}
	if c.ProximityRadius <= 0 {
		c.ProximityRadius = 3
	}
	if c.CarrySlots == 0 {
		c.CarrySlots = 1
	}
	if c.WinThreshold <= 0 {
		c.WinThreshold = 16
	}
	if c.TickRateHz <= 0 {
		c.TickRateHz = 5
	}
	if c.MaxViewportCells <= 0 {
		c.MaxViewportCells = 10000
	}
}
