package game

// ValueBand is one tier of the cache value distribution: Value is spawned
// with probability Permille/1000, after the preceding bands.
type ValueBand struct {
	Value    int `yaml:"value"`
	Permille int `yaml:"permille"`
}

// DefaultValueBands biases spawns toward small tokens.
func DefaultValueBands() []ValueBand {
	return []ValueBand{
		{Value: 1, Permille: 600},
		{Value: 2, Permille: 300},
		{Value: 3, Permille: 70},
		{Value: 4, Permille: 25},
		{Value: 5, Permille: 5},
	}
}

// Generator derives the baseline content of any cell from the seed alone.
// It holds no mutable state: the world is infinite and memory-free because
// baseline content is recomputed on every lookup.
//
// Presence and value are drawn from two independently salted hash streams
// so that cache presence carries no information about cache value. Sharing
// one stream would leak presence bits into the value distribution.
type Generator struct {
	Seed          int64
	SpawnPermille int
	Bands         []ValueBand
}

const (
	saltPresence = 0x70726573656e6365 // "presence"
	saltValue    = 0x76616c7565       // "value"
)

// Content is the resolved state of one cell.
type Content struct {
	HasCache bool
	Value    int
}

// Generate returns the baseline content of (i, j). Pure: identical inputs
// yield identical output across calls and across processes.
func (g Generator) Generate(i, j int) Content {
	if g.SpawnPermille <= 0 || g.hash(saltPresence, i, j)%1000 >= uint64(g.SpawnPermille) {
		return Content{}
	}
	if len(g.Bands) == 0 {
		// Zero-value Bands on a directly constructed Generator: spawn the
		// smallest token rather than indexing an empty table.
		return Content{HasCache: true, Value: 1}
	}
	roll := int(g.hash(saltValue, i, j) % 1000)
	acc := 0
	for _, b := range g.Bands {
		acc += b.Permille
		if roll < acc {
			return Content{HasCache: true, Value: b.Value}
		}
	}
	// Bands not summing to 1000 fall through to the last tier.
	return Content{HasCache: true, Value: g.Bands[len(g.Bands)-1].Value}
}

func (g Generator) hash(salt uint64, i, j int) uint64 {
	ui := uint64(uint32(int32(i)))
	uj := uint64(uint32(int32(j)))
	v := uint64(g.Seed) ^ salt ^ (ui * 0x9e3779b97f4a7c15) ^ (uj * 0xbf58476d1ce4e5b9)
	return mix64(v)
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
