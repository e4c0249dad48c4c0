package sim

import "math/rand"

// BuildOrder schedules one building for construction on a given turn.
type BuildOrder struct {
	Turn     int    `yaml:"turn"`
	Type     string `yaml:"type"`
	Mode     string `yaml:"mode,omitempty"`
}

// ColonyConfig holds the tunable parameters of the demo colony.
type ColonyConfig struct {
	StartFuel      float64      `yaml:"start_fuel"`
	StartMaterials float64      `yaml:"start_materials"`
	FuelPerDrone   float64      `yaml:"fuel_per_drone"`
	Drones         int          `yaml:"drones"`
	RefineryYield  float64      `yaml:"refinery_yield"`
	WastePerTurn   float64      `yaml:"waste_per_turn"`
	BuildPlan      []BuildOrder `yaml:"build_plan"`
}

// DefaultColonyConfig returns a plan that exercises the default campaign:
// a fuel refinery and a materials refinery early, a drone pad later.
func DefaultColonyConfig() ColonyConfig {
	return ColonyConfig{
		StartFuel:      40,
		StartMaterials: 20,
		FuelPerDrone:   1.5,
		Drones:         2,
		RefineryYield:  4,
		WastePerTurn:   0.5,
		BuildPlan: []BuildOrder{
			{Turn: 2, Type: BuildingRefinery, Mode: ModeFuel},
			{Turn: 2, Type: BuildingRefinery, Mode: ModeMaterials},
			{Turn: 6, Type: BuildingDronePad},
			{Turn: 8, Type: BuildingStorage},
		},
	}
}

// Colony is a minimal deterministic colony simulation. It exists so the
// campaign engine can be driven end to end without a full game attached.
type Colony struct {
	cfg       ColonyConfig
	rng       *rand.Rand
	turn      int
	buildings []Building
	resources map[string]float64
}

// NewColony creates a colony with the given config and RNG seed.
func NewColony(cfg ColonyConfig, seed int64) *Colony {
	c := &Colony{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
	c.Reset()
	return c
}

// Reset restores the colony to its initial state, keeping config and seed
// sequence position. Call before starting or retrying a level.
func (c *Colony) Reset() {
	c.turn = 0
	c.buildings = nil
	c.resources = map[string]float64{
		ResourceFuel:      c.cfg.StartFuel,
		ResourceMaterials: c.cfg.StartMaterials,
		ResourceWaste:     0,
	}
}

// Turn returns the current turn number (0 before the first Step).
func (c *Colony) Turn() int { return c.turn }

// Step advances the simulation by one turn.
func (c *Colony) Step() {
	c.turn++

	for _, order := range c.cfg.BuildPlan {
		if order.Turn == c.turn {
			c.buildings = append(c.buildings, Building{
				Type:   order.Type,
				Mode:   order.Mode,
				Active: true,
			})
		}
	}

	for _, b := range c.buildings {
		if !b.Active || b.Type != BuildingRefinery {
			continue
		}
		// Yield varies ±10% per turn, deterministic per seed.
		yield := c.cfg.RefineryYield * (0.9 + 0.2*c.rng.Float64())
		switch b.Mode {
		case ModeFuel:
			c.resources[ResourceFuel] += yield
		case ModeMaterials:
			c.resources[ResourceMaterials] += yield
		}
	}

	burn := float64(c.cfg.Drones) * c.cfg.FuelPerDrone
	c.resources[ResourceFuel] -= burn
	if c.resources[ResourceFuel] < 0 {
		c.resources[ResourceFuel] = 0
	}
	c.resources[ResourceWaste] += c.cfg.WastePerTurn * float64(len(c.buildings))
}

// Snapshot returns a read-only copy of the current state. The returned
// value shares nothing with the colony's internal storage.
func (c *Colony) Snapshot() Snapshot {
	buildings := make([]Building, len(c.buildings))
	copy(buildings, c.buildings)

	resources := make(map[string]float64, len(c.resources))
	for k, v := range c.resources {
		resources[k] = v
	}

	return Snapshot{
		Turn:      c.turn,
		Buildings: buildings,
		Resources: resources,
	}
}
