// Package sim defines the read-only simulation view consumed by the
// campaign engine, plus a small deterministic demo colony that produces it.
// The engine never holds a live reference to mutable simulation state;
// everything it sees arrives as a Snapshot taken at the start of a turn.
package sim

// Well-known resource names used by the demo colony and default campaign.
const (
	ResourceFuel      = "fuel"
	ResourceMaterials = "materials"
	ResourceWaste     = "waste"
)

// Well-known building types.
const (
	BuildingRefinery = "refinery"
	BuildingStorage  = "storage"
	BuildingDronePad = "drone_pad"
)

// Production modes a building can run in.
const (
	ModeFuel      = "fuel"
	ModeMaterials = "materials"
)

// Building describes one constructed building at snapshot time.
type Building struct {
	Type   string // e.g. "refinery"
	Mode   string // production mode, empty if not applicable
	Active bool   // false while paused or unpowered
}

// Snapshot is a consistent read of the simulation taken once per turn.
// Condition evaluation must treat it as immutable.
type Snapshot struct {
	Turn      int
	Buildings []Building
	Resources map[string]float64
}

// Resource returns the stored amount of a named resource, 0 if unknown.
func (s Snapshot) Resource(name string) float64 {
	return s.Resources[name]
}

// CountBuildings counts buildings matching type and, when mode is non-empty,
// production mode.
func (s Snapshot) CountBuildings(buildingType, mode string) int {
	n := 0
	for _, b := range s.Buildings {
		if b.Type != buildingType {
			continue
		}
		if mode != "" && b.Mode != mode {
			continue
		}
		n++
	}
	return n
}

// CountActive counts buildings matching type/mode that are currently active.
func (s Snapshot) CountActive(buildingType, mode string) int {
	n := 0
	for _, b := range s.Buildings {
		if b.Type != buildingType {
			continue
		}
		if mode != "" && b.Mode != mode {
			continue
		}
		if b.Active {
			n++
		}
	}
	return n
}

// TotalBuildings returns the number of buildings of every type.
func (s Snapshot) TotalBuildings() int {
	return len(s.Buildings)
}
