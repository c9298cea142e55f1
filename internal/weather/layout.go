package weather

import "slices"

// TowerSpec names a tower and the levels it reports at.
type TowerSpec struct {
	ID     int
	Levels []int
}

var (
	shortTowerLevels = []int{2, 4, 10, 35}
	tallTowerLevels  = []int{2, 4, 10, 35, 50}
)

// DefaultLayout returns the fixed five-tower installation: towers 0-2 report
// at shortTowerLevels, towers 3-4 also report at 50.
// Each call returns a fresh copy.
func DefaultLayout() []TowerSpec {
	layout := make([]TowerSpec, 0, 5)
	for id := range 5 {
		levels := shortTowerLevels
		if id >= 3 {
			levels = tallTowerLevels
		}
		layout = append(layout, TowerSpec{ID: id, Levels: slices.Clone(levels)})
	}
	return layout
}
