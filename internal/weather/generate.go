package weather

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/stat/distuv"
)

// Value ranges of the synthetic feed.
const (
	TemperatureMin = -50.0
	TemperatureMax = 50.0
	PressureMin    = 100.0
	PressureMax    = 500.0
	WindSpeedMin   = 0.0
	WindSpeedMax   = 5.0

	// roundDigits is the precision of temperature and pressure on the wire.
	roundDigits = 2
)

// Generator draws random samples for a fixed tower layout.
type Generator struct {
	layout []TowerSpec

	temperature distuv.Uniform
	pressure    distuv.Uniform
	windAngle   distuv.Uniform
	windSpeed   distuv.Uniform
}

// NewGenerator returns a Generator for layout. A nil layout means
// DefaultLayout.
func NewGenerator(layout []TowerSpec) *Generator {
	if layout == nil {
		layout = DefaultLayout()
	}
	return &Generator{
		layout:      layout,
		temperature: distuv.Uniform{Min: TemperatureMin, Max: TemperatureMax},
		pressure:    distuv.Uniform{Min: PressureMin, Max: PressureMax},
		windAngle:   distuv.Uniform{Min: 0, Max: 360},
		windSpeed:   distuv.Uniform{Min: WindSpeedMin, Max: WindSpeedMax},
	}
}

// WindVector draws a heading in degrees and a speed, and returns the
// horizontal decomposition together with the speed.
func (g *Generator) WindVector() (Vector, float64) {
	angle := g.windAngle.Rand() * math.Pi / 180
	speed := g.windSpeed.Rand()
	return Vector{
		X: speed * math.Cos(angle),
		Y: 0,
		Z: speed * math.Sin(angle),
	}, speed
}

// Pressure draws a pressure rounded to two decimals.
func (g *Generator) Pressure() float64 {
	return scalar.Round(g.pressure.Rand(), roundDigits)
}

// Temperature draws a temperature rounded to two decimals.
func (g *Generator) Temperature() float64 {
	return scalar.Round(g.temperature.Rand(), roundDigits)
}

// Sample draws one complete reading.
func (g *Generator) Sample() Sample {
	wind, speed := g.WindVector()
	return Sample{
		Temperature: g.Temperature(),
		Pressure:    g.Pressure(),
		Wind:        wind,
		WindSpeed:   speed,
	}
}

// Snapshot builds a fresh snapshot covering every tower and level of the
// layout.
func (g *Generator) Snapshot() Snapshot {
	towers := make([]Tower, 0, len(g.layout))
	for _, spec := range g.layout {
		levels := make([]LevelSample, 0, len(spec.Levels))
		for _, level := range spec.Levels {
			levels = append(levels, LevelSample{Level: level, Sample: g.Sample()})
		}
		towers = append(towers, Tower{ID: spec.ID, Levels: levels})
	}
	return Snapshot{Towers: towers}
}
