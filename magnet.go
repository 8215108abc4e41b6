package chaosnet

import (
	"math"
	"math/rand"
	"time"

	"github.com/jakecoffman/cp"
)

// Константы магнита.
const (
	defaultMagnetRange = 400.0
	magnetSensorRadius = 12.0
	// magnetDeadZone - мёртвая зона вокруг магнита, где поле не действует
	magnetDeadZone   = 30.0
	magnetClamp      = 5.0
	magnetScale      = 200.0
	magnetFactor     = 0.25
	magnetSpinJitter = 0.2
)

// Полярности магнита.
const (
	PolarityAttract = 1.0
	PolarityRepel   = -1.0
)

// MagnetDef - параметры магнита
type MagnetDef struct {
	Range    float64
	Polarity float64
}

// Magnet - постоянное поле притяжения или отталкивания;
// в отличие от чёрной дыры времени жизни у магнита нет
type Magnet struct {
	ID string

	world    *World
	rand     *rand.Rand
	body     *Body
	reach    float64
	polarity float64
}

func createMagnet(world *World, r *rand.Rand, position cp.Vector, def MagnetDef) *Magnet {
	if def.Range <= 0 {
		def.Range = defaultMagnetRange
	}
	if def.Polarity == 0 {
		def.Polarity = PolarityAttract
	}
	body := world.CreateBody(BodyDef{
		Type:     "magnet",
		Label:    "Magnet",
		Shape:    ShapeCircle,
		Radius:   magnetSensorRadius,
		Position: position,
		Static:   true,
		Sensor:   true,
	})
	return &Magnet{
		ID:       body.ID,
		world:    world,
		rand:     r,
		body:     body,
		reach:    def.Range,
		polarity: def.Polarity,
	}
}

// Polarity возвращает полярность магнита
func (m *Magnet) Polarity() float64 { return m.polarity }

func (m *Magnet) step(now time.Time) bool {
	center := m.body.Position()
	for _, b := range m.world.Bodies() {
		if b.Static {
			continue
		}
		delta := center.Sub(b.Position())
		d := delta.Length()
		if d <= magnetDeadZone || d > m.reach {
			continue
		}
		pull := math.Min(magnetClamp, magnetScale/d) * m.polarity * magnetFactor
		m.world.AddVelocity(b, delta.Normalize().Mult(pull))
		spin := (m.rand.Float64()*2 - 1) * magnetSpinJitter
		m.world.SetAngularVelocity(b, b.AngularVelocity()+spin)
	}
	return true
}

func (m *Magnet) clear() {
	m.world.RemoveBody(m.body)
}
