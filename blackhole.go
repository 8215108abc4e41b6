package chaosnet

import (
	"math"
	"math/rand"
	"time"

	"github.com/jakecoffman/cp"
)

// Константы чёрной дыры.
const (
	defaultHoleLifetime = 6 * time.Second
	defaultPullRadius   = 250.0
	holeSensorRadius    = 14.0
	// holeCenterThreshold - дистанция полного захвата: скорость тела гасится
	holeCenterThreshold = 20.0
	// holeConsumeRadius - дистанция, с которой тело считается поглощённым
	holeConsumeRadius = 80.0
	holeSpinRadius    = 250.0
	holePullClamp     = 8.0
	holePullScale     = 400.0
	holePullFactor    = 0.3
	// Развязка: 30% радиального направления, 70% случайного,
	// чтобы выброс не был чистым радиальным залпом
	holeExpelRadialMix  = 0.3
	holeExpelForce      = 18.0
	holeExpelConsumed   = 30.0
	holeTeleportMin     = 50.0
	holeTeleportRange   = 100.0
	holeSpinImpulse     = 0.5
	holeExpelRadiusCoef = 2.0
)

// BlackHoleDef - параметры чёрной дыры
type BlackHoleDef struct {
	PullRadius float64
	Lifetime   time.Duration
}

// BlackHole - поле притяжения с временем жизни: created -> active ->
// expired (взрыв) либо manually-cleared
type BlackHole struct {
	ID string

	world      *World
	feedback   *FeedbackListener
	rand       *rand.Rand
	body       *Body
	pullRadius float64
	lifetime   time.Duration
	created    time.Time
	consumed   map[string]bool
	done       bool
}

func createBlackHole(world *World, feedback *FeedbackListener, r *rand.Rand, position cp.Vector, def BlackHoleDef) *BlackHole {
	if def.PullRadius <= 0 {
		def.PullRadius = defaultPullRadius
	}
	if def.Lifetime <= 0 {
		def.Lifetime = defaultHoleLifetime
	}
	body := world.CreateBody(BodyDef{
		Type:     "blackhole",
		Label:    "Black hole",
		Shape:    ShapeCircle,
		Radius:   holeSensorRadius,
		Position: position,
		Static:   true,
		Sensor:   true,
	})
	return &BlackHole{
		ID:         body.ID,
		world:      world,
		feedback:   feedback,
		rand:       r,
		body:       body,
		pullRadius: def.PullRadius,
		lifetime:   def.Lifetime,
		created:    time.Now(),
		consumed:   make(map[string]bool),
	}
}

// Consumed возвращает true если тело с идентификатором id поглощено
func (h *BlackHole) Consumed(id string) bool {
	return h.consumed[id]
}

// Detonate взрывает чёрную дыру досрочно
func (h *BlackHole) Detonate() {
	if h.done {
		return
	}
	h.explode()
}

func (h *BlackHole) step(now time.Time) bool {
	if h.done {
		return false
	}
	if now.Sub(h.created) >= h.lifetime {
		h.explode()
		return false
	}
	center := h.body.Position()
	for _, b := range h.world.Bodies() {
		if b.Static {
			continue
		}
		delta := center.Sub(b.Position())
		d := delta.Length()
		if d <= holeCenterThreshold {
			h.world.SetVelocity(b, cp.Vector{})
			h.consumed[b.ID] = true
			continue
		}
		// Добавление скорости вместо честной силы: тяга выглядит как
		// ускорение без настоящего интегрирования поля
		pull := math.Min(holePullClamp, holePullScale/d) * holePullFactor
		h.world.AddVelocity(b, delta.Normalize().Mult(pull))
		if d <= holeSpinRadius {
			spin := (h.rand.Float64()*2 - 1) * holeSpinImpulse
			h.world.SetAngularVelocity(b, b.AngularVelocity()+spin)
		}
		if d <= holeConsumeRadius {
			h.consumed[b.ID] = true
		}
	}
	return true
}

// explode выбрасывает близкие тела; поглощённые предварительно
// телепортируются наружу, чтобы не слипаться в точке сингулярности
func (h *BlackHole) explode() {
	center := h.body.Position()
	for _, b := range h.world.Bodies() {
		if b.Static {
			continue
		}
		pos := b.Position()
		if pos.Distance(center) > h.pullRadius*holeExpelRadiusCoef {
			continue
		}
		radial := pos.Sub(center)
		if radial.Length() == 0 {
			radial = randomUnit(h.rand)
		}
		dir := radial.Normalize().Mult(holeExpelRadialMix).
			Add(randomUnit(h.rand).Mult(1 - holeExpelRadialMix)).Normalize()
		if h.consumed[b.ID] {
			offset := randomUnit(h.rand).Mult(holeTeleportMin + h.rand.Float64()*holeTeleportRange)
			h.world.SetPosition(b, pos.Add(offset))
			h.world.SetVelocity(b, dir.Mult(holeExpelConsumed))
		} else {
			h.world.AddVelocity(b, dir.Mult(holeExpelForce))
		}
	}
	h.feedback.particles(center.X, center.Y, 32, "blackhole-burst")
	h.feedback.shake(8)
	h.world.RemoveBody(h.body)
	h.done = true
}

func (h *BlackHole) clear() {
	if h.done {
		return
	}
	h.world.RemoveBody(h.body)
	h.done = true
}
