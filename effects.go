package chaosnet

import (
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/jakecoffman/cp"
)

// effect - единица спецэффекта, продвигаемая общим тиком
type effect interface {
	// step возвращает false когда эффект истёк и должен быть убран
	step(now time.Time) bool
	// clear завершает эффект без взрывной развязки
	clear()
}

// Effects - реестр активных спецэффектов. Чёрные дыры обновляются
// раньше магнитов, чтобы учёт поглощения имел приоритет. Оба обхода
// линейны по (эффекты × тела) - на песочных масштабах этого достаточно.
type Effects struct {
	world    *World
	feedback *FeedbackListener
	rand     *rand.Rand
	holes    []*BlackHole
	magnets  []*Magnet
}

func createEffects(world *World, feedback *FeedbackListener, r *rand.Rand) *Effects {
	return &Effects{world: world, feedback: feedback, rand: r}
}

func (e *Effects) ready(op string) bool {
	if e == nil || e.world == nil {
		log.Printf("effects: %s ignored, world is not initialized", op)
		return false
	}
	return true
}

// SpawnBlackHole создаёт чёрную дыру в позиции position
func (e *Effects) SpawnBlackHole(position cp.Vector, def BlackHoleDef) *BlackHole {
	if !e.ready("black hole") {
		return nil
	}
	hole := createBlackHole(e.world, e.feedback, e.rand, position, def)
	e.holes = append(e.holes, hole)
	e.feedback.particles(position.X, position.Y, 16, "blackhole")
	return hole
}

// SpawnMagnet создаёт магнит в позиции position; магнит живёт до
// явной очистки - автоматического истечения у него нет
func (e *Effects) SpawnMagnet(position cp.Vector, def MagnetDef) *Magnet {
	if !e.ready("magnet") {
		return nil
	}
	magnet := createMagnet(e.world, e.rand, position, def)
	e.magnets = append(e.magnets, magnet)
	e.feedback.particles(position.X, position.Y, 10, "magnet")
	return magnet
}

// SpawnRagdoll собирает тряпичную куклу как единое целое из шести тел
// и упругих сочленений; дальше части живут как обычные тела мира
func (e *Effects) SpawnRagdoll(position cp.Vector) []*Body {
	if !e.ready("ragdoll") {
		return nil
	}
	parts := buildRagdoll(e.world, e.rand, position)
	e.feedback.particles(position.X, position.Y, 12, "ragdoll")
	return parts
}

// Update продвигает активные эффекты: сначала все чёрные дыры,
// затем все магниты
func (e *Effects) Update(now time.Time) {
	alive := e.holes[:0]
	for _, hole := range e.holes {
		if hole.step(now) {
			alive = append(alive, hole)
		}
	}
	e.holes = alive
	for _, magnet := range e.magnets {
		magnet.step(now)
	}
}

// Clear завершает все активные эффекты без взрывной развязки
func (e *Effects) Clear() {
	for _, hole := range e.holes {
		hole.clear()
	}
	e.holes = nil
	for _, magnet := range e.magnets {
		magnet.clear()
	}
	e.magnets = nil
}

// ActiveBlackHoles возвращает количество активных чёрных дыр
func (e *Effects) ActiveBlackHoles() int { return len(e.holes) }

// ActiveMagnets возвращает количество активных магнитов
func (e *Effects) ActiveMagnets() int { return len(e.magnets) }

func randomUnit(r *rand.Rand) cp.Vector {
	a := r.Float64() * 2 * math.Pi
	return cp.Vector{X: math.Cos(a), Y: math.Sin(a)}
}
