package chaosnet

import (
	"math"
	"math/rand"

	"github.com/jakecoffman/cp"
)

// Идентификаторы инструментов.
const (
	ToolSpawn   = "spawn"
	ToolPush    = "push"
	ToolExplode = "explode"
	ToolGravity = "gravity"
	ToolScale   = "scale"
)

// Параметры инструментов по умолчанию и границы масштаба.
const (
	defaultPushForce     = 12.0
	defaultPushRadius    = 140.0
	defaultExplodeForce  = 24.0
	defaultExplodeRadius = 180.0
	growFactor           = 1.5
	minBodyScale         = 0.3
	maxBodyScale         = 3.0
	scaleEpsilon         = 1e-9
)

// ToolParams - параметры вызова инструмента
type ToolParams struct {
	ObjectType string
	Position   cp.Vector
	Direction  cp.Vector
	Force      float64
	Radius     float64
	Grow       bool
	Spawn      SpawnOptions
}

// ToolResult - результат применения инструмента; nil означает,
// что инструмент ничего не сделал
type ToolResult struct {
	Tool       string
	BodyID     string
	ObjectType string
	Position   Point
	Force      float64
	Radius     float64
	Affected   int
	Grow       bool
	Scale      float64
	Gravity    Point
}

// Tools - исполнитель инструментов: переводит дискретное намерение
// игрока в изменения мира и результат для репликации
type Tools struct {
	world    *World
	registry *Registry
	feedback *FeedbackListener
	rand     *rand.Rand
}

func createTools(world *World, registry *Registry, feedback *FeedbackListener, r *rand.Rand) *Tools {
	return &Tools{world: world, registry: registry, feedback: feedback, rand: r}
}

// Execute применяет инструмент tool с параметрами p
func (t *Tools) Execute(tool string, p ToolParams) *ToolResult {
	switch tool {
	case ToolSpawn:
		opts := p.Spawn
		opts.Position = p.Position
		return t.Spawn(p.ObjectType, opts)
	case ToolPush:
		return t.Push(p.Position, p.Direction, p.Force)
	case ToolExplode:
		return t.Explode(p.Position, p.Force, p.Radius)
	case ToolGravity:
		return t.FlipGravity()
	case ToolScale:
		return t.Scale(p.Position, p.Grow)
	}
	return nil
}

// Spawn создаёт тело архетипа objectType
func (t *Tools) Spawn(objectType string, opts SpawnOptions) *ToolResult {
	body := t.registry.Create(objectType, opts)
	if body == nil {
		return nil
	}
	pos := body.Position()
	t.feedback.particles(pos.X, pos.Y, 8, "spawn")
	return &ToolResult{
		Tool:       ToolSpawn,
		BodyID:     body.ID,
		ObjectType: objectType,
		Position:   pt(pos),
	}
}

// Push толкает тела вокруг позиции в направлении direction с линейным
// затуханием силы; без задетых тел не делает ничего
func (t *Tools) Push(position, direction cp.Vector, force float64) *ToolResult {
	if force <= 0 {
		force = defaultPushForce
	}
	radius := defaultPushRadius
	dir := direction
	if dir.Length() == 0 {
		return nil
	}
	dir = dir.Normalize()
	affected := 0
	for _, b := range t.world.Bodies() {
		if b.Static {
			continue
		}
		d := b.Position().Distance(position)
		if d >= radius {
			continue
		}
		falloff := 1 - d/radius
		t.world.AddVelocity(b, dir.Mult(force*falloff))
		affected++
	}
	if affected == 0 {
		return nil
	}
	t.feedback.particles(position.X, position.Y, 6, "push")
	return &ToolResult{
		Tool:     ToolPush,
		Position: pt(position),
		Force:    force,
		Radius:   radius,
		Affected: affected,
	}
}

// Explode разбрасывает тела вокруг позиции радиальной силой с линейным
// затуханием и случайным вращением; обратная связь выдаётся всегда
func (t *Tools) Explode(position cp.Vector, force, radius float64) *ToolResult {
	if force <= 0 {
		force = defaultExplodeForce
	}
	if radius <= 0 {
		radius = defaultExplodeRadius
	}
	affected := 0
	for _, b := range t.world.Bodies() {
		if b.Static {
			continue
		}
		d := b.Position().Distance(position)
		if d >= radius {
			continue
		}
		falloff := 1 - d/radius
		dir := b.Position().Sub(position)
		if d == 0 {
			dir = t.randomDirection()
		}
		t.world.AddVelocity(b, dir.Normalize().Mult(force*falloff))
		spin := (t.rand.Float64()*2 - 1) * force * falloff * 0.05
		t.world.SetAngularVelocity(b, b.AngularVelocity()+spin)
		affected++
	}
	t.feedback.particles(position.X, position.Y, 24, "explosion")
	t.feedback.shake(math.Min(10, force/3))
	return &ToolResult{
		Tool:     ToolExplode,
		Position: pt(position),
		Force:    force,
		Radius:   radius,
		Affected: affected,
	}
}

// FlipGravity меняет знак вертикальной составляющей гравитации
func (t *Tools) FlipGravity() *ToolResult {
	g := t.world.Gravity()
	g.Y = -g.Y
	t.world.SetGravity(g)
	t.feedback.status("gravity flipped")
	t.feedback.shake(3)
	return &ToolResult{Tool: ToolGravity, Gravity: pt(g)}
}

// Scale масштабирует тело под курсором; выход накопленного масштаба за
// границы отклоняет операцию целиком
func (t *Tools) Scale(position cp.Vector, grow bool) *ToolResult {
	b := t.world.BodyAt(position)
	if b == nil {
		return nil
	}
	factor := growFactor
	if !grow {
		factor = 1 / growFactor
	}
	scale := b.scale * factor
	if scale < minBodyScale-scaleEpsilon || scale > maxBodyScale+scaleEpsilon {
		return nil
	}
	t.world.Rescale(b, scale)
	pos := b.Position()
	t.feedback.particles(pos.X, pos.Y, 4, "scale")
	return &ToolResult{
		Tool:     ToolScale,
		BodyID:   b.ID,
		Position: pt(position),
		Grow:     grow,
		Scale:    scale,
	}
}

func (t *Tools) randomDirection() cp.Vector {
	a := t.rand.Float64() * 2 * math.Pi
	return cp.Vector{X: math.Cos(a), Y: math.Sin(a)}
}
