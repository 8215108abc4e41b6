package chaosnet

import (
	"sort"
	"time"

	"github.com/jakecoffman/cp"
)

const (
	defaultTimeScale = 1.0
	// floatyLift - множитель противогравитации для "лёгких" тел
	floatyLift = 1.3
	// minBodyMass - нижняя граница массы, чтобы мелкие тела не взрывали решатель
	minBodyMass = 0.2
	massScale   = 1.0 / 1000.0
)

func defaultGravity() cp.Vector {
	return cp.Vector{X: 0, Y: 300}
}

// ShapeKind - вид формы тела
type ShapeKind string

// Поддерживаемые формы.
const (
	ShapeCircle ShapeKind = "circle"
	ShapeBox    ShapeKind = "box"
)

// BodyDef - определение тела
type BodyDef struct {
	ID              string
	Type            string
	Label           string
	Shape           ShapeKind
	Radius          float64
	Width           float64
	Height          float64
	Position        cp.Vector
	Angle           float64
	Velocity        cp.Vector
	AngularVelocity float64
	Friction        float64
	Restitution     float64
	Density         float64
	Static          bool
	Explosive       bool
	Floaty          bool
	Sensor          bool
	ExplosionForce  float64
	ExplosionRadius float64
	Scale           float64
}

// Body - тело мира: прикладной идентификатор, флаги поведения и
// накопленный масштаб поверх тела физического движка
type Body struct {
	ID              string
	Type            string
	Label           string
	Static          bool
	Explosive       bool
	Floaty          bool
	ExplosionForce  float64
	ExplosionRadius float64

	def    BodyDef
	scale  float64
	body   *cp.Body
	shapes []*cp.Shape
	joints []*joint
}

// Position возвращает позицию тела
func (b *Body) Position() cp.Vector { return b.body.Position() }

// Velocity возвращает линейную скорость тела
func (b *Body) Velocity() cp.Vector { return b.body.Velocity() }

// Angle возвращает угол тела
func (b *Body) Angle() float64 { return b.body.Angle() }

// AngularVelocity возвращает угловую скорость тела
func (b *Body) AngularVelocity() float64 { return b.body.AngularVelocity() }

// Speed возвращает модуль линейной скорости
func (b *Body) Speed() float64 { return b.body.Velocity().Length() }

// Scale возвращает накопленный масштаб тела
func (b *Body) Scale() float64 { return b.scale }

type joint struct {
	constraint *cp.Constraint
	a, b       *Body
	removed    bool
}

// WorldDef - определение мира
type WorldDef struct {
	// Width и Height задают статические границы; нулевые значения - мир без границ
	Width, Height float64
	Gravity       *cp.Vector
}

// World - фасад над физическим движком: перечисление, создание и
// удаление тел, силы, скорости, гравитация и масштаб времени
type World struct {
	space     *cp.Space
	store     map[string]*Body
	gravity   cp.Vector
	timeScale float64
}

// CreateWorld создаёт мир
func CreateWorld(def WorldDef) *World {
	g := defaultGravity()
	if def.Gravity != nil {
		g = *def.Gravity
	}
	space := cp.NewSpace()
	space.SetGravity(g)
	w := &World{
		space:     space,
		store:     make(map[string]*Body),
		gravity:   g,
		timeScale: defaultTimeScale,
	}
	if def.Width > 0 && def.Height > 0 {
		w.createBounds(def.Width, def.Height)
	}
	return w
}

func (w *World) createBounds(width, height float64) {
	walls := [][2]cp.Vector{
		{{X: 0, Y: height}, {X: width, Y: height}},
		{{X: 0, Y: 0}, {X: 0, Y: height}},
		{{X: width, Y: 0}, {X: width, Y: height}},
	}
	for _, wall := range walls {
		seg := cp.NewSegment(w.space.StaticBody, wall[0], wall[1], 4)
		seg.SetFriction(0.6)
		seg.SetElasticity(0.4)
		w.space.AddShape(seg)
	}
}

// Bodies возвращает тела мира в стабильном порядке
func (w *World) Bodies() []*Body {
	ids := make([]string, 0, len(w.store))
	for id := range w.store {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	bodies := make([]*Body, len(ids))
	for i, id := range ids {
		bodies[i] = w.store[id]
	}
	return bodies
}

// Get возвращает тело по идентификатору или nil
func (w *World) Get(id string) *Body {
	return w.store[id]
}

// Count возвращает количество тел
func (w *World) Count() int { return len(w.store) }

// CreateBody создаёт тело по определению и регистрирует его в мире
func (w *World) CreateBody(def BodyDef) *Body {
	if def.ID == "" {
		def.ID = newBodyID()
	}
	if def.Scale <= 0 {
		def.Scale = 1
	}
	if def.Density <= 0 {
		def.Density = 1
	}
	b := &Body{
		ID:              def.ID,
		Type:            def.Type,
		Label:           def.Label,
		Static:          def.Static,
		Explosive:       def.Explosive,
		Floaty:          def.Floaty,
		ExplosionForce:  def.ExplosionForce,
		ExplosionRadius: def.ExplosionRadius,
		def:             def,
		scale:           def.Scale,
	}
	if def.Static {
		b.body = cp.NewStaticBody()
	} else {
		mass, moment := bodyMass(def, def.Scale)
		b.body = cp.NewBody(mass, moment)
	}
	b.body.SetPosition(def.Position)
	b.body.SetAngle(def.Angle)
	b.body.UserData = b
	w.space.AddBody(b.body)
	w.buildShapes(b, def.Scale)
	if !def.Static {
		b.body.SetVelocityVector(def.Velocity)
		b.body.SetAngularVelocity(def.AngularVelocity)
	}
	w.store[b.ID] = b
	return b
}

func bodyMass(def BodyDef, scale float64) (mass, moment float64) {
	var area float64
	switch def.Shape {
	case ShapeBox:
		area = def.Width * scale * def.Height * scale
	default:
		r := def.Radius * scale
		area = 3.14159265 * r * r
	}
	mass = area * def.Density * massScale
	if mass < minBodyMass {
		mass = minBodyMass
	}
	switch def.Shape {
	case ShapeBox:
		moment = cp.MomentForBox(mass, def.Width*scale, def.Height*scale)
	default:
		moment = cp.MomentForCircle(mass, 0, def.Radius*scale, cp.Vector{})
	}
	return mass, moment
}

func (w *World) buildShapes(b *Body, scale float64) {
	var shape *cp.Shape
	switch b.def.Shape {
	case ShapeBox:
		shape = cp.NewBox(b.body, b.def.Width*scale, b.def.Height*scale, 0)
	default:
		shape = cp.NewCircle(b.body, b.def.Radius*scale, cp.Vector{})
	}
	shape.SetFriction(b.def.Friction)
	shape.SetElasticity(b.def.Restitution)
	if b.def.Sensor {
		shape.SetSensor(true)
	}
	w.space.AddShape(shape)
	b.shapes = []*cp.Shape{shape}
}

// Rescale пересобирает форму тела под новый накопленный масштаб,
// сохраняя позицию и динамику
func (w *World) Rescale(b *Body, scale float64) {
	for _, shape := range b.shapes {
		w.space.RemoveShape(shape)
	}
	b.shapes = nil
	if !b.Static {
		mass, moment := bodyMass(b.def, scale)
		b.body.SetMass(mass)
		b.body.SetMoment(moment)
	}
	w.buildShapes(b, scale)
	b.scale = scale
}

// RemoveBody удаляет тело, его формы и связанные сочленения из мира
func (w *World) RemoveBody(b *Body) {
	if b == nil {
		return
	}
	if _, ok := w.store[b.ID]; !ok {
		return
	}
	for _, j := range b.joints {
		if j.removed {
			continue
		}
		j.removed = true
		w.space.RemoveConstraint(j.constraint)
	}
	b.joints = nil
	for _, shape := range b.shapes {
		w.space.RemoveShape(shape)
	}
	b.shapes = nil
	w.space.RemoveBody(b.body)
	delete(w.store, b.ID)
}

// Clear удаляет все тела мира; статические границы остаются
func (w *World) Clear() {
	for _, b := range w.Bodies() {
		w.RemoveBody(b)
	}
}

// Connect соединяет два тела сочленением
func (w *World) Connect(a, b *Body, constraint *cp.Constraint) {
	j := &joint{constraint: constraint, a: a, b: b}
	a.joints = append(a.joints, j)
	b.joints = append(b.joints, j)
	w.space.AddConstraint(constraint)
}

// ApplyForce применяет импульс к центру тела
func (w *World) ApplyForce(b *Body, v cp.Vector) {
	if b.Static {
		return
	}
	b.body.ApplyImpulseAtWorldPoint(v, b.body.Position())
}

// SetVelocity устанавливает линейную скорость тела
func (w *World) SetVelocity(b *Body, v cp.Vector) {
	b.body.SetVelocityVector(v)
}

// AddVelocity добавляет вектор к текущей скорости тела
func (w *World) AddVelocity(b *Body, v cp.Vector) {
	b.body.SetVelocityVector(b.body.Velocity().Add(v))
}

// SetAngularVelocity устанавливает угловую скорость тела
func (w *World) SetAngularVelocity(b *Body, omega float64) {
	b.body.SetAngularVelocity(omega)
}

// SetPosition телепортирует тело
func (w *World) SetPosition(b *Body, p cp.Vector) {
	b.body.SetPosition(p)
}

// SetGravity устанавливает глобальную гравитацию
func (w *World) SetGravity(g cp.Vector) {
	w.gravity = g
	w.space.SetGravity(g)
}

// Gravity возвращает текущую гравитацию
func (w *World) Gravity() cp.Vector { return w.gravity }

// SetTimeScale устанавливает масштаб времени симуляции
func (w *World) SetTimeScale(scale float64) {
	if scale <= 0 {
		return
	}
	w.timeScale = scale
}

// TimeScale возвращает масштаб времени
func (w *World) TimeScale() float64 { return w.timeScale }

// BodyAt возвращает первое нестатическое тело, границы которого
// содержат точку, либо nil
func (w *World) BodyAt(p cp.Vector) *Body {
	for _, b := range w.Bodies() {
		if b.Static {
			continue
		}
		for _, shape := range b.shapes {
			if shape.CacheBB().ContainsVect(p) {
				return b
			}
		}
	}
	return nil
}

// Step продвигает симуляцию на d с учётом масштаба времени
func (w *World) Step(d time.Duration) {
	dt := d.Seconds() * w.timeScale
	if dt <= 0 {
		return
	}
	for _, b := range w.store {
		if b.Floaty && !b.Static {
			lift := w.gravity.Mult(-floatyLift * dt)
			b.body.SetVelocityVector(b.body.Velocity().Add(lift))
		}
	}
	w.space.Step(dt)
}
