package chaosnet

import (
	"math/rand"
	"time"

	"github.com/jakecoffman/cp"
)

// Интервалы и константы подсистем хаоса.
const (
	defaultFloodInterval   = 2 * time.Second
	defaultFloodIntensity  = 5
	defaultRulesInterval   = 10 * time.Second
	defaultSpawnWidth      = 800.0
	explosionPollInterval  = 100 * time.Millisecond
	explosionSpeedLimit    = 15.0
	chainRescanDelay       = 50 * time.Millisecond
	chainRescanRadiusCoef  = 0.8
	chainTriggerDelayMin   = 100 * time.Millisecond
	chainTriggerDelayRange = 200 * time.Millisecond
)

// ChaosState - флаги подсистем хаоса и имя текущего правила
type ChaosState struct {
	Chaos      bool
	Flood      bool
	Rules      bool
	Explosions bool
	Rule       string
}

// ChaosDef - настройки оркестратора хаоса
type ChaosDef struct {
	FloodInterval  time.Duration
	FloodIntensity int
	RulesInterval  time.Duration
	// SpawnWidth - ширина полосы появления тел при потопе
	SpawnWidth float64
}

type chaosRule struct {
	name  string
	apply func(c *Chaos)
}

// Chaos - оркестратор хаоса: потоп объектов, внезапные правила и
// наблюдатель цепных взрывов, каждый на собственном отменяемом таймере
type Chaos struct {
	world    *World
	tools    *Tools
	registry *Registry
	sched    *scheduler
	feedback *FeedbackListener
	rand     *rand.Rand

	def   ChaosDef
	state ChaosState
	rules []chaosRule
	flood *Handle
	rule  *Handle
	watch *Handle
}

func createChaos(world *World, tools *Tools, registry *Registry, sched *scheduler, feedback *FeedbackListener, r *rand.Rand, def ChaosDef) *Chaos {
	if def.FloodInterval <= 0 {
		def.FloodInterval = defaultFloodInterval
	}
	if def.FloodIntensity <= 0 {
		def.FloodIntensity = defaultFloodIntensity
	}
	if def.RulesInterval <= 0 {
		def.RulesInterval = defaultRulesInterval
	}
	if def.SpawnWidth <= 0 {
		def.SpawnWidth = defaultSpawnWidth
	}
	return &Chaos{
		world:    world,
		tools:    tools,
		registry: registry,
		sched:    sched,
		feedback: feedback,
		rand:     r,
		def:      def,
		rules:    chaosRules(),
	}
}

// State возвращает копию текущего состояния хаоса
func (c *Chaos) State() ChaosState {
	return c.state
}

// EnableChaos запускает все подсистемы хаоса
func (c *Chaos) EnableChaos() {
	c.StartFlood()
	c.StartRules()
	c.StartExplosions()
	c.state.Chaos = true
	c.feedback.status("chaos enabled")
}

// DisableChaos останавливает все подсистемы хаоса
func (c *Chaos) DisableChaos() {
	c.StopFlood()
	c.StopRules()
	c.StopExplosions()
	c.state.Chaos = false
	c.feedback.status("chaos disabled")
}

// ToggleChaos переключает все подсистемы и возвращает новое состояние
func (c *Chaos) ToggleChaos() bool {
	if c.state.Chaos {
		c.DisableChaos()
	} else {
		c.EnableChaos()
	}
	return c.state.Chaos
}

// StartFlood запускает потоп объектов; уже идущий потоп перезапускается
func (c *Chaos) StartFlood() {
	if c.flood != nil {
		c.flood.Stop()
	}
	c.flood = c.sched.Every(c.def.FloodInterval, c.floodTick)
	c.state.Flood = true
}

// StopFlood останавливает потоп объектов
func (c *Chaos) StopFlood() {
	if c.flood != nil {
		c.flood.Stop()
		c.flood = nil
	}
	c.state.Flood = false
}

// StartRules запускает внезапные правила; первое правило применяется
// сразу, дальше по таймеру
func (c *Chaos) StartRules() {
	if c.rule != nil {
		c.rule.Stop()
	}
	c.sched.post(c.applyRandomRule)
	c.rule = c.sched.Every(c.def.RulesInterval, c.applyRandomRule)
	c.state.Rules = true
}

// StopRules останавливает внезапные правила и возвращает гравитацию
// по умолчанию
func (c *Chaos) StopRules() {
	if c.rule != nil {
		c.rule.Stop()
		c.rule = nil
	}
	c.state.Rules = false
	c.state.Rule = ""
	c.world.SetGravity(defaultGravity())
}

// StartExplosions запускает наблюдатель цепных взрывов
func (c *Chaos) StartExplosions() {
	if c.watch != nil {
		c.watch.Stop()
	}
	c.watch = c.sched.Every(explosionPollInterval, c.scanExplosives)
	c.state.Explosions = true
}

// StopExplosions останавливает наблюдатель цепных взрывов
func (c *Chaos) StopExplosions() {
	if c.watch != nil {
		c.watch.Stop()
		c.watch = nil
	}
	c.state.Explosions = false
}

// Close останавливает все подсистемы
func (c *Chaos) Close() {
	c.DisableChaos()
}

func (c *Chaos) floodTick() {
	types := c.registry.Types()
	if len(types) == 0 {
		return
	}
	for i := 0; i < c.def.FloodIntensity; i++ {
		t := types[c.rand.Intn(len(types))]
		if a, ok := c.registry.Archetype(t); ok && a.Static {
			continue
		}
		opts := SpawnOptions{
			Position: cp.Vector{
				X: c.rand.Float64() * c.def.SpawnWidth,
				Y: -(50 + c.rand.Float64()*150),
			},
			Velocity: cp.Vector{
				X: (c.rand.Float64()*2 - 1) * 80,
				Y: 50 + c.rand.Float64()*100,
			},
		}
		c.tools.Spawn(t, opts)
	}
}

func (c *Chaos) applyRandomRule() {
	rule := c.rules[c.rand.Intn(len(c.rules))]
	rule.apply(c)
	c.state.Rule = rule.name
	c.feedback.status("rule: " + rule.name)
	c.feedback.shake(5)
}

// scanExplosives взрывает разогнавшиеся взрывоопасные тела
func (c *Chaos) scanExplosives() {
	for _, b := range c.world.Bodies() {
		if !b.Explosive || b.Static {
			continue
		}
		if b.Speed() > explosionSpeedLimit {
			c.triggerExplosion(b.ID)
		}
	}
}

// triggerExplosion взрывает тело по идентификатору. Тело удаляется из
// мира до отложенного пересканирования, поэтому взорваться дважды оно
// не может, сколь бы глубокой ни была цепочка.
func (c *Chaos) triggerExplosion(id string) {
	b := c.world.Get(id)
	if b == nil || !b.Explosive {
		return
	}
	pos := b.Position()
	force := b.ExplosionForce
	if force <= 0 {
		force = defaultExplodeForce
	}
	radius := b.ExplosionRadius
	if radius <= 0 {
		radius = defaultExplodeRadius
	}
	c.tools.Explode(pos, force, radius)
	c.world.RemoveBody(b)
	c.sched.After(chainRescanDelay, func() {
		c.rescanChain(pos, radius)
	})
}

// rescanChain ищет уцелевшие взрывоопасные тела рядом с эпицентром и
// взводит каждому независимую случайную задержку
func (c *Chaos) rescanChain(center cp.Vector, radius float64) {
	for _, b := range c.world.Bodies() {
		if !b.Explosive || b.Static {
			continue
		}
		if b.Position().Distance(center) > radius*chainRescanRadiusCoef {
			continue
		}
		id := b.ID
		delay := chainTriggerDelayMin + time.Duration(c.rand.Float64()*float64(chainTriggerDelayRange))
		c.sched.After(delay, func() {
			c.triggerExplosion(id)
		})
	}
}

func chaosRules() []chaosRule {
	return []chaosRule{
		{name: "gravity-flip", apply: func(c *Chaos) {
			g := c.world.Gravity()
			g.Y = -g.Y
			c.world.SetGravity(g)
		}},
		{name: "gravity-sideways", apply: func(c *Chaos) {
			g := defaultGravity()
			x := g.Y
			if c.rand.Float64() < 0.5 {
				x = -x
			}
			c.world.SetGravity(cp.Vector{X: x, Y: 0})
		}},
		{name: "gravity-low", apply: func(c *Chaos) {
			g := defaultGravity()
			c.world.SetGravity(cp.Vector{X: 0, Y: g.Y * 0.2})
		}},
		{name: "gravity-heavy", apply: func(c *Chaos) {
			g := defaultGravity()
			c.world.SetGravity(cp.Vector{X: 0, Y: g.Y * 3})
		}},
		{name: "spin-all", apply: func(c *Chaos) {
			for _, b := range c.world.Bodies() {
				if b.Static {
					continue
				}
				c.world.SetAngularVelocity(b, (c.rand.Float64()*2-1)*10)
			}
		}},
		{name: "explode-random", apply: func(c *Chaos) {
			var candidates []*Body
			for _, b := range c.world.Bodies() {
				if !b.Static {
					candidates = append(candidates, b)
				}
			}
			if len(candidates) == 0 {
				return
			}
			b := candidates[c.rand.Intn(len(candidates))]
			c.tools.Explode(b.Position(), 0, 0)
		}},
		{name: "floaty-all", apply: func(c *Chaos) {
			for _, b := range c.world.Bodies() {
				if !b.Static {
					b.Floaty = true
				}
			}
		}},
		{name: "bouncy-all", apply: func(c *Chaos) {
			for _, b := range c.world.Bodies() {
				for _, shape := range b.shapes {
					shape.SetElasticity(0.95)
				}
			}
		}},
		{name: "frictionless-all", apply: func(c *Chaos) {
			for _, b := range c.world.Bodies() {
				for _, shape := range b.shapes {
					shape.SetFriction(0)
				}
			}
		}},
		{name: "launch-all", apply: func(c *Chaos) {
			for _, b := range c.world.Bodies() {
				if b.Static {
					continue
				}
				c.world.AddVelocity(b, cp.Vector{
					X: (c.rand.Float64()*2 - 1) * 40,
					Y: -(200 + c.rand.Float64()*100),
				})
			}
		}},
	}
}
