package chaosnet

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/jakecoffman/cp"
)

const defaultStepDuration = time.Second / 60

// SessionDef - определение сессии
type SessionDef struct {
	// ID пира; пустое значение берётся из транспорта или генерируется
	ID        string
	Transport Transport
	Feedback  *FeedbackListener
	World     WorldDef
	Chaos     ChaosDef
	Step      time.Duration
	// Seed локального генератора случайностей; ноль - от часов
	Seed int64
}

// Session - явный контекст песочницы: владеет миром, реестром,
// инструментами, хаосом, эффектами и репликацией. Все изменения мира
// происходят в потоке Loop; извне работу передают через Do.
type Session struct {
	World    *World
	Registry *Registry
	Tools    *Tools
	Chaos    *Chaos
	Effects  *Effects

	id         string
	transport  Transport
	feedback   *FeedbackListener
	sched      *scheduler
	replicator *Replicator
	handlers   EventHandlers
	rand       *rand.Rand
	step       time.Duration
	done       chan struct{}
	closeOnce  sync.Once
}

// CreateSession создаёт сессию; транспорт nil означает одиночный режим
func CreateSession(def SessionDef) (*Session, error) {
	id := def.ID
	if id == "" {
		if def.Transport != nil {
			id = def.Transport.ID()
		} else {
			id = newPeerID()
		}
	}
	seed := def.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(seed))
	step := def.Step
	if step <= 0 {
		step = defaultStepDuration
	}
	world := CreateWorld(def.World)
	registry, err := CreateRegistry(world)
	if err != nil {
		return nil, fmt.Errorf("createSession: %s", err)
	}
	tools := createTools(world, registry, def.Feedback, r)
	sched := createScheduler(256)
	s := &Session{
		World:      world,
		Registry:   registry,
		Tools:      tools,
		Chaos:      createChaos(world, tools, registry, sched, def.Feedback, r, def.Chaos),
		Effects:    createEffects(world, def.Feedback, r),
		id:         id,
		transport:  def.Transport,
		feedback:   def.Feedback,
		sched:      sched,
		replicator: createReplicator(id, def.Transport),
		rand:       r,
		step:       step,
		done:       make(chan struct{}),
	}
	s.handlers = EventHandlers{
		OnSpawn:   s.onSpawn,
		OnForce:   s.onForce,
		OnTool:    s.onTool,
		OnGravity: s.onGravity,
		OnCursor:  s.onCursor,
	}
	return s, nil
}

// ID возвращает идентификатор пира
func (s *Session) ID() string { return s.id }

// Loop - основной цикл сессии: сетевые сообщения, задачи планировщика
// и шаг симуляции исполняются в одном потоке
func (s *Session) Loop() {
	stepTicker := time.NewTicker(s.step)
	defer stepTicker.Stop()
	past := time.Now()
	var incoming <-chan rawMessage
	if s.transport != nil {
		incoming = s.transport.Messages()
	}
	for {
		select {
		case <-s.done:
			return
		case m, ok := <-incoming:
			if !ok {
				incoming = nil
				s.feedback.status("connection lost, continuing alone")
				continue
			}
			s.onMessage(m)
		case f := <-s.sched.Tasks():
			f()
		case <-stepTicker.C:
			now := time.Now()
			s.World.Step(now.Sub(past))
			past = now
			s.Effects.Update(now)
		}
	}
}

// Do выполняет f в потоке цикла сессии
func (s *Session) Do(f func()) {
	s.sched.post(f)
}

// Close останавливает цикл, детерминированно отменяет все таймеры и
// закрывает транспорт
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.Chaos.Close()
		s.sched.Close()
		if s.transport != nil {
			s.transport.Close()
		}
	})
}

// UseTool применяет инструмент локально и реплицирует результат
func (s *Session) UseTool(tool string, p ToolParams) *ToolResult {
	result := s.Tools.Execute(tool, p)
	if result == nil {
		return nil
	}
	switch result.Tool {
	case ToolSpawn:
		options := SpawnEventOptions{
			ID:              result.BodyID,
			AngularVelocity: p.Spawn.AngularVelocity,
			Scale:           p.Spawn.Scale,
		}
		if p.Spawn.Velocity.Length() > 0 {
			v := pt(p.Spawn.Velocity)
			options.Velocity = &v
		}
		s.replicator.Broadcast(EventSpawn, SpawnData{
			ObjectType: result.ObjectType,
			Position:   result.Position,
			Rotation:   p.Spawn.Angle,
			Options:    options,
		})
	case ToolGravity:
		s.replicator.Broadcast(EventGravity, GravityData{Gravity: result.Gravity})
	default:
		params := ToolParamsData{
			Force:  result.Force,
			Radius: result.Radius,
			Grow:   result.Grow,
		}
		if p.Direction.Length() > 0 {
			d := pt(p.Direction)
			params.Direction = &d
		}
		s.replicator.Broadcast(EventTool, ToolData{
			ToolType: result.Tool,
			Position: result.Position,
			Params:   params,
		})
	}
	return result
}

// ApplyForce прикладывает направленный импульс к телу и реплицирует
// событие силы
func (s *Session) ApplyForce(bodyID string, direction cp.Vector, strength float64) {
	b := s.World.Get(bodyID)
	if b == nil || direction.Length() == 0 {
		return
	}
	s.World.ApplyForce(b, direction.Normalize().Mult(strength))
	s.replicator.Broadcast(EventForce, ForceData{
		ObjectID:  bodyID,
		Position:  pt(b.Position()),
		Direction: pt(direction.Normalize()),
		Strength:  strength,
	})
}

// SendCursor реплицирует положение курсора; событие чисто косметическое
func (s *Session) SendCursor(position cp.Vector, toolID string) {
	s.replicator.Broadcast(EventCursor, CursorData{
		Position: pt(position),
		ToolID:   toolID,
	})
}

func (s *Session) onMessage(m rawMessage) {
	switch m.Type {
	case messageTypeEvent:
		var event Event
		if err := json.Unmarshal(m.Data, &event); err != nil {
			log.Println("onMessage:", err)
			return
		}
		s.replicator.Receive(event, s.handlers)
	case messageTypeSystem:
		s.onSystem(m.Data)
	default:
		log.Println("onMessage: unknown envelope type:", m.Type)
	}
}

func (s *Session) onSystem(data json.RawMessage) {
	var r rawRoute
	if err := json.Unmarshal(data, &r); err != nil {
		log.Println("onSystem:", err)
		return
	}
	switch r.ID {
	case systemPeerJoin:
		var props PeerProps
		if err := json.Unmarshal(r.Data, &props); err == nil {
			s.feedback.status("peer joined: " + props.ID)
		}
	case systemPeerLeave:
		var props PeerProps
		if err := json.Unmarshal(r.Data, &props); err == nil {
			s.feedback.status("peer left: " + props.ID)
		}
	case systemSnapshotRequest:
		var req SnapshotRequestProps
		if err := json.Unmarshal(r.Data, &req); err != nil {
			log.Println("onSystem:", err)
			return
		}
		s.sendSnapshot(req.To)
	case systemSnapshot:
		var props SnapshotProps
		if err := json.Unmarshal(r.Data, &props); err != nil {
			log.Println("onSystem:", err)
			return
		}
		if props.To != "" && props.To != s.id {
			return
		}
		if err := applySnapshot(s.World, s.Registry, props.Blob); err != nil {
			log.Println("onSystem:", err)
		}
	}
}

func (s *Session) sendSnapshot(to string) {
	if s.transport == nil {
		return
	}
	blob, err := buildSnapshot(s.World)
	if err != nil {
		log.Println("sendSnapshot:", err)
		return
	}
	if err := s.transport.SendSystem(systemSnapshot, SnapshotProps{To: to, Blob: blob}); err != nil {
		log.Println("sendSnapshot:", err)
	}
}

func (s *Session) onSpawn(senderID string, data SpawnData) {
	opts := SpawnOptions{
		ID:              data.Options.ID,
		Position:        vec(data.Position),
		Angle:           data.Rotation,
		AngularVelocity: data.Options.AngularVelocity,
		Scale:           data.Options.Scale,
	}
	if data.Options.Velocity != nil {
		opts.Velocity = vec(*data.Options.Velocity)
	}
	if s.Tools.Spawn(data.ObjectType, opts) == nil {
		log.Println("onSpawn: unknown object type:", data.ObjectType)
	}
}

func (s *Session) onForce(senderID string, data ForceData) {
	b := s.World.Get(data.ObjectID)
	if b == nil {
		return
	}
	dir := vec(data.Direction)
	if dir.Length() == 0 {
		return
	}
	s.World.ApplyForce(b, dir.Normalize().Mult(data.Strength))
}

func (s *Session) onTool(senderID string, data ToolData) {
	p := ToolParams{
		Position: vec(data.Position),
		Force:    data.Params.Force,
		Radius:   data.Params.Radius,
		Grow:     data.Params.Grow,
	}
	if data.Params.Direction != nil {
		p.Direction = vec(*data.Params.Direction)
	}
	s.Tools.Execute(data.ToolType, p)
}

func (s *Session) onGravity(senderID string, data GravityData) {
	s.World.SetGravity(vec(data.Gravity))
}

func (s *Session) onCursor(senderID string, data CursorData) {
	s.feedback.cursor(senderID, data.Position, data.ToolID)
}
