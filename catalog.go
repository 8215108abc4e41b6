package chaosnet

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed archetypes.yaml
var defaultCatalog []byte

// Archetype - неизменяемый шаблон создаваемого тела
type Archetype struct {
	Type            string    `yaml:"type"`
	Label           string    `yaml:"label"`
	Shape           ShapeKind `yaml:"shape"`
	Radius          float64   `yaml:"radius"`
	Width           float64   `yaml:"width"`
	Height          float64   `yaml:"height"`
	Friction        float64   `yaml:"friction"`
	Restitution     float64   `yaml:"restitution"`
	Density         float64   `yaml:"density"`
	Static          bool      `yaml:"static"`
	Explosive       bool      `yaml:"explosive"`
	Floaty          bool      `yaml:"floaty"`
	ExplosionForce  float64   `yaml:"explosionForce"`
	ExplosionRadius float64   `yaml:"explosionRadius"`
}

type catalogFile struct {
	Archetypes []Archetype `yaml:"archetypes"`
}

// Registry - каталог архетипов и фабрика тел
type Registry struct {
	factory
	archetypes map[string]Archetype
	world      *World
}

// CreateRegistry создаёт реестр с каталогом архетипов по умолчанию
func CreateRegistry(w *World) (*Registry, error) {
	r := &Registry{
		factory:    factory{Registrator: make(Registrator)},
		archetypes: make(map[string]Archetype),
		world:      w,
	}
	var file catalogFile
	if err := yaml.Unmarshal(defaultCatalog, &file); err != nil {
		return nil, fmt.Errorf("createRegistry: %s", err)
	}
	for _, a := range file.Archetypes {
		r.RegisterArchetype(a)
	}
	return r, nil
}

// GetRegistrator возвращает регистратор функций создания тел
func (r *Registry) GetRegistrator() Registrator {
	return r.Registrator
}

// RegisterArchetype регистрирует архетип и функцию создания тела по нему
func (r *Registry) RegisterArchetype(a Archetype) {
	r.archetypes[a.Type] = a
	arch := a
	r.Register(a.Type, func(opts SpawnOptions) *Body {
		return r.world.CreateBody(bodyDefFromArchetype(arch, opts))
	})
}

// Archetype возвращает архетип по типу
func (r *Registry) Archetype(t string) (Archetype, bool) {
	a, ok := r.archetypes[t]
	return a, ok
}

// Types возвращает типы архетипов в стабильном порядке
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.archetypes))
	for t := range r.archetypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Create создаёт тело типа t с переопределениями opts;
// возвращает nil для незарегистрированного типа
func (r *Registry) Create(t string, opts SpawnOptions) *Body {
	return r.create(t, opts)
}

func bodyDefFromArchetype(a Archetype, opts SpawnOptions) BodyDef {
	return BodyDef{
		ID:              opts.ID,
		Type:            a.Type,
		Label:           a.Label,
		Shape:           a.Shape,
		Radius:          a.Radius,
		Width:           a.Width,
		Height:          a.Height,
		Position:        opts.Position,
		Angle:           opts.Angle,
		Velocity:        opts.Velocity,
		AngularVelocity: opts.AngularVelocity,
		Friction:        a.Friction,
		Restitution:     a.Restitution,
		Density:         a.Density,
		Static:          a.Static,
		Explosive:       a.Explosive,
		Floaty:          a.Floaty,
		ExplosionForce:  a.ExplosionForce,
		ExplosionRadius: a.ExplosionRadius,
		Scale:           opts.Scale,
	}
}
