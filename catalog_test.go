package chaosnet

import (
	"testing"

	"github.com/jakecoffman/cp"
)

func TestDefaultCatalogLoads(t *testing.T) {
	world := CreateWorld(WorldDef{})
	registry, err := CreateRegistry(world)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"box", "ball", "plank", "stone", "barrel", "bomb", "balloon"} {
		if !registry.IsRegistered(want) {
			t.Fatalf("archetype %q is not registered", want)
		}
	}
}

func TestExplosiveArchetypes(t *testing.T) {
	world := CreateWorld(WorldDef{})
	registry, err := CreateRegistry(world)
	if err != nil {
		t.Fatal(err)
	}
	bomb, ok := registry.Archetype("bomb")
	if !ok {
		t.Fatal("bomb archetype is missing")
	}
	if !bomb.Explosive {
		t.Fatal("bomb is not explosive")
	}
	if bomb.ExplosionForce <= 0 || bomb.ExplosionRadius <= 0 {
		t.Fatalf("bomb has no explosion parameters: force %f, radius %f", bomb.ExplosionForce, bomb.ExplosionRadius)
	}
	balloon, _ := registry.Archetype("balloon")
	if !balloon.Floaty {
		t.Fatal("balloon is not floaty")
	}
}

func TestCreateAppliesOverrides(t *testing.T) {
	world := CreateWorld(WorldDef{})
	registry, err := CreateRegistry(world)
	if err != nil {
		t.Fatal(err)
	}
	b := registry.Create("ball", SpawnOptions{
		ID:       "ball-1",
		Position: cp.Vector{X: 30, Y: 40},
		Velocity: cp.Vector{X: 7, Y: 0},
		Scale:    2,
	})
	if b == nil {
		t.Fatal("ball was not created")
	}
	if b.ID != "ball-1" {
		t.Fatalf("id = %q, want ball-1", b.ID)
	}
	if pos := b.Position(); pos.X != 30 || pos.Y != 40 {
		t.Fatalf("position = %v, want (30, 40)", pos)
	}
	if v := b.Velocity(); v.X != 7 {
		t.Fatalf("velocity = %v, want X = 7", v)
	}
	if b.Scale() != 2 {
		t.Fatalf("scale = %f, want 2", b.Scale())
	}
}

func TestCreateUnknownType(t *testing.T) {
	world := CreateWorld(WorldDef{})
	registry, err := CreateRegistry(world)
	if err != nil {
		t.Fatal(err)
	}
	if b := registry.Create("teapot", SpawnOptions{}); b != nil {
		t.Fatalf("unknown type produced a body: %v", b)
	}
}

func TestTypesStableOrder(t *testing.T) {
	world := CreateWorld(WorldDef{})
	registry, err := CreateRegistry(world)
	if err != nil {
		t.Fatal(err)
	}
	types := registry.Types()
	for i := 1; i < len(types); i++ {
		if types[i-1] >= types[i] {
			t.Fatalf("types are not sorted: %v", types)
		}
	}
}
