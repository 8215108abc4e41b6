package chaosnet

import (
	"math/rand"
	"testing"
	"time"

	"github.com/jakecoffman/cp"
)

func newTestChaos(t *testing.T) (*World, *Registry, *scheduler, *Chaos) {
	t.Helper()
	world := CreateWorld(WorldDef{})
	registry, err := CreateRegistry(world)
	if err != nil {
		t.Fatal(err)
	}
	r := rand.New(rand.NewSource(1))
	tools := createTools(world, registry, nil, r)
	sched := createScheduler(256)
	chaos := createChaos(world, tools, registry, sched, nil, r, ChaosDef{})
	return world, registry, sched, chaos
}

// runTasks исполняет задачи планировщика, пока они не иссякнут на idle
func runTasks(sched *scheduler, idle time.Duration) {
	for {
		select {
		case f := <-sched.Tasks():
			f()
		case <-time.After(idle):
			return
		}
	}
}

func TestToggleChaos(t *testing.T) {
	_, _, sched, chaos := newTestChaos(t)
	if chaos.ToggleChaos() != true {
		t.Fatal("first toggle should enable chaos")
	}
	state := chaos.State()
	if !state.Chaos || !state.Flood || !state.Rules || !state.Explosions {
		t.Fatalf("not all subsystems are enabled: %+v", state)
	}
	if sched.Active() == 0 {
		t.Fatal("no scheduled tasks after enabling chaos")
	}
	if chaos.ToggleChaos() != false {
		t.Fatal("second toggle should disable chaos")
	}
	state = chaos.State()
	if state.Chaos || state.Flood || state.Rules || state.Explosions {
		t.Fatalf("not all subsystems are disabled: %+v", state)
	}
	if n := sched.Active(); n != 0 {
		t.Fatalf("Active() = %d after disabling chaos, want 0", n)
	}
}

func TestStartFloodRestarts(t *testing.T) {
	_, _, sched, chaos := newTestChaos(t)
	chaos.StartFlood()
	chaos.StartFlood()
	if n := sched.Active(); n != 1 {
		t.Fatalf("Active() = %d after double StartFlood, want 1", n)
	}
	chaos.StopFlood()
	if n := sched.Active(); n != 0 {
		t.Fatalf("Active() = %d after StopFlood, want 0", n)
	}
}

func TestStopRulesRestoresGravity(t *testing.T) {
	world, _, sched, chaos := newTestChaos(t)
	chaos.StartRules()
	runTasks(sched, 50*time.Millisecond)
	if chaos.State().Rule == "" {
		t.Fatal("no rule was applied after StartRules")
	}
	world.SetGravity(cp.Vector{X: 120, Y: 0})
	chaos.StopRules()
	if g := world.Gravity(); g != defaultGravity() {
		t.Fatalf("gravity = %v after StopRules, want %v", g, defaultGravity())
	}
	if chaos.State().Rule != "" {
		t.Fatalf("rule name survived StopRules: %q", chaos.State().Rule)
	}
}

func TestFloodTickSpawnsBodies(t *testing.T) {
	world, _, _, chaos := newTestChaos(t)
	chaos.floodTick()
	if world.Count() == 0 {
		t.Fatal("flood tick spawned nothing")
	}
	for _, b := range world.Bodies() {
		if b.Position().Y >= 0 {
			t.Fatalf("flooded body %s spawned below the spawn band: %v", b.ID, b.Position())
		}
	}
}

func TestChainReaction(t *testing.T) {
	world, registry, sched, chaos := newTestChaos(t)
	positions := []cp.Vector{{X: 0, Y: 0}, {X: 50, Y: 0}, {X: 100, Y: 0}}
	ids := make([]string, len(positions))
	for i, pos := range positions {
		b := registry.Create("bomb", SpawnOptions{Position: pos})
		if b == nil {
			t.Fatal("bomb archetype is not registered")
		}
		ids[i] = b.ID
	}

	chaos.triggerExplosion(ids[0])
	runTasks(sched, 500*time.Millisecond)

	for _, id := range ids {
		if world.Get(id) != nil {
			t.Fatalf("bomb %s survived the chain reaction", id)
		}
	}
	if n := sched.Active(); n != 0 {
		t.Fatalf("Active() = %d after the chain settled, want 0", n)
	}
}

func TestTriggerExplosionOnRemovedBody(t *testing.T) {
	_, registry, _, chaos := newTestChaos(t)
	b := registry.Create("bomb", SpawnOptions{})
	chaos.world.RemoveBody(b)
	// взрыв уже удалённого тела - штатный исход гонки таймеров
	chaos.triggerExplosion(b.ID)
}

func TestScanExplosivesIgnoresSlowBodies(t *testing.T) {
	world, registry, sched, chaos := newTestChaos(t)
	slow := registry.Create("bomb", SpawnOptions{})
	chaos.scanExplosives()
	runTasks(sched, 50*time.Millisecond)
	if world.Get(slow.ID) == nil {
		t.Fatal("slow bomb exploded without reaching the speed limit")
	}

	fast := registry.Create("bomb", SpawnOptions{Velocity: cp.Vector{X: 100, Y: 0}})
	chaos.scanExplosives()
	runTasks(sched, 500*time.Millisecond)
	if world.Get(fast.ID) != nil {
		t.Fatal("fast bomb did not explode")
	}
}
