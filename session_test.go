package chaosnet

import (
	"testing"
	"time"

	"github.com/jakecoffman/cp"
)

func newSessionPair(t *testing.T) (*Session, *Session) {
	t.Helper()
	ta, tb := CreateLoopbackPair("TEST42")
	sa, err := CreateSession(SessionDef{Transport: ta, Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	sb, err := CreateSession(SessionDef{Transport: tb, Seed: 2})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		sa.Close()
		sb.Close()
	})
	return sa, sb
}

// deliver переносит одно сообщение из транспорта сессии в её обработчик
func deliver(t *testing.T, s *Session) {
	t.Helper()
	select {
	case m := <-s.transport.Messages():
		s.onMessage(m)
	case <-time.After(time.Second):
		t.Fatal("no message was delivered")
	}
}

func TestSpawnReplication(t *testing.T) {
	sa, sb := newSessionPair(t)
	result := sa.UseTool(ToolSpawn, ToolParams{
		ObjectType: "box",
		Position:   cp.Vector{X: 100, Y: 100},
	})
	if result == nil {
		t.Fatal("spawn failed on the acting peer")
	}
	deliver(t, sb)
	b := sb.World.Get(result.BodyID)
	if b == nil {
		t.Fatal("spawned body did not materialize on the remote peer")
	}
	if pos := b.Position(); pos.X != 100 || pos.Y != 100 {
		t.Fatalf("remote body position = %v, want (100, 100)", pos)
	}
	if b.Type != "box" {
		t.Fatalf("remote body type = %q, want box", b.Type)
	}
}

func TestForceReplication(t *testing.T) {
	sa, sb := newSessionPair(t)
	result := sa.UseTool(ToolSpawn, ToolParams{ObjectType: "ball", Position: cp.Vector{X: 50, Y: 50}})
	deliver(t, sb)

	sa.ApplyForce(result.BodyID, cp.Vector{X: 1, Y: 0}, 10)
	deliver(t, sb)

	local := sa.World.Get(result.BodyID)
	remote := sb.World.Get(result.BodyID)
	if local.Velocity().X <= 0 {
		t.Fatalf("local body was not pushed: %f", local.Velocity().X)
	}
	if remote.Velocity().X <= 0 {
		t.Fatalf("remote body was not pushed: %f", remote.Velocity().X)
	}
}

func TestGravityReplication(t *testing.T) {
	sa, sb := newSessionPair(t)
	if sa.UseTool(ToolGravity, ToolParams{}) == nil {
		t.Fatal("gravity tool failed")
	}
	deliver(t, sb)
	want := -defaultGravity().Y
	if g := sb.World.Gravity(); g.Y != want {
		t.Fatalf("remote gravity = %v, want Y = %f", g, want)
	}
}

func TestToolReplication(t *testing.T) {
	sa, sb := newSessionPair(t)
	spawned := sa.UseTool(ToolSpawn, ToolParams{ObjectType: "ball", Position: cp.Vector{X: 10, Y: 0}})
	deliver(t, sb)

	result := sa.UseTool(ToolExplode, ToolParams{Position: cp.Vector{}, Force: 20, Radius: 180})
	if result == nil {
		t.Fatal("explode tool failed")
	}
	deliver(t, sb)

	remote := sb.World.Get(spawned.BodyID)
	if remote.Speed() == 0 {
		t.Fatal("remote body was not affected by the replicated explosion")
	}
}

func TestCursorReplication(t *testing.T) {
	var gotPeer, gotTool string
	ta, tb := CreateLoopbackPair("TEST42")
	sa, err := CreateSession(SessionDef{Transport: ta})
	if err != nil {
		t.Fatal(err)
	}
	sb, err := CreateSession(SessionDef{
		Transport: tb,
		Feedback: &FeedbackListener{
			OnCursor: func(peerID string, position Point, toolID string) {
				gotPeer = peerID
				gotTool = toolID
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		sa.Close()
		sb.Close()
	})

	sa.SendCursor(cp.Vector{X: 5, Y: 5}, ToolPush)
	deliver(t, sb)
	if gotPeer != sa.ID() {
		t.Fatalf("cursor peer = %q, want %q", gotPeer, sa.ID())
	}
	if gotTool != ToolPush {
		t.Fatalf("cursor tool = %q, want %q", gotTool, ToolPush)
	}
}

func TestSnapshotTransfer(t *testing.T) {
	sa, sb := newSessionPair(t)
	sa.UseTool(ToolSpawn, ToolParams{ObjectType: "box", Position: cp.Vector{X: 100, Y: 100}})
	deliver(t, sb)
	sa.UseTool(ToolSpawn, ToolParams{ObjectType: "ball", Position: cp.Vector{X: 200, Y: 100}})
	deliver(t, sb)
	sb.World.Clear()

	sa.sendSnapshot(sb.ID())
	deliver(t, sb)

	if n := sb.World.Count(); n != 2 {
		t.Fatalf("remote world has %d bodies after snapshot, want 2", n)
	}
}

func TestSnapshotForAnotherPeerIsIgnored(t *testing.T) {
	sa, sb := newSessionPair(t)
	sa.UseTool(ToolSpawn, ToolParams{ObjectType: "box", Position: cp.Vector{X: 100, Y: 100}})
	deliver(t, sb)

	sa.sendSnapshot("someone-else")
	deliver(t, sb)

	// снимок адресован другому пиру: мир не пересобирается
	if n := sb.World.Count(); n != 1 {
		t.Fatalf("remote world has %d bodies, want 1", n)
	}
}

func TestSoloSession(t *testing.T) {
	s, err := CreateSession(SessionDef{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if s.ID() == "" {
		t.Fatal("solo session has no peer id")
	}
	result := s.UseTool(ToolSpawn, ToolParams{ObjectType: "stone", Position: cp.Vector{X: 10, Y: 10}})
	if result == nil {
		t.Fatal("spawn failed in solo mode")
	}
	if s.World.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", s.World.Count())
	}
}
