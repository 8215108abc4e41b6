package chaosnet

import (
	"math/rand"
	"strings"
	"testing"
)

func TestRandomRoomCode(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		code := randomRoomCode(r)
		if len(code) != roomCodeLength {
			t.Fatalf("len(%q) = %d, want %d", code, len(code), roomCodeLength)
		}
		for _, c := range code {
			if !strings.ContainsRune(roomAlphabet, c) {
				t.Fatalf("code %q contains %q outside the alphabet", code, c)
			}
		}
	}
}

func TestBodyAndPeerIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := newBodyID()
		if !strings.HasPrefix(id, "body-") {
			t.Fatalf("body id %q has no prefix", id)
		}
		if seen[id] {
			t.Fatalf("duplicate body id %q", id)
		}
		seen[id] = true
	}
	if !strings.HasPrefix(newPeerID(), "peer-") {
		t.Fatal("peer id has no prefix")
	}
}

func TestRoomIDGeneratorForcesID(t *testing.T) {
	g := roomIDGenerator{}
	g.id = "ABCDEF"
	if got := g.NewID(); got != "ABCDEF" {
		t.Fatalf("NewID() = %q, want forced ABCDEF", got)
	}
	// навязанный идентификатор одноразовый
	if got := g.NewID(); got == "ABCDEF" {
		t.Fatal("forced id was reused")
	}
}
