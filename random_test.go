package chaosnet

import "testing"

func TestRoomRandIsDeterministic(t *testing.T) {
	a := RoomRand("ABCDEF")
	b := RoomRand("ABCDEF")
	for i := 0; i < 10; i++ {
		if a.Int63() != b.Int63() {
			t.Fatal("same room id produced different sequences")
		}
	}
}

func TestRoomRandDiffersByRoom(t *testing.T) {
	a := RoomRand("ABCDEF")
	b := RoomRand("GHIJKL")
	same := true
	for i := 0; i < 10; i++ {
		if a.Int63() != b.Int63() {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different room ids produced the same sequence")
	}
}
