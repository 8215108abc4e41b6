package chaosnet

import (
	"hash/fnv"
	"math/rand"
)

// roomSeed выводит детерминированное зерно из идентификатора комнаты
func roomSeed(roomID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(roomID))
	return int64(h.Sum64())
}

// RoomRand создаёт генератор псевдослучайных чисел, детерминированно
// привязанный к идентификатору комнаты.
// TODO: перевести броски эффектов на комнатное зерно, когда протокол
// научится синхронизировать количество бросков между пирами
func RoomRand(roomID string) *rand.Rand {
	return rand.New(rand.NewSource(roomSeed(roomID)))
}
