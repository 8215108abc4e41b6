package chaosnet

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/klauspost/compress/zstd"
)

// snapshotBody - состояние одного тела в снимке мира
type snapshotBody struct {
	ID              string  `json:"id"`
	Type            string  `json:"type"`
	Position        Point   `json:"position"`
	Angle           float64 `json:"angle"`
	Velocity        Point   `json:"velocity"`
	AngularVelocity float64 `json:"angularVelocity"`
	Scale           float64 `json:"scale"`
}

type worldSnapshot struct {
	Gravity Point          `json:"gravity"`
	Bodies  []snapshotBody `json:"bodies"`
}

// buildSnapshot сериализует тела мира в сжатый base64-блоб для
// передачи новому пиру; сенсорные тела эффектов не переносятся -
// эффекты локальны для каждого пира
func buildSnapshot(w *World) (string, error) {
	snapshot := worldSnapshot{Gravity: pt(w.Gravity())}
	for _, b := range w.Bodies() {
		if b.def.Sensor {
			continue
		}
		snapshot.Bodies = append(snapshot.Bodies, snapshotBody{
			ID:              b.ID,
			Type:            b.Type,
			Position:        pt(b.Position()),
			Angle:           b.Angle(),
			Velocity:        pt(b.Velocity()),
			AngularVelocity: b.AngularVelocity(),
			Scale:           b.Scale(),
		})
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("buildSnapshot: %s", err)
	}
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return "", fmt.Errorf("buildSnapshot: %s", err)
	}
	if _, err := enc.Write(raw); err != nil {
		enc.Close()
		return "", fmt.Errorf("buildSnapshot: %s", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("buildSnapshot: %s", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// applySnapshot очищает мир и восстанавливает тела из блоба;
// тела незарегистрированных типов пропускаются с диагностикой
func applySnapshot(w *World, registry *Registry, blob string) error {
	compressed, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return fmt.Errorf("applySnapshot: %s", err)
	}
	dec, err := zstd.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return fmt.Errorf("applySnapshot: %s", err)
	}
	defer dec.Close()
	raw, err := io.ReadAll(dec)
	if err != nil {
		return fmt.Errorf("applySnapshot: %s", err)
	}
	var snapshot worldSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return fmt.Errorf("applySnapshot: %s", err)
	}
	w.Clear()
	w.SetGravity(vec(snapshot.Gravity))
	for _, sb := range snapshot.Bodies {
		body := registry.Create(sb.Type, SpawnOptions{
			ID:              sb.ID,
			Position:        vec(sb.Position),
			Angle:           sb.Angle,
			Velocity:        vec(sb.Velocity),
			AngularVelocity: sb.AngularVelocity,
			Scale:           sb.Scale,
		})
		if body == nil {
			log.Println("applySnapshot: unknown body type:", sb.Type)
		}
	}
	return nil
}
