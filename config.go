package chaosnet

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// RelayConfig - конфигурация ретранслятора
type RelayConfig struct {
	Addr         string `env:"CHAOSNET_ADDR" envDefault:":3000"`
	StaticDir    string `env:"CHAOSNET_STATIC" envDefault:"."`
	RoomCapacity int    `env:"CHAOSNET_ROOM_CAPACITY" envDefault:"8"`
}

// LoadRelayConfig читает конфигурацию из окружения
func LoadRelayConfig() (RelayConfig, error) {
	var config RelayConfig
	if err := env.Parse(&config); err != nil {
		return RelayConfig{}, fmt.Errorf("loadRelayConfig: %s", err)
	}
	return config, nil
}
