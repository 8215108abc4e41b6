package chaosnet

import "github.com/jakecoffman/cp"

// SpawnOptions - переопределения архетипа при создании тела
type SpawnOptions struct {
	ID              string
	Position        cp.Vector
	Angle           float64
	Velocity        cp.Vector
	AngularVelocity float64
	Scale           float64
}

// Creator - функция создания тела
type Creator func(opts SpawnOptions) *Body

// Registrator - паттерн регистратора
type Registrator map[string]Creator

// IsRegistered возвращает true если для типа t есть регистрация
func (f Registrator) IsRegistered(t string) bool {
	_, ok := f[t]
	return ok
}

// Register регистрирует функцию создания тела creator для типа t
func (f Registrator) Register(t string, creator Creator) {
	f[t] = creator
}

// Unregister снимает регистрацию для типа t
func (f Registrator) Unregister(t string) {
	delete(f, t)
}
