package chaosnet

type factory struct {
	Registrator
}

func (f factory) create(t string, opts SpawnOptions) *Body {
	creator, ok := f.Registrator[t]
	if !ok {
		return nil
	}
	return creator(opts)
}
