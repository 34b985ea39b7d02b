package repo

// Observer times one logical store operation. observability.Prom satisfies it.
type Observer interface {
	ObserveStore(op string, fn func() error) error
}

type nopObserver struct{}

func (nopObserver) ObserveStore(_ string, fn func() error) error { return fn() }

func OrNop(obs Observer) Observer {
	if obs == nil {
		return nopObserver{}
	}
	return obs
}
