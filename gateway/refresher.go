package gateway

import (
	"sync"
	"time"
)

// Refresher é a alça explícita de atualização periódica de uma view.
// A view dona do Refresher deve chamar Stop no teardown; sem isso o
// trabalho recorrente vazaria depois da view sair de cena.
type Refresher struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

// NewRefresher dispara fn a cada intervalo até Stop ser chamado
func NewRefresher(interval time.Duration, fn func()) *Refresher {
	r := &Refresher{
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
	}

	go func() {
		for {
			select {
			case <-r.done:
				return
			case <-r.ticker.C:
				fn()
			}
		}
	}()

	return r
}

// Stop cancela as atualizações agendadas. Seguro chamar mais de uma vez.
func (r *Refresher) Stop() {
	r.once.Do(func() {
		r.ticker.Stop()
		close(r.done)
	})
}
