package regen

import (
	"sync"
	"time"
)

// DefaultPeriod é o intervalo padrão entre regenerações automáticas.
const DefaultPeriod = 60 * time.Second

// Timer é uma tarefa atrasada cancelável. Reset empurra o prazo para frente
// (debounce); depois de disparar, o timer se rearma sozinho.
type Timer struct {
	mu      sync.Mutex
	period  time.Duration
	fn      func()
	t       *time.Timer
	gen     uint64 // invalida disparos de prazos antigos
	stopped bool
}

// NewTimer cria o timer parado. Chame Reset para armar.
func NewTimer(period time.Duration, fn func()) *Timer {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Timer{period: period, fn: fn, stopped: true}
}

// Reset cancela o prazo atual e arma um novo a partir de agora.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = false
	t.armLocked()
}

// Stop cancela o prazo pendente.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	t.gen++
	if t.t != nil {
		t.t.Stop()
		t.t = nil
	}
}

// Period retorna o intervalo configurado.
func (t *Timer) Period() time.Duration {
	return t.period
}

func (t *Timer) armLocked() {
	if t.t != nil {
		t.t.Stop()
	}
	t.gen++
	gen := t.gen
	t.t = time.AfterFunc(t.period, func() { t.fire(gen) })
}

func (t *Timer) fire(gen uint64) {
	t.mu.Lock()
	if t.stopped || gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	t.fn()

	t.mu.Lock()
	defer t.mu.Unlock()
	// Um Reset ou Stop dentro de fn já decidiu o próximo prazo.
	if !t.stopped && gen == t.gen {
		t.armLocked()
	}
}
