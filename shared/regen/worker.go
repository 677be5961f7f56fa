package regen

import (
	"context"
	"errors"
	"log"
	"sync"

	"IceVision/shared/mesh"
)

// Request é um pedido assíncrono de regeneração. Com Advance o nível é o
// próximo do ciclo; senão é Level.
type Request struct {
	Level   mesh.DetailLevel
	Advance bool
}

// NextRequest pede o próximo nível do ciclo.
func NextRequest() Request {
	return Request{Advance: true}
}

// LevelRequest pede um nível específico.
func LevelRequest(level mesh.DetailLevel) Request {
	return Request{Level: level}
}

// Worker roda o pipeline fora da thread de renderização.
//
// A caixa de entrada guarda um único pedido: um pedido novo substitui o
// pendente e cancela a geração em andamento (cancela e reinicia).
type Worker struct {
	regen   *Regenerator
	mailbox chan Request
	stop    chan struct{}
	done    chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc

	submitMu sync.Mutex // mantém a ordem de resolução igual à ordem da caixa

	// OnError é chamado (na goroutine do worker) quando uma geração falha
	// por outro motivo que não a substituição.
	OnError func(req Request, err error)
}

// NewWorker cria e inicia o worker.
func NewWorker(r *Regenerator) *Worker {
	w := &Worker{
		regen:   r,
		mailbox: make(chan Request, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

// Submit enfileira o pedido, substituindo um pendente e cancelando o atual.
// Um pedido de avanço já sai daqui com o nível resolvido.
func (w *Worker) Submit(req Request) {
	w.submitMu.Lock()
	defer w.submitMu.Unlock()
	req = w.regen.resolve(req)

	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Unlock()

	for {
		select {
		case w.mailbox <- req:
			return
		case <-w.stop:
			return
		default:
			// Caixa cheia: descarta o pedido antigo e tenta de novo
			select {
			case <-w.mailbox:
			default:
			}
		}
	}
}

// Stop encerra o worker e espera a geração em andamento terminar.
func (w *Worker) Stop() {
	select {
	case <-w.stop:
		return
	default:
	}
	close(w.stop)
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Unlock()
	<-w.done
}

func (w *Worker) run() {
	defer close(w.done)
	for {
		select {
		case req := <-w.mailbox:
			w.handle(req)
		case <-w.stop:
			return
		}
	}
}

func (w *Worker) handle(req Request) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Erro no worker de regeneração: %v", r)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	w.mu.Lock()
	w.cancel = cancel
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.cancel = nil
		w.mu.Unlock()
		cancel()
	}()

	// Submit já resolveu o nível e registrou o pedido
	_, err := w.regen.generate(ctx, req.Level)
	if err != nil && !errors.Is(err, ErrSuperseded) && w.OnError != nil {
		w.OnError(req, err)
	}
}
