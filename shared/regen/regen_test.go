package regen

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"IceVision/shared/mesh"
)

// fakeDisplay guarda as malhas recebidas.
type fakeDisplay struct {
	mu     sync.Mutex
	meshes []*mesh.NormalizedMesh
}

func (d *fakeDisplay) SetMesh(m *mesh.NormalizedMesh) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.meshes = append(d.meshes, m)
}

func (d *fakeDisplay) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.meshes)
}

type fakeRecorder struct {
	mu    sync.Mutex
	stats []Stats
}

func (r *fakeRecorder) Record(s Stats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats = append(r.stats, s)
	return nil
}

// blockingRNG trava no primeiro sorteio até release ser fechado.
type blockingRNG struct {
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func newBlockingRNG() *blockingRNG {
	return &blockingRNG{started: make(chan struct{}), release: make(chan struct{})}
}

func (r *blockingRNG) Float64() float64 {
	r.once.Do(func() {
		close(r.started)
		<-r.release
	})
	return 0.5
}

// newTestRegenerator usa profundidades pequenas para manter os testes rápidos.
func newTestRegenerator(rng mesh.RNG) *Regenerator {
	opts := DefaultOptions()
	opts.RNG = rng
	r := New(opts)
	r.depthOf = func(l mesh.DetailLevel) int { return int(l) }
	return r
}

func TestRegeneratorCycling(t *testing.T) {
	r := newTestRegenerator(nil)
	if r.State() != StateIdle || r.CurrentMesh() != nil {
		t.Fatalf("estado inicial = %v, malha %v", r.State(), r.CurrentMesh())
	}

	want := []mesh.DetailLevel{0, 1, 2, 0, 1}
	for i, level := range want {
		m, err := r.Next()
		if err != nil {
			t.Fatalf("Next() #%d erro: %v", i, err)
		}
		if m.Level != level {
			t.Errorf("Next() #%d nível = %d, want %d", i, m.Level, level)
		}
		if m.Version != uint64(i+1) {
			t.Errorf("Next() #%d versão = %d, want %d", i, m.Version, i+1)
		}
		if r.CurrentMesh() != m {
			t.Errorf("Next() #%d não publicou a malha", i)
		}
		if r.State() != StateReady {
			t.Errorf("Next() #%d estado = %v, want ready", i, r.State())
		}
	}
}

func TestRegeneratorExplicitLevelThenNext(t *testing.T) {
	r := newTestRegenerator(nil)
	if _, err := r.RequestRegeneration(1); err != nil {
		t.Fatal(err)
	}
	m, err := r.Next()
	if err != nil {
		t.Fatal(err)
	}
	if m.Level != 2 {
		t.Errorf("Next() após nível 1 = %d, want 2", m.Level)
	}
}

func TestRegeneratorFaceCounts(t *testing.T) {
	r := newTestRegenerator(nil)
	for level := mesh.DetailLevel(0); level < mesh.LevelCount; level++ {
		m, err := r.RequestRegeneration(level)
		if err != nil {
			t.Fatal(err)
		}
		want := mesh.FaceCountAt(int(level))
		if m.FaceCount() != want || len(m.Normals) != 3*want {
			t.Errorf("nível %d = %d faces / %d normais, want %d / %d",
				level, m.FaceCount(), len(m.Normals), want, 3*want)
		}
	}
}

func TestRegeneratorInvalidLevelKeepsMesh(t *testing.T) {
	r := newTestRegenerator(nil)
	d := &fakeDisplay{}
	r.Subscribe(d)

	first, err := r.RequestRegeneration(0)
	if err != nil {
		t.Fatal(err)
	}
	for _, bad := range []mesh.DetailLevel{-1, 3, 7} {
		if _, err := r.RequestRegeneration(bad); !errors.Is(err, mesh.ErrInvalidArgument) {
			t.Errorf("RequestRegeneration(%d) err = %v, want ErrInvalidArgument", bad, err)
		}
	}
	if r.CurrentMesh() != first {
		t.Error("nível inválido substituiu a malha publicada")
	}
	if r.State() != StateReady {
		t.Errorf("estado = %v, want ready", r.State())
	}
	if d.count() != 1 {
		t.Errorf("display recebeu %d malhas, want 1", d.count())
	}
}

func TestRegeneratorInvalidStrategy(t *testing.T) {
	opts := DefaultOptions()
	opts.Strategy = "perlin"
	r := New(opts)
	if _, err := r.Next(); !errors.Is(err, mesh.ErrInvalidArgument) {
		t.Errorf("Next() err = %v, want ErrInvalidArgument", err)
	}
	if r.State() != StateIdle || r.Level() != -1 {
		t.Errorf("estado = %v, nível = %d; want idle, -1", r.State(), r.Level())
	}
}

func TestRegeneratorSubscribersAndRecorders(t *testing.T) {
	r := newTestRegenerator(nil)
	rec := &fakeRecorder{}
	r.AddRecorder(rec)

	if _, err := r.RequestRegeneration(1); err != nil {
		t.Fatal(err)
	}

	// Assinante tardio recebe a malha atual na hora.
	late := &fakeDisplay{}
	r.Subscribe(late)
	if late.count() != 1 {
		t.Fatalf("assinante tardio recebeu %d malhas, want 1", late.count())
	}

	if _, err := r.Next(); err != nil {
		t.Fatal(err)
	}
	if late.count() != 2 {
		t.Errorf("display recebeu %d malhas, want 2", late.count())
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.stats) != 2 {
		t.Fatalf("recorder recebeu %d registros, want 2", len(rec.stats))
	}
	s := rec.stats[0]
	if s.Version != 1 || s.Level != 1 || s.Depth != 1 || s.Faces != 80 || s.Vertices != 42 || s.Strategy != mesh.StrategySingle {
		t.Errorf("stats = %+v", s)
	}
}

func TestRegeneratorLayeredStrategy(t *testing.T) {
	opts := DefaultOptions()
	opts.Strategy = mesh.StrategyLayered
	opts.RNG = constRNG(1)
	r := New(opts)
	r.depthOf = func(l mesh.DetailLevel) int { return int(l) }

	// Nível 2 aplica três camadas: fator máximo 1.35 · 1.1 · (1 + 0.1/3).
	m, err := r.RequestRegeneration(2)
	if err != nil {
		t.Fatal(err)
	}
	want := 50 * 1.35 * 1.1 * (1 + 0.1/3)
	for i, v := range m.Vertices {
		if d := v.Len(); d < want-1e-9 || d > want+1e-9 {
			t.Fatalf("vértice %d a distância %v, want %v", i, d, want)
		}
	}
}

type constRNG float64

func (c constRNG) Float64() float64 { return float64(c) }

func TestWorkerCoalesces(t *testing.T) {
	rng := newBlockingRNG()
	r := newTestRegenerator(rng)
	d := &fakeDisplay{}
	r.Subscribe(d)

	w := NewWorker(r)
	defer w.Stop()

	var failures atomic.Int32
	w.OnError = func(Request, error) { failures.Add(1) }

	w.Submit(LevelRequest(0))
	select {
	case <-rng.started:
	case <-time.After(5 * time.Second):
		t.Fatal("primeira geração não começou")
	}

	// Dois pedidos durante a geração: o primeiro é substituído pelo segundo
	// e a geração em andamento é cancelada.
	w.Submit(LevelRequest(2))
	w.Submit(LevelRequest(1))
	close(rng.release)

	deadline := time.Now().Add(5 * time.Second)
	for r.CurrentMesh() == nil && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	m := r.CurrentMesh()
	if m == nil {
		t.Fatal("nenhuma malha publicada")
	}
	if m.Level != 1 || m.Version != 1 {
		t.Errorf("malha publicada nível %d versão %d, want nível 1 versão 1", m.Level, m.Version)
	}

	// Garante que nada mais foi publicado depois.
	time.Sleep(50 * time.Millisecond)
	if d.count() != 1 {
		t.Errorf("display recebeu %d malhas, want 1", d.count())
	}
	if failures.Load() != 0 {
		t.Errorf("OnError chamado %d vezes", failures.Load())
	}
}

func TestWorkerNextAdvancesPerRequest(t *testing.T) {
	rng := newBlockingRNG()
	r := newTestRegenerator(rng)
	w := NewWorker(r)
	defer w.Stop()

	w.Submit(NextRequest())
	select {
	case <-rng.started:
	case <-time.After(5 * time.Second):
		t.Fatal("primeira geração não começou")
	}

	// Level não espera a geração em andamento.
	levels := make(chan int, 1)
	go func() { levels <- r.Level() }()
	select {
	case got := <-levels:
		if got != -1 {
			t.Errorf("Level() durante a primeira geração = %d, want -1", got)
		}
	case <-time.After(time.Second):
		t.Fatal("Level() bloqueou durante a geração")
	}

	// Cada clique conta: 0 (cancelado), 1 (substituído), 2.
	w.Submit(NextRequest())
	w.Submit(NextRequest())
	close(rng.release)

	deadline := time.Now().Add(5 * time.Second)
	for r.CurrentMesh() == nil && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	m := r.CurrentMesh()
	if m == nil {
		t.Fatal("nenhuma malha publicada")
	}
	if m.Level != 2 || m.Version != 1 {
		t.Errorf("malha publicada nível %d versão %d, want nível 2 versão 1", m.Level, m.Version)
	}
	if r.Level() != 2 {
		t.Errorf("Level() = %d, want 2", r.Level())
	}

	// O ciclo continua a partir do último pedido.
	w.Submit(NextRequest())
	deadline = time.Now().Add(5 * time.Second)
	for r.CurrentMesh().Version < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if m := r.CurrentMesh(); m.Version != 2 || m.Level != 0 {
		t.Errorf("após mais um Next: nível %d versão %d, want nível 0 versão 2", m.Level, m.Version)
	}
}

func TestWorkerNextAndErrors(t *testing.T) {
	r := newTestRegenerator(nil)
	w := NewWorker(r)
	defer w.Stop()

	errs := make(chan error, 1)
	w.OnError = func(_ Request, err error) { errs <- err }

	w.Submit(LevelRequest(5))
	select {
	case err := <-errs:
		if !errors.Is(err, mesh.ErrInvalidArgument) {
			t.Errorf("OnError err = %v, want ErrInvalidArgument", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("OnError não foi chamado")
	}

	w.Submit(NextRequest())
	deadline := time.Now().Add(5 * time.Second)
	for r.CurrentMesh() == nil && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if m := r.CurrentMesh(); m == nil || m.Level != 0 {
		t.Errorf("Next assíncrono publicou %v, want nível 0", m)
	}
}

func TestWorkerStopIsIdempotent(t *testing.T) {
	w := NewWorker(newTestRegenerator(nil))
	w.Stop()
	w.Stop()
	w.Submit(NextRequest()) // não deve travar
}

func TestTimerFiresAndRearms(t *testing.T) {
	var fired atomic.Int32
	tm := NewTimer(20*time.Millisecond, func() { fired.Add(1) })
	tm.Reset()
	defer tm.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for fired.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if fired.Load() < 2 {
		t.Errorf("timer disparou %d vezes, want >= 2", fired.Load())
	}
}

func TestTimerResetDebounces(t *testing.T) {
	var fired atomic.Int32
	tm := NewTimer(100*time.Millisecond, func() { fired.Add(1) })
	defer tm.Stop()

	tm.Reset()
	for i := 0; i < 6; i++ {
		time.Sleep(30 * time.Millisecond)
		tm.Reset()
	}
	if fired.Load() != 0 {
		t.Errorf("timer disparou %d vezes durante o debounce, want 0", fired.Load())
	}
}

func TestTimerStop(t *testing.T) {
	var fired atomic.Int32
	tm := NewTimer(20*time.Millisecond, func() { fired.Add(1) })
	tm.Reset()
	tm.Stop()
	time.Sleep(80 * time.Millisecond)
	if fired.Load() != 0 {
		t.Errorf("timer parado disparou %d vezes", fired.Load())
	}
	if NewTimer(0, func() {}).Period() != DefaultPeriod {
		t.Error("período padrão não aplicado")
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{StateIdle, "idle"},
		{StateGenerating, "generating"},
		{StateReady, "ready"},
		{State(9), "state(9)"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
