package regen

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"IceVision/shared/mesh"
)

// State representa os estados do regenerador.
type State int32

const (
	StateIdle       State = iota // Nenhuma malha gerada ainda
	StateGenerating              // Pipeline em execução
	StateReady                   // Malha publicada
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGenerating:
		return "generating"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// ErrSuperseded indica que a geração foi cancelada por um pedido mais novo.
var ErrSuperseded = errors.New("geração substituída por pedido mais recente")

// Display consome as malhas publicadas. A malha recebida é imutável e
// substitui a anterior por inteiro.
type Display interface {
	SetMesh(m *mesh.NormalizedMesh)
}

// Recorder recebe as estatísticas de cada publicação (ex: journal SQLite).
type Recorder interface {
	Record(stats Stats) error
}

// Stats descreve uma geração publicada.
type Stats struct {
	Version    uint64
	Level      mesh.DetailLevel
	Depth      int
	Strategy   string
	Vertices   int // vértices únicos após a solda
	Faces      int
	Degenerate int
	Duration   time.Duration
}

// Options configura o pipeline.
type Options struct {
	Radius   float64
	Epsilon  float64
	Strategy string    // mesh.StrategyLayered ou mesh.StrategySingle
	Buckets  []float64 // bandas do sorteio único (vazio = padrão)
	RNG      mesh.RNG  // nil = fonte global não semeada
}

// DefaultOptions retorna raio 50 e sorteio único de banda.
func DefaultOptions() Options {
	return Options{
		Radius:   50,
		Epsilon:  mesh.DefaultEpsilon,
		Strategy: mesh.StrategySingle,
		Buckets:  mesh.DefaultBuckets,
	}
}

// Regenerator é dono da malha atual, do contador de detalhe e dos consumidores.
type Regenerator struct {
	opts Options

	genMu   sync.Mutex // serializa gerações: no máximo uma em andamento
	version uint64

	reqMu     sync.Mutex
	requested int // último nível pedido (-1 antes do primeiro pedido)

	level atomic.Int32 // último nível publicado (-1 antes da primeira malha)

	state   atomic.Int32
	current atomic.Pointer[mesh.NormalizedMesh]

	subMu     sync.RWMutex
	displays  []Display
	recorders []Recorder

	depthOf func(mesh.DetailLevel) int
}

// New cria um regenerador no estado Idle.
func New(opts Options) *Regenerator {
	if opts.RNG == nil {
		opts.RNG = mesh.DefaultRNG()
	}
	if opts.Epsilon == 0 {
		opts.Epsilon = mesh.DefaultEpsilon
	}
	r := &Regenerator{opts: opts, requested: -1, depthOf: mesh.DetailLevel.Depth}
	r.level.Store(-1)
	return r
}

// Subscribe registra um consumidor de malhas. Se já houver malha publicada,
// ele a recebe imediatamente.
func (r *Regenerator) Subscribe(d Display) {
	r.subMu.Lock()
	r.displays = append(r.displays, d)
	r.subMu.Unlock()

	if m := r.current.Load(); m != nil {
		d.SetMesh(m)
	}
}

// AddRecorder registra um destino para as estatísticas de geração.
func (r *Regenerator) AddRecorder(rec Recorder) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	r.recorders = append(r.recorders, rec)
}

// State retorna o estado atual.
func (r *Regenerator) State() State {
	return State(r.state.Load())
}

// CurrentMesh retorna a última malha publicada (nil antes da primeira).
func (r *Regenerator) CurrentMesh() *mesh.NormalizedMesh {
	return r.current.Load()
}

// Level retorna o último nível publicado, ou -1 se nada foi publicado.
// Não espera a geração em andamento.
func (r *Regenerator) Level() int {
	return int(r.level.Load())
}

// reserveNext avança o contador de pedidos e devolve o nível a gerar.
// Cada pedido conta, mesmo que a geração dele seja substituída depois.
func (r *Regenerator) reserveNext() mesh.DetailLevel {
	r.reqMu.Lock()
	defer r.reqMu.Unlock()
	r.requested = (r.requested + 1) % mesh.LevelCount
	return mesh.DetailLevel(r.requested)
}

// markRequested registra um pedido explícito; o próximo Next parte dele.
func (r *Regenerator) markRequested(level mesh.DetailLevel) {
	r.reqMu.Lock()
	defer r.reqMu.Unlock()
	r.requested = int(level)
}

// resolve converte um pedido de avanço em nível concreto no momento do pedido.
func (r *Regenerator) resolve(req Request) Request {
	if req.Advance {
		return LevelRequest(r.reserveNext())
	}
	if req.Level.Validate() == nil {
		r.markRequested(req.Level)
	}
	return req
}

// RequestRegeneration gera e publica uma malha para o nível pedido.
func (r *Regenerator) RequestRegeneration(level mesh.DetailLevel) (*mesh.NormalizedMesh, error) {
	return r.RequestRegenerationContext(context.Background(), level)
}

// RequestRegenerationContext é RequestRegeneration com cancelamento entre etapas.
func (r *Regenerator) RequestRegenerationContext(ctx context.Context, level mesh.DetailLevel) (*mesh.NormalizedMesh, error) {
	if err := level.Validate(); err != nil {
		return nil, err
	}
	r.markRequested(level)
	return r.generate(ctx, level)
}

// generate gera um nível já resolvido, sem mexer no contador de pedidos.
func (r *Regenerator) generate(ctx context.Context, level mesh.DetailLevel) (*mesh.NormalizedMesh, error) {
	if err := level.Validate(); err != nil {
		return nil, err
	}
	r.genMu.Lock()
	defer r.genMu.Unlock()
	return r.regenerate(ctx, level)
}

// Next avança o contador (0 → 1 → 2 → 0) e regenera.
func (r *Regenerator) Next() (*mesh.NormalizedMesh, error) {
	return r.NextContext(context.Background())
}

// NextContext é Next com cancelamento. O contador avança no pedido, não na publicação.
func (r *Regenerator) NextContext(ctx context.Context) (*mesh.NormalizedMesh, error) {
	return r.generate(ctx, r.reserveNext())
}

// regenerate roda o pipeline completo. Chamado com genMu travado.
func (r *Regenerator) regenerate(ctx context.Context, level mesh.DetailLevel) (*mesh.NormalizedMesh, error) {
	previous := r.State()
	r.state.Store(int32(StateGenerating))

	start := time.Now()
	m, err := r.pipeline(ctx, level)
	if err != nil {
		r.state.Store(int32(previous))
		if errors.Is(err, ErrSuperseded) {
			log.Printf("[Regen] Geração do nível %d descartada: %v", level, err)
		} else {
			log.Printf("[Regen] ERRO ao gerar nível %d: %v", level, err)
		}
		return nil, err
	}

	r.level.Store(int32(level))
	r.version++
	m.Level = level
	m.Version = r.version

	stats := Stats{
		Version:    m.Version,
		Level:      level,
		Depth:      r.depthOf(level),
		Strategy:   r.strategyName(),
		Vertices:   m.uniqueVertices,
		Faces:      m.FaceCount(),
		Degenerate: m.Degenerate,
		Duration:   time.Since(start),
	}
	r.publish(m.NormalizedMesh, stats)
	return m.NormalizedMesh, nil
}

// generated carrega a malha final junto com a contagem pós-solda.
type generated struct {
	*mesh.NormalizedMesh
	uniqueVertices int
}

func (r *Regenerator) pipeline(ctx context.Context, level mesh.DetailLevel) (generated, error) {
	strategy, err := mesh.StrategyFor(r.opts.Strategy, level, r.opts.Buckets)
	if err != nil {
		return generated{}, err
	}

	raw, err := mesh.BuildIcosahedron(r.opts.Radius, r.depthOf(level))
	if err != nil {
		return generated{}, err
	}
	if err := checkContext(ctx); err != nil {
		return generated{}, err
	}

	shared, err := mesh.Merge(raw, r.opts.Epsilon)
	if err != nil {
		return generated{}, err
	}
	if err := checkContext(ctx); err != nil {
		return generated{}, err
	}

	if _, err := mesh.Displace(shared, strategy, r.opts.RNG); err != nil {
		return generated{}, err
	}
	flat := mesh.Flatten(shared)
	if err := checkContext(ctx); err != nil {
		return generated{}, err
	}

	normalized := mesh.ComputeNormals(flat)
	if err := checkContext(ctx); err != nil {
		return generated{}, err
	}
	return generated{NormalizedMesh: normalized, uniqueVertices: len(shared.Vertices)}, nil
}

func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrSuperseded, err)
	}
	return nil
}

// publish troca o ponteiro atomicamente e avisa os consumidores.
func (r *Regenerator) publish(m *mesh.NormalizedMesh, stats Stats) {
	r.current.Store(m)
	r.state.Store(int32(StateReady))

	log.Printf("[Regen] Malha v%d publicada: nível %d (subdivisão %d), %d vértices únicos, %d faces, %v",
		stats.Version, stats.Level, stats.Depth, stats.Vertices, stats.Faces, stats.Duration.Round(time.Millisecond))

	r.subMu.RLock()
	displays := append([]Display(nil), r.displays...)
	recorders := append([]Recorder(nil), r.recorders...)
	r.subMu.RUnlock()

	for _, d := range displays {
		d.SetMesh(m)
	}
	for _, rec := range recorders {
		if err := rec.Record(stats); err != nil {
			log.Printf("[Regen] Erro ao registrar estatísticas v%d: %v", stats.Version, err)
		}
	}
}

func (r *Regenerator) strategyName() string {
	if r.opts.Strategy == "" {
		return mesh.StrategySingle
	}
	return r.opts.Strategy
}
