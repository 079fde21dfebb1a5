package ai

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultSimulationDelay mimics the latency of the hosted model.
const DefaultSimulationDelay = 2 * time.Second

// Simulator is a Scorer that invents predictions locally, for use without
// network access to the real service.
type Simulator struct {
	delay time.Duration
	flat  bool
	log   *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// SimulatorOption configures a Simulator.
type SimulatorOption func(*Simulator)

// WithFlatResponse makes the simulator answer like the gpt backend:
// top-level predictions with a single probability per row.
func WithFlatResponse() SimulatorOption {
	return func(s *Simulator) { s.flat = true }
}

// WithRand replaces the random source, mainly for tests.
func WithRand(r *rand.Rand) SimulatorOption {
	return func(s *Simulator) { s.rng = r }
}

func WithSimulatorLogger(l *zap.Logger) SimulatorOption {
	return func(s *Simulator) { s.log = orNop(l) }
}

// NewSimulator returns a simulator that answers after delay.
func NewSimulator(delay time.Duration, opts ...SimulatorOption) *Simulator {
	if delay < 0 {
		delay = 0
	}
	s := &Simulator{
		delay: delay,
		log:   zap.NewNop(),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Score waits for the configured delay and returns one random prediction
// per request row.
func (s *Simulator) Score(ctx context.Context, req *ScoringRequest) (*ScoringResponse, error) {
	if err := sleepCtx(ctx, s.delay); err != nil {
		return nil, err
	}
	n := req.Rows()
	values := make([][]any, 0, n)

	s.mu.Lock()
	for i := 0; i < n; i++ {
		label := RiskLabels[s.rng.Intn(len(RiskLabels))]
		p := s.rng.Float64()
		if s.flat {
			values = append(values, []any{label, p})
		} else {
			values = append(values, []any{label, []any{p, 1 - p}})
		}
	}
	s.mu.Unlock()

	pred := []Prediction{{Fields: []string{"prediction", "probability"}, Values: values}}
	s.log.Debug("simulated scoring", zap.Int("rows", n), zap.Bool("flat", s.flat))
	if s.flat {
		return &ScoringResponse{Engine: "local-simulation", OK: true, Model: "gpt-simulated-model", Predictions: pred}, nil
	}
	return &ScoringResponse{Engine: "local-simulation", OK: true, Result: &ResultBlock{Predictions: pred}}, nil
}
