package ai

import (
	"sort"
	"time"

	"go.uber.org/zap"
)

// EngineFactory builds a Scorer from the generic config below.
type EngineFactory func(EngineConfig) Scorer

// EngineConfig carries common knobs used by engines.
type EngineConfig struct {
	// HTTP engines
	BaseURL     string
	APIKey      string
	HTTPTimeout time.Duration
	RetryMax    int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Simulators
	SimulationDelay time.Duration

	Logger *zap.Logger
}

var registry = map[string]EngineFactory{}

// RegisterEngine registers an engine name with its factory.
func RegisterEngine(name string, f EngineFactory) { registry[name] = f }

// GetScorer creates a Scorer for the given engine if registered.
func GetScorer(name string, cfg EngineConfig) (Scorer, bool) {
	if f, ok := registry[name]; ok {
		return f(cfg), true
	}
	return nil, false
}

// Engines lists registered engine names in sorted order.
func Engines() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func init() {
	RegisterEngine(EngineWatson, func(c EngineConfig) Scorer {
		return NewWatsonClient(c.APIKey, c.BaseURL, c.HTTPTimeout, c.RetryMax, c.BaseDelay, c.MaxDelay).
			WithLogger(c.Logger)
	})
	RegisterEngine(EngineGPT, func(c EngineConfig) Scorer {
		return NewClient(c.APIKey, c.BaseURL, c.HTTPTimeout, c.RetryMax, c.BaseDelay, c.MaxDelay).
			WithLogger(c.Logger)
	})
	// A zero SimulationDelay answers immediately; config supplies the default.
	RegisterEngine(EngineLocal, func(c EngineConfig) Scorer {
		return NewSimulator(c.SimulationDelay, WithSimulatorLogger(c.Logger))
	})
	RegisterEngine(EngineLocalGPT, func(c EngineConfig) Scorer {
		return NewSimulator(c.SimulationDelay, WithFlatResponse(), WithSimulatorLogger(c.Logger))
	})
}

func orNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
