// Package engine is the daemon-side resolution service. It wraps the core
// resolver with request logging and counters; all payment-type derivation
// stays in pkg/bip353.
package engine

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/lc/bip353/internal/log"
	"github.com/lc/bip353/pkg/bip353"
)

// Engine serves resolution requests for the daemon. It carries no per-call
// state and is safe for concurrent use.
type Engine struct {
	resolver *bip353.Resolver

	total  atomic.Int64
	failed atomic.Int64
}

// Stats is a snapshot of the engine's counters.
type Stats struct {
	Resolutions int64
	Failures    int64
}

// New creates a new Engine around the given resolver.
func New(resolver *bip353.Resolver) *Engine {
	return &Engine{resolver: resolver}
}

// Resolve resolves a human-readable Bitcoin address to a payment
// instruction. Each request gets a correlation ID so the daemon's log lines
// for one resolution can be tied together.
func (e *Engine) Resolve(ctx context.Context, address string) (*bip353.PaymentInstruction, error) {
	id := uuid.NewString()
	log.Debugf("engine: [%s] resolving %q", id, address)

	instruction, err := e.resolver.ResolveAddress(ctx, address)
	e.total.Inc()
	if err != nil {
		e.failed.Inc()
		log.Warnf("engine: [%s] resolution failed: %v", id, err)
		return nil, err
	}

	log.Infof("engine: [%s] resolved to %s instruction", id, instruction.Type)
	return instruction, nil
}

// Stats returns the current resolution counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Resolutions: e.total.Load(),
		Failures:    e.failed.Load(),
	}
}
