// Package module provides the load module implementation
package module

import (
	"spindle/internal/modkit"
	"spindle/internal/modkit/repokit"

	"spindle/internal/services/load/domain"
	"spindle/internal/services/load/ingest"
	"spindle/internal/services/load/repo"
	"spindle/internal/services/load/service"
)

// Ports defines the load module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the load module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the load module.
// It wires the adapters and the service using config from deps.Cfg
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	// DB binder (no deps passed into repo)
	storeBinder := repo.NewPG()

	// Non-DB adapters
	readers := ingest.NewReaderFactory()

	var mirror domain.MirrorWriter
	if opts.Mirror && deps.CH != nil {
		mirror = ingest.NewMirror(deps.CH)
	}

	svc := service.New(
		repokit.TxRunner(deps.PG), storeBinder,
		readers, mirror,
		service.Config{
			BatchSize: opts.BatchSize,
			Mirror:    opts.Mirror,
		},
	)

	m := &Module{deps: deps}
	m.ports = Ports{Runner: svc}
	return m
}

// Name returns the module name
func (m *Module) Name() string { return "load" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
