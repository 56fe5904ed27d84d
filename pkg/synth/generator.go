package synth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-netforge/pkg/logging"
	"github.com/dd0wney/cluso-netforge/pkg/metrics"
	"github.com/dd0wney/cluso-netforge/pkg/profile"
	"github.com/dd0wney/cluso-netforge/pkg/topology"
	"github.com/dd0wney/cluso-netforge/pkg/validation"
)

// Generator turns synthesis requests into validated topologies. A Generator
// is safe for concurrent use: every call owns its own draft state, and the
// config is copied at construction time.
type Generator struct {
	cfg     Config
	logger  logging.Logger
	metrics *metrics.Registry
}

// NewGenerator validates the config and returns a ready generator. A nil
// logger disables logging; a nil registry disables metrics.
func NewGenerator(cfg Config, logger logging.Logger, reg *metrics.Registry) (*Generator, error) {
	if err := validation.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Generator{cfg: cfg, logger: logger, metrics: reg}, nil
}

// Generate runs the full synthesis pipeline and returns an immutable
// topology. The caller may cancel between phases through ctx; the
// optimization pass additionally enforces its own hard budget.
func (g *Generator) Generate(ctx context.Context, req Request) (*topology.Topology, error) {
	start := time.Now()
	log := g.logger.With(
		logging.Archetype(string(req.Archetype)),
		logging.Seed(req.Seed),
	)

	if err := ValidateRequest(&req); err != nil {
		g.recordOutcome(req, "invalid", 0, 0, start)
		return nil, err
	}
	prof, err := profile.Lookup(req.Archetype)
	if err != nil {
		g.recordOutcome(req, "invalid", 0, 0, start)
		return nil, err
	}

	d := newDraft(g.cfg, prof, req)

	phases := []struct {
		name string
		run  func() error
	}{
		{"synthesize", d.synthesizeDevices},
		{"allocate", d.allocateAddresses},
		{"link", d.buildLinks},
		{"augment", func() error { d.augmentRedundancy(); return nil }},
		{"optimize", func() error { d.optimize(); return nil }},
	}
	for _, p := range phases {
		if err := ctx.Err(); err != nil {
			g.recordOutcome(req, "canceled", len(d.devices), len(d.links), start)
			return nil, err
		}
		timer := logging.StartTimer(log, "synthesis phase", logging.Phase(p.name))
		if err := p.run(); err != nil {
			timer.EndError(err)
			if g.metrics != nil && errors.Is(err, topology.ErrAddressSpaceExhausted) {
				g.metrics.ExhaustionTotal.Inc()
			}
			g.recordOutcome(req, "error", len(d.devices), len(d.links), start)
			return nil, topology.PhaseError("Generate", p.name, err)
		}
		timer.End()
		if g.metrics != nil {
			g.metrics.RecordPhase(p.name, timer.Elapsed())
		}
	}

	t := d.assemble(req)
	if err := ValidateTopology(t); err != nil {
		log.Error("topology failed validation", logging.Error(err))
		g.recordOutcome(req, "error", len(d.devices), len(d.links), start)
		return nil, err
	}

	if g.metrics != nil {
		if req.Optimize {
			g.metrics.RecordOptimization(d.optIters, d.optPartial)
		}
		for i := 0; i < d.redundSkips; i++ {
			g.metrics.RedundancyWarningsTotal.Inc()
		}
	}
	g.recordOutcome(req, "ok", len(t.Devices), len(t.Links), start)

	log.Info("topology generated",
		logging.Devices(t.TotalDevices),
		logging.Links(t.TotalLinks),
		logging.Segments(len(t.Segments)),
		logging.Duration(time.Since(start)),
	)
	return t, nil
}

func (g *Generator) recordOutcome(req Request, status string, devices, links int, start time.Time) {
	if g.metrics == nil {
		return
	}
	g.metrics.RecordGeneration(string(req.Archetype), status, devices, links, time.Since(start))
}

// assemble freezes the draft into the returned topology value. The draft
// is discarded afterwards, so the result shares no mutable state with the
// generator.
func (d *draft) assemble(req Request) *topology.Topology {
	return &topology.Topology{
		ID:                  uuid.NewString(),
		Archetype:           req.Archetype,
		Devices:             d.devices,
		Links:               d.links,
		Segments:            d.segments,
		TotalDevices:        len(d.devices),
		TotalLinks:          len(d.links),
		SecurityLevel:       req.SecurityLevel,
		RedundancyEnabled:   req.Redundancy,
		Optimized:           d.optimized,
		OptimizationPartial: d.optPartial,
		MultiSite:           d.multiSite,
		BridgeLinkID:        d.bridgeLinkID,
		Warnings:            d.warnings,
		Metadata: topology.Metadata{
			Seed:        req.Seed,
			Routers:     req.Routers,
			Switches:    req.Switches,
			Hosts:       req.Hosts,
			GeneratedAt: time.Now().UTC(),
		},
	}
}
