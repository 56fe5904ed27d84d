package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dd0wney/cluso-netforge/pkg/analytics"
	"github.com/dd0wney/cluso-netforge/pkg/audit"
	"github.com/dd0wney/cluso-netforge/pkg/cloud"
	"github.com/dd0wney/cluso-netforge/pkg/export"
	"github.com/dd0wney/cluso-netforge/pkg/logging"
	"github.com/dd0wney/cluso-netforge/pkg/metrics"
	"github.com/dd0wney/cluso-netforge/pkg/synth"
	"github.com/dd0wney/cluso-netforge/pkg/topology"

	"github.com/prometheus/common/expfmt"
)

var (
	archetype  = flag.String("archetype", "enterprise", "Topology archetype: enterprise, datacenter, campus, cloud, hybrid")
	routers    = flag.Int("routers", 2, "Number of routers")
	switches   = flag.Int("switches", 4, "Number of switches")
	hosts      = flag.Int("hosts", 10, "Number of hosts")
	security   = flag.String("security", "medium", "Security level: low, medium, high, critical")
	redundancy = flag.Bool("redundancy", false, "Add redundant upstream paths")
	optimize   = flag.Bool("optimize", false, "Run the optimization pass")
	seed       = flag.Int64("seed", 0, "Generation seed (same seed reproduces the same topology)")
	configFile = flag.String("config", "", "YAML config file overriding addressing and bandwidth defaults")
	format     = flag.String("format", "json", "Output format: json, graphml, project")
	output     = flag.String("output", "", "Output file (default stdout)")
	runAudit   = flag.Bool("audit", false, "Print a security audit report to stderr")
	runStats   = flag.Bool("analytics", false, "Print an analytics report to stderr")
	verbose    = flag.Bool("verbose", false, "Print generation metrics to stderr")

	attachProvider = flag.String("attach-cloud", "", "Attach a cloud segment: aws, azure, gcp")
	cloudRegion    = flag.String("cloud-region", "us-east-1", "Cloud region for the attached segment")
	cloudCIDR      = flag.String("cloud-cidr", "172.16.0.0/16", "CIDR of the attached cloud segment")
	cloudSwitches  = flag.Int("cloud-switches", 2, "Virtual switches in the attached segment")
	cloudHosts     = flag.Int("cloud-hosts", 4, "Instances in the attached segment")
	cloudBandwidth = flag.Int("cloud-bandwidth", 500, "VPN tunnel bandwidth in Mbps")
)

func main() {
	flag.Parse()
	logger := logging.NewDefaultLogger()

	cfg := synth.DefaultConfig()
	if *configFile != "" {
		raw, err := os.ReadFile(*configFile)
		if err != nil {
			fatal(logger, "read config", err)
		}
		cfg, err = synth.ParseConfig(raw)
		if err != nil {
			fatal(logger, "parse config", err)
		}
	}

	reg := metrics.NewRegistry()
	gen, err := synth.NewGenerator(cfg, logger, reg)
	if err != nil {
		fatal(logger, "configure generator", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	topo, err := gen.Generate(ctx, synth.Request{
		Archetype:     topology.Archetype(*archetype),
		Routers:       *routers,
		Switches:      *switches,
		Hosts:         *hosts,
		SecurityLevel: topology.SecurityLevel(*security),
		Redundancy:    *redundancy,
		Optimize:      *optimize,
		Seed:          *seed,
	})
	if err != nil {
		fatal(logger, "generate topology", err)
	}
	for _, w := range topo.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}

	if *attachProvider != "" {
		dep, err := cloud.NewIntegrator(logger).AttachCloud(topo, cloud.Spec{
			Provider:      *attachProvider,
			Region:        *cloudRegion,
			Switches:      *cloudSwitches,
			Hosts:         *cloudHosts,
			CIDR:          *cloudCIDR,
			BandwidthMbps: *cloudBandwidth,
		})
		if err != nil {
			fatal(logger, "attach cloud segment", err)
		}
		topo = dep.Topology
		printJSON(struct {
			VPN     cloud.VPNConfig     `json:"vpn"`
			Routing cloud.RoutingConfig `json:"routing"`
			Cost    cloud.CostEstimate  `json:"cost"`
		}{dep.VPN, dep.Routing, dep.Cost})
	}

	var out []byte
	switch *format {
	case "json":
		out, err = export.JSONGraph(topo)
	case "graphml":
		out, err = export.GraphML(topo)
	case "project":
		out, err = export.Project(topo, export.ProjectOptions{IncludeConfigs: true, IncludeDocs: true})
	default:
		fatal(logger, "select format", fmt.Errorf("unknown format %q", *format))
	}
	if err != nil {
		fatal(logger, "export topology", err)
	}

	if *output == "" {
		os.Stdout.Write(out)
	} else if err := os.WriteFile(*output, out, 0o644); err != nil {
		fatal(logger, "write output", err)
	}

	if *runAudit {
		report := audit.NewAuditor(topo, logger).Run(nil, audit.Standards())
		printJSON(report)
	}
	if *runStats {
		printJSON(analytics.NewEngine(topo).Analyze())
	}
	if *verbose {
		dumpMetrics(reg)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stderr)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

func dumpMetrics(reg *metrics.Registry) {
	families, err := reg.Gatherer().Gather()
	if err != nil {
		return
	}
	enc := expfmt.NewEncoder(os.Stderr, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		enc.Encode(mf)
	}
}

func fatal(logger logging.Logger, op string, err error) {
	logger.Error(op+" failed", logging.Error(err))
	os.Exit(1)
}
