// Package analytics derives performance, traffic, and capacity estimates
// from a topology's link bandwidths and graph shape. The topology is read
// only; nothing here mutates it. Estimates that model load rather than
// structure are drawn from a source seeded by the topology itself, so the
// same topology always yields the same analysis.
package analytics

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-netforge/pkg/topology"
)

// PerformanceMetrics summarizes expected path behavior
type PerformanceMetrics struct {
	AverageLatencyMs    float64 `json:"averageLatencyMs"`
	PeakLatencyMs       float64 `json:"peakLatencyMs"`
	ThroughputGbps      float64 `json:"throughputGbps"`
	PacketLossPercent   float64 `json:"packetLossPercent"`
	JitterMs            float64 `json:"jitterMs"`
	AvailabilityPercent float64 `json:"availabilityPercent"`
}

// TrafficEstimate models offered load across the topology
type TrafficEstimate struct {
	TotalTrafficGB   float64        `json:"totalTrafficGb"`
	PeakHourGB       float64        `json:"peakHourGb"`
	ProtocolShare    map[string]int `json:"protocolShare"`
	TopTalkers       []Talker       `json:"topTalkers"`
}

// Talker is one high-volume device
type Talker struct {
	Device    string  `json:"device"`
	TrafficGB float64 `json:"trafficGb"`
}

// DeviceUtilization is the port-occupancy ratio of one device
type DeviceUtilization struct {
	Device             string `json:"device"`
	UtilizationPercent int    `json:"utilizationPercent"`
	RemainingPercent   int    `json:"remainingPercent"`
}

// CapacityReport aggregates utilization and growth headroom
type CapacityReport struct {
	OverallUtilizationPercent int                 `json:"overallUtilizationPercent"`
	PeakUtilizationPercent    int                 `json:"peakUtilizationPercent"`
	Devices                   []DeviceUtilization `json:"devices"`
}

// Bottleneck flags a congested link
type Bottleneck struct {
	Location       string  `json:"location"`
	Type           string  `json:"type"`
	Severity       string  `json:"severity"`
	LoadPerGbps    float64 `json:"loadPerGbps"`
	Recommendation string  `json:"recommendation"`
}

// Analysis is the full analytics output
type Analysis struct {
	Performance PerformanceMetrics `json:"performance"`
	Traffic     TrafficEstimate    `json:"traffic"`
	Capacity    CapacityReport     `json:"capacity"`
	Bottlenecks []Bottleneck       `json:"bottlenecks"`
	Suggestions []string           `json:"suggestions"`
}

// perHopLatencyMs is the modeled forwarding delay of one network hop
const perHopLatencyMs = 0.35

// Engine computes analyses over one topology
type Engine struct {
	topo *topology.Topology
	adj  topology.Adjacency
	rng  *rand.Rand
}

// NewEngine builds the adjacency once and seeds the load model from the
// topology's generation seed
func NewEngine(t *topology.Topology) *Engine {
	return &Engine{
		topo: t,
		adj:  topology.BuildAdjacency(t.Devices, t.Links),
		rng:  rand.New(rand.NewSource(t.Metadata.Seed ^ int64(len(t.Links)))),
	}
}

// Analyze produces the complete report
func (e *Engine) Analyze() *Analysis {
	return &Analysis{
		Performance: e.performance(),
		Traffic:     e.traffic(),
		Capacity:    e.capacity(),
		Bottlenecks: e.bottlenecks(),
		Suggestions: e.suggestions(),
	}
}

// ParseBandwidth converts a tiered bandwidth label to Gbps. Virtual links
// carry no physical capacity and report zero.
func ParseBandwidth(s string) float64 {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasSuffix(s, "Gbps"):
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "Gbps"), 64)
		if err != nil {
			return 0
		}
		return v
	case strings.HasSuffix(s, "Mbps"):
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "Mbps"), 64)
		if err != nil {
			return 0
		}
		return v / 1000
	default:
		return 0
	}
}

// hostDepths runs a BFS from the gateway tier and returns the hop count of
// every host
func (e *Engine) hostDepths() []int {
	dist := make(map[uint64]int, len(e.topo.Devices))
	var queue []uint64
	for i := range e.topo.Devices {
		d := &e.topo.Devices[i]
		if d.Tier == topology.TierCore || d.Tier == topology.TierSpine || d.Tier == topology.TierGateway {
			dist[d.ID] = 0
			queue = append(queue, d.ID)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range e.adj[cur] {
			if _, seen := dist[n.DeviceID]; !seen {
				dist[n.DeviceID] = dist[cur] + 1
				queue = append(queue, n.DeviceID)
			}
		}
	}

	var depths []int
	for i := range e.topo.Devices {
		if e.topo.Devices[i].Type == topology.DeviceHost {
			if h, ok := dist[e.topo.Devices[i].ID]; ok {
				depths = append(depths, h)
			}
		}
	}
	return depths
}

func (e *Engine) performance() PerformanceMetrics {
	depths := e.hostDepths()
	avgHops, peakHops := 0.0, 0
	for _, h := range depths {
		avgHops += float64(h)
		if h > peakHops {
			peakHops = h
		}
	}
	if len(depths) > 0 {
		avgHops /= float64(len(depths))
	}

	// Aggregate capacity at the core bounds achievable throughput
	coreGbps := 0.0
	for _, l := range e.topo.Links {
		if l.Type == topology.LinkCore || l.Type == topology.LinkUplink {
			coreGbps += ParseBandwidth(l.Bandwidth)
		}
	}

	availability := 99.9
	if e.topo.RedundancyEnabled {
		availability = 99.99
	}

	return PerformanceMetrics{
		AverageLatencyMs:    round2(avgHops * perHopLatencyMs),
		PeakLatencyMs:       round2(float64(peakHops) * perHopLatencyMs * 2),
		ThroughputGbps:      round2(coreGbps),
		PacketLossPercent:   round3(0.01 + e.rng.Float64()*0.04),
		JitterMs:            round2(perHopLatencyMs * (0.5 + e.rng.Float64())),
		AvailabilityPercent: availability,
	}
}

func (e *Engine) traffic() TrafficEstimate {
	hosts := 0
	for i := range e.topo.Devices {
		if e.topo.Devices[i].Type == topology.DeviceHost {
			hosts++
		}
	}

	// 20-50 GB per host per day, seeded
	perHost := 20 + e.rng.Float64()*30
	total := perHost * float64(hosts)

	talkers := e.topTalkers(3)

	return TrafficEstimate{
		TotalTrafficGB: round2(total),
		PeakHourGB:     round2(total * 0.15),
		ProtocolShare: map[string]int{
			"https": 40,
			"http":  25,
			"ssh":   10,
			"dns":   5,
			"other": 20,
		},
		TopTalkers: talkers,
	}
}

// topTalkers ranks infrastructure devices by degree, ties broken by id
func (e *Engine) topTalkers(n int) []Talker {
	type ranked struct {
		name   string
		id     uint64
		degree int
	}
	var infra []ranked
	for i := range e.topo.Devices {
		d := &e.topo.Devices[i]
		if d.Type == topology.DeviceHost {
			continue
		}
		infra = append(infra, ranked{d.Name, d.ID, e.adj.Degree(d.ID)})
	}
	sort.Slice(infra, func(i, j int) bool {
		if infra[i].degree != infra[j].degree {
			return infra[i].degree > infra[j].degree
		}
		return infra[i].id < infra[j].id
	})
	if len(infra) > n {
		infra = infra[:n]
	}
	out := make([]Talker, len(infra))
	for i, r := range infra {
		out[i] = Talker{Device: r.name, TrafficGB: round2(float64(r.degree) * (30 + e.rng.Float64()*20))}
	}
	return out
}

func (e *Engine) capacity() CapacityReport {
	var devices []DeviceUtilization
	totalUtil := 0
	for i := range e.topo.Devices {
		d := &e.topo.Devices[i]
		if d.Type == topology.DeviceHost || len(d.Interfaces) == 0 {
			continue
		}
		used := 0
		for _, iface := range d.Interfaces {
			if iface.LinkID != 0 {
				used++
			}
		}
		util := used * 100 / len(d.Interfaces)
		totalUtil += util
		devices = append(devices, DeviceUtilization{
			Device:             d.Name,
			UtilizationPercent: util,
			RemainingPercent:   100 - util,
		})
	}

	sort.Slice(devices, func(i, j int) bool {
		return devices[i].UtilizationPercent > devices[j].UtilizationPercent
	})
	if len(devices) > 10 {
		devices = devices[:10]
	}

	overall, peak := 0, 0
	if len(devices) > 0 {
		overall = totalUtil / len(devices)
		peak = devices[0].UtilizationPercent
	}
	return CapacityReport{
		OverallUtilizationPercent: overall,
		PeakUtilizationPercent:    peak,
		Devices:                   devices,
	}
}

// bottlenecks flags links whose endpoint load is high relative to the
// link's capacity
func (e *Engine) bottlenecks() []Bottleneck {
	var out []Bottleneck
	for _, l := range e.topo.Links {
		gbps := ParseBandwidth(l.Bandwidth)
		if gbps == 0 {
			continue
		}
		load := float64(e.adj.Degree(l.Source)+e.adj.Degree(l.Target)) / gbps
		if load < 8 {
			continue
		}
		src := e.topo.DeviceByID(l.Source)
		dst := e.topo.DeviceByID(l.Target)
		severity := "medium"
		if load >= 16 {
			severity = "high"
		}
		out = append(out, Bottleneck{
			Location:       fmt.Sprintf("%s to %s", src.Name, dst.Name),
			Type:           "bandwidth-saturation",
			Severity:       severity,
			LoadPerGbps:    round2(load),
			Recommendation: "upgrade the link or aggregate a parallel path",
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LoadPerGbps > out[j].LoadPerGbps })
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}

func (e *Engine) suggestions() []string {
	s := []string{
		"apply qos policies for latency-sensitive applications",
		"enable link aggregation on high-degree switches",
	}
	if !e.topo.RedundancyEnabled {
		s = append(s, "enable redundancy for a second upstream path per device")
	}
	if !e.topo.Optimized {
		s = append(s, "run the optimization pass to balance upstream load")
	}
	if len(e.bottlenecks()) > 0 {
		s = append(s, "upgrade saturated uplinks identified by bottleneck detection")
	}
	return s
}

func round2(v float64) float64 { return float64(int(v*100+0.5)) / 100 }
func round3(v float64) float64 { return float64(int(v*1000+0.5)) / 1000 }
