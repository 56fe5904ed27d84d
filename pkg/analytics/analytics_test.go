package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-netforge/pkg/synth"
	"github.com/dd0wney/cluso-netforge/pkg/topology"
)

func testTopology(t *testing.T, redundancy bool, seed int64) *topology.Topology {
	t.Helper()
	gen, err := synth.NewGenerator(synth.DefaultConfig(), nil, nil)
	require.NoError(t, err)
	topo, err := gen.Generate(context.Background(), synth.Request{
		Archetype:     topology.ArchetypeEnterprise,
		Routers:       3,
		Switches:      6,
		Hosts:         18,
		SecurityLevel: topology.SecurityMedium,
		Redundancy:    redundancy,
		Seed:          seed,
	})
	require.NoError(t, err)
	return topo
}

func TestParseBandwidth(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"10Gbps", 10},
		{"1Gbps", 1},
		{"2.5Gbps", 2.5},
		{"100Mbps", 0.1},
		{" 40Gbps ", 40},
		{"virtual", 0},
		{"Gbps", 0},
		{"", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseBandwidth(tc.in), "input %q", tc.in)
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	topo := testTopology(t, true, 7)

	a := NewEngine(topo).Analyze()
	b := NewEngine(topo).Analyze()

	assert.Equal(t, a, b)
}

func TestPerformanceDerivedFromGraph(t *testing.T) {
	topo := testTopology(t, true, 8)
	perf := NewEngine(topo).performance()

	// Hosts sit at least two hops below the core, so latency is positive
	assert.Greater(t, perf.AverageLatencyMs, 0.0)
	assert.GreaterOrEqual(t, perf.PeakLatencyMs, perf.AverageLatencyMs)
	assert.Greater(t, perf.ThroughputGbps, 0.0)
	assert.Equal(t, 99.99, perf.AvailabilityPercent)

	noRedundancy := testTopology(t, false, 8)
	assert.Equal(t, 99.9, NewEngine(noRedundancy).performance().AvailabilityPercent)
}

func TestTrafficScalesWithHosts(t *testing.T) {
	topo := testTopology(t, false, 9)
	est := NewEngine(topo).traffic()

	hosts := 0
	for i := range topo.Devices {
		if topo.Devices[i].Type == topology.DeviceHost {
			hosts++
		}
	}
	// 20-50 GB per host per day
	assert.GreaterOrEqual(t, est.TotalTrafficGB, float64(hosts)*20)
	assert.LessOrEqual(t, est.TotalTrafficGB, float64(hosts)*50)
	assert.Less(t, est.PeakHourGB, est.TotalTrafficGB)
	assert.Len(t, est.TopTalkers, 3)

	share := 0
	for _, pct := range est.ProtocolShare {
		share += pct
	}
	assert.Equal(t, 100, share)
}

func TestTopTalkersExcludeHosts(t *testing.T) {
	topo := testTopology(t, false, 10)
	byName := make(map[string]topology.DeviceType, len(topo.Devices))
	for i := range topo.Devices {
		byName[topo.Devices[i].Name] = topo.Devices[i].Type
	}

	for _, talker := range NewEngine(topo).topTalkers(5) {
		require.Contains(t, byName, talker.Device)
		assert.NotEqual(t, topology.DeviceHost, byName[talker.Device])
		assert.Greater(t, talker.TrafficGB, 0.0)
	}
}

func TestCapacityBounds(t *testing.T) {
	topo := testTopology(t, true, 11)
	report := NewEngine(topo).capacity()

	require.NotEmpty(t, report.Devices)
	assert.LessOrEqual(t, len(report.Devices), 10)
	assert.GreaterOrEqual(t, report.PeakUtilizationPercent, report.OverallUtilizationPercent)

	for _, d := range report.Devices {
		assert.GreaterOrEqual(t, d.UtilizationPercent, 0)
		assert.LessOrEqual(t, d.UtilizationPercent, 100)
		assert.Equal(t, 100, d.UtilizationPercent+d.RemainingPercent)
	}
}

func TestSuggestionsReflectFlags(t *testing.T) {
	plain := testTopology(t, false, 12)
	s := NewEngine(plain).suggestions()
	assert.Contains(t, s, "enable redundancy for a second upstream path per device")
	assert.Contains(t, s, "run the optimization pass to balance upstream load")

	redundant := testTopology(t, true, 12)
	assert.NotContains(t, NewEngine(redundant).suggestions(),
		"enable redundancy for a second upstream path per device")
}
