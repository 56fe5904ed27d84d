package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-netforge/pkg/synth"
	"github.com/dd0wney/cluso-netforge/pkg/topology"
)

func testTopology(t *testing.T, seed int64) *topology.Topology {
	t.Helper()
	gen, err := synth.NewGenerator(synth.DefaultConfig(), nil, nil)
	require.NoError(t, err)
	topo, err := gen.Generate(context.Background(), synth.Request{
		Archetype:     topology.ArchetypeEnterprise,
		Routers:       4,
		Switches:      8,
		Hosts:         20,
		SecurityLevel: topology.SecurityHigh,
		Redundancy:    true,
		Seed:          seed,
	})
	require.NoError(t, err)
	return topo
}

func TestRunDefaultAudit(t *testing.T) {
	topo := testTopology(t, 1)
	report := NewAuditor(topo, nil).Run(nil, nil)

	assert.Equal(t, topo.ID, report.TopologyID)
	assert.ElementsMatch(t, []string{AuditVulnerabilityScan, AuditConfiguration}, report.AuditTypes)
	assert.Contains(t, report.Compliance, "ISO 27001")
	assert.GreaterOrEqual(t, report.Score, 0)
	assert.LessOrEqual(t, report.Score, 100)
	assert.NotEmpty(t, report.Recommendations)
}

func TestAuditIsDeterministic(t *testing.T) {
	topo := testTopology(t, 2)
	types := []string{AuditVulnerabilityScan, AuditConfiguration, AuditPenetrationTest, AuditCVECheck}

	a := NewAuditor(topo, nil).Run(types, Standards())
	b := NewAuditor(topo, nil).Run(types, Standards())

	assert.Equal(t, a.Findings, b.Findings)
	assert.Equal(t, a.Compliance, b.Compliance)
	assert.Equal(t, a.Score, b.Score)
}

func TestFindingsReferenceRealDevices(t *testing.T) {
	topo := testTopology(t, 3)
	report := NewAuditor(topo, nil).Run([]string{AuditVulnerabilityScan, AuditConfiguration}, nil)

	names := make(map[string]bool, len(topo.Devices))
	for i := range topo.Devices {
		names[topo.Devices[i].Name] = true
	}
	for _, f := range report.Findings {
		assert.True(t, names[f.Device], "finding references unknown device %q", f.Device)
		assert.NotEmpty(t, f.Remediation)
	}
}

func TestPenetrationTestFindingsAreNetworkWide(t *testing.T) {
	topo := testTopology(t, 4)
	report := NewAuditor(topo, nil).Run([]string{AuditPenetrationTest}, nil)

	require.NotEmpty(t, report.Findings)
	for _, f := range report.Findings {
		assert.Equal(t, "network-wide", f.Device)
	}
}

func TestComplianceFrameworks(t *testing.T) {
	topo := testTopology(t, 5)
	auditor := NewAuditor(topo, nil)

	for _, standard := range Standards() {
		result := auditor.checkCompliance(standard)
		assert.Equal(t, standard, result.Standard)
		assert.Equal(t, result.Controls, result.Passed+result.Failed)
		assert.InDelta(t, float64(result.Passed)/float64(result.Controls)*100, result.Percentage, 0.001)
		assert.Len(t, result.Requirements, result.Controls)
	}

	unknown := auditor.checkCompliance("COBIT")
	assert.Equal(t, 0, unknown.Controls)
	assert.False(t, unknown.Pass)
}

func TestScoreDeductions(t *testing.T) {
	r := &Report{Findings: []Finding{
		{Severity: SeverityCritical},
		{Severity: SeverityHigh},
		{Severity: SeverityMedium},
		{Severity: SeverityLow},
	}}
	// 100 - 10 - 5 - 2 - 1 = 82, no compliance blending
	assert.Equal(t, 82, score(r))

	// Enough criticals floor the score at zero
	many := &Report{}
	for i := 0; i < 20; i++ {
		many.Findings = append(many.Findings, Finding{Severity: SeverityCritical})
	}
	assert.Equal(t, 0, score(many))
}
