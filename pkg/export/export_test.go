package export

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-netforge/pkg/synth"
	"github.com/dd0wney/cluso-netforge/pkg/topology"
)

func testTopology(t *testing.T) *topology.Topology {
	t.Helper()
	gen, err := synth.NewGenerator(synth.DefaultConfig(), nil, nil)
	require.NoError(t, err)
	topo, err := gen.Generate(context.Background(), synth.Request{
		Archetype:     topology.ArchetypeEnterprise,
		Routers:       2,
		Switches:      4,
		Hosts:         8,
		SecurityLevel: topology.SecurityHigh,
		Seed:          42,
	})
	require.NoError(t, err)
	return topo
}

func TestProjectRoundTrip(t *testing.T) {
	topo := testTopology(t)

	data, err := Project(topo, ProjectOptions{IncludeConfigs: true, IncludeDocs: true})
	require.NoError(t, err)

	payload, err := ReadProject(data)
	require.NoError(t, err)

	assert.Equal(t, "8.2", payload.SimulatorVersion)
	require.NotNil(t, payload.Topology)
	assert.Equal(t, topo.ID, payload.Topology.ID)
	assert.Len(t, payload.Topology.Devices, len(topo.Devices))
	assert.Len(t, payload.Topology.Links, len(topo.Links))
	assert.NotEmpty(t, payload.Configurations)
	require.NotNil(t, payload.Documentation)
	assert.Equal(t, topo.TotalDevices, payload.Documentation.TotalDevices)
	assert.Len(t, payload.Documentation.AddressingScheme, len(topo.Segments))
}

func TestProjectOptionalSectionsOmitted(t *testing.T) {
	topo := testTopology(t)

	data, err := Project(topo, ProjectOptions{})
	require.NoError(t, err)

	payload, err := ReadProject(data)
	require.NoError(t, err)
	assert.Nil(t, payload.Configurations)
	assert.Nil(t, payload.Documentation)
}

func TestReadProjectRejectsCorruptInput(t *testing.T) {
	topo := testTopology(t)
	data, err := Project(topo, ProjectOptions{})
	require.NoError(t, err)

	cases := map[string][]byte{
		"empty":            nil,
		"truncated header": data[:6],
		"bad magic":        append([]byte("XXXX"), data[4:]...),
		"length mismatch":  data[:len(data)-1],
	}
	for name, input := range cases {
		_, err := ReadProject(input)
		assert.ErrorIs(t, err, ErrBadProject, name)
	}

	badVersion := append([]byte(nil), data...)
	badVersion[5] = 99
	_, err = ReadProject(badVersion)
	assert.ErrorIs(t, err, ErrBadProject, "unsupported version")
}

func TestGraphMLStructure(t *testing.T) {
	topo := testTopology(t)

	out, err := GraphML(topo)
	require.NoError(t, err)
	doc := string(out)

	assert.True(t, strings.HasPrefix(doc, "<?xml"))
	assert.Contains(t, doc, `<graphml xmlns="http://graphml.graphdrawing.org/xmlns"`)
	assert.Contains(t, doc, `edgedefault="undirected"`)

	for i := range topo.Devices {
		assert.Contains(t, doc, `<node id="`+topo.Devices[i].Name+`"`)
	}
	assert.Equal(t, len(topo.Links), strings.Count(doc, "<edge "))
}

func TestJSONGraphIsValid(t *testing.T) {
	topo := testTopology(t)

	out, err := JSONGraph(topo)
	require.NoError(t, err)

	var decoded topology.Topology
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, topo.ID, decoded.ID)
	assert.Equal(t, topo.TotalLinks, decoded.TotalLinks)
}

func TestDeviceConfigsCoverInfrastructure(t *testing.T) {
	topo := testTopology(t)
	configs := DeviceConfigs(topo)

	for i := range topo.Devices {
		d := &topo.Devices[i]
		cfg, ok := configs[d.Name]
		switch d.Type {
		case topology.DeviceRouter:
			require.True(t, ok, d.Name)
			assert.Contains(t, cfg, "hostname "+d.Name)
			assert.Contains(t, cfg, "router ospf 1")
		case topology.DeviceSwitch:
			require.True(t, ok, d.Name)
			assert.Contains(t, cfg, "vlan 10")
		case topology.DeviceFirewall, topology.DeviceIPS:
			require.True(t, ok, d.Name)
			assert.Contains(t, cfg, "access-list 100")
		default:
			assert.False(t, ok, "unexpected config for %s", d.Name)
		}
	}
}
