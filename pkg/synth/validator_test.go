package synth

import (
	"errors"
	"net/netip"
	"testing"

	"github.com/dd0wney/cluso-netforge/pkg/topology"
)

// validTwoNode builds the smallest topology that passes validation
func validTwoNode() *topology.Topology {
	subnet := netip.MustParsePrefix("10.0.0.0/29")
	return &topology.Topology{
		ID:        "t",
		Archetype: topology.ArchetypeEnterprise,
		Devices: []topology.Device{
			{ID: 1, Name: "router-core-01", Type: topology.DeviceRouter, Tier: topology.TierCore, Segment: 0, Address: netip.MustParseAddr("10.0.0.2")},
			{ID: 2, Name: "switch-access-01", Type: topology.DeviceSwitch, Tier: topology.TierAccess, Segment: 0, Address: netip.MustParseAddr("10.0.0.3")},
		},
		Links: []topology.Link{
			{ID: 1, Source: 1, Target: 2, Type: topology.LinkUplink, Bandwidth: "10Gbps"},
		},
		Segments: []topology.Segment{
			{ID: 0, Name: "all", Tier: topology.TierCore, Subnet: subnet, Gateway: netip.MustParseAddr("10.0.0.1")},
		},
		TotalDevices: 2,
		TotalLinks:   1,
	}
}

func TestValidateAcceptsWellFormed(t *testing.T) {
	if err := ValidateTopology(validTwoNode()); err != nil {
		t.Fatalf("valid topology rejected: %v", err)
	}
}

func assertInvariant(t *testing.T, topo *topology.Topology) {
	t.Helper()
	err := ValidateTopology(topo)
	if !errors.Is(err, topology.ErrInvariantViolation) {
		t.Fatalf("err = %v, want ErrInvariantViolation", err)
	}
	if !topology.IsFatal(err) {
		t.Fatal("invariant violation must be fatal")
	}
}

func TestValidateDuplicateDeviceID(t *testing.T) {
	topo := validTwoNode()
	topo.Devices[1].ID = 1
	assertInvariant(t, topo)
}

func TestValidateDuplicateName(t *testing.T) {
	topo := validTwoNode()
	topo.Devices[1].Name = topo.Devices[0].Name
	assertInvariant(t, topo)
}

func TestValidateUnknownSegment(t *testing.T) {
	topo := validTwoNode()
	topo.Devices[1].Segment = 9
	assertInvariant(t, topo)
}

func TestValidateDanglingLink(t *testing.T) {
	topo := validTwoNode()
	topo.Links[0].Target = 99
	assertInvariant(t, topo)
}

func TestValidateDuplicateAddress(t *testing.T) {
	topo := validTwoNode()
	topo.Devices[1].Address = topo.Devices[0].Address
	assertInvariant(t, topo)
}

func TestValidateAddressOutsideSubnet(t *testing.T) {
	topo := validTwoNode()
	topo.Devices[1].Address = netip.MustParseAddr("10.9.9.9")
	assertInvariant(t, topo)
}

func TestValidateCounterMismatch(t *testing.T) {
	topo := validTwoNode()
	topo.TotalLinks = 5
	assertInvariant(t, topo)
}

func TestValidateDisconnected(t *testing.T) {
	topo := validTwoNode()
	topo.Links = nil
	topo.TotalLinks = 0
	assertInvariant(t, topo)
}

func TestValidateMultiSiteNeedsBridge(t *testing.T) {
	topo := validTwoNode()
	topo.MultiSite = true
	// no bridge link id set
	assertInvariant(t, topo)
}

func TestValidateRedundancyShortfall(t *testing.T) {
	subnet := netip.MustParsePrefix("10.0.0.0/28")
	topo := &topology.Topology{
		ID:        "t",
		Archetype: topology.ArchetypeEnterprise,
		Devices: []topology.Device{
			{ID: 1, Name: "router-core-01", Type: topology.DeviceRouter, Tier: topology.TierCore, Address: netip.MustParseAddr("10.0.0.2")},
			{ID: 2, Name: "router-core-02", Type: topology.DeviceRouter, Tier: topology.TierCore, Address: netip.MustParseAddr("10.0.0.3")},
			{ID: 3, Name: "switch-distribution-01", Type: topology.DeviceSwitch, Tier: topology.TierDistribution, Address: netip.MustParseAddr("10.0.0.4")},
		},
		Links: []topology.Link{
			{ID: 1, Source: 1, Target: 2, Type: topology.LinkCore, Bandwidth: "10Gbps"},
			// distribution reaches only one of the two cores
			{ID: 2, Source: 1, Target: 3, Type: topology.LinkUplink, Bandwidth: "10Gbps"},
		},
		Segments: []topology.Segment{
			{ID: 0, Name: "all", Tier: topology.TierCore, Subnet: subnet, Gateway: netip.MustParseAddr("10.0.0.1")},
		},
		TotalDevices:      3,
		TotalLinks:        2,
		RedundancyEnabled: true,
	}
	assertInvariant(t, topo)

	// The same topology without the redundancy promise is fine
	topo.RedundancyEnabled = false
	if err := ValidateTopology(topo); err != nil {
		t.Fatalf("non-redundant variant rejected: %v", err)
	}
}
