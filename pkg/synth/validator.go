package synth

import (
	"fmt"

	"github.com/dd0wney/cluso-netforge/pkg/topology"
)

// ValidateTopology re-checks every structural invariant on a finished
// topology. A violation is an internal defect of the synthesis pipeline,
// never a caller error, so every failure is a fatal InvariantError.
// The hybrid-cloud attachment path runs this again on its output.
func ValidateTopology(t *topology.Topology) error {
	if err := validateIdentity(t); err != nil {
		return err
	}
	if err := validateAddressing(t); err != nil {
		return err
	}
	if err := validateCounters(t); err != nil {
		return err
	}
	if err := validateConnectivity(t); err != nil {
		return err
	}
	if t.RedundancyEnabled {
		if err := validateRedundancy(t); err != nil {
			return err
		}
	}
	return nil
}

func validateIdentity(t *topology.Topology) error {
	ids := make(map[uint64]bool, len(t.Devices))
	names := make(map[string]bool, len(t.Devices))
	segments := make(map[int]bool, len(t.Segments))
	for _, s := range t.Segments {
		segments[s.ID] = true
	}

	for i := range t.Devices {
		d := &t.Devices[i]
		if ids[d.ID] {
			return topology.InvariantError("identity", fmt.Sprintf("duplicate device id %d", d.ID))
		}
		ids[d.ID] = true
		if names[d.Name] {
			return topology.InvariantError("identity", fmt.Sprintf("duplicate device name %q", d.Name))
		}
		names[d.Name] = true
		if !segments[d.Segment] {
			return topology.InvariantError("identity", fmt.Sprintf("device %s references unknown segment %d", d.Name, d.Segment))
		}
	}

	linkIDs := make(map[uint64]bool, len(t.Links))
	for _, l := range t.Links {
		if linkIDs[l.ID] {
			return topology.InvariantError("identity", fmt.Sprintf("duplicate link id %d", l.ID))
		}
		linkIDs[l.ID] = true
		if !ids[l.Source] || !ids[l.Target] {
			return topology.InvariantError("identity", fmt.Sprintf("link %d references missing device (%d-%d)", l.ID, l.Source, l.Target))
		}
		if l.Source == l.Target {
			return topology.InvariantError("identity", fmt.Sprintf("link %d is a self loop on device %d", l.ID, l.Source))
		}
	}
	return nil
}

func validateAddressing(t *topology.Topology) error {
	subnets := make(map[int]topology.Segment, len(t.Segments))
	for _, s := range t.Segments {
		subnets[s.ID] = s
	}

	seen := make(map[string]string, len(t.Devices)*2)
	for i := range t.Devices {
		d := &t.Devices[i]
		if !d.Address.IsValid() {
			return topology.InvariantError("addressing", fmt.Sprintf("device %s has no address", d.Name))
		}
		seg := subnets[d.Segment]
		if !seg.Subnet.Contains(d.Address) {
			return topology.InvariantError("addressing",
				fmt.Sprintf("device %s address %s outside segment subnet %s", d.Name, d.Address, seg.Subnet))
		}
		for _, addr := range []string{d.Address.String(), managementKey(d)} {
			if addr == "" {
				continue
			}
			if holder, dup := seen[addr]; dup {
				return topology.InvariantError("addressing",
					fmt.Sprintf("address %s assigned to both %s and %s", addr, holder, d.Name))
			}
			seen[addr] = d.Name
		}
	}
	return nil
}

func managementKey(d *topology.Device) string {
	if !d.ManagementAddr.IsValid() {
		return ""
	}
	return d.ManagementAddr.String()
}

func validateCounters(t *topology.Topology) error {
	if t.TotalDevices != len(t.Devices) {
		return topology.InvariantError("counters",
			fmt.Sprintf("total_devices %d does not match %d devices", t.TotalDevices, len(t.Devices)))
	}
	if t.TotalLinks != len(t.Links) {
		return topology.InvariantError("counters",
			fmt.Sprintf("total_links %d does not match %d links", t.TotalLinks, len(t.Links)))
	}
	return nil
}

// validateConnectivity requires a single connected component, or for a
// multi-site topology exactly two components joined only by the declared
// bridging link
func validateConnectivity(t *topology.Topology) error {
	if len(t.Devices) < 2 {
		return nil
	}
	adj := topology.BuildAdjacency(t.Devices, t.Links)
	components := adj.Components(t.Devices)

	if !t.MultiSite {
		if len(components) != 1 {
			return topology.InvariantError("connectivity",
				fmt.Sprintf("%d components, expected a single connected topology", len(components)))
		}
		return nil
	}

	if t.BridgeLinkID == 0 {
		return topology.InvariantError("connectivity", "multi-site topology without a bridging link")
	}
	bridge := t.LinkByID(t.BridgeLinkID)
	if bridge == nil || bridge.Type != topology.LinkVPN {
		return topology.InvariantError("connectivity",
			fmt.Sprintf("bridging link %d missing or not a vpn link", t.BridgeLinkID))
	}
	if len(components) != 1 {
		return topology.InvariantError("connectivity",
			fmt.Sprintf("%d components in multi-site topology, expected the bridge to join both sites", len(components)))
	}
	split := topology.BuildAdjacency(t.Devices, t.Links, t.BridgeLinkID)
	if parts := split.Components(t.Devices); len(parts) != 2 {
		return topology.InvariantError("connectivity",
			fmt.Sprintf("removing the bridging link yields %d components, expected 2", len(parts)))
	}
	return nil
}

// validateRedundancy checks that every downstream device whose upstream
// tier offers at least two candidates actually reaches two of them. Hosts
// are single-homed by design and exempt.
func validateRedundancy(t *topology.Topology) error {
	byTier := make(map[topology.Tier][]uint64)
	for i := range t.Devices {
		byTier[t.Devices[i].Tier] = append(byTier[t.Devices[i].Tier], t.Devices[i].ID)
	}
	adj := topology.BuildAdjacency(t.Devices, t.Links)

	for i := range t.Devices {
		d := &t.Devices[i]
		if d.Type == topology.DeviceHost {
			continue
		}
		upstream := upstreamTierOf(d, byTier)
		if len(upstream) < 2 {
			continue
		}
		reached := 0
		for _, up := range upstream {
			if adj.HasEdge(d.ID, up) {
				reached++
			}
		}
		if reached < 2 {
			return topology.InvariantError("redundancy",
				fmt.Sprintf("device %s reaches %d upstream devices, expected at least 2", d.Name, reached))
		}
	}
	return nil
}

func upstreamTierOf(d *topology.Device, byTier map[topology.Tier][]uint64) []uint64 {
	switch d.Tier {
	case topology.TierDistribution:
		return byTier[topology.TierCore]
	case topology.TierAccess:
		if len(byTier[topology.TierDistribution]) > 0 {
			return byTier[topology.TierDistribution]
		}
		return byTier[topology.TierCore]
	case topology.TierLeaf:
		return byTier[topology.TierSpine]
	case topology.TierVPC:
		if d.Type == topology.DeviceSwitch {
			return byTier[topology.TierGateway]
		}
		return nil
	default:
		return nil
	}
}
