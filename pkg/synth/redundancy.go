package synth

import (
	"github.com/dd0wney/cluso-netforge/pkg/topology"
)

// augmentRedundancy gives every eligible device a second path toward its
// upstream tier. Hosts stay single-homed, top-tier devices have no
// upstream, and a device that already reaches two distinct upstream
// neighbors is left alone. When only one upstream candidate exists the
// device is skipped and the topology carries a partial-redundancy warning.
func (d *draft) augmentRedundancy() {
	if !d.req.Redundancy {
		return
	}

	adj := d.adjacency()
	for id := uint64(1); id <= uint64(len(d.devices)); id++ {
		candidates := d.upstreamCandidates(id)
		if candidates == nil {
			continue
		}

		connected := 0
		for _, up := range candidates {
			if adj.HasEdge(id, up) {
				connected++
			}
		}
		if connected != 1 {
			continue
		}

		if len(candidates) < 2 {
			d.redundSkips++
			d.warnf("partial redundancy: no alternate upstream for %s", d.device(id).Name)
			continue
		}

		added := false
		for _, up := range candidates {
			if adj.HasEdge(id, up) {
				continue
			}
			linkID := d.addLink(up, id, topology.LinkRedundant, d.redundantBandwidth(id))
			adj[id] = append(adj[id], topology.Neighbor{DeviceID: up, LinkID: linkID})
			adj[up] = append(adj[up], topology.Neighbor{DeviceID: id, LinkID: linkID})
			added = true
			break
		}
		if !added {
			d.redundSkips++
			d.warnf("partial redundancy: no alternate upstream for %s", d.device(id).Name)
		}
	}
}

// upstreamCandidates lists the devices one tier above the given one. A nil
// result means the device is not subject to redundancy augmentation.
func (d *draft) upstreamCandidates(id uint64) []uint64 {
	dev := d.device(id)
	if dev.Type == topology.DeviceHost {
		return nil
	}
	switch dev.Tier {
	case topology.TierDistribution:
		return d.core
	case topology.TierAccess:
		if len(d.dist) > 0 {
			return d.dist
		}
		return d.core
	case topology.TierLeaf:
		return d.core
	case topology.TierVPC:
		if dev.Type == topology.DeviceSwitch {
			return d.cloudGateways
		}
		return nil
	default:
		return nil
	}
}

func (d *draft) redundantBandwidth(id uint64) string {
	switch d.device(id).Tier {
	case topology.TierLeaf:
		return d.cfg.Bandwidth.SpineLeaf
	case topology.TierAccess:
		if len(d.dist) > 0 {
			return d.cfg.Bandwidth.Access
		}
		return d.cfg.Bandwidth.Uplink
	default:
		return d.cfg.Bandwidth.Uplink
	}
}
