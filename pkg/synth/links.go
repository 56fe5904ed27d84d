package synth

import (
	"github.com/dd0wney/cluso-netforge/pkg/profile"
	"github.com/dd0wney/cluso-netforge/pkg/topology"
)

// buildLinks wires the device arena according to the archetype's fan-out
// rules, then repairs any disconnection so single-site topologies always
// come out as one component (multi-site: one component per site, joined by
// the bridging link).
func (d *draft) buildLinks() error {
	switch d.prof.Archetype {
	case topology.ArchetypeDatacenter:
		d.buildSpineLeafLinks()
	case topology.ArchetypeCloud:
		d.buildCloudLinks()
	case topology.ArchetypeHybrid:
		d.buildEnterpriseLinks()
		d.buildCloudSideLinks()
		d.buildBridge()
	default:
		d.buildEnterpriseLinks()
	}

	d.attachBoundary()
	d.repairIsolated()
	return nil
}

// buildEnterpriseLinks applies the three-tier pattern: meshed core, each
// distribution device multi-homed to the core, access single-homed to
// distribution, hosts single-homed to access.
func (d *draft) buildEnterpriseLinks() {
	if d.prof.FanOut.CoreMesh {
		for i := 0; i < len(d.core); i++ {
			for j := i + 1; j < len(d.core); j++ {
				d.addLink(d.core[i], d.core[j], topology.LinkCore, d.cfg.Bandwidth.Core)
			}
		}
	}

	uplinks := d.prof.FanOut.DistUplinks
	if uplinks > len(d.core) {
		uplinks = len(d.core)
	}
	for i, sw := range d.dist {
		for k := 0; k < uplinks; k++ {
			d.addLink(d.core[(i+k)%len(d.core)], sw, topology.LinkUplink, d.cfg.Bandwidth.Uplink)
		}
	}

	for i, sw := range d.access {
		switch {
		case len(d.dist) > 0:
			parent := d.dist[i%len(d.dist)]
			if b, campus := d.groupOf[sw]; campus && d.prof.Segmentation == profile.SegmentByBuilding {
				parent = d.dist[b%len(d.dist)]
			}
			d.addLink(parent, sw, topology.LinkAccess, d.cfg.Bandwidth.Access)
		case len(d.core) > 0:
			// No distribution layer: access uplinks straight to the core
			d.addLink(d.core[i%len(d.core)], sw, topology.LinkUplink, d.cfg.Bandwidth.Uplink)
		}
	}

	d.attachHosts(d.hosts)
}

// buildSpineLeafLinks connects every leaf to every spine. The full
// bipartite mesh is structural: it does not depend on the redundancy flag.
func (d *draft) buildSpineLeafLinks() {
	for _, spine := range d.core {
		for _, leaf := range d.access {
			d.addLink(spine, leaf, topology.LinkUplink, d.cfg.Bandwidth.SpineLeaf)
		}
	}
	d.attachHosts(d.hosts)
}

// buildCloudLinks wires each VPC internally and joins VPC gateways with
// virtual links in a hub-and-spoke around the first gateway
func (d *draft) buildCloudLinks() {
	gwByVPC := make(map[int]uint64)
	for _, gw := range d.cloudGateways {
		gwByVPC[d.groupOf[gw]] = gw
	}
	for _, sw := range d.cloudSwitches {
		if gw, ok := gwByVPC[d.groupOf[sw]]; ok {
			d.addLink(gw, sw, topology.LinkUplink, d.cfg.Bandwidth.Uplink)
		}
	}
	d.attachHosts(d.cloudHosts)

	// Inter-VPC virtual links carry no physical bandwidth semantics
	for i := 1; i < len(d.cloudGateways); i++ {
		d.addLink(d.cloudGateways[0], d.cloudGateways[i], topology.LinkWAN, d.cfg.Bandwidth.Virtual)
	}
}

// buildCloudSideLinks wires the cloud subgraph of a hybrid topology
func (d *draft) buildCloudSideLinks() {
	if len(d.cloudGateways) == 0 {
		return
	}
	gw := d.cloudGateways[0]
	for _, sw := range d.cloudSwitches {
		d.addLink(gw, sw, topology.LinkUplink, d.cfg.Bandwidth.Uplink)
	}
	d.attachHosts(d.cloudHosts)
}

// buildBridge adds the single VPN bridging link between the on-premise
// core and the cloud gateway
func (d *draft) buildBridge() {
	if !d.multiSite || len(d.core) == 0 || len(d.cloudGateways) == 0 {
		return
	}
	d.bridgeLinkID = d.addLink(d.core[0], d.cloudGateways[0], topology.LinkVPN, d.cfg.Bandwidth.VPN)
}

// attachHosts wires hosts to their precomputed parents
func (d *draft) attachHosts(hosts []uint64) {
	for _, h := range hosts {
		if parent := d.hostParent[h]; parent != 0 {
			d.addLink(parent, h, topology.LinkAccess, d.cfg.Bandwidth.Access)
		}
	}
}

// attachBoundary wires security appliances inline at the core, or at the
// gateway tier for cloud archetypes with no core
func (d *draft) attachBoundary() {
	if len(d.boundary) == 0 {
		return
	}
	anchors := d.core
	if len(anchors) == 0 {
		anchors = d.cloudGateways
	}
	if len(anchors) == 0 {
		return
	}
	for i, b := range d.boundary {
		d.addLink(anchors[i%len(anchors)], b, topology.LinkUplink, d.cfg.Bandwidth.Uplink)
	}
}

// cloudSide reports whether a device belongs to the cloud subgraph of a
// multi-site topology
func (d *draft) cloudSide(id uint64) bool {
	dev := d.device(id)
	return dev.Tier == topology.TierVPC || dev.Tier == topology.TierGateway
}

// repairAnchorTiers lists, in preference order, the tiers an isolated
// device of the given tier may be attached to
func repairAnchorTiers(t topology.Tier) []topology.Tier {
	switch t {
	case topology.TierAccess, topology.TierLeaf:
		return []topology.Tier{topology.TierDistribution, topology.TierCore, topology.TierSpine, topology.TierAccess, topology.TierLeaf}
	case topology.TierDistribution:
		return []topology.Tier{topology.TierCore, topology.TierDistribution}
	case topology.TierVPC:
		return []topology.Tier{topology.TierGateway, topology.TierVPC}
	case topology.TierGateway:
		return []topology.Tier{topology.TierGateway, topology.TierVPC}
	default:
		return []topology.Tier{topology.TierCore, topology.TierSpine, topology.TierDistribution, topology.TierAccess, topology.TierLeaf, topology.TierGateway, topology.TierVPC}
	}
}

// repairIsolated reattaches every disconnected component to the main one.
// Hosts prefer an access-layer anchor; everything else climbs toward the
// nearest eligible upstream tier. Multi-site topologies are repaired per
// site so the bridging link stays the only inter-site edge.
func (d *draft) repairIsolated() {
	if len(d.devices) < 2 {
		return
	}

	for {
		adj := d.adjacency()
		components := adj.Components(d.devices)
		if len(components) <= 1 {
			return
		}

		// The component holding device 1 is the main one
		mainIdx := 0
		for i, comp := range components {
			for _, id := range comp {
				if id == 1 {
					mainIdx = i
				}
			}
		}
		main := make(map[uint64]bool)
		for _, id := range components[mainIdx] {
			main[id] = true
		}

		repaired := false
		for i, comp := range components {
			if i == mainIdx {
				continue
			}
			orphan := comp[0]
			anchor := d.findAnchor(orphan, main)
			if anchor == 0 {
				continue
			}
			lt, bw := topology.LinkUplink, d.cfg.Bandwidth.Uplink
			if d.device(orphan).Type == topology.DeviceHost {
				lt, bw = topology.LinkAccess, d.cfg.Bandwidth.Access
			}
			d.addLink(anchor, orphan, lt, bw)
			d.warnf("repaired isolated device %s", d.device(orphan).Name)
			repaired = true
			break // rebuild adjacency before the next pass
		}
		if !repaired {
			// No eligible anchor in any component; nothing more to do here,
			// the validator will reject the topology if this matters
			return
		}
	}
}

// findAnchor picks the attachment point for an orphaned device inside the
// main component, honoring tier preference and site boundaries
func (d *draft) findAnchor(orphan uint64, main map[uint64]bool) uint64 {
	orphanCloud := d.multiSite && d.cloudSide(orphan)
	for _, tier := range repairAnchorTiers(d.device(orphan).Tier) {
		for id := uint64(1); id <= uint64(len(d.devices)); id++ {
			if !main[id] || id == orphan {
				continue
			}
			if d.multiSite && d.cloudSide(id) != orphanCloud {
				continue
			}
			dev := d.device(id)
			if dev.Tier == tier && dev.Type != topology.DeviceHost {
				return id
			}
		}
	}
	// Last resort: any non-host device on the right site
	for id := uint64(1); id <= uint64(len(d.devices)); id++ {
		if main[id] && id != orphan && d.device(id).Type != topology.DeviceHost {
			if !d.multiSite || d.cloudSide(id) == orphanCloud {
				return id
			}
		}
	}
	// No infrastructure on this site at all: chain onto a host so the
	// component still closes
	for id := uint64(1); id <= uint64(len(d.devices)); id++ {
		if main[id] && id != orphan {
			if !d.multiSite || d.cloudSide(id) == orphanCloud {
				return id
			}
		}
	}
	return 0
}
