package synth

import (
	"fmt"

	"github.com/dd0wney/cluso-netforge/pkg/addressing"
	"github.com/dd0wney/cluso-netforge/pkg/profile"
	"github.com/dd0wney/cluso-netforge/pkg/topology"
)

// segmentGroup is one planned segment and the devices that will live in it
type segmentGroup struct {
	plan    addressing.Plan
	members []uint64
	cloud   bool // carved from the cloud prefix instead of the base prefix
}

// computeHostParents decides which upstream device every host attaches to.
// The link builder wires these attachments; segmentation uses them to place
// campus hosts in their building's segment. Parent 0 means no candidate
// exists and the repair pass will adopt the host.
func (d *draft) computeHostParents() {
	d.hostParent = make(map[uint64]uint64, len(d.hosts)+len(d.cloudHosts))

	attach := func(hosts, parents []uint64) {
		if len(parents) == 0 {
			return
		}
		perParent := len(hosts) / len(parents)
		if perParent < 1 {
			perParent = 1
		}
		for i, h := range hosts {
			idx := i / perParent
			if idx >= len(parents) {
				idx = len(parents) - 1
			}
			d.hostParent[h] = parents[idx]
		}
	}

	// On-premise hosts fall through access -> distribution -> core
	parents := d.access
	if len(parents) == 0 {
		parents = d.dist
	}
	if len(parents) == 0 {
		parents = d.core
	}
	attach(d.hosts, parents)

	// Cloud hosts attach within their own VPC
	swByVPC := make(map[int][]uint64)
	for _, sw := range d.cloudSwitches {
		v := d.groupOf[sw]
		swByVPC[v] = append(swByVPC[v], sw)
	}
	gwByVPC := make(map[int]uint64)
	for _, gw := range d.cloudGateways {
		gwByVPC[d.groupOf[gw]] = gw
	}
	perVPCIndex := make(map[int]int)
	for _, h := range d.cloudHosts {
		v := d.groupOf[h]
		if sws := swByVPC[v]; len(sws) > 0 {
			d.hostParent[h] = sws[perVPCIndex[v]%len(sws)]
			perVPCIndex[v]++
		} else if gw, ok := gwByVPC[v]; ok {
			d.hostParent[h] = gw
		}
	}

	// Campus hosts inherit their parent's building for segmentation
	if d.prof.Segmentation == profile.SegmentByBuilding {
		for _, h := range d.hosts {
			if p := d.hostParent[h]; p != 0 {
				d.groupOf[h] = d.groupOf[p]
			}
		}
	}
}

// segmentGroups plans address segments according to the profile's
// segmentation policy. Group order is deterministic, so subnets land at
// stable offsets for a given request.
func (d *draft) segmentGroups() []segmentGroup {
	groups := make([]segmentGroup, 0, 4)

	add := func(name string, tier topology.Tier, members []uint64, cloud bool) {
		if len(members) == 0 {
			return
		}
		groups = append(groups, segmentGroup{
			plan:    addressing.Plan{Name: name, Tier: tier, Devices: len(members)},
			members: members,
			cloud:   cloud,
		})
	}

	switch d.prof.Segmentation {
	case profile.SegmentByBuilding:
		add("core", topology.TierCore, append(append([]uint64{}, d.core...), d.boundary...), false)
		buildings := len(d.dist)
		for b := 0; b < buildings; b++ {
			var members []uint64
			for id := uint64(1); id <= uint64(len(d.devices)); id++ {
				dev := d.device(id)
				if dev.Tier == topology.TierCore {
					continue
				}
				if g, ok := d.groupOf[id]; ok && g == b {
					members = append(members, id)
				}
			}
			add(fmt.Sprintf("building-%d", b+1), topology.TierDistribution, members, false)
		}
		// Devices with no building (no distribution layer) share the core segment
		if buildings == 0 {
			var rest []uint64
			for id := uint64(1); id <= uint64(len(d.devices)); id++ {
				if d.device(id).Tier != topology.TierCore {
					rest = append(rest, id)
				}
			}
			add("campus", topology.TierAccess, rest, false)
		}

	case profile.SegmentByVPC:
		// Boundary appliances sit outside every VPC and need their own segment
		add("boundary", topology.TierCore, d.boundary, false)
		vpcs := d.req.Routers
		if vpcs < 1 {
			vpcs = 1
		}
		for v := 0; v < vpcs; v++ {
			var members []uint64
			for id := uint64(1); id <= uint64(len(d.devices)); id++ {
				if g, ok := d.groupOf[id]; ok && g == v {
					members = append(members, id)
				}
			}
			add(fmt.Sprintf("vpc-%d", v+1), topology.TierVPC, members, true)
		}

	default: // SegmentByTier
		hostName := "hosts"
		hostTier := d.prof.HostTier
		if d.prof.Archetype == topology.ArchetypeDatacenter {
			hostName = "servers"
		}
		add(string(d.prof.RouterTier), d.prof.RouterTier, append(append([]uint64{}, d.core...), d.boundary...), false)
		add(string(topology.TierDistribution), topology.TierDistribution, d.dist, false)
		switchTier := topology.TierAccess
		if d.prof.Archetype == topology.ArchetypeDatacenter {
			switchTier = topology.TierLeaf
		}
		add(string(switchTier), switchTier, d.access, false)
		add(hostName, hostTier, d.hosts, false)
		if d.multiSite {
			cloudMembers := append(append(append([]uint64{}, d.cloudGateways...), d.cloudSwitches...), d.cloudHosts...)
			add("cloud-vpc", topology.TierVPC, cloudMembers, true)
		}
	}

	return groups
}

// allocateAddresses carves per-segment subnets and assigns every device a
// unique in-segment address plus an out-of-band management address for
// network gear. All allocator state is local to this draft.
func (d *draft) allocateAddresses() error {
	base, err := addressing.NewAllocator(d.cfg.basePrefix(), d.cfg.managementPrefix(), d.cfg.ReservedPerSegment)
	if err != nil {
		return err
	}

	var cloud *addressing.Allocator
	needsCloud := d.prof.Segmentation == profile.SegmentByVPC || d.multiSite
	if needsCloud {
		cloud, err = addressing.NewAllocator(d.cfg.cloudPrefix(), d.cfg.managementPrefix(), d.cfg.ReservedPerSegment)
		if err != nil {
			return err
		}
	}

	d.computeHostParents()

	for _, g := range d.segmentGroups() {
		alloc := base
		if g.cloud {
			alloc = cloud
		}
		segID := len(d.segments)
		seg, err := alloc.AllocateSegment(segID, g.plan)
		if err != nil {
			return err
		}
		d.segments = append(d.segments, seg)

		for _, id := range g.members {
			dev := d.device(id)
			dev.Segment = segID
			addr, err := alloc.NextHost(segID)
			if err != nil {
				return err
			}
			dev.Address = addr
			if len(dev.Interfaces) > 0 {
				dev.Interfaces[0].Address = addr
			}
			if dev.Type != topology.DeviceHost {
				mgmt, err := base.NextManagement()
				if err != nil {
					return err
				}
				dev.ManagementAddr = mgmt
			}
		}
	}
	return nil
}
