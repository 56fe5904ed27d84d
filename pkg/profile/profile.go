// Package profile maps network archetypes to their structural patterns:
// tier layout, fan-out rules, and segmentation policy. The registry is
// static; synthesis looks a profile up once per generation.
package profile

import (
	"github.com/dd0wney/cluso-netforge/pkg/topology"
)

// SegmentationPolicy decides how devices are grouped into address segments
type SegmentationPolicy string

const (
	// SegmentByTier gives every tier (and the host population) its own segment
	SegmentByTier SegmentationPolicy = "tier"
	// SegmentByBuilding groups each building's distribution, access and host
	// devices into one segment, with a separate core segment
	SegmentByBuilding SegmentationPolicy = "building"
	// SegmentByVPC gives every logical cloud segment its own subnet
	SegmentByVPC SegmentationPolicy = "vpc"
)

// FanOut captures the per-archetype connectivity rules consumed by the
// link builder.
type FanOut struct {
	// CoreMesh fully meshes the router tier
	CoreMesh bool
	// FullBipartite connects every leaf to every spine; when set the
	// uplink counts below are ignored for the switch tiers
	FullBipartite bool
	// DistUplinks is the number of core routers each distribution device
	// connects to (enterprise: 2)
	DistUplinks int
	// AccessUplinks is the number of distribution devices each access
	// device connects to (enterprise: 1; redundancy adds the second)
	AccessUplinks int
	// HostUplinks is the number of access devices each host connects to.
	// Always 1: hosts are single-homed by contract.
	HostUplinks int
}

// Profile is the structural pattern for one archetype
type Profile struct {
	Archetype topology.Archetype

	// RouterTier is where routers land (core, spine, or gateway)
	RouterTier topology.Tier
	// SwitchTiers is the ordered list of tiers the switch count is split
	// across: one entry takes all switches, two entries split half/rest
	SwitchTiers []topology.Tier
	// HostTier is the tier hosts attach beneath
	HostTier topology.Tier

	Segmentation SegmentationPolicy
	FanOut       FanOut

	// MultiSite archetypes are built as two subgraphs joined by exactly
	// one bridging link
	MultiSite bool
}

var registry = map[topology.Archetype]Profile{
	topology.ArchetypeEnterprise: {
		Archetype:    topology.ArchetypeEnterprise,
		RouterTier:   topology.TierCore,
		SwitchTiers:  []topology.Tier{topology.TierDistribution, topology.TierAccess},
		HostTier:     topology.TierAccess,
		Segmentation: SegmentByTier,
		FanOut: FanOut{
			CoreMesh:      true,
			DistUplinks:   2,
			AccessUplinks: 1,
			HostUplinks:   1,
		},
	},
	topology.ArchetypeDatacenter: {
		Archetype:    topology.ArchetypeDatacenter,
		RouterTier:   topology.TierSpine,
		SwitchTiers:  []topology.Tier{topology.TierLeaf},
		HostTier:     topology.TierLeaf,
		Segmentation: SegmentByTier,
		FanOut: FanOut{
			FullBipartite: true,
			HostUplinks:   1,
		},
	},
	topology.ArchetypeCampus: {
		Archetype:    topology.ArchetypeCampus,
		RouterTier:   topology.TierCore,
		SwitchTiers:  []topology.Tier{topology.TierDistribution, topology.TierAccess},
		HostTier:     topology.TierAccess,
		Segmentation: SegmentByBuilding,
		FanOut: FanOut{
			CoreMesh:      true,
			DistUplinks:   1,
			AccessUplinks: 1,
			HostUplinks:   1,
		},
	},
	topology.ArchetypeCloud: {
		Archetype:    topology.ArchetypeCloud,
		RouterTier:   topology.TierGateway,
		SwitchTiers:  []topology.Tier{topology.TierVPC},
		HostTier:     topology.TierVPC,
		Segmentation: SegmentByVPC,
		FanOut: FanOut{
			DistUplinks:   1,
			AccessUplinks: 1,
			HostUplinks:   1,
		},
	},
	topology.ArchetypeHybrid: {
		Archetype:    topology.ArchetypeHybrid,
		RouterTier:   topology.TierCore,
		SwitchTiers:  []topology.Tier{topology.TierDistribution, topology.TierAccess},
		HostTier:     topology.TierAccess,
		Segmentation: SegmentByTier,
		FanOut: FanOut{
			CoreMesh:      true,
			DistUplinks:   2,
			AccessUplinks: 1,
			HostUplinks:   1,
		},
		MultiSite: true,
	},
}

// Lookup returns the profile for an archetype. Unknown archetypes are a
// configuration error.
func Lookup(archetype topology.Archetype) (Profile, error) {
	p, ok := registry[archetype]
	if !ok {
		return Profile{}, topology.ConfigurationError("Lookup", "unknown archetype "+string(archetype))
	}
	return p, nil
}

// Known reports whether the archetype has a registered profile
func Known(archetype topology.Archetype) bool {
	_, ok := registry[archetype]
	return ok
}
