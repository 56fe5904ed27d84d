package addressing

import (
	"net/netip"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/cluso-netforge/pkg/topology"
)

// TestAllocatorInvariants verifies the carving invariants that the
// synthesis pipeline relies on: carved subnets never overlap, and every
// handed-out address lands inside its own segment exactly once.
func TestAllocatorInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("carved subnets never overlap", prop.ForAll(
		func(sizes []int) bool {
			a, err := NewAllocator(
				netip.MustParsePrefix("10.0.0.0/8"),
				netip.MustParsePrefix("192.168.100.0/22"),
				3,
			)
			if err != nil {
				return false
			}

			var subnets []netip.Prefix
			for i, n := range sizes {
				seg, err := a.AllocateSegment(i, Plan{Name: "seg", Tier: topology.TierAccess, Devices: n})
				if err != nil {
					// Exhaustion is a valid outcome for large draws
					break
				}
				subnets = append(subnets, seg.Subnet)
			}
			for i := range subnets {
				for j := i + 1; j < len(subnets); j++ {
					if subnets[i].Overlaps(subnets[j]) {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 5000)),
	))

	properties.Property("addresses are unique and in-segment", prop.ForAll(
		func(devices int) bool {
			a, err := NewAllocator(
				netip.MustParsePrefix("10.0.0.0/8"),
				netip.MustParsePrefix("192.168.100.0/22"),
				3,
			)
			if err != nil {
				return false
			}
			seg, err := a.AllocateSegment(0, Plan{Name: "seg", Tier: topology.TierAccess, Devices: devices})
			if err != nil {
				return false
			}

			seen := make(map[netip.Addr]bool)
			for i := 0; i < devices; i++ {
				addr, err := a.NextHost(0)
				if err != nil {
					return false
				}
				if seen[addr] || !seg.Subnet.Contains(addr) || addr == seg.Gateway {
					return false
				}
				seen[addr] = true
			}
			return true
		},
		gen.IntRange(1, 2000),
	))

	properties.TestingRun(t)
}
