package addressing

import (
	"errors"
	"net/netip"
	"testing"

	"github.com/dd0wney/cluso-netforge/pkg/topology"
)

func newTestAllocator(t *testing.T) *Allocator {
	t.Helper()
	a, err := NewAllocator(
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.168.100.0/22"),
		3,
	)
	if err != nil {
		t.Fatalf("NewAllocator: %v", err)
	}
	return a
}

func TestNewAllocatorRejectsOverlap(t *testing.T) {
	_, err := NewAllocator(
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("10.1.0.0/24"),
		3,
	)
	if err == nil {
		t.Fatal("overlapping base and management prefixes accepted")
	}
}

func TestNewAllocatorRejectsIPv6(t *testing.T) {
	_, err := NewAllocator(
		netip.MustParsePrefix("2001:db8::/32"),
		netip.MustParsePrefix("192.168.100.0/22"),
		3,
	)
	if err == nil {
		t.Fatal("IPv6 base prefix accepted")
	}
}

func TestAllocateSegmentSizesToDemand(t *testing.T) {
	a := newTestAllocator(t)
	seg, err := a.AllocateSegment(0, Plan{Name: "core", Tier: topology.TierCore, Devices: 5})
	if err != nil {
		t.Fatalf("AllocateSegment: %v", err)
	}
	// 5 devices + 3 reserved rounds up to 8 addresses, a /29
	if seg.Subnet.Bits() != 29 {
		t.Fatalf("subnet = %s, want a /29", seg.Subnet)
	}
	if !seg.Subnet.Contains(seg.Gateway) {
		t.Fatalf("gateway %s outside subnet %s", seg.Gateway, seg.Subnet)
	}
}

func TestNextHostStaysInSegment(t *testing.T) {
	a := newTestAllocator(t)
	seg, err := a.AllocateSegment(0, Plan{Name: "access", Tier: topology.TierAccess, Devices: 10})
	if err != nil {
		t.Fatalf("AllocateSegment: %v", err)
	}

	seen := map[netip.Addr]bool{seg.Gateway: true}
	for i := 0; i < 10; i++ {
		addr, err := a.NextHost(0)
		if err != nil {
			t.Fatalf("NextHost #%d: %v", i, err)
		}
		if !seg.Subnet.Contains(addr) {
			t.Fatalf("address %s outside %s", addr, seg.Subnet)
		}
		if seen[addr] {
			t.Fatalf("address %s handed out twice", addr)
		}
		seen[addr] = true
	}
}

func TestNextHostExhaustsSegment(t *testing.T) {
	a := newTestAllocator(t)
	if _, err := a.AllocateSegment(0, Plan{Name: "tiny", Tier: topology.TierAccess, Devices: 1}); err != nil {
		t.Fatalf("AllocateSegment: %v", err)
	}

	var err error
	for i := 0; i < 16; i++ {
		if _, err = a.NextHost(0); err != nil {
			break
		}
	}
	if !errors.Is(err, topology.ErrAddressSpaceExhausted) {
		t.Fatalf("err = %v, want ErrAddressSpaceExhausted", err)
	}
}

func TestNextHostUnknownSegment(t *testing.T) {
	a := newTestAllocator(t)
	if _, err := a.NextHost(7); err == nil {
		t.Fatal("NextHost on unallocated segment succeeded")
	}
}

func TestManagementAddressesUnique(t *testing.T) {
	a := newTestAllocator(t)
	seen := make(map[netip.Addr]bool)
	mgmt := netip.MustParsePrefix("192.168.100.0/22")
	for i := 0; i < 100; i++ {
		addr, err := a.NextManagement()
		if err != nil {
			t.Fatalf("NextManagement #%d: %v", i, err)
		}
		if !mgmt.Contains(addr) {
			t.Fatalf("management address %s outside %s", addr, mgmt)
		}
		if seen[addr] {
			t.Fatalf("management address %s handed out twice", addr)
		}
		seen[addr] = true
	}
}

func TestSegmentsNeverOverlap(t *testing.T) {
	a := newTestAllocator(t)
	sizes := []int{5, 60, 3, 250, 14, 1, 120}
	var subnets []netip.Prefix
	for i, n := range sizes {
		seg, err := a.AllocateSegment(i, Plan{Name: "seg", Tier: topology.TierAccess, Devices: n})
		if err != nil {
			t.Fatalf("AllocateSegment #%d: %v", i, err)
		}
		subnets = append(subnets, seg.Subnet)
	}
	for i := range subnets {
		for j := i + 1; j < len(subnets); j++ {
			if subnets[i].Overlaps(subnets[j]) {
				t.Fatalf("segments %s and %s overlap", subnets[i], subnets[j])
			}
		}
	}
}
