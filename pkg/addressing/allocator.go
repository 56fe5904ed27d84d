// Package addressing partitions a private address space into per-segment
// subnets and hands out unique host and management addresses.
//
// Subnets are sized to the next power of two that fits the segment's device
// count plus the reserved network/gateway/broadcast addresses, and carved at
// monotonically increasing, size-aligned offsets. Alignment plus monotonic
// growth is what guarantees no two segments overlap; sequential host indexing
// below the broadcast address is what guarantees no address reuse.
package addressing

import (
	"fmt"
	"math/bits"
	"net/netip"

	"github.com/dd0wney/cluso-netforge/pkg/topology"
)

// Plan asks for one segment sized for a device count
type Plan struct {
	Name    string
	Tier    topology.Tier
	Devices int
}

// Allocator carves subnets out of a base prefix and assigns addresses.
// All state is private to one generation call; concurrent generations use
// independent allocators and never interfere.
type Allocator struct {
	base     netip.Prefix
	mgmt     netip.Prefix
	reserved int

	offset   uint64            // next free offset within base
	capacity uint64            // total addresses under base
	nextHost map[int]uint64    // segment id -> next host index
	segSize  map[int]uint64    // segment id -> subnet size
	segBase  map[int]netip.Addr

	mgmtNext uint64
	mgmtCap  uint64
}

// NewAllocator creates an allocator over the given base and management
// prefixes. Both must be IPv4 and must not overlap.
func NewAllocator(base, mgmt netip.Prefix, reserved int) (*Allocator, error) {
	if !base.IsValid() || !base.Addr().Is4() {
		return nil, topology.ConfigurationError("NewAllocator", "base prefix must be a valid IPv4 prefix")
	}
	if !mgmt.IsValid() || !mgmt.Addr().Is4() {
		return nil, topology.ConfigurationError("NewAllocator", "management prefix must be a valid IPv4 prefix")
	}
	if base.Overlaps(mgmt) {
		return nil, topology.ConfigurationError("NewAllocator", "base and management prefixes overlap")
	}
	if reserved < 3 {
		// network + gateway + broadcast at minimum
		return nil, topology.ConfigurationError("NewAllocator", fmt.Sprintf("reserved addresses %d below minimum 3", reserved))
	}

	return &Allocator{
		base:     base.Masked(),
		mgmt:     mgmt.Masked(),
		reserved: reserved,
		capacity: uint64(1) << (32 - base.Bits()),
		nextHost: make(map[int]uint64),
		segSize:  make(map[int]uint64),
		segBase:  make(map[int]netip.Addr),
		mgmtNext: 1, // .0 is the network address
		mgmtCap:  (uint64(1) << (32 - mgmt.Bits())) - 1,
	}, nil
}

// AllocateSegment carves the next subnet for the plan and returns the
// segment record. Segment ids must be unique across one allocator.
func (a *Allocator) AllocateSegment(id int, plan Plan) (topology.Segment, error) {
	if plan.Devices < 0 {
		return topology.Segment{}, topology.ParameterError("AllocateSegment", plan.Name, "negative device count")
	}
	if _, exists := a.segSize[id]; exists {
		return topology.Segment{}, topology.ConfigurationError("AllocateSegment", fmt.Sprintf("segment %d already allocated", id))
	}

	size := nextPow2(uint64(plan.Devices) + uint64(a.reserved))

	// Align the offset to the subnet size so the carved range is a valid
	// CIDR block. Alignment never moves the offset backwards, so ranges
	// from successive calls cannot overlap.
	offset := alignUp(a.offset, size)
	if size > a.capacity || offset > a.capacity-size {
		return topology.Segment{}, topology.ExhaustedError("AllocateSegment",
			fmt.Sprintf("segment %q needs %d addresses at offset %d but %s holds %d", plan.Name, size, offset, a.base, a.capacity))
	}

	network := addAddr(a.base.Addr(), offset)
	prefix := netip.PrefixFrom(network, 32-bits.TrailingZeros64(size))
	gateway := addAddr(network, 1)

	a.offset = offset + size
	a.segSize[id] = size
	a.segBase[id] = network
	a.nextHost[id] = 2 // first address after the gateway

	return topology.Segment{
		ID:      id,
		Name:    plan.Name,
		Tier:    plan.Tier,
		Subnet:  prefix,
		Gateway: gateway,
	}, nil
}

// NextHost returns the next sequential host address in the segment.
// Fails when the segment's usable range (below the broadcast address) is
// exhausted; sized segments never hit this for their planned device count.
func (a *Allocator) NextHost(segmentID int) (netip.Addr, error) {
	size, ok := a.segSize[segmentID]
	if !ok {
		return netip.Addr{}, topology.ConfigurationError("NextHost", fmt.Sprintf("unknown segment %d", segmentID))
	}
	idx := a.nextHost[segmentID]
	if idx >= size-1 {
		return netip.Addr{}, topology.ExhaustedError("NextHost", fmt.Sprintf("segment %d full at %d addresses", segmentID, size))
	}
	a.nextHost[segmentID] = idx + 1
	return addAddr(a.segBase[segmentID], idx), nil
}

// NextManagement returns the next out-of-band management address.
// Management addresses come from a disjoint pool and are never reused.
func (a *Allocator) NextManagement() (netip.Addr, error) {
	if a.mgmtNext >= a.mgmtCap {
		return netip.Addr{}, topology.ExhaustedError("NextManagement", fmt.Sprintf("management pool %s full", a.mgmt))
	}
	addr := addAddr(a.mgmt.Addr(), a.mgmtNext)
	a.mgmtNext++
	return addr, nil
}

// Remaining returns the number of unallocated addresses under the base prefix
func (a *Allocator) Remaining() uint64 {
	return a.capacity - a.offset
}

// nextPow2 returns the smallest power of two >= n (minimum 4: a /30)
func nextPow2(n uint64) uint64 {
	if n <= 4 {
		return 4
	}
	return uint64(1) << bits.Len64(n-1)
}

// alignUp rounds offset up to the next multiple of size (size is a power of two)
func alignUp(offset, size uint64) uint64 {
	return (offset + size - 1) &^ (size - 1)
}

// addAddr returns base advanced by n addresses
func addAddr(base netip.Addr, n uint64) netip.Addr {
	b := base.As4()
	v := uint64(b[0])<<24 | uint64(b[1])<<16 | uint64(b[2])<<8 | uint64(b[3])
	v += n
	return netip.AddrFrom4([4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
}
