package synth

import (
	"fmt"
	"math/rand"

	"github.com/dd0wney/cluso-netforge/pkg/profile"
	"github.com/dd0wney/cluso-netforge/pkg/topology"
)

// draft is the mutable build state of one generation call. Device and link
// ids are arena indices (1-based) into the flat slices; nothing in a draft
// is shared between invocations.
type draft struct {
	cfg  Config
	prof profile.Profile
	req  Request
	rng  *rand.Rand

	devices  []topology.Device
	links    []topology.Link
	segments []topology.Segment
	warnings []string

	// Tier membership, in creation order. For hybrid topologies the cloud
	// side is tracked separately so the two subgraphs stay distinct until
	// the bridging link joins them.
	core     []uint64
	dist     []uint64
	access   []uint64
	hosts    []uint64
	boundary []uint64 // security appliances at the core boundary

	cloudGateways []uint64
	cloudSwitches []uint64
	cloudHosts    []uint64

	// groupOf maps device ids to a sub-structure index: the building for
	// campus topologies, the VPC for cloud topologies. Devices only uplink
	// within their own group.
	groupOf map[uint64]int

	// hostParent is the access-layer device each host attaches to,
	// decided once and shared by segmentation and the link builder
	hostParent map[uint64]uint64

	multiSite    bool
	bridgeLinkID uint64

	optimized   bool
	optPartial  bool
	optIters    int
	redundSkips int
}

func newDraft(cfg Config, prof profile.Profile, req Request) *draft {
	return &draft{
		cfg:        cfg,
		prof:       prof,
		req:        req,
		rng:        rand.New(rand.NewSource(req.Seed)),
		groupOf:    make(map[uint64]int),
		hostParent: make(map[uint64]uint64),
	}
}

// addDevice appends a device to the arena and returns its id
func (d *draft) addDevice(dev topology.Device) uint64 {
	dev.ID = uint64(len(d.devices) + 1)
	d.devices = append(d.devices, dev)
	return dev.ID
}

// addLink wires two devices and binds a free interface on each endpoint
func (d *draft) addLink(source, target uint64, lt topology.LinkType, bandwidth string) uint64 {
	id := uint64(len(d.links) + 1)
	d.links = append(d.links, topology.Link{
		ID:        id,
		Source:    source,
		Target:    target,
		Type:      lt,
		Bandwidth: bandwidth,
	})
	d.bindInterface(source, id)
	d.bindInterface(target, id)
	return id
}

// bindInterface attaches a link to the first unbound interface of a device,
// growing the interface list when every port is taken
func (d *draft) bindInterface(deviceID, linkID uint64) {
	dev := &d.devices[deviceID-1]
	for i := range dev.Interfaces {
		if dev.Interfaces[i].LinkID == 0 {
			dev.Interfaces[i].LinkID = linkID
			return
		}
	}
	iface := newInterface(dev.Type, len(dev.Interfaces))
	iface.LinkID = linkID
	dev.Interfaces = append(dev.Interfaces, iface)
}

// adjacency builds the undirected neighbor map of the current draft
func (d *draft) adjacency() topology.Adjacency {
	return topology.BuildAdjacency(d.devices, d.links)
}

func (d *draft) warnf(format string, args ...any) {
	d.warnings = append(d.warnings, fmt.Sprintf(format, args...))
}

// device returns the draft device record by id
func (d *draft) device(id uint64) *topology.Device {
	return &d.devices[id-1]
}
