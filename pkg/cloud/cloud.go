// Package cloud attaches a cloud-side segment to a previously generated
// on-premise topology through a single VPN bridging link, producing a new
// multi-site topology that still satisfies every structural invariant.
// The input topology is never mutated.
package cloud

import (
	"fmt"
	"net/netip"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-netforge/pkg/addressing"
	"github.com/dd0wney/cluso-netforge/pkg/logging"
	"github.com/dd0wney/cluso-netforge/pkg/synth"
	"github.com/dd0wney/cluso-netforge/pkg/topology"
)

// Provider identifiers
const (
	ProviderAWS   = "aws"
	ProviderAzure = "azure"
	ProviderGCP   = "gcp"
)

// Spec describes the cloud side to attach
type Spec struct {
	Provider      string `validate:"required,oneof=aws azure gcp"`
	Region        string `validate:"required"`
	Switches      int    `validate:"gte=0"`
	Hosts         int    `validate:"gte=0"`
	CIDR          string `validate:"required,cidrv4"`
	BandwidthMbps int    `validate:"gt=0"`
	Encryption    string
}

// Deployment bundles the new topology with the provisioning detail a
// caller needs to stand the connection up
type Deployment struct {
	ID         string             `json:"id"`
	Provider   string             `json:"provider"`
	Region     string             `json:"region"`
	CreatedAt  time.Time          `json:"createdAt"`
	Topology   *topology.Topology `json:"topology"`
	VPN        VPNConfig          `json:"vpn"`
	Routing    RoutingConfig      `json:"routing"`
	Cost       CostEstimate       `json:"cost"`
}

// Integrator performs cloud attachments
type Integrator struct {
	logger logging.Logger
}

func NewIntegrator(logger logging.Logger) *Integrator {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Integrator{logger: logger}
}

// AttachCloud clones the on-premise topology, adds a cloud segment of one
// gateway plus the requested switches and hosts, and joins the two sites
// with one VPN bridging link. The result is re-validated before return.
func (in *Integrator) AttachCloud(onPrem *topology.Topology, spec Spec) (*Deployment, error) {
	if err := validateSpec(&spec); err != nil {
		return nil, err
	}
	if onPrem.MultiSite {
		return nil, topology.ConfigurationError("AttachCloud", "topology is already multi-site")
	}
	anchor := attachmentAnchor(onPrem)
	if anchor == 0 {
		return nil, topology.ConfigurationError("AttachCloud", "topology has no core or spine router to anchor the bridge")
	}

	cloudPrefix, err := netip.ParsePrefix(spec.CIDR)
	if err != nil {
		return nil, topology.ParameterError("AttachCloud", "CIDR", err.Error())
	}
	for _, seg := range onPrem.Segments {
		if seg.Subnet.Overlaps(cloudPrefix) {
			return nil, topology.ParameterError("AttachCloud", "CIDR",
				fmt.Sprintf("%s overlaps on-premise segment %s", cloudPrefix, seg.Subnet))
		}
	}
	// Management addresses live outside the segment subnets and need their
	// own overlap check
	for i := range onPrem.Devices {
		if m := onPrem.Devices[i].ManagementAddr; m.IsValid() && cloudPrefix.Contains(m) {
			return nil, topology.ParameterError("AttachCloud", "CIDR",
				fmt.Sprintf("%s overlaps the on-premise management pool", cloudPrefix))
		}
	}

	t := onPrem.Clone()
	if err := in.buildCloudSide(t, cloudPrefix, spec, anchor); err != nil {
		return nil, err
	}
	if err := synth.ValidateTopology(t); err != nil {
		return nil, err
	}

	dep := &Deployment{
		ID:        uuid.NewString(),
		Provider:  spec.Provider,
		Region:    spec.Region,
		CreatedAt: time.Now().UTC(),
		Topology:  t,
		VPN:       NewVPNConfig(spec.Encryption, spec.BandwidthMbps),
		Routing:   NewRoutingConfig(spec.CIDR),
		Cost:      EstimateCost(spec.Provider, spec.BandwidthMbps),
	}

	in.logger.Info("cloud segment attached",
		logging.String("provider", spec.Provider),
		logging.String("region", spec.Region),
		logging.Devices(t.TotalDevices),
		logging.Links(t.TotalLinks),
	)
	return dep, nil
}

// buildCloudSide appends the cloud devices, segment, and links to the
// cloned topology and rewires its counters and multi-site markers
func (in *Integrator) buildCloudSide(t *topology.Topology, prefix netip.Prefix, spec Spec, anchor uint64) error {
	// Keep carving aligned with the synth allocator so addresses land
	// inside a well-formed per-segment subnet
	mgmt := managementSibling(prefix)
	alloc, err := addressing.NewAllocator(prefix, mgmt, 3)
	if err != nil {
		return err
	}

	segID := len(t.Segments)
	devices := 1 + spec.Switches + spec.Hosts
	seg, err := alloc.AllocateSegment(segID, addressing.Plan{
		Name:    fmt.Sprintf("cloud-%s-%s", spec.Provider, spec.Region),
		Tier:    topology.TierVPC,
		Devices: devices,
	})
	if err != nil {
		return err
	}
	t.Segments = append(t.Segments, seg)

	nextDevice := maxDeviceID(t)
	nextLink := maxLinkID(t)

	newDevice := func(dt topology.DeviceType, tier topology.Tier, subtype, name, model string) uint64 {
		nextDevice++
		addr, _ := alloc.NextHost(segID)
		t.Devices = append(t.Devices, topology.Device{
			ID:      nextDevice,
			Name:    name,
			Type:    dt,
			Subtype: subtype,
			Model:   model,
			Tier:    tier,
			Segment: segID,
			Address: addr,
			Interfaces: []topology.Interface{
				{Name: "Ethernet0", Address: addr, Speed: "1000", Duplex: "full", Status: "up"},
			},
		})
		return nextDevice
	}
	addLink := func(src, dst uint64, lt topology.LinkType, bw string) uint64 {
		nextLink++
		t.Links = append(t.Links, topology.Link{
			ID: nextLink, Source: src, Target: dst, Type: lt, Bandwidth: bw,
		})
		bindPort(t, src, nextLink)
		bindPort(t, dst, nextLink)
		return nextLink
	}

	gw := newDevice(topology.DeviceRouter, topology.TierGateway, "vpc-gateway",
		fmt.Sprintf("cloud-gateway-%s-01", spec.Provider), "Virtual Gateway")

	var switches []uint64
	for i := 0; i < spec.Switches; i++ {
		id := newDevice(topology.DeviceSwitch, topology.TierVPC, "virtual-switch",
			fmt.Sprintf("cloud-switch-%02d", i+1), "Virtual Switch")
		switches = append(switches, id)
		addLink(gw, id, topology.LinkUplink, "10Gbps")
	}
	for i := 0; i < spec.Hosts; i++ {
		id := newDevice(topology.DeviceHost, topology.TierVPC, "instance",
			fmt.Sprintf("cloud-instance-%03d", i+1), "")
		if len(switches) > 0 {
			addLink(switches[i%len(switches)], id, topology.LinkAccess, "1Gbps")
		} else {
			addLink(gw, id, topology.LinkAccess, "1Gbps")
		}
	}

	t.BridgeLinkID = addLink(anchor, gw, topology.LinkVPN, fmt.Sprintf("%dMbps", spec.BandwidthMbps))
	t.MultiSite = true
	t.TotalDevices = len(t.Devices)
	t.TotalLinks = len(t.Links)
	return nil
}

// attachmentAnchor picks the on-premise endpoint of the bridging link
func attachmentAnchor(t *topology.Topology) uint64 {
	for i := range t.Devices {
		d := &t.Devices[i]
		if d.Type == topology.DeviceRouter &&
			(d.Tier == topology.TierCore || d.Tier == topology.TierSpine) {
			return d.ID
		}
	}
	return 0
}

// managementSibling returns a non-overlapping prefix the allocator can use
// as its management pool; attached cloud devices do not receive management
// addresses, so the pool is never drawn from
func managementSibling(p netip.Prefix) netip.Prefix {
	if p.Addr().As4()[0] != 192 {
		return netip.MustParsePrefix("192.168.255.0/24")
	}
	return netip.MustParsePrefix("198.18.255.0/24")
}

func maxDeviceID(t *topology.Topology) uint64 {
	var max uint64
	for i := range t.Devices {
		if t.Devices[i].ID > max {
			max = t.Devices[i].ID
		}
	}
	return max
}

func maxLinkID(t *topology.Topology) uint64 {
	var max uint64
	for _, l := range t.Links {
		if l.ID > max {
			max = l.ID
		}
	}
	return max
}

func bindPort(t *topology.Topology, deviceID, linkID uint64) {
	d := t.DeviceByID(deviceID)
	if d == nil {
		return
	}
	for i := range d.Interfaces {
		if d.Interfaces[i].LinkID == 0 {
			d.Interfaces[i].LinkID = linkID
			return
		}
	}
	d.Interfaces = append(d.Interfaces, topology.Interface{
		Name:   fmt.Sprintf("Ethernet%d", len(d.Interfaces)),
		LinkID: linkID,
		Speed:  "1000",
		Duplex: "full",
		Status: "up",
	})
}
