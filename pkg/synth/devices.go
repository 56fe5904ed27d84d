package synth

import (
	"fmt"
	"math/rand"

	"github.com/dd0wney/cluso-netforge/pkg/topology"
)

// modelChoice is one entry of a weighted model catalog. Secure models carry
// hardware encryption or firewall capability and gain weight with the
// requested security level.
type modelChoice struct {
	name   string
	weight int
	secure bool
}

var (
	coreRouterModels = []modelChoice{
		{"Cisco ISR 4451", 3, false},
		{"Cisco ISR 4461", 2, false},
		{"Cisco ASR 1001-X", 2, true},
	}
	edgeRouterModels = []modelChoice{
		{"Cisco ISR 4331", 3, false},
		{"Cisco ISR 4351", 2, false},
		{"Cisco ISR 4431", 2, true},
	}
	spineModels = []modelChoice{
		{"Cisco Nexus 9508", 3, false},
		{"Cisco Nexus 9336C-FX2", 2, true},
	}
	leafModels = []modelChoice{
		{"Cisco Nexus 93180YC-EX", 3, false},
		{"Cisco Nexus 9348GC-FXP", 2, true},
	}
	distSwitchModels = []modelChoice{
		{"Cisco Catalyst 9300", 3, true},
		{"Cisco Catalyst 9200", 2, false},
	}
	accessSwitchModels = []modelChoice{
		{"Cisco Catalyst 2960", 3, false},
		{"Cisco Catalyst 9200L", 2, true},
	}
	firewallModels = []modelChoice{
		{"Cisco ASA 5516-X", 3, true},
		{"Cisco Firepower 2110", 2, true},
	}
	ipsModels = []modelChoice{
		{"Cisco Firepower 2130", 1, true},
	}

	workstationOS = []string{"Windows 10", "Windows 11", "Ubuntu 22.04", "macOS"}
	serverOS      = []string{"Ubuntu 22.04 Server", "RHEL 9", "Windows Server 2022"}
)

// pickModel draws from a weighted catalog. Higher security levels multiply
// the weight of secure-capable models, so the draw stays seeded and
// reproducible while favoring hardened hardware.
func pickModel(rng *rand.Rand, catalog []modelChoice, level topology.SecurityLevel) string {
	total := 0
	for _, c := range catalog {
		w := c.weight
		if c.secure {
			w += c.weight * level.Rank()
		}
		total += w
	}
	roll := rng.Intn(total)
	for _, c := range catalog {
		w := c.weight
		if c.secure {
			w += c.weight * level.Rank()
		}
		if roll < w {
			return c.name
		}
		roll -= w
	}
	return catalog[len(catalog)-1].name
}

// newInterface creates the idx-th port of a device with type-appropriate
// naming and speed
func newInterface(dt topology.DeviceType, idx int) topology.Interface {
	name := fmt.Sprintf("FastEthernet0/%d", idx)
	speed := "100"
	switch dt {
	case topology.DeviceRouter, topology.DeviceFirewall, topology.DeviceIPS:
		name = fmt.Sprintf("GigabitEthernet0/%d", idx)
		speed = "1000"
	case topology.DeviceSwitch:
		speed = "1000"
	case topology.DeviceHost:
		name = fmt.Sprintf("Ethernet%d", idx)
	}
	return topology.Interface{
		Name:   name,
		Speed:  speed,
		Duplex: "full",
		Status: "up",
	}
}

// interfaceCount is the initial port count per device type; the link
// builder grows the list when a device needs more ports
func interfaceCount(dt topology.DeviceType) int {
	switch dt {
	case topology.DeviceRouter:
		return 8
	case topology.DeviceSwitch:
		return 24
	case topology.DeviceFirewall, topology.DeviceIPS:
		return 4
	default:
		return 1
	}
}

// deviceName builds the pattern-based unique name {type}-{tier}-{index}
func deviceName(dt topology.DeviceType, tier topology.Tier, idx int) string {
	if dt == topology.DeviceHost {
		return fmt.Sprintf("%s-%s-%03d", dt, tier, idx+1)
	}
	return fmt.Sprintf("%s-%s-%02d", dt, tier, idx+1)
}

// randomMAC derives a locally administered unicast MAC from the draft rng
func randomMAC(rng *rand.Rand) string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = byte(rng.Intn(256))
	}
	b[0] = (b[0] | 0x02) &^ 0x01
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", b[0], b[1], b[2], b[3], b[4], b[5])
}

// newDevice assembles a device record with interfaces pre-created
func (d *draft) newDevice(dt topology.DeviceType, tier topology.Tier, subtype string, idx int, catalog []modelChoice) topology.Device {
	dev := topology.Device{
		Name:    deviceName(dt, tier, idx),
		Type:    dt,
		Subtype: subtype,
		Tier:    tier,
	}
	if catalog != nil {
		dev.Model = pickModel(d.rng, catalog, d.req.SecurityLevel)
	}
	n := interfaceCount(dt)
	dev.Interfaces = make([]topology.Interface, 0, n)
	for i := 0; i < n; i++ {
		dev.Interfaces = append(dev.Interfaces, newInterface(dt, i))
	}
	switch dt {
	case topology.DeviceRouter, topology.DeviceFirewall:
		dev.RoutingProtocol = "OSPF"
	case topology.DeviceHost:
		osList := workstationOS
		if subtype == "server" || subtype == "instance" {
			osList = serverOS
		}
		dev.OS = osList[d.rng.Intn(len(osList))]
		dev.MAC = randomMAC(d.rng)
	}
	return dev
}

// synthesizeDevices creates all device records and distributes them across
// tiers according to the archetype profile. Counts are exact; appliances are
// only appended when the config opts in.
func (d *draft) synthesizeDevices() error {
	switch d.prof.Archetype {
	case topology.ArchetypeDatacenter:
		d.synthesizeSpineLeaf()
	case topology.ArchetypeCloud:
		d.synthesizeCloud()
	case topology.ArchetypeHybrid:
		d.synthesizeHybrid()
	default:
		d.synthesizeThreeTier(d.req.Routers, d.req.Switches, d.req.Hosts)
	}

	if d.cfg.SecurityAppliances {
		d.synthesizeAppliances()
	}
	return nil
}

// synthesizeThreeTier builds the enterprise/campus core-distribution-access
// population. Switches split half into distribution, the rest into access.
func (d *draft) synthesizeThreeTier(routers, switches, hosts int) {
	for i := 0; i < routers; i++ {
		id := d.addDevice(d.newDevice(topology.DeviceRouter, topology.TierCore, "core", i, coreRouterModels))
		d.core = append(d.core, id)
	}

	nDist := switches / 2
	if switches == 1 {
		nDist = 0
	}
	for i := 0; i < nDist; i++ {
		id := d.addDevice(d.newDevice(topology.DeviceSwitch, topology.TierDistribution, "distribution", i, distSwitchModels))
		d.dist = append(d.dist, id)
		if d.prof.Archetype == topology.ArchetypeCampus {
			d.groupOf[id] = i
		}
	}
	for i := 0; i < switches-nDist; i++ {
		id := d.addDevice(d.newDevice(topology.DeviceSwitch, topology.TierAccess, "access", i, accessSwitchModels))
		d.access = append(d.access, id)
		if d.prof.Archetype == topology.ArchetypeCampus && nDist > 0 {
			d.groupOf[id] = i % nDist
		}
	}
	for i := 0; i < hosts; i++ {
		id := d.addDevice(d.newDevice(topology.DeviceHost, topology.TierAccess, "workstation", i, nil))
		d.hosts = append(d.hosts, id)
	}
}

// synthesizeSpineLeaf builds the datacenter population: every router is a
// spine, every switch a leaf, every host a server
func (d *draft) synthesizeSpineLeaf() {
	for i := 0; i < d.req.Routers; i++ {
		id := d.addDevice(d.newDevice(topology.DeviceRouter, topology.TierSpine, "spine", i, spineModels))
		d.core = append(d.core, id)
	}
	for i := 0; i < d.req.Switches; i++ {
		id := d.addDevice(d.newDevice(topology.DeviceSwitch, topology.TierLeaf, "leaf", i, leafModels))
		d.access = append(d.access, id)
	}
	for i := 0; i < d.req.Hosts; i++ {
		id := d.addDevice(d.newDevice(topology.DeviceHost, topology.TierLeaf, "server", i, nil))
		d.hosts = append(d.hosts, id)
	}
}

// synthesizeCloud builds flat logical segments: one VPC per router, with a
// gateway fronting each. Switches and hosts round-robin across VPCs.
func (d *draft) synthesizeCloud() {
	vpcs := d.req.Routers
	if vpcs < 1 {
		vpcs = 1
	}
	for i := 0; i < d.req.Routers; i++ {
		dev := d.newDevice(topology.DeviceRouter, topology.TierGateway, "vpc-gateway", i, edgeRouterModels)
		dev.Model = "Virtual Gateway"
		id := d.addDevice(dev)
		d.cloudGateways = append(d.cloudGateways, id)
		d.groupOf[id] = i
	}
	for i := 0; i < d.req.Switches; i++ {
		dev := d.newDevice(topology.DeviceSwitch, topology.TierVPC, "virtual-switch", i, nil)
		dev.Model = "Virtual Switch"
		id := d.addDevice(dev)
		d.cloudSwitches = append(d.cloudSwitches, id)
		d.groupOf[id] = i % vpcs
	}
	for i := 0; i < d.req.Hosts; i++ {
		id := d.addDevice(d.newDevice(topology.DeviceHost, topology.TierVPC, "instance", i, nil))
		d.cloudHosts = append(d.cloudHosts, id)
		d.groupOf[id] = i % vpcs
	}
}

// synthesizeHybrid builds an on-premise enterprise subgraph plus a small
// cloud subgraph. The cloud side takes one router as its gateway and a
// quarter of the switches and hosts; when there are not at least two
// routers the topology degrades to single-site with a warning.
func (d *draft) synthesizeHybrid() {
	cloudRouters := 0
	if d.req.Routers >= 2 {
		cloudRouters = 1
	}
	cloudSwitches := d.req.Switches / 4
	cloudHosts := d.req.Hosts / 4

	d.synthesizeThreeTier(d.req.Routers-cloudRouters, d.req.Switches-cloudSwitches, d.req.Hosts-cloudHosts)

	if cloudRouters == 0 {
		d.warnf("hybrid topology requires at least 2 routers; generated single-site")
		return
	}
	d.multiSite = true

	dev := d.newDevice(topology.DeviceRouter, topology.TierGateway, "vpc-gateway", 0, edgeRouterModels)
	dev.Model = "Virtual Gateway"
	d.cloudGateways = append(d.cloudGateways, d.addDevice(dev))

	for i := 0; i < cloudSwitches; i++ {
		sw := d.newDevice(topology.DeviceSwitch, topology.TierVPC, "virtual-switch", i, nil)
		sw.Model = "Virtual Switch"
		d.cloudSwitches = append(d.cloudSwitches, d.addDevice(sw))
	}
	for i := 0; i < cloudHosts; i++ {
		d.cloudHosts = append(d.cloudHosts, d.addDevice(d.newDevice(topology.DeviceHost, topology.TierVPC, "instance", i, nil)))
	}
}

// synthesizeAppliances appends boundary security devices: a firewall at
// high security, firewall plus IPS at critical
func (d *draft) synthesizeAppliances() {
	if d.req.SecurityLevel.Rank() < topology.SecurityHigh.Rank() {
		return
	}
	fw := d.addDevice(d.newDevice(topology.DeviceFirewall, topology.TierCore, "boundary", 0, firewallModels))
	d.boundary = append(d.boundary, fw)
	if d.req.SecurityLevel == topology.SecurityCritical {
		ips := d.addDevice(d.newDevice(topology.DeviceIPS, topology.TierCore, "boundary", 0, ipsModels))
		d.boundary = append(d.boundary, ips)
	}
}
