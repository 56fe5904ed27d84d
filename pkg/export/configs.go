package export

import (
	"fmt"
	"net"
	"net/netip"
	"strings"

	"github.com/dd0wney/cluso-netforge/pkg/topology"
)

// DeviceConfigs generates a startup configuration per infrastructure
// device. Hosts are skipped; the simulator configures endpoints itself.
func DeviceConfigs(t *topology.Topology) map[string]string {
	subnets := make(map[int]netip.Prefix, len(t.Segments))
	for _, s := range t.Segments {
		subnets[s.ID] = s.Subnet
	}

	configs := make(map[string]string)
	for i := range t.Devices {
		d := &t.Devices[i]
		switch d.Type {
		case topology.DeviceRouter:
			configs[d.Name] = routerConfig(d, subnets[d.Segment])
		case topology.DeviceSwitch:
			configs[d.Name] = switchConfig(d, subnets[d.Segment])
		case topology.DeviceFirewall, topology.DeviceIPS:
			configs[d.Name] = applianceConfig(d, subnets[d.Segment])
		}
	}
	return configs
}

// netmask renders the dotted-quad mask of an IPv4 prefix
func netmask(p netip.Prefix) string {
	if !p.IsValid() {
		return "255.255.255.0"
	}
	mask := net.CIDRMask(p.Bits(), 32)
	return fmt.Sprintf("%d.%d.%d.%d", mask[0], mask[1], mask[2], mask[3])
}

// wildcard is the OSPF inverse mask
func wildcard(p netip.Prefix) string {
	if !p.IsValid() {
		return "0.0.0.255"
	}
	mask := net.CIDRMask(p.Bits(), 32)
	return fmt.Sprintf("%d.%d.%d.%d", ^mask[0], ^mask[1], ^mask[2], ^mask[3])
}

func routerConfig(d *topology.Device, subnet netip.Prefix) string {
	var b strings.Builder
	fmt.Fprintf(&b, "!\nhostname %s\n!\n", d.Name)
	iface := "GigabitEthernet0/0"
	if len(d.Interfaces) > 0 {
		iface = d.Interfaces[0].Name
	}
	fmt.Fprintf(&b, "interface %s\n ip address %s %s\n no shutdown\n!\n", iface, d.Address, netmask(subnet))
	if subnet.IsValid() {
		fmt.Fprintf(&b, "router ospf 1\n network %s %s area 0\n!\n", subnet.Masked().Addr(), wildcard(subnet))
	}
	b.WriteString("line vty 0 4\n login local\n transport input ssh\n!\nend\n")
	return b.String()
}

func switchConfig(d *topology.Device, subnet netip.Prefix) string {
	var b strings.Builder
	fmt.Fprintf(&b, "!\nhostname %s\n!\n", d.Name)
	b.WriteString("vlan 10\n name DATA\nvlan 20\n name VOICE\nvlan 30\n name MANAGEMENT\n!\n")
	fmt.Fprintf(&b, "interface vlan 30\n ip address %s %s\n!\n", d.Address, netmask(subnet))
	b.WriteString("end\n")
	return b.String()
}

func applianceConfig(d *topology.Device, subnet netip.Prefix) string {
	var b strings.Builder
	fmt.Fprintf(&b, "!\nhostname %s\n!\n", d.Name)
	iface := "GigabitEthernet0/0"
	if len(d.Interfaces) > 0 {
		iface = d.Interfaces[0].Name
	}
	fmt.Fprintf(&b, "interface %s\n ip address %s %s\n no shutdown\n!\n", iface, d.Address, netmask(subnet))
	b.WriteString("access-list 100 deny ip any any log\n!\nend\n")
	return b.String()
}
