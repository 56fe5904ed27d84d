package topology

import (
	"net/netip"
	"time"
)

// Archetype names the structural pattern a topology is generated from
type Archetype string

const (
	ArchetypeEnterprise Archetype = "enterprise"
	ArchetypeDatacenter Archetype = "datacenter"
	ArchetypeCampus     Archetype = "campus"
	ArchetypeCloud      Archetype = "cloud"
	ArchetypeHybrid     Archetype = "hybrid"
)

// Archetypes returns all supported archetypes
func Archetypes() []Archetype {
	return []Archetype{
		ArchetypeEnterprise,
		ArchetypeDatacenter,
		ArchetypeCampus,
		ArchetypeCloud,
		ArchetypeHybrid,
	}
}

// DeviceType is the tag a device record is dispatched on
type DeviceType string

const (
	DeviceRouter   DeviceType = "router"
	DeviceSwitch   DeviceType = "switch"
	DeviceHost     DeviceType = "host"
	DeviceFirewall DeviceType = "firewall"
	DeviceIPS      DeviceType = "ips"
)

// LinkType classifies a link by its role in the topology
type LinkType string

const (
	LinkCore      LinkType = "core"
	LinkUplink    LinkType = "uplink"
	LinkAccess    LinkType = "access"
	LinkRedundant LinkType = "redundant"
	LinkWAN       LinkType = "wan"
	LinkVPN       LinkType = "vpn"
)

// Tier is a structural layer of devices within an archetype
type Tier string

const (
	TierCore         Tier = "core"
	TierDistribution Tier = "distribution"
	TierAccess       Tier = "access"
	TierSpine        Tier = "spine"
	TierLeaf         Tier = "leaf"
	TierVPC          Tier = "vpc"
	TierGateway      Tier = "gateway"
)

// SecurityLevel biases device model selection and audit posture
type SecurityLevel string

const (
	SecurityLow      SecurityLevel = "low"
	SecurityMedium   SecurityLevel = "medium"
	SecurityHigh     SecurityLevel = "high"
	SecurityCritical SecurityLevel = "critical"
)

// SecurityLevels returns all recognized levels, weakest first
func SecurityLevels() []SecurityLevel {
	return []SecurityLevel{SecurityLow, SecurityMedium, SecurityHigh, SecurityCritical}
}

// Rank returns the ordinal of a security level (low=0 .. critical=3).
// Unknown levels rank below low.
func (s SecurityLevel) Rank() int {
	switch s {
	case SecurityLow:
		return 0
	case SecurityMedium:
		return 1
	case SecurityHigh:
		return 2
	case SecurityCritical:
		return 3
	default:
		return -1
	}
}

// Interface is a named port on a device. Address is the zero Addr until
// the allocator assigns one, and LinkID is 0 until the port is wired.
type Interface struct {
	Name    string     `json:"name"`
	Address netip.Addr `json:"address,omitempty"`
	LinkID  uint64     `json:"linkId,omitempty"`
	Speed   string     `json:"speed"`
	Duplex  string     `json:"duplex"`
	Status  string     `json:"status"`
}

// Device is a flat record for every device kind. Type-specific fields
// (RoutingProtocol, OS, MAC) are populated only where they apply; consumers
// dispatch on Type rather than on concrete device structs.
type Device struct {
	ID             uint64      `json:"id"`
	Name           string      `json:"name"`
	Type           DeviceType  `json:"type"`
	Subtype        string      `json:"subtype,omitempty"`
	Model          string      `json:"model,omitempty"`
	Tier           Tier        `json:"tier"`
	Segment        int         `json:"segment"`
	Address        netip.Addr  `json:"address"`
	ManagementAddr netip.Addr  `json:"managementAddress,omitempty"`
	Interfaces     []Interface `json:"interfaces,omitempty"`

	// Type-specific fields
	RoutingProtocol string `json:"routingProtocol,omitempty"` // routers and firewalls
	OS              string `json:"os,omitempty"`              // hosts
	MAC             string `json:"mac,omitempty"`             // hosts
}

// Link connects two devices by id. A link never owns its endpoints; both
// Source and Target must reference devices present in the same topology.
type Link struct {
	ID        uint64   `json:"id"`
	Source    uint64   `json:"source"`
	Target    uint64   `json:"target"`
	Type      LinkType `json:"type"`
	Bandwidth string   `json:"bandwidth"`
}

// Segment is a group of devices sharing one address subnet
type Segment struct {
	ID      int          `json:"id"`
	Name    string       `json:"name"`
	Tier    Tier         `json:"tier"`
	Subnet  netip.Prefix `json:"subnet"`
	Gateway netip.Addr   `json:"gateway"`
}

// Metadata records the inputs that produced a topology
type Metadata struct {
	Seed        int64     `json:"seed"`
	Routers     int       `json:"routers"`
	Switches    int       `json:"switches"`
	Hosts       int       `json:"hosts"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Topology is the aggregate produced by one synthesis call. It is never
// mutated after being returned; collaborators read it, and re-generation
// always yields a new independent instance. Use Clone before deriving a
// modified topology.
type Topology struct {
	ID        string    `json:"id"`
	Archetype Archetype `json:"archetype"`
	Devices   []Device  `json:"devices"`
	Links     []Link    `json:"links"`
	Segments  []Segment `json:"segments"`

	TotalDevices int `json:"totalDevices"`
	TotalLinks   int `json:"totalLinks"`

	SecurityLevel       SecurityLevel `json:"securityLevel"`
	RedundancyEnabled   bool          `json:"redundancyEnabled"`
	Optimized           bool          `json:"optimized"`
	OptimizationPartial bool          `json:"optimizationPartial,omitempty"`

	// MultiSite topologies carry exactly one bridging link; BridgeLinkID
	// designates it. Zero for single-site archetypes.
	MultiSite    bool   `json:"multiSite,omitempty"`
	BridgeLinkID uint64 `json:"bridgeLinkId,omitempty"`

	Warnings []string `json:"warnings,omitempty"`
	Metadata Metadata `json:"metadata"`
}
