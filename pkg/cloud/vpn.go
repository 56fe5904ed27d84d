package cloud

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dd0wney/cluso-netforge/pkg/topology"
	"github.com/dd0wney/cluso-netforge/pkg/validation"
)

// DefaultEncryption is used when the spec leaves the algorithm empty
const DefaultEncryption = "AES-256"

// IPsecPhase holds the negotiation parameters of one IKE phase
type IPsecPhase struct {
	Encryption     string `json:"encryption"`
	Authentication string `json:"authentication"`
	DHGroup        int    `json:"dhGroup"`
	LifetimeSec    int    `json:"lifetimeSec"`
}

// TunnelConfig carries the transport-level tunnel settings
type TunnelConfig struct {
	MTU              int  `json:"mtu"`
	TCPMSSAdjustment int  `json:"tcpMssAdjustment"`
	DPDEnabled       bool `json:"dpdEnabled"`
	DPDIntervalSec   int  `json:"dpdIntervalSec"`
	DPDRetries       int  `json:"dpdRetries"`
}

// VPNConfig is the full site-to-site parameter sheet
type VPNConfig struct {
	Algorithm  string       `json:"algorithm"`
	KeySize    int          `json:"keySize"`
	Hash       string       `json:"hash"`
	PFS        bool         `json:"pfs"`
	Phase1     IPsecPhase   `json:"phase1"`
	Phase2     IPsecPhase   `json:"phase2"`
	Tunnel     TunnelConfig `json:"tunnel"`
	Bandwidth  string       `json:"bandwidth"`
	QoSEnabled bool         `json:"qosEnabled"`
	Redundancy string       `json:"redundancy"`
}

// NewVPNConfig fills the IPsec parameter sheet for a site-to-site tunnel
func NewVPNConfig(encryption string, bandwidthMbps int) VPNConfig {
	encryption = validation.DefaultOr(encryption, DefaultEncryption)
	keySize := 128
	if strings.Contains(encryption, "256") {
		keySize = 256
	}
	return VPNConfig{
		Algorithm: encryption,
		KeySize:   keySize,
		Hash:      "SHA-256",
		PFS:       true,
		Phase1: IPsecPhase{
			Encryption:     encryption,
			Authentication: "SHA-256",
			DHGroup:        14,
			LifetimeSec:    28800,
		},
		Phase2: IPsecPhase{
			Encryption:     encryption,
			Authentication: "SHA-256",
			DHGroup:        14,
			LifetimeSec:    3600,
		},
		Tunnel: TunnelConfig{
			MTU:              1400,
			TCPMSSAdjustment: 1360,
			DPDEnabled:       true,
			DPDIntervalSec:   10,
			DPDRetries:       3,
		},
		Bandwidth:  fmt.Sprintf("%dMbps", bandwidthMbps),
		QoSEnabled: true,
		Redundancy: "active-standby",
	}
}

// StaticRoute is one entry of the inter-site routing table
type StaticRoute struct {
	Destination string `json:"destination"`
	NextHop     string `json:"nextHop"`
	Metric      int    `json:"metric"`
}

// RoutingConfig describes BGP peering plus the static fallback routes
type RoutingConfig struct {
	Protocol  string        `json:"protocol"`
	LocalASN  int           `json:"localAsn"`
	RemoteASN int           `json:"remoteAsn"`
	Keepalive int           `json:"keepaliveSec"`
	Holdtime  int           `json:"holdtimeSec"`
	Routes    []StaticRoute `json:"routes"`
}

// NewRoutingConfig builds the inter-site routing sheet for a cloud CIDR
func NewRoutingConfig(cloudCIDR string) RoutingConfig {
	return RoutingConfig{
		Protocol:  "BGP",
		LocalASN:  65000,
		RemoteASN: 64512,
		Keepalive: 30,
		Holdtime:  90,
		Routes: []StaticRoute{
			{Destination: cloudCIDR, NextHop: "vpn-tunnel", Metric: 100},
			{Destination: "10.0.0.0/8", NextHop: "on-premise-gateway", Metric: 50},
		},
	}
}

// specValidate is shared; validator.Validate is safe for concurrent use
var specValidate = validator.New()

func validateSpec(s *Spec) error {
	if err := specValidate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return topology.ParameterError("AttachCloud", f.Field(),
				fmt.Sprintf("failed %q constraint", f.Tag()))
		}
		return topology.ParameterError("AttachCloud", "spec", err.Error())
	}
	return nil
}
