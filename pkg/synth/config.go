// Package synth implements the topology synthesis pipeline: device
// synthesis, address allocation, link building, redundancy augmentation,
// an optional optimization pass, and final invariant validation.
//
// Synthesis is a pure in-memory computation. Every invocation owns its own
// allocator, naming and randomness state, so concurrent generations are
// independent without locking.
package synth

import (
	"fmt"
	"net/netip"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-netforge/pkg/topology"
	"github.com/dd0wney/cluso-netforge/pkg/validation"
)

// BandwidthConfig sets the formatted bandwidth value per link role.
// Core links carry the most, access links the least; virtual links have no
// physical semantics and are marked as such.
type BandwidthConfig struct {
	Core      string `yaml:"core"`
	SpineLeaf string `yaml:"spineLeaf"`
	Uplink    string `yaml:"uplink"`
	Access    string `yaml:"access"`
	VPN       string `yaml:"vpn"`
	Virtual   string `yaml:"virtual"`
}

// OptimizationConfig bounds the local-search pass
type OptimizationConfig struct {
	// MaxIterations caps perturbation attempts
	MaxIterations int `yaml:"maxIterations"`
	// MaxDuration is a hard wall-clock cap enforced regardless of caller
	// cancellation
	MaxDuration time.Duration `yaml:"maxDuration"`
}

// Config carries every policy constant of the engine. Constants live here,
// not in the code, so deployments can tune addressing and bandwidth without
// changing invariants.
type Config struct {
	// BaseCIDR is the private space segment subnets are carved from
	BaseCIDR string `yaml:"baseCidr"`
	// ManagementCIDR is the disjoint out-of-band management pool
	ManagementCIDR string `yaml:"managementCidr"`
	// CloudCIDR is the space used for cloud-side segments of multi-site
	// topologies
	CloudCIDR string `yaml:"cloudCidr"`
	// ReservedPerSegment is the address count reserved in every subnet for
	// the network, gateway and broadcast addresses
	ReservedPerSegment int `yaml:"reservedPerSegment"`

	Bandwidth    BandwidthConfig    `yaml:"bandwidth"`
	Optimization OptimizationConfig `yaml:"optimization"`

	// SecurityAppliances appends dedicated firewall (high) and IPS
	// (critical) devices to the boundary. Off by default: appliance counts
	// are not part of the requested device counts.
	SecurityAppliances bool `yaml:"securityAppliances"`
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		BaseCIDR:           "10.0.0.0/8",
		ManagementCIDR:     "192.168.100.0/22",
		CloudCIDR:          "172.16.0.0/16",
		ReservedPerSegment: 3,
		Bandwidth: BandwidthConfig{
			Core:      "10Gbps",
			SpineLeaf: "40Gbps",
			Uplink:    "10Gbps",
			Access:    "1Gbps",
			VPN:       "1Gbps",
			Virtual:   "virtual",
		},
		Optimization: OptimizationConfig{
			MaxIterations: 200,
			MaxDuration:   2 * time.Second,
		},
	}
}

// ParseConfig decodes YAML over the defaults, so partial files only
// override what they name.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, topology.ConfigurationError("ParseConfig", err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the config for internal consistency
func (c Config) Validate() error {
	cv := validation.NewConfigValidator("synth.Config").
		CIDR("BaseCIDR", c.BaseCIDR).
		CIDR("ManagementCIDR", c.ManagementCIDR).
		CIDR("CloudCIDR", c.CloudCIDR).
		MinInt("ReservedPerSegment", c.ReservedPerSegment, 3).
		Required("Bandwidth.Core", c.Bandwidth.Core).
		Required("Bandwidth.SpineLeaf", c.Bandwidth.SpineLeaf).
		Required("Bandwidth.Uplink", c.Bandwidth.Uplink).
		Required("Bandwidth.Access", c.Bandwidth.Access).
		Required("Bandwidth.VPN", c.Bandwidth.VPN).
		Required("Bandwidth.Virtual", c.Bandwidth.Virtual).
		Positive("Optimization.MaxIterations", c.Optimization.MaxIterations).
		MinDuration("Optimization.MaxDuration", c.Optimization.MaxDuration, 10*time.Millisecond).
		Custom("BaseCIDR", func() error {
			base, err1 := netip.ParsePrefix(c.BaseCIDR)
			mgmt, err2 := netip.ParsePrefix(c.ManagementCIDR)
			if err1 != nil || err2 != nil {
				return nil // already reported by the CIDR checks
			}
			if base.Overlaps(mgmt) {
				return fmt.Errorf("base %s overlaps management %s", base, mgmt)
			}
			return nil
		})
	if cv.HasErrors() {
		return topology.ConfigurationError("Config.Validate", cv.Validate().Error())
	}
	return nil
}

// basePrefix returns the parsed base prefix. Validate must have passed.
func (c Config) basePrefix() netip.Prefix {
	p, _ := netip.ParsePrefix(c.BaseCIDR)
	return p
}

func (c Config) managementPrefix() netip.Prefix {
	p, _ := netip.ParsePrefix(c.ManagementCIDR)
	return p
}

func (c Config) cloudPrefix() netip.Prefix {
	p, _ := netip.ParsePrefix(c.CloudCIDR)
	return p
}

// Request is the public synthesis contract. Counts are exact: the produced
// topology holds routers+switches+hosts devices.
type Request struct {
	Archetype     topology.Archetype     `json:"archetype" validate:"required,oneof=enterprise datacenter campus cloud hybrid"`
	Routers       int                    `json:"routers" validate:"gte=0"`
	Switches      int                    `json:"switches" validate:"gte=0"`
	Hosts         int                    `json:"hosts" validate:"gte=0"`
	SecurityLevel topology.SecurityLevel `json:"securityLevel" validate:"required,oneof=low medium high critical"`
	Redundancy    bool                   `json:"redundancy"`
	Optimize      bool                   `json:"optimize"`
	// Seed parameterizes all randomness. The same (Request, Config) pair
	// always reproduces the same topology.
	Seed int64 `json:"seed"`
}

// requestValidate is a shared validator instance; validator.Validate is
// safe for concurrent use
var requestValidate = validator.New()

// ValidateRequest checks a request before any allocation work happens.
// Violations surface as ErrInvalidParameter.
func ValidateRequest(req *Request) error {
	if req == nil {
		return topology.ParameterError("ValidateRequest", "request", "must not be nil")
	}
	if err := requestValidate.Struct(req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			ve := verrs[0]
			return topology.ParameterError("ValidateRequest", ve.Field(),
				fmt.Sprintf("value %v fails %q constraint", ve.Value(), ve.Tag()))
		}
		return topology.ParameterError("ValidateRequest", "request", err.Error())
	}
	return nil
}
