package profile

import (
	"errors"
	"testing"

	"github.com/dd0wney/cluso-netforge/pkg/topology"
)

func TestLookupKnownArchetypes(t *testing.T) {
	for _, a := range []topology.Archetype{
		topology.ArchetypeEnterprise,
		topology.ArchetypeDatacenter,
		topology.ArchetypeCampus,
		topology.ArchetypeCloud,
		topology.ArchetypeHybrid,
	} {
		p, err := Lookup(a)
		if err != nil {
			t.Fatalf("Lookup(%s): %v", a, err)
		}
		if p.Archetype != a {
			t.Fatalf("Lookup(%s) returned profile for %s", a, p.Archetype)
		}
		if !Known(a) {
			t.Fatalf("Known(%s) = false", a)
		}
	}
}

func TestLookupUnknownArchetype(t *testing.T) {
	_, err := Lookup("mainframe")
	if !errors.Is(err, topology.ErrInvalidConfiguration) {
		t.Fatalf("err = %v, want ErrInvalidConfiguration", err)
	}
	if Known("mainframe") {
		t.Fatal("Known accepted unknown archetype")
	}
}

func TestDatacenterIsFullBipartite(t *testing.T) {
	p, err := Lookup(topology.ArchetypeDatacenter)
	if err != nil {
		t.Fatal(err)
	}
	if !p.FanOut.FullBipartite {
		t.Fatal("datacenter profile must be full bipartite")
	}
	if p.RouterTier != topology.TierSpine {
		t.Fatalf("router tier = %s, want spine", p.RouterTier)
	}
	if len(p.SwitchTiers) != 1 || p.SwitchTiers[0] != topology.TierLeaf {
		t.Fatalf("switch tiers = %v, want all leaf", p.SwitchTiers)
	}
}

func TestHostsAreSingleHomed(t *testing.T) {
	for a := range registry {
		p := registry[a]
		if p.FanOut.HostUplinks != 1 {
			t.Fatalf("%s: hosts must be single homed, got %d uplinks", a, p.FanOut.HostUplinks)
		}
	}
}

func TestHybridIsOnlyMultiSite(t *testing.T) {
	for a, p := range registry {
		want := a == topology.ArchetypeHybrid
		if p.MultiSite != want {
			t.Fatalf("%s: MultiSite = %v, want %v", a, p.MultiSite, want)
		}
	}
}
