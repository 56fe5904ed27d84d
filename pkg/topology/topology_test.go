package topology

import (
	"net/netip"
	"testing"
)

func chain(n int) ([]Device, []Link) {
	devices := make([]Device, n)
	for i := range devices {
		devices[i] = Device{ID: uint64(i + 1), Name: deviceNameForTest(i), Type: DeviceSwitch}
	}
	links := make([]Link, 0, n-1)
	for i := 1; i < n; i++ {
		links = append(links, Link{ID: uint64(i), Source: uint64(i), Target: uint64(i + 1), Type: LinkAccess})
	}
	return devices, links
}

func deviceNameForTest(i int) string {
	return string(rune('a' + i))
}

func TestBuildAdjacencySymmetric(t *testing.T) {
	devices, links := chain(4)
	adj := BuildAdjacency(devices, links)

	if !adj.HasEdge(1, 2) || !adj.HasEdge(2, 1) {
		t.Fatal("expected symmetric edge between 1 and 2")
	}
	if adj.HasEdge(1, 3) {
		t.Fatal("unexpected edge between 1 and 3")
	}
	if got := adj.Degree(2); got != 2 {
		t.Fatalf("Degree(2) = %d, want 2", got)
	}
	if got := adj.Degree(1); got != 1 {
		t.Fatalf("Degree(1) = %d, want 1", got)
	}
}

func TestComponentsSingle(t *testing.T) {
	devices, links := chain(5)
	adj := BuildAdjacency(devices, links)
	comps := adj.Components(devices)
	if len(comps) != 1 {
		t.Fatalf("got %d components, want 1", len(comps))
	}
	if len(comps[0]) != 5 {
		t.Fatalf("component holds %d devices, want 5", len(comps[0]))
	}
}

func TestComponentsSplit(t *testing.T) {
	devices, links := chain(6)
	// drop the middle link
	cut := append([]Link{}, links[:2]...)
	cut = append(cut, links[3:]...)

	adj := BuildAdjacency(devices, cut)
	comps := adj.Components(devices)
	if len(comps) != 2 {
		t.Fatalf("got %d components, want 2", len(comps))
	}
}

func TestBuildAdjacencySkipLink(t *testing.T) {
	devices, links := chain(3)
	adj := BuildAdjacency(devices, links, links[0].ID)
	if adj.HasEdge(1, 2) {
		t.Fatal("skipped link still present in adjacency")
	}
	if !adj.HasEdge(2, 3) {
		t.Fatal("unrelated link missing from adjacency")
	}
}

func TestDeviceAndLinkLookup(t *testing.T) {
	devices, links := chain(3)
	topo := &Topology{Devices: devices, Links: links}

	if d := topo.DeviceByID(2); d == nil || d.ID != 2 {
		t.Fatalf("DeviceByID(2) = %v", d)
	}
	if d := topo.DeviceByID(99); d != nil {
		t.Fatal("DeviceByID(99) should be nil")
	}
	if l := topo.LinkByID(1); l == nil || l.Source != 1 {
		t.Fatalf("LinkByID(1) = %v", l)
	}
	if l := topo.LinkByID(99); l != nil {
		t.Fatal("LinkByID(99) should be nil")
	}
}

func TestCloneIsDeep(t *testing.T) {
	devices, links := chain(3)
	devices[0].Interfaces = []Interface{{Name: "Ethernet0", LinkID: 1}}
	topo := &Topology{
		ID:       "orig",
		Devices:  devices,
		Links:    links,
		Segments: []Segment{{ID: 0, Name: "seg", Subnet: netip.MustParsePrefix("10.0.0.0/24")}},
		Warnings: []string{"w"},
	}

	clone := topo.Clone()
	clone.Devices[0].Name = "changed"
	clone.Devices[0].Interfaces[0].LinkID = 42
	clone.Links[0].Bandwidth = "changed"
	clone.Segments[0].Name = "changed"
	clone.Warnings[0] = "changed"

	if topo.Devices[0].Name == "changed" {
		t.Fatal("clone shares device slice with original")
	}
	if topo.Devices[0].Interfaces[0].LinkID == 42 {
		t.Fatal("clone shares interface slice with original")
	}
	if topo.Links[0].Bandwidth == "changed" {
		t.Fatal("clone shares link slice with original")
	}
	if topo.Segments[0].Name == "changed" {
		t.Fatal("clone shares segment slice with original")
	}
	if topo.Warnings[0] == "changed" {
		t.Fatal("clone shares warnings with original")
	}
}

func TestSecurityLevelRank(t *testing.T) {
	cases := []struct {
		level SecurityLevel
		want  int
	}{
		{SecurityLow, 0},
		{SecurityMedium, 1},
		{SecurityHigh, 2},
		{SecurityCritical, 3},
		{SecurityLevel("bogus"), -1},
	}
	for _, tc := range cases {
		if got := tc.level.Rank(); got != tc.want {
			t.Errorf("Rank(%q) = %d, want %d", tc.level, got, tc.want)
		}
	}
}
