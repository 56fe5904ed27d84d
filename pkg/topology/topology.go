package topology

// DeviceByID returns the device with the given id, or nil.
// Devices are arena-allocated with ids 1..n in slice order, so this is a
// direct index when the invariant holds and a scan otherwise.
func (t *Topology) DeviceByID(id uint64) *Device {
	if id >= 1 && int(id) <= len(t.Devices) && t.Devices[id-1].ID == id {
		return &t.Devices[id-1]
	}
	for i := range t.Devices {
		if t.Devices[i].ID == id {
			return &t.Devices[i]
		}
	}
	return nil
}

// LinkByID returns the link with the given id, or nil
func (t *Topology) LinkByID(id uint64) *Link {
	if id >= 1 && int(id) <= len(t.Links) && t.Links[id-1].ID == id {
		return &t.Links[id-1]
	}
	for i := range t.Links {
		if t.Links[i].ID == id {
			return &t.Links[i]
		}
	}
	return nil
}

// DevicesByTier returns the ids of all devices in the given tier, in id order
func (t *Topology) DevicesByTier(tier Tier) []uint64 {
	ids := make([]uint64, 0)
	for i := range t.Devices {
		if t.Devices[i].Tier == tier {
			ids = append(ids, t.Devices[i].ID)
		}
	}
	return ids
}

// DevicesByType returns the ids of all devices with the given type tag
func (t *Topology) DevicesByType(dt DeviceType) []uint64 {
	ids := make([]uint64, 0)
	for i := range t.Devices {
		if t.Devices[i].Type == dt {
			ids = append(ids, t.Devices[i].ID)
		}
	}
	return ids
}

// Clone creates a deep copy of the topology. Derived topologies (e.g. a
// hybrid-cloud attach) build on a clone so the original stays untouched.
func (t *Topology) Clone() *Topology {
	clone := *t
	clone.Devices = make([]Device, len(t.Devices))
	for i := range t.Devices {
		d := t.Devices[i]
		d.Interfaces = append([]Interface(nil), t.Devices[i].Interfaces...)
		clone.Devices[i] = d
	}
	clone.Links = append([]Link(nil), t.Links...)
	clone.Segments = append([]Segment(nil), t.Segments...)
	clone.Warnings = append([]string(nil), t.Warnings...)
	return &clone
}

// Adjacency is an undirected neighbor map built from flat device and link
// collections. Keys are device ids; values list (neighbor id, link id) pairs.
type Adjacency map[uint64][]Neighbor

// Neighbor is one end of a link as seen from the other end
type Neighbor struct {
	DeviceID uint64
	LinkID   uint64
}

// BuildAdjacency builds an undirected adjacency map over the given links.
// Links whose ids appear in skip are ignored.
func BuildAdjacency(devices []Device, links []Link, skip ...uint64) Adjacency {
	skipped := make(map[uint64]bool, len(skip))
	for _, id := range skip {
		skipped[id] = true
	}

	adj := make(Adjacency, len(devices))
	for i := range devices {
		adj[devices[i].ID] = nil
	}
	for i := range links {
		l := links[i]
		if skipped[l.ID] {
			continue
		}
		adj[l.Source] = append(adj[l.Source], Neighbor{DeviceID: l.Target, LinkID: l.ID})
		adj[l.Target] = append(adj[l.Target], Neighbor{DeviceID: l.Source, LinkID: l.ID})
	}
	return adj
}

// Components returns the connected components of the adjacency map as
// slices of device ids. Deterministic: components are discovered in
// ascending seed-device order and members listed in BFS order.
func (a Adjacency) Components(devices []Device) [][]uint64 {
	visited := make(map[uint64]bool, len(devices))
	components := make([][]uint64, 0, 1)

	for i := range devices {
		start := devices[i].ID
		if visited[start] {
			continue
		}

		// BFS over undirected neighbors
		component := []uint64{start}
		visited[start] = true
		queue := []uint64{start}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			for _, n := range a[current] {
				if !visited[n.DeviceID] {
					visited[n.DeviceID] = true
					component = append(component, n.DeviceID)
					queue = append(queue, n.DeviceID)
				}
			}
		}
		components = append(components, component)
	}
	return components
}

// Degree returns the number of distinct neighbor devices of id.
// Parallel links to the same neighbor count once.
func (a Adjacency) Degree(id uint64) int {
	seen := make(map[uint64]bool, len(a[id]))
	for _, n := range a[id] {
		seen[n.DeviceID] = true
	}
	return len(seen)
}

// HasEdge reports whether any link joins the two devices, in either direction
func (a Adjacency) HasEdge(u, v uint64) bool {
	for _, n := range a[u] {
		if n.DeviceID == v {
			return true
		}
	}
	return false
}
