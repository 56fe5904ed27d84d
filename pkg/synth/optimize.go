package synth

import (
	"time"

	"github.com/dd0wney/cluso-netforge/pkg/profile"
	"github.com/dd0wney/cluso-netforge/pkg/topology"
)

// secureModels indexes every catalog entry that carries hardening
// capability, for the security term of the cost function
var secureModels = func() map[string]bool {
	m := make(map[string]bool)
	for _, catalog := range [][]modelChoice{
		coreRouterModels, edgeRouterModels, spineModels, leafModels,
		distSwitchModels, accessSwitchModels, firewallModels, ipsModels,
	} {
		for _, c := range catalog {
			if c.secure {
				m[c.name] = true
			}
		}
	}
	return m
}()

// optimize runs a bounded local search over the finished draft. Each
// iteration applies one perturbation, keeps it if the cost improves and
// reverts it otherwise. The iteration budget and the wall-clock cap are
// both hard limits; hitting the cap early marks the result partial.
func (d *draft) optimize() {
	if !d.req.Optimize {
		return
	}
	d.optimized = true

	deadline := time.Now().Add(d.cfg.Optimization.MaxDuration)
	best := d.cost()

	for i := 0; i < d.cfg.Optimization.MaxIterations; i++ {
		if time.Now().After(deadline) {
			d.optPartial = true
			break
		}
		d.optIters = i + 1

		var undo func()
		if d.rng.Intn(2) == 0 {
			undo = d.perturbUpstream()
		} else {
			undo = d.perturbModel()
		}
		if undo == nil {
			continue
		}
		if c := d.cost(); c < best {
			best = c
		} else {
			undo()
		}
	}
}

// cost scores the current draft. Lower is better. The three terms are the
// average host-to-gateway hop count, the normalized variance of per-link
// endpoint load, and the share of non-hardened models weighted by the
// requested security level.
func (d *draft) cost() float64 {
	adj := d.adjacency()

	var gateways []uint64
	gateways = append(gateways, d.core...)
	gateways = append(gateways, d.cloudGateways...)

	hopTerm := d.averageHostHops(adj, gateways)
	utilTerm := d.utilizationVariance(adj)

	insecure, modeled := 0, 0
	for i := range d.devices {
		if d.devices[i].Model == "" {
			continue
		}
		modeled++
		if !secureModels[d.devices[i].Model] {
			insecure++
		}
	}
	securityTerm := 0.0
	if modeled > 0 {
		securityTerm = float64(d.req.SecurityLevel.Rank()) * float64(insecure) / float64(modeled)
	}

	return hopTerm + utilTerm + securityTerm
}

// averageHostHops runs a multi-source BFS from the gateway tier and
// averages the distance over all hosts. Unreachable hosts are penalized
// as if they were one hop beyond the deepest reachable device.
func (d *draft) averageHostHops(adj topology.Adjacency, gateways []uint64) float64 {
	if len(gateways) == 0 {
		return 0
	}
	dist := make(map[uint64]int, len(d.devices))
	queue := make([]uint64, 0, len(d.devices))
	for _, g := range gateways {
		dist[g] = 0
		queue = append(queue, g)
	}
	deepest := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range adj[cur] {
			if _, seen := dist[n.DeviceID]; !seen {
				dist[n.DeviceID] = dist[cur] + 1
				if dist[n.DeviceID] > deepest {
					deepest = dist[n.DeviceID]
				}
				queue = append(queue, n.DeviceID)
			}
		}
	}

	total, hosts := 0.0, 0
	for i := range d.devices {
		if d.devices[i].Type != topology.DeviceHost {
			continue
		}
		hosts++
		if h, ok := dist[d.devices[i].ID]; ok {
			total += float64(h)
		} else {
			total += float64(deepest + 1)
		}
	}
	if hosts == 0 {
		return 0
	}
	return total / float64(hosts)
}

// utilizationVariance treats the combined endpoint degree of each link as
// a load proxy and returns the variance normalized by the squared mean,
// so the term is scale free across topology sizes
func (d *draft) utilizationVariance(adj topology.Adjacency) float64 {
	if len(d.links) == 0 {
		return 0
	}
	loads := make([]float64, len(d.links))
	mean := 0.0
	for i, l := range d.links {
		loads[i] = float64(adj.Degree(l.Source) + adj.Degree(l.Target))
		mean += loads[i]
	}
	mean /= float64(len(loads))
	if mean == 0 {
		return 0
	}
	variance := 0.0
	for _, u := range loads {
		variance += (u - mean) * (u - mean)
	}
	variance /= float64(len(loads))
	return variance / (mean * mean)
}

// perturbUpstream moves one single-homed device to a different upstream
// parent. Only tier-segmented archetypes are eligible; building and VPC
// segmentation pin devices to their group. Returns nil when no device can
// move, otherwise an undo closure.
func (d *draft) perturbUpstream() func() {
	movable := d.movableDevices()
	if len(movable) == 0 {
		return nil
	}
	id := movable[d.rng.Intn(len(movable))]

	candidates := d.moveCandidates(id)
	adj := d.adjacency()

	linkIdx := -1
	var oldParent uint64
	for i, l := range d.links {
		if l.Type == topology.LinkRedundant {
			continue
		}
		for _, up := range candidates {
			if (l.Source == up && l.Target == id) || (l.Source == id && l.Target == up) {
				linkIdx, oldParent = i, up
			}
		}
	}
	if linkIdx < 0 {
		return nil
	}

	var newParent uint64
	for _, up := range candidates {
		if up != oldParent && !adj.HasEdge(id, up) {
			newParent = up
			break
		}
	}
	if newParent == 0 {
		return nil
	}

	d.rebindLink(linkIdx, oldParent, newParent)
	return func() { d.rebindLink(linkIdx, newParent, oldParent) }
}

// movableDevices lists devices with exactly one upstream link and at
// least two upstream candidates
func (d *draft) movableDevices() []uint64 {
	if d.prof.Segmentation != profile.SegmentByTier {
		return nil
	}
	adj := d.adjacency()
	var out []uint64
	for id := uint64(1); id <= uint64(len(d.devices)); id++ {
		candidates := d.moveCandidates(id)
		if len(candidates) < 2 {
			continue
		}
		connected := 0
		for _, up := range candidates {
			if adj.HasEdge(id, up) {
				connected++
			}
		}
		if connected == 1 {
			out = append(out, id)
		}
	}
	return out
}

// moveCandidates is upstreamCandidates extended to hosts, which may move
// between access-layer parents
func (d *draft) moveCandidates(id uint64) []uint64 {
	dev := d.device(id)
	if dev.Type == topology.DeviceHost {
		if len(d.access) > 0 {
			return d.access
		}
		return d.dist
	}
	return d.upstreamCandidates(id)
}

// rebindLink swaps one endpoint of the given link and rebinds the port
// on both the old and the new parent
func (d *draft) rebindLink(linkIdx int, from, to uint64) {
	l := &d.links[linkIdx]
	if l.Source == from {
		l.Source = to
	} else {
		l.Target = to
	}

	old := d.device(from)
	for i := range old.Interfaces {
		if old.Interfaces[i].LinkID == l.ID {
			old.Interfaces[i].LinkID = 0
			old.Interfaces[i].Status = "down"
			break
		}
	}
	d.bindInterface(to, l.ID)
}

// perturbModel re-rolls one infrastructure device's hardware model
func (d *draft) perturbModel() func() {
	var eligible []uint64
	for i := range d.devices {
		if catalogFor(&d.devices[i]) != nil {
			eligible = append(eligible, d.devices[i].ID)
		}
	}
	if len(eligible) == 0 {
		return nil
	}
	id := eligible[d.rng.Intn(len(eligible))]
	dev := d.device(id)
	old := dev.Model
	dev.Model = pickModel(d.rng, catalogFor(dev), d.req.SecurityLevel)
	return func() { d.device(id).Model = old }
}

// catalogFor maps an infrastructure device back to its model catalog.
// Virtual cloud devices and hosts have no hardware catalog.
func catalogFor(dev *topology.Device) []modelChoice {
	switch {
	case dev.Type == topology.DeviceRouter && dev.Tier == topology.TierCore:
		return coreRouterModels
	case dev.Type == topology.DeviceRouter && dev.Tier == topology.TierSpine:
		return spineModels
	case dev.Type == topology.DeviceSwitch && dev.Tier == topology.TierDistribution:
		return distSwitchModels
	case dev.Type == topology.DeviceSwitch && dev.Tier == topology.TierAccess:
		return accessSwitchModels
	case dev.Type == topology.DeviceSwitch && dev.Tier == topology.TierLeaf:
		return leafModels
	case dev.Type == topology.DeviceFirewall:
		return firewallModels
	case dev.Type == topology.DeviceIPS:
		return ipsModels
	default:
		return nil
	}
}
