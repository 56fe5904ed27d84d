// Package export serializes topologies into interchange formats: GraphML
// for graph tooling, a plain JSON graph, and a compressed binary project
// file for the network simulator import path. All exporters are read-only
// consumers of the topology.
package export

import (
	"encoding/xml"

	"github.com/dd0wney/cluso-netforge/pkg/topology"
)

type graphmlDoc struct {
	XMLName xml.Name     `xml:"graphml"`
	XMLNS   string       `xml:"xmlns,attr"`
	Keys    []graphmlKey `xml:"key"`
	Graph   graphmlGraph `xml:"graph"`
}

type graphmlKey struct {
	ID   string `xml:"id,attr"`
	For  string `xml:"for,attr"`
	Name string `xml:"attr.name,attr"`
	Type string `xml:"attr.type,attr"`
}

type graphmlGraph struct {
	ID          string        `xml:"id,attr"`
	EdgeDefault string        `xml:"edgedefault,attr"`
	Nodes       []graphmlNode `xml:"node"`
	Edges       []graphmlEdge `xml:"edge"`
}

type graphmlNode struct {
	ID   string        `xml:"id,attr"`
	Data []graphmlData `xml:"data"`
}

type graphmlEdge struct {
	Source string        `xml:"source,attr"`
	Target string        `xml:"target,attr"`
	Data   []graphmlData `xml:"data"`
}

type graphmlData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

var graphmlKeys = []graphmlKey{
	{ID: "name", For: "node", Name: "name", Type: "string"},
	{ID: "type", For: "node", Name: "type", Type: "string"},
	{ID: "tier", For: "node", Name: "tier", Type: "string"},
	{ID: "model", For: "node", Name: "model", Type: "string"},
	{ID: "address", For: "node", Name: "address", Type: "string"},
	{ID: "linktype", For: "edge", Name: "linktype", Type: "string"},
	{ID: "bandwidth", For: "edge", Name: "bandwidth", Type: "string"},
}

// GraphML renders the topology in GraphML with per-node device attributes
// and per-edge link attributes
func GraphML(t *topology.Topology) ([]byte, error) {
	doc := graphmlDoc{
		XMLNS: "http://graphml.graphdrawing.org/xmlns",
		Keys:  graphmlKeys,
		Graph: graphmlGraph{ID: t.ID, EdgeDefault: "undirected"},
	}

	for i := range t.Devices {
		d := &t.Devices[i]
		doc.Graph.Nodes = append(doc.Graph.Nodes, graphmlNode{
			ID: d.Name,
			Data: []graphmlData{
				{Key: "name", Value: d.Name},
				{Key: "type", Value: string(d.Type)},
				{Key: "tier", Value: string(d.Tier)},
				{Key: "model", Value: d.Model},
				{Key: "address", Value: d.Address.String()},
			},
		})
	}

	for _, l := range t.Links {
		src := t.DeviceByID(l.Source)
		dst := t.DeviceByID(l.Target)
		if src == nil || dst == nil {
			continue
		}
		doc.Graph.Edges = append(doc.Graph.Edges, graphmlEdge{
			Source: src.Name,
			Target: dst.Name,
			Data: []graphmlData{
				{Key: "linktype", Value: string(l.Type)},
				{Key: "bandwidth", Value: l.Bandwidth},
			},
		})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
