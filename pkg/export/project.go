package export

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-netforge/pkg/topology"
)

// Project file layout: 4-byte magic, uint16 format version, uint32 payload
// length, then a snappy-compressed JSON payload.
var projectMagic = [4]byte{'N', 'F', 'P', 'R'}

const projectVersion uint16 = 1

// ErrBadProject reports a corrupt or foreign project file
var ErrBadProject = errors.New("export: malformed project file")

// ProjectOptions selects optional payload sections
type ProjectOptions struct {
	IncludeConfigs bool
	IncludeDocs    bool
}

// ProjectPayload is the decompressed content of a project file
type ProjectPayload struct {
	SimulatorVersion string             `json:"simulatorVersion"`
	Topology         *topology.Topology `json:"topology"`
	Configurations   map[string]string  `json:"configurations,omitempty"`
	Documentation    *Documentation     `json:"documentation,omitempty"`
}

// Documentation summarizes the design for the simulator's notes panel
type Documentation struct {
	Overview         string            `json:"overview"`
	TotalDevices     int               `json:"totalDevices"`
	AddressingScheme map[string]string `json:"addressingScheme"`
	RoutingProtocols []string          `json:"routingProtocols"`
	SecurityFeatures []string          `json:"securityFeatures"`
}

// Project serializes the topology into the binary project format
func Project(t *topology.Topology, opts ProjectOptions) ([]byte, error) {
	payload := ProjectPayload{
		SimulatorVersion: "8.2",
		Topology:         t,
	}
	if opts.IncludeConfigs {
		payload.Configurations = DeviceConfigs(t)
	}
	if opts.IncludeDocs {
		payload.Documentation = documentation(t)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("export: encode project payload: %w", err)
	}
	compressed := snappy.Encode(nil, raw)

	var buf bytes.Buffer
	buf.Write(projectMagic[:])
	binary.Write(&buf, binary.BigEndian, projectVersion)
	binary.Write(&buf, binary.BigEndian, uint32(len(compressed)))
	buf.Write(compressed)
	return buf.Bytes(), nil
}

// ReadProject parses and decompresses a project file
func ReadProject(data []byte) (*ProjectPayload, error) {
	if len(data) < 10 || !bytes.Equal(data[:4], projectMagic[:]) {
		return nil, ErrBadProject
	}
	version := binary.BigEndian.Uint16(data[4:6])
	if version != projectVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadProject, version)
	}
	length := binary.BigEndian.Uint32(data[6:10])
	body := data[10:]
	if uint32(len(body)) != length {
		return nil, fmt.Errorf("%w: payload length mismatch", ErrBadProject)
	}

	raw, err := snappy.Decode(nil, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadProject, err)
	}
	var payload ProjectPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadProject, err)
	}
	return &payload, nil
}

// JSONGraph renders the topology as indented JSON for generic tooling
func JSONGraph(t *topology.Topology) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

func documentation(t *topology.Topology) *Documentation {
	scheme := make(map[string]string, len(t.Segments))
	for _, s := range t.Segments {
		scheme[s.Name] = s.Subnet.String()
	}

	features := []string{}
	for i := range t.Devices {
		switch t.Devices[i].Type {
		case topology.DeviceFirewall:
			features = append(features, "firewall deployed at the network boundary")
		case topology.DeviceIPS:
			features = append(features, "intrusion prevention at the network boundary")
		}
	}
	if t.RedundancyEnabled {
		features = append(features, "redundant upstream paths")
	}

	return &Documentation{
		Overview:         fmt.Sprintf("%s topology, %d segments", t.Archetype, len(t.Segments)),
		TotalDevices:     t.TotalDevices,
		AddressingScheme: scheme,
		RoutingProtocols: []string{"OSPF"},
		SecurityFeatures: features,
	}
}
