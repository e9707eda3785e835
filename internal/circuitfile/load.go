package circuitfile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"qasmgen/internal/circuit"
)

// Format identifies the encoding of a circuit file.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatTOML
	FormatYAML
	FormatSnapshot
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	case FormatSnapshot:
		return "snapshot"
	default:
		return "unknown"
	}
}

// SnapshotExt is the file extension of msgpack circuit snapshots.
const SnapshotExt = ".qcs"

// Extensions lists every extension FormatOf recognises.
var Extensions = []string{".toml", ".yaml", ".yml", SnapshotExt}

// FormatOf picks the format from the file extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	case SnapshotExt:
		return FormatSnapshot
	default:
		return FormatUnknown
	}
}

// document is the text form of a circuit:
//
//	qubits = 2
//	[[gate]]
//	name = "CNOT"
//	controls = [0]
//	targets = [1]
type document struct {
	Qubits int64     `toml:"qubits" yaml:"qubits"`
	Gates  []gateDoc `toml:"gate" yaml:"gates"`
}

type gateDoc struct {
	Name     string    `toml:"name" yaml:"name"`
	Controls []int64   `toml:"controls" yaml:"controls"`
	Targets  []int64   `toml:"targets" yaml:"targets"`
	Angle    *float64  `toml:"angle" yaml:"angle"`
	Params   []float64 `toml:"params" yaml:"params"`
}

func (d *document) build() (*circuit.Circuit, error) {
	specs := make([]gateSpec, len(d.Gates))
	for i, g := range d.Gates {
		specs[i] = gateSpec(g)
	}
	return build(d.Qubits, specs)
}

// Load reads and decodes the circuit file at path.
func Load(path string) (*circuit.Circuit, error) {
	format := FormatOf(path)
	if format == FormatUnknown {
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Decode(format, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Decode builds a circuit from data encoded in format.
func Decode(format Format, data []byte) (*circuit.Circuit, error) {
	switch format {
	case FormatTOML:
		return decodeTOML(data)
	case FormatYAML:
		return decodeYAML(data)
	case FormatSnapshot:
		return DecodeSnapshot(data)
	default:
		return nil, ErrUnknownFormat
	}
}

func decodeTOML(data []byte) (*circuit.Circuit, error) {
	var doc document
	meta, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if !meta.IsDefined("qubits") {
		return nil, fmt.Errorf("missing qubits")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	return doc.build()
}

func decodeYAML(data []byte) (*circuit.Circuit, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if _, ok := raw["qubits"]; !ok {
		return nil, fmt.Errorf("missing qubits")
	}
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return doc.build()
}
