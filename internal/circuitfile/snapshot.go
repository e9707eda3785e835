package circuitfile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"qasmgen/internal/circuit"
)

// Current schema version - increment when the snapshot layout changes.
const snapshotSchemaVersion uint16 = 1

// snapshot is the msgpack form of a circuit. Gate kinds are stored by name so
// reordering the Kind enum does not invalidate existing files.
type snapshot struct {
	Schema uint16
	Qubits uint32
	Gates  []snapshotGate
}

type snapshotGate struct {
	Kind     string    `msgpack:"kind"`
	Controls []uint32  `msgpack:"controls,omitempty"`
	Targets  []uint32  `msgpack:"targets"`
	Angle    *float64  `msgpack:"angle,omitempty"`
	Params   []float64 `msgpack:"params,omitempty"`
}

// EncodeSnapshot serialises c, including the current parameter values.
func EncodeSnapshot(c *circuit.Circuit) ([]byte, error) {
	snap := snapshot{
		Schema: snapshotSchemaVersion,
		Qubits: c.QubitCount(),
		Gates:  make([]snapshotGate, 0, c.Len()),
	}
	for _, g := range c.Gates() {
		sg := snapshotGate{
			Kind:     g.Kind().String(),
			Controls: fromQubits(g.Controls()),
			Targets:  fromQubits(g.Targets()),
		}
		if angle, ok := c.Angle(g); ok {
			sg.Angle = &angle
		}
		if u, ok := g.(circuit.U); ok {
			sg.Params = append([]float64(nil), u.Params[:g.Kind().ParamCount()]...)
		}
		snap.Gates = append(snap.Gates, sg)
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := enc.Encode(&snap); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeSnapshot rebuilds a circuit written by EncodeSnapshot.
func DecodeSnapshot(data []byte) (*circuit.Circuit, error) {
	var snap snapshot
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Schema != snapshotSchemaVersion {
		return nil, fmt.Errorf("%w %d (want %d)", ErrSchema, snap.Schema, snapshotSchemaVersion)
	}
	specs := make([]gateSpec, len(snap.Gates))
	for i, g := range snap.Gates {
		specs[i] = gateSpec{
			Name:     g.Kind,
			Controls: toInt64(g.Controls),
			Targets:  toInt64(g.Targets),
			Angle:    g.Angle,
			Params:   g.Params,
		}
	}
	return build(int64(snap.Qubits), specs)
}

// WriteSnapshot encodes c and writes it to path.
func WriteSnapshot(path string, c *circuit.Circuit) error {
	data, err := EncodeSnapshot(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func fromQubits(qs []circuit.Qubit) []uint32 {
	if len(qs) == 0 {
		return nil
	}
	out := make([]uint32, len(qs))
	for i, q := range qs {
		out[i] = uint32(q)
	}
	return out
}

func toInt64(vs []uint32) []int64 {
	out := make([]int64, len(vs))
	for i, v := range vs {
		out[i] = int64(v)
	}
	return out
}
