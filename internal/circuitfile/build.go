package circuitfile

import (
	"errors"
	"fmt"
	"strings"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"

	"qasmgen/internal/circuit"
)

var (
	ErrUnknownGate   = errors.New("unknown gate")
	ErrArity         = errors.New("wrong number of operands")
	ErrUnknownFormat = errors.New("unknown circuit file format")
	ErrSchema        = errors.New("unsupported snapshot schema")
)

// GateError locates a failure to a gate entry of a circuit file.
type GateError struct {
	Index int
	Name  string
	Err   error
}

func (e *GateError) Error() string {
	return fmt.Sprintf("gate #%d (%s): %v", e.Index, e.Name, e.Err)
}

func (e *GateError) Unwrap() error { return e.Err }

// mnemonics lets circuit files use qelib1.inc names for the common gates.
var mnemonics = map[string]circuit.Kind{
	"cx":   circuit.KindCNOT,
	"cz":   circuit.KindCZ,
	"swap": circuit.KindSWAP,
	"id":   circuit.KindIdentity,
	"x":    circuit.KindX,
	"y":    circuit.KindY,
	"z":    circuit.KindZ,
	"h":    circuit.KindH,
	"s":    circuit.KindS,
	"sdg":  circuit.KindSdag,
	"t":    circuit.KindT,
	"tdg":  circuit.KindTdag,
	"sx":   circuit.KindSqrtX,
	"sxdg": circuit.KindSqrtXdag,
	"rx":   circuit.KindRX,
	"ry":   circuit.KindRY,
	"rz":   circuit.KindRZ,
	"u1":   circuit.KindU1,
	"u2":   circuit.KindU2,
	"u3":   circuit.KindU3,
}

// ResolveKind maps a gate name from a circuit file to a Kind. Names are
// NFC-normalised and trimmed; both model names ("X-rotation") and qelib1.inc
// mnemonics ("rx") are accepted.
func ResolveKind(name string) (circuit.Kind, bool) {
	name = strings.TrimSpace(norm.NFC.String(name))
	if k, ok := circuit.KindByName(name); ok {
		return k, true
	}
	k, ok := mnemonics[name]
	return k, ok
}

// gateSpec is the decoded, format-independent description of one gate.
type gateSpec struct {
	Name     string
	Controls []int64
	Targets  []int64
	Angle    *float64 // nil when the entry has no angle
	Params   []float64
}

func toQubits(raw []int64) ([]circuit.Qubit, error) {
	out := make([]circuit.Qubit, len(raw))
	for i, v := range raw {
		q, err := safecast.Conv[uint32](v)
		if err != nil {
			return nil, fmt.Errorf("qubit index %d: %w", v, err)
		}
		out[i] = circuit.Qubit(q)
	}
	return out, nil
}

// appendGate decodes spec and adds it to c.
func appendGate(c *circuit.Circuit, spec gateSpec) error {
	kind, ok := ResolveKind(spec.Name)
	if !ok {
		return ErrUnknownGate
	}
	controls, err := toQubits(spec.Controls)
	if err != nil {
		return err
	}
	targets, err := toQubits(spec.Targets)
	if err != nil {
		return err
	}
	if len(controls) != kind.ControlCount() || len(targets) != kind.TargetCount() {
		return fmt.Errorf("%w: %s takes %d control(s) and %d target(s), got %d and %d",
			ErrArity, kind, kind.ControlCount(), kind.TargetCount(), len(controls), len(targets))
	}

	if err := checkArgs(kind, spec); err != nil {
		return err
	}

	switch {
	case kind == circuit.KindSWAP:
		return c.Add(circuit.SWAP(targets[0], targets[1]))
	case kind.ControlCount() == 1:
		g, _ := circuit.NewControlled(kind, controls[0], targets[0])
		return c.Add(g)
	case kind.IsParametric():
		_, err := c.AddParametric(kind, targets[0], *spec.Angle)
		return err
	case kind.IsRotation():
		g, _ := circuit.NewRotation(kind, targets[0], *spec.Angle)
		return c.Add(g)
	case kind.ParamCount() > 0:
		g, ok := circuit.NewU(kind, targets[0], spec.Params...)
		if !ok {
			return fmt.Errorf("%w: %s takes %d params, got %d", ErrArity, kind, kind.ParamCount(), len(spec.Params))
		}
		return c.Add(g)
	default:
		g, ok := circuit.NewOneQubit(kind, targets[0])
		if !ok {
			return ErrUnknownGate
		}
		return c.Add(g)
	}
}

// checkArgs rejects angles on gates that do not take them, rotations without
// an angle, and params that do not match the gate.
func checkArgs(kind circuit.Kind, spec gateSpec) error {
	switch {
	case kind.IsRotation() && spec.Angle == nil:
		return fmt.Errorf("%w: %s needs an angle", ErrArity, kind)
	case !kind.IsRotation() && spec.Angle != nil:
		return fmt.Errorf("%w: %s takes no angle", ErrArity, kind)
	case len(spec.Params) != kind.ParamCount():
		return fmt.Errorf("%w: %s takes %d params, got %d", ErrArity, kind, kind.ParamCount(), len(spec.Params))
	}
	return nil
}

func build(qubits int64, specs []gateSpec) (*circuit.Circuit, error) {
	n, err := safecast.Conv[uint32](qubits)
	if err != nil {
		return nil, fmt.Errorf("qubits: %w", err)
	}
	c := circuit.NewCircuit(n)
	for i, spec := range specs {
		if err := appendGate(c, spec); err != nil {
			return nil, &GateError{Index: i, Name: spec.Name, Err: err}
		}
	}
	return c, nil
}
