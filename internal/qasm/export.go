package qasm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"qasmgen/internal/circuit"
)

var (
	// ErrUnsupportedGate matches every *UnsupportedGateError.
	ErrUnsupportedGate = errors.New("unsupported gate")
	ErrNilCircuit      = errors.New("nil circuit")
)

// UnsupportedGateError reports a gate that has no OpenQASM 2.0 counterpart in
// the exported subset.
type UnsupportedGateError struct {
	Index int    // position of the gate in the circuit
	Name  string // descriptive gate name, e.g. "U3"
}

func (e *UnsupportedGateError) Error() string {
	return fmt.Sprintf("unsupported gate %s at position %d", e.Name, e.Index)
}

func (e *UnsupportedGateError) Is(target error) bool {
	return target == ErrUnsupportedGate
}

// ops maps every exportable kind to its qelib1.inc instruction.
var ops = map[circuit.Kind]string{
	circuit.KindCNOT:         "cx",
	circuit.KindCZ:           "cz",
	circuit.KindSWAP:         "swap",
	circuit.KindX:            "x",
	circuit.KindY:            "y",
	circuit.KindZ:            "z",
	circuit.KindH:            "h",
	circuit.KindS:            "s",
	circuit.KindSdag:         "sdg",
	circuit.KindT:            "t",
	circuit.KindTdag:         "tdg",
	circuit.KindSqrtX:        "sx",
	circuit.KindSqrtXdag:     "sxdg",
	circuit.KindRX:           "rx",
	circuit.KindRY:           "ry",
	circuit.KindRZ:           "rz",
	circuit.KindParametricRX: "rx",
	circuit.KindParametricRY: "ry",
	circuit.KindParametricRZ: "rz",
}

// Supported reports whether gates of kind k can be exported.
func Supported(k circuit.Kind) bool {
	_, ok := ops[k]
	return ok
}

// Instruction returns the OpenQASM instruction name for k.
func Instruction(k circuit.Kind) (string, bool) {
	op, ok := ops[k]
	return op, ok
}

type emitter struct {
	circ *circuit.Circuit
	buf  strings.Builder
}

// Export renders c as an OpenQASM 2.0 program. It either returns the complete
// text or an error and no text. Qubit indices are assumed to lie inside the
// register; circuit.Circuit.Add guarantees this.
func Export(c *circuit.Circuit) (string, error) {
	if c == nil {
		return "", ErrNilCircuit
	}
	e := &emitter{circ: c}
	e.buf.Grow(64 + 16*c.Len())
	e.emitHeader()
	for i, g := range c.Gates() {
		if err := e.emitGate(i, g); err != nil {
			return "", err
		}
	}
	return e.buf.String(), nil
}

func (e *emitter) emitHeader() {
	e.buf.WriteString("OPENQASM 2.0;\n")
	e.buf.WriteString("include \"qelib1.inc\";\n")
	fmt.Fprintf(&e.buf, "qreg q[%d];\n", e.circ.QubitCount())
}

func (e *emitter) emitGate(i int, g circuit.Gate) error {
	if g == nil {
		return &UnsupportedGateError{Index: i, Name: "nil"}
	}
	kind := g.Kind()
	op, ok := ops[kind]
	if !ok {
		return &UnsupportedGateError{Index: i, Name: kind.String()}
	}
	switch kind {
	case circuit.KindCNOT, circuit.KindCZ:
		fmt.Fprintf(&e.buf, "%s q[%d],q[%d];\n", op, g.Controls()[0], g.Targets()[0])
	case circuit.KindSWAP:
		t := g.Targets()
		fmt.Fprintf(&e.buf, "%s q[%d],q[%d];\n", op, t[0], t[1])
	case circuit.KindRX, circuit.KindRY, circuit.KindRZ,
		circuit.KindParametricRX, circuit.KindParametricRY, circuit.KindParametricRZ:
		angle, ok := e.circ.Angle(g)
		if !ok {
			return &UnsupportedGateError{Index: i, Name: kind.String()}
		}
		// The model rotates by exp(+iθP/2), qelib1.inc by exp(-iθP/2).
		fmt.Fprintf(&e.buf, "%s(%s) q[%d];\n", op, FormatAngle(-angle), g.Targets()[0])
	default:
		fmt.Fprintf(&e.buf, "%s q[%d];\n", op, g.Targets()[0])
	}
	return nil
}

// FormatAngle renders v as the shortest decimal literal that parses back to v.
// Signed zeros both render as "0".
func FormatAngle(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
