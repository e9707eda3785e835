package circuit

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrDuplicateQubit is returned when a gate references the same qubit twice.
	ErrDuplicateQubit = errors.New("gate references the same qubit more than once")
	// ErrInvalidGate is returned for nil gates and zero-value gate variants.
	ErrInvalidGate = errors.New("invalid gate")
	// ErrUnknownParameter is returned for parameter ids outside the store.
	ErrUnknownParameter = errors.New("unknown parameter")
)

// QubitRangeError reports a qubit index outside the circuit register.
type QubitRangeError struct {
	Gate       Kind
	Qubit      Qubit
	QubitCount uint32
}

func (e *QubitRangeError) Error() string {
	return fmt.Sprintf("%s: qubit index %d out of range (circuit has %d qubits)", e.Gate, e.Qubit, e.QubitCount)
}

// Circuit is an ordered list of gates over a fixed register of qubits, plus the
// parameter store read by parametric gates.
type Circuit struct {
	qubitCount uint32
	gates      []Gate
	params     []float64
}

// NewCircuit returns an empty circuit over qubitCount qubits.
func NewCircuit(qubitCount uint32) *Circuit {
	return &Circuit{qubitCount: qubitCount}
}

func (c *Circuit) QubitCount() uint32 { return c.qubitCount }

// Len returns the number of gates.
func (c *Circuit) Len() int { return len(c.gates) }

// Gates returns the gates in execution order. The slice must not be modified.
func (c *Circuit) Gates() []Gate { return c.gates }

// Add appends g after checking that every qubit it references lies inside the
// register and that no qubit is referenced twice.
func (c *Circuit) Add(g Gate) error {
	if g == nil || !g.Kind().Valid() {
		return ErrInvalidGate
	}
	if p, ok := g.(ParametricRotation); ok && int(p.Param) >= len(c.params) {
		return fmt.Errorf("%s: %w %d", g.Kind(), ErrUnknownParameter, p.Param)
	}
	if err := c.checkQubits(g); err != nil {
		return err
	}
	c.gates = append(c.gates, g)
	return nil
}

// MustAdd is Add for circuits built from literals; it panics on error.
func (c *Circuit) MustAdd(gates ...Gate) *Circuit {
	for _, g := range gates {
		if err := c.Add(g); err != nil {
			panic(err)
		}
	}
	return c
}

// AddParametric appends a parametric rotation of the given kind on target,
// registering a new parameter initialised to angle.
func (c *Circuit) AddParametric(kind Kind, target Qubit, angle float64) (ParamID, error) {
	if !kind.IsParametric() {
		return 0, fmt.Errorf("%s: %w: not a parametric rotation", kind, ErrInvalidGate)
	}
	id := ParamID(len(c.params))
	g := ParametricRotation{kind: kind, Target: target, Param: id}
	if err := c.checkQubits(g); err != nil {
		return 0, err
	}
	c.params = append(c.params, angle)
	c.gates = append(c.gates, g)
	return id, nil
}

func (c *Circuit) checkQubits(g Gate) error {
	seen := make([]Qubit, 0, 2)
	for _, list := range [][]Qubit{g.Controls(), g.Targets()} {
		for _, q := range list {
			if uint32(q) >= c.qubitCount {
				return &QubitRangeError{Gate: g.Kind(), Qubit: q, QubitCount: c.qubitCount}
			}
			if slices.Contains(seen, q) {
				return fmt.Errorf("%s: %w (q[%d])", g.Kind(), ErrDuplicateQubit, q)
			}
			seen = append(seen, q)
		}
	}
	return nil
}

// ParameterCount returns the size of the parameter store.
func (c *Circuit) ParameterCount() int { return len(c.params) }

// Parameter returns the current value of parameter id. Unknown ids read as 0.
func (c *Circuit) Parameter(id ParamID) float64 {
	if int(id) >= len(c.params) {
		return 0
	}
	return c.params[id]
}

// SetParameter updates parameter id.
func (c *Circuit) SetParameter(id ParamID, value float64) error {
	if int(id) >= len(c.params) {
		return fmt.Errorf("%w %d (store has %d)", ErrUnknownParameter, id, len(c.params))
	}
	c.params[id] = value
	return nil
}

// Angle returns the rotation angle of g as stored in the model: the fixed angle
// for Rotation, the current parameter value for ParametricRotation.
func (c *Circuit) Angle(g Gate) (float64, bool) {
	switch g := g.(type) {
	case Rotation:
		return g.Angle, true
	case ParametricRotation:
		return c.Parameter(g.Param), true
	default:
		return 0, false
	}
}

// Clone returns a deep copy that shares no state with c.
func (c *Circuit) Clone() *Circuit {
	return &Circuit{
		qubitCount: c.qubitCount,
		gates:      slices.Clone(c.gates),
		params:     slices.Clone(c.params),
	}
}
