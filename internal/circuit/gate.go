package circuit

// Qubit is the index of a qubit within a circuit register.
type Qubit uint32

// ParamID indexes the parameter store of a Circuit.
type ParamID uint32

// Gate is a single operation of a circuit. The set of implementations is closed:
// OneQubit, Controlled, Swap, Rotation, ParametricRotation and U.
type Gate interface {
	Kind() Kind
	// Controls returns the control qubits in gate order.
	Controls() []Qubit
	// Targets returns the target qubits in gate order.
	Targets() []Qubit

	gate()
}

// OneQubit is an unparameterised gate acting on a single target.
type OneQubit struct {
	kind   Kind
	Target Qubit
}

func (g OneQubit) Kind() Kind        { return g.kind }
func (g OneQubit) Controls() []Qubit { return nil }
func (g OneQubit) Targets() []Qubit  { return []Qubit{g.Target} }
func (OneQubit) gate()               {}

// Controlled is a gate with one control and one target (CNOT, CZ).
type Controlled struct {
	kind    Kind
	Control Qubit
	Target  Qubit
}

func (g Controlled) Kind() Kind        { return g.kind }
func (g Controlled) Controls() []Qubit { return []Qubit{g.Control} }
func (g Controlled) Targets() []Qubit  { return []Qubit{g.Target} }
func (Controlled) gate()               {}

// Swap exchanges two qubits. The order of First and Second is kept for output.
type Swap struct {
	First  Qubit
	Second Qubit
}

func (Swap) Kind() Kind         { return KindSWAP }
func (Swap) Controls() []Qubit  { return nil }
func (g Swap) Targets() []Qubit { return []Qubit{g.First, g.Second} }
func (Swap) gate()              {}

// Rotation is a fixed-angle rotation about the X, Y or Z axis.
// Angle is in radians and uses the model's sign convention.
type Rotation struct {
	kind   Kind
	Target Qubit
	Angle  float64
}

func (g Rotation) Kind() Kind        { return g.kind }
func (g Rotation) Controls() []Qubit { return nil }
func (g Rotation) Targets() []Qubit  { return []Qubit{g.Target} }
func (Rotation) gate()               {}

// ParametricRotation is a rotation whose angle is read from the parameter store
// of the circuit that owns it.
type ParametricRotation struct {
	kind   Kind
	Target Qubit
	Param  ParamID
}

func (g ParametricRotation) Kind() Kind        { return g.kind }
func (g ParametricRotation) Controls() []Qubit { return nil }
func (g ParametricRotation) Targets() []Qubit  { return []Qubit{g.Target} }
func (ParametricRotation) gate()               {}

// U is a general single-qubit unitary (U1, U2 or U3). Only the first
// Kind().ParamCount() entries of Params are meaningful.
type U struct {
	kind   Kind
	Target Qubit
	Params [3]float64
}

func (g U) Kind() Kind        { return g.kind }
func (g U) Controls() []Qubit { return nil }
func (g U) Targets() []Qubit  { return []Qubit{g.Target} }
func (U) gate()               {}

func Identity(t Qubit) OneQubit { return OneQubit{kind: KindIdentity, Target: t} }
func X(t Qubit) OneQubit        { return OneQubit{kind: KindX, Target: t} }
func Y(t Qubit) OneQubit        { return OneQubit{kind: KindY, Target: t} }
func Z(t Qubit) OneQubit        { return OneQubit{kind: KindZ, Target: t} }
func H(t Qubit) OneQubit        { return OneQubit{kind: KindH, Target: t} }
func S(t Qubit) OneQubit        { return OneQubit{kind: KindS, Target: t} }
func Sdag(t Qubit) OneQubit     { return OneQubit{kind: KindSdag, Target: t} }
func T(t Qubit) OneQubit        { return OneQubit{kind: KindT, Target: t} }
func Tdag(t Qubit) OneQubit     { return OneQubit{kind: KindTdag, Target: t} }
func SqrtX(t Qubit) OneQubit    { return OneQubit{kind: KindSqrtX, Target: t} }
func SqrtXdag(t Qubit) OneQubit { return OneQubit{kind: KindSqrtXdag, Target: t} }
func SqrtY(t Qubit) OneQubit    { return OneQubit{kind: KindSqrtY, Target: t} }
func SqrtYdag(t Qubit) OneQubit { return OneQubit{kind: KindSqrtYdag, Target: t} }
func P0(t Qubit) OneQubit       { return OneQubit{kind: KindP0, Target: t} }
func P1(t Qubit) OneQubit       { return OneQubit{kind: KindP1, Target: t} }

func CNOT(control, target Qubit) Controlled {
	return Controlled{kind: KindCNOT, Control: control, Target: target}
}

func CZ(control, target Qubit) Controlled {
	return Controlled{kind: KindCZ, Control: control, Target: target}
}

func SWAP(first, second Qubit) Swap { return Swap{First: first, Second: second} }

func RX(t Qubit, angle float64) Rotation { return Rotation{kind: KindRX, Target: t, Angle: angle} }
func RY(t Qubit, angle float64) Rotation { return Rotation{kind: KindRY, Target: t, Angle: angle} }
func RZ(t Qubit, angle float64) Rotation { return Rotation{kind: KindRZ, Target: t, Angle: angle} }

func U1(t Qubit, lambda float64) U {
	return U{kind: KindU1, Target: t, Params: [3]float64{lambda}}
}

func U2(t Qubit, phi, lambda float64) U {
	return U{kind: KindU2, Target: t, Params: [3]float64{phi, lambda}}
}

func U3(t Qubit, theta, phi, lambda float64) U {
	return U{kind: KindU3, Target: t, Params: [3]float64{theta, phi, lambda}}
}

// NewOneQubit builds an unparameterised single-target gate of the given kind.
func NewOneQubit(kind Kind, t Qubit) (OneQubit, bool) {
	switch kind {
	case KindIdentity, KindX, KindY, KindZ, KindH, KindS, KindSdag, KindT, KindTdag,
		KindSqrtX, KindSqrtXdag, KindSqrtY, KindSqrtYdag, KindP0, KindP1:
		return OneQubit{kind: kind, Target: t}, true
	default:
		return OneQubit{}, false
	}
}

// NewControlled builds a CNOT or CZ gate.
func NewControlled(kind Kind, control, target Qubit) (Controlled, bool) {
	if kind.ControlCount() != 1 {
		return Controlled{}, false
	}
	return Controlled{kind: kind, Control: control, Target: target}, true
}

// NewRotation builds a fixed-angle RX, RY or RZ gate.
func NewRotation(kind Kind, t Qubit, angle float64) (Rotation, bool) {
	switch kind {
	case KindRX, KindRY, KindRZ:
		return Rotation{kind: kind, Target: t, Angle: angle}, true
	default:
		return Rotation{}, false
	}
}

// NewU builds a U1, U2 or U3 gate; surplus params are ignored.
func NewU(kind Kind, t Qubit, params ...float64) (U, bool) {
	n := kind.ParamCount()
	if n == 0 || len(params) < n {
		return U{}, false
	}
	g := U{kind: kind, Target: t}
	copy(g.Params[:n], params)
	return g, true
}
