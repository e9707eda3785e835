package circuit

// Kind identifies a gate within the closed vocabulary of the model.
type Kind uint8

const (
	KindInvalid Kind = iota

	// Two-qubit gates.
	KindCNOT
	KindCZ
	KindSWAP

	// Single-qubit Clifford and T gates.
	KindIdentity
	KindX
	KindY
	KindZ
	KindH
	KindS
	KindSdag
	KindT
	KindTdag
	KindSqrtX
	KindSqrtXdag
	KindSqrtY
	KindSqrtYdag

	// Projections onto |0> and |1>.
	KindP0
	KindP1

	// Fixed-angle rotations.
	KindRX
	KindRY
	KindRZ

	// Rotations whose angle lives in the circuit parameter store.
	KindParametricRX
	KindParametricRY
	KindParametricRZ

	// General single-qubit unitaries.
	KindU1
	KindU2
	KindU3

	kindCount
)

var kindNames = [kindCount]string{
	KindInvalid:      "invalid",
	KindCNOT:         "CNOT",
	KindCZ:           "CZ",
	KindSWAP:         "SWAP",
	KindIdentity:     "I",
	KindX:            "X",
	KindY:            "Y",
	KindZ:            "Z",
	KindH:            "H",
	KindS:            "S",
	KindSdag:         "Sdag",
	KindT:            "T",
	KindTdag:         "Tdag",
	KindSqrtX:        "sqrtX",
	KindSqrtXdag:     "sqrtXdag",
	KindSqrtY:        "sqrtY",
	KindSqrtYdag:     "sqrtYdag",
	KindP0:           "Projection-0",
	KindP1:           "Projection-1",
	KindRX:           "X-rotation",
	KindRY:           "Y-rotation",
	KindRZ:           "Z-rotation",
	KindParametricRX: "ParametricRX",
	KindParametricRY: "ParametricRY",
	KindParametricRZ: "ParametricRZ",
	KindU1:           "U1",
	KindU2:           "U2",
	KindU3:           "U3",
}

var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, kindCount)
	for k := KindInvalid + 1; k < kindCount; k++ {
		m[kindNames[k]] = k
	}
	return m
}()

// String returns the descriptive gate name, e.g. "CNOT" or "X-rotation".
func (k Kind) String() string {
	if k >= kindCount {
		return "unknown"
	}
	return kindNames[k]
}

// KindByName resolves a descriptive gate name produced by Kind.String.
func KindByName(name string) (Kind, bool) {
	k, ok := kindByName[name]
	return k, ok
}

// Valid reports whether k names a gate of the model.
func (k Kind) Valid() bool {
	return k > KindInvalid && k < kindCount
}

// IsParametric reports whether the gate reads its angle from the parameter store.
func (k Kind) IsParametric() bool {
	switch k {
	case KindParametricRX, KindParametricRY, KindParametricRZ:
		return true
	default:
		return false
	}
}

// IsRotation reports whether k is a fixed or parametric single-axis rotation.
func (k Kind) IsRotation() bool {
	switch k {
	case KindRX, KindRY, KindRZ:
		return true
	default:
		return k.IsParametric()
	}
}

// ControlCount returns the number of control qubits a gate of this kind carries.
func (k Kind) ControlCount() int {
	switch k {
	case KindCNOT, KindCZ:
		return 1
	default:
		return 0
	}
}

// TargetCount returns the number of target qubits a gate of this kind carries.
func (k Kind) TargetCount() int {
	switch k {
	case KindInvalid:
		return 0
	case KindSWAP:
		return 2
	default:
		if k >= kindCount {
			return 0
		}
		return 1
	}
}

// ParamCount returns the number of U-gate parameters for U1, U2 and U3.
func (k Kind) ParamCount() int {
	switch k {
	case KindU1:
		return 1
	case KindU2:
		return 2
	case KindU3:
		return 3
	default:
		return 0
	}
}
