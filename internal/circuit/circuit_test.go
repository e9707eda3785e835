package circuit

import (
	"errors"
	"testing"
)

func TestKindNamesRoundTrip(t *testing.T) {
	for k := KindInvalid + 1; k < kindCount; k++ {
		got, ok := KindByName(k.String())
		if !ok || got != k {
			t.Fatalf("KindByName(%q) = %v, %v; want %v", k.String(), got, ok, k)
		}
	}
	if _, ok := KindByName("invalid"); ok {
		t.Fatalf("invalid kind must not resolve by name")
	}
	if Kind(200).String() != "unknown" {
		t.Fatalf("out of range kind should print as unknown")
	}
}

func TestKindArity(t *testing.T) {
	tests := []struct {
		kind     Kind
		controls int
		targets  int
		params   int
	}{
		{KindCNOT, 1, 1, 0},
		{KindCZ, 1, 1, 0},
		{KindSWAP, 0, 2, 0},
		{KindH, 0, 1, 0},
		{KindParametricRY, 0, 1, 0},
		{KindU2, 0, 1, 2},
		{KindU3, 0, 1, 3},
	}
	for _, tt := range tests {
		if got := tt.kind.ControlCount(); got != tt.controls {
			t.Errorf("%s: controls = %d, want %d", tt.kind, got, tt.controls)
		}
		if got := tt.kind.TargetCount(); got != tt.targets {
			t.Errorf("%s: targets = %d, want %d", tt.kind, got, tt.targets)
		}
		if got := tt.kind.ParamCount(); got != tt.params {
			t.Errorf("%s: params = %d, want %d", tt.kind, got, tt.params)
		}
	}
}

func TestGateIndexRoles(t *testing.T) {
	cx := CNOT(2, 0)
	if got := cx.Controls(); len(got) != 1 || got[0] != 2 {
		t.Fatalf("CNOT controls = %v", got)
	}
	if got := cx.Targets(); len(got) != 1 || got[0] != 0 {
		t.Fatalf("CNOT targets = %v", got)
	}
	sw := SWAP(3, 1)
	if got := sw.Targets(); len(got) != 2 || got[0] != 3 || got[1] != 1 {
		t.Fatalf("SWAP targets = %v, want stored order [3 1]", got)
	}
	if sw.Controls() != nil {
		t.Fatalf("SWAP has no controls")
	}
}

func TestAddRejectsOutOfRangeQubit(t *testing.T) {
	c := NewCircuit(2)
	err := c.Add(CNOT(0, 2))
	var rangeErr *QubitRangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected QubitRangeError, got %v", err)
	}
	if rangeErr.Qubit != 2 || rangeErr.QubitCount != 2 || rangeErr.Gate != KindCNOT {
		t.Fatalf("unexpected error fields: %+v", rangeErr)
	}
	if c.Len() != 0 {
		t.Fatalf("rejected gate must not be appended")
	}
}

func TestAddRejectsDuplicateQubit(t *testing.T) {
	c := NewCircuit(3)
	if err := c.Add(SWAP(1, 1)); !errors.Is(err, ErrDuplicateQubit) {
		t.Fatalf("expected ErrDuplicateQubit, got %v", err)
	}
	if err := c.Add(CZ(0, 0)); !errors.Is(err, ErrDuplicateQubit) {
		t.Fatalf("expected ErrDuplicateQubit, got %v", err)
	}
}

func TestAddRejectsZeroValueGate(t *testing.T) {
	c := NewCircuit(1)
	if err := c.Add(OneQubit{}); !errors.Is(err, ErrInvalidGate) {
		t.Fatalf("expected ErrInvalidGate, got %v", err)
	}
	if err := c.Add(nil); !errors.Is(err, ErrInvalidGate) {
		t.Fatalf("expected ErrInvalidGate for nil, got %v", err)
	}
}

func TestParametricStore(t *testing.T) {
	c := NewCircuit(1)
	id, err := c.AddParametric(KindParametricRX, 0, 1.2)
	if err != nil {
		t.Fatalf("AddParametric: %v", err)
	}
	g := c.Gates()[0]
	if angle, ok := c.Angle(g); !ok || angle != 1.2 {
		t.Fatalf("Angle = %v, %v; want 1.2", angle, ok)
	}
	if err := c.SetParameter(id, -0.5); err != nil {
		t.Fatalf("SetParameter: %v", err)
	}
	if angle, _ := c.Angle(g); angle != -0.5 {
		t.Fatalf("Angle after update = %v, want -0.5", angle)
	}
	if err := c.SetParameter(7, 1); !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("expected ErrUnknownParameter, got %v", err)
	}
	if _, err := c.AddParametric(KindRX, 0, 1); !errors.Is(err, ErrInvalidGate) {
		t.Fatalf("fixed rotation kind must be rejected by AddParametric, got %v", err)
	}
	if err := c.Add(ParametricRotation{kind: KindParametricRZ, Param: 9}); !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("dangling parameter must be rejected, got %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	c := NewCircuit(2)
	c.MustAdd(H(0))
	id, err := c.AddParametric(KindParametricRZ, 1, 0.3)
	if err != nil {
		t.Fatal(err)
	}
	clone := c.Clone()
	clone.MustAdd(X(1))
	if err := clone.SetParameter(id, 9); err != nil {
		t.Fatal(err)
	}
	if c.Len() != 2 || c.Parameter(id) != 0.3 {
		t.Fatalf("original mutated through clone: len=%d param=%v", c.Len(), c.Parameter(id))
	}
}

func TestConstructorsValidateKind(t *testing.T) {
	if _, ok := NewOneQubit(KindCNOT, 0); ok {
		t.Fatalf("CNOT is not a one-qubit gate")
	}
	if _, ok := NewControlled(KindX, 0, 1); ok {
		t.Fatalf("X is not a controlled gate")
	}
	if _, ok := NewRotation(KindParametricRX, 0, 1); ok {
		t.Fatalf("parametric kinds need the parameter store")
	}
	if _, ok := NewU(KindU3, 0, 1, 2); ok {
		t.Fatalf("U3 needs three params")
	}
	u, ok := NewU(KindU2, 0, 0.1, 0.2, 0.3)
	if !ok || u.Params != [3]float64{0.1, 0.2, 0} {
		t.Fatalf("NewU(U2) = %+v, %v", u, ok)
	}
}
