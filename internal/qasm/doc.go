// Package qasm renders circuits as OpenQASM 2.0 programs.
//
// The exported subset is fixed: cx, cz, swap, x, y, z, h, s, sdg, t, tdg, sx,
// sxdg, rx, ry and rz, all taken from qelib1.inc. Every program starts with the
// version line, the qelib1.inc include and a single quantum register named q
// sized to the circuit; gates follow one per line in circuit order.
//
// Rotation angles are negated on the way out: the circuit model and qelib1.inc
// disagree on the sign of the rotation generator. Parametric rotations are
// written with the parameter value current at the time of the call.
//
// Gates outside the subset fail the whole export with an UnsupportedGateError.
package qasm
