package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"qasmgen/internal/circuit"
	"qasmgen/internal/circuitfile"
	"qasmgen/internal/qasm"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "List the gates of a circuit file and whether they export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := circuitfile.Load(args[0])
		if err != nil {
			return err
		}
		renderInspect(cmd.OutOrStdout(), displayPath(args[0]), c)
		return nil
	},
}

func renderInspect(out io.Writer, name string, c *circuit.Circuit) {
	yes := color.New(color.FgGreen)
	no := color.New(color.FgRed, color.Bold)
	dim := color.New(color.Faint)

	fmt.Fprintf(out, "%s: %d qubits, %d gates, %d parameters\n", name, c.QubitCount(), c.Len(), c.ParameterCount())
	if c.Len() == 0 {
		return
	}
	fmt.Fprintf(out, "%5s  %-14s %-8s %-8s %-22s %s\n", "#", "gate", "control", "target", "args", "qasm")

	firstUnsupported := -1
	for i, g := range c.Gates() {
		if !qasm.Supported(g.Kind()) {
			firstUnsupported = i
			break
		}
	}

	for i, g := range c.Gates() {
		k := g.Kind()
		fmt.Fprintf(out, "%5d  %-14s %-8s %-8s %-22s ", i, k, joinQubits(g.Controls()), joinQubits(g.Targets()), gateArgs(c, g))
		if op, ok := qasm.Instruction(k); ok {
			yes.Fprintln(out, op)
		} else {
			no.Fprintln(out, "unsupported")
		}
	}

	if firstUnsupported < 0 {
		yes.Fprintln(out, "exportable")
		return
	}
	no.Fprint(out, "not exportable")
	dim.Fprintf(out, " (first unsupported gate #%d %s)\n", firstUnsupported, c.Gates()[firstUnsupported].Kind())
}

func joinQubits(qs []circuit.Qubit) string {
	if len(qs) == 0 {
		return "-"
	}
	parts := make([]string, len(qs))
	for i, q := range qs {
		parts[i] = strconv.FormatUint(uint64(q), 10)
	}
	return strings.Join(parts, ",")
}

func gateArgs(c *circuit.Circuit, g circuit.Gate) string {
	switch g := g.(type) {
	case circuit.Rotation:
		return "angle=" + qasm.FormatAngle(g.Angle)
	case circuit.ParametricRotation:
		return fmt.Sprintf("p%d=%s", g.Param, qasm.FormatAngle(c.Parameter(g.Param)))
	case circuit.U:
		n := g.Kind().ParamCount()
		parts := make([]string, 0, n)
		for _, p := range g.Params[:n] {
			parts = append(parts, qasm.FormatAngle(p))
		}
		return "(" + strings.Join(parts, ",") + ")"
	default:
		return "-"
	}
}
