package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"qasmgen/internal/circuitfile"
)

var packCmd = &cobra.Command{
	Use:   "pack <in> <out.qcs>",
	Short: "Convert a circuit file into a binary .qcs snapshot",
	Args:  cobra.ExactArgs(2),
	RunE:  runPack,
}

func runPack(cmd *cobra.Command, args []string) error {
	in, out := args[0], args[1]
	if circuitfile.FormatOf(out) != circuitfile.FormatSnapshot {
		return fmt.Errorf("%s: snapshot output must end in %s", out, circuitfile.SnapshotExt)
	}
	c, err := circuitfile.Load(in)
	if err != nil {
		return err
	}
	if err := circuitfile.WriteSnapshot(out, c); err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	if !quiet {
		color.New(color.FgGreen).Fprint(cmd.OutOrStdout(), "packed")
		fmt.Fprintf(cmd.OutOrStdout(), " %s -> %s (%d gates)\n", displayPath(in), displayPath(out), c.Len())
	}
	return nil
}
