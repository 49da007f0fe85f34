package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/san-kum/beamhard/internal/automation"
	"github.com/san-kum/beamhard/internal/config"
	"github.com/san-kum/beamhard/internal/materials"
	"github.com/san-kum/beamhard/internal/storage"
	"github.com/san-kum/beamhard/internal/workbench"
)

var (
	replaceMaterial bool
	saveBatch       bool
	writePreset     string
)

func newPresetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "list scenario presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if writePreset != "" {
				sc := config.GetPreset(writePreset)
				if sc == nil {
					return fmt.Errorf("unknown preset: %s", writePreset)
				}
				path := writePreset + ".yaml"
				if err := config.Save(path, sc); err != nil {
					return err
				}
				fmt.Printf("preset written to %s\n", path)
				return nil
			}

			w := newTable()
			fmt.Fprintln(w, "NAME\tSOURCE\tFILTER\tSAMPLE\tDESCRIPTION")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s %gkV\t%s %gcm\t%s %gcm\t%s\n", name,
					p.Source.Target, p.Source.KV,
					p.Filter.Formula, p.Filter.ThicknessCM,
					p.Sample.Label(), p.Sample.ThicknessCM,
					p.Description)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&writePreset, "write", "", "write the named preset to <name>.yaml")
	return cmd
}

func newMaterialsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "materials",
		Short: "manage the materials library",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list library materials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(cmd.Context(), func(lib *materials.Library) error {
				all, err := lib.List(cmd.Context())
				if err != nil {
					return err
				}
				w := newTable()
				fmt.Fprintln(w, "NAME\tFORMULA\tDENSITY\tBUILTIN")
				for _, m := range all {
					fmt.Fprintf(w, "%s\t%s\t%g\t%v\n", m.Name, m.Formula, m.Density, m.Builtin)
				}
				return w.Flush()
			})
		},
	}

	addCmd := &cobra.Command{
		Use:   "add [name] [formula] [density]",
		Short: "add a material to the library",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rho float64
			if _, err := fmt.Sscanf(args[2], "%g", &rho); err != nil {
				return fmt.Errorf("density %q is not a number", args[2])
			}
			return withLibrary(cmd.Context(), func(lib *materials.Library) error {
				m := materials.Material{Name: args[0], Formula: args[1], Density: rho}
				if err := lib.Add(cmd.Context(), m, replaceMaterial); err != nil {
					return err
				}
				fmt.Printf("added %s\n", m.Name)
				return nil
			})
		},
	}
	addCmd.Flags().BoolVar(&replaceMaterial, "replace", false, "replace an existing material")

	removeCmd := &cobra.Command{
		Use:   "remove [name]",
		Short: "remove a material from the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(cmd.Context(), func(lib *materials.Library) error {
				if err := lib.Remove(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Printf("removed %s\n", args[0])
				return nil
			})
		},
	}

	cmd.AddCommand(listCmd, addCmd, removeCmd)
	return cmd
}

func withLibrary(ctx context.Context, fn func(lib *materials.Library) error) error {
	lib, err := materials.Open(ctx, dataDir)
	if err != nil {
		return err
	}
	defer lib.Close()
	return fn(lib)
}

func newScenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario [file.yaml]",
		Short: "run a batch of scenario steps",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	cmd.Flags().BoolVar(&saveBatch, "save", false, "save every step regardless of its save flag")
	return cmd
}

func runScenario(cmd *cobra.Command, args []string) error {
	batch, err := automation.LoadBatch(args[0])
	if err != nil {
		return err
	}
	if saveBatch {
		for i := range batch.Steps {
			batch.Steps[i].Save = true
		}
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	results, err := automation.RunBatch(cmd.Context(), batch, newExperiment(), st, logger)
	printBatch(results)
	return err
}

func printBatch(results []automation.StepResult) {
	w := newTable()
	fmt.Fprintln(w, "#\tSTEP\tMODE\tRESULT\tRUN")
	for _, r := range results {
		summary := "-"
		switch {
		case r.Estimate != nil && r.Estimate.Result.HasSolution():
			m := r.Estimate.Result.Matches[0]
			summary = fmt.Sprintf("nominal %.2f keV, thin %.2f keV, BH %.2f %%", m.NominalKeV, m.ThinKeV, m.HardeningPercent)
		case r.Estimate != nil:
			summary = "no solution"
		case r.Sweep != nil && r.Sweep.Curvature != nil:
			summary = fmt.Sprintf("%d points, hardening ratio %.4f", len(r.Sweep.Curve.Points), r.Sweep.Curvature.HardeningRatio)
		case r.Sweep != nil:
			summary = fmt.Sprintf("%d points", len(r.Sweep.Curve.Points))
		case r.Scan != nil:
			summary = fmt.Sprintf("%d values", len(r.Scan))
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", r.Index+1, r.Name, r.Mode, summary, r.RunID)
	}
	w.Flush()

	for _, r := range results {
		if r.Scan == nil {
			continue
		}
		fmt.Printf("\n%s:\n", r.Name)
		w := newTable()
		fmt.Fprintln(w, "VALUE\tNOMINAL KEV\tTHIN KEV\tBH %")
		for _, p := range r.Scan {
			if !p.Solved {
				fmt.Fprintf(w, "%g\t-\t-\t-\n", p.Value)
				continue
			}
			fmt.Fprintf(w, "%g\t%.3f\t%.3f\t%.2f\n", p.Value, p.NominalKeV, p.ThinKeV, p.HardeningPercent)
		}
		w.Flush()
	}
}

func newWorkbenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workbench",
		Short: "interactive estimator that recomputes on every edit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := resolveScenario(cmd)
			if err != nil {
				return err
			}
			return workbench.Run(cmd.Context(), sc, newExperiment().Run)
		},
	}
	addScenarioFlags(cmd.Flags())
	return cmd
}
