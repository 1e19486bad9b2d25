// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docforge/internal/pipeline"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the variant slots configured for each section",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		p, err := pipeline.Load(cfg.Generation.SectionsFile)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SECTION\tVARIANT\tPROVIDER\tMODEL\tTEMPERATURE")
		for _, name := range p.Names() {
			for i, v := range cfg.Generation.VariantsFor(name) {
				provider := v.Provider
				if provider == "" {
					provider = cfg.Generation.Provider
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%.2f\n", name, i, provider, v.ModelID, v.Temperature)
			}
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
