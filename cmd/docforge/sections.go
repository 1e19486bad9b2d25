// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docforge/internal/pipeline"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "Print the section outline in YAML",
	Long: `Sections prints the configured section outline (or the built-in default)
in the format accepted by --sections, as a starting point for a custom outline.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := pipeline.Load(viper.GetString("generation.sections_file"))
		if err != nil {
			return err
		}
		out, err := pipeline.MarshalSections(p.Sections())
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(sectionsCmd)
}
