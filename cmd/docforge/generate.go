// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docforge/internal/fanout"
	"github.com/pdiddy/docforge/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a document from a database file",
	Long: `Generate runs every section of the pipeline in order and writes the
accepted content as a plain-text document.

With a single variant per section the pipeline runs in single-path mode. With
several variants, pass --auto-select (or set generation.auto_select) to accept
the first successful variant of each section; otherwise generation stops at
the first section that needs a choice. Use serve to choose interactively.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("title", "", "document title (required)")
	generateCmd.Flags().String("database", "", "path to the database text file, or - for stdin (required)")
	generateCmd.Flags().String("style", "", "writing style: academic, technical, business or casual")
	generateCmd.Flags().String("length", "", "section length: short, medium or long")
	generateCmd.Flags().String("output-dir", "", "directory for the exported document (default from config)")
	generateCmd.Flags().Bool("auto-select", false, "accept the first successful variant of each section")
	generateCmd.Flags().String("provider", "", "default model provider: gemini, openai, anthropic, http or echo")
	generateCmd.Flags().String("sections", "", "YAML outline replacing the default sections")
	generateCmd.Flags().Bool("stdout", false, "print the document instead of writing a file")

	_ = viper.BindPFlag("generation.output_dir", generateCmd.Flags().Lookup("output-dir"))
	_ = viper.BindPFlag("generation.auto_select", generateCmd.Flags().Lookup("auto-select"))
	_ = viper.BindPFlag("generation.provider", generateCmd.Flags().Lookup("provider"))
	_ = viper.BindPFlag("generation.sections_file", generateCmd.Flags().Lookup("sections"))

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")
	dbPath, _ := cmd.Flags().GetString("database")
	style, _ := cmd.Flags().GetString("style")
	length, _ := cmd.Flags().GetString("length")
	toStdout, _ := cmd.Flags().GetBool("stdout")

	if dbPath == "" {
		return fmt.Errorf("%w: --database is required", types.ErrMissingInput)
	}
	text, err := readDatabase(dbPath, cmd.InOrStdin())
	if err != nil {
		return err
	}

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	progress := cmd.ErrOrStderr()
	orch, err := buildOrchestrator(ctx, cfg, progressSink(progress), nil)
	if err != nil {
		return err
	}

	sess, err := orch.Start(types.DocumentRequest{
		Title:        title,
		DatabaseText: text,
		Style:        types.Style(style),
		Length:       types.Length(length),
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	runErr := sess.Run(ctx)
	if errors.Is(runErr, types.ErrUpstreamUnresolved) && !cfg.Generation.AutoSelect {
		runErr = fmt.Errorf("%w (use --auto-select to accept the first successful variant)", runErr)
	}

	if toStdout {
		fmt.Fprint(cmd.OutOrStdout(), sess.Export())
	} else {
		path, err := sess.WriteExport(cfg.Generation.OutputDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	}
	return runErr
}

// readDatabase returns the contents of path, or of stdin when path is "-".
func readDatabase(path string, stdin io.Reader) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading database text: %w", err)
	}
	return string(data), nil
}

// progressSink prints one line per settled variant.
func progressSink(w io.Writer) fanout.Sink {
	return fanout.SinkFunc(func(e fanout.Event) {
		if e.Err != nil {
			fmt.Fprintf(w, "failed  %s [%d] %s: %v\n", e.SectionName, e.VariantIndex, e.Variant, e.Err)
			return
		}
		fmt.Fprintf(w, "ok      %s [%d] %s: %d words\n", e.SectionName, e.VariantIndex, e.Variant, len(strings.Fields(e.Content)))
	})
}
