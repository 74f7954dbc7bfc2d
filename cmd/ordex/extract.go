package main

import (
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agenthands/ordex/internal/core"
	"github.com/agenthands/ordex/internal/core/model"
	"github.com/agenthands/ordex/internal/core/reconcile"
	"github.com/agenthands/ordex/internal/llm"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract fields from a PDF or text file and print them as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()

		modelID, _ := cmd.Flags().GetString("model")
		patternsOnly, _ := cmd.Flags().GetBool("patterns-only")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}

		client, err := llm.NewClient(cmd.Context(), cfg.LLM)
		if err != nil {
			return fmt.Errorf("failed to initialize LLM client: %w", err)
		}
		defer llm.Close(client)
		p, err := core.NewPipeline(cfg, client, nil, logger)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		var res model.ExtractionResult
		if patternsOnly {
			text, err := p.Source.Text(ctx, data, mime.TypeByExtension(filepath.Ext(args[0])))
			if err != nil {
				return err
			}
			res = p.ExtractPatterns(text)
		} else {
			if modelID == "" {
				modelID = cfg.LLM.Model
			}
			res, err = p.ExtractDocument(ctx, data, mime.TypeByExtension(filepath.Ext(args[0])), reconcile.Options{Model: modelID})
			if err != nil {
				return err
			}
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringP("model", "m", "", "Generative model override")
	extractCmd.Flags().Bool("patterns-only", false, "Skip the generative fallback")
}
