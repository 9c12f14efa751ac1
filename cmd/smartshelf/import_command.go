package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"smartshelf/internal/catalog"
	"smartshelf/internal/config"
	"smartshelf/internal/ingest"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <zip>",
		Short: "Import a ZIP of PDFs described by a manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.cliLogger()
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				svc := ingest.NewService(cfg, store, logger)
				result, err := svc.ImportFile(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("import %s: %w", args[0], err)
				}
				if ctx.wantJSON(cmd) {
					return writeJSON(cmd, result)
				}
				return printBatch(cmd, result)
			})
		},
	}
}

func printBatch(cmd *cobra.Command, result *ingest.BatchResult) error {
	rows := make([][]string, 0, len(result.ImportedDocuments))
	for _, doc := range result.ImportedDocuments {
		rows = append(rows, []string{
			strconv.FormatInt(doc.DocumentID, 10),
			doc.Reference,
			doc.Name,
			doc.ShelfName,
		})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(
		[]string{"ID", "Reference", "Name", "Shelf"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	))
	fmt.Fprintf(out, "Batch %s: imported %d of %d manifest rows\n",
		result.BatchID, result.ImportedCount, result.TotalManifestRows)
	return nil
}
