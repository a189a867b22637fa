package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/authdocflow/internal/models"
	"github.com/Lllllllleong/authdocflow/internal/services"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Extract a remote folder into a spreadsheet tab",
	Long: `Run lists and downloads the folder, extracts one record per document and
replaces the content of the tab. Without --spreadsheet a new spreadsheet is
created.`,
	RunE: runExtraction,
}

func init() {
	runCmd.Flags().String("folder", "", "Drive folder id or gs://bucket/prefix (required)")
	runCmd.Flags().String("spreadsheet", "", "destination spreadsheet id")
	runCmd.Flags().String("tab", "", "destination tab name (required)")
	runCmd.Flags().String("xlsx", "", "also write the table to this .xlsx file")
	_ = runCmd.MarkFlagRequired("folder")
	_ = runCmd.MarkFlagRequired("tab")

	rootCmd.AddCommand(runCmd)
}

func runExtraction(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	folder, _ := cmd.Flags().GetString("folder")
	spreadsheet, _ := cmd.Flags().GetString("spreadsheet")
	tab, _ := cmd.Flags().GetString("tab")
	xlsx, _ := cmd.Flags().GetString("xlsx")

	ctx := cmd.Context()
	f, err := services.NewExtraction(ctx, cfg)
	if err != nil {
		return err
	}
	defer f.Close()
	f.SetProgressOutput(cmd.OutOrStdout())

	res, err := f.Process(ctx, &models.ExtractRequest{
		FolderID:      folder,
		SpreadsheetID: spreadsheet,
		TabName:       tab,
		ExportPath:    xlsx,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d registro(s), %d ignorado(s). Run %s\n", res.RecordCount, res.SkippedCount, res.RunID)
	if res.ExportURI != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Arquivo: %s\n", res.ExportURI)
	}
	return nil
}
