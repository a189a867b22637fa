package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/authdocflow/internal/services"
)

var localCmd = &cobra.Command{
	Use:   "local <dir>",
	Short: "Extract a local directory into an .xlsx file",
	Args:  cobra.ExactArgs(1),
	RunE:  runLocal,
}

func init() {
	localCmd.Flags().String("xlsx", "autorizacoes.xlsx", "output file")

	rootCmd.AddCommand(localCmd)
}

func runLocal(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	xlsx, _ := cmd.Flags().GetString("xlsx")

	table, err := services.ProcessLocal(cmd.Context(), cfg, args[0], xlsx, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d registro(s).\n", len(table.Records))
	return nil
}
