package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/market-helper/internal/basket"
	"github.com/fairyhunter13/market-helper/internal/dedupe"
	"github.com/fairyhunter13/market-helper/internal/model"
)

var (
	catalogPath string
	listPath    string
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Split a shopping list across the cheapest stores",
	Long:  "Reads a catalog snapshot and a shopping list (JSON array of {product_id, quantity}) and prints the per-store basket with the single-store comparison.",
	Args:  cobra.NoArgs,
	RunE:  runOptimize,
}

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "List products that look like duplicates",
	Args:  cobra.NoArgs,
	RunE:  runDuplicates,
}

func init() {
	f := optimizeCmd.Flags()
	f.StringVar(&catalogPath, "catalog", "", "catalog snapshot JSON file (- for stdin)")
	f.StringVar(&listPath, "list", "", "shopping list JSON file (- for stdin)")
	_ = optimizeCmd.MarkFlagRequired("list")

	duplicatesCmd.Flags().StringVar(&catalogPath, "catalog", "", "catalog snapshot JSON file (- for stdin)")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	if catalogPath == "-" && listPath == "-" {
		return errors.New("--catalog and --list cannot both read stdin")
	}
	c, err := loadCatalog(catalogPath, cmd.InOrStdin())
	if err != nil {
		return err
	}
	var list []model.ListItem
	if err := readJSONFile(listPath, cmd.InOrStdin(), &list); err != nil {
		return err
	}
	res, err := basket.Optimize(c, list)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), res)
}

func runDuplicates(cmd *cobra.Command, args []string) error {
	c, err := loadCatalog(catalogPath, cmd.InOrStdin())
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), dedupe.FindCandidates(c.Products))
}
