package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/market-helper/internal/model"
)

var rootCmd = &cobra.Command{
	Use:           "market-helper",
	Short:         "Personal price tracker",
	Long:          "Track product prices across stores, optimize a shopping list and find duplicate products.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(optimizeCmd)
	rootCmd.AddCommand(duplicatesCmd)
}

// readJSONFile decodes path into dst; "-" reads stdin.
func readJSONFile(path string, stdin io.Reader, dst any) error {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func loadCatalog(path string, stdin io.Reader) (model.Catalog, error) {
	var c model.Catalog
	if path == "" {
		return c, fmt.Errorf("--catalog is required")
	}
	err := readJSONFile(path, stdin, &c)
	return c, err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
