package cmd

import (
	"fmt"
	"os"

	"github.com/connect-rnd/grant-matcher/internal/taxonomy"

	"github.com/spf13/cobra"
)

var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "Inspect taxonomy data files",
}

var taxonomyValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a taxonomy file and print its summary",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		tax, err := taxonomy.Load(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "taxonomy file is invalid: %s\n", err)
			os.Exit(1)
		}

		fmt.Printf("taxonomy version: %s\n", tax.Version())
		fmt.Printf("sectors: %d\n", tax.SectorCount())
		fmt.Printf("relevance pairs: %d\n", tax.PairCount())
	},
}

func init() {
	rootCmd.AddCommand(taxonomyCmd)
	taxonomyCmd.AddCommand(taxonomyValidateCmd)
}
