package macrolog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/saadjs/macrolog/internal/nutrition"
	"github.com/saadjs/macrolog/internal/service"
	"github.com/spf13/cobra"
)

var barcodeCmd = &cobra.Command{
	Use:   "barcode",
	Short: "Inspect barcode products and the local product cache",
}

var barcodeJSON bool

var barcodeLookupCmd = &cobra.Command{
	Use:   "lookup <code>",
	Short: "Look up a barcode without logging it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.OpenFoodFacts.Timeout)
			defer cancel()
			found, err := service.LookupBarcode(ctx, sqldb, offClient(), args[0])
			if err != nil {
				return err
			}
			if barcodeJSON {
				b, err := json.MarshalIndent(found, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal barcode lookup json: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}
			src := found.Product.Source()
			origin := "live"
			if found.FromCache {
				origin = "cache"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Barcode: %s (%s)\n", found.Product.Code, origin)
			fmt.Fprintf(out, "Food: %s\n", found.Product.Name)
			fmt.Fprintf(out, "Brand: %s\n", found.Product.Brand)
			if found.Product.ServingGrams > 0 {
				fmt.Fprintf(out, "Serving: %g g\n", found.Product.ServingGrams)
			}
			label := "Per 100g"
			if src.Basis() == nutrition.BasisPerServing {
				label = "Per serving"
			}
			printMacros(out, label, nutrition.Normalize(src))
			return nil
		})
	},
}

var barcodePurgeCmd = &cobra.Command{
	Use:   "purge-cache",
	Short: "Remove expired cached products",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			n, err := service.PurgeBarcodeCache(sqldb)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached product(s)\n", n)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(barcodeCmd)
	barcodeCmd.AddCommand(barcodeLookupCmd, barcodePurgeCmd)
	barcodeLookupCmd.Flags().BoolVar(&barcodeJSON, "json", false, "Print the lookup as JSON")
}
