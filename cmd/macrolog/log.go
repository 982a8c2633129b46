package macrolog

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/saadjs/macrolog/internal/model"
	"github.com/saadjs/macrolog/internal/nutrition"
	"github.com/saadjs/macrolog/internal/service"
	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Log food from a barcode, label, the food table, history or by hand",
}

var (
	logQty   float64
	logUnit  string
	logDate  string
	logTime  string
	logName  string
	logBrand string

	manualCalories float64
	manualProtein  float64
	manualCarbs    float64
	manualFats     float64
	manualFiber    float64
	manualSugar    float64
	manualSodium   float64
)

// logSource sizes and stores src for the current user and prints the entry.
func logSource(cmd *cobra.Command, sqldb *sql.DB, u model.User, src nutrition.RawSource) error {
	loggedAt, err := parseDateTimeOrNow(logDate, logTime)
	if err != nil {
		return err
	}
	res, err := service.LogFood(sqldb, service.LogFoodInput{
		UserID:   u.ID,
		Source:   src,
		Quantity: logQty,
		Unit:     logUnit,
		LoggedAt: loggedAt,
	})
	if err != nil {
		return err
	}
	e := res.Entry
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Logged entry %d: %s (%g %s, %s)\n", e.ID, e.Name, e.Quantity, e.Unit, e.SourceKind)
	printMacros(out, "Nutrients", e.Nutrients)
	if res.Learned {
		fmt.Fprintln(out, "Remembered for history suggestions")
	} else if src.Kind == nutrition.KindOCR {
		fmt.Fprintln(out, "Not remembered; pass --name to keep this label in history")
	}
	return nil
}

func logRequest(cmd *cobra.Command, req service.SourceRequest) error {
	return withUser(func(sqldb *sql.DB, u model.User) error {
		src, err := service.ResolveSource(sqldb, u.ID, req)
		if err != nil {
			return err
		}
		return logSource(cmd, sqldb, u, src)
	})
}

var logFoodCmd = &cobra.Command{
	Use:   "food <name>",
	Short: "Log a food from the built-in table (per 100g; --unit piece uses its typical weight)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return logRequest(cmd, service.SourceRequest{Reference: strings.Join(args, " ")})
	},
}

var logQuickCmd = &cobra.Command{
	Use:   "quick <staple>",
	Short: "Log a one-tap staple (coffee, egg, shake, banana, oats, toast)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return logRequest(cmd, service.SourceRequest{Staple: args[0]})
	},
}

var logHistoryCmd = &cobra.Command{
	Use:   "history <name>",
	Short: "Log a product remembered from an earlier scan",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return logRequest(cmd, service.SourceRequest{History: strings.Join(args, " ")})
	},
}

var logLabelCmd = &cobra.Command{
	Use:   "label <file|->",
	Short: "Log a nutrition label from decoded text (per 100g)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open label text: %w", err)
			}
			defer f.Close()
			r = f
		}
		text, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("read label text: %w", err)
		}
		src := nutrition.ParseLabelText(string(text))
		if strings.TrimSpace(logName) != "" {
			src.Name = strings.TrimSpace(logName)
		}
		if strings.TrimSpace(logBrand) != "" {
			src.Brand = strings.TrimSpace(logBrand)
		}
		return logRequest(cmd, service.SourceRequest{Raw: &src})
	},
}

var logBarcodeCmd = &cobra.Command{
	Use:   "barcode <code>",
	Short: "Look up a barcode on Open Food Facts and log it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(func(sqldb *sql.DB, u model.User) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.OpenFoodFacts.Timeout)
			defer cancel()
			found, err := service.LookupBarcode(ctx, sqldb, offClient(), args[0])
			if err != nil {
				return err
			}
			if found.FromCache {
				fmt.Fprintln(cmd.OutOrStdout(), "Using cached product")
			}
			return logSource(cmd, sqldb, u, found.Product.Source())
		})
	},
}

var logManualCmd = &cobra.Command{
	Use:   "manual <name>",
	Short: "Log values exactly as entered",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values := map[string]any{
			"calories": manualCalories,
			"protein":  manualProtein,
			"carbs":    manualCarbs,
			"fats":     manualFats,
			"fiber":    manualFiber,
			"sugar":    manualSugar,
			"sodium":   manualSodium,
		}
		src := nutrition.ManualSource(strings.Join(args, " "), logBrand, values)
		return logRequest(cmd, service.SourceRequest{Raw: &src})
	},
}

func addAmountFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&logQty, "qty", 0, "Amount eaten (default 100 g, or one serving)")
	cmd.Flags().StringVar(&logUnit, "unit", "", "g|kg|oz|lb|piece|serving")
}

func addWhenFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&logDate, "date", "", "Date YYYY-MM-DD (default now)")
	cmd.Flags().StringVar(&logTime, "time", "", "Time HH:MM (requires --date)")
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.AddCommand(logFoodCmd, logQuickCmd, logHistoryCmd, logLabelCmd, logBarcodeCmd, logManualCmd)

	for _, c := range []*cobra.Command{logFoodCmd, logHistoryCmd, logLabelCmd, logBarcodeCmd} {
		addAmountFlags(c)
	}
	for _, c := range logCmd.Commands() {
		addWhenFlags(c)
	}

	logLabelCmd.Flags().StringVar(&logName, "name", "", "Name to store instead of the scanned label default")
	logLabelCmd.Flags().StringVar(&logBrand, "brand", "", "Brand to store")

	logManualCmd.Flags().StringVar(&logBrand, "brand", "", "Brand")
	logManualCmd.Flags().Float64Var(&manualCalories, "calories", 0, "Calories (kcal)")
	logManualCmd.Flags().Float64Var(&manualProtein, "protein", 0, "Protein grams")
	logManualCmd.Flags().Float64Var(&manualCarbs, "carbs", 0, "Carbs grams")
	logManualCmd.Flags().Float64Var(&manualFats, "fats", 0, "Fat grams")
	logManualCmd.Flags().Float64Var(&manualFiber, "fiber", 0, "Fiber grams")
	logManualCmd.Flags().Float64Var(&manualSugar, "sugar", 0, "Sugar grams")
	logManualCmd.Flags().Float64Var(&manualSodium, "sodium", 0, "Sodium milligrams")
	_ = logManualCmd.MarkFlagRequired("calories")
}
