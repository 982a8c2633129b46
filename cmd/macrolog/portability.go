package macrolog

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/saadjs/macrolog/internal/model"
	"github.com/saadjs/macrolog/internal/service"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOut    string
	importIn     string
	importMode   string
	importDryRun bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the current user's history (json or csv)",
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(strings.TrimSpace(exportFormat))
		if format != "json" && format != "csv" {
			return fmt.Errorf("--format must be json or csv")
		}
		return withUser(func(sqldb *sql.DB, u model.User) error {
			data, err := service.ExportUserData(sqldb, u)
			if err != nil {
				return err
			}
			var w io.Writer = cmd.OutOrStdout()
			if exportOut != "" && exportOut != "-" {
				f, err := os.Create(exportOut)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer f.Close()
				w = f
			}
			if format == "json" {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				if err := enc.Encode(data); err != nil {
					return fmt.Errorf("write export json: %w", err)
				}
			} else if err := writeEntriesCSV(w, data.Entries); err != nil {
				return err
			}
			if w != cmd.OutOrStdout() {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", len(data.Entries), exportOut)
			}
			return nil
		})
	},
}

func writeEntriesCSV(w io.Writer, entries []service.ExportEntry) error {
	cw := csv.NewWriter(w)
	header := []string{"date", "logged_at", "name", "brand", "source", "quantity", "unit", "calories", "protein_g", "carbs_g", "fat_g", "fiber_g", "sugar_g", "sodium_mg"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write export csv header: %w", err)
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	for _, e := range entries {
		n := e.Nutrients
		record := []string{
			e.Date,
			e.LoggedAt.Format(time.RFC3339),
			e.Name,
			e.Brand,
			string(e.SourceKind),
			f(e.Quantity),
			e.Unit,
			f(n.Calories), f(n.Protein), f(n.Carbs), f(n.Fats), f(n.Fiber), f(n.Sugar), f(n.Sodium),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write export csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush export csv: %w", err)
	}
	return nil
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a json export into the current user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(importIn) == "" {
			return fmt.Errorf("--in is required")
		}
		var raw []byte
		var err error
		if importIn == "-" {
			raw, err = io.ReadAll(cmd.InOrStdin())
		} else {
			raw, err = os.ReadFile(importIn)
		}
		if err != nil {
			return fmt.Errorf("read import file: %w", err)
		}
		var data service.ExportData
		if err := json.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("parse import json: %w", err)
		}
		return withUser(func(sqldb *sql.DB, u model.User) error {
			report, err := service.ImportUserData(sqldb, u.ID, &data, service.ImportOptions{
				Mode:   service.ImportMode(importMode),
				DryRun: importDryRun,
			})
			if err != nil {
				return err
			}
			verb := "Imported"
			if report.DryRun {
				verb = "Would import"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d entries (%d skipped), %d water logs, %d weigh-ins, %d remembered products\n",
				verb, report.Entries, report.SkippedEntries, report.Water, report.Weights, report.Learned)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Export format: json|csv")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file (default stdout)")
	importCmd.Flags().StringVar(&importIn, "in", "", "Input json file, or - for stdin")
	importCmd.Flags().StringVar(&importMode, "mode", string(service.ImportModeMerge), "Import mode: merge|replace")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate without writing")
}
