package macrolog

import (
	"database/sql"
	"fmt"

	"github.com/saadjs/macrolog/internal/service"
	"github.com/spf13/cobra"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run data integrity checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			report, err := service.RunDoctor(sqldb, doctorFix)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "SQLite integrity: %s\n", report.Integrity)
			fmt.Fprintf(out, "Foreign key violations: %d\n", report.ForeignKeyViolations)
			fmt.Fprintf(out, "Unknown source kinds: %d\n", report.UnknownSourceKinds)
			fmt.Fprintf(out, "Invalid entry dates: %d\n", report.InvalidEntryDates)
			fmt.Fprintf(out, "Duplicate entry rows: %d\n", report.DuplicateEntryRows)
			fmt.Fprintf(out, "Expired barcode cache rows: %d\n", report.ExpiredBarcodeRows)
			fmt.Fprintf(out, "Dangling current user: %t\n", report.DanglingCurrentUser)
			if doctorFix {
				fmt.Fprintf(out, "Purged barcode cache rows: %d\n", report.PurgedBarcodeRows)
				fmt.Fprintf(out, "Cleared current user: %t\n", report.ClearedCurrentUser)
				report, err = service.RunDoctor(sqldb, false)
				if err != nil {
					return err
				}
			}
			if !report.Healthy() {
				return fmt.Errorf("doctor found integrity issues")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Apply safe fixes")
}
