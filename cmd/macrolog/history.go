package macrolog

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/saadjs/macrolog/internal/model"
	"github.com/saadjs/macrolog/internal/service"
	"github.com/spf13/cobra"
)

var (
	historyQuery string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List products remembered from scans, most used first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(func(sqldb *sql.DB, u model.User) error {
			products, err := service.ListLearnedProducts(sqldb, u.ID, historyQuery, historyLimit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "NAME\tBRAND\tKCAL/100G\tUSES\tLAST USED")
			for _, p := range products {
				last := ""
				if p.LastUsedAt != nil {
					last = p.LastUsedAt.Format(time.DateOnly)
				}
				fmt.Fprintf(out, "%s\t%s\t%.0f\t%d\t%s\n", p.Name, p.Brand, p.Per100g.Calories, p.UsageCount, last)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historyQuery, "query", "", "Only names containing this text")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "Max rows")
}
