package macrolog

import (
	"bufio"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/saadjs/macrolog/internal/model"
	"github.com/saadjs/macrolog/internal/nutrition"
	"github.com/saadjs/macrolog/internal/service"
	"github.com/spf13/cobra"
)

var (
	searchOffline     bool
	searchInteractive bool
)

var searchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Suggest foods from the built-in table, your history and Open Food Facts",
	Long:  "search merges built-in foods, remembered products and Open Food Facts results. With --interactive it reads one term per line from stdin and prints suggestions for the latest term once typing pauses.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !searchInteractive && len(args) == 0 {
			return fmt.Errorf("search term is required")
		}
		return withUser(func(sqldb *sql.DB, u model.User) error {
			var remote service.SearchClient
			if !searchOffline {
				remote = offClient()
			}
			suggester := service.NewSuggester(sqldb, remote, cfg.Search.Cap, cfg.Search.RemoteTimeout)
			if searchInteractive {
				return interactiveSearch(cmd, suggester, u.ID)
			}
			printCandidates(cmd.OutOrStdout(), suggester.Suggest(cmd.Context(), u.ID, strings.Join(args, " ")))
			return nil
		})
	},
}

func printCandidates(out io.Writer, candidates []nutrition.Candidate) {
	fmt.Fprintln(out, "SOURCE\tNAME\tBRAND\tKCAL\tP\tC\tF")
	for _, c := range candidates {
		n := c.Nutrients
		fmt.Fprintf(out, "%s\t%s\t%s\t%.0f\t%.1f\t%.1f\t%.1f\n", c.Source, c.Name, c.Brand, n.Calories, n.Protein, n.Carbs, n.Fats)
	}
}

// interactiveSearch feeds each stdin line to a debounced session. Only the
// latest term's results are printed; at EOF it waits for that term.
func interactiveSearch(cmd *cobra.Command, suggester *service.Suggester, userID string) error {
	out := cmd.OutOrStdout()
	delivered := make(chan string, 16)
	session := service.NewSearchSession(cmd.Context(), suggester.Suggest, userID, cfg.Search.Debounce, func(term string, results []nutrition.Candidate) {
		fmt.Fprintf(out, "== %s\n", term)
		printCandidates(out, results)
		select {
		case delivered <- term:
		default:
		}
	})
	defer session.Close()

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		session.Submit(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read search input: %w", err)
	}

	last := session.Latest()
	if nutrition.NormalizeTerm(last) == "" {
		return nil
	}
	deadline := time.After(cfg.Search.Debounce + cfg.Search.RemoteTimeout + time.Second)
	for {
		select {
		case term := <-delivered:
			if term == last {
				return nil
			}
		case <-deadline:
			return fmt.Errorf("timed out waiting for results for %q", last)
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		}
	}
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().BoolVar(&searchOffline, "offline", false, "Skip Open Food Facts")
	searchCmd.Flags().BoolVarP(&searchInteractive, "interactive", "i", false, "Read terms from stdin as they are typed")
}
