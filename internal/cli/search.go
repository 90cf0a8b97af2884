package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/deskmate/internal/composer"
	"github.com/rcliao/deskmate/internal/model"
)

func init() {
	searchCmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search memories by similarity",
		Long:  "Rank stored memories by similarity to the query, best first.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}
	searchCmd.Flags().String("category", "", "Filter by category")
	searchCmd.Flags().IntP("limit", "l", 5, "Max results")

	recentCmd := &cobra.Command{
		Use:   "recent",
		Short: "List the newest memories",
		Args:  cobra.NoArgs,
		Run:   runRecent,
	}
	recentCmd.Flags().String("category", "", "Filter by category")
	recentCmd.Flags().IntP("limit", "l", 10, "Max results")

	memoryCmd.AddCommand(searchCmd, recentCmd)
}

func categoryFlag(cmd *cobra.Command) model.Category {
	s, _ := cmd.Flags().GetString("category")
	c, err := model.ParseCategory(s)
	if err != nil {
		exitErr("category", err)
	}
	return c
}

func runSearch(cmd *cobra.Command, args []string) {
	category := categoryFlag(cmd)
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	e := setup()
	defer e.Close()

	results, err := e.mem.Search(cmd.Context(), query, category, limit)
	if err != nil {
		exitErr("search", err)
	}

	if formatFlag == "text" {
		for _, r := range results {
			fmt.Printf("[%.3f] (%s) %s\n", r.Distance, r.Category, composer.Preview(r.Content, 100))
		}
		return
	}
	printJSON(results)
}

func runRecent(cmd *cobra.Command, args []string) {
	category := categoryFlag(cmd)
	limit, _ := cmd.Flags().GetInt("limit")

	e := setup()
	defer e.Close()

	memories, err := e.mem.Recent(cmd.Context(), category, limit)
	if err != nil {
		exitErr("recent", err)
	}

	if formatFlag == "text" {
		for _, m := range memories {
			fmt.Printf("%s (%s) %s\n", m.CreatedAt.Format("2006-01-02 15:04"), m.Category, composer.Preview(m.Content, 100))
		}
		return
	}
	printJSON(memories)
}
