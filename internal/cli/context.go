package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/deskmate/internal/composer"
)

func init() {
	cmd := &cobra.Command{
		Use:   "context [query]",
		Short: "Show the grounding context for a query",
		Long:  "Classify the query and compose the context block the assistant would send with it: relevant memories, recent turns and the detected intent.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runContext,
	}

	cmd.Flags().Int("results", 0, "Relevant memories to include (default: memory.context_results)")

	RootCmd.AddCommand(cmd)
}

func runContext(cmd *cobra.Command, args []string) {
	results, _ := cmd.Flags().GetInt("results")
	query := strings.Join(args, " ")

	e := setup()
	defer e.Close()

	router, _, err := buildRouter(e.cfg)
	if err != nil {
		exitErr("load intent catalog", err)
	}
	if results <= 0 {
		results = e.cfg.Memory.ContextResults
	}

	c := composer.New(e.mem, router, composer.Options{
		Results:       results,
		PreviewLength: e.cfg.Memory.PreviewLength,
	}, e.log)
	rec := router.Classify(query)
	block := c.Build(cmd.Context(), composer.Turn{Query: query, Kind: rec.Kind})

	if formatFlag == "text" {
		fmt.Println(block)
		return
	}
	printJSON(map[string]any{
		"query":   query,
		"intent":  rec.Kind,
		"context": block,
	})
}
