package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/deskmate/internal/intent"
)

func init() {
	classifyCmd := &cobra.Command{
		Use:   "classify [utterance]",
		Short: "Classify an utterance into an intent",
		Long:  "Run the intent router and validator on one utterance and print the record.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runClassify,
	}

	entitiesCmd := &cobra.Command{
		Use:   "entities [text]",
		Short: "Extract entities from text",
		Args:  cobra.MinimumNArgs(1),
		Run:   runEntities,
	}

	intentsCmd := &cobra.Command{
		Use:   "intents",
		Short: "List the intents the router recognizes",
		Args:  cobra.NoArgs,
		Run:   runIntents,
	}

	RootCmd.AddCommand(classifyCmd, entitiesCmd, intentsCmd)
}

type classification struct {
	Intent      intent.Record           `json:"intent"`
	Validation  intent.ValidationResult `json:"validation"`
	Description string                  `json:"description"`
	Suggestions []string                `json:"suggested_actions"`
}

func runClassify(cmd *cobra.Command, args []string) {
	router, validator, err := buildRouter(loadConfig())
	if err != nil {
		exitErr("load intent catalog", err)
	}

	rec := router.Classify(strings.Join(args, " "))
	out := classification{
		Intent:      rec,
		Validation:  validator.Validate(rec),
		Description: router.Describe(rec.Kind),
		Suggestions: router.SuggestedActions(rec.Kind),
	}

	if formatFlag == "text" {
		fmt.Printf("%s (confidence: %.2f, tier: %s)\n", rec.Kind, rec.Confidence, rec.Tier)
		for k, v := range rec.Slots {
			fmt.Printf("  %s = %v\n", k, v)
		}
		for _, w := range out.Validation.Warnings {
			fmt.Printf("  warning: %s\n", w)
		}
		return
	}
	printJSON(out)
}

func runEntities(cmd *cobra.Command, args []string) {
	router, _, err := buildRouter(loadConfig())
	if err != nil {
		exitErr("load intent catalog", err)
	}
	entities := router.ExtractEntities(strings.Join(args, " "))
	if entities == nil {
		entities = map[string][]string{}
	}

	if formatFlag == "text" {
		names := make([]string, 0, len(entities))
		for name := range entities {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("%s: %s\n", name, strings.Join(entities[name], ", "))
		}
		return
	}
	printJSON(entities)
}

func runIntents(cmd *cobra.Command, args []string) {
	router, _, err := buildRouter(loadConfig())
	if err != nil {
		exitErr("load intent catalog", err)
	}

	type entry struct {
		Kind        intent.Kind `json:"kind"`
		Description string      `json:"description"`
	}
	var entries []entry
	for _, k := range router.Kinds() {
		entries = append(entries, entry{Kind: k, Description: router.Describe(k)})
	}

	if formatFlag == "text" {
		for _, e := range entries {
			fmt.Printf("%-16s %s\n", e.Kind, e.Description)
		}
		return
	}
	printJSON(entries)
}
