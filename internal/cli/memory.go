package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/deskmate/internal/model"
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect and manage long-term memory",
}

func init() {
	addCmd := &cobra.Command{
		Use:   "add [content]",
		Short: "Store a memory",
		Long:  "Store a memory. Content can be a positional arg or piped via stdin.",
		Run:   runMemoryAdd,
	}
	addCmd.Flags().String("category", string(model.CategoryKnowledge), "Category: conversation, action, observation, user_preference, knowledge, task")
	addCmd.Flags().StringToString("meta", nil, "Metadata as key=value pairs")

	memoryCmd.AddCommand(addCmd)
	RootCmd.AddCommand(memoryCmd)
}

func runMemoryAdd(cmd *cobra.Command, args []string) {
	categoryStr, _ := cmd.Flags().GetString("category")
	meta, _ := cmd.Flags().GetStringToString("meta")

	category, err := model.ParseCategory(categoryStr)
	if err != nil || category == "" {
		exitErr("add", fmt.Errorf("invalid category %q", categoryStr))
	}

	// Get content: positional arg first, then check stdin
	var content string
	if len(args) > 0 {
		content = strings.Join(args, " ")
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
			content = string(b)
		}
	}
	content = strings.TrimSpace(content)
	if content == "" {
		exitErr("add", fmt.Errorf("content is required (positional arg or stdin)"))
	}

	e := setup()
	defer e.Close()

	id, err := e.mem.Add(cmd.Context(), content, category, meta)
	if err != nil {
		exitErr("add", err)
	}
	printJSON(map[string]any{"ok": true, "id": id, "category": category})
}
