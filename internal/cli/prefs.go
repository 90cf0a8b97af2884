package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func init() {
	prefsCmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show remembered user preferences",
		Args:  cobra.NoArgs,
		Run:   runPrefs,
	}

	setCmd := &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Remember a user preference",
		Args:  cobra.ExactArgs(2),
		Run:   runPrefsSet,
	}

	prefsCmd.AddCommand(setCmd)
	memoryCmd.AddCommand(prefsCmd)
}

func runPrefs(cmd *cobra.Command, args []string) {
	e := setup()
	defer e.Close()

	prefs, err := e.mem.UserPreferences(cmd.Context())
	if err != nil {
		exitErr("prefs", err)
	}

	if formatFlag == "text" {
		keys := make([]string, 0, len(prefs))
		for k := range prefs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%s = %s\n", k, prefs[k])
		}
		return
	}
	printJSON(prefs)
}

func runPrefsSet(cmd *cobra.Command, args []string) {
	e := setup()
	defer e.Close()

	id, err := e.mem.AddUserPreference(cmd.Context(), args[0], args[1])
	if err != nil {
		exitErr("prefs set", err)
	}
	printJSON(map[string]any{"ok": true, "id": id, "key": args[0], "value": args[1]})
}
