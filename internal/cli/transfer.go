package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	exportCmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export memories as JSON",
		Long:  "Write every stored memory to a JSON file as an array of {id, content, metadata}.",
		Args:  cobra.ExactArgs(1),
		Run:   runExport,
	}

	importCmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import memories from JSON",
		Long:  "Import memories from a file produced by export. Entries already present are skipped.",
		Args:  cobra.ExactArgs(1),
		Run:   runImport,
	}

	memoryCmd.AddCommand(exportCmd, importCmd)
}

func runExport(cmd *cobra.Command, args []string) {
	e := setup()
	defer e.Close()

	n, err := e.mem.Export(cmd.Context(), args[0])
	if err != nil {
		exitErr("export", err)
	}
	fmt.Printf(`{"ok":true,"exported":%d}`+"\n", n)
}

func runImport(cmd *cobra.Command, args []string) {
	e := setup()
	defer e.Close()

	n, err := e.mem.Import(cmd.Context(), args[0])
	if err != nil {
		exitErr("import", err)
	}
	fmt.Printf(`{"ok":true,"imported":%d}`+"\n", n)
}
