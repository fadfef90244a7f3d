package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/mediacanon/internal/catalog"
)

var validateCmd = &cobra.Command{
	Use:   "validate <catalog_path>",
	Short: "Validate a catalog and check referenced files exist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return validateCatalog(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateCatalog(w io.Writer, path string) error {
	path, err := catalogPath(path)
	if err != nil {
		return err
	}
	c, err := catalog.ReadJSON(path)
	if err != nil {
		return err
	}

	errs := catalog.Validate(c, filepath.Dir(path))
	if len(errs) == 0 {
		printSuccess(w, "Catalog is valid")
		printSuccess(w, "%d entries, all files present", len(c.Entries))
		return nil
	}

	printError(w, "Catalog has %d error(s):", len(errs))
	for _, e := range errs {
		fmt.Fprintf(w, "    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errs))
}
