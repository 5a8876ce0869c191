package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"vidloop/internal/timestamp"
)

var convertOut string

var convertCmd = &cobra.Command{
	Use:   "convert <legacy>",
	Short: "Convert a legacy timestamp file to JSON records",
	Long: `convert reads the legacy MM:SS-MM:SS-description line format and writes
the same intervals as the JSON record format the other commands work on.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertOut, "out", "o", "", "Output file (default: input with .tmsp extension)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	in := args[0]

	out := convertOut
	if out == "" {
		out = replaceExt(in, ".tmsp")
	}
	if out == in {
		return fmt.Errorf("output would overwrite %s: pass --out", in)
	}

	n, err := convertLegacy(in, out)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	fmt.Printf("Converted %d timestamps to %s\n", n, out)
	return nil
}

// convertLegacy reads a legacy file and writes its JSON record form to
// out, returning the number of timestamps converted.
func convertLegacy(in, out string) (int, error) {
	list, err := timestamp.ReadLegacyFile(in)
	if err != nil {
		return 0, err
	}

	data, err := json.MarshalIndent(list.Records(), "", "  ")
	if err != nil {
		return 0, fmt.Errorf("encoding timestamps: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return 0, fmt.Errorf("writing %s: %w", out, err)
	}
	return len(list), nil
}

// replaceExt swaps the file extension, appending when there is none.
func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
