package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vidloop/internal/store"
	"vidloop/internal/timestamp"
)

var (
	listLegacy bool
	listSort   string
)

var listCmd = &cobra.Command{
	Use:   "list <timestamps>",
	Short: "Print the interval table from a timestamp file",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listLegacy, "legacy", false, "Read the legacy MM:SS-MM:SS-description line format")
	listCmd.Flags().StringVar(&listSort, "sort", "", "Sort rows by start time: asc or desc")
}

func runList(cmd *cobra.Command, args []string) error {
	path := args[0]

	var list timestamp.List
	if listLegacy {
		var err error
		list, err = timestamp.ReadLegacyFile(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	} else {
		st, err := store.Open(path, false)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		list = st.Intervals()
	}

	switch listSort {
	case "":
	case "asc":
		list.Sort(false)
	case "desc":
		list.Sort(true)
	default:
		return fmt.Errorf("unknown sort order %q: want asc or desc", listSort)
	}

	printTable(list)
	return nil
}

// printTable prints rows with the 1-based numbers the loop command
// accepts.
func printTable(list timestamp.List) {
	if len(list) == 0 {
		fmt.Println("No timestamps found.")
		return
	}

	fmt.Printf("%4s  %-13s %-13s %s\n", "#", timestamp.Headers[0], timestamp.Headers[1], timestamp.Headers[2])
	for i, iv := range list {
		fmt.Printf("%4d  %-13s %-13s %s\n", i+1, iv.Start.String(), iv.End.String(), iv.Description)
	}
}
