package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var searchFlags struct {
	userID int64
	topK   int
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the user's indexed documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, log, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()
		defer log.Sync() //nolint:errcheck

		results, err := client.SearchDocuments(cmd.Context(), searchFlags.userID, args[0], searchFlags.topK)
		if err != nil {
			return err
		}

		if len(results) == 0 {
			fmt.Println("no results")
			return nil
		}
		for i, r := range results {
			marker := " "
			if r.Primary {
				marker = "*"
			}
			fmt.Printf("%s %2d. [%.4f] %s (item %d, chunk %d, %s)\n",
				marker, i+1, r.Score, r.Title, r.ExternalRef, r.ChunkIndex, r.SourceType)
			fmt.Printf("      %s\n", r.Text)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().Int64Var(&searchFlags.userID, "user", 0, "owning user id")
	searchCmd.Flags().IntVar(&searchFlags.topK, "top-k", 0, "result limit (default 5)")
	_ = searchCmd.MarkFlagRequired("user")
}
