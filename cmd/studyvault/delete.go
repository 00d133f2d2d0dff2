package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteFlags struct {
	userID int64
	ref    int64
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove all indexed vectors of one library item",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, log, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()
		defer log.Sync() //nolint:errcheck

		deleted, err := client.DeleteDocument(cmd.Context(), deleteFlags.ref, deleteFlags.userID)
		if err != nil {
			return err
		}

		fmt.Printf("deleted %d points\n", deleted)
		return nil
	},
}

func init() {
	deleteCmd.Flags().Int64Var(&deleteFlags.userID, "user", 0, "owning user id")
	deleteCmd.Flags().Int64Var(&deleteFlags.ref, "ref", 0, "library item id")
	_ = deleteCmd.MarkFlagRequired("user")
	_ = deleteCmd.MarkFlagRequired("ref")
}
