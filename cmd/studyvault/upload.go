package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/studyvault"
)

var uploadFlags struct {
	pdf      string
	url      string
	userID   int64
	userName string
	title    string
	ref      int64
}

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Ingest a PDF file or a video transcript into the user's library",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if (uploadFlags.pdf == "") == (uploadFlags.url == "") {
			return fmt.Errorf("exactly one of --pdf or --url is required")
		}

		client, log, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()
		defer log.Sync() //nolint:errcheck

		ctx := cmd.Context()
		var result studyvault.UploadResult
		if uploadFlags.pdf != "" {
			result, err = client.ProcessDocumentUpload(
				ctx, uploadFlags.pdf,
				uploadFlags.userID, uploadFlags.userName, uploadFlags.title,
				uploadFlags.ref,
			)
		} else {
			result, err = client.ProcessTranscriptUpload(
				ctx, uploadFlags.url,
				uploadFlags.userID, uploadFlags.userName, uploadFlags.title,
				uploadFlags.ref,
			)
		}
		if err != nil {
			return err
		}

		fmt.Printf("indexed %d chunks (%d points)\n", result.ChunkCount, len(result.PointIDs))
		return nil
	},
}

func init() {
	uploadCmd.Flags().StringVar(&uploadFlags.pdf, "pdf", "", "path to a PDF file")
	uploadCmd.Flags().StringVar(&uploadFlags.url, "url", "", "video URL to fetch a transcript from")
	uploadCmd.Flags().Int64Var(&uploadFlags.userID, "user", 0, "owning user id")
	uploadCmd.Flags().StringVar(&uploadFlags.userName, "user-name", "", "owner display name")
	uploadCmd.Flags().StringVar(&uploadFlags.title, "title", "", "document title")
	uploadCmd.Flags().Int64Var(&uploadFlags.ref, "ref", 0, "library item id")
	_ = uploadCmd.MarkFlagRequired("user")
	_ = uploadCmd.MarkFlagRequired("title")
	_ = uploadCmd.MarkFlagRequired("ref")
}
