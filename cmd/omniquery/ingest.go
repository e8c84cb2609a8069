package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bububa/omniquery/app"
)

func newIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Index documents from a directory, S3 or URLs into the document store",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())
			ctx := cmd.Context()
			dir, _ := cmd.Flags().GetString("dir")
			fromS3, _ := cmd.Flags().GetBool("s3")
			links, _ := cmd.Flags().GetStringSlice("url")

			var total app.IngestReport
			add := func(r app.IngestReport) {
				total.Documents += r.Documents
				total.Chunks += r.Chunks
				total.Usage.Merge(&r.Usage)
			}
			if fromS3 {
				report, err := a.IngestS3(ctx)
				if err != nil {
					return err
				}
				add(report)
			}
			if len(links) > 0 {
				report, err := a.IngestURLs(ctx, links...)
				if err != nil {
					return err
				}
				add(report)
			}
			if dir != "" || (!fromS3 && len(links) == 0) {
				report, err := a.IngestDir(ctx, dir)
				if err != nil {
					return err
				}
				add(report)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d documents into %d chunks (%d tokens)\n", total.Documents, total.Chunks, total.Usage.Total())
			return nil
		},
	}
	cmd.Flags().String("dir", "", "directory to index, defaults to ingest.directory")
	cmd.Flags().Bool("s3", false, "index the configured S3 bucket prefix")
	cmd.Flags().StringSlice("url", nil, "remote documents to index")
	return cmd
}
