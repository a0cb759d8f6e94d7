package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/johnquangdev/monitor-agent/internal/infrastructure/storage"
)

// NewArchiveCmd lists archived segments and records
func NewArchiveCmd(deps *Dependencies) *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "List archived segments and transcript records",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := storage.NewMinIOClient(&deps.Config.Storage)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			info, err := client.GetBucketInfo(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "bucket:   %v (%v)\n", info["bucket"], info["endpoint"])
			fmt.Fprintf(out, "segments: %v\n", info["archived_segments"])

			files, err := client.ListFiles(ctx, prefix)
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintln(out, f)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "transcripts/", "object prefix to list")
	return cmd
}
