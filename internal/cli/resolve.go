package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewResolveCmd resolves the stream locator once and prints it
func NewResolveCmd(deps *Dependencies) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the current stream locator and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			locators, err := newLocatorCache(deps.Config, deps.Logger)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			loc, err := locators.Get(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, loc.URL)
			fmt.Fprintf(out, "fetched:  %s\n", loc.FetchedAt.Format(time.RFC3339))
			if !loc.ExpiresAt.IsZero() {
				fmt.Fprintf(out, "expires:  %s (in %s)\n", loc.ExpiresAt.Format(time.RFC3339), time.Until(loc.ExpiresAt).Truncate(time.Second))
			} else {
				fmt.Fprintf(out, "expires:  unknown, refreshed every %s\n", deps.Config.Pipeline.LocatorTTL)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "give up after this long")
	return cmd
}
