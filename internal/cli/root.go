package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/johnquangdev/monitor-agent/pkg/config"
	"github.com/johnquangdev/monitor-agent/pkg/logger"
)

// Version is set at build time
var Version = "dev"

// skipConfig marks commands that load configuration themselves
const skipConfig = "skip-config"

// Dependencies are shared by all commands
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewRootCmd builds the monitor command tree
func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "monitor",
		Short:         "Monitor a live stream, transcribe and summarize it",
		Long:          "Captures the audio of a live web stream in fixed-length segments, transcribes each segment and publishes a short summary as soon as it is ready.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := cmd.Annotations[skipConfig]; ok {
				return nil
			}
			return deps.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if deps.Logger != nil {
				_ = deps.Logger.Sync()
			}
		},
	}

	rootCmd.Version = Version

	rootCmd.AddCommand(NewServeCmd(deps))
	rootCmd.AddCommand(NewResolveCmd(deps))
	rootCmd.AddCommand(NewMigrateCmd(deps))
	rootCmd.AddCommand(NewArchiveCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps))

	return rootCmd
}

func (d *Dependencies) load() error {
	if d.Config == nil {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		d.Config = cfg
	}
	if d.Logger == nil {
		l, err := logger.New(d.Config)
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		d.Logger = l
	}
	return nil
}
