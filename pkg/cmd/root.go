// Package cmd provides the dockerstats command line.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"DockerStats/pkg/probing"
	"DockerStats/pkg/utils"
)

// errCycleFailed is returned when a one-shot cycle failed. The cycle has
// already logged the reason.
var errCycleFailed = errors.New("collection cycle failed")

type app struct {
	cfg        *utils.Config
	configFile string
	out        io.Writer
	logger     *zap.Logger
	// newFactory builds the runtime client factory; tests replace it.
	newFactory func(utils.DockerConfig) probing.Factory
}

func newApp(out io.Writer) *app {
	return &app{
		cfg:    utils.NewConfig(),
		out:    out,
		logger: zap.NewNop(),
		newFactory: func(c utils.DockerConfig) probing.Factory {
			return probing.NewDockerFactory(probing.DockerOptions{
				Host:        c.Host,
				APIVersion:  c.APIVersion,
				CallTimeout: c.CallTimeout,
			})
		},
	}
}

// NewRootCmd creates the root command with all subcommands.
func NewRootCmd() *cobra.Command {
	return newApp(os.Stdout).rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dockerstats",
		Short: "Flatten Docker container stats into named metrics",
		Long: `dockerstats polls the Docker Engine API and publishes, per running
container, flat metrics named <logical-name>.<container-name>.<suffix>,
together with fleet counts of containers and images.

The logical name comes from the container's JOB_NAME environment variable.

Commands:
  collect   Run one collection cycle and publish it
  run       Run collection cycles on an interval until interrupted
  serve     Expose the latest cycle on a Prometheus endpoint
  graph     Render charts from a recorded history file
  paths     Print the stats paths that are extracted`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "YAML config file")
	a.cfg.AddLogFlags(root)

	root.AddCommand(
		a.collectCmd(),
		a.runCmd(),
		a.serveCmd(),
		a.graphCmd(),
		a.pathsCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		if !errors.Is(err, errCycleFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
