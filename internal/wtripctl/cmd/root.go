// Package cmd implements the wtripctl CLI commands
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wrale/wrale-trips/internal/client"
	"github.com/wrale/wrale-trips/internal/wtripctl/config"
	"github.com/wrale/wrale-trips/internal/wtripctl/util"
)

// Output formats accepted by -o
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// cli holds the state shared by every command of one invocation
type cli struct {
	cfgFile string
	server  string
	token   string
	output  string
	debug   bool

	cfg *config.Config
}

// client returns an API client for the resolved backend
func (c *cli) client() *client.Client {
	return util.NewClient(c.connection())
}

func (c *cli) connection() util.Connection {
	return util.ResolveConnection(c.cfg, c.server, c.token)
}

func (c *cli) loadConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.cfgFile)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	c.cfg = cfg

	switch c.output {
	case outputTable, outputJSON, outputYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (table, json, yaml)", c.output)
	}
}

// newRootCmd builds the complete command tree
func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "wtripctl",
		Short: "Wrale Trips control tool",
		Long: `wtripctl is a command line tool for managing the trips served by the
Wrale Trips backend. It lists, creates, updates and deletes trips, loads
sample data and checks prices the same way the web front-end does.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.loadConfig,
	}

	rootCmd.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default is $HOME/.wtripctl/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&c.server, "server", "", "backend API base URL")
	rootCmd.PersistentFlags().StringVar(&c.token, "token", "", "authentication token")
	rootCmd.PersistentFlags().StringVarP(&c.output, "output", "o", outputTable, "output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolVar(&c.debug, "debug", false, "print additional details")

	rootCmd.AddCommand(
		newTripCmd(c),
		newPriceCmd(c),
		newConfigCmd(c),
		newVersionCmd(c),
	)

	return rootCmd
}

// Execute runs the CLI. This is called by main.main().
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// print writes v in the selected structured format. It reports false for the
// table format, which each command renders itself.
func (c *cli) print(cmd *cobra.Command, v interface{}) (bool, error) {
	switch c.output {
	case outputJSON:
		return true, util.PrintJSON(cmd.OutOrStdout(), v)
	case outputYAML:
		return true, util.PrintYAML(cmd.OutOrStdout(), v)
	default:
		return false, nil
	}
}
