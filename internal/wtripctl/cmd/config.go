package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wrale/wrale-trips/internal/wtripctl/config"
	"github.com/wrale/wrale-trips/internal/wtripctl/util"
)

// newConfigCmd creates the config command that manages CLI contexts
func newConfigCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long: `The config command provides subcommands for managing wtripctl's
configuration.

Each context names one trips backend, so switching between a local backend
and a shared staging backend is a single command. Contexts hold the backend
URL, an optional token and TLS settings.`,
	}

	cmd.AddCommand(
		newConfigGetContextCmd(c),
		newConfigSetContextCmd(c),
		newConfigDeleteContextCmd(c),
		newConfigUseContextCmd(c),
		newConfigViewCmd(c),
	)

	return cmd
}

func newKeyValueWriter(cmd *cobra.Command) *tabwriter.Writer {
	return util.NewTabWriter(cmd.OutOrStdout())
}

func newConfigGetContextCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "get-context [NAME]",
		Short: "Display one or many contexts",
		Example: `  # List all contexts
  wtripctl config get-context

  # Show details for a specific context
  wtripctl config get-context staging`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := newKeyValueWriter(cmd)
			if len(args) == 0 {
				fmt.Fprintln(tw, "CURRENT\tNAME\tSERVER")
				for _, name := range c.cfg.Names() {
					current := ""
					if name == c.cfg.CurrentContext {
						current = "*"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\n", current, name, c.cfg.Contexts[name].Server)
				}
				return tw.Flush()
			}

			name := args[0]
			ctx, ok := c.cfg.Contexts[name]
			if !ok {
				return fmt.Errorf("context %q not found", name)
			}

			fmt.Fprintf(tw, "Name:\t%s\n", name)
			fmt.Fprintf(tw, "Server:\t%s\n", ctx.Server)
			fmt.Fprintf(tw, "Insecure Skip Verify:\t%v\n", ctx.InsecureSkipVerify)
			if ctx.Token != "" {
				fmt.Fprintf(tw, "Token:\t%s\n", util.MaskToken(ctx.Token))
			}
			return tw.Flush()
		},
	}
}

func newConfigSetContextCmd(c *cli) *cobra.Command {
	var (
		server          string
		token           string
		insecureSkipTLS bool
	)

	cmd := &cobra.Command{
		Use:   "set-context NAME",
		Short: "Create or update a context",
		Example: `  # Point a context at a local backend
  wtripctl config set-context local --server http://localhost:8081/api

  # Add a staging backend with a token
  wtripctl config set-context staging --server https://trips.example.com/api --token mytoken`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			ctx := &config.Context{
				Server:             server,
				Token:              token,
				InsecureSkipVerify: insecureSkipTLS,
			}
			if existing, ok := c.cfg.Contexts[name]; ok && !cmd.Flags().Changed("token") {
				ctx.Token = existing.Token
			}
			c.cfg.AddContext(name, ctx)

			if err := c.cfg.Save(); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Context %q updated\n", name)
			return nil
		},
	}

	// The context flag shadows the global --server and --token flags
	cmd.Flags().StringVar(&server, "server", "", "backend API base URL (required)")
	cmd.Flags().StringVar(&token, "token", "", "authentication token")
	cmd.Flags().BoolVar(&insecureSkipTLS, "insecure-skip-tls", false, "skip TLS certificate verification")

	_ = cmd.MarkFlagRequired("server")

	return cmd
}

func newConfigDeleteContextCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-context NAME",
		Short: "Delete a context",
		Long: `Delete a context from the configuration. Deleting the current context
leaves no context selected.`,
		Example: `  # Delete the staging context
  wtripctl config delete-context staging`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			if err := c.cfg.RemoveContext(name); err != nil {
				return fmt.Errorf("error removing context: %w", err)
			}

			if err := c.cfg.Save(); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Context %q deleted\n", name)
			return nil
		},
	}
}

func newConfigUseContextCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "use-context NAME",
		Short: "Switch to a different context",
		Example: `  # Switch to the staging backend
  wtripctl config use-context staging`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			if err := c.cfg.SetCurrentContext(name); err != nil {
				return fmt.Errorf("error setting current context: %w", err)
			}

			if err := c.cfg.Save(); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Switched to context %q\n", name)
			return nil
		},
	}
}

func newConfigViewCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Display the configuration",
		Long: `Display every context and which one is active. Tokens are masked in
every output format.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			masked := &config.Config{
				CurrentContext: c.cfg.CurrentContext,
				Contexts:       make(map[string]*config.Context, len(c.cfg.Contexts)),
			}
			for name, ctx := range c.cfg.Contexts {
				cp := *ctx
				cp.Token = util.MaskToken(ctx.Token)
				masked.Contexts[name] = &cp
			}

			if done, err := c.print(cmd, masked); done {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config: %s\n", c.cfg.Path())
			fmt.Fprintf(out, "Current Context: %s\n\n", masked.CurrentContext)
			fmt.Fprintln(out, "Contexts:")
			for _, name := range masked.Names() {
				ctx := masked.Contexts[name]
				fmt.Fprintf(out, "- %s:\n", name)
				fmt.Fprintf(out, "    Server: %s\n", ctx.Server)
				fmt.Fprintf(out, "    InsecureSkipVerify: %v\n", ctx.InsecureSkipVerify)
				if ctx.Token != "" {
					fmt.Fprintf(out, "    Token: %s\n", ctx.Token)
				}
			}
			return nil
		},
	}
}
