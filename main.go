package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/cottand/traits/cmd"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "traits [subcommand]",
	Short:        "traits resolves trait obligations, impl coherence and method calls described in YAML catalogues",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(cmd.ResolveCmd)
	rootCmd.AddCommand(cmd.CoherenceCmd)
	rootCmd.AddCommand(cmd.MethodCmd)
	rootCmd.AddCommand(cmd.CheckCmd)
}
