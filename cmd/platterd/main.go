package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "platterd",
		Short:         "Platter media digitization daemon",
		Long:          "platterd watches the optical drive, rips discs, and uploads finished files to the media server. Interrupted uploads resume on the next start.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	root.AddCommand(newConfigCommand(&configPath))
	root.AddCommand(newNotifyCommand(&configPath))
	return root
}
