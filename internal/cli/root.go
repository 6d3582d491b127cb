// Package cli provides the command-line interface for accent.
package cli

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/accent/internal/version"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	verbose    bool
	quiet      bool
	configPath string
}

// NewRootCmd builds the accent command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "accent",
		Short: "Extract semantic UI colours from images",
		Long: `accent samples an image and picks a small set of semantic colours
for theming: an accent colour, a light and a dark colour, and a palette
of up to six saturated colours.

Images can be local files, directories (a random image is picked) or
HTTP(S) URLs.`,
		Version:      version.Short(),
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/accent/config.toml)")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newExtractCmd(opts))
	rootCmd.AddCommand(newWatchCmd(opts))

	return rootCmd
}

// logger builds the root logger for a command run.
func (o *globalOptions) logger(w io.Writer) hclog.Logger {
	level := hclog.Info
	switch {
	case o.verbose:
		level = hclog.Debug
	case o.quiet:
		level = hclog.Error
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   "accent",
		Output: w,
		Level:  level,
	})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
