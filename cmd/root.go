package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/Journera/glutil/core/catalog"
	"github.com/Journera/glutil/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	profile    string
	region     string
	configDir  string
	jsonOutput bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "glutil",
	Short: "Glue catalog maintenance",
	Long: `glutil keeps AWS Glue partitions in sync with the data stored in S3
and removes tables that were created by mistake inside other tables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console encoding with ISO8601 timestamps reads best in a terminal.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", errorFields(err)...)
			_ = l.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func errorFields(err error) []zap.Field {
	fields := []zap.Field{zap.Error(err)}
	var cfgErr *catalog.ConfigError
	if errors.As(err, &cfgErr) {
		if hint := cfgErr.Hint(); hint != "" {
			fields = append(fields, zap.String("hint", hint))
		}
	}
	return fields
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringVarP(&profile, "profile", "p", "", "AWS profile to use")
	flags.StringVar(&region, "region", "", "AWS region to use")
	flags.StringVar(&configDir, "config-dir", ".", "directory holding the .env file")
	flags.BoolVar(&jsonOutput, "json", false, "print the run report as JSON")
}
