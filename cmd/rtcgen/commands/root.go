// Package commands implements the rtcgen CLI: offline generation and
// compilation of runtime FFT kernels.
package commands

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/samjwu/rocFFT/internal/config"
	"github.com/samjwu/rocFFT/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "rtcgen",
	Short: "Generate and compile runtime FFT kernels offline",
	Long: `rtcgen renders the device kernel source that the runtime compilation
service would generate for a described transform stage, and can compile
it into the durable kernel cache ahead of time.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.rocfft/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// setup loads the configuration and builds the CLI logger.
func setup() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	log, err := logging.New(logging.Options{
		Level:   level,
		File:    cfg.Logging.File,
		Console: true,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
