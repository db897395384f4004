package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samjwu/rocFFT"
	"github.com/samjwu/rocFFT/gpu"
)

var compileFlags struct {
	stage stageFlags
	arch  string
	mock  bool
}

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile a stage's kernel into the durable cache",
	Long: `compile generates and compiles the kernel for the described stage in
compile-only mode, filling the durable cache (cache.dir config key)
without loading anything onto a device. With --mock the built-in mock
backend stands in for a real compiler, which is useful for exercising
the pipeline on machines without a GPU.`,
	RunE: runCompile,
}

func init() {
	addStageFlags(compileCmd, &compileFlags.stage)
	compileCmd.Flags().StringVar(&compileFlags.arch, "arch", "", "target architecture (default from device)")
	compileCmd.Flags().BoolVar(&compileFlags.mock, "mock", false, "use the mock backend instead of the registered one")
	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	cfg.Compile.Only = true

	stage, err := compileFlags.stage.buildStage()
	if err != nil {
		return err
	}

	opts := []rocfft.Option{rocfft.WithConfig(cfg), rocfft.WithLogger(log)}
	if compileFlags.mock {
		opts = append(opts, rocfft.WithBackend(gpu.NewMockBackend()))
	}
	svc, err := rocfft.NewRTC(opts...)
	if err != nil {
		return err
	}
	defer svc.Close()

	kern, err := svc.RuntimeCompile(stage, compileFlags.arch, compileFlags.stage.callbacks).Kernel()
	if err != nil {
		return err
	}
	if kern == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "scheme %s is served by a precompiled kernel, nothing to compile\n", stage.Scheme)
		return nil
	}
	defer kern.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "compiled %s\n", kern.Name())
	return nil
}
