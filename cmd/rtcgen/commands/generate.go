package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/samjwu/rocFFT/internal/rtc"
)

var generateFlags struct {
	stage stageFlags
	out   string
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render the kernel source for a transform stage",
	Long: `generate resolves the described stage against the kernel family chain
and writes the generated device source to --out (stdout by default).`,
	RunE: runGenerate,
}

func init() {
	addStageFlags(generateCmd, &generateFlags.stage)
	generateCmd.Flags().StringVarP(&generateFlags.out, "out", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	_, log, err := setup()
	if err != nil {
		return err
	}

	stage, err := generateFlags.stage.buildStage()
	if err != nil {
		return err
	}

	gen, err := rtc.GenerateFromStage(stage, generateFlags.stage.callbacks)
	if err != nil {
		return err
	}
	if !gen.Valid() {
		fmt.Fprintf(cmd.OutOrStdout(), "scheme %s is served by a precompiled kernel, nothing to generate\n", stage.Scheme)
		return nil
	}

	src, err := gen.Source(gen.Name)
	if err != nil {
		return err
	}
	log.WithField("kernel", gen.Name).
		WithField("grid", gen.GridDim).
		WithField("block", gen.BlockDim).
		Info("generated")

	if generateFlags.out == "" {
		_, err = fmt.Fprint(cmd.OutOrStdout(), src)
		return err
	}
	return os.WriteFile(generateFlags.out, []byte(src), 0o644)
}
