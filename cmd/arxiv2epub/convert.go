package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"arxiv2epub/internal/pipeline"
)

func (c *commandContext) runConvert(cmd *cobra.Command, input string) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.newLogger()
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(cfg, logger)
	result, err := runner.Run(cmd.Context(), pipeline.Options{
		Input:    input,
		MainFile: c.mainFileFlag,
		KeepTemp: c.keepTempFlag,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Conversion complete: %s\n", result.EPUBPath)
	return nil
}
