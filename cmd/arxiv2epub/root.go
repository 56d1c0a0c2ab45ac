package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:   "arxiv2epub [arxiv-id-or-url]",
		Short: "Convert an arXiv paper's LaTeX source to an EPUB e-book",
		Long: `arxiv2epub downloads the LaTeX source of an arXiv paper, locates the
root TeX document, and converts it to EPUB with pandoc.

The argument is an arXiv identifier (2103.13630, 2405.06128v1,
math.GT/0309136) or an arxiv.org abs/pdf URL.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return ctx.runConvert(cmd, args[0])
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.Flags().StringVarP(&ctx.outputDirFlag, "output-dir", "o", "", "Directory to write the EPUB to")
	rootCmd.Flags().StringVarP(&ctx.tempDirFlag, "temp-dir", "t", "", "Scratch directory for downloads and extraction")
	rootCmd.Flags().StringVar(&ctx.mainFileFlag, "main", "", "Name of the root TeX file, bypassing detection")
	rootCmd.Flags().BoolVar(&ctx.keepTempFlag, "keep-temp", false, "Retain the temporary working directory for debugging")
	rootCmd.Flags().BoolVarP(&ctx.verboseFlag, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newDepsCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
