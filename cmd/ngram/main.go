package main

import (
	"github.com/spf13/cobra"

	"github.com/AngelCh415/ngram-report/internal/cli"
)

func main() {
	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		cobra.CheckErr(err)
	}
}
