package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// Version is the version of the ngram CLI.
const Version = "v0.2.0"

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	headStyle    = lipgloss.NewStyle().Bold(true)
)

// NewRootCmd creates the root command for ngram
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ngram",
		Short:         "N-gram analysis of sponsored products search term reports",
		Long:          "ngram aggregates search term report metrics per monogram, bigram and trigram for a set of ASINs.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newStopWordsCmd())

	return rootCmd
}
