package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AngelCh415/ngram-report/internal/config"
	"github.com/AngelCh415/ngram-report/internal/textnorm"
)

func newStopWordsCmd() *cobra.Command {
	var extra []string
	cmd := &cobra.Command{
		Use:   "stopwords",
		Short: "Print the effective stop-word list",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			sw := textnorm.DefaultStopWords().With(cfg.ExtraStopWords...).With(extra...)
			for _, w := range sw.Words() {
				fmt.Fprintln(cmd.OutOrStdout(), w)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&extra, "stop-word", nil, "additional stop word (repeatable)")
	return cmd
}
