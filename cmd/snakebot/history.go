package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Mshel/snakebot/internal/config"
	"github.com/Mshel/snakebot/internal/journal"
	"github.com/Mshel/snakebot/internal/ui"
)

func newHistoryCmd(v *viper.Viper, cfg *config.Config) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recent decisions from the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := openBrowseJournal(cmd, v, cfg)
			if err != nil {
				return err
			}
			defer j.Close()

			entries, err := j.Recent(cmd.Context(), cfg.Limit, cfg.Offset)
			if err != nil {
				return err
			}
			total, err := j.Count(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderHistory(entries, total, cfg.Offset))
			return nil
		},
	}

	historyCmd.Flags().IntVar(&cfg.Limit, "limit", cfg.Limit, "Entries per page")
	historyCmd.Flags().IntVar(&cfg.Offset, "offset", cfg.Offset, "Entries to skip, newest first")
	return historyCmd
}

func openBrowseJournal(cmd *cobra.Command, v *viper.Viper, cfg *config.Config) (*journal.Journal, error) {
	if err := loadConfig(cmd, v, cfg); err != nil {
		return nil, err
	}
	if err := cfg.ValidateBrowse(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return journal.Open(cfg.JournalPath)
}
