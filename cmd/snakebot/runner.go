package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Mshel/snakebot/internal/config"
	"github.com/Mshel/snakebot/internal/ui"
)

func newReplayCmd(v *viper.Viper, cfg *config.Config) *cobra.Command {
	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Step through journaled decisions in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := openBrowseJournal(cmd, v, cfg)
			if err != nil {
				return err
			}
			entries, err := j.Recent(cmd.Context(), cfg.Limit, 0)
			j.Close()
			if err != nil {
				return err
			}

			p := tea.NewProgram(ui.NewReplayModel(entries),
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("replay viewer: %w", err)
			}
			return nil
		},
	}

	replayCmd.Flags().IntVar(&cfg.Limit, "limit", cfg.Limit, "Most recent entries to load")
	return replayCmd
}
