package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Mshel/snakebot/internal/config"
	"github.com/Mshel/snakebot/internal/game"
	"github.com/Mshel/snakebot/internal/ui"
)

func newRenderCmd(v *viper.Viper, cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Draw a snapshot from stdin and the move the bot would make",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, v, cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			strategy, err := cfg.NewStrategy()
			if err != nil {
				return err
			}

			input, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), game.MaxSnapshotBytes))
			if err != nil {
				return fmt.Errorf("failed to read snapshot: %w", err)
			}
			snapshot, err := game.DecodeSnapshot(input)
			if err != nil {
				return err
			}
			action, err := strategy.SelectAction(cmd.Context(), snapshot)
			if err != nil {
				return fmt.Errorf("strategy failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderBoard(snapshot, action))
			return nil
		},
	}
}
