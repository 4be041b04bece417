package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Mshel/snakebot/internal/config"
	"github.com/Mshel/snakebot/internal/game"
	"github.com/Mshel/snakebot/internal/journal"
)

func newRootCmd() *cobra.Command {
	cfg := config.Default()
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "snakebot",
		Short: "Snake bot for the two-player tournament engine",
		Long: `snakebot reads one game snapshot as JSON from stdin and writes the chosen
move as {"action": "..."} to stdout.

Without a script it plays greedily: never reverse, stay on the grid, avoid
both bodies, then step toward the food. Any failure prints {"action":"up"}.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runDecide(cmd, v, cfg)
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flags.StringVar(&cfg.Strategy, "strategy", cfg.Strategy, "Decision strategy (greedy, lua)")
	flags.StringVar(&cfg.ScriptPath, "script", cfg.ScriptPath, "Lua script defining nextMove(state)")
	flags.DurationVar(&cfg.ScriptTimeout, "script-timeout", cfg.ScriptTimeout, "Time budget for one scripted decision")
	flags.StringVar(&cfg.JournalPath, "journal", cfg.JournalPath, "sqlite file recording every decision (empty disables)")

	rootCmd.AddCommand(
		newServeCmd(v, cfg),
		newRenderCmd(v, cfg),
		newHistoryCmd(v, cfg),
		newReplayCmd(v, cfg),
	)
	return rootCmd
}

// loadConfig layers SNAKEBOT_* environment variables over the command's flags.
func loadConfig(cmd *cobra.Command, v *viper.Viper, cfg *config.Config) error {
	log.SetOutput(cmd.ErrOrStderr())

	v.SetEnvPrefix("SNAKEBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to read configuration: %w", err)
	}

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	return nil
}

// runDecide answers one snapshot. It always writes a valid output record.
func runDecide(cmd *cobra.Command, v *viper.Viper, cfg *config.Config) {
	out := cmd.OutOrStdout()

	if err := loadConfig(cmd, v, cfg); err != nil {
		game.RespondWithError(out, err)
		return
	}
	if err := cfg.Validate(); err != nil {
		game.RespondWithError(out, fmt.Errorf("invalid configuration: %w", err))
		return
	}
	strategy, err := cfg.NewStrategy()
	if err != nil {
		game.RespondWithError(out, err)
		return
	}

	rec := openRecorder(cfg.JournalPath)
	defer rec.Close()

	decision := game.Respond(cmd.Context(), cmd.InOrStdin(), out, strategy)
	rec.record(cmd.Context(), decision)
}

// recorder writes decisions to the journal when one is configured. Journal
// problems are logged and never reach the output.
type recorder struct {
	journal *journal.Journal
}

func openRecorder(path string) *recorder {
	if path == "" {
		return &recorder{}
	}
	j, err := journal.Open(path)
	if err != nil {
		log.Warn("Journal disabled", "path", path, "error", err)
		return &recorder{}
	}
	return &recorder{journal: j}
}

func (r *recorder) record(ctx context.Context, decision game.Decision) {
	if r.journal == nil {
		return
	}
	entry := &journal.Entry{
		Turn:     decision.Turn,
		Action:   string(decision.Action),
		Fallback: decision.Fallback,
		Snapshot: decision.Input,
	}
	if decision.Err != nil {
		entry.Reason = decision.Err.Error()
	}
	if err := r.journal.Record(ctx, entry); err != nil {
		log.Warn("Failed to journal decision", "turn", decision.Turn, "error", err)
	}
}

func (r *recorder) Close() {
	if r.journal == nil {
		return
	}
	if err := r.journal.Close(); err != nil {
		log.Warn("Failed to close journal", "error", err)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
