package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Mshel/snakebot/internal/config"
	"github.com/Mshel/snakebot/internal/game"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(v *viper.Viper, cfg *config.Config) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Answer snapshots over SSH, one decision per session",
		Long: `serve starts an SSH server. Each session is one decision: the snapshot is
read from the session's stdin until EOF and the output record is written back.

  ssh -p 6996 bot.example.com < snapshot.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, v, cfg); err != nil {
				return err
			}
			if err := cfg.ValidateServe(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runServer(cmd.Context(), cfg)
		},
	}

	flags := serveCmd.Flags()
	flags.StringVar(&cfg.Host, "host", cfg.Host, "Address to listen on")
	flags.StringVar(&cfg.Port, "port", cfg.Port, "Port to listen on")
	flags.StringVar(&cfg.HostKeyPath, "host-key", cfg.HostKeyPath, "SSH host key path (generated when missing)")
	flags.IntVar(&cfg.MaxConnectionsPerIP, "max-conns-per-ip", cfg.MaxConnectionsPerIP, "Concurrent sessions allowed per client IP")
	return serveCmd
}

func runServer(ctx context.Context, cfg *config.Config) error {
	strategy, err := cfg.NewStrategy()
	if err != nil {
		return err
	}
	rec := openRecorder(cfg.JournalPath)
	defer rec.Close()

	limiter := newConnectionLimiter(cfg.MaxConnectionsPerIP)
	address := net.JoinHostPort(cfg.Host, cfg.Port)

	sshServer, err := newSSHServer(address, cfg.HostKeyPath, strategy, rec, limiter)
	if err != nil {
		return err
	}

	serverErr := make(chan error, 1)
	log.Info("Starting SSH server", "address", address, "strategy", cfg.Strategy)
	go func() {
		if err := sshServer.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("could not start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Stopping SSH server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := sshServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		return fmt.Errorf("could not stop server: %w", err)
	}
	return nil
}

// newSSHServer wires the decision handler behind logging and the per-IP limit.
func newSSHServer(address, hostKeyPath string, strategy game.Strategy, rec *recorder, limiter *connectionLimiter) (*ssh.Server, error) {
	sshServer, err := wish.NewServer(
		wish.WithAddress(address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithMiddleware(
			decisionMiddleware(strategy, rec),
			logging.Middleware(),
			limiter.middleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ssh server: %w", err)
	}
	return sshServer, nil
}

// decisionMiddleware treats the session as stdin/stdout of one invocation.
func decisionMiddleware(strategy game.Strategy, rec *recorder) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			decision := game.Respond(s.Context(), s, s, strategy)
			rec.record(s.Context(), decision)
			log.Debug("Session answered", "user", s.User(), "action", decision.Action, "fallback", decision.Fallback)

			next(s)
			if err := s.Exit(0); err != nil {
				log.Debug("Could not send exit status", "error", err)
			}
		}
	}
}

type connectionLimiter struct {
	mu     sync.Mutex
	counts map[string]int
	limit  int
}

func newConnectionLimiter(limit int) *connectionLimiter {
	return &connectionLimiter{counts: make(map[string]int), limit: limit}
}

// acquire counts a new session for ip unless it is already at the limit.
func (l *connectionLimiter) acquire(ip string) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.counts[ip] >= l.limit {
		return l.counts[ip], false
	}
	l.counts[ip]++
	return l.counts[ip], true
}

func (l *connectionLimiter) release(ip string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts[ip]--
	if l.counts[ip] <= 0 {
		delete(l.counts, ip)
		return 0
	}
	return l.counts[ip]
}

func (l *connectionLimiter) middleware(next ssh.Handler) ssh.Handler {
	return func(s ssh.Session) {
		ip := getIP(s.RemoteAddr())

		count, ok := l.acquire(ip)
		if !ok {
			log.Warn("Connection denied: IP limit exceeded", "ip", ip, "attempted_count", count+1, "current_limit", l.limit)
			fmt.Fprintf(s.Stderr(), "Too many active connections from your IP (%d/%d). Please try again later.\r\n", count+1, l.limit)
			s.Exit(1)
			return
		}

		log.Debug("Connection accepted", "ip", ip, "current_count", count, "limit", l.limit)
		defer func() {
			log.Debug("Connection closed", "ip", ip, "count_after", l.release(ip))
		}()
		next(s)
	}
}

func getIP(addr net.Addr) string {
	if tcpAddr, ok := addr.(*net.TCPAddr); ok {
		return tcpAddr.IP.String()
	}
	return addr.String()
}
