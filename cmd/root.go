package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyloop/internal/config"
	"github.com/abhisek/studyloop/internal/llm"
	"github.com/abhisek/studyloop/internal/logger"
	"github.com/abhisek/studyloop/internal/material"
	"github.com/abhisek/studyloop/internal/session"
	"github.com/abhisek/studyloop/internal/store"
	"github.com/abhisek/studyloop/internal/tutor"
)

var (
	appConfig config.Config
	log       = logger.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "studyloop",
	Short: "Turn study material into quizzes and track what you miss",
	Long: "studyloop reads notes or a PDF, generates questions from it, grades your answers\n" +
		"and tells you which topics need more work.",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env")
		cfg, err := config.Load(envFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if u, _ := cmd.Flags().GetString("user"); u != "" {
			cfg.UserID = u
		}
		appConfig = cfg

		l, err := logger.New(cfg.LogMode, cfg.LogLevel)
		if err != nil {
			return err
		}
		log = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd, args)
	},
}

// Execute runs the CLI. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides STUDYLOOP_DB env var)")
	rootCmd.PersistentFlags().StringP("user", "u", "", "Learner id (overrides STUDYLOOP_USER env var)")
	rootCmd.PersistentFlags().String("env", "", "Path to a .env file (default .env)")
	addPlayFlags(rootCmd)

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(weaknessCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then STUDYLOOP_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	p, _ := cmd.Flags().GetString("db")
	if p == "" {
		p = appConfig.DBPath
	}
	if p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// openSessions returns the Redis session store when STUDYLOOP_REDIS_URL is
// set, otherwise a process-local one.
func openSessions(ctx context.Context) (session.Store, func(), error) {
	if appConfig.RedisURL == "" {
		return session.NewMemoryStore(appConfig.SessionTTL), func() {}, nil
	}
	rs, err := session.NewRedisStore(ctx, appConfig.RedisURL, appConfig.SessionTTL, log)
	if err != nil {
		return nil, nil, err
	}
	return rs, func() { _ = rs.Close() }, nil
}

// env is everything a command needs to drive the study loop.
type env struct {
	store *store.Store
	tutor *tutor.Tutor
	close func()
}

// openEnv opens the database, the session store and the LLM provider and
// assembles a Tutor. tuiLog replaces the logger for components that run
// while the terminal UI owns the screen.
func openEnv(cmd *cobra.Command, tuiLog *logger.Logger) (*env, error) {
	ctx := cmd.Context()
	l := log
	if tuiLog != nil {
		l = tuiLog
	}

	s, err := openStore(cmd)
	if err != nil {
		return nil, err
	}

	llmCfg, err := llm.ResolveConfig()
	if err != nil {
		s.Close()
		return nil, err
	}
	provider, err := llm.NewProvider(ctx, llmCfg, s.EventRepo(), l)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("create LLM provider: %w", err)
	}

	sessions, closeSessions, err := openSessions(ctx)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("open session store: %w", err)
	}

	t := tutor.New(tutor.Deps{
		Provider:    provider,
		Performance: s.PerformanceRepo(),
		Sessions:    sessions,
		Chunker:     material.NewChunker(nil, material.DefaultMaxTokens, l),
		Logger:      l,
	})
	return &env{
		store: s,
		tutor: t,
		close: func() {
			closeSessions()
			s.Close()
		},
	}, nil
}
