package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/weixin008/dutyroster/cmd/cli/commands"
	"github.com/weixin008/dutyroster/internal/config"
	"github.com/weixin008/dutyroster/pkg/core/engine"
	"github.com/weixin008/dutyroster/pkg/core/rotation"
	"github.com/weixin008/dutyroster/pkg/core/rules"
	"github.com/weixin008/dutyroster/pkg/db"
	"github.com/weixin008/dutyroster/pkg/logging"
	"github.com/weixin008/dutyroster/pkg/postgres"
)

var (
	env        string
	configPath string
	useMemory  bool

	// app is populated by PersistentPreRunE before any RunE fires
	app = &commands.AppContext{}
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dutyroster",
		Short: "Duty roster engine - generate and audit rotation-based duty schedules",
		Long:  `A CLI for generating duty rosters: rotation-fair assignment, conflict detection, and business-rule compliance reporting.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.Logger != nil {
				app.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "prod", "Environment name used for log files")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to dutyroster.yaml (default: search cwd and home)")
	rootCmd.PersistentFlags().BoolVar(&useMemory, "memory", false, "Use an in-memory store instead of postgres (dry runs)")

	rootCmd.AddCommand(commandsFor()...)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func commandsFor() []*cobra.Command {
	return []*cobra.Command{
		commands.GenerateCmd(app),
		commands.PreviewCmd(app),
		commands.ConflictsCmd(app),
		commands.CandidatesCmd(app),
		commands.RotationStatsCmd(app),
	}
}

func initApp() error {
	app.Ctx = context.Background()

	logger, err := logging.InitLogger(env)
	if err != nil {
		return err
	}
	app.Logger = logger

	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	app.Cfg = cfg
	logger.Debug("Configuration loaded", zap.String("orgType", cfg.OrgType))

	var store db.Store
	if useMemory {
		store = db.NewMemoryStore()
		logger.Info("Using in-memory store")
	} else {
		logger.Info("Connecting to database")
		pg, err := postgres.NewDB(app.Ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		if err := pg.RunMigrations(app.Ctx); err != nil {
			return err
		}
		store = pg
		logger.Debug("Database ready")
	}
	app.Store = store

	var opts []engine.Option
	if len(cfg.HolidayRules) > 0 {
		// expand the holiday rules over a generous window around today
		now := time.Now()
		skip, err := cfg.HolidaySkipper(now.AddDate(-1, 0, 0), now.AddDate(3, 0, 0))
		if err != nil {
			return err
		}
		opts = append(opts, engine.WithSkipDate(skip))
	}

	app.Engine = engine.New(store, rotation.NewStore(), buildRuleEngine(cfg), logger, opts...)
	return nil
}

// buildRuleEngine assembles the business-rule registry from configuration
func buildRuleEngine(cfg *config.Config) *rules.Engine {
	e := rules.NewEngine()

	br := cfg.BusinessRules
	if br.SupervisorMaxLevel > 0 {
		e.Register(rules.NewMinSupervisorPresence(br.SupervisorMaxLevel))
	}
	if br.MinStaffCount > 0 && len(br.MinStaffRoles) > 0 {
		e.Register(rules.NewMinStaffCount(br.MinStaffRoles, br.MinStaffCount))
	}
	if br.MaxConsecutiveDays > 0 {
		e.Register(rules.NewMaxConsecutiveShiftCount(br.MaxConsecutiveDays))
	}
	if br.MinRestHours > 0 {
		e.Register(rules.NewMinRestHours(br.MinRestHours))
	}
	if br.EnforceGroupIntegrity {
		e.Register(rules.NewGroupIntegrity())
	}

	return e
}
