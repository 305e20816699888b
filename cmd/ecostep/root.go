package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ecostep/ecostep/internal/config"
	pkgcrypto "github.com/ecostep/ecostep/internal/crypto"
	"github.com/ecostep/ecostep/internal/locale"
	"github.com/ecostep/ecostep/internal/model"
	"github.com/ecostep/ecostep/internal/repository"
	"github.com/ecostep/ecostep/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// app carries state shared by subcommands for one invocation.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	configFile string
	logLevel   string

	cfg    *config.Config
	log    *zap.Logger
	store  repository.Store
	closer func() error
	svc    *service.AccountServiceImpl
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{in: in, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "ecostep",
		Short: "EcoStep tracks your carbon-footprint quiz results",
		Long: `EcoStep scores a five-question carbon-footprint quiz, keeps a local account
with your result history, and rewards daily streaks and low scores with badges.`,
		Example: `ecostep register --name Ada --email ada@example.com --password s3cret
  ecostep quiz --transport 1 --bottles 0 --food 2 --electricity 1 --recycle 0
  ecostep dashboard`,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.init()
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "Path to config file (default: search for config.yml in current dir and the ecostep config dir)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error) - overrides config file setting")

	root.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newPrefsCmd(a),
		newQuizCmd(a),
		newRecordCmd(a),
		newHistoryCmd(a),
		newDashboardCmd(a),
		newProjectCmd(a),
		newMigrateCmd(a),
		newVersionCmd(a),
	)

	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.Log.Level = strings.ToLower(a.logLevel)
	}
	a.cfg = cfg

	a.log, err = newLogger(cfg.Log.Level)
	if err != nil {
		return err
	}
	return nil
}

// service opens the configured store on first use.
func (a *app) service(ctx context.Context) (*service.AccountServiceImpl, error) {
	if a.svc != nil {
		return a.svc, nil
	}
	hasher, err := pkgcrypto.NewHasher(a.cfg.Auth.Hasher)
	if err != nil {
		return nil, err
	}
	st, closer, err := openStore(ctx, a.cfg, a.log)
	if err != nil {
		return nil, err
	}
	a.store, a.closer = st, closer
	a.svc = service.NewAccountService(st,
		service.WithHasher(hasher),
		service.WithLogger(a.log),
		service.WithDefaultPreferences(model.Preferences{
			DarkMode: a.cfg.Preferences.DarkMode,
			Language: a.cfg.Preferences.Language,
		}),
	)
	return a.svc, nil
}

// translator picks the logged-in user's language, else the configured default.
func (a *app) translator(ctx context.Context) (*locale.Translator, error) {
	lang := a.cfg.Preferences.Language
	if a.svc != nil {
		if p, err := a.svc.CurrentUser(ctx); err == nil && p != nil && p.Preferences.Language != "" {
			lang = p.Preferences.Language
		}
	}
	return locale.New(lang)
}

func (a *app) close() error {
	if a.log != nil {
		_ = a.log.Sync()
	}
	if a.closer == nil {
		return nil
	}
	closer := a.closer
	a.closer = nil
	return closer()
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "" {
		level = "warn"
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	var zc zap.Config
	if lvl == zapcore.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
