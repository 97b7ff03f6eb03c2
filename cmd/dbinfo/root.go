package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/koustreak/dbinfo/internal/config"
	"github.com/koustreak/dbinfo/internal/database"
	"github.com/koustreak/dbinfo/internal/logger"
	"github.com/koustreak/dbinfo/internal/schema"
)

// globalOptions are the persistent flags shared by every subcommand.
// Non-empty flags win over the config file and the environment.
type globalOptions struct {
	configPath string
	driver     string
	dsn        string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:          "dbinfo",
		Short:        "Inspect tables and columns through information_schema",
		Version:      version,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	flags.StringVarP(&opts.driver, "driver", "d", "", "database driver: mysql, postgres, sqlite, sqlserver (env "+config.EnvDriver+")")
	flags.StringVar(&opts.dsn, "dsn", "", "data source name (env "+config.EnvDSN+")")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error, disabled")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: json, console")

	cmd.AddCommand(
		newSchemaCmd(opts),
		newTablesCmd(opts),
		newColumnsCmd(opts),
		newSequenceCmd(opts),
		newDumpCmd(opts),
		newServeCmd(opts),
	)
	return cmd
}

// loadConfig merges file, environment and flags.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.driver != "" {
		cfg.Database.Driver = database.ParseDriver(o.driver)
	}
	if o.dsn != "" {
		cfg.Database.DSN = o.dsn
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	return cfg, nil
}

// session is an open connection with its inspector, for one command run.
type session struct {
	cfg       *config.Config
	log       *logger.Logger
	conn      conn
	inspector *schema.Inspector
}

// open loads the configuration, connects and selects the vendor adapter.
// The returned context carries the logger.
func (o *globalOptions) open(ctx context.Context) (context.Context, *session, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return ctx, nil, err
	}

	log := logger.New(&cfg.Log)
	ctx = log.WithContext(ctx)

	c, err := connect(ctx, &cfg.Database)
	if err != nil {
		log.ErrorWith("connect failed", err, map[string]any{"driver": string(cfg.Database.Driver)})
		return ctx, nil, err
	}

	inspector, err := schema.New(c)
	if err != nil {
		_ = c.Close()
		return ctx, nil, err
	}

	log.DebugWith("connected", map[string]any{"driver": c.DriverName(), "vendor": inspector.Vendor()})
	return ctx, &session{cfg: cfg, log: log, conn: c, inspector: inspector}, nil
}

func (s *session) Close() error {
	if err := s.conn.Close(); err != nil {
		s.log.Error("close connection: " + err.Error())
		return err
	}
	s.log.Debug("connection closed")
	return nil
}
