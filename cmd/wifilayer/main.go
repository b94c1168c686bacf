package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"wifilayer/internal/config"
	"wifilayer/internal/detect"
	"wifilayer/internal/eventlog"
	"wifilayer/internal/metrics"
	"wifilayer/internal/session"
	"wifilayer/internal/stunutil"
)

const appVersion = "0.3.0"

var log = logrus.New()

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:     "wifilayer",
		Usage:    "Wi-Fi risk assessment and WireGuard config generation",
		Version:  appVersion,
		Metadata: map[string]interface{}{},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
				EnvVars: []string{"WIFILAYER_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error); overrides the config file",
				EnvVars: []string{"WIFILAYER_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "server",
				Usage:   "Talk to a running `URL` instead of a local session",
				EnvVars: []string{"WIFILAYER_SERVER"},
			},
			&cli.StringFlag{
				Name:  "log-csv",
				Usage: "Export the session log to `FILE` on exit",
			},
		},
		Before: func(c *cli.Context) error {
			log.SetFormatter(&logrus.TextFormatter{
				FullTimestamp:   true,
				TimestampFormat: "2006-01-02 15:04:05",
			})
			log.SetOutput(os.Stderr)

			cfg, err := loadConfig(c.String("config"))
			if err != nil {
				return err
			}
			level := cfg.LogLevel
			if c.IsSet("log-level") {
				level = c.String("log-level")
			}
			parsed, err := logrus.ParseLevel(level)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", level, err)
			}
			log.SetLevel(parsed)
			c.App.Metadata["config"] = cfg
			return nil
		},
		Commands: []*cli.Command{
			commandStatus(),
			commandClassify(),
			commandWireGuard(),
			commandSecure(),
			commandFirewall(),
			commandLogs(),
			commandServe(),
		},
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func appConfig(c *cli.Context) config.Config {
	if cfg, ok := c.App.Metadata["config"].(config.Config); ok {
		return cfg
	}
	return config.Default()
}

// newDescriber builds the describer selected by the config.
func newDescriber(cfg config.DetectConfig) detect.Describer {
	if cfg.Mode == config.DetectModeStatic {
		return detect.Static{Observation: cfg.Static}
	}
	var src rand.Source
	if cfg.Seed != 0 {
		src = rand.NewSource(cfg.Seed)
	}
	return detect.NewMock(src, cfg.DetectDelay())
}

func newProber(cfg config.DetectConfig) stunutil.Prober {
	if len(cfg.STUNServers) == 0 {
		return nil
	}
	return stunutil.NewClient(cfg.STUNServers, cfg.STUNTimeoutDuration())
}

// localSession wires a session for a single command invocation.
func localSession(cfg config.Config, describer detect.Describer) (*session.Session, *metrics.Metrics, error) {
	m := metrics.New()
	sess, err := session.New(session.Options{
		Describer: describer,
		Prober:    newProber(cfg.Detect),
		Log:       eventlog.New(),
		Metrics:   m,
		Logger:    log,
	})
	if err != nil {
		return nil, nil, err
	}
	return sess, m, nil
}

// runLocal runs fn against a fresh session, echoing notices as they are appended
// and exporting the log afterwards when --log-csv is set.
func runLocal(c *cli.Context, describer detect.Describer, fn func(*session.Session) error) error {
	sess, _, err := localSession(appConfig(c), describer)
	if err != nil {
		return err
	}
	printNotices(c.App.Writer, sess.Log().Entries())
	stop := echoNotices(c.App.Writer, sess.Log())
	fnErr := fn(sess)
	stop()

	if path := c.String("log-csv"); path != "" {
		if err := exportLog(path, sess.Log()); err != nil {
			return err
		}
		log.Debugf("session log written to %s", path)
		printSummary(c.App.Writer, eventlog.Summarize(sess.Log().Entries()))
	}
	return fnErr
}

func exportLog(path string, l *eventlog.Log) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err := eventlog.WriteCSV(f, l.Entries()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func exitErr(format string, args ...any) error {
	return cli.Exit(fmt.Sprintf(format, args...), 1)
}
