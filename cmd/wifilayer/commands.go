package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"wifilayer/internal/api"
	"wifilayer/internal/config"
	"wifilayer/internal/detect"
	"wifilayer/internal/eventlog"
	"wifilayer/internal/firewall"
	"wifilayer/internal/model"
	"wifilayer/internal/risk"
	"wifilayer/internal/session"
	"wifilayer/internal/wireguard"
)

func commandStatus() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Detect the current network and assess its risk",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "ssid", Usage: "Assess a manually described network instead of detecting"},
			&cli.StringFlag{Name: "bssid", Usage: "BSSID of the manual network"},
			&cli.StringFlag{Name: "auth", Usage: "Authentication scheme of the manual network (open, wep, wpa2-psk, wpa3-sae, ...)"},
			&cli.IntFlag{Name: "signal", Usage: "Signal strength of the manual network (0-100)", Value: -1},
			&cli.StringSliceFlag{Name: "stun", Usage: "STUN server to probe the public address with (repeatable)"},
			&cli.BoolFlag{Name: "cached", Usage: "Show the server's last result without detecting again (needs --server)"},
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := signalContext(c.Context)
			defer cancel()

			if server := c.String("server"); server != "" {
				client := api.NewClient(server)
				var (
					st  session.Status
					err error
				)
				if c.Bool("cached") {
					st, err = client.Status(ctx)
				} else {
					st, err = client.Refresh(ctx)
				}
				if err != nil {
					return err
				}
				printStatus(c.App.Writer, st)
				return nil
			}
			if c.Bool("cached") {
				return exitErr("--cached requires --server")
			}

			cfg := appConfig(c)
			if stun := c.StringSlice("stun"); len(stun) > 0 {
				cfg.Detect.STUNServers = stun
				c.App.Metadata["config"] = cfg
			}
			describer := newDescriber(cfg.Detect)
			if c.IsSet("ssid") {
				describer = detect.Static{Observation: manualObservation(c)}
			}
			var st session.Status
			err := runLocal(c, describer, func(sess *session.Session) error {
				st = sess.Refresh(ctx)
				return nil
			})
			if err != nil {
				return err
			}
			printStatus(c.App.Writer, st)
			return nil
		},
	}
}

func manualObservation(c *cli.Context) *model.NetworkObservation {
	obs := &model.NetworkObservation{
		SSID:       c.String("ssid"),
		BSSID:      c.String("bssid"),
		AuthScheme: c.String("auth"),
		Connected:  c.String("ssid") != "",
	}
	if v := c.Int("signal"); v >= 0 && v <= 100 {
		obs.Signal = &v
	}
	return obs
}

func commandClassify() *cli.Command {
	return &cli.Command{
		Name:      "classify",
		Usage:     "Classify an authentication scheme without detecting a network",
		ArgsUsage: "AUTH",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "ssid", Value: "manual", Usage: "Network name to report"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return exitErr("classify expects exactly one AUTH argument")
			}
			obs := &model.NetworkObservation{SSID: c.String("ssid"), AuthScheme: c.Args().First(), Connected: true}
			printAssessment(c.App.Writer, risk.Classify(obs))
			return nil
		},
	}
}

func commandWireGuard() *cli.Command {
	return &cli.Command{
		Name:    "wireguard",
		Aliases: []string{"wg"},
		Usage:   "Generate a WireGuard client configuration",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "request", Usage: "Read the tunnel request from a YAML `FILE`"},
			&cli.StringFlag{Name: "name", Usage: "Client name"},
			&cli.StringFlag{Name: "public-key", Usage: "Server (peer) public key"},
			&cli.StringFlag{Name: "endpoint", Usage: "Server endpoint as host:port"},
			&cli.StringFlag{Name: "allowed-ips", Usage: "Comma-separated routes sent through the tunnel"},
			&cli.StringFlag{Name: "private-key", Usage: "Client private key; a placeholder is used when empty"},
			&cli.StringFlag{Name: "address", Usage: "Client tunnel address"},
			&cli.StringFlag{Name: "dns", Usage: "DNS server inside the tunnel"},
			&cli.StringFlag{Name: "out", Usage: "Write the config to `PATH` (a directory gets wg_<name>.conf)"},
		},
		Action: func(c *cli.Context) error {
			cfg := appConfig(c)
			req, err := tunnelRequest(c, cfg)
			if err != nil {
				return err
			}

			if server := c.String("server"); server != "" {
				resp, err := api.NewClient(server).GenerateTunnel(c.Context, req)
				if err != nil {
					return err
				}
				if resp.PlaceholderKey {
					printNotice(c.App.Writer, model.LogNotice{Severity: model.SeverityWarning, Message: session.PlaceholderKeyWarning})
				}
				return emitTunnel(c, cfg, model.TunnelDocument{Request: resp.Request, Content: resp.Content})
			}

			var doc model.TunnelDocument
			err = runLocal(c, detect.Static{}, func(sess *session.Session) error {
				var genErr error
				doc, genErr = sess.GenerateTunnel(req)
				return genErr
			})
			if errors.Is(err, wireguard.ErrMissingField) {
				return exitErr("%v", err)
			}
			if err != nil {
				return err
			}
			return emitTunnel(c, cfg, doc)
		},
	}
}

func tunnelRequest(c *cli.Context, cfg config.Config) (model.TunnelRequest, error) {
	req := cfg.Tunnel.TunnelRequest()
	if path := c.String("request"); path != "" {
		var err error
		req, err = config.LoadTunnelRequest(path, req)
		if err != nil {
			return model.TunnelRequest{}, err
		}
	}
	overrides := []struct {
		flag string
		dst  *string
	}{
		{"name", &req.ClientName},
		{"public-key", &req.PeerPublicKey},
		{"endpoint", &req.PeerEndpoint},
		{"allowed-ips", &req.AllowedRoutes},
		{"private-key", &req.PrivateKey},
		{"address", &req.ClientAddress},
		{"dns", &req.DNSServer},
	}
	for _, o := range overrides {
		if c.IsSet(o.flag) {
			*o.dst = c.String(o.flag)
		}
	}
	return req, nil
}

func emitTunnel(c *cli.Context, cfg config.Config, doc model.TunnelDocument) error {
	out := c.String("out")
	if out == "" && cfg.Tunnel.OutputDir != "" {
		out = cfg.Tunnel.OutputDir
	}
	if out == "" {
		fmt.Fprintln(c.App.Writer)
		fmt.Fprintln(c.App.Writer, doc.Content)
		return nil
	}

	path := out
	if info, err := os.Stat(out); (err == nil && info.IsDir()) || strings.HasSuffix(out, string(os.PathSeparator)) {
		path = filepath.Join(out, wireguard.FileName(doc.Request.ClientName))
	}
	if err := wireguard.WriteConfig(path, doc.Content+"\n"); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(c.App.Writer, "Configuration saved as %s\n", path)
	return nil
}

func commandSecure() *cli.Command {
	return &cli.Command{
		Name:  "secure",
		Usage: "Show security hardening recommendations",
		Action: func(c *cli.Context) error {
			if server := c.String("server"); server != "" {
				resp, err := api.NewClient(server).SecureNetwork(c.Context)
				if err != nil {
					return err
				}
				printNotices(c.App.Writer, resp.Notices)
				return nil
			}
			return runLocal(c, detect.Static{}, func(sess *session.Session) error {
				sess.SecureNetwork()
				return nil
			})
		},
	}
}

func commandFirewall() *cli.Command {
	return &cli.Command{
		Name:  "firewall",
		Usage: "Show the safe firewall profile for a platform (nothing is applied)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "platform", Usage: "windows, linux or macos; defaults to this host"},
		},
		Action: func(c *cli.Context) error {
			if server := c.String("server"); server != "" {
				resp, err := api.NewClient(server).Firewall(c.Context, c.String("platform"))
				if err != nil {
					return err
				}
				for _, step := range resp.Steps {
					printNotices(c.App.Writer, []model.LogNotice{{Severity: step.Severity, Message: step.Message}})
					if len(step.Command) > 0 {
						fmt.Fprintf(c.App.Writer, "    $ %s\n", strings.Join(step.Command, " "))
					}
				}
				return nil
			}

			platform := firewall.Current()
			if c.IsSet("platform") {
				platform = firewall.ParsePlatform(c.String("platform"))
			}
			return runLocal(c, detect.Static{}, func(sess *session.Session) error {
				sess.ApplyFirewall(platform)
				return nil
			})
		},
	}
}

func commandLogs() *cli.Command {
	return &cli.Command{
		Name:  "logs",
		Usage: "Print the event log of a running server",
		Flags: []cli.Flag{
			&cli.Uint64Flag{Name: "since", Usage: "Only notices with an ID greater than `ID`"},
		},
		Action: func(c *cli.Context) error {
			server := c.String("server")
			if server == "" {
				return exitErr("logs requires --server")
			}
			resp, err := api.NewClient(server).Logs(c.Context, c.Uint64("since"))
			if err != nil {
				return err
			}
			printNotices(c.App.Writer, resp.Notices)
			printSummary(c.App.Writer, eventlog.Summarize(resp.Notices))
			return nil
		},
	}
}

func commandServe() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the HTTP API and Prometheus metrics",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "listen", Usage: "Listen `ADDR`; overrides api.listen"},
			&cli.BoolFlag{Name: "no-refresh", Usage: "Skip the initial network refresh"},
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := signalContext(c.Context)
			defer cancel()

			cfg := appConfig(c)
			if c.IsSet("listen") {
				cfg.API.Listen = c.String("listen")
			}
			sess, m, err := localSession(cfg, newDescriber(cfg.Detect))
			if err != nil {
				return err
			}
			stop := echoNotices(c.App.Writer, sess.Log())
			defer stop()

			if !c.Bool("no-refresh") {
				go sess.Refresh(ctx)
			}

			color.Green("Starting API on http://%s", cfg.API.Listen)
			color.Yellow("Press Ctrl+C to stop")
			srv := api.NewServer(cfg.API, sess, m, cfg.Tunnel.TunnelRequest(), log)
			return srv.ListenAndServe(ctx)
		},
	}
}
