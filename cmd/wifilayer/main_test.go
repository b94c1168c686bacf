package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"

	"wifilayer/internal/api"
	"wifilayer/internal/config"
	"wifilayer/internal/detect"
	"wifilayer/internal/metrics"
	"wifilayer/internal/model"
	"wifilayer/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf
	app.ErrWriter = &buf
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"wifilayer"}, args...))
	return buf.String(), err
}

func newAPIServer(t *testing.T, obs *model.NetworkObservation) *httptest.Server {
	t.Helper()
	m := metrics.New()
	sess, err := session.New(session.Options{Describer: detect.Static{Observation: obs}, Metrics: m})
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	srv := api.NewServer(config.APIConfig{Listen: "127.0.0.1:0"}, sess, m, model.DefaultTunnelRequest(), nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestClassifyCommand(t *testing.T) {
	out, err := runApp(t, "classify", "WEP")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "Risk: HIGH") {
		t.Fatalf("out=%s", out)
	}
}

func TestStatusCommand_Manual(t *testing.T) {
	out, err := runApp(t, "status", "--ssid", "SecureOffice", "--auth", "wpa3-sae", "--signal", "91")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"Detected SSID: SecureOffice", "Signal:     91%", "Risk: LOW"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestWireGuardCommand_WritesFile(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "log.csv")
	out, err := runApp(t, "--log-csv", csvPath, "wireguard",
		"--name", "alice", "--public-key", "PUBKEY", "--endpoint", "vpn.example.com:51820",
		"--out", dir+string(os.PathSeparator))
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	data, err := os.ReadFile(filepath.Join(dir, "wg_alice.conf"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "Endpoint = vpn.example.com:51820") {
		t.Fatalf("config=%s", data)
	}
	if !strings.Contains(out, "placeholder private key") {
		t.Fatalf("missing placeholder warning:\n%s", out)
	}
	logData, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.HasPrefix(string(logData), "id,timestamp,type,message\n") {
		t.Fatalf("log csv=%s", logData)
	}
}

func TestWireGuardCommand_MissingKey(t *testing.T) {
	_, err := runApp(t, "wireguard", "--endpoint", "vpn.example.com:51820")
	if err == nil || !strings.Contains(err.Error(), "peer_public_key") {
		t.Fatalf("err=%v", err)
	}
}

func TestLogsCommand_RequiresServer(t *testing.T) {
	if _, err := runApp(t, "logs"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestWireGuardCommand_RemoteWarnsAboutPlaceholder(t *testing.T) {
	ts := newAPIServer(t, nil)
	out, err := runApp(t, "--server", ts.URL, "wireguard",
		"--name", "alice", "--public-key", "PUBKEY", "--endpoint", "vpn.example.com:51820")
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	if !strings.Contains(out, "placeholder private key") {
		t.Fatalf("missing placeholder warning:\n%s", out)
	}
	if !strings.Contains(out, "PrivateKey = <GENERATED_PRIVATE_KEY>") {
		t.Fatalf("missing document:\n%s", out)
	}

	out, err = runApp(t, "--server", ts.URL, "wireguard",
		"--public-key", "PUBKEY", "--endpoint", "vpn.example.com:51820", "--private-key", "realkey")
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	if strings.Contains(out, "placeholder private key") {
		t.Fatalf("unexpected placeholder warning:\n%s", out)
	}
}

func TestStatusCommand_Cached(t *testing.T) {
	ts := newAPIServer(t, &model.NetworkObservation{SSID: "OldRouter", AuthScheme: "wep", Connected: true})

	out, err := runApp(t, "--server", ts.URL, "status", "--cached")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "Not connected") || !strings.Contains(out, "NO_NETWORK") {
		t.Fatalf("expected empty cached status:\n%s", out)
	}

	if _, err := runApp(t, "--server", ts.URL, "status"); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	out, err = runApp(t, "--server", ts.URL, "status", "--cached")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "SSID:       OldRouter") || !strings.Contains(out, "HIGH") {
		t.Fatalf("cached status:\n%s", out)
	}

	if _, err := runApp(t, "status", "--cached"); err == nil {
		t.Fatalf("expected error without --server")
	}
}

func TestLogsCommand_Summary(t *testing.T) {
	ts := newAPIServer(t, nil)
	if _, err := runApp(t, "--server", ts.URL, "wireguard", "--public-key", "PUBKEY", "--endpoint", "vpn.example.com:51820"); err != nil {
		t.Fatalf("wireguard: %v", err)
	}
	out, err := runApp(t, "--server", ts.URL, "logs")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "3 notices") || !strings.Contains(out, "1 info, 1 warning, 0 error, 1 success") {
		t.Fatalf("missing summary:\n%s", out)
	}

	out, err = runApp(t, "--server", ts.URL, "logs", "--since", "100")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "No notices") {
		t.Fatalf("out=%s", out)
	}
}

func TestLogCSV_PrintsSummary(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "log.csv")
	out, err := runApp(t, "--log-csv", csvPath, "secure")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "5 notices") || !strings.Contains(out, "5 info") {
		t.Fatalf("missing summary:\n%s", out)
	}
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := runApp(t, "--log-level", "loud", "classify", "wpa2")
	if err == nil || !strings.Contains(err.Error(), `invalid log level "loud"`) {
		t.Fatalf("err=%v", err)
	}
}
