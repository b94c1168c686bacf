package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"wifilayer/internal/config"
	"wifilayer/internal/detect"
	"wifilayer/internal/metrics"
	"wifilayer/internal/model"
	"wifilayer/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, obs *model.NetworkObservation, rps float64, burst int) *Server {
	t.Helper()
	m := metrics.New()
	sess, err := session.New(session.Options{Describer: detect.Static{Observation: obs}, Metrics: m})
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	cfg := config.APIConfig{Listen: "127.0.0.1:0", RateLimitRPS: rps, RateLimitBurst: burst}
	return NewServer(cfg, sess, m, model.DefaultTunnelRequest(), nil)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRefreshAndStatus(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &model.NetworkObservation{SSID: "SecureOffice", AuthScheme: "wpa3-sae", Connected: true}, 0, 0)

	rec := do(t, s.Handler(), http.MethodGet, "/api/status", nil)
	var st session.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Assessment.Tier != model.TierNoNetwork {
		t.Fatalf("initial tier=%s", st.Assessment.Tier)
	}

	rec = do(t, s.Handler(), http.MethodPost, "/api/refresh", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Assessment.Tier != model.TierLow || st.Assessment.Color != model.ColorGreen {
		t.Fatalf("assessment=%+v", st.Assessment)
	}
	if st.Observation == nil || st.Observation.SSID != "SecureOffice" {
		t.Fatalf("observation=%+v", st.Observation)
	}
}

func TestWireGuard_Generates(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil, 0, 0)
	rec := do(t, s.Handler(), http.MethodPost, "/api/wireguard", map[string]string{
		"client_name":     "alice",
		"peer_public_key": "PUBKEY",
		"peer_endpoint":   "vpn.example.com:51820",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp TunnelResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.FileName != "wg_alice.conf" || !resp.PlaceholderKey {
		t.Fatalf("resp=%+v", resp)
	}
	// allowed routes fall back to the server defaults when omitted
	if !strings.Contains(resp.Content, "AllowedIPs = 0.0.0.0/0, ::/0") {
		t.Fatalf("content=%s", resp.Content)
	}
}

func TestWireGuard_MissingField(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil, 0, 0)
	rec := do(t, s.Handler(), http.MethodPost, "/api/wireguard", map[string]string{
		"peer_public_key": "   ",
		"peer_endpoint":   "vpn.example.com:51820",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(resp.Error, "peer_public_key") {
		t.Fatalf("error=%q", resp.Error)
	}
}

func TestLogsSince(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil, 0, 0)
	do(t, s.Handler(), http.MethodPost, "/api/secure", nil)

	rec := do(t, s.Handler(), http.MethodGet, "/api/logs?since=1", nil)
	var resp LogsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Notices) != 4 || resp.Notices[0].ID != 2 || resp.LastID != 5 {
		t.Fatalf("resp=%+v", resp)
	}

	rec = do(t, s.Handler(), http.MethodGet, "/api/logs?since=-1", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestSecure_ReturnsOwnNotices(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil, 0, 0)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			s.sess.Log().Info("unrelated")
		}
	}()
	rec := do(t, s.Handler(), http.MethodPost, "/api/secure", nil)
	<-done

	var resp LogsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Notices) != 4 {
		t.Fatalf("notices=%+v", resp.Notices)
	}
	for _, n := range resp.Notices {
		if n.Message == "unrelated" {
			t.Fatalf("foreign notice: %+v", resp.Notices)
		}
	}
	if resp.LastID != resp.Notices[3].ID {
		t.Fatalf("last_id=%d notices=%+v", resp.LastID, resp.Notices)
	}
}

func TestWireGuard_EmptyClientName(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil, 0, 0)
	body := map[string]string{"client_name": "", "peer_public_key": "PUBKEY", "peer_endpoint": "vpn.example.com:51820"}
	rec := do(t, s.Handler(), http.MethodPost, "/api/wireguard", body)
	var resp TunnelResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(resp.Content, "\n# client1\n") {
		t.Fatalf("content=%s", resp.Content)
	}
}

func TestFirewall(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil, 0, 0)
	rec := do(t, s.Handler(), http.MethodPost, "/api/firewall", FirewallRequest{Platform: "windows"})
	var resp FirewallResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Platform != "windows" || !resp.Automatic || len(resp.Steps) == 0 {
		t.Fatalf("resp=%+v", resp)
	}
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil, 0.001, 1)
	if rec := do(t, s.Handler(), http.MethodPost, "/api/secure", nil); rec.Code != http.StatusOK {
		t.Fatalf("first status=%d", rec.Code)
	}
	if rec := do(t, s.Handler(), http.MethodPost, "/api/secure", nil); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second status=%d", rec.Code)
	}
	// reads are not limited
	if rec := do(t, s.Handler(), http.MethodGet, "/api/status", nil); rec.Code != http.StatusOK {
		t.Fatalf("status endpoint=%d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &model.NetworkObservation{SSID: "PublicWiFi", AuthScheme: "open", Connected: true}, 0, 0)
	do(t, s.Handler(), http.MethodPost, "/api/refresh", nil)
	rec := do(t, s.Handler(), http.MethodGet, "/metrics", nil)
	if !strings.Contains(rec.Body.String(), `wifilayer_classifications_total{tier="HIGH"} 1`) {
		t.Fatalf("metrics=%s", rec.Body.String())
	}
}

func TestClientAgainstServer(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &model.NetworkObservation{SSID: "HomeNetwork_5G", AuthScheme: "wpa2-psk", Connected: true}, 0, 0)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	c := NewClient(ts.URL)
	st, err := c.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if st.Assessment.Tier != model.TierMedium {
		t.Fatalf("tier=%s", st.Assessment.Tier)
	}
	cached, err := c.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if cached.Observation == nil || cached.Observation.SSID != "HomeNetwork_5G" || cached.Assessment != st.Assessment {
		t.Fatalf("cached=%+v", cached)
	}
	if _, err := c.GenerateTunnel(context.Background(), model.TunnelRequest{PeerEndpoint: "x:1"}); err == nil {
		t.Fatalf("expected missing field error")
	}
	logs, err := c.Logs(context.Background(), 0)
	if err != nil {
		t.Fatalf("Logs: %v", err)
	}
	if len(logs.Notices) == 0 || logs.Notices[len(logs.Notices)-1].Severity != model.SeverityError {
		t.Fatalf("logs=%+v", logs)
	}
}
