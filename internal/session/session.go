package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"wifilayer/internal/detect"
	"wifilayer/internal/eventlog"
	"wifilayer/internal/firewall"
	"wifilayer/internal/metrics"
	"wifilayer/internal/model"
	"wifilayer/internal/risk"
	"wifilayer/internal/stunutil"
	"wifilayer/internal/wireguard"
)

// PlaceholderKeyWarning is recorded whenever a document still carries the
// placeholder private key.
const PlaceholderKeyWarning = "Remember to replace the placeholder private key with a real one before using the config."

// Options wires a Session to its collaborators. Only Describer is required.
type Options struct {
	Describer detect.Describer
	Prober    stunutil.Prober
	Log       *eventlog.Log
	Metrics   *metrics.Metrics
	Logger    logrus.FieldLogger
}

// Status is a snapshot of the last refresh.
type Status struct {
	Observation *model.NetworkObservation `json:"wifi"`
	Assessment  model.RiskAssessment      `json:"risk"`
	Exposure    *stunutil.Exposure        `json:"exposure,omitempty"`
	Loading     bool                      `json:"loading"`
	UpdatedAt   time.Time                 `json:"updated_at"`
}

// Session holds the state of one user session and owns its event log.
type Session struct {
	describer detect.Describer
	prober    stunutil.Prober
	log       *eventlog.Log
	metrics   *metrics.Metrics
	logger    logrus.FieldLogger

	mu       sync.Mutex
	status   Status
	started  uint64
	inFlight int
}

// New creates a session and records the welcome notice.
func New(opts Options) (*Session, error) {
	if opts.Describer == nil {
		return nil, fmt.Errorf("describer is required")
	}
	if opts.Log == nil {
		opts.Log = eventlog.New()
	}
	if opts.Logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		opts.Logger = l
	}
	s := &Session{
		describer: opts.Describer,
		prober:    opts.Prober,
		log:       opts.Log,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		status:    Status{Assessment: risk.NoNetwork()},
	}
	s.observe(s.log.Info("WiFiLayer initialized. Welcome to easy Wi-Fi security hardening!"))
	return s, nil
}

func (s *Session) Log() *eventlog.Log { return s.log }

// Status returns the current snapshot.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Refresh describes the current network and classifies it. Detection failures are
// logged and degrade to "no observation"; they never fail the refresh.
// When refreshes overlap, the one started last wins.
func (s *Session) Refresh(ctx context.Context) Status {
	s.mu.Lock()
	s.started++
	gen := s.started
	s.inFlight++
	s.status.Loading = true
	s.mu.Unlock()

	s.observe(s.log.Info("Refreshing network status..."))

	obs, err := s.describer.DescribeCurrentNetwork(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("network detection failed")
		s.metrics.ObserveDetectionFailure()
		s.observe(s.log.Warn(fmt.Sprintf("Error detecting Wi-Fi information: %v", err)))
		obs = nil
	}
	if obs != nil && obs.SSID == "" {
		// A record without an SSID is no observation.
		obs = nil
	}

	assessment := risk.Classify(obs)
	s.metrics.ObserveAssessment(assessment)
	switch {
	case obs != nil:
		s.observe(s.log.Success(fmt.Sprintf("Detected SSID: %s - Encryption: %s - Risk: %s",
			obs.SSID, strings.ToUpper(obs.AuthScheme), assessment.Tier)))
	case err == nil:
		s.observe(s.log.Warn("Wi-Fi detection failed or required system tool missing."))
	}
	s.logger.WithFields(logrus.Fields{
		"tier":     assessment.Tier,
		"observed": obs != nil,
	}).Debug("network classified")

	exposure := s.probeExposure(ctx, obs)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight--
	if gen == s.started {
		s.status.Observation = obs
		s.status.Assessment = assessment
		s.status.Exposure = exposure
		s.status.UpdatedAt = time.Now().UTC()
	}
	s.status.Loading = s.inFlight > 0
	return s.status
}

func (s *Session) probeExposure(ctx context.Context, obs *model.NetworkObservation) *stunutil.Exposure {
	if s.prober == nil || obs == nil {
		return nil
	}
	exp, err := s.prober.Probe(ctx)
	if err != nil {
		s.logger.WithError(err).Debug("STUN probe failed")
		s.observe(s.log.Warn(fmt.Sprintf("Public exposure probe failed: %v", err)))
		return nil
	}
	s.observe(s.log.Info(fmt.Sprintf("Public address: %s (NAT: %s)", exp.PublicAddr, exp.NATType)))
	return &exp
}

var hardeningSteps = []string{
	"Security hardening process initiated...",
	"Step 1: VPN Recommendation - Use WireGuard or trusted VPN provider. Generate a config using the wireguard command.",
	"Step 2: DNS-over-HTTPS - Enable secure DNS in your browser or system settings (1.1.1.1, 8.8.8.8).",
	"Step 3: Firewall - Run the firewall command to get the recommended security rules (requires admin privileges).",
}

// SecureNetwork records the hardening recommendations and returns exactly the
// notices it appended.
func (s *Session) SecureNetwork() []model.LogNotice {
	out := make([]model.LogNotice, 0, len(hardeningSteps))
	for _, msg := range hardeningSteps {
		out = append(out, s.observe(s.log.Info(msg)))
	}
	return out
}

// ApplyFirewall records the firewall profile plan for p. No rules are applied.
func (s *Session) ApplyFirewall(p firewall.Platform) firewall.Strategy {
	s.observe(s.log.Info("Applying firewall security profile..."))
	strategy := firewall.For(p)
	for _, step := range strategy.Plan() {
		msg := step.Message
		if len(step.Command) > 0 {
			msg = fmt.Sprintf("%s: %s", msg, strings.Join(step.Command, " "))
		}
		s.observe(s.log.Append(step.Severity, msg))
	}
	return strategy
}

// GenerateTunnel validates and renders req. On success it records the mandatory
// placeholder-key warning when no private key was supplied.
func (s *Session) GenerateTunnel(req model.TunnelRequest) (model.TunnelDocument, error) {
	doc, err := wireguard.Generate(req)
	if err != nil {
		s.metrics.ObserveTunnel(false)
		s.observe(s.log.Error("Missing information: peer public key and endpoint are required."))
		return model.TunnelDocument{}, err
	}
	s.metrics.ObserveTunnel(true)
	s.observe(s.log.Success(fmt.Sprintf("WireGuard configuration generated successfully. Save %s to your WireGuard client.",
		wireguard.FileName(req.ClientName))))
	if wireguard.UsesPlaceholderKey(doc) {
		s.observe(s.log.Warn(PlaceholderKeyWarning))
	}
	return doc, nil
}

// observe counts a notice that was just appended to the log.
func (s *Session) observe(n model.LogNotice) model.LogNotice {
	s.metrics.ObserveNotice(n)
	return n
}
