package model

import "time"

// Tier is the coarse risk classification of a network connection.
type Tier string

const (
	TierLow       Tier = "LOW"
	TierMedium    Tier = "MEDIUM"
	TierHigh      Tier = "HIGH"
	TierUnknown   Tier = "UNKNOWN"
	TierNoNetwork Tier = "NO_NETWORK"
)

// Color is a rendering hint derived from a Tier.
type Color string

const (
	ColorGreen  Color = "green"
	ColorOrange Color = "orange"
	ColorRed    Color = "red"
	ColorGray   Color = "gray"
)

// Color returns the rendering hint for the tier.
func (t Tier) Color() Color {
	switch t {
	case TierLow:
		return ColorGreen
	case TierMedium:
		return ColorOrange
	case TierHigh:
		return ColorRed
	default:
		return ColorGray
	}
}

// NetworkObservation describes the currently active wireless network.
// A missing connection is a nil *NetworkObservation, never a zero value.
type NetworkObservation struct {
	SSID       string `json:"ssid" yaml:"ssid"`
	BSSID      string `json:"bssid" yaml:"bssid"`
	AuthScheme string `json:"auth" yaml:"auth"`
	Signal     *int   `json:"signal,omitempty" yaml:"signal,omitempty"`
	Connected  bool   `json:"connected" yaml:"connected"`
}

// RiskAssessment is the classifier output.
type RiskAssessment struct {
	Tier    Tier   `json:"level"`
	Message string `json:"message"`
	Color   Color  `json:"color"`
}

const (
	DefaultClientName    = "client1"
	DefaultAllowedRoutes = "0.0.0.0/0, ::/0"
)

// TunnelRequest is the user-editable draft used to render a tunnel config.
type TunnelRequest struct {
	ClientName    string `json:"client_name" yaml:"client_name"`
	PeerPublicKey string `json:"peer_public_key" yaml:"peer_public_key"`
	PeerEndpoint  string `json:"peer_endpoint" yaml:"peer_endpoint"`
	AllowedRoutes string `json:"allowed_routes" yaml:"allowed_routes"`
	PrivateKey    string `json:"private_key,omitempty" yaml:"private_key,omitempty"`
	ClientAddress string `json:"client_address,omitempty" yaml:"client_address,omitempty"`
	DNSServer     string `json:"dns_server,omitempty" yaml:"dns_server,omitempty"`
}

// DefaultTunnelRequest returns a draft with the form defaults filled in.
func DefaultTunnelRequest() TunnelRequest {
	return TunnelRequest{
		ClientName:    DefaultClientName,
		AllowedRoutes: DefaultAllowedRoutes,
	}
}

// TunnelDocument is a rendered config paired with the request it came from.
type TunnelDocument struct {
	Request TunnelRequest `json:"request"`
	Content string        `json:"content"`
}

// Severity classifies a log notice.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
)

// LogNotice is a single entry in the session event log.
type LogNotice struct {
	ID        uint64    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Severity  Severity  `json:"type"`
	Message   string    `json:"message"`
}
