package wireguard

import (
	"errors"
	"fmt"
	"strings"

	"wifilayer/internal/model"
)

const (
	PlaceholderPrivateKey = "<GENERATED_PRIVATE_KEY>"
	DefaultClientAddress  = "10.0.0.2/32"
	DefaultDNSServer      = "1.1.1.1"
	KeepaliveSec          = 25
)

// ErrMissingField is returned when a required request field is blank.
var ErrMissingField = errors.New("missing required field")

// Validate checks that the peer public key and endpoint are present.
// Key, CIDR and endpoint syntax are deliberately left to the consumer of the document.
func Validate(req model.TunnelRequest) error {
	if strings.TrimSpace(req.PeerPublicKey) == "" {
		return fmt.Errorf("%w: peer_public_key is required", ErrMissingField)
	}
	if strings.TrimSpace(req.PeerEndpoint) == "" {
		return fmt.Errorf("%w: peer_endpoint is required", ErrMissingField)
	}
	return nil
}

// Render renders a client config for a single peer. Output depends only on req.
func Render(req model.TunnelRequest) model.TunnelDocument {
	var b strings.Builder
	b.WriteString("[Interface]\n")
	b.WriteString("# ")
	b.WriteString(clientLabel(req.ClientName))
	b.WriteString("\n")
	b.WriteString("PrivateKey = ")
	b.WriteString(orDefault(req.PrivateKey, PlaceholderPrivateKey))
	b.WriteString("\n")
	b.WriteString("Address = ")
	b.WriteString(orDefault(req.ClientAddress, DefaultClientAddress))
	b.WriteString("\n")
	b.WriteString("DNS = ")
	b.WriteString(orDefault(req.DNSServer, DefaultDNSServer))
	b.WriteString("\n")

	b.WriteString("\n[Peer]\n")
	b.WriteString("PublicKey = ")
	b.WriteString(req.PeerPublicKey)
	b.WriteString("\n")
	b.WriteString("Endpoint = ")
	b.WriteString(req.PeerEndpoint)
	b.WriteString("\n")
	b.WriteString("AllowedIPs = ")
	b.WriteString(req.AllowedRoutes)
	b.WriteString("\n")
	fmt.Fprintf(&b, "PersistentKeepalive = %d", KeepaliveSec)

	return model.TunnelDocument{Request: req, Content: b.String()}
}

// Generate validates req and renders it. No document is produced on failure.
func Generate(req model.TunnelRequest) (model.TunnelDocument, error) {
	if err := Validate(req); err != nil {
		return model.TunnelDocument{}, err
	}
	return Render(req), nil
}

// UsesPlaceholderKey reports whether the private key must still be replaced
// before the document can be used.
func UsesPlaceholderKey(doc model.TunnelDocument) bool {
	return doc.Request.PrivateKey == ""
}

func clientLabel(name string) string {
	if strings.TrimSpace(name) == "" {
		return model.DefaultClientName
	}
	return name
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
