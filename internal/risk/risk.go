package risk

import (
	"strings"

	"wifilayer/internal/model"
)

const (
	msgNoNetwork = "No network detected. Connect to Wi-Fi first."
	msgOpen      = "The network is open (no encryption). Use VPN immediately or avoid sensitive activity."
	msgWEP       = "WEP is insecure. Avoid using this network for sensitive tasks."
	msgWPA3      = "This network uses WPA3, which is good. Still consider using a VPN on public networks."
	msgWPA2      = "WPA2 is acceptable. Use strong router passwords and consider VPN on public networks."
	msgWPA       = "WPA detected. Consider upgrading to WPA2/WPA3 if you can."
	msgUnknown   = "Unable to determine encryption. Use caution; enable VPN if unsure."
)

// NoNetwork is the assessment reported when there is no observation.
func NoNetwork() model.RiskAssessment {
	return assess(model.TierNoNetwork, msgNoNetwork)
}

// Classify maps an observation to a risk tier.
//
// Checks are substring matches evaluated in a fixed order and the first match wins,
// so a compound token such as "wpa2-wep-fallback" resolves to the WEP branch.
func Classify(obs *model.NetworkObservation) model.RiskAssessment {
	if obs == nil || obs.SSID == "" {
		return NoNetwork()
	}

	auth := strings.ToLower(obs.AuthScheme)
	switch {
	case auth == "" || strings.Contains(auth, "open") || strings.Contains(auth, "none"):
		return assess(model.TierHigh, msgOpen)
	case strings.Contains(auth, "wep"):
		return assess(model.TierHigh, msgWEP)
	case strings.Contains(auth, "wpa3"):
		return assess(model.TierLow, msgWPA3)
	case strings.Contains(auth, "wpa2"):
		return assess(model.TierMedium, msgWPA2)
	case strings.Contains(auth, "wpa"):
		return assess(model.TierMedium, msgWPA)
	default:
		return assess(model.TierUnknown, msgUnknown)
	}
}

func assess(tier model.Tier, msg string) model.RiskAssessment {
	return model.RiskAssessment{Tier: tier, Message: msg, Color: tier.Color()}
}
