package firewall

import (
	"runtime"
	"strings"

	"wifilayer/internal/model"
)

// Platform identifies which firewall tooling a host offers.
type Platform int

const (
	Unsupported Platform = iota
	Windows
	Linux
	MacOS
)

func (p Platform) String() string {
	switch p {
	case Windows:
		return "windows"
	case Linux:
		return "linux"
	case MacOS:
		return "macos"
	default:
		return "unsupported"
	}
}

// PlatformFromGOOS maps a runtime.GOOS value to a Platform.
func PlatformFromGOOS(goos string) Platform {
	switch goos {
	case "windows":
		return Windows
	case "linux":
		return Linux
	case "darwin":
		return MacOS
	default:
		return Unsupported
	}
}

// Current returns the platform of the running host.
func Current() Platform {
	return PlatformFromGOOS(runtime.GOOS)
}

// ParsePlatform accepts platform names as typed by a user. Unknown names map to Unsupported.
func ParsePlatform(name string) Platform {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "windows", "win":
		return Windows
	case "linux":
		return Linux
	case "macos", "mac", "darwin", "osx":
		return MacOS
	default:
		return Unsupported
	}
}

// Step is one notice of a firewall profile plan.
type Step struct {
	Severity model.Severity
	Message  string
	// Command is what the user would run, empty for manual steps.
	Command []string
}

// Strategy describes how to apply the safe profile on one platform.
// Nothing is executed: rule application is left to the user.
type Strategy interface {
	Platform() Platform
	Plan() []Step
	// Automatic reports whether the profile can be applied with commands.
	Automatic() bool
}

// For returns the strategy for p.
func For(p Platform) Strategy {
	switch p {
	case Windows:
		return windowsStrategy{}
	case Linux:
		return ufwStrategy{}
	case MacOS:
		return macStrategy{}
	default:
		return unsupportedStrategy{}
	}
}

type windowsStrategy struct{}

func (windowsStrategy) Platform() Platform { return Windows }
func (windowsStrategy) Automatic() bool    { return true }
func (windowsStrategy) Plan() []Step {
	return []Step{
		{Severity: model.SeverityInfo, Message: "Windows detected: Configuring Windows Defender Firewall..."},
		{Severity: model.SeverityInfo, Message: "Enable all firewall profiles",
			Command: []string{"netsh", "advfirewall", "set", "allprofiles", "state", "on"}},
		{Severity: model.SeverityInfo, Message: "Block inbound, allow outbound",
			Command: []string{"netsh", "advfirewall", "set", "allprofiles", "firewallpolicy", "blockinbound,allowoutbound"}},
		{Severity: model.SeveritySuccess, Message: "Windows firewall profile prepared. Inbound connections blocked, outbound allowed."},
	}
}

type ufwStrategy struct{}

func (ufwStrategy) Platform() Platform { return Linux }
func (ufwStrategy) Automatic() bool    { return true }
func (ufwStrategy) Plan() []Step {
	return []Step{
		{Severity: model.SeverityInfo, Message: "Linux detected: Configuring UFW (Uncomplicated Firewall)..."},
		{Severity: model.SeverityInfo, Message: "Deny incoming by default",
			Command: []string{"sudo", "ufw", "default", "deny", "incoming"}},
		{Severity: model.SeverityInfo, Message: "Allow outgoing by default",
			Command: []string{"sudo", "ufw", "default", "allow", "outgoing"}},
		{Severity: model.SeverityInfo, Message: "Enable UFW",
			Command: []string{"sudo", "ufw", "enable"}},
		{Severity: model.SeveritySuccess, Message: "UFW rules prepared: deny incoming, allow outgoing. You may be prompted for sudo password."},
	}
}

type macStrategy struct{}

func (macStrategy) Platform() Platform { return MacOS }
func (macStrategy) Automatic() bool    { return false }
func (macStrategy) Plan() []Step {
	return []Step{
		{Severity: model.SeverityWarning, Message: "macOS detected: Please manually configure firewall in System Settings > Network > Firewall."},
	}
}

type unsupportedStrategy struct{}

func (unsupportedStrategy) Platform() Platform { return Unsupported }
func (unsupportedStrategy) Automatic() bool    { return false }
func (unsupportedStrategy) Plan() []Step {
	return []Step{
		{Severity: model.SeverityWarning, Message: "Platform not supported for automatic firewall configuration."},
	}
}
