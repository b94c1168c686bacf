package api

import "wifilayer/internal/model"

// TunnelResponse carries a generated config and its suggested file name.
type TunnelResponse struct {
	Content        string              `json:"content"`
	FileName       string              `json:"file_name"`
	PlaceholderKey bool                `json:"placeholder_key"`
	Request        model.TunnelRequest `json:"request"`
}

// FirewallRequest selects the platform profile. Empty means the server's platform.
type FirewallRequest struct {
	Platform string `json:"platform"`
}

// FirewallStep mirrors one planned firewall step.
type FirewallStep struct {
	Severity model.Severity `json:"type"`
	Message  string         `json:"message"`
	Command  []string       `json:"command,omitempty"`
}

// FirewallResponse is the plan recorded for a platform.
type FirewallResponse struct {
	Platform  string         `json:"platform"`
	Automatic bool           `json:"automatic"`
	Steps     []FirewallStep `json:"steps"`
}

// LogsResponse returns notices in append order.
type LogsResponse struct {
	Notices []model.LogNotice `json:"notices"`
	LastID  uint64            `json:"last_id"`
}

// ErrorResponse is returned for every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}
