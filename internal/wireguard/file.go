package wireguard

import (
	"os"
	"path/filepath"
	"strings"
)

// FileName suggests a download name for a client config, e.g. "wg_client1.conf".
func FileName(clientName string) string {
	name := strings.TrimSpace(clientName)
	if name == "" {
		name = "client"
	}
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return '_'
		}
		return r
	}, name)
	return "wg_" + name + ".conf"
}

// WriteConfig writes WireGuard config to a file with 0600 permissions.
func WriteConfig(path string, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o600)
}
