package adc

import (
	"os"
	"path/filepath"
	"strings"
)

// ReadConfig reads a "section/key" value such as "core/project" from the
// active gcloud configuration. Returns empty string if the configuration or
// key doesn't exist.
func ReadConfig(property string) string {
	section, key, ok := strings.Cut(property, "/")
	if !ok {
		return ""
	}

	dir := configDir()
	if dir == "" {
		return ""
	}

	path := filepath.Join(dir, "configurations", "config_"+activeConfig(dir))
	data, err := os.ReadFile(path) // #nosec G304 -- Reading well-known gcloud config file
	if err != nil {
		return ""
	}
	return parseINIValue(string(data), section, key)
}

// activeConfig returns the active gcloud configuration name, honoring
// CLOUDSDK_ACTIVE_CONFIG_NAME. Returns "default" when none is recorded.
func activeConfig(dir string) string {
	if name := os.Getenv("CLOUDSDK_ACTIVE_CONFIG_NAME"); name != "" {
		return name
	}
	data, err := os.ReadFile(filepath.Join(dir, "active_config")) // #nosec G304 -- Reading well-known gcloud config file
	if err != nil {
		return "default"
	}
	if name := strings.TrimSpace(string(data)); name != "" {
		return name
	}
	return "default"
}

// parseINIValue extracts key from section in INI-style content.
func parseINIValue(content, section, key string) string {
	var current string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			current = strings.TrimSpace(strings.Trim(line, "[]"))
			continue
		}
		if current != section {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if ok && strings.TrimSpace(k) == key {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
