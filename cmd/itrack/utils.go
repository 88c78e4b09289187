package main

import (
	"errors"
	"net/url"
	"strings"

	"itrack/internal/config"
)

var errProjectRequired = errors.New("project is required; pass --project or set default_project")

func setIfNotEmpty(values url.Values, key, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	values.Set(key, value)
}

func splitCommaList(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// resolveProject picks the project from the flag, falling back to the
// configured default.
func resolveProject(cfg *config.Config, flagValue string) (string, error) {
	if p := strings.TrimSpace(flagValue); p != "" {
		return p, nil
	}
	if p := strings.TrimSpace(cfg.DefaultProject); p != "" {
		return p, nil
	}
	return "", errProjectRequired
}
