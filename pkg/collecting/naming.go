package collecting

import (
	"strings"

	"DockerStats/pkg/utils"
)

// ResolveLogicalName returns the value of the first env entry whose key is
// exactly key. The first entry naming key decides: a bare key without '=' or
// an empty value yields unknown, as does no match at all.
func ResolveLogicalName(env []string, key, unknown string) string {
	for _, entry := range env {
		k, v, ok := strings.Cut(entry, "=")
		if k != key {
			continue
		}
		if !ok || v == "" {
			return unknown
		}
		return v
	}
	return unknown
}

// RuntimeName is the first alias without its leading '/'. Containers without
// an alias use their short id.
func RuntimeName(names []string, id string) string {
	if len(names) > 0 {
		if name := strings.TrimPrefix(names[0], "/"); name != "" {
			return name
		}
	}
	return shortID(id)
}

// MetricName joins name parts with '.'.
func MetricName(parts ...string) string {
	return strings.Join(parts, ".")
}

func shortID(id string) string {
	if len(id) > utils.ShortIDLength {
		return id[:utils.ShortIDLength]
	}
	return id
}
