package objects

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// ContentID mints the deterministic opaque identifier for a
// (locationURL, name) pair used by the browse-then-extract protocol
// (spec.md §3, §4.F.4): base64url(location_url + "\x00" + name).
func ContentID(locationURL, name string) string {
	raw := locationURL + "\x00" + name
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeContentID reverses ContentID. Per spec.md §4.F.4 the location
// field is informational only — callers must use the caller-supplied,
// redirect-normalized location, not the one embedded in the id — so
// only name is meaningful to callers, but both are returned for
// diagnostics.
func DecodeContentID(id string) (locationURL, name string, err error) {
	raw, err := base64.RawURLEncoding.DecodeString(id)
	if err != nil {
		// Tolerate padded ids from other base64url encoders.
		raw, err = base64.URLEncoding.DecodeString(id)
		if err != nil {
			return "", "", fmt.Errorf("content_id %q is not valid base64url: %w", id, err)
		}
	}
	parts := strings.SplitN(string(raw), "\x00", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("content_id %q does not decode to a (location, name) pair", id)
	}
	return parts[0], parts[1], nil
}
