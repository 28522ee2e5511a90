package ratelimit

import (
	"encoding/base64"
	"net/http"
	"strings"
)

// ClientIdentifier derives a best-effort client key from proxy headers. It is spoofable and
// must not be used for anything but throttling.
func ClientIdentifier(h http.Header) string {
	if fwd := h.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if ip := h.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if ip := h.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}

	fingerprint := base64.StdEncoding.EncodeToString([]byte(h.Get("User-Agent") + h.Get("Accept")))
	if len(fingerprint) > 16 {
		fingerprint = fingerprint[:16]
	}
	return "fallback-" + fingerprint
}
