// Package fingerprint derives a stable pseudo-identity for a client device
// from environment signals. The hash is a heuristic signal used to detect
// device changes between challenges and sessions. It is NOT a security
// boundary: different devices SHOULD produce different hashes, but nothing
// stops a client from replaying another device's signals.
package fingerprint

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/mssola/user_agent"
)

// Signal is one (key, value) pair of client environment data. Order matters:
// the same signals in a different order produce a different hash, so callers
// must keep the collection order stable.
type Signal struct {
	Key   string
	Value string
}

// Signals is the ordered signal set a fingerprint is derived from.
type Signals []Signal

// Basic combines the signal set with an order-preserving join and hashes it
// with xxhash64, returned as a hex string. Equal inputs always yield an
// equal hash.
func Basic(signals Signals) string {
	var sb strings.Builder
	for _, s := range signals {
		sb.WriteString(s.Key)
		sb.WriteByte('=')
		sb.WriteString(s.Value)
		sb.WriteByte('|')
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(sb.String()))
}

// Advanced augments the basic signal set with a rendering-probe value (for
// example a canvas hash computed client-side) using the same join and hash.
// When the probe is unavailable it falls back to the basic fingerprint, so
// the result is always non-empty for a non-empty signal set.
func Advanced(signals Signals, probe string) string {
	if probe == "" {
		return Basic(signals)
	}
	augmented := make(Signals, 0, len(signals)+1)
	augmented = append(augmented, signals...)
	augmented = append(augmented, Signal{Key: "render_probe", Value: probe})
	return Basic(augmented)
}

// FromRequest builds a signal set from what an HTTP request exposes:
// user-agent derived browser/OS/device class plus the Accept-Language
// header. Client-side signals (screen, timezone, storage) arrive separately
// and are appended by the caller.
func FromRequest(r *http.Request) Signals {
	uaString := r.UserAgent()
	ua := user_agent.New(uaString)
	browserName, browserVersion := ua.Browser()

	deviceClass := "desktop"
	if ua.Bot() {
		deviceClass = "bot"
	} else if ua.Mobile() {
		deviceClass = "mobile"
	}

	return Signals{
		{Key: "user_agent", Value: uaString},
		{Key: "browser", Value: browserName + "/" + browserVersion},
		{Key: "os", Value: ua.OS()},
		{Key: "device_class", Value: deviceClass},
		{Key: "language", Value: r.Header.Get("Accept-Language")},
	}
}
