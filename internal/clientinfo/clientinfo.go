// Package clientinfo derives best-effort sender attribution from inbound
// request metadata: a client IP address, a coarse locale signal, and a
// browser/OS/device hint parsed from the user-agent string.
//
// Every function here is pure over its explicit inputs and total: resolution
// never fails, it only degrades to the literal "unknown". Attribution is
// advisory display data for the message recipient, not a security
// boundary and must never gate authorization decisions, because any of the
// consulted headers can be forged by the sender or rewritten by proxies.
package clientinfo

import (
	"net"
	"net/http"
	"strings"

	"github.com/mileusna/useragent"
)

// Unknown is the fallback value used when no attribution signal is available.
const Unknown = "unknown"

// ipHeaders is the fixed precedence list of proxy headers consulted for the
// client IP. Earlier entries are the ones a trusted edge (e.g. Cloudflare)
// appends; later entries are legacy variants some intermediaries still set.
var ipHeaders = []string{
	"Cf-Connecting-Ip",
	"X-Forwarded-For",
	"X-Real-Ip",
	"X-Client-Ip",
	"X-Cluster-Client-Ip",
	"X-Forwarded",
	"Forwarded-For",
	"Forwarded",
}

// ResolveClientIP scans the proxy-header precedence list and returns the
// first value that parses as a well-formed IPv4 or IPv6 address, after taking
// only the portion before the first comma and trimming whitespace (forwarding
// headers accumulate one entry per hop; the first is the original client).
//
// When no header yields a valid address the transport-level remote address is
// used, and when that is unavailable too the result is "unknown". Loopback
// literals are rewritten to a human-readable form and the IPv6-mapped-IPv4
// prefix is stripped.
func ResolveClientIP(h http.Header, remoteAddr string) string {
	for _, name := range ipHeaders {
		v := h.Get(name)
		if v == "" {
			continue
		}
		ip := strings.TrimSpace(strings.SplitN(v, ",", 2)[0])
		if ip != "" && net.ParseIP(ip) != nil {
			return cleanIP(ip)
		}
	}

	// Fallback: transport remote address (host:port or bare host).
	if remoteAddr != "" {
		host := remoteAddr
		if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
			host = h
		}
		if net.ParseIP(host) != nil {
			return cleanIP(host)
		}
	}

	return Unknown
}

// cleanIP strips the IPv6-mapped-IPv4 prefix and rewrites the two loopback
// literals for display.
func cleanIP(ip string) string {
	ip = strings.TrimPrefix(ip, "::ffff:")
	switch ip {
	case "::1":
		return "localhost (IPv6)"
	case "127.0.0.1":
		return "localhost (IPv4)"
	}
	return ip
}

// ResolveLocale returns a coarse country/locale signal for the request.
//
// A country-code header set by the edge (Cf-Ipcountry) wins. Otherwise the
// first entry of Accept-Language is parsed: when the tag carries a region
// subtag the uppercased region is returned ("en-US" → "US"), else the bare
// language tag ("fr" → "fr"). With neither header present the result is
// "unknown".
func ResolveLocale(h http.Header) string {
	if country := strings.TrimSpace(h.Get("Cf-Ipcountry")); country != "" {
		return country
	}

	al := h.Get("Accept-Language")
	if al == "" {
		return Unknown
	}
	first := strings.TrimSpace(strings.SplitN(al, ",", 2)[0])
	// Drop any quality weight ("en-US;q=0.9").
	first = strings.TrimSpace(strings.SplitN(first, ";", 2)[0])
	if first == "" {
		return Unknown
	}
	parts := strings.SplitN(first, "-", 2)
	if len(parts) > 1 && parts[1] != "" {
		return strings.ToUpper(parts[1])
	}
	return parts[0]
}

// Attribution bundles the three sender signals stored with a message.
type Attribution struct {
	IP        string
	UserAgent string
	Location  string
}

// Resolve derives the full sender attribution for a request from its header
// set and transport remote address. The user-agent passes through verbatim;
// it is only re-parsed for display when the recipient asks for a hint.
func Resolve(h http.Header, remoteAddr string) Attribution {
	ua := h.Get("User-Agent")
	if ua == "" {
		ua = Unknown
	}
	return Attribution{
		IP:        ResolveClientIP(h, remoteAddr),
		UserAgent: ua,
		Location:  ResolveLocale(h),
	}
}

// SenderHint is the display-friendly decomposition of a stored user-agent
// string, shown to the recipient alongside a message.
type SenderHint struct {
	Browser string `json:"browser"`
	OS      string `json:"os"`
	Device  string `json:"device"`
}

// ParseUserAgent re-parses a stored user-agent string into a SenderHint.
// Missing or unparsable parts degrade to "Unknown"; the device class defaults
// to Desktop, matching how general-purpose browsers identify themselves.
func ParseUserAgent(uaStr string) SenderHint {
	hint := SenderHint{Browser: "Unknown", OS: "Unknown", Device: "Unknown"}
	if uaStr == "" || uaStr == Unknown {
		return hint
	}

	ua := useragent.Parse(uaStr)
	if ua.Name != "" {
		hint.Browser = ua.Name
	}
	if ua.OS != "" {
		hint.OS = ua.OS
	}
	switch {
	case ua.Bot:
		hint.Device = "Bot"
	case ua.Mobile:
		hint.Device = "Mobile"
	case ua.Tablet:
		hint.Device = "Tablet"
	default:
		hint.Device = "Desktop"
	}
	return hint
}
