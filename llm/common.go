package llm

import (
	"log/slog"
	"net"
	"net/url"
	"regexp"
	"strings"
)

var thinkTags = regexp.MustCompile(`(?s)<think>.*?</think>`)

// RemoveThinkTags removes <think> tags and everything in between them from a string.
func RemoveThinkTags(input string) string {
	return strings.TrimSpace(thinkTags.ReplaceAllString(input, ""))
}

// NormalizeBaseURL turns a user-entered endpoint address into the base URL of an OpenAI-compatible
// API. Surrounding whitespace, trailing slashes and a pasted "/chat/completions" suffix are
// removed, and "/v1" is appended when the path carries no version segment. An address without a
// scheme gets http for localhost and loopback hosts and https otherwise.
// An empty input stays empty so callers can fall back to the provider default.
func NormalizeBaseURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}
	if !strings.Contains(u, "://") {
		if isLoopback(u) {
			u = "http://" + u
		} else {
			u = "https://" + u
		}
	}

	parsed, err := url.Parse(u)
	if err != nil {
		return strings.TrimRight(u, "/")
	}

	p := strings.TrimRight(parsed.Path, "/")
	p = strings.TrimSuffix(p, "/chat/completions")
	p = strings.TrimRight(p, "/")
	if !isVersionSegment(p[strings.LastIndex(p, "/")+1:]) {
		p += "/v1"
	}
	parsed.Path = p
	parsed.RawPath = ""

	return parsed.String()
}

// isLoopback reports whether the host of a scheme-less address is localhost or a loopback IP.
func isLoopback(addr string) bool {
	parsed, err := url.Parse("http://" + addr)
	if err != nil {
		return false
	}
	host := parsed.Hostname()
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// isVersionSegment reports whether s looks like "v1" or "v1beta".
func isVersionSegment(s string) bool {
	if len(s) < 2 || s[0] != 'v' || s[1] < '0' || s[1] > '9' {
		return false
	}
	return true
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
