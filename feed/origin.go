package feed

import "strings"

// RequestSnapshot is the part of an incoming request the origin depends on
type RequestSnapshot struct {
	Scheme         string
	Host           string
	ForwardedProto string
}

// ResolveOrigin builds the absolute base URL of the blog, ending in exactly one slash.
// A forwarded protocol of https wins over the scheme the request arrived on, so
// links stay correct behind a TLS-terminating proxy. Without a host the result
// is the relative mount path.
func ResolveOrigin(req RequestSnapshot, mountPath string) string {
	path := "/"
	if mount := strings.Trim(mountPath, "/"); mount != "" {
		path = "/" + mount + "/"
	}

	host := strings.TrimSpace(req.Host)
	if host == "" {
		return path
	}

	scheme := strings.ToLower(strings.TrimSpace(req.Scheme))
	if scheme == "" {
		scheme = "http"
	}
	if forwardedHTTPS(req.ForwardedProto) {
		scheme = "https"
	}
	return scheme + "://" + host + path
}

// forwardedHTTPS reads the first hop of a possibly comma separated X-Forwarded-Proto value
func forwardedHTTPS(forwardedProto string) bool {
	first, _, _ := strings.Cut(forwardedProto, ",")
	return strings.EqualFold(strings.TrimSpace(first), "https")
}
