package http

import (
	"fmt"
	"html/template"
	"net"
	"net/http"
)

// clientIP returns the remote host. middleware.RealIP has already applied
// any forwarding headers to RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"points": func(n int) string { return fmt.Sprintf("%d points", n) },
		"bg": func(color string) template.CSS {
			return template.CSS("background: " + cssColor(color))
		},
	}
}

// cssColor passes hex colors and plain color names through. Anything else
// could break out of the declaration and is replaced with gray.
func cssColor(c string) string {
	if c == "" || len(c) > 32 {
		return "#999"
	}
	for _, r := range c {
		switch {
		case r == '#', r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		default:
			return "#999"
		}
	}
	return c
}
