package config

import "strings"

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_LISTEN_ADDR" envDefault:":8080"`

	// Port overrides the port of Addr when set (platforms that inject $PORT).
	Port string `env:"PORT"`

	// CORSAllowedOrigins lists origins allowed to call the API from a browser.
	// Empty disables CORS handling.
	CORSAllowedOrigins []string `env:"HTTP_CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// Sanitize applies the PORT override and trims origins.
func (h *HTTPConfig) Sanitize() {
	if p := strings.TrimSpace(h.Port); p != "" {
		h.Addr = ":" + strings.TrimPrefix(p, ":")
	}
	if strings.TrimSpace(h.Addr) == "" {
		h.Addr = ":8080"
	}

	origins := h.CORSAllowedOrigins[:0]
	for _, o := range h.CORSAllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	h.CORSAllowedOrigins = origins
}
