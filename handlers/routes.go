package handlers

import (
	"net/http"
	"path"
	"strings"

	"emam3/chat-relay/config"
	"emam3/chat-relay/constants"
	"emam3/chat-relay/metrics"
)

// NewMux wires the chat endpoint, health and metrics, and serves staticDir at /.
// Dotfiles, config.EnvFile and any hidden base names are never served.
func NewMux(chat *ChatServer, m *metrics.Metrics, staticDir string, hidden ...string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(constants.ChatPath, chat)
	mux.HandleFunc("/health", HealthCheck)
	if m != nil {
		mux.Handle("/metrics", m.Handler())
	}
	mux.Handle("/", staticFiles(staticDir, append([]string{config.EnvFile}, hidden...)))
	return mux
}

func staticFiles(dir string, hidden []string) http.Handler {
	blocked := make(map[string]bool, len(hidden))
	for _, name := range hidden {
		if name != "" {
			blocked[path.Base(name)] = true
		}
	}
	files := http.FileServer(http.Dir(dir))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, seg := range strings.Split(path.Clean("/"+r.URL.Path), "/") {
			if strings.HasPrefix(seg, ".") || blocked[seg] {
				http.NotFound(w, r)
				return
			}
		}
		files.ServeHTTP(w, r)
	})
}
