package server

import (
	"net/http"
	"os"

	"github.com/rs/zerolog/log"
)

// FileServerHandler serves the built front end from dir. It returns nil when
// dir is empty or missing.
func FileServerHandler(dir string) http.Handler {
	if dir == "" {
		return nil
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		log.Warn().Str("static_dir", dir).Msg("Static directory not found, static files disabled")
		return nil
	}
	return http.FileServer(http.Dir(dir))
}
