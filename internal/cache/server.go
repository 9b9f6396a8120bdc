package cache

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/vmihailenco/msgpack/v5"
)

// maxEntrySize bounds a single uploaded entry.
const maxEntrySize = 8 << 20

var hashPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Server serves a Disk cache over the protocol Remote speaks.
type Server struct {
	disk   *Disk
	token  string
	logger *slog.Logger
}

// NewServer returns a server backed by disk. A non-empty token is required
// as a bearer token on every cache request.
func NewServer(disk *Disk, token string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{disk: disk, token: token, logger: logger}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Route("/api/cache", func(r chi.Router) {
		r.Use(s.authorize)
		r.Get("/{hash}", s.get)
		r.Put("/{hash}", s.put)
		r.Delete("/{hash}", s.delete)
	})
	return r
}

func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func hashParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	hash := chi.URLParam(r, "hash")
	if !hashPattern.MatchString(hash) {
		http.Error(w, "invalid key", http.StatusBadRequest)
		return "", false
	}
	return hash, true
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	hash, ok := hashParam(w, r)
	if !ok {
		return
	}
	data, err := s.disk.readBlob(hash)
	if errors.Is(err, os.ErrNotExist) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("reading cache entry", "key", hash, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", msgpackContentType)
	_, _ = w.Write(data)
}

func (s *Server) put(w http.ResponseWriter, r *http.Request) {
	hash, ok := hashParam(w, r)
	if !ok {
		return
	}
	if r.Header.Get("Content-Type") != msgpackContentType {
		http.Error(w, "expected "+msgpackContentType, http.StatusUnsupportedMediaType)
		return
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxEntrySize+1))
	if err != nil {
		http.Error(w, "reading body", http.StatusBadRequest)
		return
	}
	if len(data) > maxEntrySize {
		http.Error(w, "entry too large", http.StatusRequestEntityTooLarge)
		return
	}
	var entry Entry
	if err := msgpack.Unmarshal(data, &entry); err != nil {
		http.Error(w, "malformed entry", http.StatusBadRequest)
		return
	}
	if h, err := entry.Key.Hash(); err != nil || h != hash {
		http.Error(w, "key does not match entry", http.StatusBadRequest)
		return
	}
	if err := s.disk.writeBlob(hash, data); err != nil {
		s.logger.Error("writing cache entry", "key", hash, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	hash, ok := hashParam(w, r)
	if !ok {
		return
	}
	if err := s.disk.deleteBlob(hash); err != nil {
		s.logger.Error("deleting cache entry", "key", hash, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
