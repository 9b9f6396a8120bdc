package cache

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

// fakeServer is an in-memory cache server speaking the remote protocol.
type fakeServer struct {
	mu      sync.Mutex
	entries map[string][]byte
	token   string
}

func (s *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if r.URL.Path == "/api/health" {
		w.WriteHeader(http.StatusOK)
		return
	}
	hash := strings.TrimPrefix(r.URL.Path, "/api/cache/")

	s.mu.Lock()
	defer s.mu.Unlock()
	switch r.Method {
	case http.MethodGet:
		data, ok := s.entries[hash]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", msgpackContentType)
		w.Write(data)
	case http.MethodPut:
		if r.Header.Get("Content-Type") != msgpackContentType {
			w.WriteHeader(http.StatusUnsupportedMediaType)
			return
		}
		data, _ := io.ReadAll(r.Body)
		s.entries[hash] = data
		w.WriteHeader(http.StatusCreated)
	case http.MethodDelete:
		delete(s.entries, hash)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newFakeServer(t *testing.T, token string) (*fakeServer, *httptest.Server) {
	t.Helper()
	fs := &fakeServer{entries: make(map[string][]byte), token: token}
	srv := httptest.NewServer(fs)
	t.Cleanup(srv.Close)
	return fs, srv
}

func TestRemoteRoundTrip(t *testing.T) {
	_, srv := newFakeServer(t, "secret")
	c := NewRemote(srv.URL+"/", WithToken("secret"))
	ctx := context.Background()

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	key := testKey("empty-class")
	if _, err := c.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss before put, got %v", err)
	}
	if err := c.Put(ctx, testEntry("empty-class")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Schema != SchemaVersion || len(got.Findings) != 1 || got.Findings[0].Location.Span.Start.Line != 2 {
		t.Errorf("unexpected entry: %+v", got)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("second Delete() should tolerate missing entry, got %v", err)
	}
	if _, err := c.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected miss after delete, got %v", err)
	}
}

func TestRemoteUnauthorized(t *testing.T) {
	_, srv := newFakeServer(t, "secret")
	c := NewRemote(srv.URL)
	_, err := c.Get(context.Background(), testKey("empty-class"))
	if err == nil || errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected status error, got %v", err)
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("expected status code in error, got %v", err)
	}
}

func TestRemoteSchemaMismatchIsMiss(t *testing.T) {
	fs, srv := newFakeServer(t, "")
	c := NewRemote(srv.URL)
	ctx := context.Background()

	e := testEntry("empty-class")
	if err := c.Put(ctx, e); err != nil {
		t.Fatal(err)
	}
	// Rewrite the stored payload as a future schema version.
	e.Schema = SchemaVersion + 1
	fs.mu.Lock()
	fs.entries[mustHash(t, e.Key)] = mustMarshal(t, e)
	fs.mu.Unlock()

	if _, err := c.Get(ctx, e.Key); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected miss for schema mismatch, got %v", err)
	}
}

func TestMultiTierOverRemote(t *testing.T) {
	_, srv := newFakeServer(t, "")
	remote := NewRemote(srv.URL)
	ctx := context.Background()
	if err := remote.Put(ctx, testEntry("empty-class")); err != nil {
		t.Fatal(err)
	}

	mem := NewMemory()
	mt := NewMultiTier(mem, remote, nil)
	if _, err := mt.Get(ctx, testKey("empty-class")); err != nil {
		t.Fatalf("expected remote hit, got %v", err)
	}
	if _, err := mem.Get(ctx, testKey("empty-class")); err != nil {
		t.Errorf("expected memory tier warmed, got %v", err)
	}
}

func mustMarshal(t *testing.T, e *Entry) []byte {
	t.Helper()
	data, err := msgpack.Marshal(e)
	if err != nil {
		t.Fatal(err)
	}
	return data
}
