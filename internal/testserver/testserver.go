// Package testserver runs the reference backend on a throwaway SQLite
// database for tests.
package testserver

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/julianstephens/coffeematch/internal/api"
	"github.com/julianstephens/coffeematch/internal/constants"
	"github.com/julianstephens/coffeematch/internal/server"
	"github.com/julianstephens/coffeematch/internal/storage"
)

type Env struct {
	Store  *storage.Store
	Server *httptest.Server
	// BaseURL includes the API prefix.
	BaseURL string
	Client  *api.Client
}

// New starts a migrated backend that is torn down with the test.
func New(t testing.TB) *Env {
	t.Helper()
	ctx := context.Background()

	store, err := storage.Open(ctx, filepath.Join(t.TempDir(), "server.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if _, err := store.Migrate(ctx); err != nil {
		store.Close()
		t.Fatalf("failed to migrate store: %v", err)
	}

	srv := httptest.NewServer(server.New(store, server.Options{}))
	t.Cleanup(func() {
		srv.Close()
		store.Close()
	})

	base := srv.URL + constants.APIPrefix
	return &Env{
		Store:   store,
		Server:  srv,
		BaseURL: base,
		Client:  api.NewHTTP(base),
	}
}
