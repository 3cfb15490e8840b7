//go:build integration

// Package integration exercises the profile store and the management API
// client together, against an in-process fake Outline server.
package integration

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/xabinapal/outlinectl/internal/config"
	"github.com/xabinapal/outlinectl/internal/outline"
)

// fakeServer is a stateful fake of the Outline management API.
type fakeServer struct {
	mu     sync.Mutex
	nextID int
	keys   map[string]map[string]any
}

func newFakeServer() *fakeServer {
	return &fakeServer{nextID: 1, keys: map[string]map[string]any{}}
}

func (s *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/")
	parts := strings.Split(path, "/")

	switch {
	case r.Method == http.MethodGet && path == "access-keys":
		list := make([]map[string]any, 0, len(s.keys))
		for _, k := range s.keys {
			list = append(list, k)
		}
		json.NewEncoder(w).Encode(map[string]any{"accessKeys": list})

	case r.Method == http.MethodGet && path == "metrics/transfer":
		json.NewEncoder(w).Encode(map[string]any{
			"bytesTransferredByUserId": map[string]int64{"1": 5242880},
		})

	case r.Method == http.MethodPost && path == "access-keys":
		id := strconv.Itoa(s.nextID)
		s.nextID++
		key := map[string]any{
			"id":        id,
			"name":      "",
			"accessUrl": "ss://secret@198.51.100.7:12345/?outline=1",
		}
		s.keys[id] = key
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(key)

	case r.Method == http.MethodPut && len(parts) == 3 && parts[2] == "name":
		var body struct {
			Name string `json:"name"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if key, ok := s.keys[parts[1]]; ok {
			key["name"] = body.Name
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusNotFound)

	case r.Method == http.MethodPut && len(parts) == 3 && parts[2] == "data-limit":
		var body struct {
			Limit struct {
				Bytes int64 `json:"bytes"`
			} `json:"limit"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if key, ok := s.keys[parts[1]]; ok {
			key["dataLimit"] = map[string]int64{"bytes": body.Limit.Bytes}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusNotFound)

	case r.Method == http.MethodDelete && len(parts) == 3 && parts[2] == "data-limit":
		if key, ok := s.keys[parts[1]]; ok {
			delete(key, "dataLimit")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusNotFound)

	case r.Method == http.MethodDelete && len(parts) == 2:
		if _, ok := s.keys[parts[1]]; ok {
			delete(s.keys, parts[1])
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusNotFound)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestKeyLifecycle(t *testing.T) {
	srv := httptest.NewTLSServer(newFakeServer())
	defer srv.Close()

	sum := sha256.Sum256(srv.Certificate().Raw)
	fingerprint := hex.EncodeToString(sum[:])

	// Store the credentials through the profile store, then read them back
	// the way the CLI does.
	dir := t.TempDir()
	t.Setenv("OUTLINE_CONFIG_DIR", dir)
	store, err := config.LoadFrom(filepath.Join(dir, config.ConfigFileName))
	if err != nil {
		t.Fatal(err)
	}
	store.Set("default", srv.URL, fingerprint)
	if err := store.Save(); err != nil {
		t.Fatal(err)
	}

	loaded, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	prof, err := loaded.Get("default")
	if err != nil {
		t.Fatal(err)
	}

	client, err := outline.NewClient(prof.APIURL, prof.CertSHA256)
	if err != nil {
		t.Fatalf("NewClient() failed: %v", err)
	}

	ctx := context.Background()

	created, err := client.CreateKey(ctx, "laptop")
	if err != nil {
		t.Fatalf("CreateKey() failed: %v", err)
	}
	if created.Name != "laptop" {
		t.Errorf("unexpected created key %+v", created)
	}

	id, _ := strconv.Atoi(created.ID)
	if err := client.RenameKey(ctx, id, "Work iPhone"); err != nil {
		t.Fatalf("RenameKey() failed: %v", err)
	}
	if err := client.SetDataLimit(ctx, id, 10485760); err != nil {
		t.Fatalf("SetDataLimit() failed: %v", err)
	}

	keys, err := client.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys() failed: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("expected 1 key, got %d", len(keys))
	}
	if keys[0].Name != "Work iPhone" || keys[0].DataLimitBytes != 10485760 {
		t.Errorf("unexpected key state %+v", keys[0])
	}
	if keys[0].UsedBytes != 5242880 {
		t.Errorf("expected merged usage 5242880, got %d", keys[0].UsedBytes)
	}

	if err := client.ClearDataLimit(ctx, id); err != nil {
		t.Fatalf("ClearDataLimit() failed: %v", err)
	}
	if err := client.DeleteKey(ctx, id); err != nil {
		t.Fatalf("DeleteKey() failed: %v", err)
	}

	keys, err = client.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys() after delete failed: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("expected no keys after delete, got %d", len(keys))
	}
}
