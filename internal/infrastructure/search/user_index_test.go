package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
)

type recorded struct {
	method string
	path   string
	body   string
}

// fakeCluster answers the few endpoints UserIndex calls and records requests.
type fakeCluster struct {
	mu       sync.Mutex
	requests []recorded
	exists   bool
}

func (f *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recorded{method: r.Method, path: r.URL.Path, body: string(b)})
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodHead:
		if f.exists {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	case r.Method == http.MethodPut && r.URL.Path == "/users":
		_, _ = io.WriteString(w, `{"acknowledged":true}`)
	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/users/_doc/"):
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"result":"created"}`)
	case r.Method == http.MethodDelete && r.URL.Path == "/users/_doc/missing":
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"result":"not_found"}`)
	case r.Method == http.MethodDelete:
		_, _ = io.WriteString(w, `{"result":"deleted"}`)
	case strings.HasSuffix(r.URL.Path, "/_search"):
		_, _ = io.WriteString(w, `{"hits":{"hits":[{"_source":{"id":"u1","email":"a@b.com","firstName":"Paul","lastName":"Forbes","activated":false}}]}}`)
	default:
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"unexpected"}`)
	}
}

func (f *fakeCluster) last() recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newTestIndex(t *testing.T, f *fakeCluster) *UserIndex {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewUserIndex(es, "users")
}

func TestEnsureIndexCreatesMissingIndex(t *testing.T) {
	f := &fakeCluster{}
	x := newTestIndex(t, f)

	require.NoError(t, x.EnsureIndex(context.Background()))
	last := f.last()
	assert.Equal(t, http.MethodPut, last.method)
	assert.Equal(t, "/users", last.path)
	assert.Contains(t, last.body, `"mappings"`)
}

func TestEnsureIndexKeepsExistingIndex(t *testing.T) {
	f := &fakeCluster{exists: true}
	x := newTestIndex(t, f)

	require.NoError(t, x.EnsureIndex(context.Background()))
	assert.Len(t, f.requests, 1)
}

func TestIndexUserOmitsPasswordHash(t *testing.T) {
	f := &fakeCluster{}
	x := newTestIndex(t, f)

	u := &entity.User{ID: "u1", Email: "a@b.com", PasswordHash: "secret-hash", FirstName: "Paul", LastName: "Forbes"}
	require.NoError(t, x.IndexUser(context.Background(), u))

	last := f.last()
	assert.Equal(t, "/users/_doc/u1", last.path)
	assert.NotContains(t, last.body, "secret-hash")

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(last.body), &doc))
	assert.Equal(t, "a@b.com", doc["email"])
}

func TestRemoveUserIgnoresMissingDocument(t *testing.T) {
	f := &fakeCluster{}
	x := newTestIndex(t, f)

	assert.NoError(t, x.RemoveUser(context.Background(), "u1"))
	assert.NoError(t, x.RemoveUser(context.Background(), "missing"))
}

func TestSearchUsers(t *testing.T) {
	f := &fakeCluster{}
	x := newTestIndex(t, f)

	users, err := x.SearchUsers(context.Background(), "paul", 5)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "u1", users[0].ID)
	assert.Equal(t, "Forbes", users[0].LastName)

	last := f.last()
	assert.Equal(t, "/users/_search", last.path)
	assert.Contains(t, last.body, `"multi_match"`)
	assert.Contains(t, last.body, `"size":5`)
}
