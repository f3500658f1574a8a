package search

import (
	"bufio"
	"bytes"
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

	"github.com/oksasatya/course-admin/pkg/helpers"
)

type esRequest struct {
	Method string
	Path   string
	Body   string
}

func fakeES(t *testing.T, respond func(r *http.Request) (int, string)) (*Index, *[]esRequest) {
	t.Helper()
	var mu sync.Mutex
	var seen []esRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		seen = append(seen, esRequest{Method: r.Method, Path: r.URL.Path, Body: string(b)})
		mu.Unlock()
		r.Body = io.NopCloser(bytes.NewReader(b))
		status, body := respond(r)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewIndex(es, "course-admin", helpers.NopLogger()), &seen
}

func TestIndexAndRemove(t *testing.T) {
	idx, seen := fakeES(t, func(r *http.Request) (int, string) {
		if r.Method == http.MethodDelete {
			return http.StatusNotFound, `{"result":"not_found"}`
		}
		return http.StatusCreated, `{"result":"created"}`
	})

	require.NoError(t, idx.Index(context.Background(), "courses", "c1", map[string]any{"title": map[string]string{"en": "Go"}}))
	require.NoError(t, idx.Remove(context.Background(), "courses", "c1"))

	require.Len(t, *seen, 2)
	assert.Equal(t, "/course-admin-courses/_doc/c1", (*seen)[0].Path)
	assert.JSONEq(t, `{"title":{"en":"Go"}}`, (*seen)[0].Body)
	assert.Equal(t, http.MethodDelete, (*seen)[1].Method)
}

func TestIndexBatchAttemptsEveryDocument(t *testing.T) {
	idx, seen := fakeES(t, bulkAnswer)

	err := idx.IndexBatch(context.Background(), "users", map[string]any{
		"u1":  map[string]string{"name": "Amal"},
		"bad": map[string]string{"name": "Broken"},
		"u3":  map[string]string{"name": "Cyd"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 documents failed")

	require.Len(t, *seen, 1)
	assert.Equal(t, "/course-admin-users/_bulk", (*seen)[0].Path)
	assert.Equal(t, 6, strings.Count((*seen)[0].Body, "\n"))
}

func TestIndexBatchAllAccepted(t *testing.T) {
	idx, seen := fakeES(t, bulkAnswer)

	require.NoError(t, idx.IndexBatch(context.Background(), "courses", map[string]any{"c1": map[string]string{}}))
	require.NoError(t, idx.IndexBatch(context.Background(), "courses", nil))
	assert.Len(t, *seen, 1)
}

func TestSearchReturnsIDs(t *testing.T) {
	idx, seen := fakeES(t, func(*http.Request) (int, string) {
		return http.StatusOK, `{"hits":{"hits":[{"_id":"u2"},{"_id":"u1"}]}}`
	})

	ids, err := idx.Search(context.Background(), "users", "amal", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"u2", "u1"}, ids)

	req := (*seen)[0]
	assert.True(t, strings.HasPrefix(req.Path, "/course-admin-users/_search"))
	var q struct {
		Size  int `json:"size"`
		Query struct {
			MultiMatch struct {
				Query  string   `json:"query"`
				Fields []string `json:"fields"`
			} `json:"multi_match"`
		} `json:"query"`
	}
	require.NoError(t, json.Unmarshal([]byte(req.Body), &q))
	assert.Equal(t, 10, q.Size)
	assert.Equal(t, "amal", q.Query.MultiMatch.Query)
	assert.Contains(t, q.Query.MultiMatch.Fields, "email^2")
}

func TestSearchErrorStatus(t *testing.T) {
	idx, _ := fakeES(t, func(*http.Request) (int, string) {
		return http.StatusServiceUnavailable, `{"error":"unavailable"}`
	})
	_, err := idx.Search(context.Background(), "courses", "go", 5)
	assert.Error(t, err)
}


// bulkAnswer answers each action line of a bulk request with an index
// result, rejecting documents whose id is "bad".
func bulkAnswer(r *http.Request) (int, string) {
	var items []map[string]any
	errs := false
	lines := bufio.NewScanner(r.Body)
	for lines.Scan() {
		var action map[string]struct {
			ID string `json:"_id"`
		}
		if json.Unmarshal(lines.Bytes(), &action) != nil {
			continue
		}
		meta, ok := action["index"]
		if !ok {
			continue
		}
		item := map[string]any{"_id": meta.ID, "status": 201, "result": "created"}
		if meta.ID == "bad" {
			errs = true
			item = map[string]any{"_id": meta.ID, "status": 400, "error": map[string]string{"type": "mapper_parsing_exception", "reason": "bad name"}}
		}
		items = append(items, map[string]any{"index": item})
		lines.Scan() // document line
	}
	out, _ := json.Marshal(map[string]any{"took": 1, "errors": errs, "items": items})
	return http.StatusOK, string(out)
}
