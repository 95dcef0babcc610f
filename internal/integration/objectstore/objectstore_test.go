package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/workplan/internal/core/mirror"
)

// fakeBucket answers HEAD and PUT for a single bucket.
type fakeBucket struct {
	mu      sync.Mutex
	objects map[string]string // key -> etag
	heads   int
	puts    []*http.Request
	// afterHead runs once a HEAD has been answered.
	afterHead func(key string)
}

func (f *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.TrimPrefix(r.URL.Path, "/plans/")
	switch r.Method {
	case http.MethodHead:
		f.heads++
		etag, ok := f.objects[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("ETag", `"`+etag+`"`)
		w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Length", "3")
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		if f.afterHead != nil {
			f.afterHead(key)
		}
	case http.MethodPut:
		_, _ = io.Copy(io.Discard, r.Body)
		f.puts = append(f.puts, r)
		if match := r.Header.Get("If-Match"); match != "" && match != `"`+f.objects[key]+`"` {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusPreconditionFailed)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>`+
				`<Error><Code>PreconditionFailed</Code><Message>At least one of the pre-conditions you specified did not hold</Message></Error>`)
			return
		}
		etag := fmt.Sprintf("etag%d", len(f.puts))
		f.objects[key] = etag
		w.Header().Set("ETag", `"`+etag+`"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestUpsert_NotConfigured(t *testing.T) {
	m, err := New(Config{Bucket: "plans"})
	require.NoError(t, err)

	_, err = m.Upsert(context.Background(), []byte("x"), "a.txt")
	assert.ErrorIs(t, err, mirror.ErrNotConfigured)
}

func TestUpsert_CreateThenUpdate(t *testing.T) {
	fake := &fakeBucket{objects: map[string]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	m, err := New(Config{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		Bucket:    "plans",
		AccessKey: "access",
		SecretKey: "secret",
		Prefix:    "/workplans/",
	})
	require.NoError(t, err)

	first, err := m.Upsert(context.Background(), []byte("one"), "generated_reports/a.md")
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, "workplans/generated_reports/a.md", first.Path)
	assert.Equal(t, "etag1", first.Revision)

	second, err := m.Upsert(context.Background(), []byte("two"), "generated_reports/a.md")
	require.NoError(t, err)
	assert.False(t, second.Created)

	require.Len(t, fake.puts, 2)
	assert.Equal(t, 2, fake.heads)
	assert.Empty(t, fake.puts[0].Header.Get("If-Match"))
	assert.Equal(t, `"etag1"`, fake.puts[1].Header.Get("If-Match"))
}

func TestUpsert_ConcurrentChangeFails(t *testing.T) {
	fake := &fakeBucket{objects: map[string]string{"a.md": "etag0"}}
	fake.afterHead = func(key string) { fake.objects[key] = "other-writer" }
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	m, err := New(Config{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		Bucket:    "plans",
		AccessKey: "access",
		SecretKey: "secret",
	})
	require.NoError(t, err)

	_, err = m.Upsert(context.Background(), []byte("mine"), "a.md")
	require.ErrorIs(t, err, mirror.ErrRemoteWriteFailed)

	var serr *mirror.SyncError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusPreconditionFailed, serr.Status)
	assert.Equal(t, "other-writer", fake.objects["a.md"])
}
