package minio

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	qt "github.com/frankban/quicktest"
	"go.uber.org/zap"

	"github.com/seeliang/google-cloud-engineering/config"
)

// fakeS3 answers the handful of requests Storage issues.
type fakeS3 struct {
	mu       sync.Mutex
	buckets  map[string]bool
	objects  map[string][]byte
	failPuts int
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, _ := url.PathUnescape(r.URL.Path)
	switch {
	case r.Method == http.MethodHead:
		if !f.buckets[u[1:]] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut && r.URL.RawQuery == "" && countSlashes(u) == 1:
		f.buckets[u[1:]] = true
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut:
		if f.failPuts > 0 {
			f.failPuts--
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		b, _ := io.ReadAll(r.Body)
		f.objects[u] = b
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func countSlashes(s string) int {
	n := 0
	for _, r := range s {
		if r == '/' {
			n++
		}
	}
	return n
}

func newStorage(c *qt.C, f *fakeS3) *Storage {
	srv := httptest.NewServer(f)
	c.Cleanup(srv.Close)

	host, port, err := net.SplitHostPort(srv.Listener.Addr().String())
	c.Assert(err, qt.IsNil)

	s, err := NewStorage(context.Background(), config.MinioConfig{
		Host:     host,
		Port:     port,
		User:     "minioadmin",
		Password: "minioadmin",
		Bucket:   "vertex-reports",
	}, zap.NewNop())
	c.Assert(err, qt.IsNil)
	s.backoff = 0
	return s
}

func TestStorage(t *testing.T) {
	c := qt.New(t)

	c.Run("creates the bucket and uploads", func(c *qt.C) {
		f := &fakeS3{buckets: map[string]bool{}, objects: map[string][]byte{}}
		s := newStorage(c, f)
		c.Check(f.buckets["vertex-reports"], qt.IsTrue)

		c.Assert(s.Upload(context.Background(), "run-success.json", []byte(`{"ok":true}`)), qt.IsNil)
		c.Check(string(f.objects["/vertex-reports/reports/run-success.json"]), qt.Equals, `{"ok":true}`)
	})

	c.Run("retries failed uploads", func(c *qt.C) {
		f := &fakeS3{buckets: map[string]bool{"vertex-reports": true}, objects: map[string][]byte{}, failPuts: 1}
		s := newStorage(c, f)

		c.Assert(s.Upload(context.Background(), "run.json", []byte(`{}`)), qt.IsNil)
		c.Check(f.objects, qt.HasLen, 1)
	})
}

func TestObjectPath(t *testing.T) {
	c := qt.New(t)
	c.Assert(ObjectPath("a-error-1.json"), qt.Equals, "reports/a-error-1.json")
}
