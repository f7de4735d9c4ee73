// SPDX-License-Identifier: MPL-2.0

package stage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"mrp-cli/internal/testutil"
)

func TestStageLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weights.bin")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := New()
	staged, err := s.Stage(context.Background(), map[string]string{"weights": path})
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	t.Cleanup(func() { s.Cleanup() })

	if staged["weights"] != path {
		t.Errorf("staged path = %q, want %q", staged["weights"], path)
	}
	if !filepath.IsAbs(staged["weights"]) {
		t.Errorf("staged path %q should be absolute", staged["weights"])
	}
}

func TestStageFileURI(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "params.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := New()
	staged, err := s.Stage(context.Background(), map[string]string{"params": "file://" + path})
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}

	if staged["params"] != path {
		t.Errorf("staged path = %q, want %q", staged["params"], path)
	}
}

func TestStageHTTPDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("remote content"))
	}))
	defer srv.Close()

	s := New()
	t.Cleanup(func() { s.Cleanup() })

	staged, err := s.Stage(context.Background(), map[string]string{
		"remote": srv.URL + "/data/model.bin",
	})
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}

	content, err := os.ReadFile(staged["remote"])
	if err != nil {
		t.Fatalf("reading staged file: %v", err)
	}
	if string(content) != "remote content" {
		t.Errorf("staged content = %q, want %q", content, "remote content")
	}
	if filepath.Base(staged["remote"]) != "model.bin" {
		t.Errorf("staged filename = %q, want URL basename", filepath.Base(staged["remote"]))
	}
}

func TestStageUnsupportedSchemeFailsFast(t *testing.T) {
	requested := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = true
	}))
	defer srv.Close()

	s := New()
	_, err := s.Stage(context.Background(), map[string]string{
		"ok":    srv.URL + "/a",
		"cloud": "s3://bucket/key",
	})

	var unsupported *UnsupportedSchemeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("error = %v, want UnsupportedSchemeError", err)
	}
	if unsupported.Name != "cloud" || unsupported.Scheme != "s3" {
		t.Errorf("unexpected error detail: %+v", unsupported)
	}
	if requested {
		t.Error("no download should start when a scheme is unsupported")
	}
}

func TestStageAllOrNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	s := New()
	staged, err := s.Stage(context.Background(), map[string]string{
		"good": srv.URL + "/good",
		"bad":  srv.URL + "/missing",
	})

	if staged != nil {
		t.Errorf("staged = %v, want nil on partial failure", staged)
	}

	var stageErr *Error
	if !errors.As(err, &stageErr) {
		t.Fatalf("error = %v, want stage.Error", err)
	}
	if stageErr.Name != "bad" {
		t.Errorf("failing reference = %q, want %q", stageErr.Name, "bad")
	}

	s.mu.Lock()
	created := s.created
	s.mu.Unlock()
	if created != "" {
		t.Error("staging directory should be removed after a failure")
	}
}

func TestStageFixedDirPartialFailureRemovesDownloads(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	s := New(WithDir(dir))
	_, err := s.Stage(context.Background(), map[string]string{
		"good": srv.URL + "/good",
		"bad":  srv.URL + "/missing",
	})
	if err == nil {
		t.Fatal("Stage() should fail on the missing reference")
	}

	if _, err := os.Stat(filepath.Join(dir, "good")); !os.IsNotExist(err) {
		t.Error("the completed download should be removed from the fixed directory")
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("the fixed directory itself must survive: %v", err)
	}
}

func TestStageRelativePathResolvesAgainstWorkingDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "local.bin"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(testutil.MustChdir(t, dir))

	staged, err := New().Stage(context.Background(), map[string]string{"local": "local.bin"})
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	if staged["local"] != filepath.Join(dir, "local.bin") {
		t.Errorf("staged path = %q, want absolutized against the working dir", staged["local"])
	}
}

func TestStageMissingLocalFile(t *testing.T) {
	s := New()
	_, err := s.Stage(context.Background(), map[string]string{
		"absent": filepath.Join(t.TempDir(), "nope.bin"),
	})

	var stageErr *Error
	if !errors.As(err, &stageErr) {
		t.Fatalf("error = %v, want stage.Error", err)
	}
	if stageErr.Name != "absent" {
		t.Errorf("failing reference = %q, want %q", stageErr.Name, "absent")
	}
}

func TestStageEmptyMap(t *testing.T) {
	staged, err := New().Stage(context.Background(), nil)
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	if len(staged) != 0 {
		t.Errorf("staged = %v, want empty", staged)
	}
}

func TestStageBasenameCollision(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.URL.Path))
	}))
	defer srv.Close()

	s := New()
	t.Cleanup(func() { s.Cleanup() })

	staged, err := s.Stage(context.Background(), map[string]string{
		"a": srv.URL + "/x/data.bin",
		"b": srv.URL + "/y/data.bin",
	})
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	if staged["a"] == staged["b"] {
		t.Errorf("references with the same basename staged to the same path: %q", staged["a"])
	}
}
