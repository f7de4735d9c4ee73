// SPDX-License-Identifier: MPL-2.0

package stage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// Stager resolves file references to local paths.
type Stager struct {
	client      *http.Client
	dir         string
	concurrency int
	logger      *log.Logger

	mu        sync.Mutex
	created   string
	downloads []string
}

// Option configures a Stager.
type Option func(*Stager)

// WithHTTPClient replaces the HTTP client used for downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Stager) { s.client = c }
}

// WithHTTPTimeout bounds each individual download.
func WithHTTPTimeout(d time.Duration) Option {
	return func(s *Stager) { s.client.Timeout = d }
}

// WithDir uses a fixed staging directory instead of a fresh temp
// directory per run. The directory must exist.
func WithDir(dir string) Option {
	return func(s *Stager) { s.dir = dir }
}

// WithConcurrency bounds parallel downloads.
func WithConcurrency(n int) Option {
	return func(s *Stager) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithLogger replaces the stager's logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Stager) { s.logger = l }
}

// New creates a Stager with a 60s per-download timeout and 4 parallel
// downloads unless configured otherwise.
func New(opts ...Option) *Stager {
	s := &Stager{
		client:      &http.Client{Timeout: 60 * time.Second},
		concurrency: 4,
		logger:      log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stage resolves every reference in files to a local path and returns a
// map of logical name to absolute path. The operation is all-or-nothing:
// the first failure aborts remaining downloads, everything the stager
// wrote is removed, and the returned error names the failing reference.
func (s *Stager) Stage(ctx context.Context, files map[string]string) (map[string]string, error) {
	if len(files) == 0 {
		return map[string]string{}, nil
	}

	// Scheme validation happens up front so an unsupported reference
	// fails before any network or filesystem work starts.
	kinds := make(map[string]refKind, len(files))
	for name, uri := range files {
		kind, err := classify(name, uri)
		if err != nil {
			return nil, err
		}
		kinds[name] = kind
	}

	staged := make(map[string]string, len(files))
	var stagedMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for name, uri := range files {
		kind := kinds[name]
		g.Go(func() error {
			var (
				local string
				err   error
			)
			switch kind {
			case refLocal:
				local, err = s.resolveLocal(uri)
			case refHTTP:
				local, err = s.download(gctx, name, uri)
			}
			if err != nil {
				return &Error{Name: name, URI: uri, Cause: err}
			}

			s.logger.Debug("staged file", "name", name, "uri", uri, "path", local)

			stagedMu.Lock()
			staged[name] = local
			stagedMu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.removeStaged()
		return nil, err
	}

	return staged, nil
}

// Cleanup removes the staging directory this run created. Fixed
// directories supplied via WithDir are left alone, downloads into them
// included.
func (s *Stager) Cleanup() error {
	s.mu.Lock()
	dir := s.created
	s.created = ""
	s.downloads = nil
	s.mu.Unlock()

	if dir == "" {
		return nil
	}
	return os.RemoveAll(dir)
}

type refKind int

const (
	refLocal refKind = iota
	refHTTP
)

func classify(name, uri string) (refKind, error) {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Bare paths, including Windows drive letters, resolve locally.
		return refLocal, nil
	}

	switch u.Scheme {
	case "file":
		return refLocal, nil
	case "http", "https":
		return refHTTP, nil
	default:
		return 0, &UnsupportedSchemeError{Name: name, URI: uri, Scheme: u.Scheme}
	}
}

func (s *Stager) resolveLocal(uri string) (string, error) {
	p := strings.TrimPrefix(uri, "file://")

	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory, not a file", abs)
	}

	return abs, nil
}

func (s *Stager) download(ctx context.Context, name, uri string) (string, error) {
	dir, err := s.stagingDir()
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return "", err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	// Each logical name gets its own subdirectory so two references
	// with the same URL basename cannot clobber each other.
	targetDir := filepath.Join(dir, name)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.downloads = append(s.downloads, targetDir)
	s.mu.Unlock()

	target := filepath.Join(targetDir, downloadFileName(name, uri))
	out, err := os.Create(target)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(target)
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}

	return target, nil
}

// stagingDir lazily creates the per-run staging directory. The first
// download wins the race; later calls reuse the same directory.
func (s *Stager) stagingDir() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dir != "" {
		return s.dir, nil
	}
	if s.created != "" {
		return s.created, nil
	}

	dir, err := os.MkdirTemp("", "mrp-staged-*")
	if err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}
	s.created = dir
	return dir, nil
}

// removeStaged undoes the filesystem effects of a failed Stage call. A
// stager-created temp directory is removed whole; downloads into a fixed
// directory are removed individually so the directory itself survives.
func (s *Stager) removeStaged() {
	s.mu.Lock()
	dir := s.created
	downloads := s.downloads
	s.created = ""
	s.downloads = nil
	s.mu.Unlock()

	if dir != "" {
		os.RemoveAll(dir)
		return
	}
	for _, d := range downloads {
		os.RemoveAll(d)
	}
}

// downloadFileName picks a filename for a downloaded reference, keeping
// the URL's basename when it has one and falling back to the logical
// name.
func downloadFileName(name, uri string) string {
	if u, err := url.Parse(uri); err == nil {
		if base := path.Base(u.Path); base != "" && base != "/" && base != "." {
			return base
		}
	}
	return name
}
