// Package hub fetches model weights from the Hugging Face hub into a local
// cache directory shared with other Hugging Face clients. Cached files are
// reused without network access.
package hub

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	hfhub "github.com/gomlx/go-huggingface/hub"
	"github.com/rs/zerolog"

	"gemmad/internal/common/fsutil"
)

// Sentinel errors returned by Fetch. Check with errors.Is.
var (
	// ErrUnauthorized means the hub refused the credential, or none was given for gated weights.
	ErrUnauthorized = errors.New("hub: unauthorized (set HF_TOKEN and accept the model license)")
	// ErrNotFound means the repository, revision or file does not exist.
	ErrNotFound = errors.New("hub: not found")
	// ErrOffline means the file is not cached and network access is disabled.
	ErrOffline = errors.New("hub: offline and file not in cache")
)

// Request names one file to download.
type Request struct {
	Repo     string
	Revision string
	File     string
	Token    string
	CacheDir string
}

// DownloadFunc downloads a file into the cache and returns its local path.
// The default goes through go-huggingface.
type DownloadFunc func(ctx context.Context, r Request) (string, error)

// Client downloads files from the hub.
type Client struct {
	token    string
	cacheDir string
	offline  bool
	download DownloadFunc
	log      zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer credential used for gated repositories.
func WithToken(tok string) Option { return func(c *Client) { c.token = strings.TrimSpace(tok) } }

// WithOffline disables network access; only cached files are served.
func WithOffline(off bool) Option { return func(c *Client) { c.offline = off } }

// WithDownloader replaces the network download.
func WithDownloader(d DownloadFunc) Option {
	return func(c *Client) {
		if d != nil {
			c.download = d
		}
	}
}

// WithLogger installs a structured logger.
func WithLogger(l zerolog.Logger) Option { return func(c *Client) { c.log = l } }

// New constructs a Client caching into cacheDir ('~' is expanded).
func New(cacheDir string, opts ...Option) (*Client, error) {
	dir, err := fsutil.ExpandHome(strings.TrimSpace(cacheDir))
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return nil, errors.New("hub: cache dir is required")
	}
	c := &Client{
		cacheDir: dir,
		download: hfDownload,
		log:      zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// HasToken reports whether a credential is configured.
func (c *Client) HasToken() bool { return c.token != "" }

// CacheDir returns the expanded cache directory.
func (c *Client) CacheDir() string { return c.cacheDir }

// RepoDir returns the cache directory of a model repository:
// <cache>/models--<org>--<name>.
func RepoDir(cacheDir, repo string) string {
	return filepath.Join(cacheDir, "models--"+strings.ReplaceAll(repo, "/", "--"))
}

var commitRe = regexp.MustCompile(`^[0-9a-f]{40}$`)

// Cached returns the local path of file when the cache already holds it.
// A branch or tag revision is resolved through refs/<revision>; a commit
// hash addresses its snapshot directly.
func (c *Client) Cached(repo, revision, file string) (string, bool) {
	if revision == "" {
		revision = "main"
	}
	dir := RepoDir(c.cacheDir, repo)
	commit := revision
	if !commitRe.MatchString(revision) {
		b, err := os.ReadFile(filepath.Join(dir, "refs", filepath.FromSlash(revision)))
		if err != nil {
			return "", false
		}
		commit = strings.TrimSpace(string(b))
		if commit == "" {
			return "", false
		}
	}
	p := filepath.Join(dir, "snapshots", commit, filepath.FromSlash(file))
	if !fsutil.NonEmptyFile(p) {
		return "", false
	}
	return p, true
}

// Fetch returns the local path of file, downloading it first when it is not
// already cached.
func (c *Client) Fetch(ctx context.Context, repo, revision, file string) (string, error) {
	if err := validateRef(repo, file); err != nil {
		return "", err
	}
	if revision == "" {
		revision = "main"
	}
	if p, ok := c.Cached(repo, revision, file); ok {
		c.log.Info().Str("repo", repo).Str("file", file).Str("path", p).Msg("hub cache hit")
		return p, nil
	}
	if c.offline {
		return "", fmt.Errorf("%w: %s/%s", ErrOffline, repo, file)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	start := time.Now()
	c.log.Info().Str("repo", repo).Str("file", file).Str("revision", revision).Msg("hub download start")
	req := Request{Repo: repo, Revision: revision, File: file, Token: c.token, CacheDir: c.cacheDir}
	type result struct {
		path string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		p, err := c.download(ctx, req)
		done <- result{p, err}
	}()
	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		// The library download is not cancelable; it finishes in the background.
		return "", ctx.Err()
	}
	if res.err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", classify(res.err, repo, revision, file)
	}
	if !fsutil.NonEmptyFile(res.path) {
		return "", fmt.Errorf("hub: download of %s/%s left no file at %q", repo, file, res.path)
	}
	c.log.Info().Str("repo", repo).Str("file", file).Str("path", res.path).Dur("dur", time.Since(start)).Msg("hub download done")
	return res.path, nil
}

// hfDownload fetches through go-huggingface, which keeps the blobs, refs and
// snapshots layout of the Python client.
func hfDownload(_ context.Context, r Request) (string, error) {
	repo := hfhub.New(r.Repo).WithRevision(r.Revision).WithCacheDir(r.CacheDir)
	if r.Token != "" {
		repo = repo.WithAuth(r.Token)
	}
	return repo.DownloadFile(r.File)
}

// classify maps hub failures onto the package sentinels. The library reports
// HTTP status in its error text.
func classify(err error, repo, revision, file string) error {
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNotFound) {
		return err
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "401") || strings.Contains(msg, "403") ||
		strings.Contains(msg, "unauthorized") || strings.Contains(msg, "forbidden"):
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	case strings.Contains(msg, "404") || strings.Contains(msg, "not found"):
		return fmt.Errorf("%w: %s/%s@%s: %v", ErrNotFound, repo, file, revision, err)
	}
	return fmt.Errorf("hub: download %s/%s: %w", repo, file, err)
}

func validateRef(repo, file string) error {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("hub: repo must look like org/name, got %q", repo)
	}
	if file == "" || strings.HasPrefix(file, "/") {
		return fmt.Errorf("hub: invalid file %q", file)
	}
	for _, seg := range strings.Split(file, "/") {
		if seg == ".." {
			return fmt.Errorf("hub: invalid file %q", file)
		}
	}
	return nil
}
