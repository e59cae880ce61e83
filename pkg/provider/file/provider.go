// Package file implements the provider interfaces for a bucket kept as a
// directory on local disk.
//
// A credentials file whose endpoint_url is file:///some/dir stores bucket
// "photos" under /some/dir/photos. Keys map to relative paths under that
// directory. This is useful for offline archives and for previewing a site
// before publishing it to a real store.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/3leaps/cloudphoto/pkg/provider"
)

// Provider implements provider.Provider for local filesystem paths.
type Provider struct {
	root   string
	bucket string
}

// Ensure Provider implements provider capability interfaces.
var (
	_ provider.Provider        = (*Provider)(nil)
	_ provider.DelimiterLister = (*Provider)(nil)
	_ provider.ObjectGetter    = (*Provider)(nil)
	_ provider.ObjectPutter    = (*Provider)(nil)
	_ provider.ObjectDeleter   = (*Provider)(nil)
	_ provider.FileUploader    = (*Provider)(nil)
	_ provider.FileDownloader  = (*Provider)(nil)
	_ provider.BucketManager   = (*Provider)(nil)
	_ provider.BucketPublisher = (*Provider)(nil)
	_ provider.ObjectURLer     = (*Provider)(nil)
)

// Config configures a file provider.
type Config struct {
	// Root is the directory holding bucket directories.
	Root string

	// Bucket is the bucket (subdirectory) name.
	Bucket string
}

// Validate checks that required configuration is present.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Root) == "" {
		return fmt.Errorf("root dir is required")
	}
	if strings.TrimSpace(c.Bucket) == "" || strings.ContainsAny(c.Bucket, `/\`) || c.Bucket == "." || c.Bucket == ".." {
		return fmt.Errorf("invalid bucket name %q", c.Bucket)
	}
	return nil
}

// WebsiteConfig is the static website configuration recorded by ConfigureWebsite.
type WebsiteConfig struct {
	IndexDocument string `json:"index_document"`
	ErrorDocument string `json:"error_document"`
}

// New creates a file provider. The bucket directory is not created.
func New(cfg Config) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Provider{root: filepath.Clean(cfg.Root), bucket: cfg.Bucket}, nil
}

// RootFromEndpoint extracts the directory from a file:// endpoint URL.
// ok is false when endpoint does not use the file scheme.
func RootFromEndpoint(endpoint string) (root string, ok bool) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme != "file" {
		return "", false
	}
	if u.Path == "" {
		return "", false
	}
	return filepath.FromSlash(u.Path), true
}

// Bucket returns the bucket name.
func (p *Provider) Bucket() string { return p.bucket }

// Close releases any resources held by the provider.
func (p *Provider) Close() error { return nil }

// Dir returns the bucket directory.
func (p *Provider) Dir() string {
	return filepath.Join(p.root, p.bucket)
}

func (p *Provider) List(ctx context.Context, opts provider.ListOptions) (*provider.ListResult, error) {
	page, err := p.ListWithDelimiter(ctx, provider.ListWithDelimiterOptions{
		Prefix:            opts.Prefix,
		ContinuationToken: opts.ContinuationToken,
		MaxKeys:           opts.MaxKeys,
	})
	if err != nil {
		return nil, err
	}
	return &provider.ListResult{Objects: page.Objects, ContinuationToken: page.ContinuationToken, IsTruncated: page.IsTruncated}, nil
}

// ListWithDelimiter mirrors S3 semantics: keys are sorted, and keys containing
// the delimiter after the prefix are rolled up into common prefixes.
// Directories themselves never appear; a prefix exists only while it holds a file.
func (p *Provider) ListWithDelimiter(ctx context.Context, opts provider.ListWithDelimiterOptions) (*provider.ListWithDelimiterResult, error) {
	_ = ctx
	if err := p.HeadBucket(ctx); err != nil {
		return nil, err
	}

	maxKeys := opts.MaxKeys
	if maxKeys <= 0 {
		maxKeys = 1000
	}

	keys, err := p.collectKeys()
	if err != nil {
		return nil, p.wrapError("List", opts.Prefix, err)
	}

	// Each entry is either a key or a rolled-up common prefix, in key order.
	type entry struct {
		key      string
		isPrefix bool
	}
	var entries []entry
	seen := map[string]bool{}
	for _, k := range keys {
		if !strings.HasPrefix(k, opts.Prefix) {
			continue
		}
		if opts.Delimiter != "" {
			rest := k[len(opts.Prefix):]
			if i := strings.Index(rest, opts.Delimiter); i >= 0 {
				cp := opts.Prefix + rest[:i+len(opts.Delimiter)]
				if !seen[cp] {
					seen[cp] = true
					entries = append(entries, entry{key: cp, isPrefix: true})
				}
				continue
			}
		}
		entries = append(entries, entry{key: k})
	}

	start := 0
	if opts.ContinuationToken != "" {
		for start < len(entries) && entries[start].key <= opts.ContinuationToken {
			start++
		}
	}
	end := start + maxKeys
	if end > len(entries) {
		end = len(entries)
	}

	res := &provider.ListWithDelimiterResult{}
	for _, e := range entries[start:end] {
		if e.isPrefix {
			res.CommonPrefixes = append(res.CommonPrefixes, e.key)
			continue
		}
		st, err := os.Stat(p.fullPath(e.key))
		if err != nil || st.IsDir() {
			continue
		}
		res.Objects = append(res.Objects, provider.ObjectSummary{Key: e.key, Size: st.Size(), LastModified: st.ModTime()})
	}
	if end < len(entries) {
		res.IsTruncated = true
		res.ContinuationToken = entries[end-1].key
	}
	return res, nil
}

func (p *Provider) Head(ctx context.Context, key string) (*provider.ObjectMeta, error) {
	_ = ctx
	full, err := p.keyPath(key)
	if err != nil {
		return nil, p.wrapError("Head", key, err)
	}
	st, err := os.Stat(full)
	if err != nil {
		return nil, p.wrapError("Head", key, err)
	}
	if st.IsDir() {
		return nil, p.wrapError("Head", key, fs.ErrNotExist)
	}

	return &provider.ObjectMeta{
		ObjectSummary: provider.ObjectSummary{Key: key, Size: st.Size(), LastModified: st.ModTime()},
	}, nil
}

func (p *Provider) GetObject(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	_ = ctx
	full, err := p.keyPath(key)
	if err != nil {
		return nil, 0, p.wrapError("GetObject", key, err)
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, 0, p.wrapError("GetObject", key, err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, p.wrapError("GetObject", key, err)
	}
	return f, st.Size(), nil
}

// PutObject writes body to key atomically via a temp file and rename.
func (p *Provider) PutObject(ctx context.Context, key string, body io.Reader, contentLength int64, contentType string) error {
	_, _, _ = ctx, contentLength, contentType
	if err := p.HeadBucket(ctx); err != nil {
		return err
	}
	full, err := p.keyPath(key)
	if err != nil {
		return p.wrapError("PutObject", key, err)
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return p.wrapError("PutObject", key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".cloudphoto-put-*")
	if err != nil {
		return p.wrapError("PutObject", key, err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := io.Copy(tmp, body); err != nil {
		return p.wrapError("PutObject", key, err)
	}
	if err := tmp.Close(); err != nil {
		return p.wrapError("PutObject", key, err)
	}
	if err := os.Rename(tmpName, full); err != nil {
		return p.wrapError("PutObject", key, err)
	}
	return nil
}

// DeleteObject removes key. Deleting a missing key succeeds, as on S3.
func (p *Provider) DeleteObject(ctx context.Context, key string) error {
	_ = ctx
	full, err := p.keyPath(key)
	if err != nil {
		return p.wrapError("DeleteObject", key, err)
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return p.wrapError("DeleteObject", key, err)
	}
	return nil
}

func (p *Provider) UploadFile(ctx context.Context, localPath, key string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return &provider.ProviderError{Op: "UploadFile", Provider: provider.ProviderFile, Bucket: p.bucket, Key: key, Err: err}
	}
	defer func() { _ = f.Close() }()
	return p.PutObject(ctx, key, f, -1, "")
}

func (p *Provider) DownloadFile(ctx context.Context, key, localPath string) error {
	body, _, err := p.GetObject(ctx, key)
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()

	out, err := os.Create(localPath)
	if err != nil {
		return &provider.ProviderError{Op: "DownloadFile", Provider: provider.ProviderFile, Bucket: p.bucket, Key: key, Err: err}
	}
	_, err = io.Copy(out, body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(localPath)
		return &provider.ProviderError{Op: "DownloadFile", Provider: provider.ProviderFile, Bucket: p.bucket, Key: key, Err: err}
	}
	return nil
}

func (p *Provider) HeadBucket(ctx context.Context) error {
	_ = ctx
	st, err := os.Stat(p.Dir())
	if err != nil || !st.IsDir() {
		return &provider.ProviderError{Op: "HeadBucket", Provider: provider.ProviderFile, Bucket: p.bucket, Err: provider.ErrBucketNotFound}
	}
	return nil
}

func (p *Provider) CreateBucket(ctx context.Context) error {
	_ = ctx
	if err := os.MkdirAll(p.Dir(), 0o755); err != nil {
		return p.wrapError("CreateBucket", "", err)
	}
	return nil
}

// SetPublicRead is a no-op: local directories carry no object ACLs.
func (p *Provider) SetPublicRead(ctx context.Context) error {
	return p.HeadBucket(ctx)
}

// ConfigureWebsite records the documents next to the bucket directory.
func (p *Provider) ConfigureWebsite(ctx context.Context, indexDocument, errorDocument string) error {
	if err := p.HeadBucket(ctx); err != nil {
		return err
	}
	data, err := json.Marshal(WebsiteConfig{IndexDocument: indexDocument, ErrorDocument: errorDocument})
	if err != nil {
		return p.wrapError("ConfigureWebsite", "", err)
	}
	if err := os.WriteFile(p.websitePath(), data, 0o644); err != nil {
		return p.wrapError("ConfigureWebsite", "", err)
	}
	return nil
}

// Website returns the configuration recorded by ConfigureWebsite.
func (p *Provider) Website() (*WebsiteConfig, error) {
	data, err := os.ReadFile(p.websitePath())
	if err != nil {
		return nil, p.wrapError("Website", "", err)
	}
	var cfg WebsiteConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, p.wrapError("Website", "", err)
	}
	return &cfg, nil
}

// ObjectURL returns a file:// URL for key.
func (p *Provider) ObjectURL(key string) string {
	return "file://" + provider.EscapePath(filepath.ToSlash(p.Dir())) + "/" + provider.EscapePath(key)
}

// WebsiteURL returns a file:// URL for the bucket's index document.
func (p *Provider) WebsiteURL() string {
	index := "index.html"
	if cfg, err := p.Website(); err == nil && cfg.IndexDocument != "" {
		index = cfg.IndexDocument
	}
	return p.ObjectURL(index)
}

func (p *Provider) websitePath() string {
	return filepath.Join(p.root, "."+p.bucket+".website.json")
}

func (p *Provider) fullPath(key string) string {
	return filepath.Join(p.Dir(), filepath.FromSlash(key))
}

// keyPath maps key to a path under the bucket directory, rejecting traversal.
func (p *Provider) keyPath(key string) (string, error) {
	clean := filepath.Clean("/" + strings.TrimPrefix(key, "/"))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("invalid key path %q", key)
	}
	return filepath.Join(p.Dir(), filepath.FromSlash(clean)), nil
}

// collectKeys returns every file under the bucket directory as a sorted key list.
func (p *Provider) collectKeys() ([]string, error) {
	base := p.Dir()
	var keys []string
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".cloudphoto-put-") {
			return nil
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

func (p *Provider) wrapError(op, key string, err error) error {
	wrapped := &provider.ProviderError{Op: op, Provider: provider.ProviderFile, Bucket: p.bucket, Key: key, Err: err}
	if err == nil {
		wrapped.Err = fmt.Errorf("unknown error")
	}
	// Normalize common filesystem errors to provider sentinels.
	if os.IsNotExist(err) {
		wrapped.Err = provider.ErrNotFound
	}
	if os.IsPermission(err) {
		wrapped.Err = provider.ErrAccessDenied
	}
	return wrapped
}
