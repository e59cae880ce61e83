package site

import (
	"bytes"
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/3leaps/cloudphoto/pkg/archive"
	"github.com/3leaps/cloudphoto/pkg/provider"
)

// DefaultWebsiteDomain is the static website domain of Yandex Object Storage.
const DefaultWebsiteDomain = "website.yandexcloud.net"

const htmlContentType = "text/html; charset=utf-8"

// Generator publishes an archive's gallery site into its own bucket.
type Generator struct {
	archive *archive.Archive
	domain  string
	log     *zap.Logger
}

// Options configures a Generator.
type Options struct {
	// WebsiteDomain is appended to the bucket name to form the site URL.
	// Defaults to DefaultWebsiteDomain.
	WebsiteDomain string

	// Logger receives per-step diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger
}

// NewGenerator creates a Generator for a.
func NewGenerator(a *archive.Archive, opts Options) *Generator {
	if opts.WebsiteDomain == "" {
		opts.WebsiteDomain = DefaultWebsiteDomain
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Generator{archive: a, domain: strings.Trim(opts.WebsiteDomain, "."), log: opts.Logger}
}

// Result describes a published site.
type Result struct {
	// WebsiteURL is where the site is served.
	WebsiteURL string

	// Albums are the album names in page order: Albums[i] is on AlbumPage(i+1).
	Albums []string

	// Pages are the keys written, in upload order.
	Pages []string
}

// Publish makes the bucket public, regenerates every page and enables static
// website hosting. It stops at the first failure; pages already uploaded by
// then are left in place.
func (g *Generator) Publish(ctx context.Context) (*Result, error) {
	store := g.archive.Store()

	pub, ok := store.(provider.BucketPublisher)
	if !ok {
		return nil, &archive.Error{Kind: archive.ErrPublishFailed, Err: provider.Unsupported(store, "SetPublicRead")}
	}
	urler, ok := store.(provider.ObjectURLer)
	if !ok {
		return nil, &archive.Error{Kind: archive.ErrStoreFailed, Err: provider.Unsupported(store, "ObjectURL")}
	}

	if err := pub.SetPublicRead(ctx); err != nil {
		return nil, &archive.Error{Kind: archive.ErrPublishFailed, Err: err}
	}
	g.log.Debug("Bucket ACL set to public-read", zap.String("bucket", store.Bucket()))

	albums, err := g.archive.Albums(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{Albums: albums}
	links := make([]AlbumLink, 0, len(albums))
	for i, album := range albums {
		keys, err := g.archive.PhotoKeys(ctx, album)
		if err != nil {
			return res, err
		}

		photos := make([]Photo, 0, len(keys))
		for _, key := range keys {
			photos = append(photos, Photo{
				URL:   urler.ObjectURL(key),
				Title: strings.TrimPrefix(key, album+archive.Delimiter),
			})
		}

		page := AlbumPage(i + 1)
		body, err := RenderAlbum(photos)
		if err != nil {
			return res, err
		}
		if err := g.put(ctx, page, body); err != nil {
			return res, err
		}
		res.Pages = append(res.Pages, page)
		links = append(links, AlbumLink{Page: page, Name: album})
		g.log.Debug("Album page published", zap.String("album", album), zap.String("page", page), zap.Int("photos", len(photos)))
	}

	index, err := RenderIndex(links)
	if err != nil {
		return res, err
	}
	if err := g.put(ctx, IndexDocument, index); err != nil {
		return res, err
	}
	res.Pages = append(res.Pages, IndexDocument)

	errPage, err := ErrorPage()
	if err != nil {
		return res, err
	}
	if err := g.put(ctx, ErrorDocument, errPage); err != nil {
		return res, err
	}
	res.Pages = append(res.Pages, ErrorDocument)

	if err := pub.ConfigureWebsite(ctx, IndexDocument, ErrorDocument); err != nil {
		return res, &archive.Error{Kind: archive.ErrPublishFailed, Err: err}
	}

	res.WebsiteURL = g.websiteURL(store)
	return res, nil
}

func (g *Generator) put(ctx context.Context, key string, body []byte) error {
	store := g.archive.Store()
	putter, ok := store.(provider.ObjectPutter)
	if !ok {
		return &archive.Error{Kind: archive.ErrStoreFailed, Name: key, Err: provider.Unsupported(store, "PutObject")}
	}
	if err := putter.PutObject(ctx, key, bytes.NewReader(body), int64(len(body)), htmlContentType); err != nil {
		return &archive.Error{Kind: archive.ErrStoreFailed, Name: key, Err: err}
	}
	return nil
}

func (g *Generator) websiteURL(store provider.Provider) string {
	if w, ok := store.(provider.WebsiteURLer); ok {
		return w.WebsiteURL()
	}
	return WebsiteURL(store.Bucket(), g.domain)
}

// WebsiteURL returns https://<bucket>.<domain>.
func WebsiteURL(bucket, domain string) string {
	return "https://" + bucket + "." + strings.Trim(domain, ".")
}
