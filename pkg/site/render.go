// Package site renders and publishes the static gallery website of an archive.
//
// Pages are a pure function of the bucket listing at generation time: every
// run rebuilds all of them, and the same listing always yields byte-identical
// pages.
package site

import (
	"bytes"
	"fmt"
	"html/template"

	siteassets "github.com/3leaps/cloudphoto/internal/assets/site"
)

// Document keys of the generated site.
const (
	IndexDocument = "index.html"
	ErrorDocument = "error.html"
)

// Photo is one image of an album page.
type Photo struct {
	// URL is the public, already escaped URL of the object.
	URL string

	// Title is the photo's file name, shown as caption.
	Title string
}

// AlbumLink is one entry of the index page.
type AlbumLink struct {
	Page string
	Name string
}

var templates = template.Must(template.ParseFS(siteassets.Templates, "templates/*.html"))

// AlbumPage returns the key of the i-th (1-based) album page.
func AlbumPage(i int) string {
	return fmt.Sprintf("album%d.html", i)
}

// RenderAlbum renders the gallery page for photos, in the given order.
func RenderAlbum(photos []Photo) ([]byte, error) {
	// URLs are built by the provider from escaped segments; mark them trusted
	// so non-http schemes (file://) are not replaced by the sanitizer.
	type img struct {
		URL   template.URL
		Title string
	}
	imgs := make([]img, 0, len(photos))
	for _, p := range photos {
		imgs = append(imgs, img{URL: template.URL(p.URL), Title: p.Title})
	}
	return execute("album.html", imgs)
}

// RenderIndex renders the index page linking to every album page.
func RenderIndex(links []AlbumLink) ([]byte, error) {
	return execute("index.html", links)
}

// ErrorPage returns the static error page.
func ErrorPage() ([]byte, error) {
	return execute("error.html", nil)
}

func execute(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
