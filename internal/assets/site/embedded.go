// Package siteassets provides the embedded HTML templates of the generated gallery site.
//
// Templates are embedded at compile time so the CLI renders identical pages
// regardless of the working directory or installation location.
package siteassets

import "embed"

// Templates holds album.html, index.html and error.html.
//
//go:embed templates/*.html
var Templates embed.FS
