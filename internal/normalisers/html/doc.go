// Package html provides a Normaliser implementation for HTML documents.
// It extracts readable text content from HTML, stripping tags, scripts,
// and styles, and splits the body into sections at h1-h3 headings.
package html
