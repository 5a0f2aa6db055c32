// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package export turns a generated document into the forms users take
// away: sanitised HTML for display, plain text, and downloadable files.
package export

import (
	"errors"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// Format is a download format.
type Format string

const (
	FormatHTML Format = "html"
	FormatText Format = "txt"
)

// ErrUnknownFormat is returned for an unsupported download format.
var ErrUnknownFormat = errors.New("export: unknown format")

// baseName is the file name offered for downloads, without extension.
const baseName = "terms-of-service"

var policy = bluemonday.UGCPolicy()

// ParseFormat maps a query value to a Format. Empty selects HTML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "html":
		return FormatHTML, nil
	case "txt", "text":
		return FormatText, nil
	}
	return "", ErrUnknownFormat
}

// Filename returns the download file name for f.
func (f Format) Filename() string {
	return baseName + "." + string(f)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatText {
		return "text/plain; charset=utf-8"
	}
	return "text/html; charset=utf-8"
}

// Sanitize strips scripts, event handlers and other unsafe markup from
// generated HTML so it can be rendered directly.
func Sanitize(doc string) string {
	return policy.Sanitize(doc)
}

// Render returns the document in format f.
func Render(doc string, f Format) (string, error) {
	switch f {
	case FormatHTML:
		return Sanitize(doc), nil
	case FormatText:
		return Text(doc)
	}
	return "", ErrUnknownFormat
}

// blockElements end a line of text output.
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "table": true, "section": true, "article": true,
	"header": true, "footer": true, "blockquote": true, "pre": true, "hr": true,
}

// Text extracts readable text from an HTML document. Block elements end
// a line and whitespace within a line collapses to single spaces.
func Text(doc string) (string, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(strings.ReplaceAll(n.Data, "\n", " "))
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "head":
				return
			case "li":
				b.WriteString("\n- ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && blockElements[n.Data] {
			b.WriteByte('\n')
		}
	}
	walk(root)

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}
