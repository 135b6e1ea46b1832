// Package htmlpage wraps a rendered HTML document with the field accessors page
// parsers are written against. Missing elements are reported as absent, never as
// errors.
package htmlpage

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/profile-harvester/pkg/utils"
)

var innerWhitespace = regexp.MustCompile(`\s+`)

type Page struct {
	url *url.URL
	raw string
	doc *goquery.Document
}

// Parse builds a Page from the outer HTML of a rendered document.
func Parse(pageURL, html string) (*Page, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Page{url: u, raw: pageURL, doc: doc}, nil
}

func (p *Page) URL() string { return p.raw }

// Find exposes the underlying selection for template-specific readers.
func (p *Page) Find(selector string) *goquery.Selection {
	return p.doc.Find(selector)
}

// Text returns the collapsed text of the first element matching selector.
func (p *Page) Text(selector string) (string, bool) {
	return SelectionText(p.doc.Find(selector).First())
}

// List returns the collapsed text of every matching element, skipping empty ones.
func (p *Page) List(selector string) []string {
	items := []string{}
	p.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if text, ok := SelectionText(s); ok {
			items = append(items, text)
		}
	})
	return items
}

// Resolve turns an href found on the page into an absolute URL.
func (p *Page) Resolve(href string) (string, error) {
	return utils.ToAbsoluteURL(p.url, href)
}

// SelectionText collapses whitespace in the text of s. Empty selections and
// whitespace-only text are absent.
func SelectionText(s *goquery.Selection) (string, bool) {
	if s == nil || s.Length() == 0 {
		return "", false
	}
	text := Clean(s.Text())
	return text, text != ""
}

func Clean(s string) string {
	return strings.TrimSpace(innerWhitespace.ReplaceAllString(s, " "))
}
