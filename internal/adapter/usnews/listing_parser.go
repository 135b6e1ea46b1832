package usnews

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/profile-harvester/internal/entity"
	"github.com/user/profile-harvester/pkg/htmlpage"
	"github.com/user/profile-harvester/pkg/utils"
)

const (
	listingReady     = "body"
	listingAnchor    = `a[href^="/doctors/"]`
	listingTitle     = "h2, h3, h4"
	listingIndicator = `[class*="Pagination"], [data-testid="pagination"], nav[aria-label="pagination"]`
	pageParam        = "page"
)

// profilePath is matched against the href path only; query and fragment are kept.
var profilePath = regexp.MustCompile(`^/doctors/[a-z-]+-\d+/?$`)

type ListingParser struct {
	base *url.URL
}

// NewListingParser resolves relative profile links against baseURL, or against
// the listing page itself when baseURL is empty.
func NewListingParser(baseURL string) (*ListingParser, error) {
	if baseURL == "" {
		return &ListingParser{}, nil
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse site base url: %w", err)
	}
	return &ListingParser{base: base}, nil
}

func (p *ListingParser) ReadySelector() string { return listingReady }

func (p *ListingParser) PageIndicator(page *htmlpage.Page) (string, bool) {
	var text string
	var found bool
	page.Find(listingIndicator).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text, found = htmlpage.SelectionText(s)
		return !found
	})
	return text, found
}

// Candidates returns one target per profile anchor. Anchors without an href or
// without a title element are skipped.
func (p *ListingParser) Candidates(page *htmlpage.Page) []entity.CandidateTarget {
	out := []entity.CandidateTarget{}
	page.Find(listingAnchor).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || !isProfileHref(href) {
			return
		}
		title, ok := htmlpage.SelectionText(s.Find(listingTitle).First())
		if !ok {
			return
		}
		abs, err := p.resolve(page, href)
		if err != nil {
			return
		}
		out = append(out, entity.CandidateTarget{URL: abs, DisplayName: title})
	})
	return out
}

func isProfileHref(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	return profilePath.MatchString(u.Path)
}

func (p *ListingParser) PageURL(searchURL string, n int) (string, error) {
	return utils.WithPage(searchURL, pageParam, n)
}

func (p *ListingParser) resolve(page *htmlpage.Page, href string) (string, error) {
	if p.base == nil {
		return page.Resolve(href)
	}
	return utils.ToAbsoluteURL(p.base, href)
}
