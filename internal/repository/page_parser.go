package repository

import (
	"github.com/user/profile-harvester/internal/entity"
	"github.com/user/profile-harvester/pkg/htmlpage"
)

// ProfileParser reads profile fields off one page template. It must not fail
// on missing elements; absent fields are left nil or empty.
type ProfileParser interface {
	ReadySelector() string
	ParseProfile(page *htmlpage.Page) entity.ProfileFields
}

// ListingParser reads one paginated search-listing template.
type ListingParser interface {
	ReadySelector() string
	// PageIndicator returns the free text of the "Page X of N" element, if any.
	PageIndicator(page *htmlpage.Page) (string, bool)
	// Candidates returns one target per well-formed profile anchor on the page.
	Candidates(page *htmlpage.Page) []entity.CandidateTarget
	// PageURL returns the URL of page n of the listing rooted at searchURL.
	PageURL(searchURL string, n int) (string, error)
}
