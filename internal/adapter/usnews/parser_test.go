package usnews

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/user/profile-harvester/internal/entity"
	"github.com/user/profile-harvester/pkg/htmlpage"
)

func loadFixture(t *testing.T, name, pageURL string) *htmlpage.Page {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	page, err := htmlpage.Parse(pageURL, string(raw))
	require.NoError(t, err)
	return page
}

func TestParseProfile(t *testing.T) {
	page := loadFixture(t, "profile.html", "https://health.usnews.com/doctors/jane-doe-123")
	f := NewProfileParser().ParseProfile(page)

	require.NotNil(t, f.Name)
	require.Equal(t, "Dr. Jane Doe", *f.Name)
	require.Equal(t, "MD", *f.Degree)
	require.Equal(t, "Vascular Surgery", *f.Specialty)
	require.Equal(t, []string{"Endovascular Surgery", "Aortic Surgery"}, f.SubSpecialties)
	require.Equal(t, "100 Main St, Los Angeles, CA 90001", *f.Location)
	require.Equal(t, "(310) 555-0100", *f.Phone)
	require.Equal(t, "Stanford University School of Medicine", *f.MedicalSchool)

	// .mb4 blocks and education items both feed the credential reader.
	require.Equal(t, []entity.Credential{
		{Organization: "American Board of Surgery", Detail: "Certified in Vascular Surgery"},
		{Organization: "California State Medical License", Detail: "Active through 2026"},
		{Organization: "Outcomes of endovascular aneurysm repair", Detail: "Doe J, Smith K"},
		{Organization: "Stanford University School of Medicine", Detail: "Medical School"},
		{Organization: "UCLA Medical Center", Detail: "Residency, General Surgery"},
	}, sortedByDocument(f.Credentials))

	// Every complete .mb4 block is also read as a publication.
	require.Len(t, f.Publications, 3)
	require.Equal(t, entity.Publication{Publication: "Outcomes of endovascular aneurysm repair", Author: "Doe J, Smith K"}, f.Publications[2])
}

// sortedByDocument puts education items after .mb4 blocks to keep the assertion
// independent of goquery's union ordering.
func sortedByDocument(in []entity.Credential) []entity.Credential {
	var blocks, education []entity.Credential
	for _, c := range in {
		switch c.Organization {
		case "Stanford University School of Medicine", "UCLA Medical Center":
			education = append(education, c)
		default:
			blocks = append(blocks, c)
		}
	}
	return append(blocks, education...)
}

func TestParseProfileSparse(t *testing.T) {
	page := loadFixture(t, "profile_sparse.html", "https://health.usnews.com/doctors/john-roe-456")
	f := NewProfileParser().ParseProfile(page)

	require.Equal(t, "John Roe", *f.Name)
	require.Nil(t, f.Degree)
	require.Nil(t, f.Specialty)
	require.Empty(t, f.SubSpecialties)
	require.Nil(t, f.Location)
	require.Nil(t, f.Phone)
	require.Empty(t, f.Credentials)
	require.Empty(t, f.Publications)
	require.Nil(t, f.MedicalSchool)
}

func TestParseProfileWithoutHero(t *testing.T) {
	page, err := htmlpage.Parse("https://health.usnews.com/doctors/x-1", "<html><body></body></html>")
	require.NoError(t, err)
	f := NewProfileParser().ParseProfile(page)
	require.Nil(t, f.Name)
}

func TestListingCandidates(t *testing.T) {
	p, err := NewListingParser("https://health.usnews.com")
	require.NoError(t, err)

	page := loadFixture(t, "listing_page1.html", "https://health.usnews.com/doctors/search?specialty=Vascular%20Surgery")
	require.Equal(t, []entity.CandidateTarget{
		{URL: "https://health.usnews.com/doctors/jane-doe-123", DisplayName: "Jane Doe, MD"},
		{URL: "https://health.usnews.com/doctors/john-roe-456", DisplayName: "John Roe, DO"},
		{URL: "https://health.usnews.com/doctors/ann-lee-321?src=search#results", DisplayName: "Ann Lee, MD"},
	}, p.Candidates(page))

	indicator, ok := p.PageIndicator(page)
	require.True(t, ok)
	require.Equal(t, "Page 1 of 3", indicator)
}

func TestListingResolvesAgainstPageWithoutBase(t *testing.T) {
	p, err := NewListingParser("")
	require.NoError(t, err)

	page := loadFixture(t, "listing_no_indicator.html", "https://mirror.example/doctors/search?q=1")
	require.Equal(t, []entity.CandidateTarget{
		{URL: "https://mirror.example/doctors/amy-poe-1", DisplayName: "Amy Poe"},
	}, p.Candidates(page))

	_, ok := p.PageIndicator(page)
	require.False(t, ok)
}

func TestListingPageURL(t *testing.T) {
	p, err := NewListingParser("")
	require.NoError(t, err)
	u, err := p.PageURL("https://health.usnews.com/doctors/search?specialty=X", 2)
	require.NoError(t, err)
	require.Equal(t, "https://health.usnews.com/doctors/search?page=2&specialty=X", u)
}
