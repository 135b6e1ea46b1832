// Package usnews reads the health.usnews.com profile and search-listing templates.
package usnews

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/profile-harvester/internal/entity"
	"github.com/user/profile-harvester/pkg/htmlpage"
)

// Selectors of the profile template. The class suffixes are generated by the
// site's build and change between deployments.
const (
	profileReady         = ".Hero__TitleWrapper-sc-1lw4wit-6"
	profileName          = ".Hero__Name-sc-1lw4wit-4"
	profileDegree        = ".Hero__Name-sc-1lw4wit-4 span"
	profileLocation      = ".Hero__Address-sc-1lw4wit-29"
	profilePhone         = `a[href^="tel:"]`
	profileSpecialty     = ".Specialties__SpecialtyName-mzebq4-4"
	profileSubSpecialty  = ".Specialties__Subspecialty-mzebq4-3"
	profileEducationItem = ".EducationAndExperience__Item-dbww3o-0"
	profileBlock         = ".mb4"
	blockTitle           = ".kdaQRj"
	blockDetail          = ".cXIEbH"
)

type ProfileParser struct{}

func NewProfileParser() *ProfileParser { return &ProfileParser{} }

func (p *ProfileParser) ReadySelector() string { return profileReady }

func (p *ProfileParser) ParseProfile(page *htmlpage.Page) entity.ProfileFields {
	return entity.ProfileFields{
		Name:           heroName(page),
		Degree:         optional(page.Text(profileDegree)),
		Specialty:      optional(page.Text(profileSpecialty)),
		SubSpecialties: page.List(profileSubSpecialty),
		Location:       optional(page.Text(profileLocation)),
		Phone:          optional(page.Text(profilePhone)),
		Credentials:    credentials(page),
		Publications:   publications(page),
		MedicalSchool:  medicalSchool(page),
	}
}

// heroName is the hero heading without the nested degree span.
func heroName(page *htmlpage.Page) *string {
	hero := page.Find(profileName).First()
	if hero.Length() == 0 {
		return nil
	}
	clone := hero.Clone()
	clone.Find("span").Remove()
	name := strings.TrimRight(htmlpage.Clean(clone.Text()), " ,")
	if name == "" {
		return nil
	}
	return &name
}

// titleAndDetail reads the two text lines of a credential or publication block.
func titleAndDetail(s *goquery.Selection) (string, string, bool) {
	title, ok := htmlpage.SelectionText(s.Find(blockTitle).First())
	if !ok {
		return "", "", false
	}
	detail, ok := htmlpage.SelectionText(s.Find(blockDetail).First())
	if !ok {
		return "", "", false
	}
	return title, detail, true
}

func credentials(page *htmlpage.Page) []entity.Credential {
	var out []entity.Credential
	page.Find(profileBlock + ", " + profileEducationItem).Each(func(_ int, s *goquery.Selection) {
		if org, detail, ok := titleAndDetail(s); ok {
			out = append(out, entity.Credential{Organization: org, Detail: detail})
		}
	})
	return out
}

// publications reads the same .mb4 blocks credentials are read from; the
// template does not separate the two sections.
func publications(page *htmlpage.Page) []entity.Publication {
	var out []entity.Publication
	page.Find(profileBlock).Each(func(_ int, s *goquery.Selection) {
		if title, author, ok := titleAndDetail(s); ok {
			out = append(out, entity.Publication{Publication: title, Author: author})
		}
	})
	return out
}

func medicalSchool(page *htmlpage.Page) *string {
	var school *string
	page.Find(profileEducationItem).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		detail, ok := htmlpage.SelectionText(s.Find(blockDetail).First())
		if !ok || !strings.Contains(detail, "Medical School") {
			return true
		}
		school = optional(htmlpage.SelectionText(s.Find(blockTitle).First()))
		return false
	})
	return school
}

func optional(s string, ok bool) *string {
	if !ok {
		return nil
	}
	return &s
}
