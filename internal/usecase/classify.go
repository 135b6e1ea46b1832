package usecase

import (
	"strings"
	"time"

	"github.com/user/profile-harvester/internal/entity"
)

type CredentialKind int

const (
	CredentialUnknown CredentialKind = iota
	CredentialCertification
	CredentialLicense
)

// ClassifyCredential applies the site heuristic. The certification test runs
// first, so a "Board" license is a certification.
//   - certification: organization contains "Board" or detail contains "Certified"
//   - license: organization contains "License"
func ClassifyCredential(c entity.Credential) CredentialKind {
	switch {
	case strings.Contains(c.Organization, "Board") || strings.Contains(c.Detail, "Certified"):
		return CredentialCertification
	case strings.Contains(c.Organization, "License"):
		return CredentialLicense
	default:
		return CredentialUnknown
	}
}

// SplitCredentials classifies credentials, dropping the ones that match neither rule.
func SplitCredentials(creds []entity.Credential) ([]entity.Certification, []entity.License) {
	var certs []entity.Certification
	var licenses []entity.License
	for _, c := range creds {
		switch ClassifyCredential(c) {
		case CredentialCertification:
			certs = append(certs, entity.Certification{
				Organization: c.Organization,
				Specialty:    strings.TrimSpace(strings.Replace(c.Detail, "Certified in", "", 1)),
			})
		case CredentialLicense:
			licenses = append(licenses, entity.License{
				Type:   strings.TrimSpace(c.Organization),
				Status: strings.TrimSpace(strings.Replace(c.Detail, "Active through", "", 1)),
			})
		}
	}
	return certs, licenses
}

// BuildRecord post-processes parser output into a record. Callers check that
// fields.Name is set.
func BuildRecord(url string, fields entity.ProfileFields, scrapedAt time.Time) *entity.ExtractedRecord {
	certs, licenses := SplitCredentials(fields.Credentials)
	rec := &entity.ExtractedRecord{
		URL:              url,
		Degree:           fields.Degree,
		Specialty:        fields.Specialty,
		SubSpecialties:   fields.SubSpecialties,
		Location:         fields.Location,
		Phone:            fields.Phone,
		Certifications:   certs,
		Licenses:         licenses,
		Publications:     fields.Publications,
		TotalPublication: len(fields.Publications),
		MedicalSchool:    fields.MedicalSchool,
		ScrapedAt:        scrapedAt,
	}
	if fields.Name != nil {
		rec.Name = *fields.Name
	}
	return rec
}
