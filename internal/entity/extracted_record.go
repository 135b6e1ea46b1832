package entity

import "time"

type Certification struct {
	Organization string `json:"organization"`
	Specialty    string `json:"specialty"`
}

type License struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

type Publication struct {
	Publication string `json:"publication"`
	Author      string `json:"author"`
}

// Credential is a raw organization/detail pair read off a profile before it is
// classified as a certification or a license.
type Credential struct {
	Organization string
	Detail       string
}

// ProfileFields is what a profile parser reads off a rendered page. Nil pointers
// and empty slices mean the field was not found.
type ProfileFields struct {
	Name           *string
	Degree         *string
	Specialty      *string
	SubSpecialties []string
	Location       *string
	Phone          *string
	Credentials    []Credential
	Publications   []Publication
	MedicalSchool  *string
}

// ExtractedRecord mirrors the `doctors` PostgreSQL table.
type ExtractedRecord struct {
	ID               int64           `json:"id,omitempty"`
	URL              string          `json:"url"`
	Name             string          `json:"name"`
	Degree           *string         `json:"degree,omitempty"`
	Specialty        *string         `json:"specialty,omitempty"`
	SubSpecialties   []string        `json:"sub_specialties,omitempty"`
	Location         *string         `json:"location,omitempty"`
	Phone            *string         `json:"phone,omitempty"`
	Certifications   []Certification `json:"certifications,omitempty"`
	Licenses         []License       `json:"licenses,omitempty"`
	Publications     []Publication   `json:"publications,omitempty"`
	TotalPublication int             `json:"total_publication"`
	MedicalSchool    *string         `json:"medical_school,omitempty"`
	ScrapedAt        time.Time       `json:"scraped_at"`
}
