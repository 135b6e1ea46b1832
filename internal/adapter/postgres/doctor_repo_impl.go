package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/profile-harvester/internal/entity"
	"github.com/user/profile-harvester/internal/repository"
)

// DoctorRepoImpl stores extracted profile records in the doctors table.
type DoctorRepoImpl struct {
	db *pgxpool.Pool
}

func NewDoctorRepo(db *pgxpool.Pool) *DoctorRepoImpl {
	return &DoctorRepoImpl{db: db}
}

var _ repository.ProfileRepository = (*DoctorRepoImpl)(nil)

// Upsert stores the record keyed by URL. The latest successful scrape wins.
func (r *DoctorRepoImpl) Upsert(ctx context.Context, rec *entity.ExtractedRecord) error {
	certs, err := marshalList(rec.Certifications)
	if err != nil {
		return err
	}
	licenses, err := marshalList(rec.Licenses)
	if err != nil {
		return err
	}
	pubs, err := marshalList(rec.Publications)
	if err != nil {
		return err
	}
	subs := rec.SubSpecialties
	if subs == nil {
		subs = []string{}
	}

	query := `
		INSERT INTO doctors (url, name, degree, specialty, sub_specialties, location, phone,
			certifications, licenses, publications, total_publication, medical_school, scraped_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (url) DO UPDATE SET
			name = EXCLUDED.name,
			degree = EXCLUDED.degree,
			specialty = EXCLUDED.specialty,
			sub_specialties = EXCLUDED.sub_specialties,
			location = EXCLUDED.location,
			phone = EXCLUDED.phone,
			certifications = EXCLUDED.certifications,
			licenses = EXCLUDED.licenses,
			publications = EXCLUDED.publications,
			total_publication = EXCLUDED.total_publication,
			medical_school = EXCLUDED.medical_school,
			scraped_at = EXCLUDED.scraped_at
		RETURNING id;
	`
	err = r.db.QueryRow(ctx, query,
		rec.URL,
		rec.Name,
		rec.Degree,
		rec.Specialty,
		subs,
		rec.Location,
		rec.Phone,
		certs,
		licenses,
		pubs,
		rec.TotalPublication,
		rec.MedicalSchool,
		rec.ScrapedAt,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("upsert doctor %s: %w", rec.URL, err)
	}
	return nil
}

func (r *DoctorRepoImpl) FindByURL(ctx context.Context, url string) (*entity.ExtractedRecord, error) {
	query := `
		SELECT id, url, name, degree, specialty, sub_specialties, location, phone,
			certifications, licenses, publications, total_publication, medical_school, scraped_at
		FROM doctors
		WHERE url = $1;
	`
	var rec entity.ExtractedRecord
	var certs, licenses, pubs []byte
	err := r.db.QueryRow(ctx, query, url).Scan(
		&rec.ID,
		&rec.URL,
		&rec.Name,
		&rec.Degree,
		&rec.Specialty,
		&rec.SubSpecialties,
		&rec.Location,
		&rec.Phone,
		&certs,
		&licenses,
		&pubs,
		&rec.TotalPublication,
		&rec.MedicalSchool,
		&rec.ScrapedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(certs, &rec.Certifications); err != nil {
		return nil, fmt.Errorf("decode certifications: %w", err)
	}
	if err := json.Unmarshal(licenses, &rec.Licenses); err != nil {
		return nil, fmt.Errorf("decode licenses: %w", err)
	}
	if err := json.Unmarshal(pubs, &rec.Publications); err != nil {
		return nil, fmt.Errorf("decode publications: %w", err)
	}
	rec.ScrapedAt = rec.ScrapedAt.UTC()
	return &rec, nil
}

// marshalList encodes a nil slice as an empty JSON array.
func marshalList[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}
