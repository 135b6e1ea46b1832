package postgres

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/user/profile-harvester/internal/entity"
	"github.com/user/profile-harvester/internal/repository"
)

func setupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in -short mode")
	}
	testcontainers.Logger = log.New(io.Discard, "", 0)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		Started: true,
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "user",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "harvester",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
	})
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	db, err := pgxpool.New(ctx, fmt.Sprintf("postgres://user:password@%s/harvester?sslmode=disable", endpoint))
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, EnsureSchema(ctx, db))
	return db
}

func strPtr(s string) *string { return &s }

func TestDoctorRepoUpsertAndFind(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := NewDoctorRepo(db)
	url := "https://health.usnews.com/doctors/jane-doe-123"

	_, err := repo.FindByURL(ctx, url)
	require.ErrorIs(t, err, repository.ErrNotFound)

	first := &entity.ExtractedRecord{
		URL:            url,
		Name:           "Jane Doe",
		Degree:         strPtr("MD"),
		SubSpecialties: []string{"Electrophysiology"},
		Certifications: []entity.Certification{{Organization: "American Board of Internal Medicine", Specialty: "Cardiology"}},
		ScrapedAt:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Upsert(ctx, first))
	require.NotZero(t, first.ID)

	second := &entity.ExtractedRecord{
		URL:              url,
		Name:             "Jane Doe",
		Publications:     []entity.Publication{{Publication: "Heart", Author: "J. Doe"}},
		TotalPublication: 1,
		ScrapedAt:        time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Upsert(ctx, second))
	require.Equal(t, first.ID, second.ID, "upsert keeps one row per url")

	got, err := repo.FindByURL(ctx, url)
	require.NoError(t, err)
	require.Nil(t, got.Degree)
	require.Empty(t, got.Certifications)
	require.Equal(t, second.Publications, got.Publications)
	require.Equal(t, 1, got.TotalPublication)
	require.Equal(t, second.ScrapedAt, got.ScrapedAt)
}

func TestFailedTargetRepo(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := NewFailedTargetRepo(db)
	url := "https://health.usnews.com/doctors/john-roe-456"

	for range 2 {
		require.NoError(t, repo.SaveOrUpdate(ctx, &entity.FailedTarget{
			URL:                  url,
			FailureReason:        entity.ReasonTimeout,
			ErrorMessage:         "navigation timed out",
			LastAttemptTimestamp: time.Now().UTC(),
		}))
	}

	got, err := repo.FindByURL(ctx, url)
	require.NoError(t, err)
	require.Equal(t, 2, got.AttemptCount)
	require.Equal(t, entity.ReasonTimeout, got.FailureReason)

	require.NoError(t, repo.Delete(ctx, url))
	_, err = repo.FindByURL(ctx, url)
	require.ErrorIs(t, err, repository.ErrNotFound)
}
