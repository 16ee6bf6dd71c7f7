package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kitbuilder587/serpclient/internal/domain"
	pgRepo "github.com/kitbuilder587/serpclient/internal/repository/postgres"
)

var testDB *pgRepo.DB

func TestMain(m *testing.M) {
	if os.Getenv("SHORT_TESTS") == "1" {
		os.Exit(0)
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		panic(err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		panic(err)
	}

	testDB, err = pgRepo.New(ctx, connStr)
	if err != nil {
		panic(err)
	}

	if err := testDB.Migrate(ctx); err != nil {
		panic(err)
	}

	code := m.Run()

	testDB.Close()
	pgContainer.Terminate(ctx)

	os.Exit(code)
}

func TestJobRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	repo := pgRepo.NewJobRepo(testDB)
	submitted := time.Now().UTC().Truncate(time.Microsecond)

	rec := &domain.JobRecord{
		ID:          "rec-1",
		Source:      "google_search",
		Target:      "nike",
		Mode:        domain.ModeAsync,
		Status:      domain.JobPending,
		SubmittedAt: submitted,
	}
	if err := repo.Create(ctx, rec); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.Create(ctx, rec); err != pgRepo.ErrDuplicateJob {
		t.Errorf("Create() duplicate error = %v, want ErrDuplicateJob", err)
	}

	finished := submitted.Add(4 * time.Second)
	rec.JobID = "J1"
	rec.Status = domain.JobDone
	rec.FinishedAt = &finished
	if err := repo.Update(ctx, rec); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.GetByID(ctx, "rec-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.JobID != "J1" || got.Status != domain.JobDone {
		t.Errorf("GetByID() = %+v", got)
	}
	if got.FinishedAt == nil || !got.FinishedAt.Equal(finished) {
		t.Errorf("FinishedAt = %v, want %v", got.FinishedAt, finished)
	}

	_, err = repo.GetByID(ctx, "missing")
	if err != domain.ErrJobNotFound {
		t.Errorf("GetByID() error = %v, want ErrJobNotFound", err)
	}

	err = repo.Update(ctx, &domain.JobRecord{ID: "missing", Status: domain.JobDone})
	if err != domain.ErrJobNotFound {
		t.Errorf("Update() error = %v, want ErrJobNotFound", err)
	}
}

func TestJobRepository_ListRecent_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	repo := pgRepo.NewJobRepo(testDB)
	base := time.Now().Add(time.Hour)

	for i, id := range []string{"list-a", "list-b", "list-c"} {
		err := repo.Create(ctx, &domain.JobRecord{
			ID:          id,
			Source:      "universal",
			Target:      "https://example.com",
			Mode:        domain.ModeSync,
			Status:      domain.JobDone,
			SubmittedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Create(%s) error = %v", id, err)
		}
	}

	got, err := repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != "list-c" || got[1].ID != "list-b" {
		t.Errorf("ListRecent() = %+v, want list-c, list-b", got)
	}
}
