package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"github.com/antoinerimano/Netflix/internal/domain/entity"
	"github.com/antoinerimano/Netflix/internal/infra/adapter/persistence/postgres"
)

func TestArtifactRepo_Latest(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	trainedAt := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	blob := []byte(`{"weights":{"cosine":1},"bias":0}`)
	schema := []byte(`{"cosine":0,"popularity":1}`)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM reco_model_artifacts`)).
		WithArgs("ranker_v1").
		WillReturnRows(sqlmock.NewRows([]string{"name", "model_blob", "feature_schema", "trained_at", "notes"}).
			AddRow("ranker_v1", blob, schema, trainedAt, "weekly retrain"))

	repo := postgres.NewArtifactRepo(db)
	got, err := repo.Latest(context.Background(), "ranker_v1")
	if err != nil {
		t.Fatalf("Latest err=%v", err)
	}
	want := &entity.RankerArtifact{
		Name:          "ranker_v1",
		ModelBlob:     blob,
		FeatureSchema: map[string]int{"cosine": 0, "popularity": 1},
		TrainedAt:     trainedAt,
		Notes:         "weekly retrain",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArtifactRepo_LatestNotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM reco_model_artifacts`)).
		WithArgs("ranker_v9").
		WillReturnRows(sqlmock.NewRows([]string{"name", "model_blob", "feature_schema", "trained_at", "notes"}))

	repo := postgres.NewArtifactRepo(db)
	got, err := repo.Latest(context.Background(), "ranker_v9")
	if err != nil {
		t.Fatalf("Latest err=%v", err)
	}
	if got != nil {
		t.Fatalf("expected nil artifact, got %+v", got)
	}
}

func TestArtifactRepo_LatestCorruptSchema(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM reco_model_artifacts`)).
		WithArgs("ranker_v1").
		WillReturnRows(sqlmock.NewRows([]string{"name", "model_blob", "feature_schema", "trained_at", "notes"}).
			AddRow("ranker_v1", []byte(`{}`), []byte(`{broken`), time.Now(), ""))

	repo := postgres.NewArtifactRepo(db)
	if _, err := repo.Latest(context.Background(), "ranker_v1"); err == nil {
		t.Fatal("expected decode error")
	}
}
