package db

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// expectCoreTables registers the fixed-order table creations that every
// successful MigrateUp run performs before the index phase.
func expectCoreTables(mock sqlmock.Sqlmock) {
	tables := []string{
		"CREATE TABLE IF NOT EXISTS profiles",
		"CREATE TABLE IF NOT EXISTS titles",
		"CREATE TABLE IF NOT EXISTS title_actions",
		"CREATE TABLE IF NOT EXISTS title_impressions",
		"CREATE TABLE IF NOT EXISTS reco_home_snapshots",
		"CREATE TABLE IF NOT EXISTS reco_model_artifacts",
	}
	for _, stmt := range tables {
		mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 0))
	}
}

// expectAttributeTables registers the per-attribute table plus value-index
// pairs in creation order.
func expectAttributeTables(mock sqlmock.Sqlmock) {
	tables := []string{
		"title_companies",
		"title_networks",
		"title_countries",
		"title_actors",
		"title_keywords",
	}
	for _, table := range tables {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS " + table).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_" + table + "_value").
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
}

func expectIndexes(mock sqlmock.Sqlmock) {
	indexes := []string{
		"idx_titles_popularity",
		"idx_titles_vote_average",
		"idx_titles_language",
		"idx_titles_primary_genre",
		"idx_title_actions_profile_created",
		"idx_title_actions_action_created",
		"idx_title_impressions_profile_created",
		"idx_reco_home_snapshots_profile",
		"idx_reco_model_artifacts_name_trained",
	}
	for _, idx := range indexes {
		mock.ExpectExec("CREATE INDEX IF NOT EXISTS " + idx).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
}

func expectVectorTables(mock sqlmock.Sqlmock) {
	mock.ExpectExec("CREATE EXTENSION IF NOT EXISTS vector").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS title_embeddings").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS title_similars").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_title_similars_source").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_title_embeddings_vector").
		WillReturnResult(sqlmock.NewResult(0, 0))
}

func TestMigrateUp_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	expectCoreTables(mock)
	expectAttributeTables(mock)
	expectIndexes(mock)
	expectVectorTables(mock)

	mock.ExpectExec("INSERT INTO titles").
		WillReturnResult(sqlmock.NewResult(0, 5))

	err = MigrateUp(db)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateUp_ProfilesTableError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS profiles").
		WillReturnError(sql.ErrConnDone)

	err = MigrateUp(db)
	assert.Error(t, err)
	assert.Equal(t, sql.ErrConnDone, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateUp_TitlesTableError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS profiles").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS titles").
		WillReturnError(sql.ErrTxDone)

	err = MigrateUp(db)
	assert.Error(t, err)
	assert.Equal(t, sql.ErrTxDone, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateUp_IndexError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	expectCoreTables(mock)
	expectAttributeTables(mock)

	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_titles_popularity").
		WillReturnError(sql.ErrNoRows)

	err = MigrateUp(db)
	assert.Error(t, err)
	assert.Equal(t, sql.ErrNoRows, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateUp_SeedDataError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	expectCoreTables(mock)
	expectAttributeTables(mock)
	expectIndexes(mock)
	expectVectorTables(mock)

	mock.ExpectExec("INSERT INTO titles").
		WillReturnError(sql.ErrConnDone)

	err = MigrateUp(db)
	assert.Error(t, err)
	assert.Equal(t, sql.ErrConnDone, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateDown_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec("DROP INDEX IF EXISTS idx_title_embeddings_vector").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DROP INDEX IF EXISTS idx_title_similars_source").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DROP TABLE IF EXISTS title_similars").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DROP TABLE IF EXISTS title_embeddings").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = MigrateDown(db)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateDown_DropError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec("DROP INDEX IF EXISTS idx_title_embeddings_vector").
		WillReturnError(sql.ErrConnDone)

	err = MigrateDown(db)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedTitlesSQL_Embedded(t *testing.T) {
	assert.NotEmpty(t, seedTitlesSQL)
	assert.Contains(t, seedTitlesSQL, "INSERT INTO titles")
	assert.Contains(t, seedTitlesSQL, "ON CONFLICT (id) DO NOTHING")
}
