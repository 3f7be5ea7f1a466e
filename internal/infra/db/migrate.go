package db

import (
	"database/sql"
	_ "embed"
)

//go:embed seeds/titles.sql
var seedTitlesSQL string

func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS profiles (
    id                  BIGSERIAL PRIMARY KEY,
    user_id             BIGINT NOT NULL,
    name                TEXT NOT NULL,
    language_preference VARCHAR(10) NOT NULL DEFAULT ''
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS titles (
    id                BIGSERIAL PRIMARY KEY,
    kind              VARCHAR(10) NOT NULL,
    name              TEXT NOT NULL,
    original_name     TEXT NOT NULL DEFAULT '',
    original_language VARCHAR(10) NOT NULL DEFAULT '',
    release_date      DATE,
    first_air_date    DATE,
    release_year      INT NOT NULL DEFAULT 0,
    description       TEXT NOT NULL DEFAULT '',
    rating            VARCHAR(20) NOT NULL DEFAULT '',
    vote_average      DOUBLE PRECISION NOT NULL DEFAULT 0,
    vote_count        BIGINT NOT NULL DEFAULT 0,
    popularity        DOUBLE PRECISION NOT NULL DEFAULT 0,
    primary_genre     VARCHAR(50) NOT NULL DEFAULT '',
    landscape_image   TEXT NOT NULL DEFAULT '',
    trailer_clip_url  TEXT NOT NULL DEFAULT ''
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS title_actions (
    id         BIGSERIAL PRIMARY KEY,
    profile_id BIGINT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
    title_id   BIGINT NOT NULL REFERENCES titles(id) ON DELETE CASCADE,
    action     VARCHAR(20) NOT NULL,
    session_id VARCHAR(100) NOT NULL,
    provider   VARCHAR(50) NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS title_impressions (
    id         BIGSERIAL PRIMARY KEY,
    profile_id BIGINT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
    title_id   BIGINT NOT NULL REFERENCES titles(id) ON DELETE CASCADE,
    session_id VARCHAR(100) NOT NULL,
    row_type   VARCHAR(100) NOT NULL,
    position   INT NOT NULL DEFAULT 0,
    device     VARCHAR(50) NOT NULL DEFAULT '',
    country    VARCHAR(10) NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (profile_id, title_id, session_id, row_type)
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS reco_home_snapshots (
    id           BIGSERIAL PRIMARY KEY,
    profile_id   BIGINT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
    algo_version VARCHAR(50) NOT NULL,
    payload      JSONB NOT NULL,
    built_at     TIMESTAMPTZ NOT NULL,
    expires_at   TIMESTAMPTZ NOT NULL,
    last_error   TEXT NOT NULL DEFAULT '',
    UNIQUE (profile_id, algo_version)
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS reco_model_artifacts (
    id             BIGSERIAL PRIMARY KEY,
    name           VARCHAR(100) NOT NULL,
    model_blob     BYTEA NOT NULL,
    feature_schema JSONB NOT NULL,
    trained_at     TIMESTAMPTZ NOT NULL,
    notes          TEXT NOT NULL DEFAULT ''
)`); err != nil {
		return err
	}

	// Attribute tables keyed by (title_id, value). One row per company,
	// network, country, cast member, or keyword attached to a title.
	attributeTables := []string{
		"title_companies",
		"title_networks",
		"title_countries",
		"title_actors",
		"title_keywords",
	}
	for _, table := range attributeTables {
		if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS ` + table + ` (
    id       BIGSERIAL PRIMARY KEY,
    title_id BIGINT NOT NULL REFERENCES titles(id) ON DELETE CASCADE,
    value    TEXT NOT NULL,
    UNIQUE (title_id, value)
)`); err != nil {
			return err
		}
		if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_` + table + `_value ON ` + table + `(value)`); err != nil {
			return err
		}
	}

	indexes := []string{
		// Candidate source scans over the catalog.
		`CREATE INDEX IF NOT EXISTS idx_titles_popularity ON titles(popularity DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_titles_vote_average ON titles(vote_average DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_titles_language ON titles(original_language)`,
		`CREATE INDEX IF NOT EXISTS idx_titles_primary_genre ON titles(primary_genre)`,
		// Per-profile history reads, newest first.
		`CREATE INDEX IF NOT EXISTS idx_title_actions_profile_created ON title_actions(profile_id, created_at DESC)`,
		// Trending window scan filtered by action type.
		`CREATE INDEX IF NOT EXISTS idx_title_actions_action_created ON title_actions(action, created_at DESC)`,
		// Impression exclusion window per profile.
		`CREATE INDEX IF NOT EXISTS idx_title_impressions_profile_created ON title_impressions(profile_id, created_at DESC)`,
		// Snapshot lookup at serve time.
		`CREATE INDEX IF NOT EXISTS idx_reco_home_snapshots_profile ON reco_home_snapshots(profile_id, algo_version)`,
		// Latest artifact by name.
		`CREATE INDEX IF NOT EXISTS idx_reco_model_artifacts_name_trained ON reco_model_artifacts(name, trained_at DESC)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	// pgvector extension for title embeddings. Errors are ignored when the
	// extension already exists or the role lacks superuser rights.
	_, _ = db.Exec(`CREATE EXTENSION IF NOT EXISTS vector`)

	// vector(384) matches the all-MiniLM-L6-v2 output dimension.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS title_embeddings (
    id         BIGSERIAL PRIMARY KEY,
    title_id   BIGINT NOT NULL REFERENCES titles(id) ON DELETE CASCADE,
    model      VARCHAR(100) NOT NULL,
    embedding  vector(384) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (title_id, model)
)`); err != nil {
		return err
	}

	// Precomputed nearest neighbors per title, refreshed offline.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS title_similars (
    id              BIGSERIAL PRIMARY KEY,
    source_title_id BIGINT NOT NULL REFERENCES titles(id) ON DELETE CASCADE,
    target_title_id BIGINT NOT NULL REFERENCES titles(id) ON DELETE CASCADE,
    model           VARCHAR(100) NOT NULL,
    score           DOUBLE PRECISION NOT NULL,
    UNIQUE (source_title_id, target_title_id, model)
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_title_similars_source ON title_similars(source_title_id, model, score DESC)`); err != nil {
		return err
	}

	// IVFFlat index for ad-hoc vector search. Ignored when pgvector is
	// unavailable. lists=100 suits catalogs under 1M rows.
	_, _ = db.Exec(`
CREATE INDEX IF NOT EXISTS idx_title_embeddings_vector
    ON title_embeddings USING ivfflat (embedding vector_cosine_ops)
    WITH (lists = 100)`)

	// Bootstrap catalog rows for local development. Re-runs are no-ops.
	if _, err := db.Exec(seedTitlesSQL); err != nil {
		return err
	}

	return nil
}

// MigrateDown rolls back the embedding and similarity tables.
// Use with caution: this deletes all data in the affected tables.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP INDEX IF EXISTS idx_title_embeddings_vector`,
		`DROP INDEX IF EXISTS idx_title_similars_source`,
		`DROP TABLE IF EXISTS title_similars CASCADE`,
		`DROP TABLE IF EXISTS title_embeddings CASCADE`,
	}

	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	// The vector extension stays: other tables may depend on it, and the
	// core catalog and interaction tables are never dropped here.

	return nil
}
