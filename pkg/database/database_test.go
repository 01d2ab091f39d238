package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"testing/fstest"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-records/migrations"
	"github.com/noah-isme/school-records/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "records", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=records sslmode=disable", dsn)
}

func TestUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert profile: %w", &pq.Error{Code: "23505", Constraint: "student_profiles_student_id_key"})
	constraint, ok := UniqueViolation(err)
	assert.True(t, ok)
	assert.Equal(t, "student_profiles_student_id_key", constraint)

	_, ok = UniqueViolation(&pq.Error{Code: "23503"})
	assert.False(t, ok)
	_, ok = UniqueViolation(errors.New("plain"))
	assert.False(t, ok)
}

func TestMigratePassesCommand(t *testing.T) {
	original := gooseRun
	t.Cleanup(func() { gooseRun = original })

	var gotCommand, gotDir string
	gooseRun = func(command string, db *sql.DB, dir string, args ...string) error {
		gotCommand, gotDir = command, dir
		return nil
	}

	fsys := fstest.MapFS{"00001_init.sql": &fstest.MapFile{Data: []byte("-- +goose Up\n")}}
	require.NoError(t, Migrate(nil, fsys, ".", "up"))
	assert.Equal(t, "up", gotCommand)
	assert.Equal(t, ".", gotDir)

	gooseRun = func(string, *sql.DB, string, ...string) error { return errors.New("locked") }
	err := Migrate(nil, fsys, ".", "down")
	assert.ErrorContains(t, err, "run migrations down")
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	data, err := migrations.FS.ReadFile("00001_init_schema.sql")
	require.NoError(t, err)
	body := string(data)
	for _, table := range []string{"users", "student_profiles", "instructor_profiles", "sessions", "courses", "subjects", "enrollments", "grades", "gpa_records", "announcements"} {
		assert.Contains(t, body, "CREATE TABLE "+table+" (")
	}
	assert.Contains(t, body, "UNIQUE (student_id, subject_id)")
}
