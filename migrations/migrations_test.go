package migrations

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoMigrateCreatesAllTables(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for _, table := range tables {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS " + table.name + " ").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, AutoMigrate(db, 0, 0))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAutoMigrateRetries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnError(errors.New("server starting"))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))
	for _, table := range tables[1:] {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS " + table.name + " ").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, AutoMigrate(db, 2, 0))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAutoMigrateGivesUp(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnError(errors.New("down"))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnError(errors.New("down"))

	err = AutoMigrate(db, 1, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate users")
}
