package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestGitHubLinkRepository_FindByPR(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGitHubLinkRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "task_id", "link_type", "repository_owner", "repository_name", "url", "pr_number", "pr_status", "created_at", "updated_at"}).
		AddRow(3, 7, "pull_request", "acme", "core", "https://github.com/acme/core/pull/42", 42, "open", now, now).
		AddRow(5, 7, "pull_request", "acme", "core", "https://github.com/acme/core/pull/42", 42, "open", now, now)

	mock.ExpectQuery(`SELECT \* FROM "github_links" WHERE .*repository_owner = \$1 AND repository_name = \$2 AND pr_number = \$3.* ORDER BY id ASC`).
		WithArgs("acme", "core", 42).
		WillReturnRows(rows)

	links, err := repo.FindByPR("acme", "core", 42)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.EqualValues(t, 3, links[0].ID)
	require.NotNil(t, links[1].PRNumber)
	assert.Equal(t, 42, *links[1].PRNumber)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestThemeRepository_TransitionStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewThemeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "themes" SET "status"=\$1,"updated_at"=\$2 WHERE LOWER\(status\) = LOWER\(\$3\)`).
		WithArgs("paused", sqlmock.AnyArg(), "active").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectCommit()

	count, err := repo.TransitionStatus("active", "paused")
	require.NoError(t, err)
	assert.EqualValues(t, 4, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
