package postgres

import (
	"context"
	"testing"
	"time"

	"pharmachain-service/domain/model"
	"pharmachain-service/domain/repository"
	"pharmachain-service/pkg/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupOutboxRepository(t *testing.T) (repository.Outbox, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create sqlmock")

	dialector := postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{})
	require.NoError(t, err, "Failed to open GORM with mock")

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return NewOutboxRepository(db, logger.NoOpLogger()), mock
}

func TestOutboxRepository_Enqueue(t *testing.T) {
	repo, mock := setupOutboxRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "outbox_entries"`).
		WithArgs(sqlmock.AnyArg(), "pharmachain.identity.sync", "user.created", "DRV-1", `{"code":"DRV-1"}`, "PENDING", sqlmock.AnyArg(), nil).
		WillReturnRows(sqlmock.NewRows([]string{"attempts"}).AddRow(0))
	mock.ExpectCommit()

	entry := &model.OutboxEntry{
		Topic:   "pharmachain.identity.sync",
		Kind:    "user.created",
		Key:     "DRV-1",
		Payload: `{"code":"DRV-1"}`,
		Status:  model.OutboxPending,
	}

	err := repo.Enqueue(context.Background(), entry)
	require.NoError(t, err, "Enqueue() should not fail")
	assert.Len(t, entry.ID, 26, "Enqueue() should assign a ULID primary key")

	require.NoError(t, mock.ExpectationsWereMet(), "SQL expectations should be met")
}

func TestOutboxRepository_FetchPending(t *testing.T) {
	repo, mock := setupOutboxRepository(t)

	createdAt := time.Now().Add(-time.Minute)
	rows := sqlmock.NewRows([]string{"id", "topic", "kind", "key", "payload", "status", "attempts", "created_at", "published_at"}).
		AddRow("01JA0000000000000000000001", "pharmachain.identity.sync", "user.created", "DRV-1", `{"code":"DRV-1"}`, "PENDING", 0, createdAt, nil).
		AddRow("01JA0000000000000000000002", "pharmachain.identity.sync", "user.deleted", "MGR-1", `{"code":"MGR-1"}`, "PENDING", 2, createdAt.Add(time.Second), nil)

	mock.ExpectQuery(`SELECT \* FROM "outbox_entries" WHERE status = \$1 ORDER BY created_at ASC LIMIT \$2`).
		WithArgs("PENDING", 50).
		WillReturnRows(rows)

	entries, err := repo.FetchPending(context.Background(), 50)
	require.NoError(t, err, "FetchPending() should not fail")
	require.Len(t, entries, 2, "FetchPending() should return both pending entries")
	assert.Equal(t, "user.created", entries[0].Kind, "Oldest entry should come first")
	assert.Equal(t, 2, entries[1].Attempts, "Attempts should be scanned from the row")
	assert.Equal(t, model.OutboxPending, entries[1].Status, "Status should be scanned from the row")

	require.NoError(t, mock.ExpectationsWereMet(), "SQL expectations should be met")
}

func TestOutboxRepository_FetchPending_QueryError(t *testing.T) {
	repo, mock := setupOutboxRepository(t)

	mock.ExpectQuery(`SELECT \* FROM "outbox_entries"`).
		WillReturnError(gorm.ErrInvalidDB)

	entries, err := repo.FetchPending(context.Background(), 50)
	assert.Error(t, err, "FetchPending() should surface query errors")
	assert.Nil(t, entries, "No entries should be returned on error")
	assert.Contains(t, err.Error(), "failed to fetch pending outbox entries", "Error should be wrapped")

	require.NoError(t, mock.ExpectationsWereMet(), "SQL expectations should be met")
}

func TestOutboxRepository_MarkPublished(t *testing.T) {
	repo, mock := setupOutboxRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "outbox_entries" SET "published_at"=\$1,"status"=\$2 WHERE id = \$3`).
		WithArgs(sqlmock.AnyArg(), "PUBLISHED", "01JA0000000000000000000001").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.MarkPublished(context.Background(), "01JA0000000000000000000001")
	require.NoError(t, err, "MarkPublished() should not fail")

	require.NoError(t, mock.ExpectationsWereMet(), "SQL expectations should be met")
}

func TestOutboxRepository_MarkFailed(t *testing.T) {
	repo, mock := setupOutboxRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "outbox_entries" SET "attempts"=attempts \+ 1,"status"=CASE WHEN attempts \+ 1 >= \$1 THEN \$2 ELSE \$3 END WHERE id = \$4`).
		WithArgs(10, "FAILED", "PENDING", "01JA0000000000000000000001").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.MarkFailed(context.Background(), "01JA0000000000000000000001", 10)
	require.NoError(t, err, "MarkFailed() should not fail")

	require.NoError(t, mock.ExpectationsWereMet(), "SQL expectations should be met")
}

func TestOutboxRepository_MarkFailed_ExecError(t *testing.T) {
	repo, mock := setupOutboxRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "outbox_entries"`).
		WillReturnError(gorm.ErrInvalidDB)
	mock.ExpectRollback()

	err := repo.MarkFailed(context.Background(), "01JA0000000000000000000001", 10)
	assert.Error(t, err, "MarkFailed() should surface exec errors")
	assert.Contains(t, err.Error(), "failed to mark outbox entry failed", "Error should be wrapped")

	require.NoError(t, mock.ExpectationsWereMet(), "SQL expectations should be met")
}
