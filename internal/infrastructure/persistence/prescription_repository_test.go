package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/pharmos/backend/internal/domain/shared"
)

func TestGormPrescriptionRepository_ClaimShareCode(t *testing.T) {
	t.Run("claims an active unused share code", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormPrescriptionRepository(gormDB)

		mock.ExpectExec(`UPDATE "prescriptions" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.ClaimShareCode(context.Background(), uuid.New(), "RX-7KQ2M9", uuid.New())

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects an already-used share code", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormPrescriptionRepository(gormDB)

		mock.ExpectExec(`UPDATE "prescriptions" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.ClaimShareCode(context.Background(), uuid.New(), "RX-7KQ2M9", uuid.New())

		assert.ErrorIs(t, err, shared.ErrShareCodeInvalid)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPrescriptionRepository_ReleaseShareCode(t *testing.T) {
	t.Run("releases a claimed code", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormPrescriptionRepository(gormDB)

		mock.ExpectExec(`UPDATE "prescriptions" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.ReleaseShareCode(context.Background(), uuid.New(), "RX-7KQ2M9")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found when nothing was claimed", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormPrescriptionRepository(gormDB)

		mock.ExpectExec(`UPDATE "prescriptions" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.ReleaseShareCode(context.Background(), uuid.New(), "RX-7KQ2M9")

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
