package repositories

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/Gopher0727/GroupChat/internal/models"
)

// PostgreSQL SQLSTATE codes that mean the transaction lost a race.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// translate maps storage errors onto the model error kinds. what names the
// entity involved and is used in the reason text.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	var modelErr *models.Error
	if errors.As(err, &modelErr) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.NotFoundf("%s not found", what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return models.Conflictf("%s already exists", what)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return models.NotFoundf("%s refers to a missing row", what)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected:
			return models.Conflictf("concurrent update, retry")
		}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return models.Conflictf("%s already exists", what)
		case sqlite3.ErrConstraintForeignKey:
			return models.NotFoundf("%s refers to a missing row", what)
		}
		if liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked {
			return models.Conflictf("concurrent update, retry")
		}
	}

	return fmt.Errorf("%s: %w", what, err)
}
