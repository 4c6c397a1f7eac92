package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrStorageUnavailable means the database could not be opened or
	// initialized. Callers degrade to empty collections.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrDuplicateKey is returned when inserting a record whose id exists.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrCorruptRecord is returned when a stored row cannot be decoded.
	ErrCorruptRecord = errors.New("corrupt record")
)

const pgUniqueViolation = "23505"

// translateError maps driver errors onto the package sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, pgErr.ConstraintName)
	}
	s := err.Error()
	if strings.Contains(s, "UNIQUE constraint") || strings.Contains(s, "PRIMARY KEY constraint") {
		return fmt.Errorf("%w: %w", ErrDuplicateKey, err)
	}
	return err
}

// IsPermanent reports errors that retrying cannot fix.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrDuplicateKey) ||
		errors.Is(err, ErrCorruptRecord) ||
		errors.Is(err, ErrStorageUnavailable)
}
