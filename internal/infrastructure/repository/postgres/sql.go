package postgres

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const (
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isSerializationFailure reports errors after which the whole transaction can
// be retried.
func isSerializationFailure(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		code := string(pqErr.Code)
		return code == pqSerializationFailure || code == pqDeadlockDetected
	}
	msg := err.Error()
	return strings.Contains(msg, "("+pqSerializationFailure+")") ||
		strings.Contains(msg, "could not serialize access")
}

func nullTimeToTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time.UTC()
	return &t
}

func nullDecimalToPtr(v decimal.NullDecimal) *decimal.Decimal {
	if !v.Valid {
		return nil
	}
	d := v.Decimal
	return &d
}

func int64Slice(v pq.Int64Array) []int64 {
	if len(v) == 0 {
		return nil
	}
	out := make([]int64, len(v))
	copy(out, v)
	return out
}
