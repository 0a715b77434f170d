package repo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/travel-guide/internal/domain"
)

// classify tags store errors that are expected to clear up on their own so
// callers can retry them.
//
//   - connection failures and SQLSTATE class 08 / 57P03 → domain.ErrUnavailable
//   - SQLSTATE class 53 (insufficient resources) → domain.ErrResourceExhausted
//
// Anything else is returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"), pgErr.Code == "57P03":
			return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
		case strings.HasPrefix(pgErr.Code, "53"):
			return fmt.Errorf("%w: %w", domain.ErrResourceExhausted, err)
		}
		return err
	}
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
	}
	return err
}
