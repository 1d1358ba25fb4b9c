package postgresql

import (
	"context"

	"github.com/campustrack/attendance-backend-go/internal/pkg/database"
)

// GetQuerier returns the context's open transaction when one is
// present, otherwise the pool. Repositories call this at the top of
// every method so the same SQL joins a surrounding transaction.
func GetQuerier(ctx context.Context, db *database.DB) database.Querier {
	if tx, ok := database.TxFromContext(ctx); ok {
		return tx
	}
	return db.Pool
}
