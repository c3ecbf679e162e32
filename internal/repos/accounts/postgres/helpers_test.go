package accounts

import (
	"database/sql"
	"testing"

	"github.com/fastprodman/ledger/internal/infra/pgtestutil"
)

// newSeededDB returns a fresh database holding owner "dave" with
// sub-account "dave_SAVE" (user balance 500, sub balance 500).
func newSeededDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	db, cleanup := pgtestutil.NewTestDB(t)
	seedAccount(t, db, "dave", "dave_SAVE", 500, 500)

	return db, cleanup
}
