package accounts

import (
	"github.com/fastprodman/ledger/internal/infra/pgutils"
	"github.com/fastprodman/ledger/internal/repos/accounts"
)

var _ accounts.Accounts = (*accountsRepo)(nil)

type accountsRepo struct{ q pgutils.Querier }

// New binds the repository to q, which is either the pool for committed
// reads or the transaction of a unit of work.
func New(q pgutils.Querier) *accountsRepo {
	return &accountsRepo{q: q}
}
