package api

import (
	"time"

	"github.com/fastprodman/ledger/internal/repos/accounts"
	"github.com/fastprodman/ledger/internal/repos/history"
	"github.com/fastprodman/ledger/internal/services/ledger"
)

const timestampLayout = "2006-01-02 15:04:05"

type subAccountView struct {
	ID             int64  `json:"id"`
	Owner          string `json:"owner"`
	Code           string `json:"code"`
	Balance        int64  `json:"balance"`
	BalanceAchieve int64  `json:"balance_achieve"`
	Enabled        bool   `json:"enabled"`
}

type userAccountView struct {
	ID             int64            `json:"id"`
	Owner          string           `json:"owner"`
	Balance        int64            `json:"balance"`
	BalanceAchieve int64            `json:"balance_achieve"`
	SubAccounts    []subAccountView `json:"sub_accounts,omitempty"`
}

type recordView struct {
	ID            int64  `json:"id"`
	Account       string `json:"account"`
	CreatedAt     string `json:"created_at"`
	BalanceBefore int64  `json:"balance_before"`
	BalanceAfter  int64  `json:"balance_after"`
	Activity      string `json:"activity"`
	Type          string `json:"type"`
	IP            string `json:"ip"`
	Location      string `json:"location"`
	UserAgent     string `json:"user_agent"`
	Author        string `json:"author"`
}

type receiptView struct {
	Accounts []any        `json:"accounts"`
	Records  []recordView `json:"records"`
}

func toSubAccountView(acc accounts.Account) subAccountView {
	return subAccountView{
		ID:             acc.ID,
		Owner:          acc.Owner,
		Code:           acc.Code,
		Balance:        acc.Balance,
		BalanceAchieve: acc.BalanceAchieved,
		Enabled:        acc.Enabled,
	}
}

func toSubAccountViews(subs []accounts.Account) []subAccountView {
	out := make([]subAccountView, 0, len(subs))
	for _, sub := range subs {
		out = append(out, toSubAccountView(sub))
	}

	return out
}

func toUserAccountView(acc accounts.Account, subs []accounts.Account) userAccountView {
	return userAccountView{
		ID:             acc.ID,
		Owner:          acc.Owner,
		Balance:        acc.Balance,
		BalanceAchieve: acc.BalanceAchieved,
		SubAccounts:    toSubAccountViews(subs),
	}
}

func toRecordViews(recs []history.Record, loc *time.Location) []recordView {
	out := make([]recordView, 0, len(recs))

	for _, rec := range recs {
		out = append(out, recordView{
			ID:            rec.ID,
			Account:       rec.AccountKind.String(),
			CreatedAt:     rec.CreatedAt.In(loc).Format(timestampLayout),
			BalanceBefore: rec.BalanceBefore,
			BalanceAfter:  rec.BalanceAfter,
			Activity:      rec.Activity,
			Type:          rec.Kind.String(),
			IP:            rec.IP,
			Location:      rec.Location,
			UserAgent:     rec.UserAgent,
			Author:        rec.Author,
		})
	}

	return out
}

func toReceiptView(r ledger.Receipt, loc *time.Location) receiptView {
	view := receiptView{
		Accounts: make([]any, 0, len(r.Accounts)),
		Records:  toRecordViews(r.Records, loc),
	}

	for _, acc := range r.Accounts {
		if acc.Kind == accounts.KindUser {
			view.Accounts = append(view.Accounts, toUserAccountView(acc, nil))
			continue
		}

		view.Accounts = append(view.Accounts, toSubAccountView(acc))
	}

	return view
}
