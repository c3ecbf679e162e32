package history

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/ledger/internal/infra/pgutils"
	"github.com/fastprodman/ledger/internal/repos/accounts"
	"github.com/fastprodman/ledger/internal/repos/history"
)

var _ history.History = (*historyRepo)(nil)

type historyRepo struct{ q pgutils.Querier }

func New(q pgutils.Querier) *historyRepo {
	return &historyRepo{q: q}
}

func tableFor(kind accounts.Kind) (string, error) {
	switch kind {
	case accounts.KindUser:
		return "user_account_history", nil
	case accounts.KindSub:
		return "sub_account_history", nil
	default:
		return "", fmt.Errorf("unknown account kind %d", kind)
	}
}

func (r *historyRepo) Append(ctx context.Context, rec history.Record) (history.Record, error) {
	table, err := tableFor(rec.AccountKind)
	if err != nil {
		return history.Record{}, fmt.Errorf("append history: %w", err)
	}

	label := rec.Kind.Label()
	if label == "" {
		return history.Record{}, fmt.Errorf("append history: unknown kind %d", rec.Kind)
	}

	err = r.q.QueryRowContext(ctx, `
		INSERT INTO `+table+` (
			account_id, balance_before, balance_after, activity, type,
			ip, location, user_agent, author
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`,
		rec.AccountID, rec.BalanceBefore, rec.BalanceAfter, rec.Activity, label,
		nullable(rec.IP), nullable(rec.Location), nullable(rec.UserAgent), nullable(rec.Author),
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return history.Record{}, fmt.Errorf("append history: %w", err)
	}

	return rec, nil
}

func (r *historyRepo) List(ctx context.Context, f history.Filter) ([]history.Record, error) {
	table, err := tableFor(f.AccountKind)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT id, account_id, balance_before, balance_after, activity, type,
		       ip, location, user_agent, author, created_at
		FROM `+table+`
		WHERE account_id = $1
		  AND created_at BETWEEN $2 AND $3
		ORDER BY created_at DESC, id DESC
	`, f.AccountID, f.From, f.To)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	//nolint:errcheck
	defer rows.Close()

	out := make([]history.Record, 0)

	for rows.Next() {
		var (
			rec                             history.Record
			label                           string
			ip, location, userAgent, author sql.NullString
		)

		err = rows.Scan(
			&rec.ID, &rec.AccountID, &rec.BalanceBefore, &rec.BalanceAfter, &rec.Activity, &label,
			&ip, &location, &userAgent, &author, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}

		rec.Kind, err = history.ParseLabel(label)
		if err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}

		rec.AccountKind = f.AccountKind
		rec.IP, rec.Location, rec.UserAgent, rec.Author = ip.String, location.String, userAgent.String, author.String

		out = append(out, rec)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	return out, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
