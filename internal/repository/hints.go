package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/receipts-collator/constants"
	"github.com/joseph-ayodele/receipts-collator/internal/common"
	"github.com/joseph-ayodele/receipts-collator/internal/entity"
)

const hintsTable = "lookup_hints"

var hintColumns = []string{"item_code", "name", "unit_price", "status", "source", "fetched_at"}

// HintRepository stores lookup outcomes by item code.
type HintRepository interface {
	Migrate(ctx context.Context) error
	GetHint(ctx context.Context, code string) (*entity.HintRecord, error)
	PutHint(ctx context.Context, rec entity.HintRecord) error
	DeleteBefore(ctx context.Context, t time.Time) (int64, error)
	CountByStatus(ctx context.Context) (map[constants.LookupStatus]int, error)
}

type hintRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewHintRepository(db *DB, logger *slog.Logger) HintRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &hintRepo{db: db, logger: logger}
}

func (r *hintRepo) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.db.dialect)
}

// hintsDDL is portable between SQLite and PostgreSQL.
var hintsDDL = []string{
	`CREATE TABLE IF NOT EXISTS ` + hintsTable + ` (
	item_code  VARCHAR(64) NOT NULL PRIMARY KEY,
	name       TEXT        NOT NULL DEFAULT '',
	unit_price VARCHAR(32),
	status     VARCHAR(16) NOT NULL,
	source     VARCHAR(32) NOT NULL DEFAULT '',
	fetched_at BIGINT      NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS ` + hintsTable + `_fetched_at_idx ON ` + hintsTable + ` (fetched_at)`,
}

// Migrate creates the hints table when it does not exist.
func (r *hintRepo) Migrate(ctx context.Context) error {
	for _, stmt := range hintsDDL {
		if err := r.db.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			r.logger.Error("failed to migrate hints table", "error", err)
			return common.NewAppError("DB_ERROR", "create hints table", errors.Join(common.ErrDatabase, err))
		}
	}
	return nil
}

// GetHint returns the stored outcome for code, or nil when there is none.
func (r *hintRepo) GetHint(ctx context.Context, code string) (*entity.HintRecord, error) {
	query, args := r.builder().
		Select(hintColumns...).
		From(entsql.Table(hintsTable)).
		Where(entsql.EQ("item_code", code)).
		Limit(1).
		Query()

	rows := &entsql.Rows{}
	if err := r.db.drv.Query(ctx, query, args, rows); err != nil {
		r.logger.Error("failed to get hint", "item_code", code, "error", err)
		return nil, fmt.Errorf("%w: get hint %s: %v", common.ErrDatabase, code, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("%w: get hint %s: %v", common.ErrDatabase, code, err)
		}
		return nil, nil
	}
	var (
		rec       entity.HintRecord
		price     sql.NullString
		status    string
		fetchedAt int64
	)
	if err := rows.Scan(&rec.Code, &rec.Hint.Name, &price, &status, &rec.Source, &fetchedAt); err != nil {
		return nil, fmt.Errorf("%w: scan hint %s: %v", common.ErrDatabase, code, err)
	}
	rec.Status = constants.LookupStatus(status)
	rec.FetchedAt = time.Unix(fetchedAt, 0).UTC()
	if price.Valid && price.String != "" {
		p, err := decimal.NewFromString(price.String)
		if err != nil {
			r.logger.Warn("hint.price.invalid", "item_code", code, "value", price.String)
		} else {
			rec.Hint.UnitPrice = decimal.NewNullDecimal(p)
		}
	}
	return &rec, nil
}

// PutHint inserts or replaces the outcome for rec.Code.
func (r *hintRepo) PutHint(ctx context.Context, rec entity.HintRecord) error {
	var price any
	if rec.Hint.UnitPrice.Valid {
		price = rec.Hint.UnitPrice.Decimal.String()
	}
	query, args := r.builder().
		Insert(hintsTable).
		Columns(hintColumns...).
		Values(rec.Code, rec.Hint.Name, price, string(rec.Status), rec.Source, rec.FetchedAt.Unix()).
		OnConflict(
			entsql.ConflictColumns("item_code"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if err := r.db.drv.Exec(ctx, query, args, nil); err != nil {
		r.logger.Error("failed to put hint", "item_code", rec.Code, "error", err)
		return fmt.Errorf("%w: put hint %s: %v", common.ErrDatabase, rec.Code, err)
	}
	return nil
}

// DeleteBefore removes outcomes fetched before t and reports how many.
func (r *hintRepo) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	query, args := r.builder().
		Delete(hintsTable).
		Where(entsql.LT("fetched_at", t.Unix())).
		Query()
	var res sql.Result
	if err := r.db.drv.Exec(ctx, query, args, &res); err != nil {
		return 0, fmt.Errorf("%w: prune hints: %v", common.ErrDatabase, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: prune hints: %v", common.ErrDatabase, err)
	}
	return n, nil
}

func (r *hintRepo) CountByStatus(ctx context.Context) (map[constants.LookupStatus]int, error) {
	query, args := r.builder().
		Select("status", entsql.Count("*")).
		From(entsql.Table(hintsTable)).
		GroupBy("status").
		Query()

	rows := &entsql.Rows{}
	if err := r.db.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("%w: count hints: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	out := make(map[constants.LookupStatus]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("%w: count hints: %v", common.ErrDatabase, err)
		}
		out[constants.LookupStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: count hints: %v", common.ErrDatabase, err)
	}
	return out, nil
}
