package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/auctionarena/auction-arena/internal/domain/auctionset"
	qb "github.com/auctionarena/auction-arena/internal/platform/querybuilder"
)

type SetRepository struct {
	db *sqlx.DB
}

func NewSetRepository(db *sqlx.DB) *SetRepository {
	return &SetRepository{db: db}
}

func (r *SetRepository) Create(ctx context.Context, item auctionset.Set) error {
	query, args, err := qb.InsertInto("auction_sets").
		Columns("public_id", "auction_public_id", "name", "sort_order", "state").
		Values(item.ID, item.AuctionID, item.Name, item.Order, string(item.State)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert set query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("set name %q already taken", item.Name)
		}
		return fmt.Errorf("insert set: %w", err)
	}

	return nil
}

func (r *SetRepository) GetByID(ctx context.Context, setID string) (auctionset.Set, bool, error) {
	query, args, err := qb.Select("*").From("auction_sets").
		Where(
			qb.Eq("public_id", setID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return auctionset.Set{}, false, fmt.Errorf("build get set query: %w", err)
	}

	var row setTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return auctionset.Set{}, false, nil
		}
		return auctionset.Set{}, false, fmt.Errorf("get set by id: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *SetRepository) GetByAuctionAndName(ctx context.Context, auctionID, name string) (auctionset.Set, bool, error) {
	query, args, err := qb.Select("*").From("auction_sets").
		Where(
			qb.Eq("auction_public_id", auctionID),
			qb.Expr("LOWER(name) = LOWER(?)", name),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return auctionset.Set{}, false, fmt.Errorf("build get set by name query: %w", err)
	}

	var row setTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return auctionset.Set{}, false, nil
		}
		return auctionset.Set{}, false, fmt.Errorf("get set by name: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *SetRepository) ListByAuction(ctx context.Context, auctionID string) ([]auctionset.Set, error) {
	query, args, err := qb.Select("*").From("auction_sets").
		Where(
			qb.Eq("auction_public_id", auctionID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("sort_order", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list sets query: %w", err)
	}

	var rows []setTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}

	out := make([]auctionset.Set, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *SetRepository) Update(ctx context.Context, item auctionset.Set) error {
	query, args, err := qb.Update("auction_sets").
		Set("name", item.Name).
		Set("sort_order", item.Order).
		Set("state", string(item.State)).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", item.ID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update set query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("set name %q already taken", item.Name)
		}
		return fmt.Errorf("update set: %w", err)
	}

	return nil
}

func (r *SetRepository) Delete(ctx context.Context, setID string) error {
	query, args, err := qb.Update("auction_sets").
		SetExpr("deleted_at", "NOW()").
		Where(
			qb.Eq("public_id", setID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete set query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete set: %w", err)
	}

	return nil
}

func (r *SetRepository) DeleteByAuction(ctx context.Context, auctionID string) error {
	query, args, err := qb.Update("auction_sets").
		SetExpr("deleted_at", "NOW()").
		Where(
			qb.Eq("auction_public_id", auctionID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete sets by auction query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete sets by auction: %w", err)
	}

	return nil
}

// DemoteRunning idles every other running set of the auction in one
// statement, keeping the single-running-set window as small as possible.
func (r *SetRepository) DemoteRunning(ctx context.Context, auctionID, excludeSetID string) error {
	query, args, err := qb.Update("auction_sets").
		Set("state", string(auctionset.StateIdle)).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("auction_public_id", auctionID),
			qb.Eq("state", string(auctionset.StateRunning)),
			qb.NotEq("public_id", excludeSetID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build demote running sets query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("demote running sets: %w", err)
	}

	return nil
}
