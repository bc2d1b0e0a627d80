package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/auctionarena/auction-arena/internal/domain/auction"
	qb "github.com/auctionarena/auction-arena/internal/platform/querybuilder"
)

type AuctionRepository struct {
	db *sqlx.DB
}

func NewAuctionRepository(db *sqlx.DB) *AuctionRepository {
	return &AuctionRepository{db: db}
}

func (r *AuctionRepository) Create(ctx context.Context, item auction.Auction) error {
	query, args, err := qb.InsertInto("auctions").
		Columns(
			"public_id", "organizer_id", "name", "password_hash", "state",
			"budget_per_team", "max_team_member", "min_team_member",
			"live_enabled", "viewer_analytics_enabled", "logo_url",
		).
		Values(
			item.ID, item.OrganizerID, item.Name, item.PasswordHash, string(item.State),
			item.BudgetPerTeam, item.MaxTeamMember, item.MinTeamMember,
			item.LiveEnabled, item.ViewerAnalyticsEnabled, item.LogoURL,
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert auction query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("auction name %q already taken", item.Name)
		}
		return fmt.Errorf("insert auction: %w", err)
	}

	return nil
}

func (r *AuctionRepository) GetByID(ctx context.Context, auctionID string) (auction.Auction, bool, error) {
	query, args, err := qb.Select("*").From("auctions").
		Where(
			qb.Eq("public_id", auctionID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return auction.Auction{}, false, fmt.Errorf("build get auction query: %w", err)
	}

	var row auctionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return auction.Auction{}, false, nil
		}
		return auction.Auction{}, false, fmt.Errorf("get auction by id: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *AuctionRepository) GetByOrganizerAndName(ctx context.Context, organizerID, name string) (auction.Auction, bool, error) {
	query, args, err := qb.Select("*").From("auctions").
		Where(
			qb.Eq("organizer_id", organizerID),
			qb.Expr("LOWER(name) = LOWER(?)", name),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return auction.Auction{}, false, fmt.Errorf("build get auction by name query: %w", err)
	}

	var row auctionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return auction.Auction{}, false, nil
		}
		return auction.Auction{}, false, fmt.Errorf("get auction by name: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *AuctionRepository) ListByOrganizer(ctx context.Context, organizerID string) ([]auction.Auction, error) {
	query, args, err := qb.Select("*").From("auctions").
		Where(
			qb.Eq("organizer_id", organizerID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list auctions query: %w", err)
	}

	var rows []auctionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list auctions: %w", err)
	}

	out := make([]auction.Auction, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *AuctionRepository) Update(ctx context.Context, item auction.Auction) error {
	query, args, err := qb.Update("auctions").
		Set("name", item.Name).
		Set("password_hash", item.PasswordHash).
		Set("state", string(item.State)).
		Set("budget_per_team", item.BudgetPerTeam).
		Set("max_team_member", item.MaxTeamMember).
		Set("min_team_member", item.MinTeamMember).
		Set("live_enabled", item.LiveEnabled).
		Set("viewer_analytics_enabled", item.ViewerAnalyticsEnabled).
		Set("logo_url", item.LogoURL).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", item.ID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update auction query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("auction name %q already taken", item.Name)
		}
		return fmt.Errorf("update auction: %w", err)
	}

	return nil
}

func (r *AuctionRepository) Delete(ctx context.Context, auctionID string) error {
	query, args, err := qb.Update("auctions").
		SetExpr("deleted_at", "NOW()").
		Where(
			qb.Eq("public_id", auctionID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete auction query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete auction: %w", err)
	}

	return nil
}

// NextSoldNumber advances the per-auction sale sequence in one statement, so
// concurrent sales never observe the same number.
func (r *AuctionRepository) NextSoldNumber(ctx context.Context, auctionID string) (int64, error) {
	const query = `
UPDATE auctions
SET sold_sequence = sold_sequence + 1,
    updated_at = NOW()
WHERE public_id = $1
  AND deleted_at IS NULL
RETURNING sold_sequence`

	var next int64
	if err := r.db.GetContext(ctx, &next, query, auctionID); err != nil {
		if isNotFound(err) {
			return 0, fmt.Errorf("auction %s not found", auctionID)
		}
		return 0, fmt.Errorf("advance sold sequence: %w", err)
	}

	return next, nil
}
