package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/auctionarena/auction-arena/internal/domain/team"
	qb "github.com/auctionarena/auction-arena/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) Create(ctx context.Context, item team.Team) error {
	query, args, err := qb.InsertInto("teams").
		Columns(
			"public_id", "auction_public_id", "name", "owner",
			"budget", "remaining_budget", "logo_url",
		).
		Values(
			item.ID, item.AuctionID, item.Name, item.Owner,
			item.Budget, item.RemainingBudget, item.LogoURL,
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert team query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("team name %q already taken", item.Name)
		}
		return fmt.Errorf("insert team: %w", err)
	}

	return nil
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(
			qb.Eq("public_id", teamID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build get team query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team by id: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *TeamRepository) GetByAuctionAndName(ctx context.Context, auctionID, name string) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(
			qb.Eq("auction_public_id", auctionID),
			qb.Expr("LOWER(name) = LOWER(?)", name),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build get team by name query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team by name: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *TeamRepository) ListByAuction(ctx context.Context, auctionID string) ([]team.Team, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(
			qb.Eq("auction_public_id", auctionID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list teams query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *TeamRepository) Update(ctx context.Context, item team.Team) error {
	query, args, err := qb.Update("teams").
		Set("name", item.Name).
		Set("owner", item.Owner).
		Set("budget", item.Budget).
		Set("remaining_budget", item.RemainingBudget).
		Set("logo_url", item.LogoURL).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", item.ID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update team query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("team name %q already taken", item.Name)
		}
		return fmt.Errorf("update team: %w", err)
	}

	return nil
}

func (r *TeamRepository) Delete(ctx context.Context, teamID string) error {
	query, args, err := qb.Update("teams").
		SetExpr("deleted_at", "NOW()").
		Where(
			qb.Eq("public_id", teamID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete team query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete team: %w", err)
	}

	return nil
}

func (r *TeamRepository) DeleteByAuction(ctx context.Context, auctionID string) error {
	query, args, err := qb.Update("teams").
		SetExpr("deleted_at", "NOW()").
		Where(
			qb.Eq("auction_public_id", auctionID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete teams by auction query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete teams by auction: %w", err)
	}

	return nil
}

// AdjustRemainingBudget applies the delta inside the database, so two
// concurrent sales against the same team cannot lose an update.
func (r *TeamRepository) AdjustRemainingBudget(ctx context.Context, teamID string, delta int64) error {
	query, args, err := qb.Update("teams").
		SetExpr("remaining_budget", "remaining_budget + ?", delta).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", teamID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build adjust remaining budget query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("adjust remaining budget: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("team %s not found", teamID)
	}

	return nil
}

func (r *TeamRepository) SetBudgets(ctx context.Context, teamID string, budget, remaining int64) (bool, error) {
	query, args, err := qb.Update("teams").
		Set("budget", budget).
		Set("remaining_budget", remaining).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", teamID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build set budgets query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("set budgets: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set budgets rows affected: %w", err)
	}

	return affected > 0, nil
}
