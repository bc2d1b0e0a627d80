package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/auctionarena/auction-arena/internal/domain/player"
	qb "github.com/auctionarena/auction-arena/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

var playerInsertColumns = []string{
	"public_id", "auction_public_id", "name", "player_number", "role",
	"batting_style", "bowling_style", "nationality", "set_public_id",
	"team_public_id", "status", "base_price", "sold_price", "marquee",
	"sold_number", "bidding",
}

func playerInsertValues(item player.Player) ([]any, error) {
	bidding, err := encodeBidding(item.Bidding)
	if err != nil {
		return nil, err
	}

	return []any{
		item.ID, item.AuctionID, item.Name, item.PlayerNumber, item.Role,
		item.BattingStyle, item.BowlingStyle, item.Nationality, item.SetID,
		item.TeamID, string(item.Status), item.BasePrice, item.SoldPrice,
		item.Marquee, item.SoldNumber, bidding,
	}, nil
}

func (r *PlayerRepository) Create(ctx context.Context, item player.Player) error {
	values, err := playerInsertValues(item)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertInto("players").
		Columns(playerInsertColumns...).
		Values(values...).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert player query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("player number %d already taken", item.PlayerNumber)
		}
		return fmt.Errorf("insert player: %w", err)
	}

	return nil
}

// CreateBatch inserts the whole batch in one multi-row statement. A bad row
// fails the statement as a unit; the error is returned so the caller can
// retry rows individually and keep the good ones.
func (r *PlayerRepository) CreateBatch(ctx context.Context, items []player.Player) (map[int]error, error) {
	if len(items) == 0 {
		return map[int]error{}, nil
	}

	builder := qb.InsertInto("players").Columns(playerInsertColumns...)
	for _, item := range items {
		values, err := playerInsertValues(item)
		if err != nil {
			return nil, err
		}
		builder = builder.Values(values...)
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build bulk insert players query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("bulk insert %d players: %w", len(items), err)
	}

	return map[int]error{}, nil
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (player.Player, bool, error) {
	query, args, err := qb.Select("*").From("players").
		Where(
			qb.Eq("public_id", playerID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build get player query: %w", err)
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("get player by id: %w", err)
	}

	item, err := row.toDomain()
	if err != nil {
		return player.Player{}, false, err
	}

	return item, true, nil
}

func (r *PlayerRepository) ListByAuction(ctx context.Context, auctionID string, filter player.Filter) ([]player.Player, error) {
	conditions := []qb.Condition{
		qb.Eq("auction_public_id", auctionID),
		qb.IsNull("deleted_at"),
	}
	if filter.SetID != "" {
		conditions = append(conditions, qb.Eq("set_public_id", filter.SetID))
	}
	if filter.TeamID != "" {
		conditions = append(conditions, qb.Eq("team_public_id", filter.TeamID))
	}
	if filter.Status != "" {
		conditions = append(conditions, qb.Eq("status", string(filter.Status)))
	}

	query, args, err := qb.Select("*").From("players").
		Where(conditions...).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list players query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		item, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}

	return out, nil
}

func (r *PlayerRepository) ListNumbersByAuction(ctx context.Context, auctionID string) (map[int]struct{}, error) {
	query, args, err := qb.Select("player_number").From("players").
		Where(
			qb.Eq("auction_public_id", auctionID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list player numbers query: %w", err)
	}

	var numbers []int
	if err := r.db.SelectContext(ctx, &numbers, query, args...); err != nil {
		return nil, fmt.Errorf("list player numbers: %w", err)
	}

	out := make(map[int]struct{}, len(numbers))
	for _, n := range numbers {
		out[n] = struct{}{}
	}

	return out, nil
}

func (r *PlayerRepository) Update(ctx context.Context, item player.Player) error {
	bidding, err := encodeBidding(item.Bidding)
	if err != nil {
		return err
	}

	query, args, err := qb.Update("players").
		Set("name", item.Name).
		Set("player_number", item.PlayerNumber).
		Set("role", item.Role).
		Set("batting_style", item.BattingStyle).
		Set("bowling_style", item.BowlingStyle).
		Set("nationality", item.Nationality).
		Set("set_public_id", item.SetID).
		Set("team_public_id", item.TeamID).
		Set("status", string(item.Status)).
		Set("base_price", item.BasePrice).
		Set("sold_price", item.SoldPrice).
		Set("marquee", item.Marquee).
		Set("sold_number", item.SoldNumber).
		Set("bidding", bidding).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", item.ID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update player query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("player number %d already taken", item.PlayerNumber)
		}
		return fmt.Errorf("update player: %w", err)
	}

	return nil
}

func (r *PlayerRepository) Delete(ctx context.Context, playerID string) error {
	query, args, err := qb.Update("players").
		SetExpr("deleted_at", "NOW()").
		Where(
			qb.Eq("public_id", playerID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete player query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete player: %w", err)
	}

	return nil
}

func (r *PlayerRepository) DeleteByAuction(ctx context.Context, auctionID string) error {
	query, args, err := qb.Update("players").
		SetExpr("deleted_at", "NOW()").
		Where(
			qb.Eq("auction_public_id", auctionID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete players by auction query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete players by auction: %w", err)
	}

	return nil
}

func (r *PlayerRepository) CountBySet(ctx context.Context, setID string) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From("players").
		Where(
			qb.Eq("set_public_id", setID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count players by set query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count players by set: %w", err)
	}

	return count, nil
}

func (r *PlayerRepository) CountByTeam(ctx context.Context, teamID string) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From("players").
		Where(
			qb.Eq("team_public_id", teamID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count players by team query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count players by team: %w", err)
	}

	return count, nil
}

// MoveUnsoldToSet runs the reconciliation sweep as one statement so a crash
// cannot leave half the unsold pool moved.
func (r *PlayerRepository) MoveUnsoldToSet(ctx context.Context, auctionID, setID string) (int, error) {
	query, args, err := qb.Update("players").
		Set("set_public_id", setID).
		Set("status", string(player.StatusIdle)).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("auction_public_id", auctionID),
			qb.Eq("status", string(player.StatusUnsold)),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build move unsold players query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("move unsold players: %w", err)
	}
	moved, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("move unsold players rows affected: %w", err)
	}

	return int(moved), nil
}
