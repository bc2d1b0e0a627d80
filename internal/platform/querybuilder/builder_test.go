package querybuilder

import (
	"reflect"
	"testing"
)

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "name").
		From("auction_sets").
		Where(
			Eq("auction_public_id", "a1"),
			NotEq("state", "completed"),
			IsNull("deleted_at"),
		).
		OrderBy("sort_order", "id").
		Limit(5).
		ToSQL()
	if err != nil {
		t.Fatalf("build select: %v", err)
	}

	want := "SELECT id, name FROM auction_sets WHERE auction_public_id = $1 AND state <> $2 AND deleted_at IS NULL ORDER BY sort_order, id LIMIT 5"
	if query != want {
		t.Fatalf("unexpected query:\n got: %s\nwant: %s", query, want)
	}
	if !reflect.DeepEqual(args, []any{"a1", "completed"}) {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestSelectBuilder_EmptyIn(t *testing.T) {
	query, args, err := Select("id").
		From("players").
		Where(In("player_number", nil)).
		ToSQL()
	if err != nil {
		t.Fatalf("build select: %v", err)
	}
	if query != "SELECT id FROM players WHERE 1=0" {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 0 {
		t.Fatalf("expected no args, got %v", args)
	}
}

func TestInsertBuilder_MultiRowWithSuffix(t *testing.T) {
	query, args, err := InsertInto("players").
		Columns("public_id", "name").
		Values("p1", "A").
		Values("p2", "B").
		Suffix("ON CONFLICT DO NOTHING").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert: %v", err)
	}

	want := "INSERT INTO players (public_id, name) VALUES ($1, $2), ($3, $4) ON CONFLICT DO NOTHING"
	if query != want {
		t.Fatalf("unexpected query:\n got: %s\nwant: %s", query, want)
	}
	if !reflect.DeepEqual(args, []any{"p1", "A", "p2", "B"}) {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestInsertBuilder_RowArityMismatch(t *testing.T) {
	_, _, err := InsertInto("players").
		Columns("public_id", "name").
		Values("p1").
		ToSQL()
	if err == nil {
		t.Fatal("expected arity error")
	}
}

func TestUpdateBuilder_SetExpr(t *testing.T) {
	query, args, err := Update("teams").
		SetExpr("remaining_budget", "remaining_budget + ?", int64(300)).
		Where(Eq("public_id", "t1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update: %v", err)
	}

	want := "UPDATE teams SET remaining_budget = remaining_budget + $1 WHERE public_id = $2"
	if query != want {
		t.Fatalf("unexpected query:\n got: %s\nwant: %s", query, want)
	}
	if !reflect.DeepEqual(args, []any{int64(300), "t1"}) {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestDeleteBuilder_RequiresWhere(t *testing.T) {
	if _, _, err := DeleteFrom("teams").ToSQL(); err == nil {
		t.Fatal("expected error for delete without where")
	}

	query, args, err := DeleteFrom("teams").Where(Eq("auction_public_id", "a1")).ToSQL()
	if err != nil {
		t.Fatalf("build delete: %v", err)
	}
	if query != "DELETE FROM teams WHERE auction_public_id = $1" {
		t.Fatalf("unexpected query: %s", query)
	}
	if !reflect.DeepEqual(args, []any{"a1"}) {
		t.Fatalf("unexpected args: %v", args)
	}
}
