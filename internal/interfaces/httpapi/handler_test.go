package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/auctionarena/auction-arena/internal/domain/user"
	"github.com/auctionarena/auction-arena/internal/infrastructure/blob"
	"github.com/auctionarena/auction-arena/internal/infrastructure/repository/memory"
	"github.com/auctionarena/auction-arena/internal/platform/logging"
	"github.com/auctionarena/auction-arena/internal/usecase"
)

const testBearerToken = "organizer-token"

type routerTestVerifier struct{}

func (routerTestVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	if token != testBearerToken {
		return user.Principal{}, fmt.Errorf("%w: unknown token", usecase.ErrUnauthorized)
	}
	return user.Principal{UserID: "org-1", Email: "org@example.com"}, nil
}

type routerTestIDGen struct {
	next int
}

func (g *routerTestIDGen) NewID() (string, error) {
	g.next++
	return fmt.Sprintf("test-id-%03d", g.next), nil
}

// newTestRouter wires the full stack against in-memory repositories with a
// verifier that accepts testBearerToken as organizer org-1.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.NewNop()
	auctionRepo := memory.NewAuctionRepository(nil)
	teamRepo := memory.NewTeamRepository(nil)
	setRepo := memory.NewSetRepository(nil)
	playerRepo := memory.NewPlayerRepository(nil)
	ledger := usecase.NewBudgetLedger(teamRepo, playerRepo, logger)
	idGen := &routerTestIDGen{}

	handler := NewHandler(
		usecase.NewAuctionService(auctionRepo, teamRepo, setRepo, playerRepo, ledger, idGen, logger),
		usecase.NewTeamService(auctionRepo, teamRepo, playerRepo, ledger, blob.NewMemoryStore(), idGen, logger),
		usecase.NewSetService(auctionRepo, setRepo, playerRepo, nil, idGen, logger),
		usecase.NewPlayerService(auctionRepo, teamRepo, setRepo, playerRepo, ledger, nil, idGen, logger),
		usecase.NewStatsService(auctionRepo, teamRepo, setRepo, playerRepo, nil, logger),
		usecase.NewImportService(auctionRepo, setRepo, playerRepo, nil, nil, idGen, logger),
		logger,
	)

	return NewRouter(handler, routerTestVerifier{}, logger, []string{"*"})
}

func doJSON(t *testing.T, router http.Handler, method, path, body string, authorized bool) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authorized {
		req.Header.Set("Authorization", "Bearer "+testBearerToken)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v (body %s)", err, rec.Body.String())
	}
	data, ok := envelope["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %s", rec.Body.String())
	}
	return data
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestRouter_OrganizerRoutesRequireAuth(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/auctions", `{"name":"IPL 2026","password":"letmein","budget_per_team":1000,"max_team_member":15}`, false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without token, got %d", rec.Code)
	}
}

func TestRouter_CreateAuctionFlow(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/auctions", `{"name":"IPL 2026","password":"letmein","budget_per_team":1000,"max_team_member":15,"min_team_member":11}`, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d (body %s)", rec.Code, rec.Body.String())
	}

	data := decodeData(t, rec)
	auctionID, _ := data["id"].(string)
	if auctionID == "" {
		t.Fatalf("expected auction id in response, got %v", data)
	}
	if _, ok := data["password_hash"]; ok {
		t.Fatal("password hash must not be serialized")
	}

	// Correct password unlocks viewer access; a wrong one is rejected.
	rec = doJSON(t, router, http.MethodPost, "/v1/auctions/"+auctionID+"/verify-access", `{"password":"letmein"}`, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 for correct password, got %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodPost, "/v1/auctions/"+auctionID+"/verify-access", `{"password":"wrong"}`, false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for wrong password, got %d", rec.Code)
	}
}

func TestRouter_SaleFlow(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/auctions", `{"name":"IPL 2026","password":"letmein","budget_per_team":1000,"max_team_member":15,"min_team_member":11}`, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create auction: expected 201, got %d (body %s)", rec.Code, rec.Body.String())
	}
	auctionID := decodeData(t, rec)["id"].(string)

	rec = doJSON(t, router, http.MethodPost, "/v1/auctions/"+auctionID+"/teams", `{"name":"Strikers","owner":"A. Rao"}`, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create team: expected 201, got %d (body %s)", rec.Code, rec.Body.String())
	}
	teamData := decodeData(t, rec)
	teamID := teamData["id"].(string)
	if got := teamData["remaining_budget"].(float64); got != 1000 {
		t.Fatalf("expected remaining budget 1000, got %v", got)
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/auctions/"+auctionID+"/players", `{"players":[{"name":"R. Sharma","player_number":7,"role":"Batsman","base_price":100}]}`, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create players: expected 201, got %d (body %s)", rec.Code, rec.Body.String())
	}
	created := decodeData(t, rec)["players"].([]any)
	playerID := created[0].(map[string]any)["id"].(string)

	rec = doJSON(t, router, http.MethodPost, "/v1/auctions/"+auctionID+"/players/sale",
		fmt.Sprintf(`{"player_id":%q,"team_id":%q,"sold_price":300}`, playerID, teamID), true)
	if rec.Code != http.StatusOK {
		t.Fatalf("record sale: expected 200, got %d (body %s)", rec.Code, rec.Body.String())
	}
	sold := decodeData(t, rec)
	if got := sold["status"].(string); got != "sold" {
		t.Fatalf("expected status sold, got %q", got)
	}
	if got := sold["sold_number"].(float64); got != 1 {
		t.Fatalf("expected sold number 1, got %v", got)
	}

	// The public leaderboard reflects the sale without auth.
	rec = doJSON(t, router, http.MethodGet, "/v1/auctions/"+auctionID+"/leaderboard", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("leaderboard: expected 200, got %d", rec.Code)
	}
	var envelope map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal leaderboard: %v", err)
	}
	entries := envelope["data"].([]any)
	if len(entries) != 1 {
		t.Fatalf("expected 1 leaderboard entry, got %d", len(entries))
	}
	if got := entries[0].(map[string]any)["total_spent"].(float64); got != 300 {
		t.Fatalf("expected total spent 300, got %v", got)
	}
}

func TestRouter_RejectsUnknownFields(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/auctions", `{"name":"IPL 2026","password":"letmein","budget_per_team":1000,"max_team_member":15,"surprise":true}`, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown field, got %d", rec.Code)
	}
}

func TestRouter_ImportPlayers(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/auctions", `{"name":"IPL 2026","password":"letmein","budget_per_team":1000,"max_team_member":15,"min_team_member":11}`, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create auction: expected 201, got %d", rec.Code)
	}
	auctionID := decodeData(t, rec)["id"].(string)

	body := `{"rows":[{"Name":"R. Sharma","Role":"Batsman","Player Number":"7","Base Price":"2","Set":"Marquee"},{"Name":"J. Bumrah","Role":"Bowler","Player Number":"93","Base Price":"1.5"}]}`
	rec = doJSON(t, router, http.MethodPost, "/v1/auctions/"+auctionID+"/import", body, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("import: expected 200, got %d (body %s)", rec.Code, rec.Body.String())
	}
	result := decodeData(t, rec)
	if got := result["imported"].(float64); got != 2 {
		t.Fatalf("expected 2 imported, got %v", got)
	}

	// Rerunning the same upload imports nothing new.
	rec = doJSON(t, router, http.MethodPost, "/v1/auctions/"+auctionID+"/import", body, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("import rerun: expected 200, got %d", rec.Code)
	}
	result = decodeData(t, rec)
	if got := result["imported"].(float64); got != 0 {
		t.Fatalf("expected 0 imported on rerun, got %v", got)
	}
	if skipped := result["skipped"].([]any); len(skipped) != 2 {
		t.Fatalf("expected 2 skipped rows on rerun, got %d", len(skipped))
	}
}
