package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

// Public live views need only the auction id; the password gate is the
// verify-access endpoint.
func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/auctions/{auctionID}/verify-access", handler.VerifyAuctionAccess)
	mux.HandleFunc("GET /v1/auctions/{auctionID}/snapshot", handler.GetAuctionSnapshot)
	mux.HandleFunc("GET /v1/auctions/{auctionID}/leaderboard", handler.GetAuctionLeaderboard)
	mux.HandleFunc("GET /v1/auctions/{auctionID}/recent-sold", handler.ListRecentSoldPlayers)
	mux.HandleFunc("GET /v1/auctions/{auctionID}/teams", handler.ListTeams)
	mux.HandleFunc("GET /v1/auctions/{auctionID}/sets", handler.ListSets)
	mux.HandleFunc("GET /v1/auctions/{auctionID}/players", handler.ListPlayers)
}

func registerOrganizerRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	authorized := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, RequireAuth(verifier, h))
	}

	authorized("POST /v1/auctions", handler.CreateAuction)
	authorized("GET /v1/auctions", handler.ListAuctions)
	authorized("GET /v1/auctions/{auctionID}", handler.GetAuction)
	authorized("PATCH /v1/auctions/{auctionID}", handler.UpdateAuction)
	authorized("DELETE /v1/auctions/{auctionID}", handler.DeleteAuction)
	authorized("GET /v1/auctions/{auctionID}/summary", handler.GetAuctionSummary)

	authorized("POST /v1/auctions/{auctionID}/teams", handler.CreateTeam)
	authorized("PATCH /v1/auctions/{auctionID}/teams/{teamID}", handler.UpdateTeam)
	authorized("DELETE /v1/auctions/{auctionID}/teams/{teamID}", handler.DeleteTeam)
	authorized("POST /v1/auctions/{auctionID}/teams/{teamID}/logo", handler.UploadTeamLogo)

	authorized("POST /v1/auctions/{auctionID}/sets", handler.CreateSet)
	authorized("PATCH /v1/auctions/{auctionID}/sets/{setID}", handler.UpdateSet)
	authorized("DELETE /v1/auctions/{auctionID}/sets/{setID}", handler.DeleteSet)
	authorized("POST /v1/auctions/{auctionID}/sets/{setID}/start", handler.StartSet)
	authorized("POST /v1/auctions/{auctionID}/sets/{setID}/complete", handler.CompleteSet)

	authorized("POST /v1/auctions/{auctionID}/players", handler.CreatePlayers)
	authorized("PATCH /v1/auctions/{auctionID}/players", handler.UpdatePlayers)
	authorized("DELETE /v1/auctions/{auctionID}/players", handler.DeletePlayers)
	authorized("POST /v1/auctions/{auctionID}/players/sale", handler.RecordPlayerSale)
	authorized("POST /v1/auctions/{auctionID}/players/unsold", handler.RecordPlayerUnsold)
	authorized("POST /v1/auctions/{auctionID}/players/undo-sale", handler.UndoPlayerSale)
	authorized("POST /v1/auctions/{auctionID}/import", handler.ImportPlayers)
}
