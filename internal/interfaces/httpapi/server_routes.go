package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues", handler.ListLeagues)
	mux.HandleFunc("GET /v1/leagues/{leagueID}", handler.GetLeague)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/leagues", RequireAuth(verifier, http.HandlerFunc(handler.CreateLeague)))
	mux.Handle("POST /v1/leagues/join", RequireAuth(verifier, http.HandlerFunc(handler.JoinLeague)))
	mux.Handle("GET /v1/leagues/{leagueID}/lineups/{season}/{week}", RequireAuth(verifier, http.HandlerFunc(handler.GetMyLineup)))
	mux.Handle("PUT /v1/leagues/{leagueID}/lineups/{season}/{week}", RequireAuth(verifier, http.HandlerFunc(handler.SaveMyLineup)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/sync-week", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncWeekJob)))
	mux.Handle("POST /v1/internal/jobs/reconcile", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunReconcileJob)))
}
