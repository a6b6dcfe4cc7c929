package entrypoint

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/glyphforge/sphinx"
	"github.com/glyphforge/sphinx/internal"
	"github.com/glyphforge/sphinx/lib"
	"github.com/glyphforge/sphinx/lib/ledger"
	"github.com/glyphforge/sphinx/lib/puzzle"
)

// Router is the JSON API surface of sphinxd.
type Router struct {
	engine *lib.Engine
	logger *slog.Logger
	mux    *mux.Router
}

func NewRouter(engine *lib.Engine, logger *slog.Logger) *Router {
	rtr := &Router{
		engine: engine,
		logger: logger,
		mux:    mux.NewRouter(),
	}

	api := rtr.mux.PathPrefix(sphinx.APIPrefix).Subrouter()
	api.HandleFunc("/mint", rtr.mint).Methods(http.MethodPost)
	api.HandleFunc("/assets/{id}", rtr.asset).Methods(http.MethodGet)
	api.HandleFunc("/assets/{id}/solve", rtr.solve).Methods(http.MethodPost)
	api.HandleFunc("/assets/{id}/uri", rtr.updateURI).Methods(http.MethodPost)

	rtr.mux.HandleFunc("/healthz", rtr.healthz).Methods(http.MethodGet)

	return rtr
}

func (rtr *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rtr.mux.ServeHTTP(w, r)
}

type mintRequest struct {
	Name       string `json:"name"`
	URI        string `json:"uri"`
	PuzzleType string `json:"puzzleType"`
	Difficulty *uint8 `json:"difficulty"`
	Requester  string `json:"requester"`
}

type mintResponse struct {
	Asset *ledger.Asset    `json:"asset"`
	Event *lib.MintedEvent `json:"event"`
}

func (rtr *Router) mint(w http.ResponseWriter, r *http.Request) {
	lg := internal.GetRequestLogger(rtr.logger, r)

	var req mintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	requester, err := sphinx.ParseIdentity(req.Requester)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	difficulty := uint8(sphinx.DefaultDifficulty)
	if req.Difficulty != nil {
		difficulty = *req.Difficulty
	}

	asset, event, err := rtr.engine.Mint(r.Context(), lib.MintRequest{
		Name:       req.Name,
		URI:        req.URI,
		PuzzleType: req.PuzzleType,
		Difficulty: difficulty,
		Requester:  requester,
	})
	if err != nil {
		lg.Error("mint rejected", "err", err)
		respondError(w, statusFor(err), err)
		return
	}

	respondJSON(w, http.StatusCreated, mintResponse{Asset: asset, Event: event})
}

type solveRequest struct {
	Solver   string `json:"solver"`
	Solution uint64 `json:"solution"`
	NewURI   string `json:"newUri,omitempty"`
}

type solveResponse struct {
	Asset *ledger.Asset    `json:"asset"`
	Event *lib.SolvedEvent `json:"event"`
}

func (rtr *Router) solve(w http.ResponseWriter, r *http.Request) {
	lg := internal.GetRequestLogger(rtr.logger, r)

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	var req solveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	solver, err := sphinx.ParseIdentity(req.Solver)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	asset, event, err := rtr.engine.Solve(r.Context(), lib.SolveRequest{
		Asset:    id,
		Solver:   solver,
		Solution: req.Solution,
		NewURI:   req.NewURI,
	})
	if err != nil {
		lg.Error("solve rejected", "asset", id, "err", err)
		respondError(w, statusFor(err), err)
		return
	}

	lg.Info("solve accepted", "asset", id, "rarity", event.Rarity)
	respondJSON(w, http.StatusOK, solveResponse{Asset: asset, Event: event})
}

type updateURIRequest struct {
	Authority string `json:"authority"`
	URI       string `json:"uri"`
}

func (rtr *Router) updateURI(w http.ResponseWriter, r *http.Request) {
	lg := internal.GetRequestLogger(rtr.logger, r)

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	var req updateURIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	authority, err := sphinx.ParseIdentity(req.Authority)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	asset, err := rtr.engine.UpdateURI(r.Context(), id, authority, req.URI)
	if err != nil {
		lg.Error("uri update rejected", "asset", id, "err", err)
		respondError(w, statusFor(err), err)
		return
	}

	respondJSON(w, http.StatusOK, asset)
}

func (rtr *Router) asset(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	asset, err := rtr.engine.AssetState(r.Context(), id)
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}

	respondJSON(w, http.StatusOK, asset)
}

func (rtr *Router) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// statusFor maps the engine's error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrNotFound),
		errors.Is(err, puzzle.ErrPuzzleNotFound):
		return http.StatusNotFound
	case errors.Is(err, puzzle.ErrAlreadySolved),
		errors.Is(err, ledger.ErrStaleRevision),
		errors.Is(err, ledger.ErrAssetExists):
		return http.StatusConflict
	case errors.Is(err, lib.ErrNotNFTOwner),
		errors.Is(err, lib.ErrUnauthorizedUpdate),
		errors.Is(err, lib.ErrMintDenied):
		return http.StatusForbidden
	case errors.Is(err, puzzle.ErrIncorrectSolution),
		errors.Is(err, puzzle.ErrInvalidPuzzleType),
		errors.Is(err, puzzle.ErrAttributeNotFound),
		errors.Is(err, puzzle.ErrFailedToParsePuzzleData),
		errors.Is(err, sphinx.ErrBadIdentity):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("can't encode response", "err", err)
	}
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
