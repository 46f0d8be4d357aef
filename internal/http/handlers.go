package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dieKrake/life-leveler-sub000/internal/auth"
	"github.com/dieKrake/life-leveler-sub000/internal/engine"
	"github.com/dieKrake/life-leveler-sub000/internal/progression"
	"github.com/dieKrake/life-leveler-sub000/internal/repo"
)

const maxBodyBytes = 1 << 20

type FlexTime struct {
	time.Time
}

func (ft *FlexTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	// Accept YYYY-MM-DD from <input type="date">
	if t, err := time.Parse("2006-01-02", s); err == nil {
		ft.Time = t
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		ft.Time = t
		return nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		ft.Time = t
		return nil
	}
	return errors.New("invalid date/time format")
}

func (ft *FlexTime) ToTimePtr() *time.Time {
	if ft == nil || ft.Time.IsZero() {
		return nil
	}
	t := ft.Time
	return &t
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type entityResponse struct {
	ID string `json:"id"`
}

type todoRequest struct {
	Title     string    `json:"title"`
	StartTime *FlexTime `json:"start_time"`
	EndTime   *FlexTime `json:"end_time"`
	XPValue   int       `json:"xp_value"`
}

type tiersRequest struct {
	Tiers progression.Tiers `json:"tiers"`
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Email and password required")
		return
	}
	userID, err := a.Service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusBadRequest, "REGISTRATION_FAILED", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, entityResponse{ID: userID})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	accessToken, refreshToken, err := a.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{AccessToken: accessToken, RefreshToken: refreshToken})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing user")
		return
	}
	id, email, err := a.Repo.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "email": email})
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing user")
		return
	}
	stats, err := a.Engine.Stats(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) handleListTodos(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing user")
		return
	}
	todos, err := a.Repo.ListTodos(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list todos")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"todos": todos})
}

func (a *API) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing user")
		return
	}
	var req todoRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Title required")
		return
	}
	if !engine.ValidXPValue(req.XPValue) {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Xp_value must be 10, 20 or 30")
		return
	}
	id, err := a.Repo.CreateTodo(r.Context(), userID, req.Title, req.StartTime.ToTimePtr(), req.EndTime.ToTimePtr(), req.XPValue)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create todo")
		return
	}
	writeJSON(w, http.StatusCreated, entityResponse{ID: id})
}

func (a *API) handleCompleteTodo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing user")
		return
	}
	result, err := a.Engine.CompleteTodo(r.Context(), userID, id)
	if err != nil {
		a.writeEngineError(w, err, "Failed to complete todo")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleUncompleteTodo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing user")
		return
	}
	result, err := a.Engine.UncompleteTodo(r.Context(), userID, id)
	if err != nil {
		a.writeEngineError(w, err, "Failed to uncomplete todo")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleArchiveTodo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing user")
		return
	}
	if err := a.Repo.ArchiveTodo(r.Context(), id, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Todo not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to archive todo")
		return
	}
	writeJSON(w, http.StatusOK, entityResponse{ID: id})
}

func (a *API) handleListChallenges(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing user")
		return
	}
	board, err := a.Engine.ListChallenges(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list challenges")
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (a *API) handleClaimChallenge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing user")
		return
	}
	result, err := a.Engine.ClaimChallenge(r.Context(), userID, id)
	if err != nil {
		a.writeEngineError(w, err, "Failed to claim challenge")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleListAchievements(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing user")
		return
	}
	achievements, err := a.Engine.ListAchievements(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list achievements")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"achievements": achievements})
}

func (a *API) handleUnlockAchievement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing user")
		return
	}
	result, err := a.Engine.UnlockAchievement(r.Context(), userID, id)
	if err != nil {
		a.writeEngineError(w, err, "Failed to unlock achievement")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handlePrestige(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing user")
		return
	}
	result, err := a.Engine.Prestige(r.Context(), userID)
	if err != nil {
		a.writeEngineError(w, err, "Failed to prestige")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleGetStreakTiers(w http.ResponseWriter, r *http.Request) {
	tiers, err := a.Engine.StreakTiers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load tiers")
		return
	}
	writeJSON(w, http.StatusOK, tiersRequest{Tiers: tiers})
}

func (a *API) handleUpdateStreakTiers(w http.ResponseWriter, r *http.Request) {
	var req tiersRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := a.Engine.UpdateStreakTiers(r.Context(), req.Tiers); err != nil {
		if errors.Is(err, progression.ErrNoZeroTier) || errors.Is(err, progression.ErrTiersNotSorted) {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update tiers")
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// writeEngineError maps engine sentinels onto the error envelope. Business
// violations stay 4xx; only store failure becomes a 500.
func (a *API) writeEngineError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found")
	case errors.Is(err, engine.ErrTodoArchived):
		writeError(w, http.StatusConflict, "INVALID_STATE", "Todo is archived")
	case errors.Is(err, engine.ErrAlreadyClaimed):
		writeError(w, http.StatusConflict, "ALREADY_CLAIMED", "Challenge already claimed")
	case errors.Is(err, engine.ErrNotCompleted):
		writeError(w, http.StatusConflict, "NOT_COMPLETED", "Challenge is not completed")
	case errors.Is(err, engine.ErrChallengeExpired):
		writeError(w, http.StatusConflict, "CHALLENGE_EXPIRED", "Challenge expired")
	case errors.Is(err, engine.ErrAlreadyUnlocked):
		writeError(w, http.StatusConflict, "ALREADY_UNLOCKED", "Achievement already unlocked")
	case errors.Is(err, engine.ErrNotEligible):
		writeError(w, http.StatusConflict, "NOT_ELIGIBLE", "Requirements not met")
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid payload")
		return false
	}
	return true
}
