package web

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"police-security-bot/internal/domain"
	"police-security-bot/internal/domain/model"
	"police-security-bot/internal/infra/logging"
	"police-security-bot/internal/infra/metrics"
)

type ctxKey int

const adminKey ctxKey = iota

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type resultResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type detailResponse struct {
	Detail string `json:"detail"`
}

func detail(msg string) detailResponse { return detailResponse{Detail: msg} }

type statsResponse struct {
	Total      int `json:"total"`
	Suspicious int `json:"suspicious"`
	Safe       int `json:"safe"`
}

type messageResponse struct {
	ID        int64    `json:"id"`
	Sender    string   `json:"sender"`
	Text      string   `json:"text"`
	Label     string   `json:"label"`
	Score     float64  `json:"score"`
	Reasons   []string `json:"reasons"`
	Timestamp string   `json:"timestamp"`
}

type feedResponse struct {
	Stats    statsResponse     `json:"stats"`
	Messages []messageResponse `json:"messages"`
}

func newFeedResponse(f *model.Feed) feedResponse {
	out := feedResponse{
		Stats: statsResponse{
			Total:      f.Stats.Total,
			Suspicious: f.Stats.Suspicious,
			Safe:       f.Stats.Safe,
		},
		Messages: make([]messageResponse, 0, len(f.Messages)),
	}
	for _, m := range f.Messages {
		reasons := m.Reasons
		if reasons == nil {
			reasons = []string{}
		}
		out.Messages = append(out.Messages, messageResponse{
			ID:        m.ID,
			Sender:    m.Username,
			Text:      m.Text,
			Label:     string(m.Label),
			Score:     m.Score,
			Reasons:   reasons,
			Timestamp: m.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// empty fields still go through Authenticate so they count toward the lockout
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, detail("malformed login request"))
		return
	}

	admin, err := s.dash.Authenticate(ctx, clientAddr(r), req.Username, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrTooManyAttempts):
		writeJSON(w, http.StatusTooManyRequests, detail("Too many failed attempts. Try later."))
		return
	case errors.Is(err, domain.ErrAccountLocked):
		writeJSON(w, http.StatusTooManyRequests, detail("Account temporarily locked."))
		return
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, resultResponse{Success: false, Message: "Invalid username or password"})
		return
	default:
		logging.With(ctx, s.log).Error().Err(err).Msg("login failed")
		writeJSON(w, http.StatusInternalServerError, detail("Internal server error"))
		return
	}

	if _, err := s.auth.Mint(w, admin.ID); err != nil {
		logging.With(ctx, s.log).Error().Err(err).Int64("admin_id", admin.ID).Msg("sign session token")
		writeJSON(w, http.StatusInternalServerError, detail("Internal server error"))
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{Success: true, Message: "Logged in"})
}

// handleLogout always succeeds. A valid presented token is revoked until it
// would have expired.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if claims, err := s.auth.ParseFromRequest(r); err == nil && claims.ID != "" && claims.ExpiresAt != nil {
		if err := s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			logging.With(ctx, s.log).Error().Err(err).Msg("revoke session token")
		} else {
			metrics.IncSessionRevoked()
		}
	}
	s.auth.Clear(w)
	writeJSON(w, http.StatusOK, resultResponse{Success: true})
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	feed, err := s.dash.Feed(ctx, r.URL.Query().Get("label"), s.cfg.FeedLimit)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			writeJSON(w, http.StatusBadRequest, detail("label must be safe or suspicious"))
			return
		}
		logging.With(ctx, s.log).Error().Err(err).Msg("load message feed")
		writeJSON(w, http.StatusInternalServerError, detail("Internal server error"))
		return
	}
	if a, ok := AdminFromContext(ctx); ok {
		logging.With(ctx, s.log).Debug().Str("admin", a.Username).Int("messages", len(feed.Messages)).Msg("feed served")
	}
	writeJSON(w, http.StatusOK, newFeedResponse(feed))
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// authMiddleware resolves the session token to an existing dashboard admin.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims, err := s.auth.ParseFromRequest(r)
		if errors.Is(err, errMissingToken) {
			writeJSON(w, http.StatusUnauthorized, detail("Not authenticated"))
			return
		}
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, detail("Invalid token"))
			return
		}
		adminID, err := claims.AdminID()
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, detail("Invalid token subject"))
			return
		}

		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			logging.With(ctx, s.log).Error().Err(err).Msg("check session denylist")
			writeJSON(w, http.StatusInternalServerError, detail("Internal server error"))
			return
		}
		if revoked {
			writeJSON(w, http.StatusUnauthorized, detail("Token revoked"))
			return
		}

		admin, err := s.dash.AdminByID(ctx, adminID)
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusUnauthorized, detail("Admin not found"))
			return
		}
		if err != nil {
			logging.With(ctx, s.log).Error().Err(err).Int64("admin_id", adminID).Msg("load session admin")
			writeJSON(w, http.StatusInternalServerError, detail("Internal server error"))
			return
		}

		ctx = logging.WithAdminID(ctx, admin.ID)
		ctx = context.WithValue(ctx, adminKey, admin)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminFromContext returns the admin set by the auth middleware.
func AdminFromContext(ctx context.Context) (*model.DashboardAdmin, bool) {
	a, ok := ctx.Value(adminKey).(*model.DashboardAdmin)
	return a, ok
}

// clientAddr is the TCP peer host. chi's RealIP rewrites RemoteAddr first
// when the proxy is trusted.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
