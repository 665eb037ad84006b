package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"phytoguard/internal/app"
	"phytoguard/internal/ratelimit"
	"phytoguard/internal/usertoken"
	"phytoguard/internal/util"
	"phytoguard/pkg/domain"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App                        *app.App
	RedisAddr                  string
	RedisPassword              string
	DiagnoseRateLimitPerMinute int
}

// Server exposes the HTTP API.
type Server struct {
	app             *app.App
	mux             *http.ServeMux
	diagnoseLimiter *ratelimit.Limiter
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("app is required")
	}
	diagnoseLimit := cfg.DiagnoseRateLimitPerMinute
	if diagnoseLimit <= 0 {
		diagnoseLimit = 10
	}
	limiter, err := ratelimit.New(cfg.RedisAddr, cfg.RedisPassword, "phytoguard:ratelimit:diagnose", diagnoseLimit, time.Minute)
	if err != nil {
		return nil, fmt.Errorf("init diagnose limiter: %w", err)
	}
	s := &Server{
		app:             cfg.App,
		mux:             http.NewServeMux(),
		diagnoseLimiter: limiter,
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog(util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	s.mux.HandleFunc("/api/diagnose", s.handleDiagnose)
	s.mux.HandleFunc("/api/scans", s.handleScans)

	s.mux.HandleFunc("/api/diseases", s.handleDiseases)
	s.mux.HandleFunc("/api/diseases/", s.handleDiseaseByID)

	s.mux.HandleFunc("/api/auth/signup", s.handleSignup)
	s.mux.HandleFunc("/api/auth/login", s.handleLogin)
	s.mux.HandleFunc("/api/users/me", s.handleMe)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// POST /api/diagnose
func (s *Server) handleDiagnose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.diagnoseLimiter, "too many diagnosis requests") {
		return
	}
	var req diagnoseRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 16<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	result, err := s.app.Diagnose(r.Context(), req.Image, req.MimeType)
	if err != nil {
		writeDiagnoseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, diagnoseResponse{Diagnosis: result})
}

// POST /api/scans saves a record; GET /api/scans lists the user's history.
func (s *Server) handleScans(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleSaveScan(w, r)
	case http.MethodGet:
		s.handleListScans(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleSaveScan(w http.ResponseWriter, r *http.Request) {
	var req saveScanRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 16<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	rec, err := s.app.SaveScan(r.Context(), app.SaveScanInput{
		UserID:         req.UserID,
		ImageURL:       req.ImageURL,
		ImageData:      req.ImageData,
		DiseaseName:    req.DiseaseName,
		ScientificName: req.ScientificName,
		Confidence:     req.Confidence,
		Severity:       req.Severity,
		Symptoms:       req.Symptoms,
		Treatments:     req.Treatments,
		Prevention:     req.Prevention,
		ProTip:         req.ProTip,
		IsHealthy:      req.IsHealthy,
	})
	if err != nil {
		if errors.Is(err, app.ErrUserIDRequired) {
			writeError(w, http.StatusBadRequest, "userId is required")
			return
		}
		// Store failures surface with the underlying message.
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scan": rec})
}

func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}
	recs, err := s.app.ListScans(r.Context(), userID, limit)
	if err != nil {
		if errors.Is(err, app.ErrUserIDRequired) {
			writeError(w, http.StatusBadRequest, "userId is required")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"scans": recs,
		"count": len(recs),
	})
}

// GET /api/diseases
func (s *Server) handleDiseases(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	items, err := s.app.ListDiseases()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list diseases")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"count": len(items),
	})
}

// GET /api/diseases/{id}
func (s *Server) handleDiseaseByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/diseases/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	d, err := s.app.GetDisease(id)
	if err != nil {
		if errors.Is(err, app.ErrDiseaseNotFound) {
			writeError(w, http.StatusNotFound, "disease not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load disease")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// auth handlers
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req authRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, token, err := s.app.Signup(req.Email, req.Password)
	if err != nil {
		s.audit(r, "api.signup", "fail", "reason", err.Error())
		if errors.Is(err, app.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.audit(r, "api.signup", "success", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req authRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, token, err := s.app.Login(req.Email, req.Password)
	if err != nil {
		s.audit(r, "api.login", "fail", "reason", err.Error())
		if errors.Is(err, app.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	s.audit(r, "api.login", "success", "user_id", user.ID)
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

// GET /api/users/me
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	token, ok := bearerToken(r)
	if !ok {
		s.audit(r, "api.token.verify", "fail", "reason", "missing_token")
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	user, err := s.app.Authenticate(token)
	if err != nil {
		if errors.Is(err, usertoken.ErrInvalidToken) || errors.Is(err, app.ErrUserNotFound) {
			s.audit(r, "api.token.verify", "fail", "reason", "invalid_token")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load account")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter *ratelimit.Limiter, msg string) bool {
	key := r.URL.Path + "|" + util.ClientIP(r)
	if limiter.Allow(key) {
		return true
	}
	s.audit(r, "api.ratelimit", "rate_limited")
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}

func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	logAttrs := []any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", util.ClientIP(r),
	}
	logAttrs = append(logAttrs, attrs...)
	if outcome == "success" {
		slog.Info("security_event", logAttrs...)
		return
	}
	slog.Warn("security_event", logAttrs...)
}

// writeDiagnoseError maps diagnosis failures onto the response contract:
// missing image is the caller's fault, an exhausted quota chain is 429 with
// the retry guidance as the message, and everything else is a 500 carrying
// the failure's own message.
func writeDiagnoseError(w http.ResponseWriter, err error) {
	if errors.Is(err, app.ErrNoImage) {
		writeError(w, http.StatusBadRequest, "No image provided")
		return
	}
	var quotaErr *app.QuotaError
	if errors.As(err, &quotaErr) {
		w.Header().Set("Retry-After", "30")
		writeError(w, http.StatusTooManyRequests, quotaErr.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

type diagnoseRequest struct {
	Image    string `json:"image"`
	MimeType string `json:"mimeType"`
}

type diagnoseResponse struct {
	Diagnosis domain.DiagnosisResult `json:"diagnosis"`
}

type saveScanRequest struct {
	UserID         string            `json:"userId"`
	ImageURL       string            `json:"imageUrl"`
	ImageData      string            `json:"imageData"`
	DiseaseName    string            `json:"diseaseName"`
	ScientificName string            `json:"scientificName"`
	Confidence     int               `json:"confidence"`
	Severity       string            `json:"severity"`
	Symptoms       []string          `json:"symptoms"`
	Treatments     map[string]string `json:"treatments"`
	Prevention     []string          `json:"prevention"`
	ProTip         string            `json:"proTip"`
	IsHealthy      bool              `json:"isHealthy"`
}

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
