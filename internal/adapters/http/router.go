package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/virlabs/viraat-assistant/internal/core/domain"
	"github.com/virlabs/viraat-assistant/internal/core/ports"
	"github.com/virlabs/viraat-assistant/internal/core/usecase"
	"github.com/virlabs/viraat-assistant/internal/observability/metrics"
)

const serviceName = "viraat-api"

type Deps struct {
	Chat          ports.ChatService
	Auth          *usecase.AuthUseCase
	Conversations *usecase.ConversationUseCase
	Analytics     ports.AnalyticsStore
	Corpus        ports.CorpusAdmin
	Tokens        ports.TokenIssuer
	Metrics       *metrics.HTTPServerMetrics
}

type Options struct {
	AllowGuestAccess bool
	StreamChunkChars int
	RateLimitRPS     float64
	RateLimitBurst   int
	MaxConcurrent    int
}

type Router struct {
	deps Deps
	opts Options
}

func NewRouter(deps Deps, opts Options) *Router {
	if opts.StreamChunkChars <= 0 {
		opts.StreamChunkChars = 120
	}
	return &Router{deps: deps, opts: opts}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/auth/register", rt.register)
	mux.HandleFunc("/v1/auth/login", rt.login)
	mux.Handle("/v1/chat", rt.requireUser(rt.chat))
	mux.Handle("/v1/conversations", rt.requireUser(rt.conversations))
	mux.Handle("/v1/conversations/", rt.requireUser(rt.conversationByID))
	mux.Handle("/v1/analytics/dashboard", rt.requireUser(rt.dashboard))
	mux.Handle("/v1/admin/reindex", rt.requireUser(rt.reindex))
	if rt.deps.Metrics != nil {
		mux.Handle("/metrics", rt.deps.Metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.deps.Metrics != nil {
		handler = rt.deps.Metrics.Middleware(serviceName, handler)
	}
	if rt.opts.MaxConcurrent > 0 {
		handler = backpressureMiddleware(handler, rt.opts.MaxConcurrent, 50*time.Millisecond)
	}
	if rt.opts.RateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.opts.RateLimitRPS, rt.opts.RateLimitBurst)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
		return
	}

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json"))
		return
	}

	user, token, err := rt.deps.Auth.Register(r.Context(), req.Username, req.Email, req.Password, req.FullName)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"user":         user,
		"access_token": token,
		"token_type":   "bearer",
	})
}

func (rt *Router) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json"))
		return
	}

	user, token, err := rt.deps.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if domain.IsKind(err, domain.ErrUnauthorized) && rt.deps.Metrics != nil {
			rt.deps.Metrics.RecordAuthFailure(serviceName, "bad_credentials")
		}
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":         user,
		"access_token": token,
		"token_type":   "bearer",
	})
}

func (rt *Router) chat(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
		return
	}

	var req struct {
		Query          string `json:"query"`
		ConversationID string `json:"conversation_id"`
		TopK           int    `json:"top_k"`
		Stream         bool   `json:"stream"`
		SkipRetrieval  bool   `json:"skip_retrieval"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json"))
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query is required"))
		return
	}

	start := time.Now()
	answer, err := rt.deps.Chat.Chat(r.Context(), userID, ports.ChatInput{
		Query:          req.Query,
		ConversationID: req.ConversationID,
		TopK:           req.TopK,
		UseRetrieval:   !req.SkipRetrieval,
	})
	if err != nil {
		rt.writeError(w, err)
		return
	}

	if rt.deps.Metrics != nil {
		rt.deps.Metrics.RecordChatObservation(serviceName, "/v1/chat", answer.SourcesUsed, time.Since(start))
		if answer.VisualDirective != nil {
			rt.deps.Metrics.RecordVisualDirective(serviceName, answer.VisualDirective.EntityType)
		}
	}

	if req.Stream {
		rt.streamAnswer(w, answer)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"response":         answer.Text,
		"sources_used":     answer.SourcesUsed,
		"visual_directive": answer.VisualDirective,
	})
}

func (rt *Router) conversations(w http.ResponseWriter, r *http.Request, userID string) {
	switch r.Method {
	case http.MethodGet:
		list, err := rt.deps.Conversations.List(r.Context(), userID, 0)
		if err != nil {
			rt.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"conversations": list})
	case http.MethodPost:
		var req struct {
			Title string `json:"title"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid json"))
			return
		}
		conv, err := rt.deps.Conversations.Create(r.Context(), userID, req.Title)
		if err != nil {
			rt.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, conv)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
	}
}

func (rt *Router) conversationByID(w http.ResponseWriter, r *http.Request, userID string) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/conversations/")
	if rest == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("conversation id is required"))
		return
	}

	if id, ok := strings.CutSuffix(rest, "/messages"); ok {
		rt.conversationMessages(w, r, userID, id)
		return
	}

	switch r.Method {
	case http.MethodGet:
		conv, err := rt.deps.Conversations.Get(r.Context(), rest, userID)
		if err != nil {
			rt.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, conv)
	case http.MethodPut:
		var req struct {
			Title string `json:"title"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid json"))
			return
		}
		if err := rt.deps.Conversations.Rename(r.Context(), rest, userID, req.Title); err != nil {
			rt.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	case http.MethodDelete:
		if err := rt.deps.Conversations.Delete(r.Context(), rest, userID); err != nil {
			rt.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
	}
}

func (rt *Router) conversationMessages(w http.ResponseWriter, r *http.Request, userID, conversationID string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
		return
	}
	msgs, err := rt.deps.Conversations.Messages(r.Context(), conversationID, userID, 0)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func (rt *Router) dashboard(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
		return
	}
	stats, err := rt.deps.Analytics.DashboardStats(r.Context(), userID)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (rt *Router) reindex(w http.ResponseWriter, r *http.Request, _ string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
		return
	}
	count, err := rt.deps.Corpus.Reload(r.Context())
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "reindexed", "chunks": count})
}

func (rt *Router) writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), errorBody(err.Error()))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}
