package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	xerrors "SmartMailr/internal/errors"
	"SmartMailr/internal/inbox"
	"SmartMailr/internal/intent"
	"SmartMailr/internal/mail"
	"SmartMailr/internal/observability/metrics"
	"SmartMailr/internal/triage"
)

// Server 负责暴露 REST 接口，供外部驱动邮件分诊。
type Server struct {
	addr    string
	triage  *triage.Orchestrator
	service *inbox.Service
}

// NewServer 构造 API 服务实例。
func NewServer(addr string, orch *triage.Orchestrator, svc *inbox.Service) *Server {
	return &Server{addr: addr, triage: orch, service: svc}
}

// Start 启动 HTTP 服务，直到上下文取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           withContext(ctx, s.Handler()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 启动服务器并监听关闭信号。
	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Handler 返回完整的路由表，便于测试时直接挂载。
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/process", s.handleProcess)
	mux.HandleFunc("/api/v1/messages", s.handleMessages)
	mux.HandleFunc("/api/v1/messages/", s.handleMessageDetail)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// handleProcess 同步执行一封邮件的分诊流水线并返回动作结果。
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	if r.Method != http.MethodPost {
		http.Error(w, "仅支持 POST", http.StatusMethodNotAllowed)
		return
	}
	if s.triage == nil {
		http.Error(w, "分诊服务未初始化", http.StatusServiceUnavailable)
		return
	}

	var msg mail.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "请求体解析失败", http.StatusBadRequest)
		return
	}

	result, err := s.triage.Process(r.Context(), msg)
	if err != nil {
		status := statusFromError(err)
		metrics.ObserveHTTPRequest("process", r.Method, status, time.Since(started))
		http.Error(w, err.Error(), status)
		return
	}

	metrics.ObserveHTTPRequest("process", r.Method, http.StatusOK, time.Since(started))
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleSubmitMessage(w, r)
	case http.MethodGet:
		s.handleListMessages(w, r)
	default:
		http.Error(w, "仅支持 GET/POST", http.StatusMethodNotAllowed)
	}
}

// handleSubmitMessage 将邮件排入收件箱队列，异步处理。
func (s *Server) handleSubmitMessage(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	if s.service == nil {
		http.Error(w, "收件箱服务未初始化", http.StatusServiceUnavailable)
		return
	}

	var msg mail.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "请求体解析失败", http.StatusBadRequest)
		return
	}

	job, err := s.service.Submit(r.Context(), msg)
	if err != nil {
		status := statusFromError(err)
		metrics.ObserveHTTPRequest("messages", r.Method, status, time.Since(started))
		http.Error(w, err.Error(), status)
		return
	}

	metrics.ObserveHTTPRequest("messages", r.Method, http.StatusAccepted, time.Since(started))
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	if s.service == nil {
		http.Error(w, "收件箱服务未初始化", http.StatusServiceUnavailable)
		return
	}

	opts := listOptionsFromQuery(r)
	jobs, err := s.service.List(r.Context(), opts...)
	if err != nil {
		status := statusFromError(err)
		metrics.ObserveHTTPRequest("messages", r.Method, status, time.Since(started))
		http.Error(w, err.Error(), status)
		return
	}

	metrics.ObserveHTTPRequest("messages", r.Method, http.StatusOK, time.Since(started))
	writeJSON(w, http.StatusOK, jobs)
}

// handleMessageDetail 处理 /api/v1/messages/{id} 与 /api/v1/messages/stats。
func (s *Server) handleMessageDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "仅支持 GET", http.StatusMethodNotAllowed)
		return
	}
	if s.service == nil {
		http.Error(w, "收件箱服务未初始化", http.StatusServiceUnavailable)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/messages/")
	if id == "" {
		http.Error(w, "缺少作业 ID", http.StatusBadRequest)
		return
	}
	if id == "stats" {
		s.handleStats(w, r)
		return
	}

	started := time.Now()
	job, err := s.service.Get(r.Context(), id)
	if err != nil {
		status := statusFromError(err)
		metrics.ObserveHTTPRequest("message_detail", r.Method, status, time.Since(started))
		http.Error(w, err.Error(), status)
		return
	}

	metrics.ObserveHTTPRequest("message_detail", r.Method, http.StatusOK, time.Since(started))
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	stats, err := s.service.Stats(r.Context(), listOptionsFromQuery(r)...)
	if err != nil {
		status := statusFromError(err)
		metrics.ObserveHTTPRequest("message_stats", r.Method, status, time.Since(started))
		http.Error(w, err.Error(), status)
		return
	}
	metrics.ObserveHTTPRequest("message_stats", r.Method, http.StatusOK, time.Since(started))
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func listOptionsFromQuery(r *http.Request) []inbox.ListOption {
	var opts []inbox.ListOption
	query := r.URL.Query()
	if raw := query.Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			opts = append(opts, inbox.WithLimit(parsed))
		}
	}
	if raw := query.Get("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			opts = append(opts, inbox.WithOffset(parsed))
		}
	}
	if raw := query.Get("status"); raw != "" {
		statuses := make([]inbox.Status, 0, 4)
		for _, part := range strings.Split(raw, ",") {
			statuses = append(statuses, inbox.Status(strings.TrimSpace(part)))
		}
		opts = append(opts, inbox.WithStatuses(statuses...))
	}
	if raw := query.Get("intent"); raw != "" {
		opts = append(opts, inbox.WithIntent(intent.Intent(raw)))
	}
	if raw := query.Get("sender"); raw != "" {
		opts = append(opts, inbox.WithSender(raw))
	}
	return opts
}

func statusFromError(err error) int {
	switch xerrors.CodeOf(err) {
	case xerrors.CodeValidationFailure, xerrors.CodeInvalidArgument, inbox.CodeJobValidation:
		return http.StatusBadRequest
	case xerrors.CodeNotFound, inbox.CodeJobNotFound:
		return http.StatusNotFound
	case inbox.CodeJobConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// withContext 确保请求处理能够感知根上下文取消。
func withContext(ctx context.Context, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-ctx.Done():
			http.Error(w, "服务已关闭", http.StatusServiceUnavailable)
			return
		default:
		}
		handler.ServeHTTP(w, r)
	})
}
