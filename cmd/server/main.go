package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/inkscript/inkscript/internal/background"
	"github.com/inkscript/inkscript/internal/config"
	"github.com/inkscript/inkscript/internal/extract"
	"github.com/inkscript/inkscript/internal/gemini"
	"github.com/inkscript/inkscript/internal/layout"
	"github.com/inkscript/inkscript/internal/pdfwriter"
	"github.com/inkscript/inkscript/internal/sanitize"
	"github.com/inkscript/inkscript/internal/types"
)

var (
	cfg config.Config

	requestSem *semaphore.Weighted
	ocrSem     *semaphore.Weighted

	extractor *extract.Service
	generator *gemini.Client
	bgPaths   map[string]string

	// Per-IP rate limiters
	limiters = &sync.Map{}

	metrics = &serverMetrics{}
)

type serverMetrics struct {
	mu            sync.RWMutex
	totalRequests int64
	activeReqs    int64
	solvedDocs    int64
}

func (m *serverMetrics) incActive() {
	m.mu.Lock()
	m.activeReqs++
	m.totalRequests++
	m.mu.Unlock()
}
func (m *serverMetrics) decActive() {
	m.mu.Lock()
	m.activeReqs--
	m.mu.Unlock()
}
func (m *serverMetrics) incSolved() {
	m.mu.Lock()
	m.solvedDocs++
	m.mu.Unlock()
}
func (m *serverMetrics) get() (total, active, solved int64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalRequests, m.activeReqs, m.solvedDocs
}

func main() {
	_ = godotenv.Load()

	cfg = config.Load()
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	requestSem = semaphore.NewWeighted(cfg.MaxConcurrentRequests)
	ocrSem = semaphore.NewWeighted(cfg.MaxOCRConcurrent)

	extractor = extract.New(cfg, ocrSem)
	generator = gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel)

	var err error
	bgPaths, err = background.Ensure(cfg.BackgroundsDir)
	if err != nil {
		panic(err)
	}
	if err := os.MkdirAll(cfg.FontsDir, 0o755); err != nil {
		panic(err)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/metrics", handleMetrics)

	mux.HandleFunc("/solve",
		withRateLimit(
			withMethod("POST",
				withConcurrencyLimit(handleSolve))))

	maxHeaderBytes := 1 << 20
	if cfg.MaxHeaderBytes > 0 {
		maxHeaderBytes = cfg.MaxHeaderBytes
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           withLogging(withRecovery(mux)),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    maxHeaderBytes,
	}

	if !generator.Configured() {
		fmt.Fprintln(os.Stderr, "warning: GEMINI_API_KEY not set (solutions will be canned samples)")
	}

	go cleanupRateLimiters()

	fmt.Printf("inkscript listening on %s (max concurrent: %d, OCR: %d)\n",
		srv.Addr, cfg.MaxConcurrentRequests, cfg.MaxOCRConcurrent)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	}
}

func cleanupRateLimiters() {
	interval := cfg.CleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		total, active, solved := metrics.get()
		fmt.Printf("[stats] active=%d total=%d solved=%d goroutines=%d mem=%dMB\n",
			active, total, solved, runtime.NumGoroutine(), m.Alloc/(1<<20))

		sweepRateLimiters()
	}
}

// sweepRateLimiters drops all per-IP limiters; idle clients start fresh on
// their next request. Range+Delete keeps the map safe for concurrent reads.
func sweepRateLimiters() {
	limiters.Range(func(key, _ any) bool {
		limiters.Delete(key)
		return true
	})
}

// ---------- Handlers ----------

func handleHealth(w http.ResponseWriter, r *http.Request) {
	_, active, _ := metrics.get()
	status := "healthy"
	code := http.StatusOK

	ratio := cfg.HealthDegradeRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 0.9
	}

	if active >= int64(float64(cfg.MaxConcurrentRequests)*ratio) {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status":  status,
		"active":  active,
		"version": "1.0.0",
	})
}

func handleMetrics(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	total, active, solved := metrics.get()

	writeJSON(w, http.StatusOK, map[string]any{
		"activeRequests": active,
		"totalRequests":  total,
		"solvedDocs":     solved,
		"goroutines":     runtime.NumGoroutine(),
		"memAllocMB":     m.Alloc / (1 << 20),
		"memSysMB":       m.Sys / (1 << 20),
	})
}

func handleSolve(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(cfg.MaxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeErr(w, http.StatusRequestEntityTooLarge, "file_too_large",
				fmt.Sprintf("Upload exceeds %dMB limit", cfg.MaxUploadBytes/(1<<20)))
			return
		}
		writeErr(w, http.StatusBadRequest, "bad_request", sanitizeError(err))
		return
	}

	req := parseSolveRequest(r)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "no_file", "No file selected")
		return
	}
	defer file.Close()
	req.Filename = header.Filename

	if !extract.SupportedExt(req.Filename) {
		writeErr(w, http.StatusBadRequest, "unsupported_type",
			"Upload a PDF, image, or plain-text file")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), cfg.SolveTimeout)
	defer cancel()

	uploadPath, cleanup, err := saveUpload(file, req.Filename)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "internal_error", sanitizeError(err))
		return
	}
	defer cleanup()

	// OCR gating lives inside the extractor: only pages that actually hit
	// tesseract contend for the semaphore.
	extracted, err := extractor.FromUpload(ctx, uploadPath)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "extraction_failed", sanitizeError(err))
		return
	}

	questions := sanitize.Clean(extracted.Text)
	if strings.TrimSpace(questions) == "" {
		writeErr(w, http.StatusBadRequest, "empty_document", "No readable text found in the upload")
		return
	}

	genCtx, genCancel := context.WithTimeout(ctx, cfg.GenerateTimeout)
	rawSolution, err := generator.Solve(genCtx, questions)
	genCancel()
	if err != nil {
		writeErr(w, http.StatusBadGateway, "generation_failed", sanitizeError(err))
		return
	}
	solution := sanitize.Clean(rawSolution)
	if len(solution) > cfg.MaxSolutionChars {
		solution = solution[:cfg.MaxSolutionChars]
	}

	pdfBytes, err := renderSolution(solution, req)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "render_failed", sanitizeError(err))
		return
	}

	metrics.incSolved()

	filename := "InkScript_Solution_" + strings.ReplaceAll(req.Name, " ", "_") + ".pdf"
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdfBytes)
}

func parseSolveRequest(r *http.Request) types.SolveRequest {
	return types.SolveRequest{
		Name:       formField(r, "name", "Unknown"),
		Roll:       formField(r, "roll", "Unknown"),
		Font:       formField(r, "font", "handwriting1"),
		Background: formField(r, "bg", types.BackgroundBlank),
		Ink:        types.NormalizeInk(formField(r, "ink", types.InkBlack)),
	}
}

func formField(r *http.Request, key, fallback string) string {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return fallback
	}
	if limit := cfg.MaxFormFieldLen; limit > 0 && len(v) > limit {
		// back up so the cut never splits a multi-byte rune
		cut := limit
		for cut > 0 && !utf8.RuneStart(v[cut]) {
			cut--
		}
		v = v[:cut]
	}
	return v
}

// renderSolution runs the layout pipeline and emits the PDF. The writer is
// the text measurer, so wrap decisions use the selected font's metrics.
func renderSolution(solution string, req types.SolveRequest) ([]byte, error) {
	fontPath := filepath.Join(cfg.FontsDir, types.FontFile(req.Font))
	if _, err := os.Stat(fontPath); err != nil {
		fmt.Fprintf(os.Stderr, "warning: font %s missing, using built-in fallback\n", fontPath)
		fontPath = ""
	}

	writer, err := pdfwriter.New(pdfwriter.Options{
		FontPath:       fontPath,
		BackgroundPath: background.Resolve(bgPaths, req.Background),
		Ink:            req.Ink,
		Layout:         layout.Default(),
	})
	if err != nil {
		return nil, err
	}

	doc, err := layout.Compose(solution,
		layout.HeaderInfo{Name: req.Name, Roll: req.Roll}, layout.Default(), writer)
	if err != nil {
		return nil, err
	}
	if err := writer.Render(doc); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := writer.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func saveUpload(file io.Reader, filename string) (path string, cleanup func(), err error) {
	tmpDir, err := os.MkdirTemp("", "inkscript-*")
	if err != nil {
		return "", nil, fmt.Errorf("temp dir: %w", err)
	}
	cleanup = func() { _ = os.RemoveAll(tmpDir) }

	// uuid filename keeps whatever the client sent out of the filesystem
	outPath := filepath.Join(tmpDir, uuid.NewString()+strings.ToLower(filepath.Ext(filename)))
	out, err := os.Create(outPath)
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("create: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("write: %w", err)
	}
	return outPath, cleanup, nil
}

// ---------- Middleware ----------

func withMethod(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			writeErr(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method must be "+method)
			return
		}
		next(w, r)
	}
}

func withConcurrencyLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := requestSem.Acquire(r.Context(), 1); err != nil {
			writeErr(w, http.StatusServiceUnavailable, "capacity", "Service at capacity")
			return
		}
		defer requestSem.Release(1)

		metrics.incActive()
		defer metrics.decActive()

		next(w, r)
	}
}

func withRateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := getClientIP(r)
		limiter := getRateLimiter(ip)

		if !limiter.Allow() {
			w.Header().Set("Retry-After", "60")
			writeErr(w, http.StatusTooManyRequests, "rate_limit", "Rate limit exceeded")
			return
		}
		next(w, r)
	}
}

func withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				fmt.Fprintf(os.Stderr, "panic: %v\n", err)
				writeErr(w, http.StatusInternalServerError, "internal_error", "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &wrapWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(ww, r)

		fmt.Printf("%s %s -> %d (%s)\n",
			r.Method, sanitizeLogString(r.URL.Path), ww.status, time.Since(start))
	})
}

type wrapWriter struct {
	http.ResponseWriter
	status int
}

func (w *wrapWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// ---------- Helpers ----------

func getRateLimiter(ip string) *rate.Limiter {
	if v, ok := limiters.Load(ip); ok {
		return v.(*rate.Limiter)
	}

	every := cfg.RateLimitEvery
	if every <= 0 {
		every = 600 * time.Millisecond // ~100/min
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 20
	}

	limiter := rate.NewLimiter(rate.Every(every), burst)
	limiters.Store(ip, limiter)
	return limiter
}

func getClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		if idx := strings.Index(ip, ","); idx > 0 {
			return strings.TrimSpace(ip[:idx])
		}
		return strings.TrimSpace(ip)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}

	host, _, _ := net.SplitHostPort(r.RemoteAddr)
	return host
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	msg = strings.ReplaceAll(msg, os.TempDir(), "[tmp]")
	if len(msg) > 300 {
		msg = msg[:300] + "..."
	}
	return msg
}

func sanitizeLogString(s string) string {
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\r", "")
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, types.ErrorResponse{
		Success: false,
		Error:   message,
		Code:    code,
	})
}
