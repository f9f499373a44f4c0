package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port string

	// Gemini
	GeminiAPIKey string
	GeminiModel  string

	// Limits
	MaxUploadBytes   int64
	MaxFormFieldLen  int
	MaxSolutionChars int

	// Concurrency
	MaxConcurrentRequests int64
	MaxOCRConcurrent      int64

	// Server timeouts
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration

	// Request timeouts
	SolveTimeout    time.Duration
	GenerateTimeout time.Duration

	// Poppler / extraction timeouts
	PDFInfoTimeout   time.Duration
	PDFToTextTimeout time.Duration
	PDFToPPMTimeout  time.Duration

	// Rate limiting (per IP)
	RateLimitEvery time.Duration
	RateLimitBurst int

	// Housekeeping
	CleanupInterval time.Duration

	// Health
	HealthDegradeRatio float64

	// HTTP
	MaxHeaderBytes int

	// Assets
	FontsDir       string
	BackgroundsDir string

	// Extraction defaults
	MinWordsThreshold int
	OCRLanguage       string
	RasterDPI         int
}

func Load() Config {
	return Config{
		Port: envStr("PORT", "8080"),

		GeminiAPIKey: envStr("GEMINI_API_KEY", ""),
		GeminiModel:  envStr("GEMINI_MODEL", "gemini-2.0-flash"),

		MaxUploadBytes:   int64(envInt("MAX_UPLOAD_BYTES", 5<<20)),
		MaxFormFieldLen:  envInt("MAX_FORM_FIELD_LEN", 120),
		MaxSolutionChars: envInt("MAX_SOLUTION_CHARS", 100_000),

		MaxConcurrentRequests: int64(envInt("MAX_CONCURRENT_REQUESTS", 15)),
		MaxOCRConcurrent:      int64(envInt("MAX_OCR_CONCURRENT", 3)),

		ReadHeaderTimeout: envDur("READ_HEADER_TIMEOUT", 10*time.Second),
		ReadTimeout:       envDur("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:      envDur("WRITE_TIMEOUT", 180*time.Second),
		IdleTimeout:       envDur("IDLE_TIMEOUT", 60*time.Second),

		SolveTimeout:    envDur("SOLVE_TIMEOUT", 160*time.Second),
		GenerateTimeout: envDur("GENERATE_TIMEOUT", 60*time.Second),

		PDFInfoTimeout:   envDur("PDFINFO_TIMEOUT", 5*time.Second),
		PDFToTextTimeout: envDur("PDFTOTEXT_TIMEOUT", 10*time.Second),
		PDFToPPMTimeout:  envDur("PDFTOPPM_TIMEOUT", 30*time.Second),

		RateLimitEvery: envDur("RATE_LIMIT_EVERY", 600*time.Millisecond),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 20),

		CleanupInterval: envDur("CLEANUP_INTERVAL", 5*time.Minute),

		HealthDegradeRatio: envFloat("HEALTH_DEGRADE_RATIO", 0.9),

		MaxHeaderBytes: envInt("MAX_HEADER_BYTES", 1<<20),

		FontsDir:       envStr("FONTS_DIR", "fonts"),
		BackgroundsDir: envStr("BACKGROUNDS_DIR", "bg"),

		MinWordsThreshold: envInt("MIN_WORDS_THRESHOLD", 10),
		OCRLanguage:       envStr("OCR_LANGUAGE", "eng"),
		RasterDPI:         envInt("RASTER_DPI", 144),
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.MaxConcurrentRequests <= 0 || c.MaxOCRConcurrent <= 0 {
		return fmt.Errorf("concurrency limits must be positive")
	}
	return nil
}

func envStr(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}

func envDur(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
