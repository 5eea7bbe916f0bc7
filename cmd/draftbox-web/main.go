package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/javascript4breakfast/draftbox-ai/internal/auth"
	"github.com/javascript4breakfast/draftbox-ai/internal/genimage"
	"github.com/javascript4breakfast/draftbox-ai/internal/logging"
)

// CLI flags
var (
	portFlag  int
	modelFlag string
	mockFlag  bool
)

// generator is the provider implementation selected once at startup,
// either the local mock or the Gemini-backed generator. Handlers never
// branch on the mode per call.
var generator genimage.Generator

var rootCmd = &cobra.Command{
	Use:   "draftbox-web",
	Short: "Draftbox AI image generation server",
	Long: `Draftbox Web serves the image generation API: it composes prompts from
structured options, drives 1-4 Gemini calls per request, and returns the
generated images as data URLs.

Run with --mock (or MOCK=1) to use a local placeholder generator instead of
the Gemini API; no API key is needed in that mode.

Examples:
  draftbox-web
  draftbox-web --port 9090
  draftbox-web --mock
  draftbox-web --model gemini-3-pro-image-preview`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().IntVar(&portFlag, "port", 3001, "Port to listen on (env: PORT)")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", genimage.DefaultModelName, "Gemini model to use (env: GEMINI_MODEL)")
	rootCmd.Flags().BoolVar(&mockFlag, "mock", false, "Use the local mock generator (env: MOCK=1)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	logging.Init()
	start := time.Now()

	mock := mockFlag || os.Getenv("MOCK") == "1"
	ctx := context.Background()

	if mock {
		generator = genimage.MockGenerator{}
	} else {
		// Missing or invalid credentials outside mock mode are fatal here,
		// never a per-request error.
		apiKey, err := auth.GetAPIKey()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to get API key")
		}
		client, err := genimage.NewClient(ctx, apiKey)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Gemini client")
		}
		if err := auth.ValidateAPIKey(ctx, client); err != nil {
			log.Fatal().Err(err).Msg("Invalid API key")
		}
		generator = genimage.NewGeminiGenerator(client, modelFlag)
	}

	port := resolvePort(cmd)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/generate", handleGenerate)
	mux.HandleFunc("/health", handleHealth)

	handler := withLogging(withCORS(mux))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 150 * time.Second, // up to four sequential model calls
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	logging.NewStartupLogger("draftbox-web").
		Feature("mock", mock).
		Config("model", modelFlag).
		Config("port", strconv.Itoa(port)).
		InitDuration(time.Since(start)).
		Log()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

// resolvePort prefers an explicit --port flag, then the PORT environment
// variable, then the flag default.
func resolvePort(cmd *cobra.Command) int {
	if cmd != nil && cmd.Flags().Changed("port") {
		return portFlag
	}
	if env := os.Getenv("PORT"); env != "" {
		if p, err := strconv.Atoi(env); err == nil && p > 0 {
			return p
		}
		log.Warn().Str("PORT", env).Msg("Ignoring invalid PORT value")
	}
	return portFlag
}

// --- Middleware ---

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		if strings.HasPrefix(r.URL.Path, "/api/") {
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Dur("duration", time.Since(start)).
				Msg("API request")
		}
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only allow localhost origins (local dev web UI)
		origin := r.Header.Get("Origin")
		if origin != "" && (strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:")) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
