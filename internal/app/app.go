package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"phytoguard/internal/usertoken"
	"phytoguard/pkg/ai"
	"phytoguard/pkg/domain"
	"phytoguard/pkg/storage"
	"phytoguard/pkg/store"
)

// defaultModels is the fallback chain, newest preview model first.
var defaultModels = []string{
	"gemini-3-flash-preview",
	"gemini-3-pro-preview",
	"gemini-2.0-flash",
}

const (
	attemptsPerModel  = 2
	defaultRetryDelay = 5 * time.Second
)

// Config holds runtime configuration for the core application.
type Config struct {
	Store   store.Store
	Objects storage.ObjectStore // optional; scans keep a nil imageUrl without it
	Vision  ai.VisionGenerator
	Tokens  *usertoken.Manager
	Models  []string
	// RetryDelay overrides the pause before the single rate-limit retry.
	// Tests shrink it; production keeps the 5s default.
	RetryDelay time.Duration
}

// App wires the diagnosis chain, scan persistence and account logic.
type App struct {
	store      store.Store
	objects    storage.ObjectStore
	vision     ai.VisionGenerator
	tokens     *usertoken.Manager
	models     []string
	retryDelay time.Duration
}

// New constructs the application core.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, errors.New("store required")
	}
	if cfg.Vision == nil {
		return nil, errors.New("vision client required")
	}
	if cfg.Tokens == nil {
		return nil, errors.New("token manager required")
	}
	models := cfg.Models
	if len(models) == 0 {
		models = defaultModels
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}
	return &App{
		store:      cfg.Store,
		objects:    cfg.Objects,
		vision:     cfg.Vision,
		tokens:     cfg.Tokens,
		models:     models,
		retryDelay: retryDelay,
	}, nil
}

// Diagnose submits the image to the vision model through the fallback chain
// and parses the reply into a structured diagnosis.
//
// Each model gets up to two attempts; the second attempt only happens after
// a rate-limit failure and a fixed pause. The first successful reply stops
// the whole chain. Models are tried strictly in sequence because every
// attempt is a billed call.
func (a *App) Diagnose(ctx context.Context, image, mimeType string) (domain.DiagnosisResult, error) {
	image, inlineMime := splitDataURL(image)
	if strings.TrimSpace(image) == "" {
		return domain.DiagnosisResult{}, ErrNoImage
	}
	if strings.TrimSpace(mimeType) == "" {
		mimeType = inlineMime
	}

	var text string
	var lastErr error
	for _, model := range a.models {
		text, lastErr = a.tryModel(ctx, model, image, mimeType)
		if lastErr == nil {
			break
		}
		if ctx.Err() != nil {
			return domain.DiagnosisResult{}, ctx.Err()
		}
	}
	if lastErr != nil {
		if ai.IsRateLimited(lastErr) {
			return domain.DiagnosisResult{}, &QuotaError{Err: lastErr}
		}
		return domain.DiagnosisResult{}, fmt.Errorf("analyze image: %w", lastErr)
	}
	return parseDiagnosis(text)
}

func (a *App) tryModel(ctx context.Context, model, image, mimeType string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < attemptsPerModel; attempt++ {
		slog.Info("trying vision model", "model", model, "attempt", attempt+1)
		text, err := a.vision.GenerateVision(ctx, model, diagnosisPrompt, image, mimeType)
		if err == nil {
			return text, nil
		}
		lastErr = err
		// Only a rate limit earns the one retry; anything else moves the
		// chain to the next model immediately.
		if ai.IsRateLimited(err) && attempt == 0 {
			slog.Warn("model rate limited, pausing before retry", "model", model, "delay", a.retryDelay)
			if err := sleepCtx(ctx, a.retryDelay); err != nil {
				return "", lastErr
			}
			continue
		}
		break
	}
	return "", lastErr
}

// parseDiagnosis strips optional code fences and parses the strict
// diagnosis shape. A reply that does not parse is fatal, never retried.
func parseDiagnosis(text string) (domain.DiagnosisResult, error) {
	clean := stripCodeFences(text)
	var result domain.DiagnosisResult
	if err := json.Unmarshal([]byte(clean), &result); err != nil {
		return domain.DiagnosisResult{}, &MalformedResponseError{Err: err}
	}
	if strings.TrimSpace(result.Name) == "" {
		return domain.DiagnosisResult{}, &MalformedResponseError{Err: errors.New("missing name field")}
	}
	return result, nil
}

// stripCodeFences removes surrounding ``` / ```json markers some models wrap
// around their JSON reply.
func stripCodeFences(text string) string {
	clean := strings.TrimSpace(text)
	if !strings.HasPrefix(clean, "```") {
		return clean
	}
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimPrefix(clean, "json")
	clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")
	return strings.TrimSpace(clean)
}

// splitDataURL strips a data-URL prefix, returning the bare base64 payload
// and the media type embedded in the prefix (empty when absent).
func splitDataURL(image string) (string, string) {
	image = strings.TrimSpace(image)
	if !strings.HasPrefix(image, "data:") {
		return image, ""
	}
	comma := strings.Index(image, ",")
	if comma < 0 {
		return image, ""
	}
	meta := image[len("data:"):comma]
	payload := image[comma+1:]
	mime, _, _ := strings.Cut(meta, ";")
	return payload, strings.TrimSpace(mime)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
