package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"phytoguard/internal/usertoken"
	"phytoguard/pkg/ai"
	"phytoguard/pkg/domain"
	"phytoguard/pkg/store"
)

const validDiagnosisJSON = `{
	"name": "Early Blight",
	"scientificName": "Alternaria solani",
	"confidence": 87,
	"severity": "Moderate",
	"isContagious": true,
	"description": "Dark concentric rings on lower leaves.",
	"symptoms": ["rings", "yellowing"],
	"causes": ["wet weather"],
	"organicControl": ["remove leaves"],
	"chemicalControl": ["copper fungicide"],
	"prevention": ["rotate crops"],
	"proTip": "water at the base",
	"isHealthy": false
}`

// fakeVision scripts per-call outcomes and records the models attempted.
type fakeVision struct {
	mu      sync.Mutex
	calls   []string
	outcome func(call int, model string) (string, error)
}

func (f *fakeVision) GenerateVision(ctx context.Context, model, instruction, imageB64, mimeType string) (string, error) {
	f.mu.Lock()
	call := len(f.calls)
	f.calls = append(f.calls, model)
	f.mu.Unlock()
	return f.outcome(call, model)
}

func (f *fakeVision) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestApp(t *testing.T, vision ai.VisionGenerator) *App {
	t.Helper()
	tokens, err := usertoken.NewManager(usertoken.Config{Secret: strings.Repeat("k", 32)})
	if err != nil {
		t.Fatalf("new token manager: %v", err)
	}
	a, err := New(Config{
		Store:      store.NewMemoryStore(),
		Vision:     vision,
		Tokens:     tokens,
		Models:     []string{"model-a", "model-b", "model-c"},
		RetryDelay: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a
}

func TestDiagnoseEmptyImageMakesNoCall(t *testing.T) {
	vision := &fakeVision{outcome: func(int, string) (string, error) {
		return validDiagnosisJSON, nil
	}}
	a := newTestApp(t, vision)

	for _, image := range []string{"", "   ", "data:image/png;base64,"} {
		if _, err := a.Diagnose(context.Background(), image, ""); !errors.Is(err, ErrNoImage) {
			t.Fatalf("image %q: expected ErrNoImage, got %v", image, err)
		}
	}
	if vision.callCount() != 0 {
		t.Fatalf("expected zero upstream calls, got %d", vision.callCount())
	}
}

func TestDiagnoseFirstModelSuccessStopsChain(t *testing.T) {
	vision := &fakeVision{outcome: func(int, string) (string, error) {
		return validDiagnosisJSON, nil
	}}
	a := newTestApp(t, vision)

	result, err := a.Diagnose(context.Background(), "aW1hZ2U=", "image/jpeg")
	if err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	if result.Name != "Early Blight" || result.Confidence != 87 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Kind() != domain.KindDiagnosis {
		t.Fatalf("expected diagnosis kind, got %s", result.Kind())
	}
	if vision.callCount() != 1 {
		t.Fatalf("expected exactly one call, got %d (%v)", vision.callCount(), vision.calls)
	}
}

func TestDiagnoseNonRateLimitFailureSingleAttemptPerModel(t *testing.T) {
	vision := &fakeVision{outcome: func(call int, model string) (string, error) {
		if model == "model-a" {
			return "", errors.New("model not found")
		}
		return validDiagnosisJSON, nil
	}}
	a := newTestApp(t, vision)

	if _, err := a.Diagnose(context.Background(), "aW1hZ2U=", ""); err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	want := []string{"model-a", "model-b"}
	if len(vision.calls) != 2 || vision.calls[0] != want[0] || vision.calls[1] != want[1] {
		t.Fatalf("expected calls %v, got %v", want, vision.calls)
	}
}

func TestDiagnoseRateLimitRetriesOnceThenMovesOn(t *testing.T) {
	rateLimited := &ai.APIError{StatusCode: 429, Message: "exhausted"}
	vision := &fakeVision{outcome: func(call int, model string) (string, error) {
		if model == "model-a" {
			return "", rateLimited
		}
		return validDiagnosisJSON, nil
	}}
	a := newTestApp(t, vision)

	if _, err := a.Diagnose(context.Background(), "aW1hZ2U=", ""); err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	// model-a rate limited twice (attempt + single retry), then model-b.
	want := []string{"model-a", "model-a", "model-b"}
	if len(vision.calls) != 3 {
		t.Fatalf("expected calls %v, got %v", want, vision.calls)
	}
	for i := range want {
		if vision.calls[i] != want[i] {
			t.Fatalf("expected calls %v, got %v", want, vision.calls)
		}
	}
}

func TestDiagnoseExhaustedChainQuotaError(t *testing.T) {
	vision := &fakeVision{outcome: func(int, string) (string, error) {
		return "", &ai.APIError{StatusCode: 429, Message: "exhausted"}
	}}
	a := newTestApp(t, vision)

	_, err := a.Diagnose(context.Background(), "aW1hZ2U=", "")
	var quotaErr *QuotaError
	if !errors.As(err, &quotaErr) {
		t.Fatalf("expected *QuotaError, got %v", err)
	}
	if !strings.Contains(err.Error(), "wait 30-60 seconds") {
		t.Fatalf("quota error should carry retry guidance, got %q", err.Error())
	}
	// 3 models x 2 attempts each.
	if vision.callCount() != 6 {
		t.Fatalf("expected 6 calls, got %d", vision.callCount())
	}
}

func TestDiagnoseExhaustedChainGenericError(t *testing.T) {
	vision := &fakeVision{outcome: func(int, string) (string, error) {
		return "", errors.New("upstream unavailable")
	}}
	a := newTestApp(t, vision)

	_, err := a.Diagnose(context.Background(), "aW1hZ2U=", "")
	if err == nil {
		t.Fatal("expected error after exhausting all models")
	}
	var quotaErr *QuotaError
	if errors.As(err, &quotaErr) {
		t.Fatal("generic failure must not be reported as quota")
	}
	// One attempt per model, no retries for non-rate-limit failures.
	if vision.callCount() != 3 {
		t.Fatalf("expected 3 calls, got %d", vision.callCount())
	}
}

func TestDiagnoseStripsCodeFences(t *testing.T) {
	for _, fenced := range []string{
		validDiagnosisJSON,
		"```json\n" + validDiagnosisJSON + "\n```",
		"```\n" + validDiagnosisJSON + "\n```",
	} {
		vision := &fakeVision{outcome: func(int, string) (string, error) {
			return fenced, nil
		}}
		a := newTestApp(t, vision)
		result, err := a.Diagnose(context.Background(), "aW1hZ2U=", "")
		if err != nil {
			t.Fatalf("diagnose fenced reply: %v", err)
		}
		if result.Name != "Early Blight" {
			t.Fatalf("unexpected result for fenced reply: %+v", result)
		}
	}
}

func TestDiagnoseMalformedReplyIsFatal(t *testing.T) {
	vision := &fakeVision{outcome: func(int, string) (string, error) {
		return "I think this plant has blight.", nil
	}}
	a := newTestApp(t, vision)

	_, err := a.Diagnose(context.Background(), "aW1hZ2U=", "")
	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected *MalformedResponseError, got %v", err)
	}
	// The parse failure must not trigger another model.
	if vision.callCount() != 1 {
		t.Fatalf("malformed reply retried: %d calls", vision.callCount())
	}
}

func TestDiagnoseHealthyPlantKind(t *testing.T) {
	vision := &fakeVision{outcome: func(int, string) (string, error) {
		return `{"name":"Healthy Plant","scientificName":"N/A","confidence":92,"severity":"Low","isHealthy":true,"prevention":["water regularly"]}`, nil
	}}
	a := newTestApp(t, vision)

	result, err := a.Diagnose(context.Background(), "aW1hZ2U=", "")
	if err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	if result.Kind() != domain.KindHealthy {
		t.Fatalf("expected healthy kind, got %s", result.Kind())
	}
	if result.Confidence != 92 {
		t.Fatalf("result altered in transit: %+v", result)
	}
}

func TestDiagnoseNotAPlantKind(t *testing.T) {
	vision := &fakeVision{outcome: func(int, string) (string, error) {
		return `{"name":"Not a Plant","scientificName":"N/A","confidence":0,"severity":"Low","isHealthy":false}`, nil
	}}
	a := newTestApp(t, vision)

	result, err := a.Diagnose(context.Background(), "aW1hZ2U=", "")
	if err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	if result.Kind() != domain.KindNotAPlant {
		t.Fatalf("expected not-a-plant kind, got %s", result.Kind())
	}
}

func TestSplitDataURL(t *testing.T) {
	cases := []struct {
		in          string
		wantPayload string
		wantMime    string
	}{
		{"data:image/png;base64,aW1n", "aW1n", "image/png"},
		{"data:image/jpeg;base64,YQ==", "YQ==", "image/jpeg"},
		{"bareBase64", "bareBase64", ""},
	}
	for _, tc := range cases {
		payload, mime := splitDataURL(tc.in)
		if payload != tc.wantPayload || mime != tc.wantMime {
			t.Errorf("splitDataURL(%q) = (%q, %q), want (%q, %q)",
				tc.in, payload, mime, tc.wantPayload, tc.wantMime)
		}
	}
}
