package app

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"phytoguard/internal/util"
	"phytoguard/pkg/domain"
)

const (
	defaultScanLimit = 20
	maxScanLimit     = 100
	imageURLExpiry   = 7 * 24 * time.Hour
)

// SaveScanInput carries caller-supplied scan fields before normalization.
type SaveScanInput struct {
	UserID         string
	ImageURL       string
	ImageData      string // optional data-URL; uploaded to object storage when set
	DiseaseName    string
	ScientificName string
	Confidence     int
	Severity       string
	Symptoms       []string
	Treatments     map[string]string
	Prevention     []string
	ProTip         string
	IsHealthy      bool
}

// SaveScan normalizes the input into a fully-populated record and appends it
// to the user's scan history. Store failures surface unretried.
func (a *App) SaveScan(ctx context.Context, in SaveScanInput) (domain.ScanRecord, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return domain.ScanRecord{}, ErrUserIDRequired
	}
	rec := normalizeScan(in)
	if in.ImageData != "" && a.objects != nil {
		url, err := a.uploadScanImage(ctx, in.ImageData)
		if err != nil {
			return domain.ScanRecord{}, fmt.Errorf("upload scan image: %w", err)
		}
		rec.ImageURL = url
	}
	saved, err := a.store.InsertScan(rec)
	if err != nil {
		return domain.ScanRecord{}, fmt.Errorf("save scan: %w", err)
	}
	return saved, nil
}

// ListScans returns the user's scan history, newest first.
func (a *App) ListScans(ctx context.Context, userID string, limit int) ([]domain.ScanRecord, error) {
	_ = ctx
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserIDRequired
	}
	if limit <= 0 || limit > maxScanLimit {
		limit = defaultScanLimit
	}
	recs, err := a.store.ListScansByUser(userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	if recs == nil {
		recs = []domain.ScanRecord{}
	}
	return recs, nil
}

// normalizeScan applies the documented field defaults so the record is fully
// populated before it reaches the store.
func normalizeScan(in SaveScanInput) domain.ScanRecord {
	rec := domain.ScanRecord{
		UserID:         strings.TrimSpace(in.UserID),
		ImageURL:       strings.TrimSpace(in.ImageURL),
		DiseaseName:    strings.TrimSpace(in.DiseaseName),
		ScientificName: strings.TrimSpace(in.ScientificName),
		Confidence:     in.Confidence,
		Severity:       domain.Severity(strings.TrimSpace(in.Severity)),
		Symptoms:       in.Symptoms,
		Treatments:     in.Treatments,
		Prevention:     in.Prevention,
		ProTip:         strings.TrimSpace(in.ProTip),
		IsHealthy:      in.IsHealthy,
	}
	if rec.DiseaseName == "" {
		rec.DiseaseName = "Unknown"
	}
	if rec.Confidence < 0 {
		rec.Confidence = 0
	}
	if rec.Severity == "" {
		rec.Severity = domain.SeverityUnknown
	}
	if rec.Symptoms == nil {
		rec.Symptoms = []string{}
	}
	if rec.Treatments == nil {
		rec.Treatments = map[string]string{}
	}
	if rec.Prevention == nil {
		rec.Prevention = []string{}
	}
	return rec
}

func (a *App) uploadScanImage(ctx context.Context, imageData string) (string, error) {
	payload, mime := splitDataURL(imageData)
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("decode image data: %w", err)
	}
	if strings.TrimSpace(mime) == "" {
		mime = "image/jpeg"
	}
	key := "scans/" + util.NewID() + extensionFor(mime)
	if err := a.objects.Put(ctx, key, bytes.NewReader(raw), int64(len(raw)), mime); err != nil {
		return "", err
	}
	return a.objects.PresignGet(ctx, key, imageURLExpiry)
}

func extensionFor(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
