package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"phytoguard/pkg/domain"
)

const migrateLockID int64 = 84128412

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB, runs auto-migrations and seeds the disease
// library when it is empty.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(&UserModel{}, &ScanModel{}, &DiseaseModel{}); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		var count int64
		if err := tx.Model(&DiseaseModel{}).Count(&count).Error; err != nil {
			return fmt.Errorf("count diseases: %w", err)
		}
		if count == 0 {
			models := make([]DiseaseModel, 0, len(seedDiseases))
			for _, d := range seedDiseases {
				models = append(models, diseaseToModel(d))
			}
			if err := tx.Create(&models).Error; err != nil {
				return fmt.Errorf("seed diseases: %w", err)
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// CreateUser registers a new user.
func (s *GormStore) CreateUser(u domain.User) error {
	model := userToModel(u)
	return s.db.Create(&model).Error
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// InsertScan appends one scan row with a server-assigned id and timestamp.
func (s *GormStore) InsertScan(rec domain.ScanRecord) (domain.ScanRecord, error) {
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now().UTC()
	model := scanToModel(rec)
	if err := s.db.Create(&model).Error; err != nil {
		return domain.ScanRecord{}, err
	}
	return scanFromModel(model), nil
}

// ListScansByUser returns the user's scans newest first, bounded by limit.
func (s *GormStore) ListScansByUser(userID string, limit int) ([]domain.ScanRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var models []ScanModel
	// id breaks ties when two inserts land on the same timestamp, keeping
	// the ordering deterministic.
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	recs := make([]domain.ScanRecord, 0, len(models))
	for _, m := range models {
		recs = append(recs, scanFromModel(m))
	}
	return recs, nil
}

// ListDiseases returns the disease library ordered by name.
func (s *GormStore) ListDiseases() ([]domain.Disease, error) {
	var models []DiseaseModel
	if err := s.db.Order("name ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	items := make([]domain.Disease, 0, len(models))
	for _, m := range models {
		items = append(items, diseaseFromModel(m))
	}
	return items, nil
}

// GetDisease retrieves one library entry.
func (s *GormStore) GetDisease(id string) (domain.Disease, bool, error) {
	var model DiseaseModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Disease{}, false, nil
		}
		return domain.Disease{}, false, err
	}
	return diseaseFromModel(model), true, nil
}

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func scanToModel(rec domain.ScanRecord) ScanModel {
	symptoms, _ := json.Marshal(emptyIfNil(rec.Symptoms))
	treatments, _ := json.Marshal(emptyMapIfNil(rec.Treatments))
	prevention, _ := json.Marshal(emptyIfNil(rec.Prevention))
	return ScanModel{
		ID:             rec.ID,
		UserID:         rec.UserID,
		ImageURL:       nilIfEmpty(rec.ImageURL),
		DiseaseName:    rec.DiseaseName,
		ScientificName: nilIfEmpty(rec.ScientificName),
		Confidence:     rec.Confidence,
		Severity:       string(rec.Severity),
		Symptoms:       symptoms,
		Treatments:     treatments,
		Prevention:     prevention,
		ProTip:         nilIfEmpty(rec.ProTip),
		IsHealthy:      rec.IsHealthy,
		CreatedAt:      rec.CreatedAt,
	}
}

func scanFromModel(m ScanModel) domain.ScanRecord {
	symptoms := []string{}
	prevention := []string{}
	treatments := map[string]string{}
	if len(m.Symptoms) > 0 {
		_ = json.Unmarshal(m.Symptoms, &symptoms)
	}
	if len(m.Prevention) > 0 {
		_ = json.Unmarshal(m.Prevention, &prevention)
	}
	if len(m.Treatments) > 0 {
		_ = json.Unmarshal(m.Treatments, &treatments)
	}
	return domain.ScanRecord{
		ID:             m.ID,
		UserID:         m.UserID,
		ImageURL:       derefOrEmpty(m.ImageURL),
		DiseaseName:    m.DiseaseName,
		ScientificName: derefOrEmpty(m.ScientificName),
		Confidence:     m.Confidence,
		Severity:       domain.Severity(m.Severity),
		Symptoms:       symptoms,
		Treatments:     treatments,
		Prevention:     prevention,
		ProTip:         derefOrEmpty(m.ProTip),
		IsHealthy:      m.IsHealthy,
		CreatedAt:      m.CreatedAt,
	}
}

func diseaseToModel(d domain.Disease) DiseaseModel {
	symptoms, _ := json.Marshal(emptyIfNil(d.Symptoms))
	causes, _ := json.Marshal(emptyIfNil(d.Causes))
	organic, _ := json.Marshal(emptyIfNil(d.OrganicControl))
	chemical, _ := json.Marshal(emptyIfNil(d.ChemicalControl))
	prevention, _ := json.Marshal(emptyIfNil(d.Prevention))
	return DiseaseModel{
		ID:              d.ID,
		Name:            d.Name,
		ScientificName:  d.ScientificName,
		Confidence:      d.Confidence,
		Severity:        string(d.Severity),
		IsContagious:    d.IsContagious,
		Symptoms:        symptoms,
		Causes:          causes,
		OrganicControl:  organic,
		ChemicalControl: chemical,
		Prevention:      prevention,
		ImageURL:        d.ImageURL,
		CreatedAt:       time.Now().UTC(),
	}
}

func diseaseFromModel(m DiseaseModel) domain.Disease {
	d := domain.Disease{
		ID:             m.ID,
		Name:           m.Name,
		ScientificName: m.ScientificName,
		Confidence:     m.Confidence,
		Severity:       domain.Severity(m.Severity),
		IsContagious:   m.IsContagious,
		ImageURL:       m.ImageURL,
	}
	_ = json.Unmarshal(m.Symptoms, &d.Symptoms)
	_ = json.Unmarshal(m.Causes, &d.Causes)
	_ = json.Unmarshal(m.OrganicControl, &d.OrganicControl)
	_ = json.Unmarshal(m.ChemicalControl, &d.ChemicalControl)
	_ = json.Unmarshal(m.Prevention, &d.Prevention)
	return d
}

func nilIfEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func emptyMapIfNil(values map[string]string) map[string]string {
	if values == nil {
		return map[string]string{}
	}
	return values
}
