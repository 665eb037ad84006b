package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type UserModel struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

func (UserModel) TableName() string { return "users" }

type ScanModel struct {
	ID             string `gorm:"primaryKey"`
	UserID         string `gorm:"not null;index"`
	ImageURL       *string
	DiseaseName    string `gorm:"not null"`
	ScientificName *string
	Confidence     int            `gorm:"not null"`
	Severity       string         `gorm:"not null"`
	Symptoms       datatypes.JSON `gorm:"type:jsonb"`
	Treatments     datatypes.JSON `gorm:"type:jsonb"`
	Prevention     datatypes.JSON `gorm:"type:jsonb"`
	ProTip         *string
	IsHealthy      bool      `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null;index"`
}

func (ScanModel) TableName() string { return "scans" }

type DiseaseModel struct {
	ID              string `gorm:"primaryKey"`
	Name            string `gorm:"not null"`
	ScientificName  string
	Confidence      int
	Severity        string `gorm:"not null"`
	IsContagious    bool
	Symptoms        datatypes.JSON `gorm:"type:jsonb"`
	Causes          datatypes.JSON `gorm:"type:jsonb"`
	OrganicControl  datatypes.JSON `gorm:"type:jsonb"`
	ChemicalControl datatypes.JSON `gorm:"type:jsonb"`
	Prevention      datatypes.JSON `gorm:"type:jsonb"`
	ImageURL        string
	CreatedAt       time.Time `gorm:"not null"`
}

func (DiseaseModel) TableName() string { return "diseases" }
