package domain

import "time"

// Severity classifies how serious a diagnosed condition is.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityModerate Severity = "Moderate"
	SeverityCritical Severity = "Critical"
	// SeverityUnknown is the persisted default when a scan is saved
	// without a severity.
	SeverityUnknown Severity = "Unknown"
)

// ResultKind partitions diagnosis results into the three valid shapes.
type ResultKind string

const (
	KindDiagnosis ResultKind = "diagnosis"
	KindHealthy   ResultKind = "healthy"
	KindNotAPlant ResultKind = "not_a_plant"
)

// NotAPlantName is the name the vision model uses when the image is not a plant.
const NotAPlantName = "Not a Plant"

// DiagnosisResult is the structured reply produced by the vision model.
type DiagnosisResult struct {
	Name            string   `json:"name"`
	ScientificName  string   `json:"scientificName"`
	Confidence      int      `json:"confidence"`
	Severity        Severity `json:"severity"`
	IsContagious    bool     `json:"isContagious"`
	Description     string   `json:"description"`
	Symptoms        []string `json:"symptoms"`
	Causes          []string `json:"causes"`
	OrganicControl  []string `json:"organicControl"`
	ChemicalControl []string `json:"chemicalControl"`
	Prevention      []string `json:"prevention"`
	ProTip          string   `json:"proTip"`
	IsHealthy       bool     `json:"isHealthy"`
}

// Kind derives the result variant from the healthy flag and the
// not-a-plant name, so callers never branch on sentinel strings.
func (d DiagnosisResult) Kind() ResultKind {
	if d.IsHealthy {
		return KindHealthy
	}
	if d.Name == NotAPlantName {
		return KindNotAPlant
	}
	return KindDiagnosis
}

// ScanRecord is one persisted diagnosis, owned by exactly one user.
// Records are written once and never updated or deleted.
type ScanRecord struct {
	ID             string            `json:"id"`
	UserID         string            `json:"userId"`
	ImageURL       string            `json:"imageUrl,omitempty"`
	DiseaseName    string            `json:"diseaseName"`
	ScientificName string            `json:"scientificName,omitempty"`
	Confidence     int               `json:"confidence"`
	Severity       Severity          `json:"severity"`
	Symptoms       []string          `json:"symptoms"`
	Treatments     map[string]string `json:"treatments"`
	Prevention     []string          `json:"prevention"`
	ProTip         string            `json:"proTip,omitempty"`
	IsHealthy      bool              `json:"isHealthy"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// Disease is a reference entry in the built-in disease library.
type Disease struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	ScientificName  string   `json:"scientificName"`
	Confidence      int      `json:"confidence"`
	Severity        Severity `json:"severity"`
	IsContagious    bool     `json:"isContagious"`
	Symptoms        []string `json:"symptoms"`
	Causes          []string `json:"causes"`
	OrganicControl  []string `json:"organicControl"`
	ChemicalControl []string `json:"chemicalControl"`
	Prevention      []string `json:"prevention"`
	ImageURL        string   `json:"image"`
}

// User is an account able to save and list scans.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
