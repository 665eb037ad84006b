package store

import "phytoguard/pkg/domain"

// Store is the persistence boundary for users, scans and the disease library.
// Scan records are append-only: there is no update or delete.
type Store interface {
	CreateUser(u domain.User) error
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)

	// InsertScan persists one scan and returns it with the server-assigned
	// id and createdAt filled in.
	InsertScan(rec domain.ScanRecord) (domain.ScanRecord, error)
	// ListScansByUser returns the user's scans newest first, at most limit.
	ListScansByUser(userID string, limit int) ([]domain.ScanRecord, error)

	ListDiseases() ([]domain.Disease, error)
	GetDisease(id string) (domain.Disease, bool, error)
}
