package store

import (
	"testing"

	"phytoguard/pkg/domain"
)

func TestInsertScanAssignsIDAndTimestamp(t *testing.T) {
	s := NewMemoryStore()
	rec, err := s.InsertScan(domain.ScanRecord{
		UserID:      "u1",
		DiseaseName: "Early Blight",
		Confidence:  87,
		Severity:    domain.SeverityUnknown,
	})
	if err != nil {
		t.Fatalf("insert scan: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("expected server-assigned id")
	}
	if rec.CreatedAt.IsZero() {
		t.Fatal("expected server-assigned createdAt")
	}
	if rec.Symptoms == nil || rec.Prevention == nil || rec.Treatments == nil {
		t.Fatal("expected empty collections, not nil")
	}
}

func TestListScansByUserOrderAndLimit(t *testing.T) {
	s := NewMemoryStore()
	var last string
	for i := 0; i < 25; i++ {
		rec, err := s.InsertScan(domain.ScanRecord{UserID: "u1", DiseaseName: "d"})
		if err != nil {
			t.Fatalf("insert scan %d: %v", i, err)
		}
		last = rec.ID
	}
	if _, err := s.InsertScan(domain.ScanRecord{UserID: "other", DiseaseName: "x"}); err != nil {
		t.Fatalf("insert other user scan: %v", err)
	}

	recs, err := s.ListScansByUser("u1", 20)
	if err != nil {
		t.Fatalf("list scans: %v", err)
	}
	if len(recs) != 20 {
		t.Fatalf("expected 20 records, got %d", len(recs))
	}
	if recs[0].ID != last {
		t.Fatal("expected newest scan first")
	}
	for _, rec := range recs {
		if rec.UserID != "u1" {
			t.Fatalf("record for wrong user: %s", rec.UserID)
		}
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].CreatedAt.After(recs[i-1].CreatedAt) {
			t.Fatal("records not ordered newest first")
		}
	}
}

func TestListScansEmptyUserReturnsEmptySlice(t *testing.T) {
	s := NewMemoryStore()
	recs, err := s.ListScansByUser("nobody", 20)
	if err != nil {
		t.Fatalf("list scans: %v", err)
	}
	if recs == nil || len(recs) != 0 {
		t.Fatalf("expected empty slice, got %#v", recs)
	}
}

func TestDiseaseLibrarySeeded(t *testing.T) {
	s := NewMemoryStore()
	items, err := s.ListDiseases()
	if err != nil {
		t.Fatalf("list diseases: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 seeded diseases, got %d", len(items))
	}
	d, ok, err := s.GetDisease("early-blight")
	if err != nil || !ok {
		t.Fatalf("get disease: ok=%v err=%v", ok, err)
	}
	if d.ScientificName != "Alternaria solani" {
		t.Fatalf("unexpected disease: %+v", d)
	}
	if _, ok, _ := s.GetDisease("missing"); ok {
		t.Fatal("expected miss for unknown id")
	}
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	s := NewMemoryStore()
	if err := s.CreateUser(domain.User{ID: "u1", Email: "a@b.c"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := s.CreateUser(domain.User{ID: "u2", Email: "a@b.c"}); err == nil {
		t.Fatal("expected duplicate email error")
	}
	u, ok, err := s.GetUserByEmail("a@b.c")
	if err != nil || !ok || u.ID != "u1" {
		t.Fatalf("get user by email: %+v ok=%v err=%v", u, ok, err)
	}
}
