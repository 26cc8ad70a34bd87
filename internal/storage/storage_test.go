package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	tempDir := t.TempDir()

	store, err := New(tempDir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	if store.db == nil {
		t.Error("Store database is nil")
	}

	dbPath := filepath.Join(tempDir, "fraudguard.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestNew_InvalidPath(t *testing.T) {
	_, err := New("/nonexistent/path/that/does/not/exist")
	if err == nil {
		t.Error("Expected error for invalid path, got nil")
	}
}

func TestStore_Close(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Errorf("Error closing store: %v", err)
	}
}

func TestStore_CloseNilDB(t *testing.T) {
	store := &Store{db: nil}
	if err := store.Close(); err != nil {
		t.Errorf("Expected no error for nil db, got: %v", err)
	}
}

func TestStorePrediction(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	rec := PredictionRecord{
		ID:         "0b5c8f1e-test",
		Timestamp:  time.Now().UTC(),
		Amount:     149.62,
		FraudScore: 0.1159,
		IsFraud:    false,
		RiskLevel:  "low",
		Threshold:  0.5,
	}

	if err := store.StorePrediction(rec); err != nil {
		t.Fatalf("StorePrediction failed: %v", err)
	}

	records, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	got := records[0]
	if got.ID != rec.ID || got.FraudScore != rec.FraudScore || got.RiskLevel != rec.RiskLevel {
		t.Errorf("stored record mismatch: %+v", got)
	}
}

func TestRecent_NewestFirst(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		rec := PredictionRecord{
			ID:        fmt.Sprintf("pred-%d", i),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}
		if err := store.StorePrediction(rec); err != nil {
			t.Fatalf("StorePrediction failed: %v", err)
		}
	}

	records, err := store.Recent(3)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i, rec := range records {
		want := fmt.Sprintf("pred-%d", 4-i)
		if rec.ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, rec.ID)
		}
	}
}

func TestRecent_DefaultLimit(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	base := time.Now().UTC()
	for i := 0; i < 60; i++ {
		rec := PredictionRecord{
			ID:        fmt.Sprintf("pred-%d", i),
			Timestamp: base.Add(time.Duration(i) * time.Millisecond),
		}
		if err := store.StorePrediction(rec); err != nil {
			t.Fatalf("StorePrediction failed: %v", err)
		}
	}

	records, err := store.Recent(0)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 50 {
		t.Errorf("expected default limit of 50, got %d", len(records))
	}
}

func TestRange(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		rec := PredictionRecord{
			ID:        fmt.Sprintf("pred-%d", i),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.StorePrediction(rec); err != nil {
			t.Fatalf("StorePrediction failed: %v", err)
		}
	}

	records, err := store.Range(base.Add(2*time.Minute), base.Add(5*time.Minute))
	if err != nil {
		t.Fatalf("Range failed: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected 4 records in range, got %d", len(records))
	}
	if records[0].ID != "pred-2" || records[3].ID != "pred-5" {
		t.Errorf("unexpected range bounds: first=%s last=%s", records[0].ID, records[3].ID)
	}
}

func TestRecent_EmptyStore(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	records, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}
