package utils

import (
	"bytes"
	"testing"
	"time"
)

func TestGenerateCertificatePDF(t *testing.T) {
	data := CertificateData{
		Username:       "alice",
		StudentID:      "S12345",
		Department:     "Computer Science",
		EventTitle:     "GopherCon Campus Edition",
		OrganizingClub: "Coding Club",
		IssuedAt:       time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC),
	}

	pdf, err := GenerateCertificatePDF(data)
	if err != nil {
		t.Fatalf("GenerateCertificatePDF failed: %v", err)
	}
	if len(pdf) == 0 {
		t.Fatal("Expected PDF bytes")
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("Output does not start with a PDF header: %q", pdf[:8])
	}

	// Rendering is deterministic for identical input.
	again, err := GenerateCertificatePDF(data)
	if err != nil {
		t.Fatalf("Second render failed: %v", err)
	}
	if len(again) != len(pdf) {
		t.Errorf("Render size changed between runs: %d vs %d", len(pdf), len(again))
	}
}
