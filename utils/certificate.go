package utils

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// CertificateData carries everything embedded in a participation
// certificate.
type CertificateData struct {
	Username       string
	StudentID      string
	Department     string
	EventTitle     string
	OrganizingClub string
	IssuedAt       time.Time
}

// GenerateCertificatePDF renders the fixed-layout participation
// certificate and returns the PDF bytes. Rendering is pure: nothing is
// persisted here, so a failure can never leave partial state behind.
func GenerateCertificatePDF(data CertificateData) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pageWidth, pageHeight := pdf.GetPageSize()

	// Outer border.
	pdf.SetDrawColor(31, 78, 121)
	pdf.SetLineWidth(1.2)
	pdf.Rect(10, 10, pageWidth-20, pageHeight-20, "D")

	pdf.SetY(40)
	pdf.SetFont("Helvetica", "B", 32)
	pdf.SetTextColor(31, 78, 121)
	pdf.CellFormat(0, 14, "Certificate of Participation", "", 1, "C", false, 0, "")

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 18)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 10, "This is to certify that", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(51, 51, 51)
	pdf.CellFormat(0, 12, strings.ToUpper(data.Username), "", 1, "C", false, 0, "")

	pdf.SetFont("Times", "", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 8, fmt.Sprintf("Student ID: %s", data.StudentID), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Department: %s", data.Department), "", 1, "C", false, 0, "")

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 16)
	pdf.SetTextColor(31, 78, 121)
	pdf.CellFormat(0, 10, "has participated in", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "BI", 20)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 12, data.EventTitle, "", 1, "C", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(85, 85, 85)
	pdf.CellFormat(0, 8, fmt.Sprintf("Date: %s", data.IssuedAt.Format("January 2, 2006")), "", 1, "C", false, 0, "")
	pdf.SetFontSize(14)
	pdf.CellFormat(0, 8, fmt.Sprintf("Organized by: %s", data.OrganizingClub), "", 1, "C", false, 0, "")

	pdf.Ln(4)
	pdf.SetFontSize(11)
	pdf.CellFormat(0, 8, "Powered By Eventify", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render certificate: %v", err)
	}
	return buf.Bytes(), nil
}
