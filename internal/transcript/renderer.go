package transcript

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PDFRenderer turns a Document into an A4 portrait PDF. Amcount fields are
// expected in their ASCII form; core fonts cannot encode the rupee symbol.
type PDFRenderer struct{}

// NewPDFRenderer constructs a renderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render produces the PDF bytes for the document.
func (r *PDFRenderer) Render(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, CollegeName, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 8, doc.Title, "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Application ID: %s", doc.ApplicationID), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated on %s", doc.GeneratedAt.Format("02 Jan 2006 15:04 MST")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for _, section := range doc.Sections {
		r.renderSection(pdf, section)
	}

	if doc.Declaration != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 7, "Declaration", "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "I", 9)
		pdf.MultiCell(0, 5, doc.Declaration, "", "", false)
	}

	if doc.SignatureLine {
		pdf.Ln(12)
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, "Signature of Applicant: _______________________", "", 1, "R", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render transcript pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *PDFRenderer) renderSection(pdf *gofpdf.Fpdf, section Section) {
	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(0, 7, section.Title, "1", 1, "", true, 0, "")

	pageWidth, _ := pdf.GetPageSize()
	labelWidth := 60.0
	valueWidth := pageWidth - 30 - labelWidth

	pdf.SetFont("Arial", "", 9)
	for _, field := range section.Fields {
		pdf.CellFormat(labelWidth, 6, field.Label, "1", 0, "", false, 0, "")
		pdf.CellFormat(valueWidth, 6, field.Value, "1", 1, "", false, 0, "")
	}
	pdf.Ln(3)
}
