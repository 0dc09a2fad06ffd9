package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"privacydesk/internal/domain/request"
)

// WriteCasePDF renders a printable one-page summary of a case.
func WriteCasePDF(w io.Writer, rec request.PrivacyRequest) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, fmt.Sprintf("Case %s", rec.ID))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Type: %s", rec.Type))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", rec.Status))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Owner: %s", rec.Owner))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Requester")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Name: %s", rec.Requester.Name))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Email: %s", rec.Requester.Email))
	pdf.Ln(7)
	if rec.Requester.Country != "" {
		pdf.Cell(0, 8, fmt.Sprintf("Country: %s", rec.Requester.Country))
		pdf.Ln(7)
	}
	pdf.Ln(3)

	pdf.Cell(0, 8, fmt.Sprintf("Submitted: %s", rec.SubmittedAt.Format("2006-01-02 15:04")))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Due: %s", rec.DueAt.Format("2006-01-02 15:04")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "History")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	for _, h := range rec.History {
		line := fmt.Sprintf("%s  %s by %s", h.At.Format("2006-01-02 15:04"), h.Action, h.Who)
		if h.Details != "" {
			line += " - " + h.Details
		}
		pdf.Cell(0, 6, line)
		pdf.Ln(6)
	}
	pdf.Ln(4)
	pdf.Cell(0, 8, fmt.Sprintf("Notes: %d, Attachments: %d", len(rec.Notes), len(rec.Attachments)))

	return pdf.Output(w)
}
