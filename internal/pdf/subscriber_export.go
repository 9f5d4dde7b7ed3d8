package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"toursite/internal/models"
)

// SubscriberExporter renders the subscriber list for the admin export endpoint.
type SubscriberExporter struct {
	fontName string
}

func NewSubscriberExporter() *SubscriberExporter {
	return &SubscriberExporter{fontName: "Helvetica"}
}

func (g *SubscriberExporter) Generate(subs []*models.Subscriber, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Newsletter subscribers", false)
	pdf.SetAuthor("TourSite", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, "Newsletter subscribers", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	sub := fmt.Sprintf("%d total, exported %s", len(subs), generatedAt.Format("02.01.2006 15:04"))
	pdf.CellFormat(0, 7, sub, "", 1, "C", false, 0, "")
	g.hr(pdf)
	pdf.Ln(2)

	// шапка таблицы
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(20, 7, "#", "B", 0, "L", false, 0, "")
	pdf.CellFormat(100, 7, "Email", "B", 0, "L", false, 0, "")
	pdf.CellFormat(50, 7, "Subscribed", "B", 1, "L", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	for i, s := range subs {
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", i+1), "", 0, "L", false, 0, "")
		pdf.CellFormat(100, 6, s.Email, "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, s.SubscribedAt.Format("02.01.2006"), "", 1, "L", false, 0, "")
	}

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 10)
		pdf.CellFormat(0, 10,
			fmt.Sprintf("Page %d/{nb}", pdf.PageNo()),
			"", 0, "C", false, 0, "",
		)
	})

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("subscriber pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *SubscriberExporter) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}
