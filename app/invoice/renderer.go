// Package invoice renders order invoices as PDF documents.
//
// Rendering is a pure function of its inputs: the same Data always produces
// the same layout. Output can stream straight to an http.ResponseWriter or
// buffer in memory for a mail attachment.
package invoice

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

// Item is one invoice table row.
type Item struct {
	Name      string
	Qty       int
	UnitPrice float64
}

// Data is everything the renderer needs. Total is the order's stored total,
// printed as-is rather than recomputed from the items.
type Data struct {
	OrderID       string
	Date          time.Time
	CustomerName  string
	CustomerEmail string
	Items         []Item
	Total         float64
}

// Layout constants, A4 portrait in points.
const (
	marginPt  = 50
	pageRight = 545 // 595 - margin
	colQty    = 300
	colUnit   = 360
	colTotal  = 450
	numWidth  = 80
	rowHeight = 20
	footerTop = 780
)

// Render writes the invoice PDF to w.
func Render(w io.Writer, d Data) error {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(marginPt, marginPt, marginPt)
	pdf.SetAutoPageBreak(true, marginPt)
	pdf.AddPage()

	primaryR, primaryG, primaryB := 45, 55, 72 // dark gray

	// Header.
	pdf.SetTextColor(primaryR, primaryG, primaryB)
	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetXY(marginPt, marginPt)
	pdf.CellFormat(0, 28, "Vehicle Management System", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 14,
		"Fx3Losers Group | International University of Business Agriculture and Technology",
		"", 1, "L", false, 0, "")

	// Teal rule below the header.
	pdf.SetDrawColor(79, 209, 197)
	pdf.SetLineWidth(1)
	pdf.Line(marginPt, 120, pageRight, 120)

	// Metadata block.
	top := 130.0
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(primaryR, primaryG, primaryB)
	meta := []string{
		fmt.Sprintf("Invoice #: %s", d.OrderID),
		fmt.Sprintf("Date: %s", d.Date.Format("1/2/2006")),
		fmt.Sprintf("Customer: %s", d.CustomerName),
		fmt.Sprintf("Email: %s", d.CustomerEmail),
	}
	for i, line := range meta {
		pdf.SetXY(marginPt, top+float64(i)*15)
		pdf.CellFormat(0, 14, line, "", 0, "L", false, 0, "")
	}

	// Table header.
	tableTop := top + 80
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginPt, tableTop)
	pdf.CellFormat(200, 14, "Item", "", 0, "L", false, 0, "")
	pdf.SetXY(colQty, tableTop)
	pdf.CellFormat(50, 14, "Qty", "", 0, "R", false, 0, "")
	pdf.SetXY(colUnit, tableTop)
	pdf.CellFormat(numWidth, 14, "Unit Price", "", 0, "R", false, 0, "")
	pdf.SetXY(colTotal, tableTop)
	pdf.CellFormat(numWidth, 14, "Line Total", "", 0, "R", false, 0, "")

	pdf.SetDrawColor(211, 211, 211)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginPt, tableTop+15, pageRight, tableTop+15)

	// Rows.
	y := tableTop + 25
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(0, 0, 0)
	for _, item := range d.Items {
		lineTotal := item.UnitPrice * float64(item.Qty)

		pdf.SetXY(marginPt, y)
		pdf.CellFormat(240, 12, item.Name, "", 0, "L", false, 0, "")
		pdf.SetXY(colQty, y)
		pdf.CellFormat(50, 12, fmt.Sprintf("%d", item.Qty), "", 0, "R", false, 0, "")
		pdf.SetXY(colUnit, y)
		pdf.CellFormat(numWidth, 12, fmt.Sprintf("$%.2f", item.UnitPrice), "", 0, "R", false, 0, "")
		pdf.SetXY(colTotal, y)
		pdf.CellFormat(numWidth, 12, fmt.Sprintf("$%.2f", lineTotal), "", 0, "R", false, 0, "")

		y += rowHeight
		pdf.SetDrawColor(245, 245, 245)
		pdf.Line(marginPt, y-5, pageRight, y-5)
	}

	// Total row.
	totalY := y + 20
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(primaryR, primaryG, primaryB)
	pdf.SetXY(colUnit, totalY)
	pdf.CellFormat(numWidth, 14, "Total", "", 0, "R", false, 0, "")
	pdf.SetXY(colTotal, totalY)
	pdf.CellFormat(numWidth, 14, fmt.Sprintf("$%.2f", d.Total), "", 0, "R", false, 0, "")

	// Footer.
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(128, 128, 128)
	pdf.SetXY(marginPt, footerTop)
	pdf.CellFormat(495, 12,
		"Thank you for your purchase! If you have any questions, contact us at support@vms.com",
		"", 0, "C", false, 0, "")

	return pdf.Output(w)
}

// Bytes renders the invoice fully in memory, for use as a mail attachment.
func Bytes(d Data) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename returns the canonical attachment/download name for an order.
func Filename(orderID string) string {
	return fmt.Sprintf("invoice_%s.pdf", orderID)
}
