// Package pdf renders issued ticket bundles into printable boarding
// documents.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/bernardev/good-trip-api/internal/model"
)

// RenderBundle produces one A4 PDF with a section per issued ticket:
// trip header, passenger and seat, fare breakdown, and a QR code of the
// carrier locator for boarding validation.
func RenderBundle(b *model.TicketBundle) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetMargins(15, 15, 15)
	tr := doc.UnicodeTranslatorFromDescriptor("") // cp1252, covers pt-BR accents

	for _, t := range b.Tickets {
		doc.AddPage()

		doc.SetFont("Helvetica", "B", 20)
		doc.Cell(0, 12, tr("BILHETE DE EMBARQUE"))
		doc.Ln(14)

		doc.SetFont("Helvetica", "", 11)
		doc.Cell(0, 7, tr(fmt.Sprintf("Pedido: %s", b.OrderID)))
		doc.Ln(7)
		doc.Cell(0, 7, tr(fmt.Sprintf("%s -> %s", b.Trip.OriginName, b.Trip.DestinationName)))
		doc.Ln(7)
		doc.Cell(0, 7, tr(fmt.Sprintf("Data: %s  Saída: %s", b.Trip.DepartureDate, b.Trip.DepartureTime)))
		doc.Ln(7)
		if b.Trip.CarrierName != "" {
			doc.Cell(0, 7, tr(fmt.Sprintf("Empresa: %s  Classe: %s", b.Trip.CarrierName, b.Trip.ServiceClass)))
			doc.Ln(7)
		}
		if b.Trip.Platform != "" {
			doc.Cell(0, 7, tr(fmt.Sprintf("Plataforma: %s", b.Trip.Platform)))
			doc.Ln(7)
		}
		doc.Ln(3)

		doc.SetFont("Helvetica", "B", 13)
		doc.Cell(0, 8, tr(fmt.Sprintf("Poltrona %s - %s", t.Seat, t.Passenger.Name)))
		doc.Ln(9)
		doc.SetFont("Helvetica", "", 11)
		doc.Cell(0, 7, tr(fmt.Sprintf("Documento: %s (%s)", t.Passenger.DocumentNumber, t.Passenger.DocumentType)))
		doc.Ln(7)
		doc.Cell(0, 7, tr(fmt.Sprintf("Localizador: %s  Bilhete: %s", t.Locator, t.TicketNumber)))
		doc.Ln(10)

		doc.SetFont("Helvetica", "B", 11)
		doc.Cell(0, 7, tr("Valores"))
		doc.Ln(8)
		doc.SetFont("Helvetica", "", 10)
		fareLine(doc, tr, "Tarifa", t.Fare.Fare.StringFixed(2))
		fareLine(doc, tr, "Pedágio", t.Fare.Toll.StringFixed(2))
		fareLine(doc, tr, "Taxa de embarque", t.Fare.BoardingTax.StringFixed(2))
		fareLine(doc, tr, "Seguro", t.Fare.Insurance.StringFixed(2))
		fareLine(doc, tr, "Outros", t.Fare.Other.StringFixed(2))
		doc.SetFont("Helvetica", "B", 10)
		fareLine(doc, tr, "Total", t.Fare.Total().StringFixed(2))
		doc.Ln(4)

		if err := drawLocatorQR(doc, t.Locator); err != nil {
			return nil, err
		}

		if b.RegulatoryID != "" {
			doc.SetY(-25)
			doc.SetFont("Helvetica", "", 8)
			doc.Cell(0, 5, tr(fmt.Sprintf("Órgão regulador: %s", b.RegulatoryID)))
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func fareLine(doc *gofpdf.Fpdf, tr func(string) string, label, value string) {
	doc.Cell(60, 6, tr(label))
	doc.Cell(0, 6, tr("R$ "+value))
	doc.Ln(6)
}

// drawLocatorQR embeds the locator as a QR image at the current position.
func drawLocatorQR(doc *gofpdf.Fpdf, locator string) error {
	png, err := qrcode.Encode(locator, qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("encode qr: %w", err)
	}
	name := "qr-" + locator
	doc.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	doc.ImageOptions(name, 15, doc.GetY(), 35, 35, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	doc.SetY(doc.GetY() + 38)
	return nil
}
