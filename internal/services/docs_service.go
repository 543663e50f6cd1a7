package services

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	intconfig "caravan/internal/config"
	"caravan/internal/domain/models"
	"caravan/internal/repositories"
	"caravan/internal/utils"
)

// DocsService renders the reservation ticket and payment receipt PDFs.
type DocsService struct {
	DB        *sql.DB
	Pricing   intconfig.Pricing
	RequestID string
	Loader    func(ctx context.Context, reservationID int64) (models.ReservationDetail, error)
}

func (s DocsService) load(ctx context.Context, reservationID int64) (models.ReservationDetail, error) {
	if s.Loader != nil {
		return s.Loader(ctx, reservationID)
	}
	db := s.DB
	if db == nil {
		db = intconfig.DB
	}
	res, err := repositories.ReservationRepository{DB: db}.GetByID(ctx, reservationID)
	if err != nil {
		return models.ReservationDetail{}, err
	}
	return LoadDetail(ctx, db, res)
}

func (s DocsService) GenerateTicket(ctx context.Context, reservationID int64) ([]byte, string, error) {
	d, err := s.load(ctx, reservationID)
	if err != nil {
		return nil, "", err
	}
	return s.TicketFor(d)
}

func (s DocsService) GenerateReceipt(ctx context.Context, reservationID int64) ([]byte, string, error) {
	d, err := s.load(ctx, reservationID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "generate_receipt", "code="+d.Code)
	return buildReceiptPDF(s.Pricing, d, time.Now())
}

// TicketFor renders the boarding ticket of an already loaded reservation.
func (s DocsService) TicketFor(d models.ReservationDetail) ([]byte, string, error) {
	utils.LogEvent(s.RequestID, "docs", "generate_ticket", "code="+d.Code)
	return buildTicketPDF(s.Pricing, d)
}

// boardingPayload is what the ticket QR encodes; staff scan it at boarding.
func boardingPayload(d models.ReservationDetail) string {
	return d.Code + "|" + d.AccessCode
}

func buildTicketPDF(p intconfig.Pricing, d models.ReservationDetail) ([]byte, string, error) {
	png, err := qrcode.Encode(boardingPayload(d), qrcode.Medium, 256)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Boleto "+d.Code, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr("BOLETO DE VIAJE"))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, tr(safe(p.TripName, "Viaje")))
	pdf.Ln(12)

	pdf.RegisterImageOptionsReader("qr", gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	pdf.ImageOptions("qr", 150, 15, 45, 45, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	lines := []string{
		fmt.Sprintf("Reservación      : %s", d.Code),
		fmt.Sprintf("Código de acceso : %s", d.AccessCode),
		fmt.Sprintf("Responsable      : %s", safe(d.ResponsibleName, "-")),
		fmt.Sprintf("Teléfono         : %s", safe(d.ResponsiblePhone, "-")),
		fmt.Sprintf("Congregación     : %s", safe(d.Congregation, "-")),
		fmt.Sprintf("Lugares          : %d (%d con pago)", d.SeatsTotal, d.SeatsPayable),
		fmt.Sprintf("Estado           : %s", statusLabel(d.Status)),
	}
	for _, l := range lines {
		pdf.Cell(0, 7, tr(l))
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Pasajeros")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	for i, ps := range d.Passengers {
		line := fmt.Sprintf("%d. %s  Asiento %s", i+1, ps.Name, safe(ps.SeatNumber, "-"))
		if ps.IsFreeUnder6 {
			line += "  (menor de 6, sin costo)"
		}
		pdf.Cell(0, 6, tr(line))
		pdf.Ln(6)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, tr("Presente este boleto y su código de acceso al abordar."), "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("BOLETO_%s.pdf", safeFilenamePart(d.Code)), nil
}

func buildReceiptPDF(p intconfig.Pricing, d models.ReservationDetail, now time.Time) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Recibo "+d.Code, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "RECIBO DE PAGO")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, tr("Reservación : "+d.Code))
	pdf.Ln(7)
	pdf.Cell(0, 7, tr("Fecha       : "+utils.FormatDateTime(now)))
	pdf.Ln(7)
	pdf.Cell(0, 7, tr("Responsable : "+safe(d.ResponsibleName, "-")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Pagos")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	if len(d.Payments) == 0 {
		pdf.Cell(0, 6, "Sin pagos registrados")
		pdf.Ln(6)
	}
	for _, pay := range d.Payments {
		line := fmt.Sprintf("%s  %s  %s", utils.FormatDateTime(pay.CreatedAt), utils.FormatPesos(pay.Amount), pay.Method)
		if pay.Reference != "" {
			line += "  ref. " + pay.Reference
		}
		pdf.Cell(0, 6, tr(line))
		pdf.Ln(6)
	}

	pending := d.TotalAmount - d.AmountPaid
	if pending < 0 {
		pending = 0
	}
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, tr(fmt.Sprintf("Precio por lugar : %s", utils.FormatPesos(p.UnitPrice))))
	pdf.Ln(7)
	pdf.Cell(0, 7, tr(fmt.Sprintf("Total            : %s", utils.FormatPesos(d.TotalAmount))))
	pdf.Ln(7)
	pdf.Cell(0, 7, tr(fmt.Sprintf("Anticipo         : %s", utils.FormatPesos(d.DepositRequired))))
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, tr(fmt.Sprintf("Pagado           : %s", utils.FormatPesos(d.AmountPaid))))
	pdf.Ln(7)
	pdf.Cell(0, 7, tr(fmt.Sprintf("Saldo            : %s", utils.FormatPesos(pending))))
	pdf.Ln(7)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("RECIBO_%s.pdf", safeFilenamePart(d.Code)), nil
}

func statusLabel(status string) string {
	switch status {
	case "pendiente":
		return "Pendiente de pago"
	case "anticipo_pagado":
		return "Anticipo pagado"
	case "pagado_completo":
		return "Pagado"
	case "cancelado":
		return "Cancelado"
	default:
		return safe(status, "-")
	}
}

// WhatsAppLink builds a wa.me deep link. Ten-digit Mexican numbers get the 52 prefix.
func WhatsAppLink(phone, message string) string {
	digits := utils.NormalizePhone(phone)
	if len(digits) == 10 {
		digits = "52" + digits
	}
	return "https://wa.me/" + digits + "?text=" + url.QueryEscape(message)
}

// ConfirmationMessage is the pre-filled WhatsApp text sent after booking.
func ConfirmationMessage(tripName string, r models.Reservation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hola, acabo de reservar para %s.\n", safe(tripName, "el viaje"))
	fmt.Fprintf(&b, "Reservación: %s\n", r.Code)
	fmt.Fprintf(&b, "Responsable: %s (%s)\n", r.ResponsibleName, r.Congregation)
	fmt.Fprintf(&b, "Lugares: %d, con pago: %d\n", r.SeatsTotal, r.SeatsPayable)
	fmt.Fprintf(&b, "Total: %s, anticipo: %s", utils.FormatPesos(r.TotalAmount), utils.FormatPesos(r.DepositRequired))
	return b.String()
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
