package services

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	intconfig "caravan/internal/config"
	"caravan/internal/domain"
	"caravan/internal/domain/models"
)

func sampleDetail() models.ReservationDetail {
	res := sampleReservation()
	res.AmountPaid = 1800
	res.Status = "anticipo_pagado"
	return models.ReservationDetail{
		Reservation: res,
		Passengers:  adults(res.ID),
		Payments: []models.Payment{
			{ID: 1, ReservationID: res.ID, Amount: 1800, Method: "efectivo", Reference: "caja", CreatedAt: fixedTime},
		},
	}
}

func TestDocsServiceGenerate(t *testing.T) {
	svc := DocsService{
		Pricing: intconfig.Pricing{UnitPrice: 1800, TripName: "Betel 2025"},
		Loader: func(_ context.Context, id int64) (models.ReservationDetail, error) {
			return sampleDetail(), nil
		},
	}

	pdf, name, err := svc.GenerateTicket(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
	assert.Equal(t, "BOLETO_VJ-ABC234.pdf", name)

	receipt, name, err := svc.GenerateReceipt(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(receipt, []byte("%PDF")))
	assert.Equal(t, "RECIBO_VJ-ABC234.pdf", name)
}

func TestDocsServicePropagatesLoaderError(t *testing.T) {
	svc := DocsService{Loader: func(context.Context, int64) (models.ReservationDetail, error) {
		return models.ReservationDetail{}, domain.NotFoundError{Resource: "reservación"}
	}}
	_, _, err := svc.GenerateTicket(context.Background(), 9)
	assert.True(t, domain.IsNotFound(err))
}

func TestWhatsAppLink(t *testing.T) {
	link := WhatsAppLink("(55) 9876-5432", "Hola & adiós")
	require.True(t, strings.HasPrefix(link, "https://wa.me/525598765432?text="))

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "Hola & adiós", u.Query().Get("text"))
}

func TestConfirmationMessageMentionsTotals(t *testing.T) {
	msg := ConfirmationMessage("Betel 2025", sampleReservation())
	assert.Contains(t, msg, "VJ-ABC234")
	assert.Contains(t, msg, "$3,600")
	assert.Contains(t, msg, "$1,800")
	assert.Contains(t, msg, "Betel 2025")
}

func TestBoardingPayloadCarriesBothCodes(t *testing.T) {
	assert.Equal(t, "VJ-ABC234|KEY234", boardingPayload(sampleDetail()))
}
