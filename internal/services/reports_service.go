package services

import (
	"context"
	"database/sql"
	"time"

	intconfig "caravan/internal/config"
	"caravan/internal/domain"
	"caravan/internal/domain/models"
	"caravan/internal/repositories"
	"caravan/internal/utils"
)

type ReportsService struct {
	DB *sql.DB
}

// DailyPayments groups the payments of one calendar day.
type DailyPayments struct {
	Date     string           `json:"date"`
	Total    int64            `json:"total"`
	ByMethod map[string]int64 `json:"by_method"`
	Payments []models.Payment `json:"payments"`
}

func (s ReportsService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

// FinancialSummary aggregates every reservation except hosts.
func (s ReportsService) FinancialSummary(ctx context.Context) (domain.FinancialSummary, error) {
	reservations, err := repositories.ReservationRepository{DB: s.db()}.List(ctx, repositories.ReservationFilter{})
	if err != nil {
		return domain.FinancialSummary{}, err
	}
	return domain.Summarize(reservations), nil
}

// PaymentsOfDay lists payments received on date (YYYY-MM-DD); empty means today.
func (s ReportsService) PaymentsOfDay(ctx context.Context, date string) (DailyPayments, error) {
	day := time.Now()
	if date != "" {
		d, err := utils.ParseDate(date)
		if err != nil {
			return DailyPayments{}, domain.ValidationError{Field: "date", Msg: "fecha inválida, use AAAA-MM-DD", Err: err}
		}
		day = d
	}
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 0, 1)

	payments, err := repositories.PaymentRepository{DB: s.db()}.ListBetween(ctx, from, to)
	if err != nil {
		return DailyPayments{}, err
	}
	out := DailyPayments{Date: from.Format("2006-01-02"), ByMethod: map[string]int64{}, Payments: payments}
	for _, p := range payments {
		out.Total += p.Amount
		out.ByMethod[p.Method] += p.Amount
	}
	return out, nil
}
