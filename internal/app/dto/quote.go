package dto

import (
	"time"

	domainquotes "rentavail/internal/domain/quotes"
	"rentavail/internal/domain/shared/money"
)

type FeeBreakdown struct {
	ServiceFeeMinor   int64 `json:"service_fee_minor"`
	ProcessorFeeMinor int64 `json:"processor_fee_minor"`
}

type StayQuote struct {
	QuoteID                  string       `json:"quote_id"`
	UnitID                   string       `json:"unit_id"`
	CheckIn                  time.Time    `json:"check_in"`
	CheckOut                 time.Time    `json:"check_out"`
	Nights                   int          `json:"nights"`
	Currency                 string       `json:"currency"`
	HostNetTotalMinor        int64        `json:"host_net_total_minor"`
	GuestTotalMinor          int64        `json:"guest_total_minor"`
	GuestTotal               string       `json:"guest_total"`
	GuestUnitPriceMinor      int64        `json:"guest_unit_price_minor"`
	GuestAverageNightlyMinor int64        `json:"guest_average_nightly_minor"`
	FeeBreakdown             FeeBreakdown `json:"fee_breakdown"`
	PricingVersion           string       `json:"pricing_version"`
	IssuedAt                 time.Time    `json:"issued_at"`
}

func MapStayQuote(q *domainquotes.StayQuote) StayQuote {
	return StayQuote{
		QuoteID:                  string(q.ID),
		UnitID:                   string(q.UnitID),
		CheckIn:                  q.CheckIn,
		CheckOut:                 q.CheckOut,
		Nights:                   q.Nights,
		Currency:                 q.Currency,
		HostNetTotalMinor:        q.Stay.BaseMinor.Int64(),
		GuestTotalMinor:          q.Stay.TotalMinor.Int64(),
		GuestTotal:               money.FormatMajor(q.Stay.TotalMinor, q.Currency),
		GuestUnitPriceMinor:      q.SingleNight.TotalMinor.Int64(),
		GuestAverageNightlyMinor: q.AverageNightlyMinor.Int64(),
		FeeBreakdown: FeeBreakdown{
			ServiceFeeMinor:   q.Stay.ServiceFeeMinor.Int64(),
			ProcessorFeeMinor: q.Stay.ProcessorFeeMinor.Int64(),
		},
		PricingVersion: q.Stay.PricingVersion,
		IssuedAt:       q.IssuedAt,
	}
}
