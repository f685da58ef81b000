package dto

import (
	"time"

	domainbooking "rentavail/internal/domain/booking"
	"rentavail/internal/domain/shared/money"
)

type MoneyDTO struct {
	AmountMinor int64  `json:"amount_minor"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
}

type BookingSummary struct {
	ID             string    `json:"id"`
	UnitID         string    `json:"unit_id"`
	GuestID        string    `json:"guest_id"`
	CheckIn        time.Time `json:"check_in"`
	CheckOut       time.Time `json:"check_out"`
	Guests         int       `json:"guests"`
	Status         string    `json:"status"`
	Total          MoneyDTO  `json:"total"`
	PricingVersion string    `json:"pricing_version"`
	CreatedAt      time.Time `json:"created_at"`
}

type BookingCollection struct {
	Items []BookingSummary `json:"items"`
}

func MapMoney(amount money.Minor, currency string) MoneyDTO {
	return MoneyDTO{
		AmountMinor: amount.Int64(),
		Amount:      money.FormatMajor(amount, currency),
		Currency:    currency,
	}
}

func MapBookingSummary(b *domainbooking.Booking) BookingSummary {
	return BookingSummary{
		ID:             string(b.ID),
		UnitID:         string(b.UnitID),
		GuestID:        b.GuestID,
		CheckIn:        b.Range.CheckIn,
		CheckOut:       b.Range.CheckOut,
		Guests:         b.Guests,
		Status:         string(b.State),
		Total:          MapMoney(b.Quote.TotalMinor, b.Currency),
		PricingVersion: b.Quote.PricingVersion,
		CreatedAt:      b.CreatedAt,
	}
}
