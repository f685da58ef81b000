package quotes

import (
	"errors"
	"fmt"
	"time"

	"rentavail/internal/app/policies"
	domainpricing "rentavail/internal/domain/pricing"
	domainquotes "rentavail/internal/domain/quotes"
	"rentavail/internal/domain/shared/apperr"
	"rentavail/internal/domain/shared/daterange"
	"rentavail/internal/domain/shared/money"
	domainunits "rentavail/internal/domain/units"
)

var ErrPricingRequired = errors.New("quotes: pricing port required")

// StayRequest is a stay to price for a unit already loaded from the directory.
type StayRequest struct {
	Unit                  *domainunits.Unit
	Location              *time.Location
	CheckIn               time.Time
	CheckOut              time.Time
	FirstCompletedBooking bool
}

// Service prices whole stays. Booking requests use it too, so a quote and the
// booking made from it agree to the minor unit.
type Service struct {
	Pricing policies.PricingPort
}

// Nights counts unit-local nights and separates a reversed range from a stay
// that never crosses midnight.
func Nights(checkIn, checkOut time.Time, loc *time.Location) (daterange.DayRange, error) {
	if checkIn.IsZero() || checkOut.IsZero() {
		return daterange.DayRange{}, apperr.Validation(apperr.CodeInvalidDate, "check_in and check_out are required")
	}
	if checkOut.Before(checkIn) {
		return daterange.DayRange{}, apperr.Validation(apperr.CodeReversedRange, "check_out must not precede check_in")
	}
	days := daterange.DateRange{CheckIn: checkIn, CheckOut: checkOut}.Days(loc)
	if days.Len() == 0 {
		return daterange.DayRange{}, apperr.Validation(apperr.CodeZeroNightStay, "stay must cover at least one night")
	}
	return days, nil
}

func (s *Service) Quote(req StayRequest) (*domainquotes.StayQuote, error) {
	if s.Pricing == nil {
		return nil, ErrPricingRequired
	}
	u := req.Unit
	days, err := Nights(req.CheckIn, req.CheckOut, req.Location)
	if err != nil {
		return nil, err
	}
	if !u.Bookable() {
		return nil, apperr.Conflict(apperr.CodeUnitNotBookable, fmt.Sprintf("unit %s is %s", u.ID, u.State))
	}
	nights := days.Len()
	if nights < u.MinNights {
		return nil, apperr.Validation(apperr.CodeBelowMinimumStay, fmt.Sprintf("unit requires at least %d nights", u.MinNights))
	}
	if u.MaxNights > 0 && nights > u.MaxNights {
		return nil, apperr.Validation(apperr.CodeAboveMaximumStay, fmt.Sprintf("unit allows at most %d nights", u.MaxNights))
	}

	base, err := u.NightlyRate.Times(int64(nights))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, apperr.CodeInvalidMoney, err)
	}
	opts := domainpricing.PriceOptions{FirstCompletedBooking: req.FirstCompletedBooking}
	stay, err := s.Pricing.Price(base, opts)
	if err != nil {
		return nil, priceError(err)
	}
	single, err := s.Pricing.Price(u.NightlyRate, opts)
	if err != nil {
		return nil, priceError(err)
	}

	return &domainquotes.StayQuote{
		UnitID:                u.ID,
		CheckIn:               req.CheckIn.UTC(),
		CheckOut:              req.CheckOut.UTC(),
		Nights:                nights,
		Currency:              u.Currency,
		Stay:                  stay,
		SingleNight:           single,
		AverageNightlyMinor:   stay.TotalMinor.DivRoundHalfUp(int64(nights)),
		FirstCompletedBooking: req.FirstCompletedBooking,
	}, nil
}

func priceError(err error) error {
	if errors.Is(err, money.ErrAmountTooLarge) || errors.Is(err, money.ErrNegativeAmount) {
		return apperr.Wrap(apperr.KindValidation, apperr.CodeInvalidMoney, err)
	}
	return err
}
