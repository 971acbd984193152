package moneybook

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currencies carry a unique ISO-4217 style code as their business key, and
// exactly one of them is the base currency of the database. Exchange rates
// are directed: a row converts fromCurrencyId into toCurrencyId with a
// strictly positive rate on a given date.

// AddCurrency validates and inserts a currency. The code must be unique
// across the table. Symbol and decimalPlaces default from the ISO currency
// metadata when the code is a known currency, otherwise to the code itself
// and 2. Only one currency may be the base; inserting a second base is a
// validation error.
func (s *Store) AddCurrency(fields Record) (Record, error) {
	rec, err := normalizeRecord(fields)
	if err != nil {
		return nil, validationf("currencies: %v", err)
	}
	code := rec.Str("code")
	if code == "" {
		return nil, validationf("currencies: missing code")
	}
	if rec.Str("name") == "" {
		return nil, validationf("currencies: missing name")
	}
	if _, ok := s.CurrencyByCode(code); ok {
		return nil, validationf("currencies: duplicate code %q", code)
	}
	if rec.Bool("isBase") {
		if base, ok := s.BaseCurrency(); ok {
			return nil, validationf("currencies: base currency already defined as %q", base.Str("code"))
		}
	}
	if !rec.Has("isBase") {
		rec["isBase"] = false
	}
	iso := money.GetCurrency(code)
	if rec.Str("symbol") == "" {
		if iso != nil {
			rec["symbol"] = iso.Grapheme
		} else {
			rec["symbol"] = code
		}
	}
	if !rec.Has("decimalPlaces") {
		places := 2
		if iso != nil {
			places = iso.Fraction
		}
		rec["decimalPlaces"] = decimal.NewFromInt(int64(places))
	}
	if rec.ID() == "" {
		rec["id"] = s.nextIDFor("currencies")
	}
	return s.insert("currencies", rec)
}

// UpdateCurrency merges fields into a currency, keeping the code unique and
// the base currency singular.
func (s *Store) UpdateCurrency(id string, fields Record) (Record, error) {
	_, current := s.find("currencies", id)
	if current == nil {
		return nil, notFoundf("currencies %q", id)
	}
	rec, err := normalizeRecord(fields)
	if err != nil {
		return nil, validationf("currencies: %v", err)
	}
	if code, ok := rec["code"].(string); ok {
		if code == "" {
			return nil, validationf("currencies: missing code")
		}
		if other, exists := s.CurrencyByCode(code); exists && other.ID() != id {
			return nil, validationf("currencies: duplicate code %q", code)
		}
	}
	if isBase, ok := rec["isBase"].(bool); ok && isBase {
		if base, exists := s.BaseCurrency(); exists && base.ID() != id {
			return nil, validationf("currencies: base currency already defined as %q", base.Str("code"))
		}
	}
	return s.update("currencies", id, rec)
}

// DeleteCurrency removes a currency. It is refused with ErrConstraint while
// any account, transaction, rate, setting, preference or product still
// references it.
func (s *Store) DeleteCurrency(id string) error {
	return s.delete("currencies", id)
}

// CurrencyByCode returns the currency with the given code.
func (s *Store) CurrencyByCode(code string) (Record, bool) {
	for _, rec := range s.tables["currencies"] {
		if rec.Str("code") == code {
			return rec.Clone(), true
		}
	}
	return nil, false
}

// BaseCurrency returns the currency marked as base.
func (s *Store) BaseCurrency() (Record, bool) {
	for _, rec := range s.tables["currencies"] {
		if rec.Bool("isBase") {
			return rec.Clone(), true
		}
	}
	return nil, false
}

// AddExchangeRate validates and inserts a directed exchange rate. The rate
// must be strictly positive, both currencies must exist, and the date
// defaults to today.
func (s *Store) AddExchangeRate(fields Record) (Record, error) {
	rec, err := normalizeRecord(fields)
	if err != nil {
		return nil, validationf("exchange_rates: %v", err)
	}
	if !rec.Decimal("rate").IsPositive() {
		return nil, validationf("exchange_rates: rate must be positive, got %s", rec.Decimal("rate"))
	}
	if rec.Str("date") == "" {
		rec["date"] = Today().String()
	}
	date, err := ParseDate(rec.Str("date"))
	if err != nil {
		return nil, validationf("exchange_rates: %v", err)
	}
	rec["date"] = date.String()
	if rec.Str("source") == "" {
		rec["source"] = "manual"
	}
	if rec.ID() == "" {
		rec["id"] = s.nextIDFor("exchange_rates")
	}
	return s.insert("exchange_rates", rec)
}

// UpdateExchangeRate merges fields into an exchange rate, keeping the rate
// strictly positive.
func (s *Store) UpdateExchangeRate(id string, fields Record) (Record, error) {
	rec, err := normalizeRecord(fields)
	if err != nil {
		return nil, validationf("exchange_rates: %v", err)
	}
	if rec.Has("rate") && !rec.Decimal("rate").IsPositive() {
		return nil, validationf("exchange_rates: rate must be positive, got %s", rec.Decimal("rate"))
	}
	if rec.Has("date") {
		date, err := ParseDate(rec.Str("date"))
		if err != nil {
			return nil, validationf("exchange_rates: %v", err)
		}
		rec["date"] = date.String()
	}
	return s.update("exchange_rates", id, rec)
}

// DeleteExchangeRate removes an exchange rate.
func (s *Store) DeleteExchangeRate(id string) error {
	return s.delete("exchange_rates", id)
}

// UpsertDailyRate records one rate per currency pair and day: an existing row
// for the same pair and date is updated in place, otherwise a new rate is
// inserted.
func (s *Store) UpsertDailyRate(fromID, toID string, day Date, rate decimal.Decimal, source string) (Record, error) {
	for _, rec := range s.tables["exchange_rates"] {
		if rec.Str("fromCurrencyId") == fromID && rec.Str("toCurrencyId") == toID && rec.Str("date") == day.String() {
			return s.UpdateExchangeRate(rec.ID(), Record{"rate": rate, "source": source})
		}
	}
	return s.AddExchangeRate(Record{
		"fromCurrencyId": fromID,
		"toCurrencyId":   toID,
		"rate":           rate,
		"date":           day,
		"source":         source,
	})
}

// LatestRate returns the most recent rate converting fromID into toID.
func (s *Store) LatestRate(fromID, toID string) (rate decimal.Decimal, day Date, ok bool) {
	for _, rec := range s.tables["exchange_rates"] {
		if rec.Str("fromCurrencyId") != fromID || rec.Str("toCurrencyId") != toID {
			continue
		}
		d, err := ParseDate(rec.Str("date"))
		if err != nil {
			continue
		}
		if !ok || d.After(day) {
			rate, day, ok = rec.Decimal("rate"), d, true
		}
	}
	return rate, day, ok
}

// SetCurrencySettings upserts the display settings of a currency, keyed by
// currencyId.
func (s *Store) SetCurrencySettings(currencyID string, fields Record) (Record, error) {
	rec, err := normalizeRecord(fields)
	if err != nil {
		return nil, validationf("currency_settings: %v", err)
	}
	if pos, ok := rec["symbolPosition"].(string); ok && pos != "before" && pos != "after" {
		return nil, validationf("currency_settings: symbolPosition must be before or after, got %q", pos)
	}
	for _, existing := range s.tables["currency_settings"] {
		if existing.Str("currencyId") == currencyID {
			return s.update("currency_settings", existing.ID(), rec)
		}
	}
	rec["currencyId"] = currencyID
	if rec.ID() == "" {
		rec["id"] = s.nextIDFor("currency_settings")
	}
	if rec.Str("symbolPosition") == "" {
		rec["symbolPosition"] = "before"
	}
	if !rec.Has("decimalPlaces") {
		if currency, err := s.Get("currencies", currencyID); err == nil {
			rec["decimalPlaces"] = currency.Decimal("decimalPlaces")
		} else {
			rec["decimalPlaces"] = decimal.NewFromInt(2)
		}
	}
	return s.insert("currency_settings", rec)
}

// CurrencySettings returns the display settings of a currency.
func (s *Store) CurrencySettings(currencyID string) (Record, bool) {
	for _, rec := range s.tables["currency_settings"] {
		if rec.Str("currencyId") == currencyID {
			return rec.Clone(), true
		}
	}
	return nil, false
}

// FormatAmount renders an amount in a currency using the ISO currency
// formatting when the code is known, falling back to a plain fixed-point
// rendering with the currency code as suffix.
func (s *Store) FormatAmount(amount decimal.Decimal, currencyID string) string {
	currency, err := s.Get("currencies", currencyID)
	if err != nil {
		return amount.StringFixed(2)
	}
	code := currency.Str("code")
	if iso := money.GetCurrency(code); iso != nil {
		units := amount.Shift(int32(iso.Fraction)).Round(0).IntPart()
		return money.New(units, code).Display()
	}
	places := int32(currency.Decimal("decimalPlaces").IntPart())
	return amount.StringFixed(places) + " " + code
}
