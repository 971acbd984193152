package moneybook

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// rateServer serves a canned frankfurter latest-rates response and records
// how often it was hit.
func rateServer(t *testing.T, body string, status int) (*httptest.Server, *int) {
	t.Helper()
	hits := new(int)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		if r.URL.Path != "/latest" {
			t.Errorf("request path = %q, want /latest", r.URL.Path)
		}
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, hits
}

const frankfurterBody = `{"amount":1.0,"base":"USD","date":"2025-08-22","rates":{"CHF":0.88,"EUR":0.92,"GBP":0.79,"JPY":147.5}}`

func TestFetchDailyRates(t *testing.T) {
	srv, _ := rateServer(t, frankfurterBody, http.StatusOK)

	day, rates, err := fetchDailyRates(srv.Client(), srv.URL, "USD", []string{"CHF", "EUR", "GBP", "JPY"})
	if err != nil {
		t.Fatalf("fetchDailyRates() error = %v", err)
	}
	if day != MustParseDate("2025-08-22") {
		t.Errorf("day = %v, want 2025-08-22", day)
	}
	if len(rates) != 4 {
		t.Fatalf("rates = %d entries, want 4", len(rates))
	}
	if got := rates["EUR"]; !got.Equal(dec("0.92")) {
		t.Errorf("EUR rate = %s, want 0.92", got)
	}
	if got := rates["JPY"]; !got.Equal(dec("147.5")) {
		t.Errorf("JPY rate = %s, want 147.5", got)
	}
}

func TestFetchDailyRatesErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"http error", `{"message":"not found"}`, http.StatusNotFound},
		{"not json", `<html>`, http.StatusOK},
		{"missing date", `{"rates":{"EUR":0.92}}`, http.StatusOK},
		{"bad date", `{"date":"soon","rates":{"EUR":0.92}}`, http.StatusOK},
		{"rates not an object", `{"date":"2025-08-22","rates":3}`, http.StatusOK},
		{"rate not a number", `{"date":"2025-08-22","rates":{"EUR":"high"}}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := rateServer(t, tt.body, tt.status)
			if _, _, err := fetchDailyRates(srv.Client(), srv.URL, "USD", []string{"EUR"}); err == nil {
				t.Errorf("fetchDailyRates() reported no error")
			}
		})
	}
}

func TestUpdateDailyRates(t *testing.T) {
	srv, hits := rateServer(t, frankfurterBody, http.StatusOK)

	s, err := CreateStore(LocaleEnUS)
	if err != nil {
		t.Fatalf("CreateStore() error = %v", err)
	}
	if _, err := s.SetAPISettings(defaultRateProvider, Record{"baseUrl": srv.URL}); err != nil {
		t.Fatalf("SetAPISettings() error = %v", err)
	}

	n, err := s.UpdateDailyRates(srv.Client())
	if err != nil {
		t.Fatalf("UpdateDailyRates() error = %v", err)
	}
	if n != 4 {
		t.Errorf("UpdateDailyRates() = %d rates, want 4", n)
	}
	if *hits != 1 {
		t.Errorf("provider hit %d times, want 1", *hits)
	}
	if got := s.APIUsage(defaultRateProvider, Today()); got != 1 {
		t.Errorf("APIUsage() = %d, want 1", got)
	}

	base, _ := s.BaseCurrency()
	eur, _ := s.CurrencyByCode("EUR")
	rate, day, ok := s.LatestRate(base.ID(), eur.ID())
	if !ok {
		t.Fatalf("LatestRate(USD, EUR) not found")
	}
	if !rate.Equal(dec("0.92")) || day != MustParseDate("2025-08-22") {
		t.Errorf("LatestRate() = %s on %s, want 0.92 on 2025-08-22", rate, day)
	}

	// Running again on the same quote day only rewrites the same rows.
	before := s.Count("exchange_rates")
	if _, err := s.UpdateDailyRates(srv.Client()); err != nil {
		t.Fatalf("UpdateDailyRates() again error = %v", err)
	}
	if got := s.Count("exchange_rates"); got != before {
		t.Errorf("Count(exchange_rates) = %d, want unchanged %d", got, before)
	}
	if got := s.APIUsage(defaultRateProvider, Today()); got != 2 {
		t.Errorf("APIUsage() = %d, want 2", got)
	}
}

func TestUpdateDailyRatesGates(t *testing.T) {
	srv, hits := rateServer(t, frankfurterBody, http.StatusOK)

	t.Run("disabled provider", func(t *testing.T) {
		s, err := CreateStore(LocaleEnUS)
		if err != nil {
			t.Fatalf("CreateStore() error = %v", err)
		}
		if _, err := s.SetAPISettings(defaultRateProvider, Record{"baseUrl": srv.URL, "enabled": false}); err != nil {
			t.Fatalf("SetAPISettings() error = %v", err)
		}
		if _, err := s.UpdateDailyRates(srv.Client()); !errors.Is(err, ErrValidation) {
			t.Errorf("UpdateDailyRates() error = %v, want ErrValidation", err)
		}
	})

	t.Run("missing provider row", func(t *testing.T) {
		s := NewStore()
		if _, err := s.UpdateDailyRates(srv.Client()); !errors.Is(err, ErrNotFound) {
			t.Errorf("UpdateDailyRates() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("daily limit", func(t *testing.T) {
		s, err := CreateStore(LocaleEnUS)
		if err != nil {
			t.Fatalf("CreateStore() error = %v", err)
		}
		if _, err := s.SetAPISettings(defaultRateProvider, Record{"baseUrl": srv.URL, "dailyLimit": dec("2")}); err != nil {
			t.Fatalf("SetAPISettings() error = %v", err)
		}
		for i := 0; i < 2; i++ {
			if _, err := s.UpdateDailyRates(srv.Client()); err != nil {
				t.Fatalf("UpdateDailyRates() #%d error = %v", i+1, err)
			}
		}
		if _, err := s.UpdateDailyRates(srv.Client()); !errors.Is(err, ErrConstraint) {
			t.Errorf("UpdateDailyRates() over the limit error = %v, want ErrConstraint", err)
		}
		// The refused call never reached the provider or the counter.
		if got := s.APIUsage(defaultRateProvider, Today()); got != 2 {
			t.Errorf("APIUsage() = %d, want 2", got)
		}
	})

	t.Run("no base currency", func(t *testing.T) {
		s := NewStore()
		if _, err := s.SetAPISettings(defaultRateProvider, Record{"baseUrl": srv.URL}); err != nil {
			t.Fatalf("SetAPISettings() error = %v", err)
		}
		if _, err := s.UpdateDailyRates(srv.Client()); !errors.Is(err, ErrNotFound) {
			t.Errorf("UpdateDailyRates() error = %v, want ErrNotFound", err)
		}
	})

	// Only the two calls under the limit ever reached the provider.
	if *hits != 2 {
		t.Errorf("provider hit %d times, want 2", *hits)
	}
}

func TestUpdateDailyRatesCountsFailedCalls(t *testing.T) {
	srv, _ := rateServer(t, `{"message":"boom"}`, http.StatusInternalServerError)

	s, err := CreateStore(LocaleEnUS)
	if err != nil {
		t.Fatalf("CreateStore() error = %v", err)
	}
	if _, err := s.SetAPISettings(defaultRateProvider, Record{"baseUrl": srv.URL}); err != nil {
		t.Fatalf("SetAPISettings() error = %v", err)
	}

	if _, err := s.UpdateDailyRates(srv.Client()); err == nil {
		t.Fatalf("UpdateDailyRates() against a failing provider reported no error")
	}
	// The provider was called, so the call counts against the daily limit.
	if got := s.APIUsage(defaultRateProvider, Today()); got != 1 {
		t.Errorf("APIUsage() = %d, want 1", got)
	}
}

func TestUpdateDailyRatesSkipsUnknownCodes(t *testing.T) {
	// The provider answers with a currency the store does not track.
	body := `{"date":"2025-08-22","rates":{"EUR":0.92,"XAU":0.0005}}`
	srv, _ := rateServer(t, body, http.StatusOK)

	s := NewStore()
	usd, _ := s.AddCurrency(Record{"code": "USD", "name": "US Dollar", "isBase": true})
	eur, _ := s.AddCurrency(Record{"code": "EUR", "name": "Euro"})
	if _, err := s.SetAPISettings(defaultRateProvider, Record{"baseUrl": srv.URL}); err != nil {
		t.Fatalf("SetAPISettings() error = %v", err)
	}

	n, err := s.UpdateDailyRates(srv.Client())
	if err != nil {
		t.Fatalf("UpdateDailyRates() error = %v", err)
	}
	if n != 1 {
		t.Errorf("UpdateDailyRates() = %d rates, want 1", n)
	}
	if _, _, ok := s.LatestRate(usd.ID(), eur.ID()); !ok {
		t.Errorf("LatestRate(USD, EUR) not found")
	}
}
