package moneybook

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// Daily exchange rates come from the frankfurter.app reference-rate service.
// The store itself never talks to the network; UpdateDailyRates is glue used
// by the command layer, and every fetch is counted against the provider's
// daily limit in api_usage.

const (
	defaultRateProvider = "frankfurter"
	defaultRateBaseURL  = "https://api.frankfurter.app"
)

// diskCache is an http.RoundTripper that caches responses on disk under a
// key that includes the current day, so entries expire overnight.
type diskCache struct {
	base http.RoundTripper
}

func (c *diskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	key := fmt.Sprintf("%s %s %s", Today(), req.Method, req.URL)
	key = fmt.Sprintf("%x", sha1.Sum([]byte(key)))

	if resp, err := c.read(key, req); err == nil {
		return resp, nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	slog.Debug("fetched", "method", req.Method, "host", req.URL.Host, "status", resp.Status)
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	if err := c.write(key, resp); err != nil {
		slog.Warn("rate cache write failed", "err", err)
	}
	return resp, nil
}

func (c *diskCache) read(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(os.TempDir(), key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

func (c *diskCache) write(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(os.TempDir(), key), content, 0o600)
}

// dailyClient returns an HTTP client whose responses are cached until the
// end of the day. Reference rates change once per day, so repeated update
// runs cost a single provider call.
func dailyClient() *http.Client {
	return &http.Client{Transport: &diskCache{http.DefaultTransport}}
}

// jwget performs a GET request and unmarshals the JSON response into data.
func jwget(client *http.Client, addr string, data any) error {
	resp, err := client.Get(addr)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, data)
}

// fetchDailyRates asks the provider for the latest reference rates from one
// base currency into the given symbols. It returns the provider's quote day,
// which lags on weekends and holidays.
func fetchDailyRates(client *http.Client, baseURL, base string, symbols []string) (Date, map[string]decimal.Decimal, error) {
	q := url.Values{}
	q.Set("from", base)
	q.Set("to", strings.Join(symbols, ","))
	addr := strings.TrimSuffix(baseURL, "/") + "/latest?" + q.Encode()

	var jobj any
	if err := jwget(client, addr, &jobj); err != nil {
		return Date{}, nil, fmt.Errorf("fetching rates for %s: %w", base, err)
	}

	jday, err := jsonpath.Get("$.date", jobj)
	if err != nil {
		return Date{}, nil, fmt.Errorf("reading rate date: %w", err)
	}
	sday, ok := jday.(string)
	if !ok {
		return Date{}, nil, fmt.Errorf("reading rate date: not a string: %v", jday)
	}
	day, err := ParseDate(sday)
	if err != nil {
		return Date{}, nil, fmt.Errorf("reading rate date: %w", err)
	}

	jrates, err := jsonpath.Get("$.rates", jobj)
	if err != nil {
		return Date{}, nil, fmt.Errorf("reading rates: %w", err)
	}
	jmap, ok := jrates.(map[string]any)
	if !ok {
		return Date{}, nil, fmt.Errorf("reading rates: not an object: %v", jrates)
	}
	rates := make(map[string]decimal.Decimal, len(jmap))
	for code, jval := range jmap {
		val, ok := jval.(float64)
		if !ok {
			return Date{}, nil, fmt.Errorf("reading rate %s: not a number: %v", code, jval)
		}
		rates[code] = decimal.NewFromFloat(val)
	}
	return day, rates, nil
}

// UpdateDailyRates fetches the latest reference rates from the base currency
// into every other known currency and upserts one exchange_rates row per
// pair and quote day. A nil client gets the daily-cached default. It returns
// the number of rates written.
func (s *Store) UpdateDailyRates(client *http.Client) (int, error) {
	settings, ok := s.APISettings(defaultRateProvider)
	if !ok {
		return 0, notFoundf("api_settings for provider %q", defaultRateProvider)
	}
	if !settings.Bool("enabled") {
		return 0, validationf("provider %q is disabled", defaultRateProvider)
	}
	limit := int(settings.Decimal("dailyLimit").IntPart())
	if used := s.APIUsage(defaultRateProvider, Today()); limit > 0 && used >= limit {
		return 0, constraintf("provider %q reached its daily limit of %d calls", defaultRateProvider, limit)
	}
	baseURL := settings.Str("baseUrl")
	if baseURL == "" {
		baseURL = defaultRateBaseURL
	}

	base, ok := s.BaseCurrency()
	if !ok {
		return 0, notFoundf("base currency")
	}
	idsByCode := make(map[string]string)
	var symbols []string
	for rec := range s.Records("currencies") {
		code := rec.Str("code")
		if code == "" || rec.ID() == base.ID() {
			continue
		}
		idsByCode[code] = rec.ID()
		symbols = append(symbols, code)
	}
	if len(symbols) == 0 {
		return 0, nil
	}
	sort.Strings(symbols)

	if client == nil {
		client = dailyClient()
	}
	day, rates, err := fetchDailyRates(client, baseURL, base.Str("code"), symbols)
	if _, uerr := s.RecordAPIUsage(defaultRateProvider, Today()); uerr != nil {
		s.log.Warn("recording api usage", "provider", defaultRateProvider, "err", uerr)
	}
	if err != nil {
		return 0, err
	}

	n := 0
	for code, rate := range rates {
		id, ok := idsByCode[code]
		if !ok {
			continue
		}
		if _, err := s.UpsertDailyRate(base.ID(), id, day, rate, defaultRateProvider); err != nil {
			return n, err
		}
		n++
	}
	s.log.Info("updated exchange rates", "base", base.Str("code"), "day", day.String(), "count", n)
	return n, nil
}
