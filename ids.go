package moneybook

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Identifier allocation is stateless: both allocators derive the next id by
// scanning the ids already present in the table, so reloading a database
// never resets a sequence and deleting the highest record releases its
// number.

// idPrefixes maps each table to the prefix of its sequential ids. Tables
// absent from this map use another id scheme (time-based or UUID).
var idPrefixes = map[string]string{
	"transaction_types":  "TYPE",
	"transaction_groups": "GRP",
	"subcategories":      "SUB",
	"currencies":         "CUR",
	"exchange_rates":     "RATE",
	"currency_settings":  "CSET",
	"products":           "PRD",
	"payees":             "PAYEE",
	"payers":             "PAYER",
	"tags":               "TAG",
	"todos":              "TODO",
	"user_preferences":   "PREF",
	"api_settings":       "APISET",
	"api_usage":          "APIUSE",
	"migrations":         "MIG",
}

// NextID returns the next sequential id for a table, formatted as
// PREFIX_NNN with the numeric suffix zero-padded to three digits. It scans
// the table for ids matching ^PREFIX_(\d+)$ and returns max+1, so the very
// first id of a sequence is PREFIX_001.
func (s *Store) NextID(table, prefix string) string {
	re := regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `_(\d+)$`)
	max := 0
	for _, rec := range s.tables[table] {
		m := re.FindStringSubmatch(rec.ID())
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s_%03d", prefix, max+1)
}

// NextTimeID returns a time-based id for a table, formatted as the prefix
// followed by the current Unix time in milliseconds. When the table already
// holds an id with an equal or greater timestamp, the result is bumped to
// max+1 instead, so two ids allocated within the same millisecond never
// collide.
func (s *Store) NextTimeID(table, prefix string) string {
	now := time.Now().UnixMilli()
	re := regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `(\d+)$`)
	var max int64
	for _, rec := range s.tables[table] {
		m := re.FindStringSubmatch(rec.ID())
		if m == nil {
			continue
		}
		if n, err := strconv.ParseInt(m[1], 10, 64); err == nil && n > max {
			max = n
		}
	}
	if now <= max {
		now = max + 1
	}
	return prefix + strconv.FormatInt(now, 10)
}

// nextIDFor returns the next sequential id for a table registered in
// idPrefixes. It panics on tables without a registered prefix, which is a
// programming error.
func (s *Store) nextIDFor(table string) string {
	prefix, ok := idPrefixes[table]
	if !ok {
		panic(fmt.Sprintf("no id prefix registered for table %q", table))
	}
	return s.NextID(table, prefix)
}
