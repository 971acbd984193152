package moneybook

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// appVersion is the version written into database_info at creation time.
const appVersion = "1.0.0"

// DatabaseInfo returns the single database identity record: its uuid, schema
// version, locale and creation timestamp.
func (s *Store) DatabaseInfo() (Record, error) {
	if len(s.tables["database_info"]) == 0 {
		return nil, notFoundf("database_info")
	}
	return s.tables["database_info"][0].Clone(), nil
}

// ensureDatabaseInfo creates the database identity record when missing and
// returns it. The id is a fresh UUID minted once for the database's lifetime.
func (s *Store) ensureDatabaseInfo(locale string) Record {
	if info, err := s.DatabaseInfo(); err == nil {
		return info
	}
	rec := Record{
		"id":            uuid.NewString(),
		"schemaVersion": decimal.Zero,
		"appVersion":    appVersion,
		"locale":        locale,
		"createdAt":     time.Now().Format(DatetimeFormat),
	}
	s.tables["database_info"] = append(s.tables["database_info"], rec)
	s.markDirty("database_info")
	return rec.Clone()
}

// SchemaVersion returns the last applied migration version, 0 for a database
// that never migrated.
func (s *Store) SchemaVersion() int {
	if len(s.tables["database_info"]) == 0 {
		return 0
	}
	return int(s.tables["database_info"][0].Decimal("schemaVersion").IntPart())
}

// setSchemaVersion records the last applied migration version.
func (s *Store) setSchemaVersion(version int) {
	if len(s.tables["database_info"]) == 0 {
		s.ensureDatabaseInfo("")
	}
	info := s.tables["database_info"][0]
	if int(info.Decimal("schemaVersion").IntPart()) == version {
		return
	}
	info["schemaVersion"] = decimal.NewFromInt(int64(version))
	s.markDirty("database_info")
}

// APISettings returns the settings row of an external data provider.
func (s *Store) APISettings(provider string) (Record, bool) {
	for _, rec := range s.tables["api_settings"] {
		if rec.Str("provider") == provider {
			return rec.Clone(), true
		}
	}
	return nil, false
}

// SetAPISettings upserts the settings of an external data provider, keyed by
// provider name.
func (s *Store) SetAPISettings(provider string, fields Record) (Record, error) {
	if provider == "" {
		return nil, validationf("api_settings: missing provider")
	}
	rec, err := normalizeRecord(fields)
	if err != nil {
		return nil, validationf("api_settings: %v", err)
	}
	for _, existing := range s.tables["api_settings"] {
		if existing.Str("provider") == provider {
			return s.update("api_settings", existing.ID(), rec)
		}
	}
	rec["provider"] = provider
	if rec.ID() == "" {
		rec["id"] = s.nextIDFor("api_settings")
	}
	if !rec.Has("enabled") {
		rec["enabled"] = true
	}
	if !rec.Has("dailyLimit") {
		rec["dailyLimit"] = decimal.NewFromInt(100)
	}
	if !rec.Has("apiKey") {
		rec["apiKey"] = ""
	}
	return s.insert("api_settings", rec)
}

// RecordAPIUsage counts one call to an external provider on the given day.
// The counter row is upserted per provider and day.
func (s *Store) RecordAPIUsage(provider string, day Date) (Record, error) {
	if provider == "" {
		return nil, validationf("api_usage: missing provider")
	}
	for _, rec := range s.tables["api_usage"] {
		if rec.Str("provider") == provider && rec.Str("date") == day.String() {
			next := rec.Decimal("count").Add(decimal.NewFromInt(1))
			return s.update("api_usage", rec.ID(), Record{"count": next})
		}
	}
	return s.insert("api_usage", Record{
		"id":       s.nextIDFor("api_usage"),
		"provider": provider,
		"date":     day.String(),
		"count":    decimal.NewFromInt(1),
	})
}

// APIUsage returns how many calls were counted for a provider on a day.
func (s *Store) APIUsage(provider string, day Date) int {
	for _, rec := range s.tables["api_usage"] {
		if rec.Str("provider") == provider && rec.Str("date") == day.String() {
			return int(rec.Decimal("count").IntPart())
		}
	}
	return 0
}
