package moneybook

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

// User preferences are stored one row per (userId, category) pair. The
// settings column holds a JSON payload whose shape depends on the category;
// each known category has a typed Go struct and payloads are validated on
// both write and read, so a malformed blob never silently propagates.

// The known preference categories.
const (
	PreferenceCurrencyFormat = "currency-format"
	PreferenceDateFormat     = "date-format"
)

// DefaultUser is the userId preferences belong to in a single-user database.
const DefaultUser = "default"

var validate = validator.New(validator.WithRequiredStructEnabled())

// CurrencyFormatSettings is the payload of the currency-format category: how
// amounts are rendered.
type CurrencyFormatSettings struct {
	DecimalSeparator  string `json:"decimalSeparator" validate:"required,len=1"`
	ThousandSeparator string `json:"thousandSeparator" validate:"omitempty,len=1"`
	SymbolPosition    string `json:"symbolPosition" validate:"required,oneof=before after"`
	DecimalPlaces     int    `json:"decimalPlaces" validate:"gte=0,lte=8"`
}

// DateFormatSettings is the payload of the date-format category: how dates
// are rendered and which day starts the week (0 is Sunday).
type DateFormatSettings struct {
	DateFormat   string `json:"dateFormat" validate:"required,oneof=01/02/2006 02/01/2006 02.01.2006 2006-01-02"`
	FirstWeekday int    `json:"firstWeekday" validate:"gte=0,lte=6"`
}

// SetPreference validates a settings payload against its category and upserts
// the preference row for the user. The payload must be the category's typed
// struct; unknown categories and invalid payloads are validation errors.
// currencyID is an optional reference stored alongside currency-format
// preferences; pass "" to omit it.
func (s *Store) SetPreference(userID, category, currencyID string, settings any) (Record, error) {
	if userID == "" {
		return nil, validationf("user_preferences: missing userId")
	}
	if err := validateSettings(category, settings); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(settings)
	if err != nil {
		return nil, validationf("user_preferences: %v", err)
	}
	fields := Record{
		"userId":     userID,
		"category":   category,
		"settings":   string(payload),
		"currencyId": currencyID,
	}
	if currencyID == "" {
		fields["currencyId"] = nil
	}
	for _, rec := range s.tables["user_preferences"] {
		if rec.Str("userId") == userID && rec.Str("category") == category {
			return s.update("user_preferences", rec.ID(), fields)
		}
	}
	fields["id"] = s.nextIDFor("user_preferences")
	return s.insert("user_preferences", fields)
}

// Preference returns the typed, validated settings payload of a user's
// preference category: *CurrencyFormatSettings or *DateFormatSettings. A
// stored payload that no longer validates is an error, not a silent default.
func (s *Store) Preference(userID, category string) (any, error) {
	for _, rec := range s.tables["user_preferences"] {
		if rec.Str("userId") != userID || rec.Str("category") != category {
			continue
		}
		settings, err := parseSettings(category, rec.Str("settings"))
		if err != nil {
			return nil, err
		}
		return settings, nil
	}
	return nil, notFoundf("user_preferences %s/%s", userID, category)
}

// SetCurrencyFormat upserts the currency-format preference of a user.
func (s *Store) SetCurrencyFormat(userID, currencyID string, f CurrencyFormatSettings) (Record, error) {
	return s.SetPreference(userID, PreferenceCurrencyFormat, currencyID, f)
}

// CurrencyFormat returns the currency-format preference of a user, or the
// locale-independent default when the user has none.
func (s *Store) CurrencyFormat(userID string) (CurrencyFormatSettings, error) {
	v, err := s.Preference(userID, PreferenceCurrencyFormat)
	if err != nil {
		return DefaultCurrencyFormat(), err
	}
	return *v.(*CurrencyFormatSettings), nil
}

// SetDateFormat upserts the date-format preference of a user.
func (s *Store) SetDateFormat(userID string, f DateFormatSettings) (Record, error) {
	return s.SetPreference(userID, PreferenceDateFormat, "", f)
}

// DateFormatOf returns the date-format preference of a user, or the default
// when the user has none.
func (s *Store) DateFormatOf(userID string) (DateFormatSettings, error) {
	v, err := s.Preference(userID, PreferenceDateFormat)
	if err != nil {
		return DefaultDateFormat(), err
	}
	return *v.(*DateFormatSettings), nil
}

// DefaultCurrencyFormat returns the payload used when a user has no
// currency-format preference.
func DefaultCurrencyFormat() CurrencyFormatSettings {
	return CurrencyFormatSettings{
		DecimalSeparator:  ".",
		ThousandSeparator: ",",
		SymbolPosition:    "before",
		DecimalPlaces:     2,
	}
}

// DefaultDateFormat returns the payload used when a user has no date-format
// preference.
func DefaultDateFormat() DateFormatSettings {
	return DateFormatSettings{DateFormat: "01/02/2006", FirstWeekday: 0}
}

// validateSettings checks a payload against its category's typed struct.
func validateSettings(category string, settings any) error {
	switch category {
	case PreferenceCurrencyFormat:
		f, ok := settings.(CurrencyFormatSettings)
		if !ok {
			if p, isPtr := settings.(*CurrencyFormatSettings); isPtr {
				f, ok = *p, true
			}
		}
		if !ok {
			return validationf("user_preferences: %s wants CurrencyFormatSettings, got %T", category, settings)
		}
		if err := validate.Struct(f); err != nil {
			return validationf("user_preferences: %s: %v", category, err)
		}
		if f.ThousandSeparator != "" && f.ThousandSeparator == f.DecimalSeparator {
			return validationf("user_preferences: %s: decimal and thousand separator are both %q", category, f.DecimalSeparator)
		}
		return nil
	case PreferenceDateFormat:
		f, ok := settings.(DateFormatSettings)
		if !ok {
			if p, isPtr := settings.(*DateFormatSettings); isPtr {
				f, ok = *p, true
			}
		}
		if !ok {
			return validationf("user_preferences: %s wants DateFormatSettings, got %T", category, settings)
		}
		if err := validate.Struct(f); err != nil {
			return validationf("user_preferences: %s: %v", category, err)
		}
		return nil
	default:
		return validationf("user_preferences: unknown category %q", category)
	}
}

// parseSettings decodes and validates a stored payload for its category.
func parseSettings(category, payload string) (any, error) {
	switch category {
	case PreferenceCurrencyFormat:
		var f CurrencyFormatSettings
		if err := json.Unmarshal([]byte(payload), &f); err != nil {
			return nil, validationf("user_preferences: %s: %v", category, err)
		}
		if err := validateSettings(category, f); err != nil {
			return nil, err
		}
		return &f, nil
	case PreferenceDateFormat:
		var f DateFormatSettings
		if err := json.Unmarshal([]byte(payload), &f); err != nil {
			return nil, validationf("user_preferences: %s: %v", category, err)
		}
		if err := validateSettings(category, f); err != nil {
			return nil, err
		}
		return &f, nil
	default:
		return nil, validationf("user_preferences: unknown category %q", category)
	}
}
