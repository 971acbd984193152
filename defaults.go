package moneybook

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// The default-data generator seeds a brand new database: the category
// hierarchy, the currency table with its rates and settings, one starting
// account, localized preferences, the rate provider settings and the database
// identity. The structure is identical for every locale; only display strings
// vary, so ids and relationships never depend on the locale.

// The supported locales. LocaleEnUS is the fallback.
const (
	LocaleEnUS = "en-US"
	LocaleFrFR = "fr-FR"
	LocaleDeDE = "de-DE"
)

// SupportedLocales returns the locales the generator has strings for.
func SupportedLocales() []string {
	return []string{LocaleEnUS, LocaleFrFR, LocaleDeDE}
}

// localized holds one display string per supported locale.
type localized struct {
	en, fr, de string
}

// in returns the string for a locale, falling back to en-US.
func (l localized) in(locale string) string {
	switch locale {
	case LocaleFrFR:
		return l.fr
	case LocaleDeDE:
		return l.de
	default:
		return l.en
	}
}

var defaultCategories = []struct {
	name localized
	desc localized
}{
	{localized{"Expenses", "Dépenses", "Ausgaben"}, localized{"Money going out", "Argent sortant", "Ausgehende Zahlungen"}},
	{localized{"Income", "Revenus", "Einnahmen"}, localized{"Money coming in", "Argent entrant", "Eingehende Zahlungen"}},
	{localized{"Transfers", "Virements", "Umbuchungen"}, localized{"Moves between own accounts", "Mouvements entre comptes", "Bewegungen zwischen eigenen Konten"}},
	{localized{"Investments", "Investissements", "Geldanlagen"}, localized{"Building up assets", "Constitution de patrimoine", "Vermögensaufbau"}},
}

var defaultGroups = []struct {
	typeID string
	name   localized
}{
	{"TYPE_001", localized{"Housing", "Logement", "Wohnen"}},
	{"TYPE_001", localized{"Food", "Alimentation", "Lebensmittel"}},
	{"TYPE_001", localized{"Transport", "Transports", "Verkehr"}},
	{"TYPE_001", localized{"Leisure", "Loisirs", "Freizeit"}},
	{"TYPE_002", localized{"Salary", "Salaire", "Gehalt"}},
	{"TYPE_002", localized{"Other Income", "Autres revenus", "Sonstige Einnahmen"}},
	{"TYPE_003", localized{"Internal", "Interne", "Intern"}},
	{"TYPE_004", localized{"Securities", "Titres", "Wertpapiere"}},
}

var defaultSubcategories = []struct {
	groupID string
	name    localized
}{
	{"GRP_001", localized{"Rent", "Loyer", "Miete"}},
	{"GRP_001", localized{"Utilities", "Charges", "Nebenkosten"}},
	{"GRP_002", localized{"Groceries", "Courses", "Einkäufe"}},
	{"GRP_002", localized{"Restaurants", "Restaurants", "Restaurants"}},
	{"GRP_003", localized{"Public Transport", "Transports en commun", "Nahverkehr"}},
	{"GRP_003", localized{"Fuel", "Carburant", "Kraftstoff"}},
	{"GRP_004", localized{"Streaming", "Streaming", "Streaming"}},
	{"GRP_004", localized{"Sports", "Sport", "Sport"}},
	{"GRP_005", localized{"Monthly Salary", "Salaire mensuel", "Monatsgehalt"}},
	{"GRP_006", localized{"Gifts", "Cadeaux", "Geschenke"}},
	{"GRP_007", localized{"Account Transfer", "Virement interne", "Umbuchung"}},
	{"GRP_008", localized{"ETF Savings Plan", "Plan d'épargne ETF", "ETF-Sparplan"}},
}

var defaultCurrencies = []struct {
	code   string
	isBase bool
	name   localized
}{
	{"USD", true, localized{"US Dollar", "Dollar américain", "US-Dollar"}},
	{"EUR", false, localized{"Euro", "Euro", "Euro"}},
	{"GBP", false, localized{"Pound Sterling", "Livre sterling", "Britisches Pfund"}},
	{"JPY", false, localized{"Japanese Yen", "Yen japonais", "Japanischer Yen"}},
	{"CHF", false, localized{"Swiss Franc", "Franc suisse", "Schweizer Franken"}},
}

// defaultRates seeds one directed rate from the base currency into every
// other default currency. Values are starting points; the update-rates
// command replaces them with live data.
var defaultRates = []struct {
	toCode string
	rate   string
}{
	{"EUR", "0.92"},
	{"GBP", "0.79"},
	{"JPY", "147.5"},
	{"CHF", "0.88"},
}

var defaultSymbolPositions = map[string]string{
	"USD": "before",
	"EUR": "after",
	"GBP": "before",
	"JPY": "before",
	"CHF": "before",
}

var defaultAccountName = localized{"Cash", "Espèces", "Bargeld"}

// defaultCurrencyFormats holds the localized currency-format preference.
var defaultCurrencyFormats = map[string]CurrencyFormatSettings{
	LocaleEnUS: {DecimalSeparator: ".", ThousandSeparator: ",", SymbolPosition: "before", DecimalPlaces: 2},
	LocaleFrFR: {DecimalSeparator: ",", ThousandSeparator: " ", SymbolPosition: "after", DecimalPlaces: 2},
	LocaleDeDE: {DecimalSeparator: ",", ThousandSeparator: ".", SymbolPosition: "after", DecimalPlaces: 2},
}

// defaultDateFormats holds the localized date-format preference.
var defaultDateFormats = map[string]DateFormatSettings{
	LocaleEnUS: {DateFormat: "01/02/2006", FirstWeekday: 0},
	LocaleFrFR: {DateFormat: "02/01/2006", FirstWeekday: 1},
	LocaleDeDE: {DateFormat: "02.01.2006", FirstWeekday: 1},
}

// normalizeLocale validates a locale, mapping "" to en-US.
func normalizeLocale(locale string) (string, error) {
	if locale == "" {
		return LocaleEnUS, nil
	}
	for _, supported := range SupportedLocales() {
		if locale == supported {
			return locale, nil
		}
	}
	return "", validationf("unsupported locale %q, want one of %v", locale, SupportedLocales())
}

// CreateStore builds a fresh database for a locale: it seeds the default
// data set and runs the full migration pass, so a new database and a loaded
// one always go through the same pipeline. Every table is dirty afterwards
// until the first save.
func CreateStore(locale string) (*Store, error) {
	s := NewStore()
	if err := s.seedDefaults(locale); err != nil {
		return nil, err
	}
	if err := s.Migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// DefaultTables generates the complete starting data set for a locale,
// keyed by table name.
func DefaultTables(locale string) (map[string][]Record, error) {
	s := NewStore()
	if err := s.seedDefaults(locale); err != nil {
		return nil, err
	}
	tables := make(map[string][]Record, len(tableNames))
	for _, name := range tableNames {
		tables[name] = s.Table(name)
	}
	return tables, nil
}

// seedDefaults inserts the default data set through the regular typed
// operations, so the documented id sequences (TYPE_001.., CUR_001..) come
// straight out of the allocator and every relationship is checked on the way
// in.
func (s *Store) seedDefaults(locale string) error {
	locale, err := normalizeLocale(locale)
	if err != nil {
		return err
	}

	for _, c := range defaultCategories {
		if _, err := s.AddCategory(Record{"name": c.name.in(locale), "description": c.desc.in(locale)}); err != nil {
			return fmt.Errorf("seeding categories: %w", err)
		}
	}
	for _, g := range defaultGroups {
		if _, err := s.AddTransactionGroup(Record{"name": g.name.in(locale), "transactionTypeId": g.typeID}); err != nil {
			return fmt.Errorf("seeding groups: %w", err)
		}
	}
	for _, sub := range defaultSubcategories {
		if _, err := s.AddSubcategory(Record{"name": sub.name.in(locale), "transactionGroupId": sub.groupID}); err != nil {
			return fmt.Errorf("seeding subcategories: %w", err)
		}
	}

	currencyIDs := make(map[string]string, len(defaultCurrencies))
	for _, c := range defaultCurrencies {
		rec, err := s.AddCurrency(Record{"code": c.code, "name": c.name.in(locale), "isBase": c.isBase})
		if err != nil {
			return fmt.Errorf("seeding currencies: %w", err)
		}
		currencyIDs[c.code] = rec.ID()
	}
	base := currencyIDs["USD"]
	for _, r := range defaultRates {
		rate, err := decimal.NewFromString(r.rate)
		if err != nil {
			return fmt.Errorf("seeding rates: %w", err)
		}
		if _, err := s.AddExchangeRate(Record{
			"fromCurrencyId": base,
			"toCurrencyId":   currencyIDs[r.toCode],
			"rate":           rate,
			"source":         "default",
		}); err != nil {
			return fmt.Errorf("seeding rates: %w", err)
		}
	}
	for _, c := range defaultCurrencies {
		if _, err := s.SetCurrencySettings(currencyIDs[c.code], Record{
			"symbolPosition": defaultSymbolPositions[c.code],
		}); err != nil {
			return fmt.Errorf("seeding currency settings: %w", err)
		}
	}

	if _, err := s.AddAccount(Record{
		"name":          defaultAccountName.in(locale),
		"accountTypeId": AccountTypeCash,
		"currencyId":    base,
	}); err != nil {
		return fmt.Errorf("seeding account: %w", err)
	}

	if _, err := s.SetCurrencyFormat(DefaultUser, base, defaultCurrencyFormats[locale]); err != nil {
		return fmt.Errorf("seeding preferences: %w", err)
	}
	if _, err := s.SetDateFormat(DefaultUser, defaultDateFormats[locale]); err != nil {
		return fmt.Errorf("seeding preferences: %w", err)
	}

	if _, err := s.SetAPISettings(defaultRateProvider, Record{
		"baseUrl":    defaultRateBaseURL,
		"apiKey":     "",
		"enabled":    true,
		"dailyLimit": decimal.NewFromInt(100),
	}); err != nil {
		return fmt.Errorf("seeding api settings: %w", err)
	}

	s.ensureDatabaseInfo(locale)
	return nil
}
