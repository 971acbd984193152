package moneybook

// The schema registry is the static description of every table the store
// manages: the ordered field list and the declared relationships. The field
// order is also the canonical field order used when encoding a table to JSONL
// and when exporting to SQLite.

// Relationship declares that a field holds the id of a record in another
// table. Optional relationships are only checked when a value is present.
type Relationship struct {
	Table    string // referenced table
	Field    string // referenced field, always "id" in the current schema
	Optional bool
}

// tableNames lists every table in canonical order. The order is stable across
// releases so that workbooks and SQLite exports keep a deterministic layout.
var tableNames = []string{
	"accounts",
	"transactions",
	"transaction_types",
	"transaction_groups",
	"subcategories",
	"currencies",
	"exchange_rates",
	"currency_settings",
	"products",
	"payees",
	"payers",
	"tags",
	"todos",
	"user_preferences",
	"api_settings",
	"api_usage",
	"database_info",
	"migrations",
}

var tableFields = map[string][]string{
	"accounts": {
		"id", "name", "accountTypeId", "currencyId", "balance",
		"initialBalance", "includeInOverview", "order", "isActive",
	},
	"transactions": {
		"id", "date", "description", "debitAccountId", "creditAccountId",
		"amount", "currencyId", "categoryId", "subcategoryId", "productId",
		"payeeId", "payerId", "reconciliationReference", "reconciledAt",
	},
	"transaction_types": {
		"id", "name", "description", "order", "isActive",
	},
	"transaction_groups": {
		"id", "name", "transactionTypeId", "order", "isActive",
	},
	"subcategories": {
		"id", "name", "transactionGroupId", "order", "isActive",
	},
	"currencies": {
		"id", "code", "name", "symbol", "decimalPlaces", "isBase",
	},
	"exchange_rates": {
		"id", "fromCurrencyId", "toCurrencyId", "rate", "date", "source",
	},
	"currency_settings": {
		"id", "currencyId", "symbolPosition", "decimalPlaces",
	},
	"products": {
		"id", "name", "subcategoryId", "currencyId", "defaultAmount",
		"order", "isActive",
	},
	"payees": {
		"id", "name", "description", "order", "isActive",
	},
	"payers": {
		"id", "name", "description", "order", "isActive",
	},
	"tags": {
		"id", "name", "color", "order",
	},
	"todos": {
		"id", "description", "dueDate", "completed", "createdAt",
	},
	"user_preferences": {
		"id", "userId", "category", "currencyId", "settings",
	},
	"api_settings": {
		"id", "provider", "baseUrl", "apiKey", "enabled", "dailyLimit",
	},
	"api_usage": {
		"id", "provider", "date", "count",
	},
	"database_info": {
		"id", "schemaVersion", "appVersion", "locale", "createdAt",
	},
	"migrations": {
		"id", "name", "version", "appliedAt", "success",
	},
}

var tableRelationships = map[string]map[string]Relationship{
	"accounts": {
		"currencyId": {Table: "currencies", Field: "id"},
	},
	"transactions": {
		"debitAccountId":  {Table: "accounts", Field: "id"},
		"creditAccountId": {Table: "accounts", Field: "id"},
		"currencyId":      {Table: "currencies", Field: "id", Optional: true},
		"categoryId":      {Table: "transaction_types", Field: "id", Optional: true},
		"subcategoryId":   {Table: "subcategories", Field: "id", Optional: true},
		"productId":       {Table: "products", Field: "id", Optional: true},
		"payeeId":         {Table: "payees", Field: "id", Optional: true},
		"payerId":         {Table: "payers", Field: "id", Optional: true},
	},
	"transaction_groups": {
		"transactionTypeId": {Table: "transaction_types", Field: "id"},
	},
	"subcategories": {
		"transactionGroupId": {Table: "transaction_groups", Field: "id"},
	},
	"exchange_rates": {
		"fromCurrencyId": {Table: "currencies", Field: "id"},
		"toCurrencyId":   {Table: "currencies", Field: "id"},
	},
	"currency_settings": {
		"currencyId": {Table: "currencies", Field: "id"},
	},
	"products": {
		"subcategoryId": {Table: "subcategories", Field: "id", Optional: true},
		"currencyId":    {Table: "currencies", Field: "id", Optional: true},
	},
	"user_preferences": {
		"currencyId": {Table: "currencies", Field: "id", Optional: true},
	},
}

// TableNames returns every table name in canonical order.
func TableNames() []string {
	out := make([]string, len(tableNames))
	copy(out, tableNames)
	return out
}

// FieldsOf returns the ordered field names declared for a table. The result
// is empty for an unknown table, which the store treats as unconstrained.
func FieldsOf(table string) []string {
	fields, ok := tableFields[table]
	if !ok {
		return nil
	}
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}

// RelationshipsOf returns the relationships declared for a table, keyed by
// the referencing field name. The result is empty for an unknown table or a
// table without relationships.
func RelationshipsOf(table string) map[string]Relationship {
	rels, ok := tableRelationships[table]
	if !ok {
		return nil
	}
	out := make(map[string]Relationship, len(rels))
	for k, v := range rels {
		out[k] = v
	}
	return out
}

// isKnownTable reports whether the table belongs to the fixed schema.
func isKnownTable(table string) bool {
	_, ok := tableFields[table]
	return ok
}

// hasField reports whether the field is declared for the table. Every field
// is accepted on an unknown table.
func hasField(table, field string) bool {
	fields, ok := tableFields[table]
	if !ok {
		return true
	}
	for _, f := range fields {
		if f == field {
			return true
		}
	}
	return false
}
