// Package moneybook provides the data layer of a personal finance tracker:
// an in-memory, schema-aware relational store for accounts, transactions and
// their supporting reference data. It is designed to be local-first and
// auditable, keeping the whole database in one human-readable workbook file
// the user fully owns.
//
// The core functionalities include:
//   - Relational Store: Typed operations over a fixed set of tables with
//     declared relationships checked on every write, so a workbook can never
//     acquire dangling references or silently lose a referenced row.
//   - Double-Entry Balances: Every transaction moves money from a debit
//     account to a credit account; stored balances always equal the initial
//     balance plus the replayed effect of all transactions.
//   - Schema Migrations: Versioned, idempotent upgrade steps that bring
//     workbooks from older releases up to the current shape on load.
//   - Default Data: Localized starter databases (categories, currencies,
//     rates, preferences) generated through the same operations users run.
//   - Persistence: Canonical JSONL encoding per table, bundled into a zip
//     workbook, plus an SQLite bridge for interoperability.
//
// This package serves as the foundational logic for the `mbk` command-line
// tool, ensuring that all operations are consistent and based on a single
// source of truth.
package moneybook
