// Package utils provides identifier helpers shared by the packages that build
// SQL for the migrations ledger.
//
// The ledger table name is configurable and may be qualified with a database
// ("ops.ch_migrations"). QuoteIdentifier renders such a name safely for use in
// DDL and DML:
//
//	utils.QuoteIdentifier("ops.ch_migrations") // `ops`.`ch_migrations`
//
// SplitQualifiedName recovers the unquoted parts, which is what system tables
// such as system.tables expect:
//
//	db, table := utils.SplitQualifiedName("`ops`.`ch_migrations`") // "ops", "ch_migrations"
package utils
