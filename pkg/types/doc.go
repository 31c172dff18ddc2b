// Package types defines the Farm, Table and Bookkeeper interfaces, the farm
// entities with their closed status enums, and the sentinel errors shared by
// every storage backend.
//
// Entities are plain structs. Methods such as Account.Settle or
// Season.Harvest change the struct in memory and enforce the legal status
// transitions; the backend persists them and writes the matching ledger rows.
package types
