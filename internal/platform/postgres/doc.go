// Package postgres implements the internal/store interfaces on PostgreSQL.
// It owns the embedded schema migrations and the mapping between domain
// entities and database rows, including translation of driver errors into
// the store package's sentinel errors.
package postgres
