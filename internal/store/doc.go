// Package store defines the persistence interfaces for users, tasks, session
// tokens, and the email outbox, plus the transaction helper tying them
// together. The interfaces keep business rules independent of the concrete
// database; internal/platform/postgres provides the implementations.
package store
