// Package domain contains the core business entities of the task manager:
// users, tasks, and transactional-email outbox entries, together with their
// normalization and validation rules. It is independent of any storage or
// delivery mechanism.
package domain
