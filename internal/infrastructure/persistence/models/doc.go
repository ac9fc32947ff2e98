// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// The analytics snapshot reads these tables directly; the repository layer converts
// rows into domain transaction types, normalizing nullable amounts and timestamps
// along the way.
package models
