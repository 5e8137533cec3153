// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: Base persistence models (BaseModel, AggregateModel)
// - catalog.go: Products and services
// - trade.go: Budgets, service orders, sales and their shared line items table
// - finance.go: Financial records
// - sequence.go: Document number counters
package models
