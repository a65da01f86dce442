// Package repository contains the pgx-backed data access layer. Each
// entity gets one repository struct wrapping the shared connection pool;
// all mutating statements carry the owning examinee in their WHERE clause
// so a request can never write across examinees.
package repository

// pgxRow is the scan surface shared by pgx QueryRow results, letting the
// per-entity scan helpers serve both single-row and multi-row queries.
type pgxRow interface {
	Scan(dest ...any) error
}
