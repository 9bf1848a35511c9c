// Package model defines the typed in-memory representation of a power-flow
// case: the Bus, Gen, Branch and GenCost record tables and the Case aggregate
// that owns them.
//
// Records reference each other by declared integer id (a Gen stores the bus
// number, not a pointer), so a whole Case round-trips through flat tabular and
// archive formats without pointer fixup. Cross-record invariants (id
// uniqueness, referential integrity, numeric range ordering) are enforced by
// the validate package, not here; constructors only reject values that are
// out of domain on their own (e.g. a non-positive bus number).
package model
