// Package metadata loads the side-channel tables (valve-switching
// schedule, field plot sheet) and joins them onto reading tables.
//
// Join policy: the valve join runs only when the readings carry a valve
// column, and its inner-join semantics silently drop integer-valved
// rows with no schedule entry — that drop is a deliberate filter, not
// an error. The field join is unconditional and failing to find the
// plot key on either side is fatal.
package metadata
