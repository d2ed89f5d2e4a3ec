// Package partitioner keeps the partitions of a catalog table in line with
// the directories of its data.
//
// A Partitioner is bound to one table. It reads the table's location and
// partition keys once, at construction, then compares three views of the
// table: partitions found on disk, partitions registered in the catalog, and
// catalog records fetched for a given candidate set.
//
//   - Missing: registered, but no directory with the same values exists.
//   - Bad: missing, or registered at a location that does not exist on disk.
//   - Moved: the same values exist on disk at a different location.
//
// Mutations are chunked to the catalog batch limits. Per-item failures are
// returned as catalog.ItemError values and never stop the remaining chunks.
package partitioner
