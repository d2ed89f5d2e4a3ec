// Package partition models catalog partitions as immutable value tuples.
//
// A Partition is an ordered list of partition key values plus the storage
// location holding the data for those values. Partitions found on disk and
// partitions registered in the catalog are compared through this type, so the
// location is always normalized to end with "/".
//
// # Ordering
//
// Partitions sort by their values (compared as strings) and then by location in
// reverse. Numeric values therefore have to be zero-padded to sort
// chronologically. NewChecked rejects numeric values that contain anything but
// digits, and date keys (year, month, day, hour, minute) whose values are not
// exactly as wide as Key.Width.
//
// # Index
//
// Index is a nested lookup keyed by values which ignores the location. It is used
// to find where a catalog partition currently lives on disk.
package partition
