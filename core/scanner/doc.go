// Package scanner discovers partitions by walking the common prefixes of an
// object store.
//
// Each partition key is one directory level, written either bare ("02/") or in
// hive form ("day=02/"); both forms are accepted side by side. Integer keys only
// match digit segments. A single-key table with no matching directories falls
// back to a flat listing where the whole directory path of each object becomes
// the partition value.
//
// A positive day limit skips the walk over year, month and day and checks the
// expected day prefixes directly, which keeps daily runs cheap on large tables.
//
// Numeric values must be zero-padded. A segment such as "2019/1/" fails the
// scan with partition.ErrNotFixedWidth instead of being registered out of order.
package scanner
