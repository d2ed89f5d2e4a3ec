// Package cleaner detects catalog tables created by runaway crawlers.
//
// Tables are arranged in one trie per bucket, keyed by path segment. A table
// located strictly below another table's location is an orphan. When several
// tables share one location and one name is a prefix of another ("foo" and
// "foo-a1b2"), the longer name is the orphan.
package cleaner
