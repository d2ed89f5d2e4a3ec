package cleaner

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/Journera/glutil/core/partition"
)

const s3Scheme = "s3://"

// Table is a catalog table stored in s3.
type Table struct {
	Name     string `json:"name"`
	Database string `json:"database"`
	// Location is the full s3 URI, ending with "/".
	Location string `json:"location"`
	Bucket   string `json:"bucket"`
	// Path is the key prefix within Bucket, ending with "/" unless empty.
	Path string `json:"path"`
}

// NewTable parses an s3 location into a Table.
func NewTable(database, name, location string) (Table, error) {
	if !strings.HasPrefix(location, s3Scheme) {
		return Table{}, fmt.Errorf("table %s.%s: location %q is not an s3 location", database, name, location)
	}
	location = partition.NormalizeLocation(location)
	bucket, path, _ := strings.Cut(strings.TrimPrefix(location, s3Scheme), "/")
	if bucket == "" {
		return Table{}, fmt.Errorf("table %s.%s: location %q has no bucket", database, name, location)
	}
	return Table{
		Name:     name,
		Database: database,
		Location: location,
		Bucket:   bucket,
		Path:     path,
	}, nil
}

// Compare orders tables by database, location and name, descending.
func (t Table) Compare(other Table) int {
	return cmp.Or(
		strings.Compare(other.Database, t.Database),
		strings.Compare(other.Location, t.Location),
		strings.Compare(other.Name, t.Name),
	)
}

// Equal reports whether database, location and name match.
func (t Table) Equal(other Table) bool {
	return t.Compare(other) == 0
}

func (t Table) String() string {
	return t.Name
}
