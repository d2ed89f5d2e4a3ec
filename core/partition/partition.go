package partition

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue/types"
)

// KeyType is the value type of a partition key.
type KeyType string

const (
	// KeyString accepts any directory segment.
	KeyString KeyType = "string"
	// KeyInt accepts digit-only directory segments.
	KeyInt KeyType = "int"
)

// ErrNotFixedWidth is returned for a numeric value that is not zero-padded to
// the width of its key.
var ErrNotFixedWidth = errors.New("numeric partition value is not fixed width")

var dateWidths = map[string]int{"year": 4, "month": 2, "day": 2, "hour": 2, "minute": 2}

// Key is one level of a table's partition hierarchy.
type Key struct {
	Name string
	Type KeyType
}

func (k Key) String() string {
	return k.Name + ":" + string(k.Type)
}

// Width returns the digit count every value of a numeric date key must have.
// Zero means the key has no fixed width of its own.
func (k Key) Width() int {
	if k.Type != KeyInt {
		return 0
	}
	return dateWidths[strings.ToLower(k.Name)]
}

// TypeOf maps a catalog column type onto a KeyType.
func TypeOf(catalogType string) KeyType {
	switch strings.ToLower(strings.TrimSpace(catalogType)) {
	case "int", "integer", "bigint", "smallint", "tinyint":
		return KeyInt
	default:
		return KeyString
	}
}

// KeysFromColumns converts a table's partition key columns.
func KeysFromColumns(cols []types.Column) []Key {
	keys := make([]Key, 0, len(cols))
	for _, c := range cols {
		keys = append(keys, Key{Name: aws.ToString(c.Name), Type: TypeOf(aws.ToString(c.Type))})
	}
	return keys
}

// Partition is a tuple of partition values and the location holding its data.
type Partition struct {
	// Values are the partition values, one per partition key.
	Values []string
	// Location is the storage location, always ending with "/".
	Location string
	// Raw is the catalog record this partition was parsed from, nil for
	// partitions found on disk. It keeps catalog-managed fields intact across
	// updates.
	Raw *types.Partition
}

// New creates a partition, normalizing the location.
func New(values []string, location string) Partition {
	return Partition{
		Values:   slices.Clone(values),
		Location: NormalizeLocation(location),
	}
}

// NewChecked creates a partition after checking the values against a key schema.
// Numeric keys must hold digits only, and date keys exactly as many as their
// Width, so that string order matches numeric order.
func NewChecked(keys []Key, values []string, location string) (Partition, error) {
	if len(values) != len(keys) {
		return Partition{}, fmt.Errorf("partition: got %d values for %d keys", len(values), len(keys))
	}
	for i, k := range keys {
		if k.Type == KeyInt && !isDigits(values[i]) {
			return Partition{}, fmt.Errorf("partition: key %q expects digits, got %q", k.Name, values[i])
		}
		if w := k.Width(); w > 0 && len(values[i]) != w {
			return Partition{}, fmt.Errorf("%w: key %q needs %d digits, got %q", ErrNotFixedWidth, k.Name, w, values[i])
		}
	}
	return New(values, location), nil
}

// FromCatalog parses a catalog partition record.
func FromCatalog(raw types.Partition) Partition {
	var location string
	if raw.StorageDescriptor != nil {
		location = aws.ToString(raw.StorageDescriptor.Location)
	}
	p := New(raw.Values, location)
	p.Raw = &raw
	return p
}

// NormalizeLocation appends a trailing slash when missing.
func NormalizeLocation(location string) string {
	if location == "" || strings.HasSuffix(location, "/") {
		return location
	}
	return location + "/"
}

// Equal reports whether both values and location match.
func (p Partition) Equal(other Partition) bool {
	return slices.Equal(p.Values, other.Values) &&
		NormalizeLocation(p.Location) == NormalizeLocation(other.Location)
}

// Compare orders by values, then by location in reverse.
func (p Partition) Compare(other Partition) int {
	if c := slices.Compare(p.Values, other.Values); c != 0 {
		return c
	}
	return strings.Compare(NormalizeLocation(other.Location), NormalizeLocation(p.Location))
}

// ID is a stable identity derived from the fields used by Equal.
func (p Partition) ID() string {
	return ValuesKey(p.Values) + "\x00\x00" + NormalizeLocation(p.Location)
}

// ValuesKey identifies a value tuple regardless of location.
func ValuesKey(values []string) string {
	return strings.Join(values, "\x00")
}

// String renders the values, e.g. "[2019, 01, 02, 03]".
func (p Partition) String() string {
	return "[" + strings.Join(p.Values, ", ") + "]"
}

// Sort sorts partitions in place.
func Sort(ps []Partition) {
	slices.SortFunc(ps, Partition.Compare)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
