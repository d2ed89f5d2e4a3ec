package scanner

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/Journera/glutil/core/partition"
	"github.com/Journera/glutil/core/storage"
)

const delimiter = "/"

var (
	// ErrInvalidLimitDays is returned for a negative day limit.
	ErrInvalidLimitDays = errors.New("limit days must be zero or a positive integer")
	// ErrLimitDaysSchema is returned when a day limit is requested for a table
	// whose first partition keys are not year, month and day.
	ErrLimitDaysSchema = errors.New("limit days requires year, month and day as the first partition keys")
)

var dateKeys = []string{"year", "month", "day"}

// Scanner discovers partitions from the object layout of a bucket.
type Scanner struct {
	lister storage.Lister
	bucket string
	now    func() time.Time
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithClock replaces the clock used to compute day limits.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) {
		s.now = now
	}
}

// New creates a scanner over bucket.
func New(lister storage.Lister, bucket string, opts ...Option) *Scanner {
	s := &Scanner{
		lister: lister,
		bucket: bucket,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan returns every partition under prefix that instantiates all of keys,
// sorted. A positive limitDays restricts the search to today and the
// limitDays days before it.
func (s *Scanner) Scan(ctx context.Context, prefix string, keys []partition.Key, limitDays int) ([]partition.Partition, error) {
	if limitDays < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimitDays, limitDays)
	}
	if limitDays > 0 {
		if err := checkDateKeys(keys); err != nil {
			return nil, err
		}
	}
	if len(keys) == 0 {
		return nil, nil
	}

	prefix = partition.NormalizeLocation(prefix)
	if prefix == delimiter {
		prefix = ""
	}

	var found []partition.Partition
	var err error
	if limitDays > 0 {
		found, err = s.scanRecent(ctx, prefix, keys, limitDays)
	} else {
		found, err = s.walk(ctx, prefix, keys, nil)
		if err == nil && len(found) == 0 && len(keys) == 1 {
			found, err = s.scanFlat(ctx, prefix)
		}
	}
	if err != nil {
		return nil, err
	}
	return partition.NewSet(found...).Sorted(), nil
}

// walk matches one key level per listing call. values holds the segments
// matched so far, so keys[len(values)] is the level listed below prefix.
func (s *Scanner) walk(ctx context.Context, prefix string, keys []partition.Key, values []string) ([]partition.Partition, error) {
	if len(values) == len(keys) {
		p, err := partition.NewChecked(keys, values, s.location(prefix))
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.location(prefix), err)
		}
		return []partition.Partition{p}, nil
	}

	prefixes, err := s.lister.ListCommonPrefixes(ctx, s.bucket, delimiter, prefix)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.location(prefix), err)
	}

	key := keys[len(values)]
	re := levelPattern(key)
	width := -1
	var out []partition.Partition
	for _, p := range prefixes {
		m := re.FindStringSubmatch(strings.TrimPrefix(p, prefix))
		if m == nil {
			continue
		}
		// Numeric keys without a known width still need one width per level.
		if key.Type == partition.KeyInt && key.Width() == 0 {
			if width >= 0 && len(m[1]) != width {
				return nil, fmt.Errorf("scan %s: %w: key %q mixes %d and %d digits",
					s.location(prefix), partition.ErrNotFixedWidth, key.Name, width, len(m[1]))
			}
			width = len(m[1])
		}
		next := append(slices.Clone(values), m[1])
		sub, err := s.walk(ctx, p, keys, next)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

// scanFlat handles single-key tables without a directory per partition: each
// object's directory below prefix becomes one value, its segments joined by "-".
func (s *Scanner) scanFlat(ctx context.Context, prefix string) ([]partition.Partition, error) {
	objects, err := s.lister.ListObjects(ctx, s.bucket, prefix)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.location(prefix), err)
	}

	var out []partition.Partition
	for _, key := range objects {
		dir := path.Dir(strings.TrimPrefix(key, prefix))
		if dir == "." || dir == delimiter {
			continue
		}
		value := strings.ReplaceAll(dir, delimiter, "-")
		out = append(out, partition.New([]string{value}, s.location(prefix+dir+delimiter)))
	}
	return out, nil
}

func (s *Scanner) scanRecent(ctx context.Context, prefix string, keys []partition.Key, limitDays int) ([]partition.Partition, error) {
	today := s.now().UTC()

	var out []partition.Partition
	for i := 0; i <= limitDays; i++ {
		day := today.AddDate(0, 0, -i)
		values := []string{
			fmt.Sprintf("%04d", day.Year()),
			fmt.Sprintf("%02d", int(day.Month())),
			fmt.Sprintf("%02d", day.Day()),
		}

		for _, dayPrefix := range dayPrefixes(prefix, values) {
			if len(keys) == 3 {
				ok, err := s.lister.HasObjects(ctx, s.bucket, dayPrefix)
				if err != nil {
					return nil, fmt.Errorf("check %s: %w", s.location(dayPrefix), err)
				}
				if ok {
					p, err := partition.NewChecked(keys, values, s.location(dayPrefix))
					if err != nil {
						return nil, err
					}
					out = append(out, p)
				}
				continue
			}

			sub, err := s.walk(ctx, dayPrefix, keys, values)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
	}
	return out, nil
}

func (s *Scanner) location(key string) string {
	return "s3://" + s.bucket + "/" + key
}

func dayPrefixes(prefix string, values []string) []string {
	hive := make([]string, len(values))
	for i, v := range values {
		hive[i] = dateKeys[i] + "=" + v
	}
	return []string{
		prefix + strings.Join(hive, delimiter) + delimiter,
		prefix + strings.Join(values, delimiter) + delimiter,
	}
}

func checkDateKeys(keys []partition.Key) error {
	if len(keys) < len(dateKeys) {
		return fmt.Errorf("%w: table has %d partition keys", ErrLimitDaysSchema, len(keys))
	}
	for i, name := range dateKeys {
		if !strings.EqualFold(keys[i].Name, name) {
			return fmt.Errorf("%w: key %d is %q", ErrLimitDaysSchema, i, keys[i].Name)
		}
	}
	return nil
}

// levelPattern matches "value/" or "name=value/" relative to the parent prefix.
func levelPattern(k partition.Key) *regexp.Regexp {
	value := `[^/]+`
	if k.Type == partition.KeyInt {
		value = `\d+`
	}
	return regexp.MustCompile(`^(?:(?i:` + regexp.QuoteMeta(k.Name) + `)=)?(` + value + `)/$`)
}
