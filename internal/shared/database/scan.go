package database

import (
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
)

// AggregateTime is the scan target for MIN/MAX over date columns.
// sqlite drops the declared column type on aggregates and returns the stored text.
type AggregateTime time.Time

func (t *AggregateTime) Scan(value any) error {
	switch v := value.(type) {
	case time.Time:
		*t = AggregateTime(v)
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("database: cannot scan %T into AggregateTime", value)
	}
}

func (t *AggregateTime) parse(s string) error {
	for _, layout := range sqlite3.SQLiteTimestampFormats {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = AggregateTime(parsed)
			return nil
		}
	}
	return fmt.Errorf("database: unrecognized timestamp %q", s)
}
