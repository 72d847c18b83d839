package graph

import (
	"encoding/json"
	"fmt"
	"time"
)

// dateTimeLayout renders UTC instants with millisecond precision.
const dateTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// DateTime is the DateTime scalar: an RFC 3339 instant.
type DateTime struct {
	time.Time
}

func (DateTime) ImplementsGraphQLType(name string) bool {
	return name == "DateTime"
}

func (t *DateTime) UnmarshalGraphQL(input interface{}) error {
	switch input := input.(type) {
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, input)
		if err != nil {
			return fmt.Errorf("invalid DateTime %q: %w", input, err)
		}
		t.Time = parsed
		return nil
	case int32:
		t.Time = time.UnixMilli(int64(input))
		return nil
	case float64:
		t.Time = time.UnixMilli(int64(input))
		return nil
	default:
		return fmt.Errorf("wrong type for DateTime: %T", input)
	}
}

func (t DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(dateTimeLayout))
}

func newDateTime(t time.Time) *DateTime {
	if t.IsZero() {
		return nil
	}
	return &DateTime{Time: t}
}
