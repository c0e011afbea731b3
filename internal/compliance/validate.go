package compliance

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/infinityfire/api/internal/respond"
)

var requiredTestData = map[TestType][]string{
	TypeTest1:     {"fullName", "date", "time", "location"},
	TypeTest2:     {"fullName", "date", "time", "location"},
	TypeFireDrill: {"drillLeaderName", "dateTime", "locationOfTrigger", "involvedPersons"},
}

// ValidateTestData checks that data is a JSON object carrying every field the
// test type requires. Blank strings and empty arrays count as missing.
func ValidateTestData(testType TestType, data json.RawMessage) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return &ValidationError{Fields: []respond.FieldError{{Field: "testData", Message: "testData must be an object"}}}
	}

	var missing []respond.FieldError
	for _, name := range requiredTestData[testType] {
		if blank(fields[name]) {
			missing = append(missing, respond.FieldError{
				Field:   "testData." + name,
				Message: name + " is required",
			})
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

func blank(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return true
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return true
		}
		return strings.TrimSpace(s) == ""
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return true
		}
		return len(items) == 0
	}
	return false
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
