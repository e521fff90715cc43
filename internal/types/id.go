package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MsgInvalidInteger is reported for an id that is neither an integer nor a numeric string
const MsgInvalidInteger = "A valid integer is required."

// trailingZeros matches a zero fraction such as "3.0" or "3.00 "
var trailingZeros = regexp.MustCompile(`\.0*\s*$`)

// ID is a record id read from a request body. Clients may send it as a JSON
// number or as a string holding one, so both 7 and "7" decode to 7.
type ID int64

// InvalidIDError is returned when an ID cannot be read as an integer
type InvalidIDError struct {
	Value string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid id %s", e.Value)
}

// UnmarshalJSON implements json.Unmarshaler
func (id *ID) UnmarshalJSON(data []byte) error {
	raw := string(bytes.TrimSpace(data))
	text := raw
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(data, &text); err != nil {
			return &InvalidIDError{Value: raw}
		}
	}

	text = trailingZeros.ReplaceAllString(strings.TrimSpace(text), "")
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return &InvalidIDError{Value: raw}
	}
	*id = ID(v)
	return nil
}

// Int64 returns the id as an int64
func (id ID) Int64() int64 {
	return int64(id)
}
