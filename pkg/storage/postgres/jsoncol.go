package postgres

import (
	"encoding/json"

	"github.com/opsnet/unet/pkg/value"
)

// encodeCustomData renders v as a JSONB-ready byte slice, or nil (SQL NULL)
// for an absent/null value.
func encodeCustomData(v value.Value) ([]byte, error) {
	if v.IsNull() {
		return nil, nil
	}
	return json.Marshal(v)
}

// decodeCustomData parses a JSONB column back into a value.Value. A NULL
// column (nil/empty bytes) decodes to value.Null().
func decodeCustomData(col []byte) (value.Value, error) {
	if len(col) == 0 {
		return value.Null(), nil
	}
	var v value.Value
	if err := json.Unmarshal(col, &v); err != nil {
		return value.Value{}, err
	}
	return v, nil
}
