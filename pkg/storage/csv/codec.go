package csv

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/opsnet/unet/pkg/value"
)

const (
	nodesFile     = "nodes.csv"
	linksFile     = "links.csv"
	locationsFile = "locations.csv"
	vendorsFile   = "vendors.csv"
)

// readRows opens path and returns its parsed rows, or nil if the file does
// not exist yet (a fresh datastore directory). The header row is returned
// separately from the data rows.
func readRows(path string) (header []string, rows [][]string, err error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("csv: parse %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, nil, nil
	}
	return all[0], all[1:], nil
}

// writeRows rewrites path in full with header followed by rows.
func writeRows(path string, header []string, rows [][]string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("csv: create %s: %w", tmp, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("csv: write header to %s: %w", tmp, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("csv: write row to %s: %w", tmp, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// encodeCustomData renders a custom_data tree as a JSON column, empty for
// an absent/null tree so a fresh row doesn't carry a spurious "null".
func encodeCustomData(v value.Value) (string, error) {
	if v.Kind() == value.KindNull {
		return "", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeCustomData parses a custom_data column back into a value.Value,
// treating an empty column as null.
func decodeCustomData(col string) (value.Value, error) {
	if col == "" {
		return value.Null(), nil
	}
	var v value.Value
	if err := json.Unmarshal([]byte(col), &v); err != nil {
		return value.Value{}, err
	}
	return v, nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func ptrOr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func boolCol(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
