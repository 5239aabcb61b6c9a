package dataset

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
)

// FileName is "<prefix>-data-<year>.csv", or "<prefix>-data-<first>-<last>.csv"
// for a range of years.
func FileName(prefix string, first, last int) string {
	if last == 0 || last == first {
		return fmt.Sprintf("%s-data-%d.csv", prefix, first)
	}
	return fmt.Sprintf("%s-data-%d-%d.csv", prefix, first, last)
}

// WriteCSV encodes rows with a header line into dir/name and returns the path.
// rows must be a slice of structs tagged with `csv`.
func WriteCSV(dir, name string, rows any) (string, error) {
	data, err := csvutil.Marshal(rows)
	if err != nil {
		return "", eris.Wrap(err, "encode csv")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrapf(err, "create %s", dir)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", eris.Wrapf(err, "write %s", path)
	}
	return path, nil
}
