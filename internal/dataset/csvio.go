package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"
)

// ErrMissingColumn is returned when an extract lacks a required header column.
var ErrMissingColumn = errors.New("missing required column")

// readTable decodes a whole extract into typed rows. Columns present in the
// file but unknown to T are ignored; columns of T absent from the file are
// left at their zero value (nil for pointers).
func readTable[T any](path string, required []string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return decodeTable[T](f, path, required)
}

func decodeTable[T any](r io.Reader, name string, required []string) ([]T, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: empty file: %w", name, ErrMissingColumn)
		}
		return nil, fmt.Errorf("read header of %s: %w", name, err)
	}

	if err := checkHeader(dec.Header(), required); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	out := make([]T, 0, 128)
	line := 1
	for {
		var row T
		err := dec.Decode(&row)
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("decode %s line %d: %w", name, line, err)
		}
		out = append(out, row)
	}
	return out, nil
}

func checkHeader(header, required []string) error {
	have := make(map[string]struct{}, len(header))
	for _, h := range header {
		have[h] = struct{}{}
	}
	for _, col := range required {
		if _, ok := have[col]; !ok {
			return fmt.Errorf("%w %q", ErrMissingColumn, col)
		}
	}
	return nil
}

// writeTable replaces path with rows, header first. The header is written
// even when rows is empty so the file stays loadable.
func writeTable[T any](path string, rows []T) error {
	// write through symlinks rather than replacing the link itself
	if real, err := filepath.EvalSymlinks(path); err == nil {
		path = real
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".yamdb-*.csv")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := encodeTable(tmp, rows); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp for %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp for %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func encodeTable[T any](w io.Writer, rows []T) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	var zero T
	if err := enc.EncodeHeader(zero); err != nil {
		return err
	}
	for i := range rows {
		if err := enc.Encode(rows[i]); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
