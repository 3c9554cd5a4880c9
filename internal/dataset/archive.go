package dataset

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrMissingSource is wrapped by every error about an absent source
// directory or extract file.
var ErrMissingSource = errors.New("missing source")

// archiveLayout names backup directories day-month-year-hour-minute-second.
const archiveLayout = "02012006150405"

// VerifySource checks that dir exists and holds every required extract.
func VerifySource(dir string) error {
	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		return fmt.Errorf("%w: directory %s not found", ErrMissingSource, dir)
	}
	for _, name := range RequiredFiles() {
		path := filepath.Join(dir, name)
		st, err := os.Stat(path)
		if err != nil || !st.Mode().IsRegular() {
			return fmt.Errorf("%w: file %s not found", ErrMissingSource, path)
		}
	}
	return nil
}

// ListCSV returns the names of the .csv files directly inside dir, sorted.
func ListCSV(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

// Archive copies every CSV in dir into a new timestamped subdirectory and
// returns its path. Symlinked extracts are copied by content.
func Archive(dir string, now time.Time) (string, error) {
	files, err := ListCSV(dir)
	if err != nil {
		return "", err
	}

	dst, err := makeArchiveDir(dir, now.Format(archiveLayout))
	if err != nil {
		return "", err
	}

	for _, name := range files {
		if err := copyFile(filepath.Join(dir, name), filepath.Join(dst, name)); err != nil {
			return "", fmt.Errorf("archive %s: %w", name, err)
		}
	}
	return dst, nil
}

// maxArchiveSuffix bounds the -1, -2, ... retries for runs started within
// the same second.
const maxArchiveSuffix = 99

func makeArchiveDir(dir, name string) (string, error) {
	dst := filepath.Join(dir, name)
	for i := 1; ; i++ {
		err := os.Mkdir(dst, 0o755)
		if err == nil {
			return dst, nil
		}
		if !errors.Is(err, fs.ErrExist) || i > maxArchiveSuffix {
			return "", fmt.Errorf("create archive dir: %w", err)
		}
		dst = filepath.Join(dir, fmt.Sprintf("%s-%d", name, i))
	}
}

// copyFile follows src if it is a symlink.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
