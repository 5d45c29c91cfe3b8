// Package ingest holds the file-facing adapters for the load pipeline:
// discovery, record readers, projection, and time decomposition
package ingest

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	perr "spindle/internal/platform/errors"
)

// Collect walks root recursively and returns the absolute paths of all files
// whose name ends in suffix, sorted for deterministic runs. A missing or
// non-directory root is a NotFound error; the contract is "fail before any
// insert", not "empty result"
func Collect(root, suffix string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeNotFound, "collect: root %q", root)
	}
	if !info.IsDir() {
		return nil, perr.NotFoundf("collect: root %q is not a directory", root)
	}

	var out []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, werr error) error {
		if werr != nil {
			return werr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), suffix) {
			return nil
		}
		abs, aerr := filepath.Abs(path)
		if aerr != nil {
			return aerr
		}
		out = append(out, abs)
		return nil
	})
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeNotFound, "collect: walk %q", root)
	}

	sort.Strings(out)
	return out, nil
}
