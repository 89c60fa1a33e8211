// SPDX-License-Identifier: MPL-2.0

package cache

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrCorruptBundle marks a stored bundle that exists but cannot be unpacked.
// Callers treat it differently from a plain miss: the bundle has to be
// cleared before the key can be reused.
var ErrCorruptBundle = errors.New("corrupt cache bundle")

// writeBundle archives the configured paths into a tar.gz at dst. Entry
// names keep the original path spec (including a literal "~/" prefix) so
// restoring on a different agent lands the files in the equivalent place.
func writeBundle(dst, baseDir string, paths []string) (err error) {
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create cache bundle: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close cache bundle: %w", closeErr)
		}
	}()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	for _, spec := range paths {
		resolved, resolveErr := resolvePath(spec, baseDir)
		if resolveErr != nil {
			return resolveErr
		}
		if _, statErr := os.Stat(resolved); os.IsNotExist(statErr) {
			continue // nothing to bundle for this path yet
		}
		if walkErr := addTree(tw, spec, resolved); walkErr != nil {
			return walkErr
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to finish tar stream: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to finish gzip stream: %w", err)
	}
	return nil
}

// addTree writes the file tree rooted at resolved into tw, naming entries
// "<spec>/<relative path>".
func addTree(tw *tar.Writer, spec, resolved string) error {
	return filepath.Walk(resolved, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(resolved, p)
		if err != nil {
			return err
		}
		name := path.Join(filepath.ToSlash(spec), filepath.ToSlash(rel))

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = name
		if info.IsDir() {
			hdr.Name += "/"
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}

		src, err := os.Open(p)
		if err != nil {
			return err
		}
		defer func() { _ = src.Close() }() // Read-only file; close error non-critical

		if _, err := io.Copy(tw, src); err != nil {
			return fmt.Errorf("failed to archive %s: %w", p, err)
		}
		return nil
	})
}

// readBundle unpacks the tar.gz at src, resolving each entry's stored path
// spec the same way Save resolved it.
func readBundle(src, baseDir string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }() // Read-only file; close error non-critical

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptBundle, err)
	}
	defer func() { _ = gz.Close() }() // Read-only stream; close error non-critical

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCorruptBundle, err)
		}

		name := path.Clean(hdr.Name)
		if strings.HasPrefix(name, "..") || path.IsAbs(name) {
			return fmt.Errorf("%w: entry escapes the workspace: %q", ErrCorruptBundle, hdr.Name)
		}

		target, err := resolveEntry(name, baseDir)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, hdr.FileInfo().Mode()); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := extractFile(tr, target, hdr.FileInfo().Mode()); err != nil {
				return err
			}
		default:
			// Symlinks and specials are not bundled; skip anything unexpected.
		}
	}
}

// resolveEntry maps an archive entry name back to a filesystem path. A
// leading "~" resolves against the home directory, everything else against
// baseDir.
func resolveEntry(name, baseDir string) (string, error) {
	if name == "~" || strings.HasPrefix(name, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to expand %q: %w", name, err)
		}
		return filepath.Join(home, filepath.FromSlash(strings.TrimPrefix(name, "~"))), nil
	}
	return filepath.Join(baseDir, filepath.FromSlash(name)), nil
}

func extractFile(r io.Reader, target string, mode os.FileMode) (err error) {
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	_, err = io.Copy(f, r)
	return err
}
