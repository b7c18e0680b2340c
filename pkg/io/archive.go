package io

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/matzehuels/amplify/pkg/errors"
)

// MaxEntrySize bounds the uncompressed size of a single extracted entry.
const MaxEntrySize = 256 << 20

// ArchiveFile is one member written by WriteArchive.
type ArchiveFile struct {
	Name string
	Data []byte
}

// ExtractArchive unpacks the zip in data under dir and returns the paths of
// the regular files it wrote. Entries that would escape dir fail with
// errors.ErrCodeInvalidPath; a corrupt archive fails with
// errors.ErrCodeInvalidFormat.
func ExtractArchive(data []byte, dir string) ([]string, error) {
	// A reader may come back alongside an insecure-path error; every entry is
	// validated below regardless.
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if zr == nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "open archive")
	}

	var written []string
	for _, f := range zr.File {
		if err := errors.ValidateArchiveEntry(f.Name); err != nil {
			return nil, err
		}
		dst := filepath.Join(dir, filepath.FromSlash(strings.ReplaceAll(f.Name, "\\", "/")))
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dst, 0o755); err != nil {
				return nil, fmt.Errorf("create dir %s: %w", f.Name, err)
			}
			continue
		}
		if !f.Mode().IsRegular() {
			continue
		}
		if err := extractFile(f, dst); err != nil {
			return nil, err
		}
		written = append(written, dst)
	}
	return written, nil
}

func extractFile(f *zip.File, dst string) error {
	if f.UncompressedSize64 > MaxEntrySize {
		return errors.New(errors.ErrCodeInvalidInput, "archive entry %q is too large (%d bytes)", f.Name, f.UncompressedSize64)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", f.Name, err)
	}

	rc, err := f.Open()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "open entry %s", f.Name)
	}
	defer rc.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	n, err := io.Copy(out, io.LimitReader(rc, MaxEntrySize+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "extract entry %s", f.Name)
	}
	if n > MaxEntrySize {
		return errors.New(errors.ErrCodeInvalidInput, "archive entry %q is too large", f.Name)
	}
	return nil
}

// CollectImages walks dir and returns the image files under it in lexical
// order. Hidden files and macOS resource-fork folders are skipped.
func CollectImages(dir string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != dir && (name == "__MACOSX" || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !d.Type().IsRegular() {
			return nil
		}
		if IsImageFile(name) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	slices.Sort(found)
	return found, nil
}

// WriteArchive writes files to w as a deflate-compressed zip. Member names
// must be relative and may not repeat.
func WriteArchive(w io.Writer, files []ArchiveFile) error {
	zw := zip.NewWriter(w)
	seen := make(map[string]struct{}, len(files))
	for _, f := range files {
		if err := errors.ValidateArchiveEntry(f.Name); err != nil {
			return err
		}
		if _, dup := seen[f.Name]; dup {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate archive entry %q", f.Name)
		}
		seen[f.Name] = struct{}{}

		fw, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: zip.Deflate})
		if err != nil {
			return fmt.Errorf("add %s: %w", f.Name, err)
		}
		if _, err := fw.Write(f.Data); err != nil {
			return fmt.Errorf("write %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	return nil
}
