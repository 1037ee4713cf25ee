// Package artifact packages the inference code into a model archive and
// publishes it to the fixed S3 location the stack consumes.
package artifact

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// codePrefix is the directory prefix inside the archive. SageMaker's
// inference container expects the handler under code/ in model.tar.gz.
const codePrefix = "code/"

// buildModelArchive packages every regular file under dir into an in-memory
// tar.gz, placed under the code/ prefix with paths relative to dir.
// filepath.WalkDir visits entries in lexical order, so the archive layout is
// deterministic.
func buildModelArchive(dir string) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		return addFile(tw, codePrefix+filepath.ToSlash(rel), path)
	})
	if err != nil {
		return nil, fmt.Errorf("package %q: %w", dir, err)
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("close tar: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("close gzip: %w", err)
	}
	return buf.Bytes(), nil
}

// addFile writes one file from disk into the archive.
func addFile(tw *tar.Writer, name, srcPath string) error {
	f, err := os.Open(srcPath) // #nosec G304 -- path is from trusted config
	if err != nil {
		return fmt.Errorf("open %s: %w", srcPath, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", srcPath, err)
	}

	header := &tar.Header{
		Name: name,
		Mode: int64(info.Mode().Perm()),
		Size: info.Size(),
	}
	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("write header %s: %w", name, err)
	}
	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
