package artifact

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func readArchive(t *testing.T, data []byte) map[string]string {
	t.Helper()
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("gzip: %v", err)
	}
	tr := tar.NewReader(gz)

	entries := map[string]string{}
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("tar: %v", err)
		}
		content, err := io.ReadAll(tr)
		if err != nil {
			t.Fatalf("read %s: %v", header.Name, err)
		}
		entries[header.Name] = string(content)
	}
	return entries
}

func TestBuildModelArchive_CodePrefixAndContents(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"inference.py":     "def model_fn(model_dir): ...",
		"requirements.txt": "sentence-transformers==2.7.0\n",
		"lib/util.py":      "BATCH_SIZE = 32\n",
	})

	data, err := buildModelArchive(dir)
	if err != nil {
		t.Fatalf("buildModelArchive: %v", err)
	}

	entries := readArchive(t, data)
	want := map[string]string{
		"code/inference.py":     "def model_fn(model_dir): ...",
		"code/requirements.txt": "sentence-transformers==2.7.0\n",
		"code/lib/util.py":      "BATCH_SIZE = 32\n",
	}
	if len(entries) != len(want) {
		t.Fatalf("entries = %v", entries)
	}
	for name, content := range want {
		if entries[name] != content {
			t.Errorf("entry %s = %q, want %q", name, entries[name], content)
		}
	}
}

func TestBuildModelArchive_Deterministic(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"b.py": "b",
		"a.py": "a",
		"c.py": "c",
	})

	first, err := buildModelArchive(dir)
	if err != nil {
		t.Fatalf("buildModelArchive: %v", err)
	}
	second, err := buildModelArchive(dir)
	if err != nil {
		t.Fatalf("buildModelArchive: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("archives differ across runs for identical input")
	}
}

func TestBuildModelArchive_MissingDir(t *testing.T) {
	if _, err := buildModelArchive(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing source dir")
	}
}
