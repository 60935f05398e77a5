package fsutil

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOSFileSystem_Exists(t *testing.T) {
	fs := OSFileSystem{}

	if !fs.Exists("filesystem.go") {
		t.Error("expected filesystem.go to exist")
	}

	if fs.Exists("nonexistent_file_xyz.go") {
		t.Error("expected nonexistent file to not exist")
	}
}

func TestOSFileSystem_Open(t *testing.T) {
	fs := OSFileSystem{}

	f, err := fs.Open("filesystem.go")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	if len(data) == 0 {
		t.Error("expected non-empty file content")
	}
}

func TestMemoryFileSystem_CreateAndRead(t *testing.T) {
	mfs := NewMemoryFileSystem()

	w, err := mfs.Create("/created.txt")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := w.Write([]byte("created content")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := mfs.ReadFile("/created.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	if string(data) != "created content" {
		t.Errorf("expected 'created content', got %q", data)
	}
}

func TestMemoryFileSystem_OpenMissing(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if _, err := mfs.Open("/missing.csv"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestMemoryFileSystem_Rename(t *testing.T) {
	mfs := NewMemoryFileSystem()
	mfs.WriteFile("/a.txt", []byte("a"))
	mfs.WriteFile("/b.txt", []byte("old"))

	if err := mfs.Rename("/a.txt", "/b.txt"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}

	if mfs.Exists("/a.txt") {
		t.Error("expected source to be gone after rename")
	}

	data, err := mfs.ReadFile("/b.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "a" {
		t.Errorf("expected replaced content 'a', got %q", data)
	}

	if err := mfs.Rename("/nope", "/c.txt"); err == nil {
		t.Error("expected error renaming missing file")
	}
}

func TestWriteFileAtomic_OS(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "figure.png")

	err := WriteFileAtomic(OSFileSystem{}, target, func(w io.Writer) error {
		_, err := io.WriteString(w, "png bytes")
		return err
	})
	if err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "png bytes" {
		t.Errorf("expected 'png bytes', got %q", data)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the target in %s, found %d entries", dir, len(entries))
	}
}

func TestWriteFileAtomic_WriterErrorLeavesTargetUntouched(t *testing.T) {
	mfs := NewMemoryFileSystem()
	mfs.WriteFile("/out/figure.png", []byte("previous"))

	boom := errors.New("encode failed")
	err := WriteFileAtomic(mfs, "/out/figure.png", func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected writer error, got %v", err)
	}

	data, _ := mfs.ReadFile("/out/figure.png")
	if string(data) != "previous" {
		t.Errorf("target was modified: %q", data)
	}

	for _, name := range mfs.Names() {
		if IsTempName(filepath.Base(name)) {
			t.Errorf("temp file left behind: %s", name)
		}
	}
}

func TestWriteFileAtomic_UnwritableDirectory(t *testing.T) {
	target := filepath.Join(t.TempDir(), "does", "not", "exist", "figure.png")

	err := WriteFileAtomic(OSFileSystem{}, target, func(w io.Writer) error { return nil })
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
	if !strings.Contains(err.Error(), "create temp file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestTempName(t *testing.T) {
	name := tempName("/plots/figure.png")

	if filepath.Dir(name) != "/plots" {
		t.Errorf("temp file must be a sibling of the target, got %s", name)
	}
	if !IsTempName(filepath.Base(name)) {
		t.Errorf("IsTempName(%q) = false", name)
	}
	if name == tempName("/plots/figure.png") {
		t.Error("expected unique temp names")
	}
	if IsTempName("figure.png") {
		t.Error("plain name reported as temp")
	}
}
