package jarmeta

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func writeJarWithManifest(t *testing.T, manifest string) string {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("META-INF/MANIFEST.MF")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write([]byte(manifest)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "lib.jar")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadImplementationAttributes(t *testing.T) {
	jar := writeJarWithManifest(t, ""+
		"Manifest-Version: 1.0\r\n"+
		"Implementation-Title: demo-lib\r\n"+
		"Implementation-Version: 1.2.3\r\n"+
		"Implementation-Vendor: example.com\r\n")
	info, ok := Read(jar)
	if !ok {
		t.Fatal("Read = !ok")
	}
	want := Info{Title: "demo-lib", Version: "1.2.3", Vendor: "example.com"}
	if info != want {
		t.Fatalf("info = %+v, want %+v", info, want)
	}
	if got := info.String(); got != "demo-lib 1.2.3" {
		t.Fatalf("String = %q", got)
	}
}

func TestReadBundleFallbackAndContinuation(t *testing.T) {
	jar := writeJarWithManifest(t, ""+
		"Bundle-Name: split-\n"+
		" name\n"+
		"Bundle-Version: 4.5\n"+
		"\n"+
		"Name: a/b/C.class\n"+
		"Implementation-Title: per-entry-ignored\n")
	info, ok := Read(jar)
	if !ok {
		t.Fatal("Read = !ok")
	}
	if info.Title != "split-name" || info.Version != "4.5" {
		t.Fatalf("info = %+v", info)
	}
}

func TestReadMissingManifestOrArchive(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	if _, err := w.Create("just/a/file"); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "plain.jar")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := Read(path); ok {
		t.Fatal("manifest reported for archive without one")
	}
	if _, ok := Read(filepath.Join(t.TempDir(), "gone.jar")); ok {
		t.Fatal("manifest reported for missing archive")
	}
}

func TestInfoStringElidesEmptyFields(t *testing.T) {
	if got := (Info{}).String(); got != "" {
		t.Fatalf("empty Info renders %q", got)
	}
	if got := (Info{Version: "2.0"}).String(); got != "2.0" {
		t.Fatalf("version-only Info renders %q", got)
	}
}
