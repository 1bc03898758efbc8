package classpath

import (
	"bytes"
	"path/filepath"
	"sync"
	"testing"
)

func TestArchiveCacheServesAndReuses(t *testing.T) {
	dir := t.TempDir()
	jar := filepath.Join(dir, "lib.jar")
	writeJar(t, jar, map[string][]byte{"a/b/C.class": {7}})

	c := NewArchiveCache(2)
	a1, err := c.Open(jar)
	if err != nil {
		t.Fatal(err)
	}
	a2, err := c.Open(jar)
	if err != nil {
		t.Fatal(err)
	}
	if a1 != a2 {
		t.Fatal("same artifact opened twice")
	}
	data, ok, err := a1.read("a/b/C.class")
	if err != nil || !ok || !bytes.Equal(data, []byte{7}) {
		t.Fatalf("read = %v, %v, %v", data, ok, err)
	}
}

func TestArchiveCacheRereadsReplacedArtifact(t *testing.T) {
	dir := t.TempDir()
	jar := filepath.Join(dir, "lib.jar")
	writeJar(t, jar, map[string][]byte{"v.txt": []byte("one")})

	c := NewArchiveCache(2)
	if _, err := c.Open(jar); err != nil {
		t.Fatal(err)
	}

	// Rewrite with different content; size change alone must miss the cache.
	writeJar(t, jar, map[string][]byte{"v.txt": []byte("twotwo")})
	a, err := c.Open(jar)
	if err != nil {
		t.Fatal(err)
	}
	data, ok, err := a.read("v.txt")
	if err != nil || !ok || string(data) != "twotwo" {
		t.Fatalf("read after replace = %q, %v, %v", data, ok, err)
	}
}

func TestArchiveCacheConcurrentOpen(t *testing.T) {
	dir := t.TempDir()
	jar := filepath.Join(dir, "lib.jar")
	writeJar(t, jar, map[string][]byte{"x": []byte("y")})

	c := NewArchiveCache(4)
	var wg sync.WaitGroup
	got := make([]*Archive, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := c.Open(jar)
			if err != nil {
				t.Error(err)
				return
			}
			got[i] = a
		}(i)
	}
	wg.Wait()
	for _, a := range got[1:] {
		if a != got[0] {
			t.Fatal("concurrent opens produced distinct archives")
		}
	}
}
