package cache

import (
	"testing"
	"time"
)

func TestKeyForBytes(t *testing.T) {
	a := KeyForBytes([]byte("same content"))
	b := KeyForBytes([]byte("same content"))
	c := KeyForBytes([]byte("different content"))

	if a != b {
		t.Error("identical content produced different keys")
	}
	if a == c {
		t.Error("different content produced identical keys")
	}
	if len(a) == 0 || a[:11] != "recordlens:" {
		t.Errorf("key %q missing namespace prefix", a)
	}
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("hit on missing key")
	}

	if err := c.Set("k", []byte("recognized text"), 0); err != nil {
		t.Fatal(err)
	}
	val, found := c.Get("k")
	if !found || string(val) != "recognized text" {
		t.Errorf("Get = %q, %v; want stored value", val, found)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatal(err)
	}
	if _, found := c.Get("k"); found {
		t.Error("hit after delete")
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	if err := c.Set("k", []byte("page text"), 0); err != nil {
		t.Fatal(err)
	}
	val, found := c.Get("k")
	if !found || string(val) != "page text" {
		t.Errorf("Get = %q, %v; want stored value", val, found)
	}

	if _, found := c.Get("other"); found {
		t.Error("hit on missing key")
	}

	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, found := c.Get("k"); found {
		t.Error("hit after clear")
	}
}

func TestDiskCacheExpiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	if err := c.Set("k", []byte("stale"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)

	if _, found := c.Get("k"); found {
		t.Error("expired entry served")
	}
}

func TestLayeredCachePromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Minute)

	// Seed the disk layer only, simulating a fresh process with a warm
	// on-disk cache.
	disk := NewDiskCache(dir, time.Minute)
	if err := disk.Set("k", []byte("warm"), 0); err != nil {
		t.Fatal(err)
	}

	val, found := c.Get("k")
	if !found || string(val) != "warm" {
		t.Fatalf("Get = %q, %v; want disk value", val, found)
	}

	// The entry must now be served from memory even if the disk copy
	// disappears.
	if err := disk.Delete("k"); err != nil {
		t.Fatal(err)
	}
	if _, found := c.Get("k"); !found {
		t.Error("disk hit was not promoted to memory")
	}
}
