package plotui

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestExportFilename(t *testing.T) {
	at := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	if got := ExportFilename(at); got != "plot_2024-03-05_14-07-09.json" {
		t.Errorf("ExportFilename = %q", got)
	}
}

func TestValidateBlob(t *testing.T) {
	tests := []struct {
		name string
		blob string
		ok   bool
	}{
		{"object", `{"funcs":[]}`, true},
		{"array", `[1,2]`, true},
		{"empty", ``, false},
		{"truncated", `{"funcs":`, false},
		{"plain text", `hello`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBlob([]byte(tt.blob))
			if tt.ok != (err == nil) {
				t.Fatalf("err = %v, want ok %v", err, tt.ok)
			}
			if err != nil && !errors.Is(err, ErrImport) {
				t.Errorf("err = %v, want ErrImport", err)
			}
		})
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	s.Set("b", "2")
	s.Set("a", "1")
	if v, ok, _ := s.Get("a"); !ok || v != "1" {
		t.Errorf("Get(a) = %q, %v", v, ok)
	}
	if !slices.Equal(s.Keys(), []string{"a", "b"}) {
		t.Errorf("Keys = %v", s.Keys())
	}
	s.Delete("a")
	if _, ok, _ := s.Get("a"); ok {
		t.Error("deleted key still present")
	}
}

func TestFileStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "saves.toml")
	s := NewFileStore(path)

	if _, ok, err := s.Get("missing"); ok || err != nil {
		t.Fatalf("Get on a missing file = %v, %v", ok, err)
	}

	blob := `{"funcs":[{"expr":"x^2 \"quoted\""}]}` + "\nsecond line"
	if err := s.Set("save0", blob); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("nsaves", "1"); err != nil {
		t.Fatal(err)
	}

	reopened := NewFileStore(path)
	if v, ok, err := reopened.Get("save0"); err != nil || !ok || v != blob {
		t.Errorf("reopened Get = %q, %v, %v", v, ok, err)
	}

	if err := reopened.Delete("save0"); err != nil {
		t.Fatal(err)
	}
	if err := reopened.Delete("never-set"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get("save0"); ok {
		t.Error("deleted key still on disk")
	}

	matches, _ := filepath.Glob(path + ".*")
	if len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saves.toml")
	if err := os.WriteFile(path, []byte("not = [toml"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewFileStore(path)
	if _, _, err := s.Get("k"); err == nil {
		t.Error("corrupt store read without error")
	}
	if err := s.Set("k", "v"); err == nil {
		t.Error("corrupt store overwritten")
	}
}

func TestSaveSlots(t *testing.T) {
	store := NewMemoryStore()
	slots := NewSaveSlots(store, DefaultConfig().Saves)

	for i, blob := range []string{`{"n":0}`, `{"n":1}`, `{"n":2}`} {
		got, err := slots.Save(blob)
		if err != nil {
			t.Fatal(err)
		}
		if got != i {
			t.Errorf("Save returned slot %d, want %d", got, i)
		}
	}
	if v, err := slots.Load(1); err != nil || v != `{"n":1}` {
		t.Errorf("Load(1) = %q, %v", v, err)
	}
	for _, i := range []int{-1, 3} {
		if _, err := slots.Load(i); !errors.Is(err, ErrNotFound) {
			t.Errorf("Load(%d) = %v, want ErrNotFound", i, err)
		}
	}

	store.Delete("save1")
	if got, _ := slots.List(); !slices.Equal(got, []int{0, 2}) {
		t.Errorf("List = %v, want [0 2]", got)
	}
	if _, err := slots.Load(1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load of a deleted slot = %v, want ErrNotFound", err)
	}

	if err := slots.Clear(); err != nil {
		t.Fatal(err)
	}
	if n, _ := slots.Count(); n != 0 {
		t.Errorf("Count after Clear = %d", n)
	}
	if got, _ := slots.List(); len(got) != 0 {
		t.Errorf("List after Clear = %v", got)
	}
}

func TestSaveSlotsBadCount(t *testing.T) {
	store := NewMemoryStore()
	slots := NewSaveSlots(store, DefaultConfig().Saves)
	for _, v := range []string{"junk", "-4"} {
		store.Set("nsaves", v)
		if n, err := slots.Count(); n != 0 || err != nil {
			t.Errorf("Count with %q = %d, %v", v, n, err)
		}
	}
}
