package plotui

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// ExportFilename names a downloaded export taken at t.
func ExportFilename(t time.Time) string {
	return "plot_" + t.Format("2006-01-02_15-04-05") + ".json"
}

// ValidateBlob checks that blob is a JSON document before it is handed to
// the engine. The blob is otherwise opaque.
func ValidateBlob(blob []byte) error {
	if len(blob) == 0 {
		return fmt.Errorf("%w: empty document", ErrImport)
	}
	if !json.Valid(blob) {
		return fmt.Errorf("%w: not a JSON document", ErrImport)
	}
	return nil
}

// KeyValueStore is a string-keyed store in the manner of browser local
// storage. Get reports whether the key exists.
type KeyValueStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// MemoryStore is an in-process KeyValueStore.
type MemoryStore struct {
	m map[string]string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, bool, error) {
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(key, value string) error {
	s.m[key] = value
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	delete(s.m, key)
	return nil
}

// Keys returns the stored keys in sorted order.
func (s *MemoryStore) Keys() []string {
	return slices.Sorted(maps.Keys(s.m))
}

// FileStore keeps every key in one TOML document on disk. Each write
// replaces the file through a rename, so a crash leaves either the old or
// the new document.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path. The file is created on the
// first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) load() (map[string]string, error) {
	m := make(map[string]string)
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("plotui: read store: %w", err)
	}
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("plotui: parse store %s: %w", s.path, err)
	}
	return m, nil
}

func (s *FileStore) store(m map[string]string) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("plotui: encode store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("plotui: write store: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("plotui: write store: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("plotui: write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("plotui: write store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("plotui: write store: %w", err)
	}
	return nil
}

func (s *FileStore) Get(key string) (string, bool, error) {
	m, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := m[key]
	return v, ok, nil
}

func (s *FileStore) Set(key, value string) error {
	m, err := s.load()
	if err != nil {
		return err
	}
	m[key] = value
	return s.store(m)
}

func (s *FileStore) Delete(key string) error {
	m, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := m[key]; !ok {
		return nil
	}
	delete(m, key)
	return s.store(m)
}

// SaveSlots is a numbered list of exported states in a KeyValueStore: a
// count under CountKey and each blob under KeyPrefix+index.
type SaveSlots struct {
	store    KeyValueStore
	countKey string
	prefix   string
}

// NewSaveSlots creates save slots over store using cfg's key names.
func NewSaveSlots(store KeyValueStore, cfg SavesConfig) *SaveSlots {
	return &SaveSlots{store: store, countKey: cfg.CountKey, prefix: cfg.KeyPrefix}
}

func (s *SaveSlots) key(i int) string { return s.prefix + strconv.Itoa(i) }

// Count returns the number of slots ever saved since the last Clear. A
// missing or unreadable count is 0.
func (s *SaveSlots) Count() (int, error) {
	v, ok, err := s.store.Get(s.countKey)
	if err != nil || !ok {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, nil
	}
	return n, nil
}

// Save stores blob in a new slot and returns its index.
func (s *SaveSlots) Save(blob string) (int, error) {
	n, err := s.Count()
	if err != nil {
		return 0, err
	}
	if err := s.store.Set(s.key(n), blob); err != nil {
		return 0, err
	}
	if err := s.store.Set(s.countKey, strconv.Itoa(n+1)); err != nil {
		return 0, err
	}
	Logger().Info("state saved", "slot", n)
	return n, nil
}

// Load returns the blob in slot i.
func (s *SaveSlots) Load(i int) (string, error) {
	n, err := s.Count()
	if err != nil {
		return "", err
	}
	if i < 0 || i >= n {
		return "", fmt.Errorf("save slot %d of %d: %w", i, n, ErrNotFound)
	}
	v, ok, err := s.store.Get(s.key(i))
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("save slot %d: %w", i, ErrNotFound)
	}
	return v, nil
}

// List returns the indices of slots that hold a blob.
func (s *SaveSlots) List() ([]int, error) {
	n, err := s.Count()
	if err != nil {
		return nil, err
	}
	var out []int
	for i := range n {
		_, ok, err := s.store.Get(s.key(i))
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, i)
		}
	}
	return out, nil
}

// Clear deletes every slot and resets the count.
func (s *SaveSlots) Clear() error {
	n, err := s.Count()
	if err != nil {
		return err
	}
	for i := range n {
		if err := s.store.Delete(s.key(i)); err != nil {
			return err
		}
	}
	if err := s.store.Set(s.countKey, "0"); err != nil {
		return err
	}
	Logger().Info("saves cleared", "slots", n)
	return nil
}
