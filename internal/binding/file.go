package binding

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type fileFormat struct {
	Bindings []Binding `yaml:"bindings"`
}

// Load reads a bindings file. A missing file yields an empty set.
func Load(path string) (*Set, error) {
	s := NewSet()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read bindings: %w", err)
	}

	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode bindings %s: %w", path, err)
	}
	for _, b := range f.Bindings {
		if err := s.Put(b); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	log.Printf("Bindings: loaded %d from %s", s.Len(), path)
	return s, nil
}

// Save writes the set to path, creating parent directories.
func (s *Set) Save(path string) error {
	data, err := yaml.Marshal(fileFormat{Bindings: s.All()})
	if err != nil {
		return fmt.Errorf("encode bindings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create bindings directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write bindings: %w", err)
	}
	log.Printf("Bindings: saved %d to %s", s.Len(), path)
	return nil
}
