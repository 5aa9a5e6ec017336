package storage

import (
	"log"
	"sync"

	"github.com/ghanu-pos/api/internal/model"
)

// MenuFile stores the menu in menu.json.
type MenuFile struct {
	path string
	mu   sync.Mutex
}

func NewMenuFile(path string) *MenuFile {
	return &MenuFile{path: path}
}

// Load returns the persisted menu. When the file is missing the default
// menu is written and returned.
func (f *MenuFile) Load() (model.Menu, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var m model.Menu
	found, err := readJSON(f.path, &m)
	if err != nil {
		return model.Menu{}, err
	}
	if found {
		return m, nil
	}

	m = model.DefaultMenu()
	if err := writeJSON(f.path, m); err != nil {
		return model.Menu{}, err
	}
	log.Printf("menu: installed default menu at %s", f.path)
	return m, nil
}

// Save rewrites the whole file.
func (f *MenuFile) Save(m model.Menu) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return writeJSON(f.path, m)
}
