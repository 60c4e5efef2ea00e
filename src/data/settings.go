package data

import (
	"sync"

	"github.com/stake-plus/lazy-consensus-bot/src/types"
	"gorm.io/gorm"
)

// Settings is an in-memory cache of the settings table. The config layer
// owns one instance; Refresh picks up rows changed at runtime.
type Settings struct {
	db     *gorm.DB
	mu     sync.RWMutex
	values map[string]string
}

func NewSettings(db *gorm.DB) *Settings {
	return &Settings{db: db}
}

// SettingsFromMap builds a cache with fixed values and no backing table.
func SettingsFromMap(values map[string]string) *Settings {
	return &Settings{values: values}
}

// Refresh reloads the cache from the database.
func (s *Settings) Refresh() error {
	var rows []types.Setting
	if err := s.db.Find(&rows).Error; err != nil {
		return err
	}

	values := make(map[string]string, len(rows))
	for _, r := range rows {
		values[r.Name] = r.Value
	}

	s.mu.Lock()
	s.values = values
	s.mu.Unlock()
	return nil
}

// Get returns the cached value for name, or "" when unset.
func (s *Settings) Get(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[name]
}
