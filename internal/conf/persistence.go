package conf

import (
	"encoding/json"
	"os"

	"github.com/livingstonekit-alt/feather-front/internal/apperr"
)

// Load reads settings from path, falling back to legacyPath if path
// does not exist. If neither exists, defaults are returned unmodified.
func Load(path, legacyPath string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if jerr := json.Unmarshal(data, &s); jerr != nil {
			return s, apperr.New(jerr).Component("conf").Category(apperr.CategoryConfig).
				Context("path", path).Build()
		}
		return s, nil
	case !os.IsNotExist(err):
		return s, apperr.New(err).Component("conf").Category(apperr.CategoryConfig).
			Context("path", path).Build()
	}

	if legacyPath == "" {
		return s, nil
	}
	data, err = os.ReadFile(legacyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, apperr.New(err).Component("conf").Category(apperr.CategoryConfig).
			Context("path", legacyPath).Build()
	}
	if jerr := json.Unmarshal(data, &s); jerr != nil {
		return s, apperr.New(jerr).Component("conf").Category(apperr.CategoryConfig).
			Context("path", legacyPath).Build()
	}
	return s, nil
}

// Save writes the current settings to the canonical path as indented
// JSON, overwriting any previous contents.
func (st *Store) Save() error {
	s := st.Get()
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return apperr.New(err).Component("conf").Category(apperr.CategoryConfig).Build()
	}
	if err := os.WriteFile(st.path, data, 0o644); err != nil {
		return apperr.New(err).Component("conf").Category(apperr.CategoryConfig).
			Context("path", st.path).Build()
	}
	return nil
}

// Reload re-reads the canonical/legacy files and swaps them in,
// discarding any in-memory-only changes.
func (st *Store) Reload() error {
	s, err := Load(st.path, st.legacyPath)
	if err != nil {
		return err
	}
	st.replace(s)
	return nil
}
