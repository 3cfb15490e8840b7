package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

// ErrProfileNotFound indicates the requested profile does not exist.
var ErrProfileNotFound = errors.New("profile not found")

// INI keys within a profile section.
const (
	keyAPIURL     = "api_url"
	keyCertSHA256 = "cert_sha256"
)

// Profile is a named set of connection credentials for one Outline server.
type Profile struct {
	Name       string `json:"name" yaml:"name"`
	APIURL     string `json:"api_url" yaml:"api_url"`
	CertSHA256 string `json:"cert_sha256" yaml:"cert_sha256"`
}

// Store is the on-disk profile store. Profiles are kept in insertion order,
// one INI section per profile.
type Store struct {
	profiles []Profile
	filePath string
}

// Load loads the profile store from the default path.
func Load() (*Store, error) {
	paths := GetPaths()
	return LoadFrom(paths.ConfigFile)
}

// LoadFrom loads the profile store from a specific path. A missing file is
// not an error and yields an empty store.
func LoadFrom(path string) (*Store, error) {
	s := &Store{filePath: path}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	for _, section := range file.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}
		s.profiles = append(s.profiles, Profile{
			Name:       section.Name(),
			APIURL:     section.Key(keyAPIURL).String(),
			CertSHA256: section.Key(keyCertSHA256).String(),
		})
	}

	return s, nil
}

// Save writes the store to its file path, creating the config directory
// if needed.
func (s *Store) Save() error {
	if s.filePath == "" {
		return errors.New("config file path not set")
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file := ini.Empty()
	for _, p := range s.profiles {
		// The parser folds a section by this name into its headerless
		// default section, which Load skips; the profile would vanish.
		if p.Name == ini.DefaultSection {
			return fmt.Errorf("profile name %q is reserved", p.Name)
		}
		section, err := file.NewSection(p.Name)
		if err != nil {
			return fmt.Errorf("failed to build config section %q: %w", p.Name, err)
		}
		section.Key(keyAPIURL).SetValue(p.APIURL)
		section.Key(keyCertSHA256).SetValue(p.CertSHA256)
	}

	var buf bytes.Buffer
	if _, err := file.WriteTo(&buf); err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(s.filePath, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Get returns a profile by name.
func (s *Store) Get(name string) (*Profile, error) {
	for i := range s.profiles {
		if s.profiles[i].Name == name {
			return &s.profiles[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
}

// Has reports whether a profile with the given name exists.
func (s *Store) Has(name string) bool {
	_, err := s.Get(name)
	return err == nil
}

// Set adds a profile or updates an existing one in place.
func (s *Store) Set(name, apiURL, certSHA256 string) {
	for i := range s.profiles {
		if s.profiles[i].Name == name {
			s.profiles[i].APIURL = apiURL
			s.profiles[i].CertSHA256 = certSHA256
			return
		}
	}
	s.profiles = append(s.profiles, Profile{
		Name:       name,
		APIURL:     apiURL,
		CertSHA256: certSHA256,
	})
}

// Remove removes a profile by name.
func (s *Store) Remove(name string) error {
	for i := range s.profiles {
		if s.profiles[i].Name == name {
			s.profiles = append(s.profiles[:i], s.profiles[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrProfileNotFound, name)
}

// Names returns all profile names in storage order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.profiles))
	for _, p := range s.profiles {
		names = append(names, p.Name)
	}
	return names
}

// Profiles returns a copy of all profiles in storage order.
func (s *Store) Profiles() []Profile {
	out := make([]Profile, len(s.profiles))
	copy(out, s.profiles)
	return out
}

// FilePath returns the path where this store is persisted.
func (s *Store) FilePath() string {
	return s.filePath
}
