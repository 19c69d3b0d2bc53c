package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sync"

	"github.com/google/uuid"

	"toxprivacy/nospam"
)

const (
	// AppDirectoryName is the per-user application data directory name.
	AppDirectoryName = "toxprivacy"
	// DataDirEnv overrides the resolved data directory when set.
	DataDirEnv = "TOXPRIVACY_DATA_DIR"
	// settingsFileName is the persisted settings file.
	settingsFileName = "settings.json"
)

// Settings is the on-disk settings document.
type Settings struct {
	ProfileID          string        `json:"profile_id"`
	IdentityKeyPath    string        `json:"identity_key_path"`
	Nospam             *nospam.Value `json:"nospam,omitempty"`
	EnableLogging      *bool         `json:"enable_logging,omitempty"`
	TypingNotification *bool         `json:"typing_notification,omitempty"`
	BlackList          []string      `json:"blacklist"`
}

// ResolveDataDir returns the OS-aware app data directory.
//
// If TOXPRIVACY_DATA_DIR is set, its value is used as an explicit override.
func ResolveDataDir() (string, error) {
	if override := os.Getenv(DataDirEnv); override != "" {
		return override, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}

	switch runtime.GOOS {
	case "windows":
		base := os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(base, AppDirectoryName), nil
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", AppDirectoryName), nil
	default:
		base := os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			base = filepath.Join(home, ".config")
		}
		return filepath.Join(base, AppDirectoryName), nil
	}
}

// SettingsPath returns the full path to settings.json for a data directory.
func SettingsPath(dataDir string) string {
	return filepath.Join(dataDir, settingsFileName)
}

// EnsureDataDirectories creates the app data directory layout if needed.
func EnsureDataDirectories(dataDir string) error {
	for _, dir := range []string{dataDir, filepath.Join(dataDir, "keys")} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Load reads and unmarshals settings.json from disk.
func Load(path string) (*Settings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var s Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}

	return &s, nil
}

// Save marshals and writes settings.json to disk.
func Save(path string, s *Settings) error {
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	raw = append(raw, '\n')
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Store is the persisted settings store. Every setter writes through to disk.
// It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	path     string
	settings *Settings
}

// Open ensures the data directory and settings file exist under dataDir.
func Open(dataDir string) (*Store, error) {
	if err := EnsureDataDirectories(dataDir); err != nil {
		return nil, err
	}

	path := SettingsPath(dataDir)
	s, err := Load(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		s = defaultSettings(dataDir)
		if err := Save(path, s); err != nil {
			return nil, err
		}
		return &Store{path: path, settings: s}, nil
	}

	if normalizeDefaults(s, dataDir) {
		if err := Save(path, s); err != nil {
			return nil, err
		}
	}

	return &Store{path: path, settings: s}, nil
}

// LoadOrCreate resolves the data directory and opens the store inside it.
func LoadOrCreate() (*Store, string, error) {
	dataDir, err := ResolveDataDir()
	if err != nil {
		return nil, "", err
	}
	store, err := Open(dataDir)
	if err != nil {
		return nil, "", err
	}
	return store, dataDir, nil
}

// Path returns the settings file location.
func (s *Store) Path() string {
	return s.path
}

// Snapshot returns a copy of the current settings.
func (s *Store) Snapshot() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := *s.settings
	out.EnableLogging = boolPtr(*s.settings.EnableLogging)
	out.TypingNotification = boolPtr(*s.settings.TypingNotification)
	out.BlackList = slices.Clone(s.settings.BlackList)
	out.Nospam = nospamPtr(*s.settings.Nospam)
	return out
}

// EnableLogging reports whether chat history is kept.
func (s *Store) EnableLogging() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.settings.EnableLogging
}

// SetEnableLogging persists the keep-history flag.
func (s *Store) SetEnableLogging(enabled bool) error {
	return s.update(func(st *Settings) { st.EnableLogging = boolPtr(enabled) })
}

// TypingNotification reports whether typing notifications are sent.
func (s *Store) TypingNotification() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.settings.TypingNotification
}

// SetTypingNotification persists the typing-notification flag.
func (s *Store) SetTypingNotification(enabled bool) error {
	return s.update(func(st *Settings) { st.TypingNotification = boolPtr(enabled) })
}

// BlackList returns a copy of the stored blacklist lines.
func (s *Store) BlackList() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.settings.BlackList)
}

// SetBlackList stores lines verbatim, including empty ones.
func (s *Store) SetBlackList(lines []string) error {
	stored := slices.Clone(lines)
	if stored == nil {
		stored = []string{}
	}
	return s.update(func(st *Settings) { st.BlackList = stored })
}

// Nospam returns the persisted nospam value.
func (s *Store) Nospam() nospam.Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.settings.Nospam
}

// SetNospam persists a new nospam value.
func (s *Store) SetNospam(v nospam.Value) error {
	return s.update(func(st *Settings) { st.Nospam = nospamPtr(v) })
}

// IdentityKeyPath returns where the identity secret key is stored.
func (s *Store) IdentityKeyPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.IdentityKeyPath
}

// update applies fn to a copy and only swaps it in once the write succeeded.
func (s *Store) update(fn func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := *s.settings
	fn(&next)
	if err := Save(s.path, &next); err != nil {
		return err
	}
	s.settings = &next
	return nil
}

func defaultSettings(dataDir string) *Settings {
	return &Settings{
		ProfileID:          uuid.NewString(),
		IdentityKeyPath:    filepath.Join(dataDir, "keys", "identity.pem"),
		Nospam:             nospamPtr(nospam.Random()),
		EnableLogging:      boolPtr(true),
		TypingNotification: boolPtr(true),
		BlackList:          []string{},
	}
}

func normalizeDefaults(s *Settings, dataDir string) bool {
	updated := false

	if s.ProfileID == "" {
		s.ProfileID = uuid.NewString()
		updated = true
	}
	if s.IdentityKeyPath == "" {
		s.IdentityKeyPath = filepath.Join(dataDir, "keys", "identity.pem")
		updated = true
	}
	if s.Nospam == nil {
		s.Nospam = nospamPtr(nospam.Random())
		updated = true
	}
	if s.EnableLogging == nil {
		s.EnableLogging = boolPtr(true)
		updated = true
	}
	if s.TypingNotification == nil {
		s.TypingNotification = boolPtr(true)
		updated = true
	}
	if s.BlackList == nil {
		s.BlackList = []string{}
		updated = true
	}

	return updated
}

func boolPtr(v bool) *bool {
	return &v
}

func nospamPtr(v nospam.Value) *nospam.Value {
	return &v
}
