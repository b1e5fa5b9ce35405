package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix marks environment variables that override stored settings.
// AIO_CLOUDMANAGER__ORGID -> cloudmanager_orgid, AIO_CONSOLE_ORG_CODE -> console.org.code
const EnvPrefix = "AIO_"

// Store is a key/value settings store backed by a global and a local YAML file.
// Reads see global < local < environment; writes go to exactly one file.
type Store struct {
	globalPath string
	localPath  string

	global *koanf.Koanf
	local  *koanf.Koanf
	merged *koanf.Koanf
}

// Open loads the store from the default global and local locations
func Open() (*Store, error) {
	globalPath, err := GlobalConfigPath()
	if err != nil {
		return nil, err
	}
	localPath, err := LocalConfigPath()
	if err != nil {
		return nil, err
	}
	return NewStore(globalPath, localPath)
}

// NewStore loads a store from explicit file paths. Missing files are treated as empty.
func NewStore(globalPath, localPath string) (*Store, error) {
	s := &Store{
		globalPath: globalPath,
		localPath:  localPath,
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads both files and the environment
func (s *Store) Reload() error {
	global, err := loadFile(s.globalPath)
	if err != nil {
		return err
	}
	local, err := loadFile(s.localPath)
	if err != nil {
		return err
	}

	merged := koanf.New(".")
	if err := merged.Merge(global); err != nil {
		return fmt.Errorf("failed to merge global config: %w", err)
	}
	if err := merged.Merge(local); err != nil {
		return fmt.Errorf("failed to merge local config: %w", err)
	}
	if err := merged.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}

	s.global = global
	s.local = local
	s.merged = merged
	return nil
}

// GlobalPath returns the global settings file path
func (s *Store) GlobalPath() string {
	return s.globalPath
}

// LocalPath returns the local settings file path
func (s *Store) LocalPath() string {
	return s.localPath
}

// Get returns the most specific value stored for key, or nil
func (s *Store) Get(key string) any {
	return s.merged.Get(key)
}

// GetLocal returns the value stored in the local file only
func (s *Store) GetLocal(key string) any {
	return s.local.Get(key)
}

// GetGlobal returns the value stored in the global file only
func (s *Store) GetGlobal(key string) any {
	return s.global.Get(key)
}

// GetString returns the value for key formatted as a string
func (s *Store) GetString(key string) string {
	return toString(s.Get(key))
}

// GetBool returns the value for key as a boolean. Unparseable values are false.
func (s *Store) GetBool(key string) bool {
	switch v := s.Get(key).(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	default:
		return false
	}
}

// Set stores value under key in the local or global file
func (s *Store) Set(key string, value any, local bool) error {
	path := s.pathFor(local)

	data, err := readFile(path)
	if err != nil {
		return err
	}

	setNested(data, strings.Split(key, "."), value)

	if err := writeFile(path, data); err != nil {
		return err
	}
	return s.Reload()
}

// Unset removes key from the local or global file
func (s *Store) Unset(key string, local bool) error {
	path := s.pathFor(local)

	data, err := readFile(path)
	if err != nil {
		return err
	}

	if !deleteNested(data, strings.Split(key, ".")) {
		return nil
	}

	if err := writeFile(path, data); err != nil {
		return err
	}
	return s.Reload()
}

func (s *Store) pathFor(local bool) string {
	if local {
		return s.localPath
	}
	return s.globalPath
}

func loadFile(path string) (*koanf.Koanf, error) {
	k := koanf.New(".")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return k, nil
		}
		return nil, fmt.Errorf("failed to stat config file %s: %w", path, err)
	}
	if err := k.Load(file.Provider(path), koanfyaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	return k, nil
}

func readFile(path string) (map[string]any, error) {
	data := map[string]any{}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return data, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}

func writeFile(path string, data map[string]any) error {
	out, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

func setNested(m map[string]any, parts []string, value any) {
	for _, part := range parts[:len(parts)-1] {
		child, ok := m[part].(map[string]any)
		if !ok {
			child = map[string]any{}
			m[part] = child
		}
		m = child
	}
	m[parts[len(parts)-1]] = value
}

func deleteNested(m map[string]any, parts []string) bool {
	for _, part := range parts[:len(parts)-1] {
		child, ok := m[part].(map[string]any)
		if !ok {
			return false
		}
		m = child
	}
	last := parts[len(parts)-1]
	if _, ok := m[last]; !ok {
		return false
	}
	delete(m, last)
	return true
}

// envKey maps AIO_FOO__BAR_BAZ to foo_bar.baz
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	key = strings.ReplaceAll(key, "__", "\x00")
	key = strings.ReplaceAll(key, "_", ".")
	return strings.ReplaceAll(key, "\x00", "_")
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
