package ims

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/catalystcommunity/edgefn/internal/config"
)

// ContextsFileName is the registry of identity contexts inside the config dir
const ContextsFileName = "contexts.yaml"

// ContextData is the non-secret part of a stored identity context
type ContextData struct {
	ClientID string `yaml:"client_id,omitempty"`
	Env      string `yaml:"env,omitempty"`
}

// IsStage reports whether the context targets the stage services
func (d ContextData) IsStage() bool {
	return d.Env == "stage"
}

// Context is a named identity credential set. The access token itself lives in
// the secrets store.
type Context struct {
	Name  string       `yaml:"-"`
	Local bool         `yaml:"local,omitempty"`
	Data  *ContextData `yaml:"data,omitempty"`
}

type contextsFile struct {
	Current  string              `yaml:"current,omitempty"`
	Contexts map[string]*Context `yaml:"contexts,omitempty"`
}

// Contexts reads and writes the context registry file
type Contexts struct {
	path string
}

// OpenContexts returns the registry in the default config dir
func OpenContexts() (*Contexts, error) {
	dir, err := config.GetConfigDir()
	if err != nil {
		return nil, err
	}
	return NewContexts(filepath.Join(dir, ContextsFileName)), nil
}

// NewContexts returns a registry backed by path
func NewContexts(path string) *Contexts {
	return &Contexts{path: path}
}

// Current returns the name of the current context, or ""
func (c *Contexts) Current() (string, error) {
	f, err := c.load()
	if err != nil {
		return "", err
	}
	return f.Current, nil
}

// Get returns the named context, or nil if it does not exist
func (c *Contexts) Get(name string) (*Context, error) {
	f, err := c.load()
	if err != nil {
		return nil, err
	}
	ctx, ok := f.Contexts[name]
	if !ok || ctx == nil {
		return nil, nil
	}
	ctx.Name = name
	return ctx, nil
}

// List returns all contexts sorted by name
func (c *Contexts) List() ([]*Context, error) {
	f, err := c.load()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(f.Contexts))
	for name := range f.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)

	contexts := make([]*Context, 0, len(names))
	for _, name := range names {
		ctx := f.Contexts[name]
		if ctx == nil {
			ctx = &Context{}
		}
		ctx.Name = name
		contexts = append(contexts, ctx)
	}
	return contexts, nil
}

// Save creates or replaces a context
func (c *Contexts) Save(ctx *Context) error {
	if ctx == nil || ctx.Name == "" {
		return fmt.Errorf("context name cannot be empty")
	}

	f, err := c.load()
	if err != nil {
		return err
	}
	if f.Contexts == nil {
		f.Contexts = map[string]*Context{}
	}
	f.Contexts[ctx.Name] = ctx
	return c.save(f)
}

// Use makes an existing context current
func (c *Contexts) Use(name string) error {
	f, err := c.load()
	if err != nil {
		return err
	}
	if _, ok := f.Contexts[name]; !ok {
		return fmt.Errorf("context not found: %s", name)
	}
	f.Current = name
	return c.save(f)
}

// Delete removes a context, clearing the current pointer if it referenced it
func (c *Contexts) Delete(name string) error {
	f, err := c.load()
	if err != nil {
		return err
	}
	if _, ok := f.Contexts[name]; !ok {
		return fmt.Errorf("context not found: %s", name)
	}
	delete(f.Contexts, name)
	if f.Current == name {
		f.Current = ""
	}
	return c.save(f)
}

func (c *Contexts) load() (*contextsFile, error) {
	f := &contextsFile{}

	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, fmt.Errorf("failed to read contexts file: %w", err)
	}

	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("failed to parse contexts file: %w", err)
	}
	return f, nil
}

func (c *Contexts) save(f *contextsFile) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal contexts: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write contexts file: %w", err)
	}
	return nil
}
