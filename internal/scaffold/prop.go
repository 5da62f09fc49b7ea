// SPDX-License-Identifier: MPL-2.0

package scaffold

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/magiconair/properties"
)

// PropFile is the module descriptor at the root of every project.
const PropFile = "module.prop"

var (
	// ErrInvalidID is returned for module ids the module manager rejects.
	ErrInvalidID = errors.New("invalid module id")

	idPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9._-]+$`)
)

// ModuleProp is the parsed content of module.prop.
type ModuleProp struct {
	ID          string
	Name        string
	Version     string
	VersionCode int
	Author      string
	Description string
	MinMagisk   int
}

// DefaultModuleProp is the descriptor written for a new project.
func DefaultModuleProp(id string) ModuleProp {
	return ModuleProp{
		ID:          id,
		Name:        "Put module name here",
		Version:     "1.0",
		VersionCode: 1,
		Author:      "Your name",
		Description: "Put module description here",
		MinMagisk:   26000,
	}
}

// ValidateID checks a module id: a letter followed by at least one letter,
// digit, dot, underscore or hyphen.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%w: %q must start with a letter and contain only letters, digits, '.', '_' or '-' (at least two characters)", ErrInvalidID, id)
	}
	return nil
}

// LoadModuleProp parses a module.prop file. Values are taken literally;
// ${...} references are not expanded.
func LoadModuleProp(path string) (*ModuleProp, error) {
	loader := properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := loader.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	mp := &ModuleProp{
		ID:          p.GetString("id", ""),
		Name:        p.GetString("name", ""),
		Version:     p.GetString("version", ""),
		Author:      p.GetString("author", ""),
		Description: p.GetString("description", ""),
	}
	if mp.VersionCode, err = intProp(p, "versionCode"); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if mp.MinMagisk, err = intProp(p, "minMagisk"); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mp, nil
}

// intProp returns 0 for a missing key.
func intProp(p *properties.Properties, key string) (int, error) {
	v, ok := p.Get(key)
	if !ok || strings.TrimSpace(v) == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

// Validate reports every problem with the descriptor.
func (m *ModuleProp) Validate() error {
	var errs []error
	if err := ValidateID(m.ID); err != nil {
		errs = append(errs, err)
	}
	if m.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if m.Version == "" {
		errs = append(errs, errors.New("version is required"))
	}
	if m.VersionCode <= 0 {
		errs = append(errs, fmt.Errorf("versionCode must be positive, got %d", m.VersionCode))
	}
	if m.MinMagisk < 0 {
		errs = append(errs, fmt.Errorf("minMagisk must not be negative, got %d", m.MinMagisk))
	}
	return errors.Join(errs...)
}

// WriteTo writes the descriptor in module.prop format.
func (m *ModuleProp) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w,
		"id=%s\nname=%s\nversion=%s\nversionCode=%d\nauthor=%s\ndescription=%s\nminMagisk=%d\n",
		m.ID, m.Name, m.Version, m.VersionCode, m.Author, m.Description, m.MinMagisk)
	return int64(n), err
}
