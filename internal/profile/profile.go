// Package profile loads slot tuning presets from YAML, TOML or JSON files
// and applies them to a running relay.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

var ErrUnknownFormat = errors.New("unknown profile format")

// Slot holds the tuning for one slot. Unset fields leave the slot as is.
type Slot struct {
	Slot          int      `yaml:"slot" toml:"slot" json:"slot"`
	Delay         *uint8   `yaml:"delay,omitempty" toml:"delay,omitempty" json:"delay,omitempty"`
	LeftDeadzone  *float32 `yaml:"left_deadzone,omitempty" toml:"left_deadzone,omitempty" json:"left_deadzone,omitempty"`
	RightDeadzone *float32 `yaml:"right_deadzone,omitempty" toml:"right_deadzone,omitempty" json:"right_deadzone,omitempty"`
}

// Profile is a tuning preset.
type Profile struct {
	Anarchy *bool    `yaml:"anarchy,omitempty" toml:"anarchy,omitempty" json:"anarchy,omitempty"`
	IPs     []string `yaml:"ips,omitempty" toml:"ips,omitempty" json:"ips,omitempty"`
	Slots   []Slot   `yaml:"slots,omitempty" toml:"slots,omitempty" json:"slots,omitempty"`
}

// Target receives a profile.
type Target interface {
	SetAnarchyMode(on bool)
	SetIPs(ips []string) error
	SetDelay(i int, delay uint8) error
	SetLeftDeadzone(i int, dz float32) error
	SetRightDeadzone(i int, dz float32) error
}

// Load reads a profile, picking the decoder from the file extension.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := Parse(filepath.Ext(path), data)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes data in the format named by ext (".yaml", ".yml", ".toml"
// or ".json").
func Parse(ext string, data []byte) (*Profile, error) {
	var p Profile
	var err error
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &p)
	case ".toml":
		err = toml.Unmarshal(data, &p)
	case ".json":
		err = json.Unmarshal(data, &p)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Apply pushes every set field to t. Application stops at the first
// rejected value; earlier fields stay applied.
func (p *Profile) Apply(t Target) error {
	if p.Anarchy != nil {
		t.SetAnarchyMode(*p.Anarchy)
	}
	if p.IPs != nil {
		if err := t.SetIPs(p.IPs); err != nil {
			return err
		}
	}
	for _, s := range p.Slots {
		if s.Delay != nil {
			if err := t.SetDelay(s.Slot, *s.Delay); err != nil {
				return err
			}
		}
		if s.LeftDeadzone != nil {
			if err := t.SetLeftDeadzone(s.Slot, *s.LeftDeadzone); err != nil {
				return err
			}
		}
		if s.RightDeadzone != nil {
			if err := t.SetRightDeadzone(s.Slot, *s.RightDeadzone); err != nil {
				return err
			}
		}
	}
	return nil
}
