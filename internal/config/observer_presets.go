package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/janhq/chat-engine/internal/infrastructure/logger"
)

// ObserverPreset is a named observer instruction.
type ObserverPreset struct {
	Name           string
	Instruction    string
	TargetRole     string
	FromMostRecent bool
}

// ObserverPresets holds the presets loaded from the observer config file.
type ObserverPresets struct {
	presets map[string]ObserverPreset
}

type observerPresetDocument struct {
	Observers map[string]observerPresetEntry `yaml:"observers"`
}

type observerPresetEntry struct {
	Instruction    string `yaml:"instruction"`
	TargetRole     string `yaml:"target_role"`
	FromMostRecent *bool  `yaml:"from_most_recent"`
}

// Get returns the preset registered under name.
func (p *ObserverPresets) Get(name string) (ObserverPreset, bool) {
	if p == nil {
		return ObserverPreset{}, false
	}
	preset, ok := p.presets[strings.TrimSpace(name)]
	return preset, ok
}

// Names returns the registered preset names in order.
func (p *ObserverPresets) Names() []string {
	if p == nil {
		return nil
	}
	names := make([]string, 0, len(p.presets))
	for name := range p.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadObserverPresets parses the yaml file at path. An empty path or a missing file yields no presets.
func LoadObserverPresets(path string) (*ObserverPresets, error) {
	result := &ObserverPresets{presets: make(map[string]ObserverPreset)}
	if strings.TrimSpace(path) == "" {
		return result, nil
	}

	log := logger.GetLogger()
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn().Str("path", cleanPath).Msg("observer preset file not found, no presets loaded")
			return result, nil
		}
		return nil, fmt.Errorf("read observer presets %q: %w", cleanPath, err)
	}

	return parseObserverPresets(cleanPath, data)
}

func parseObserverPresets(source string, data []byte) (*ObserverPresets, error) {
	var doc observerPresetDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse observer presets %q: %w", source, err)
	}

	result := &ObserverPresets{presets: make(map[string]ObserverPreset, len(doc.Observers))}
	for rawName, entry := range doc.Observers {
		name := strings.TrimSpace(rawName)
		if name == "" {
			return nil, fmt.Errorf("observer presets %q: empty preset name", source)
		}
		instruction := strings.TrimSpace(entry.Instruction)
		if instruction == "" {
			return nil, fmt.Errorf("observers.%s: instruction is required", name)
		}
		role := strings.ToLower(strings.TrimSpace(entry.TargetRole))
		switch role {
		case "", "user", "assistant":
		default:
			return nil, fmt.Errorf("observers.%s: unsupported target_role %q", name, entry.TargetRole)
		}
		fromMostRecent := true
		if entry.FromMostRecent != nil {
			fromMostRecent = *entry.FromMostRecent
		}
		result.presets[name] = ObserverPreset{
			Name:           name,
			Instruction:    instruction,
			TargetRole:     role,
			FromMostRecent: fromMostRecent,
		}
	}

	log := logger.GetLogger()
	log.Info().Str("path", source).Int("count", len(result.presets)).Msg("loaded observer presets")
	return result, nil
}
