// CLAUDE:SUMMARY YAML profile file loader — adds or overrides customer profiles at startup.
package profile

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type profileFile struct {
	Profiles []*Profile `yaml:"profiles"`
}

// LoadFile merges profiles from a YAML file into the registry. A file
// profile with an existing key replaces the built-in, losing any built-in
// post-transform. Call during startup, before the registry is shared.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read profiles %s: %w", path, err)
	}

	var pf profileFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return fmt.Errorf("parse profiles %s: %w", path, err)
	}

	for _, p := range pf.Profiles {
		if strings.TrimSpace(p.Key) == "" {
			return fmt.Errorf("parse profiles %s: profile with empty key", path)
		}
		key := strings.ToLower(strings.TrimSpace(p.Key))
		if _, exists := r.profiles[key]; exists {
			r.logger.Info("profile override", "key", key, "file", path)
		}
		r.profiles[key] = p
	}
	return nil
}
