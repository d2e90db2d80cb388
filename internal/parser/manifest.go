package parser

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/acheong08/lsdeps/pkg/models"
)

// Manifest represents the structure of package.json
type Manifest struct {
	Name                 string            `json:"name"`
	Version              string            `json:"version"`
	Description          string            `json:"description"`
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`
	PeerDependenciesMeta map[string]struct {
		Optional bool `json:"optional"`
	} `json:"peerDependenciesMeta"`
}

// Declaration is a single dependency declaration from a manifest.
type Declaration struct {
	Name string
	Spec string
	Kind models.DepKind
}

// ParseManifest reads and parses a package.json file
func ParseManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read package.json: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse package.json: %w", err)
	}

	return &m, nil
}

// FindManifest searches for package.json in the given directory
func FindManifest(dir string) (string, error) {
	path := filepath.Join(dir, "package.json")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", fmt.Errorf("package.json not found in %s", dir)
	}
	return path, nil
}

// Declarations flattens all dependency blocks into a deterministic,
// name-sorted list. optionalDependencies wins over a duplicate entry in
// dependencies; peer entries flagged optional in peerDependenciesMeta are
// classified peerOptional.
func (m *Manifest) Declarations() []Declaration {
	byName := make(map[string]Declaration)

	for name, spec := range m.Dependencies {
		byName[name] = Declaration{Name: name, Spec: spec, Kind: models.KindProd}
	}
	for name, spec := range m.DevDependencies {
		byName[name] = Declaration{Name: name, Spec: spec, Kind: models.KindDev}
	}
	for name, spec := range m.PeerDependencies {
		kind := models.KindPeer
		if meta, ok := m.PeerDependenciesMeta[name]; ok && meta.Optional {
			kind = models.KindPeerOptional
		}
		byName[name] = Declaration{Name: name, Spec: spec, Kind: kind}
	}
	for name, spec := range m.OptionalDependencies {
		byName[name] = Declaration{Name: name, Spec: spec, Kind: models.KindOptional}
	}

	decls := make([]Declaration, 0, len(byName))
	for _, d := range byName {
		decls = append(decls, d)
	}
	sort.Slice(decls, func(i, j int) bool { return decls[i].Name < decls[j].Name })
	return decls
}
