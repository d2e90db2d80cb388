package parser

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// HiddenLockfileName is the per-tree metadata file npm leaves inside
// node_modules after an install.
const HiddenLockfileName = ".package-lock.json"

// PackageLock represents package-lock.json version 3 structure
type PackageLock struct {
	Name            string                 `json:"name"`
	LockfileVersion int                    `json:"lockfileVersion"`
	Packages        map[string]LockPackage `json:"packages"`
}

// LockPackage represents a single package entry in lockfile
type LockPackage struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Resolved  string `json:"resolved"`
	Integrity string `json:"integrity"`
	Dev       bool   `json:"dev"`
	Optional  bool   `json:"optional"`
	Link      bool   `json:"link"`
}

// ParseLockfile parses a v3 package-lock.json (or the hidden
// node_modules/.package-lock.json) into its raw structure.
func ParseLockfile(path string) (*PackageLock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lockfile: %w", err)
	}

	var lock PackageLock
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, fmt.Errorf("failed to parse lockfile: %w", err)
	}

	if lock.LockfileVersion != 3 {
		return nil, fmt.Errorf("unsupported lockfile version: %d (expected 3)", lock.LockfileVersion)
	}

	return &lock, nil
}

// PackageNameFromPath extracts the package name from a node_modules path
// key, e.g. "node_modules/@scope/name" or "node_modules/a/node_modules/b".
func PackageNameFromPath(path string) string {
	parts := strings.Split(path, "node_modules/")
	if len(parts) < 2 {
		return ""
	}

	// Last segment after the deepest node_modules
	name := parts[len(parts)-1]

	if idx := strings.Index(name, "/node_modules/"); idx != -1 {
		name = name[:idx]
	}

	return strings.TrimSuffix(name, "/")
}
