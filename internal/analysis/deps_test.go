// SPDX-License-Identifier: MIT
package analysis

import (
	"go/build"
	"path/filepath"
	"strings"
	"testing"
)

const moduleRoot = "../.."

// cgoImports walks the module-local import graph of dir and returns every
// package that pulls in cgo or PortAudio, keyed by the importing package.
func cgoImports(t *testing.T, dir string) map[string]string {
	t.Helper()
	found := make(map[string]string)
	seen := make(map[string]bool)

	var walk func(dir string)
	walk = func(dir string) {
		if seen[dir] {
			return
		}
		seen[dir] = true

		pkg, err := build.ImportDir(dir, 0)
		if err != nil {
			t.Fatalf("Failed to load package in %s: %v", dir, err)
		}
		for _, path := range pkg.Imports {
			switch {
			case path == "C", strings.Contains(path, "portaudio"):
				found[pkg.Dir] = path
			case strings.HasPrefix(path, "haptic/"):
				walk(filepath.Join(moduleRoot, strings.TrimPrefix(path, "haptic/")))
			}
		}
	}
	walk(dir)
	return found
}

func TestCoreBuildsWithoutAudioHardware(t *testing.T) {
	for _, dir := range []string{".", "../synth", "../codec", "../preset"} {
		if found := cgoImports(t, dir); len(found) > 0 {
			t.Errorf("%s depends on cgo audio code: %v", dir, found)
		}
	}
}
