package hook

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/m-mizutani/gt"
)

// writeHook creates a hook directory under dir with a manifest and a shell
// script body.
func writeHook(t *testing.T, dir, name, manifest, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("hook scripts require a POSIX shell")
	}

	path := filepath.Join(dir, name)
	gt.NoError(t, os.MkdirAll(path, 0o755))
	gt.NoError(t, os.WriteFile(filepath.Join(path, ManifestFile), []byte(manifest), 0o644))
	if script != "" {
		gt.NoError(t, os.WriteFile(filepath.Join(path, "run.sh"), []byte("#!/bin/sh\n"+script), 0o755))
	}
	return path
}
