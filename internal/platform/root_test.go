package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindRoot(t *testing.T) {
	// /tmp/
	//   project/ (manual.yaml)
	//     subdir/
	//       nested/
	//   legacy/ (.manual)
	//   empty/

	baseDir := t.TempDir()
	projectDir := filepath.Join(baseDir, "project")
	subDir := filepath.Join(projectDir, "subdir")
	nestedDir := filepath.Join(subDir, "nested")
	legacyDir := filepath.Join(baseDir, "legacy")
	emptyDir := filepath.Join(baseDir, "empty")

	for _, dir := range []string{nestedDir, filepath.Join(legacyDir, ".manual"), emptyDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(projectDir, ConfigName), []byte("adapter: memory\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		startPath string
		wantRoot  string
		wantErr   bool
	}{
		{name: "Start at Root", startPath: projectDir, wantRoot: projectDir},
		{name: "Start in Subdir", startPath: subDir, wantRoot: projectDir},
		{name: "Start Nested Deeply", startPath: nestedDir, wantRoot: projectDir},
		{name: "Hidden Directory Marker", startPath: legacyDir, wantRoot: legacyDir},
		{name: "No Root Found", startPath: emptyDir, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindRoot(tt.startPath)
			if (err != nil) != tt.wantErr {
				t.Errorf("FindRoot() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != "" && filepath.Clean(got) != filepath.Clean(tt.wantRoot) {
				t.Errorf("FindRoot() = %v, want %v", got, tt.wantRoot)
			}
		})
	}
}
