package home

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("with explicit path", func(t *testing.T) {
		dir, err := New("/tmp/test-fundrecon")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dir.Path() != "/tmp/test-fundrecon" {
			t.Errorf("expected path /tmp/test-fundrecon, got %s", dir.Path())
		}
	})

	t.Run("with empty path uses default", func(t *testing.T) {
		dir, err := New("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, DefaultDirName)
		if dir.Path() != expected {
			t.Errorf("expected path %s, got %s", expected, dir.Path())
		}
	})
}

func TestDir_Paths(t *testing.T) {
	dir, _ := New("/tmp/test-fundrecon")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"ConfigPath", dir.ConfigPath(), "/tmp/test-fundrecon/config.yaml"},
		{"CatalogsDir", dir.CatalogsDir(), "/tmp/test-fundrecon/catalogs"},
		{"CatalogPath", dir.CatalogPath("lu"), "/tmp/test-fundrecon/catalogs/lu.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, tt.got)
			}
		})
	}
}

func TestDir_EnsureExists(t *testing.T) {
	dir, err := New(filepath.Join(t.TempDir(), "fundrecon-test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dir.Exists() {
		t.Error("directory should not exist before EnsureExists")
	}
	if err := dir.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}
	if !dir.Exists() {
		t.Error("directory should exist after EnsureExists")
	}
	if _, err := os.Stat(dir.CatalogsDir()); os.IsNotExist(err) {
		t.Error("catalogs directory should exist after EnsureExists")
	}
}

func TestDir_Catalogs(t *testing.T) {
	dir, _ := New(t.TempDir())

	names, err := dir.Catalogs()
	if err != nil {
		t.Fatalf("missing catalogs directory: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("expected no catalogs, got %v", names)
	}

	if err := dir.EnsureExists(); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"lu.yaml", "be.yaml", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir.CatalogsDir(), name), []byte("name: x\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	names, err = dir.Catalogs()
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"be", "lu"}; !reflect.DeepEqual(names, want) {
		t.Errorf("expected %v, got %v", want, names)
	}
}

func TestDir_ConfigExists(t *testing.T) {
	dir, _ := New(t.TempDir())

	if dir.ConfigExists() {
		t.Error("config should not exist initially")
	}
	if err := os.WriteFile(dir.ConfigPath(), []byte("catalog: nl\n"), 0o644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	if !dir.ConfigExists() {
		t.Error("config should exist after creation")
	}
}
