package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveNetworkDefaultsToMain(t *testing.T) {
	name, params, err := resolveNetwork(&Flags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "main" {
		t.Fatalf("got network %q, want main", name)
	}
	if params.Name == "" {
		t.Fatalf("expected non-empty params.Name")
	}
}

func TestResolveNetworkHonorsRegtestFlag(t *testing.T) {
	name, params, err := resolveNetwork(&Flags{RegressionTest: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "regtest" {
		t.Fatalf("got network %q, want regtest", name)
	}
	if params.RegtestFixedBits == 0 {
		t.Fatalf("expected regtest params to carry a RegtestFixedBits")
	}
}

func TestResolveNetworkRejectsMultipleFlags(t *testing.T) {
	_, _, err := resolveNetwork(&Flags{TestNet: true, RegressionTest: true})
	if err == nil {
		t.Fatalf("expected an error when multiple network flags are set")
	}
}

func TestCleanAndExpandPathExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory available: %v", err)
	}
	got := cleanAndExpandPath(filepath.Join("~", "blkd-data"))
	want := filepath.Clean(filepath.Join(home, "blkd-data"))
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCleanAndExpandPathCleansWithoutTilde(t *testing.T) {
	got := cleanAndExpandPath("/var/lib/blkd/./data")
	want := filepath.Clean("/var/lib/blkd/./data")
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
