package profile

import (
	"os"
	"path/filepath"
	"testing"
)

func writeProfiles(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile_AddsProfile(t *testing.T) {
	// WHAT: A YAML file adds a new customer profile with all rule fields.
	// WHY: Site-specific customers must not require a rebuild.
	r := NewRegistry(nil)
	path := writeProfiles(t, `
profiles:
  - key: acme
    header_anchor: "PARTS LIST"
    rename:
      PART NO: MFGPART
    reject_keywords: ["SPARE"]
    force_ocr: true
    detect_keywords: ["ACME CORP"]
`)
	if err := r.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	p := r.Lookup("ACME")
	if p.Key != "acme" {
		t.Fatalf("Lookup returned %q", p.Key)
	}
	if p.HeaderAnchor != "PARTS LIST" || !p.ForceOCR {
		t.Errorf("profile fields lost: %+v", p)
	}
	if p.Rename["PART NO"] != "MFGPART" {
		t.Errorf("rename map = %v", p.Rename)
	}
	if got := r.DetectCustomer("quote from ACME Corp, attention parts dept"); got != "acme" {
		t.Errorf("DetectCustomer = %q", got)
	}
}

func TestLoadFile_OverridesBuiltin(t *testing.T) {
	// WHAT: A file profile with a built-in's key replaces it.
	// WHY: Field adjustments to shipped profiles beat waiting for a release.
	r := NewRegistry(nil)
	path := writeProfiles(t, `
profiles:
  - key: nel
    header_anchor: "PART LIST"
`)
	if err := r.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got := r.Lookup("nel").HeaderAnchor; got != "PART LIST" {
		t.Errorf("anchor = %q, want override applied", got)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	// WHAT: Missing files, malformed YAML, and empty keys all fail loudly.
	// WHY: A half-loaded registry silently misformats every export after it.
	r := NewRegistry(nil)
	if err := r.LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file accepted")
	}
	if err := r.LoadFile(writeProfiles(t, "profiles: [")); err == nil {
		t.Error("malformed yaml accepted")
	}
	if err := r.LoadFile(writeProfiles(t, "profiles:\n  - key: \"\"\n")); err == nil {
		t.Error("empty key accepted")
	}
}
