package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/swfaction/avm1"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[decoder]
version = 5
max-depth = 8
legacy-encoding = "shift_jis"

[cache]
path = "cache/actions.db"
enabled = true

[log]
verbosity = 2
file = "avm1.log"
`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if c.Decoder.Version != 5 {
		t.Errorf("decoder version = %d, want 5", c.Decoder.Version)
	}
	if c.Decoder.MaxDepth != 8 {
		t.Errorf("decoder max-depth = %d, want 8", c.Decoder.MaxDepth)
	}
	if c.Decoder.LegacyEncoding != "shift_jis" {
		t.Errorf("decoder legacy-encoding = %q, want shift_jis", c.Decoder.LegacyEncoding)
	}
	if !c.Cache.Enabled {
		t.Error("cache enabled = false, want true")
	}
	if want := filepath.Join(c.Dir, "cache", "actions.db"); c.CachePath() != want {
		t.Errorf("CachePath = %q, want %q", c.CachePath(), want)
	}
	if c.Log.Verbosity != 2 || c.Log.File != "avm1.log" {
		t.Errorf("log = %+v, want verbosity 2 file avm1.log", c.Log)
	}

	opts, err := c.DecoderOptions()
	if err != nil {
		t.Fatalf("DecoderOptions failed: %v", err)
	}
	if opts.Version != 5 || opts.MaxDepth != 8 {
		t.Errorf("options = %+v", opts)
	}

	// "ア" in Shift_JIS, read as a SWF 5 string.
	r := avm1.NewDecoder(opts).NewReader([]byte{0x83, 0x41, 0})
	if s, err := r.ReadString(); err != nil || s != "ア" {
		t.Errorf("ReadString = %q, %v; want ア", s, err)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "[cache]\nenabled = false\n")

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Decoder.Version != 10 {
		t.Errorf("decoder version = %d, want 10", c.Decoder.Version)
	}
	if c.Decoder.MaxDepth != avm1.DefaultMaxDepth {
		t.Errorf("decoder max-depth = %d, want %d", c.Decoder.MaxDepth, avm1.DefaultMaxDepth)
	}
	if c.Decoder.LegacyEncoding != "windows-1252" {
		t.Errorf("decoder legacy-encoding = %q, want windows-1252", c.Decoder.LegacyEncoding)
	}
	if c.Cache.Path != filepath.Join(".avm1", "cache.db") {
		t.Errorf("cache path = %q", c.Cache.Path)
	}
}

func TestDefault(t *testing.T) {
	c := Default()
	opts, err := c.DecoderOptions()
	if err != nil {
		t.Fatalf("DecoderOptions failed: %v", err)
	}

	// 0xE9 is é in Windows-1252.
	r := avm1.NewDecoder(avm1.Options{Version: 5, LegacyEncoding: opts.LegacyEncoding}).NewReader([]byte{0xE9, 0})
	if s, err := r.ReadString(); err != nil || s != "é" {
		t.Errorf("ReadString = %q, %v; want é", s, err)
	}
	if c.CachePath() != c.Cache.Path {
		t.Errorf("CachePath without a directory = %q, want %q", c.CachePath(), c.Cache.Path)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "[decoder\n"},
		{"unknown encoding", "[decoder]\nlegacy-encoding = \"klingon\"\n"},
		{"negative depth", "[decoder]\nmax-depth = -1\n"},
		{"version out of range", "[decoder]\nversion = 300\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.content)
			if _, err := Load(dir); err == nil {
				t.Error("Load succeeded, want error")
			}
		})
	}

	if _, err := Load(t.TempDir()); err == nil {
		t.Error("Load of missing file succeeded, want error")
	}
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[decoder]\nversion = 7\n")

	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	c, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if c == nil {
		t.Fatal("FindAndLoad returned nil")
	}
	if c.Decoder.Version != 7 {
		t.Errorf("decoder version = %d, want 7", c.Decoder.Version)
	}
	abs, _ := filepath.Abs(root)
	if c.Dir != abs {
		t.Errorf("Dir = %q, want %q", c.Dir, abs)
	}
}
