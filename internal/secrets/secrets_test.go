// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  Secrets
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, IndicatorsAPIKey, "  tok_abc123  \n")
				writeFile(t, dir, "other-key", "v")
				return dir
			},
			want: Secrets{IndicatorsAPIKey: "tok_abc123", "other-key": "v"},
		},
		{
			name: "missing directory is empty",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: Secrets{},
		},
		{
			name: "skips empty files, dotfiles and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, IndicatorsAPIKey, "tok")
				writeFile(t, dir, "blank", "  \n\t")
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden", "secret")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
				return dir
			},
			want: Secrets{IndicatorsAPIKey: "tok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t), io.Discard)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_DirectoryIsAFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	_, err := Load(path, io.Discard)
	assert.Error(t, err)
}

func TestSecrets_GetPrefersExplicitValue(t *testing.T) {
	s := Secrets{IndicatorsAPIKey: "from-file"}
	assert.Equal(t, "from-config", s.Get(IndicatorsAPIKey, "from-config"))
	assert.Equal(t, "from-file", s.Get(IndicatorsAPIKey, ""))
	assert.Empty(t, s.Get("absent", ""))
}

func TestSecrets_KeysSorted(t *testing.T) {
	s := Secrets{"b": "1", "a": "2"}
	assert.Equal(t, []string{"a", "b"}, s.Keys())
}
