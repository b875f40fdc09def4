// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string
		missing bool
		want    map[string]string
	}{
		{
			name:    "reads variables and trims whitespace",
			content: "MONGO_URI=mongodb://db.internal:27017\nPORT=5000  \n",
			want: map[string]string{
				"MONGO_URI": "mongodb://db.internal:27017",
				"PORT":      "5000",
			},
		},
		{
			name:    "returns empty map for missing file",
			missing: true,
			want:    map[string]string{},
		},
		{
			name:    "skips comments and empty values",
			content: "# local overrides\nMONGO_URI=\nOCCURRENCE_ETL_LOG_LEVEL=debug\n",
			want: map[string]string{
				"OCCURRENCE_ETL_LOG_LEVEL": "debug",
			},
		},
		{
			name:    "unquotes values",
			content: "OCCURRENCE_ETL_RAW_DIR=\"/srv/raw data\"\n",
			want: map[string]string{
				"OCCURRENCE_ETL_RAW_DIR": "/srv/raw data",
			},
		},
		{
			name:    "returns empty map for empty file",
			content: "",
			want:    map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultFile)
			if !tt.missing {
				require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			}

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyKeepsExistingEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MONGO_URI", "")
	require.NoError(t, os.Unsetenv("MONGO_URI"))
	t.Setenv("OCCURRENCE_ETL_LOG_FORMAT", "")
	require.NoError(t, os.Unsetenv("OCCURRENCE_ETL_LOG_FORMAT"))

	applied, err := Apply(map[string]string{
		"PORT":                      "5000",
		"MONGO_URI":                 "mongodb://db.internal:27017",
		"OCCURRENCE_ETL_LOG_FORMAT": "json",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"MONGO_URI", "OCCURRENCE_ETL_LOG_FORMAT"}, applied)
	assert.Equal(t, "9090", os.Getenv("PORT"))
	assert.Equal(t, "mongodb://db.internal:27017", os.Getenv("MONGO_URI"))
	assert.Equal(t, "json", os.Getenv("OCCURRENCE_ETL_LOG_FORMAT"))
}

func TestApplyEmpty(t *testing.T) {
	applied, err := Apply(nil)
	require.NoError(t, err)
	assert.Empty(t, applied)
}
