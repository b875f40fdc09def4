// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DefaultSourceFile is the occurrence file name inside each dataset's raw
// directory (Darwin Core archive layout).
const DefaultSourceFile = "occurrence.txt"

// ColumnSpec is the ordered list of column names a dataset keeps.
type ColumnSpec []string

// Contains reports whether name is part of the spec.
func (s ColumnSpec) Contains(name string) bool {
	for _, c := range s {
		if c == name {
			return true
		}
	}
	return false
}

// CleaningPolicy names the row-validity predicate applied after projection.
type CleaningPolicy string

const (
	// PolicyDropMissing drops any row with a missing value in any kept column.
	PolicyDropMissing CleaningPolicy = "drop-missing"

	// PolicyRequire drops rows with a missing value in one of
	// CleaningConfig.Required; other kept columns may be null.
	PolicyRequire CleaningPolicy = "require"
)

// CleaningConfig selects how rows are filtered after projection.
type CleaningConfig struct {
	// Policy is drop-missing (default) or require.
	Policy CleaningPolicy `json:"policy,omitempty" yaml:"policy,omitempty" mapstructure:"policy"`

	// Required lists the columns that must be present under the require policy.
	Required []string `json:"required,omitempty" yaml:"required,omitempty" mapstructure:"required"`
}

// DatasetConfig describes one dataset pipeline instance.
type DatasetConfig struct {
	// Name identifies the dataset (e.g. "dataset1"); it also names the
	// default output file and the seeded collection.
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// Subdir is the dataset directory under both the raw and processed roots.
	Subdir string `json:"subdir" yaml:"subdir" mapstructure:"subdir"`

	// SourceFile is the file name inside the raw directory (default occurrence.txt).
	SourceFile string `json:"source_file,omitempty" yaml:"source_file,omitempty" mapstructure:"source_file"`

	// OutputFile is the file name inside the processed directory (default <name>.json).
	OutputFile string `json:"output_file,omitempty" yaml:"output_file,omitempty" mapstructure:"output_file"`

	// Columns is the Column Selection Spec.
	Columns ColumnSpec `json:"columns" yaml:"columns" mapstructure:"columns"`

	// Cleaning selects the row-validity predicate.
	Cleaning CleaningConfig `json:"cleaning,omitempty" yaml:"cleaning,omitempty" mapstructure:"cleaning"`

	// SourcePath overrides the resolved source path when set.
	SourcePath string `json:"source_path,omitempty" yaml:"source_path,omitempty" mapstructure:"source_path"`

	// OutputPath overrides the resolved destination path when set.
	OutputPath string `json:"output_path,omitempty" yaml:"output_path,omitempty" mapstructure:"output_path"`
}

// StoreConfig holds settings for the seed targets and run history.
type StoreConfig struct {
	// Path is the SQLite database file (default data/index/occurrence.db).
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// MongoURI is the MongoDB connection string.
	MongoURI string `json:"mongo_uri,omitempty" yaml:"mongo_uri,omitempty" mapstructure:"mongo_uri"`

	// MongoDatabase is the MongoDB database name. Empty means the database
	// named in MongoURI, else "sih".
	MongoDatabase string `json:"mongo_database,omitempty" yaml:"mongo_database,omitempty" mapstructure:"mongo_database"`
}

// ServeConfig holds settings for the HTTP API.
type ServeConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`
}

// LogConfig holds settings for the diagnostic logger.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is text or json.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all settings read from the config file, environment and flags.
type Config struct {
	// RawDir is the root containing one directory per dataset with its source file.
	RawDir string `json:"raw_dir" yaml:"raw_dir" mapstructure:"raw_dir"`

	// ProcessedDir is the root receiving one directory per dataset with its output.
	ProcessedDir string `json:"processed_dir" yaml:"processed_dir" mapstructure:"processed_dir"`

	// Datasets is the catalog. Empty means the built-in catalog.
	Datasets []DatasetConfig `json:"datasets,omitempty" yaml:"datasets,omitempty" mapstructure:"datasets"`

	Store StoreConfig `json:"store" yaml:"store" mapstructure:"store"`
	Serve ServeConfig `json:"serve" yaml:"serve" mapstructure:"serve"`
	Log   LogConfig   `json:"log" yaml:"log" mapstructure:"log"`
}
