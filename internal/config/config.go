package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vknys/ingot/pkg/ingot"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// FileConfig is the YAML shape of a batch configuration file.
type FileConfig struct {
	Task                        string            `yaml:"task"`
	Host                        string            `yaml:"host"`
	Username                    string            `yaml:"username"`
	ContentType                 string            `yaml:"content_type"`
	InputDir                    string            `yaml:"input_dir"`
	InputCSV                    string            `yaml:"input_csv"`
	IDColumn                    string            `yaml:"id_field,omitempty"`
	Delimiter                   string            `yaml:"delimiter,omitempty"`
	Subdelimiter                string            `yaml:"subdelimiter,omitempty"`
	AllowMissingFiles           bool              `yaml:"allow_missing_files,omitempty"`
	AllowTermCreation           bool              `yaml:"allow_adding_terms,omitempty"`
	PagedContentFromDirectories bool              `yaml:"paged_content_from_directories,omitempty"`
	PageSequenceSeparator       string            `yaml:"paged_content_sequence_separator,omitempty"`
	PageContentType             string            `yaml:"paged_content_page_content_type,omitempty"`
	UpdateMode                  string            `yaml:"update_mode,omitempty"`
	CascadeDeleteMedia          bool              `yaml:"delete_media_with_nodes,omitempty"`
	RequestPauseMilliseconds    int               `yaml:"pause,omitempty"`
	FieldTemplates              map[string]string `yaml:"field_templates,omitempty"`
	IgnoreColumns               []string          `yaml:"ignore_csv_columns,omitempty"`
	StartRow                    int               `yaml:"csv_start_row,omitempty"`
	StopRow                     int               `yaml:"csv_stop_row,omitempty"`
	RollbackCSV                 string            `yaml:"rollback_csv,omitempty"`
}

// Load reads a batch configuration file and converts it to a BatchConfig.
// Credentials are not part of the file; the CLI layer resolves them from
// the environment.
func Load(path string) (ingot.BatchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ingot.BatchConfig{}, ErrConfigNotFound
		}
		return ingot.BatchConfig{}, err
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return ingot.BatchConfig{}, err
	}
	return fc.toBatchConfig(), nil
}

// toBatchConfig maps the YAML fields onto the pipeline configuration.
func (fc FileConfig) toBatchConfig() ingot.BatchConfig {
	return ingot.BatchConfig{
		Task:                        ingot.TaskKind(fc.Task),
		Host:                        fc.Host,
		Username:                    fc.Username,
		ContentType:                 fc.ContentType,
		InputDir:                    fc.InputDir,
		InputCSV:                    fc.InputCSV,
		IDColumn:                    fc.IDColumn,
		Delimiter:                   fc.Delimiter,
		Subdelimiter:                fc.Subdelimiter,
		AllowMissingFiles:           fc.AllowMissingFiles,
		AllowTermCreation:           fc.AllowTermCreation,
		PagedContentFromDirectories: fc.PagedContentFromDirectories,
		PageSequenceSeparator:       fc.PageSequenceSeparator,
		PageContentType:             fc.PageContentType,
		UpdateModeOption:            ingot.UpdateMode(fc.UpdateMode),
		CascadeDeleteMedia:          fc.CascadeDeleteMedia,
		RequestPause:                time.Duration(fc.RequestPauseMilliseconds) * time.Millisecond,
		FieldTemplates:              fc.FieldTemplates,
		IgnoreColumns:               fc.IgnoreColumns,
		StartRow:                    fc.StartRow,
		StopRow:                     fc.StopRow,
		RollbackCSVPath:             fc.RollbackCSV,
	}
}
