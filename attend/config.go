package attend

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration accepts Go duration strings ("5s", "50ms") in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// SheetConfig locates the attendance worksheet.
type SheetConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	SheetName       string `yaml:"sheet_name"`
}

// FileConfig is the YAML file layout. Flags in cmd/rfid-attendance override
// individual fields.
type FileConfig struct {
	Readers []ReaderConfig `yaml:"readers"`
	Sheet   SheetConfig    `yaml:"sheet"`

	ArchiveDB string `yaml:"archive_db"`
	AuditFile string `yaml:"audit_file"`

	FlushInterval Duration `yaml:"flush_interval"`
	PollDelay     Duration `yaml:"poll_delay"`

	MetricsAddr string `yaml:"metrics_addr"`
	Debug       bool   `yaml:"debug"`
}

func LoadConfig(path string) (*FileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields the pipeline cannot start without.
func (c *FileConfig) Validate() error {
	if len(c.Readers) == 0 {
		return ErrNoReaders
	}
	if len(c.Readers) > maxReaders {
		return ErrTooManyReaders
	}
	for i, r := range c.Readers {
		if strings.TrimSpace(r.Addr) == "" {
			return fmt.Errorf("readers[%d]: addr is required", i)
		}
	}
	if strings.TrimSpace(c.Sheet.SpreadsheetID) == "" {
		return fmt.Errorf("sheet.spreadsheet_id is required")
	}
	if strings.TrimSpace(c.Sheet.SheetName) == "" {
		return fmt.Errorf("sheet.sheet_name is required")
	}
	return nil
}
