package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file created by `saft init`.
const FileName = "saft.yaml"

// Storage backends for tenant data.
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

// Config represents the top-level saft.yaml configuration.
type Config struct {
	Software  SoftwareConfig  `yaml:"software"`
	AuditFile AuditFileConfig `yaml:"audit_file"`
	Accounts  AccountCodes    `yaml:"accounts"`
	Journal   JournalSettings `yaml:"journal"`
	Storage   StorageConfig   `yaml:"storage"`
	Fetch     FetchConfig     `yaml:"fetch"`
}

// SoftwareConfig identifies the producing software in the file header.
type SoftwareConfig struct {
	CompanyName string `yaml:"company_name"`
	ID          string `yaml:"id"`
	Version     string `yaml:"version"`
}

// AuditFileConfig holds header values that are not tenant data.
type AuditFileConfig struct {
	Version            string `yaml:"version"` // "1.0" or "1.01_01"
	Country            string `yaml:"country"`
	Currency           string `yaml:"currency"`
	TaxAccountingBasis string `yaml:"tax_accounting_basis"`
}

// AccountCodes names the chart-of-accounts codes the invoice posting uses.
type AccountCodes struct {
	Receivables string `yaml:"receivables"`
	Revenue     string `yaml:"revenue"`
	VATPayable  string `yaml:"vat_payable"`
}

// Required returns the codes in posting order.
func (c AccountCodes) Required() []string {
	return []string{c.Receivables, c.Revenue, c.VATPayable}
}

// JournalSettings describes the sales journal that carries invoice postings.
type JournalSettings struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	Type        string `yaml:"type"`
}

// StorageConfig selects where tenant data is read and exports are recorded.
type StorageConfig struct {
	Driver      string `yaml:"driver"`
	DataDir     string `yaml:"data_dir,omitempty"`
	ExportsDir  string `yaml:"exports_dir,omitempty"`
	DatabaseURL string `yaml:"database_url,omitempty"`
}

// FetchConfig bounds the concurrent tenant reads.
type FetchConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// Load reads a saft.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Software: SoftwareConfig{
			CompanyName: "Cleared",
			ID:          "saft",
			Version:     "1.0",
		},
		AuditFile: AuditFileConfig{
			Version:            "1.01_01",
			Country:            "RO",
			Currency:           "RON",
			TaxAccountingBasis: "A",
		},
		Accounts: AccountCodes{
			Receivables: "4111",
			Revenue:     "707",
			VATPayable:  "4427",
		},
		Journal: JournalSettings{
			ID:          "VZ",
			Description: "Jurnal de vanzari",
			Type:        "VZ",
		},
		Storage: StorageConfig{
			Driver:     StorageFile,
			DataDir:    "data",
			ExportsDir: "exports",
		},
		Fetch: FetchConfig{
			Timeout: 10 * time.Second,
		},
	}
}

// Validate checks the values the generator depends on.
func (c *Config) Validate() error {
	for _, code := range c.Accounts.Required() {
		if code == "" {
			return fmt.Errorf("config: accounts: receivables, revenue and vat_payable must all be set")
		}
	}
	switch c.AuditFile.Version {
	case "1.0", "1.01_01":
	default:
		return fmt.Errorf("config: unsupported audit_file.version %q", c.AuditFile.Version)
	}
	switch c.Storage.Driver {
	case StorageFile, StoragePostgres:
	default:
		return fmt.Errorf("config: unknown storage.driver %q", c.Storage.Driver)
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("config: fetch.timeout must be positive")
	}
	return nil
}
