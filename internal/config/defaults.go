package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "sqlite"
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/kontrakt/data/db/contracts.db"
	}
	if cfg.Storage.ContractsDir == "" {
		cfg.Storage.ContractsDir = "/usr/local/var/kontrakt/data/contracts"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = "/usr/local/var/kontrakt/data/indices/bleve"
	}
	if cfg.Oracle.BaseURL == "" {
		cfg.Oracle.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Oracle.Model == "" {
		cfg.Oracle.Model = "gpt-4o-mini"
	}
	if cfg.Oracle.MaxTokens == 0 {
		cfg.Oracle.MaxTokens = 4096
	}
	if cfg.Oracle.TimeoutSeconds == 0 {
		cfg.Oracle.TimeoutSeconds = 120
	}
	if cfg.Parse.MaxTextBytes == 0 {
		cfg.Parse.MaxTextBytes = 512 * 1024
	}
	if cfg.Risk.CacheTTLMinutes == 0 {
		cfg.Risk.CacheTTLMinutes = 30
	}
	if cfg.Batch.DelaySeconds == 0 {
		cfg.Batch.DelaySeconds = 2
	}
	if cfg.Batch.Extensions == nil {
		cfg.Batch.Extensions = []string{".txt", ".md", ".pdf", ".docx", ".xlsx"}
	}
}
