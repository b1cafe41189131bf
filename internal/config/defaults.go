package config

const (
	defaultSourceDir          = "scraped_data"
	defaultProvidersDir       = "providers"
	defaultOutputDir          = "metadata"
	defaultISOTable           = "metadata/countries_iso_map.json"
	defaultLogDir             = "~/.local/share/radiocat/logs"
	defaultStateDir           = "~/.local/share/radiocat"
	defaultProbeBinary        = "ffprobe"
	defaultProbeTimeout       = 15
	defaultProbeConcurrency   = 40
	defaultProbeProgressEvery = 100
	defaultUserAgent          = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	defaultReferer            = "https://onlineradiobox.com/"
	defaultStoreFile          = "catalog.db"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"

	catalogFileName    = "master_stations.json"
	duplicatesFileName = "duplicates.json"
)

var defaultIngestProviders = []string{"onlineradiobox", "mytuner"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceDir:    defaultSourceDir,
			ProvidersDir: defaultProvidersDir,
			OutputDir:    defaultOutputDir,
			ISOTable:     defaultISOTable,
			LogDir:       defaultLogDir,
			StateDir:     defaultStateDir,
		},
		Ingest: Ingest{
			Providers: append([]string(nil), defaultIngestProviders...),
		},
		Probe: Probe{
			Binary:         defaultProbeBinary,
			TimeoutSeconds: defaultProbeTimeout,
			Concurrency:    defaultProbeConcurrency,
			UserAgent:      defaultUserAgent,
			Referer:        defaultReferer,
			ProgressEvery:  defaultProbeProgressEvery,
		},
		Policy: Policy{
			RetryBroken: true,
		},
		Store: Store{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
