package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type SourceToggle struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

type EmailSource struct {
	Enabled          bool     `yaml:"enabled" json:"enabled"`
	IMAPHost         string   `yaml:"imap_host" json:"imap_host"`
	IMAPPort         int      `yaml:"imap_port" json:"imap_port"`
	Username         string   `yaml:"username" json:"username"`
	Mailbox          string   `yaml:"mailbox" json:"mailbox"`
	SearchSubjectAny []string `yaml:"search_subject_any" json:"search_subject_any"`
	LookbackDays     int      `yaml:"lookback_days" json:"lookback_days"`
}

type Config struct {
	App struct {
		Addr    string `yaml:"addr" json:"addr"`
		DataDir string `yaml:"data_dir" json:"data_dir"`
	} `yaml:"app" json:"app"`

	Scheduler struct {
		Cron     string `yaml:"cron" json:"cron"`
		Timezone string `yaml:"timezone" json:"timezone"`
	} `yaml:"scheduler" json:"scheduler"`

	Search struct {
		Term               string   `yaml:"term" json:"term"`
		Locations          []string `yaml:"locations" json:"locations"`
		ResultsPerLocation int      `yaml:"results_per_location" json:"results_per_location"`
		MaxAgeHours        int      `yaml:"max_age_hours" json:"max_age_hours"`
	} `yaml:"search" json:"search"`

	Sources struct {
		Naukri   SourceToggle `yaml:"naukri" json:"naukri"`
		LinkedIn SourceToggle `yaml:"linkedin" json:"linkedin"`
		Email    EmailSource  `yaml:"email" json:"email"`
	} `yaml:"sources" json:"sources"`

	Filters struct {
		RemoteOK       bool     `yaml:"remote_ok" json:"remote_ok"`
		LocationsAllow []string `yaml:"locations_allow" json:"locations_allow"`
		LocationsBlock []string `yaml:"locations_block" json:"locations_block"`
		KeywordsAny    []string `yaml:"keywords_any" json:"keywords_any"`
	} `yaml:"filters" json:"filters"`

	Supabase struct {
		Table          string `yaml:"table" json:"table"`
		BatchSize      int    `yaml:"batch_size" json:"batch_size"`
		TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
	} `yaml:"supabase" json:"supabase"`

	Rate struct {
		PerHostRPS float64 `yaml:"per_host_rps" json:"per_host_rps"`
		Burst      int     `yaml:"burst" json:"burst"`
	} `yaml:"rate" json:"rate"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
