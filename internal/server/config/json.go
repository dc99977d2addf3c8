package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/avelichko/formdesk/internal/flagx"
	"github.com/avelichko/formdesk/internal/timex"
)

// JsonConfig is the intermediate DTO used only for reading JSON
// configuration files. Interval fields use timex.Duration so both "5s" and
// integer nanoseconds parse; values are then copied into the runtime Config.
type JsonConfig struct {
	Addr              string         `json:"addr"`
	DatabaseDriver    string         `json:"database_driver"`
	DatabaseDSN       string         `json:"database_dsn"`
	SecretKey         string         `json:"secret_key"`
	MinSubmitInterval timex.Duration `json:"min_submit_interval"`
	ArchiveDir        string         `json:"archive_dir"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into config. Nothing is loaded when the flag is absent.
// Only fields present in the file override the defaults. Unreadable or
// invalid files panic: a requested config file that cannot be applied is a
// startup error.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.Addr != "" {
		config.Addr = c.Addr
	}
	if c.DatabaseDriver != "" {
		config.DatabaseDriver = c.DatabaseDriver
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.MinSubmitInterval.Duration != 0 {
		config.MinSubmitInterval = time.Duration(c.MinSubmitInterval.Duration)
	}
	if c.ArchiveDir != "" {
		config.ArchiveDir = c.ArchiveDir
	}
}
