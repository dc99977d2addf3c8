package config

import (
	"flag"
	"os"
	"time"

	"github.com/avelichko/formdesk/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-r string   database driver: sqlite3, mysql, or pgx
//	-d string   database DSN
//	-s string   session cookie signing secret
//	-i int      minimum submit interval, seconds
//	-f string   JSONL archive directory (empty disables archiving)
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with the -c/-config flags owned by
// the JSON overlay.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-r", "-d", "-s", "-i", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.Addr, "a", config.Addr, "address and port to run server")
	fs.StringVar(&config.DatabaseDriver, "r", config.DatabaseDriver, "database driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.ArchiveDir, "f", config.ArchiveDir, "archive directory")

	minSubmitInterval := fs.Int("i", int(config.MinSubmitInterval.Seconds()), "min_submit_interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.MinSubmitInterval = time.Duration(*minSubmitInterval) * time.Second
}
