// Package config parses the flags shared by every gemini command: how to
// reach the wide-column store backend and which similarity mode to run in.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/peterbourgon/ff/v3"

	"github.com/afcarl/gemini/store"
	"github.com/afcarl/gemini/wmh"
)

// Backend holds the flags every command needs to reach the index: --host,
// --port, --keyspace, plus the similarity --mode.
type Backend struct {
	Host     string
	Port     int
	Keyspace string
	Mode     string
	Timeout  time.Duration
}

// Register adds the shared backend/mode flags to fs.
func (b *Backend) Register(fs *flag.FlagSet) {
	fs.StringVar(&b.Host, "host", "127.0.0.1", "backend host")
	fs.IntVar(&b.Port, "port", 9042, "backend port")
	fs.StringVar(&b.Keyspace, "keyspace", "gemini", "backend keyspace")
	fs.StringVar(&b.Mode, "mode", "file", "similarity mode: file or func")
	fs.DurationVar(&b.Timeout, "timeout", 10*time.Second, "backend query timeout")
}

// ParseWithEnv parses fs against args, then overlays any GEMINI_*
// environment variable onto an unset flag. Every command's main wraps its
// flag.FlagSet this way.
func ParseWithEnv(fs *flag.FlagSet, args []string) error {
	return ff.Parse(fs, args, ff.WithEnvVarPrefix("GEMINI"))
}

// StoreConfig converts the parsed host/port/keyspace/timeout into a
// store.Config ready for store.NewCQLIndex.
func (b *Backend) StoreConfig() store.Config {
	return store.Config{
		Hosts:    []string{fmt.Sprintf("%s:%d", b.Host, b.Port)},
		Keyspace: b.Keyspace,
		Timeout:  b.Timeout,
	}
}

// WMHMode resolves --mode into the wmh.Mode it names.
func (b *Backend) WMHMode() (wmh.Mode, error) {
	m, ok := wmh.ModeByName(b.Mode)
	if !ok {
		return wmh.Mode{}, fmt.Errorf("unknown mode %q: must be file or func", b.Mode)
	}
	return m, nil
}
