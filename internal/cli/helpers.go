package cli

import (
	"encoding/json"
	"io"

	"github.com/roadmap-labs/roadmap/internal/daemon"
)

// withDaemon opens the local state, runs fn and closes it again.
func withDaemon(fn func(d *daemon.Daemon) error) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()
	return fn(d)
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
