package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/muesli/termenv"

	"github.com/millrace/flume/internal/engine"
	"github.com/millrace/flume/internal/logging"
	"github.com/millrace/flume/internal/schedule"
)

// ListOptions contains the configuration for the list command.
type ListOptions struct {
	ConfigPath string
}

// List prints every configured domain with its selection state, tags and
// resolved cron schedule.
func List(opts ListOptions) error {
	cfg, skipped, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	for _, sk := range skipped {
		fmt.Fprintf(os.Stderr, "warning: %v\n", sk)
	}

	selected := make(map[string]bool)
	for _, sel := range engine.Select(cfg, nil) {
		selected[sel.ID] = true
	}

	ids := make([]string, 0, len(cfg.Domains))
	for id := range cfg.Domains {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	p := termenv.ColorProfile()
	nop := logging.NewNop()
	runnable := 0
	for _, id := range ids {
		d := cfg.Domains[id]
		marker := termenv.String("○").Foreground(p.Color("#6b7280"))
		if selected[id] && d.Enabled {
			marker = termenv.String("●").Foreground(p.Color("#4ade80"))
			runnable++
		}

		line := fmt.Sprintf("%s %-20s %s", marker, id, d.Name)
		if !d.Enabled {
			line += "  (disabled)"
		}
		if len(d.Tags) > 0 {
			line += "  tags=" + strings.Join(d.Tags, ",")
		}
		if trigger, err := schedule.BuildTrigger(cfg, id, nop); err == nil && trigger != nil {
			line += fmt.Sprintf("  cron=%q", trigger.Expr)
		}
		fmt.Println(line)
	}

	fmt.Printf("\n%d domains, %d runnable\n", len(ids), runnable)
	return nil
}
