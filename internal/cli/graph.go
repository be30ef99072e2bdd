package cli

import (
	"fmt"
	"os"

	"github.com/millrace/flume/internal/engine"
	"github.com/millrace/flume/internal/presentation/graph"
)

// GraphOptions contains the configuration for the graph command.
type GraphOptions struct {
	ConfigPath string
}

// Graph prints a Mermaid diagram of the configured domains and the datasets
// they exchange, highlighting the domains the active filters select.
func Graph(opts GraphOptions) error {
	cfg, skipped, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	for _, sk := range skipped {
		fmt.Fprintf(os.Stderr, "warning: %v\n", sk)
	}

	overlay := &graph.Overlay{}
	for _, sel := range engine.Select(cfg, nil) {
		if sel.Domain.Enabled {
			overlay.Selected = append(overlay.Selected, sel.ID)
		}
	}
	fmt.Print(graph.GenerateMermaid(cfg, overlay))
	return nil
}
