package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/millrace/flume/internal/logging"
	"github.com/millrace/flume/internal/schedule"
	"github.com/millrace/flume/pkg/config"
)

// Overlay contains selection state to visualize on the graph.
type Overlay struct {
	Selected []string
}

// GenerateMermaid produces a Mermaid flowchart of the configured domains and
// the datasets they exchange. It applies semantic styling:
// - Domain: [[Subroutine]]
// - File dataset: [/Parallelogram/]
// - Store dataset (sql, redis): [(Cylinder)]
// Edges carry the logical I/O key; a disabled domain connects with dotted
// lines. Overlay styles highlight the domains the active filters select.
func GenerateMermaid(cfg *config.Global, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	seen := make(map[string]bool)
	var datasetIDs []string
	datasets := make(map[string]config.IOSpec)
	nop := logging.NewNop()

	for _, id := range sortedDomainIDs(cfg.Domains) {
		d := cfg.Domains[id]
		safeID := sanitizeMermaidID(id)

		label := fmt.Sprintf("    %s[[\"%s\"]]\n", safeID, d.Name)
		if trigger, err := schedule.BuildTrigger(cfg, id, nop); err == nil && trigger != nil {
			// Annotate scheduled domains with their resolved cron line
			label = fmt.Sprintf("    %s[[\"%s <br/> ⏱️ %s\"]]\n", safeID, d.Name, trigger.Expr)
		}
		sb.WriteString(label)

		arrow := func(key string) string {
			if d.Enabled {
				return fmt.Sprintf("-- \"%s\" -->", key)
			}
			return fmt.Sprintf("-. \"%s\" .->", key)
		}

		for _, key := range sortedKeys(d.Inputs) {
			dsID := datasetID(d.Inputs[key])
			if !seen[dsID] {
				seen[dsID] = true
				datasetIDs = append(datasetIDs, dsID)
				datasets[dsID] = d.Inputs[key]
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", dsID, arrow(key), safeID))
		}
		for _, key := range sortedKeys(d.Outputs) {
			dsID := datasetID(d.Outputs[key])
			if !seen[dsID] {
				seen[dsID] = true
				datasetIDs = append(datasetIDs, dsID)
				datasets[dsID] = d.Outputs[key]
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow(key), dsID))
		}
	}

	if len(datasetIDs) > 0 {
		sb.WriteString("\n")
		for _, dsID := range datasetIDs {
			spec := datasets[dsID]
			opener, closer := "[/", "/]"
			if spec.Format == config.FormatSQL || spec.Format == config.FormatRedis {
				opener, closer = "[(", ")]" // Cylinder
			}
			sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", dsID, opener, datasetLabel(spec), closer))
		}
	}

	if overlay != nil && len(overlay.Selected) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme
		sb.WriteString("    classDef selected fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")

		styled := make(map[string]bool)
		for _, id := range overlay.Selected {
			safeID := sanitizeMermaidID(id)
			if safeID != "" && !styled[safeID] {
				styled[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s selected;\n", safeID))
			}
		}
	}

	return sb.String()
}

// datasetLabel names a dataset node without leaking connection strings:
// sql and redis descriptors are labelled by table or key, never by DSN.
func datasetLabel(spec config.IOSpec) string {
	switch spec.Format {
	case config.FormatSQL:
		if table, ok := spec.Options["table"].(string); ok && table != "" {
			return "sql: " + table
		}
		return "sql query"
	case config.FormatRedis:
		if key, ok := spec.Options["key"].(string); ok && key != "" {
			return "redis: " + key
		}
		return "redis"
	default:
		return spec.Path
	}
}

func datasetID(spec config.IOSpec) string {
	return sanitizeMermaidID(string(spec.Format) + "_" + datasetLabel(spec))
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, ":", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

func sortedDomainIDs(domains map[string]config.Domain) []string {
	ids := make([]string, 0, len(domains))
	for id := range domains {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedKeys(specs map[string]config.IOSpec) []string {
	keys := make([]string, 0, len(specs))
	for key := range specs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
