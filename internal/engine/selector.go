package engine

import (
	"sort"

	"github.com/millrace/flume/pkg/config"
)

// Selected pairs a domain id with its configuration, in the order execution
// will see it.
type Selected struct {
	ID     string
	Domain config.Domain
}

// Select filters the configured domains down to the ones this invocation
// should consider: an explicit allow-list first (the scheduler passes a
// single id), then active_domains, then tag intersection. Ids are ordered
// lexicographically, so selection over the same config is stable.
//
// An empty result is not an error; the engine simply does nothing.
// Enablement is not applied here. Disabled domains stay selected so the
// engine reports them as skipped instead of silently dropping them.
func Select(cfg *config.Global, allowed []string) []Selected {
	allowSet := toSet(allowed)
	activeSet := toSet(cfg.ActiveDomains)
	tagSet := toSet(cfg.ActiveTags)

	ids := make([]string, 0, len(cfg.Domains))
	for id := range cfg.Domains {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []Selected
	for _, id := range ids {
		domain := cfg.Domains[id]
		if allowSet != nil {
			if _, ok := allowSet[id]; !ok {
				continue
			}
		}
		if activeSet != nil {
			if _, ok := activeSet[id]; !ok {
				continue
			}
		}
		if tagSet != nil && !intersects(tagSet, domain.Tags) {
			continue
		}
		out = append(out, Selected{ID: id, Domain: domain})
	}
	return out
}

func toSet(items []string) map[string]struct{} {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

func intersects(set map[string]struct{}, items []string) bool {
	for _, item := range items {
		if _, ok := set[item]; ok {
			return true
		}
	}
	return false
}
