package graph_test

import (
	"strings"
	"testing"

	"github.com/millrace/flume/internal/presentation/graph"
	"github.com/millrace/flume/pkg/config"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.Global
		overlay  *graph.Overlay
		contains []string
		absent   []string
	}{
		{
			name: "Domain Shape",
			cfg: &config.Global{Domains: map[string]config.Domain{
				"churn": {Name: "Churn Scoring", Enabled: true},
			}},
			contains: []string{
				`churn[["Churn Scoring"]]`,
			},
		},
		{
			name: "File Dataset Edges",
			cfg: &config.Global{Domains: map[string]config.Domain{
				"churn": {
					Name:    "Churn",
					Enabled: true,
					Inputs: map[string]config.IOSpec{
						"customers": {Format: config.FormatCSV, Path: "data/customers.csv"},
					},
					Outputs: map[string]config.IOSpec{
						"scores": {Format: config.FormatCSV, Path: "out/scores.csv"},
					},
				},
			}},
			contains: []string{
				`csv_data_customers_csv[/"data/customers.csv"/]`,
				`csv_data_customers_csv -- "customers" --> churn`,
				`churn -- "scores" --> csv_out_scores_csv`,
			},
		},
		{
			name: "Store Dataset Hides DSN",
			cfg: &config.Global{Domains: map[string]config.Domain{
				"churn": {
					Name:    "Churn",
					Enabled: true,
					Outputs: map[string]config.IOSpec{
						"scores": {
							Format:  config.FormatSQL,
							Path:    "postgres://user:secret@db/warehouse",
							Options: map[string]any{"table": "churn_scores"},
						},
					},
				},
			}},
			contains: []string{
				`[("sql: churn_scores")]`,
			},
			absent: []string{"secret"},
		},
		{
			name: "Disabled Domain Uses Dotted Edges",
			cfg: &config.Global{Domains: map[string]config.Domain{
				"churn": {
					Name:    "Churn",
					Enabled: false,
					Inputs: map[string]config.IOSpec{
						"customers": {Format: config.FormatCSV, Path: "data/customers.csv"},
					},
				},
			}},
			contains: []string{
				`-. "customers" .->`,
			},
		},
		{
			name: "Schedule Annotation",
			cfg: &config.Global{Domains: map[string]config.Domain{
				"churn": {
					Name:     "Churn",
					Enabled:  true,
					Schedule: config.Schedule{Enabled: true, Cron: "0 2 * * *"},
				},
			}},
			contains: []string{
				`⏱️ 0 2 * * *`,
			},
		},
		{
			name: "Overlay Styles",
			cfg: &config.Global{Domains: map[string]config.Domain{
				"churn": {Name: "Churn", Enabled: true},
			}},
			overlay: &graph.Overlay{Selected: []string{"churn"}},
			contains: []string{
				"classDef selected",
				"class churn selected;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.cfg, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, leak := range tt.absent {
				if strings.Contains(got, leak) {
					t.Errorf("GenerateMermaid() = \n%v\nMust not contain: %v", got, leak)
				}
			}
		})
	}
}
