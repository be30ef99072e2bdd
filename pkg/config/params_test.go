package config

import "testing"

func TestDecodeParams(t *testing.T) {
	type churnParams struct {
		ScoreThreshold float64 `mapstructure:"score_threshold"`
		Label          string  `mapstructure:"label"`
	}

	out := churnParams{ScoreThreshold: 0.7}
	err := DecodeParams(map[string]any{"label": "gold"}, &out)
	if err != nil {
		t.Fatalf("DecodeParams() error = %v", err)
	}
	if out.ScoreThreshold != 0.7 {
		t.Errorf("absent key should keep the default, got %v", out.ScoreThreshold)
	}
	if out.Label != "gold" {
		t.Errorf("Label = %q", out.Label)
	}
}

func TestDecodeParams_WeakTyping(t *testing.T) {
	type churnParams struct {
		ScoreThreshold float64 `mapstructure:"score_threshold"`
	}

	var out churnParams
	err := DecodeParams(map[string]any{"score_threshold": "0.9"}, &out)
	if err != nil {
		t.Fatalf("DecodeParams() error = %v", err)
	}
	if out.ScoreThreshold != 0.9 {
		t.Errorf("ScoreThreshold = %v, want 0.9 from string input", out.ScoreThreshold)
	}
}
