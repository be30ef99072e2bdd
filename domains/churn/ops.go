package churn

import "github.com/millrace/flume/pkg/tabular"

// ComputeScores scores each customer by transaction volume relative to the
// most active customer: no activity scores 1, the busiest customer scores
// 0. Customers without transactions count as zero activity; when nobody
// has any, everyone scores 1.
func ComputeScores(customers, transactions *tabular.Frame, threshold float64) *tabular.Frame {
	totals := make(map[string]float64)
	for _, row := range transactions.Rows() {
		id := tabular.String(row["customer_id"])
		amount, _ := tabular.Float(row["amount"])
		totals[id] += amount
	}

	var maxAmount float64
	for _, row := range customers.Rows() {
		if total := totals[tabular.String(row["customer_id"])]; total > maxAmount {
			maxAmount = total
		}
	}
	if maxAmount == 0 {
		maxAmount = 1.0
	}

	scores := tabular.NewFrame("customer_id", "churn_probability", "is_high_risk")
	for _, row := range customers.Rows() {
		id := tabular.String(row["customer_id"])
		probability := clamp(1.0-totals[id]/maxAmount, 0, 1)
		scores.Append(tabular.Row{
			"customer_id":       id,
			"churn_probability": probability,
			"is_high_risk":      probability > threshold,
		})
	}
	return scores
}

// ComputeMetrics folds scores into a two-row summary: how many customers
// were scored and how many are flagged high risk.
func ComputeMetrics(scores *tabular.Frame) *tabular.Frame {
	var highRisk int64
	for _, row := range scores.Rows() {
		if risk, _ := row["is_high_risk"].(bool); risk {
			highRisk++
		}
	}
	metrics := tabular.NewFrame("metric", "value")
	metrics.Append(
		tabular.Row{"metric": "customers", "value": int64(scores.Len())},
		tabular.Row{"metric": "high_risk", "value": highRisk},
	)
	return metrics
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
