package usage

// StageStats aggregates ledger rows for one pipeline stage.
type StageStats struct {
	Stage        string  `json:"stage"`
	Calls        int     `json:"calls"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
}

// Stats summarizes the whole ledger.
type Stats struct {
	TotalCalls        int          `json:"total_calls"`
	TotalInputTokens  int          `json:"total_input_tokens"`
	TotalOutputTokens int          `json:"total_output_tokens"`
	TotalCostUSD      float64      `json:"total_cost_usd"`
	ByStage           []StageStats `json:"by_stage"`
}

// Stats aggregates all recorded usage, grouped by stage.
func (m *Meter) Stats() (*Stats, error) {
	rows, err := m.db.Query(`SELECT stage, COUNT(*), SUM(input_tokens), SUM(output_tokens), SUM(cost_usd)
		FROM llm_usage GROUP BY stage ORDER BY stage`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &Stats{}
	for rows.Next() {
		var s StageStats
		if err := rows.Scan(&s.Stage, &s.Calls, &s.InputTokens, &s.OutputTokens, &s.CostUSD); err != nil {
			return nil, err
		}
		stats.ByStage = append(stats.ByStage, s)
		stats.TotalCalls += s.Calls
		stats.TotalInputTokens += s.InputTokens
		stats.TotalOutputTokens += s.OutputTokens
		stats.TotalCostUSD += s.CostUSD
	}
	return stats, rows.Err()
}
