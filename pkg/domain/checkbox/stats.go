package checkbox

import "github.com/specmark/specmark/pkg/domain/document"

// SectionStats is the checked/total tally for one section.
type SectionStats struct {
	Total   int `json:"total"`
	Checked int `json:"checked"`
}

// Stats summarizes checklist completion for one document.
type Stats struct {
	Total      int                     `json:"total"`
	Checked    int                     `json:"checked"`
	Percentage float64                 `json:"percentage"`
	BySection  map[string]SectionStats `json:"by_section"`
}

func computeStats(items []document.ChecklistItem) Stats {
	stats := Stats{BySection: make(map[string]SectionStats)}
	for _, item := range items {
		stats.Total++
		sec := stats.BySection[item.Section]
		sec.Total++
		if item.Checked {
			stats.Checked++
			sec.Checked++
		}
		stats.BySection[item.Section] = sec
	}
	if stats.Total > 0 {
		stats.Percentage = float64(stats.Checked) / float64(stats.Total) * 100
	}
	return stats
}
