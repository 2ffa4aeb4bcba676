package progress

import "github.com/adhirath/backend/models"

// Migrate repairs a stored record written by older clients: videos and
// pathways without a category default to brainPower, pathway identity
// falls back from pathwayId to the legacy id and title fields, a
// missing totalActivities defaults to 1, and duplicate pathway entries
// are dropped (first occurrence wins). This runs before events are
// applied, so every stored entry carries a canonical pathway key; the
// engine still resolves legacy aliases on incoming event keys.
func Migrate(rec *models.ProgressRecord) {
	for i := range rec.VideoProgress {
		if !rec.VideoProgress[i].Category.Valid() {
			rec.VideoProgress[i].Category = models.CategoryBrainPower
		}
	}

	seen := make(map[string]bool, len(rec.PathwayProgress))
	pathways := make([]models.PathwayEntry, 0, len(rec.PathwayProgress))
	for _, p := range rec.PathwayProgress {
		if p.PathwayID == "" {
			if p.LegacyID != "" {
				p.PathwayID = p.LegacyID
			} else {
				p.PathwayID = p.Title
			}
		}
		if !p.Category.Valid() {
			p.Category = models.CategoryBrainPower
		}
		if p.TotalActivities == 0 {
			p.TotalActivities = 1
		}
		if p.PathwayID == "" || seen[p.PathwayID] {
			continue
		}
		seen[p.PathwayID] = true
		pathways = append(pathways, p)
	}
	rec.PathwayProgress = pathways
}
