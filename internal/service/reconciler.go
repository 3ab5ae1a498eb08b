package service

import "github.com/scottyfin/scotty-core-go/internal/domain"

// maxLocalWithQuest caps how many local achievements follow a backend
// quest in the display list.
const maxLocalWithQuest = 2

// ReconcileAchievements merges the backend's active quest (if any)
// with the locally generated achievement set. A quest always leads the
// list, followed by at most two local entries; without a quest the
// full local set is used.
func ReconcileAchievements(quest *domain.Quest, localSet []domain.Achievement) []domain.Achievement {
	if quest == nil {
		return localSet
	}

	out := make([]domain.Achievement, 0, maxLocalWithQuest+1)
	out = append(out, quest.ToAchievement())

	n := len(localSet)
	if n > maxLocalWithQuest {
		n = maxLocalWithQuest
	}
	out = append(out, localSet[:n]...)
	return out
}
