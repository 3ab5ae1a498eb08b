// Package domain defines the core entities of the Scotty companion core.
// These models are independent of the backend wire format and are the
// canonical shapes read by the presentation layer.
package domain

import (
	"math"
	"time"
)

// ============================================================
// Transactions
// ============================================================

// Transaction is a single money movement. Immutable once fetched or
// generated; aggregate math distinguishes money-in via IsIncoming.
type Transaction struct {
	ID             string    `json:"id"`
	Amount         float64   `json:"amount"` // always >= 0
	Category       Category  `json:"category"`
	Merchant       string    `json:"merchant"`
	Date           time.Time `json:"date"`
	IsSubscription bool      `json:"is_subscription"`
	IsIncoming     bool      `json:"is_incoming"`
}

// ============================================================
// Budgets
// ============================================================

// Frequency is the budgeting period of a BudgetItem.
type Frequency string

const (
	FrequencyDay   Frequency = "day"
	FrequencyWeek  Frequency = "week"
	FrequencyMonth Frequency = "month"
	FrequencyYear  Frequency = "year"
)

// BudgetItem is a per-category spending limit. Spent is never trusted
// from any cache or backend response; it is recomputed client-side
// from the freshest transaction set.
type BudgetItem struct {
	ID                   string    `json:"id"`
	Category             string    `json:"category"` // free-text label, matched against Category for display
	Frequency            Frequency `json:"frequency"`
	LimitAmount          float64   `json:"limit_amount"`
	DerivedDailyLimit    float64   `json:"derived_daily_limit"`
	AdaptiveEnabled      bool      `json:"adaptive_enabled"`
	AdaptiveMaxAdjustPct float64   `json:"adaptive_max_adjust_pct"`
	Spent                float64   `json:"spent"`
}

// ============================================================
// Achievements / Quests
// ============================================================

// AchievementSource records where an achievement came from.
type AchievementSource string

const (
	SourceLocal        AchievementSource = "local"
	SourceBackendQuest AchievementSource = "quest"
)

// Achievement is a gamified challenge. Backend quests are mapped into
// this shape for display; at most one quest leads the list, followed
// by up to two locally generated achievements.
type Achievement struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	TargetAmount  float64           `json:"target_amount,omitempty"`
	CurrentAmount float64           `json:"current_amount,omitempty"`
	Completed     bool              `json:"completed"`
	Category      string            `json:"category,omitempty"`
	Source        AchievementSource `json:"source"`
}

// Quest is the backend's active challenge as it arrives on the wire.
type Quest struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	TargetAmount  float64 `json:"target_amount"`
	CurrentAmount float64 `json:"current_amount"`
	Category      string  `json:"category,omitempty"`
}

// ToAchievement maps a backend quest into the local achievement shape.
func (q *Quest) ToAchievement() Achievement {
	return Achievement{
		ID:            q.ID,
		Title:         q.Title,
		Description:   q.Description,
		TargetAmount:  q.TargetAmount,
		CurrentAmount: q.CurrentAmount,
		Completed:     q.TargetAmount > 0 && q.CurrentAmount >= q.TargetAmount,
		Category:      q.Category,
		Source:        SourceBackendQuest,
	}
}

// ============================================================
// Scotty (the pet)
// ============================================================

// Mood is the coarse four-value discretization of happiness.
type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodContent Mood = "content"
	MoodWorried Mood = "worried"
	MoodSad     Mood = "sad"
)

// ScottyState is the pet's momentary state. Happiness is always
// clamped to [0,100]; FoodCredits never goes negative, a mutation
// that would drive it below zero is refused entirely.
type ScottyState struct {
	Mood        Mood       `json:"mood"`
	Happiness   int        `json:"happiness"`
	LastFed     *time.Time `json:"last_fed,omitempty"`
	FoodCredits int        `json:"food_credits"`
}

// FeedType selects a feeding action and its cost/boost.
type FeedType string

const (
	FeedTreat FeedType = "treat"
	FeedMeal  FeedType = "meal"
)

// FeedCost returns the credit cost and happiness boost for a feed type.
func FeedCost(t FeedType) (cost, boost int, ok bool) {
	switch t {
	case FeedTreat:
		return 2, 5, true
	case FeedMeal:
		return 5, 15, true
	}
	return 0, 0, false
}

// ============================================================
// Health metrics & profile
// ============================================================

// HealthMetrics are the derived financial health scores, each 0-100.
// OverallScore is a fixed weighted combination of the other three.
type HealthMetrics struct {
	BudgetAdherence int `json:"budget_adherence"`
	SavingsRate     int `json:"savings_rate"`
	ImpulseScore    int `json:"impulse_score"`
	OverallScore    int `json:"overall_score"`
}

// UserProfile is the financial baseline, replaced wholesale only by a
// successful remote profile fetch.
type UserProfile struct {
	MonthlyBudget      float64 `json:"monthly_budget"`
	MonthlySavingsGoal float64 `json:"monthly_savings_goal"`
	CurrentBalance     float64 `json:"current_balance"`
}

// Account is a linked financial account reported by the backend.
type Account struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Balance float64 `json:"balance"`
}

// TotalBalance sums account balances, rounded to cents.
func TotalBalance(accounts []Account) float64 {
	var total float64
	for _, a := range accounts {
		total += a.Balance
	}
	return math.Round(total*100) / 100
}

// ============================================================
// Chat
// ============================================================

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	RoleUser   ChatRole = "user"
	RoleScotty ChatRole = "scotty"
)

// ChatMessage is one entry in the in-memory conversation. Ordering is
// call-sequence, not wall-clock.
type ChatMessage struct {
	ID     string    `json:"id"`
	Role   ChatRole  `json:"role"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

// ============================================================
// Daily payload
// ============================================================

// DailyPayload is the backend's daily bundle: an insight, optionally a
// quest and suggested actions. Its fetch may be slow because it can
// trigger server-side generation work.
type DailyPayload struct {
	Date      string   `json:"date"`
	Insight   string   `json:"insight"`
	Quest     *Quest   `json:"quest,omitempty"`
	Actions   []string `json:"actions,omitempty"`
	Generated bool     `json:"generated"`
}
