package local

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/scottyfin/scotty-core-go/internal/analysis"
	"github.com/scottyfin/scotty-core-go/internal/domain"
)

// Responder is the heuristic chat fallback: keyword matching over the
// user's message plus a summary of the transaction set. It is used
// whenever the backend chat call is unavailable or fails.
//
// The rng is shared across handler goroutines, so picks go through mu.
type Responder struct {
	mu  sync.Mutex
	rng interface{ Intn(int) int }
}

// NewResponder creates a responder; rng picks among the generic
// replies and may be a seeded source in tests.
func NewResponder(rng interface{ Intn(int) int }) *Responder {
	return &Responder{rng: rng}
}

var genericReplies = []string{
	"Woof! I'm keeping an eye on your spending. Ask me how you're doing!",
	"I'm just a pup, but your money looks interesting. Try asking about food or savings.",
	"Scotty's here! Ask me about your subscriptions or how to save more.",
}

// Reply produces exactly one response for the given message.
func (r *Responder) Reply(message string, txs []domain.Transaction, metrics domain.HealthMetrics, now time.Time) string {
	m := strings.ToLower(message)

	switch {
	case strings.Contains(m, "how am i doing") || strings.Contains(m, "how'm i doing"):
		return r.overallReply(metrics)
	case strings.Contains(m, "food"):
		return r.foodReply(txs, now)
	case strings.Contains(m, "save") || strings.Contains(m, "saving"):
		return r.savingsReply(metrics)
	case strings.Contains(m, "subscription"):
		return r.subscriptionReply(txs, now)
	}

	r.mu.Lock()
	pick := r.rng.Intn(len(genericReplies))
	r.mu.Unlock()
	return genericReplies[pick]
}

func (r *Responder) overallReply(metrics domain.HealthMetrics) string {
	switch {
	case metrics.OverallScore >= 80:
		return fmt.Sprintf("You're doing great — health score %d! Keep it up and I'll keep wagging.", metrics.OverallScore)
	case metrics.OverallScore >= 50:
		return fmt.Sprintf("Not bad — health score %d. A little less impulse spending would make my tail wag harder.", metrics.OverallScore)
	default:
		return fmt.Sprintf("We're at %d... let's tighten the leash on spending this week, together.", metrics.OverallScore)
	}
}

func (r *Responder) foodReply(txs []domain.Transaction, now time.Time) string {
	var total float64
	cutoff := now.AddDate(0, 0, -analysis.SpendWindowDays)
	for _, tx := range txs {
		if tx.IsIncoming || tx.Date.Before(cutoff) {
			continue
		}
		if tx.Category == domain.CategoryFoodDining || tx.Category == domain.CategoryGroceries {
			total += tx.Amount
		}
	}
	return fmt.Sprintf("You've spent $%.0f on food in the last %d days. I'd share my kibble, but you can't afford my rates.", total, analysis.SpendWindowDays)
}

func (r *Responder) savingsReply(metrics domain.HealthMetrics) string {
	if metrics.SavingsRate >= 50 {
		return fmt.Sprintf("Your savings rate scores %d — solidly on track for your goal. Treat yourself (and me)!", metrics.SavingsRate)
	}
	return fmt.Sprintf("Savings rate scores %d right now. Moving even $20 a week aside would nudge it up noticeably.", metrics.SavingsRate)
}

func (r *Responder) subscriptionReply(txs []domain.Transaction, now time.Time) string {
	cutoff := now.AddDate(0, 0, -analysis.SpendWindowDays)
	count := 0
	var total float64
	for _, tx := range txs {
		if !tx.IsSubscription || tx.IsIncoming || tx.Date.Before(cutoff) {
			continue
		}
		count++
		total += tx.Amount
	}
	if count == 0 {
		return "I don't see any subscriptions this month. Either you're frugal or they're hiding from me."
	}
	return fmt.Sprintf("I count %d subscription charges totaling $%.2f this month. Worth sniffing through for ones you forgot about.", count, total)
}

// ApologyReply is appended when the responder itself fails.
const ApologyReply = "Ruff... something went wrong on my end. Ask me again in a bit?"
