package local_test

import (
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/scottyfin/scotty-core-go/internal/domain"
	"github.com/scottyfin/scotty-core-go/internal/local"
)

func TestReply_KeywordRouting(t *testing.T) {
	r := local.NewResponder(rand.New(rand.NewSource(7)))
	metrics := domain.HealthMetrics{OverallScore: 84, SavingsRate: 61}

	reply := r.Reply("how am I doing?", nil, metrics, testNow)
	if !strings.Contains(reply, "84") {
		t.Errorf("overall reply should cite the score, got %q", reply)
	}

	reply = r.Reply("can I save more?", nil, metrics, testNow)
	if !strings.Contains(reply, "61") {
		t.Errorf("savings reply should cite the rate, got %q", reply)
	}
}

func TestReply_ConcurrentGenericReplies(t *testing.T) {
	r := local.NewResponder(rand.New(rand.NewSource(7)))
	metrics := domain.HealthMetrics{OverallScore: 50}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				if reply := r.Reply("tell me a joke", nil, metrics, testNow); reply == "" {
					t.Error("empty generic reply")
					return
				}
			}
		}()
	}
	wg.Wait()
}
