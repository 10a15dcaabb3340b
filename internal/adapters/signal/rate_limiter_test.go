package signal

import (
	"testing"
	"time"
)

func TestMsgRateLimiterWindow(t *testing.T) {
	rl := NewMsgRateLimiter(2, 30*time.Millisecond)

	if !rl.Allow("c1") {
		t.Fatal("first message must pass")
	}
	if !rl.Allow("c1") {
		t.Fatal("second message must pass")
	}
	if rl.Allow("c1") {
		t.Fatal("third message must be blocked")
	}
	if !rl.Allow("c2") {
		t.Fatal("other connections must be unaffected")
	}

	time.Sleep(40 * time.Millisecond)

	if !rl.Allow("c1") {
		t.Fatal("message after window expiry must pass")
	}
}

func TestMsgRateLimiterDisabled(t *testing.T) {
	rl := NewMsgRateLimiter(0, time.Second)
	for i := 0; i < 100; i++ {
		if !rl.Allow("c1") {
			t.Fatal("zero limit must disable rate limiting")
		}
	}
}

func TestMsgRateLimiterForget(t *testing.T) {
	rl := NewMsgRateLimiter(1, time.Minute)
	rl.Allow("c1")
	if rl.Allow("c1") {
		t.Fatal("second message must be blocked")
	}
	rl.Forget("c1")
	if !rl.Allow("c1") {
		t.Fatal("forgotten connection starts a fresh window")
	}
}
