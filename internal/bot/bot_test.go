package bot

import (
	"io"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

func TestActorLocksPerActor(t *testing.T) {
	var l actorLocks
	if l.get(1) != l.get(1) {
		t.Fatal("same actor got different locks")
	}
	if l.get(1) == l.get(2) {
		t.Fatal("different actors share a lock")
	}
}

func TestActorLocksSerialize(t *testing.T) {
	var l actorLocks
	var wg sync.WaitGroup
	n := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mu := l.get(7)
			mu.Lock()
			n++
			mu.Unlock()
		}()
	}
	wg.Wait()
	if n != 50 {
		t.Fatalf("n = %d, want 50", n)
	}
}

// A callback without its message has no chat to answer into and must
// be dropped before any field of the message is touched.
func TestCallbackWithoutMessageDropped(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	b := &Bot{log: log}

	b.handleCallback(&tgbotapi.CallbackQuery{
		ID:   "1",
		From: &tgbotapi.User{ID: 42},
		Data: cbCancel,
	})
}
