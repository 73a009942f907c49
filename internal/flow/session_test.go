package flow

import (
	"testing"
	"time"
)

func TestSessionsLastWriteWins(t *testing.T) {
	s := NewSessions(time.Hour)
	s.Put(1, &CreateFlow{ManagerID: 1})
	s.Put(1, &GenerateFlow{ManagerID: 1})

	if _, ok := s.Get(1).(*GenerateFlow); !ok {
		t.Fatalf("got %T, want the later flow", s.Get(1))
	}
}

func TestSessionsClear(t *testing.T) {
	s := NewSessions(time.Hour)
	s.Put(1, &CreateFlow{})
	s.Clear(1)
	if s.Get(1) != nil {
		t.Fatal("session survived Clear")
	}
}

func TestSessionsSweep(t *testing.T) {
	s := NewSessions(time.Minute)
	s.Put(1, &CreateFlow{})
	s.Put(2, &ReportFlow{})

	if n := s.Sweep(time.Now()); n != 0 {
		t.Fatalf("fresh sessions swept: %d", n)
	}
	if n := s.Sweep(time.Now().Add(2 * time.Minute)); n != 2 {
		t.Fatalf("swept %d, want 2", n)
	}
	if s.Get(1) != nil || s.Get(2) != nil {
		t.Fatal("expired sessions still retrievable")
	}
}
