package sync

import (
	"bufio"
	"encoding/json"
	"net"
	"testing"
	"time"
)

func TestBroadcastReachesTCPClient(t *testing.T) {
	hub := NewHub()

	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	hub.Add(server)

	done := make(chan Event, 1)
	go func() {
		sc := bufio.NewScanner(client)
		if !sc.Scan() {
			return
		}
		var ev Event
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			return
		}
		done <- ev
	}()

	sent := LibraryUpdated(7, 42)
	hub.Broadcast(sent)

	select {
	case got := <-done:
		if got.Type != EventLibraryUpdate {
			t.Errorf("type = %q, want %q", got.Type, EventLibraryUpdate)
		}
		if got.UserID != 7 || got.TitleID != 42 {
			t.Errorf("event = %+v, want user 7 title 42", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for broadcast")
	}
}

func TestDeadClientIsDropped(t *testing.T) {
	hub := NewHub()

	server, client := net.Pipe()
	hub.Add(server)
	client.Close()
	server.Close()

	hub.Broadcast(ProgressUpdated(1, 2, "DONE"))

	if got := hub.Count(); got != 0 {
		t.Errorf("clients = %d, want 0 after failed write", got)
	}
}

func TestStats(t *testing.T) {
	hub := NewHub()
	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})

	hub.Add(server)
	s := hub.Stats()
	if s.TCPClients != 1 || s.WSClients != 0 {
		t.Errorf("stats = %+v, want one tcp client", s)
	}

	hub.Remove(server)
	if got := hub.Count(); got != 0 {
		t.Errorf("clients = %d, want 0 after remove", got)
	}
}
