// boardwatch connects to a notewall server, mirrors the note board and
// prints every change as it arrives. Useful for watching a board without a
// browser and for exercising the push channel end to end.
//
// Environment: BOARD_URL (default http://localhost:5001), BOARD_EMAIL and
// BOARD_PASSWORD for authenticated servers.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/notewall/notewall/internal/notes"
	"github.com/notewall/notewall/internal/realtime"
	"github.com/notewall/notewall/internal/reconcile"
)

func main() {
	base := os.Getenv("BOARD_URL")
	if base == "" {
		base = "http://localhost:5001"
	}
	base = strings.TrimRight(base, "/")

	token := ""
	if email := os.Getenv("BOARD_EMAIL"); email != "" {
		var err error
		token, err = login(base, email, os.Getenv("BOARD_PASSWORD"))
		if err != nil {
			log.Fatalf("login failed: %v", err)
		}
	}

	mirror := reconcile.NewMirror()

	for {
		if err := watch(base, token, mirror); err != nil {
			log.Printf("connection lost: %v — reconnecting", err)
		}
		time.Sleep(2 * time.Second)
	}
}

func login(base, email, password string) (string, error) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err := http.Post(base+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login returned %d", resp.StatusCode)
	}
	var out struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

// watch performs one full connect cycle: open the push channel, refetch the
// full list (broadcasts missed while disconnected are never replayed), then
// apply events until the connection drops.
func watch(base, token string, mirror *reconcile.Mirror) error {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	wsURL := strings.Replace(base, "http", "ws", 1) + "/api/board/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		return err
	}
	defer conn.Close()

	list, err := fetchNotes(base, token)
	if err != nil {
		return err
	}
	mirror.SetAll(list)
	log.Printf("connected, %d notes on the board", mirror.Len())
	for _, n := range mirror.Notes() {
		log.Printf("  [%s] %q at (%.0f, %.0f)", n.ID, n.Title, n.X, n.Y)
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var ev realtime.Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			log.Printf("bad event: %v", err)
			continue
		}
		report(mirror, ev)
	}
}

func fetchNotes(base, token string) ([]*notes.Note, error) {
	req, err := http.NewRequest(http.MethodGet, base+"/api/notes", nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list returned %d", resp.StatusCode)
	}
	var list []*notes.Note
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, err
	}
	return list, nil
}

func report(mirror *reconcile.Mirror, ev realtime.Event) {
	switch ev.Type {
	case realtime.EventSessionReady:
		log.Printf("session ready: %s", ev.SessionID)
	case realtime.EventNoteCreated:
		if mirror.Apply(ev) && ev.Note != nil {
			log.Printf("created [%s] %q at (%.0f, %.0f)", ev.Note.ID, ev.Note.Title, ev.Note.X, ev.Note.Y)
		}
	case realtime.EventNoteUpdated:
		if mirror.Apply(ev) && ev.Note != nil {
			log.Printf("updated [%s] %q at (%.0f, %.0f) rev %d", ev.Note.ID, ev.Note.Title, ev.Note.X, ev.Note.Y, ev.Note.Revision)
		}
	case realtime.EventNoteDeleted:
		if mirror.Apply(ev) {
			log.Printf("deleted [%s], %d notes left", ev.ID, mirror.Len())
		}
	}
}
