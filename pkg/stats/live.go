package stats

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// LiveUpdate is one message on the statistics stream: a complete value set
// for an indicator/year, replacing whatever the client held before.
type LiveUpdate struct {
	Indicator string             `json:"indicator"`
	Year      int                `json:"year"`
	Unit      string             `json:"unit"`
	Values    map[string]float64 `json:"values"`
	Previous  map[string]float64 `json:"previous,omitempty"`
}

// LiveProvider subscribes to a websocket feed of indicator values and hands
// each complete snapshot to the callback. It reconnects with capped
// exponential backoff and keeps running until Close.
type LiveProvider struct {
	url      string
	onUpdate func(*StatSet)

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
	done   chan struct{}
}

func NewLiveProvider(url string, onUpdate func(*StatSet)) *LiveProvider {
	return &LiveProvider{
		url:      url,
		onUpdate: onUpdate,
		done:     make(chan struct{}),
	}
}

// Run connects and consumes updates until Close is called. Intended to run
// on its own goroutine.
func (l *LiveProvider) Run() {
	backoff := 1 * time.Second
	for {
		select {
		case <-l.done:
			return
		default:
		}

		log.Printf("[stats-live] Connecting to %s", l.url)
		c, _, err := websocket.DefaultDialer.Dial(l.url, nil)
		if err != nil {
			log.Printf("[stats-live] Dial error: %v. Retrying in %v...", err, backoff)
			select {
			case <-l.done:
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > 60*time.Second {
				backoff = 60 * time.Second
			}
			continue
		}
		backoff = 1 * time.Second

		l.mu.Lock()
		if l.closed {
			l.mu.Unlock()
			c.Close()
			return
		}
		l.conn = c
		l.mu.Unlock()

		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Printf("[stats-live] Read error: %v. Reconnecting...", err)
				break
			}
			var upd LiveUpdate
			if err := json.Unmarshal(message, &upd); err != nil {
				log.Printf("[stats-live] Skipping malformed update: %v", err)
				continue
			}
			if set := upd.StatSet(); set != nil {
				l.onUpdate(set)
			}
		}
		c.Close()
	}
}

// Close stops the provider and unblocks a pending read.
func (l *LiveProvider) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	close(l.done)
	if l.conn != nil {
		l.conn.Close()
	}
}

// StatSet converts the wire update into a snapshot for the view, or nil
// when the update carries no values.
func (u *LiveUpdate) StatSet() *StatSet {
	if len(u.Values) == 0 {
		return nil
	}
	return &StatSet{
		Indicator: u.Indicator,
		Year:      u.Year,
		Unit:      u.Unit,
		Values:    u.Values,
		Previous:  u.Previous,
	}
}
