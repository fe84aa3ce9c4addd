package voice

import (
	"container/list"
	"sync"
	"time"
)

// Event types sent on the SSE stream.
const (
	EventState        = "state"
	EventMessage      = "message"
	EventError        = "error"
	EventConnected    = "connected"
	EventDisconnected = "disconnected"
)

// Event is one entry in a session's event stream.
type Event struct {
	ID   int64     `json:"id"`
	Type string    `json:"type"`
	Data any       `json:"data"`
	At   time.Time `json:"at"`
}

// eventLog fans events out to subscribers and keeps the most recent ones
// bounded for Last-Event-ID replay.
type eventLog struct {
	mu      sync.Mutex
	nextID  int64
	history *list.List
	maxSize int
	subs    map[int]chan Event
	nextSub int
}

func newEventLog(maxSize int) *eventLog {
	if maxSize <= 0 {
		maxSize = 100 // keep last 100 events per session
	}
	return &eventLog{history: list.New(), maxSize: maxSize, subs: make(map[int]chan Event)}
}

// publish records an event and delivers it to every subscriber that has room.
// Slow subscribers drop events and catch up through replay on reconnect.
func (l *eventLog) publish(typ string, data any) Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	ev := Event{ID: l.nextID, Type: typ, Data: data, At: time.Now()}
	l.history.PushBack(ev)
	for l.history.Len() > l.maxSize {
		l.history.Remove(l.history.Front())
	}
	for _, ch := range l.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	return ev
}

// since returns the retained events with an ID greater than after.
func (l *eventLog) since(after int64) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Event
	for e := l.history.Front(); e != nil; e = e.Next() {
		if ev := e.Value.(Event); ev.ID > after {
			out = append(out, ev)
		}
	}
	return out
}

// subscribe registers a listener. The returned func unsubscribes it.
func (l *eventLog) subscribe() (<-chan Event, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextSub
	l.nextSub++
	ch := make(chan Event, 32)
	l.subs[id] = ch
	return ch, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if _, ok := l.subs[id]; ok {
			delete(l.subs, id)
			close(ch)
		}
	}
}

func (l *eventLog) subscribers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs)
}

// closeAll ends every subscription.
func (l *eventLog) closeAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, ch := range l.subs {
		delete(l.subs, id)
		close(ch)
	}
}
