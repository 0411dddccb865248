package broadcast

import (
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"sponsorhub/internal/core/domain"
	"sponsorhub/internal/metrics"
)

// session is one connected client. Its queue is bounded and drops the
// oldest frame on overflow.
type session struct {
	id        string
	principal domain.Principal
	conn      *websocket.Conn
	size      int
	timeout   time.Duration

	mu     sync.Mutex
	queue  [][]byte
	wake   chan struct{}
	done   chan struct{}
	closed sync.Once
}

func newSession(id string, p domain.Principal, conn *websocket.Conn, size int, timeout time.Duration) *session {
	return &session{
		id:        id,
		principal: p,
		conn:      conn,
		size:      size,
		timeout:   timeout,
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

func (s *session) enqueue(frame []byte) {
	s.mu.Lock()
	if len(s.queue) >= s.size {
		s.queue = s.queue[1:]
		metrics.BroadcastDropped.Inc()
	}
	s.queue = append(s.queue, frame)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *session) close() {
	s.closed.Do(func() { close(s.done) })
}

// writeLoop sends queued frames until the session is closed or a write
// fails.
func (s *session) writeLoop() error {
	for {
		select {
		case <-s.done:
			return nil
		case <-s.wake:
		}

		s.mu.Lock()
		batch := s.queue
		s.queue = nil
		s.mu.Unlock()

		for _, frame := range batch {
			if err := s.conn.SetWriteDeadline(time.Now().Add(s.timeout)); err != nil {
				return err
			}
			if err := websocket.Message.Send(s.conn, string(frame)); err != nil {
				return err
			}
		}
	}
}

// readLoop discards client frames and closes the session on disconnect.
func (s *session) readLoop() {
	defer s.close()
	var discard string
	for {
		if err := websocket.Message.Receive(s.conn, &discard); err != nil {
			return
		}
	}
}
