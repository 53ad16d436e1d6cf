package dexagg

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ListingsStream is an optional push alternative to polling GetNewPairs:
// a websocket connection to the aggregator's new-listing feed. The
// scheduler's poll loop never depends on it — it's wired in only when a
// deployment configures a websocket URL, and any connection failure just
// means the poll loop keeps being the sole source of new pairs.
type ListingsStream struct {
	wsURL         string
	targetChainID string

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

func NewListingsStream(wsURL, targetChainID string) *ListingsStream {
	return &ListingsStream{wsURL: wsURL, targetChainID: targetChainID}
}

// Listings dials the feed and returns a channel of newly-announced pairs.
// The channel is closed when ctx is canceled, Close is called, or the
// connection drops without reconnecting — callers should treat channel
// closure as "fall back to polling", not as a fatal error.
func (s *ListingsStream) Listings(ctx context.Context) (<-chan Pair, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.wsURL, nil)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	out := make(chan Pair, 32)
	go s.readLoop(ctx, conn, out)
	return out, nil
}

func (s *ListingsStream) readLoop(ctx context.Context, conn *websocket.Conn, out chan<- Pair) {
	defer close(out)
	defer conn.Close()

	go func() {
		<-ctx.Done()
		_ = conn.SetReadDeadline(time.Now())
	}()

	for {
		var raw rawPair
		if err := conn.ReadJSON(&raw); err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if !closed {
				log.Debug().Err(err).Msg("dexagg listings stream closed")
			}
			return
		}
		pair, ok := convertPair(raw, s.targetChainID)
		if !ok {
			continue
		}
		select {
		case out <- pair:
		case <-ctx.Done():
			return
		}
	}
}

// Close tears down the underlying connection; Listings' returned channel
// closes shortly after.
func (s *ListingsStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// convertPair adapts filterAndConvert's single-pair logic for the
// streaming path, which sees one pair per message rather than a batch.
func convertPair(raw rawPair, targetChainID string) (Pair, bool) {
	converted := filterAndConvert([]rawPair{raw}, targetChainID)
	if len(converted) == 0 {
		return Pair{}, false
	}
	return converted[0], true
}
