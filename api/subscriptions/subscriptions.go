// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pborman/uuid"

	"github.com/firofarm/chef/api/utils"
	"github.com/firofarm/chef/eventdb"
	"github.com/firofarm/chef/log"
	"github.com/firofarm/chef/runtime"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
	// must be less than pongWait
	pingPeriod = (pongWait * 7) / 10
	// batches a subscriber may fall behind before it's dropped
	queueSize = 64
)

type Subscriptions struct {
	rt         *runtime.Runtime
	upgrader   *websocket.Upgrader
	cache      *messageCache
	pingPeriod time.Duration
	done       chan struct{}
	wg         sync.WaitGroup
}

func New(rt *runtime.Runtime, allowedOrigins []string, cacheSize uint32) *Subscriptions {
	return &Subscriptions{
		rt: rt,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == origin || allowed == "*" {
						return true
					}
				}
				return false
			},
		},
		cache:      newMessageCache(cacheSize),
		pingPeriod: pingPeriod,
		done:       make(chan struct{}),
	}
}

func (s *Subscriptions) handleEventSubscription(w http.ResponseWriter, req *http.Request) error {
	filter, err := parseEventFilter(req.URL.Query())
	if err != nil {
		return utils.BadRequest(err)
	}

	s.wg.Add(1)
	defer s.wg.Done()

	// subscribe before the handshake completes so no event is missed
	id := uuid.New()
	quit := make(chan struct{})
	defer close(quit)
	queue := s.pipe(id, quit)

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader has replied already
		logger.Debug("upgrade failed", "err", err)
		return nil
	}
	defer conn.Close()
	metricActiveCount().AddWithLabel(1, map[string]string{"subject": "event"})
	defer metricActiveCount().AddWithLabel(-1, map[string]string{"subject": "event"})
	logger.Debug("subscriber connected", "id", id, "remote", req.RemoteAddr)
	defer logger.Debug("subscriber disconnected", "id", id)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case evs, ok := <-queue:
			if !ok {
				return s.closeConn(conn, websocket.ClosePolicyViolation, "subscriber too slow")
			}
			for _, ev := range evs {
				if !filter.match(ev) {
					continue
				}
				msg, err := s.message(ev)
				if err != nil {
					return err
				}
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					logger.Debug("write failed", "id", id, "err", err)
					return nil
				}
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				logger.Debug("ping failed", "id", id, "err", err)
				return nil
			}
		case <-closed:
			return nil
		case <-s.done:
			return s.closeConn(conn, websocket.CloseGoingAway, "server shutting down")
		}
	}
}

// message encodes ev. Only events stored in the event db carry an id, the
// others are encoded per subscriber.
func (s *Subscriptions) message(ev *eventdb.Event) ([]byte, error) {
	if ev.ID == 0 {
		return json.Marshal(ev)
	}
	msg, _, err := s.cache.GetOrAdd(ev.ID, func() ([]byte, error) {
		return json.Marshal(ev)
	})
	return msg, err
}

// pipe drains the event feed into a bounded queue so execution never waits on a slow client.
// The queue is closed when the subscriber falls behind.
func (s *Subscriptions) pipe(id string, quit <-chan struct{}) <-chan []*eventdb.Event {
	ch := make(chan []*eventdb.Event)
	sub := s.rt.SubscribeEvents(ch)
	queue := make(chan []*eventdb.Event, queueSize)
	go func() {
		defer sub.Unsubscribe()
		for {
			select {
			case evs := <-ch:
				select {
				case queue <- evs:
				default:
					logger.Debug("subscriber too slow", "id", id)
					close(queue)
					return
				}
			case <-sub.Err():
				return
			case <-quit:
				return
			}
		}
	}()
	return queue
}

func (s *Subscriptions) closeConn(conn *websocket.Conn, code int, text string) error {
	msg := websocket.FormatCloseMessage(code, text)
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil {
		logger.Debug("close failed", "err", err)
	}
	return nil
}

// Close disconnects every subscriber and waits for the handlers to return.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/event").
		Methods(http.MethodGet).
		Name("WS /subscriptions/event").
		HandlerFunc(utils.WrapHandlerFunc(s.handleEventSubscription))
}
