// Package matrix lets a Matrix room act as Beyond's microphone and speaker:
// text messages from the room are heard as commands and responses are sent
// back as messages.
package matrix

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/beyondtyping/beyond/internal/beyond/voiceloop"
)

// inboxSize bounds messages queued between sync and Listen. Older
// commands are dropped when the user types faster than Beyond answers.
const inboxSize = 16

// clockSkew is how far before startup a message may be stamped and still be
// treated as a live command.
const clockSkew = time.Minute

// Config holds Matrix transport configuration
type Config struct {
	Homeserver  string
	UserID      string
	AccessToken string
	// RoomID is the only room commands are accepted from.
	RoomID string
	// Owner restricts commands to one sender. Empty accepts anyone in the
	// room except Beyond itself.
	Owner string
	// DB persists the sync position. When nil history replays on restart.
	DB     *sql.DB
	Logger *slog.Logger
}

// Transport is a voiceloop Listener and Speaker backed by a Matrix room.
type Transport struct {
	client *mautrix.Client
	cfg    Config
	logger *slog.Logger

	inbox     chan string
	startedAt time.Time
	stopOnce  sync.Once
	stopCh   chan struct{}
}

// New creates a Transport. It does not contact the homeserver.
func New(cfg Config) (*Transport, error) {
	if cfg.RoomID == "" {
		return nil, fmt.Errorf("matrix: room id is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	client, err := mautrix.NewClient(cfg.Homeserver, id.UserID(cfg.UserID), cfg.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Matrix client: %w", err)
	}

	if cfg.DB != nil {
		client.Store = NewSyncStore(cfg.DB)
	} else {
		cfg.Logger.Warn("Matrix sync store: no database configured, room history will replay on restart")
	}

	return &Transport{
		client: client,
		cfg:    cfg,
		logger: cfg.Logger,
		inbox:     make(chan string, inboxSize),
		startedAt: time.Now(),
		stopCh:    make(chan struct{}),
	}, nil
}

// Start joins the room and syncs in the background, reconnecting with
// exponential backoff until Stop.
func (t *Transport) Start(ctx context.Context) error {
	syncer, ok := t.client.Syncer.(*mautrix.DefaultSyncer)
	if !ok {
		return fmt.Errorf("matrix: unexpected syncer %T", t.client.Syncer)
	}
	// The first sync carries room history; none of it is a new command.
	syncer.OnSync(t.client.DontProcessOldEvents)
	syncer.OnEventType(event.EventMessage, t.HandleMessage)

	if err := t.joinRoom(ctx, id.RoomID(t.cfg.RoomID)); err != nil {
		return fmt.Errorf("failed to join room %s: %w", t.cfg.RoomID, err)
	}

	go t.syncLoop()
	return nil
}

func (t *Transport) syncLoop() {
	const (
		backoffMin = 2 * time.Second
		backoffMax = 5 * time.Minute
	)
	backoff := backoffMin
	for {
		err := t.client.Sync()
		if err == nil {
			// Only a clean StopSync ends Sync without error.
			return
		}
		select {
		case <-t.stopCh:
			return
		default:
		}
		t.logger.Error("Matrix sync stopped; reconnecting", "err", err, "backoff", backoff)
		select {
		case <-t.stopCh:
			return
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, backoffMax)
	}
}

// Stop ends syncing. Pending and future Listen calls report
// voiceloop.ErrListenerClosed.
func (t *Transport) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopCh)
		t.client.StopSync()
	})
}

// HandleMessage queues a text message from the configured room. It is the
// syncer's callback for m.room.message events. Messages stamped well before
// the transport was created are dropped.
func (t *Transport) HandleMessage(_ context.Context, evt *event.Event) {
	if evt.Sender == id.UserID(t.cfg.UserID) {
		return
	}
	if t.cfg.Owner != "" && evt.Sender != id.UserID(t.cfg.Owner) {
		return
	}
	if evt.RoomID != id.RoomID(t.cfg.RoomID) {
		return
	}
	if time.UnixMilli(evt.Timestamp).Before(t.startedAt.Add(-clockSkew)) {
		t.logger.Debug("ignoring message sent before startup", "sender", evt.Sender, "event", evt.ID)
		return
	}
	msg := evt.Content.AsMessage()
	if msg == nil || msg.MsgType != event.MsgText {
		return
	}
	body := strings.TrimSpace(msg.Body)
	if body == "" {
		return
	}

	select {
	case t.inbox <- body:
	default:
		t.logger.Warn("Matrix inbox full, dropping message", "sender", evt.Sender)
	}
}

// Listen waits up to timeout for the next message. Silence is "", nil.
func (t *Transport) Listen(ctx context.Context, timeout time.Duration) (string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case text := <-t.inbox:
		return text, nil
	case <-timer.C:
		return "", nil
	case <-t.stopCh:
		return "", voiceloop.ErrListenerClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Speak sends text to the room as a notice so that other bots ignore it.
func (t *Transport) Speak(ctx context.Context, text string) error {
	content := event.MessageEventContent{
		MsgType: event.MsgNotice,
		Body:    text,
	}
	_, err := t.client.SendMessageEvent(ctx, id.RoomID(t.cfg.RoomID), event.EventMessage, &content)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (t *Transport) joinRoom(ctx context.Context, roomID id.RoomID) error {
	_, err := t.client.JoinRoomByID(ctx, roomID)
	if err != nil {
		// Homeservers answer M_FORBIDDEN when already joined.
		if errors.Is(err, mautrix.MForbidden) {
			t.logger.Warn("joinRoom: already a member or access denied, continuing", "room", roomID)
			return nil
		}
		return err
	}
	return nil
}
