package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/seiyria/landoftherair/internal/config"
	"github.com/seiyria/landoftherair/internal/game/character"
	"github.com/seiyria/landoftherair/internal/game/class"
	"github.com/seiyria/landoftherair/internal/game/session"
	"github.com/seiyria/landoftherair/internal/storage/postgres"
)

// AccountStore defines the account persistence operations the gateway needs.
type AccountStore interface {
	Create(ctx context.Context, username, password string) (postgres.Account, error)
	Authenticate(ctx context.Context, username, password string) (postgres.Account, error)
}

// PlayerStore defines the character persistence operations the gateway needs.
type PlayerStore interface {
	Create(ctx context.Context, accountID int64, p *character.Player) (postgres.PlayerRecord, error)
	GetBySlot(ctx context.Context, accountID int64, charSlot int) (postgres.PlayerRecord, error)
	ListByAccount(ctx context.Context, accountID int64) ([]postgres.PlayerRecord, error)
}

// Game is the simulation surface the gateway drives. The world joins and
// leaves players under its own lock; Enqueue never blocks on a tick.
type Game interface {
	Join(sess *session.Session)
	Leave(username string)
	Enqueue(username, line string)
}

// maxCharSlots bounds how many characters an account may hold.
const maxCharSlots = 4

// Server accepts websocket connections, runs the auth and character-select
// flow, and bridges the play loop to the world. It implements room.Pusher:
// simulation output is framed as JSON and dropped into the session mailbox
// that the connection's write pump drains.
type Server struct {
	cfg      config.GatewayConfig
	accounts AccountStore
	players  PlayerStore
	game     Game
	sessions *session.Manager
	logger   *zap.Logger

	upgrader websocket.Upgrader
	httpSrv  *http.Server
	wg       sync.WaitGroup
}

// NewServer creates a gateway.
//
// Precondition: all dependencies must be non-nil and cfg validated.
// Postcondition: Returns a Server ready to Start.
func NewServer(
	cfg config.GatewayConfig,
	accounts AccountStore,
	players PlayerStore,
	game Game,
	sessions *session.Manager,
	logger *zap.Logger,
) *Server {
	return &Server{
		cfg:      cfg,
		accounts: accounts,
		players:  players,
		game:     game,
		sessions: sessions,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
	}
}

// Handler returns the HTTP mux serving the websocket endpoint and a
// health probe. Exposed separately from Start so tests can mount it on
// an httptest server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/play", s.handlePlay)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Start runs the HTTP listener. This method blocks until Stop is called.
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:    s.cfg.Addr(),
		Handler: s.Handler(),
	}
	s.logger.Info("gateway listening", zap.String("addr", s.cfg.Addr()))

	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("gateway listener: %w", err)
	}
	return nil
}

// Stop shuts the listener down and waits for in-flight connections.
func (s *Server) Stop() {
	if s.httpSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			s.logger.Warn("gateway shutdown", zap.Error(err))
		}
	}
	s.wg.Wait()
}

// Push implements room.Pusher. Simulation messages become JSON frames in
// the target session's mailbox; a full mailbox drops the frame rather
// than stalling the tick.
func (s *Server) Push(username, message string) {
	data, err := json.Marshal(serverFrame{Type: frameMessage, Text: message})
	if err != nil {
		return
	}
	if err := s.sessions.Deliver(username, data); err != nil {
		s.logger.Debug("frame dropped", zap.String("username", username), zap.Error(err))
	}
}

// handlePlay upgrades the connection and runs it through auth, character
// select, and the play loop.
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	// The request context dies when this handler returns; the upgraded
	// connection outlives it.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer conn.Close()
		s.serveConn(context.Background(), conn, r.RemoteAddr)
	}()
}

// serveConn is the per-connection state machine: authenticate, pick a
// character, then hand off to the play loop.
func (s *Server) serveConn(ctx context.Context, conn *websocket.Conn, addr string) {
	start := time.Now()
	s.logger.Info("client connected", zap.String("remote_addr", addr))

	s.writeFrame(conn, serverFrame{
		Type: frameMessage,
		Text: "Welcome to Land of the Rair. Log in or register to play.",
	})

	acct, ok := s.authPhase(ctx, conn)
	if !ok {
		s.logger.Info("client left before login",
			zap.String("remote_addr", addr),
			zap.Duration("session_duration", time.Since(start)),
		)
		return
	}

	p, ok := s.characterPhase(ctx, conn, acct)
	if !ok {
		return
	}

	s.playLoop(conn, acct, p)
	s.logger.Info("client disconnected",
		zap.String("remote_addr", addr),
		zap.String("username", acct.Username),
		zap.Duration("session_duration", time.Since(start)),
	)
}

// authPhase loops until the client logs in or goes away.
//
// Postcondition: Returns (account, true) on successful login, or
// (zero, false) if the connection ended first.
func (s *Server) authPhase(ctx context.Context, conn *websocket.Conn) (postgres.Account, bool) {
	for {
		frame, err := s.readFrame(conn)
		if err != nil {
			return postgres.Account{}, false
		}

		switch frame.Type {
		case frameRegister:
			s.handleRegister(ctx, conn, frame)

		case frameLogin:
			acct, err := s.accounts.Authenticate(ctx, frame.Username, frame.Password)
			switch {
			case err == nil:
				s.logger.Info("player logged in", zap.String("username", acct.Username))
				s.sendCharacterList(ctx, conn, acct)
				return acct, true
			case errors.Is(err, postgres.ErrAccountNotFound),
				errors.Is(err, postgres.ErrInvalidCredentials):
				s.writeFrame(conn, serverFrame{Type: frameError, Text: "Invalid username or password."})
			default:
				s.logger.Error("authenticating", zap.Error(err))
				s.writeFrame(conn, serverFrame{Type: frameError, Text: "Login failed. Try again."})
			}

		case frameQuit:
			return postgres.Account{}, false

		default:
			s.writeFrame(conn, serverFrame{Type: frameError, Text: "Log in first."})
		}
	}
}

// handleRegister creates an account and reports the outcome to the client.
func (s *Server) handleRegister(ctx context.Context, conn *websocket.Conn, frame clientFrame) {
	username := strings.TrimSpace(frame.Username)
	if len(username) < 2 || len(frame.Password) < 4 {
		s.writeFrame(conn, serverFrame{
			Type: frameError,
			Text: "Username must be at least 2 characters and password at least 4.",
		})
		return
	}

	acct, err := s.accounts.Create(ctx, username, frame.Password)
	switch {
	case err == nil:
		s.logger.Info("account registered", zap.String("username", acct.Username))
		s.writeFrame(conn, serverFrame{Type: frameMessage, Text: "Account created. You may now log in."})
	case errors.Is(err, postgres.ErrAccountExists):
		s.writeFrame(conn, serverFrame{Type: frameError, Text: "That username is taken."})
	default:
		s.logger.Error("creating account", zap.Error(err))
		s.writeFrame(conn, serverFrame{Type: frameError, Text: "Registration failed. Try again."})
	}
}

// characterPhase loops on select/create until the client enters the world.
func (s *Server) characterPhase(ctx context.Context, conn *websocket.Conn, acct postgres.Account) (*character.Player, bool) {
	for {
		frame, err := s.readFrame(conn)
		if err != nil {
			return nil, false
		}

		switch frame.Type {
		case frameSelect:
			rec, err := s.players.GetBySlot(ctx, acct.ID, frame.Slot)
			switch {
			case err == nil:
				return rec.Player, true
			case errors.Is(err, postgres.ErrPlayerNotFound):
				s.writeFrame(conn, serverFrame{
					Type: frameError,
					Text: fmt.Sprintf("No character in slot %d.", frame.Slot),
				})
			default:
				s.logger.Error("loading character", zap.Error(err))
				s.writeFrame(conn, serverFrame{Type: frameError, Text: "Could not load that character."})
			}

		case frameCreate:
			p, ok := s.createCharacter(ctx, conn, acct, frame)
			if ok {
				return p, true
			}

		case frameQuit:
			return nil, false

		default:
			s.writeFrame(conn, serverFrame{Type: frameError, Text: "Select or create a character first."})
		}
	}
}

// createCharacter validates the create frame and persists a new player.
func (s *Server) createCharacter(ctx context.Context, conn *websocket.Conn, acct postgres.Account, frame clientFrame) (*character.Player, bool) {
	if frame.Slot < 0 || frame.Slot >= maxCharSlots {
		s.writeFrame(conn, serverFrame{
			Type: frameError,
			Text: fmt.Sprintf("Slot must be between 0 and %d.", maxCharSlots-1),
		})
		return nil, false
	}

	cls, ok := parseClass(frame.Class)
	if !ok {
		s.writeFrame(conn, serverFrame{
			Type: frameError,
			Text: "Class must be one of: mage, healer, warrior, thief, undecided.",
		})
		return nil, false
	}

	p := character.NewPlayer(acct.Username, frame.Slot, cls)
	if _, err := s.players.Create(ctx, acct.ID, p); err != nil {
		if errors.Is(err, postgres.ErrPlayerSlotTaken) {
			s.writeFrame(conn, serverFrame{
				Type: frameError,
				Text: fmt.Sprintf("Slot %d already has a character.", frame.Slot),
			})
			return nil, false
		}
		s.logger.Error("creating character", zap.Error(err))
		s.writeFrame(conn, serverFrame{Type: frameError, Text: "Could not create that character."})
		return nil, false
	}
	return p, true
}

// playLoop joins the world and pumps frames both ways until the client
// disconnects. Reads stay on this goroutine; a separate write pump drains
// the session mailbox so simulation output never blocks on the socket.
func (s *Server) playLoop(conn *websocket.Conn, acct postgres.Account, p *character.Player) {
	sess, err := s.sessions.Add(p, acct.ID, acct.Role)
	if err != nil {
		s.writeFrame(conn, serverFrame{Type: frameError, Text: "That character is already playing."})
		return
	}
	s.game.Join(sess)
	s.writeFrame(conn, serverFrame{Type: frameEntered, Map: sess.MapName})

	writeDone := make(chan struct{})
	go s.writePump(conn, sess, writeDone)

	// Removing the session closes the mailbox, which is what lets the
	// write pump drain and exit; the wait must come after.
	defer func() { <-writeDone }()
	defer func() {
		s.game.Leave(acct.Username)
		if err := s.sessions.Remove(acct.Username); err != nil {
			s.logger.Debug("removing session", zap.Error(err))
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	})

	for {
		frame, err := s.readPlayFrame(conn)
		if err != nil {
			return
		}

		switch frame.Type {
		case frameCommand:
			s.game.Enqueue(acct.Username, frame.Line)
		case frameQuit:
			return
		default:
			s.Push(acct.Username, fmt.Sprintf("Unknown frame type %q.", frame.Type))
		}
	}
}

// writePump drains the session mailbox onto the socket and keeps the
// connection alive with pings. It exits when the mailbox closes or a
// write fails, then closes the socket so the read loop unblocks.
func (s *Server) writePump(conn *websocket.Conn, sess *session.Session, done chan<- struct{}) {
	defer close(done)
	defer conn.Close()

	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case data, open := <-sess.Mailbox.Events():
			if !open {
				_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "goodbye"))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// sendCharacterList sends the character-select roster for an account.
func (s *Server) sendCharacterList(ctx context.Context, conn *websocket.Conn, acct postgres.Account) {
	records, err := s.players.ListByAccount(ctx, acct.ID)
	if err != nil {
		s.logger.Error("listing characters", zap.Error(err))
		s.writeFrame(conn, serverFrame{Type: frameError, Text: "Could not load your characters."})
		return
	}

	summaries := make([]characterSummary, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, characterSummary{
			Slot:  rec.CharSlot,
			Name:  rec.Player.Name,
			Class: string(rec.Player.BaseClass),
			Level: rec.Player.Level,
			Map:   rec.Player.Map,
		})
	}
	s.writeFrame(conn, serverFrame{Type: frameCharacters, Characters: summaries})
}

// readFrame reads one client frame during the auth and character phases.
// Malformed JSON is reported to the client and skipped.
func (s *Server) readFrame(conn *websocket.Conn) (clientFrame, error) {
	for {
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			return clientFrame{}, err
		}
		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			s.writeFrame(conn, serverFrame{Type: frameError, Text: "Malformed frame."})
			continue
		}
		return frame, nil
	}
}

// readPlayFrame reads one client frame during the play loop. Writes are
// owned by the write pump at that point, so malformed frames are dropped
// without a direct response.
func (s *Server) readPlayFrame(conn *websocket.Conn) (clientFrame, error) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return clientFrame{}, err
		}
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		return frame, nil
	}
}

// writeFrame sends one server frame, logging failures at debug. Used only
// before the write pump starts; after that all output goes through Push.
func (s *Server) writeFrame(conn *websocket.Conn, frame serverFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Debug("writing frame", zap.Error(err))
	}
}

// parseClass maps a client class string onto the closed class set.
func parseClass(raw string) (class.Name, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "mage":
		return class.Mage, true
	case "healer":
		return class.Healer, true
	case "warrior":
		return class.Warrior, true
	case "thief":
		return class.Thief, true
	case "undecided", "":
		return class.Undecided, true
	default:
		return "", false
	}
}
