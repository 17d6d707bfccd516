package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/iamasit07/connect4-hotseat/internal/domain"
	"github.com/iamasit07/connect4-hotseat/pkg/uid"
)

// GameSession is the game currently played on a table. Restarting a table replaces
// the whole session.
type GameSession struct {
	TableID      string
	GameID       string
	Settings     domain.Settings
	Game         *domain.Game
	CreatedAt    time.Time
	FinishedAt   time.Time
	LastActivity time.Time
	mu           sync.Mutex
	manager      *SessionManager
	out          *outbox

	// discarded is set once a restart, removal or eviction replaced this session;
	// it is returned to anyone still holding the old pointer
	discarded error
}

// Notifier pushes server messages to every surface watching a table.
type Notifier interface {
	Broadcast(tableID string, message domain.ServerMessage)
	CloseTable(tableID, reason string)
}

type GameRepository interface {
	SaveGame(ctx context.Context, record domain.GameRecord) error
	GetGameByID(ctx context.Context, gameID string) (*domain.GameRecord, error)
	ListRecentGames(ctx context.Context, limit int) ([]domain.GameRecord, error)
}

// SnapshotCache keeps live tables across restarts. Get returns "" for a missing key.
type SnapshotCache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type Options struct {
	DefaultSettings domain.Settings
	MaxWidth        int
	MaxHeight       int
	// SnapshotTTL bounds how long an untouched table survives in the cache
	SnapshotTTL time.Duration
}

// SessionManager manages the live tables
type SessionManager struct {
	sessions map[string]*GameSession // tableID → current GameSession
	mu       sync.RWMutex
	repo     GameRepository
	cache    SnapshotCache
	notifier Notifier
	opts     Options
	now      func() time.Time
}

// TableSummary describes a live table for listings.
type TableSummary struct {
	TableID      string            `json:"tableId"`
	GameID       string            `json:"gameId"`
	Status       domain.GameStatus `json:"status"`
	MoveCount    int               `json:"moveCount"`
	Width        int               `json:"width"`
	Height       int               `json:"height"`
	CreatedAt    time.Time         `json:"createdAt"`
	LastActivity time.Time         `json:"lastActivity"`
}

type tableSnapshot struct {
	TableID   string          `json:"tableId"`
	GameID    string          `json:"gameId"`
	Settings  domain.Settings `json:"settings"`
	CreatedAt time.Time       `json:"createdAt"`
	Game      domain.Snapshot `json:"game"`
}

// NewSessionManager wires the registry. repo, cache and notifier may each be nil.
func NewSessionManager(repo GameRepository, cache SnapshotCache, notifier Notifier, opts Options) *SessionManager {
	if opts.DefaultSettings == (domain.Settings{}) {
		opts.DefaultSettings = domain.DefaultSettings()
	}
	if opts.SnapshotTTL <= 0 {
		opts.SnapshotTTL = time.Hour
	}
	return &SessionManager{
		sessions: make(map[string]*GameSession),
		repo:     repo,
		cache:    cache,
		notifier: notifier,
		opts:     opts,
		now:      time.Now,
	}
}

func (sm *SessionManager) resolveSettings(settings *domain.Settings, fallback domain.Settings) (domain.Settings, error) {
	s := fallback
	if settings != nil {
		s = *settings
		// partially filled forms keep the fallback for what they leave out
		if s.Width == 0 && s.Height == 0 {
			s.Width, s.Height = fallback.Width, fallback.Height
		}
		if s.Player1Color == "" && s.Player2Color == "" {
			s.Player1Color, s.Player2Color = fallback.Player1Color, fallback.Player2Color
		}
	}
	if err := s.Validate(sm.opts.MaxWidth, sm.opts.MaxHeight); err != nil {
		return domain.Settings{}, err
	}
	return s, nil
}

var (
	errReplaced = fmt.Errorf("%w: game was replaced by a restart", domain.ErrInvalidState)
	errRemoved  = fmt.Errorf("%w: table was closed", domain.ErrTableNotFound)
)

func (sm *SessionManager) newSession(tableID string, settings domain.Settings) (*GameSession, error) {
	g, err := domain.NewGame(settings)
	if err != nil {
		return nil, err
	}
	now := sm.now()
	return &GameSession{
		TableID:      tableID,
		GameID:       uid.GenerateGameID(),
		Settings:     settings,
		Game:         g,
		CreatedAt:    now,
		LastActivity: now,
		manager:      sm,
		out:          &outbox{},
	}, nil
}

// CreateTable opens a new table with a fresh game. nil settings use the configured defaults.
func (sm *SessionManager) CreateTable(ctx context.Context, settings *domain.Settings) (*GameSession, error) {
	s, err := sm.resolveSettings(settings, sm.opts.DefaultSettings)
	if err != nil {
		return nil, err
	}

	session, err := sm.newSession(uid.GenerateTableID(), s)
	if err != nil {
		return nil, err
	}

	sm.mu.Lock()
	sm.sessions[session.TableID] = session
	sm.mu.Unlock()

	session.mu.Lock()
	session.storeSnapshotLocked(ctx)
	session.mu.Unlock()

	log.Printf("[SESSION] Created table %s (game %s, %dx%d)", session.TableID, session.GameID, s.Width, s.Height)
	return session, nil
}

// GetSession returns the current session of a table, reloading it from the cache if this
// process does not hold it.
func (sm *SessionManager) GetSession(ctx context.Context, tableID string) (*GameSession, bool) {
	sm.mu.RLock()
	session, exists := sm.sessions[tableID]
	sm.mu.RUnlock()
	if exists {
		return session, true
	}

	restored := sm.loadSnapshot(ctx, tableID)
	if restored == nil {
		return nil, false
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	// another request may have restored it first
	if current, ok := sm.sessions[tableID]; ok {
		return current, true
	}
	sm.sessions[tableID] = restored
	log.Printf("[SESSION] Restored table %s (game %s) from cache", tableID, restored.GameID)
	return restored, true
}

// Restart discards the table's current game and starts a new one. nil settings keep the
// previous ones.
func (sm *SessionManager) Restart(ctx context.Context, tableID string, settings *domain.Settings) (*GameSession, error) {
	current, exists := sm.GetSession(ctx, tableID)
	if !exists {
		return nil, domain.ErrTableNotFound
	}

	s, err := sm.resolveSettings(settings, current.Settings)
	if err != nil {
		return nil, err
	}

	session, err := sm.newSession(tableID, s)
	if err != nil {
		return nil, err
	}

	// held until game_start is queued so no move on the new game can overtake it
	session.mu.Lock()

	sm.mu.Lock()
	previous, exists := sm.sessions[tableID]
	if !exists {
		// removed while we were building the new game
		sm.mu.Unlock()
		session.mu.Unlock()
		return nil, domain.ErrTableNotFound
	}
	// surfaces keep one ordered stream across games
	session.out = previous.out
	sm.sessions[tableID] = session
	sm.mu.Unlock()

	previous.discard(errReplaced)

	session.storeSnapshotLocked(ctx)
	view := session.viewLocked()
	deliver := session.out.push(domain.ServerMessage{
		Type:    domain.MsgGameStart,
		TableID: tableID,
		GameID:  session.GameID,
		Game:    &view,
	})
	session.mu.Unlock()

	if deliver {
		session.out.drain(sm, tableID)
	}

	log.Printf("[SESSION] Restarted table %s: game %s replaced by %s", tableID, previous.GameID, session.GameID)
	return session, nil
}

// RemoveTable drops a table from memory and from the cache
func (sm *SessionManager) RemoveTable(ctx context.Context, tableID string) error {
	sm.mu.Lock()
	session, exists := sm.sessions[tableID]
	delete(sm.sessions, tableID)
	sm.mu.Unlock()

	if exists {
		session.discard(errRemoved)
	} else if sm.loadSnapshot(ctx, tableID) == nil {
		return domain.ErrTableNotFound
	}

	// the session is discarded first so a move in flight cannot write the snapshot back
	sm.deleteSnapshot(ctx, tableID)
	sm.closeSurfaces(tableID, "Table closed")
	log.Printf("[SESSION] Removed table %s", tableID)
	return nil
}

// CleanupIdleTables removes tables nobody touched for longer than idle and returns how
// many went away.
func (sm *SessionManager) CleanupIdleTables(ctx context.Context, idle time.Duration) int {
	cutoff := sm.now().Add(-idle)

	sm.mu.Lock()
	var stale []string
	for tableID, session := range sm.sessions {
		session.mu.Lock()
		if session.LastActivity.Before(cutoff) {
			session.discarded = errRemoved
			stale = append(stale, tableID)
			delete(sm.sessions, tableID)
		}
		session.mu.Unlock()
	}
	sm.mu.Unlock()

	for _, tableID := range stale {
		sm.deleteSnapshot(ctx, tableID)
		sm.closeSurfaces(tableID, "Table closed after inactivity")
	}

	if len(stale) > 0 {
		log.Printf("[SESSION] Memory cleanup: Removed %d idle tables", len(stale))
	}
	return len(stale)
}

// ActiveTables lists the live tables, most recently active first
func (sm *SessionManager) ActiveTables() []TableSummary {
	sm.mu.RLock()
	sessions := make([]*GameSession, 0, len(sm.sessions))
	for _, s := range sm.sessions {
		sessions = append(sessions, s)
	}
	sm.mu.RUnlock()

	summaries := make([]TableSummary, 0, len(sessions))
	for _, s := range sessions {
		s.mu.Lock()
		summaries = append(summaries, TableSummary{
			TableID:      s.TableID,
			GameID:       s.GameID,
			Status:       s.Game.Status,
			MoveCount:    s.Game.MoveCount,
			Width:        s.Settings.Width,
			Height:       s.Settings.Height,
			CreatedAt:    s.CreatedAt,
			LastActivity: s.LastActivity,
		})
		s.mu.Unlock()
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastActivity.After(summaries[j].LastActivity)
	})
	return summaries
}

func (sm *SessionManager) broadcast(tableID string, msg domain.ServerMessage) {
	if sm.notifier != nil {
		sm.notifier.Broadcast(tableID, msg)
	}
}

func (sm *SessionManager) closeSurfaces(tableID, reason string) {
	if sm.notifier != nil {
		sm.notifier.CloseTable(tableID, reason)
	}
}

func snapshotKey(tableID string) string {
	return "table:" + tableID
}

func (sm *SessionManager) loadSnapshot(ctx context.Context, tableID string) *GameSession {
	if sm.cache == nil {
		return nil
	}

	raw, err := sm.cache.Get(ctx, snapshotKey(tableID))
	if err != nil {
		log.Printf("[CACHE] Error loading table %s: %v", tableID, err)
		return nil
	}
	if raw == "" {
		return nil
	}

	var snap tableSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		log.Printf("[CACHE] Corrupt snapshot for table %s: %v", tableID, err)
		return nil
	}
	g, err := domain.RestoreGame(snap.Game)
	if err != nil {
		log.Printf("[CACHE] Rejected snapshot for table %s: %v", tableID, err)
		return nil
	}

	return &GameSession{
		TableID:      snap.TableID,
		GameID:       snap.GameID,
		Settings:     snap.Settings,
		Game:         g,
		CreatedAt:    snap.CreatedAt,
		LastActivity: sm.now(),
		manager:      sm,
		out:          &outbox{},
	}
}

func (sm *SessionManager) deleteSnapshot(ctx context.Context, tableID string) {
	if sm.cache == nil {
		return
	}
	if err := sm.cache.Del(ctx, snapshotKey(tableID)); err != nil {
		log.Printf("[CACHE] Error deleting table %s: %v", tableID, err)
	}
}

// storeSnapshotLocked writes the session to the cache (caller must hold gs.mu)
func (gs *GameSession) storeSnapshotLocked(ctx context.Context) {
	sm := gs.manager
	if sm.cache == nil || gs.discarded != nil {
		return
	}

	data, err := json.Marshal(tableSnapshot{
		TableID:   gs.TableID,
		GameID:    gs.GameID,
		Settings:  gs.Settings,
		CreatedAt: gs.CreatedAt,
		Game:      gs.Game.Snapshot(),
	})
	if err != nil {
		log.Printf("[CACHE] Error encoding table %s: %v", gs.TableID, err)
		return
	}
	if err := sm.cache.Set(ctx, snapshotKey(gs.TableID), string(data), sm.opts.SnapshotTTL); err != nil {
		log.Printf("[CACHE] Error storing table %s: %v", gs.TableID, err)
	}
}

// HandleMove plays column for whoever's turn it is. Rejected moves change nothing and
// are only reported back to the caller.
func (gs *GameSession) HandleMove(ctx context.Context, column int) (domain.MoveResult, domain.GameView, error) {
	gs.mu.Lock()
	out := gs.out
	result, view, messages, err := gs.applyMoveLocked(ctx, column)
	deliver := err == nil && out.push(messages...)
	gs.mu.Unlock()

	if err != nil {
		return domain.MoveResult{}, domain.GameView{}, err
	}
	// sockets are written outside the lock so a slow surface cannot stall the table
	if deliver {
		out.drain(gs.manager, gs.TableID)
	}
	return result, view, nil
}

func (gs *GameSession) applyMoveLocked(ctx context.Context, column int) (domain.MoveResult, domain.GameView, []domain.ServerMessage, error) {
	if gs.discarded != nil {
		return domain.MoveResult{}, domain.GameView{}, nil, gs.discarded
	}

	result, err := gs.Game.SubmitMove(column)
	if err != nil {
		return domain.MoveResult{}, domain.GameView{}, nil, err
	}

	sm := gs.manager
	gs.LastActivity = sm.now()
	view := gs.viewLocked()

	messages := []domain.ServerMessage{{
		Type:    domain.MsgMoveMade,
		TableID: gs.TableID,
		GameID:  gs.GameID,
		Move:    &result,
		Game:    &view,
	}}

	if gs.Game.IsFinished() {
		gs.FinishedAt = gs.LastActivity

		gameOverMsg := domain.ServerMessage{
			Type:    domain.MsgGameOver,
			TableID: gs.TableID,
			GameID:  gs.GameID,
			Game:    &view,
			Reason:  domain.ReasonTie,
		}
		if gs.Game.Status == domain.StatusWon {
			gameOverMsg.Winner = gs.Game.Winner
			gameOverMsg.WinnerColor = gs.Game.PlayerColor(gs.Game.Winner)
			gameOverMsg.Reason = domain.ReasonConnectFour
			gameOverMsg.Message = fmt.Sprintf("Player %d won!", gs.Game.Winner)
		} else {
			gameOverMsg.Message = "Tie!"
		}
		messages = append(messages, gameOverMsg)

		log.Printf("[SESSION] Game %s on table %s finished: %s", gs.GameID, gs.TableID, gameOverMsg.Message)
		gs.saveGameAsync(gs.recordLocked())
	}

	gs.storeSnapshotLocked(ctx)
	return result, view, messages, nil
}

func (gs *GameSession) discard(reason error) {
	gs.mu.Lock()
	gs.discarded = reason
	gs.mu.Unlock()
}

// outbox keeps a table's messages in the order they were queued. Whoever finds it idle
// delivers everything queued, including what other callers add meanwhile.
type outbox struct {
	mu       sync.Mutex
	queue    []domain.ServerMessage
	draining bool
}

// push queues messages and reports whether the caller has to drain
func (o *outbox) push(messages ...domain.ServerMessage) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.queue = append(o.queue, messages...)
	if o.draining {
		return false
	}
	o.draining = true
	return true
}

func (o *outbox) drain(sm *SessionManager, tableID string) {
	for {
		o.mu.Lock()
		batch := o.queue
		o.queue = nil
		if len(batch) == 0 {
			o.draining = false
			o.mu.Unlock()
			return
		}
		o.mu.Unlock()

		for _, msg := range batch {
			sm.broadcast(tableID, msg)
		}
	}
}

// View returns the current state of the game for rendering
func (gs *GameSession) View() domain.GameView {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.viewLocked()
}

func (gs *GameSession) viewLocked() domain.GameView {
	g := gs.Game
	return domain.GameView{
		TableID:       gs.TableID,
		GameID:        gs.GameID,
		Width:         g.Board.Width(),
		Height:        g.Board.Height(),
		Board:         g.Board.Cells(),
		Players:       g.Players,
		CurrentPlayer: g.CurrentPlayer,
		Status:        g.Status,
		Winner:        g.Winner,
		MoveCount:     g.MoveCount,
		ValidColumns:  gs.validColumnsLocked(),
	}
}

func (gs *GameSession) validColumnsLocked() []int {
	if gs.Game.IsFinished() {
		return []int{}
	}
	return gs.Game.Board.ValidColumns()
}

func (gs *GameSession) recordLocked() domain.GameRecord {
	g := gs.Game
	return domain.GameRecord{
		GameID:          gs.GameID,
		TableID:         gs.TableID,
		Width:           g.Board.Width(),
		Height:          g.Board.Height(),
		Player1Color:    g.Players[0].Color,
		Player2Color:    g.Players[1].Color,
		Status:          g.Status,
		Winner:          g.Winner,
		TotalMoves:      g.MoveCount,
		DurationSeconds: int(gs.FinishedAt.Sub(gs.CreatedAt).Seconds()),
		CreatedAt:       gs.CreatedAt,
		FinishedAt:      gs.FinishedAt,
		Board:           g.Board.Cells(),
	}
}

// Saves the finished game in background to avoid blocking game_over messages
func (gs *GameSession) saveGameAsync(record domain.GameRecord) {
	repo := gs.manager.repo
	if repo == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := repo.SaveGame(ctx, record); err != nil {
			log.Printf("[ARCHIVE] Error saving game %s: %v", record.GameID, err)
		} else {
			log.Printf("[ARCHIVE] Game %s saved successfully", record.GameID)
		}
	}()
}
