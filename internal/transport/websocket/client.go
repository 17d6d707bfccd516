package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/iamasit07/connect4-hotseat/internal/domain"
)

const writeWait = 10 * time.Second

// Client is one surface watching a table.
type Client struct {
	TableID string
	conn    *websocket.Conn

	// writeMu ensures only one goroutine writes to the socket at a time,
	// conn.WriteJSON is not thread-safe.
	writeMu sync.Mutex
}

// Send writes a JSON message to this client
func (c *Client) Send(message domain.ServerMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(message)
}

// ConnectionManager tracks which sockets watch which table
type ConnectionManager struct {
	tables map[string]map[*Client]struct{}
	mu     sync.RWMutex // Protects the map itself
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		tables: make(map[string]map[*Client]struct{}),
	}
}

// AddConnection registers a socket for a table
func (cm *ConnectionManager) AddConnection(tableID string, conn *websocket.Conn) *Client {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	client := &Client{TableID: tableID, conn: conn}
	if cm.tables[tableID] == nil {
		cm.tables[tableID] = make(map[*Client]struct{})
	}
	cm.tables[tableID][client] = struct{}{}
	return client
}

// RemoveConnection closes the client's socket and forgets it
func (cm *ConnectionManager) RemoveConnection(client *Client) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	clients, exists := cm.tables[client.TableID]
	if !exists {
		return
	}
	if _, ok := clients[client]; ok {
		client.conn.Close()
		delete(clients, client)
	}
	if len(clients) == 0 {
		delete(cm.tables, client.TableID)
	}
}

func (cm *ConnectionManager) clients(tableID string) []*Client {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	out := make([]*Client, 0, len(cm.tables[tableID]))
	for c := range cm.tables[tableID] {
		out = append(out, c)
	}
	return out
}

// Broadcast sends a message to every surface on a table. Messages to one client keep
// their order, so move_made always arrives before game_over.
func (cm *ConnectionManager) Broadcast(tableID string, message domain.ServerMessage) {
	for _, c := range cm.clients(tableID) {
		// a failed write is picked up by that client's read loop
		_ = c.Send(message)
	}
}

// CloseTable tells every surface the table is gone and disconnects them
func (cm *ConnectionManager) CloseTable(tableID, reason string) {
	for _, c := range cm.clients(tableID) {
		_ = c.Send(domain.ServerMessage{Type: domain.MsgError, Code: "table_closed", Message: reason, TableID: tableID})
		cm.RemoveConnection(c)
	}
}

// Count returns how many surfaces watch a table
func (cm *ConnectionManager) Count(tableID string) int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.tables[tableID])
}
