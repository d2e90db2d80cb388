package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"

	"github.com/acheong08/lsdeps/internal/server"
)

// Config holds all environment configuration
type Config struct {
	// Server
	Port string

	// Root confines report requests to projects under this directory.
	// Empty means any absolute path is accepted.
	Root string
}

func loadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	config := &Config{
		Port: getEnv("PORT", "8080"),
		Root: getEnv("LSDEPS_ROOT", ""),
	}

	if config.Root != "" {
		abs, err := filepath.Abs(config.Root)
		if err != nil {
			return nil, fmt.Errorf("invalid LSDEPS_ROOT: %w", err)
		}
		config.Root = abs
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Client represents a connected WebSocket client
type Client struct {
	conn   *websocket.Conn
	config *Config
	send   chan server.Message
	// Track if a report is running (one at a time)
	reportCtx    context.Context
	reportCancel context.CancelFunc
}

func newClient(conn *websocket.Conn, config *Config) *Client {
	return &Client{
		conn:   conn,
		config: config,
		send:   make(chan server.Message, 256),
	}
}

func (c *Client) SendMessage(msg server.Message) {
	select {
	case c.send <- msg:
	default:
		// Channel full, drop message
		log.Println("Warning: message channel full, dropping message")
	}
}

func (c *Client) SendLog(message, level string) {
	c.SendMessage(server.NewLogMessage(message, level))
}

func (c *Client) SendError(message string, err error) {
	c.SendMessage(server.NewErrorMessage(message, err))
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(msg); err != nil {
				log.Printf("Error writing message: %v", err)
				return
			}

		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		// Cancel any running report
		if c.reportCancel != nil {
			c.reportCancel()
		}
		c.conn.Close()
	}()

	for {
		var msg server.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}

		switch msg.Type {
		case server.TypeReport:
			c.handleReport(msg)
		case server.TypePing:
			// Respond with pong
			c.SendMessage(server.Message{Type: "pong"})
		default:
			c.SendError(fmt.Sprintf("Unknown message type: %s", msg.Type), nil)
		}
	}
}

func (c *Client) handleReport(msg server.Message) {
	// Check if a report is already running
	if c.reportCtx != nil && c.reportCtx.Err() == nil {
		c.SendError("Report already in progress", nil)
		return
	}

	payload, err := server.ParseReportPayload(msg)
	if err != nil {
		c.SendError("Failed to parse report request", err)
		return
	}

	if err := c.checkPath(payload.Path); err != nil {
		c.SendError("Rejected report path", err)
		return
	}

	c.reportCtx, c.reportCancel = context.WithCancel(context.Background())
	defer func() {
		c.reportCtx = nil
		c.reportCancel = nil
	}()

	pipeline := server.NewPipeline(c)
	if err := pipeline.Run(c.reportCtx, payload); err != nil {
		if c.reportCtx.Err() == context.Canceled {
			c.SendLog("Report cancelled", "warning")
		}
		return
	}
}

// checkPath enforces the configured root, if any.
func (c *Client) checkPath(path string) error {
	if c.config.Root == "" {
		return nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if abs != c.config.Root && !strings.HasPrefix(abs, c.config.Root+string(filepath.Separator)) {
		return fmt.Errorf("path %s is outside %s", path, c.config.Root)
	}
	return nil
}

func serveWs(config *Config, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	client := newClient(conn, config)

	// Start goroutines for reading and writing
	go client.writePump()
	go client.readPump()
}

func main() {
	config, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Health check endpoint
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	// WebSocket endpoint
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(config, w, r)
	})

	log.Printf("Server starting on port %s", config.Port)
	if err := http.ListenAndServe(":"+config.Port, nil); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
