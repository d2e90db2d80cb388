package server

import (
	"encoding/json"
	"fmt"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	// Client -> Server
	TypeReport MessageType = "report" // Client requests a report for a project directory
	TypePing   MessageType = "ping"   // Keep-alive

	// Server -> Client
	TypeOutput   MessageType = "output"   // Rendered tree or parseable listing
	TypeProblems MessageType = "problems" // Collected missing/invalid/extraneous findings
	TypeLog      MessageType = "log"      // Log messages for terminal
	TypeComplete MessageType = "complete" // Report finished, carries the success flag
	TypeError    MessageType = "error"    // Error message
)

// Message is the envelope for all WebSocket traffic
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ReportPayload is a client request to report on an installed tree.
// Global marks Path as a global install root, which suppresses the
// parseable error marker for the root itself.
type ReportPayload struct {
	Path      string   `json:"path"`
	Args      []string `json:"args,omitempty"`
	Depth     *int     `json:"depth,omitempty"`
	All       bool     `json:"all,omitempty"`
	Long      bool     `json:"long,omitempty"`
	Parseable bool     `json:"parseable,omitempty"`
	Global    bool     `json:"global,omitempty"`
}

// OutputPayload carries the rendered report
type OutputPayload struct {
	Output    string `json:"output"`
	Parseable bool   `json:"parseable"`
}

// ProblemsPayload carries the deduplicated problem set
type ProblemsPayload struct {
	Problems []string `json:"problems"`
}

// LogPayload carries a log line for the client terminal
type LogPayload struct {
	Message string `json:"message"`
	Level   string `json:"level"`
}

// CompletePayload signals the end of a report
type CompletePayload struct {
	Success bool `json:"success"`
}

// ErrorPayload carries a failure description
type ErrorPayload struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func mustMessage(t MessageType, payload any) Message {
	data, err := json.Marshal(payload)
	if err != nil {
		// All payload types are plain structs; marshaling cannot fail.
		panic(fmt.Sprintf("marshal %s payload: %v", t, err))
	}
	return Message{Type: t, Payload: data}
}

// NewOutputMessage wraps a rendered report
func NewOutputMessage(output string, parseable bool) Message {
	return mustMessage(TypeOutput, OutputPayload{Output: output, Parseable: parseable})
}

// NewProblemsMessage wraps the collected problem set
func NewProblemsMessage(problems []string) Message {
	return mustMessage(TypeProblems, ProblemsPayload{Problems: problems})
}

// NewLogMessage wraps a log line
func NewLogMessage(message, level string) Message {
	return mustMessage(TypeLog, LogPayload{Message: message, Level: level})
}

// NewCompleteMessage signals report completion
func NewCompleteMessage(success bool) Message {
	return mustMessage(TypeComplete, CompletePayload{Success: success})
}

// NewErrorMessage wraps a failure
func NewErrorMessage(message string, err error) Message {
	p := ErrorPayload{Message: message}
	if err != nil {
		p.Detail = err.Error()
	}
	return mustMessage(TypeError, p)
}

// ParseReportPayload extracts and validates a report request
func ParseReportPayload(msg Message) (*ReportPayload, error) {
	var payload ReportPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse report payload: %w", err)
	}
	if payload.Path == "" {
		return nil, fmt.Errorf("report payload missing 'path'")
	}
	return &payload, nil
}
