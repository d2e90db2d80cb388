package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/acheong08/lsdeps/internal/actualtree"
	"github.com/acheong08/lsdeps/internal/lstree"
)

// defaultDepth matches the CLI default when the client does not set one.
const defaultDepth = 1

// ProgressSender interface for sending progress updates
type ProgressSender interface {
	SendMessage(msg Message)
	SendLog(message, level string)
	SendError(message string, err error)
}

// Pipeline wraps the CLI report logic for WebSocket use: the same
// load-then-report pass, with the rendering and the problem set streamed
// to the client instead of printed.
type Pipeline struct {
	sender ProgressSender
}

// NewPipeline creates a new pipeline instance
func NewPipeline(sender ProgressSender) *Pipeline {
	return &Pipeline{sender: sender}
}

// Run executes one report request. Output is always sent before any
// failure status, mirroring the CLI's exit contract.
func (p *Pipeline) Run(ctx context.Context, payload *ReportPayload) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.sender.SendLog(fmt.Sprintf("Loading installed tree at %s", payload.Path), "info")
	root, err := actualtree.Load(payload.Path)
	if err != nil {
		p.sender.SendError("Failed to load installed tree", err)
		return err
	}

	opts := lstree.Options{
		Args:      payload.Args,
		MaxDepth:  defaultDepth,
		All:       payload.All,
		Long:      payload.Long,
		Parseable: payload.Parseable,
		Unicode:   true,
	}
	if payload.Depth != nil {
		opts.MaxDepth = *payload.Depth
	}
	if payload.Global {
		// root.Path is the absolute form of the requested path.
		opts.GlobalRoot = root.Path
	}

	res, reportErr := lstree.Report(root, opts)
	if res == nil {
		p.sender.SendError("Report failed", reportErr)
		return reportErr
	}

	p.sender.SendMessage(NewOutputMessage(res.Output, opts.Parseable))
	if len(res.Problems) > 0 {
		p.sender.SendMessage(NewProblemsMessage(res.Problems))
	}

	var rootErr *lstree.RootParseError
	if errors.As(reportErr, &rootErr) {
		p.sender.SendLog(rootErr.Error(), "error")
	}

	p.sender.SendMessage(NewCompleteMessage(reportErr == nil && !res.MatchedNone))
	return nil
}
