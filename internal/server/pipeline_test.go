package server

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	messages []Message
	errors   []string
}

func (f *fakeSender) SendMessage(msg Message) { f.messages = append(f.messages, msg) }

func (f *fakeSender) SendLog(msg, level string) {
	f.messages = append(f.messages, NewLogMessage(msg, level))
}

func (f *fakeSender) SendError(msg string, _ error) { f.errors = append(f.errors, msg) }

func (f *fakeSender) byType(t MessageType) []Message {
	var out []Message
	for _, m := range f.messages {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"),
		[]byte(`{"name": "demo", "version": "1.0.0", "dependencies": {"foo": "^1.0.0"}}`), 0644))
	fooDir := filepath.Join(dir, "node_modules", "foo")
	require.NoError(t, os.MkdirAll(fooDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(fooDir, "package.json"),
		[]byte(`{"name": "foo", "version": "1.0.0"}`), 0644))
	return dir
}

func TestPipelineRun(t *testing.T) {
	sender := &fakeSender{}
	p := NewPipeline(sender)

	err := p.Run(context.Background(), &ReportPayload{Path: writeProject(t)})
	require.NoError(t, err)
	require.Empty(t, sender.errors)

	outputs := sender.byType(TypeOutput)
	require.Len(t, outputs, 1)
	var op OutputPayload
	require.NoError(t, json.Unmarshal(outputs[0].Payload, &op))
	assert.Contains(t, op.Output, "demo@1.0.0")
	assert.Contains(t, op.Output, "foo@1.0.0")

	completes := sender.byType(TypeComplete)
	require.Len(t, completes, 1)
	var cp CompletePayload
	require.NoError(t, json.Unmarshal(completes[0].Payload, &cp))
	assert.True(t, cp.Success)
}

func TestPipelineRunProblems(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"),
		[]byte(`{"name": "demo", "version": "1.0.0", "dependencies": {"ghost": "^1.0.0"}}`), 0644))

	sender := &fakeSender{}
	err := NewPipeline(sender).Run(context.Background(), &ReportPayload{Path: dir})
	require.NoError(t, err)

	require.Len(t, sender.byType(TypeProblems), 1)

	completes := sender.byType(TypeComplete)
	require.Len(t, completes, 1)
	var cp CompletePayload
	require.NoError(t, json.Unmarshal(completes[0].Payload, &cp))
	assert.False(t, cp.Success)
}

func TestPipelineRunGlobal(t *testing.T) {
	dir := t.TempDir()
	fooDir := filepath.Join(dir, "node_modules", "foo")
	require.NoError(t, os.MkdirAll(fooDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte("{not json"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(fooDir, "package.json"),
		[]byte(`{"name": "foo", "version": "1.0.0"}`), 0644))

	sender := &fakeSender{}
	err := NewPipeline(sender).Run(context.Background(), &ReportPayload{
		Path:      dir,
		Global:    true,
		Parseable: true,
		Long:      true,
	})
	require.NoError(t, err)

	outputs := sender.byType(TypeOutput)
	require.Len(t, outputs, 1)
	var op OutputPayload
	require.NoError(t, json.Unmarshal(outputs[0].Payload, &op))
	rootLine := strings.Split(op.Output, "\n")[0]
	assert.NotContains(t, rootLine, ":ERROR")
}

func TestPipelineRunBadPath(t *testing.T) {
	sender := &fakeSender{}
	err := NewPipeline(sender).Run(context.Background(), &ReportPayload{
		Path: filepath.Join(t.TempDir(), "missing"),
	})
	require.Error(t, err)
	assert.NotEmpty(t, sender.errors)
	assert.Empty(t, sender.byType(TypeOutput))
}

func TestPipelineRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sender := &fakeSender{}
	err := NewPipeline(sender).Run(ctx, &ReportPayload{Path: writeProject(t)})
	require.ErrorIs(t, err, context.Canceled)
}
