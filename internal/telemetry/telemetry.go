// Package telemetry streams scheduler lifecycle events to a socket.io
// endpoint. A nil Publisher is valid and drops every event, so callers
// attach it unconditionally.
package telemetry

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/frc-5160-the-chargers/gocommand/internal/command"
	"github.com/frc-5160-the-chargers/gocommand/internal/ctxlog"
	"github.com/frc-5160-the-chargers/gocommand/internal/scheduler"
)

const connectTimeout = 15 * time.Second

// Publisher emits scheduler events over a connected socket.io client.
type Publisher struct {
	client *socket.Socket
}

// Connect dials the telemetry endpoint and waits for the socket.io
// handshake. An empty rawURL returns a nil Publisher, which silently
// discards events.
func Connect(ctx context.Context, rawURL string) (*Publisher, error) {
	if rawURL == "" {
		return nil, nil
	}
	logger := ctxlog.FromContext(ctx).With("telemetry_url", rawURL)

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing telemetry URL: %w", err)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket("/", opts)

	connectChan := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Telemetry connected.", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		connectChan <- errs[0].(error)
	})

	io.Connect()
	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("telemetry connection failed: %w", err)
		}
		return &Publisher{client: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while connecting telemetry")
	case <-time.After(connectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %v connecting telemetry", connectTimeout)
	}
}

// Close disconnects the underlying client. Safe on a nil Publisher.
func (p *Publisher) Close() {
	if p == nil || p.client == nil {
		return
	}
	p.client.Disconnect()
}

// Attach subscribes the publisher to the scheduler's lifecycle hooks.
// Safe on a nil Publisher.
func (p *Publisher) Attach(s *scheduler.Scheduler) {
	if p == nil {
		return
	}
	s.OnInitialize(func(cmd command.Command) {
		p.emit("command_initialized", cmd)
	})
	s.OnFinish(func(cmd command.Command) {
		p.emit("command_finished", cmd)
	})
	s.OnInterrupt(func(cmd command.Command) {
		p.emit("command_interrupted", cmd)
	})
}

// RoutineCompleted reports that a whole routine finished. Safe on a nil
// Publisher.
func (p *Publisher) RoutineCompleted(name string, elapsed time.Duration) {
	if p == nil || p.client == nil {
		return
	}
	p.client.Emit("routine_completed", map[string]any{
		"routine":    name,
		"elapsed_ms": elapsed.Milliseconds(),
	})
}

func (p *Publisher) emit(event string, cmd command.Command) {
	if p.client == nil {
		return
	}
	reqs := cmd.Requirements()
	reqNames := make([]string, 0, len(reqs))
	for _, sub := range reqs {
		reqNames = append(reqNames, sub.Name())
	}
	p.client.Emit(event, map[string]any{
		"command":      cmd.Name(),
		"requirements": reqNames,
		"timestamp":    time.Now().UnixMilli(),
	})
}
