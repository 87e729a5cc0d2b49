package delivery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/marcelsud/webhookhub/event"
	"github.com/marcelsud/webhookhub/route"
	"github.com/marcelsud/webhookhub/signature"
)

/* Dispatcher performs the outbound HTTP POST for one destination
 * Success is a 2xx response; anything else (including transport errors)
 * is recorded and fed into the cycle's status decision
 */

// Result holds the outcome of a single outbound call
// ResponseStatus is nil when the call never produced an HTTP response
type Result struct {
	ResponseStatus *int
	ResponseBody   string
	Success        bool
	ErrorMessage   string
}

// Sender abstracts the outbound call so the orchestrator can be tested
// without a network
type Sender interface {
	Send(ctx context.Context, rt route.Route, ev event.Event, destination route.Destination) Result
}

type Dispatcher struct {
	client *http.Client
}

// NewDispatcher creates a dispatcher with the given HTTP timeout
func NewDispatcher(timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Send delivers an event payload to a destination endpoint
func (d *Dispatcher) Send(ctx context.Context, rt route.Route, ev event.Event, destination route.Destination) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, destination.Endpoint, bytes.NewReader(ev.Payload))
	if err != nil {
		return Result{ErrorMessage: fmt.Sprintf("creating request: %v", err)}
	}

	req.Header.Set("content-type", "application/json")
	req.Header.Set("x-webhookhub-event-id", ev.ID)
	req.Header.Set("x-webhookhub-route", rt.Slug)
	req.Header.Set("x-webhookhub-project", rt.ProjectName)
	req.Header.Set("x-webhookhub-signature", signature.Sign(rt.Secret, ev.Payload))
	req.Header.Set("x-webhookhub-timestamp", time.Now().Format(time.RFC3339))

	resp, err := d.client.Do(req)
	if err != nil {
		return Result{ErrorMessage: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, event.MaxResponseBodyLength))
	if err != nil {
		body = nil
	}

	status := resp.StatusCode
	ok := status >= 200 && status < 300

	result := Result{
		ResponseStatus: &status,
		ResponseBody:   string(body),
		Success:        ok,
	}
	if !ok {
		result.ErrorMessage = fmt.Sprintf("HTTP %d", status)
	}
	return result
}
