package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/morfolab/morfo/pkg/jsonscan"
	"github.com/morfolab/morfo/pkg/logger"
	"github.com/morfolab/morfo/pkg/morph"
	"github.com/morfolab/morfo/pkg/sse"
)

// State is the lifecycle state of a Session.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateErrored
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateErrored:
		return "errored"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateErrored || s == StateCancelled
}

// Input validation errors, surfaced synchronously before any network
// activity. Retry policy for transport failures is a caller concern.
var (
	ErrEmptyQuery      = errors.New("query must not be empty")
	ErrEmptyCredential = errors.New("credential must not be empty")
)

const (
	readChunkSize = 32 * 1024

	// maxErrorBody bounds how much of a non-2xx response body is read for
	// the error message.
	maxErrorBody = 8 * 1024
)

// Client issues streaming analysis requests against an upstream completion
// endpoint. At most one Session is active per Client: starting a new
// session cancels the previous one first, so independent sessions never
// share buffer state.
type Client struct {
	endpoint    string
	model       string
	prompt      string
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      *slog.Logger
	bufferLimit int
	idleTimeout time.Duration

	mu     sync.Mutex
	active *Session
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for upstream requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the client logger. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRateLimit throttles how often sessions may start. Zero disables
// throttling.
func WithRateLimit(perMinute int) Option {
	return func(c *Client) {
		if perMinute > 0 {
			c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
		}
	}
}

// WithBufferLimit caps the logical text buffer in bytes. Non-positive
// values select jsonscan.DefaultLimit.
func WithBufferLimit(limit int) Option {
	return func(c *Client) { c.bufferLimit = limit }
}

// WithIdleTimeout terminates a session when no bytes arrive from the
// upstream for d. Zero disables the watchdog and a hung transport is only
// recovered by cancellation.
func WithIdleTimeout(d time.Duration) Option {
	return func(c *Client) { c.idleTimeout = d }
}

// WithPrompt sets the instruction text sent alongside each query. The
// core never interprets it; its content is a prompt contract with the
// model.
func WithPrompt(prompt string) Option {
	return func(c *Client) { c.prompt = prompt }
}

// NewClient creates a Client for the given endpoint and model.
func NewClient(endpoint, model string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		model:    model,
		logger:   logger.Nop(),
		httpClient: &http.Client{
			// Connection-level timeout only; streams are long-lived and
			// read progress is guarded by the idle watchdog instead.
			Timeout: 0,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// requestBody is the JSON body sent to the streaming endpoint.
type requestBody struct {
	Model        string `json:"model"`
	Input        string `json:"input"`
	Instructions string `json:"instructions,omitempty"`
	Stream       bool   `json:"stream"`
}

// Start begins a streaming session for query, authenticated with
// credential. Both must be non-empty after trimming or no request is
// issued. A session already running on this Client is cancelled first.
//
// Objects extracted from the stream are delivered on Session.Objects in
// the order their closing braces arrive; the channel closes when the
// session reaches a terminal state.
func (c *Client) Start(ctx context.Context, query, credential string) (*Session, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if strings.TrimSpace(credential) == "" {
		return nil, ErrEmptyCredential
	}

	ctx, cancel := context.WithCancel(ctx)

	s := &Session{
		id:      uuid.NewString(),
		state:   StateRunning,
		cancel:  cancel,
		objects: make(chan morph.Object, 16),
		done:    make(chan struct{}),
		logger:  c.logger,
	}

	// Supersede any prior session before the new one goes live.
	c.mu.Lock()
	if prev := c.active; prev != nil {
		prev.Cancel()
	}
	c.active = s
	c.mu.Unlock()

	c.logger.Debug("starting stream session",
		"session", s.id,
		"endpoint", c.endpoint,
		"model", c.model,
	)

	go s.run(ctx, c, query, credential)

	return s, nil
}

// Session is one streaming request: the read loop, its buffers, and its
// terminal state. Sessions are created by Client.Start and own their
// buffer state exclusively; the synchronous per-chunk pipeline runs to
// completion between reads, so no locking guards the buffers themselves.
type Session struct {
	id      string
	cancel  context.CancelFunc
	objects chan morph.Object
	done    chan struct{}
	logger  *slog.Logger

	timedOut atomic.Bool

	mu    sync.Mutex
	state State
	err   error
}

// ID returns the session's correlation ID.
func (s *Session) ID() string { return s.id }

// Objects returns the channel of extracted content objects. The channel
// closes when the session terminates; the terminal "done" object is
// consumed by the session itself and never delivered.
func (s *Session) Objects() <-chan morph.Object { return s.objects }

// Done returns a channel closed once the session reaches a terminal state.
func (s *Session) Done() <-chan struct{} { return s.done }

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the terminal error for an errored session, nil otherwise.
// Cancellation is not an error.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Cancel stops the session: no further reads are issued and the transport
// connection is released. In-flight parse work for an already-received
// chunk may still emit objects. Cancelling a terminal session is a no-op.
func (s *Session) Cancel() {
	s.cancel()
}

// finish records the terminal state exactly once. Later calls lose, so a
// completion that races a cancellation keeps whichever landed first.
func (s *Session) finish(state State, err error) {
	s.mu.Lock()
	if s.state.Terminal() {
		s.mu.Unlock()
		return
	}
	s.state = state
	s.err = err
	s.mu.Unlock()

	// Release the transport regardless of how the session ended.
	s.cancel()
	close(s.objects)
	close(s.done)

	switch state {
	case StateErrored:
		s.logger.Warn("stream session errored", "session", s.id, "error", err)
	default:
		s.logger.Debug("stream session finished", "session", s.id, "state", state.String())
	}
}

// run owns the read loop. All buffer mutation happens here, sequentially.
func (s *Session) run(ctx context.Context, c *Client, query, credential string) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			s.finishFromContext(ctx, err)
			return
		}
	}

	body, err := json.Marshal(requestBody{
		Model:        c.model,
		Input:        query,
		Instructions: c.prompt,
		Stream:       true,
	})
	if err != nil {
		s.finish(StateErrored, fmt.Errorf("encoding request: %w", err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		s.finish(StateErrored, fmt.Errorf("creating request: %w", err))
		return
	}
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		s.finishFromContext(ctx, fmt.Errorf("upstream request failed: %w", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		s.finish(StateErrored, fmt.Errorf("upstream returned status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(msg))))
		return
	}

	// The watchdog covers a hung upstream that neither sends nor closes.
	var watchdog *time.Timer
	if c.idleTimeout > 0 {
		watchdog = time.AfterFunc(c.idleTimeout, func() {
			s.timedOut.Store(true)
			s.cancel()
		})
		defer watchdog.Stop()
	}

	var (
		dec      Decoder
		splitter sse.Splitter
	)
	extractor := jsonscan.NewExtractor(c.bufferLimit)
	buf := make([]byte, readChunkSize)

	for {
		if ctx.Err() != nil {
			s.finishFromContext(ctx, ctx.Err())
			return
		}

		n, err := resp.Body.Read(buf)
		if watchdog != nil {
			watchdog.Reset(c.idleTimeout)
		}

		if n > 0 {
			if terminal := s.pump(ctx, dec.Decode(buf[:n]), &splitter, extractor); terminal {
				return
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				// Natural end of transport. Flush the decoder carry and any
				// unterminated final frame, then complete.
				tail := dec.Flush()
				if terminal := s.pump(ctx, tail, &splitter, extractor); terminal {
					return
				}
				if rest := splitter.Rest(); rest != "" {
					splitter.Reset()
					if terminal := s.handleFrame(ctx, sse.ParseFrame(rest), extractor); terminal {
						return
					}
				}
				s.finish(StateCompleted, nil)
				return
			}
			s.finishFromContext(ctx, fmt.Errorf("reading stream: %w", err))
			return
		}
	}
}

// pump runs one decoded chunk of text through the frame splitter and every
// completed frame through dispatch. It reports whether the session reached
// a terminal state.
func (s *Session) pump(ctx context.Context, text string, splitter *sse.Splitter, extractor *jsonscan.Extractor) bool {
	for _, frame := range splitter.Feed(text) {
		if s.handleFrame(ctx, sse.ParseFrame(frame), extractor) {
			return true
		}
	}
	return false
}

// handleFrame dispatches one parsed frame. It reports whether the session
// reached a terminal state.
func (s *Session) handleFrame(ctx context.Context, ev sse.Event, extractor *jsonscan.Extractor) bool {
	action := Dispatch(ev)

	switch action.Kind {
	case ActionAppend:
		for _, raw := range extractor.Append(action.Text) {
			obj := morph.Decode(raw)
			if obj.IsDone() {
				s.finish(StateCompleted, nil)
				return true
			}
			if !s.emit(ctx, obj) {
				s.finishFromContext(ctx, ctx.Err())
				return true
			}
		}

	case ActionComplete:
		s.finish(StateCompleted, nil)
		return true

	case ActionFail:
		s.finish(StateErrored, errors.New(action.Message))
		return true
	}

	return false
}

// emit delivers one object, honoring cancellation while the consumer is
// slow. Reports false when the session was cancelled instead.
func (s *Session) emit(ctx context.Context, obj morph.Object) bool {
	select {
	case s.objects <- obj:
		return true
	case <-ctx.Done():
		return false
	}
}

// finishFromContext classifies a failure: a cancelled context is a
// user-initiated Cancelled state unless the idle watchdog fired, in which
// case the hang is a real error.
func (s *Session) finishFromContext(ctx context.Context, err error) {
	if s.timedOut.Load() {
		s.finish(StateErrored, errors.New("idle timeout waiting for upstream"))
		return
	}
	if ctx.Err() != nil {
		s.finish(StateCancelled, nil)
		return
	}
	s.finish(StateErrored, err)
}
