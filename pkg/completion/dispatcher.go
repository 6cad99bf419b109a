package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"construct-hq/loom/pkg/chat"
	"construct-hq/loom/pkg/processing/tokens"
	"construct-hq/loom/pkg/prompt"
	"construct-hq/loom/pkg/providers"
	"construct-hq/loom/pkg/store"
	"construct-hq/loom/pkg/telemetry/metrics"
	"construct-hq/loom/pkg/telemetry/tracing"
)

// Dispatcher resolves, assembles and dispatches completion requests. It is
// safe for concurrent use.
type Dispatcher struct {
	store         store.Store
	backends      *providers.Registry
	estimator     tokens.Estimator
	assemblerOpts []prompt.AssemblerOption
	keys          KeyResolver
	logger        *slog.Logger
	metrics       *metrics.Collector
	tracer        *tracing.Tracer
}

// KeyResolver expands secret references in connection keys.
type KeyResolver interface {
	Resolve(ctx context.Context, key string) (string, error)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithMetrics records dispatch metrics on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(d *Dispatcher) {
		d.metrics = c
	}
}

// WithTracer records prepare and send spans on t.
func WithTracer(t *tracing.Tracer) Option {
	return func(d *Dispatcher) {
		d.tracer = t
	}
}

// WithKeyResolver resolves connection keys through r before each backend
// call. Without one, keys are sent as stored.
func WithKeyResolver(r KeyResolver) Option {
	return func(d *Dispatcher) {
		d.keys = r
	}
}

// WithAssemblerOptions passes options to every prompt assembler.
func WithAssemblerOptions(opts ...prompt.AssemblerOption) Option {
	return func(d *Dispatcher) {
		d.assemblerOpts = append(d.assemblerOpts, opts...)
	}
}

// NewDispatcher creates a dispatcher. A nil estimator uses the simple
// character-ratio estimator.
func NewDispatcher(st store.Store, backends *providers.Registry, est tokens.Estimator, opts ...Option) *Dispatcher {
	if est == nil {
		est = tokens.NewSimpleEstimator(nil)
	}
	d := &Dispatcher{
		store:     st,
		backends:  backends,
		estimator: est,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With("component", "completion")
	return d
}

// Plan is a fully resolved request, ready to send.
type Plan struct {
	Connection *chat.Connection
	Settings   *chat.Settings

	// Character is nil when the request named none or it was not found.
	Character *chat.Character

	Assembly prompt.Assembly
	Stop     []string
}

// Prepare resolves records and assembles the prompt without contacting a
// backend.
func (d *Dispatcher) Prepare(ctx context.Context, req *chat.CompletionRequest) (*Plan, error) {
	ctx, span := d.tracer.Start(ctx, "completion.prepare")
	defer span.End()

	plan, err := d.prepare(ctx, req)
	if plan != nil {
		span.SetAttributes(
			attribute.String("loom.connection_id", plan.Connection.ID),
			attribute.String("loom.model", plan.Connection.Model),
			attribute.Int("loom.prompt_tokens", plan.Assembly.PromptTokens),
			attribute.Int("loom.fitted_messages", len(plan.Assembly.Fitted)),
		)
	}
	tracing.RecordResult(span, err)
	return plan, err
}

func (d *Dispatcher) prepare(ctx context.Context, req *chat.CompletionRequest) (*Plan, error) {
	if req == nil {
		return nil, &Error{Err: errors.New("request is nil")}
	}
	if err := req.Validate(); err != nil {
		return nil, &Error{Err: fmt.Errorf("%w: %w", ErrInvalidRequest, err)}
	}

	// One snapshot per request, so both ids come from the same state.
	defaults, err := d.store.Defaults(ctx)
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("failed to read defaults: %w", err)}
	}

	connID := req.ConnectionID
	if connID == "" {
		connID = defaults.Connection
	}
	if connID == "" {
		return nil, &Error{Err: ErrNoConnection}
	}
	conn, err := d.store.Connection(ctx, connID)
	if err != nil {
		return nil, &Error{ConnectionID: connID, Err: notFound(ErrConnectionNotFound, err)}
	}

	settingsID := req.SettingsID
	if settingsID == "" {
		settingsID = defaults.Settings
	}
	if settingsID == "" {
		return nil, &Error{ConnectionID: connID, Model: conn.Model, Err: ErrNoSettings}
	}
	settings, err := d.store.Settings(ctx, settingsID)
	if err != nil {
		return nil, &Error{ConnectionID: connID, Model: conn.Model, Err: notFound(ErrSettingsNotFound, err)}
	}

	character := d.character(ctx, req.Character)

	assembler := prompt.NewAssembler(tokens.Bind(d.estimator, conn.Model), d.assemblerOpts...)
	assembly := assembler.Assemble(prompt.AssembleInput{
		Character: character,
		Persona:   req.Persona,
		Messages:  req.Messages,
		Settings:  settings,
	})
	d.metrics.RecordPrompt(assembly.PromptTokens, len(assembly.Fitted))

	stop := providers.WithModelStops(prompt.StopSequences(req.Messages), conn.Model)

	d.logger.DebugContext(ctx, "prompt assembled",
		"connection_id", connID,
		"settings_id", settingsID,
		"model", conn.Model,
		"budget", assembly.Budget,
		"prompt_tokens", assembly.PromptTokens,
		"fitted_messages", len(assembly.Fitted),
		"total_messages", len(req.Messages),
	)

	return &Plan{
		Connection: conn,
		Settings:   settings,
		Character:  character,
		Assembly:   assembly,
		Stop:       stop,
	}, nil
}

// notFound maps a store miss to sentinel, keeping other store errors as is.
func notFound(sentinel, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return err
}

// character resolves the request's character. Lookup failures are logged
// and yield nil.
func (d *Dispatcher) character(ctx context.Context, ref chat.CharacterRef) *chat.Character {
	if ref.Inline != nil {
		c := *ref.Inline
		return &c
	}
	if ref.ID == "" {
		return nil
	}
	c, err := d.store.Character(ctx, ref.ID)
	if err != nil {
		d.logger.WarnContext(ctx, "character unavailable, continuing without preamble",
			"character_id", ref.ID,
			"error", err,
		)
		return nil
	}
	return c
}

// Complete dispatches req to the backend for its connection type. Failures
// are logged and yield nil.
func (d *Dispatcher) Complete(ctx context.Context, req *chat.CompletionRequest) json.RawMessage {
	raw, err := d.TryComplete(ctx, req)
	if err != nil {
		d.logFailure(ctx, err)
		return nil
	}
	return raw
}

// TryComplete is Complete with the error returned.
func (d *Dispatcher) TryComplete(ctx context.Context, req *chat.CompletionRequest) (json.RawMessage, error) {
	return d.dispatch(ctx, "", req)
}

// CompleteWith dispatches req to the backend registered for backendType,
// whatever the connection's own type. Failures are logged and yield nil.
func (d *Dispatcher) CompleteWith(ctx context.Context, backendType string, req *chat.CompletionRequest) json.RawMessage {
	raw, err := d.TryCompleteWith(ctx, backendType, req)
	if err != nil {
		d.logFailure(ctx, err)
		return nil
	}
	return raw
}

// TryCompleteWith is CompleteWith with the error returned.
func (d *Dispatcher) TryCompleteWith(ctx context.Context, backendType string, req *chat.CompletionRequest) (json.RawMessage, error) {
	return d.dispatch(ctx, backendType, req)
}

func (d *Dispatcher) dispatch(ctx context.Context, backendType string, req *chat.CompletionRequest) (json.RawMessage, error) {
	plan, err := d.Prepare(ctx, req)
	if err != nil {
		d.metrics.RecordCompletion("none", "error")
		return nil, err
	}
	return d.Send(ctx, backendType, plan)
}

// Send performs the backend call for a prepared plan. An empty backendType
// means the connection's type.
func (d *Dispatcher) Send(ctx context.Context, backendType string, plan *Plan) (json.RawMessage, error) {
	ctx, span := d.tracer.Start(ctx, "completion.send", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	raw, err := d.send(ctx, backendType, plan)
	span.SetAttributes(
		attribute.String("loom.connection_id", plan.Connection.ID),
		attribute.String("loom.model", plan.Connection.Model),
		attribute.Int("loom.response_bytes", len(raw)),
	)
	tracing.RecordResult(span, err)
	return raw, err
}

func (d *Dispatcher) send(ctx context.Context, backendType string, plan *Plan) (json.RawMessage, error) {
	connType := plan.Connection.Type
	if backendType != "" {
		connType = backendType
	}

	backend := d.backends.Lookup(connType)
	if backend == nil {
		d.metrics.RecordCompletion("none", "error")
		return nil, &Error{
			ConnectionID: plan.Connection.ID,
			Model:        plan.Connection.Model,
			Err:          fmt.Errorf("%w %q", ErrNoBackend, connType),
		}
	}

	name := backend.GetName()
	model := plan.Connection.Model
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("loom.backend", name))

	conn, err := d.resolveKey(ctx, plan.Connection)
	if err != nil {
		d.metrics.RecordBackendError(name, "config")
		d.metrics.RecordCompletion(name, "error")
		return nil, &Error{ConnectionID: conn.ID, Backend: name, Model: model, Err: err}
	}

	start := time.Now()
	raw, err := backend.Complete(ctx, &providers.Request{
		Connection: conn,
		Settings:   plan.Settings,
		Prompt:     plan.Assembly.Prompt,
		Stop:       plan.Stop,
	})
	elapsed := time.Since(start)

	d.metrics.RecordBackendLatency(name, model, elapsed)
	d.metrics.UpdateBackendHealth(name, backend.GetHealth().IsHealthy)

	if err != nil {
		d.metrics.RecordBackendError(name, providers.ErrorType(err))
		d.metrics.RecordCompletion(name, "error")
		return nil, &Error{ConnectionID: plan.Connection.ID, Backend: name, Model: model, Err: err}
	}

	d.metrics.RecordCompletion(name, "success")
	if usage, ok := ReadUsage(raw); ok {
		d.metrics.RecordUsage(name, model, usage.PromptTokens, usage.CompletionTokens)
	}

	d.logger.InfoContext(ctx, "completion dispatched",
		"connection_id", plan.Connection.ID,
		"backend", name,
		"model", model,
		"duration_ms", elapsed.Milliseconds(),
		"response_bytes", len(raw),
	)
	return raw, nil
}

// resolveKey returns conn with its key resolved. The stored record is never
// modified.
func (d *Dispatcher) resolveKey(ctx context.Context, conn *chat.Connection) (*chat.Connection, error) {
	if d.keys == nil {
		return conn, nil
	}
	key, err := d.keys.Resolve(ctx, conn.Key)
	if err != nil {
		return conn, fmt.Errorf("%w: %w", ErrKeyUnresolved, err)
	}
	if key == conn.Key {
		return conn, nil
	}
	resolved := *conn
	resolved.Key = key
	return &resolved, nil
}

func (d *Dispatcher) logFailure(ctx context.Context, err error) {
	attrs := []any{"error", err}
	var de *Error
	if errors.As(err, &de) {
		attrs = append(attrs,
			"connection_id", de.ConnectionID,
			"backend", de.Backend,
			"model", de.Model,
		)
	}

	// Resolution problems are the caller's doing; backend failures are ours.
	if errors.Is(err, ErrInvalidRequest) || errors.Is(err, ErrNoConnection) || errors.Is(err, ErrNoSettings) ||
		errors.Is(err, ErrConnectionNotFound) || errors.Is(err, ErrSettingsNotFound) {
		d.logger.WarnContext(ctx, "completion request could not be resolved", attrs...)
		return
	}
	d.logger.ErrorContext(ctx, "completion failed", attrs...)
}
