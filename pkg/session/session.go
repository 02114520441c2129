// Package session carries the build context shared by graph construction
// and resolution: the resolver, the logger and, when the graph was
// started from a project file, the project descriptor.
//
// A Session is passed explicitly. Code that only has a context.Context
// can recover it with FromContext.
package session

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/resolve"
)

// Session is one build context. It is immutable after New.
type Session struct {
	ID        string
	Resolver  resolve.Resolver
	Logger    *log.Logger
	Project   *resolve.Descriptor
	CreatedAt time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. The session id is attached to every entry.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.Logger = l }
}

// WithProject records the descriptor of the project being analysed.
func WithProject(d *resolve.Descriptor) Option {
	return func(s *Session) { s.Project = d }
}

// WithID overrides the generated id.
func WithID(id string) Option {
	return func(s *Session) { s.ID = id }
}

// New creates a session resolving through r.
func New(r resolve.Resolver, opts ...Option) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		Resolver:  r,
		CreatedAt: time.Now(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.Logger == nil {
		s.Logger = log.New(io.Discard)
	}
	s.Logger = s.Logger.With("session", shortID(s.ID))
	return s
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

type contextKey struct{}

// NewContext returns a context carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored in ctx, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}
