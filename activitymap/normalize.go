// Package activitymap turns auth activity events into flat audit records.
package activitymap

import (
	"context"
	"strings"
	"time"

	auth "github.com/goliatone/go-retail-auth"
)

const (
	// MetadataKeyKind stores the error kind of a failed attempt.
	MetadataKeyKind = "kind"
	// MetadataKeyReason stores the internal failure reason.
	MetadataKeyReason = "reason"
)

const (
	defaultChannel    = "auth"
	defaultObjectType = "user"
	defaultActorID    = "anonymous"
)

// Normalized is a transport-agnostic activity shape for downstream systems.
type Normalized struct {
	ActorID    string         `json:"actor_id"`
	Verb       string         `json:"verb"`
	ObjectType string         `json:"object_type,omitempty"`
	ObjectID   string         `json:"object_id,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	Outcome    string         `json:"outcome"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Option customizes normalization behavior.
type Option func(*normalizeOptions)

type normalizeOptions struct {
	channel       string
	objectType    string
	actorFallback string
}

// Normalize converts an auth.ActivityEvent into a generic normalized shape.
func Normalize(event auth.ActivityEvent, opts ...Option) Normalized {
	options := defaultNormalizeOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	actorID := firstNonEmpty(
		strings.TrimSpace(event.UserID),
		strings.TrimSpace(options.actorFallback),
	)

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	return Normalized{
		ActorID:    actorID,
		Verb:       string(event.EventType),
		ObjectType: options.objectType,
		ObjectID:   strings.TrimSpace(event.UserID),
		Channel:    options.channel,
		Outcome:    outcome(event),
		Metadata:   normalizeMetadata(event),
		OccurredAt: occurredAt.UTC(),
	}
}

// WithDefaultChannel sets the default channel for normalized records.
func WithDefaultChannel(channel string) Option {
	return func(opts *normalizeOptions) {
		opts.channel = strings.TrimSpace(channel)
	}
}

// WithDefaultObjectType sets the default object type for normalized records.
func WithDefaultObjectType(objectType string) Option {
	return func(opts *normalizeOptions) {
		opts.objectType = strings.TrimSpace(objectType)
	}
}

// WithActorFallback sets the actor id used when the event has no user.
func WithActorFallback(actorID string) Option {
	return func(opts *normalizeOptions) {
		opts.actorFallback = strings.TrimSpace(actorID)
	}
}

func defaultNormalizeOptions() normalizeOptions {
	return normalizeOptions{
		channel:       defaultChannel,
		objectType:    defaultObjectType,
		actorFallback: defaultActorID,
	}
}

func outcome(event auth.ActivityEvent) string {
	switch event.EventType {
	case auth.ActivityEventLoginFailure, auth.ActivityEventAccessDenied:
		return "failure"
	default:
		return "success"
	}
}

func normalizeMetadata(event auth.ActivityEvent) map[string]any {
	metadata := cloneMap(event.Metadata)

	if event.Kind != "" {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata[MetadataKeyKind] = string(event.Kind)
	}

	if event.Reason != "" {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata[MetadataKeyReason] = event.Reason
	}

	return metadata
}

func cloneMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

// LogSink writes every event as a normalized audit record to Logger.
type LogSink struct {
	Logger  auth.Logger
	Options []Option
}

var _ auth.ActivitySink = LogSink{}

// Record implements auth.ActivitySink.
func (s LogSink) Record(_ context.Context, event auth.ActivityEvent) error {
	if s.Logger == nil {
		return nil
	}

	n := Normalize(event, s.Options...)
	s.Logger.Info("audit",
		"actor_id", n.ActorID,
		"verb", n.Verb,
		"object_type", n.ObjectType,
		"object_id", n.ObjectID,
		"channel", n.Channel,
		"outcome", n.Outcome,
		"metadata", n.Metadata,
		"occurred_at", n.OccurredAt,
	)
	return nil
}
