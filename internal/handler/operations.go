package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/prn-tf/agora/internal/auth"
	"github.com/prn-tf/agora/internal/domain"
	"github.com/prn-tf/agora/internal/service"
)

// Requirement is the capability an operation demands of its caller.
type Requirement int

const (
	// Public operations run for anonymous and signed-in callers alike.
	Public Requirement = iota

	// Authenticated operations fail with domain.ErrAuthenticationRequired
	// when the caller is anonymous.
	Authenticated
)

// String returns the requirement name.
func (r Requirement) String() string {
	if r == Authenticated {
		return "authenticated"
	}
	return "public"
}

type resolveFunc func(ctx context.Context, rc *auth.RequestContext, args json.RawMessage) (any, error)

// operation is one entry of the operation table.
type operation struct {
	kind        DocumentType
	requirement Requirement
	resolve     resolveFunc
}

// operationTable returns every operation the endpoint serves, keyed by name.
func (h *QueryHandler) operationTable() map[string]operation {
	return map[string]operation{
		// Reads
		"getUser":           {DocumentQuery, Public, h.getUser},
		"getAllUsers":       {DocumentQuery, Public, h.getAllUsers},
		"getAllTopics":      {DocumentQuery, Public, h.getAllTopics},
		"getTopic":          {DocumentQuery, Public, h.getTopic},
		"getPostsByTopic":   {DocumentQuery, Public, h.getPostsByTopic},
		"getCommentsByPost": {DocumentQuery, Public, h.getCommentsByPost},

		// Writes
		"register":       {DocumentMutation, Public, h.register},
		"login":          {DocumentMutation, Public, h.login},
		"createTopic":    {DocumentMutation, Authenticated, h.createTopic},
		"createPost":     {DocumentMutation, Public, h.createPost},
		"createComment":  {DocumentMutation, Authenticated, h.createComment},
		"replyToComment": {DocumentMutation, Authenticated, h.replyToComment},
	}
}

// authorize applies the capability gate of op to the caller in rc.
func authorize(op operation, rc *auth.RequestContext) error {
	if op.requirement == Authenticated && rc.Identity.IsAnonymous() {
		return domain.ErrAuthenticationRequired
	}
	return nil
}

// =============================================================================
// Argument decoding
// =============================================================================

// decodeArguments decodes raw into dst, rejecting unknown fields.
func decodeArguments(raw json.RawMessage, dst any) error {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		raw = json.RawMessage("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.NewValidationError("arguments", argumentMessage(err))
	}
	return nil
}

func argumentMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type.String())
	}
	return strings.TrimPrefix(err.Error(), "json: ")
}

func requireArgument(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.NewValidationError(name, "cannot be blank")
	}
	return nil
}

type idArgs struct {
	ID string `json:"id"`
}

type topicIDArgs struct {
	TopicID string `json:"topicId"`
}

type postIDArgs struct {
	PostID string `json:"postId"`
}

// inputArgs wraps a write operation's input object.
type inputArgs[T any] struct {
	Input *T `json:"input"`
}

func decodeInput[T any](raw json.RawMessage) (T, error) {
	var args inputArgs[T]
	if err := decodeArguments(raw, &args); err != nil {
		var zero T
		return zero, err
	}
	if args.Input == nil {
		var zero T
		return zero, domain.NewValidationError("input", "cannot be blank")
	}
	return *args.Input, nil
}

// =============================================================================
// Reads
// =============================================================================

func (h *QueryHandler) getUser(ctx context.Context, _ *auth.RequestContext, raw json.RawMessage) (any, error) {
	var args idArgs
	if err := decodeArguments(raw, &args); err != nil {
		return nil, err
	}
	if err := requireArgument("id", args.ID); err != nil {
		return nil, err
	}

	user, err := h.users.GetByID(ctx, args.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return newUserView(user), nil
}

func (h *QueryHandler) getAllUsers(ctx context.Context, _ *auth.RequestContext, raw json.RawMessage) (any, error) {
	if err := decodeArguments(raw, &struct{}{}); err != nil {
		return nil, err
	}

	users, err := h.users.List(ctx)
	if err != nil {
		return nil, err
	}
	return project(users, newUserView), nil
}

func (h *QueryHandler) getAllTopics(ctx context.Context, _ *auth.RequestContext, raw json.RawMessage) (any, error) {
	if err := decodeArguments(raw, &struct{}{}); err != nil {
		return nil, err
	}

	topics, err := h.topics.List(ctx)
	if err != nil {
		return nil, err
	}
	return project(topics, newTopicView), nil
}

func (h *QueryHandler) getTopic(ctx context.Context, _ *auth.RequestContext, raw json.RawMessage) (any, error) {
	var args idArgs
	if err := decodeArguments(raw, &args); err != nil {
		return nil, err
	}
	if err := requireArgument("id", args.ID); err != nil {
		return nil, err
	}

	topic, err := h.topics.GetByID(ctx, args.ID)
	if err != nil {
		if errors.Is(err, domain.ErrTopicNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return newTopicView(topic), nil
}

func (h *QueryHandler) getPostsByTopic(ctx context.Context, _ *auth.RequestContext, raw json.RawMessage) (any, error) {
	var args topicIDArgs
	if err := decodeArguments(raw, &args); err != nil {
		return nil, err
	}
	if err := requireArgument("topicId", args.TopicID); err != nil {
		return nil, err
	}

	posts, err := h.posts.ListByTopic(ctx, args.TopicID)
	if err != nil {
		return nil, err
	}
	return project(posts, newPostView), nil
}

func (h *QueryHandler) getCommentsByPost(ctx context.Context, _ *auth.RequestContext, raw json.RawMessage) (any, error) {
	var args postIDArgs
	if err := decodeArguments(raw, &args); err != nil {
		return nil, err
	}
	if err := requireArgument("postId", args.PostID); err != nil {
		return nil, err
	}

	comments, err := h.comments.ListByPost(ctx, args.PostID)
	if err != nil {
		return nil, err
	}
	return project(comments, newCommentView), nil
}

// =============================================================================
// Writes
// =============================================================================

func (h *QueryHandler) register(ctx context.Context, _ *auth.RequestContext, raw json.RawMessage) (any, error) {
	input, err := decodeInput[service.RegisterInput](raw)
	if err != nil {
		return nil, err
	}

	user, err := h.users.Register(ctx, input)
	if err != nil {
		return nil, err
	}
	return newUserView(user), nil
}

func (h *QueryHandler) login(ctx context.Context, _ *auth.RequestContext, raw json.RawMessage) (any, error) {
	input, err := decodeInput[service.LoginInput](raw)
	if err != nil {
		return nil, err
	}

	token, err := h.users.Login(ctx, input)
	if err != nil {
		return nil, err
	}
	return token, nil
}

func (h *QueryHandler) createTopic(ctx context.Context, rc *auth.RequestContext, raw json.RawMessage) (any, error) {
	input, err := decodeInput[service.TopicInput](raw)
	if err != nil {
		return nil, err
	}

	topic, err := h.topics.Create(ctx, rc.Identity.UserID(), input)
	if err != nil {
		return nil, err
	}
	return newTopicView(topic), nil
}

// createPost is public and records the createdBy supplied in the input.
func (h *QueryHandler) createPost(ctx context.Context, _ *auth.RequestContext, raw json.RawMessage) (any, error) {
	input, err := decodeInput[service.PostInput](raw)
	if err != nil {
		return nil, err
	}

	post, err := h.posts.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	return newPostView(post), nil
}

func (h *QueryHandler) createComment(ctx context.Context, rc *auth.RequestContext, raw json.RawMessage) (any, error) {
	input, err := decodeInput[service.CommentInput](raw)
	if err != nil {
		return nil, err
	}

	comment, err := h.comments.Create(ctx, rc.Identity.UserID(), input)
	if err != nil {
		return nil, err
	}
	return newCommentView(comment), nil
}

func (h *QueryHandler) replyToComment(ctx context.Context, rc *auth.RequestContext, raw json.RawMessage) (any, error) {
	input, err := decodeInput[service.CommentInput](raw)
	if err != nil {
		return nil, err
	}

	comment, err := h.comments.Reply(ctx, rc.Identity.UserID(), input)
	if err != nil {
		return nil, err
	}
	return newCommentView(comment), nil
}
