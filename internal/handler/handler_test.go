package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/prn-tf/agora/internal/auth"
	"github.com/prn-tf/agora/internal/config"
	"github.com/prn-tf/agora/internal/repository"
	"github.com/prn-tf/agora/internal/repository/sqlite"
	"github.com/prn-tf/agora/internal/service"
)

var testSecret = []byte("handler-test-secret-0123456789abcdef")

type fakeRecorder struct {
	mu         sync.Mutex
	operations map[string]int
	requests   int
}

func (f *fakeRecorder) RecordOperation(operation, outcome string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.operations[operation+"/"+outcome]++
}

func (f *fakeRecorder) RecordHTTPRequest(string, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
}

type testEnv struct {
	handler  http.Handler
	repos    *repository.Repositories
	recorder *fakeRecorder
}

type testResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []ErrorEntry               `json:"errors"`
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := zerolog.Nop()

	db, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(":memory:"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(ctx))

	repos := sqlite.NewRepositories(db)

	codec, err := auth.NewTokenCodec(testSecret, auth.WithTTL(time.Hour))
	require.NoError(t, err)

	recorder := &fakeRecorder{operations: make(map[string]int)}

	query := NewQueryHandler(QueryHandlerConfig{
		UserService:    service.NewUserService(repos.User, service.NewBcryptHasher(bcrypt.MinCost), codec, logger),
		TopicService:   service.NewTopicService(repos.Topic, logger),
		PostService:    service.NewPostService(repos.Post, logger),
		CommentService: service.NewCommentService(repos.Comment, logger),
		Recorder:       recorder,
		Logger:         logger,
	})

	router := NewRouter(RouterConfig{
		QueryHandler:  query,
		HealthHandler: NewHealthHandler(db, logger),
		Resolver:      auth.NewResolver(codec, repos.User, nil, logger),
		HTTPRecorder:  recorder,
		CORS:          config.CORSConfig{AllowedOrigins: []string{"*"}},
		MaxBodySize:   1 << 20,
		Logger:        logger,
	})

	return &testEnv{handler: router.Handler(), repos: repos, recorder: recorder}
}

func (e *testEnv) post(t *testing.T, token, body string) (int, testResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var resp testResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}

// mutate runs a single-operation mutation and returns its result and errors.
func (e *testEnv) mutate(t *testing.T, token, name string, input any) (json.RawMessage, []ErrorEntry) {
	t.Helper()
	return e.single(t, token, DocumentMutation, name, map[string]any{"input": input})
}

func (e *testEnv) query(t *testing.T, token, name string, args map[string]any) (json.RawMessage, []ErrorEntry) {
	t.Helper()
	return e.single(t, token, DocumentQuery, name, args)
}

func (e *testEnv) single(t *testing.T, token string, kind DocumentType, name string, args map[string]any) (json.RawMessage, []ErrorEntry) {
	t.Helper()

	doc := map[string]any{
		"type":       kind,
		"operations": []map[string]any{{"name": name, "arguments": args}},
	}
	body, err := json.Marshal(doc)
	require.NoError(t, err)

	status, resp := e.post(t, token, string(body))
	require.Equal(t, http.StatusOK, status)
	return resp.Data[name], resp.Errors
}

func (e *testEnv) registerAndLogin(t *testing.T, username string) (UserView, string) {
	t.Helper()

	raw, errs := e.mutate(t, "", "register", map[string]string{
		"username": username,
		"email":    username + "@x.com",
		"password": "pw-" + username,
	})
	require.Empty(t, errs)
	var user UserView
	require.NoError(t, json.Unmarshal(raw, &user))

	raw, errs = e.mutate(t, "", "login", map[string]string{
		"email":    username + "@x.com",
		"password": "pw-" + username,
	})
	require.Empty(t, errs)
	var token string
	require.NoError(t, json.Unmarshal(raw, &token))
	require.NotEmpty(t, token)

	return user, token
}

func requireCode(t *testing.T, errs []ErrorEntry, key, code string) ErrorEntry {
	t.Helper()
	require.Len(t, errs, 1)
	assert.Equal(t, code, errs[0].Extensions.Code)
	assert.Equal(t, []string{key}, errs[0].Path)
	return errs[0]
}

func TestQueryHandler_ForumFlow(t *testing.T) {
	env := newTestEnv(t)
	kay, token := env.registerAndLogin(t, "kay")

	assert.Equal(t, "kay", kay.Username)
	assert.Equal(t, "user", kay.Role)
	assert.NotEmpty(t, kay.ID)

	raw, errs := env.mutate(t, token, "createTopic", map[string]string{"title": "  Music ", "description": "songs"})
	require.Empty(t, errs)
	var topic TopicView
	require.NoError(t, json.Unmarshal(raw, &topic))
	assert.Equal(t, "Music", topic.Title)
	assert.Equal(t, kay.ID, topic.CreatedBy)
	_, err := time.Parse(time.RFC3339, topic.CreatedAt)
	assert.NoError(t, err)

	// Anonymous readers see the topic.
	raw, errs = env.query(t, "", "getAllTopics", nil)
	require.Empty(t, errs)
	var topics []TopicView
	require.NoError(t, json.Unmarshal(raw, &topics))
	require.Len(t, topics, 1)
	assert.Equal(t, topic, topics[0])

	raw, errs = env.mutate(t, "", "createPost", map[string]string{
		"title":     "First",
		"content":   "hello",
		"topicId":   topic.ID,
		"createdBy": kay.ID,
	})
	require.Empty(t, errs)
	var post PostView
	require.NoError(t, json.Unmarshal(raw, &post))
	assert.Equal(t, topic.ID, post.Topic)
	assert.Equal(t, kay.ID, post.CreatedBy)

	raw, errs = env.mutate(t, token, "createComment", map[string]string{"content": "nice", "postId": post.ID})
	require.Empty(t, errs)
	var comment map[string]any
	require.NoError(t, json.Unmarshal(raw, &comment))

	raw, errs = env.mutate(t, token, "replyToComment", map[string]string{"content": "thanks", "postId": post.ID})
	require.Empty(t, errs)
	var reply map[string]any
	require.NoError(t, json.Unmarshal(raw, &reply))

	// Comments and replies share one shape.
	assert.ElementsMatch(t, keys(comment), keys(reply))
	assert.Equal(t, kay.ID, reply["createdBy"])
	assert.Equal(t, post.ID, reply["post"])

	raw, errs = env.query(t, "", "getCommentsByPost", map[string]any{"postId": post.ID})
	require.Empty(t, errs)
	var comments []CommentView
	require.NoError(t, json.Unmarshal(raw, &comments))
	assert.Len(t, comments, 2)

	raw, errs = env.query(t, "", "getPostsByTopic", map[string]any{"topicId": topic.ID})
	require.Empty(t, errs)
	var posts []PostView
	require.NoError(t, json.Unmarshal(raw, &posts))
	require.Len(t, posts, 1)
	assert.Equal(t, post.ID, posts[0].ID)
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestQueryHandler_AuthenticatedOperationsRejectAnonymous(t *testing.T) {
	env := newTestEnv(t)
	kay, _ := env.registerAndLogin(t, "kay")

	expiredCodec, err := auth.NewTokenCodec(testSecret,
		auth.WithTTL(time.Hour),
		auth.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }),
	)
	require.NoError(t, err)
	expired, err := expiredCodec.Issue(kay.ID)
	require.NoError(t, err)

	foreignCodec, err := auth.NewTokenCodec([]byte("some-other-secret-0123456789abcdef"))
	require.NoError(t, err)
	foreign, err := foreignCodec.Issue(kay.ID)
	require.NoError(t, err)

	tokens := map[string]string{
		"no token":      "",
		"garbage token": "not-a-token",
		"expired token": expired,
		"foreign token": foreign,
	}

	for name, token := range tokens {
		t.Run(name, func(t *testing.T) {
			raw, errs := env.mutate(t, token, "createTopic", map[string]string{"title": "Music", "description": "songs"})
			assert.Equal(t, "null", string(raw))
			entry := requireCode(t, errs, "createTopic", CodeAuthenticationRequired)
			assert.Equal(t, "Authentication required", entry.Message)

			_, errs = env.mutate(t, token, "createComment", map[string]string{"content": "c", "postId": "p"})
			requireCode(t, errs, "createComment", CodeAuthenticationRequired)

			_, errs = env.mutate(t, token, "replyToComment", map[string]string{"content": "c", "postId": "p"})
			requireCode(t, errs, "replyToComment", CodeAuthenticationRequired)
		})
	}

	topics, err := env.repos.Topic.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, topics)
}

func TestQueryHandler_PublicReadsIgnoreBadTokens(t *testing.T) {
	env := newTestEnv(t)

	raw, errs := env.query(t, "garbage", "getAllTopics", nil)
	assert.Empty(t, errs)
	assert.Equal(t, "[]", string(raw))
}

func TestQueryHandler_CreatePostUnknownTopic(t *testing.T) {
	env := newTestEnv(t)
	kay, _ := env.registerAndLogin(t, "kay")

	raw, errs := env.mutate(t, "", "createPost", map[string]string{
		"title":     "Orphan",
		"content":   "nobody home",
		"topicId":   "missing-topic",
		"createdBy": kay.ID,
	})
	assert.Equal(t, "null", string(raw))
	entry := requireCode(t, errs, "createPost", CodeCreation)
	assert.True(t, strings.HasPrefix(entry.Message, "Error creating post"), entry.Message)

	posts, err := env.repos.Post.ListByTopic(context.Background(), "missing-topic")
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestQueryHandler_Login(t *testing.T) {
	env := newTestEnv(t)
	env.registerAndLogin(t, "kay")

	_, wrongPassword := env.mutate(t, "", "login", map[string]string{"email": "kay@x.com", "password": "nope"})
	_, unknownEmail := env.mutate(t, "", "login", map[string]string{"email": "ghost@x.com", "password": "nope"})

	a := requireCode(t, wrongPassword, "login", CodeInvalidCredentials)
	b := requireCode(t, unknownEmail, "login", CodeInvalidCredentials)
	assert.Equal(t, a, b)
	assert.Equal(t, "Invalid credentials.", a.Message)
}

func TestQueryHandler_TokenResolvesCaller(t *testing.T) {
	env := newTestEnv(t)
	kay, token := env.registerAndLogin(t, "kay")
	_, otherToken := env.registerAndLogin(t, "lee")

	raw, errs := env.mutate(t, token, "createTopic", map[string]string{"title": "Music", "description": "songs"})
	require.Empty(t, errs)
	var topic TopicView
	require.NoError(t, json.Unmarshal(raw, &topic))
	assert.Equal(t, kay.ID, topic.CreatedBy)

	raw, errs = env.mutate(t, otherToken, "createTopic", map[string]string{"title": "Books", "description": "pages"})
	require.Empty(t, errs)
	require.NoError(t, json.Unmarshal(raw, &topic))
	assert.NotEqual(t, kay.ID, topic.CreatedBy)
}

func TestQueryHandler_Register(t *testing.T) {
	env := newTestEnv(t)
	env.registerAndLogin(t, "kay")

	tests := []struct {
		name   string
		input  map[string]string
		code   string
		fields []string
	}{
		{
			name:  "duplicate username and email",
			input: map[string]string{"username": "kay", "email": "kay@x.com", "password": "pw"},
			code:  CodeDuplicateUser,
		},
		{
			name:   "missing password",
			input:  map[string]string{"username": "lee", "email": "lee@x.com"},
			code:   CodeValidation,
			fields: []string{"password"},
		},
		{
			name:   "blank username",
			input:  map[string]string{"username": "  ", "email": "lee@x.com", "password": "pw"},
			code:   CodeValidation,
			fields: []string{"username"},
		},
		{
			name:   "password longer than bcrypt accepts",
			input:  map[string]string{"username": "lee", "email": "lee@x.com", "password": strings.Repeat("p", 73)},
			code:   CodeValidation,
			fields: []string{"password"},
		},
		{
			name:  "role cannot be supplied",
			input: map[string]string{"username": "lee", "email": "lee@x.com", "password": "pw", "role": "admin"},
			code:  CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, errs := env.mutate(t, "", "register", tt.input)
			assert.Equal(t, "null", string(raw))
			entry := requireCode(t, errs, "register", tt.code)
			for _, field := range tt.fields {
				assert.Contains(t, entry.Extensions.Fields, field)
			}
		})
	}

	users, err := env.repos.User.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestQueryHandler_GetUser(t *testing.T) {
	env := newTestEnv(t)
	kay, _ := env.registerAndLogin(t, "kay")

	raw, errs := env.query(t, "", "getUser", map[string]any{"id": kay.ID})
	require.Empty(t, errs)
	assert.NotContains(t, string(raw), "password")
	var user UserView
	require.NoError(t, json.Unmarshal(raw, &user))
	assert.Equal(t, kay, user)

	raw, errs = env.query(t, "", "getUser", map[string]any{"id": "missing"})
	assert.Empty(t, errs)
	assert.Equal(t, "null", string(raw))

	raw, errs = env.query(t, "", "getTopic", map[string]any{"id": "missing"})
	assert.Empty(t, errs)
	assert.Equal(t, "null", string(raw))

	_, errs = env.query(t, "", "getUser", nil)
	requireCode(t, errs, "getUser", CodeValidation)
}

func TestQueryHandler_PartialResults(t *testing.T) {
	env := newTestEnv(t)
	kay, _ := env.registerAndLogin(t, "kay")

	body := `{"type":"query","operations":[
		{"name":"getUser","alias":"me","arguments":{"id":"` + kay.ID + `"}},
		{"name":"getAllUsers","alias":"everyone"},
		{"name":"getUser","alias":"broken","arguments":{"id":"x","extra":true}},
		{"name":"deleteEverything"}
	]}`

	status, resp := env.post(t, "", body)
	require.Equal(t, http.StatusOK, status)

	assert.NotEqual(t, "null", string(resp.Data["me"]))
	assert.NotEqual(t, "null", string(resp.Data["everyone"]))
	assert.Equal(t, "null", string(resp.Data["broken"]))
	assert.Equal(t, "null", string(resp.Data["deleteEverything"]))

	codes := map[string]string{}
	for _, e := range resp.Errors {
		require.Len(t, e.Path, 1)
		codes[e.Path[0]] = e.Extensions.Code
	}
	assert.Equal(t, map[string]string{
		"broken":           CodeValidation,
		"deleteEverything": CodeUnknownOperation,
	}, codes)

	env.recorder.mu.Lock()
	defer env.recorder.mu.Unlock()
	assert.Equal(t, 1, env.recorder.operations["unknown/"+CodeUnknownOperation])
	assert.Equal(t, 1, env.recorder.operations["getAllUsers/ok"])
}

func TestQueryHandler_OperationKindMismatch(t *testing.T) {
	env := newTestEnv(t)

	_, errs := env.single(t, "", DocumentQuery, "register", map[string]any{"input": map[string]string{}})
	requireCode(t, errs, "register", CodeValidation)

	_, errs = env.single(t, "", DocumentMutation, "getAllTopics", nil)
	requireCode(t, errs, "getAllTopics", CodeValidation)
}

func TestQueryHandler_MutationsRunInOrder(t *testing.T) {
	env := newTestEnv(t)

	body := `{"type":"mutation","operations":[
		{"name":"register","arguments":{"input":{"username":"kay","email":"kay@x.com","password":"pw"}}},
		{"name":"login","arguments":{"input":{"email":"kay@x.com","password":"pw"}}}
	]}`

	status, resp := env.post(t, "", body)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, resp.Errors)

	var token string
	require.NoError(t, json.Unmarshal(resp.Data["login"], &token))
	assert.NotEmpty(t, token)
}

func TestQueryHandler_RejectedDocuments(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"type":`},
		{name: "unknown document type", body: `{"type":"subscription","operations":[{"name":"getAllTopics"}]}`},
		{name: "no operations", body: `{"type":"query","operations":[]}`},
		{name: "duplicate keys", body: `{"type":"query","operations":[{"name":"getAllTopics"},{"name":"getAllTopics"}]}`},
		{name: "unnamed operation", body: `{"type":"query","operations":[{"alias":"x"}]}`},
		{name: "unknown document field", body: `{"type":"query","operations":[{"name":"getAllTopics"}],"variables":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := env.post(t, "", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Nil(t, resp.Data)
			require.Len(t, resp.Errors, 1)
			assert.Equal(t, CodeValidation, resp.Errors[0].Extensions.Code)
		})
	}
}

func TestRouter_GraphQLAliasAndHealth(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"type":"query","operations":[{"name":"getAllUsers"}]}`))
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))

	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","database":"ok"}`, rec.Body.String())

	env.recorder.mu.Lock()
	defer env.recorder.mu.Unlock()
	assert.Equal(t, 2, env.recorder.requests)
}
