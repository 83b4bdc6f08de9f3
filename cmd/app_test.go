package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flowr-app/flowr/internal/catalog"
	"github.com/flowr-app/flowr/internal/config"
	"github.com/flowr-app/flowr/internal/kv"
	"github.com/flowr-app/flowr/internal/store"
)

const testSeedJSON = `{
  "products": [
    {"id": "p1", "name": "Blue Dream", "brand": "Acme", "category": "Flower", "states": ["CA", "NV"],
     "topFeels": ["Relaxed", "Happy"], "topActivities": ["Hiking"], "thcPercent": 21.5},
    {"id": "p2", "name": "Night Gummies", "brand": "Chewy", "category": "Edible", "state": "co",
     "topFeels": ["Sleepy"], "thcMg": 10},
    {"id": "p3", "name": "Logo Tee", "brand": "Acme", "category": "Merch", "states": ["California"]}
  ],
  "reviews": [
    {"id": "r1", "productId": "p1", "userId": "u1", "rating": 4, "createdAt": "2026-01-02T00:00:00Z"},
    {"id": "r2", "productId": "p1", "userId": "u2", "rating": 2, "createdAt": "2026-01-03T00:00:00Z"}
  ],
  "productReviews": {"p1": [{"id": "pr1", "reportedTHC": 22}]}
}`

// testEnv backs every command run in a test with shared in-memory stores.
type testEnv struct {
	docs  *store.Memory
	state *kv.Memory
	// wrap, when set, decorates the document store handed to each app.
	wrap func(catalog.Documents) catalog.Documents
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{docs: store.NewMemory(), state: kv.NewMemory()}
	prev := appFactory
	appFactory = func(ctx context.Context) (*app, error) {
		var docs catalog.Documents = env.docs
		if env.wrap != nil {
			docs = env.wrap(docs)
		}
		a := &app{
			cfg:   config.Config{Auth: config.AuthConfig{TTLHours: 1}},
			log:   zap.NewNop(),
			docs:  docs,
			state: env.state,
		}
		if err := a.wire(ctx); err != nil {
			return nil, err
		}
		return a, nil
	}
	t.Cleanup(func() { appFactory = prev })
	return env
}

func (e *testEnv) seed(t *testing.T) {
	t.Helper()
	_, err := store.Import(context.Background(), e.docs, strings.NewReader(testSeedJSON))
	require.NoError(t, err)
}

// failingQueries fails every query against one collection.
type failingQueries struct {
	catalog.Documents
	collection string
	err        error
}

func (f failingQueries) Query(ctx context.Context, collection string, where ...catalog.Where) ([]catalog.Record, error) {
	if collection == f.collection {
		return nil, f.err
	}
	return f.Documents.Query(ctx, collection, where...)
}

func runArgs(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := runCLI(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestApp_SessionSecretGeneratedOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := appFactory(ctx)
	require.NoError(t, err)
	secret, err := env.state.Get(ctx, secretKey)
	require.NoError(t, err)
	assert.Len(t, secret, 64)

	second, err := appFactory(ctx)
	require.NoError(t, err)
	again, err := env.state.Get(ctx, secretKey)
	require.NoError(t, err)
	assert.Equal(t, secret, again)

	_, err = first.session.SignIn(ctx, "alice")
	require.NoError(t, err)
	userID, ok := second.session.CurrentUserID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "alice", userID)
}

func TestApp_ConfiguredSecretIsNotStored(t *testing.T) {
	state := kv.NewMemory()
	a := &app{
		cfg:   config.Config{Auth: config.AuthConfig{Secret: "configured"}},
		log:   zap.NewNop(),
		docs:  store.NewMemory(),
		state: state,
	}
	require.NoError(t, a.wire(context.Background()))

	_, err := state.Get(context.Background(), secretKey)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestApp_RequireUser(t *testing.T) {
	newTestEnv(t)
	ctx := context.Background()
	a, err := appFactory(ctx)
	require.NoError(t, err)

	_, err = a.requireUser(ctx)
	cliErr := classifyCLIError(err)
	require.NotNil(t, cliErr)
	assert.Equal(t, "UNAUTHENTICATED", cliErr.Code)
	assert.Equal(t, ExitUnauthenticated, cliErr.ExitCode)
}

func TestApp_CloseRunsInReverseOrder(t *testing.T) {
	var order []int
	a := &app{closers: []func(){
		func() { order = append(order, 1) },
		func() { order = append(order, 2) },
	}}
	a.Close()
	a.Close()
	assert.Equal(t, []int{2, 1}, order)
}
