package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowr-app/flowr/internal/catalog"
	"github.com/flowr-app/flowr/internal/display"
)

func TestRunCLI_CompletionZsh(t *testing.T) {
	code, stdout, stderr := runArgs("completion", "zsh")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "#compdef flowr")
	assert.Empty(t, stderr)
}

func TestRunCLI_HelpCategories(t *testing.T) {
	code, stdout, stderr := runArgs("help", "categories")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "flowr categories [flags]")
	assert.Empty(t, stderr)
}

func TestRunCLI_TolerantRewriteWithoutStoreAccess(t *testing.T) {
	code, stdout, stderr := runArgs("categories", "-json", "--help")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "flowr categories [flags]")
	assert.Contains(t, stderr, "interpreted `-json` as `--json`")
}

func TestRunCLI_NoArgsPrintsQuickStart(t *testing.T) {
	code, stdout, _ := runArgs()

	assert.Equal(t, 0, code)
	var payload quickStartJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &payload))
	assert.Equal(t, "flowr", payload.Name)
}

func TestRunCLI_ListFiltersProducts(t *testing.T) {
	newTestEnv(t).seed(t)

	code, stdout, stderr := runArgs("--category", "flower", "--region", "ca")
	require.Equal(t, 0, code, stderr)

	var products []display.ProductJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &products))
	require.Len(t, products, 1)
	assert.Equal(t, "p1", products[0].ID)
}

func TestRunCLI_ListOtherCategory(t *testing.T) {
	newTestEnv(t).seed(t)

	code, stdout, stderr := runArgs("list", "-c", "Other")
	require.Equal(t, 0, code, stderr)

	var products []display.ProductJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &products))
	require.Len(t, products, 1)
	assert.Equal(t, "p3", products[0].ID)
}

func TestRunCLI_ListNoMatch(t *testing.T) {
	newTestEnv(t).seed(t)

	code, _, stderr := runArgs("--feel", "euphoric")

	assert.Equal(t, ExitNotFound, code)
	assert.Contains(t, stderr, `"NOT_FOUND"`)
}

func TestRunCLI_InvalidSort(t *testing.T) {
	newTestEnv(t).seed(t)

	code, _, stderr := runArgs("--sort", "savings")

	assert.Equal(t, ExitInvalidArgs, code)
	assert.Contains(t, stderr, "invalid value for --sort")
}

func TestRunCLI_Categories(t *testing.T) {
	newTestEnv(t).seed(t)

	code, stdout, stderr := runArgs("categories")
	require.Equal(t, 0, code, stderr)

	var payload map[string]map[string]int
	require.NoError(t, json.Unmarshal([]byte(stdout), &payload))
	assert.Equal(t, 1, payload["categories"]["flower"])
	assert.Equal(t, 1, payload["categories"]["merch"])
	assert.Equal(t, 2, payload["regions"]["California"])
}

func TestRunCLI_ProductDetail(t *testing.T) {
	newTestEnv(t).seed(t)

	code, stdout, stderr := runArgs("product", "p1")
	require.Equal(t, 0, code, stderr)

	var detail display.ProductDetailJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &detail))
	assert.Equal(t, "p1", detail.Product.ID)
	require.NotNil(t, detail.AveragePotency.Value)
	assert.InDelta(t, 22.0, *detail.AveragePotency.Value, 1e-9)
	assert.Equal(t, "product reviews", detail.AveragePotency.Source)
	require.NotNil(t, detail.AverageRating.Value)
	assert.InDelta(t, 3.0, *detail.AverageRating.Value, 1e-9)
	require.Len(t, detail.Reviews, 2)
	assert.Equal(t, "r2", detail.Reviews[0].ID)
}

func TestRunCLI_ProductDegradesWhenReviewsFail(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	env.wrap = func(docs catalog.Documents) catalog.Documents {
		return failingQueries{Documents: docs, collection: catalog.ReviewsCollection, err: errors.New("permission denied")}
	}

	code, stdout, stderr := runArgs("product", "p1")
	require.Equal(t, 0, code, stderr)

	var detail display.ProductDetailJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &detail))
	assert.True(t, detail.ReviewsUnavailable)
	assert.Nil(t, detail.AverageRating.Value)
	assert.Empty(t, detail.Reviews)
	require.NotNil(t, detail.AveragePotency.Value)
	assert.InDelta(t, 22.0, *detail.AveragePotency.Value, 1e-9)

	code, stdout, stderr = runArgs("compare", "p1", "p3")
	require.Equal(t, 0, code, stderr)

	var ranked []compareProductResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &ranked))
	require.Len(t, ranked, 2)
	assert.Equal(t, "p1", ranked[0].ID)
	assert.True(t, ranked[0].ReviewsUnavailable)
	assert.Nil(t, ranked[0].Rating.Value)
}

func TestRunCLI_ListReportsStoreFailureOnce(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	env.wrap = func(docs catalog.Documents) catalog.Documents {
		return failingQueries{Documents: docs, collection: catalog.ProductsCollection, err: errors.New("permission denied")}
	}

	code, _, stderr := runArgs("list")

	assert.Equal(t, ExitUpstream, code)
	assert.Contains(t, stderr, `"fetching products: permission denied"`)
}

func TestRunCLI_ProductWithoutReviews(t *testing.T) {
	newTestEnv(t).seed(t)

	code, stdout, stderr := runArgs("product", "p3")
	require.Equal(t, 0, code, stderr)

	var detail display.ProductDetailJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &detail))
	assert.Nil(t, detail.AveragePotency.Value)
	assert.Nil(t, detail.AverageRating.Value)
	assert.Empty(t, detail.Reviews)
}

func TestRunCLI_ProductNotFound(t *testing.T) {
	newTestEnv(t).seed(t)

	code, _, stderr := runArgs("product", "nope")

	assert.Equal(t, ExitNotFound, code)
	assert.Contains(t, stderr, `"NOT_FOUND"`)
}

func TestRunCLI_Compare(t *testing.T) {
	newTestEnv(t).seed(t)

	code, stdout, stderr := runArgs("compare", "p3", "p1")
	require.Equal(t, 0, code, stderr)

	var results []compareProductResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "p1", results[0].ID)
	assert.Equal(t, 1, results[0].Rank)
	assert.Equal(t, "p3", results[1].ID)
}

func TestRunCLI_ReviewLifecycle(t *testing.T) {
	newTestEnv(t).seed(t)

	code, _, stderr := runArgs("review", "add", "p1", "--rating", "5")
	assert.Equal(t, ExitUnauthenticated, code)
	assert.Contains(t, stderr, `"UNAUTHENTICATED"`)

	code, _, stderr = runArgs("login", "alice")
	require.Equal(t, 0, code, stderr)

	code, stdout, stderr := runArgs("review", "add", "p1", "--rating", "5",
		"--feels", "Giggly, Starry", "--activity", "Stargazing", "--thc", "24")
	require.Equal(t, 0, code, stderr)
	var saved display.ReviewJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &saved))
	require.NotEmpty(t, saved.ID)
	assert.Equal(t, "alice", saved.UserID)
	assert.Equal(t, []string{"Giggly", "Starry"}, saved.Feels)

	code, stdout, stderr = runArgs("vocab", "list", "feels")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, `"Starry"`)

	code, _, stderr = runArgs("login", "bob")
	require.Equal(t, 0, code, stderr)

	code, _, stderr = runArgs("review", "edit", saved.ID, "--rating", "1")
	assert.Equal(t, ExitForbidden, code)
	assert.Contains(t, stderr, `"FORBIDDEN"`)

	code, _, _ = runArgs("review", "delete", saved.ID)
	assert.Equal(t, ExitForbidden, code)

	code, _, stderr = runArgs("login", "alice")
	require.Equal(t, 0, code, stderr)

	code, stdout, stderr = runArgs("review", "edit", saved.ID, "--body", "Still great.")
	require.Equal(t, 0, code, stderr)
	var edited display.ReviewJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &edited))
	assert.Equal(t, 5, edited.Rating)
	assert.Equal(t, "Still great.", edited.Body)

	code, _, stderr = runArgs("review", "delete", saved.ID)
	require.Equal(t, 0, code, stderr)

	code, _, _ = runArgs("review", "delete", saved.ID)
	assert.Equal(t, ExitNotFound, code)
}

func TestRunCLI_ReviewValidation(t *testing.T) {
	newTestEnv(t).seed(t)
	code, _, stderr := runArgs("login", "alice")
	require.Equal(t, 0, code, stderr)

	code, _, stderr = runArgs("review", "add", "p1", "--rating", "9")
	assert.Equal(t, ExitInvalidArgs, code)
	assert.Contains(t, stderr, "rating must be between 1 and 5")

	code, _, stderr = runArgs("review", "add", "p1")
	assert.Equal(t, ExitInvalidArgs, code)
	assert.Contains(t, stderr, "--rating is required")

	code, _, _ = runArgs("review", "add", "nope", "--rating", "3")
	assert.Equal(t, ExitNotFound, code)
}

func TestRunCLI_SessionCommands(t *testing.T) {
	newTestEnv(t)

	code, _, _ := runArgs("whoami")
	assert.Equal(t, ExitUnauthenticated, code)

	code, _, stderr := runArgs("login", "alice")
	require.Equal(t, 0, code, stderr)

	code, stdout, stderr := runArgs("whoami")
	require.Equal(t, 0, code, stderr)
	var who sessionJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &who))
	assert.Equal(t, "alice", who.UserID)
	assert.True(t, who.SignedIn)
	assert.NotEmpty(t, who.ExpiresAt)

	code, _, stderr = runArgs("logout")
	require.Equal(t, 0, code, stderr)

	code, _, _ = runArgs("whoami")
	assert.Equal(t, ExitUnauthenticated, code)
}

func TestRunCLI_VocabAddAndSuggest(t *testing.T) {
	newTestEnv(t)

	code, stdout, stderr := runArgs("vocab", "add", "feels", "Zonked")
	require.Equal(t, 0, code, stderr)
	var added vocabAddJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &added))
	assert.True(t, added.Added)

	code, stdout, stderr = runArgs("vocab", "add", "feels", "zonked")
	require.Equal(t, 0, code, stderr)
	require.NoError(t, json.Unmarshal([]byte(stdout), &added))
	assert.False(t, added.Added)

	code, stdout, stderr = runArgs("suggest", "feels", "Relaxed, zon")
	require.Equal(t, 0, code, stderr)
	var payload struct {
		Token       string   `json:"token"`
		Suggestions []string `json:"suggestions"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &payload))
	assert.Equal(t, "zon", payload.Token)
	assert.Equal(t, []string{"Zonked"}, payload.Suggestions)
}

func TestRunCLI_SuggestRanksBaseAndCustom(t *testing.T) {
	newTestEnv(t)

	code, _, stderr := runArgs("vocab", "add", "feels", "giddy")
	require.Equal(t, 0, code, stderr)

	code, stdout, stderr := runArgs("suggest", "feels", "gi")
	require.Equal(t, 0, code, stderr)
	var payload struct {
		Suggestions []string `json:"suggestions"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &payload))
	assert.Equal(t, []string{"giddy", "Giggly"}, payload.Suggestions)
}

func TestRunCLI_SuggestUnknownKind(t *testing.T) {
	newTestEnv(t)

	code, _, stderr := runArgs("suggest", "moods", "ha")

	assert.Equal(t, ExitInvalidArgs, code)
	assert.Contains(t, stderr, "unknown vocabulary")
}

func TestRunCLI_Import(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(testSeedJSON), 0o600))

	code, stdout, stderr := runArgs("import", path)
	require.Equal(t, 0, code, stderr)

	var stats struct {
		Products       int `json:"products"`
		Reviews        int `json:"reviews"`
		ProductReviews int `json:"productReviews"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &stats))
	assert.Equal(t, 3, stats.Products)
	assert.Equal(t, 2, stats.Reviews)
	assert.Equal(t, 1, stats.ProductReviews)

	recs, err := env.docs.Query(t.Context(), "products")
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestRunCLI_ImportMissingFile(t *testing.T) {
	newTestEnv(t)

	code, _, stderr := runArgs("import", filepath.Join(t.TempDir(), "missing.json"))

	assert.Equal(t, ExitInvalidArgs, code)
	assert.Contains(t, stderr, "cannot read seed file")
}

func TestRunCLI_TUIRequiresTerminal(t *testing.T) {
	newTestEnv(t).seed(t)

	// Auto JSON mode prints the filtered list instead of starting the UI.
	code, stdout, stderr := runArgs("tui", "--category", "edible")
	require.Equal(t, 0, code, stderr)

	var products []display.ProductJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &products))
	require.Len(t, products, 1)
	assert.Equal(t, "p2", products[0].ID)
}
