package hub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mltrust/mltrust/pkg/resource"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Client{BaseURL: srv.URL}
}

func TestClient_Model(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/models/google/gemma-2b", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("blobs"))
		w.Write([]byte(`{
			"id": "google/gemma-2b",
			"downloads": 123456,
			"likes": 321,
			"cardData": {"license": "apache-2.0", "repository": "https://github.com/google/gemma"},
			"siblings": [
				{"rfilename": "model.safetensors", "size": 5000000},
				{"rfilename": "README.md", "size": 1200}
			]
		}`))
	})

	info, err := c.Model(context.Background(), "google/gemma-2b")
	require.NoError(t, err)
	assert.Equal(t, "google/gemma-2b", info.ID)
	assert.Equal(t, int64(123456), info.Downloads)
	assert.Equal(t, int64(321), info.Likes)
	assert.Equal(t, "apache-2.0", info.License)
	assert.Equal(t, "https://github.com/google/gemma", info.CardString("repository"))
	require.Len(t, info.Files, 2)
	assert.Equal(t, FileEntry{Path: "model.safetensors", Size: 5000000}, info.Files[0])
}

func TestClient_Dataset(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/datasets/rajpurkar/squad", r.URL.Path)
		w.Write([]byte(`{"id": "rajpurkar/squad", "downloads": 50000, "likes": 10, "tags": ["license:cc-by-4.0"]}`))
	})

	info, err := c.Dataset(context.Background(), "rajpurkar/squad")
	require.NoError(t, err)
	assert.Equal(t, int64(50000), info.Downloads)
	assert.Equal(t, "cc-by-4.0", info.License, "license parsed from tags when card absent")
}

func TestClient_Readme(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/google/gemma-2b/raw/main/README.md":
			w.Write([]byte("# Gemma"))
		case "/datasets/rajpurkar/squad/raw/main/README.md":
			w.Write([]byte("# SQuAD"))
		default:
			http.NotFound(w, r)
		}
	})

	model := resource.Resource{ID: "google/gemma-2b", Kind: resource.KindModel}
	text, err := c.Readme(context.Background(), model)
	require.NoError(t, err)
	assert.Equal(t, "# Gemma", text)

	ds := resource.Resource{ID: "rajpurkar/squad", Kind: resource.KindDataset}
	text, err = c.Readme(context.Background(), ds)
	require.NoError(t, err)
	assert.Equal(t, "# SQuAD", text)

	missing := resource.Resource{ID: "nobody/nothing", Kind: resource.KindModel}
	text, err = c.Readme(context.Background(), missing)
	require.NoError(t, err)
	assert.Empty(t, text, "missing readme is empty, not an error")
}

func TestHFLicense_CardList(t *testing.T) {
	raw := hfRepoInfo{CardData: map[string]any{"license": []any{"mit", "apache-2.0"}}}
	assert.Equal(t, "mit", hfLicense(raw))
}

func TestSplitID(t *testing.T) {
	owner, repo, err := splitID("pallets/flask")
	require.NoError(t, err)
	assert.Equal(t, "pallets", owner)
	assert.Equal(t, "flask", repo)

	_, _, err = splitID("flask")
	assert.Error(t, err)

	_, _, err = splitID("/flask")
	assert.Error(t, err)
}
