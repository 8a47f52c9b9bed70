package github_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/fixtureprov/pkg/domain/model"
	"github.com/m-mizutani/fixtureprov/pkg/domain/types"
	githubinfra "github.com/m-mizutani/fixtureprov/pkg/infra/github"
)

func TestClient_ResolveTarballURL(t *testing.T) {
	var gotAuth string
	router := chi.NewRouter()
	router.Get("/repos/{owner}/{repo}/tarball/{ref}", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		location := "https://codeload.example.com/" + chi.URLParam(r, "owner") + "/" +
			chi.URLParam(r, "repo") + "/tar.gz/refs/tags/" + chi.URLParam(r, "ref")
		http.Redirect(w, r, location, http.StatusFound)
	})
	server := httptest.NewServer(router)
	defer server.Close()

	src := model.ArchiveSource{Owner: "owner", Repo: "repo", Tag: "v1.0.0"}

	t.Run("with token", func(t *testing.T) {
		client, err := githubinfra.NewClient(nil, "ghp_test", githubinfra.WithBaseURL(server.URL))
		gt.NoError(t, err)

		link, err := client.ResolveTarballURL(context.Background(), src)
		gt.NoError(t, err)
		gt.Value(t, link).Equal("https://codeload.example.com/owner/repo/tar.gz/refs/tags/v1.0.0")
		gt.Value(t, gotAuth).Equal("Bearer ghp_test")
	})

	t.Run("without token", func(t *testing.T) {
		client, err := githubinfra.NewClient(nil, "", githubinfra.WithBaseURL(server.URL))
		gt.NoError(t, err)

		_, err = client.ResolveTarballURL(context.Background(), src)
		gt.NoError(t, err)
		gt.Value(t, gotAuth).Equal("")
	})
}

func TestClient_ResolveTarballURL_NotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	client, err := githubinfra.NewClient(nil, "", githubinfra.WithBaseURL(server.URL))
	gt.NoError(t, err)

	_, err = client.ResolveTarballURL(context.Background(), model.ArchiveSource{Owner: "o", Repo: "r", Tag: "v0"})
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagNetwork))
}

func TestClient_ResolveTarballURL_InvalidSource(t *testing.T) {
	client, err := githubinfra.NewClient(nil, "")
	gt.NoError(t, err)

	_, err = client.ResolveTarballURL(context.Background(), model.ArchiveSource{Owner: "o"})
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagConfig))
}
