package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pseudomuto/projectx/pkg/cmd/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const githubProject = `name: acme
github:
  url: https://github.com/acme/site
`

func githubServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/site/issues", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bug", r.URL.Query().Get("labels"))

		_ = json.NewEncoder(w).Encode([]map[string]any{{
			"number":    12,
			"title":     "Broken login",
			"state":     "open",
			"labels":    []map[string]any{{"name": "bug"}},
			"assignees": []map[string]any{{"login": "hubot"}},
		}})
	})

	mux.HandleFunc("GET /user", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"login": "octocat"})
	})

	mux.HandleFunc("POST /repos/acme/site/issues/12/assignees", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Assignees []string `json:"assignees"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		var users []map[string]any
		for _, a := range body.Assignees {
			users = append(users, map[string]any{"login": a})
		}

		_ = json.NewEncoder(w).Encode(map[string]any{"number": 12, "title": "Broken login", "assignees": users})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func TestGithubCommand_Issues(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")

	fixture := testutil.TestProject(t, githubProject)
	rt, _, out := testRuntime(t, fixture.Dir)
	rt.GithubURL = githubServer(t).URL

	require.NoError(t, testutil.RunCommand(t, githubCmd(rt), "issues", "--label", "bug"))
	require.Contains(t, out.String(), "#12")
	require.Contains(t, out.String(), "Broken login")
	require.Contains(t, out.String(), "hubot")
}

func TestGithubCommand_Assign(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")

	fixture := testutil.TestProject(t, githubProject)
	rt, _, out := testRuntime(t, fixture.Dir)
	rt.GithubURL = githubServer(t).URL

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "current user", args: []string{"assign", "12"}, want: "Assigned #12 to octocat"},
		{name: "explicit users", args: []string{"assign", "--user", "hubot", "--user", "monalisa", "#12"}, want: "Assigned #12 to hubot, monalisa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			require.NoError(t, testutil.RunCommand(t, githubCmd(rt), tt.args...))
			require.Contains(t, out.String(), tt.want)
		})
	}
}

func TestGithubCommand_Errors(t *testing.T) {
	t.Run("invalid number", func(t *testing.T) {
		fixture := testutil.TestProject(t, githubProject)
		rt, _, _ := testRuntime(t, fixture.Dir)

		err := testutil.RunCommand(t, githubCmd(rt), "assign", "abc")
		testutil.RequireError(t, err, `invalid issue number "abc"`)
	})

	t.Run("no repository", func(t *testing.T) {
		fixture := testutil.TestProject(t, "")
		rt, _, _ := testRuntime(t, fixture.Dir)

		err := testutil.RunCommand(t, githubCmd(rt), "issues")
		testutil.RequireError(t, err)
	})
}
