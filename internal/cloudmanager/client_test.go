package cloudmanager

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalystcommunity/edgefn/internal/logging"
)

func assertHeaders(t *testing.T, r *http.Request) {
	t.Helper()
	assert.Equal(t, http.MethodGet, r.Method)
	assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
	assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
	assert.Equal(t, "ORG@AdobeOrg", r.Header.Get("x-gw-ims-org-id"))
	assert.Equal(t, "application/json", r.Header.Get("accept"))
}

func newTestClient(serverURL string, logs *bytes.Buffer) *Client {
	return New(serverURL+APIPath, "test-key", "ORG@AdobeOrg", "test-token",
		WithLogger(logging.NewWithWriter(logs, false)))
}

func TestBaseURL(t *testing.T) {
	assert.Equal(t, "https://cloudmanager.adobe.io/api", BaseURL(false))
	assert.Equal(t, "https://cloudmanager-stage.adobe.io/api", BaseURL(true))
}

func TestListPrograms(t *testing.T) {
	tests := []struct {
		name       string
		serverFunc func(w http.ResponseWriter, r *http.Request)
		want       []Program
		wantErr    bool
		wantLog    string
	}{
		{
			name: "projects id and name",
			serverFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(`{"_embedded":{"programs":[
					{"id":"1","name":"First","tenantId":"t"},
					{"id":2,"name":"Second"}
				]}}`))
			},
			want: []Program{{ID: "1", Name: "First"}, {ID: "2", Name: "Second"}},
		},
		{
			name: "empty list",
			serverFunc: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"_embedded":{"programs":[]}}`))
			},
			want: []Program{},
		},
		{
			name: "non-200 is logged and returns nil",
			serverFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error":"forbidden"}`))
			},
			want:    nil,
			wantLog: "Failed to list programs",
		},
		{
			name: "invalid json is an error",
			serverFunc: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`not json`))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assertHeaders(t, r)
				assert.Equal(t, "/api/programs", r.URL.Path)
				tt.serverFunc(w, r)
			}))
			defer server.Close()

			var logs bytes.Buffer
			client := newTestClient(server.URL, &logs)

			programs, err := client.ListPrograms(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "failed to list programs")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, programs)
			if tt.wantLog != "" {
				assert.Contains(t, logs.String(), tt.wantLog)
				assert.Contains(t, logs.String(), "Forbidden")
			}
		})
	}
}

func TestListEnvironments(t *testing.T) {
	t.Run("projects environment fields", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assertHeaders(t, r)
			assert.Equal(t, "/api/program/123/environments", r.URL.Path)
			w.Write([]byte(`{"_embedded":{"environments":[
				{"id":"10","name":"prod","type":"prod","status":"ready","programId":"123"},
				{"id":"11","name":"stage","type":"stage","status":"creating"}
			]}}`))
		}))
		defer server.Close()

		var logs bytes.Buffer
		envs, err := newTestClient(server.URL, &logs).ListEnvironments(context.Background(), "123")
		require.NoError(t, err)
		assert.Equal(t, []Environment{
			{ID: "10", Name: "prod", Type: "prod", Status: "ready"},
			{ID: "11", Name: "stage", Type: "stage", Status: "creating"},
		}, envs)
	})

	t.Run("empty program id makes no request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("should not make request without a program id")
		}))
		defer server.Close()

		var logs bytes.Buffer
		envs, err := newTestClient(server.URL, &logs).ListEnvironments(context.Background(), "")
		require.NoError(t, err)
		assert.Nil(t, envs)
	})

	t.Run("non-200 returns nil", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		var logs bytes.Buffer
		envs, err := newTestClient(server.URL, &logs).ListEnvironments(context.Background(), "123")
		require.NoError(t, err)
		assert.Nil(t, envs)
		assert.Contains(t, logs.String(), "Failed to list environments")
	})
}

func TestListSites(t *testing.T) {
	t.Run("projects domain mappings", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assertHeaders(t, r)
			assert.Equal(t, "/api/program/123/domain-mappings", r.URL.Path)
			w.Write([]byte(`{"domainMappings":[
				{"domainMappingId":77,"domainName":"www.example.com"},
				{"domainMappingId":"78","domainName":"shop.example.com"}
			]}`))
		}))
		defer server.Close()

		var logs bytes.Buffer
		sites, err := newTestClient(server.URL, &logs).ListSites(context.Background(), "123")
		require.NoError(t, err)
		assert.Equal(t, []Site{
			{ID: "77", Name: "www.example.com"},
			{ID: "78", Name: "shop.example.com"},
		}, sites)
	})

	t.Run("empty program id makes no request", func(t *testing.T) {
		var logs bytes.Buffer
		sites, err := newTestClient("http://127.0.0.1:0", &logs).ListSites(context.Background(), "")
		require.NoError(t, err)
		assert.Nil(t, sites)
	})

	t.Run("non-200 returns nil", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		var logs bytes.Buffer
		sites, err := newTestClient(server.URL, &logs).ListSites(context.Background(), "123")
		require.NoError(t, err)
		assert.Nil(t, sites)
		assert.Contains(t, logs.String(), "Failed to list sites")
	})
}

func TestIDUnmarshal(t *testing.T) {
	tests := []struct {
		in      string
		want    ID
		wantErr bool
	}{
		{`"abc"`, "abc", false},
		{`123`, "123", false},
		{`null`, "", false},
		{`{}`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var id ID
			err := id.UnmarshalJSON([]byte(tt.in))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}
