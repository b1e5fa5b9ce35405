package ims

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrganizations(t *testing.T) {
	tests := []struct {
		name       string
		serverFunc func(w http.ResponseWriter, r *http.Request)
		want       []Organization
		wantErr    string
	}{
		{
			name: "maps ident and auth source",
			serverFunc: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[
					{"orgName":"Acme","orgRef":{"ident":"A1","authSrc":"AdobeOrg"}},
					{"orgName":"Globex","orgRef":{"ident":"G1","authSrc":"AdobeOrg"}}
				]`))
			},
			want: []Organization{
				{Name: "Acme", ID: "A1@AdobeOrg"},
				{Name: "Globex", ID: "G1@AdobeOrg"},
			},
		},
		{
			name: "duplicate names keep the last entry in first position",
			serverFunc: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[
					{"orgName":"Acme","orgRef":{"ident":"A1","authSrc":"AdobeOrg"}},
					{"orgName":"Globex","orgRef":{"ident":"G1","authSrc":"AdobeOrg"}},
					{"orgName":"Acme","orgRef":{"ident":"A2","authSrc":"AdobeOrg"}}
				]`))
			},
			want: []Organization{
				{Name: "Acme", ID: "A2@AdobeOrg"},
				{Name: "Globex", ID: "G1@AdobeOrg"},
			},
		},
		{
			name: "non-200 is an error",
			serverFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			wantErr: "401 Unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/ims/organizations/v6", r.URL.Path)
				assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
				tt.serverFunc(w, r)
			}))
			defer server.Close()

			orgs, err := NewClient(WithBaseURL(server.URL)).Organizations(context.Background(), "tok")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, orgs)
		})
	}
}
