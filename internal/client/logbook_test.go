package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"climbing/logbook/internal/config"
	"climbing/logbook/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, user *domain.User) LogbookClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewLogbookClient(config.APIConfig{
		BaseURL: srv.URL + "/api",
		Timeout: 5,
	}, StaticIdentity{User: user})
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestListCompanies(t *testing.T) {
	user := &domain.User{Username: "alex", Token: "tok"}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/misc_additions", r.URL.Path)
		assert.Equal(t, "company", r.URL.Query().Get("entity"))
		assert.Equal(t, "alex", r.Header.Get("X-Username"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"results":[{"CompanyName":"Gravity"},{"CompanyName":"Summit"}]}`)
	}, user)

	companies, err := c.ListCompanies(context.Background())
	require.NoError(t, err)
	require.Len(t, companies, 2)
	assert.Equal(t, "Gravity", companies[0].CompanyName)
	assert.Equal(t, "Summit", companies[1].CompanyName)
}

func TestListGyms_Query(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gym", r.URL.Query().Get("entity"))
		assert.Equal(t, "Gravity & Co", r.URL.Query().Get("company"))
		assert.Empty(t, r.Header.Get("X-Username"))
		writeJSON(w, http.StatusOK, `{"results":[{"Suburb":"Brunswick","City":"Melbourne"}]}`)
	}, nil)

	gyms, err := c.ListGyms(context.Background(), "Gravity & Co")
	require.NoError(t, err)
	assert.Equal(t, []domain.Gym{{Suburb: "Brunswick", City: "Melbourne"}}, gyms)
}

func TestListClimbTypesAndLocations(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "climbtype_location", q.Get("entity"))
		assert.Equal(t, "Gravity", q.Get("company"))
		assert.Equal(t, "Brunswick", q.Get("suburb"))
		writeJSON(w, http.StatusOK, `{
			"climbtypes": [{"ClimbType":"Boulder"},{"ClimbType":"Sport"}],
			"locations": [{"Location":"1","ClimbType":"Boulder"},{"Location":"R1","ClimbType":"Sport"}]
		}`)
	}, nil)

	catalog, err := c.ListClimbTypesAndLocations(context.Background(), "Gravity", "Brunswick")
	require.NoError(t, err)
	assert.Equal(t, []string{"Boulder", "Sport"}, catalog.ClimbTypes)
	assert.Equal(t, []string{"R1"}, domain.FilterLocations(catalog.Locations, "Sport"))
}

func TestMalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
		call func(LogbookClient) error
	}{
		{
			name: "missing results key",
			body: `{"rows":[]}`,
			call: func(c LogbookClient) error { _, err := c.ListCompanies(context.Background()); return err },
		},
		{
			name: "company without name",
			body: `{"results":[{"CompanyName":""}]}`,
			call: func(c LogbookClient) error { _, err := c.ListCompanies(context.Background()); return err },
		},
		{
			name: "gym without suburb",
			body: `{"results":[{"City":"Melbourne"}]}`,
			call: func(c LogbookClient) error { _, err := c.ListGyms(context.Background(), "Gravity"); return err },
		},
		{
			name: "catalog without locations",
			body: `{"climbtypes":[{"ClimbType":"Boulder"}]}`,
			call: func(c LogbookClient) error {
				_, err := c.ListClimbTypesAndLocations(context.Background(), "Gravity", "Brunswick")
				return err
			},
		},
		{
			name: "location without name",
			body: `{"climbtypes":[],"locations":[{"ClimbType":"Boulder"}]}`,
			call: func(c LogbookClient) error {
				_, err := c.ListClimbTypesAndLocations(context.Background(), "Gravity", "Brunswick")
				return err
			},
		},
		{
			name: "not json",
			body: `<html></html>`,
			call: func(c LogbookClient) error { _, err := c.ListModes(context.Background()); return err },
		},
		{
			name: "routes key missing",
			body: `{}`,
			call: func(c LogbookClient) error {
				_, err := c.ListRoutes(context.Background(), domain.LocationKey{Company: "a", Gym: "b", ClimbType: "c", Location: "d"})
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, tt.body)
			}, nil)
			assert.ErrorIs(t, tt.call(c), ErrMalformedResponse)
		})
	}
}

func TestAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"error":"Missing company"}`)
	}, nil)

	_, err := c.ListGyms(context.Background(), "")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Missing company", apiErr.Message)
}

func TestListRoutes_SendsKey(t *testing.T) {
	key := domain.LocationKey{Company: "Gravity", Gym: "Brunswick", ClimbType: "Boulder", Location: "2"}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/api/routes", r.URL.Path)
		assert.Equal(t, "Gravity", q.Get("company"))
		assert.Equal(t, "Brunswick", q.Get("suburb"))
		assert.Equal(t, "Boulder", q.Get("type_column"))
		assert.Equal(t, "2", q.Get("location"))
		writeJSON(w, http.StatusOK, `{"routes":[{"RID":12,"Grade":"V4","Colour":"Blue","Type_column":"Boulder","CreationDate":"2024-05-01T00:00:00Z"}]}`)
	}, &domain.User{Username: "alex"})

	routes, err := c.ListRoutes(context.Background(), key)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.EqualValues(t, 12, routes[0].RID)
	assert.Equal(t, "Boulder", routes[0].ClimbType)
}

func TestArchiveRoute_Body(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body domain.RouteAction
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, domain.ActionArchive, body.Action)
		assert.EqualValues(t, 42, body.RID)
		writeJSON(w, http.StatusOK, `{"message":"archived"}`)
	}, &domain.User{Username: "alex"})

	require.NoError(t, c.ArchiveRoute(context.Background(), 42))
}

func TestAddAttempt_ReturnsNumber(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body domain.NewAttempt
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Flash", body.Mode)
		writeJSON(w, http.StatusCreated, `{"message":"Attempt added","attempt_no":3}`)
	}, &domain.User{Username: "alex"})

	no, err := c.AddAttempt(context.Background(), domain.NewAttempt{RID: 1, Mode: "Flash", Result: "Top"})
	require.NoError(t, err)
	assert.Equal(t, 3, no)
}

func TestAddLocations_Envelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req domain.EntityRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, domain.EntityLocation, req.Entity)
		assert.Equal(t, "Gravity", req.CompanyName)
		assert.Equal(t, "Brunswick", req.Suburb)

		var locations []domain.NewLocation
		require.NoError(t, json.Unmarshal(req.Data, &locations))
		assert.Len(t, locations, 2)
		writeJSON(w, http.StatusCreated, `{"message":"2 locations added"}`)
	}, &domain.User{Username: "alex"})

	msg, err := c.AddLocations(context.Background(), "Gravity", "Brunswick", []domain.NewLocation{
		{Location: "Wall 1", Type: "Boulder"},
		{Location: "Wall 2", Type: "Boulder"},
	})
	require.NoError(t, err)
	assert.Equal(t, "2 locations added", msg)
}

func TestAttemptOptions(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch r.URL.Query().Get("entity") {
		case "mode":
			writeJSON(w, http.StatusOK, `{"results":[{"Mode_column":"Flash"},{"Mode_column":"Redpoint"}]}`)
		case "result":
			writeJSON(w, http.StatusOK, `{"results":[{"Result":"Top"},{"Result":"Fall"}]}`)
		default:
			writeJSON(w, http.StatusBadRequest, `{"error":"bad entity"}`)
		}
	}, nil)

	opts, err := c.AttemptOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Flash", "Redpoint"}, opts.Modes)
	assert.Equal(t, []string{"Top", "Fall"}, opts.Results)
	assert.EqualValues(t, 2, calls.Load())
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var creds domain.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, `{"error":"Invalid username or password"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"message":"Login successful","user":{"username":"alex","firstName":"Alex","token":"jwt"}}`)
	}, nil)

	user, err := c.Login(context.Background(), "alex", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Alex", user.DisplayName())
	assert.Equal(t, "jwt", user.Token)

	_, err = c.Login(context.Background(), "alex", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestListActivity(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/activity", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("count"))
		writeJSON(w, http.StatusOK, `{"activity":[{"id":"1-0","kind":"route_added","username":"alex","summary":"1 route(s) added successfully"}]}`)
	}, nil)

	activity, err := c.ListActivity(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, activity, 1)
	assert.Equal(t, domain.ActivityRouteAdded, activity[0].Kind)
}
