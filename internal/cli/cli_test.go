package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"climbing/logbook/internal/config"
	"climbing/logbook/internal/domain"
	"climbing/logbook/internal/selector"
	"climbing/logbook/internal/session"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionPath = "/home/climber/.logbook/session.json"

type fakePicker struct {
	answers map[string]string
	asked   []string
}

func (p *fakePicker) Select(message string, options []string) (string, error) {
	p.asked = append(p.asked, message)
	if answer, ok := p.answers[message]; ok {
		return answer, nil
	}
	return options[0], nil
}

func (p *fakePicker) Input(message string, required bool) (string, error) {
	p.asked = append(p.asked, message)
	return p.answers[message], nil
}

func (p *fakePicker) Password(message string) (string, error) {
	p.asked = append(p.asked, message)
	return p.answers[message], nil
}

func (p *fakePicker) Confirm(message string) (bool, error) {
	p.asked = append(p.asked, message)
	return p.answers[message] == "yes", nil
}

// fakeAPI answers the endpoints the commands use and records write bodies.
type fakeAPI struct {
	posts []map[string]json.RawMessage
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	q := r.URL.Query()

	if r.Method == http.MethodPost {
		var body map[string]json.RawMessage
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.posts = append(f.posts, body)
	}

	switch {
	case r.URL.Path == "/api/login_user":
		io.WriteString(w, `{"message":"Login successful","user":{"username":"alex","firstName":"Alex","token":"jwt"}}`)
	case r.URL.Path == "/api/misc_additions" && r.Method == http.MethodPost:
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"message":"3 location(s) added"}`)
	case r.URL.Path == "/api/misc_additions":
		switch q.Get("entity") {
		case "company":
			io.WriteString(w, `{"results":[{"CompanyName":"Gravity"},{"CompanyName":"Summit"}]}`)
		case "gym":
			io.WriteString(w, `{"results":[{"Suburb":"Brunswick"}]}`)
		case "climbtype_location":
			io.WriteString(w, `{"climbtypes":[{"ClimbType":"Boulder"},{"ClimbType":"Sport"}],
				"locations":[{"Location":"Cave","ClimbType":"Boulder"},{"Location":"Slab","ClimbType":"Boulder"},{"Location":"Lead","ClimbType":"Sport"}]}`)
		case "grades":
			io.WriteString(w, `{"results":[{"Grade":"V0","GradeOrder":0},{"Grade":"V3","GradeOrder":3},{"Grade":"V10","GradeOrder":10}]}`)
		default:
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error":"Invalid entity type"}`)
		}
	case r.URL.Path == "/api/routes" && r.Method == http.MethodGet:
		io.WriteString(w, `{"routes":[{"RID":12,"Grade":"V3","Colour":"Blue","NumberHolds":14,"CreationDate":"2024-05-01T00:00:00Z"}]}`)
	case r.URL.Path == "/api/routes":
		io.WriteString(w, `{"message":"Route archived"}`)
	case r.URL.Path == "/api/attempts" && r.Method == http.MethodGet:
		io.WriteString(w, `{"attempts":[
			{"RID":1,"Mode_column":"Flash","AttemptNo":1,"Date_column":"2024-05-01","Time_column":"18:00","Result":"Top","Grade":"V10"},
			{"RID":2,"Mode_column":"Redpoint","AttemptNo":1,"Date_column":"2024-05-02","Time_column":"18:00","Result":"Fall","Grade":"V3"}]}`)
	case r.URL.Path == "/api/attempts":
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"message":"Attempt added successfully","attempt_no":2}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":"not found"}`)
	}
}

type harness struct {
	app *app
	api *fakeAPI
	out *bytes.Buffer
	fs  afero.Fs
}

func newHarness(t *testing.T, picker Picker, loggedIn bool) *harness {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	fs := afero.NewMemMapFs()
	if loggedIn {
		require.NoError(t, session.NewStore(fs, sessionPath).Save(&domain.User{Username: "alex", Token: "jwt"}))
	}

	out := &bytes.Buffer{}
	a := &app{
		cfg: &config.Config{
			API:     config.APIConfig{BaseURL: srv.URL + "/api", Timeout: 5},
			Session: config.SessionConfig{Path: sessionPath},
			Log:     config.LogConfig{Level: "error"},
		},
		fs:  fs,
		out: out,
	}
	if picker != nil {
		a.picker = picker
	}
	return &harness{app: a, api: api, out: out, fs: fs}
}

func (h *harness) run(args ...string) error {
	cmd := newRootCommand(h.app)
	cmd.SetArgs(args)
	cmd.SetOut(h.out)
	cmd.SetErr(h.out)
	return cmd.ExecuteContext(context.Background())
}

func TestLogin_SavesSession(t *testing.T) {
	picker := &fakePicker{answers: map[string]string{"Password": "secret"}}
	h := newHarness(t, picker, false)

	require.NoError(t, h.run("login", "-u", "alex"))
	assert.Equal(t, []string{"Password"}, picker.asked)
	assert.Contains(t, h.out.String(), "Welcome back, Alex!")

	user, err := session.NewStore(h.fs, sessionPath).Load()
	require.NoError(t, err)
	assert.Equal(t, "jwt", user.Token)
}

func TestWhoami(t *testing.T) {
	h := newHarness(t, nil, false)
	assert.ErrorContains(t, h.run("whoami"), "not logged in")

	h = newHarness(t, nil, true)
	require.NoError(t, h.run("whoami"))
	assert.Contains(t, h.out.String(), "alex")
}

func TestLogout(t *testing.T) {
	h := newHarness(t, nil, true)
	require.NoError(t, h.run("logout"))

	exists, err := afero.Exists(h.fs, sessionPath)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRoutes_WithFlags(t *testing.T) {
	h := newHarness(t, nil, true)

	require.NoError(t, h.run("routes", "--company", "Gravity", "--type", "Boulder", "--location", "Slab"))
	out := h.out.String()
	assert.Contains(t, out, "Gravity › Brunswick › Boulder › Slab")
	assert.Contains(t, out, "12")
	assert.Contains(t, out, "2024-05-01")
}

func TestRoutes_MissingTierWithoutPicker(t *testing.T) {
	h := newHarness(t, nil, true)
	assert.ErrorContains(t, h.run("routes", "--company", "Gravity"), "--type is required")
}

func TestRoutes_PromptsForMissingTiers(t *testing.T) {
	picker := &fakePicker{answers: map[string]string{"Select Climb Type": "Sport"}}
	h := newHarness(t, picker, true)

	require.NoError(t, h.run("routes"))
	// Gym and the single sport location are chosen automatically.
	assert.Equal(t, []string{"Select Company", "Select Climb Type"}, picker.asked)
	assert.Contains(t, h.out.String(), "Gravity › Brunswick › Sport › Lead")
}

func TestRoutes_RequiresLogin(t *testing.T) {
	h := newHarness(t, nil, false)
	assert.ErrorContains(t, h.run("routes"), "logbook login")
}

func TestAttempts_SortedByGrade(t *testing.T) {
	h := newHarness(t, nil, true)

	require.NoError(t, h.run("attempts", "--company", "Gravity", "--type", "Boulder", "--location", "Cave", "--sort", "grade:desc"))
	out := h.out.String()
	assert.Less(t, bytes.Index([]byte(out), []byte("V10")), bytes.Index([]byte(out), []byte("V3")))

	assert.ErrorContains(t, h.run("attempts", "--sort", "height"), "unknown sort field")
}

func TestLogAttempt(t *testing.T) {
	h := newHarness(t, nil, true)

	require.NoError(t, h.run("log-attempt", "--rid", "12", "--mode", "Flash", "--result", "Top", "--rating", "4"))
	assert.Contains(t, h.out.String(), "attempt #2")
	require.Len(t, h.api.posts, 1)
	assert.JSONEq(t, `12`, string(h.api.posts[0]["rid"]))

	assert.ErrorContains(t, h.run("log-attempt", "--rid", "12"), "--mode and --result are required")
	assert.ErrorContains(t, h.run("log-attempt", "--rid", "12", "--mode", "Flash", "--result", "Top", "--rating", "9"), "between 0 and 5")
}

func TestLogAttempt_ExpectedNumber(t *testing.T) {
	loc := []string{"--company", "Gravity", "--type", "Boulder", "--location", "Cave"}

	h := newHarness(t, nil, true)
	require.NoError(t, h.run(append([]string{"log-attempt", "--rid", "2", "--mode", "Redpoint", "--result", "Top"}, loc...)...))
	assert.Contains(t, h.out.String(), "attempt #2")
	assert.NotContains(t, h.out.String(), "Expected attempt")

	h = newHarness(t, nil, true)
	require.NoError(t, h.run(append([]string{"log-attempt", "--rid", "2", "--mode", "Flash", "--result", "Top"}, loc...)...))
	assert.Contains(t, h.out.String(), "Expected attempt #1")
}

func TestArchiveRoute_Confirm(t *testing.T) {
	picker := &fakePicker{answers: map[string]string{}}
	h := newHarness(t, picker, true)

	require.NoError(t, h.run("archive-route", "12"))
	assert.Empty(t, h.api.posts)

	require.NoError(t, h.run("archive-route", "12", "--yes"))
	require.Len(t, h.api.posts, 1)
	assert.JSONEq(t, `"archive"`, string(h.api.posts[0]["action"]))

	assert.ErrorContains(t, h.run("archive-route", "abc"), "invalid route id")
}

func TestAddLocations_Range(t *testing.T) {
	h := newHarness(t, nil, true)

	require.NoError(t, h.run("add", "locations", "--company", "Gravity", "--gym", "Brunswick", "--type", "Boulder", "--prefix", "Wall", "--range", "1-3"))
	require.Len(t, h.api.posts, 1)

	var locations []domain.NewLocation
	require.NoError(t, json.Unmarshal(h.api.posts[0]["data"], &locations))
	require.Len(t, locations, 3)
	assert.Equal(t, "Boulder", locations[0].Type)

	assert.ErrorContains(t, h.run("add", "locations", "--company", "Gravity", "--gym", "Brunswick", "--type", "Boulder"), "--range or --names")
}

func TestResolveKey_InvalidValue(t *testing.T) {
	h := newHarness(t, nil, true)
	require.NoError(t, h.app.init())

	sel := selector.New(h.app.client)
	t.Cleanup(sel.Close)

	_, err := resolveKey(context.Background(), sel, domain.LocationKey{Company: "Nowhere"}, nil)
	assert.ErrorContains(t, err, `unknown Company "Nowhere"`)
}
