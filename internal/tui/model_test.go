package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"climbing/logbook/internal/domain"
	"climbing/logbook/internal/selector"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	gymErr       error
	attemptsErr  error
	routeCalls   int
	companyCalls int
	lastRouteKy  domain.LocationKey
}

func (b *fakeBackend) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	b.companyCalls++
	return []domain.Company{{CompanyName: "Gravity"}, {CompanyName: "Summit"}}, nil
}

func (b *fakeBackend) ListGyms(ctx context.Context, company string) ([]domain.Gym, error) {
	if b.gymErr != nil {
		return nil, b.gymErr
	}
	if company == "Summit" {
		return []domain.Gym{{Suburb: "Fitzroy"}}, nil
	}
	return []domain.Gym{{Suburb: "Brunswick"}, {Suburb: "Collingwood"}}, nil
}

func (b *fakeBackend) ListClimbTypesAndLocations(ctx context.Context, company, gym string) (*domain.ClimbTypeCatalog, error) {
	return &domain.ClimbTypeCatalog{
		ClimbTypes: []string{"Boulder", "Sport"},
		Locations: []domain.Location{
			{Name: "Cave", ClimbType: "Boulder"},
			{Name: "Slab", ClimbType: "Boulder"},
			{Name: "Lead Wall", ClimbType: "Sport"},
		},
	}, nil
}

func (b *fakeBackend) ListRoutes(ctx context.Context, key domain.LocationKey) ([]domain.Route, error) {
	b.routeCalls++
	b.lastRouteKy = key
	return []domain.Route{{RID: 9, Grade: "V2", Colour: "Red"}}, nil
}

func (b *fakeBackend) ListAttempts(ctx context.Context, key domain.LocationKey) ([]domain.Attempt, error) {
	if b.attemptsErr != nil {
		return nil, b.attemptsErr
	}
	return []domain.Attempt{
		{RID: 9, Mode: "Flash", AttemptNo: 1, Date: "2024-05-01", Time: "18:00", Result: "Fall", Grade: "V2"},
		{RID: 9, Mode: "Redpoint", AttemptNo: 1, Date: "2024-05-03", Time: "19:30", Result: "Top", Grade: "V2"},
	}, nil
}

// drain runs cmd and every command it produces, feeding each message back into the model.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		next, follow := m.Update(msg)
		m = next.(Model)
		queue = append(queue, follow)
	}
	return m
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, cmd := m.Update(k)
		m = drain(t, next.(Model), cmd)
	}
	return m
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func started(t *testing.T, backend Backend) Model {
	t.Helper()
	m := New(context.Background(), backend)
	m = drain(t, m, m.fetch(m.initial))
	require.Equal(t, selector.StatusReady, m.state.Company().Status)
	return m
}

func TestModel_SelectsDownToRoutes(t *testing.T) {
	backend := &fakeBackend{}
	m := started(t, backend)
	assert.Equal(t, []string{"Gravity", "Summit"}, m.state.Company().Options)

	m = press(t, m, keyEnter)
	assert.Equal(t, "Gravity", m.state.Company().Selected)
	assert.Equal(t, domain.TierGym, m.focus)

	m = press(t, m, keyDown, keyEnter)
	assert.Equal(t, "Collingwood", m.state.Gym().Selected)

	m = press(t, m, keyEnter)
	assert.Equal(t, "Boulder", m.state.ClimbType().Selected)
	assert.Equal(t, []string{"Cave", "Slab"}, m.state.Location().Options)
	assert.Zero(t, backend.routeCalls)

	m = press(t, m, keyDown, keyEnter)
	assert.Equal(t, 1, backend.routeCalls)
	assert.Equal(t, domain.LocationKey{Company: "Gravity", Gym: "Collingwood", ClimbType: "Boulder", Location: "Slab"}, backend.lastRouteKy)
	require.Len(t, m.routes, 1)
	assert.Contains(t, m.View(), "V2")
}

func TestModel_SingleGymAutoSelected(t *testing.T) {
	m := started(t, &fakeBackend{})

	m = press(t, m, keyDown, keyEnter)
	assert.Equal(t, "Summit", m.state.Company().Selected)
	assert.Equal(t, "Fitzroy", m.state.Gym().Selected)
	assert.Equal(t, selector.StatusReady, m.state.ClimbType().Status)
}

func TestModel_EscClearsTierAndBelow(t *testing.T) {
	m := started(t, &fakeBackend{})
	m = press(t, m, keyEnter, keyEnter)
	require.Equal(t, "Brunswick", m.state.Gym().Selected)

	m.focus = domain.TierCompany
	m = press(t, m, keyEsc)
	assert.Empty(t, m.state.Company().Selected)
	assert.Equal(t, selector.StatusEmpty, m.state.Gym().Status)
	assert.Empty(t, m.state.ClimbType().Options)
}

func TestModel_GymErrorShown(t *testing.T) {
	m := started(t, &fakeBackend{gymErr: errors.New("gateway timeout")})

	m = press(t, m, keyEnter)
	assert.Equal(t, selector.StatusError, m.state.Gym().Status)
	assert.Contains(t, m.state.Gym().Err, "gateway timeout")
	assert.Contains(t, m.View(), "timeout")
}

func TestModel_StaleResultIgnored(t *testing.T) {
	backend := &fakeBackend{}
	m := started(t, backend)

	next, gymsForGravity := m.Update(keyEnter)
	m = next.(Model)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft}, keyDown, keyEnter)
	require.Equal(t, "Fitzroy", m.state.Gym().Selected)

	m = drain(t, m, gymsForGravity)
	assert.Equal(t, "Summit", m.state.Company().Selected)
	assert.Equal(t, []string{"Fitzroy"}, m.state.Gym().Options)
}

func TestModel_FocusBounds(t *testing.T) {
	m := started(t, &fakeBackend{})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, domain.TierCompany, m.focus)

	m = press(t, m, keyRight, keyRight, keyRight, keyRight)
	assert.Equal(t, domain.TierLocation, m.focus)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

// selectSlab walks Gravity › Collingwood › Boulder › Slab.
func selectSlab(t *testing.T, backend *fakeBackend) Model {
	t.Helper()
	m := started(t, backend)
	m = press(t, m, keyEnter, keyDown, keyEnter, keyEnter, keyDown, keyEnter)
	require.True(t, m.state.Ready())
	return m
}

func TestModel_ShowsAttemptsNewestFirst(t *testing.T) {
	m := selectSlab(t, &fakeBackend{})
	require.Len(t, m.attempts, 2)
	assert.Equal(t, "Redpoint", m.attempts[0].Mode)

	view := m.View()
	assert.Contains(t, view, "Redpoint")
	assert.Less(t, strings.Index(view, "2024-05-03"), strings.Index(view, "2024-05-01"))
}

func TestModel_AttemptsErrorShown(t *testing.T) {
	m := selectSlab(t, &fakeBackend{attemptsErr: errors.New("forbidden")})
	assert.Error(t, m.routesErr)
	assert.Contains(t, m.View(), "Failed to load location")
}

func TestModel_RefreshAndReload(t *testing.T) {
	backend := &fakeBackend{}
	m := selectSlab(t, backend)
	require.Equal(t, 1, backend.routeCalls)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	assert.Equal(t, 2, backend.routeCalls)
	assert.True(t, m.state.Ready(), "refresh keeps the selection")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'R'}})
	assert.Equal(t, 2, backend.companyCalls)
	assert.Empty(t, m.state.Company().Selected)
	assert.Equal(t, domain.TierCompany, m.focus)
}

func TestModel_RefreshIgnoredUntilReady(t *testing.T) {
	backend := &fakeBackend{}
	m := started(t, backend)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	assert.Nil(t, cmd)
	assert.Zero(t, backend.routeCalls)
}

func TestModel_PendingAndLocationHint(t *testing.T) {
	m := started(t, &fakeBackend{})

	next, cmd := m.Update(keyEnter)
	m = next.(Model)
	assert.True(t, m.state.Pending())

	m = drain(t, m, cmd)
	m = press(t, m, keyEnter)
	assert.False(t, m.state.Pending())
	assert.Empty(t, m.state.ClimbType().Selected)
	assert.Contains(t, m.View(), "3 to choose from")
}
