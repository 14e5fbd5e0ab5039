// Package tui is a terminal browser over the location selector: one column per tier and
// the routes and attempts of the selected location underneath.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"climbing/logbook/internal/attempts"
	"climbing/logbook/internal/domain"
	"climbing/logbook/internal/selector"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"
)

// Backend serves the tier options plus the routes and attempts of a complete location.
type Backend interface {
	selector.Provider
	selector.RouteStore
	ListAttempts(ctx context.Context, key domain.LocationKey) ([]domain.Attempt, error)
}

type resultMsg selector.Result

type locationMsg struct {
	key      domain.LocationKey
	routes   []domain.Route
	attempts []domain.Attempt
	err      error
}

type Model struct {
	ctx     context.Context
	backend Backend

	state   selector.State
	initial *selector.Fetch
	focus   domain.Tier
	cursor  [4]int

	routes    []domain.Route
	attempts  []domain.Attempt
	routesKey domain.LocationKey
	routesErr error

	spinner spinner.Model
	styles  styles
	width   int
}

var domainTiers = [4]domain.Tier{domain.TierCompany, domain.TierGym, domain.TierClimbType, domain.TierLocation}

func New(ctx context.Context, backend Backend) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	state, fetch := selector.NewState().Load()
	s := defaultStyles()
	sp.Style = s.muted

	return Model{
		ctx:     ctx,
		backend: backend,
		state:   state,
		initial: fetch,
		spinner: sp,
		styles:  s,
		width:   100,
	}
}

// Run starts the browser full screen and blocks until the user quits.
func Run(ctx context.Context, backend Backend) error {
	p := tea.NewProgram(New(ctx, backend), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch(m.initial))
}

func (m Model) fetch(f *selector.Fetch) tea.Cmd {
	if f == nil {
		return nil
	}
	fetch := *f
	return func() tea.Msg {
		return resultMsg(selector.Execute(m.ctx, m.backend, fetch))
	}
}

// fetchLocation loads the routes and the user's attempts of the selected location.
func (m Model) fetchLocation() tea.Cmd {
	key, err := m.state.RoutesKey()
	if err != nil {
		return nil
	}
	return func() tea.Msg {
		msg := locationMsg{key: key}
		g, ctx := errgroup.WithContext(m.ctx)
		g.Go(func() error {
			var err error
			msg.routes, err = m.backend.ListRoutes(ctx, key)
			return err
		})
		g.Go(func() error {
			var err error
			msg.attempts, err = m.backend.ListAttempts(ctx, key)
			return err
		})
		msg.err = g.Wait()
		attempts.Sort(msg.attempts, nil)
		return msg
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case resultMsg:
		next, follow, applied := m.state.Resolve(selector.Result(msg))
		if !applied {
			return m, nil
		}
		return m.apply(next, follow)

	case locationMsg:
		if msg.key != m.state.Key() {
			return m, nil
		}
		m.routesKey, m.routes, m.attempts, m.routesErr = msg.key, msg.routes, msg.attempts, msg.err
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "left", "h", "shift+tab":
		if m.focus > domain.TierCompany {
			m.focus--
		}
	case "right", "l", "tab":
		if m.focus < domain.TierLocation {
			m.focus++
		}

	case "up", "k":
		if m.cursor[m.focus] > 0 {
			m.cursor[m.focus]--
		}
	case "down", "j":
		if m.cursor[m.focus] < len(m.state.Tier(m.focus).Options)-1 {
			m.cursor[m.focus]++
		}

	case "enter", " ":
		options := m.state.Tier(m.focus).Options
		if len(options) == 0 {
			return m, nil
		}
		next, f, err := m.state.Select(m.focus, options[m.cursor[m.focus]])
		if err != nil {
			return m, nil
		}
		if m.focus < domain.TierLocation {
			m.focus++
		}
		return m.apply(next, f)

	case "esc", "backspace":
		next, f, err := m.state.Select(m.focus, "")
		if err != nil {
			return m, nil
		}
		return m.apply(next, f)

	case "r":
		return m, m.fetchLocation()

	case "R":
		next, f := m.state.Load()
		m.focus = domain.TierCompany
		return m.apply(next, f)
	}

	return m, nil
}

// apply installs next and returns the commands it implies: the follow-up fetch and,
// once every tier is selected, the route query.
func (m Model) apply(next selector.State, f *selector.Fetch) (tea.Model, tea.Cmd) {
	prev := m.state.Key()
	m.state = next
	for i, t := range domainTiers {
		ts := next.Tier(t)
		m.cursor[i] = 0
		for j, o := range ts.Options {
			if o == ts.Selected {
				m.cursor[i] = j
			}
		}
	}

	if next.Key() != m.routesKey {
		m.routes, m.attempts, m.routesErr = nil, nil, nil
		m.routesKey = domain.LocationKey{}
	}

	var load tea.Cmd
	if next.Key() != prev {
		load = m.fetchLocation()
	}
	return m, tea.Batch(m.fetch(f), load)
}

func (m Model) View() string {
	colWidth := max((m.width-8)/len(domainTiers), 16)

	columns := make([]string, 0, len(domainTiers))
	for i, t := range domainTiers {
		columns = append(columns, m.renderTier(t, m.cursor[i], colWidth))
	}

	title := m.styles.title.Render("Logbook")
	if m.state.Pending() {
		title += " " + m.spinner.View()
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, columns...))
	b.WriteString("\n")
	b.WriteString(m.renderRoutes())
	b.WriteString("\n")
	b.WriteString(m.styles.muted.Render("←/→ tier  ↑/↓ move  enter select  esc clear  r refresh routes  R reload  q quit"))
	return b.String()
}

func (m Model) renderTier(t domain.Tier, cursor, width int) string {
	ts := m.state.Tier(t)
	border := m.styles.column
	if t == m.focus {
		border = m.styles.focused
	}

	var b strings.Builder
	b.WriteString(m.styles.header.Render(t.GetTierName()))
	b.WriteString("\n")

	switch ts.Status {
	case selector.StatusLoading:
		b.WriteString(m.spinner.View() + " loading")
	case selector.StatusError:
		b.WriteString(m.styles.err.Render(truncate(ts.Err, maxErrLen)))
	default:
		switch {
		case len(ts.Options) > 0:
		case t == domain.TierLocation && len(m.state.LocationPool()) > 0:
			b.WriteString(m.styles.muted.Render(fmt.Sprintf("%d to choose from", len(m.state.LocationPool()))))
		default:
			b.WriteString(m.styles.muted.Render("—"))
		}
		for i, o := range ts.Options {
			line := "  " + o
			if o == ts.Selected {
				line = m.styles.selected.Render("✓ " + o)
			}
			if t == m.focus && i == cursor {
				line = m.styles.cursor.Render("> ") + strings.TrimLeft(line, " ")
			}
			b.WriteString(line + "\n")
		}
	}

	return border.Width(width).Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderRoutes() string {
	key, err := m.state.RoutesKey()
	switch {
	case err != nil:
		return m.styles.muted.Render("Select a location to see its routes.")
	case m.routesErr != nil:
		return m.styles.err.Render(fmt.Sprintf("Failed to load location: %v", m.routesErr))
	case m.routesKey != key:
		return m.spinner.View() + " loading routes"
	case len(m.routes) == 0:
		return m.styles.muted.Render("No routes set here yet.")
	}

	var b strings.Builder
	b.WriteString(m.styles.header.Render(fmt.Sprintf("%-6s %-8s %-12s %s", "RID", "Grade", "Colour", "Holds")))
	b.WriteString("\n")
	for _, r := range m.routes {
		holds := ""
		if r.NumberHolds > 0 {
			holds = strconv.Itoa(r.NumberHolds)
		}
		fmt.Fprintf(&b, "%-6d %-8s %-12s %s\n", r.RID, r.Grade, r.Colour, holds)
	}

	b.WriteString("\n")
	if len(m.attempts) == 0 {
		b.WriteString(m.styles.muted.Render("No attempts logged here yet."))
		return b.String()
	}
	b.WriteString(m.styles.header.Render(strings.Join(pad(attempts.Header, attemptWidths), " ")))
	b.WriteString("\n")
	for _, row := range attempts.Rows(m.attempts) {
		b.WriteString(strings.Join(pad(row, attemptWidths), " "))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

var attemptWidths = []int{6, 8, 10, 8, 6, 20, 10, 5}

const maxErrLen = 60

func pad(cells []string, widths []int) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		w := 0
		if i < len(widths) {
			w = widths[i]
		}
		out[i] = fmt.Sprintf("%-*s", w, truncate(c, w))
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
