package show

import (
	"fmt"
	"image"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"flood3d/pkg/scene"
)

// Styles
var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7cc3f0")).Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

type tickMsg time.Time

type model struct {
	sc     *scene.Scene
	width  int
	height int
	elev   float64
	azim   float64
	labels bool
	spin   bool
	view   string
}

// Preview opens the scene in the terminal: half-block cells stand in
// for pixels, arrow keys orbit the camera, l toggles labels, q quits.
// With spin set the view rotates on its own, the interactive
// counterpart of the rotation animation. A non-TTY stdout skips the
// preview silently so piped invocations behave.
func Preview(sc *scene.Scene, spin bool) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return nil
	}
	m := model{
		sc:     sc,
		elev:   sc.Elev,
		azim:   sc.Azim,
		labels: sc.Style.ShowLabels,
		spin:   spin,
	}
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m model) Init() tea.Cmd {
	if m.spin {
		return tick()
	}
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.render()
		return m, nil
	case tickMsg:
		if !m.spin {
			return m, nil
		}
		m.azim += 2
		if m.azim >= 360 {
			m.azim -= 360
		}
		m.render()
		return m, tick()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "left":
			m.azim -= 5
		case "right":
			m.azim += 5
		case "up":
			if m.elev < 90 {
				m.elev += 5
			}
		case "down":
			if m.elev > 0 {
				m.elev -= 5
			}
		case "l":
			m.labels = !m.labels
		case " ":
			m.spin = !m.spin
			if m.spin {
				return m, tick()
			}
		}
		m.render()
		return m, nil
	}
	return m, nil
}

// render rasterises the scene at cell resolution; each terminal cell
// carries two vertical pixels via the upper-half-block glyph.
func (m *model) render() {
	if m.width < 4 || m.height < 4 {
		m.view = ""
		return
	}
	rows := m.height - 2 // title + status
	sc := *m.sc
	sc.Style.Width = m.width
	sc.Style.Height = rows * 2
	sc.Style.Title = "" // drawn by the TUI chrome instead
	sc.Style.ShowLabels = m.labels
	img := sc.RenderAt(m.elev, m.azim)
	m.view = toHalfBlocks(img, m.width, rows)
}

func toHalfBlocks(img image.Image, w, rows int) string {
	var sb strings.Builder
	for y := 0; y < rows; y++ {
		for x := 0; x < w; x++ {
			tr, tg, tb, _ := img.At(x, 2*y).RGBA()
			br, bg, bb, _ := img.At(x, 2*y+1).RGBA()
			fmt.Fprintf(&sb, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀",
				tr>>8, tg>>8, tb>>8, br>>8, bg>>8, bb>>8)
		}
		sb.WriteString("\x1b[0m\n")
	}
	return sb.String()
}

func (m model) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("flood3d — " + m.sc.Style.Title))
	sb.WriteByte('\n')
	sb.WriteString(m.view)
	sb.WriteString(statusStyle.Render(fmt.Sprintf(
		"azim %.0f°  elev %.0f°  [arrows] orbit  [l] labels  [space] spin  [q] quit",
		m.azim, m.elev)))
	return sb.String()
}
