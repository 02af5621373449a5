// Package tui implements the terminal panel for memoria generation. It
// follows the Elm architecture: the progress controller animates in its
// own goroutine and feeds the model through a message channel, while the
// model only reacts to messages.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	progressbar "github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/SandraS2611/agrimensores-sde/internal/client"
	derrors "github.com/SandraS2611/agrimensores-sde/internal/errors"
	"github.com/SandraS2611/agrimensores-sde/internal/progress"
)

// eventBuffer bounds pending controller messages; the reader normally
// drains far faster than the animation ticks.
const eventBuffer = 128

// Config wires the panel to a daemon and a plan.
type Config struct {
	// PlanID selects the plan to generate a memoria for.
	PlanID string

	// Title is the plan title shown in the header. Optional.
	Title string

	// Client talks to the daemon.
	Client *client.Client

	// OutputDir is where downloads land. Defaults to the working directory.
	OutputDir string

	// Animation tunes the progress ramp. Zero fields use the defaults.
	Animation progress.Config
}

// App is the Bubbletea model for the generation panel.
type App struct {
	ctx    context.Context
	cfg    Config
	styles *Styles
	keys   *KeyMap

	controller *progress.Controller
	events     chan tea.Msg
	quit       chan struct{}
	quitOnce   sync.Once

	bar     progressbar.Model
	failBar progressbar.Model

	width  int
	height int

	phase  Phase
	value  float64
	result *client.GenerateResult
	err    error

	downloading  bool
	downloadPath string
	downloadErr  error
}

// NewApp creates the panel model.
func NewApp(cfg Config) (*App, error) {
	if cfg.Client == nil {
		return nil, derrors.New(derrors.CategoryConfig, "tui requires a client").Build()
	}
	if strings.TrimSpace(cfg.PlanID) == "" {
		return nil, derrors.ValidationError("tui requires a plan id").Build()
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}

	styles := DefaultStyles()
	theme := styles.Theme()

	a := &App{
		ctx:    context.Background(),
		cfg:    cfg,
		styles: styles,
		keys:   DefaultKeyMap(),
		events: make(chan tea.Msg, eventBuffer),
		quit:   make(chan struct{}),
		bar: progressbar.New(
			progressbar.WithSolidFill(string(theme.Primary)),
			progressbar.WithoutPercentage(),
		),
		failBar: progressbar.New(
			progressbar.WithSolidFill(string(theme.Error)),
			progressbar.WithoutPercentage(),
		),
		phase: PhaseGenerating,
	}

	a.controller = progress.NewController(cfg.Animation, progress.Callbacks{
		OnProgress: func(v float64) {
			a.send(ProgressAdvanced{Value: v})
		},
		OnResult: func(result any) {
			res, _ := result.(*client.GenerateResult)
			a.send(GenerationCompleted{Result: res})
		},
		OnError: func(err error) {
			a.send(GenerationFailed{Err: err})
		},
	})
	return a, nil
}

// WithContext sets the context used for daemon calls.
func (a *App) WithContext(ctx context.Context) *App {
	if ctx != nil {
		a.ctx = ctx
	}
	return a
}

// Run starts the Bubbletea program and blocks until the panel exits.
func (a *App) Run() error {
	_, err := tea.NewProgram(a, tea.WithAltScreen()).Run()
	return err
}

// Init starts the first generation cycle.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("Memoria Descriptiva"),
		a.startGeneration(),
		a.waitForEvent(),
	)
}

// Update handles messages and returns the updated model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		barWidth := msg.Width - 6
		if barWidth < 10 {
			barWidth = 10
		}
		a.bar.Width = barWidth
		a.failBar.Width = barWidth
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case ProgressAdvanced:
		a.value = msg.Value
		return a, a.waitForEvent()

	case GenerationCompleted:
		a.phase = PhaseDone
		a.value = 1.0
		a.result = msg.Result
		a.err = nil
		return a, a.waitForEvent()

	case GenerationFailed:
		a.phase = PhaseFailed
		a.value = 1.0
		a.err = msg.Err
		return a, a.waitForEvent()

	case DownloadFinished:
		a.downloading = false
		a.downloadPath = msg.Path
		a.downloadErr = msg.Err
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		a.controller.Cancel()
		a.quitOnce.Do(func() { close(a.quit) })
		return a, tea.Quit

	case key.Matches(msg, a.keys.Download):
		if a.phase != PhaseDone || a.result == nil || a.downloading {
			return a, nil
		}
		a.downloading = true
		a.downloadErr = nil
		return a, a.download(a.result.ArtifactID)

	case key.Matches(msg, a.keys.Retry):
		a.phase = PhaseGenerating
		a.value = 0
		a.result = nil
		a.err = nil
		a.downloading = false
		a.downloadPath = ""
		a.downloadErr = nil
		return a, a.startGeneration()
	}

	return a, nil
}

// View renders the panel.
func (a *App) View() string {
	var b strings.Builder

	header := a.styles.Title.Render("Memoria Descriptiva")
	subject := a.cfg.Title
	if subject == "" {
		subject = a.cfg.PlanID
	}
	b.WriteString(header + a.styles.Muted.Render(" / "+subject) + "\n\n")

	b.WriteString(a.indicator() + "  ")
	if a.phase == PhaseFailed {
		b.WriteString(a.failBar.ViewAs(a.value))
	} else {
		b.WriteString(a.bar.ViewAs(a.value))
	}
	b.WriteString("\n\n")

	switch a.phase {
	case PhaseGenerating:
		b.WriteString(a.styles.Muted.Render("Generando memoria descriptiva...") + "\n")
	case PhaseFailed:
		b.WriteString(a.styles.Error.Render("La generación falló") + "\n")
		if a.err != nil {
			b.WriteString(a.styles.Normal.Render(a.err.Error()) + "\n")
		}
		b.WriteString("\n" + a.renderHelp(a.keys.Retry, a.keys.Quit))
	case PhaseDone:
		b.WriteString(a.styles.Success.Render("Memoria publicada") + "\n")
		if a.result != nil && a.result.Memoria != "" {
			b.WriteString("\n" + a.styles.Preview.Render(a.previewText()) + "\n")
		}
		if a.downloading {
			b.WriteString("\n" + a.styles.Muted.Render("Descargando...") + "\n")
		} else if a.downloadErr != nil {
			b.WriteString("\n" + a.styles.Error.Render("Descarga fallida: "+a.downloadErr.Error()) + "\n")
		} else if a.downloadPath != "" {
			b.WriteString("\n" + a.styles.Success.Render("Guardado en "+a.downloadPath) + "\n")
		}
		b.WriteString("\n" + a.renderHelp(a.keys.Download, a.keys.Retry, a.keys.Quit))
	}

	return b.String()
}

// indicator is the robot glyph from the original panel: dimmed while the
// server works, recoloured on the terminal states.
func (a *App) indicator() string {
	const glyph = "🤖"
	switch a.phase {
	case PhaseDone:
		return a.styles.Success.Render(glyph)
	case PhaseFailed:
		return a.styles.Error.Render(glyph)
	default:
		return a.styles.Muted.Render(glyph)
	}
}

func (a *App) previewText() string {
	text := a.result.Memoria
	if a.width > 8 {
		// Truncate by display width, not bytes: memoria text is full of
		// multi-byte runes (á, ñ, í) that a byte slice would cut in half.
		width := a.width - 8
		lines := strings.Split(text, "\n")
		for i, line := range lines {
			lines[i] = runewidth.Truncate(line, width, "")
		}
		text = strings.Join(lines, "\n")
	}
	return text
}

func (a *App) renderHelp(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, fmt.Sprintf("%s %s", h.Key, h.Desc))
	}
	return a.styles.Help.Render(strings.Join(parts, "  ·  "))
}

// startGeneration triggers a controller cycle running the daemon call.
// Triggering again replaces any running cycle.
func (a *App) startGeneration() tea.Cmd {
	return func() tea.Msg {
		a.controller.Trigger(a.ctx, func(ctx context.Context) (any, error) {
			return a.cfg.Client.Generate(ctx, a.cfg.PlanID)
		})
		return nil
	}
}

// waitForEvent relays the next controller message into the program. The
// handler of each relayed message re-issues the wait, so exactly one
// reader is pending at a time.
func (a *App) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-a.events:
			return msg
		case <-a.quit:
			return nil
		}
	}
}

func (a *App) download(artifactID string) tea.Cmd {
	path := filepath.Join(a.cfg.OutputDir, artifactID)
	return func() tea.Msg {
		f, err := os.Create(path)
		if err != nil {
			return DownloadFinished{Err: derrors.Wrap(err, derrors.CategoryStorage, "create download file").Build()}
		}
		n, err := a.cfg.Client.Download(a.ctx, a.cfg.PlanID, f)
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = derrors.Wrap(closeErr, derrors.CategoryStorage, "close download file").Build()
		}
		if err != nil {
			os.Remove(path)
			return DownloadFinished{Err: err}
		}
		return DownloadFinished{Path: path, Bytes: n}
	}
}

func (a *App) send(msg tea.Msg) {
	select {
	case a.events <- msg:
	case <-a.quit:
	}
}

// CurrentPhase returns the panel phase.
func (a *App) CurrentPhase() Phase {
	return a.phase
}

// Value returns the displayed progress in [0, 1].
func (a *App) Value() float64 {
	return a.value
}

// Result returns the published memoria, if any.
func (a *App) Result() *client.GenerateResult {
	return a.result
}

// Err returns the generation error, if any.
func (a *App) Err() error {
	return a.err
}

// DownloadPath returns where the artifact was saved, if downloaded.
func (a *App) DownloadPath() string {
	return a.downloadPath
}

// SetDimensions sets the panel size directly, for testing.
func (a *App) SetDimensions(width, height int) {
	a.Update(tea.WindowSizeMsg{Width: width, Height: height})
}
