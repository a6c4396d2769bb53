package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driving"
)

const helpText = `Commands:
  /add <pdf-or-url>   ingest a document
  /web                toggle forced web search for the next questions
  /sources            list sources ingested this session
  /clear              clear the conversation
  /help               show this help
  /quit               exit

Anything else is asked as a question.`

// turnDone carries the outcome of an answer pipeline run.
type turnDone struct {
	result domain.TurnResult
}

// ingestDone carries the outcome of an ingestion run.
type ingestDone struct {
	result driving.IngestResult
	err    error
}

// App is the chat TUI following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *Styles

	// viewport scrolls the transcript.
	viewport viewport.Model

	// input is the question prompt.
	input textinput.Model

	// spinner animates while a turn is in flight.
	spinner spinner.Model

	// transcript holds the rendered conversation lines.
	transcript []string

	// status is the one-line pipeline state under the transcript.
	status string

	// busy is true while a turn or ingestion is in flight.
	busy bool

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new chat TUI with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	input := textinput.New()
	input.Placeholder = "Ask a question, or /help"
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return &App{
		ports:   ports,
		ctx:     context.Background(),
		styles:  DefaultStyles(),
		input:   input,
		spinner: spin,
		status:  "Ready.",
		width:   80,
		height:  24,
	}, nil
}

// WithContext sets the context used for pipeline calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init initialises the app.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout()
		a.ready = true
		return a, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return a, tea.Quit
		case tea.KeyEnter:
			if a.busy {
				return a, nil
			}
			line := strings.TrimSpace(a.input.Value())
			if line == "" {
				return a, nil
			}
			a.input.Reset()
			if strings.HasPrefix(line, "/") {
				return a.handleCommand(line)
			}
			return a.askQuestion(line)
		}

	case spinner.TickMsg:
		if !a.busy {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case turnDone:
		a.busy = false
		a.renderTurn(msg.result)
		return a, nil

	case ingestDone:
		a.busy = false
		if msg.err != nil {
			a.appendLine(a.styles.Error.Render("Ingestion failed: " + msg.err.Error()))
			a.status = "Ready."
			return a, nil
		}
		a.appendLine(a.styles.Success.Render(fmt.Sprintf(
			"Ingested %s (%d chunks)", msg.result.SourceName, msg.result.ChunkCount)))
		a.status = "Ready."
		return a, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	cmds = append(cmds, cmd)
	a.viewport, cmd = a.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

// View renders the app.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	title := a.styles.Title.Render("docchat")
	hint := a.styles.Muted.Render("  enter to ask, /help for commands, esc to quit")

	var status string
	if a.busy {
		status = a.spinner.View() + " " + a.styles.Warning.Render(a.status)
	} else {
		status = a.styles.Muted.Render(a.status)
	}

	return title + hint + "\n" +
		a.viewport.View() + "\n" +
		status + "\n" +
		a.styles.InputField.Width(a.width-2).Render(a.input.View())
}

// handleCommand dispatches slash commands.
func (a *App) handleCommand(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return a, tea.Quit

	case "/help":
		a.appendLine(a.styles.Muted.Render(helpText))
		return a, nil

	case "/web":
		a.ports.Session.ForceWebSearch = !a.ports.Session.ForceWebSearch
		if a.ports.Session.ForceWebSearch {
			a.appendLine(a.styles.Muted.Render("Web search forced: retrieval will be skipped."))
		} else {
			a.appendLine(a.styles.Muted.Render("Web search back to fallback-only."))
		}
		return a, nil

	case "/clear":
		a.ports.Session.ClearHistory()
		a.transcript = nil
		a.viewport.SetContent("")
		a.status = "Conversation cleared."
		return a, nil

	case "/sources":
		sources := a.ports.Session.ProcessedSources()
		if len(sources) == 0 {
			a.appendLine(a.styles.Muted.Render("No sources ingested this session."))
			return a, nil
		}
		a.appendLine(a.styles.Muted.Render("Sources: " + strings.Join(sources, ", ")))
		return a, nil

	case "/add":
		if len(fields) < 2 {
			a.appendLine(a.styles.Error.Render("Usage: /add <pdf-or-url>"))
			return a, nil
		}
		if a.ports.Ingest == nil {
			a.appendLine(a.styles.Error.Render("Ingestion is not configured."))
			return a, nil
		}
		source := fields[1]
		a.busy = true
		a.status = "Ingesting " + source + "..."
		return a, tea.Batch(a.ingestCmd(source), a.spinner.Tick)

	default:
		a.appendLine(a.styles.Error.Render("Unknown command. Try /help."))
		return a, nil
	}
}

// askQuestion starts one pipeline turn.
func (a *App) askQuestion(question string) (tea.Model, tea.Cmd) {
	a.busy = true
	a.status = "Thinking..."
	a.appendLine(a.styles.Question.Render("You: " + question))
	return a, tea.Batch(a.askCmd(question), a.spinner.Tick)
}

func (a *App) askCmd(question string) tea.Cmd {
	return func() tea.Msg {
		return turnDone{result: a.ports.Chat.Ask(a.ctx, a.ports.Session, question)}
	}
}

func (a *App) ingestCmd(source string) tea.Cmd {
	return func() tea.Msg {
		result, err := a.ports.Ingest.Ingest(a.ctx, a.ports.Session, source)
		return ingestDone{result: result, err: err}
	}
}

// renderTurn appends a completed turn to the transcript.
func (a *App) renderTurn(result domain.TurnResult) {
	a.status = a.stageLine(result.Answer.Stages)

	if result.Failed() {
		a.appendLine(a.styles.Error.Render("Error: " + result.Err.Error()))
		return
	}

	a.appendLine(a.styles.Answer.Render(result.Answer.Content))

	if len(result.Answer.Sources) > 0 {
		seen := make(map[string]struct{})
		var names []string
		for _, chunk := range result.Answer.Sources {
			if _, ok := seen[chunk.Chunk.SourceName]; ok {
				continue
			}
			seen[chunk.Chunk.SourceName] = struct{}{}
			names = append(names, chunk.Chunk.SourceName)
		}
		a.appendLine(a.styles.Muted.Render("Sources: " + strings.Join(names, ", ")))
	} else if result.Answer.UsedWebSearch {
		a.appendLine(a.styles.Muted.Render("Answered from web search results."))
	}
}

// stageLine renders the per-stage outcomes as a one-line status.
func (a *App) stageLine(stages []domain.StageResult) string {
	if len(stages) == 0 {
		return "Ready."
	}

	parts := make([]string, 0, len(stages))
	for _, stage := range stages {
		var mark string
		switch {
		case stage.Ok:
			mark = a.styles.Success.Render("+")
		case stage.Skipped:
			mark = a.styles.Muted.Render("-")
		default:
			mark = a.styles.Warning.Render("!")
		}
		part := fmt.Sprintf("%s %s", mark, stage.Stage)
		if stage.Detail != "" && (stage.Ok || stage.Skipped) {
			part += a.styles.Muted.Render(" (" + stage.Detail + ")")
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "  ")
}

// appendLine adds one block to the transcript and scrolls to the bottom.
func (a *App) appendLine(line string) {
	a.transcript = append(a.transcript, line)
	a.viewport.SetContent(strings.Join(a.transcript, "\n\n"))
	a.viewport.GotoBottom()
}

// layout resizes the components to the terminal dimensions.
func (a *App) layout() {
	inputHeight := 3
	statusHeight := 1
	titleHeight := 1
	vpHeight := a.height - inputHeight - statusHeight - titleHeight - 1
	if vpHeight < 3 {
		vpHeight = 3
	}

	if a.viewport.Width == 0 {
		a.viewport = viewport.New(a.width, vpHeight)
	} else {
		a.viewport.Width = a.width
		a.viewport.Height = vpHeight
	}
	a.viewport.SetContent(strings.Join(a.transcript, "\n\n"))
	a.input.Width = a.width - 6
}
