package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driving"
)

// mockChatService returns a canned turn result.
type mockChatService struct {
	result    domain.TurnResult
	askedWith string
}

func (m *mockChatService) Ask(_ context.Context, _ *domain.Session, question string) domain.TurnResult {
	m.askedWith = question
	return m.result
}

func (m *mockChatService) Reconcile(_ context.Context, _ *domain.Session) error {
	return nil
}

// mockIngestService returns a canned ingest result.
type mockIngestService struct {
	result driving.IngestResult
	err    error
	source string
}

func (m *mockIngestService) Ingest(_ context.Context, _ *domain.Session, sourceName string) (driving.IngestResult, error) {
	m.source = sourceName
	return m.result, m.err
}

func newTestPorts() *Ports {
	return &Ports{
		Chat:    &mockChatService{},
		Ingest:  &mockIngestService{},
		Session: domain.NewSession("test", 0.7),
	}
}

func newReadyApp(t *testing.T, ports *Ports) *App {
	t.Helper()
	app, err := NewApp(ports)
	require.NoError(t, err)
	app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return app
}

func typeLine(app *App, line string) tea.Cmd {
	app.input.SetValue(line)
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

// runCmd executes a command, unwrapping batches, and returns the first
// app-level message (spinner ticks are ignored).
func runCmd(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, sub := range batch {
			if sub == nil {
				continue
			}
			switch m := sub().(type) {
			case turnDone, ingestDone:
				return m
			}
		}
		return nil
	}
	return msg
}

func TestNewApp_Success(t *testing.T) {
	app, err := NewApp(newTestPorts())

	require.NoError(t, err)
	require.NotNil(t, app)
}

func TestNewApp_MissingChatService(t *testing.T) {
	app, err := NewApp(&Ports{Session: domain.NewSession("test", 0.7)})

	assert.ErrorIs(t, err, ErrMissingChatService)
	assert.Nil(t, app)
}

func TestNewApp_MissingSession(t *testing.T) {
	app, err := NewApp(&Ports{Chat: &mockChatService{}})

	assert.ErrorIs(t, err, ErrMissingSession)
	assert.Nil(t, app)
}

func TestApp_Update_WindowSize(t *testing.T) {
	app, err := NewApp(newTestPorts())
	require.NoError(t, err)

	model, cmd := app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.True(t, app.ready)
}

func TestApp_View_BeforeReady(t *testing.T) {
	app, err := NewApp(newTestPorts())
	require.NoError(t, err)

	assert.Equal(t, "Loading...", app.View())
}

func TestApp_AskQuestion_RunsPipeline(t *testing.T) {
	chat := &mockChatService{
		result: domain.TurnResult{
			Question: "What is attention?",
			Answer: domain.Answer{
				Content: "A weighting mechanism.",
				Stages: []domain.StageResult{
					domain.StageOk(domain.StageRewrite, ""),
					domain.StageOk(domain.StageRetrieve, "3 chunks"),
					domain.StageSkipped(domain.StageWebSearch, "not needed"),
					domain.StageOk(domain.StageGenerate, ""),
				},
			},
		},
	}
	ports := newTestPorts()
	ports.Chat = chat
	app := newReadyApp(t, ports)

	cmd := typeLine(app, "What is attention?")
	require.NotNil(t, cmd)
	assert.True(t, app.busy)

	// Run the async command and feed its message back.
	msg := runCmd(cmd)
	app.Update(msg)

	assert.Equal(t, "What is attention?", chat.askedWith)
	assert.False(t, app.busy)
	view := app.View()
	assert.Contains(t, view, "A weighting mechanism.")
	assert.Contains(t, app.status, "retrieve")
}

func TestApp_AskQuestion_TerminalFailure(t *testing.T) {
	ports := newTestPorts()
	ports.Chat = &mockChatService{
		result: domain.TurnResult{
			Question: "q",
			Err:      domain.ErrGenerationFailed,
		},
	}
	app := newReadyApp(t, ports)

	cmd := typeLine(app, "q")
	app.Update(runCmd(cmd))

	assert.Contains(t, strings.Join(app.transcript, "\n"), "Error:")
}

func TestApp_EmptyInputIgnored(t *testing.T) {
	app := newReadyApp(t, newTestPorts())

	cmd := typeLine(app, "   ")

	assert.Nil(t, cmd)
	assert.False(t, app.busy)
}

func TestApp_InputIgnoredWhileBusy(t *testing.T) {
	app := newReadyApp(t, newTestPorts())
	app.busy = true

	cmd := typeLine(app, "question")

	assert.Nil(t, cmd)
}

func TestApp_WebCommand_TogglesForcedSearch(t *testing.T) {
	ports := newTestPorts()
	app := newReadyApp(t, ports)

	typeLine(app, "/web")
	assert.True(t, ports.Session.ForceWebSearch)

	typeLine(app, "/web")
	assert.False(t, ports.Session.ForceWebSearch)
}

func TestApp_ClearCommand(t *testing.T) {
	ports := newTestPorts()
	ports.Session.AppendTurn(domain.RoleUser, "hello")
	app := newReadyApp(t, ports)
	app.transcript = []string{"You: hello"}

	typeLine(app, "/clear")

	assert.Empty(t, ports.Session.History())
	assert.Empty(t, app.transcript)
}

func TestApp_AddCommand_Ingests(t *testing.T) {
	ingest := &mockIngestService{
		result: driving.IngestResult{
			SourceType: domain.SourcePDF,
			SourceName: "paper.pdf",
			ChunkCount: 12,
		},
	}
	ports := newTestPorts()
	ports.Ingest = ingest
	app := newReadyApp(t, ports)

	cmd := typeLine(app, "/add paper.pdf")
	require.NotNil(t, cmd)
	app.Update(runCmd(cmd))

	assert.Equal(t, "paper.pdf", ingest.source)
	assert.Contains(t, strings.Join(app.transcript, "\n"), "Ingested paper.pdf (12 chunks)")
}

func TestApp_AddCommand_Failure(t *testing.T) {
	ports := newTestPorts()
	ports.Ingest = &mockIngestService{err: errors.New("no such file")}
	app := newReadyApp(t, ports)

	cmd := typeLine(app, "/add missing.pdf")
	require.NotNil(t, cmd)
	app.Update(runCmd(cmd))

	assert.Contains(t, strings.Join(app.transcript, "\n"), "Ingestion failed")
	assert.False(t, app.busy)
}

func TestApp_AddCommand_MissingArgument(t *testing.T) {
	app := newReadyApp(t, newTestPorts())

	cmd := typeLine(app, "/add")

	assert.Nil(t, cmd)
	assert.Contains(t, strings.Join(app.transcript, "\n"), "Usage: /add")
}

func TestApp_SourcesCommand(t *testing.T) {
	ports := newTestPorts()
	ports.Session.MarkProcessed("paper.pdf")
	app := newReadyApp(t, ports)

	typeLine(app, "/sources")

	assert.Contains(t, strings.Join(app.transcript, "\n"), "paper.pdf")
}

func TestApp_UnknownCommand(t *testing.T) {
	app := newReadyApp(t, newTestPorts())

	typeLine(app, "/bogus")

	assert.Contains(t, strings.Join(app.transcript, "\n"), "Unknown command")
}

func TestApp_QuitCommand(t *testing.T) {
	app := newReadyApp(t, newTestPorts())

	cmd := typeLine(app, "/quit")

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_StageLine_MarksOutcomes(t *testing.T) {
	app := newReadyApp(t, newTestPorts())

	line := app.stageLine([]domain.StageResult{
		domain.StageOk(domain.StageRewrite, ""),
		domain.StageDegraded(domain.StageRetrieve, errors.New("store down")),
		domain.StageSkipped(domain.StageWebSearch, "disabled"),
		domain.StageOk(domain.StageGenerate, ""),
	})

	assert.Contains(t, line, "rewrite")
	assert.Contains(t, line, "retrieve")
	assert.Contains(t, line, "web_search")
	assert.Contains(t, line, "generate")
	assert.Contains(t, line, "disabled")
	// Degraded detail is not echoed in the status line.
	assert.NotContains(t, line, "store down")
}
