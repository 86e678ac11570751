package tui

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/boxinfo/internal/about"
	"github.com/tinytelemetry/boxinfo/internal/console"
	"github.com/tinytelemetry/boxinfo/internal/model"
	"github.com/tinytelemetry/boxinfo/internal/panel"
	"github.com/tinytelemetry/boxinfo/internal/sysfs"
)

// memoryHistoryLimit is how many daemon samples the memory chart shows.
const memoryHistoryLimit = model.DefaultHistoryLimit

// memoryGauge is implemented by the Memory Info panel.
type memoryGauge interface {
	Usage() sysfs.MemUsage
	ClearMemory(ctx context.Context) error
}

// logRemover is implemented by the Troubleshoot panel.
type logRemover interface {
	IsLogfile() bool
	RemoveCurrent() error
	RemoveAll() error
}

// resultMsg carries a finished request back to the controller that issued it.
type resultMsg struct {
	ctrl *panel.Controller
	id   panel.RequestID
	res  console.Result
}

type historyMsg struct {
	samples []model.MemorySample
	err     error
}

// actionDoneMsg reports the outcome of clear/remove actions.
type actionDoneMsg struct {
	err     error
	refresh bool
}

// PanelPage shows one panel and drives its controller. Requests run as
// Bubble Tea commands; their results come back as resultMsg and are fed
// to the controller on the update loop.
type PanelPage struct {
	ModalStack

	runner   console.Runner
	tr       panel.Translator
	history  HistorySource
	keys     KeyMap
	ctx      ModalContext
	help     help.Model
	viewport viewport.Model
	progress progress.Model

	src    panel.Source
	ctrl   *panel.Controller
	cancel context.CancelFunc
	runCtx context.Context

	update  panel.Update
	samples []model.MemorySample
	status  string
}

func NewPanelPage(opts Options, keys KeyMap) *PanelPage {
	return &PanelPage{
		runner:   opts.Runner,
		tr:       opts.Translator,
		history:  opts.History,
		keys:     keys,
		ctx:      ModalContext{ReverseScrollWheel: opts.ReverseScrollWheel},
		help:     help.New(),
		viewport: viewport.New(80, 20),
		progress: progress.New(progress.WithDefaultGradient()),
		runCtx:   context.Background(),
	}
}

func (p *PanelPage) ID() string { return panelPageID }

func (p *PanelPage) Init() tea.Cmd { return nil }

// Show implements panel.Display. The controller calls it from the update
// loop, inside Open, Refresh or OnCommandComplete.
func (p *PanelPage) Show(u panel.Update) {
	p.update = u
	p.viewport.SetContent(p.renderLines(u.Lines))
}

// Enter opens src and starts collecting it.
func (p *PanelPage) Enter(params any) tea.Cmd {
	src, ok := params.(panel.Source)
	if !ok {
		return nil
	}
	p.close()

	p.src = src
	p.status = ""
	p.samples = nil
	p.runCtx, p.cancel = context.WithCancel(context.Background())
	p.ctrl = panel.NewController(src, panel.WithTranslator(p.tr), panel.WithDisplay(p))
	p.viewport.GotoTop()

	return tea.Batch(p.dispatch(p.ctrl.Open()), spinnerTick(), p.fetchHistory())
}

func (p *PanelPage) close() {
	if p.ctrl != nil {
		p.ctrl.Close()
		p.ctrl = nil
	}
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.ModalStack = ModalStack{}
}

// dispatch runs each request as its own command.
func (p *PanelPage) dispatch(reqs []panel.Request) tea.Cmd {
	if len(reqs) == 0 {
		return nil
	}
	ctrl, ctx, runner := p.ctrl, p.runCtx, p.runner
	cmds := make([]tea.Cmd, 0, len(reqs))
	for _, req := range reqs {
		cmds = append(cmds, func() tea.Msg {
			return resultMsg{ctrl: ctrl, id: req.ID, res: req.Execute(ctx, runner)}
		})
	}
	return tea.Batch(cmds...)
}

func (p *PanelPage) refresh() tea.Cmd {
	if p.ctrl == nil {
		return nil
	}
	return tea.Batch(p.dispatch(p.ctrl.Refresh()), spinnerTick(), p.fetchHistory())
}

func (p *PanelPage) fetchHistory() tea.Cmd {
	if p.history == nil {
		return nil
	}
	if _, ok := p.src.(memoryGauge); !ok {
		return nil
	}
	h := p.history
	return func() tea.Msg {
		samples, err := h.MemoryHistory(memoryHistoryLimit)
		return historyMsg{samples: samples, err: err}
	}
}

func (p *PanelPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, p.keys.ForceQuit) {
		return tea.Quit, nil
	}

	switch msg := msg.(type) {
	case resultMsg:
		if msg.ctrl != p.ctrl || p.ctrl == nil {
			return nil, nil
		}
		return p.dispatch(p.ctrl.OnCommandComplete(msg.id, msg.res)), nil

	case historyMsg:
		if msg.err != nil {
			log.Printf("tui: memory history: %v", msg.err)
			p.samples = nil
		} else {
			p.samples = msg.samples
		}
		return nil, nil

	case actionDoneMsg:
		if msg.err != nil {
			p.status = msg.err.Error()
		}
		if msg.refresh {
			return p.refresh(), nil
		}
		return nil, nil

	case SpinnerTickMsg:
		if p.ctrl != nil && p.ctrl.State() == panel.Collecting {
			return spinnerTick(), nil
		}
		return nil, nil
	}

	if cmd, ok := p.routeToModal(msg); ok {
		return cmd, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return p.handleKey(msg)
	case tea.MouseMsg:
		scrollViewport(&p.viewport, p.ctx, msg)
	}
	return nil, nil
}

func (p *PanelPage) handleKey(msg tea.KeyMsg) (tea.Cmd, *PageNav) {
	k := p.keys
	switch {
	case key.Matches(msg, k.Quit):
		p.close()
		return tea.Quit, nil

	case key.Matches(msg, k.Escape):
		p.close()
		return nil, &PageNav{PageID: menuPageID}

	case key.Matches(msg, k.Help):
		p.PushModal(NewHelpModal(p.ctx, p.keys))

	case key.Matches(msg, k.Refresh):
		p.status = ""
		return p.refresh(), nil

	case key.Matches(msg, k.Left), key.Matches(msg, k.Right):
		c, ok := p.src.(about.Cycler)
		if !ok {
			return nil, nil
		}
		if key.Matches(msg, k.Left) {
			c.Prev()
		} else {
			c.Next()
		}
		p.status = ""
		p.viewport.GotoTop()
		return p.refresh(), nil

	case key.Matches(msg, k.Clear):
		g, ok := p.src.(memoryGauge)
		if !ok {
			return nil, nil
		}
		ctx := p.runCtx
		return func() tea.Msg {
			return actionDoneMsg{err: g.ClearMemory(ctx), refresh: true}
		}, nil

	case key.Matches(msg, k.Remove):
		r, ok := p.src.(logRemover)
		if !ok || !r.IsLogfile() {
			return nil, nil
		}
		p.PushModal(NewConfirmModal("remove", p.t("Are you sure you want to remove this logfile?"), func() tea.Msg {
			return actionDoneMsg{err: r.RemoveCurrent(), refresh: true}
		}))

	case key.Matches(msg, k.RemoveAll):
		r, ok := p.src.(logRemover)
		if !ok {
			return nil, nil
		}
		p.PushModal(NewConfirmModal("remove-all", p.t("Are you sure you want to remove all logfiles?"), func() tea.Msg {
			return actionDoneMsg{err: r.RemoveAll(), refresh: true}
		}))

	case key.Matches(msg, k.Patterns):
		if _, ok := p.src.(logRemover); !ok || !p.update.State.Done() {
			return nil, nil
		}
		p.PushModal(NewPatternsModal(p.ctx, p.title(), p.update.Lines))

	default:
		scrollViewport(&p.viewport, p.ctx, msg)
	}
	return nil, nil
}

func (p *PanelPage) t(msg string) string {
	if p.tr == nil {
		return msg
	}
	return p.tr.T(msg)
}

// renderLines tints troubleshoot output by severity.
func (p *PanelPage) renderLines(lines []string) string {
	if _, ok := p.src.(logRemover); !ok {
		return strings.Join(lines, "\n")
	}
	return strings.Join(tintLines(lines), "\n")
}

func (p *PanelPage) title() string {
	title := p.update.Title
	if title == "" && p.src != nil {
		title = p.src.Title()
	}
	title = p.t(title)
	if c, ok := p.src.(about.Cycler); ok {
		cur, n := c.Current()
		title = fmt.Sprintf("%s (%d/%d)", title, cur+1, n)
	}
	return title
}

func (p *PanelPage) View(width, height int) string {
	if modal := p.TopModal(); modal != nil {
		return modal.View(width, height)
	}
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}

	header := chartTitleStyle.Render(p.title())
	if p.update.State == panel.Collecting {
		header += "  " + renderLoadingLine(p.t("Collecting..."))
	}

	var extras []string
	if g, ok := p.src.(memoryGauge); ok && p.update.State.Done() {
		usage := g.Usage()
		p.progress.Width = max(width-4, 10)
		extras = append(extras, p.progress.ViewAs(float64(usage.Progress)/100))
		if chart := renderMemoryChart(p.samples, width-2); chart != "" {
			extras = append(extras, chart)
		}
	}
	if p.status != "" {
		extras = append(extras, errorStyle.Render(p.status))
	}

	status := p.help.ShortHelpView(p.shortHelp())

	extraHeight := 0
	for _, e := range extras {
		extraHeight += lipgloss.Height(e)
	}
	// header, viewport border, status line
	p.viewport.Width = width - 2
	p.viewport.Height = max(height-extraHeight-4, 3)

	parts := []string{header, sectionStyle.Width(width - 2).Render(p.viewport.View())}
	parts = append(parts, extras...)
	parts = append(parts, status)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// shortHelp lists the bindings that apply to the current panel.
func (p *PanelPage) shortHelp() []key.Binding {
	k := p.keys
	bindings := []key.Binding{k.Up, k.Down, k.Refresh}
	if _, ok := p.src.(about.Cycler); ok {
		bindings = append(bindings, k.Left, k.Right)
	}
	if _, ok := p.src.(memoryGauge); ok {
		bindings = append(bindings, k.Clear)
	}
	if r, ok := p.src.(logRemover); ok {
		if r.IsLogfile() {
			bindings = append(bindings, k.Remove)
		}
		bindings = append(bindings, k.RemoveAll, k.Patterns)
	}
	return append(bindings, k.Escape, k.Help, k.Quit)
}
