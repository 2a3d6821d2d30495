package screen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/orwee/liduido/internal/export"
	"github.com/orwee/liduido/internal/pool"
	"github.com/orwee/liduido/internal/ui"
	"github.com/orwee/liduido/internal/ui/component"
	"github.com/orwee/liduido/internal/ui/style"
)

type focusArea int

const (
	focusPairs focusArea = iota
	focusCalculator
)

const fieldsPerPair = 3

// CompareScreen is the dashboard's single screen: a pair multiselect on the
// left and, per selected pair, a what-if calculator plus a comparison table
// on the right.
type CompareScreen struct {
	width  int
	height int
	keyMap ui.KeyMap

	services *ui.Services
	helpBar  *component.HelpBar

	// Data state
	loading   bool
	loadErr   error
	hasLoaded bool
	records   []pool.Record
	pairs     []string

	// Selection state; selected preserves user selection order
	selected []string
	cursor   int

	// Calculator input state, keyed by pair so sections do not collide
	inputs map[string]*pairInputs

	// Focus state
	focus      focusArea
	focusPair  int // index into selected
	focusField int // 0=tier 1=tvl 2=volume

	statusMsg   string
	statusIsErr bool

	// Styling
	titleStyle    lipgloss.Style
	subtitleStyle lipgloss.Style
	sectionStyle  lipgloss.Style
	errorStyle    lipgloss.Style
	infoStyle     lipgloss.Style
	successStyle  lipgloss.Style
	cursorStyle   lipgloss.Style
	checkedStyle  lipgloss.Style
	uncheckStyle  lipgloss.Style
	labelStyle    lipgloss.Style
	highlightRow  lipgloss.Style
	plainRow      lipgloss.Style
}

// NewCompareScreen creates the comparison screen
func NewCompareScreen(services *ui.Services) *CompareScreen {
	palette := style.DefaultPalette()

	s := &CompareScreen{
		keyMap:   ui.DefaultKeyMap(),
		services: services,
		helpBar:  component.NewHelpBar(),
		loading:  true,
		inputs:   make(map[string]*pairInputs),

		titleStyle: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true).
			Margin(1, 0, 0, 2),

		subtitleStyle: lipgloss.NewStyle().
			Foreground(palette.TextSecondary).
			Margin(0, 0, 1, 2),

		sectionStyle: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true).
			Margin(1, 0, 0, 0),

		errorStyle: lipgloss.NewStyle().
			Foreground(palette.Error).
			Bold(true).
			Padding(0, 2),

		infoStyle: lipgloss.NewStyle().
			Foreground(palette.Info).
			Padding(0, 2),

		successStyle: lipgloss.NewStyle().
			Foreground(palette.Success).
			Padding(0, 2),

		cursorStyle: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true),

		checkedStyle: lipgloss.NewStyle().
			Foreground(palette.Success),

		uncheckStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		labelStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		highlightRow: lipgloss.NewStyle().
			Foreground(palette.Highlight).
			Bold(true).
			Padding(0, 1),

		plainRow: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1),
	}

	return s
}

// Init triggers the first data load
func (s *CompareScreen) Init() tea.Cmd {
	return s.services.LoadPoolsCmd()
}

// Update handles screen updates
func (s *CompareScreen) Update(msg tea.Msg) (*CompareScreen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.SetSize(msg.Width, msg.Height)
		return s, nil

	case ui.PoolsLoadedMsg:
		s.onPoolsLoaded(msg)
		return s, nil

	case ui.ExportDoneMsg:
		if msg.Err != nil {
			s.statusMsg = fmt.Sprintf("Export failed: %v", msg.Err)
			s.statusIsErr = true
		} else {
			s.statusMsg = "Exported to " + msg.Path
			s.statusIsErr = false
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	return s, nil
}

func (s *CompareScreen) onPoolsLoaded(msg ui.PoolsLoadedMsg) {
	s.loading = false
	s.loadErr = msg.Err

	if msg.Err != nil {
		// Degrade to an empty table so the rest of the page still renders.
		s.records = nil
	} else {
		s.records = msg.Records
	}
	s.pairs = pool.Pairs(s.records)

	// Prune selections for pairs that disappeared.
	kept := s.selected[:0]
	for _, p := range s.selected {
		if containsPair(s.pairs, p) {
			kept = append(kept, p)
		} else {
			delete(s.inputs, p)
		}
	}
	s.selected = kept

	if s.cursor >= len(s.pairs) {
		s.cursor = 0
	}
	// Preselect the first pair on the first successful load so the screen
	// is never empty on first paint; later reloads respect the user's
	// selection, including an intentionally empty one.
	if !s.hasLoaded && len(s.pairs) > 0 {
		s.selectPair(s.pairs[0])
	}
	if msg.Err == nil {
		s.hasLoaded = true
	}
	if s.focusPair >= len(s.selected) {
		s.exitCalculator()
	}
}

func (s *CompareScreen) handleKey(msg tea.KeyMsg) (*CompareScreen, tea.Cmd) {
	// ctrl+c always quits, regardless of focus.
	if msg.String() == "ctrl+c" {
		return s, tea.Quit
	}

	if s.focus == focusCalculator {
		return s.handleCalculatorKey(msg)
	}
	return s.handlePairListKey(msg)
}

func (s *CompareScreen) handlePairListKey(msg tea.KeyMsg) (*CompareScreen, tea.Cmd) {
	switch {
	case key.Matches(msg, s.keyMap.Quit):
		return s, tea.Quit

	case key.Matches(msg, s.keyMap.Up):
		if s.cursor > 0 {
			s.cursor--
		}

	case key.Matches(msg, s.keyMap.Down):
		if s.cursor < len(s.pairs)-1 {
			s.cursor++
		}

	case key.Matches(msg, s.keyMap.Toggle):
		if s.cursor < len(s.pairs) {
			s.togglePair(s.pairs[s.cursor])
		}

	case key.Matches(msg, s.keyMap.Tab):
		if len(s.selected) > 0 {
			s.enterCalculator(0, 0)
		}

	case key.Matches(msg, s.keyMap.Reload):
		s.loading = true
		s.statusMsg = ""
		return s, s.services.ReloadCmd()

	case key.Matches(msg, s.keyMap.Export):
		return s.startExport()
	}

	return s, nil
}

func (s *CompareScreen) handleCalculatorKey(msg tea.KeyMsg) (*CompareScreen, tea.Cmd) {
	switch {
	case key.Matches(msg, s.keyMap.Back):
		s.exitCalculator()
		return s, nil

	case key.Matches(msg, s.keyMap.Tab):
		s.moveCalculatorFocus(1)
		return s, nil

	case key.Matches(msg, s.keyMap.ShiftTab):
		s.moveCalculatorFocus(-1)
		return s, nil
	}

	// Everything else edits the focused input.
	in := s.focusedInput()
	if in == nil {
		s.exitCalculator()
		return s, nil
	}
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	return s, cmd
}

func (s *CompareScreen) startExport() (*CompareScreen, tea.Cmd) {
	sections := s.buildSections()
	if len(sections) == 0 {
		s.statusMsg = "Nothing selected to export."
		s.statusIsErr = false
		return s, nil
	}
	return s, s.services.ExportCmd(sections)
}

// selectPair appends pair to the selection and seeds its calculator inputs
// from the reference venue's row, or the fixed fallbacks.
func (s *CompareScreen) selectPair(pair string) {
	s.selected = append(s.selected, pair)
	defaults := pool.DefaultsFor(s.records, pair, s.services.Config.ReferenceDEX)
	s.inputs[pair] = newPairInputs(defaults)
}

func (s *CompareScreen) togglePair(pair string) {
	for i, p := range s.selected {
		if p == pair {
			s.selected = append(s.selected[:i], s.selected[i+1:]...)
			// Calculator state dies with the section.
			delete(s.inputs, pair)
			if s.focus == focusCalculator && s.focusPair >= len(s.selected) {
				s.exitCalculator()
			}
			return
		}
	}
	s.selectPair(pair)
}

func (s *CompareScreen) enterCalculator(pairIdx, fieldIdx int) {
	s.focus = focusCalculator
	s.focusPair = pairIdx
	s.focusField = fieldIdx
	if in := s.focusedInput(); in != nil {
		in.Focus()
	}
}

func (s *CompareScreen) exitCalculator() {
	if in := s.focusedInput(); in != nil {
		in.Blur()
	}
	s.focus = focusPairs
	s.focusPair = 0
	s.focusField = 0
}

// moveCalculatorFocus advances delta fields, wrapping across sections and
// back out to the pair list after the last field.
func (s *CompareScreen) moveCalculatorFocus(delta int) {
	if in := s.focusedInput(); in != nil {
		in.Blur()
	}

	total := len(s.selected) * fieldsPerPair
	if total == 0 {
		s.exitCalculator()
		return
	}

	idx := s.focusPair*fieldsPerPair + s.focusField + delta
	if idx < 0 || idx >= total {
		s.exitCalculator()
		return
	}

	s.focusPair = idx / fieldsPerPair
	s.focusField = idx % fieldsPerPair
	if in := s.focusedInput(); in != nil {
		in.Focus()
	}
}

func (s *CompareScreen) focusedInput() *textinput.Model {
	if s.focusPair >= len(s.selected) {
		return nil
	}
	inputs, ok := s.inputs[s.selected[s.focusPair]]
	if !ok {
		return nil
	}
	return inputs.field(s.focusField)
}

// buildSections assembles the merged, sorted rows for every selected pair,
// in selection order.
func (s *CompareScreen) buildSections() []export.Section {
	sections := make([]export.Section, 0, len(s.selected))
	for _, pair := range s.selected {
		inputs, ok := s.inputs[pair]
		if !ok {
			continue
		}
		sections = append(sections, export.Section{
			Pair: pair,
			Rows: buildComparison(s.records, pair, inputs.values(), s.services.Config.ReferenceDEX),
		})
	}
	return sections
}

// buildComparison slices pair's real rows, appends a fresh calculator row
// and sorts the merged set by APY descending.
func buildComparison(records []pool.Record, pair string, in pool.CalculatorInputs, referenceDEX string) []pool.Record {
	rows := pool.ForPair(records, pair)
	rows = append(rows, in.Row(pair, referenceDEX))
	pool.SortByAPY(rows)
	return rows
}

// View renders the screen
func (s *CompareScreen) View() string {
	if s.width == 0 {
		return "Initializing..."
	}

	var b strings.Builder

	b.WriteString(s.titleStyle.Render("📊 DEX Pair Comparator (" + s.services.Config.Network + ")"))
	b.WriteString("\n")
	b.WriteString(s.subtitleStyle.Render("Compare liquidity pools across venues; highlighted rows belong to " + s.services.Config.ReferenceDEX + "."))
	b.WriteString("\n")

	switch {
	case s.loading:
		b.WriteString(s.infoStyle.Render("Loading pool data..."))
		b.WriteString("\n")

	case s.loadErr != nil:
		b.WriteString(s.errorStyle.Render(fmt.Sprintf("Failed to load pool data: %v", s.loadErr)))
		b.WriteString("\n")
		b.WriteString(s.infoStyle.Render("No data available."))
		b.WriteString("\n")

	case len(s.records) == 0:
		b.WriteString(s.infoStyle.Render(fmt.Sprintf("No data found for network %q.", s.services.Config.Network)))
		b.WriteString("\n")

	default:
		b.WriteString(s.renderBody())
	}

	if s.statusMsg != "" {
		b.WriteString("\n")
		if s.statusIsErr {
			b.WriteString(s.errorStyle.Render(s.statusMsg))
		} else {
			b.WriteString(s.successStyle.Render(s.statusMsg))
		}
		b.WriteString("\n")
	}

	bindings := s.keyMap.PairListHelp()
	if s.focus == focusCalculator {
		bindings = s.keyMap.CalculatorHelp()
	}
	b.WriteString(s.helpBar.SetKeyBindings(bindings).View())

	return b.String()
}

func (s *CompareScreen) renderBody() string {
	left := s.renderPairList()

	var right string
	if len(s.selected) == 0 {
		right = s.infoStyle.Render("Select at least one pair to see the comparison.")
	} else {
		sections := make([]string, 0, len(s.selected))
		for i, pair := range s.selected {
			sections = append(sections, s.renderSection(pair, i))
		}
		right = strings.Join(sections, "\n")
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

func (s *CompareScreen) renderPairList() string {
	var b strings.Builder
	b.WriteString(s.labelStyle.Render("Pairs"))
	b.WriteString("\n")

	for i, pair := range s.pairs {
		cursor := "  "
		if s.focus == focusPairs && i == s.cursor {
			cursor = s.cursorStyle.Render("> ")
		}

		check := s.uncheckStyle.Render("[ ]")
		if containsPair(s.selected, pair) {
			check = s.checkedStyle.Render("[x]")
		}

		b.WriteString(fmt.Sprintf("%s%s %s\n", cursor, check, pair))
	}

	return b.String()
}

func (s *CompareScreen) renderSection(pair string, sectionIdx int) string {
	inputs := s.inputs[pair]
	if inputs == nil {
		return ""
	}
	in := inputs.values()
	rows := buildComparison(s.records, pair, in, s.services.Config.ReferenceDEX)

	var b strings.Builder
	b.WriteString(s.sectionStyle.Render("Pair: " + pair))
	b.WriteString("\n")

	focused := s.focus == focusCalculator && s.focusPair == sectionIdx
	b.WriteString(s.renderCalculator(inputs, in, focused))
	b.WriteString("\n")
	b.WriteString(s.renderTable(rows))
	b.WriteString("\n")

	return b.String()
}

func (s *CompareScreen) renderCalculator(inputs *pairInputs, in pool.CalculatorInputs, focused bool) string {
	label := func(name string) string { return s.labelStyle.Render(name + ":") }

	line := strings.Join([]string{
		label("Tier"), inputs.tier.View(),
		label("TVL"), inputs.tvl.View(),
		label("Volume 24h"), inputs.volume.View(),
		label("→ APY"), formatAPY(in.APY()),
	}, " ")

	if focused {
		line += "  " + s.cursorStyle.Render("(editing)")
	}
	return line
}

func (s *CompareScreen) renderTable(rows []pool.Record) string {
	table := component.NewTable().
		AddColumn("DEX", 18, lipgloss.Left).
		AddColumn("Tier", 8, lipgloss.Right).
		AddColumn("APY 24h", 12, lipgloss.Right).
		AddColumn("TVL", 14, lipgloss.Right).
		AddColumn("Volume 24h", 14, lipgloss.Right).
		AddColumn("Fees 24h", 12, lipgloss.Right)

	for _, row := range rows {
		data := []string{
			row.DEX,
			formatNumber(row.Tier),
			formatAPY(row.APY24h),
			formatNumber(row.TVL),
			formatNumber(row.Volume24h),
			formatNumber(row.Fees24h),
		}
		// Row styling by predicate, applied after sorting.
		if pool.IsReference(row.DEX, s.services.Config.ReferenceDEX) {
			table.AddStyledRow(data, s.highlightRow)
		} else {
			table.AddStyledRow(data, s.plainRow)
		}
	}

	return table.View()
}

// SetSize sets the screen dimensions
func (s *CompareScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.helpBar.SetWidth(width)
}

// pairInputs holds the three calculator textinputs for one pair section.
type pairInputs struct {
	tier   textinput.Model
	tvl    textinput.Model
	volume textinput.Model
}

func newPairInputs(defaults pool.CalculatorInputs) *pairInputs {
	mk := func(v float64) textinput.Model {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Width = 10
		ti.CharLimit = 16
		ti.SetValue(formatNumber(v))
		return ti
	}
	return &pairInputs{
		tier:   mk(defaults.Tier),
		tvl:    mk(defaults.TVL),
		volume: mk(defaults.Volume),
	}
}

func (p *pairInputs) field(i int) *textinput.Model {
	switch i {
	case 0:
		return &p.tier
	case 1:
		return &p.tvl
	default:
		return &p.volume
	}
}

// values parses the current inputs; unparseable entries coerce to zero,
// matching the loader's coercion rule.
func (p *pairInputs) values() pool.CalculatorInputs {
	return pool.CalculatorInputs{
		Tier:   parseNumber(p.tier.Value()),
		TVL:    parseNumber(p.tvl.Value()),
		Volume: parseNumber(p.volume.Value()),
	}
}

func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatAPY(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

func containsPair(pairs []string, pair string) bool {
	for _, p := range pairs {
		if p == pair {
			return true
		}
	}
	return false
}
