package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/flowr-app/flowr/internal/catalog"
	"github.com/flowr-app/flowr/internal/display"
	"github.com/flowr-app/flowr/internal/filter"
	"github.com/flowr-app/flowr/internal/region"
	"github.com/flowr-app/flowr/internal/stats"
)

const (
	minTUIWidth  = 92
	minTUIHeight = 24
)

var (
	tuiAccent = lipgloss.Color("86")
	tuiBorder = lipgloss.Color("241")

	tuiHeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(tuiAccent)
	tuiMetaStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	tuiHintStyle    = lipgloss.NewStyle().Foreground(tuiBorder)
	tuiValueStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	tuiStrainStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	tuiTitleStyle   = tuiValueStyle
	tuiMutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	tuiSectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	tuiPaneStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(tuiBorder).Padding(0, 1)
)

type tuiLoadConfig struct {
	ctx         context.Context
	app         *app
	initialOpts filter.Options
}

type tuiDataLoadedMsg struct {
	products    []catalog.Product
	initialOpts filter.Options
}

type tuiDataLoadErrMsg struct {
	err error
}

// tuiPotencyMsg carries a finished potency estimate for one product.
type tuiPotencyMsg struct {
	productID string
	estimate  stats.Estimate
	err       error
}

type tuiFocus int

const (
	tuiFocusList tuiFocus = iota
	tuiFocusDetail
)

type tuiGroupItem struct {
	name    string
	count   int
	ordinal int
}

func (g tuiGroupItem) FilterValue() string { return strings.ToLower(g.name) }
func (g tuiGroupItem) Title() string       { return fmt.Sprintf("%d. %s", g.ordinal, g.name) }
func (g tuiGroupItem) Description() string {
	return fmt.Sprintf("Category • %d products", g.count)
}

type tuiProductItem struct {
	product     catalog.Product
	group       string
	title       string
	description string
	filterValue string
}

func (p tuiProductItem) FilterValue() string { return p.filterValue }
func (p tuiProductItem) Title() string       { return p.title }
func (p tuiProductItem) Description() string { return p.description }

// tuiPotency is the detail pane's view of a product's average potency.
type tuiPotency struct {
	estimate    stats.Estimate
	unavailable bool
}

type tuiKeyMap struct {
	Sort, Category, Region, Feel, Activity, Limit, Reset key.Binding
	NextSection, PrevSection, JumpSection                 key.Binding
	Filter, Scroll, HalfPage, Page                        key.Binding
	SwitchPane, Back, Help, Quit, ForceQuit               key.Binding
}

func newTUIKeyMap() tuiKeyMap {
	return tuiKeyMap{
		Sort:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Category:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "category")),
		Region:      key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "region")),
		Feel:        key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "feel")),
		Activity:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "activity")),
		Limit:       key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "limit")),
		Reset:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset filters")),
		NextSection: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next category")),
		PrevSection: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "previous category")),
		JumpSection: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "jump to category"),
		),
		// The list and viewport own these keys; the bindings only label them.
		Filter:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "fuzzy filter")),
		Scroll:   key.NewBinding(key.WithKeys("j", "k"), key.WithHelp("j/k", "scroll")),
		HalfPage: key.NewBinding(key.WithKeys("u", "d"), key.WithHelp("u/d", "half page")),
		Page:     key.NewBinding(key.WithKeys("b", "f"), key.WithHelp("b/f", "page")),

		SwitchPane: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back to list")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "force quit")),
	}
}

func (k tuiKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.SwitchPane, k.Filter, k.Sort, k.Category, k.Region, k.Feel,
		k.Activity, k.Limit, k.Reset, k.NextSection, k.Help, k.Quit,
	}
}

func (k tuiKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Filter, k.Category, k.Region, k.Feel, k.Activity},
		{k.Sort, k.Limit, k.Reset},
		{k.NextSection, k.PrevSection, k.JumpSection},
		{k.Scroll, k.HalfPage, k.Page},
		{k.SwitchPane, k.Back, k.Help, k.Quit, k.ForceQuit},
	}
}

func (k tuiKeyMap) detailHelp() []key.Binding {
	return []key.Binding{k.Scroll, k.HalfPage, k.Page, k.Back, k.Help, k.Quit}
}

// tuiFacet is one inline string filter cycled from the keyboard.
type tuiFacet struct {
	name    string
	binding key.Binding
	choices []string
	index   int
	get     func(filter.Options) string
	set     func(*filter.Options, string)
}

// sync points the facet at the value in opts; unknown values reset to unset.
func (f *tuiFacet) sync(opts *filter.Options) {
	f.index = max(0, indexOfStringFold(f.choices, f.get(*opts)))
	f.set(opts, pickChoice(f.choices, f.index))
}

func (f *tuiFacet) next(opts *filter.Options) {
	f.index = cycle(f.index, len(f.choices))
	f.set(opts, pickChoice(f.choices, f.index))
}

type productsTUIModel struct {
	loading  bool
	spinner  spinner.Model
	loadCmd  tea.Cmd
	fatalErr error

	ctx       context.Context
	estimator *stats.Estimator

	allProducts []catalog.Product

	opts        filter.Options
	initialOpts filter.Options

	facets       []tuiFacet
	limitChoices []int
	limitIndex   int

	// potency caches estimates by product id; pending marks lookups in flight.
	potency map[string]tuiPotency
	pending map[string]bool

	list   list.Model
	detail viewport.Model
	keys   tuiKeyMap
	help   help.Model

	focus      tuiFocus
	showHelp   bool
	selectedID string

	groupStarts     []int
	visibleProducts int

	width, height   int
	bodyHeight      int
	listPaneWidth   int
	detailPaneWidth int
	tooSmall        bool
}

func newLoadingProductsTUIModel(cfg tuiLoadConfig) productsTUIModel {
	delegate := list.NewDefaultDelegate()
	delegate.SetHeight(2)
	delegate.SetSpacing(1)

	lst := list.New([]list.Item{}, delegate, 0, 0)
	lst.Title = "Products"
	lst.SetStatusBarItemName("item", "items")
	lst.SetShowHelp(false)
	lst.DisableQuitKeybindings()

	detail := viewport.New(0, 0)
	detail.KeyMap.PageDown.SetKeys("f", "pgdown")
	detail.KeyMap.PageUp.SetKeys("b", "pgup")
	detail.KeyMap.HalfPageDown.SetKeys("d")
	detail.KeyMap.HalfPageUp.SetKeys("u")

	spin := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(tuiAccent)))

	helpView := help.New()
	helpView.Styles.ShortKey = tuiMetaStyle
	helpView.Styles.ShortDesc = tuiHintStyle
	helpView.Styles.FullKey = tuiMetaStyle
	helpView.Styles.FullDesc = tuiHintStyle

	ctx := cfg.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	var estimator *stats.Estimator
	if cfg.app != nil {
		estimator = cfg.app.estimator
	}

	return productsTUIModel{
		loading:     true,
		spinner:     spin,
		loadCmd:     loadTUIDataCmd(cfg),
		ctx:         ctx,
		estimator:   estimator,
		initialOpts: cfg.initialOpts,
		opts:        cfg.initialOpts,
		potency:     map[string]tuiPotency{},
		pending:     map[string]bool{},
		list:        lst,
		detail:      detail,
		keys:        newTUIKeyMap(),
		help:        helpView,
		focus:       tuiFocusList,
	}
}

func loadTUIDataCmd(cfg tuiLoadConfig) tea.Cmd {
	if cfg.app == nil {
		return nil
	}
	return func() tea.Msg {
		products, err := loadTUIData(cfg.ctx, cfg.app)
		if err != nil {
			return tuiDataLoadErrMsg{err: err}
		}
		return tuiDataLoadedMsg{products: products, initialOpts: cfg.initialOpts}
	}
}

// estimatePotencyCmd resolves a product's potency off the UI loop. The
// estimator shares lookups for the same product; if ctx ends first the
// command yields no message.
func estimatePotencyCmd(ctx context.Context, est *stats.Estimator, p catalog.Product) tea.Cmd {
	return func() tea.Msg {
		ch := make(chan tuiPotencyMsg, 1)
		est.EstimatePotencyAsync(ctx, p.ID, p.AvgTHC, func(e stats.Estimate, err error) {
			ch <- tuiPotencyMsg{productID: p.ID, estimate: e, err: err}
		})
		select {
		case msg := <-ch:
			return msg
		case <-ctx.Done():
			return nil
		}
	}
}

func (m productsTUIModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd)
}

func (m productsTUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case tuiDataLoadedMsg:
		m.loading = false
		m.allProducts = msg.products
		m.initialOpts = canonicalizeTUIOptions(msg.initialOpts)
		m.opts = m.initialOpts
		m.initializeInlineChoices()
		m.applyCurrentFilters(true)
		m.resize()
		return m, m.requestPotency()

	case tuiDataLoadErrMsg:
		m.loading = false
		m.fatalErr = msg.err
		return m, tea.Quit

	case tuiPotencyMsg:
		delete(m.pending, msg.productID)
		// The user moved on; a later selection will ask again.
		if msg.productID != m.selectedProductID() {
			return m, nil
		}
		m.potency[msg.productID] = tuiPotency{estimate: msg.estimate, unavailable: msg.err != nil}
		m.refreshDetail(false)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		if m.loading {
			if key.Matches(msg, m.keys.Quit) {
				return m, tea.Quit
			}
			return m, nil
		}
		if m.list.FilterState() != list.Filtering {
			if next, cmd, handled := m.handleKey(msg); handled {
				return next, cmd
			}
			if m.focus == tuiFocusDetail {
				var cmd tea.Cmd
				m.detail, cmd = m.detail.Update(msg)
				return m, cmd
			}
		}
	}

	if m.loading {
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.refreshDetail(false)
	return m, tea.Batch(cmd, m.requestPotency())
}

// handleKey runs the explorer's own bindings. Keys it does not claim fall
// through to the focused pane.
func (m productsTUIModel) handleKey(msg tea.KeyMsg) (productsTUIModel, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit, true
	case key.Matches(msg, m.keys.SwitchPane):
		if m.focus == tuiFocusList {
			m.focus = tuiFocusDetail
		} else {
			m.focus = tuiFocusList
		}
		return m, nil, true
	case key.Matches(msg, m.keys.Back) && m.focus == tuiFocusDetail:
		m.focus = tuiFocusList
		return m, nil, true
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.resize()
		return m, nil, true
	case key.Matches(msg, m.keys.Limit):
		if len(m.limitChoices) > 0 {
			m.limitIndex = cycle(m.limitIndex, len(m.limitChoices))
			m.opts.Limit = m.limitChoices[m.limitIndex]
		}
		return m.refilter()
	case key.Matches(msg, m.keys.Reset):
		m.opts = m.initialOpts
		m.syncChoiceIndexesFromOptions()
		return m.refilter()
	case key.Matches(msg, m.keys.NextSection, m.keys.PrevSection, m.keys.JumpSection):
		return m.handleSectionKey(msg)
	}

	for i := range m.facets {
		if key.Matches(msg, m.facets[i].binding) {
			m.facets[i].next(&m.opts)
			return m.refilter()
		}
	}
	return m, nil, false
}

func (m productsTUIModel) refilter() (productsTUIModel, tea.Cmd, bool) {
	m.applyCurrentFilters(false)
	return m, m.requestPotency(), true
}

func (m productsTUIModel) handleSectionKey(msg tea.KeyMsg) (productsTUIModel, tea.Cmd, bool) {
	if m.list.IsFiltered() {
		return m, m.list.NewStatusMessage("Clear fuzzy filter before section jumps."), true
	}
	switch {
	case key.Matches(msg, m.keys.NextSection):
		m.jumpSection(1)
	case key.Matches(msg, m.keys.PrevSection):
		m.jumpSection(-1)
	default:
		m.jumpToSection(int(msg.String()[0] - '1'))
	}
	return m, m.requestPotency(), true
}

func (m productsTUIModel) View() string {
	switch {
	case m.loading:
		return m.loadingView()
	case m.width == 0 || m.height == 0:
		return tuiMetaStyle.Render("Loading interface...")
	case m.tooSmall:
		return lipgloss.NewStyle().Padding(1, 2).Render(fmt.Sprintf(
			"Terminal too small (%dx%d).\nResize to at least %dx%d for the two-pane product explorer.",
			m.width, m.height, minTUIWidth, minTUIHeight,
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.headerView(), m.bodyView(), m.footerView())
}

func (m productsTUIModel) loadingView() string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		tuiHeaderStyle.Render("flowr tui"),
		tuiMetaStyle.Render("Loading the product catalog"),
		"",
		m.spinner.View()+" reading products, categories and regions",
		tuiHintStyle.Render("Potency estimates load per product once the list is up."),
		"",
		tuiHintStyle.Render("press q to cancel"),
	)
	return lipgloss.NewStyle().Width(max(m.width, 80)).Padding(1, 2).Render(body)
}

// paneWidths splits total columns between the list and the detail pane,
// keeping room for the one-column gutter.
func paneWidths(total int) (listW, detailW int) {
	listW = max(40, total*43/100)
	if listW > total-42 {
		listW = total / 2
	}
	detailW = total - listW - 1
	if detailW < 36 {
		detailW = 36
		listW = total - detailW - 1
	}
	return listW, detailW
}

func (m *productsTUIModel) resize() {
	if m.width == 0 || m.height == 0 || m.loading {
		return
	}

	m.tooSmall = m.width < minTUIWidth || m.height < minTUIHeight
	if m.tooSmall {
		return
	}

	const headerHeight = 3
	footerHeight := 2
	if m.showHelp {
		footerHeight = 7
	}
	m.bodyHeight = max(8, m.height-headerHeight-footerHeight-1)
	m.listPaneWidth, m.detailPaneWidth = paneWidths(m.width)

	innerHeight := max(6, m.bodyHeight-2)
	m.list.SetSize(max(24, m.listPaneWidth-4), innerHeight)
	m.detail.Width = max(24, m.detailPaneWidth-4)
	m.detail.Height = innerHeight
	m.help.Width = m.width - 2
	m.refreshDetail(false)
}

func (m productsTUIModel) headerView() string {
	focus := "list"
	if m.focus == tuiFocusDetail {
		focus = "detail"
	}

	title := tuiHeaderStyle.Render(fmt.Sprintf("flowr tui  |  %d products in catalog", len(m.allProducts)))
	status := tuiMetaStyle.Render(fmt.Sprintf("products: %d visible  |  filters: %s  |  focus: %s",
		m.visibleProducts, m.activeFilterSummary(), focus))
	return lipgloss.NewStyle().Width(m.width).Padding(0, 1).Render(title + "\n" + status)
}

func paneStyle(focused bool) lipgloss.Style {
	if focused {
		return tuiPaneStyle.BorderForeground(tuiAccent)
	}
	return tuiPaneStyle
}

func (m productsTUIModel) bodyView() string {
	left := paneStyle(m.focus == tuiFocusList).
		Width(m.listPaneWidth).
		Height(m.bodyHeight).
		Render(m.list.View())
	right := paneStyle(m.focus == tuiFocusDetail).
		Width(m.detailPaneWidth).
		Height(m.bodyHeight).
		Render(m.detail.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
}

func (m productsTUIModel) footerView() string {
	var hints string
	switch {
	case m.showHelp:
		hints = m.help.FullHelpView(m.keys.FullHelp())
	case m.focus == tuiFocusDetail:
		hints = m.help.ShortHelpView(m.keys.detailHelp())
	default:
		hints = m.help.ShortHelpView(m.keys.ShortHelp())
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(hints)
}

func (m *productsTUIModel) initializeInlineChoices() {
	m.opts = canonicalizeTUIOptions(m.opts)

	feels := countFacet(m.allProducts, func(p catalog.Product) []string { return p.TopFeels })
	activities := countFacet(m.allProducts, func(p catalog.Product) []string { return p.TopActivities })

	m.facets = []tuiFacet{
		{
			name: "sort", binding: m.keys.Sort, choices: filter.SortModes,
			get: func(o filter.Options) string { return canonicalSortMode(o.Sort) },
			set: func(o *filter.Options, v string) { o.Sort = v },
		},
		{
			name: "category", binding: m.keys.Category, choices: buildCategoryChoices(m.opts.Category),
			get: func(o filter.Options) string { return o.Category },
			set: func(o *filter.Options, v string) { o.Category = v },
		},
		{
			name: "region", binding: m.keys.Region, choices: buildCountedChoices(filter.Regions(m.allProducts), m.opts.Region),
			get: func(o filter.Options) string { return o.Region },
			set: func(o *filter.Options, v string) { o.Region = v },
		},
		{
			name: "feel", binding: m.keys.Feel, choices: buildCountedChoices(feels, m.opts.Feel),
			get: func(o filter.Options) string { return o.Feel },
			set: func(o *filter.Options, v string) { o.Feel = v },
		},
		{
			name: "activity", binding: m.keys.Activity, choices: buildCountedChoices(activities, m.opts.Activity),
			get: func(o filter.Options) string { return o.Activity },
			set: func(o *filter.Options, v string) { o.Activity = v },
		},
	}
	m.limitChoices = buildLimitChoices(m.opts.Limit)

	m.syncChoiceIndexesFromOptions()
}

func (m *productsTUIModel) syncChoiceIndexesFromOptions() {
	for i := range m.facets {
		m.facets[i].sync(&m.opts)
	}

	m.limitIndex = indexOfInt(m.limitChoices, m.opts.Limit)
	if m.limitIndex < 0 {
		m.limitIndex = 0
		m.opts.Limit = m.limitChoices[0]
	}
}

func cycle(index, n int) int {
	if n == 0 {
		return 0
	}
	return (index + 1) % n
}

func pickChoice(choices []string, index int) string {
	if index < 0 || index >= len(choices) {
		return ""
	}
	return choices[index]
}

func (m productsTUIModel) activeFilterSummary() string {
	var parts []string
	for _, f := range m.facets {
		if v := f.get(m.opts); v != "" {
			parts = append(parts, f.name+":"+v)
		}
	}
	if m.opts.Query != "" {
		parts = append(parts, "query:"+m.opts.Query)
	}
	if m.opts.Limit > 0 {
		parts = append(parts, fmt.Sprintf("limit:%d", m.opts.Limit))
	}
	if fuzzy := strings.TrimSpace(m.list.FilterValue()); fuzzy != "" {
		parts = append(parts, "fuzzy:"+fuzzy)
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func (m *productsTUIModel) applyCurrentFilters(resetSelection bool) {
	currentID := m.selectedID
	filtered := filter.Apply(m.allProducts, m.opts)
	m.visibleProducts = len(filtered)

	items, starts := buildGroupedListItems(filtered)
	m.groupStarts = starts

	m.list.Title = fmt.Sprintf("Products • %d visible", m.visibleProducts)
	m.list.SetItems(items)

	target := -1
	if !resetSelection && currentID != "" {
		target = findItemIndexByID(items, currentID)
	}
	if target < 0 {
		target = firstProductItemIndex(items)
	}
	if target < 0 && len(items) > 0 {
		target = 0
	}
	if target >= 0 {
		m.list.Select(target)
	}

	m.refreshDetail(true)
}

// selectedProductID is the id of the highlighted product, or "" when a
// header or nothing is selected.
func (m productsTUIModel) selectedProductID() string {
	if item, ok := m.list.SelectedItem().(tuiProductItem); ok {
		return item.product.ID
	}
	return ""
}

// requestPotency starts an estimate for the highlighted product unless one is
// cached or already running.
func (m *productsTUIModel) requestPotency() tea.Cmd {
	if m.estimator == nil {
		return nil
	}
	item, ok := m.list.SelectedItem().(tuiProductItem)
	if !ok || item.product.ID == "" {
		return nil
	}
	id := item.product.ID
	if _, done := m.potency[id]; done || m.pending[id] {
		return nil
	}
	m.pending[id] = true
	return estimatePotencyCmd(m.ctx, m.estimator, item.product)
}

func (m *productsTUIModel) refreshDetail(resetScroll bool) {
	var content string
	nextID := ""

	if selected := m.list.SelectedItem(); selected != nil {
		switch item := selected.(type) {
		case tuiProductItem:
			content = renderProductDetailContent(item.product, m.potencyLine(item.product.ID), m.detail.Width)
			nextID = stableIDForProduct(item.product, item.title)
		case tuiGroupItem:
			content = m.renderGroupDetail(item)
			nextID = stableIDForGroup(item.name)
		}
	}
	if content == "" {
		content = "No products match the current inline filters.\n\nTry pressing r to reset filters."
	}

	if resetScroll || nextID != m.selectedID {
		m.detail.GotoTop()
	}
	m.selectedID = nextID
	m.detail.SetContent(content)
}

func (m productsTUIModel) potencyLine(productID string) string {
	p, ok := m.potency[productID]
	switch {
	case !ok:
		return tuiMutedStyle.Render("estimating…")
	case p.estimate.Known:
		return tuiValueStyle.Render(p.estimate.Percent()) + tuiMutedStyle.Render(" ("+p.estimate.Source.String()+")")
	case p.unavailable:
		return tuiMutedStyle.Render(stats.Unknown + " (reviews unavailable)")
	default:
		return tuiMutedStyle.Render(stats.Unknown)
	}
}

func (m productsTUIModel) renderGroupDetail(group tuiGroupItem) string {
	preview := m.groupPreviewTitles(group.name, 5)

	lines := []string{
		tuiSectionStyle.Render(fmt.Sprintf("Category %d: %s", group.ordinal, group.name)),
		tuiMetaStyle.Render(fmt.Sprintf("%d products in this category", group.count)),
		"",
		tuiMetaStyle.Render("Jump keys:"),
		"- `]` next category, `[` previous category",
		"- `1..9` jump directly to category number",
	}
	if len(preview) > 0 {
		lines = append(lines, "")
		lines = append(lines, tuiMetaStyle.Render("Preview:"))
		for _, title := range preview {
			lines = append(lines, "• "+title)
		}
	}

	return strings.Join(lines, "\n")
}

func (m productsTUIModel) groupPreviewTitles(group string, limit int) []string {
	out := make([]string, 0, limit)
	for _, item := range m.list.Items() {
		product, ok := item.(tuiProductItem)
		if !ok || product.group != group {
			continue
		}
		out = append(out, product.title)
		if len(out) >= limit {
			break
		}
	}
	return out
}

func (m *productsTUIModel) jumpToSection(index int) {
	if index < 0 || index >= len(m.groupStarts) {
		return
	}

	target := firstProductIndexFrom(m.list.Items(), m.groupStarts[index])
	if target < 0 {
		target = m.groupStarts[index]
	}
	m.list.Select(target)
	m.refreshDetail(true)
}

func (m *productsTUIModel) jumpSection(delta int) {
	if len(m.groupStarts) == 0 {
		return
	}

	current := max(0, m.currentSectionIndex())
	next := current + delta
	if next < 0 {
		next = len(m.groupStarts) - 1
	}
	if next >= len(m.groupStarts) {
		next = 0
	}
	m.jumpToSection(next)
}

func (m productsTUIModel) currentSectionIndex() int {
	if len(m.groupStarts) == 0 {
		return -1
	}
	cursor := m.list.GlobalIndex()
	current := 0
	for i, start := range m.groupStarts {
		if start <= cursor {
			current = i
			continue
		}
		break
	}
	return current
}

// buildGroupedListItems groups products under numbered category headers:
// largest categories first, the Other bucket last.
func buildGroupedListItems(products []catalog.Product) (items []list.Item, starts []int) {
	if len(products) == 0 {
		return nil, nil
	}

	groups := map[string][]catalog.Product{}
	for _, p := range products {
		group := productGroupLabel(p)
		groups[group] = append(groups[group], p)
	}

	type groupMeta struct {
		name  string
		count int
	}

	metas := make([]groupMeta, 0, len(groups))
	for name, members := range groups {
		metas = append(metas, groupMeta{name: name, count: len(members)})
	}
	sort.Slice(metas, func(i, j int) bool {
		iOther := metas[i].name == filter.OtherCategory
		jOther := metas[j].name == filter.OtherCategory
		if iOther != jOther {
			return jOther
		}
		if metas[i].count != metas[j].count {
			return metas[i].count > metas[j].count
		}
		return metas[i].name < metas[j].name
	})

	items = make([]list.Item, 0, len(products)+len(metas))
	starts = make([]int, 0, len(metas))
	for idx, meta := range metas {
		starts = append(starts, len(items))

		items = append(items, tuiGroupItem{
			name:    meta.name,
			count:   meta.count,
			ordinal: idx + 1,
		})
		for _, p := range groups[meta.name] {
			items = append(items, buildTUIProductItem(p, meta.name))
		}
	}

	return items, starts
}

func productGroupLabel(p catalog.Product) string {
	if !filter.IsKnownCategory(p.Category) {
		return filter.OtherCategory
	}
	category := strings.ReplaceAll(strings.TrimSpace(p.Category), " ", "-")
	for _, choice := range filter.CategoryChoices {
		if filter.MatchesCategory(category, choice) {
			return choice
		}
	}
	return display.CategoryLabel(p.Category)
}

func buildTUIProductItem(p catalog.Product, group string) tuiProductItem {
	title := display.ProductTitle(p)

	descParts := []string{}
	if potency := display.PotencyLabel(p); potency != "" {
		descParts = append(descParts, potency)
	}
	if brand := filter.CleanText(p.Brand); brand != "" {
		descParts = append(descParts, brand)
	}
	if tags := display.RegionTags(p); len(tags) > 0 {
		descParts = append(descParts, strings.Join(tags, " "))
	}
	if len(descParts) == 0 {
		descParts = append(descParts, "No label details")
	}

	filterTokens := []string{
		title,
		filter.CleanText(p.Brand),
		p.Category,
		p.StrainType,
		strings.Join(p.RegionTags(), " "),
		strings.Join(p.TopFeels, " "),
		strings.Join(p.TopActivities, " "),
		group,
	}

	return tuiProductItem{
		product:     p,
		group:       group,
		title:       title,
		description: strings.Join(descParts, "  •  "),
		filterValue: strings.ToLower(strings.Join(filterTokens, " ")),
	}
}

func renderProductDetailContent(p catalog.Product, potencyLine string, width int) string {
	maxWidth := max(24, width)

	lines := []string{
		tuiTitleStyle.Render(wrapText(display.ProductTitle(p), maxWidth)),
	}

	metaBits := []string{}
	if strain := strings.TrimSpace(p.StrainType); strain != "" {
		metaBits = append(metaBits, tuiStrainStyle.Render(strings.ToUpper(strain)))
	}
	metaBits = append(metaBits, "category: "+display.CategoryLabel(p.Category))
	lines = append(lines, tuiMetaStyle.Render(wrapText(strings.Join(metaBits, "  |  "), maxWidth)))

	lines = append(lines, "")
	label := display.PotencyLabel(p)
	if label == "" {
		label = stats.Unknown
	}
	lines = append(lines, fmt.Sprintf("%s %s", tuiMetaStyle.Render("Label:"), tuiValueStyle.Render(label)))
	lines = append(lines, fmt.Sprintf("%s %s", tuiMetaStyle.Render("Avg THC:"), potencyLine))
	lines = append(lines, "")

	if brand := filter.CleanText(p.Brand); brand != "" {
		lines = append(lines, fmt.Sprintf("%s %s", tuiMetaStyle.Render("Brand:"), brand))
	}
	if regions := p.RegionTags(); len(regions) > 0 {
		names := make([]string, 0, len(regions))
		for _, r := range regions {
			names = append(names, region.Normalize(r))
		}
		lines = append(lines, fmt.Sprintf("%s %s", tuiMetaStyle.Render("Regions:"), wrapText(strings.Join(names, ", "), maxWidth)))
	}
	if len(p.TopFeels) > 0 {
		lines = append(lines, fmt.Sprintf("%s %s", tuiMetaStyle.Render("Top feels:"), wrapText(strings.Join(p.TopFeels, ", "), maxWidth)))
	}
	if len(p.TopActivities) > 0 {
		lines = append(lines, fmt.Sprintf("%s %s", tuiMetaStyle.Render("Top activities:"), wrapText(strings.Join(p.TopActivities, ", "), maxWidth)))
	}

	if p.ID != "" {
		lines = append(lines, "")
		lines = append(lines, tuiMutedStyle.Render("flowr product "+p.ID))
	}

	return strings.Join(lines, "\n")
}

func wrapText(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	if width < 12 {
		width = 12
	}

	line := words[0]
	lines := make([]string, 0, len(words)/6+1)
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func canonicalizeTUIOptions(opts filter.Options) filter.Options {
	opts.Sort = canonicalSortMode(opts.Sort)
	opts.Category = strings.TrimSpace(opts.Category)
	if opts.Region != "" {
		opts.Region = region.Normalize(opts.Region)
	}
	opts.Feel = strings.TrimSpace(opts.Feel)
	opts.Activity = strings.TrimSpace(opts.Activity)
	opts.Query = strings.TrimSpace(opts.Query)
	return opts
}

func canonicalSortMode(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "name", "alpha", "az":
		return "name"
	case "brand":
		return "brand"
	case "potency", "thc", "strength":
		return "potency"
	default:
		return ""
	}
}

func buildCategoryChoices(current string) []string {
	values := append([]string{""}, filter.CategoryChoices...)
	if current != "" && indexOfStringFold(values, current) < 0 {
		values = append(values, current)
	}
	return values
}

func countFacet(products []catalog.Product, field func(catalog.Product) []string) map[string]int {
	counts := map[string]int{}
	for _, p := range products {
		seen := map[string]bool{}
		for _, v := range field(p) {
			clean := strings.ToLower(strings.TrimSpace(v))
			if clean == "" || seen[clean] {
				continue
			}
			seen[clean] = true
			counts[clean]++
		}
	}
	return counts
}

// buildCountedChoices orders facet values by descending count, keeps the
// current value even when no product carries it and prepends the unset choice.
func buildCountedChoices(counts map[string]int, current string) []string {
	values := make([]string, 0, len(counts)+1)
	for value := range counts {
		values = append(values, value)
	}
	if current != "" && indexOfStringFold(values, current) < 0 {
		values = append(values, current)
	}
	sort.SliceStable(values, func(i, j int) bool {
		left, right := counts[values[i]], counts[values[j]]
		if left != right {
			return left > right
		}
		return strings.ToLower(values[i]) < strings.ToLower(values[j])
	})
	return append([]string{""}, values...)
}

func buildLimitChoices(current int) []int {
	values := []int{0, 10, 25, 50, 100}
	if current > 0 && indexOfInt(values, current) < 0 {
		values = append(values, current)
		sort.Ints(values)
	}
	return values
}

func indexOfStringFold(values []string, target string) int {
	for i, value := range values {
		if strings.EqualFold(value, target) {
			return i
		}
	}
	return -1
}

func indexOfInt(values []int, target int) int {
	for i, value := range values {
		if value == target {
			return i
		}
	}
	return -1
}

func findItemIndexByID(items []list.Item, stableID string) int {
	for i, item := range items {
		if stableIDForItem(item) == stableID {
			return i
		}
	}
	return -1
}

func firstProductItemIndex(items []list.Item) int {
	return firstProductIndexFrom(items, 0)
}

func firstProductIndexFrom(items []list.Item, start int) int {
	for i := start; i < len(items); i++ {
		if _, ok := items[i].(tuiProductItem); ok {
			return i
		}
	}
	return -1
}

func stableIDForItem(item list.Item) string {
	switch value := item.(type) {
	case tuiProductItem:
		return stableIDForProduct(value.product, value.title)
	case tuiGroupItem:
		return stableIDForGroup(value.name)
	default:
		return ""
	}
}

func stableIDForProduct(p catalog.Product, fallbackTitle string) string {
	if id := strings.TrimSpace(p.ID); id != "" {
		return "product:" + id
	}
	if fallbackTitle != "" {
		return "product:title:" + strings.ToLower(strings.TrimSpace(fallbackTitle))
	}
	return "product:unknown"
}

func stableIDForGroup(group string) string {
	return "group:" + strings.ToLower(strings.TrimSpace(group))
}
