// Package tui is the interactive terminal front end for a blind trading game.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/rustyeddy/blindtrader/game"
	"github.com/rustyeddy/blindtrader/indicators"
	"github.com/rustyeddy/blindtrader/internal/format"
	"github.com/rustyeddy/blindtrader/profile"
	"github.com/rustyeddy/blindtrader/sim"
)

type screen int

const (
	screenTrading screen = iota
	screenAnalysis
	screenGameOver
)

const (
	defaultChartWidth = 60
	chartHeight       = 10
	maxListedTrades   = 8
	panelChrome       = 4
	trendPeriod       = 20
	emaPeriod         = 10
)

type Option func(*Model)

// WithProfileStore records the finished game into the player's profile.
func WithProfileStore(st profile.Store) Option {
	return func(m *Model) { m.store = st }
}

// WithGameOver registers a hook run once when the last round is scored,
// typically to post a leaderboard entry.
func WithGameOver(fn func(game.Summary) error) Option {
	return func(m *Model) { m.onGameOver = fn }
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.log = l
		}
	}
}

// Model is the bubbletea model for a whole game.
type Model struct {
	ctx    context.Context
	game   *game.Game
	bridge *Bridge

	keys keyMap
	help help.Model

	screen  screen
	frame   sim.Frame
	started bool
	trades  []sim.TradeRecord
	last    game.RoundResult

	summary    game.Summary
	percentile float64
	ranking    int
	update     *profile.Update

	store      profile.Store
	onGameOver func(game.Summary) error
	log        *zap.Logger
	err        error

	width  int
	height int
}

// New builds the model. The game's session must report to bridge.Observer().
func New(ctx context.Context, g *game.Game, bridge *Bridge, opts ...Option) *Model {
	m := &Model{
		ctx:    ctx,
		game:   g,
		bridge: bridge,
		keys:   defaultKeys(),
		help:   help.New(),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.keys.forScreen(m.screen)
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.startRound(), m.bridge.listen())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case frameMsg:
		m.frame = sim.Frame(msg)
		m.started = true
		return m, m.bridge.listen()

	case tradeMsg:
		m.trades = append(m.trades, sim.TradeRecord(msg))
		return m, m.bridge.listen()

	case resultMsg:
		m.last = game.RoundResult(msg)
		m.game.Record(m.last)
		m.setScreen(screenAnalysis)
		return m, m.bridge.listen()

	case errMsg:
		m.err = msg.err
		m.log.Error("round failed", zap.Error(msg.err))
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.game.Session().Stop()
		m.bridge.Close()
		return tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		m.game.Session().Toggle()
	case key.Matches(msg, m.keys.Open):
		m.game.Session().Open()
	case key.Matches(msg, m.keys.Close):
		m.game.Session().Close()
	case key.Matches(msg, m.keys.Next):
		if m.game.Next() {
			m.trades = nil
			m.started = false
			m.setScreen(screenTrading)
			return m.startRound()
		}
		m.finishGame()
	}
	return nil
}

func (m *Model) setScreen(sc screen) {
	m.screen = sc
	m.keys.forScreen(sc)
}

func (m *Model) startRound() tea.Cmd {
	g, ctx := m.game, m.ctx
	return func() tea.Msg {
		if err := g.StartRound(ctx); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func (m *Model) finishGame() {
	m.setScreen(screenGameOver)
	m.summary = m.game.Summary()
	ret := m.summary.AggregateReturn() * 100
	m.percentile, m.ranking = game.Percentile(ret)

	if m.store != nil {
		up, err := profile.Record(m.store, m.game.History(), ret)
		if err != nil {
			m.err = err
			m.log.Warn("profile not saved", zap.Error(err))
		} else {
			m.update = &up
		}
	}
	if m.onGameOver != nil {
		if err := m.onGameOver(m.summary); err != nil {
			m.err = err
			m.log.Warn("game over hook failed", zap.Error(err))
		}
	}
	m.log.Info("game over",
		zap.Int("rounds", m.summary.Rounds),
		zap.Float64("total_profit", m.summary.TotalProfit),
		zap.Float64("percentile", m.percentile))
}

func (m *Model) View() string {
	var body string
	switch m.screen {
	case screenAnalysis:
		body = m.analysisView()
	case screenGameOver:
		body = m.gameOverView()
	default:
		body = m.tradingView()
	}

	parts := []string{m.header(), body}
	if m.err != nil {
		parts = append(parts, ErrorStyle.Render("error: "+m.err.Error()))
	}
	parts = append(parts, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) header() string {
	title := TitleStyle.Render("BLIND TRADER")
	if m.screen == screenGameOver {
		return title + LabelStyle.Render("game over")
	}
	return title + LabelStyle.Render(fmt.Sprintf("round %d/%d", m.game.Index()+1, m.game.Len()))
}

func (m *Model) chartWidth() int {
	if m.width > panelChrome {
		return m.width - panelChrome
	}
	return defaultChartWidth
}

func (m *Model) tradingView() string {
	r, ok := m.game.Current()
	if !ok || !m.started {
		return PanelStyle.Render(LabelStyle.Render("loading..."))
	}
	name, ticker := r.Instrument.Display(false)
	f := m.frame

	prices := make([]float64, 0, f.Cursor+1)
	for _, s := range r.Instrument.Series.Window(0, f.Cursor+1) {
		prices = append(prices, s.Price)
	}
	panel := PanelStyle
	if f.Holding {
		panel = HoldingPanelStyle
	}
	chart := panel.Render(Sparkline(prices, m.chartWidth(), chartHeight))

	badge := FlatBadge.Render("FLAT")
	if f.Holding {
		badge = HoldingBadge.Render("HOLDING")
	}
	if f.Significant {
		badge += " " + SignificantStyle.Render("⚡ big move")
	}

	stats := []string{
		HiddenStyle.Render(fmt.Sprintf("%s (%s)", name, ticker)) + "  " + badge,
		field("price", ValueStyle.Render(format.Currency(f.Price, 2))),
		field("equity", signed(f.LiveEquity-f.BaseCapital).Render(format.Currency(f.LiveEquity, 2))),
		field("capital", ValueStyle.Render(format.Currency(f.BaseCapital, 2))),
	}
	if f.Holding {
		stats = append(stats, field("unrealized", signed(f.UnrealizedPct).Render(format.Fraction(f.UnrealizedPct, 2))))
	}
	if tr, ma := indicators.TrendOf(prices, trendPeriod); tr != indicators.Unknown {
		label := fmt.Sprintf("MA(%d)", trendPeriod)
		stats = append(stats, field(label, fmt.Sprintf("%s, price %s", format.Currency(ma, 2), tr)))
	}
	if ema, err := indicators.EMA(prices, emaPeriod); err == nil {
		stats = append(stats, field(fmt.Sprintf("EMA(%d)", emaPeriod), format.Currency(ema, 2)))
	}
	stats = append(stats, field("trades", ValueStyle.Render(fmt.Sprint(len(m.trades)))))
	if n := len(m.trades); n > 0 {
		t := m.trades[n-1]
		stats = append(stats, field("last trade", signed(t.PnLPercent).Render(format.Fraction(t.PnLPercent, 2))))
	}

	return lipgloss.JoinVertical(lipgloss.Left, chart, strings.Join(stats, "\n"))
}

func (m *Model) analysisView() string {
	r := m.last
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", AccentStyle.Render(r.Name), LabelStyle.Render("("+r.Ticker+")"))
	fmt.Fprintf(&b, "%s\n\n", LabelStyle.Render(fmt.Sprintf("%s to %s",
		r.PeriodStart.Format("Jan 2006"), r.PeriodEnd.Format("Jan 2006"))))

	b.WriteString(field("you", signed(r.UserReturnPct).Render(format.Percentage(r.UserReturnPct, 2))) + "\n")
	b.WriteString(field("buy & hold", signed(r.StockReturnPct).Render(format.Percentage(r.StockReturnPct, 2))) + "\n")
	b.WriteString(field("benchmark", signed(r.BenchmarkReturnPct).Render(format.Percentage(r.BenchmarkReturnPct, 2))) + "\n")
	b.WriteString(field("final capital", ValueStyle.Render(format.Currency(r.FinalCapital, 2))) + "\n")
	b.WriteString(field("trades", fmt.Sprintf("%d (%d won)", r.Stats.TradeCount, r.Stats.WinningTrades)) + "\n")
	b.WriteString(field("best / worst", format.Fraction(r.Stats.BestTradePct, 2)+" / "+format.Fraction(r.Stats.WorstTradePct, 2)) + "\n")

	trades := r.Trades
	if len(trades) > maxListedTrades {
		trades = trades[len(trades)-maxListedTrades:]
	}
	for _, t := range trades {
		fmt.Fprintf(&b, "  %4d -> %-4d %s %s\n", t.Start.Index, t.End.Index,
			signed(t.PnLPercent).Render(format.Fraction(t.PnLPercent, 2)),
			LabelStyle.Render(string(t.Reason)))
	}

	b.WriteString("\n")
	if r.BeatMarket() {
		b.WriteString(GainStyle.Render("You beat the market."))
	} else {
		b.WriteString(LossStyle.Render("The market beat you."))
	}
	next := "next round"
	if m.game.Index()+1 >= m.game.Len() {
		next = "final results"
	}
	b.WriteString("\n" + LabelStyle.Render("press n for "+next))
	return PanelStyle.Render(b.String())
}

func (m *Model) gameOverView() string {
	s := m.summary
	var b strings.Builder
	b.WriteString(field("rounds", fmt.Sprint(s.Rounds)) + "\n")
	b.WriteString(field("total profit", signed(s.TotalProfit).Render(format.Currency(s.TotalProfit, 2))) + "\n")
	b.WriteString(field("avg return", signed(s.AverageUserReturnPct).Render(format.Percentage(s.AverageUserReturnPct, 2))) + "\n")
	b.WriteString(field("avg buy & hold", format.Percentage(s.AverageStockReturnPct, 2)) + "\n")
	b.WriteString(field("avg benchmark", format.Percentage(s.AverageBenchmarkReturnPct, 2)) + "\n")
	b.WriteString(field("win rate", fmt.Sprintf("%.1f%% of %d trades", s.WinRatePct, s.TotalTrades)) + "\n")
	b.WriteString(field("best trade", format.Fraction(s.BestTradePct, 2)) + "\n\n")
	fmt.Fprintf(&b, "You beat %s of players. Global rank #%d of 10,000.\n",
		AccentStyle.Render(fmt.Sprintf("%.1f%%", m.percentile)), m.ranking)

	if up := m.update; up != nil {
		p := up.Profile
		rank := p.Rank()
		b.WriteString("\n" + field("rank", AccentStyle.Render(rank.Title)))
		if up.LeveledUp {
			b.WriteString(" " + GainStyle.Render("promoted!"))
		}
		b.WriteString("\n" + field("career profit", format.Currency(p.TotalCareerProfit, 2)) + "\n")
		for _, a := range up.NewAchievements {
			fmt.Fprintf(&b, "%s %s %s\n", a.Icon.Glyph(), ValueStyle.Render(a.Title), LabelStyle.Render(a.Description))
		}
	}
	return PanelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func field(label, value string) string {
	return LabelStyle.Render(fmt.Sprintf("%-14s", label)) + value
}
