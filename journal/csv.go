package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// CSVJournal writes trades and equity to two CSV files. Session summaries
// are appended to the trades file's companion "<trades>.sessions" file.
type CSVJournal struct {
	trades   *csv.Writer
	equity   *csv.Writer
	sessions *csv.Writer
	files    []*os.File
}

var (
	tradesHeader   = []string{"trade_id", "session_id", "instrument", "entry_index", "exit_index", "entry_price", "exit_price", "open_time", "close_time", "pnl_pct", "capital_before", "capital_after", "reason"}
	equityHeader   = []string{"session_id", "cursor", "time", "price", "balance", "equity", "holding"}
	sessionsHeader = []string{"session_id", "instrument", "ticker", "created", "initial_capital", "final_capital", "trades", "wins", "best_pct", "worst_pct"}
)

func NewCSV(tradesPath, equityPath string) (*CSVJournal, error) {
	j := &CSVJournal{}

	var err error
	if j.trades, err = j.create(tradesPath, tradesHeader); err != nil {
		return nil, err
	}
	if j.equity, err = j.create(equityPath, equityHeader); err != nil {
		return nil, err
	}
	if j.sessions, err = j.create(tradesPath+".sessions", sessionsHeader); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *CSVJournal) create(path string, header []string) (*csv.Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		j.closeFiles()
		return nil, err
	}
	j.files = append(j.files, f)

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		j.closeFiles()
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		j.closeFiles()
		return nil, err
	}
	return w, nil
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	return write(j.trades, []string{
		t.TradeID,
		t.SessionID,
		t.Instrument,
		strconv.Itoa(t.EntryIndex),
		strconv.Itoa(t.ExitIndex),
		f(t.EntryPrice),
		f(t.ExitPrice),
		t.OpenTime.Format(time.RFC3339),
		t.CloseTime.Format(time.RFC3339),
		f(t.PnLPercent),
		f(t.CapitalBefore),
		f(t.CapitalAfter),
		t.Reason,
	})
}

func (j *CSVJournal) RecordEquity(e EquitySnapshot) error {
	return write(j.equity, []string{
		e.SessionID,
		strconv.Itoa(e.Cursor),
		e.Time.Format(time.RFC3339),
		f(e.Price),
		f(e.Balance),
		f(e.Equity),
		strconv.FormatBool(e.Holding),
	})
}

// RecordSession writes infinities as "-Inf"/"+Inf", which strconv parses back.
func (j *CSVJournal) RecordSession(s SessionRecord) error {
	return write(j.sessions, []string{
		s.SessionID,
		s.Instrument,
		s.Ticker,
		s.Created.Format(time.RFC3339),
		f(s.InitialCapital),
		f(s.FinalCapital),
		strconv.Itoa(s.Trades),
		strconv.Itoa(s.Wins),
		f(s.BestPct),
		f(s.WorstPct),
	})
}

func (j *CSVJournal) Close() error {
	for _, w := range []*csv.Writer{j.trades, j.equity, j.sessions} {
		w.Flush()
		if err := w.Error(); err != nil {
			j.closeFiles()
			return err
		}
	}
	return j.closeFiles()
}

func (j *CSVJournal) closeFiles() error {
	var first error
	for _, fh := range j.files {
		if err := fh.Close(); err != nil && first == nil {
			first = err
		}
	}
	j.files = nil
	return first
}

func write(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
