package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/quantfold/odte/internal/config"
	"github.com/quantfold/odte/internal/core"
	"github.com/quantfold/odte/internal/marketdata"
)

var (
	runNow = time.Date(2026, 8, 28, 13, 0, 0, 0, time.UTC)
	expiry = time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
)

type stubProvider struct {
	snap    core.MarketSnapshot
	chain   core.OptionChain
	snapErr error
}

func (s *stubProvider) Snapshot(context.Context) (core.MarketSnapshot, error) {
	return s.snap, s.snapErr
}

func (s *stubProvider) Chain(context.Context) (core.OptionChain, error) {
	return s.chain, nil
}

func bullishProvider() *stubProvider {
	return &stubProvider{
		snap: core.MarketSnapshot{
			Timestamp:  runNow.Add(-time.Minute),
			Underlying: "SPX",
			Price:      4500,
			VIX:        15,
			Indicators: &core.IndicatorSet{
				RSI:        55,
				MACDLine:   5.2,
				MACDSignal: 3.1,
				SMA20:      4460,
				SMA50:      4420,
				BollUpper:  4550,
				BollMiddle: 4460,
				BollLower:  4370,
			},
			VolumeRatio: 1.5,
		},
		chain: core.OptionChain{
			Underlying: "SPX",
			Quotes: []core.OptionQuote{
				{Strike: 4450, Expiry: expiry, Type: core.Put, Bid: 4.90, Ask: 5.10, ImpliedVol: 0.21},
				{Strike: 4440, Expiry: expiry, Type: core.Put, Bid: 1.40, Ask: 1.60, ImpliedVol: 0.21},
			},
		},
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.Risk.MaxRiskPerTrade = 5000
	cfg.Account.StatePath = filepath.Join(dir, "account.json")
	cfg.Storage.Path = filepath.Join(dir, "tradelog")
	return cfg
}

func TestRun_ApprovedTradePersists(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("building app: %v", err)
	}
	a.SetProvider(bullishProvider())

	d, err := a.Run(context.Background(), runNow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if d.Outcome != core.OutcomeApproved {
		t.Fatalf("expected approved, got %s (%s: %s)", d.Outcome, d.Reason, d.Message)
	}
	if d.Contracts != 3 {
		t.Errorf("expected 3 contracts, got %d", d.Contracts)
	}

	logPath := filepath.Join(cfg.Storage.Path, "decisions", "2026-08-28.json")
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("trade log not written: %v", err)
	}
	var recs []core.DailyTradeLog
	if err := json.Unmarshal(data, &recs); err != nil {
		t.Fatalf("parsing trade log: %v", err)
	}
	if len(recs) != 1 || recs[0].Outcome != core.OutcomeApproved {
		t.Errorf("unexpected trade log contents: %+v", recs)
	}

	state, err := os.ReadFile(cfg.Account.StatePath)
	if err != nil {
		t.Fatalf("account state not written: %v", err)
	}
	if want := `"trades_today": 1`; !strings.Contains(string(state), want) {
		t.Errorf("account state should show the consumed trade slot:\n%s", state)
	}
}

func TestRun_DataUnavailableSitsOut(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("building app: %v", err)
	}
	a.SetProvider(&stubProvider{snapErr: core.ErrDataUnavailable})

	d, err := a.Run(context.Background(), runNow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if d.Outcome != core.OutcomeNoTrade {
		t.Errorf("expected no trade, got %s", d.Outcome)
	}
	if _, err := os.Stat(cfg.Account.StatePath); !os.IsNotExist(err) {
		t.Error("no-trade runs must not write account state")
	}
}

func TestRun_WebhookDelivery(t *testing.T) {
	var got []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		got = buf
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.Notifiers = map[string]config.NotifierConfig{
		"webhook": {Enabled: true, URL: srv.URL},
	}
	a, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("building app: %v", err)
	}
	a.SetProvider(bullishProvider())

	if _, err := a.Run(context.Background(), runNow); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(got) == 0 {
		t.Fatal("webhook never called")
	}
	var payload map[string]any
	if err := json.Unmarshal(got, &payload); err != nil {
		t.Fatalf("parsing webhook payload: %v", err)
	}
	if payload["type"] != "trade_decision" {
		t.Errorf("unexpected payload type: %v", payload["type"])
	}
}

func TestNew_UnknownNotifier(t *testing.T) {
	cfg := testConfig(t)
	cfg.Notifiers = map[string]config.NotifierConfig{
		"pager": {Enabled: true},
	}

	if _, err := New(cfg, nil); err == nil {
		t.Error("expected error for unknown notifier")
	}
}

func TestNew_NotifierMissingParams(t *testing.T) {
	cfg := testConfig(t)
	cfg.Notifiers = map[string]config.NotifierConfig{
		"telegram": {Enabled: true}, // no bot_token
	}

	if _, err := New(cfg, nil); err == nil {
		t.Error("expected init error for telegram without bot_token")
	}
}

func TestNew_DisabledNotifierSkipped(t *testing.T) {
	cfg := testConfig(t)
	cfg.Notifiers = map[string]config.NotifierConfig{
		"telegram": {Enabled: false},
	}

	if _, err := New(cfg, nil); err != nil {
		t.Errorf("disabled notifier should be skipped, got %v", err)
	}
}

func TestSetProvider(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("building app: %v", err)
	}

	var _ marketdata.Provider = bullishProvider()
	a.SetProvider(bullishProvider())
}
