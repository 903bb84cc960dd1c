package marketdata

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
	"time"

	"money-copilot/internal/domain"
)

// ErrUnknownSymbol indica que el símbolo no tiene forma de ticker válido.
var ErrUnknownSymbol = errors.New("no data found for symbol")

var symbolPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{0,4}(-[A-Z]{1,4})?(\.[A-Z]{1,2})?$`)

// Provider genera datos de mercado sintéticos y deterministas: el mismo
// símbolo produce siempre la misma serie, lo que hace reproducibles las
// respuestas del backend de desarrollo.
type Provider struct {
	now func() time.Time
}

func NewProvider() *Provider {
	return &Provider{now: func() time.Time { return time.Now().UTC() }}
}

// Válido no significa listado: cualquier ticker bien formado recibe datos
// sintéticos, igual que un backend real respondería para símbolos que
// conoce.
func normalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if !symbolPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return s, nil
}

func seedFor(symbol string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	return h.Sum64()
}

// series genera un paseo aleatorio determinista de cierres diarios.
func series(symbol string, days int, end time.Time) []domain.PricePoint {
	seed := seedFor(symbol)
	price := 20.0 + float64(seed%4800)/10.0
	state := seed

	points := make([]domain.PricePoint, 0, days)
	start := end.AddDate(0, 0, -days+1)
	for i := 0; i < days; i++ {
		state = state*6364136223846793005 + 1442695040888963407
		frac := float64((state>>33)%1000) / 1000.0
		price *= 1 + (frac-0.5)*0.04
		if price < 1 {
			price = 1
		}
		points = append(points, domain.PricePoint{
			Date:  start.AddDate(0, 0, i).Format("2006-01-02"),
			Close: round2(price),
		})
	}
	return points
}

// Snapshot arma el análisis de mercado amplio: índices, sectores,
// sentimiento y top movers. Estable dentro del mismo día.
func (p *Provider) Snapshot() domain.MarketSnapshot {
	day := p.now().Format("2006-01-02")

	indices := []struct{ name, ticker string }{
		{"S&P 500", "SPY"},
		{"NASDAQ", "QQQ"},
		{"Dow Jones", "DIA"},
		{"Bitcoin", "BTC-USD"},
	}
	quotes := make([]domain.IndexQuote, 0, len(indices))
	for _, idx := range indices {
		price, change := dailyQuote(idx.ticker, day)
		quotes = append(quotes, domain.IndexQuote{Name: idx.name, Price: price, Change: change})
	}

	sectors := []struct{ name, ticker string }{
		{"Tech", "XLK"},
		{"Finance", "XLF"},
		{"Healthcare", "XLV"},
		{"Energy", "XLE"},
		{"Consumer", "XLY"},
	}
	sectorChanges := make([]domain.SectorChange, 0, len(sectors))
	for _, s := range sectors {
		_, change := dailyQuote(s.ticker, day)
		sectorChanges = append(sectorChanges, domain.SectorChange{Name: s.name, Change: change})
	}

	score := int(40 + seedFor("sentiment:"+day)%31)
	sentiment := domain.MarketSentiment{
		Score: score,
		Text:  sentimentText(score),
	}

	movers := []domain.Mover{}
	for _, t := range []string{"NVDA", "TSLA", "AAPL"} {
		_, change := dailyQuote(t, day)
		movers = append(movers, domain.Mover{Symbol: t, Change: change})
	}

	return domain.MarketSnapshot{
		Indices:   quotes,
		Sectors:   sectorChanges,
		Sentiment: sentiment,
		TopMovers: movers,
	}
}

func sentimentText(score int) string {
	switch {
	case score >= 60:
		return "Markets lean greedy: strong tech earnings outweigh rate worries."
	case score <= 45:
		return "Caution prevails: inflation prints keep buyers on the sidelines."
	default:
		return "Market is neutral awaiting further data."
	}
}

func dailyQuote(ticker, day string) (price, change float64) {
	seed := seedFor(ticker + ":" + day)
	price = 50.0 + float64(seed%9500)/10.0
	change = float64(int64(seed>>8%500)-250) / 100.0
	return round2(price), round2(change)
}

// Research produce el informe profundo de un símbolo: perfil, financieros,
// ratings y titulares.
func (p *Provider) Research(symbol string) (domain.StockResearch, error) {
	sym, err := normalizeSymbol(symbol)
	if err != nil {
		return domain.StockResearch{}, err
	}
	seed := seedFor(sym)

	sectors := []string{"Technology", "Financial Services", "Healthcare", "Energy", "Consumer Cyclical"}
	sector := sectors[seed%uint64(len(sectors))]

	revenueBase := 1e9 * (1 + float64(seed%90))
	financials := make([]domain.FinancialRow, 0, 4)
	end := p.now()
	for q := 0; q < 4; q++ {
		date := end.AddDate(0, -3*q, 0).Format("2006-01-02")
		growth := 1 + float64(q)*0.03
		financials = append(financials, domain.FinancialRow{
			Date:     date,
			Revenue:  math.Round(revenueBase / growth),
			Earnings: math.Round(revenueBase / growth * 0.18),
		})
	}

	consensus := []string{"buy", "hold", "underperform"}[seed>>4%3]
	last := series(sym, 30, end)
	current := last[len(last)-1].Close

	return domain.StockResearch{
		Profile: domain.CompanyProfile{
			Name:          companyName(sym),
			Industry:      sector,
			Sector:        sector,
			Description:   fmt.Sprintf("%s operates in the %s sector with a diversified global footprint.", companyName(sym), strings.ToLower(sector)),
			MarketCap:     math.Round(current * float64(10000000+seed%90000000)),
			PERatio:       round2(8 + float64(seed%400)/10.0),
			DividendYield: round2(float64(seed%350) / 10000.0),
		},
		Financials: financials,
		Ratings: domain.AnalystRatings{
			Consensus:   consensus,
			TargetPrice: round2(current * 1.12),
		},
		News: researchNews(sym),
	}, nil
}

func companyName(symbol string) string {
	known := map[string]string{
		"AAPL":    "Apple Inc.",
		"MSFT":    "Microsoft Corporation",
		"NVDA":    "NVIDIA Corporation",
		"TSLA":    "Tesla, Inc.",
		"JPM":     "JPMorgan Chase & Co.",
		"VOO":     "Vanguard S&P 500 ETF",
		"BTC-USD": "Bitcoin USD",
	}
	if name, ok := known[symbol]; ok {
		return name
	}
	return symbol + " Holdings"
}

func researchNews(symbol string) []domain.NewsItem {
	templates := []struct{ title, publisher string }{
		{"%s beats quarterly expectations on strong demand", "MarketWatch"},
		{"Analysts revisit %s price targets after guidance update", "Reuters"},
		{"What %s's latest filing says about its growth runway", "Bloomberg"},
	}
	items := make([]domain.NewsItem, 0, len(templates))
	for _, tpl := range templates {
		items = append(items, domain.NewsItem{
			Title:     fmt.Sprintf(tpl.title, symbol),
			Link:      fmt.Sprintf("https://news.example.com/%s", strings.ToLower(symbol)),
			Publisher: tpl.publisher,
		})
	}
	return items
}

// Analysis calcula el setup técnico: indicadores, niveles, señales y
// veredicto, con la serie de cierre para graficar.
func (p *Provider) Analysis(symbol string) (domain.TradeSetup, error) {
	sym, err := normalizeSymbol(symbol)
	if err != nil {
		return domain.TradeSetup{}, err
	}

	points := series(sym, 180, p.now())
	closes := make([]float64, len(points))
	for i, pt := range points {
		closes[i] = pt.Close
	}

	price := closes[len(closes)-1]
	sma50 := sma(closes, 50)
	sma200 := sma(closes, 200)
	rsiVal := rsi(closes, 14)
	macdVal, signalVal := macd(closes)

	var signals []string
	score := 0

	switch {
	case rsiVal > 70:
		signals = append(signals, "RSI is Overbought (Bearish)")
		score--
	case rsiVal < 30:
		signals = append(signals, "RSI is Oversold (Bullish)")
		score++
	default:
		signals = append(signals, "RSI is Neutral")
	}

	if macdVal > signalVal {
		signals = append(signals, "MACD above Signal Line (Bullish)")
		score++
	} else {
		signals = append(signals, "MACD below Signal Line (Bearish)")
		score--
	}

	if price > sma50 {
		signals = append(signals, "Price above 50 SMA (Bullish Trend)")
		score++
	} else {
		signals = append(signals, "Price below 50 SMA (Bearish Trend)")
		score--
	}

	if sma50 > sma200 {
		signals = append(signals, "Golden Cross (Long-term Bullish)")
		score++
	} else if sma50 < sma200 {
		signals = append(signals, "Death Cross (Long-term Bearish)")
		score--
	}

	verdict := "Neutral"
	switch {
	case score >= 2:
		verdict = "Strong Buy"
	case score == 1:
		verdict = "Buy"
	case score == -1:
		verdict = "Sell"
	case score <= -2:
		verdict = "Strong Sell"
	}

	last30 := closes[len(closes)-30:]
	support, resistance := last30[0], last30[0]
	for _, c := range last30 {
		if c < support {
			support = c
		}
		if c > resistance {
			resistance = c
		}
	}

	return domain.TradeSetup{
		Symbol:       sym,
		CurrentPrice: round2(price),
		Indicators: domain.Indicators{
			RSI:    round2(rsiVal),
			MACD:   round2(macdVal),
			SMA50:  round2(sma50),
			SMA200: round2(sma200),
		},
		Levels: domain.PriceLevels{
			Support:    round2(support * 0.99),
			Resistance: round2(resistance * 1.01),
		},
		Signals:   signals,
		Verdict:   verdict,
		ChartData: points[len(points)-100:],
	}, nil
}

// Recommendations arma el set curado según el perfil: primero los picks
// del sector preferido, después el resto hasta cinco.
func (p *Provider) Recommendations(profile domain.InvestorProfile) domain.RecommendationSet {
	catalog := []struct {
		rec    domain.Recommendation
		sector string
	}{
		{domain.Recommendation{Symbol: "NVDA", Name: "NVIDIA Corp", Reason: "Dominant AI chip market share.", MatchReason: "Matches your appetite for growth", RiskLevel: "High", Type: "Stock", Source: "Analyst Consensus"}, "Tech"},
		{domain.Recommendation{Symbol: "MSFT", Name: "Microsoft", Reason: "Strong cloud growth with Azure.", MatchReason: "Stable growth for the long term", RiskLevel: "Medium", Type: "Stock", Source: "MarketWatch"}, "Tech"},
		{domain.Recommendation{Symbol: "JPM", Name: "JPMorgan Chase", Reason: "Top banking pick for stability.", MatchReason: "Income and stability", RiskLevel: "Medium", Type: "Stock", Source: "CNBC"}, "Finance"},
		{domain.Recommendation{Symbol: "UNH", Name: "UnitedHealth Group", Reason: "Defensive healthcare compounder.", MatchReason: "Resilient in downturns", RiskLevel: "Low", Type: "Stock", Source: "Morningstar"}, "Healthcare"},
		{domain.Recommendation{Symbol: "XOM", Name: "Exxon Mobil", Reason: "Cash-rich energy major.", MatchReason: "Dividend income exposure", RiskLevel: "Medium", Type: "Stock", Source: "Barron's"}, "Energy"},
		{domain.Recommendation{Symbol: "PG", Name: "Procter & Gamble", Reason: "Staples demand holds in any cycle.", MatchReason: "Stability and safety", RiskLevel: "Low", Type: "Stock", Source: "WSJ"}, "Consumer"},
		{domain.Recommendation{Symbol: "BTC-USD", Name: "Bitcoin", Reason: "Institutional adoption increasing.", MatchReason: "High risk/reward asset", RiskLevel: "Very High", Type: "Crypto", Source: "CoinDesk"}, "Tech"},
		{domain.Recommendation{Symbol: "VOO", Name: "Vanguard S&P 500", Reason: "Safe broad market exposure.", MatchReason: "Diversified foundation", RiskLevel: "Low", Type: "ETF", Source: "Vanguard"}, "Finance"},
	}

	preferred := make(map[string]bool)
	for _, s := range profile.PreferredSectors {
		preferred[s] = true
	}

	picks := make([]domain.Recommendation, 0, 5)
	for _, entry := range catalog {
		if preferred[entry.sector] {
			picks = append(picks, entry.rec)
		}
	}
	for _, entry := range catalog {
		if len(picks) >= 5 {
			break
		}
		if !preferred[entry.sector] {
			picks = append(picks, entry.rec)
		}
	}
	if len(picks) > 5 {
		picks = picks[:5]
	}

	risk := profile.RiskTolerance
	if risk == "" {
		risk = "Medium"
	}
	return domain.RecommendationSet{
		Summary: fmt.Sprintf(
			"We've curated a mix of assets tailored to your %s risk profile, weighted toward %s.",
			risk, strings.Join(profile.PreferredSectors, ", "),
		),
		Recommendations: picks,
	}
}

func sma(values []float64, period int) float64 {
	if period > len(values) {
		period = len(values)
	}
	sum := 0.0
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period)
}

func ema(values []float64, period int) []float64 {
	k := 2.0 / (float64(period) + 1)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = values[i]*k + out[i-1]*(1-k)
	}
	return out
}

func macd(values []float64) (macdLine, signalLine float64) {
	ema12 := ema(values, 12)
	ema26 := ema(values, 26)
	diffs := make([]float64, len(values))
	for i := range values {
		diffs[i] = ema12[i] - ema26[i]
	}
	signal := ema(diffs, 9)
	return diffs[len(diffs)-1], signal[len(signal)-1]
}

func rsi(values []float64, period int) float64 {
	if len(values) < period+1 {
		return 50
	}
	var gains, losses float64
	for i := len(values) - period; i < len(values); i++ {
		delta := values[i] - values[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}
	if losses == 0 {
		return 100
	}
	rs := gains / losses
	return 100 - 100/(1+rs)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
