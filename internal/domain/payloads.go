package domain

// InterviewPrompt es el payload de un mensaje interview_question.
type InterviewPrompt struct {
	Question string            `json:"question"`
	Options  []InterviewOption `json:"options"`
	Progress int               `json:"progress"`
}

// InterviewOption es una opción seleccionable de una pregunta guiada.
type InterviewOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// MarketSnapshot es el payload de un mensaje market_analysis.
type MarketSnapshot struct {
	Indices   []IndexQuote    `json:"indices"`
	Sectors   []SectorChange  `json:"sectors"`
	Sentiment MarketSentiment `json:"sentiment"`
	TopMovers []Mover         `json:"top_movers"`
}

type IndexQuote struct {
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Change float64 `json:"change"`
}

type SectorChange struct {
	Name   string  `json:"name"`
	Change float64 `json:"change"`
}

type MarketSentiment struct {
	Score int    `json:"score"`
	Text  string `json:"text"`
}

type Mover struct {
	Symbol string  `json:"symbol"`
	Change float64 `json:"change"`
}

// RecommendationSet es el payload de un mensaje stock_recommendation.
type RecommendationSet struct {
	Summary         string           `json:"summary"`
	Recommendations []Recommendation `json:"recommendations"`
}

type Recommendation struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Reason      string `json:"reason"`
	MatchReason string `json:"match_reason"`
	RiskLevel   string `json:"risk_level"`
	Type        string `json:"type"`
	Source      string `json:"source"`
}

// StockResearch es la forma que el backend publica para stock-research.
// El cliente la trata como payload opaco; el renderer la decodifica
// campo a campo y omite lo que no reconoce.
type StockResearch struct {
	Profile    CompanyProfile `json:"profile"`
	Financials []FinancialRow `json:"financials"`
	Ratings    AnalystRatings `json:"ratings"`
	News       []NewsItem     `json:"news"`
}

type CompanyProfile struct {
	Name          string  `json:"name"`
	Industry      string  `json:"industry"`
	Sector        string  `json:"sector"`
	Description   string  `json:"description"`
	MarketCap     float64 `json:"market_cap"`
	PERatio       float64 `json:"pe_ratio"`
	DividendYield float64 `json:"dividend_yield"`
}

type FinancialRow struct {
	Date     string  `json:"date"`
	Revenue  float64 `json:"revenue"`
	Earnings float64 `json:"earnings"`
}

type AnalystRatings struct {
	Consensus   string  `json:"consensus"`
	TargetPrice float64 `json:"target_price"`
}

type NewsItem struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Publisher string `json:"publisher"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// TradeSetup es la forma que el backend publica para trade-analysis.
type TradeSetup struct {
	Symbol       string       `json:"symbol"`
	CurrentPrice float64      `json:"current_price"`
	Indicators   Indicators   `json:"indicators"`
	Levels       PriceLevels  `json:"levels"`
	Signals      []string     `json:"signals"`
	Verdict      string       `json:"verdict"`
	ChartData    []PricePoint `json:"chart_data"`
}

type Indicators struct {
	RSI    float64 `json:"rsi"`
	MACD   float64 `json:"macd"`
	SMA50  float64 `json:"sma_50"`
	SMA200 float64 `json:"sma_200"`
}

type PriceLevels struct {
	Support    float64 `json:"support"`
	Resistance float64 `json:"resistance"`
}

type PricePoint struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}
