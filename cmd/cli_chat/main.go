package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"money-copilot/internal/chat"
	"money-copilot/internal/config"
	"money-copilot/internal/domain"
	"money-copilot/internal/gateway"
)

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	gw := gateway.NewHTTPClient(cfg.APIBaseURL, nil, logger)
	msgLog := chat.NewMessageLog()
	sessions := chat.NewSessionManager(gw, cfg.ChatSessionID)
	ctrl := chat.NewController(gw, msgLog, sessions, logger)

	fmt.Println("===== AI Trading Assistant =====")
	printHelp()

	rendered := 0
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		input := strings.TrimSpace(line)

		switch input {
		case "":
			continue
		case "/quit", "/exit":
			return
		case "/help":
			printHelp()
			continue
		case "/recommend":
			ctrl.HandleFeature(ctx, chat.FeatureRecommendations)
		case "/market":
			ctrl.HandleFeature(ctx, chat.FeatureMarketAnalysis)
		case "/research":
			ctrl.HandleFeature(ctx, chat.FeatureStockResearch)
		case "/trade":
			ctrl.HandleFeature(ctx, chat.FeatureTradeAnalysis)
		default:
			ctrl.HandleInput(ctx, resolveOption(ctrl, input))
		}

		rendered = renderNew(msgLog, rendered)
	}
}

func printHelp() {
	fmt.Println("Commands: /recommend (stock recommendations), /market (market analysis),")
	fmt.Println("          /research (stock research), /trade (trade analysis), /help, /quit")
	fmt.Println("Anything else is sent to the assistant as chat.")
}

// resolveOption traduce un número a la opción de la pregunta vigente, para
// poder contestar el cuestionario tecleando "2" en vez del valor literal.
func resolveOption(ctrl *chat.Controller, input string) string {
	status := ctrl.Status()
	if status.Mode != chat.ModeInterview {
		return input
	}
	idx, err := strconv.Atoi(input)
	if err != nil {
		return input
	}
	question := domain.InterviewQuestions[status.Step-1]
	if idx < 1 || idx > len(question.Options) {
		return input
	}
	return question.Options[idx-1].Value
}

// renderNew imprime las entradas del log que aún no se mostraron y
// devuelve el nuevo offset.
func renderNew(msgLog *chat.MessageLog, rendered int) int {
	all := msgLog.All()
	if rendered > len(all) {
		rendered = len(all)
	}
	for _, msg := range all[rendered:] {
		printMessage(msg)
	}
	return len(all)
}

func printMessage(msg domain.Message) {
	prefix := "assistant"
	if msg.Role == domain.RoleUser {
		prefix = "you"
	}

	switch msg.Kind {
	case domain.KindInterviewQuestion:
		if prompt, ok := msg.Data.(domain.InterviewPrompt); ok {
			fmt.Printf("[%s] (%d/%d) %s\n", prefix, prompt.Progress, len(domain.InterviewQuestions), prompt.Question)
			for i, opt := range prompt.Options {
				fmt.Printf("    [%d] %s\n", i+1, opt.Label)
			}
			return
		}
	case domain.KindMarketAnalysis:
		if snap, ok := msg.Data.(domain.MarketSnapshot); ok {
			printSnapshot(prefix, snap)
			return
		}
	case domain.KindStockRecommendation:
		if set, ok := msg.Data.(domain.RecommendationSet); ok {
			printRecommendations(prefix, set)
			return
		}
	case domain.KindStockResearch:
		if raw, ok := msg.Data.(json.RawMessage); ok {
			printResearch(prefix, raw)
			return
		}
	case domain.KindTradeAnalysis:
		if raw, ok := msg.Data.(json.RawMessage); ok {
			printTradeSetup(prefix, raw)
			return
		}
	}

	if msg.Content != "" {
		fmt.Printf("[%s] %s\n", prefix, msg.Content)
	} else if msg.Data != nil {
		// Kind desconocido: volcado JSON para no perder información.
		if raw, err := json.MarshalIndent(msg.Data, "    ", "  "); err == nil {
			fmt.Printf("[%s] %s:\n    %s\n", prefix, msg.Kind, raw)
		}
	}
}

func printSnapshot(prefix string, snap domain.MarketSnapshot) {
	fmt.Printf("[%s] Market Analysis\n", prefix)
	for _, idx := range snap.Indices {
		fmt.Printf("    %-10s %10.2f  %+.2f%%\n", idx.Name, idx.Price, idx.Change)
	}
	fmt.Println("    Sectors:")
	for _, s := range snap.Sectors {
		fmt.Printf("      %-12s %+.2f%%\n", s.Name, s.Change)
	}
	fmt.Printf("    Sentiment %d/100: %s\n", snap.Sentiment.Score, snap.Sentiment.Text)
	for _, m := range snap.TopMovers {
		fmt.Printf("    Mover %-8s %+.2f%%\n", m.Symbol, m.Change)
	}
}

func printRecommendations(prefix string, set domain.RecommendationSet) {
	fmt.Printf("[%s] %s\n", prefix, set.Summary)
	for _, rec := range set.Recommendations {
		fmt.Printf("    %-8s %-22s risk=%-9s %s\n", rec.Symbol, rec.Name, rec.RiskLevel, rec.Reason)
		if rec.MatchReason != "" {
			fmt.Printf("             why you: %s\n", rec.MatchReason)
		}
	}
}

func printResearch(prefix string, raw json.RawMessage) {
	var research domain.StockResearch
	if err := json.Unmarshal(raw, &research); err != nil {
		fmt.Printf("[%s] research: %s\n", prefix, raw)
		return
	}
	p := research.Profile
	fmt.Printf("[%s] %s (%s)\n", prefix, p.Name, p.Sector)
	if p.Description != "" {
		fmt.Printf("    %s\n", p.Description)
	}
	fmt.Printf("    market cap %.0f, P/E %.2f, dividend yield %.2f%%\n", p.MarketCap, p.PERatio, p.DividendYield*100)
	fmt.Printf("    analyst consensus: %s (target %.2f)\n", research.Ratings.Consensus, research.Ratings.TargetPrice)
	for _, n := range research.News {
		fmt.Printf("    news: %s (%s)\n", n.Title, n.Publisher)
	}
}

func printTradeSetup(prefix string, raw json.RawMessage) {
	var setup domain.TradeSetup
	if err := json.Unmarshal(raw, &setup); err != nil {
		fmt.Printf("[%s] trade analysis: %s\n", prefix, raw)
		return
	}
	fmt.Printf("[%s] %s @ %.2f, verdict: %s\n", prefix, setup.Symbol, setup.CurrentPrice, setup.Verdict)
	fmt.Printf("    RSI %.2f  MACD %.2f  SMA50 %.2f  SMA200 %.2f\n",
		setup.Indicators.RSI, setup.Indicators.MACD, setup.Indicators.SMA50, setup.Indicators.SMA200)
	fmt.Printf("    support %.2f / resistance %.2f\n", setup.Levels.Support, setup.Levels.Resistance)
	for _, s := range setup.Signals {
		fmt.Printf("    signal: %s\n", s)
	}
}
