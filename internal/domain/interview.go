package domain

// InterviewQuestion define una pregunta del cuestionario de preferencias.
// El catálogo es configuración estática; no se muta en runtime.
type InterviewQuestion struct {
	ID       string
	Question string
	Options  []InterviewOption
}

// InterviewQuestions es el catálogo ordenado del flujo de recomendaciones.
var InterviewQuestions = []InterviewQuestion{
	{
		ID:       "risk",
		Question: "What is your risk tolerance?",
		Options: []InterviewOption{
			{Value: "Low", Label: "Low (Preserve Capital)"},
			{Value: "Medium", Label: "Medium (Balanced)"},
			{Value: "High", Label: "High (Aggressive Growth)"},
		},
	},
	{
		ID:       "goal",
		Question: "What is your primary investment goal?",
		Options: []InterviewOption{
			{Value: "Growth", Label: "Long-term Growth"},
			{Value: "Income", Label: "Regular Income (Dividends)"},
			{Value: "Stability", Label: "Stability & Safety"},
		},
	},
	{
		ID:       "amount",
		Question: "How much are you planning to invest?",
		Options: []InterviewOption{
			{Value: "Under $1k", Label: "Under $1,000"},
			{Value: "$1k-$10k", Label: "$1,000 - $10,000"},
			{Value: "$10k-$50k", Label: "$10,000 - $50,000"},
			{Value: "Over $50k", Label: "Over $50,000"},
		},
	},
	{
		ID:       "experience",
		Question: "What is your trading experience?",
		Options: []InterviewOption{
			{Value: "Beginner", Label: "Beginner (New to trading)"},
			{Value: "Intermediate", Label: "Intermediate (Some experience)"},
			{Value: "Advanced", Label: "Advanced (Active trader)"},
		},
	},
	{
		ID:       "sector",
		Question: "Which sector interests you the most?",
		Options: []InterviewOption{
			{Value: "Tech", Label: "Technology"},
			{Value: "Finance", Label: "Finance"},
			{Value: "Healthcare", Label: "Healthcare"},
			{Value: "Energy", Label: "Energy"},
			{Value: "Consumer", Label: "Consumer Goods"},
		},
	},
}

// InvestorProfile es el perfil que viaja en la petición de recomendaciones.
type InvestorProfile struct {
	RiskTolerance    string   `json:"riskTolerance"`
	InvestmentGoal   string   `json:"investmentGoal"`
	PreferredSectors []string `json:"preferredSectors"`
	RegionalFocus    string   `json:"regionalFocus"`
}

// BuildProfile mapea las respuestas del cuestionario al perfil de inversión.
// Los campos omitidos toman defaults: Medium, Growth, Tech, US. Las respuestas
// amount y experience se recogen pero no viajan en el perfil.
func BuildProfile(answers map[string]string) InvestorProfile {
	risk := answers["risk"]
	if risk == "" {
		risk = "Medium"
	}
	goal := answers["goal"]
	if goal == "" {
		goal = "Growth"
	}
	sector := answers["sector"]
	if sector == "" {
		sector = "Tech"
	}
	return InvestorProfile{
		RiskTolerance:    risk,
		InvestmentGoal:   goal,
		PreferredSectors: []string{sector},
		RegionalFocus:    "US",
	}
}
