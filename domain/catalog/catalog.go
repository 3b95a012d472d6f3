// Package catalog holds the fixed library of reasoning frameworks available
// for stage-2 analysis. The engine treats entries as opaque metadata; the
// descriptive text feeds the model-recommendation prompt and the UI.
package catalog

// ThinkingModel is one named analytical framework
type ThinkingModel struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Icon        string   `json:"icon"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Advantage   string   `json:"advantage"`
	BestFor     []string `json:"bestFor"`
}

var thinkingModels = []ThinkingModel{
	{
		ID:          "MECE",
		Name:        "MECE Decomposition",
		Icon:        "🎯",
		Category:    "Logical Thinking",
		Description: "Mutually exclusive, collectively exhaustive. Breaks a complex problem into non-overlapping, complete sub-problems.",
		Advantage:   "Guarantees no gaps and no double counting; the golden rule of strategy consulting",
		BestFor:     []string{"strategic planning", "problem diagnosis", "market analysis"},
	},
	{
		ID:          "PyramidPrinciple",
		Name:        "Pyramid Principle",
		Icon:        "🔺",
		Category:    "Logical Thinking",
		Description: "Conclusion first, grouped supporting points, logical progression.",
		Advantage:   "Makes arguments clear and persuasive",
		BestFor:     []string{"business writing", "structured communication", "presentations"},
	},
	{
		ID:          "SixThinkingHats",
		Name:        "Six Thinking Hats",
		Icon:        "🎩",
		Category:    "Logical Thinking",
		Description: "Activates parallel thinking through six distinct perspectives (white/red/black/yellow/green/blue).",
		Advantage:   "Avoids single-viewpoint bias and improves group decision quality",
		BestFor:     []string{"team decisions", "creative thinking", "problem analysis"},
	},
	{
		ID:          "SCAMPER",
		Name:        "SCAMPER Method",
		Icon:        "💡",
		Category:    "Creative Thinking",
		Description: "Sparks innovation through substitute, combine, adapt, modify, put to other uses, eliminate, reverse.",
		Advantage:   "Systematic creativity tool that breaks fixed thinking patterns",
		BestFor:     []string{"product design", "service innovation", "process improvement"},
	},
	{
		ID:          "ProsConsList",
		Name:        "Pros and Cons Balance",
		Icon:        "⚖️",
		Category:    "Creative Thinking",
		Description: "Contrasts the advantages and risks of each option side by side.",
		Advantage:   "At-a-glance comparison that reduces decision blind spots",
		BestFor:     []string{"option comparison", "quick decisions", "risk assessment"},
	},
	{
		ID:          "5W2H",
		Name:        "5W2H Analysis",
		Icon:        "🔍",
		Category:    "Problem Solving",
		Description: "What/Why/Who/When/Where/How/How much: seven dimensions for a complete picture.",
		Advantage:   "Quickly builds a full problem profile without missing key facts",
		BestFor:     []string{"project planning", "problem definition", "process optimization"},
	},
	{
		ID:          "LogicTree",
		Name:        "Logic Tree",
		Icon:        "🌳",
		Category:    "Problem Solving",
		Description: "Decomposes a complex problem layer by layer into actionable sub-issues.",
		Advantage:   "Systematic breakdown that keeps solutions complete",
		BestFor:     []string{"problem decomposition", "strategic planning", "project management"},
	},
	{
		ID:          "EisenhowerMatrix",
		Name:        "Importance/Urgency Matrix",
		Icon:        "📋",
		Category:    "Problem Solving",
		Description: "Sorts tasks into four quadrants by importance and urgency.",
		Advantage:   "Focuses effort on high-value work",
		BestFor:     []string{"time management", "prioritization", "productivity"},
	},
	{
		ID:          "RootCause",
		Name:        "Root Cause Analysis",
		Icon:        "🔬",
		Category:    "Problem Solving",
		Description: "Repeatedly asks why to dig below symptoms to the underlying cause.",
		Advantage:   "Cuts through surface phenomena instead of treating symptoms",
		BestFor:     []string{"fault diagnosis", "quality improvement", "process optimization"},
	},
	{
		ID:          "SWOT",
		Name:        "SWOT Analysis",
		Icon:        "📊",
		Category:    "Marketing Strategy",
		Description: "Four-quadrant framework of strengths, weaknesses, opportunities, threats.",
		Advantage:   "Fast read on internal and external factors for differentiated strategy",
		BestFor:     []string{"competitive analysis", "strategic decisions", "self assessment"},
	},
	{
		ID:          "PEST",
		Name:        "PEST Macro Analysis",
		Icon:        "🌍",
		Category:    "Marketing Strategy",
		Description: "Political, economic, social, and technological environment factors.",
		Advantage:   "Captures macro trends, systemic risks, and opportunities",
		BestFor:     []string{"industry research", "investment decisions", "strategic planning"},
	},
	{
		ID:          "FiveForces",
		Name:        "Porter's Five Forces",
		Icon:        "⚔️",
		Category:    "Marketing Strategy",
		Description: "Assesses industry rivalry, entrants, substitutes, supplier and buyer power.",
		Advantage:   "Classic model for evaluating competitive intensity",
		BestFor:     []string{"industry analysis", "competitive strategy", "market entry"},
	},
	{
		ID:          "PDCA",
		Name:        "PDCA Cycle",
		Icon:        "🔄",
		Category:    "Organization",
		Description: "Plan-do-check-act closed loop for continuous improvement.",
		Advantage:   "Deming's classic spiral of incremental improvement",
		BestFor:     []string{"quality management", "process optimization", "continuous improvement"},
	},
	{
		ID:          "DecisionMatrix",
		Name:        "Decision Matrix",
		Icon:        "⚖️",
		Category:    "Problem Solving",
		Description: "Weighted multi-criteria scoring to compare options quantitatively.",
		Advantage:   "Makes the decision process transparent and traceable",
		BestFor:     []string{"option selection", "vendor evaluation", "investment decisions"},
	},
	{
		ID:          "ScenarioPlanning",
		Name:        "Scenario Planning",
		Icon:        "🎭",
		Category:    "Business Strategy",
		Description: "Builds multiple future scenarios and a coping strategy for each.",
		Advantage:   "Handles uncertainty and keeps strategy flexible",
		BestFor:     []string{"long-term planning", "risk management", "strategy design"},
	},
	{
		ID:          "StakeholderAnalysis",
		Name:        "Stakeholder Analysis",
		Icon:        "👥",
		Category:    "Organization",
		Description: "Identifies every interested party, their stakes, and their influence.",
		Advantage:   "Anticipates resistance and targets communication",
		BestFor:     []string{"change management", "project delivery", "negotiation"},
	},
}

var byID = func() map[string]ThinkingModel {
	m := make(map[string]ThinkingModel, len(thinkingModels))
	for _, tm := range thinkingModels {
		m[tm.ID] = tm
	}
	return m
}()

// Get returns the model for the given id
func Get(id string) (ThinkingModel, bool) {
	tm, ok := byID[id]
	return tm, ok
}

// All returns the catalog in its fixed display order
func All() []ThinkingModel {
	out := make([]ThinkingModel, len(thinkingModels))
	copy(out, thinkingModels)
	return out
}

// PromptList renders the catalog as one line per model for injection into
// the recommendation prompt.
func PromptList() string {
	var b []byte
	for _, tm := range thinkingModels {
		b = append(b, "- "...)
		b = append(b, tm.ID...)
		b = append(b, ": "...)
		b = append(b, tm.Name...)
		b = append(b, " - "...)
		b = append(b, tm.Description...)
		b = append(b, '\n')
	}
	return string(b)
}
