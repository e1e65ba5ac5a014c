package route

// defaultEntries is the page table of the application.
var defaultEntries = []Entry{
	{Path: "/agent", Layout: LayoutMain, Content: "AgentContent", Mode: ModeClient, Title: "Agent"},
	{Path: "/ai-training", Layout: LayoutMain, Content: "AiTrainingContent", Mode: ModeClient, Title: "AI Training"},
	{Path: "/analyzer", Layout: LayoutMain, Content: "AnalyzerContent", Mode: ModeClient, Title: "Analyzer"},
	{Path: "/code-analyzer", Layout: LayoutMain, Content: "CodeAnalyzerContent", Mode: ModeClient, Title: "Code Analyzer"},
	{Path: "/friends", Layout: LayoutMain, Content: "FriendsContent", Mode: ModeClient, Title: "Friends"},
	{Path: "/image-to-html", Layout: LayoutMain, Content: "ImageToHtmlContent", Mode: ModeClient, Title: "Image to HTML"},
	{Path: "/mind-map", Layout: LayoutMain, Content: "MindMapContent", Mode: ModeClient, Title: "Mind Map"},
	{Path: "/news-reader", Layout: LayoutMain, Content: "NewsReaderContent", Mode: ModeClient, Title: "News Reader"},
	{Path: "/news", Layout: LayoutMain, Content: "NewsContent", Mode: ModeClient, Title: "News"},
	{Path: "/onboarding", Layout: LayoutAuth, Content: "OnboardingForm", Mode: ModeClient, Title: "Onboarding"},
	{Path: "/planner", Layout: LayoutMain, Content: "PlannerContent", Mode: ModeClient, Title: "Planner"},
	{Path: "/playground", Layout: LayoutMain, Content: "PlaygroundContent", Mode: ModeClient, Title: "Playground"},
	{Path: "/question-paper", Layout: LayoutMain, Content: "QuestionPaperContent", Mode: ModeClient, Title: "Question Paper"},
	{Path: "/question-paper/view", Layout: LayoutMain, Content: "QuestionPaperViewer", Mode: ModeClient, Title: "Question Paper Viewer"},
	{Path: "/quiz/options", Layout: LayoutMain, Content: "QuizOptionsForm", Mode: ModeClient, Title: "Quiz Options"},
	{Path: "/quiz", Layout: LayoutMain, Content: "QuizContent", Mode: ModeClient, Title: "Quiz"},
	{Path: "/quiz/results", Layout: LayoutMain, Content: "QuizResultsContent", Mode: ModeClient, Title: "Quiz Results"},
	{Path: "/settings/api", Layout: LayoutMain, Content: "SettingsApiContent", Mode: ModeClient, Title: "API Settings"},
	{Path: "/settings/data", Layout: LayoutMain, Content: "SettingsDataContent", Mode: ModeClient, Title: "Data Settings"},
	{Path: "/settings/language", Layout: LayoutMain, Content: "SettingsLanguageContent", Mode: ModeClient, Title: "Language Settings"},
	{Path: "/settings", Layout: LayoutMain, Content: "SettingsContent", Mode: ModeClient, Title: "Settings"},
	{Path: "/settings/security", Layout: LayoutMain, Content: "SettingsSecurityContent", Mode: ModeClient, Title: "Security Settings"},
	{Path: "/text-to-speech", Layout: LayoutMain, Content: "TextToSpeechContent", Mode: ModeClient, Title: "Text to Speech"},
}

var defaultTable = mustTable(defaultEntries...)

// Default returns the built-in page table.
func Default() *Table {
	return defaultTable
}

func mustTable(entries ...Entry) *Table {
	t, err := NewTable(entries...)
	if err != nil {
		panic("route: invalid built-in table: " + err.Error())
	}
	return t
}
