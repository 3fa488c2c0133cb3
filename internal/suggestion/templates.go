package suggestion

import "github.com/Rrens/workspace-insights/internal/domain"

// template describes one suggested action. Description is a format string
// taking the display name; Fallback is used when there is none.
type template struct {
	Title       string
	Description string
	Fallback    string
	ActionKind  string
	WidgetKind  string
	Config      map[string]any
}

var bindingTemplates = map[domain.BindingType][]template{
	domain.BindingIssueTracker: {
		{"Summarize Board Activity", "Get a summary of recent activity on %s", "Get a summary of recent activity on your board", "summarize", domain.WidgetSummary, nil},
		{"List Overdue Cards", "List cards past their due date on %s", "List cards past their due date", "list", "list", map[string]any{"filter": "overdue"}},
		{"Identify Blockers", "Spot blocked or stalled cards on %s", "Spot blocked or stalled cards", "analyze", domain.WidgetKeyPoints, nil},
		{"Track Progress Chart", "Chart how cards move across the lists of %s", "Chart how cards move across your lists", "chart", "chart", map[string]any{"chart": "bar"}},
		{"Create Task Checklist", "Turn the open cards on %s into a checklist", "Turn open cards into a checklist", "checklist", domain.WidgetActionItems, nil},
		{"Generate Sprint Report", "Write a sprint report for %s", "Write a sprint report for your board", "report", domain.WidgetSummary, nil},
	},
	domain.BindingMailbox: {
		{"Extract Action Items", "Pull action items out of recent email in %s", "Pull action items out of your recent email", "extract", domain.WidgetActionItems, nil},
		{"Summarize Recent Emails", "Summarize the latest messages in %s", "Summarize your latest messages", "summarize", domain.WidgetSummary, nil},
		{"Find Important Messages", "Surface messages that need attention in %s", "Surface messages that need attention", "search", "list", map[string]any{"filter": "important"}},
		{"Draft Follow-ups", "Draft follow-up replies for threads in %s", "Draft follow-up replies for open threads", "draft", "draft", nil},
	},
	domain.BindingDrive: {
		{"Import Documents", "Import documents from %s", "Import documents from your drive", "import", "list", nil},
		{"Summarize Folder", "Summarize the contents of %s", "Summarize the contents of your folder", "summarize", domain.WidgetSummary, nil},
		{"Find Recent Changes", "List files recently changed in %s", "List recently changed files", "list", "list", map[string]any{"filter": "recent"}},
	},
	domain.BindingDocStore: {
		{"Import Pages", "Import pages from %s", "Import pages from your collection", "import", "list", nil},
		{"Summarize Notes", "Summarize the notes in %s", "Summarize your notes", "summarize", domain.WidgetSummary, nil},
		{"Extract Key Points", "Pull the key points out of %s", "Pull the key points out of your notes", "extract", domain.WidgetKeyPoints, nil},
	},
	domain.BindingWiki: {
		{"Summarize Space", "Summarize the pages of %s", "Summarize your wiki space", "summarize", domain.WidgetSummary, nil},
		{"Find Outdated Pages", "Find pages in %s that have not been updated recently", "Find pages that have not been updated recently", "list", "list", map[string]any{"filter": "stale"}},
		{"Build Knowledge Map", "Map how the topics in %s connect", "Map how your wiki topics connect", "map", "knowledge_map", nil},
		{"Answer Questions", "Ask questions answered from %s", "Ask questions answered from your wiki", "chat", "chat", nil},
	},
	domain.BindingRelationalDB: {
		{"Explore Schema", "Browse the tables and columns of %s", "Browse the tables and columns of your database", "explore", "table", nil},
		{"Visualize Table Data", "Chart rows from a table in %s", "Chart rows from one of your tables", "visualize", "chart", map[string]any{"chart": "bar"}},
		{"Generate Report", "Write a report on the data in %s", "Write a report on your data", "report", domain.WidgetSummary, nil},
		{"Analyze Data Quality", "Check %s for missing and inconsistent values", "Check your data for missing and inconsistent values", "analyze", domain.WidgetKeyPoints, nil},
	},
}

var (
	documentTemplates = []template{
		{"Summarize Document", "Summarize %s", "Summarize this document", "summarize", domain.WidgetSummary, nil},
		{"Extract Key Points", "Pull the key points out of %s", "Pull the key points out of this document", "extract", domain.WidgetKeyPoints, nil},
	}
	tabularTemplates = []template{
		{"Visualize Data", "Chart the data in %s", "Chart this data", "visualize", "chart", map[string]any{"chart": "bar"}},
		{"Analyze Data", "Find trends and outliers in %s", "Find trends and outliers in this data", "analyze", domain.WidgetKeyPoints, nil},
	}
	messageTemplates = []template{
		{"Extract Action Items", "Pull action items out of %s", "Pull action items out of this message", "extract", domain.WidgetActionItems, nil},
	}
)

var artifactFamilies = map[string][]template{}

func init() {
	for _, kind := range []string{"document", "doc", "docx", "pdf", "text", "txt", "markdown", "md", "page", "note", "wiki_page"} {
		artifactFamilies[kind] = documentTemplates
	}
	for _, kind := range []string{"spreadsheet", "sheet", "csv", "xlsx", "table"} {
		artifactFamilies[kind] = tabularTemplates
	}
	for _, kind := range []string{"email", "message"} {
		artifactFamilies[kind] = messageTemplates
	}
}
