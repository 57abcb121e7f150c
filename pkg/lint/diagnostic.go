package lint

// Diagnostic is one reported problem.
type Diagnostic struct {
	File      string   `json:"file"`
	RuleID    string   `json:"ruleId"`
	Severity  Severity `json:"severity"`
	Message   string   `json:"message"`
	Line      int      `json:"line"`
	Column    int      `json:"column"`
	EndLine   int      `json:"endLine"`
	EndColumn int      `json:"endColumn"`
	NodeType  string   `json:"nodeType"`
}
