package mcpserver

// DetectInput defines the input schema for the detect tool.
type DetectInput struct {
	Location       string   `json:"location" jsonschema:"the documentation site URL to probe"`
	ProcessorName  string   `json:"processor_name,omitempty" jsonschema:"explicit processor name, bypassing automatic detection"`
	ProcessorTypes []string `json:"processor_types,omitempty" jsonschema:"which processor genera to probe: inventory, structure, or both (default both)"`
}

// SurveyProcessorsInput defines the input schema for the
// survey_processors tool.
type SurveyProcessorsInput struct {
	Genus string `json:"genus" jsonschema:"inventory or structure"`
	Name  string `json:"name,omitempty" jsonschema:"restrict the survey to one processor name"`
}

// QueryInventoryInput defines the input schema for the query_inventory
// tool.
type QueryInventoryInput struct {
	Location       string         `json:"location" jsonschema:"the documentation site URL to query"`
	Term           string         `json:"term,omitempty" jsonschema:"the name or pattern to search for; empty lists everything"`
	ProcessorName  string         `json:"processor_name,omitempty" jsonschema:"explicit inventory processor name, bypassing automatic detection"`
	SearchMode     string         `json:"search_mode,omitempty" jsonschema:"exact, regex, or fuzzy (default fuzzy)"`
	FuzzyThreshold float64        `json:"fuzzy_threshold,omitempty" jsonschema:"minimum fuzzy similarity in [0,100]"`
	Filters        map[string]any `json:"filters,omitempty" jsonschema:"format-specific filter map: domain, role, priority, uri_prefix, name_regex"`
	Details        bool           `json:"details,omitempty" jsonschema:"include format-specific specifics fields in each result"`
	ResultsMax     int            `json:"results_max,omitempty" jsonschema:"maximum number of objects to return, default 5"`
}

// QueryContentInput defines the input schema for the query_content
// tool.
type QueryContentInput struct {
	Location       string         `json:"location" jsonschema:"the documentation site URL to query"`
	Term           string         `json:"term,omitempty" jsonschema:"the name or pattern to search for, when content_id is not supplied"`
	ProcessorName  string         `json:"processor_name,omitempty" jsonschema:"explicit inventory processor name, bypassing automatic detection"`
	SearchMode     string         `json:"search_mode,omitempty" jsonschema:"exact, regex, or fuzzy (default fuzzy)"`
	FuzzyThreshold float64        `json:"fuzzy_threshold,omitempty" jsonschema:"minimum fuzzy similarity in [0,100]"`
	Filters        map[string]any `json:"filters,omitempty" jsonschema:"format-specific filter map: domain, role, priority, uri_prefix, name_regex"`
	ContentID      string         `json:"content_id,omitempty" jsonschema:"a content_id from a prior query_inventory or query_content result, to fetch that exact object directly"`
	ResultsMax     int            `json:"results_max,omitempty" jsonschema:"maximum number of documents to return, default 10"`
	LinesMax       int            `json:"lines_max,omitempty" jsonschema:"truncate each document's Markdown body to this many lines"`
}

// SummarizeInput defines the input schema for the summarize tool.
type SummarizeInput struct {
	Location string `json:"location" jsonschema:"the documentation site URL to summarize"`
	GroupBy  string `json:"group_by,omitempty" jsonschema:"a top-level specifics field (or inventory_type) to group object counts by"`
}
