package tools

import "strings"

// Category groups tools for presentation.
type Category string

const (
	CategoryDiscovery Category = "discovery"
	CategoryUsage     Category = "usage"
	CategoryAnalysis  Category = "analysis"
	CategoryReport    Category = "report"
)

// ParamKind is the JSON type of a tool parameter.
type ParamKind int

const (
	ParamString ParamKind = iota
	ParamNumber
	ParamObject
	ParamNumberArray
)

// Param describes one tool input.
type Param struct {
	Name        string
	Kind        ParamKind
	Required    bool
	Description string
}

// Descriptor is a registered tool: its public contract plus the operation
// that implements it.
type Descriptor struct {
	Name        string
	Title       string
	Description string
	Category    Category
	Params      []Param
	Op          Operation
}

// ReadOnly reports whether the tool leaves upstream state untouched.
func (d *Descriptor) ReadOnly() bool {
	return !strings.HasPrefix(d.Name, "cancel_")
}

const (
	pathQueryObjects      = "/analytics/api/query-objects"
	pathSegments          = "/analytics/api/segments"
	pathDynamicTimeFilter = "/analytics/api/dynamic-timefilters"
	pathAnalysisUsage     = "/analytics/api/analysis-usage/current"
	pathAnalysisQuery     = "/analytics/api/analysis-query"
	pathAnalysisResult    = "/analytics/api/analysis-result"
	pathReportQuery       = "/analytics/api/report-query"
)

var (
	languageParam = func(desc string) Param {
		return Param{Name: "language", Kind: ParamString, Description: desc}
	}
	queryObjectParam = func(desc string) Param {
		return Param{Name: "queryObject", Kind: ParamObject, Required: true, Description: desc}
	}
	resultTypeParam = Param{Name: "resultType", Kind: ParamString, Description: `Result type. Default: "DATA_ONLY".`}
)

func reportParams(idDesc, elementsDesc, configDesc string) []Param {
	return []Param{
		{Name: "id", Kind: ParamNumber, Description: idDesc},
		{Name: "elementIds", Kind: ParamNumberArray, Description: elementsDesc},
		{Name: "configuration", Kind: ParamObject, Description: configDesc},
	}
}

const runAnalysisDescription = `Execute an analysis query against Mapp Intelligence and return the results.

This is the primary tool for retrieving analytics data. It submits a query,
polls for completion, and returns the full result including headers and rows.

The queryObject should be structured as follows:
- columns: Array of dimension/metric objects. Each needs at minimum a "name"
  field matching a value from list_dimensions_and_metrics.
- variant: One of "LIST", "PIVOT", "PIVOT_AS_LIST", or "COMPARISON".
- predefinedContainer: Object with "filters" and "containers" arrays.

Example queryObject:
{
  "columns": [
    {"name": "session_id", "scope": "OBJECT", "context": "SESSION", "variant": "NORMAL", "lowerLimit": 1, "upperLimit": 50},
    {"name": "pages_pageImpressions", "columnPeriod": "ANALYSIS", "scope": "OBJECT", "context": "PAGE", "variant": "NORMAL"}
  ],
  "variant": "LIST",
  "predefinedContainer": {
    "filters": [
      {"name": "time_dynamic", "filterPredicate": "LIKE", "connector": "AND", "caseSensitive": false, "context": "NONE", "intern": false, "value1": "last_7_days", "value2": ""}
    ],
    "containers": []
  }
}`

// Registry resolves tool names to descriptors.
type Registry struct {
	tools  []*Descriptor
	byName map[string]*Descriptor
}

// NewRegistry returns the analytics tool set.
func NewRegistry() *Registry {
	tools := []*Descriptor{
		{
			Name:  "list_dimensions_and_metrics",
			Title: "List Dimensions And Metrics",
			Description: `List all available dimensions and metrics in Mapp Intelligence.
Returns the complete catalog of dimensions (e.g. time_days, browser, device_class)
and metrics (e.g. qty_visits, pages_pageImpressions, order_value) that can be used
in analysis queries. Each entry includes the API name, data type, human-readable
title, context (VISITOR, SESSION, PAGE, ACTION, NONE), and whether it is sortable.
Use these names when constructing analysis queries.`,
			Category: CategoryDiscovery,
			Params:   []Param{languageParam("ISO-639-1 language code for titles (e.g. 'en', 'de'). Default: 'en'.")},
			Op:       GetOp{Path: pathQueryObjects, Language: true},
		},
		{
			Name:  "list_segments",
			Title: "List Segments",
			Description: `List all available segments defined in Mapp Intelligence.
Returns an array of segments, each with an id, title, and description.
Segment IDs can be used in analysis queries as predefinedSegmentConnections
to filter data by visitor segments.`,
			Category: CategoryDiscovery,
			Op:       GetOp{Path: pathSegments},
		},
		{
			Name:  "list_dynamic_timefilters",
			Title: "List Dynamic Timefilters",
			Description: `List all available dynamic time filters in Mapp Intelligence.
Returns predefined time ranges (e.g. "today", "last_7_days", "last_month",
"previous_year") with their internal filter configuration. Use these values
in the predefinedContainer.filters array of analysis queries to set the
time range.`,
			Category: CategoryDiscovery,
			Params:   []Param{languageParam("ISO-639-1 language code for titles. Default: 'en'.")},
			Op:       GetOp{Path: pathDynamicTimeFilter, Language: true},
		},
		{
			Name:  "get_analysis_usage",
			Title: "Get Analysis Usage",
			Description: `Show current monthly API usage quota for Mapp Intelligence.
Returns the number of calculations used so far this month,
the maximum allowed, and the current month/year.`,
			Category: CategoryUsage,
			Op:       GetOp{Path: pathAnalysisUsage},
		},
		{
			Name:        "run_analysis",
			Title:       "Run Analysis",
			Description: runAnalysisDescription,
			Category:    CategoryAnalysis,
			Params: []Param{
				queryObjectParam("The full query object defining columns, variant, filters, and time range."),
				resultTypeParam,
			},
			Op: RunAnalysisOp{},
		},
		{
			Name:  "create_analysis_query",
			Title: "Create Analysis Query",
			Description: `Submit an analysis query to Mapp Intelligence WITHOUT waiting for results.
Returns a correlationId and statusUrl for manual polling.`,
			Category: CategoryAnalysis,
			Params: []Param{
				queryObjectParam("The full query object (same structure as run_analysis)."),
				resultTypeParam,
			},
			Op: PostOp{Path: pathAnalysisQuery, Body: analysisBody},
		},
		{
			Name:        "check_analysis_status",
			Title:       "Check Analysis Status",
			Description: "Check the status of a previously submitted analysis query.",
			Category:    CategoryAnalysis,
			Params:      []Param{{Name: "correlationId", Kind: ParamString, Required: true, Description: "The correlationId returned by create_analysis_query."}},
			Op:          GetOp{Path: pathAnalysisQuery, IDParam: "correlationId"},
		},
		{
			Name:        "get_analysis_result",
			Title:       "Get Analysis Result",
			Description: "Fetch the result data of a completed analysis query.",
			Category:    CategoryAnalysis,
			Params:      []Param{{Name: "calculationId", Kind: ParamString, Required: true, Description: "The calculationId from the status response."}},
			Op:          GetOp{Path: pathAnalysisResult, IDParam: "calculationId"},
		},
		{
			Name:        "cancel_analysis_query",
			Title:       "Cancel Analysis Query",
			Description: "Cancel a running analysis query.",
			Category:    CategoryAnalysis,
			Params:      []Param{{Name: "correlationId", Kind: ParamString, Required: true, Description: "The correlationId of the query to cancel."}},
			Op:          DeleteOp{Path: pathAnalysisQuery, IDParam: "correlationId"},
		},
		{
			Name:  "run_report",
			Title: "Run Report",
			Description: `Execute a report query that can contain multiple analysis elements.
Submits the report, polls for completion, and returns combined results.`,
			Category: CategoryReport,
			Params: reportParams(
				"Saved report ID from Mapp Intelligence.",
				"Specific element IDs within the report to calculate.",
				"Full report configuration object.",
			),
			Op: RunReportOp{},
		},
		{
			Name:        "create_report_query",
			Title:       "Create Report Query",
			Description: "Submit a report query WITHOUT waiting for results.",
			Category:    CategoryReport,
			Params:      reportParams("Saved report ID.", "Specific element IDs.", "Full report configuration."),
			Op:          PostOp{Path: pathReportQuery, Body: reportBody},
		},
		{
			Name:        "check_report_status",
			Title:       "Check Report Status",
			Description: "Check the status of a previously submitted report query.",
			Category:    CategoryReport,
			Params:      []Param{{Name: "reportCorrelationId", Kind: ParamString, Required: true, Description: "The reportCorrelationId from create_report_query."}},
			Op:          GetOp{Path: pathReportQuery, IDParam: "reportCorrelationId"},
		},
		{
			Name:        "cancel_report_query",
			Title:       "Cancel Report Query",
			Description: "Cancel a running report query.",
			Category:    CategoryReport,
			Params:      []Param{{Name: "reportCorrelationId", Kind: ParamString, Required: true, Description: "The reportCorrelationId of the report to cancel."}},
			Op:          DeleteOp{Path: pathReportQuery, IDParam: "reportCorrelationId"},
		},
	}

	r := &Registry{tools: tools, byName: make(map[string]*Descriptor, len(tools))}
	for _, d := range tools {
		r.byName[d.Name] = d
	}
	return r
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// All returns every descriptor in registration order.
func (r *Registry) All() []*Descriptor {
	return r.tools
}
