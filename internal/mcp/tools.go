package mcp

import "github.com/mark3labs/mcp-go/mcp"

// solveProblemTool defines the solve_problem MCP tool.
var solveProblemTool = mcp.NewTool("solve_problem",
	mcp.WithDescription("Solve a math problem through the full pipeline: parse, retrieve references, solve, verify, explain. Returns the solution, verification verdict and a step-by-step explanation, plus a trace id for record_feedback."),
	mcp.WithString("problem",
		mcp.Required(),
		mcp.Description("The math problem, in plain text"),
	),
)

// recordFeedbackTool defines the record_feedback MCP tool.
var recordFeedbackTool = mcp.NewTool("record_feedback",
	mcp.WithDescription("Judge a solved problem and persist it to case memory. Must reference a trace id returned by solve_problem."),
	mcp.WithString("trace_id",
		mcp.Required(),
		mcp.Description("Trace id from a prior solve_problem call"),
	),
	mcp.WithString("feedback",
		mcp.Required(),
		mcp.Description("Verdict on the solution"),
		mcp.Enum("correct", "incorrect"),
	),
	mcp.WithString("comment",
		mcp.Description("What was wrong (only stored for incorrect verdicts)"),
	),
)

// discardTraceTool defines the discard_trace MCP tool.
var discardTraceTool = mcp.NewTool("discard_trace",
	mcp.WithDescription("Abandon a pending trace without saving it to case memory. Use when a solve_problem result should not be judged."),
	mcp.WithString("trace_id",
		mcp.Required(),
		mcp.Description("Trace id from a prior solve_problem call"),
	),
)

// findSimilarCasesTool defines the find_similar_cases MCP tool.
var findSimilarCasesTool = mcp.NewTool("find_similar_cases",
	mcp.WithDescription("Find previously solved problems similar to a query, ranked by text similarity."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Problem text to match against past cases"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of cases to return (default 3)"),
	),
)

// listCasesTool defines the list_cases MCP tool.
var listCasesTool = mcp.NewTool("list_cases",
	mcp.WithDescription("List the most recent solved cases with their feedback verdicts."),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of cases to return (default 10)"),
	),
)

// resetCaseMemoryTool defines the reset_case_memory MCP tool.
var resetCaseMemoryTool = mcp.NewTool("reset_case_memory",
	mcp.WithDescription("Delete all stored cases. This cannot be undone."),
)
