package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/questlog/pkg/app"
	"tableflip.dev/questlog/pkg/filter"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerCreateQuestTool(srv, svc)
	registerSetProgressTool(srv, svc)
	registerSetDoneTool(srv, svc, "complete_quest", "Mark a quest as done.", true)
	registerSetDoneTool(srv, svc, "reopen_quest", "Mark a done quest as open again.", false)
	registerDeleteQuestTool(srv, svc)
	registerListQuestsTool(srv, svc)
	registerGetQuestTool(srv, svc)
	registerDayTool(srv, svc)
	registerStatsTool(srv, svc)
}

func registerCreateQuestTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"create_quest",
		mcp.WithDescription("Create a new quest."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Short title of the quest."),
		),
		mcp.WithString("course",
			mcp.Description("Course the quest belongs to."),
		),
		mcp.WithString("category",
			mcp.Description("Category such as Assignment, Test or Project."),
		),
		mcp.WithString("due_date",
			mcp.Description("Due date as YYYY-MM-DD."),
		),
		mcp.WithString("due_time",
			mcp.Description("Optional due time, for example 23:59."),
		),
		mcp.WithNumber("est_minutes",
			mcp.Description("Estimated effort in minutes."),
		),
		mcp.WithString("notes",
			mcp.Description("Free-form notes."),
		),
		mcp.WithString("link",
			mcp.Description("Related URL."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Title      string  `json:"title"`
			Course     string  `json:"course"`
			Category   string  `json:"category"`
			DueDate    string  `json:"due_date"`
			DueTime    string  `json:"due_time"`
			EstMinutes float64 `json:"est_minutes"`
			Notes      string  `json:"notes"`
			Link       string  `json:"link"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		dto, err := svc.CreateQuest(ctx, app.AddOptions{
			Title:      args.Title,
			Course:     args.Course,
			Category:   args.Category,
			DueDate:    args.DueDate,
			DueTime:    args.DueTime,
			EstMinutes: int(args.EstMinutes),
			Notes:      args.Notes,
			Link:       args.Link,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerSetProgressTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"set_progress",
		mcp.WithDescription("Set the completion percentage of a quest. 100 marks it done."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Quest identifier or unique prefix."),
		),
		mcp.WithNumber("completion",
			mcp.Required(),
			mcp.Description("Completion percentage between 0 and 100."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		pct, err := request.RequireFloat("completion")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		dto, err := svc.SetProgress(ctx, id, int(pct))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerSetDoneTool(srv *server.MCPServer, svc *Service, name, description string, done bool) {
	tool := mcp.NewTool(
		name,
		mcp.WithDescription(description),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Quest identifier or unique prefix."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		dto, err := svc.SetDone(ctx, id, done)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerDeleteQuestTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"delete_quest",
		mcp.WithDescription("Delete a quest."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Quest identifier or unique prefix."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		dto, err := svc.DeleteQuest(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{"deleted": dto})
	})
}

func registerListQuestsTool(srv *server.MCPServer, svc *Service) {
	statuses := make([]string, 0, len(filter.Statuses))
	for _, st := range filter.Statuses {
		statuses = append(statuses, string(st))
	}
	tool := mcp.NewTool(
		"list_quests",
		mcp.WithDescription("List quests, optionally narrowed by course, status and a fuzzy search."),
		mcp.WithString("course",
			mcp.Description("Only quests of this course."),
		),
		mcp.WithString("status",
			mcp.Description("Due-date bucket."),
			mcp.Enum(statuses...),
		),
		mcp.WithString("sort",
			mcp.Description("Ordering."),
			mcp.Enum(string(filter.SortDate), string(filter.SortCourse), string(filter.SortWorkload)),
		),
		mcp.WithString("search",
			mcp.Description("Fuzzy match over title, course and category."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var opts ListOptions
		if err := request.BindArguments(&opts); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		quests, err := svc.ListQuests(ctx, opts)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"quests": quests,
			"count":  len(quests),
		})
	})
}

func registerGetQuestTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_quest",
		mcp.WithDescription("Fetch a single quest by identifier."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Quest identifier or unique prefix."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		dto, err := svc.QuestByID(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerDayTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"day_summary",
		mcp.WithDescription("Quests due on a day with the estimated hours and overdue count."),
		mcp.WithString("date",
			mcp.Description("Day as YYYY-MM-DD; today when omitted."),
		),
		mcp.WithString("kind",
			mcp.Description("Only one kind of quest."),
			mcp.Enum("all", "assignments", "tests", "projects", "other"),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		day, err := svc.Day(ctx, request.GetString("date", ""), request.GetString("kind", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(day)
	})
}

func registerStatsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"quest_stats",
		mcp.WithDescription("Totals of quests, quests due today and overdue quests."),
	)

	srv.AddTool(tool, func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sum, err := svc.Stats(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(sum)
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
