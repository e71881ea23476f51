package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/questlog/pkg/app"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerQuestsResource(srv, svc)
	registerLabelsResource(srv, svc, "questlog://courses", "Courses", app.Courses)
	registerLabelsResource(srv, svc, "questlog://categories", "Categories", app.Categories)
	registerQuestTemplate(srv, svc)
	registerDayTemplate(srv, svc)
}

func registerQuestsResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"questlog://quests",
		"Quests",
		mcp.WithResourceDescription("Every quest ordered by due date."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		quests, err := svc.ListQuests(ctx, ListOptions{})
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{
			"quests": quests,
			"count":  len(quests),
		})
	})
}

func registerLabelsResource(srv *server.MCPServer, svc *Service, uri, name string, kind app.LabelKind) {
	resource := mcp.NewResource(
		uri,
		name,
		mcp.WithResourceDescription(fmt.Sprintf("%s with the number of quests using each.", name)),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		labels, err := svc.Labels(ctx, kind)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{
			"labels": labels,
			"count":  len(labels),
		})
	})
}

func registerQuestTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"questlog://quests/{id}",
		"Quest Details",
		mcp.WithTemplateDescription("Detailed information about a single quest."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id := templateArg(request.Params.Arguments, "id")
		if id == "" {
			return nil, fmt.Errorf("quest id is required")
		}
		dto, err := svc.QuestByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{"quest": dto})
	})
}

func registerDayTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"questlog://days/{date}",
		"Day",
		mcp.WithTemplateDescription("Quests due on a day (YYYY-MM-DD) with its load."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		date := templateArg(request.Params.Arguments, "date")
		if date == "" {
			return nil, fmt.Errorf("date is required")
		}
		day, err := svc.Day(ctx, date, "")
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, day)
	})
}

// templateArg reads a URI template variable, which arrives either as a
// string or as a list of strings.
func templateArg(args map[string]any, name string) string {
	switch v := args[name].(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
