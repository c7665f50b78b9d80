package mcpserver

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/poiesic/usecasegen/prompts"
)

// registerPrompts publishes one prompt per agent role.
func (s *Server) registerPrompts() {
	for _, role := range prompts.Roles {
		s.server.AddPrompt(&mcp.Prompt{
			Name:        promptName(role),
			Description: role.String() + " agent instructions for the use case inventory",
			Arguments: []*mcp.PromptArgument{{
				Name:        "tenant",
				Description: "tenant whose use case collection the agent reviews",
			}},
		}, s.promptHandler(role))
	}
}

func promptName(role prompts.Role) string {
	return strings.ToLower(role.String()) + "_agent"
}

// tableNames lists the collections an agent reads, tenant first.
func (s *Server) tableNames(tenant string) []string {
	var names []string
	if tenant = strings.TrimSpace(tenant); tenant != "" {
		names = append(names, s.naming.Usecases(tenant))
	}
	return append(names, s.naming.Frameworks(), s.naming.MethodologyMapping())
}

func (s *Server) promptHandler(role prompts.Role) mcp.PromptHandler {
	return func(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		var tenant string
		if req != nil && req.Params != nil {
			tenant = req.Params.Arguments["tenant"]
		}

		text, err := s.library.AgentInstruction(role, prompts.AgentParams{
			App:               s.naming.App,
			TableNames:        s.tableNames(tenant),
			MethodologyRubric: s.rubric,
		})
		if err != nil {
			return nil, err
		}

		return &mcp.GetPromptResult{
			Description: role.String() + " agent",
			Messages: []*mcp.PromptMessage{{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			}},
		}, nil
	}
}
