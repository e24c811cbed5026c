package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	ghErrors "github.com/ronit-raj9/portfolio-server/pkg/errors"
	"github.com/ronit-raj9/portfolio-server/pkg/translations"
)

// GetPortfolioStats creates a tool returning the aggregated portfolio data for
// one year.
func GetPortfolioStats(aggregator *Aggregator, t translations.TranslationHelperFunc) (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool("get_portfolio_stats",
			mcp.WithDescription(t("TOOL_GET_PORTFOLIO_STATS_DESCRIPTION", fmt.Sprintf("Get the GitHub profile, top repositories, language breakdown and contribution calendar of %s for one year.", aggregator.Username()))),
			mcp.WithToolAnnotation(mcp.ToolAnnotation{
				Title:        t("TOOL_GET_PORTFOLIO_STATS_USER_TITLE", "Get portfolio GitHub stats"),
				ReadOnlyHint: ToBoolPtr(true),
			}),
			mcp.WithNumber("year",
				mcp.Description("Calendar year to report contributions for. Defaults to the current year."),
			),
		),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var params struct {
				Year float64
			}
			if err := mapstructure.Decode(request.Params.Arguments, &params); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			stats, err := aggregator.Fetch(ctx, int(params.Year))
			if errors.Is(err, ghErrors.ErrMissingToken) {
				return mcp.NewToolResultError(ghErrors.MissingTokenMessage), nil
			}
			if err != nil {
				return nil, fmt.Errorf("failed to get portfolio stats: %w", err)
			}

			r, err := json.Marshal(stats)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal response: %w", err)
			}

			return mcp.NewToolResultText(string(r)), nil
		}
}
