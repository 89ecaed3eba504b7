package toolserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/formatter"
	"github.com/anatolykoptev/go_transcript/internal/toolutil"
)

// ToolCount is the number of tools RegisterTools adds.
const ToolCount = 3

// RegisterTools registers the transcript tools on the given MCP server:
// transcript_list, transcript_fetch, transcript_text.
func RegisterTools(server *mcp.Server, api *engine.API) {
	registerTranscriptList(server, api)
	registerTranscriptFetch(server, api)
	registerTranscriptText(server, api)
}

func registerTranscriptList(server *mcp.Server, api *engine.API) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "transcript_list",
		Description: "List the caption tracks of a YouTube video: manually created and auto-generated tracks per language, and the languages they can be machine-translated into. Use before transcript_fetch to pick a language.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.TranscriptListInput) (*mcp.CallToolResult, engine.TranscriptListOutput, error) {
		return handleList(ctx, api, input)
	})
}

func registerTranscriptFetch(server *mcp.Server, api *engine.API) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "transcript_fetch",
		Description: "Fetch the transcript of a YouTube video as JSON, plain text, SRT or WebVTT. Picks the first available language from the preference list, manual tracks before auto-generated ones, and can machine-translate the result.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.TranscriptFetchInput) (*mcp.CallToolResult, engine.TranscriptFetchOutput, error) {
		return handleFetch(ctx, api, input)
	})
}

func registerTranscriptText(server *mcp.Server, api *engine.API) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "transcript_text",
		Description: "Get the plain text of a YouTube video's transcript, one caption line per row, capped at max_chars. Cheapest way to read what a video says.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.TranscriptTextInput) (*mcp.CallToolResult, engine.TranscriptTextOutput, error) {
		return handleText(ctx, api, input)
	})
}

func handleList(ctx context.Context, api *engine.API, input engine.TranscriptListInput) (*mcp.CallToolResult, engine.TranscriptListOutput, error) {
	videoID := toolutil.NormVideoID(input.VideoID)
	if videoID == "" {
		return nil, engine.TranscriptListOutput{}, fmt.Errorf("video_id is required")
	}
	list, err := api.List(ctx, videoID)
	if err != nil {
		return nil, engine.TranscriptListOutput{}, err
	}
	return nil, engine.NewTranscriptListOutput(list), nil
}

func handleFetch(ctx context.Context, api *engine.API, input engine.TranscriptFetchInput) (*mcp.CallToolResult, engine.TranscriptFetchOutput, error) {
	videoID := toolutil.NormVideoID(input.VideoID)
	if videoID == "" {
		return nil, engine.TranscriptFetchOutput{}, fmt.Errorf("video_id is required")
	}
	format := input.Format
	if format == "" {
		format = string(formatter.KindJSON)
	}
	f, err := formatter.Load(format)
	if err != nil {
		return nil, engine.TranscriptFetchOutput{}, err
	}

	fetched, err := api.FetchTranslated(ctx, videoID, toolutil.NormLanguages(input.Languages), input.TranslateTo, input.PreserveFormatting)
	if err != nil {
		return nil, engine.TranscriptFetchOutput{}, err
	}
	content, err := f.FormatTranscript(fetched)
	if err != nil {
		return nil, engine.TranscriptFetchOutput{}, fmt.Errorf("format %s: %w", format, err)
	}

	slog.Debug("transcript fetched",
		slog.String("video_id", videoID),
		slog.String("language", fetched.LanguageCode),
		slog.Int("snippets", fetched.Len()))
	return nil, engine.TranscriptFetchOutput{
		VideoID:      fetched.VideoID,
		Language:     fetched.Language,
		LanguageCode: fetched.LanguageCode,
		IsGenerated:  fetched.IsGenerated,
		Format:       format,
		SnippetCount: fetched.Len(),
		Content:      content,
	}, nil
}

func handleText(ctx context.Context, api *engine.API, input engine.TranscriptTextInput) (*mcp.CallToolResult, engine.TranscriptTextOutput, error) {
	videoID := toolutil.NormVideoID(input.VideoID)
	if videoID == "" {
		return nil, engine.TranscriptTextOutput{}, fmt.Errorf("video_id is required")
	}
	text, fetched, err := api.Text(ctx, videoID, toolutil.NormLanguages(input.Languages))
	if err != nil {
		return nil, engine.TranscriptTextOutput{}, err
	}

	limit := input.MaxChars
	if limit <= 0 {
		limit = engine.Cfg.MaxTextChars
	}
	text, truncated := toolutil.TruncateText(text, limit)
	return nil, engine.TranscriptTextOutput{
		VideoID:      fetched.VideoID,
		LanguageCode: fetched.LanguageCode,
		IsGenerated:  fetched.IsGenerated,
		Text:         text,
		Truncated:    truncated,
	}, nil
}
