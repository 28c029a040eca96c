package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/venuelab/directory-engine/pkg/models"
	"github.com/venuelab/directory-engine/pkg/services"
)

func (s *Server) registerTools() {
	s.registerInitialImageProcess()
	s.registerBusinessListByLatLon()
	s.registerImageToContentUpsert()
	s.registerUploadFileToBlob()
	s.registerConfirmCommitHIL()
}

func (s *Server) registerInitialImageProcess() {
	tool := mcp.NewTool("initial_image_process",
		mcp.WithDescription("Analyze a business photo (wifi sign, hours board, tap list, storefront), resolve which venue it belongs to, and stage the extracted facts for confirmation. Returns the session uid to confirm with, or nearby candidates when the venue is ambiguous."),
		mcp.WithString("image_url", mcp.Required(), mcp.Description("URL of the submitted image")),
		mcp.WithString("venue", mcp.Description("Venue key when the target venue is already known")),
		mcp.WithNumber("latitude", mcp.Description("Capture latitude, used when no venue key is given")),
		mcp.WithNumber("longitude", mcp.Description("Capture longitude, used when no venue key is given")),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		imageURL, err := request.RequireString("image_url")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		input := services.ProcessImageInput{
			ImageURL: imageURL,
			VenueKey: request.GetString("venue", ""),
		}
		if lat := request.GetFloat("latitude", 0); request.GetArguments()["latitude"] != nil {
			input.Latitude = &lat
		}
		if lon := request.GetFloat("longitude", 0); request.GetArguments()["longitude"] != nil {
			input.Longitude = &lon
		}

		result, err := s.ingest.ProcessImage(ctx, input)
		if err != nil {
			s.logger.Error("initial_image_process failed", zap.Error(err))
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(result)
	})
}

func (s *Server) registerBusinessListByLatLon() {
	tool := mcp.NewTool("business_list_by_lat_lon",
		mcp.WithDescription("List venues near a coordinate, closest first. An empty candidate list with new_business=true means the location is not in the directory yet."),
		mcp.WithNumber("latitude", mcp.Required(), mcp.Description("Latitude of the point of interest")),
		mcp.WithNumber("longitude", mcp.Required(), mcp.Description("Longitude of the point of interest")),
		mcp.WithString("business_type", mcp.Description("Restrict results to one business type")),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		lat, err := request.RequireFloat("latitude")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		lon, err := request.RequireFloat("longitude")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		resolution, err := s.discovery.Resolve(ctx, services.ResolveInput{
			Latitude:     &lat,
			Longitude:    &lon,
			BusinessType: request.GetString("business_type", ""),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(resolution)
	})
}

func (s *Server) registerImageToContentUpsert() {
	tool := mcp.NewTool("image_to_content_upsert",
		mcp.WithDescription("Register an already-hosted image as content linked to a venue or an establishment. Idempotent: repeating the call with the same image is a no-op."),
		mcp.WithString("image_url", mcp.Required(), mcp.Description("Hosted URL of the image")),
		mcp.WithString("image_type", mcp.Required(), mcp.Description("One of: WiFi, New Business, Business Logo")),
		mcp.WithString("venue", mcp.Description("Venue key to link the image to")),
		mcp.WithString("homepage_url", mcp.Description("Business homepage, used when no venue key is given")),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		imageURL, err := request.RequireString("image_url")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		imageType, err := request.RequireString("image_type")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		res := s.upserts.UpsertImageContent(ctx, services.ImageContentUpsert{
			ImageURL:    imageURL,
			ImageType:   imageType,
			VenueKey:    request.GetString("venue", ""),
			HomepageURL: request.GetString("homepage_url", ""),
		})
		return resultToTool(res)
	})
}

func (s *Server) registerUploadFileToBlob() {
	tool := mcp.NewTool("upload_file_to_blob",
		mcp.WithDescription("Upload a base64-encoded file to hosted storage and return its URL."),
		mcp.WithString("container", mcp.Required(), mcp.Description("Target storage container")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Blob name, e.g. photo.jpg")),
		mcp.WithString("content_base64", mcp.Required(), mcp.Description("File content, base64 encoded")),
		mcp.WithBoolean("overwrite", mcp.Description("Replace an existing blob of the same name")),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if s.blobs == nil {
			return mcp.NewToolResultError("blob storage is not configured"), nil
		}
		container, err := request.RequireString("container")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		encoded, err := request.RequireString("content_base64")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("content_base64 is not valid base64: %v", err)), nil
		}

		url, err := s.blobs.Upload(ctx, container, name, bytes.NewReader(data), request.GetBool("overwrite", false))
		if err != nil {
			s.logger.Error("upload_file_to_blob failed", zap.Error(err))
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]string{"url": url})
	})
}

func (s *Server) registerConfirmCommitHIL() {
	tool := mcp.NewTool("confirm_commit_hil",
		mcp.WithDescription("Confirm a staged extraction session after human review and commit its facts to the authoritative tables."),
		mcp.WithString("session_uid", mcp.Required(), mcp.Description("Session uid returned by initial_image_process")),
		mcp.WithString("category", mcp.Required(), mcp.Description("Extraction category of the session, e.g. wifi_password or hours_of_operation")),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionUID, err := request.RequireString("session_uid")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		category, err := request.RequireString("category")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return resultToTool(s.commit.Commit(ctx, sessionUID, category))
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

func resultToTool(res models.Result) (*mcp.CallToolResult, error) {
	if !res.OK() {
		return mcp.NewToolResultError(res.Message), nil
	}
	return jsonResult(res)
}
