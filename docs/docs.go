// Package docs is regenerated by `swag init -g cmd/api/main.go`; the handler
// annotations are the source of truth for the paths it carries.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Get the current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.DataResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/workspaces/{wsId}/teams/{teamId}/issues": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["issues"],
                "summary": "List a team's issues",
                "parameters": [
                    {"type": "string", "description": "Workspace ID", "name": "wsId", "in": "path", "required": true},
                    {"type": "string", "description": "Team ID", "name": "teamId", "in": "path", "required": true},
                    {"type": "string", "description": "Workflow state ID", "name": "workflowStateId", "in": "query"},
                    {"enum": ["backlog", "unstarted", "started", "completed", "cancelled"], "type": "string", "description": "State type", "name": "stateType", "in": "query"},
                    {"type": "integer", "description": "Priority (0-4)", "name": "priority", "in": "query"},
                    {"type": "string", "description": "Assignee user ID", "name": "assigneeId", "in": "query"},
                    {"type": "string", "description": "Label ID", "name": "labelId", "in": "query"},
                    {"enum": ["sortOrder", "createdAt", "priority", "dueDate"], "type": "string", "description": "Sort field", "name": "sort", "in": "query"},
                    {"enum": ["asc", "desc"], "type": "string", "description": "Sort direction", "name": "order", "in": "query"},
                    {"type": "integer", "description": "Page (default 1)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size (default 50, max 100)", "name": "pageSize", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ListResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["issues"],
                "summary": "Create an issue",
                "parameters": [
                    {"type": "string", "description": "Workspace ID", "name": "wsId", "in": "path", "required": true},
                    {"type": "string", "description": "Team ID", "name": "teamId", "in": "path", "required": true},
                    {"description": "Issue", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.CreateIssueRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.DataResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.CreateIssueRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "workflowStateId": {"type": "string"},
                "priority": {"type": "integer"},
                "assigneeId": {"type": "string"},
                "dueDate": {"type": "string"},
                "estimate": {"type": "integer"},
                "labelIds": {"type": "array", "items": {"type": "string"}}
            }
        },
        "handler.DataResponse": {
            "type": "object",
            "properties": {"data": {}}
        },
        "handler.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"},
                "statusCode": {"type": "integer"},
                "details": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}}
            }
        },
        "handler.ListResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "total": {"type": "integer"},
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "hasMore": {"type": "boolean"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the access token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Dolinear API",
	Description:      "Issue tracking with workspaces, teams, workflow states and labels.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
