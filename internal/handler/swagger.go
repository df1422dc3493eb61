package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dafibh/dolinear/dolinear-backend/docs"
	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"
)

type jsonObject = map[string]interface{}

// OpenAPI3Document is the subset of an OpenAPI 3.0 document we emit
type OpenAPI3Document struct {
	OpenAPI    string     `json:"openapi"`
	Info       jsonObject `json:"info"`
	Servers    []Server   `json:"servers"`
	Paths      jsonObject `json:"paths"`
	Components jsonObject `json:"components,omitempty"`
}

// Server represents an OpenAPI 3.0 server
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// schemaFields are the Swagger 2.0 parameter keys that move under "schema" in 3.0
var schemaFields = []string{"type", "format", "enum", "default", "minimum", "maximum", "items"}

// convertNode rewrites definition refs and parameter objects anywhere below v
func convertNode(v interface{}) interface{} {
	switch node := v.(type) {
	case jsonObject:
		if _, ok := node["in"]; ok {
			if _, ok := node["name"]; ok {
				return convertParameter(node)
			}
		}
		out := make(jsonObject, len(node))
		for key, child := range node {
			if ref, ok := child.(string); ok && key == "$ref" {
				out[key] = strings.Replace(ref, "#/definitions/", "#/components/schemas/", 1)
				continue
			}
			out[key] = convertNode(child)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(node))
		for i, child := range node {
			out[i] = convertNode(child)
		}
		return out
	}
	return v
}

// convertParameter moves type information of a query/path/header parameter under "schema"
func convertParameter(param jsonObject) jsonObject {
	out := jsonObject{}
	for _, key := range []string{"name", "in", "description", "required"} {
		if v, ok := param[key]; ok {
			out[key] = v
		}
	}

	schema := jsonObject{}
	for _, key := range schemaFields {
		if v, ok := param[key]; ok {
			schema[key] = convertNode(v)
		}
	}
	if s, ok := param["schema"]; ok {
		schema = convertNode(s).(jsonObject)
	}
	if len(schema) > 0 {
		out["schema"] = schema
	}
	return out
}

// convertOperation lifts a Swagger 2.0 body or formData parameter into a 3.0 requestBody
func convertOperation(op jsonObject) jsonObject {
	params, _ := op["parameters"].([]interface{})
	var kept []interface{}
	for _, p := range params {
		param, ok := p.(jsonObject)
		if !ok {
			continue
		}
		switch param["in"] {
		case "body":
			op["requestBody"] = jsonObject{
				"required": param["required"] == true,
				"content": jsonObject{
					"application/json": jsonObject{"schema": convertNode(param["schema"])},
				},
			}
		case "formData":
			name, _ := param["name"].(string)
			op["requestBody"] = jsonObject{
				"required": true,
				"content": jsonObject{
					"multipart/form-data": jsonObject{"schema": jsonObject{
						"type":       "object",
						"properties": jsonObject{name: jsonObject{"type": "string", "format": "binary"}},
					}},
				},
			}
		default:
			kept = append(kept, convertParameter(param))
		}
	}
	if params != nil {
		op["parameters"] = kept
	}
	delete(op, "consumes")
	delete(op, "produces")
	return convertNode(op).(jsonObject)
}

func convertPaths(paths jsonObject) jsonObject {
	out := make(jsonObject, len(paths))
	for path, item := range paths {
		ops, ok := item.(jsonObject)
		if !ok {
			continue
		}
		converted := make(jsonObject, len(ops))
		for method, op := range ops {
			if operation, ok := op.(jsonObject); ok {
				converted[method] = convertOperation(operation)
			}
		}
		out[path] = converted
	}
	return out
}

// ServeOpenAPI3Spec serves the swag-generated Swagger 2.0 document converted to
// OpenAPI 3.0, with the requesting host as its server.
func ServeOpenAPI3Spec(c echo.Context) error {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		return RespondError(c, fmt.Errorf("failed to read swagger doc: %w", err))
	}

	var swagger2 jsonObject
	if err := json.Unmarshal([]byte(doc), &swagger2); err != nil {
		return RespondError(c, fmt.Errorf("failed to parse swagger doc: %w", err))
	}

	info, _ := swagger2["info"].(jsonObject)
	paths, _ := swagger2["paths"].(jsonObject)

	components := jsonObject{}
	if secDefs, ok := swagger2["securityDefinitions"].(jsonObject); ok {
		components["securitySchemes"] = secDefs
	}
	if definitions, ok := swagger2["definitions"].(jsonObject); ok {
		components["schemas"] = convertNode(definitions)
	}

	basePath, _ := swagger2["basePath"].(string)
	return c.JSON(http.StatusOK, OpenAPI3Document{
		OpenAPI: "3.0.3",
		Info:    info,
		Servers: []Server{
			{URL: c.Scheme() + "://" + c.Request().Host + basePath, Description: "This server"},
			{URL: basePath, Description: "Same origin"},
		},
		Paths:      convertPaths(paths),
		Components: components,
	})
}
