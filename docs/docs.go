// Package docs holds the OpenAPI document served by the Swagger UI.
// Regenerate with `swag init -g cmd/gemmad/docs.go -o docs` after changing
// handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "gemmad maintainers"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/generate": {
            "post": {
                "description": "Wraps text in the system persona and returns the model reply.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["generate"],
                "summary": "Generate text",
                "parameters": [
                    {
                        "description": "prompt",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/types.GenerateRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.GenerateResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "504": {"description": "Gateway Timeout", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "description": "Always 200; status is \"error\" until the model has loaded.",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Model health",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.HealthResponse"}}
                }
            }
        },
        "/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Service status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 503},
                "detail": {"type": "string", "example": "Model is not available. Please check server logs."},
                "error": {"type": "string", "example": "Model is not available. Please check server logs."}
            }
        },
        "types.GenerateRequest": {
            "type": "object",
            "properties": {
                "images": {"type": "array", "items": {"type": "string"}},
                "max_tokens": {"type": "integer", "example": 256},
                "text": {"type": "string", "example": "Solve dy/dx = 3y with y(0) = 2."}
            }
        },
        "types.GenerateResponse": {
            "type": "object",
            "properties": {
                "finish_reason": {"type": "string", "example": "stop"},
                "generated_text": {"type": "string"},
                "id": {"type": "string"},
                "model_name": {"type": "string", "example": "google/gemma-3-4b-it"},
                "usage": {"$ref": "#/definitions/types.Usage"}
            }
        },
        "types.HealthResponse": {
            "type": "object",
            "properties": {
                "detail": {"type": "string"},
                "model_name": {"type": "string", "example": "google/gemma-3-4b-it"},
                "status": {"type": "string", "example": "ok"}
            }
        },
        "types.Model": {
            "type": "object",
            "properties": {
                "file": {"type": "string", "example": "gemma-3-4b-it-q4_0.gguf"},
                "name": {"type": "string", "example": "google/gemma-3-4b-it"},
                "path": {"type": "string"},
                "quant": {"type": "string", "example": "q4_0"},
                "repo": {"type": "string", "example": "google/gemma-3-4b-it-qat-q4_0-gguf"}
            }
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "backend": {"type": "string"},
                "device": {"type": "string"},
                "error": {"type": "string"},
                "generations_total": {"type": "integer"},
                "inflight": {"type": "integer"},
                "load_duration_ms": {"type": "integer"},
                "loaded_at_unix": {"type": "integer"},
                "max_concurrency": {"type": "integer"},
                "max_new_tokens": {"type": "integer"},
                "max_queue_depth": {"type": "integer"},
                "model": {"$ref": "#/definitions/types.Model"},
                "model_name": {"type": "string"},
                "quantization": {"type": "string"},
                "queue_len": {"type": "integer"},
                "server_time_unix": {"type": "integer"},
                "state": {"type": "string"},
                "uptime_seconds": {"type": "integer"}
            }
        },
        "types.Usage": {
            "type": "object",
            "properties": {
                "completion_tokens": {"type": "integer"},
                "prompt_tokens": {"type": "integer"},
                "total_tokens": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "gemmad API",
	Description:      "HTTP API serving a Gemma model for text generation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
