// Package docs holds the OpenAPI document for the Therabot HTTP API in the
// format produced by swag init.
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
        "/api/chat": {
            "post": {
                "description": "Runs one chat turn. Provider failures are answered with a fallback reply, never an error.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["chat"],
                "summary": "Send a message to Therabot",
                "parameters": [
                    {
                        "description": "Message",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.ChatRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.Envelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.Envelope"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.Envelope"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.HealthResponse"}}
                }
            }
        },
        "/logout": {
            "get": {
                "tags": ["auth"],
                "summary": "End the browser session",
                "responses": {
                    "302": {"description": "Found"}
                }
            }
        },
        "/signin": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign in",
                "parameters": [
                    {
                        "description": "Credentials",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.CredentialsRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.Envelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.Envelope"}}
                }
            }
        },
        "/signup": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Create an account",
                "parameters": [
                    {
                        "description": "Credentials",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.CredentialsRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.Envelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/dto.Envelope"}}
                }
            }
        }
    },
    "definitions": {
        "dto.ChatRequest": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "I have been feeling anxious lately"}
            }
        },
        "dto.CredentialsRequest": {
            "type": "object",
            "properties": {
                "password": {"type": "string", "example": "secret1"},
                "username": {"type": "string", "example": "alice"}
            }
        },
        "dto.Envelope": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "response": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "dto.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "ok"},
                "time": {"type": "string", "example": "2025-11-01T10:00:00Z"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Therabot API",
	Description:      "Account, session and chat endpoints of the Therabot web app.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
