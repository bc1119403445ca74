// Package docs registers the OpenAPI document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Service health",
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/api/queues": {
            "get": {
                "produces": ["application/json"],
                "tags": ["api"],
                "summary": "List queues",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/user_tickets": {
            "get": {
                "produces": ["application/json"],
                "tags": ["api"],
                "summary": "Tickets submitted by the current user",
                "parameters": [
                    {"type": "integer", "name": "page", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/api/tickets": {
            "get": {
                "produces": ["application/json"],
                "tags": ["api"],
                "summary": "List all tickets",
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["api"],
                "summary": "Create a ticket",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/tickets/submit": {
            "post": {
                "consumes": ["application/json", "multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["tickets"],
                "summary": "Submit a ticket",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        }
    },
    "securityDefinitions": {
        "Bearer": {
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
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Helpdesk API",
	Description:      "Ticket tracking with queues, follow-ups, e-mail intake and a knowledge base.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
