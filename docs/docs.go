// Package docs registers the OpenAPI document served at /swagger/*.
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/api/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a new user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/registerRequest"}}],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Login",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/loginRequest"}}],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/check-username": {
            "get": {
                "tags": ["auth"],
                "summary": "Check username availability",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "in": "query", "name": "username", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "503": {"description": "Service Unavailable"}}
            }
        },
        "/api/user/me": {
            "get": {"tags": ["user"], "summary": "Current user profile", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}},
            "put": {"tags": ["user"], "summary": "Update current user profile", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/api/user/detail/{id}": {
            "get": {"tags": ["user"], "summary": "Public user profile", "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/api/need": {
            "get": {"tags": ["need"], "summary": "List needs", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["need"], "summary": "Create need", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "401": {"description": "Unauthorized"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/api/need/my-list": {
            "get": {"tags": ["need"], "summary": "List my needs", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/need/detail/{id}": {
            "get": {"tags": ["need"], "summary": "Get need", "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/api/need/{id}": {
            "put": {"tags": ["need"], "summary": "Update need", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}},
            "delete": {"tags": ["need"], "summary": "Delete need", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}], "responses": {"204": {"description": "No Content"}, "409": {"description": "Conflict"}}}
        },
        "/api/need/{id}/cancel": {
            "post": {"tags": ["need"], "summary": "Cancel need", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/api/need/{id}/services": {
            "get": {"tags": ["need"], "summary": "Offers for need", "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/api/service-self": {
            "get": {"tags": ["service"], "summary": "List service offers", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["service"], "summary": "Create service offer", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}
        },
        "/api/service-self/my-list": {
            "get": {"tags": ["service"], "summary": "List my service offers", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/service-self/detail/{id}": {
            "get": {"tags": ["service"], "summary": "Get service offer", "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/api/service-self/{id}": {
            "put": {"tags": ["service"], "summary": "Update service offer", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}},
            "delete": {"tags": ["service"], "summary": "Delete service offer", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}], "responses": {"204": {"description": "No Content"}, "409": {"description": "Conflict"}}}
        },
        "/api/service-self/{id}/accept": {
            "post": {"tags": ["service"], "summary": "Accept service offer", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}}}
        },
        "/api/service-self/{id}/reject": {
            "post": {"tags": ["service"], "summary": "Reject service offer", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}}}
        },
        "/api/admin/stats": {
            "get": {"tags": ["admin"], "summary": "Monthly statistics", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/api/route-guard": {
            "get": {
                "tags": ["navigation"],
                "summary": "Route guard decision",
                "parameters": [
                    {"type": "string", "in": "query", "name": "to", "required": true},
                    {"type": "string", "in": "query", "name": "from"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "errorResponse": {"type": "object", "properties": {"error": {"type": "string"}}},
        "registerRequest": {
            "type": "object",
            "required": ["username", "password", "phone"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"},
                "realName": {"type": "string"},
                "phone": {"type": "string"}
            }
        },
        "loginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Service Market API",
	Description:      "Needs, service offers and sessions for the community service marketplace.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
