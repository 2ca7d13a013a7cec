// Package docs registers the OpenAPI document served at /swagger.
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
        "/events": {
            "get": {"tags": ["events"], "summary": "List events", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["events"], "summary": "Create an event", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/events/{id}": {
            "get": {"tags": ["events"], "summary": "Get an event", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/events/{id}/tiers": {
            "get": {"tags": ["tiers"], "summary": "List tiers of an event", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["tiers"], "summary": "Create a ticket tier for an event", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}
        },
        "/tiers/{id}": {
            "get": {"tags": ["tiers"], "summary": "Get a ticket tier", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "patch": {"tags": ["tiers"], "summary": "Patch a ticket tier", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}},
            "delete": {"tags": ["tiers"], "summary": "Cancel (soft delete) a ticket tier", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/tiers/{id}/availability": {
            "get": {"tags": ["availability"], "summary": "Remaining quantity of a tier and its price bands", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "boolean", "name": "fresh", "in": "query"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/admin/reconcile": {
            "post": {"tags": ["availability"], "summary": "Recompute availability for every tier", "responses": {"200": {"description": "OK"}}}
        },
        "/bookings": {
            "get": {"tags": ["bookings"], "summary": "List bookings", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["bookings"], "summary": "Book tickets from a tier price band", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}}
        },
        "/bookings/{id}": {
            "get": {"tags": ["bookings"], "summary": "Get a booking", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/bookings/{id}/confirm": {
            "post": {"tags": ["bookings"], "summary": "Confirm a pending booking", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/bookings/{id}/complete": {
            "post": {"tags": ["bookings"], "summary": "Mark a confirmed booking as completed", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/bookings/{id}/cancel": {
            "post": {"tags": ["bookings"], "summary": "Cancel a booking and release its tickets", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}}
        },
        "/analytics/events/{id}": {
            "get": {"tags": ["analytics"], "summary": "Ticket sales per tier for an event", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}
        },
        "/analytics/bookings/daily": {
            "get": {"tags": ["analytics"], "summary": "Daily booking counts and revenue", "parameters": [{"type": "integer", "name": "days", "in": "query"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Ticketing Ledger API",
	Description:      "Ticket tiers, availability, and the booking ledger.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
