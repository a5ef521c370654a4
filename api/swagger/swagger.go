package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "PopSpot Calendar API",
        "description": "Calendar query state, month grids and filtered event lists for exhibitions and pop-ups.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "tags": [
        {"name": "Calendar", "description": "Month grids, date lists and state transitions"},
        {"name": "Events", "description": "Popular events and exports"},
        {"name": "Share", "description": "Signed links to calendar states"},
        {"name": "Observability", "description": "Probes and metrics"}
    ],
    "paths": {
        "/calendar/month": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Month calendar grid",
                "description": "Malformed parameters fall back to defaults. A failed fetch returns the empty grid with meta.degraded=true.",
                "parameters": [
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "month", "in": "query", "type": "string", "description": "1-12 or YYYY-MM"},
                    {"name": "regionId", "in": "query", "type": "string"},
                    {"name": "categories", "in": "query", "type": "string", "description": "exhibition,popup"},
                    {"name": "popupSubcategory", "in": "query", "type": "string"},
                    {"name": "exhibitionSubcategory", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/calendar/simple": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Compact calendar grid",
                "parameters": [
                    {"name": "month", "in": "query", "type": "string", "description": "YYYY-MM"},
                    {"name": "filters", "in": "query", "type": "string", "description": "event,wishlist"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/calendar/events": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Events of a date",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string", "required": true, "description": "YYYY-MM-DD"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "size", "in": "query", "type": "integer"},
                    {"name": "regions", "in": "query", "type": "string"},
                    {"name": "popupCategories", "in": "query", "type": "string"},
                    {"name": "exhibitionCategories", "in": "query", "type": "string"},
                    {"name": "price", "in": "query", "type": "string", "description": "free,paid"},
                    {"name": "amenities", "in": "query", "type": "string", "description": "parking,petFriendly"},
                    {"name": "startDate", "in": "query", "type": "string"},
                    {"name": "endDate", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "description": "all,ongoing,upcoming,ended"},
                    {"name": "q", "in": "query", "type": "string"},
                    {"name": "sort", "in": "query", "type": "string", "description": "popular,views,recommended,latest,deadline,price"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/calendar/state/transitions": {
            "post": {
                "tags": ["Calendar"],
                "summary": "Apply a calendar state transition",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TransitionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calendar/share": {
            "post": {
                "tags": ["Share"],
                "summary": "Create a share link",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ShareRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "501": {"description": "Share links not configured", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calendar/share/{token}": {
            "get": {
                "tags": ["Share"],
                "summary": "Open a share link",
                "parameters": [
                    {"name": "token", "in": "path", "type": "string", "required": true},
                    {"name": "strict", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid token in strict mode", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/events/popular": {
            "get": {
                "tags": ["Events"],
                "summary": "Popular events",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/events/export": {
            "get": {
                "tags": ["Events"],
                "summary": "Export filtered events",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "description": "csv or pdf"},
                    {"name": "date", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Unknown format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Event source unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "TransitionRequest": {
            "type": "object",
            "required": ["action"],
            "properties": {
                "query": {"type": "string"},
                "action": {"type": "string"},
                "value": {"type": "string"}
            }
        },
        "ShareRequest": {
            "type": "object",
            "properties": {
                "query": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
