package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Bid Portal Archiver API",
        "description": "Archives completed construction projects and serves the archive",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Archives", "description": "Project archival and archived project reads"},
        {"name": "Operations", "description": "Health, readiness and metrics"}
    ],
    "paths": {
        "/projects/{id}/archive": {
            "post": {
                "tags": ["Archives"],
                "summary": "Archive a project",
                "description": "Snapshots the project graph into the archive schema, removes its files and deletes the live project. Roles: OWNER, COORDINATOR, ADMIN.",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string", "format": "uuid"},
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/ArchiveProjectRequest"}}
                ],
                "responses": {
                    "200": {"description": "Archived", "schema": {"$ref": "#/definitions/ArchiveResultEnvelope"}},
                    "400": {"description": "Invalid project id", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Project not found", "schema": {"$ref": "#/definitions/ArchiveResultEnvelope"}},
                    "409": {"description": "Archival already in progress", "schema": {"$ref": "#/definitions/ArchiveResultEnvelope"}},
                    "500": {"description": "Archive write failed", "schema": {"$ref": "#/definitions/ArchiveResultEnvelope"}}
                }
            }
        },
        "/archives/projects": {
            "get": {
                "tags": ["Archives"],
                "summary": "List archived projects",
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "archivedBy", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/archives/projects/{id}": {
            "get": {
                "tags": ["Archives"],
                "summary": "Get archived project with categories, tasks, bids, ratings and documents",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/archives/projects/{id}/export": {
            "get": {
                "tags": ["Archives"],
                "summary": "Export archived project report",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Report file", "schema": {"type": "file"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/health": {
            "get": {
                "tags": ["Operations"],
                "summary": "Health check",
                "security": [],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Operations"],
                "summary": "Readiness check",
                "security": [],
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A dependency is unavailable"}
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": ["Operations"],
                "summary": "Prometheus metrics",
                "security": [],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "ArchiveProjectRequest": {
            "type": "object",
            "properties": {
                "reason": {"type": "string", "maxLength": 500}
            }
        },
        "ArchiveStats": {
            "type": "object",
            "properties": {
                "totalTasks": {"type": "integer"},
                "totalBids": {"type": "integer"},
                "totalValue": {"type": "number"},
                "filesDeleted": {"type": "integer"}
            }
        },
        "AssetDeletion": {
            "type": "object",
            "properties": {
                "kind": {"type": "string", "enum": ["project_image", "gantt_chart", "document"]},
                "bucket": {"type": "string"},
                "key": {"type": "string"},
                "status": {"type": "string", "enum": ["deleted", "failed"]},
                "reason": {"type": "string"}
            }
        },
        "ArchiveResult": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "archivedProjectId": {"type": "string"},
                "stats": {"$ref": "#/definitions/ArchiveStats"},
                "error": {"type": "string"},
                "errorCode": {"type": "string"},
                "warnings": {"type": "array", "items": {"type": "string"}},
                "assets": {"type": "array", "items": {"$ref": "#/definitions/AssetDeletion"}}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
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
        },
        "ArchiveResultEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/ArchiveResult"},
                "error": {"$ref": "#/definitions/APIError"}
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
