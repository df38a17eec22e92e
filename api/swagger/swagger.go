package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Attendance Report API",
        "description": "Attendance aggregation and reporting engine",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Reports", "description": "Attendance aggregation and reporting"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unavailable"}
                }
            }
        },
        "/api/v1/reports/attendance": {
            "get": {
                "tags": ["Reports"],
                "summary": "Build the attendance report",
                "description": "Aggregates attendance events into per-student, per-subject and per-course statistics. All filters are optional; a date range applies only when both bounds are supplied.",
                "parameters": [
                    {"name": "courseId", "in": "query", "type": "string"},
                    {"name": "subjectId", "in": "query", "type": "string"},
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "startDate", "in": "query", "type": "string", "format": "date"},
                    {"name": "endDate", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {
                        "description": "Assembled report",
                        "schema": {"$ref": "#/definitions/AttendanceReport"}
                    },
                    "400": {"description": "Malformed date filter"}
                }
            }
        },
        "/api/v1/reports/attendance/export": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download the attendance report",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"},
                    {"name": "courseId", "in": "query", "type": "string"},
                    {"name": "subjectId", "in": "query", "type": "string"},
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "startDate", "in": "query", "type": "string", "format": "date"},
                    {"name": "endDate", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "Rendered document"},
                    "400": {"description": "Unsupported format or malformed date filter"}
                }
            }
        }
    },
    "definitions": {
        "AttendanceReport": {
            "type": "object",
            "properties": {
                "attendance": {"type": "array", "items": {"type": "object"}},
                "studentStats": {"type": "array", "items": {"type": "object"}},
                "subjectStats": {"type": "array", "items": {"type": "object"}},
                "courseStats": {"type": "array", "items": {"type": "object"}},
                "filters": {"type": "object"}
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
