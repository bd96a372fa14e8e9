package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Report Card API",
        "description": "Per-student, per-year grade records",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "ReportCards", "description": "Report card lifecycle and rendering"},
        {"name": "Grades", "description": "Grade entries of a report card"}
    ],
    "paths": {
        "/report-cards": {
            "get": {
                "tags": ["ReportCards"],
                "summary": "List report cards",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["ReportCards"],
                "summary": "Create report card",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateReportCardRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Report card already exists", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/report-cards/{studentId}/{year}": {
            "parameters": [
                {"name": "studentId", "in": "path", "required": true, "type": "integer"},
                {"name": "year", "in": "path", "required": true, "type": "integer"}
            ],
            "get": {
                "tags": ["ReportCards"],
                "summary": "Get report card",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["ReportCards"],
                "summary": "Delete report card",
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/report-cards/{studentId}/{year}/text": {
            "parameters": [
                {"name": "studentId", "in": "path", "required": true, "type": "integer"},
                {"name": "year", "in": "path", "required": true, "type": "integer"}
            ],
            "get": {
                "tags": ["ReportCards"],
                "summary": "Render report card as plain text",
                "produces": ["text/plain"],
                "responses": {
                    "200": {"description": "Rendered card", "schema": {"type": "string"}}
                }
            }
        },
        "/report-cards/{studentId}/{year}/export": {
            "parameters": [
                {"name": "studentId", "in": "path", "required": true, "type": "integer"},
                {"name": "year", "in": "path", "required": true, "type": "integer"}
            ],
            "get": {
                "tags": ["ReportCards"],
                "summary": "Download report card",
                "produces": ["text/plain", "text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["text", "csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}}
                }
            }
        },
        "/report-cards/{studentId}/{year}/date-format": {
            "parameters": [
                {"name": "studentId", "in": "path", "required": true, "type": "integer"},
                {"name": "year", "in": "path", "required": true, "type": "integer"}
            ],
            "put": {
                "tags": ["ReportCards"],
                "summary": "Change the date layout of a report card",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetDateFormatRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/report-cards/{studentId}/{year}/grades": {
            "parameters": [
                {"name": "studentId", "in": "path", "required": true, "type": "integer"},
                {"name": "year", "in": "path", "required": true, "type": "integer"}
            ],
            "post": {
                "tags": ["Grades"],
                "summary": "Record a grade",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GradeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Recorded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Grade already exists", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Grades"],
                "summary": "Correct a grade",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GradeRequest"}}
                ],
                "responses": {
                    "200": {"description": "Corrected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Subject or date not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Grades"],
                "summary": "Delete a grade",
                "parameters": [
                    {"name": "subject", "in": "query", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "required": true, "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Subject or date not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateReportCardRequest": {
            "type": "object",
            "properties": {
                "studentId": {"type": "integer"},
                "year": {"type": "integer"},
                "dateFormat": {"type": "string", "example": "01/02/2006"}
            },
            "required": ["studentId", "year"]
        },
        "GradeRequest": {
            "type": "object",
            "properties": {
                "subject": {"type": "string"},
                "date": {"type": "string", "format": "date"},
                "grade": {"type": "integer"}
            },
            "required": ["subject", "date", "grade"]
        },
        "SetDateFormatRequest": {
            "type": "object",
            "properties": {
                "layout": {"type": "string", "example": "2006-01-02"}
            },
            "required": ["layout"]
        },
        "GradeOutcome": {
            "type": "object",
            "properties": {
                "reason": {"type": "string", "enum": ["RECORDED", "CORRECTED", "DELETED", "DUPLICATE_ENTRY", "SUBJECT_NOT_FOUND", "DATE_NOT_FOUND"]},
                "subject": {"type": "string"},
                "date": {"type": "string", "format": "date"},
                "grade": {"type": "integer"},
                "previous": {"type": "integer"},
                "notice": {"type": "string"}
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
