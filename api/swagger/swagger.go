package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Campus Registrar API",
        "description": "Course catalog and enrollment services",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Courses", "description": "Course catalog CRUD"},
        {"name": "Enrollments", "description": "Enrollment records and orchestration"}
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
                    "503": {"description": "Not ready"}
                }
            }
        },
        "/api/v1/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "Stream the catalog as server-sent events",
                "produces": ["text/event-stream"],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Courses"],
                "summary": "Add a course to the catalog",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload"}
                }
            }
        },
        "/api/v1/courses/{courseId}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Get one course",
                "parameters": [{"name": "courseId", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"},
                    "422": {"description": "Invalid identifier"}
                }
            },
            "put": {
                "tags": ["Courses"],
                "summary": "Update a course",
                "parameters": [{"name": "courseId", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"},
                    "422": {"description": "Invalid identifier"}
                }
            },
            "delete": {
                "tags": ["Courses"],
                "summary": "Delete a course",
                "parameters": [{"name": "courseId", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"},
                    "422": {"description": "Invalid identifier"}
                }
            }
        },
        "/api/v1/enrollments": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "Stream all enrollments as server-sent events",
                "produces": ["text/event-stream"],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll a student in a course",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload"},
                    "404": {"description": "Student or course not found"},
                    "422": {"description": "Invalid identifier"},
                    "502": {"description": "Upstream unavailable"}
                }
            }
        },
        "/api/v1/enrollments/export": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "Export the enrollment roster",
                "parameters": [{"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/enrollments/{enrollmentId}": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "Get one enrollment",
                "parameters": [{"name": "enrollmentId", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"},
                    "422": {"description": "Invalid identifier"}
                }
            },
            "put": {
                "tags": ["Enrollments"],
                "summary": "Update an enrollment",
                "parameters": [{"name": "enrollmentId", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"},
                    "422": {"description": "Invalid identifier"},
                    "502": {"description": "Upstream unavailable"}
                }
            },
            "delete": {
                "tags": ["Enrollments"],
                "summary": "Delete an enrollment",
                "parameters": [{"name": "enrollmentId", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"},
                    "422": {"description": "Invalid identifier"}
                }
            }
        }
    },
    "definitions": {
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
