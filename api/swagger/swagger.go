package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Stundenplan API",
        "description": "Automatic timetable generation for a German Grundschule",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Teachers", "description": "Teacher roster management"},
        {"name": "Classes", "description": "Classes and weekly subject demand"},
        {"name": "Subjects", "description": "Subject catalog"},
        {"name": "TimeSlots", "description": "Weekly grid of periods and breaks"},
        {"name": "Availability", "description": "Teacher availability windows"},
        {"name": "Qualifications", "description": "Teacher-subject qualifications"},
        {"name": "Schedule", "description": "Schedule entries, validation, conflicts and exports"},
        {"name": "Solver", "description": "Constraint-based timetable generation"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "description": "Served at the server root (/health), not under basePath.",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/schedule/generate": {
            "post": {
                "tags": ["Solver"],
                "summary": "Generate a weekly schedule",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "408": {"description": "Time budget exhausted"},
                    "422": {"description": "No feasible schedule"}
                }
            }
        },
        "/schedule/optimize": {
            "post": {
                "tags": ["Solver"],
                "summary": "Optimize the current schedule holding all entries fixed",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/validate": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Validate one candidate entry",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScheduleEntryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/conflicts": {
            "get": {
                "tags": ["Schedule"],
                "summary": "List every conflict in the persisted schedule",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "GenerateScheduleRequest": {
            "type": "object",
            "properties": {
                "preserve_existing": {"type": "boolean"},
                "clear_existing": {"type": "boolean"},
                "time_limit_seconds": {"type": "integer", "minimum": 1, "maximum": 3600},
                "reference_date": {"type": "string", "format": "date"},
                "random_seed": {"type": "integer"}
            }
        },
        "ScheduleEntryRequest": {
            "type": "object",
            "required": ["class_id", "teacher_id", "subject_id", "timeslot_id"],
            "properties": {
                "class_id": {"type": "integer"},
                "teacher_id": {"type": "integer"},
                "subject_id": {"type": "integer"},
                "timeslot_id": {"type": "integer"},
                "room": {"type": "string"},
                "week_type": {"type": "string", "enum": ["ALL", "A", "B"]}
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
