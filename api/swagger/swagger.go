package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Campus Hub Scheduling API",
        "description": "Classroom assignment, schedule exceptions and weekly schedule resolution",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Rooms", "description": "Room availability search"},
        {"name": "Schedule", "description": "Room assignment and weekly schedule"},
        {"name": "Exceptions", "description": "Schedule exception workflow"}
    ],
    "paths": {
        "/rooms/available": {
            "get": {
                "tags": ["Rooms"],
                "summary": "List available rooms for a day and time slot",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "dayOfWeek", "in": "query", "type": "integer", "required": true, "description": "1 = Sunday .. 7 = Saturday"},
                    {"name": "timeSlotId", "in": "query", "type": "string", "required": true},
                    {"name": "date", "in": "query", "type": "string", "description": "YYYY-MM-DD; enables freed-room detection"},
                    {"name": "capacity", "in": "query", "type": "integer"},
                    {"name": "classRoomTypeId", "in": "query", "type": "string"},
                    {"name": "departmentId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid criteria", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/assign": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Assign a room to a recurring schedule slot",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignRoomRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Room conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/unassign": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Revert a schedule slot to pending",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UnassignRoomRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/weekly": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Resolve the effective schedule for one week",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "weekStartDate", "in": "query", "type": "string", "required": true, "description": "Any date inside the requested week (YYYY-MM-DD)"},
                    {"name": "departmentId", "in": "query", "type": "string"},
                    {"name": "classId", "in": "query", "type": "string"},
                    {"name": "teacherId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/stats": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Aggregate room assignment statistics",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule-exceptions": {
            "post": {
                "tags": ["Exceptions"],
                "summary": "Report a schedule exception",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateExceptionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Target conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule-exceptions/{id}": {
            "put": {
                "tags": ["Exceptions"],
                "summary": "Correct an exception record",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateExceptionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Exceptions"],
                "summary": "Delete an exception record",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/schedule-exceptions/{id}/approve": {
            "post": {
                "tags": ["Exceptions"],
                "summary": "Approve a pending exception",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "AssignRoomRequest": {
            "type": "object",
            "required": ["schedule_id", "room_id"],
            "properties": {
                "schedule_id": {"type": "string"},
                "room_id": {"type": "string"}
            }
        },
        "UnassignRoomRequest": {
            "type": "object",
            "required": ["schedule_id"],
            "properties": {
                "schedule_id": {"type": "string"}
            }
        },
        "CreateExceptionRequest": {
            "type": "object",
            "required": ["exception_date", "exception_type", "reason"],
            "properties": {
                "class_schedule_id": {"type": "string"},
                "class_id": {"type": "string"},
                "exception_date": {"type": "string", "format": "date-time"},
                "exception_type": {"type": "string", "enum": ["CANCELLED", "MOVED", "SUBSTITUTE", "ROOM_CHANGE", "EXAM"]},
                "moved_to_date": {"type": "string", "format": "date-time"},
                "moved_to_time_slot_id": {"type": "string"},
                "moved_to_room_id": {"type": "string"},
                "substitute_teacher_id": {"type": "string"},
                "reason": {"type": "string"}
            }
        },
        "UpdateExceptionRequest": {
            "type": "object",
            "required": ["exception_date", "reason"],
            "properties": {
                "exception_date": {"type": "string", "format": "date-time"},
                "moved_to_date": {"type": "string", "format": "date-time"},
                "moved_to_time_slot_id": {"type": "string"},
                "moved_to_room_id": {"type": "string"},
                "substitute_teacher_id": {"type": "string"},
                "reason": {"type": "string"}
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
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"}
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
