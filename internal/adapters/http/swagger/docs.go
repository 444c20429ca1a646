package swagger

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
        "/healthz": {
            "get": {
                "description": "Prometheus exposition of the tracker metrics.",
                "produces": ["text/plain"],
                "tags": ["status"],
                "summary": "Metrics",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["status"],
                "summary": "Tracker counters and cursors",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.statsResponse"}}
                }
            }
        },
        "/leaderboard": {
            "get": {
                "produces": ["application/json"],
                "tags": ["leaderboards"],
                "summary": "Ranked board from the latest published view",
                "parameters": [
                    {
                        "type": "string",
                        "description": "death, survival, hours or skill_<Skill>",
                        "name": "type",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "description": "rows to return, defaults to 10",
                        "name": "limit",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.leaderboardResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/players/{name}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["players"],
                "summary": "One player's aggregate record",
                "parameters": [
                    {
                        "type": "string",
                        "description": "in-game username",
                        "name": "name",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/players.Record"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.errorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "api.statsResponse": {
            "type": "object",
            "properties": {
                "started_at": {"type": "string", "format": "date-time"},
                "cycles": {"type": "integer"},
                "failed_cycles": {"type": "integer"},
                "consecutive_failures": {"type": "integer"},
                "events_processed": {"type": "integer"},
                "events_duplicate": {"type": "integer"},
                "decode_errors": {"type": "integer"},
                "handler_errors": {"type": "integer"},
                "reports_sent": {"type": "integer"},
                "rotations": {"type": "integer"},
                "saves": {"type": "integer"},
                "tracked_players": {"type": "integer"},
                "dedupe_entries": {"type": "integer"},
                "unsaved_changes": {"type": "boolean"},
                "last_cycle_at": {"type": "string", "format": "date-time"},
                "last_error": {"type": "string"},
                "cursors": {"type": "object", "additionalProperties": {"type": "integer"}},
                "published_at": {"type": "string", "format": "date-time"}
            }
        },
        "api.leaderboardRow": {
            "type": "object",
            "properties": {
                "rank": {"type": "integer"},
                "player": {"type": "string"},
                "value": {"type": "number"},
                "deaths": {"type": "integer"},
                "alive": {"type": "boolean"},
                "steam_id": {"type": "string"}
            }
        },
        "api.leaderboardResponse": {
            "type": "object",
            "properties": {
                "board": {"type": "string"},
                "rows": {"type": "array", "items": {"$ref": "#/definitions/api.leaderboardRow"}},
                "tracked_players": {"type": "integer"}
            }
        },
        "players.Character": {
            "type": "object",
            "properties": {
                "alive": {"type": "boolean"},
                "spawn_time": {"type": "string", "x-nullable": true},
                "hours_survived": {"type": "number"},
                "last_location": {"type": "array", "items": {"type": "number"}},
                "skills": {"type": "object", "additionalProperties": {"type": "integer"}}
            }
        },
        "players.Lifetime": {
            "type": "object",
            "properties": {
                "total_hours_survived": {"type": "number"},
                "longest_survival": {"type": "number"},
                "skill_milestones": {"type": "object", "additionalProperties": {"type": "integer"}}
            }
        },
        "players.Record": {
            "type": "object",
            "properties": {
                "player": {"type": "string"},
                "steam_id": {"type": "string"},
                "total_deaths": {"type": "integer"},
                "total_respawns": {"type": "integer"},
                "current_character": {"$ref": "#/definitions/players.Character"},
                "lifetime_stats": {"$ref": "#/definitions/players.Lifetime"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{ //nolint:gochecknoglobals // registered with swag at init
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "pzwatch status API",
	Description:      "Read-only view of the Project Zomboid tracker: counters, leaderboards and player records.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() { //nolint:gochecknoinits // swag registry
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
