// Package docs holds the OpenAPI description served by /swagger when
// SWAGGER_ENABLED is set. It mirrors the swag annotations on the handlers.
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
		"/health": {
			"get": {
				"tags": [
					"Health"
				],
				"summary": "Liveness probe",
				"operationId": "health",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.HealthResponse"
						}
					}
				}
			}
		},
		"/solutions": {
			"post": {
				"tags": [
					"Solutions"
				],
				"summary": "Submit or update a solution",
				"description": "Upserts the submission for (problemId, username). The original createdAt is preserved.",
				"operationId": "submitSolution",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"in": "body",
						"name": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handlers.SolutionRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/domain.Solution"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.BareErrorResponse"
						}
					},
					"429": {
						"description": "Too Many Requests",
						"schema": {
							"$ref": "#/definitions/handlers.BareErrorResponse"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handlers.BareErrorResponse"
						}
					}
				}
			},
			"get": {
				"tags": [
					"Solutions"
				],
				"summary": "List solutions for a problem",
				"operationId": "listSolutions",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"in": "query",
						"name": "problemId",
						"required": true,
						"description": "Problem identifier"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/domain.SolutionSummary"
							}
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.BareErrorResponse"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handlers.BareErrorResponse"
						}
					}
				}
			},
			"options": {
				"tags": [
					"Solutions"
				],
				"summary": "CORS preflight",
				"operationId": "solutionsPreflight",
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/api/items": {
			"get": {
				"tags": [
					"Items"
				],
				"summary": "List items",
				"operationId": "listItems",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.SuccessResponse"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"post": {
				"tags": [
					"Items"
				],
				"summary": "Create an item",
				"operationId": "createItem",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"in": "header",
						"name": "Idempotency-Key",
						"description": "Replays the original item for a repeated key"
					},
					{
						"in": "body",
						"name": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handlers.CreateItemRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/handlers.SuccessResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"429": {
						"description": "Too Many Requests",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/items/{id}": {
			"get": {
				"tags": [
					"Items"
				],
				"summary": "Get an item",
				"operationId": "getItem",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"in": "path",
						"name": "id",
						"required": true,
						"description": "Item ID"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.SuccessResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"domain.Solution": {
			"type": "object",
			"properties": {
				"problemId": {
					"type": "string"
				},
				"username": {
					"type": "string"
				},
				"solutionLink": {
					"type": "string"
				},
				"createdAt": {
					"type": "string"
				},
				"updatedAt": {
					"type": "string"
				}
			}
		},
		"domain.SolutionSummary": {
			"type": "object",
			"properties": {
				"username": {
					"type": "string"
				},
				"solutionLink": {
					"type": "string"
				},
				"createdAt": {
					"type": "string"
				}
			}
		},
		"handlers.SolutionRequest": {
			"type": "object",
			"properties": {
				"problemId": {
					"type": "string",
					"example": "42"
				},
				"username": {
					"type": "string",
					"example": "alice"
				},
				"solutionLink": {
					"type": "string",
					"example": "https://example.com/solution"
				}
			},
			"required": [
				"problemId",
				"username",
				"solutionLink"
			]
		},
		"handlers.CreateItemRequest": {
			"type": "object",
			"properties": {
				"name": {
					"type": "string",
					"example": "My Item"
				},
				"data": {
					"description": "Any JSON value"
				}
			},
			"required": [
				"name"
			]
		},
		"handlers.SuccessResponse": {
			"type": "object",
			"properties": {
				"success": {
					"type": "boolean",
					"example": true
				},
				"count": {
					"type": "integer",
					"example": 1
				},
				"data": {},
				"message": {
					"type": "string",
					"example": "Item created successfully"
				},
				"timestamp": {
					"type": "string",
					"example": "2024-05-01T12:00:00.000Z"
				}
			}
		},
		"handlers.ErrorResponse": {
			"type": "object",
			"properties": {
				"success": {
					"type": "boolean",
					"example": false
				},
				"error": {
					"type": "string"
				},
				"message": {
					"type": "string"
				},
				"hint": {
					"type": "string"
				},
				"path": {
					"type": "string"
				},
				"timestamp": {
					"type": "string"
				}
			}
		},
		"handlers.BareErrorResponse": {
			"type": "object",
			"properties": {
				"error": {
					"type": "string"
				},
				"message": {
					"type": "string"
				},
				"hint": {
					"type": "string"
				}
			}
		},
		"handlers.HealthResponse": {
			"type": "object",
			"properties": {
				"success": {
					"type": "boolean"
				},
				"status": {
					"type": "string",
					"example": "healthy"
				},
				"timestamp": {
					"type": "string"
				},
				"uptime": {
					"type": "number"
				},
				"environment": {
					"type": "string"
				}
			}
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:		  "1.0",
	Host:			 "",
	BasePath:		 "/",
	Schemes:		  []string{},
	Title:			"Solutions & Items API",
	Description:	  "Solution submissions (bare JSON) and items (enveloped JSON).",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:		"{{",
	RightDelim:	   "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
