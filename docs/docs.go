// Package docs holds the OpenAPI document served at /swagger. Regenerate with
// `swag init` after changing handler annotations.
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
        "/forecast": {
            "get": {
                "description": "Five day, daytime (06:00-20:00) hourly forecast with a daily bike advisory. Pass either location or lat and lon.",
                "produces": ["application/json"],
                "tags": ["Forecast"],
                "summary": "Get a bike forecast",
                "parameters": [
                    {"type": "string", "description": "Free-text location", "name": "location", "in": "query"},
                    {"type": "number", "description": "Latitude", "name": "lat", "in": "query"},
                    {"type": "number", "description": "Longitude", "name": "lon", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.WeatherData"}},
                    "400": {"description": "Missing or invalid input", "schema": {"$ref": "#/definitions/api.Response"}},
                    "404": {"description": "Empty model response", "schema": {"$ref": "#/definitions/api.Response"}},
                    "502": {"description": "Upstream model failure", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/trails": {
            "get": {
                "description": "Lists popular bike trails near a location. Trails whose name matches a Google Maps grounding result carry a mapsUri.",
                "produces": ["application/json"],
                "tags": ["Trails"],
                "summary": "Find bike trails",
                "parameters": [
                    {"type": "string", "description": "Free-text location", "name": "location", "in": "query", "required": true},
                    {"type": "number", "description": "Latitude used to bias the maps search", "name": "lat", "in": "query"},
                    {"type": "number", "description": "Longitude used to bias the maps search", "name": "lon", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/types.BikeTrail"}}},
                    "400": {"description": "Missing or invalid input", "schema": {"$ref": "#/definitions/api.Response"}},
                    "404": {"description": "No trails found", "schema": {"$ref": "#/definitions/api.Response"}},
                    "502": {"description": "Upstream model failure", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/preferences/location": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Preferences"],
                "summary": "Get the saved location",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/preferences.LocationPreference"}},
                    "404": {"description": "Nothing saved", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "tags": ["Preferences"],
                "summary": "Save a location",
                "parameters": [
                    {"description": "Location to remember", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/preferences.LocationPreference"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.Response"}},
                    "507": {"description": "Does not fit in the preference cookie", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            },
            "delete": {
                "tags": ["Preferences"],
                "summary": "Forget the saved location",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/preferences/background": {
            "put": {
                "description": "Reads the image as a data URI. The client keeps it in its own local storage under storageKey.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Preferences"],
                "summary": "Convert a background image",
                "parameters": [
                    {"type": "file", "description": "Image file", "name": "image", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/preferences.BackgroundResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        }
    },
    "definitions": {
        "api.Response": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "error": {"type": "string"},
                "request_id": {"type": "string"}
            }
        },
        "preferences.LocationPreference": {
            "type": "object",
            "properties": {"location": {"type": "string"}}
        },
        "preferences.BackgroundResult": {
            "type": "object",
            "properties": {
                "dataUri": {"type": "string"},
                "storageKey": {"type": "string"}
            }
        },
        "types.BikeTrail": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "mapsUri": {"type": "string"}
            }
        },
        "types.ForecastLocation": {
            "type": "object",
            "properties": {
                "city": {"type": "string"},
                "country": {"type": "string"}
            }
        },
        "types.HourlyData": {
            "type": "object",
            "properties": {
                "time": {"type": "string"},
                "windSpeed": {"type": "number"},
                "windDirection": {"type": "string"},
                "uvIndex": {"type": "number"},
                "rainProbability": {"type": "number"},
                "temperature": {"type": "number"}
            }
        },
        "types.DailyForecast": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "bikeAdvisory": {"type": "string"},
                "hourlyData": {"type": "array", "items": {"$ref": "#/definitions/types.HourlyData"}}
            }
        },
        "types.WeatherData": {
            "type": "object",
            "properties": {
                "location": {"$ref": "#/definitions/types.ForecastLocation"},
                "dailyForecasts": {"type": "array", "items": {"$ref": "#/definitions/types.DailyForecast"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Jens Bike Weather API",
	Description:      "Bike-friendly forecasts and trail search backed by Gemini.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
