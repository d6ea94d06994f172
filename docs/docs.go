// Package docs registra la especificación OpenAPI que sirve /swagger.
// Regenerar con: swag init -g cmd/api/main.go
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
        "/health": {"get": {"tags": ["ops"], "summary": "Health check", "responses": {"200": {"description": "ok"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Login", "responses": {"200": {"description": "sesión"}, "401": {"description": "invalid credentials"}}}},
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Registro", "responses": {"201": {"description": "sesión"}}}},
        "/veterinarians": {"get": {"tags": ["appointments"], "summary": "Listar veterinarios", "responses": {"200": {"description": "catálogo"}}}},
        "/appointments/availability": {"get": {"tags": ["appointments"], "summary": "Consultar disponibilidad", "responses": {"200": {"description": "disponibilidad"}}}},
        "/agenda": {"get": {"tags": ["agenda"], "summary": "Estado de la agenda", "responses": {"200": {"description": "estado"}}}},
        "/agenda/reload": {"post": {"tags": ["agenda"], "summary": "Recargar agenda", "responses": {"200": {"description": "estado"}}}},
        "/agenda/filter": {"put": {"tags": ["agenda"], "summary": "Filtrar por estado", "responses": {"200": {"description": "estado"}}}},
        "/agenda/view": {"put": {"tags": ["agenda"], "summary": "Cambiar vista", "responses": {"200": {"description": "estado"}}}},
        "/agenda/month/{direction}": {"post": {"tags": ["agenda"], "summary": "Mes anterior / siguiente", "responses": {"200": {"description": "calendario"}}}},
        "/agenda/range": {
            "put": {"tags": ["agenda"], "summary": "Aplicar filtros de rango", "responses": {"200": {"description": "estado"}}},
            "delete": {"tags": ["agenda"], "summary": "Limpiar filtros", "responses": {"200": {"description": "estado"}}}
        },
        "/agenda/calendar": {"get": {"tags": ["agenda"], "summary": "Grilla del mes", "responses": {"200": {"description": "calendario"}}}},
        "/agenda/appointments": {"post": {"tags": ["agenda"], "summary": "Agendar cita", "responses": {"201": {"description": "estado"}}}},
        "/agenda/appointments/{id}/confirm": {"post": {"tags": ["agenda"], "summary": "Confirmar cita", "responses": {"200": {"description": "estado"}}}},
        "/agenda/appointments/{id}/cancel": {"post": {"tags": ["agenda"], "summary": "Cancelar cita", "responses": {"200": {"description": "estado"}}}},
        "/agenda/appointments/{id}/status": {"put": {"tags": ["agenda"], "summary": "Cambiar estado", "responses": {"200": {"description": "estado"}}}},
        "/agenda/reschedule": {
            "post": {"tags": ["agenda"], "summary": "Abrir reprogramación", "responses": {"200": {"description": "estado"}}},
            "put": {"tags": ["agenda"], "summary": "Editar reprogramación", "responses": {"200": {"description": "estado"}}},
            "delete": {"tags": ["agenda"], "summary": "Cerrar reprogramación", "responses": {"200": {"description": "estado"}}}
        },
        "/agenda/reschedule/submit": {"post": {"tags": ["agenda"], "summary": "Enviar reprogramación", "responses": {"200": {"description": "estado"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "vet-appointments API",
	Description:      "Agenda de citas de la clínica veterinaria: lista, calendario y ciclo de vida.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
