// Package docs registra la especificación OpenAPI servida en /docs.
// Regenerar swagger.json con: swag init -g cmd/api/main.go
package docs

import (
	_ "embed"

	"github.com/swaggo/swag"
)

//go:embed swagger.json
var docTemplate string

// SwaggerInfo metadatos de la API.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Abastecimiento API",
	Description:      "Libro de abastecimiento y stock: pedidos de compra, entregas (pesajes), movimientos y reparación.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
