// Package inventory serves the static car listing fixture (GET /api/cars)
// that the shopper-facing page renders while waiting in the queue. There
// is no real inventory integration, so the catalog is a fixed in-memory
// fixture.
package inventory

import (
	"encoding/json"
	"net/http"
)

type Car struct {
	ID    string `json:"id"`
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  int    `json:"year"`
	Price int    `json:"price"`
	Image string `json:"image"`
}

var fixture = []Car{
	{ID: "c-1001", Make: "Toyota", Model: "Camry", Year: 2025, Price: 28990, Image: "/cars/camry.jpg"},
	{ID: "c-1002", Make: "Honda", Model: "CR-V", Year: 2025, Price: 31990, Image: "/cars/crv.jpg"},
	{ID: "c-1003", Make: "Ford", Model: "F-150", Year: 2024, Price: 42990, Image: "/cars/f150.jpg"},
	{ID: "c-1004", Make: "Tesla", Model: "Model 3", Year: 2025, Price: 38990, Image: "/cars/model3.jpg"},
}

type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

// ServeHTTP implements GET /api/cars.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(fixture)
}
