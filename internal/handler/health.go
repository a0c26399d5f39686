package handler

import (
	"net/http"

	"github.com/northwind/salesportal/internal/render"
)

func Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	render.Error(w, http.StatusNotFound, "not found")
}
