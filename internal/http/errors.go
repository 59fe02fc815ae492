package httpapi

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/denisok6893-rgb/property-investment/internal/catalog"
	"github.com/denisok6893-rgb/property-investment/internal/investment"
	"github.com/denisok6893-rgb/property-investment/internal/model"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	var badType *catalog.UnknownPropertyTypeError
	var badDistrict *catalog.UnknownDistrictError

	switch {
	case errors.As(err, &badType):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: "unknown_property_type", Value: badType.PropertyType, Message: err.Error()})
	case errors.As(err, &badDistrict):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: "unknown_district", Value: badDistrict.District, Message: err.Error()})
	case errors.Is(err, investment.ErrInvalidLandArea):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_land_area", Message: err.Error()})
	case errors.Is(err, investment.ErrInvalidFloorCount):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_num_floors", Message: err.Error()})
	case errors.Is(err, model.ErrNoModel):
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "model_unavailable", Message: err.Error()})
	case errors.Is(err, context.Canceled):
		// client went away
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
	}
}
