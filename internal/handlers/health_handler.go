package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"skillsage/interview/internal/config"
	"skillsage/interview/internal/llm"
	"skillsage/interview/internal/utils"
)

type ReadinessCheck struct {
	Status  string `json:"status"` // "ok" | "failed"
	Message string `json:"message,omitempty"`
}

type ReadinessResponse struct {
	Status  string                    `json:"status"`  // "ready" | "not_ready"
	Service string                    `json:"service"` // Service name
	Checks  map[string]ReadinessCheck `json:"checks"`  // Individual check results
}

type HealthHandler struct {
	gateway llm.Gateway
	db      *gorm.DB
	config  *config.Config
}

func NewHealthHandler(gateway llm.Gateway, db *gorm.DB, cfg *config.Config) *HealthHandler {
	return &HealthHandler{
		gateway: gateway,
		db:      db,
		config:  cfg,
	}
}

func (handler *HealthHandler) HealthzHandler(writer http.ResponseWriter, request *http.Request) {
	utils.JSON(writer, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "interview",
		"version": "1.0.0",
	})
}

func (handler *HealthHandler) ReadyzHandler(writer http.ResponseWriter, request *http.Request) {
	checks := make(map[string]ReadinessCheck)
	allChecksPass := true

	// verify the generation gateway is initialized
	if handler.gateway == nil {
		checks["gateway"] = ReadinessCheck{
			Status:  "failed",
			Message: "Generation gateway not initialized",
		}
		allChecksPass = false
	} else {
		checks["gateway"] = ReadinessCheck{
			Status: "ok",
		}
	}

	// verify the database connection answers
	if handler.db == nil {
		checks["database"] = ReadinessCheck{
			Status:  "failed",
			Message: "Database not initialized",
		}
		allChecksPass = false
	} else if sqlDB, err := handler.db.DB(); err != nil || sqlDB.PingContext(request.Context()) != nil {
		checks["database"] = ReadinessCheck{
			Status:  "failed",
			Message: "Database did not answer ping",
		}
		allChecksPass = false
	} else {
		checks["database"] = ReadinessCheck{
			Status: "ok",
		}
	}

	// verify configuration is valid
	if handler.config == nil {
		checks["configuration"] = ReadinessCheck{
			Status:  "failed",
			Message: "Configuration not loaded",
		}
		allChecksPass = false
	} else {
		checks["configuration"] = ReadinessCheck{
			Status: "ok",
		}
	}

	response := ReadinessResponse{
		Service: "interview",
		Checks:  checks,
	}

	if allChecksPass {
		response.Status = "ready"
		utils.JSON(writer, http.StatusOK, response)
	} else {
		response.Status = "not_ready"
		utils.JSON(writer, http.StatusServiceUnavailable, response)
	}
}
