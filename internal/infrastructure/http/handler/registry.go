package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/apascualco/campusgate/internal/application"
	"github.com/apascualco/campusgate/internal/domain"
)

const HeaderServiceToken = "X-Service-Token"

type RegistryHandler struct {
	registry *application.ServiceRegistry
}

func NewRegistryHandler(registry *application.ServiceRegistry) *RegistryHandler {
	return &RegistryHandler{registry: registry}
}

type ServicesResponse struct {
	Services []application.ServiceEntry `json:"services"`
}

// ListServices exposes the service table to operators holding the service
// token.
func (h *RegistryHandler) ListServices(c *gin.Context) {
	if !h.registry.ValidateToken(c.GetHeader(HeaderServiceToken)) {
		abort(c, domain.ErrUnauthorized)
		return
	}

	c.JSON(http.StatusOK, ServicesResponse{Services: h.registry.Services()})
}
