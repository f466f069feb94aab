package application

import (
	"crypto/subtle"
	"log/slog"
	"strings"

	"github.com/apascualco/campusgate/internal/domain"
)

type RegistryConfig struct {
	ServiceToken string
	BaseURLs     map[domain.ServiceName]string
}

type ServiceEntry struct {
	Name    domain.ServiceName `json:"name"`
	BaseURL string             `json:"baseUrl"`
}

// ServiceRegistry is the static service name to base URL table. It is built
// once at startup and never mutated, so it is shared without locking.
type ServiceRegistry struct {
	serviceToken string
	urls         map[domain.ServiceName]string
}

// NewServiceRegistry trims trailing slashes and skips blank URLs and names
// outside domain.ServiceNames.
func NewServiceRegistry(cfg RegistryConfig) *ServiceRegistry {
	urls := make(map[domain.ServiceName]string, len(cfg.BaseURLs))
	for name, raw := range cfg.BaseURLs {
		if !name.IsKnown() {
			slog.Warn("ignoring base URL of unknown service", slog.String("service", string(name)))
			continue
		}
		base := strings.TrimRight(strings.TrimSpace(raw), "/")
		if base == "" {
			continue
		}
		urls[name] = base
	}
	return &ServiceRegistry{
		serviceToken: cfg.ServiceToken,
		urls:         urls,
	}
}

func (r *ServiceRegistry) BaseURLOf(name domain.ServiceName) (string, error) {
	base, ok := r.urls[name]
	if !ok {
		return "", &domain.ConfigurationError{Service: name}
	}
	return base, nil
}

// Services lists the configured services in domain.ServiceNames order.
func (r *ServiceRegistry) Services() []ServiceEntry {
	entries := make([]ServiceEntry, 0, len(r.urls))
	for _, name := range domain.ServiceNames() {
		if base, ok := r.urls[name]; ok {
			entries = append(entries, ServiceEntry{Name: name, BaseURL: base})
		}
	}
	return entries
}

// ValidateToken guards the operational endpoints. An unset token rejects all.
func (r *ServiceRegistry) ValidateToken(token string) bool {
	if r.serviceToken == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(r.serviceToken), []byte(token)) == 1
}
