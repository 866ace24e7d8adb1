package dining

import (
	"fmt"
	"net/http"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

const DefaultPublicRate = "30-M"

// NewRateLimit returns a per client IP limiter middleware. rate uses the
// limiter format, e.g. "30-M" for thirty requests a minute.
func NewRateLimit(rate string) (func(http.Handler) http.Handler, error) {
	if rate == "" {
		rate = DefaultPublicRate
	}
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", rate, err)
	}
	instance := limiter.New(memory.NewStore(), parsed)
	return stdlib.NewMiddleware(instance).Handler, nil
}
