package review

import (
	"log/slog"

	"reviewflow/pkg/transport"
)

// RegressionDefaultModel is the client-side model default of the regression
// variant. The configuration-item variant deliberately has none and lets
// the server choose.
const RegressionDefaultModel = "gpt-3.5-turbo"

// NewConfigurationItem creates the configuration-item review variant:
// server-chosen model default and every generation request routed through
// the review-document endpoint.
func NewConfigurationItem(baseURL string, tp *transport.Client, logger *slog.Logger) (*Client, error) {
	return New(Config{
		BaseURL: baseURL,
		Route:   RouteReviewDocument,
	}, tp, logger.With("variant", "configuration_item"))
}

// NewRegression creates the regression-test review variant: a named model
// default, type-routed generation endpoints, and a fallback session for
// review calls made without one.
func NewRegression(baseURL string, tp *transport.Client, logger *slog.Logger) (*Client, error) {
	return New(Config{
		BaseURL:           baseURL,
		DefaultModel:      RegressionDefaultModel,
		Route:             RouteByType,
		FallbackSessionID: "default",
	}, tp, logger.With("variant", "regression"))
}
