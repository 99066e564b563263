package constants

// Route constants
const (
	RouteHome     = "/"
	RouteLogin    = "/accounts/login/"
	RouteLogout   = "/accounts/logout/"
	RouteProfile  = "/profile/"
	RouteHealth   = "/healthz"
	RouteMetrics  = "/metrics"
	RouteAccounts = "/accounts"
)

// ProviderLoginPath is where a login with provider starts.
func ProviderLoginPath(provider string) string {
	return RouteAccounts + "/login/" + provider + "/"
}

// ProviderCallbackPath is the redirect URI path registered with provider.
func ProviderCallbackPath(provider string) string {
	return RouteAccounts + "/" + provider + "/login/callback/"
}
