package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes
	RouteSignup  = "/signup"
	RouteLogin   = "/login"
	RouteLogout  = "/logout"
	RouteRefresh = "/refresh"

	// Password Reset Routes
	RouteForgotPassword  = "/forgot-password"
	RouteVerifyResetCode = "/verify-reset-code"
	RouteResetPassword   = "/reset-password"

	// User Routes
	RouteProfile = "/profile"

	// Admin Routes
	RouteUsers    = "/users"
	RouteUserByID = "/user/{id}"
)

// Cookie names
const (
	refreshCookieName = "refreshToken"
	resetCookieName   = "resetToken"
)
