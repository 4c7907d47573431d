package server

import "github.com/northstack/auth-service/users"

func (s *Server) initRoutes() {
	// Public auth flows
	s.RegisterRouteFunc("POST "+RouteSignup, ChainMiddleware(s.SignupHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))

	// Password reset flow (independent of session state)
	s.RegisterRouteFunc("POST "+RouteForgotPassword, ChainMiddleware(s.ForgotPasswordHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteVerifyResetCode, ChainMiddleware(s.VerifyResetCodeHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteResetPassword, ChainMiddleware(s.ResetPasswordHandler(), s.APIMiddleware()...))

	// Authenticated routes
	s.RegisterRouteFunc("GET "+RouteProfile, ChainMiddleware(s.ProfileHandler(), s.APIMiddleware(s.Authenticate)...))

	// Admin routes
	s.RegisterRouteFunc("GET "+RouteUsers,
		ChainMiddleware(s.ListUsersHandler(), s.APIMiddleware(s.Authenticate, s.RequireRoles(users.RoleAdmin))...))
	s.RegisterRouteFunc("GET "+RouteUserByID,
		ChainMiddleware(s.GetUserHandler(), s.APIMiddleware(s.Authenticate, s.RequireRoles(users.RoleAdmin))...))
}
