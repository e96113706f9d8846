package dux

// AuthModule is the authentication slice with its log in and log out
// creators.
type AuthModule struct {
	*Module
}

// Authentication returns the module for the authentication service.
func Authentication() *AuthModule {
	return &AuthModule{Module: New(AuthenticationPath)}
}

// LogIn starts a local-strategy log in.
func (m *AuthModule) LogIn(email, password string) Action {
	return m.Actions.Create(map[string]any{
		"strategy": "local",
		"email":    email,
		"password": password,
	})
}

// LogOut starts a log out of the current session. Run against an
// HTTPCaller it sends DELETE /authentication and drops the cached token.
func (m *AuthModule) LogOut() Action {
	return m.Actions.Remove("")
}
