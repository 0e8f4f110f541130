package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func requestWithRoles(e *echo.Echo, roles []string) echo.Context {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), UserRolesKey, roles)
	req = req.WithContext(ctx)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	tests := []struct {
		name    string
		roles   []string
		allowed bool
	}{
		{name: "matching role", roles: []string{"clinic_manager"}, allowed: true},
		{name: "admin always passes", roles: []string{"admin"}, allowed: true},
		{name: "wrong role", roles: []string{"clinician"}, allowed: false},
		{name: "no roles", roles: nil, allowed: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := requestWithRoles(e, tt.roles)
			err := RequireRole("clinic_manager", "front_desk_staff")(ok)(c)
			if tt.allowed && err != nil {
				t.Errorf("expected access, got %v", err)
			}
			if !tt.allowed {
				httpErr, isHTTP := err.(*echo.HTTPError)
				if !isHTTP || httpErr.Code != http.StatusForbidden {
					t.Errorf("expected 403, got %v", err)
				}
			}
		})
	}
}
