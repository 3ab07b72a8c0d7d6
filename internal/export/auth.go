package export

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"eventexport/internal/workspace"
	"eventexport/pkg/logging"

	pkgerrors "eventexport/pkg/errors"
)

const principalKey = "export.principal"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*workspace.Workspace, *workspace.Session, error)
}

// AuthMiddleware resolves the bearer token to a workspace and user.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(pkgerrors.ErrUnauthorized.Status,
				pkgerrors.ToErrorResponse(pkgerrors.ErrUnauthorized.WithMessage("missing API token")))
			return
		}

		ws, session, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if pkgerrors.Code(err) != pkgerrors.ErrUnauthorized.Code {
				err = pkgerrors.ErrServiceUnavailable.WithCause(err)
			}
			c.AbortWithStatusJSON(pkgerrors.ToHTTPStatus(err), pkgerrors.ToErrorResponse(err))
			return
		}

		SetPrincipal(c, Principal{Workspace: *ws, Session: *session})
		c.Next()
	}
}

// SetPrincipal attaches the caller to the request.
func SetPrincipal(c *gin.Context, p Principal) {
	c.Set(principalKey, p)
	c.Request = c.Request.WithContext(logging.WithWorkspaceID(c.Request.Context(), p.Workspace.ID))
}

func PrincipalFrom(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// WorkspaceKey buckets requests by authenticated workspace.
func WorkspaceKey(c *gin.Context) string {
	if p, ok := PrincipalFrom(c); ok {
		return p.Workspace.ID
	}
	return ""
}
